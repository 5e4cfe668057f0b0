package http

import (
	"encoding/base64"
	"strconv"

	"github.com/elastic/go-sysinfo"
	"github.com/gin-gonic/gin"

	"github.com/ledwatch/agent/src/capture"
	"github.com/ledwatch/agent/src/detection"
	"github.com/ledwatch/agent/src/models"
	"github.com/ledwatch/agent/src/monitor"
	"github.com/ledwatch/agent/src/storage"
	"github.com/ledwatch/agent/src/utils"
)

// GetStatus returns an overview of the agent: name, configured cameras,
// their stream counters and the last known status of every region.
func GetStatus(c *gin.Context, configuration *models.Config, captureDevice *capture.Capture, aggregator *monitor.Aggregator) {
	c.JSON(200, models.APIResponse{
		Data: gin.H{
			"name":     configuration.Name,
			"cameras":  len(configuration.Cameras),
			"streams":  captureDevice.Stats(),
			"statuses": aggregator.CurrentStatus(),
		},
	})
}

// GetAllStats returns the stream counters of every camera.
func GetAllStats(c *gin.Context, captureDevice *capture.Capture) {
	c.JSON(200, models.APIResponse{
		Data: captureDevice.Stats(),
	})
}

// GetCameraStats returns the stream counters of a single camera.
func GetCameraStats(c *gin.Context, captureDevice *capture.Capture) {
	cameraId := c.Param("camera")
	camera, exists := captureDevice.Camera(cameraId)
	if !exists {
		c.JSON(404, models.APIResponse{
			Message: "camera " + cameraId + " does not exist",
		})
		return
	}
	c.JSON(200, models.APIResponse{
		Data: camera.Stats(),
	})
}

// GetTransitions returns the in-memory transition log, newest first. The
// limit query parameter caps the result, defaulting to the full log.
func GetTransitions(c *gin.Context, aggregator *monitor.Aggregator) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	c.JSON(200, models.APIResponse{
		Data: aggregator.Transitions(limit),
	})
}

// GetHistory returns persisted transitions from the database, newest first.
func GetHistory(c *gin.Context, store *storage.Storage) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	transitions, err := store.RecentTransitions(limit)
	if err != nil {
		c.JSON(500, models.APIResponse{
			Message: "failed to query the transition history: " + err.Error(),
		})
		return
	}
	c.JSON(200, models.APIResponse{
		Data: transitions,
	})
}

// GetSnapshot returns the latest frame of a camera as a base64 encoded jpeg,
// with the configured regions drawn in their current status colors.
func GetSnapshot(c *gin.Context, configuration *models.Config, captureDevice *capture.Capture, aggregator *monitor.Aggregator) {
	cameraId := c.Param("camera")
	frame, exists := captureDevice.LatestFrame(cameraId)
	if !exists {
		c.JSON(404, models.APIResponse{
			Message: "no frame available for camera " + cameraId,
		})
		return
	}
	defer frame.Close()

	detection.Annotate(&frame, regionsFor(configuration, cameraId), aggregator.CurrentStatus()[cameraId])

	jpeg, err := utils.EncodeJPEG(frame)
	if err != nil {
		c.JSON(500, models.APIResponse{
			Message: "failed to encode the snapshot: " + err.Error(),
		})
		return
	}
	c.JSON(200, models.APIResponse{
		Data: gin.H{
			"camera_id": cameraId,
			"snapshot":  base64.StdEncoding.EncodeToString(jpeg),
		},
	})
}

func regionsFor(configuration *models.Config, cameraId string) []models.Region {
	for _, camera := range configuration.Cameras {
		if camera.Id == cameraId {
			return camera.Regions
		}
	}
	return nil
}

// GetSystem returns host details of the machine the agent runs on.
func GetSystem(c *gin.Context) {
	host, err := sysinfo.Host()
	if err != nil {
		c.JSON(500, models.APIResponse{
			Message: "failed to read host information: " + err.Error(),
		})
		return
	}

	info := host.Info()
	system := gin.H{
		"hostname":     info.Hostname,
		"architecture": info.Architecture,
		"os":           info.OS.Name,
		"os_version":   info.OS.Version,
		"uptime":       info.Uptime().String(),
	}
	if memory, err := host.Memory(); err == nil {
		system["memory_total"] = memory.Total
		system["memory_available"] = memory.Available
	}

	c.JSON(200, models.APIResponse{
		Data: system,
	})
}

// GetHealth reports whether every camera has delivered a recent frame.
func GetHealth(c *gin.Context, captureDevice *capture.Capture) {
	healthy := true
	cameras := gin.H{}
	for cameraId, cameraHealthy := range captureDevice.Health() {
		cameras[cameraId] = cameraHealthy
		if !cameraHealthy {
			healthy = false
		}
	}

	status := 200
	if !healthy {
		status = 503
	}
	c.JSON(status, models.APIResponse{
		Data: gin.H{
			"healthy": healthy,
			"cameras": cameras,
		},
	})
}
