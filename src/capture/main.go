// Connecting to the different camera sources and keeping a fresh decoded
// frame available for the monitoring loops.
package capture

import (
	"sync"

	"gocv.io/x/gocv"

	"github.com/ledwatch/agent/src/log"
	"github.com/ledwatch/agent/src/models"
)

// Capture is the registry of all camera frame sources, keyed by camera id.
// At most one IPCamera (and so one decode handle) exists per camera.
type Capture struct {
	mu      sync.RWMutex
	cameras map[string]*IPCamera
}

func New() *Capture {
	return &Capture{
		cameras: make(map[string]*IPCamera),
	}
}

// AddCamera creates and starts the frame source for one camera. Fails when
// the id is already registered or the initial connection cannot be made.
func (capture *Capture) AddCamera(config models.Camera) error {
	capture.mu.Lock()
	if _, exists := capture.cameras[config.Id]; exists {
		capture.mu.Unlock()
		return &models.ConfigurationError{Entry: "camera " + config.Id, Reason: "already registered"}
	}
	camera := NewIPCamera(config)
	capture.cameras[config.Id] = camera
	capture.mu.Unlock()

	if err := camera.Start(); err != nil {
		capture.mu.Lock()
		delete(capture.cameras, config.Id)
		capture.mu.Unlock()
		return err
	}

	log.Log.Info("capture.main.AddCamera(): registered camera " + config.Id)
	return nil
}

// RemoveCamera stops and deregisters one camera. Unknown ids are a no-op.
func (capture *Capture) RemoveCamera(id string) {
	capture.mu.Lock()
	camera, exists := capture.cameras[id]
	if exists {
		delete(capture.cameras, id)
	}
	capture.mu.Unlock()

	if exists {
		camera.Stop()
		log.Log.Info("capture.main.RemoveCamera(): deregistered camera " + id)
	}
}

// Camera returns the frame source for one camera id.
func (capture *Capture) Camera(id string) (*IPCamera, bool) {
	capture.mu.RLock()
	defer capture.mu.RUnlock()
	camera, exists := capture.cameras[id]
	return camera, exists
}

// LatestFrame returns a copy of the most recent frame of one camera, see
// IPCamera.LatestFrame.
func (capture *Capture) LatestFrame(id string) (gocv.Mat, bool) {
	camera, exists := capture.Camera(id)
	if !exists {
		return gocv.Mat{}, false
	}
	return camera.LatestFrame()
}

// Stats returns the runtime counters of every registered camera.
func (capture *Capture) Stats() map[string]models.StreamStats {
	capture.mu.RLock()
	defer capture.mu.RUnlock()
	stats := make(map[string]models.StreamStats, len(capture.cameras))
	for id, camera := range capture.cameras {
		stats[id] = camera.Stats()
	}
	return stats
}

// Health reports, per camera id, whether the camera is connected and
// produced a frame recently, see IPCamera.IsHealthy.
func (capture *Capture) Health() map[string]bool {
	capture.mu.RLock()
	defer capture.mu.RUnlock()
	health := make(map[string]bool, len(capture.cameras))
	for id, camera := range capture.cameras {
		health[id] = camera.IsHealthy()
	}
	return health
}

// StopAll stops every camera. Used during shutdown, after the monitoring
// loops have been stopped.
func (capture *Capture) StopAll() {
	capture.mu.Lock()
	cameras := make([]*IPCamera, 0, len(capture.cameras))
	for id, camera := range capture.cameras {
		cameras = append(cameras, camera)
		delete(capture.cameras, id)
	}
	capture.mu.Unlock()

	for _, camera := range cameras {
		camera.Stop()
	}
}
