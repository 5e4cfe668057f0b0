package http

import (
	"github.com/gin-gonic/gin"

	"github.com/ledwatch/agent/src/capture"
	"github.com/ledwatch/agent/src/models"
	"github.com/ledwatch/agent/src/monitor"
	"github.com/ledwatch/agent/src/routers/websocket"
	"github.com/ledwatch/agent/src/storage"
)

func AddRoutes(r *gin.Engine, configuration *models.Config, captureDevice *capture.Capture, aggregator *monitor.Aggregator, store *storage.Storage) *gin.RouterGroup {
	api := r.Group("/api")
	{
		api.GET("/status", func(c *gin.Context) {
			GetStatus(c, configuration, captureDevice, aggregator)
		})
		api.GET("/stats", func(c *gin.Context) {
			GetAllStats(c, captureDevice)
		})
		api.GET("/stats/:camera", func(c *gin.Context) {
			GetCameraStats(c, captureDevice)
		})
		api.GET("/transitions", func(c *gin.Context) {
			GetTransitions(c, aggregator)
		})
		api.GET("/history", func(c *gin.Context) {
			GetHistory(c, store)
		})
		api.GET("/snapshot/:camera", func(c *gin.Context) {
			GetSnapshot(c, configuration, captureDevice, aggregator)
		})
		api.GET("/system", GetSystem)
		api.GET("/health", func(c *gin.Context) {
			GetHealth(c, captureDevice)
		})
	}

	r.GET("/ws", func(c *gin.Context) {
		websocket.WebsocketHandler(c, configuration, captureDevice, aggregator)
	})

	return api
}
