package http

import (
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"

	"github.com/ledwatch/agent/src/capture"
	"github.com/ledwatch/agent/src/log"
	"github.com/ledwatch/agent/src/models"
	"github.com/ledwatch/agent/src/monitor"
	"github.com/ledwatch/agent/src/storage"
)

func StartServer(configuration *models.Config, captureDevice *capture.Capture, aggregator *monitor.Aggregator, store *storage.Storage) {

	gin.SetMode(gin.ReleaseMode)
	r := gin.Default()

	pprof.Register(r)

	// Setup CORS
	r.Use(CORS())

	// Add all routes
	AddRoutes(r, configuration, captureDevice, aggregator, store)

	// Run the api on port
	port := configuration.Port
	if port == "" {
		port = "8080"
	}
	log.Log.Info("routers.http.StartServer(): running on port " + port)
	err := r.Run(":" + port)
	if err != nil {
		log.Log.Fatal("routers.http.StartServer(): " + err.Error())
	}
}
