package routers

import (
	"github.com/ledwatch/agent/src/capture"
	"github.com/ledwatch/agent/src/models"
	"github.com/ledwatch/agent/src/monitor"
	"github.com/ledwatch/agent/src/routers/http"
	"github.com/ledwatch/agent/src/storage"
)

func StartWebserver(configuration *models.Config, captureDevice *capture.Capture, aggregator *monitor.Aggregator, store *storage.Storage) {
	http.StartServer(configuration, captureDevice, aggregator, store)
}
