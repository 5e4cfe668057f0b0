package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofrs/uuid"
	"github.com/joho/godotenv"
	"github.com/ledwatch/agent/src/capture"
	"github.com/ledwatch/agent/src/config"
	"github.com/ledwatch/agent/src/detection"
	"github.com/ledwatch/agent/src/log"
	"github.com/ledwatch/agent/src/models"
	"github.com/ledwatch/agent/src/monitor"
	"github.com/ledwatch/agent/src/notifications"
	"github.com/ledwatch/agent/src/routers"
	"github.com/ledwatch/agent/src/storage"
)

const VERSION = "1.0"

func main() {

	action := "run"
	if len(os.Args) > 1 {
		action = os.Args[1]
	}

	// Environment variables from a .env file override the defaults, the
	// config file overrides can still win through the environment pass.
	godotenv.Load()

	timezone, _ := time.LoadLocation(os.Getenv("TIMEZONE"))
	if timezone == nil {
		timezone = time.Local
	}

	configDirectory := "."
	if dir := os.Getenv("AGENT_DIR"); dir != "" {
		configDirectory = dir
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	log.Log.Init(logLevel, configDirectory, timezone)

	switch action {
	case "version":
		log.Log.Info("You are currently running LEDwatch Agent " + VERSION)

	case "run":
		var configuration models.Config
		if err := config.OpenConfig(configDirectory, &configuration); err != nil {
			log.Log.Fatal("main.main(): unable to open the configuration: " + err.Error())
		}
		config.OverrideWithEnvironmentVariables(&configuration)
		if err := config.Validate(&configuration); err != nil {
			log.Log.Fatal("main.main(): invalid configuration: " + err.Error())
		}
		run(&configuration)

	default:
		fmt.Println("Sorry I don't understand :(")
	}
}

func run(configuration *models.Config) {

	log.Log.Info("main.run(): starting LEDwatch Agent " + configuration.Name)

	// Notification channels come up first so connection problems of the
	// cameras are already reported.
	notifier := notifications.FromConfig(configuration.Notifications)

	store, err := storage.New(configuration.Storage)
	if err != nil {
		log.Log.Fatal("main.run(): unable to open storage: " + err.Error())
	}

	captureDevice := capture.New()
	for _, camera := range configuration.Cameras {
		if err := captureDevice.AddCamera(camera); err != nil {
			log.Log.Error("main.run(): camera " + camera.Id + " failed to start: " + err.Error())
		}
	}

	classifier := detection.NewClassifier(configuration.Detection)
	aggregator := monitor.NewAggregator(configuration.Monitor, notifier, store)
	monitoring := monitor.New(captureDevice, classifier, aggregator, configuration.Monitor)
	monitoring.Start(configuration.Cameras)

	announce(notifier, configuration, "started")

	go routers.StartWebserver(configuration, captureDevice, aggregator, store)

	// Block until a shutdown is requested.
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	<-signals

	log.Log.Info("main.run(): shutting down")

	// Watch loops stop before the cameras they read from.
	monitoring.Stop()
	captureDevice.StopAll()
	classifier.Close()

	announce(notifier, configuration, "stopped")

	if err := store.Close(); err != nil {
		log.Log.Error("main.run(): closing storage failed: " + err.Error())
	}

	log.Log.Info("main.run(): bye bye")
}

// announce sends a lifecycle notification, so operators know when an agent
// comes up or goes away.
func announce(notifier *notifications.Manager, configuration *models.Config, state string) {
	if notifier.Count() == 0 {
		return
	}
	id := ""
	if eventId, err := uuid.NewV4(); err == nil {
		id = eventId.String()
	}
	notifier.Notify(models.NotificationEvent{
		Id:       id,
		Title:    "LEDwatch Agent " + configuration.Name + " " + state,
		Message:  "Agent " + configuration.Name + " " + state + " with " + fmt.Sprintf("%d", len(configuration.Cameras)) + " cameras configured",
		Priority: models.PriorityLow,
	})
}
