package config

import (
	"encoding/json"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/InVisionApp/conjungo"
	"github.com/ledwatch/agent/src/log"
	"github.com/ledwatch/agent/src/models"
)

// Defaults returns the built-in configuration, matching the behaviour of the
// monitoring pipeline when nothing is tuned: 2Hz monitoring, a 2 frame
// buffer, the stock HSV classifier thresholds and a 50 entry transition log.
func Defaults() models.Config {
	return models.Config{
		Name:     "ledwatch",
		Timezone: "UTC",
		Port:     "8080",
		Detection: models.DetectionConfig{
			BrightnessThreshold: 30,
			MinConfidence:       0.10,
			HistoryLength:       10,
			FlashingThreshold:   3,
		},
		Monitor: models.MonitorConfig{
			FPS:               2,
			TransitionHistory: 50,
		},
		Storage: models.StorageConfig{
			HistoryFile: "./data/log/detection_history.jsonl",
		},
	}
}

// OpenConfig reads the JSON configuration from the config directory and
// merges it on top of the defaults. A missing or unparsable file is fatal:
// without cameras there is nothing to monitor.
func OpenConfig(configDirectory string, configuration *models.Config) error {
	path := configDirectory + "/data/config/config.json"
	contents, err := os.ReadFile(path)
	if err != nil {
		return &models.ConfigurationError{Entry: path, Reason: err.Error()}
	}

	var fileConfig models.Config
	if err := json.Unmarshal(contents, &fileConfig); err != nil {
		return &models.ConfigurationError{Entry: path, Reason: "not valid JSON: " + err.Error()}
	}

	merged := Defaults()
	if err := mergeConfig(&merged, fileConfig); err != nil {
		return &models.ConfigurationError{Entry: path, Reason: err.Error()}
	}

	*configuration = merged
	log.Log.Info("config.main.OpenConfig(): loaded " + path)
	return nil
}

// mergeConfig merges the user supplied config on top of the defaults.
// Empty strings and zero numbers in the source do not clobber defaults,
// so a sparse config file keeps the stock tuning.
func mergeConfig(target *models.Config, source models.Config) error {
	opts := conjungo.NewOptions()
	opts.SetTypeMergeFunc(
		reflect.TypeOf(""),
		func(t, s reflect.Value, o *conjungo.Options) (reflect.Value, error) {
			targetStr, _ := t.Interface().(string)
			sourceStr, _ := s.Interface().(string)
			finalStr := targetStr
			if sourceStr != "" {
				finalStr = sourceStr
			}
			return reflect.ValueOf(finalStr), nil
		},
	)
	opts.SetTypeMergeFunc(
		reflect.TypeOf(float64(0)),
		func(t, s reflect.Value, o *conjungo.Options) (reflect.Value, error) {
			targetVal, _ := t.Interface().(float64)
			sourceVal, _ := s.Interface().(float64)
			finalVal := targetVal
			if sourceVal != 0 {
				finalVal = sourceVal
			}
			return reflect.ValueOf(finalVal), nil
		},
	)
	opts.SetTypeMergeFunc(
		reflect.TypeOf(int(0)),
		func(t, s reflect.Value, o *conjungo.Options) (reflect.Value, error) {
			targetVal, _ := t.Interface().(int)
			sourceVal, _ := s.Interface().(int)
			finalVal := targetVal
			if sourceVal != 0 {
				finalVal = sourceVal
			}
			return reflect.ValueOf(finalVal), nil
		},
	)
	return conjungo.Merge(target, source, opts)
}

// OverrideWithEnvironmentVariables overrides specific properties of the
// configuration with environment variables, so credentials and endpoints can
// be injected at deploy time without touching the config file.
func OverrideWithEnvironmentVariables(configuration *models.Config) {
	for _, value := range os.Environ() {
		parts := strings.SplitN(value, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := parts[0]
		value := parts[1]

		switch key {

		case "AGENT_NAME":
			configuration.Name = value

		case "AGENT_TIMEZONE":
			configuration.Timezone = value

		case "AGENT_PORT":
			configuration.Port = value

		case "AGENT_MONITORING_FPS":
			if fps, err := strconv.ParseFloat(value, 64); err == nil && fps > 0 {
				configuration.Monitor.FPS = fps
			}

		case "RTSP_USERNAME":
			for i := range configuration.Cameras {
				if configuration.Cameras[i].Username == "" {
					configuration.Cameras[i].Username = value
				}
			}

		case "RTSP_PASSWORD":
			for i := range configuration.Cameras {
				if configuration.Cameras[i].Password == "" {
					configuration.Cameras[i].Password = value
				}
			}

		case "SMTP_USERNAME":
			configuration.Notifications.Email.Username = value

		case "SMTP_PASSWORD":
			configuration.Notifications.Email.Password = value

		case "MQTT_URI":
			configuration.Notifications.MQTT.URI = value

		case "MQTT_USERNAME":
			configuration.Notifications.MQTT.Username = value

		case "MQTT_PASSWORD":
			configuration.Notifications.MQTT.Password = value

		case "SLACK_WEBHOOK_URL":
			configuration.Notifications.Slack.WebhookURL = value

		case "TELEGRAM_BOT_TOKEN":
			configuration.Notifications.Telegram.BotToken = value
		}
	}
}

// Validate checks every camera and region definition before anything is
// registered. The first malformed entry is reported with a descriptive
// error; nothing starts with a half-valid configuration.
func Validate(configuration *models.Config) error {
	if len(configuration.Cameras) == 0 {
		return &models.ConfigurationError{Entry: "cameras", Reason: "no cameras configured"}
	}

	seen := make(map[string]bool)
	for _, camera := range configuration.Cameras {
		if camera.Id == "" {
			return &models.ConfigurationError{Entry: "camera", Reason: "missing id"}
		}
		if seen[camera.Id] {
			return &models.ConfigurationError{Entry: "camera " + camera.Id, Reason: "duplicate camera id"}
		}
		seen[camera.Id] = true

		if camera.RTSP == "" {
			return &models.ConfigurationError{Entry: "camera " + camera.Id, Reason: "missing rtsp url"}
		}
		if !strings.HasPrefix(camera.RTSP, "rtsp://") && !strings.HasPrefix(camera.RTSP, "http://") {
			return &models.ConfigurationError{Entry: "camera " + camera.Id, Reason: "rtsp url must start with rtsp:// or http://"}
		}

		regionNames := make(map[string]bool)
		for _, region := range camera.Regions {
			if err := ValidateRegion(camera.Id, region); err != nil {
				return err
			}
			if regionNames[region.Name] {
				return &models.ConfigurationError{
					Entry:  "camera " + camera.Id + ", region " + region.Name,
					Reason: "duplicate region name",
				}
			}
			regionNames[region.Name] = true
		}
	}
	return nil
}

// ValidateRegion checks the geometry of a single region: non-negative
// coordinates and strictly positive dimensions.
func ValidateRegion(cameraId string, region models.Region) error {
	entry := "camera " + cameraId + ", region " + region.Name
	if region.Name == "" {
		return &models.ConfigurationError{Entry: "camera " + cameraId, Reason: "region with empty name"}
	}
	if region.MachineId == "" {
		return &models.ConfigurationError{Entry: entry, Reason: "missing machine_id"}
	}
	if region.X < 0 || region.Y < 0 {
		return &models.ConfigurationError{
			Entry:  entry,
			Reason: "negative coordinates (x=" + strconv.Itoa(region.X) + ", y=" + strconv.Itoa(region.Y) + ")",
		}
	}
	if region.Width <= 0 || region.Height <= 0 {
		return &models.ConfigurationError{
			Entry:  entry,
			Reason: "width and height must be positive (width=" + strconv.Itoa(region.Width) + ", height=" + strconv.Itoa(region.Height) + ")",
		}
	}
	return nil
}
