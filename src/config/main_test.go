package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/ledwatch/agent/src/models"
)

func validCamera() models.Camera {
	return models.Camera{
		Id:   "line-1",
		RTSP: "rtsp://10.0.0.5:554/stream1",
		Regions: []models.Region{
			{Name: "status-led", MachineId: "press-1", X: 10, Y: 10, Width: 20, Height: 20},
		},
	}
}

func TestOpenConfigMergesOverDefaults(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "data", "config"), 0755); err != nil {
		t.Fatal(err)
	}

	fileConfig := models.Config{
		Name:    "factory-floor",
		Cameras: []models.Camera{validCamera()},
		Detection: models.DetectionConfig{
			BrightnessThreshold: 45,
		},
	}
	contents, _ := json.Marshal(fileConfig)
	if err := os.WriteFile(filepath.Join(dir, "data", "config", "config.json"), contents, 0644); err != nil {
		t.Fatal(err)
	}

	var configuration models.Config
	if err := OpenConfig(dir, &configuration); err != nil {
		t.Fatalf("open failed: %s", err)
	}

	if configuration.Name != "factory-floor" {
		t.Fatalf("file value should win, got name %s", configuration.Name)
	}
	if configuration.Detection.BrightnessThreshold != 45 {
		t.Fatalf("file value should win, got brightness threshold %f", configuration.Detection.BrightnessThreshold)
	}
	if configuration.Detection.MinConfidence != 0.10 {
		t.Fatalf("default should survive a sparse file, got min confidence %f", configuration.Detection.MinConfidence)
	}
	if configuration.Monitor.FPS != 2 {
		t.Fatalf("default should survive a sparse file, got fps %f", configuration.Monitor.FPS)
	}
	if len(configuration.Cameras) != 1 {
		t.Fatalf("expected 1 camera, got %d", len(configuration.Cameras))
	}
}

func TestOpenConfigFailsOnMissingFile(t *testing.T) {
	var configuration models.Config
	if err := OpenConfig(t.TempDir(), &configuration); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}

func TestValidateRejectsEmptyCameraList(t *testing.T) {
	configuration := Defaults()
	if err := Validate(&configuration); err == nil {
		t.Fatal("expected an error without cameras")
	}
}

func TestValidateRejectsDuplicateCameraIds(t *testing.T) {
	configuration := Defaults()
	configuration.Cameras = []models.Camera{validCamera(), validCamera()}
	if err := Validate(&configuration); err == nil {
		t.Fatal("expected an error for duplicate camera ids")
	}
}

func TestValidateRejectsBadStreamScheme(t *testing.T) {
	configuration := Defaults()
	camera := validCamera()
	camera.RTSP = "ftp://10.0.0.5/stream1"
	configuration.Cameras = []models.Camera{camera}
	if err := Validate(&configuration); err == nil {
		t.Fatal("expected an error for a non rtsp/http url")
	}
}

func TestValidateRejectsDuplicateRegionNames(t *testing.T) {
	configuration := Defaults()
	camera := validCamera()
	camera.Regions = append(camera.Regions, camera.Regions[0])
	configuration.Cameras = []models.Camera{camera}
	if err := Validate(&configuration); err == nil {
		t.Fatal("expected an error for duplicate region names")
	}
}

func TestValidateRegionGeometry(t *testing.T) {
	bad := []models.Region{
		{Name: "led", MachineId: "press-1", X: -1, Y: 0, Width: 10, Height: 10},
		{Name: "led", MachineId: "press-1", X: 0, Y: 0, Width: 0, Height: 10},
		{Name: "led", MachineId: "press-1", X: 0, Y: 0, Width: 10, Height: -5},
		{Name: "", MachineId: "press-1", X: 0, Y: 0, Width: 10, Height: 10},
		{Name: "led", MachineId: "", X: 0, Y: 0, Width: 10, Height: 10},
	}
	for i, region := range bad {
		if err := ValidateRegion("line-1", region); err == nil {
			t.Fatalf("expected region %d to be rejected", i)
		}
	}

	good := models.Region{Name: "led", MachineId: "press-1", X: 0, Y: 0, Width: 10, Height: 10}
	if err := ValidateRegion("line-1", good); err != nil {
		t.Fatalf("expected a valid region to pass, got %s", err)
	}
}

func TestOverrideWithEnvironmentVariables(t *testing.T) {
	t.Setenv("AGENT_NAME", "hall-3")
	t.Setenv("RTSP_USERNAME", "operator")
	t.Setenv("RTSP_PASSWORD", "secret")

	configuration := Defaults()
	camera := validCamera()
	configuration.Cameras = []models.Camera{camera}
	OverrideWithEnvironmentVariables(&configuration)

	if configuration.Name != "hall-3" {
		t.Fatalf("expected the environment to override the name, got %s", configuration.Name)
	}
	if configuration.Cameras[0].Username != "operator" || configuration.Cameras[0].Password != "secret" {
		t.Fatal("expected empty camera credentials to be filled from the environment")
	}
}
