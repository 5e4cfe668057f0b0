package detection

import (
	"testing"

	"github.com/ledwatch/agent/src/models"
	"gocv.io/x/gocv"
)

func solidFrame(blue, green, red float64) gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(blue, green, red, 0), 120, 160, gocv.MatTypeCV8UC3)
}

func TestClassifyGreenRegion(t *testing.T) {
	frame := solidFrame(0, 255, 0)
	defer frame.Close()

	classifier := NewClassifier(models.DetectionConfig{})
	defer classifier.Close()

	region := models.Region{Name: "status-led", MachineId: "press-1", X: 10, Y: 10, Width: 40, Height: 40}
	detection := classifier.Classify(frame, region)
	if detection.Status != models.StatusGreen {
		t.Fatalf("expected %s, got %s", models.StatusGreen, detection.Status)
	}
	if detection.Confidence < 0.9 {
		t.Fatalf("expected a confident match on a solid frame, got %f", detection.Confidence)
	}
}

func TestClassifyDarkRegionIsOff(t *testing.T) {
	frame := solidFrame(5, 5, 5)
	defer frame.Close()

	classifier := NewClassifier(models.DetectionConfig{})
	defer classifier.Close()

	region := models.Region{Name: "status-led", MachineId: "press-1", X: 0, Y: 0, Width: 50, Height: 50}
	detection := classifier.Classify(frame, region)
	if detection.Status != models.StatusOff {
		t.Fatalf("expected %s on a dark frame, got %s", models.StatusOff, detection.Status)
	}
	if detection.Confidence != 1.0 {
		t.Fatalf("expected full confidence on a dark frame, got %f", detection.Confidence)
	}
}

func TestClassifyRegionOutsideFrame(t *testing.T) {
	frame := solidFrame(0, 0, 255)
	defer frame.Close()

	classifier := NewClassifier(models.DetectionConfig{})
	defer classifier.Close()

	region := models.Region{Name: "status-led", MachineId: "press-1", X: 500, Y: 500, Width: 20, Height: 20}
	detection := classifier.Classify(frame, region)
	if detection.Status != models.StatusOff {
		t.Fatalf("expected %s for an out of frame region, got %s", models.StatusOff, detection.Status)
	}
	if detection.Confidence != 0 {
		t.Fatalf("expected zero confidence for an out of frame region, got %f", detection.Confidence)
	}
}

func TestClassifyAlternationBecomesFlashing(t *testing.T) {
	red := solidFrame(0, 0, 255)
	defer red.Close()
	dark := solidFrame(0, 0, 0)
	defer dark.Close()

	classifier := NewClassifier(models.DetectionConfig{HistoryLength: 6, FlashingThreshold: 3})
	defer classifier.Close()

	region := models.Region{Name: "alarm-led", MachineId: "press-2", X: 20, Y: 20, Width: 30, Height: 30}
	var detection models.Detection
	for i := 0; i < 6; i++ {
		if i%2 == 0 {
			detection = classifier.Classify(red, region)
		} else {
			detection = classifier.Classify(dark, region)
		}
	}
	if detection.Status != models.StatusFlashingRed {
		t.Fatalf("expected %s after alternation, got %s", models.StatusFlashingRed, detection.Status)
	}
}

func TestClassifyAllKeepsRegionOrder(t *testing.T) {
	frame := solidFrame(0, 255, 255)
	defer frame.Close()

	classifier := NewClassifier(models.DetectionConfig{})
	defer classifier.Close()

	regions := []models.Region{
		{Name: "run-led", MachineId: "press-3", X: 0, Y: 0, Width: 20, Height: 20},
		{Name: "warn-led", MachineId: "press-3", X: 40, Y: 0, Width: 20, Height: 20},
	}
	detections := classifier.ClassifyAll(frame, regions)
	if len(detections) != 2 {
		t.Fatalf("expected 2 detections, got %d", len(detections))
	}
	if detections[0].Region.Name != "run-led" || detections[1].Region.Name != "warn-led" {
		t.Fatalf("detections out of order: %s, %s", detections[0].Region.Name, detections[1].Region.Name)
	}
}
