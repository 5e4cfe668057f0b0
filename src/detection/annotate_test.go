package detection

import (
	"testing"

	"github.com/ledwatch/agent/src/models"
	"gocv.io/x/gocv"
)

func TestAnnotateDrawsOnTheFrame(t *testing.T) {
	frame := gocv.NewMatWithSize(120, 160, gocv.MatTypeCV8UC3)
	defer frame.Close()

	regions := []models.Region{
		{Name: "status-led", MachineId: "press-1", X: 20, Y: 20, Width: 40, Height: 40},
	}
	statuses := map[string]models.Status{
		"status-led": models.StatusGreen,
	}
	Annotate(&frame, regions, statuses)

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(frame, &gray, gocv.ColorBGRToGray)
	if gocv.CountNonZero(gray) == 0 {
		t.Fatal("expected the annotation to draw onto a black frame")
	}
}

func TestAnnotateHandlesUnknownStatus(t *testing.T) {
	frame := gocv.NewMatWithSize(120, 160, gocv.MatTypeCV8UC3)
	defer frame.Close()

	regions := []models.Region{
		{Name: "warn-led", MachineId: "press-1", X: 20, Y: 20, Width: 40, Height: 40},
	}
	// No status recorded yet for the region, must not panic.
	Annotate(&frame, regions, map[string]models.Status{})
}

func TestStatusColorUsesFlashingBase(t *testing.T) {
	if statusColor(models.StatusFlashingRed) != statusColor(models.StatusRed) {
		t.Fatal("a flashing status must be drawn in its base color")
	}
	if statusColor(models.StatusOff) == statusColor(models.StatusGreen) {
		t.Fatal("off must not share the green color")
	}
}
