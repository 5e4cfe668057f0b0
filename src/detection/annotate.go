package detection

import (
	"image"
	"image/color"

	"github.com/ledwatch/agent/src/models"
	"gocv.io/x/gocv"
)

var offColor = color.RGBA{R: 128, G: 128, B: 128, A: 255}

func statusColor(status models.Status) color.RGBA {
	switch status.Base() {
	case models.StatusGreen:
		return color.RGBA{G: 255, A: 255}
	case models.StatusYellow:
		return color.RGBA{R: 255, G: 255, A: 255}
	case models.StatusRed:
		return color.RGBA{R: 255, A: 255}
	}
	return offColor
}

// Annotate draws every region on the frame, a rectangle in its status color
// with a name/status label above it. Regions without a known status are
// drawn in the off color. The frame is modified in place.
func Annotate(frame *gocv.Mat, regions []models.Region, statuses map[string]models.Status) {
	if frame == nil || frame.Empty() {
		return
	}

	for _, region := range regions {
		status, known := statuses[region.Name]
		if !known {
			status = models.StatusUnknown
		}
		rectColor := statusColor(status)

		bounds := image.Rect(region.X, region.Y, region.X+region.Width, region.Y+region.Height)
		gocv.Rectangle(frame, bounds, rectColor, 2)

		label := region.Name + " " + string(status)
		labelOrigin := image.Pt(region.X, region.Y-6)
		if labelOrigin.Y < 12 {
			labelOrigin.Y = region.Y + region.Height + 14
		}
		gocv.PutText(frame, label, labelOrigin, gocv.FontHersheySimplex, 0.4, rectColor, 1)
	}
}
