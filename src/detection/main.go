// Classification of LED indicator regions inside camera frames. A frame is
// converted to HSV, each configured region is cropped and matched against
// the color bands of the supported statuses, and a per-region history window
// turns rapid alternation into a flashing status.
package detection

import (
	"image"
	"sync"

	"github.com/dromara/carbon/v2"
	"github.com/ledwatch/agent/src/log"
	"github.com/ledwatch/agent/src/models"
	"gocv.io/x/gocv"
)

const (
	defaultBrightnessThreshold = 30.0
	defaultMinConfidence       = 0.10
	defaultHistoryLength       = 10
	defaultFlashingThreshold   = 3
)

type colorBand struct {
	lower gocv.Scalar
	upper gocv.Scalar
}

// Hue bounds follow the OpenCV convention of hue in [0, 180]. Red wraps
// around zero, so it needs two bands whose masks are merged.
var (
	greenBand  = colorBand{gocv.NewScalar(35, 40, 40, 0), gocv.NewScalar(90, 255, 255, 0)}
	yellowBand = colorBand{gocv.NewScalar(15, 70, 70, 0), gocv.NewScalar(40, 255, 255, 0)}
	redLowBand = colorBand{gocv.NewScalar(0, 80, 60, 0), gocv.NewScalar(15, 255, 255, 0)}
	redHiBand  = colorBand{gocv.NewScalar(165, 80, 60, 0), gocv.NewScalar(180, 255, 255, 0)}
)

// Classifier evaluates LED regions and keeps the per-region status history
// needed for flashing detection. Safe for use from multiple goroutines.
type Classifier struct {
	brightnessThreshold float64
	minConfidence       float64
	historyLength       int
	flashingThreshold   int

	kernelOpen  gocv.Mat
	kernelClose gocv.Mat

	mu        sync.Mutex
	histories map[string]*statusRing
}

func NewClassifier(config models.DetectionConfig) *Classifier {
	classifier := &Classifier{
		brightnessThreshold: config.BrightnessThreshold,
		minConfidence:       config.MinConfidence,
		historyLength:       config.HistoryLength,
		flashingThreshold:   config.FlashingThreshold,
		kernelOpen:          gocv.GetStructuringElement(gocv.MorphRect, image.Pt(3, 3)),
		kernelClose:         gocv.GetStructuringElement(gocv.MorphRect, image.Pt(5, 5)),
		histories:           map[string]*statusRing{},
	}
	if classifier.brightnessThreshold <= 0 {
		classifier.brightnessThreshold = defaultBrightnessThreshold
	}
	if classifier.minConfidence <= 0 {
		classifier.minConfidence = defaultMinConfidence
	}
	if classifier.historyLength <= 0 {
		classifier.historyLength = defaultHistoryLength
	}
	if classifier.flashingThreshold <= 0 {
		classifier.flashingThreshold = defaultFlashingThreshold
	}
	return classifier
}

// Close releases the morphology kernels.
func (classifier *Classifier) Close() {
	classifier.kernelOpen.Close()
	classifier.kernelClose.Close()
}

// Classify evaluates a single region against a frame. The frame stays owned
// by the caller and is not modified.
func (classifier *Classifier) Classify(frame gocv.Mat, region models.Region) models.Detection {
	detection := models.Detection{
		Region:    region,
		Status:    models.StatusOff,
		Timestamp: carbon.Now().StdTime(),
	}

	status, confidence, brightness, ok := classifier.classifyColor(frame, region)
	if !ok {
		log.Log.Warning("detection.main.Classify(): region " + region.Name + " falls outside the frame, reporting off")
		detection.Confidence = 0
		return detection
	}

	detection.Brightness = brightness
	detection.Status = classifier.observe(region.Name, status)
	detection.Confidence = confidence
	return detection
}

// ClassifyAll evaluates every region of one camera against the same frame.
func (classifier *Classifier) ClassifyAll(frame gocv.Mat, regions []models.Region) []models.Detection {
	detections := make([]models.Detection, 0, len(regions))
	for _, region := range regions {
		detections = append(detections, classifier.Classify(frame, region))
	}
	return detections
}

// classifyColor runs the raw per-frame color decision without the flashing
// overlay. ok is false when the region crop is empty.
func (classifier *Classifier) classifyColor(frame gocv.Mat, region models.Region) (models.Status, float64, float64, bool) {
	if frame.Empty() {
		return models.StatusOff, 0, 0, false
	}

	bounds := image.Rect(region.X, region.Y, region.X+region.Width, region.Y+region.Height)
	bounds = bounds.Intersect(image.Rect(0, 0, frame.Cols(), frame.Rows()))
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return models.StatusOff, 0, 0, false
	}

	crop := frame.Region(bounds)
	defer crop.Close()

	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(crop, &hsv, gocv.ColorBGRToHSV)
	gocv.GaussianBlur(hsv, &hsv, image.Pt(5, 5), 0, 0, gocv.BorderDefault)

	brightness := meanValue(hsv)
	if brightness < classifier.brightnessThreshold {
		return models.StatusOff, 1.0, brightness, true
	}

	total := float64(bounds.Dx() * bounds.Dy())
	confidences := map[models.Status]float64{
		models.StatusGreen:  classifier.bandConfidence(hsv, total, greenBand),
		models.StatusYellow: classifier.bandConfidence(hsv, total, yellowBand),
		models.StatusRed:    classifier.bandConfidence(hsv, total, redLowBand, redHiBand),
	}

	best := models.StatusOff
	bestConfidence := 0.0
	for _, status := range []models.Status{models.StatusGreen, models.StatusYellow, models.StatusRed} {
		if confidences[status] > bestConfidence {
			best = status
			bestConfidence = confidences[status]
		}
	}

	if bestConfidence < classifier.minConfidence {
		return models.StatusOff, 1.0, brightness, true
	}
	return best, bestConfidence, brightness, true
}

// bandConfidence masks the HSV crop with one or more color bands, cleans the
// mask with an open and a close, and returns the matched pixel fraction.
func (classifier *Classifier) bandConfidence(hsv gocv.Mat, total float64, bands ...colorBand) float64 {
	mask := gocv.NewMat()
	defer mask.Close()
	gocv.InRangeWithScalar(hsv, bands[0].lower, bands[0].upper, &mask)

	for _, band := range bands[1:] {
		extra := gocv.NewMat()
		gocv.InRangeWithScalar(hsv, band.lower, band.upper, &extra)
		gocv.BitwiseOr(mask, extra, &mask)
		extra.Close()
	}

	gocv.MorphologyEx(mask, &mask, gocv.MorphOpen, classifier.kernelOpen)
	gocv.MorphologyEx(mask, &mask, gocv.MorphClose, classifier.kernelClose)

	if total <= 0 {
		return 0
	}
	return float64(gocv.CountNonZero(mask)) / total
}

// observe records a raw status in the region's window and applies the
// flashing overlay once the window is full.
func (classifier *Classifier) observe(regionName string, raw models.Status) models.Status {
	classifier.mu.Lock()
	defer classifier.mu.Unlock()

	ring, exists := classifier.histories[regionName]
	if !exists {
		ring = newStatusRing(classifier.historyLength)
		classifier.histories[regionName] = ring
	}
	ring.Push(raw)

	if !ring.Full() {
		return raw
	}
	return flashingOverlay(ring.Values(), raw, classifier.flashingThreshold)
}

// meanValue returns the mean of the HSV value channel.
func meanValue(hsv gocv.Mat) float64 {
	channels := gocv.Split(hsv)
	defer func() {
		for _, channel := range channels {
			channel.Close()
		}
	}()
	if len(channels) < 3 {
		return 0
	}
	return channels[2].Mean().Val1
}
