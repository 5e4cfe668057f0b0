package detection

import (
	"testing"

	"github.com/ledwatch/agent/src/models"
)

func TestStatusRingEvictsOldest(t *testing.T) {
	ring := newStatusRing(3)
	ring.Push(models.StatusGreen)
	ring.Push(models.StatusRed)
	ring.Push(models.StatusOff)
	ring.Push(models.StatusYellow)

	values := ring.Values()
	if len(values) != 3 {
		t.Fatalf("expected a window of 3, got %d", len(values))
	}
	if values[0] != models.StatusRed || values[2] != models.StatusYellow {
		t.Fatalf("unexpected window order: %v", values)
	}
}

func TestStatusRingNotFullBeforeCapacity(t *testing.T) {
	ring := newStatusRing(5)
	ring.Push(models.StatusGreen)
	ring.Push(models.StatusGreen)
	if ring.Full() {
		t.Fatal("ring should not report full with 2 of 5 entries")
	}
}

func TestFlashingOverlayDetectsAlternation(t *testing.T) {
	history := []models.Status{
		models.StatusRed, models.StatusOff, models.StatusRed, models.StatusOff,
		models.StatusRed, models.StatusOff, models.StatusRed, models.StatusOff,
		models.StatusRed, models.StatusOff,
	}
	status := flashingOverlay(history, models.StatusOff, 3)
	if status != models.StatusFlashingRed {
		t.Fatalf("expected %s, got %s", models.StatusFlashingRed, status)
	}
}

func TestFlashingOverlayIgnoresStableColor(t *testing.T) {
	history := make([]models.Status, 10)
	for i := range history {
		history[i] = models.StatusGreen
	}
	status := flashingOverlay(history, models.StatusGreen, 3)
	if status != models.StatusGreen {
		t.Fatalf("expected steady %s, got %s", models.StatusGreen, status)
	}
}

func TestFlashingOverlayNeedsNonOffBase(t *testing.T) {
	history := make([]models.Status, 10)
	for i := range history {
		history[i] = models.StatusOff
	}
	history[3] = models.StatusOff
	status := flashingOverlay(history, models.StatusOff, 3)
	if status != models.StatusOff {
		t.Fatalf("expected %s, got %s", models.StatusOff, status)
	}
}

func TestObserveOverlaysOnceWindowIsFull(t *testing.T) {
	classifier := NewClassifier(models.DetectionConfig{
		HistoryLength:     4,
		FlashingThreshold: 3,
	})
	defer classifier.Close()

	sequence := []models.Status{
		models.StatusGreen, models.StatusOff, models.StatusGreen, models.StatusOff,
	}
	var last models.Status
	for _, raw := range sequence {
		last = classifier.observe("press-12", raw)
	}
	if last != models.StatusFlashingGreen {
		t.Fatalf("expected %s after alternation, got %s", models.StatusFlashingGreen, last)
	}
}
