package detection

import "github.com/ledwatch/agent/src/models"

// statusRing is a fixed-capacity window of the last raw per-frame statuses
// of one region, with O(1) push-and-evict. Only used for flashing detection
// and never exposed outside the classifier.
type statusRing struct {
	entries []models.Status
	head    int
	count   int
}

func newStatusRing(capacity int) *statusRing {
	if capacity <= 0 {
		capacity = defaultHistoryLength
	}
	return &statusRing{
		entries: make([]models.Status, capacity),
	}
}

// Push appends a status, evicting the oldest entry when the window is full.
func (ring *statusRing) Push(status models.Status) {
	ring.entries[ring.head] = status
	ring.head = (ring.head + 1) % len(ring.entries)
	if ring.count < len(ring.entries) {
		ring.count++
	}
}

func (ring *statusRing) Full() bool {
	return ring.count == len(ring.entries)
}

// Values returns the window ordered oldest to newest.
func (ring *statusRing) Values() []models.Status {
	values := make([]models.Status, 0, ring.count)
	start := ring.head - ring.count
	if start < 0 {
		start += len(ring.entries)
	}
	for i := 0; i < ring.count; i++ {
		values = append(values, ring.entries[(start+i)%len(ring.entries)])
	}
	return values
}

// flashingOverlay turns a raw color into its flashing variant when the
// window shows enough adjacent changes around a non-off base color. The
// overlay is only evaluated on a full window; before that the raw status
// stands.
func flashingOverlay(history []models.Status, raw models.Status, threshold int) models.Status {
	changes := 0
	var base models.Status

	for i := 1; i < len(history); i++ {
		if history[i] == history[i-1] {
			continue
		}
		changes++
		switch history[i] {
		case models.StatusGreen, models.StatusYellow, models.StatusRed:
			base = history[i]
		}
	}

	if changes >= threshold && base != "" {
		return base.Flashing()
	}
	return raw
}
