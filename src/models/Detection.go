package models

import "time"

// Status is the discrete classification of a LED region.
type Status string

const (
	StatusOff            Status = "off"
	StatusGreen          Status = "green"
	StatusYellow         Status = "yellow"
	StatusRed            Status = "red"
	StatusFlashingGreen  Status = "flashing_green"
	StatusFlashingYellow Status = "flashing_yellow"
	StatusFlashingRed    Status = "flashing_red"

	// StatusUnknown is never produced by the classifier, it only appears
	// as the old status of a region's first observed transition.
	StatusUnknown Status = "unknown"
)

// Flashing returns the flashing variant of a steady color, or the status
// itself when there is no such variant (off and the flashing states).
func (s Status) Flashing() Status {
	switch s {
	case StatusGreen:
		return StatusFlashingGreen
	case StatusYellow:
		return StatusFlashingYellow
	case StatusRed:
		return StatusFlashingRed
	}
	return s
}

// Base strips the flashing overlay off a status, returning the steady color
// it alternates around.
func (s Status) Base() Status {
	switch s {
	case StatusFlashingGreen:
		return StatusGreen
	case StatusFlashingYellow:
		return StatusYellow
	case StatusFlashingRed:
		return StatusRed
	}
	return s
}

// Priority maps a status onto a notification priority class. Red means the
// machine raised an error, yellow and off need an operator to have a look,
// green is informational.
func (s Status) Priority() string {
	switch s {
	case StatusRed, StatusFlashingRed:
		return PriorityHigh
	case StatusYellow, StatusFlashingYellow, StatusOff:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Detection is the result of classifying one region on one frame. It is
// ephemeral: produced by the classifier and consumed immediately by the
// monitor, never stored by the core.
type Detection struct {
	Region     Region    `json:"region"`
	Status     Status    `json:"status"`
	Confidence float64   `json:"confidence"`
	Brightness float64   `json:"brightness"`
	Timestamp  time.Time `json:"timestamp"`
}

// StatusTransition records one observed status change of a region, the unit
// that triggers a notification.
type StatusTransition struct {
	CameraId   string  `json:"camera_id"`
	MachineId  string  `json:"machine_id"`
	RegionName string  `json:"region_name"`
	OldStatus  Status  `json:"old_status"`
	NewStatus  Status  `json:"new_status"`
	Confidence float64 `json:"confidence"`
	Brightness float64 `json:"brightness"`
	Timestamp  string  `json:"timestamp"`
}

// NotificationEvent is one logical event handed to the notification fan-out.
// Immutable once constructed.
type NotificationEvent struct {
	Id       string            `json:"id"`
	Title    string            `json:"title"`
	Message  string            `json:"message"`
	Priority string            `json:"priority"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// StreamStats are the runtime counters of one camera connection, exposed on
// the stats endpoint and used for health polling.
type StreamStats struct {
	FramesReceived   int64   `json:"frames_received"`
	FramesDropped    int64   `json:"frames_dropped"`
	ConnectionErrors int64   `json:"connection_errors"`
	LastFPS          float64 `json:"last_fps"`
	Connected        bool    `json:"is_connected"`
	QueueSize        int     `json:"queue_size"`
	LastFrameAge     float64 `json:"last_frame_age"`
}
