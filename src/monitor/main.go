// The monitor drives the pipeline: per camera loops pull the latest frame at
// a fixed cadence, run the classifier, and hand the results to the
// aggregator, which turns status changes into transitions and notifications.
package monitor

import (
	"fmt"
	"sync"
	"time"

	"github.com/dromara/carbon/v2"
	"github.com/gofrs/uuid"
	"github.com/ledwatch/agent/src/capture"
	"github.com/ledwatch/agent/src/detection"
	"github.com/ledwatch/agent/src/log"
	"github.com/ledwatch/agent/src/models"
	"github.com/ledwatch/agent/src/notifications"
	"github.com/ledwatch/agent/src/storage"
	"github.com/tevino/abool"
)

const (
	defaultMonitoringFPS     = 2.0
	defaultTransitionHistory = 50
)

// Aggregator tracks the last known status of every region and emits a
// transition only when the status actually changes. A region's first
// observation counts as a change from unknown.
type Aggregator struct {
	mu             sync.RWMutex
	last           map[string]map[string]models.Status
	transitions    []models.StatusTransition
	maxTransitions int
	notifier       *notifications.Manager
	store          *storage.Storage
}

func NewAggregator(config models.MonitorConfig, notifier *notifications.Manager, store *storage.Storage) *Aggregator {
	maxTransitions := config.TransitionHistory
	if maxTransitions <= 0 {
		maxTransitions = defaultTransitionHistory
	}
	return &Aggregator{
		last:           map[string]map[string]models.Status{},
		maxTransitions: maxTransitions,
		notifier:       notifier,
		store:          store,
	}
}

// Process compares a detection against the region's last known status and,
// on a change, records the transition and fans out a notification.
func (aggregator *Aggregator) Process(cameraId string, detection models.Detection) {
	aggregator.mu.Lock()

	regions, exists := aggregator.last[cameraId]
	if !exists {
		regions = map[string]models.Status{}
		aggregator.last[cameraId] = regions
	}

	oldStatus, seen := regions[detection.Region.Name]
	if !seen {
		oldStatus = models.StatusUnknown
	}
	if seen && oldStatus == detection.Status {
		aggregator.mu.Unlock()
		return
	}
	regions[detection.Region.Name] = detection.Status

	transition := models.StatusTransition{
		CameraId:   cameraId,
		MachineId:  detection.Region.MachineId,
		RegionName: detection.Region.Name,
		OldStatus:  oldStatus,
		NewStatus:  detection.Status,
		Confidence: detection.Confidence,
		Brightness: detection.Brightness,
		Timestamp:  carbon.CreateFromStdTime(detection.Timestamp).ToIso8601String(),
	}
	aggregator.transitions = append(aggregator.transitions, transition)
	if len(aggregator.transitions) > aggregator.maxTransitions {
		aggregator.transitions = aggregator.transitions[len(aggregator.transitions)-aggregator.maxTransitions:]
	}
	aggregator.mu.Unlock()

	log.Log.Info("monitor.main.Process(): " + cameraId + "/" + transition.RegionName + " changed " + string(oldStatus) + " -> " + string(detection.Status))

	if aggregator.store != nil {
		aggregator.store.Record(transition)
	}
	if aggregator.notifier != nil {
		aggregator.notifier.Notify(eventFromTransition(transition))
	}
}

// CurrentStatus returns a copy of the last known status per camera and
// region.
func (aggregator *Aggregator) CurrentStatus() map[string]map[string]models.Status {
	aggregator.mu.RLock()
	defer aggregator.mu.RUnlock()

	snapshot := map[string]map[string]models.Status{}
	for cameraId, regions := range aggregator.last {
		snapshot[cameraId] = map[string]models.Status{}
		for name, status := range regions {
			snapshot[cameraId][name] = status
		}
	}
	return snapshot
}

// Transitions returns the most recent transitions, newest first.
func (aggregator *Aggregator) Transitions(limit int) []models.StatusTransition {
	aggregator.mu.RLock()
	defer aggregator.mu.RUnlock()

	count := len(aggregator.transitions)
	if limit > 0 && limit < count {
		count = limit
	}
	transitions := make([]models.StatusTransition, 0, count)
	for i := len(aggregator.transitions) - 1; i >= len(aggregator.transitions)-count; i-- {
		transitions = append(transitions, aggregator.transitions[i])
	}
	return transitions
}

func eventFromTransition(transition models.StatusTransition) models.NotificationEvent {
	id := ""
	if eventId, err := uuid.NewV4(); err == nil {
		id = eventId.String()
	}
	return models.NotificationEvent{
		Id:       id,
		Title:    "Machine " + transition.MachineId + " " + transition.RegionName + ": " + string(transition.OldStatus) + " -> " + string(transition.NewStatus),
		Message: "Machine " + transition.MachineId + " (" + transition.RegionName + " on camera " + transition.CameraId + ") changed from " +
			string(transition.OldStatus) + " to " + string(transition.NewStatus) + " at " + transition.Timestamp,
		Priority: transition.NewStatus.Priority(),
		Metadata: map[string]string{
			"camera_id":  transition.CameraId,
			"machine_id": transition.MachineId,
			"region":     transition.RegionName,
			"old_status": string(transition.OldStatus),
			"new_status": string(transition.NewStatus),
			"confidence": fmt.Sprintf("%.2f", transition.Confidence),
			"timestamp":  transition.Timestamp,
		},
	}
}

// Monitor owns one watch loop per camera.
type Monitor struct {
	capture    *capture.Capture
	classifier *detection.Classifier
	aggregator *Aggregator
	interval   time.Duration
	running    *abool.AtomicBool
	stop       chan struct{}
	wg         sync.WaitGroup
}

func New(captures *capture.Capture, classifier *detection.Classifier, aggregator *Aggregator, config models.MonitorConfig) *Monitor {
	fps := config.FPS
	if fps <= 0 {
		fps = defaultMonitoringFPS
	}
	return &Monitor{
		capture:    captures,
		classifier: classifier,
		aggregator: aggregator,
		interval:   time.Duration(float64(time.Second) / fps),
		running:    abool.New(),
		stop:       make(chan struct{}),
	}
}

// Start spawns one watch loop per camera.
func (monitor *Monitor) Start(cameras []models.Camera) {
	if !monitor.running.SetToIf(false, true) {
		return
	}
	for _, camera := range cameras {
		monitor.wg.Add(1)
		go monitor.watch(camera)
	}
	log.Log.Info("monitor.main.Start(): watching " + fmt.Sprintf("%d", len(cameras)) + " cameras at interval " + monitor.interval.String())
}

func (monitor *Monitor) watch(camera models.Camera) {
	defer monitor.wg.Done()

	ticker := time.NewTicker(monitor.interval)
	defer ticker.Stop()

	for {
		select {
		case <-monitor.stop:
			return
		case <-ticker.C:
			frame, ok := monitor.capture.LatestFrame(camera.Id)
			if !ok {
				continue
			}
			detections := monitor.classifier.ClassifyAll(frame, camera.Regions)
			frame.Close()
			for _, result := range detections {
				monitor.aggregator.Process(camera.Id, result)
			}
		}
	}
}

// Stop terminates every watch loop and waits for them to exit.
func (monitor *Monitor) Stop() {
	if !monitor.running.SetToIf(true, false) {
		return
	}
	close(monitor.stop)
	monitor.wg.Wait()
	log.Log.Info("monitor.main.Stop(): all watch loops stopped")
}
