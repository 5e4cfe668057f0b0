package capture

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"gocv.io/x/gocv"
)

// ErrQueueTimeout is returned by Dequeue when no frame arrived in time.
var ErrQueueTimeout = errors.New("timed out waiting for a frame")

// Frame is one decoded video frame. The Mat is owned by whoever holds the
// Frame and must be closed after use.
type Frame struct {
	Mat  gocv.Mat
	Time time.Time
}

// FrameQueue is a bounded FIFO buffer between the acquisition loop and a
// consumer. When full, the oldest frame is discarded to make room for the
// new one: memory stays bounded and the consumer always sees fresh frames.
type FrameQueue struct {
	frames  chan Frame
	dropped int64
	mu      sync.Mutex
}

func NewFrameQueue(capacity int) *FrameQueue {
	if capacity <= 0 {
		capacity = 2
	}
	return &FrameQueue{
		frames: make(chan Frame, capacity),
	}
}

// Push inserts a frame, evicting the single oldest buffered frame first when
// the queue is full. Never blocks.
func (q *FrameQueue) Push(frame Frame) {
	q.mu.Lock()
	defer q.mu.Unlock()

	select {
	case q.frames <- frame:
		return
	default:
	}

	// Full: drop the oldest entry, then insert.
	select {
	case oldest := <-q.frames:
		oldest.Mat.Close()
		atomic.AddInt64(&q.dropped, 1)
	default:
	}
	q.frames <- frame
}

// Dequeue pulls one frame, blocking up to timeout.
func (q *FrameQueue) Dequeue(timeout time.Duration) (Frame, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case frame := <-q.frames:
		return frame, nil
	case <-timer.C:
		return Frame{}, ErrQueueTimeout
	}
}

// Drain discards and closes all buffered frames.
func (q *FrameQueue) Drain() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for {
		select {
		case frame := <-q.frames:
			frame.Mat.Close()
		default:
			return
		}
	}
}

func (q *FrameQueue) Size() int {
	return len(q.frames)
}

func (q *FrameQueue) Dropped() int64 {
	return atomic.LoadInt64(&q.dropped)
}
