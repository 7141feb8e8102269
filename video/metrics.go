package video

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// TimeProvider abstracts time operations for deterministic testing.
// Implementations must be safe for concurrent use.
type TimeProvider interface {
	Now() time.Time
	Since(t time.Time) time.Duration
}

// DefaultTimeProvider uses the standard library time functions.
type DefaultTimeProvider struct{}

// Now returns the current time.
func (DefaultTimeProvider) Now() time.Time { return time.Now() }

// Since returns the duration since the given time.
func (DefaultTimeProvider) Since(t time.Time) time.Duration { return time.Since(t) }

// ProcessingMetrics contains frame processing statistics for one Processor.
type ProcessingMetrics struct {
	FramesProcessed int64         // Frames that completed every stage
	FramesFailed    int64         // Frames rejected by a stage
	AvgFrameTime    time.Duration // Exponential moving average of processing time
	PeakFrameTime   time.Duration // Maximum observed processing time
	LastFrameIndex  int64         // Index of the most recent successful frame
}

// metricsRecorder collects ProcessingMetrics with lock-free counters and a
// small lock around the timing figures.
type metricsRecorder struct {
	processed int64
	failed    int64
	lastIndex int64

	mu       sync.RWMutex
	avgTime  time.Duration
	peakTime time.Duration
}

// recordSuccess counts a processed frame and folds its duration into the
// moving average.
func (mr *metricsRecorder) recordSuccess(index int64, elapsed time.Duration) {
	atomic.AddInt64(&mr.processed, 1)
	atomic.StoreInt64(&mr.lastIndex, index)

	mr.mu.Lock()
	defer mr.mu.Unlock()

	// EMA with alpha = 0.1
	if mr.avgTime == 0 {
		mr.avgTime = elapsed
	} else {
		mr.avgTime = time.Duration(float64(mr.avgTime)*0.9 + float64(elapsed)*0.1)
	}
	if elapsed > mr.peakTime {
		mr.peakTime = elapsed
	}
}

func (mr *metricsRecorder) recordFailure() {
	atomic.AddInt64(&mr.failed, 1)
}

func (mr *metricsRecorder) snapshot() ProcessingMetrics {
	mr.mu.RLock()
	defer mr.mu.RUnlock()

	return ProcessingMetrics{
		FramesProcessed: atomic.LoadInt64(&mr.processed),
		FramesFailed:    atomic.LoadInt64(&mr.failed),
		AvgFrameTime:    mr.avgTime,
		PeakFrameTime:   mr.peakTime,
		LastFrameIndex:  atomic.LoadInt64(&mr.lastIndex),
	}
}

func (mr *metricsRecorder) reset() {
	logrus.WithFields(logrus.Fields{
		"function": "ResetMetrics",
	}).Info("Resetting processing metrics")

	atomic.StoreInt64(&mr.processed, 0)
	atomic.StoreInt64(&mr.failed, 0)
	atomic.StoreInt64(&mr.lastIndex, 0)

	mr.mu.Lock()
	mr.avgTime = 0
	mr.peakTime = 0
	mr.mu.Unlock()
}
