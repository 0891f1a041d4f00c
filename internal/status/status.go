// Package status provides a thread-safe status tracker for the ht680-rx
// daemon. It is read by HTTP handlers and snapshotted into MQTT system events.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/ht680-rx/internal/ht680"
)

// FrameInfo describes the most recently decoded frame.
type FrameInfo struct {
	Time    time.Time
	Value   uint16
	ZMask   uint16
	Trinary string
}

// Config contains daemon configuration for display.
type Config struct {
	Chip          string
	OscPreset     string
	FoscKHz       uint16
	Tolerance     float64
	TickUS        int64
	NoiseFilterUS int64
	Pin           int
	Broker        string
	HTTPAddr      string
	HeartbeatMs   int64
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type — safe to use after the lock is released.
type Snapshot struct {
	DecoderState  string
	Counts        ht680.Stats
	EdgesDropped  uint64
	LastFrame     *FrameInfo
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			DecoderState: ht680.StateIdle.String(),
			StartTime:    startTime,
			Config:       cfg,
		},
	}
}

// Update sets decoder state, activity counters, and dropped-edge count.
// Called from the run loop after each frame and on heartbeats.
func (t *Tracker) Update(state ht680.State, counts ht680.Stats, dropped uint64) {
	t.mu.Lock()
	t.snap.DecoderState = state.String()
	t.snap.Counts = counts
	t.snap.EdgesDropped = dropped
	t.mu.Unlock()
}

// SetLastFrame records the most recently decoded frame.
func (t *Tracker) SetLastFrame(frame FrameInfo) {
	t.mu.Lock()
	t.snap.LastFrame = &frame
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
