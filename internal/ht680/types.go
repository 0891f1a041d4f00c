// Package ht680 decodes the pulse-width-modulated trinary signal emitted by
// HT680/HT600-family remote-control encoder chips. The decoder consumes pin
// transitions (level + tick timestamp) from an external edge source and
// reconstructs the 18-bit information word: 2 sync bits followed by 16
// exposed address/data bits, each carrying 0, 1, or Z (floating).
//
// This package has NO external dependencies (no GPIO, MQTT, OS, or
// time.Sleep). Timestamps are always injected as tick counts.
package ht680

// State represents the decoder's position in the frame state machine.
type State uint8

const (
	// StateIdle means the decoder is waiting for a pilot signal.
	StateIdle State = iota
	// StateReading means a pilot was seen and symbol pairs are being decoded.
	StateReading
	// StateDone means a full frame is held until Reset is called.
	StateDone
)

// String returns the state name for logging and status display.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateReading:
		return "READING"
	case StateDone:
		return "DONE"
	}
	return "UNKNOWN"
}

const (
	// syncBits is the length of the SYNC field opening every frame.
	syncBits = 2
	// frameBits is the full frame: 2 sync + 18 payload symbol-pairs.
	frameBits = 20
	// DataBits is the number of exposed payload bits. The last two payload
	// positions are trailer bits the chip always transmits but never bonds
	// to a pin, so accessors skip them.
	DataBits = 16
)

// Stats counts decoder activity since construction. Counters survive Reset
// so a long-running consumer can track totals.
type Stats struct {
	// Frames is the number of completed frames.
	Frames uint64
	// Glitches is the number of edges rejected by the noise filter.
	Glitches uint64
	// Aborts is the number of frames abandoned on invalid timing.
	Aborts uint64
	// Resyncs is the number of mid-stream pilot restarts.
	Resyncs uint64
}

// thresholds holds the pulse-width windows derived at construction, in ticks.
// Immutable for the decoder's lifetime.
type thresholds struct {
	shortMin   uint16
	shortMax   uint16
	longMin    uint16
	longMax    uint16
	pilotMin   uint16
	noiseFloor uint16
}

func inRange(v, min, max uint16) bool {
	return v >= min && v <= max
}
