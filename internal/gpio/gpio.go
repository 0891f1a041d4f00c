// Package gpio turns pin transitions into a stream of timestamped edge
// events with hardware abstraction. The real implementation uses the Linux
// GPIO character device; the fake implementation replays scripted edges for
// testing without hardware.
package gpio

// Edge is one pin transition. Rising reports the new level; Ticks is the
// event timestamp in microseconds, truncated to 32 bits. Consumers must
// subtract timestamps with unsigned wraparound arithmetic.
type Edge struct {
	Rising bool
	Ticks  uint32
}

// Source produces edge events from a single pin.
type Source interface {
	// Events returns the edge stream. The channel is closed when the
	// source stops producing (end of a fake script, or Close).
	Events() <-chan Edge

	// Dropped returns the number of edges discarded because the consumer
	// fell behind.
	Dropped() uint64

	// Close releases the pin and stops the stream.
	Close() error
}

// Defaults for a superheterodyne receiver module on a Raspberry Pi.
const (
	DefaultChip   = "gpiochip0"
	DefaultPin    = 17 // BCM numbering
	DefaultBuffer = 256
)
