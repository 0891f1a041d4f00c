//go:build linux

package gpio

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// RealSource streams edges from actual hardware using the Linux GPIO
// character device. Kernel-stamped events arrive on gpiocdev's event
// goroutine and are forwarded into a buffered channel; the decoder never
// runs inside the event handler.
type RealSource struct {
	chip    *gpiocdev.Chip
	line    *gpiocdev.Line
	events  chan Edge
	dropped atomic.Uint64
}

// NewRealSource requests the pin with both-edge event detection. buffer is
// the channel depth; a full frame is just over 80 edges, so the default
// leaves room for back-to-back transmissions.
func NewRealSource(chipName string, pin, buffer int) (*RealSource, error) {
	s := &RealSource{events: make(chan Edge, buffer)}

	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	line, err := chip.RequestLine(pin,
		gpiocdev.AsInput,
		gpiocdev.WithBothEdges,
		gpiocdev.WithEventHandler(s.handleEvent))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request pin %d: %w", pin, err)
	}

	s.chip = chip
	s.line = line
	return s, nil
}

// handleEvent converts a kernel line event to an Edge. The kernel stamps
// events with a monotonic nanosecond clock; truncating to 32-bit
// microseconds is fine because consumers subtract with wraparound.
func (s *RealSource) handleEvent(evt gpiocdev.LineEvent) {
	e := Edge{
		Rising: evt.Type == gpiocdev.LineEventRisingEdge,
		Ticks:  uint32(evt.Timestamp / time.Microsecond),
	}
	select {
	case s.events <- e:
	default:
		s.dropped.Add(1)
	}
}

// Events returns the edge stream.
func (s *RealSource) Events() <-chan Edge {
	return s.events
}

// Dropped returns the number of edges lost to a full channel.
func (s *RealSource) Dropped() uint64 {
	return s.dropped.Load()
}

// Close releases the line and chip. The event channel is not closed: the
// kernel may still deliver in-flight events during teardown.
func (s *RealSource) Close() error {
	var errs []error

	if s.line != nil {
		if err := s.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close line: %w", err))
		}
	}
	if s.chip != nil {
		if err := s.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
