package ht680

import (
	"fmt"
	"math"
)

// Decoder reconstructs HT680-family information words from pin edges.
//
// One instance decodes one pin. HandleEdge must not be called concurrently
// with itself; the intended deployment is a single goroutine draining an
// edge channel, which also serializes HandleEdge against the accessors and
// Reset.
type Decoder struct {
	th thresholds

	state       State
	lastTick    uint32
	periodLow   uint16
	periodHigh  uint16
	bitIndex    int
	halfPending bool
	pendingSym  bool

	// Parallel per-position buffers for the 20 frame bits. Positions 0-1
	// are the SYNC field and are never stored; payload lands at its frame
	// position directly.
	values [frameBits]bool
	zbits  [frameBits]bool

	stats Stats
}

// New derives the decoder's timing windows from the chip's oscillator
// frequency and the consumer's clock.
//
// The HT680 protocol defines one symbol-unit T as 1/33 of the oscillator
// period, i.e. T = (33000 / foscKHz) microseconds. A "short" pulse is 1T, a
// "long" pulse 2T, and a transmission opens with a low pilot pulse of at
// least 36T. tolerance widens each window symmetrically; tickLengthUS is the
// duration of one timestamp tick and noiseFilterUS the minimum pulse width
// accepted as a real transition, both in microseconds.
//
// New rejects configurations whose short and long windows overlap
// (tolerance >= 1/3), since classification is ill-defined there.
func New(foscKHz uint16, tolerance float64, tickLengthUS, noiseFilterUS uint16) (*Decoder, error) {
	if foscKHz == 0 {
		return nil, fmt.Errorf("ht680: oscillator frequency must be non-zero")
	}
	if tickLengthUS == 0 {
		return nil, fmt.Errorf("ht680: tick length must be non-zero")
	}
	if tolerance < 0 || tolerance >= 1 {
		return nil, fmt.Errorf("ht680: tolerance %v outside [0,1)", tolerance)
	}

	basePeriodUS := 33000.0 / float64(foscKHz)
	t := basePeriodUS / float64(tickLengthUS)

	// Tolerance is applied as a whole percentage, matching the datasheet's
	// integer-percent timing tables and keeping the window arithmetic exact
	// for round tick periods.
	pct := math.Round(tolerance * 100)

	th := thresholds{
		shortMin:   uint16(t * (100 - pct) / 100),
		shortMax:   uint16(t * (100 + pct) / 100),
		longMin:    uint16(t * 2 * (100 - pct) / 100),
		longMax:    uint16(t * 2 * (100 + pct) / 100),
		pilotMin:   uint16(t * 36 * (100 - pct) / 100),
		noiseFloor: uint16(float64(noiseFilterUS) / float64(tickLengthUS)),
	}

	if th.shortMin == 0 {
		return nil, fmt.Errorf("ht680: symbol period %v ticks too small for tick length %dus", t, tickLengthUS)
	}
	if th.shortMax >= th.longMin {
		return nil, fmt.Errorf("ht680: tolerance %v overlaps short window [%d,%d] and long window [%d,%d]",
			tolerance, th.shortMin, th.shortMax, th.longMin, th.longMax)
	}

	d := &Decoder{th: th}
	d.Reset()
	return d, nil
}

// HandleEdge feeds one pin transition to the decoder. rising reports the new
// pin level; ticks is the transition timestamp. Deltas are computed with
// unsigned wraparound subtraction, so the tick counter may roll over freely.
//
// While the decoder is in StateDone the event is ignored: a completed frame
// is frozen until the consumer drains it and calls Reset.
func (d *Decoder) HandleEdge(rising bool, ticks uint32) {
	if d.state == StateDone {
		return
	}

	delta := ticks - d.lastTick
	if delta < uint32(d.th.noiseFloor) {
		// Glitch: too close to the previous transition. The timestamp is
		// not consumed, so the surrounding pulse stays intact.
		d.stats.Glitches++
		return
	}
	d.lastTick = ticks

	if rising {
		// The interval that just ended was the low half-period. Decoding
		// continues on the matching falling edge.
		d.periodLow = saturate16(delta)
		return
	}
	d.periodHigh = saturate16(delta)

	if d.state == StateIdle {
		// A pilot is a long low pulse followed by a short high pulse.
		if d.periodLow > d.th.pilotMin && inRange(d.periodHigh, d.th.shortMin, d.th.shortMax) {
			d.state = StateReading
			d.bitIndex = 0
			d.halfPending = false
		}
		return
	}

	// StateReading: classify the completed low/high pulse pair as a symbol.
	var sym bool
	switch {
	case inRange(d.periodLow, d.th.shortMin, d.th.shortMax) && inRange(d.periodHigh, d.th.longMin, d.th.longMax):
		sym = false
	case inRange(d.periodLow, d.th.longMin, d.th.longMax) && inRange(d.periodHigh, d.th.shortMin, d.th.shortMax):
		sym = true
	case d.periodLow > d.th.pilotMin && inRange(d.periodHigh, d.th.shortMin, d.th.shortMax):
		// A fresh pilot mid-frame: noise clobbered the first transmission
		// or two transmissions overlapped. Restart bit counting without
		// dropping back to Idle.
		d.bitIndex = 0
		d.halfPending = false
		d.stats.Resyncs++
		return
	default:
		d.state = StateIdle
		d.stats.Aborts++
		return
	}

	// Each logical bit is two consecutive symbols.
	if !d.halfPending {
		d.halfPending = true
		d.pendingSym = sym
		return
	}
	d.halfPending = false

	if d.bitIndex < syncBits {
		// SYNC field: only the (0,1) pair is valid.
		if !d.pendingSym && sym {
			d.bitIndex++
			return
		}
		d.state = StateIdle
		d.stats.Aborts++
		return
	}

	switch {
	case !d.pendingSym && !sym:
		d.values[d.bitIndex] = false
		d.zbits[d.bitIndex] = false
	case d.pendingSym && sym:
		d.values[d.bitIndex] = true
		d.zbits[d.bitIndex] = false
	case d.pendingSym && !sym:
		// Floating pin: the value buffer is meaningless for this position.
		d.values[d.bitIndex] = false
		d.zbits[d.bitIndex] = true
	default:
		// (0,1) is only legal in the SYNC field.
		d.state = StateIdle
		d.stats.Aborts++
		return
	}

	d.bitIndex++
	if d.bitIndex >= frameBits {
		d.state = StateDone
		d.stats.Frames++
	}
}

// Ready reports whether a complete frame is held.
func (d *Decoder) Ready() bool {
	return d.state == StateDone
}

// State returns the current state machine position.
func (d *Decoder) State() State {
	return d.state
}

// Stats returns a copy of the activity counters.
func (d *Decoder) Stats() Stats {
	return d.stats
}

// Value returns the 16 exposed payload bits. Floating positions read as
// zFill; bit 0 of the result is the first payload bit decoded.
//
// Callers must check Ready first: before a frame completes this is a
// well-defined but meaningless snapshot of a partially filled buffer.
func (d *Decoder) Value(zFill bool) uint16 {
	var result uint16
	for i := 0; i < DataBits; i++ {
		pos := i + syncBits
		if d.zbits[pos] {
			if zFill {
				result |= 1 << i
			}
		} else if d.values[pos] {
			result |= 1 << i
		}
	}
	return result
}

// ZMask returns the floating-bit mask for the 16 exposed payload bits:
// zIsOne at floating positions and its inverse elsewhere. The same
// Ready precondition as Value applies.
func (d *Decoder) ZMask(zIsOne bool) uint16 {
	var result uint16
	for i := 0; i < DataBits; i++ {
		if d.zbits[i+syncBits] == zIsOne {
			result |= 1 << i
		}
	}
	return result
}

// Reset unconditionally re-arms the decoder: back to StateIdle with cleared
// buffers and timing bookkeeping. Required after draining a StateDone frame;
// calling it mid-frame is a valid abort, and repeated calls are idempotent.
// Stats counters are preserved.
func (d *Decoder) Reset() {
	d.state = StateIdle
	d.bitIndex = 0
	d.halfPending = false
	d.pendingSym = false
	d.lastTick = 0
	d.periodLow = 0
	d.periodHigh = 0
	d.values = [frameBits]bool{}
	d.zbits = [frameBits]bool{}
}

func saturate16(v uint32) uint16 {
	if v > 0xFFFF {
		return 0xFFFF
	}
	return uint16(v)
}
