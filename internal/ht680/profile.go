package ht680

import (
	"fmt"
	"strings"
)

// Chip describes how an HT680-family part splits the 16 exposed payload bits
// between address and data, and which positions are hard-wired floating
// (unbonded pins always transmit Z). The decoder itself is chip-agnostic;
// profiles only label frames for the consumer.
type Chip struct {
	Name        string
	AddressBits int
	DataBits    int
	// FixedZ marks exposed payload positions that the part always
	// transmits as floating.
	FixedZ uint16
}

var chips = []Chip{
	// HT600: 9 address + 5 address/data; A5, A10 unbonded (AD17 falls in
	// the unexposed trailer).
	{Name: "HT600", AddressBits: 9, DataBits: 5, FixedZ: 1<<5 | 1<<10},
	// HT680: 8 address + 4 address/data; A4, A5, A10 unbonded.
	{Name: "HT680", AddressBits: 8, DataBits: 4, FixedZ: 1<<4 | 1<<5 | 1<<10},
	// HT6207: 10 address + 4 data; A5, A10 unbonded. Transmission is
	// data-triggered rather than TE-triggered, which does not affect
	// decoding.
	{Name: "HT6207", AddressBits: 10, DataBits: 4, FixedZ: 1<<5 | 1<<10},
}

// ChipByName returns the profile for a part name (case-insensitive).
func ChipByName(name string) (Chip, error) {
	for _, c := range chips {
		if strings.EqualFold(c.Name, name) {
			return c, nil
		}
	}
	names := make([]string, len(chips))
	for i, c := range chips {
		names[i] = c.Name
	}
	return Chip{}, fmt.Errorf("ht680: unknown chip %q (have %s)", name, strings.Join(names, ", "))
}

// Trinary renders a decoded frame as a 16-character string, first payload
// bit on the left: '0', '1', or 'Z' per position. zMask must use Z=1
// polarity (ZMask(true)).
func Trinary(value, zMask uint16) string {
	var b strings.Builder
	b.Grow(DataBits)
	for i := 0; i < DataBits; i++ {
		switch {
		case zMask&(1<<i) != 0:
			b.WriteByte('Z')
		case value&(1<<i) != 0:
			b.WriteByte('1')
		default:
			b.WriteByte('0')
		}
	}
	return b.String()
}
