package ht680

import (
	"fmt"
	"sort"
	"strings"
)

// Recommended operating parameters from the HT680 datasheet notes. A
// tolerance much above 30% pushes the short and long windows together.
const (
	DefaultTolerance     = 0.30
	DefaultTickLengthUS  = 1
	DefaultNoiseFilterUS = 50
)

// oscPresets maps the transmitter's oscillator resistor value to the
// approximate oscillation frequency in kHz at 12V supply. The higher the
// frequency, the more sensitive it is to supply voltage; 330K (100 kHz) is
// the datasheet reference.
var oscPresets = map[string]uint16{
	"120K": 265,
	"150K": 215,
	"180K": 180,
	"220K": 150,
	"270K": 120,
	"330K": 100,
	"390K": 85,
	"470K": 70,
	"560K": 60,
	"680K": 50,
	"820K": 40,
	"1M0":  33,
	"1M5":  22,
	"2M0":  16,
}

// OscPreset returns the oscillator frequency in kHz for a named resistor
// preset (e.g. "390K", "1M0"). Lookup is case-insensitive.
func OscPreset(name string) (uint16, error) {
	fosc, ok := oscPresets[strings.ToUpper(name)]
	if !ok {
		return 0, fmt.Errorf("ht680: unknown oscillator preset %q (have %s)", name, strings.Join(PresetNames(), ", "))
	}
	return fosc, nil
}

// PresetNames returns the known resistor presets, sorted by frequency.
func PresetNames() []string {
	names := make([]string, 0, len(oscPresets))
	for name := range oscPresets {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return oscPresets[names[i]] > oscPresets[names[j]]
	})
	return names
}
