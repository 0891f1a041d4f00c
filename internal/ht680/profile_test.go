package ht680

import "testing"

func TestChipByName(t *testing.T) {
	chip, err := ChipByName("ht680")
	if err != nil {
		t.Fatalf("ChipByName(ht680) returned error: %v", err)
	}
	if chip.Name != "HT680" {
		t.Errorf("Name = %s, want HT680", chip.Name)
	}
	if chip.AddressBits != 8 || chip.DataBits != 4 {
		t.Errorf("bits = %d+%d, want 8+4", chip.AddressBits, chip.DataBits)
	}
	if chip.FixedZ != 1<<4|1<<5|1<<10 {
		t.Errorf("FixedZ = %#04x, want bits 4,5,10", chip.FixedZ)
	}

	if _, err := ChipByName("HT999"); err == nil {
		t.Error("ChipByName(HT999) should return an error")
	}
}

func TestTrinary(t *testing.T) {
	cases := []struct {
		value uint16
		zMask uint16
		want  string
	}{
		{0, 0, "0000000000000000"},
		{0xFFFF, 0, "1111111111111111"},
		{0, 0xFFFF, "ZZZZZZZZZZZZZZZZ"},
		{0x0005, 1 << 4, "1010Z00000000000"},
		{0xABCD, 1<<4 | 1<<9, "1011Z0111Z010101"},
	}
	for _, tc := range cases {
		if got := Trinary(tc.value, tc.zMask); got != tc.want {
			t.Errorf("Trinary(%#04x, %#04x) = %q, want %q", tc.value, tc.zMask, got, tc.want)
		}
	}
}
