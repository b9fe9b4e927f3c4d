package core

import (
	"math"
	"testing"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out float64
		ok  bool
	}{
		{"1", 1, true},
		{"1.23", 1.23, true},
		{"1,23", 1.23, true},
		{"1.234,50", 1234.5, true},
		{" 2.50 ", 2.5, true},
		{"5000", 5000, true},
		{"-1", 0, false},
		{"0", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %v, got %v (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestRoundAmount(t *testing.T) {
	if got := RoundAmount(1234.56, "COP"); got != 1235 {
		t.Fatalf("COP rounding: %v", got)
	}
	if got := RoundAmount(12.345, "USD"); got != 12.35 {
		t.Fatalf("USD rounding: %v", got)
	}
	if got := RoundAmount(math.NaN(), "USD"); !math.IsNaN(got) {
		t.Fatalf("NaN should pass through, got %v", got)
	}
}
