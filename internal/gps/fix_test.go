package gps

import (
	"math"
	"testing"
	"time"
)

func TestParseDegreesMinutes(t *testing.T) {
	cases := []struct {
		value, hemi string
		want        float64
	}{
		{"4807.038", "N", 48.1173},
		{"01131.000", "E", 11.516666666666667},
		{"3352.128", "S", -33.8688},
		{"15112.558", "W", -151.20930},
		{"0000.000", "N", 0},
	}
	for _, tc := range cases {
		got, err := ParseDegreesMinutes(tc.value, tc.hemi)
		if err != nil {
			t.Fatalf("%s%s: %v", tc.value, tc.hemi, err)
		}
		if math.Abs(got-tc.want) > 1e-6 {
			t.Fatalf("%s%s: got %v want %v", tc.value, tc.hemi, got, tc.want)
		}
	}
}

func TestParseDegreesMinutes_Errors(t *testing.T) {
	for _, tc := range [][2]string{
		{"", "N"},
		{"abc", "N"},
		{"4860.000", "N"},
		{"4807.038", "X"},
		{"-4807.038", "N"},
	} {
		if _, err := ParseDegreesMinutes(tc[0], tc[1]); err == nil {
			t.Fatalf("%q %q: expected error", tc[0], tc[1])
		}
	}
}

func TestFixAge(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 30, 0, time.UTC)
	f := Fix{Time: now.Add(-30 * time.Second)}
	if f.Age(now) != 30*time.Second {
		t.Fatalf("age=%s", f.Age(now))
	}
	if (Fix{}).Age(now) != 0 {
		t.Fatalf("zero fix age should be 0")
	}
}

func TestPickPort(t *testing.T) {
	cases := []struct {
		ports []string
		want  string
	}{
		{[]string{"/dev/ttyAMA0", "/dev/ttyUSB0", "/dev/ttyACM1", "/dev/ttyACM0"}, "/dev/ttyACM0"},
		{[]string{"/dev/ttyS0", "/dev/ttyUSB1", "/dev/ttyUSB0"}, "/dev/ttyUSB0"},
		{[]string{"/dev/ttyAMA0"}, ""},
		{nil, ""},
	}
	for _, tc := range cases {
		if got := pickPort(tc.ports); got != tc.want {
			t.Fatalf("pickPort(%v)=%q want %q", tc.ports, got, tc.want)
		}
	}
}
