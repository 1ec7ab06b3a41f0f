package sysinfo

import (
	"math"
	"testing"
)

func TestThermalCelsius(t *testing.T) {
	cases := []struct {
		raw  string
		want float64
	}{
		{"48312\n", 48.312},
		{"52", 52},
		{"-5000", -5},
	}
	for _, tc := range cases {
		got, err := thermalCelsius(tc.raw)
		if err != nil {
			t.Fatalf("thermalCelsius(%q): %v", tc.raw, err)
		}
		if math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("thermalCelsius(%q)=%v want %v", tc.raw, got, tc.want)
		}
	}
}

func TestThermalCelsius_Rejects(t *testing.T) {
	for _, raw := range []string{"", "\n", "hot", "48.3"} {
		if _, err := thermalCelsius(raw); err == nil {
			t.Fatalf("thermalCelsius(%q): expected error", raw)
		}
	}
}

func TestCollector_ReadCPUTempCUsesConfiguredZone(t *testing.T) {
	dir := t.TempDir()
	c := NewCollector(Paths{CPUTemp: writeFixture(t, dir, "zone1", "61250\n")})
	v, err := c.ReadCPUTempC()
	if err != nil {
		t.Fatalf("ReadCPUTempC: %v", err)
	}
	if math.Abs(v-61.25) > 1e-9 {
		t.Fatalf("v=%v want 61.25", v)
	}

	c = NewCollector(Paths{CPUTemp: dir + "/missing"})
	if _, err := c.ReadCPUTempC(); err == nil {
		t.Fatalf("expected error for missing zone")
	}
}
