package sysinfo

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const thermalZone0 = "/sys/class/thermal/thermal_zone0/temp"

// ReadCPUTempC reads the SoC temperature from Paths.CPUTemp in degrees
// Celsius.
func (c *Collector) ReadCPUTempC() (float64, error) {
	b, err := os.ReadFile(c.paths.CPUTemp)
	if err != nil {
		return 0, fmt.Errorf("read thermal zone: %w", err)
	}
	return thermalCelsius(string(b))
}

// thermalCelsius converts a thermal zone reading. The Pi kernel reports
// milli-degrees (48312); a few boards expose whole degrees.
func thermalCelsius(raw string) (float64, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return 0, fmt.Errorf("thermal zone reading is empty")
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("thermal zone reading %q: %w", v, err)
	}
	if n > 1000 || n < -1000 {
		return float64(n) / 1000, nil
	}
	return float64(n), nil
}
