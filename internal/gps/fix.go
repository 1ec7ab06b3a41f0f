package gps

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Fix is the latest known position. Optional values are nil until a
// sentence carrying them has been seen.
type Fix struct {
	Valid bool `json:"valid"`
	Stale bool `json:"stale"`

	LatDeg     float64  `json:"lat_deg"`
	LonDeg     float64  `json:"lon_deg"`
	AltM       *float64 `json:"alt_m,omitempty"`
	SpeedKmh   *float64 `json:"speed_kmh,omitempty"`
	CourseDeg  *float64 `json:"course_deg,omitempty"`
	FixQuality *int     `json:"fix_quality,omitempty"`
	Satellites *int     `json:"satellites,omitempty"`
	HDOP       *float64 `json:"hdop,omitempty"`

	// Time is when the position was last updated (receiver clock for gpsd,
	// local receipt time for NMEA).
	Time time.Time `json:"time"`
}

// Complete reports whether the fix carries everything a position report
// needs: latitude, longitude, altitude and speed.
func (f Fix) Complete() bool {
	return f.Valid && f.AltM != nil && f.SpeedKmh != nil
}

// Age is how long ago the position was updated.
func (f Fix) Age(now time.Time) time.Duration {
	if f.Time.IsZero() {
		return 0
	}
	return now.Sub(f.Time)
}

// ParseDegreesMinutes converts an NMEA coordinate (ddmm.mmmm or dddmm.mmmm)
// plus hemisphere letter to signed decimal degrees.
func ParseDegreesMinutes(value, hemi string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("gps: empty coordinate")
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("gps: bad coordinate %q: %w", value, err)
	}
	if v < 0 {
		return 0, fmt.Errorf("gps: negative coordinate %q", value)
	}
	deg := float64(int(v / 100))
	min := v - deg*100
	if min >= 60 {
		return 0, fmt.Errorf("gps: minutes out of range in %q", value)
	}
	out := deg + min/60
	switch strings.ToUpper(strings.TrimSpace(hemi)) {
	case "N", "E":
	case "S", "W":
		out = -out
	default:
		return 0, fmt.Errorf("gps: bad hemisphere %q", hemi)
	}
	return out, nil
}

func f64p(v float64) *float64 { return &v }
func intp(v int) *int         { return &v }
