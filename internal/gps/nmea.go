package gps

import (
	"strconv"
	"strings"
	"time"

	nmea "github.com/adrianmo/go-nmea"
)

const knotsToKmh = 1.852

// applyNMEA parses one sentence and folds it into the fix. Sentences with a
// bad checksum or a prefix the parser does not know are returned as errors.
// Types other than RMC and GGA are ignored, whatever the talker (GP, GN, GL...).
func (s *fixState) applyNMEA(nowUTC time.Time, line string) (bool, error) {
	sent, err := nmea.Parse(strings.TrimSpace(line))
	if err != nil {
		return false, err
	}
	switch v := sent.(type) {
	case nmea.RMC:
		return s.applyRMC(nowUTC, v), nil
	case nmea.GGA:
		return s.applyGGA(nowUTC, v), nil
	default:
		return false, nil
	}
}

func (s *fixState) applyRMC(nowUTC time.Time, rmc nmea.RMC) bool {
	if rmc.Validity != "A" {
		return false
	}
	s.fix.Valid = true
	s.fix.LatDeg = rmc.Latitude
	s.fix.LonDeg = rmc.Longitude
	s.fix.SpeedKmh = f64p(rmc.Speed * knotsToKmh)
	s.fix.CourseDeg = f64p(rmc.Course)
	s.fix.Time = nowUTC
	return true
}

func (s *fixState) applyGGA(nowUTC time.Time, gga nmea.GGA) bool {
	q, err := strconv.Atoi(strings.TrimSpace(gga.FixQuality))
	if err != nil || q == 0 {
		// RMC may still report a position, but the last altitude is no
		// longer current.
		s.fix.AltM = nil
		s.fix.FixQuality = nil
		s.fix.HDOP = nil
		return false
	}
	s.fix.Valid = true
	s.fix.LatDeg = gga.Latitude
	s.fix.LonDeg = gga.Longitude
	s.fix.AltM = f64p(gga.Altitude)
	s.fix.FixQuality = intp(q)
	s.fix.Satellites = intp(int(gga.NumSatellites))
	s.fix.HDOP = f64p(gga.HDOP)
	s.fix.Time = nowUTC
	return true
}
