package gps

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"strings"
	"time"
)

const gpsdDefaultAddr = "127.0.0.1:2947"

// dialGPSD connects to gpsd over TCP.
func dialGPSD(ctx context.Context, addr string) (net.Conn, error) {
	if strings.TrimSpace(addr) == "" {
		addr = gpsdDefaultAddr
	}
	d := &net.Dialer{Timeout: 2 * time.Second}
	return d.DialContext(ctx, "tcp", addr)
}

// gpsdWatch enables JSON streaming reports.
func gpsdWatch(conn net.Conn) error {
	// scaled=true yields SI units (m/s, meters) and degrees.
	_, err := conn.Write([]byte("?WATCH={\"enable\":true,\"json\":true,\"scaled\":true}\n"))
	return err
}

type gpsdMsgBase struct {
	Class string `json:"class"`
}

type gpsdTPV struct {
	Class string `json:"class"`
	Mode  *int   `json:"mode"`
	Time  string `json:"time"`

	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`

	Alt     *float64 `json:"alt"`
	AltMSL  *float64 `json:"altMSL"`
	SpeedMS *float64 `json:"speed"`
	Track   *float64 `json:"track"`
}

type gpsdSat struct {
	Used bool `json:"used"`
}

type gpsdSKY struct {
	Class      string    `json:"class"`
	HDOP       *float64  `json:"hdop"`
	Satellites []gpsdSat `json:"satellites"`
}

func (s *fixState) applyGPSD(nowUTC time.Time, line string) (bool, error) {
	var base gpsdMsgBase
	if err := json.Unmarshal([]byte(line), &base); err != nil {
		return false, fmt.Errorf("gpsd json parse failed: %v", err)
	}

	switch strings.ToUpper(strings.TrimSpace(base.Class)) {
	case "TPV":
		var tpv gpsdTPV
		if err := json.Unmarshal([]byte(line), &tpv); err != nil {
			return false, fmt.Errorf("gpsd tpv parse failed: %v", err)
		}
		return s.applyTPV(nowUTC, tpv), nil
	case "SKY":
		var sky gpsdSKY
		if err := json.Unmarshal([]byte(line), &sky); err != nil {
			return false, fmt.Errorf("gpsd sky parse failed: %v", err)
		}
		return s.applySKY(sky), nil
	default:
		// VERSION, DEVICES, WATCH and friends.
		return false, nil
	}
}

// applyTPV only accepts reports with a 2D or 3D fix and a position; partial
// reports without one would otherwise overwrite a good fix with zeros.
func (s *fixState) applyTPV(nowUTC time.Time, tpv gpsdTPV) bool {
	if tpv.Mode == nil || *tpv.Mode < 2 || tpv.Lat == nil || tpv.Lon == nil {
		return false
	}

	fixTime := nowUTC
	if strings.TrimSpace(tpv.Time) != "" {
		if t, err := time.Parse(time.RFC3339Nano, tpv.Time); err == nil {
			fixTime = t.UTC()
		}
	}

	s.fix.Valid = true
	s.fix.LatDeg = *tpv.Lat
	s.fix.LonDeg = *tpv.Lon
	s.fix.FixQuality = intp(*tpv.Mode)
	if tpv.SpeedMS != nil {
		s.fix.SpeedKmh = f64p(*tpv.SpeedMS * 3.6)
	}
	if tpv.Track != nil {
		s.fix.CourseDeg = f64p(*tpv.Track)
	}
	altM := tpv.AltMSL
	if altM == nil {
		altM = tpv.Alt
	}
	if altM != nil {
		s.fix.AltM = f64p(*altM)
	}
	s.fix.Time = fixTime
	return true
}

func (s *fixState) applySKY(sky gpsdSKY) bool {
	updated := false
	if sky.HDOP != nil {
		s.fix.HDOP = f64p(*sky.HDOP)
		updated = true
	}
	if len(sky.Satellites) > 0 {
		used := 0
		for _, sat := range sky.Satellites {
			if sat.Used {
				used++
			}
		}
		s.fix.Satellites = intp(used)
		updated = true
	}
	return updated
}
