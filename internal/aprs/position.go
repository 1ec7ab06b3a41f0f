// Package aprs builds APRS-IS position reports and delivers them to an
// APRS-IS server.
package aprs

import (
	"fmt"
	"math"
	"strings"
)

// Destination and path used for every uplinked packet. APN100 is the
// generic "APRS network" tocall; TCPIP* marks packets entering via
// APRS-IS.
const (
	ToCall = "APN100"
	Path   = "TCPIP*"
)

// FormatLatitude renders decimal degrees as ddmm.mmN or ddmm.mmS.
func FormatLatitude(deg float64) string {
	hemi := "N"
	if deg < 0 {
		hemi = "S"
		deg = -deg
	}
	d, m := degMin(deg)
	return fmt.Sprintf("%02d%05.2f%s", d, m, hemi)
}

// FormatLongitude renders decimal degrees as dddmm.mmE or dddmm.mmW.
func FormatLongitude(deg float64) string {
	hemi := "E"
	if deg < 0 {
		hemi = "W"
		deg = -deg
	}
	d, m := degMin(deg)
	return fmt.Sprintf("%03d%05.2f%s", d, m, hemi)
}

// degMin splits v into whole degrees and minutes rounded to hundredths.
// Minutes that round up to 60 carry into the degrees.
func degMin(v float64) (int, float64) {
	d := int(v)
	hundredths := math.Round((v - float64(d)) * 6000)
	if hundredths >= 6000 {
		d++
		hundredths -= 6000
	}
	return d, hundredths / 100
}

// Position is an uncompressed position report without timestamp and with
// messaging capability ('=').
type Position struct {
	Source      string
	LatDeg      float64
	LonDeg      float64
	SymbolTable string
	Symbol      string
	Comment     string
	AltM        float64
	SpeedKmh    float64
}

// Packet returns the TNC2 text form, for example
//
//	OE9XVI-10>APN100,TCPIP*:=4807.04N/01131.00E>SHARI:Alt:545.40m Speed:41.48km/h
func (p Position) Packet() string {
	var b strings.Builder
	b.WriteString(strings.ToUpper(strings.TrimSpace(p.Source)))
	b.WriteString(">")
	b.WriteString(ToCall)
	b.WriteString(",")
	b.WriteString(Path)
	b.WriteString(":=")
	b.WriteString(FormatLatitude(p.LatDeg))
	b.WriteString(p.SymbolTable)
	b.WriteString(FormatLongitude(p.LonDeg))
	b.WriteString(p.Symbol)
	b.WriteString(p.Comment)
	fmt.Fprintf(&b, ":Alt:%.2fm Speed:%.2fkm/h", p.AltM, p.SpeedKmh)
	return b.String()
}

func (p Position) Validate() error {
	if err := ValidateCallsign(p.Source); err != nil {
		return err
	}
	if len(p.SymbolTable) != 1 || len(p.Symbol) != 1 {
		return fmt.Errorf("aprs: symbol table and symbol must be one character each")
	}
	if math.IsNaN(p.LatDeg) || p.LatDeg < -90 || p.LatDeg > 90 {
		return fmt.Errorf("aprs: latitude %v out of range", p.LatDeg)
	}
	if math.IsNaN(p.LonDeg) || p.LonDeg < -180 || p.LonDeg > 180 {
		return fmt.Errorf("aprs: longitude %v out of range", p.LonDeg)
	}
	if strings.ContainsAny(p.Comment, "\r\n") {
		return fmt.Errorf("aprs: comment must be a single line")
	}
	return nil
}
