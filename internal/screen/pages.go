package screen

import (
	"fmt"
	"time"

	"rpi-tools/internal/netinfo"
	"rpi-tools/internal/sysinfo"
)

// Page identifies one of the rotating screens.
type Page int

const (
	PageNetwork Page = iota
	PageHealth
	PageStorage

	pageCount = 3
)

func (p Page) String() string {
	switch p {
	case PageNetwork:
		return "network"
	case PageHealth:
		return "health"
	case PageStorage:
		return "storage"
	default:
		return fmt.Sprintf("page%d", int(p))
	}
}

// Data is everything a page may show.
type Data struct {
	Title   string
	Now     time.Time
	Net     netinfo.Status
	Sys     sysinfo.Snapshot
	Columns int
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// Lines renders page p. Every line fits in d.Columns.
func Lines(p Page, d Data) []string {
	var lines []string
	switch p {
	case PageNetwork:
		lines = networkLines(d)
	case PageHealth:
		lines = healthLines(d)
	case PageStorage:
		lines = storageLines(d)
	default:
		lines = []string{d.Title}
	}
	for i := range lines {
		lines[i] = Truncate(lines[i], d.Columns)
	}
	return lines
}

func networkLines(d Data) []string {
	clock := d.Now.Format("15:04")
	title := Truncate(d.Title, d.Columns-len(clock)-1)
	ssid := "SSID -"
	if d.Net.SSID != "" {
		ssid = "SSID " + d.Net.SSID
	}
	return []string{
		title + " " + clock,
		d.Net.Iface + ":" + d.Net.State,
		"IP " + d.Net.IP,
		ssid,
	}
}

func healthLines(d Data) []string {
	temp := "-C"
	if d.Sys.CPUTempC != nil {
		temp = fmt.Sprintf("%.0fC", *d.Sys.CPUTempC)
	}
	load := "?"
	if d.Sys.Load1 != nil {
		load = sysinfo.FormatLoad(*d.Sys.Load1)
	}
	ram, disk := "?", "?"
	if d.Sys.Mem != nil {
		ram = sysinfo.FormatPercent(d.Sys.Mem.Percent)
	}
	if d.Sys.Disk != nil {
		disk = sysinfo.FormatPercent(d.Sys.Disk.Percent)
	}
	up := "?"
	if d.Sys.Uptime != nil {
		up = sysinfo.FormatUptime(*d.Sys.Uptime)
	}
	return []string{
		d.Title,
		"Temp " + temp + "  L " + load,
		"RAM " + ram + "  SD " + disk,
		"Up " + up,
	}
}

func storageLines(d Data) []string {
	ram := "?/?"
	if d.Sys.Mem != nil {
		ram = sysinfo.FormatMem(d.Sys.Mem.UsedBytes) + "/" + sysinfo.FormatMem(d.Sys.Mem.TotalBytes)
	}
	disk := "?/?"
	if d.Sys.Disk != nil {
		disk = sysinfo.FormatBytes(d.Sys.Disk.UsedBytes) + "/" + sysinfo.FormatBytes(d.Sys.Disk.TotalBytes)
	}
	return []string{
		d.Title,
		"RAM " + ram,
		"SD  " + disk,
		"",
	}
}
