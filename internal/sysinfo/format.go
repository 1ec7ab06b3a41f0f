package sysinfo

import (
	"fmt"
	"time"
)

// FormatBytes renders a byte count the way df -h does on a narrow screen:
// whole bytes below 1 KiB, otherwise one decimal and a single-letter unit.
func FormatBytes(n uint64) string {
	v := float64(n)
	units := []string{"B", "K", "M", "G", "T"}
	for i, u := range units {
		if v < 1024 || i == len(units)-1 {
			if u == "B" {
				return fmt.Sprintf("%.0f%s", v, u)
			}
			return fmt.Sprintf("%.1f%s", v, u)
		}
		v /= 1024
	}
	return fmt.Sprintf("%.1fT", v)
}

// FormatMem renders memory in whole MiB below 1 GiB, else GiB with one decimal.
func FormatMem(n uint64) string {
	mb := float64(n) / (1024 * 1024)
	if mb < 1024 {
		return fmt.Sprintf("%.0fM", mb)
	}
	return fmt.Sprintf("%.1fG", mb/1024)
}

func FormatPercent(p float64) string {
	return fmt.Sprintf("%.0f%%", p)
}

func FormatLoad(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// FormatUptime returns "Nd HH:MM" when at least a day has passed, else "HH:MM".
func FormatUptime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	s := int64(d / time.Second)
	days := s / 86400
	s %= 86400
	h := s / 3600
	s %= 3600
	m := s / 60
	if days > 0 {
		return fmt.Sprintf("%dd %02d:%02d", days, h, m)
	}
	return fmt.Sprintf("%02d:%02d", h, m)
}
