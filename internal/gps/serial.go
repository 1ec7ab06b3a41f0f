package gps

import (
	"io"
	"sort"
	"strings"

	"go.bug.st/serial"
)

// openSerialPort opens device as 8N1 at baud.
func openSerialPort(device string, baud int) (io.ReadCloser, error) {
	return serial.Open(device, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
}

// autoDetectDevice returns the first USB CDC-ACM port (u-blox and most USB
// dongles), else the first USB serial adapter, else "".
func autoDetectDevice() string {
	ports, err := serial.GetPortsList()
	if err != nil {
		return ""
	}
	return pickPort(ports)
}

func pickPort(ports []string) string {
	sorted := append([]string(nil), ports...)
	sort.Strings(sorted)
	for _, prefix := range []string{"/dev/ttyACM", "/dev/ttyUSB"} {
		for _, p := range sorted {
			if strings.HasPrefix(p, prefix) {
				return p
			}
		}
	}
	return ""
}
