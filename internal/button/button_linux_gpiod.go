//go:build linux && (arm || arm64)

package button

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// Open requests line (for example "GPIO17") as a pulled-up input and reports
// falling edges, i.e. the button shorting the line to ground.
func Open(lineName string, debounce time.Duration) (*Button, error) {
	lineName = strings.TrimSpace(lineName)
	if lineName == "" {
		return nil, fmt.Errorf("button: gpio line is required")
	}
	b := newButton(debounce)

	chipCandidates := []string{"/dev/gpiochip0", "/dev/gpiochip4"}
	entries, _ := os.ReadDir("/dev")
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, "gpiochip") {
			chipCandidates = append(chipCandidates, filepath.Join("/dev", name))
		}
	}

	for _, chipPath := range chipCandidates {
		chip, err := gpiocdev.NewChip(chipPath)
		if err != nil {
			continue
		}
		offset, err := chip.FindLine(lineName)
		if err != nil {
			_ = chip.Close()
			continue
		}
		line, err := chip.RequestLine(offset,
			gpiocdev.AsInput,
			gpiocdev.WithPullUp,
			gpiocdev.WithFallingEdge,
			gpiocdev.WithDebounce(debounce),
			gpiocdev.WithConsumer("oled-status-button"),
			gpiocdev.WithEventHandler(func(evt gpiocdev.LineEvent) {
				if evt.Type == gpiocdev.LineEventFallingEdge {
					b.press(time.Now())
				}
			}),
		)
		if err != nil {
			_ = chip.Close()
			continue
		}
		b.closer = func() error {
			err := line.Close()
			_ = chip.Close()
			return err
		}
		return b, nil
	}

	return nil, fmt.Errorf("button: gpio line %q not found (or busy)", lineName)
}
