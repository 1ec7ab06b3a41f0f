// Package display drives the small monochrome I2C OLED panels used for the
// status screen (SH1106 and SSD1306 controllers, 128x64).
package display

import (
	"fmt"
	"image"
	"strings"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"
)

const (
	Width  = 128
	Height = 64
)

// Drawer is a panel that can show a full 1-bit frame.
type Drawer interface {
	Bounds() image.Rectangle
	Draw(frame *image1bit.VerticalLSB) error
	Close() error
}

type Config struct {
	// Driver is sh1106, ssd1306 or none.
	Driver  string
	Bus     string
	Address uint16
	// Rotate is 0 or 2 (180 degrees).
	Rotate   int
	Contrast int
}

// Open initialises the periph host drivers, opens the I2C bus and returns the
// configured panel. Driver "none" returns a Null panel without touching I2C.
func Open(cfg Config) (Drawer, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver == "none" {
		return NewNull(Width, Height), nil
	}
	if driver != "sh1106" && driver != "ssd1306" {
		return nil, fmt.Errorf("display: unknown driver %q", cfg.Driver)
	}

	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("display: periph host init: %w", err)
	}
	bus, err := i2creg.Open(cfg.Bus)
	if err != nil {
		return nil, fmt.Errorf("display: open i2c bus %q: %w", cfg.Bus, err)
	}

	var d Drawer
	switch driver {
	case "sh1106":
		d, err = NewSH1106(&i2c.Dev{Bus: bus, Addr: cfg.Address}, bus, SH1106Opts{
			Rotate:   cfg.Rotate,
			Contrast: cfg.Contrast,
		})
	case "ssd1306":
		d, err = NewSSD1306(bus, cfg.Address, cfg.Rotate, cfg.Contrast)
	}
	if err != nil {
		_ = bus.Close()
		return nil, err
	}
	return d, nil
}

// Null accepts frames and keeps the last one. Used for driver "none" and tests.
type Null struct {
	bounds image.Rectangle
	Frames int
	Last   *image1bit.VerticalLSB
}

func NewNull(w, h int) *Null {
	return &Null{bounds: image.Rect(0, 0, w, h)}
}

func (n *Null) Bounds() image.Rectangle { return n.bounds }

func (n *Null) Draw(frame *image1bit.VerticalLSB) error {
	n.Frames++
	cp := image1bit.NewVerticalLSB(frame.Rect)
	copy(cp.Pix, frame.Pix)
	n.Last = cp
	return nil
}

func (n *Null) Close() error { return nil }
