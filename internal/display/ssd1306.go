package display

import (
	"fmt"
	"image"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// addrBus pins every transaction to one address. periph's ssd1306.NewI2C
// always talks to 0x3C; modules strapped to 0x3D need the rewrite.
type addrBus struct {
	i2c.Bus
	addr uint16
}

func (b *addrBus) Tx(_ uint16, w, r []byte) error {
	return b.Bus.Tx(b.addr, w, r)
}

// SSD1306 adapts periph's ssd1306 driver to Drawer.
type SSD1306 struct {
	dev *ssd1306.Dev
	bus i2c.BusCloser
}

func NewSSD1306(bus i2c.BusCloser, addr uint16, rotate int, contrast int) (*SSD1306, error) {
	if rotate != 0 && rotate != 2 {
		return nil, fmt.Errorf("ssd1306: unsupported rotate %d (want 0 or 2)", rotate)
	}
	opts := ssd1306.DefaultOpts
	opts.W = Width
	opts.H = Height
	opts.Rotated = rotate == 2
	dev, err := ssd1306.NewI2C(&addrBus{Bus: bus, addr: addr}, &opts)
	if err != nil {
		return nil, fmt.Errorf("ssd1306: init: %w", err)
	}
	if contrast > 0 && contrast <= 255 {
		if err := dev.SetContrast(byte(contrast)); err != nil {
			return nil, fmt.Errorf("ssd1306: contrast: %w", err)
		}
	}
	return &SSD1306{dev: dev, bus: bus}, nil
}

func (s *SSD1306) Bounds() image.Rectangle { return s.dev.Bounds() }

func (s *SSD1306) Draw(frame *image1bit.VerticalLSB) error {
	return s.dev.Draw(frame.Bounds(), frame, image.Point{})
}

func (s *SSD1306) Close() error {
	err := s.dev.Halt()
	if cerr := s.bus.Close(); err == nil {
		err = cerr
	}
	return err
}
