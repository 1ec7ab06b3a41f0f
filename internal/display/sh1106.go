package display

import (
	"bytes"
	"fmt"
	"image"
	"io"

	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// SH1106 command set. The controller is register-compatible with the
// SSD1306 for most commands but has 132 columns of RAM, no horizontal
// addressing mode and an internal DC-DC converter instead of a charge pump.
const (
	sh1106DisplayOff      = 0xAE
	sh1106DisplayOn       = 0xAF
	sh1106ClockDiv        = 0xD5
	sh1106Multiplex       = 0xA8
	sh1106DisplayOffset   = 0xD3
	sh1106StartLine       = 0x40
	sh1106DCDC            = 0xAD
	sh1106SegRemapOff     = 0xA0
	sh1106SegRemapOn      = 0xA1
	sh1106ComScanInc      = 0xC0
	sh1106ComScanDec      = 0xC8
	sh1106ComPins         = 0xDA
	sh1106Contrast        = 0x81
	sh1106PreCharge       = 0xD9
	sh1106VComDetect      = 0xDB
	sh1106EntireDisplay   = 0xA4
	sh1106NormalDisplay   = 0xA6
	sh1106PageAddr        = 0xB0
	sh1106ColumnLow       = 0x00
	sh1106ColumnHigh      = 0x10
	sh1106CtrlCommand     = 0x00
	sh1106CtrlData        = 0x40
	sh1106ColumnOffset    = 2
	sh1106DefaultContrast = 0x7F
)

// Tx is the part of periph's conn.Conn the driver needs.
type Tx interface {
	Tx(w, r []byte) error
}

type SH1106Opts struct {
	Rotate   int
	Contrast int
}

// SH1106 drives a 128x64 SH1106 panel over I2C.
type SH1106 struct {
	c      Tx
	closer io.Closer
	rect   image.Rectangle
	last   []byte
	halted bool
}

// NewSH1106 initialises the panel. closer (usually the I2C bus) is closed by
// Close and may be nil.
func NewSH1106(c Tx, closer io.Closer, opts SH1106Opts) (*SH1106, error) {
	if c == nil {
		return nil, fmt.Errorf("sh1106: nil connection")
	}
	if opts.Rotate != 0 && opts.Rotate != 2 {
		return nil, fmt.Errorf("sh1106: unsupported rotate %d (want 0 or 2)", opts.Rotate)
	}
	contrast := byte(sh1106DefaultContrast)
	if opts.Contrast > 0 && opts.Contrast <= 255 {
		contrast = byte(opts.Contrast)
	}

	seg, com := byte(sh1106SegRemapOn), byte(sh1106ComScanDec)
	if opts.Rotate == 2 {
		seg, com = sh1106SegRemapOff, sh1106ComScanInc
	}

	d := &SH1106{c: c, closer: closer, rect: image.Rect(0, 0, Width, Height)}
	seq := []byte{
		sh1106DisplayOff,
		sh1106ClockDiv, 0x80,
		sh1106Multiplex, Height - 1,
		sh1106DisplayOffset, 0x00,
		sh1106StartLine | 0x00,
		sh1106DCDC, 0x8B,
		seg,
		com,
		sh1106ComPins, 0x12,
		sh1106Contrast, contrast,
		sh1106PreCharge, 0x22,
		sh1106VComDetect, 0x35,
		sh1106EntireDisplay,
		sh1106NormalDisplay,
	}
	if err := d.command(seq...); err != nil {
		return nil, fmt.Errorf("sh1106: init: %w", err)
	}
	// Clear RAM before switching on so the panel does not flash garbage.
	if err := d.Draw(image1bit.NewVerticalLSB(d.rect)); err != nil {
		return nil, fmt.Errorf("sh1106: clear: %w", err)
	}
	if err := d.command(sh1106DisplayOn); err != nil {
		return nil, fmt.Errorf("sh1106: display on: %w", err)
	}
	return d, nil
}

func (d *SH1106) Bounds() image.Rectangle { return d.rect }

// Draw writes every 8-row page that changed since the previous frame.
func (d *SH1106) Draw(frame *image1bit.VerticalLSB) error {
	if frame == nil {
		return fmt.Errorf("sh1106: nil frame")
	}
	if frame.Rect.Dx() != Width || frame.Rect.Dy() != Height {
		return fmt.Errorf("sh1106: frame is %v, want %v", frame.Rect, d.rect)
	}
	if d.halted {
		if err := d.command(sh1106DisplayOn); err != nil {
			return err
		}
		d.halted = false
	}
	pages := Height / 8
	for page := 0; page < pages; page++ {
		row := frame.Pix[page*frame.Stride : page*frame.Stride+Width]
		if d.last != nil && bytes.Equal(row, d.last[page*Width:(page+1)*Width]) {
			continue
		}
		col := byte(sh1106ColumnOffset)
		if err := d.command(
			sh1106PageAddr|byte(page),
			sh1106ColumnLow|(col&0x0F),
			sh1106ColumnHigh|(col>>4),
		); err != nil {
			return fmt.Errorf("sh1106: page %d address: %w", page, err)
		}
		buf := make([]byte, 0, Width+1)
		buf = append(buf, sh1106CtrlData)
		buf = append(buf, row...)
		if err := d.c.Tx(buf, nil); err != nil {
			return fmt.Errorf("sh1106: page %d data: %w", page, err)
		}
	}
	if d.last == nil {
		d.last = make([]byte, pages*Width)
	}
	for page := 0; page < pages; page++ {
		copy(d.last[page*Width:(page+1)*Width], frame.Pix[page*frame.Stride:page*frame.Stride+Width])
	}
	return nil
}

// Halt blanks the panel without losing RAM contents. The next Draw wakes it.
func (d *SH1106) Halt() error {
	if err := d.command(sh1106DisplayOff); err != nil {
		return err
	}
	d.halted = true
	return nil
}

func (d *SH1106) Close() error {
	err := d.Halt()
	if d.closer != nil {
		if cerr := d.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func (d *SH1106) command(cmds ...byte) error {
	buf := make([]byte, 0, len(cmds)+1)
	buf = append(buf, sh1106CtrlCommand)
	buf = append(buf, cmds...)
	return d.c.Tx(buf, nil)
}
