package display

import (
	"fmt"
	"image"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/inconsolata"
	"golang.org/x/image/math/fixed"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// Face returns the fixed-width bitmap face for a config font name.
func Face(name string) (*basicfont.Face, error) {
	switch name {
	case "", "7x13":
		return basicfont.Face7x13, nil
	case "8x16":
		return inconsolata.Regular8x16, nil
	default:
		return nil, fmt.Errorf("display: unknown font %q", name)
	}
}

// Canvas renders lines of text into a 1-bit frame.
type Canvas struct {
	frame      *image1bit.VerticalLSB
	face       *basicfont.Face
	lineHeight int
}

// NewCanvas builds a canvas for bounds. lineHeight below the face height
// (which already includes the descent) is raised to it.
func NewCanvas(bounds image.Rectangle, face *basicfont.Face, lineHeight int) *Canvas {
	if face == nil {
		face = basicfont.Face7x13
	}
	if lineHeight < face.Height {
		lineHeight = face.Height
	}
	return &Canvas{
		frame:      image1bit.NewVerticalLSB(bounds),
		face:       face,
		lineHeight: lineHeight,
	}
}

// Columns is the number of glyphs that fit on one line.
func (c *Canvas) Columns() int {
	if c.face.Advance <= 0 {
		return 0
	}
	return c.frame.Rect.Dx() / c.face.Advance
}

// Rows is the number of lines that fit on the panel.
func (c *Canvas) Rows() int {
	return c.frame.Rect.Dy() / c.lineHeight
}

func (c *Canvas) LineHeight() int { return c.lineHeight }

func (c *Canvas) Frame() *image1bit.VerticalLSB { return c.frame }

func (c *Canvas) Clear() {
	for i := range c.frame.Pix {
		c.frame.Pix[i] = 0
	}
}

// DrawLines clears the frame and draws one line per row from the top. Lines
// past the last row are dropped; overlong lines are clipped by the frame.
func (c *Canvas) DrawLines(lines []string) {
	c.Clear()
	d := font.Drawer{
		Dst:  c.frame,
		Src:  &image.Uniform{C: image1bit.On},
		Face: c.face,
	}
	rows := c.Rows()
	for i, line := range lines {
		if i >= rows {
			break
		}
		if line == "" {
			continue
		}
		d.Dot = fixed.P(c.frame.Rect.Min.X, c.frame.Rect.Min.Y+i*c.lineHeight+c.face.Ascent)
		d.DrawString(line)
	}
}
