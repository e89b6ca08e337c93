package display

import (
	"image/color"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/freesans"
	"tinygo.org/x/tinyfont/proggy"
)

// Panel is a portrait framebuffer device such as epd2in13x.Device.
type Panel interface {
	drivers.Displayer
	ClearBuffer()
}

// PanelPower wakes and sleeps the panel controller and its supply.
type PanelPower interface {
	Wake() error
	Sleep() error
}

// Inks as the tri-colour e-paper driver interprets them: pure red is the
// accent colour, any green or blue component is black, all zero is white.
var (
	inkWhite = color.RGBA{A: 0xFF}
	inkBlack = color.RGBA{G: 0xFF, B: 0xFF, A: 0xFF}
	inkRed   = color.RGBA{R: 0xFF, A: 0xFF}
)

// Ink maps a Color to the RGBA value the panel driver expects.
func Ink(c Color) color.RGBA {
	switch c {
	case Black:
		return inkBlack
	case Red:
		return inkRed
	default:
		return inkWhite
	}
}

func face(f Font) *tinyfont.Font {
	switch f {
	case Medium:
		return &freesans.Bold9pt7b
	case Large:
		return &freesans.Bold18pt7b
	default:
		return &proggy.TinySZ8pt7b
	}
}

// landscape presents a portrait panel rotated 90° clockwise.
type landscape struct {
	p Panel
}

func (l landscape) Size() (int16, int16) {
	w, h := l.p.Size()
	return h, w
}

func (l landscape) SetPixel(x, y int16, c color.RGBA) {
	w, _ := l.p.Size()
	l.p.SetPixel(w-1-y, x, c)
}

func (l landscape) Display() error { return l.p.Display() }

// PanelCanvas draws text with tinyfont onto a portrait panel used in
// landscape orientation.
type PanelCanvas struct {
	panel Panel
	land  landscape
	power PanelPower
}

func NewPanelCanvas(p Panel, power PanelPower) *PanelCanvas {
	return &PanelCanvas{panel: p, land: landscape{p: p}, power: power}
}

func (c *PanelCanvas) Wake() error {
	if c.power == nil {
		return nil
	}
	return c.power.Wake()
}

func (c *PanelCanvas) Sleep() error {
	if c.power == nil {
		return nil
	}
	return c.power.Sleep()
}

func (c *PanelCanvas) Clear() { c.panel.ClearBuffer() }

func (c *PanelCanvas) Text(x, y int16, s string, f Font, col Color) {
	tinyfont.WriteLine(c.land, face(f), x, y, s, Ink(col))
}

// Flush pushes the frame and, when the panel supports it, waits for the
// refresh to finish.
func (c *PanelCanvas) Flush() error {
	if err := c.panel.Display(); err != nil {
		return err
	}
	if w, ok := c.panel.(interface{ WaitUntilIdle() }); ok {
		w.WaitUntilIdle()
	}
	return nil
}
