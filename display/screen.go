// Package display draws the monitor's composite view on a tri-colour
// e-paper canvas and manages the panel's power state.
package display

import (
	"atmo-monitor-go/errcode"
	"atmo-monitor-go/types"
	"atmo-monitor-go/x/mathx"
	"atmo-monitor-go/x/strconvx"
)

// Title is the heading drawn on every refresh.
const Title = "Atmo Monitor v0.1.0"

// Horizontal advance of one Large digit, in pixels.
const LargeDigitAdvance = 19

const (
	lineStep  = 14
	titleDrop = 10
)

// Geometry is the panel in landscape orientation.
type Geometry struct {
	Width  int16
	Height int16
	Margin int16
}

// Screen renders readings onto a Canvas.
type Screen struct {
	c   Canvas
	g   Geometry
	on  bool
	buf []byte
}

// NewScreen creates a screen over c. The panel is assumed asleep.
func NewScreen(c Canvas, g Geometry) *Screen {
	return &Screen{c: c, g: g, buf: make([]byte, 0, 32)}
}

// PowerOn wakes the panel.
func (s *Screen) PowerOn() error {
	if err := s.c.Wake(); err != nil {
		return errcode.Wrap(errcode.BusFault, "display.power_on", err)
	}
	s.on = true
	return nil
}

// PowerOff puts the panel into deep sleep.
func (s *Screen) PowerOff() error {
	s.on = false
	if err := s.c.Sleep(); err != nil {
		return errcode.Wrap(errcode.BusFault, "display.power_off", err)
	}
	return nil
}

// Powered reports whether the panel is awake.
func (s *Screen) Powered() bool { return s.on }

// Render draws one full frame and pushes it to the panel.
func (s *Screen) Render(env types.EnvironmentalReading, pm types.ParticulateReading) error {
	if !s.on {
		return &errcode.E{C: errcode.NotInitialised, Op: "display.render", Msg: "panel asleep"}
	}
	x := s.g.Margin
	y := s.g.Margin + titleDrop

	s.c.Clear()
	s.c.Text(x, y, Title, Medium, Red)

	y += lineStep
	s.c.Text(x, y, s.line("Temp: ", int64(env.Temperature), "°C"), Small, Black)
	y += lineStep
	s.c.Text(x, y, s.line("Humidity: ", int64(env.Humidity), "%"), Small, Black)
	y += lineStep
	s.c.Text(x, y, s.line("Pressure: ", int64(env.Pressure), "hPa"), Small, Black)
	y += lineStep
	if env.GasUsable() {
		s.c.Text(x, y, s.line("Gas Resist: ", int64(env.GasResistance), "ohms"), Small, Black)
	} else {
		s.c.Text(x, y, "Gas reading invalid", Small, Red)
	}

	y += lineStep
	s.c.Text(x, y, "PM2.5 ug/m3", Small, Black)
	nx := s.g.Width - s.g.Margin - int16(mathx.DigitCount(pm.PM2_5Atm))*LargeDigitAdvance
	ny := s.g.Height - s.g.Margin
	s.c.Text(nx, ny, strconvx.FormatUint(uint64(pm.PM2_5Atm), 10), Large, Red)

	if err := s.c.Flush(); err != nil {
		return errcode.Wrap(errcode.BusFault, "display.render", err)
	}
	return nil
}

func (s *Screen) line(label string, v int64, unit string) string {
	b := append(s.buf[:0], label...)
	b = strconvx.AppendInt(b, v, 10)
	b = append(b, unit...)
	s.buf = b
	return string(b)
}
