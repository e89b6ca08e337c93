package display

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atmo-monitor-go/types"
)

// portrait 104x212 bitmap keyed by ink
type fakePanel struct {
	w, h     int16
	px       map[[2]int16]color.RGBA
	displays int
	oob      int
}

func newFakePanel() *fakePanel {
	return &fakePanel{w: 104, h: 212, px: map[[2]int16]color.RGBA{}}
}

func (p *fakePanel) Size() (int16, int16) { return p.w, p.h }
func (p *fakePanel) Display() error       { p.displays++; return nil }
func (p *fakePanel) ClearBuffer()         { p.px = map[[2]int16]color.RGBA{} }

func (p *fakePanel) SetPixel(x, y int16, c color.RGBA) {
	if x < 0 || x >= p.w || y < 0 || y >= p.h {
		p.oob++
		return
	}
	p.px[[2]int16{x, y}] = c
}

func (p *fakePanel) count(c color.RGBA) int {
	n := 0
	for _, v := range p.px {
		if v == c {
			n++
		}
	}
	return n
}

type fakePower struct{ wakes, sleeps int }

func (f *fakePower) Wake() error  { f.wakes++; return nil }
func (f *fakePower) Sleep() error { f.sleeps++; return nil }

func TestInkMatchesDriverConvention(t *testing.T) {
	red := Ink(Red)
	assert.True(t, red.R != 0 && red.G == 0 && red.B == 0)
	black := Ink(Black)
	assert.True(t, black.G != 0 || black.B != 0)
	white := Ink(White)
	assert.True(t, white.R == 0 && white.G == 0 && white.B == 0)
}

func TestLandscapeRotation(t *testing.T) {
	p := newFakePanel()
	l := landscape{p: p}
	w, h := l.Size()
	assert.Equal(t, int16(212), w)
	assert.Equal(t, int16(104), h)

	l.SetPixel(0, 0, inkRed)
	l.SetPixel(211, 103, inkBlack)
	assert.Equal(t, inkRed, p.px[[2]int16{103, 0}])
	assert.Equal(t, inkBlack, p.px[[2]int16{0, 211}])
	assert.Zero(t, p.oob)
}

func TestScreenOnPanelCanvas(t *testing.T) {
	p := newFakePanel()
	pw := &fakePower{}
	s := NewScreen(NewPanelCanvas(p, pw), Geometry{Width: 212, Height: 104, Margin: 5})

	require.NoError(t, s.PowerOn())
	env := types.EnvironmentalReading{Temperature: 20, Humidity: 40, Pressure: 1000, GasValid: false}
	require.NoError(t, s.Render(env, types.ParticulateReading{PM2_5Atm: 88}))
	require.NoError(t, s.PowerOff())

	assert.Equal(t, 1, pw.wakes)
	assert.Equal(t, 1, pw.sleeps)
	assert.Equal(t, 1, p.displays)
	assert.Greater(t, p.count(inkRed), 0, "title, invalid gas and numeral are red")
	assert.Greater(t, p.count(inkBlack), 0, "labels are black")
}
