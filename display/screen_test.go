package display

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atmo-monitor-go/errcode"
	"atmo-monitor-go/types"
)

var geom = Geometry{Width: 212, Height: 104, Margin: 5}

func texts(ops []Op) []string {
	out := make([]string, len(ops))
	for i, o := range ops {
		out[i] = o.Text
	}
	return out
}

func TestRenderLayout(t *testing.T) {
	rec := &Recorder{}
	s := NewScreen(rec, geom)
	require.NoError(t, s.PowerOn())

	env := types.EnvironmentalReading{
		Temperature: 21.9, Humidity: 48.6, Pressure: 1012.7,
		GasResistance: 54321, GasValid: true, HeatStable: true,
	}
	require.NoError(t, s.Render(env, types.ParticulateReading{PM2_5Atm: 12}))

	frame := rec.Frame()
	assert.Equal(t, []string{
		Title,
		"Temp: 21°C",
		"Humidity: 48%",
		"Pressure: 1012hPa",
		"Gas Resist: 54321ohms",
		"PM2.5 ug/m3",
		"12",
	}, texts(frame))

	assert.Equal(t, Red, frame[0].Color)
	assert.Equal(t, int16(5), frame[1].X)
	assert.Equal(t, int16(5+10+14), frame[1].Y)

	num := frame[len(frame)-1]
	assert.Equal(t, Large, num.Font)
	assert.Equal(t, int16(212-5-2*LargeDigitAdvance), num.X)
}

func TestNumeralRightAligned(t *testing.T) {
	rec := &Recorder{}
	s := NewScreen(rec, geom)
	require.NoError(t, s.PowerOn())

	for _, v := range []uint16{0, 7, 999, 65535} {
		require.NoError(t, s.Render(types.EnvironmentalReading{}, types.ParticulateReading{PM2_5Atm: v}))
		frame := rec.Frame()
		num := frame[len(frame)-1]
		right := num.X + int16(len(num.Text))*LargeDigitAdvance
		assert.Equal(t, geom.Width-geom.Margin, right, "value %d", v)
	}
}

func TestInvalidGasDrawnRed(t *testing.T) {
	rec := &Recorder{}
	s := NewScreen(rec, geom)
	require.NoError(t, s.PowerOn())

	env := types.EnvironmentalReading{GasResistance: 100, GasValid: true, HeatStable: false}
	require.NoError(t, s.Render(env, types.ParticulateReading{}))

	frame := rec.Frame()
	assert.Equal(t, "Gas reading invalid", frame[4].Text)
	assert.Equal(t, Red, frame[4].Color)
}

func TestRenderWhileAsleep(t *testing.T) {
	rec := &Recorder{}
	s := NewScreen(rec, geom)
	err := s.Render(types.EnvironmentalReading{}, types.ParticulateReading{})
	assert.True(t, errcode.Is(err, errcode.NotInitialised))
	assert.Zero(t, rec.Flushes())
}

func TestPowerCycle(t *testing.T) {
	rec := &Recorder{}
	s := NewScreen(rec, geom)
	require.NoError(t, s.PowerOn())
	assert.True(t, rec.Awake())
	assert.True(t, s.Powered())
	require.NoError(t, s.PowerOff())
	assert.False(t, rec.Awake())
	assert.False(t, s.Powered())

	rec.FailWake = errors.New("busy stuck")
	err := s.PowerOn()
	assert.Equal(t, errcode.BusFault, errcode.Of(err))
	assert.False(t, s.Powered())
}

func TestFlushFailureWrapped(t *testing.T) {
	rec := &Recorder{FailFlush: errors.New("spi")}
	s := NewScreen(rec, geom)
	require.NoError(t, s.PowerOn())
	err := s.Render(types.EnvironmentalReading{}, types.ParticulateReading{})
	assert.Equal(t, errcode.BusFault, errcode.Of(err))
}
