//go:build !(rp2040 || rp2350)

package platform

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atmo-monitor-go/display"
	"atmo-monitor-go/platform/sim"
	"atmo-monitor-go/services/config"
	"atmo-monitor-go/x/logx"
)

func TestGeometryIsLandscape(t *testing.T) {
	g := Geometry(config.Default())
	assert.Equal(t, display.Geometry{Width: 212, Height: 104, Margin: 5}, g)
}

func TestOpenSimWiresDevices(t *testing.T) {
	p := config.Default()
	board, bench := OpenSim(p, logx.Nop(), sim.Options{Seed: 3, PMPeriod: 10 * time.Millisecond})
	require.Equal(t, "sim", board.Name)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, board.Env.Init(ctx))
	r, err := board.Env.Read(ctx)
	require.NoError(t, err)
	assert.InDelta(t, bench.BME.Env().Temperature, r.Temperature, 1.0)

	board.Rail.Set(true)
	s, err := board.PM.Read(ctx)
	require.NoError(t, err)
	assert.Positive(t, s.PM2_5Atm+s.PM1_0Atm+s.PM10Atm)
}

func TestFrameLoggerJoinsLines(t *testing.T) {
	var got []any
	log := captureLog{kv: &got}
	frameLogger(log)([]display.Op{{Text: "a"}, {Text: "b"}})
	assert.Equal(t, []any{"lines", "a | b"}, got)
}

type captureLog struct{ kv *[]any }

func (c captureLog) Debug(string, ...any)     {}
func (c captureLog) Info(_ string, kv ...any) { *c.kv = kv }
func (c captureLog) Warn(string, ...any)      {}
func (c captureLog) Error(string, ...any)     {}
func (c captureLog) With(...any) logx.Logger  { return c }
