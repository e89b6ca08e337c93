package monitor_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atmo-monitor-go/display"
	"atmo-monitor-go/errcode"
	"atmo-monitor-go/platform"
	"atmo-monitor-go/platform/sim"
	"atmo-monitor-go/services/config"
	"atmo-monitor-go/services/monitor"
	"atmo-monitor-go/services/refresh"
)

func fastParams(mode config.Mode) config.Parameters {
	p := config.Default()
	p.MinRefreshInterval = 300 * time.Millisecond
	p.CollectDeadline = 8 * time.Second
	p.Dwell = 20 * time.Millisecond
	p.EnvFirstDataDelay = 10 * time.Millisecond
	p.PMFrameDelay = 5 * time.Millisecond
	p.PollDelay = 10 * time.Millisecond
	p.ResetPulse = 5 * time.Millisecond
	p.HeartbeatInterval = 0
	p.Mode = mode
	return p
}

func hasText(frame []display.Op, s string) bool {
	for _, op := range frame {
		if op.Text == s {
			return true
		}
	}
	return false
}

func runUntilRendered(t *testing.T, mode config.Mode) (*sim.Bench, refresh.Stats) {
	t.Helper()
	board, bench := platform.OpenSim(fastParams(mode), nil, sim.Options{Seed: 7, PMPeriod: 20 * time.Millisecond})
	counters := &refresh.Counters{}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- monitor.Run(ctx, board, monitor.Options{Counters: counters}) }()

	require.Eventually(t, func() bool { return counters.Snapshot().Renders >= 1 }, 15*time.Second, 20*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("monitor did not stop")
	}
	return bench, counters.Snapshot()
}

func TestRunHandshakeRendersSimulatedReadings(t *testing.T) {
	bench, st := runUntilRendered(t, config.ModeHandshake)

	frame := bench.Canvas.Frame()
	require.NotEmpty(t, frame)
	assert.True(t, hasText(frame, display.Title))
	assert.True(t, hasText(frame, "PM2.5 ug/m3"))
	assert.GreaterOrEqual(t, st.Cycles, uint32(1))
	assert.GreaterOrEqual(t, bench.BME.Triggers(), 1)
	assert.False(t, bench.Canvas.Awake(), "panel sleeps between refreshes")
}

func TestRunPollModeRenders(t *testing.T) {
	bench, st := runUntilRendered(t, config.ModePoll)

	assert.GreaterOrEqual(t, st.Readings, uint32(2))
	assert.True(t, hasText(bench.Canvas.Frame(), display.Title))
}

func TestRunRejectsInvalidParameters(t *testing.T) {
	p := fastParams(config.ModeHandshake)
	p.Dwell = p.MinRefreshInterval
	board, _ := platform.OpenSim(p, nil, sim.Options{Seed: 1})

	err := monitor.Run(context.Background(), board, monitor.Options{})
	require.Error(t, err)
	assert.True(t, errcode.Is(err, errcode.InvalidParams))
}
