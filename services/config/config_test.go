package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atmo-monitor-go/errcode"
)

func TestDefaultsAreValid(t *testing.T) {
	p := Default()
	require.NoError(t, p.Validate())
	assert.Equal(t, uint16(104), p.ScreenColumns)
	assert.Equal(t, uint16(212), p.ScreenRows)
	assert.Equal(t, 160*time.Second, p.CooldownSleep())
	assert.Equal(t, ModeHandshake, p.Mode)
}

func TestEmbeddedBoardsLoad(t *testing.T) {
	for board := range embeddedConfigs {
		_, err := Load(board)
		assert.NoError(t, err, board)
	}
}

func TestLoadOverlaysOnlyPresentKeys(t *testing.T) {
	old := EmbeddedConfigLookup
	EmbeddedConfigLookup = func(board string) ([]byte, bool) {
		if board != "bench" {
			return nil, false
		}
		return []byte(`{
			"min_refresh_s": 60,
			"poll_delay_ms": 25,
			"reset_every_cycle": true,
			"screen": {"margin": 3},
			"mode": "poll"
		}`), true
	}
	t.Cleanup(func() { EmbeddedConfigLookup = old })

	p, err := Load("bench")
	require.NoError(t, err)
	assert.Equal(t, 60*time.Second, p.MinRefreshInterval)
	assert.Equal(t, 25*time.Millisecond, p.PollDelay)
	assert.True(t, p.ResetEveryCycle)
	assert.Equal(t, uint16(3), p.ScreenMargin)
	assert.Equal(t, uint16(212), p.ScreenRows)
	assert.Equal(t, 20*time.Second, p.Dwell)
	assert.Equal(t, ModePoll, p.Mode)
}

func TestLoadUnknownBoard(t *testing.T) {
	_, err := Load("nope")
	assert.True(t, errcode.Is(err, errcode.InvalidParams))
}

func TestOverlayRejectsMalformed(t *testing.T) {
	p := Default()
	err := p.Overlay([]byte(`{"dwell_s": "long"}`))
	assert.True(t, errcode.Is(err, errcode.InvalidParams))
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Parameters){
		"interval not above dwell": func(p *Parameters) { p.MinRefreshInterval = p.Dwell },
		"zero deadline":            func(p *Parameters) { p.CollectDeadline = 0 },
		"zero geometry":            func(p *Parameters) { p.ScreenRows = 0 },
		"margin too wide":          func(p *Parameters) { p.ScreenMargin = 52 },
		"unknown mode":             func(p *Parameters) { p.Mode = "burst" },
		"zero poll delay":          func(p *Parameters) { p.PollDelay = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			p := Default()
			mutate(&p)
			err := p.Validate()
			require.Error(t, err)
			assert.Equal(t, errcode.InvalidParams, errcode.Of(err))
		})
	}
}
