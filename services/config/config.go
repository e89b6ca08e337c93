package config

import (
	"encoding/json"
	"time"

	"atmo-monitor-go/errcode"
)

// Mode selects the refresh coordinator.
type Mode string

const (
	ModeHandshake Mode = "handshake" // signal On, race results against a deadline
	ModePoll      Mode = "poll"      // cache readings, render on interval
)

// Parameters are fixed at build time. Boards override the defaults through
// their embedded JSON document.
type Parameters struct {
	// Panel geometry in native (portrait) orientation.
	ScreenColumns uint16
	ScreenRows    uint16
	ScreenMargin  uint16

	MinRefreshInterval time.Duration
	CollectDeadline    time.Duration
	Dwell              time.Duration

	EnvFirstDataDelay time.Duration
	PMFrameDelay      time.Duration
	PollDelay         time.Duration
	ResetPulse        time.Duration
	ResetEveryCycle   bool

	HeartbeatInterval time.Duration

	Mode Mode
}

// Default returns the monitor's stock parameters.
func Default() Parameters {
	return Parameters{
		ScreenColumns:      104,
		ScreenRows:         212,
		ScreenMargin:       5,
		MinRefreshInterval: 180 * time.Second,
		CollectDeadline:    20 * time.Second,
		Dwell:              20 * time.Second,
		EnvFirstDataDelay:  500 * time.Millisecond,
		PMFrameDelay:       100 * time.Millisecond,
		PollDelay:          50 * time.Millisecond,
		ResetPulse:         200 * time.Millisecond,
		HeartbeatInterval:  60 * time.Second,
		Mode:               ModeHandshake,
	}
}

// EmbeddedConfigLookup allows overriding how board documents are resolved.
var EmbeddedConfigLookup = func(board string) ([]byte, bool) {
	b, ok := embeddedConfigs[board]
	return b, ok
}

// Load returns the defaults overlaid with the board's embedded document.
// An empty board name yields the defaults.
func Load(board string) (Parameters, error) {
	p := Default()
	if board == "" {
		return p, p.Validate()
	}
	raw, ok := EmbeddedConfigLookup(board)
	if !ok || len(raw) == 0 {
		return p, &errcode.E{C: errcode.InvalidParams, Op: "config.load", Msg: "no embedded config for board " + board}
	}
	if err := p.Overlay(raw); err != nil {
		return p, err
	}
	return p, p.Validate()
}

// document is the on-disk shape. Absent keys leave the current value alone.
type document struct {
	Screen *struct {
		Columns *uint16 `json:"columns"`
		Rows    *uint16 `json:"rows"`
		Margin  *uint16 `json:"margin"`
	} `json:"screen"`

	MinRefreshS      *uint32 `json:"min_refresh_s"`
	CollectDeadlineS *uint32 `json:"collect_deadline_s"`
	DwellS           *uint32 `json:"dwell_s"`

	EnvFirstDataDelayMs *uint32 `json:"env_first_data_delay_ms"`
	PMFrameDelayMs      *uint32 `json:"pm_frame_delay_ms"`
	PollDelayMs         *uint32 `json:"poll_delay_ms"`
	ResetPulseMs        *uint32 `json:"reset_pulse_ms"`
	ResetEveryCycle     *bool   `json:"reset_every_cycle"`

	Heartbeat *struct {
		Interval *uint32 `json:"interval"` // seconds
	} `json:"heartbeat"`

	Mode *string `json:"mode"`
}

// Overlay applies a JSON document on top of p.
func (p *Parameters) Overlay(raw []byte) error {
	var d document
	if err := json.Unmarshal(raw, &d); err != nil {
		return errcode.Wrap(errcode.InvalidParams, "config.overlay", err)
	}
	if s := d.Screen; s != nil {
		setU16(&p.ScreenColumns, s.Columns)
		setU16(&p.ScreenRows, s.Rows)
		setU16(&p.ScreenMargin, s.Margin)
	}
	setDur(&p.MinRefreshInterval, d.MinRefreshS, time.Second)
	setDur(&p.CollectDeadline, d.CollectDeadlineS, time.Second)
	setDur(&p.Dwell, d.DwellS, time.Second)
	setDur(&p.EnvFirstDataDelay, d.EnvFirstDataDelayMs, time.Millisecond)
	setDur(&p.PMFrameDelay, d.PMFrameDelayMs, time.Millisecond)
	setDur(&p.PollDelay, d.PollDelayMs, time.Millisecond)
	setDur(&p.ResetPulse, d.ResetPulseMs, time.Millisecond)
	if d.ResetEveryCycle != nil {
		p.ResetEveryCycle = *d.ResetEveryCycle
	}
	if d.Heartbeat != nil {
		setDur(&p.HeartbeatInterval, d.Heartbeat.Interval, time.Second)
	}
	if d.Mode != nil {
		p.Mode = Mode(*d.Mode)
	}
	return nil
}

// Validate checks the relationships the coordinator depends on.
func (p Parameters) Validate() error {
	switch {
	case p.ScreenColumns == 0 || p.ScreenRows == 0:
		return invalid("screen geometry must be non-zero")
	case 2*p.ScreenMargin >= p.ScreenColumns || 2*p.ScreenMargin >= p.ScreenRows:
		return invalid("screen margin leaves no drawable area")
	case p.CollectDeadline <= 0:
		return invalid("collect deadline must be positive")
	case p.Dwell < 0:
		return invalid("dwell must not be negative")
	case p.MinRefreshInterval <= p.Dwell:
		return invalid("minimum refresh interval must exceed dwell")
	case p.PollDelay <= 0:
		return invalid("poll delay must be positive")
	case p.PMFrameDelay < 0 || p.ResetPulse < 0 || p.EnvFirstDataDelay < 0:
		return invalid("delays must not be negative")
	case p.HeartbeatInterval < 0:
		return invalid("heartbeat interval must not be negative")
	}
	switch p.Mode {
	case ModeHandshake, ModePoll:
	default:
		return invalid("unknown mode " + string(p.Mode))
	}
	return nil
}

// CooldownSleep is the pause after the dwell window.
func (p Parameters) CooldownSleep() time.Duration { return p.MinRefreshInterval - p.Dwell }

func invalid(msg string) error {
	return &errcode.E{C: errcode.InvalidParams, Op: "config.validate", Msg: msg}
}

func setU16(dst *uint16, v *uint16) {
	if v != nil {
		*dst = *v
	}
}

func setDur(dst *time.Duration, v *uint32, unit time.Duration) {
	if v != nil {
		*dst = time.Duration(*v) * unit
	}
}
