// Package pmsensor runs the particulate acquisition task: on an On order it
// power-resets (cold start), wakes the sensor, averages one window of frames
// and posts the result; on Off it runs the sleep handshake.
package pmsensor

import (
	"context"
	"sync/atomic"
	"time"

	"atmo-monitor-go/errcode"
	"atmo-monitor-go/types"
	"atmo-monitor-go/x/coalesce"
	"atmo-monitor-go/x/logx"
	"atmo-monitor-go/x/mailbox"
	"atmo-monitor-go/x/timex"
)

// Sensor is the particulate sensor as the task sees it.
type Sensor interface {
	Wake(ctx context.Context) error
	Sleep(ctx context.Context) error
	Read(ctx context.Context) (types.ParticulateSample, error)
}

// Pin is an output line (reset).
type Pin interface {
	Set(high bool)
}

type State int32

const (
	Idle State = iota
	Waking
	Sampling
	Sleeping
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Waking:
		return "waking"
	case Sampling:
		return "sampling"
	case Sleeping:
		return "sleeping"
	default:
		return "unknown"
	}
}

type Config struct {
	Reset           Pin // optional
	ResetPulse      time.Duration
	ResetEveryCycle bool
	FrameDelay      time.Duration
	Retry           RetryPolicy
	Log             logx.Logger
}

type Task struct {
	sensor Sensor
	cmd    *coalesce.Signal[types.Order]
	out    *mailbox.Mailbox[types.DisplayMessage]
	cfg    Config
	log    logx.Logger

	state   atomic.Int32
	started bool // reset pulse issued at least once
}

func New(s Sensor, cmd *coalesce.Signal[types.Order], out *mailbox.Mailbox[types.DisplayMessage], cfg Config) *Task {
	if cfg.Log == nil {
		cfg.Log = logx.Nop()
	}
	if cfg.Retry.Log == nil {
		cfg.Retry.Log = cfg.Log
	}
	return &Task{sensor: s, cmd: cmd, out: out, cfg: cfg, log: cfg.Log}
}

// State reports the task's current phase.
func (t *Task) State() State { return State(t.state.Load()) }

// Run serves orders until ctx is cancelled.
func (t *Task) Run(ctx context.Context) error {
	t.log.Info("particulate task started")
	for {
		o, err := t.cmd.Wait(ctx)
		if err != nil {
			return nil
		}
		switch o.Cmd {
		case types.On:
			t.acquire(ctx, o.Epoch)
		case types.Off:
			t.sleep(ctx)
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

func (t *Task) acquire(ctx context.Context, epoch uint32) {
	defer t.state.Store(int32(Idle))
	t.state.Store(int32(Waking))
	t.log.Info("collecting", "epoch", epoch)

	if t.cfg.Reset != nil && (!t.started || t.cfg.ResetEveryCycle) {
		if err := t.pulseReset(ctx); err != nil {
			return
		}
	}
	t.started = true

	if err := t.sensor.Wake(ctx); err != nil {
		// may already be awake
		t.log.Warn("wake failed", "code", errcode.Of(err), "err", err)
	}

	t.state.Store(int32(Sampling))
	var win [types.AveragingWindow]types.ParticulateSample
	n := 0
	for n < len(win) {
		if o, ok := t.cmd.TryTake(); ok {
			if o.Cmd == types.Off {
				t.log.Info("batch abandoned", "epoch", epoch, "samples", n)
				t.sleep(ctx)
				return
			}
			if o.Epoch != epoch {
				// frames taken for the previous cycle do not count
				t.log.Info("batch restarted", "from", epoch, "to", o.Epoch, "dropped", n)
				epoch, n = o.Epoch, 0
			}
		}

		s, err := t.sensor.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			t.log.Warn("frame read failed", "code", errcode.Of(err), "err", err)
			continue
		}
		t.log.Debug("frame", "pm2_5_atm", s.PM2_5Atm, "slot", n)
		win[n] = s
		n++
		if n < len(win) {
			if timex.Sleep(ctx, t.cfg.FrameDelay) != nil {
				return
			}
		}
	}

	r := Average(&win)
	t.state.Store(int32(Idle))
	if err := t.out.Send(ctx, types.PMMessage(epoch, r)); err != nil {
		return
	}
	t.log.Info("reading posted", "epoch", epoch, "pm2_5_atm", r.PM2_5Atm)
}

func (t *Task) pulseReset(ctx context.Context) error {
	t.cfg.Reset.Set(false)
	if err := timex.Sleep(ctx, t.cfg.ResetPulse); err != nil {
		return err
	}
	t.cfg.Reset.Set(true)
	return timex.Sleep(ctx, t.cfg.ResetPulse)
}

func (t *Task) sleep(ctx context.Context) {
	t.state.Store(int32(Sleeping))
	defer t.state.Store(int32(Idle))
	n, err := t.cfg.Retry.Do(ctx, t.sensor.Sleep)
	if err == nil {
		t.log.Info("sensor asleep", "attempts", n)
	}
}
