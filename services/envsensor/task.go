// Package envsensor runs the environmental acquisition task. Each On order
// produces exactly one message: a reading, or a fault the coordinator can
// act on. Off needs no hardware action.
package envsensor

import (
	"context"
	"time"

	"atmo-monitor-go/errcode"
	"atmo-monitor-go/types"
	"atmo-monitor-go/x/coalesce"
	"atmo-monitor-go/x/logx"
	"atmo-monitor-go/x/mailbox"
	"atmo-monitor-go/x/timex"
)

// Sensor is the environmental sensor as the task sees it.
type Sensor interface {
	Init(ctx context.Context) error
	Read(ctx context.Context) (types.EnvironmentalReading, error)
}

type Config struct {
	// FirstDataDelay follows the discarded warm-up reading.
	FirstDataDelay time.Duration
	Log            logx.Logger
}

type Task struct {
	sensor Sensor
	cmd    *coalesce.Signal[types.Order]
	out    *mailbox.Mailbox[types.DisplayMessage]
	cfg    Config
	log    logx.Logger
	ready  bool
}

func New(s Sensor, cmd *coalesce.Signal[types.Order], out *mailbox.Mailbox[types.DisplayMessage], cfg Config) *Task {
	if cfg.Log == nil {
		cfg.Log = logx.Nop()
	}
	return &Task{sensor: s, cmd: cmd, out: out, cfg: cfg, log: cfg.Log}
}

// Run initialises the sensor and serves orders until ctx is cancelled. An
// initialisation failure is retried on the next On.
func (t *Task) Run(ctx context.Context) error {
	if err := t.init(ctx); err != nil && ctx.Err() == nil {
		t.log.Error("sensor init failed", "code", errcode.Of(err), "err", err)
	}
	for {
		o, err := t.cmd.Wait(ctx)
		if err != nil {
			return nil
		}
		if o.Cmd == types.Off {
			t.log.Debug("off", "epoch", o.Epoch)
			continue
		}
		msg := t.acquire(ctx, o.Epoch)
		if ctx.Err() != nil {
			return nil
		}
		if err := t.out.Send(ctx, msg); err != nil {
			return nil
		}
	}
}

func (t *Task) acquire(ctx context.Context, epoch uint32) types.DisplayMessage {
	if !t.ready {
		if err := t.init(ctx); err != nil {
			return types.FaultMessage(types.SourceEnvironmental, epoch, err)
		}
	}
	r, err := t.sensor.Read(ctx)
	if err != nil {
		// Force a fresh init next time; a bus fault may have reset the part.
		t.ready = false
		t.log.Warn("read failed", "epoch", epoch, "code", errcode.Of(err), "err", err)
		return types.FaultMessage(types.SourceEnvironmental, epoch, err)
	}
	t.log.Info("reading posted", "epoch", epoch, "temp", r.Temperature, "hum", r.Humidity, "gas_ok", r.GasUsable())
	return types.EnvMessage(epoch, r)
}

// init configures the sensor and throws away its first conversion.
func (t *Task) init(ctx context.Context) error {
	if err := t.sensor.Init(ctx); err != nil {
		return err
	}
	if _, err := t.sensor.Read(ctx); err != nil {
		return err
	}
	if err := timex.Sleep(ctx, t.cfg.FirstDataDelay); err != nil {
		return err
	}
	t.ready = true
	t.log.Info("sensor ready")
	return nil
}
