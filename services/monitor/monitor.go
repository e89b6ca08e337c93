// Package monitor wires the acquisition tasks and the refresh coordinator
// together and runs them until the context ends.
package monitor

import (
	"context"
	"sync"

	"atmo-monitor-go/services/config"
	"atmo-monitor-go/services/envsensor"
	"atmo-monitor-go/services/heartbeat"
	"atmo-monitor-go/services/pmsensor"
	"atmo-monitor-go/services/refresh"
	"atmo-monitor-go/types"
	"atmo-monitor-go/x/coalesce"
	"atmo-monitor-go/x/logx"
	"atmo-monitor-go/x/mailbox"
)

// Board is everything the monitor needs from the hardware (or a simulation).
type Board struct {
	Name    string
	Params  config.Parameters
	Env     envsensor.Sensor
	PM      pmsensor.Sensor
	PMReset pmsensor.Pin // optional
	Rail    refresh.Rail // optional
	Display refresh.Display
	Log     logx.Logger
}

type Options struct {
	// Observer receives coordinator events in addition to Counters.
	Observer refresh.Observer
	// Counters is created when nil.
	Counters *refresh.Counters
}

// Run starts both acquisition tasks, the coordinator selected by
// Params.Mode and, when configured, the heartbeat. It returns when ctx is
// cancelled or the coordinator fails.
func Run(ctx context.Context, b Board, opt Options) error {
	if err := b.Params.Validate(); err != nil {
		return err
	}
	log := b.Log
	if log == nil {
		log = logx.Nop()
	}
	counters := opt.Counters
	if counters == nil {
		counters = &refresh.Counters{}
	}
	p := b.Params

	sig := refresh.Signals{
		Env: coalesce.New[types.Order](),
		PM:  coalesce.New[types.Order](),
	}
	box := mailbox.New[types.DisplayMessage](mailbox.DefaultCapacity)

	env := envsensor.New(b.Env, sig.Env, box, envsensor.Config{
		FirstDataDelay: p.EnvFirstDataDelay,
		Log:            log.With("task", "env"),
	})
	pm := pmsensor.New(b.PM, sig.PM, box, pmsensor.Config{
		Reset:           b.PMReset,
		ResetPulse:      p.ResetPulse,
		ResetEveryCycle: p.ResetEveryCycle,
		FrameDelay:      p.PMFrameDelay,
		Log:             log.With("task", "pm"),
	})

	obs := refresh.Observers(counters, opt.Observer)
	var coord interface{ Run(context.Context) error }
	switch p.Mode {
	case config.ModePoll:
		coord = refresh.NewPoller(sig, box, b.Display, refresh.PollerConfig{
			PollDelay:   p.PollDelay,
			MinInterval: p.MinRefreshInterval,
			Rail:        b.Rail,
			Observer:    obs,
			Log:         log.With("task", "poller"),
		})
	default:
		coord = refresh.New(sig, box, b.Display, refresh.Config{
			Deadline:     p.CollectDeadline,
			Dwell:        p.Dwell,
			Cooldown:     p.CooldownSleep(),
			FaultBackoff: p.PollDelay,
			Rail:         b.Rail,
			Observer:     obs,
			Log:          log.With("task", "refresh"),
		})
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var beat *heartbeat.Service
	if p.HeartbeatInterval > 0 {
		beat = heartbeat.New(counters, p.HeartbeatInterval, log.With("task", "heartbeat"))
		_ = beat.Start(ctx)
	}

	log.Info("monitor starting", "board", b.Name, "mode", string(p.Mode))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); _ = env.Run(ctx) }()
	go func() { defer wg.Done(); _ = pm.Run(ctx) }()

	err := coord.Run(ctx)
	cancel()
	wg.Wait()
	if beat != nil {
		<-beat.Done()
	}
	log.Info("monitor stopped")
	return err
}
