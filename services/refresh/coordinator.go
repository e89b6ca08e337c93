// Package refresh decides when to collect, when to render and when the next
// cycle may start.
//
// Coordinator is the canonical handshake machine:
//
//	Collecting -> Rendering -> Cooldown -> Collecting
//	     \--(deadline)------------^
//
// Poller is the level-triggered alternative selected by config mode "poll".
// The two are separate machines and are never mixed.
package refresh

import (
	"context"
	"sync"
	"time"

	"atmo-monitor-go/errcode"
	"atmo-monitor-go/types"
	"atmo-monitor-go/x/coalesce"
	"atmo-monitor-go/x/logx"
	"atmo-monitor-go/x/mailbox"
	"atmo-monitor-go/x/timex"
)

// Display is the panel as the coordinator drives it.
type Display interface {
	PowerOn() error
	PowerOff() error
	Render(env types.EnvironmentalReading, pm types.ParticulateReading) error
}

// Rail gates the sensors' supply.
type Rail interface {
	Set(on bool)
}

type Outcome uint8

const (
	OutcomeRendered Outcome = iota + 1
	OutcomeTimedOut
	OutcomeRenderFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRendered:
		return "rendered"
	case OutcomeTimedOut:
		return "timed_out"
	case OutcomeRenderFailed:
		return "render_failed"
	default:
		return "none"
	}
}

type Config struct {
	Deadline time.Duration // collection deadline
	Dwell    time.Duration // rail held off after a cycle
	Cooldown time.Duration // further pause after the dwell window

	// FaultBackoff is the pause before re-requesting a reading that came
	// back as a fault. Zero re-requests immediately.
	FaultBackoff time.Duration

	Rail     Rail // optional
	Observer Observer
	Log      logx.Logger
}

// Signals carries the command signal for each sensor.
type Signals struct {
	Env *coalesce.Signal[types.Order]
	PM  *coalesce.Signal[types.Order]
}

func (s Signals) of(src types.Source) *coalesce.Signal[types.Order] {
	if src == types.SourceEnvironmental {
		return s.Env
	}
	return s.PM
}

type Coordinator struct {
	sig  Signals
	box  *mailbox.Mailbox[types.DisplayMessage]
	disp Display
	cfg  Config
	log  logx.Logger
	obs  Observer

	mu    sync.Mutex
	st    CycleState
	epoch uint32
}

func New(sig Signals, box *mailbox.Mailbox[types.DisplayMessage], disp Display, cfg Config) *Coordinator {
	if cfg.Log == nil {
		cfg.Log = logx.Nop()
	}
	if cfg.Observer == nil {
		cfg.Observer = NopObserver{}
	}
	return &Coordinator{sig: sig, box: box, disp: disp, cfg: cfg, log: cfg.Log, obs: cfg.Observer}
}

// State returns a copy of the cycle state.
func (c *Coordinator) State() CycleState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.st
}

// Run loops RunCycle until ctx is cancelled.
func (c *Coordinator) Run(ctx context.Context) error {
	c.log.Info("coordinator started", "deadline", c.cfg.Deadline, "interval", c.cfg.Dwell+c.cfg.Cooldown)
	for {
		if _, err := c.RunCycle(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}

// RunCycle performs one Collecting, optional Rendering and Cooldown pass.
func (c *Coordinator) RunCycle(ctx context.Context) (Outcome, error) {
	out, err := c.collect(ctx)
	if err != nil {
		return 0, err
	}
	if out == OutcomeRendered {
		out = c.render()
	}
	if err := c.cooldown(ctx); err != nil {
		return out, err
	}
	return out, nil
}

func (c *Coordinator) setRail(on bool) {
	if c.cfg.Rail != nil {
		c.cfg.Rail.Set(on)
	}
}

// collect returns OutcomeRendered when both readings for this epoch are in
// hand, OutcomeTimedOut when the deadline expired first.
func (c *Coordinator) collect(ctx context.Context) (Outcome, error) {
	c.mu.Lock()
	c.epoch++
	e := c.epoch
	c.st.Epoch = e
	c.mu.Unlock()

	log := c.log.With("epoch", e)
	c.obs.CycleStarted(e)
	log.Info("collecting")

	c.setRail(true)
	c.sig.Env.Signal(types.Order{Cmd: types.On, Epoch: e})
	c.sig.PM.Signal(types.Order{Cmd: types.On, Epoch: e})

	dctx, cancel := context.WithTimeout(ctx, c.cfg.Deadline)
	defer cancel()

	for {
		c.mu.Lock()
		done := c.st.complete(e)
		c.mu.Unlock()
		if done {
			return OutcomeRendered, nil
		}

		m, err := c.box.Receive(dctx)
		if err != nil {
			if ctx.Err() != nil {
				return 0, ctx.Err()
			}
			c.timeout(e, log)
			return OutcomeTimedOut, nil
		}

		if m.Epoch != e {
			c.obs.StaleDiscarded(m.Source, m.Epoch)
			log.Warn("discarding stale result", "source", m.Source, "from_epoch", m.Epoch)
			continue
		}
		if m.Err != nil {
			c.obs.SensorFault(m.Source, m.Err)
			log.Warn("sensor fault", "source", m.Source, "code", errcode.Of(m.Err), "err", m.Err)
			if timex.Sleep(dctx, c.cfg.FaultBackoff) == nil {
				c.sig.of(m.Source).Signal(types.Order{Cmd: types.On, Epoch: e})
			}
			continue
		}

		c.mu.Lock()
		c.st.store(m)
		c.mu.Unlock()
		c.sig.of(m.Source).Signal(types.Order{Cmd: types.Off, Epoch: e})
		c.obs.ReadingStored(m.Source, e)
		log.Debug("reading stored", "source", m.Source)
	}
}

// timeout stops whichever sensors are still working and drops the supply.
// Pending readings and the panel content are left as they are.
func (c *Coordinator) timeout(e uint32, log logx.Logger) {
	c.mu.Lock()
	haveEnv := c.st.has(types.SourceEnvironmental, e)
	havePM := c.st.has(types.SourceParticulate, e)
	c.mu.Unlock()

	if !haveEnv {
		c.sig.Env.Signal(types.Order{Cmd: types.Off, Epoch: e})
	}
	if !havePM {
		c.sig.PM.Signal(types.Order{Cmd: types.Off, Epoch: e})
	}
	c.setRail(false)
	c.obs.TimedOut(e, haveEnv, havePM)
	log.Warn("collection deadline expired, skipping render", "have_env", haveEnv, "have_pm", havePM)
}

func (c *Coordinator) render() Outcome {
	c.mu.Lock()
	e := c.st.Epoch
	env, pm := c.st.Env, c.st.PM
	c.mu.Unlock()

	err := c.disp.PowerOn()
	if err == nil {
		c.setDisplay(true)
		err = c.disp.Render(env, pm)
		if perr := c.disp.PowerOff(); perr != nil {
			c.log.Warn("display power off failed", "err", perr)
		}
		c.setDisplay(false)
	}
	if err != nil {
		c.obs.RenderFailed(e, err)
		c.log.Error("render failed", "epoch", e, "code", errcode.Of(err), "err", err)
		return OutcomeRenderFailed
	}

	c.mu.Lock()
	c.st.shown(env, pm, time.Now())
	c.st.clearPending()
	c.mu.Unlock()
	c.obs.Rendered(e, env, pm)
	c.log.Info("rendered", "epoch", e, "pm2_5_atm", pm.PM2_5Atm, "temp", env.Temperature)
	return OutcomeRendered
}

func (c *Coordinator) setDisplay(on bool) {
	c.mu.Lock()
	c.st.DisplayOn = on
	c.mu.Unlock()
}

// cooldown keeps the rail off for the dwell window, then waits Cooldown so
// that cycles start at least Dwell+Cooldown apart.
func (c *Coordinator) cooldown(ctx context.Context) error {
	c.setRail(false)
	if err := timex.Sleep(ctx, c.cfg.Dwell); err != nil {
		return err
	}
	return timex.Sleep(ctx, c.cfg.Cooldown)
}
