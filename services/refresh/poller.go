package refresh

import (
	"context"
	"sync"
	"time"

	"atmo-monitor-go/types"
	"atmo-monitor-go/x/logx"
	"atmo-monitor-go/x/mailbox"
)

type PollerConfig struct {
	PollDelay   time.Duration
	MinInterval time.Duration

	Rail     Rail // optional; held on while polling
	Observer Observer
	Log      logx.Logger
}

// Poller is the level-triggered coordinator. It checks the mailbox every
// PollDelay without blocking, caches the latest reading of each kind for as
// long as it runs, and renders whenever both are cached, something new has
// arrived and MinInterval has passed since the last render. There is no
// collection deadline and results are accepted whatever their epoch.
type Poller struct {
	sig  Signals
	box  *mailbox.Mailbox[types.DisplayMessage]
	disp Display
	cfg  PollerConfig
	log  logx.Logger
	obs  Observer

	mu       sync.Mutex
	st       CycleState
	fresh    bool      // a reading arrived since the last render
	failedAt time.Time // last failed render; retries wait MinInterval
}

func NewPoller(sig Signals, box *mailbox.Mailbox[types.DisplayMessage], disp Display, cfg PollerConfig) *Poller {
	if cfg.Log == nil {
		cfg.Log = logx.Nop()
	}
	if cfg.Observer == nil {
		cfg.Observer = NopObserver{}
	}
	return &Poller{sig: sig, box: box, disp: disp, cfg: cfg, log: cfg.Log, obs: cfg.Observer}
}

func (p *Poller) State() CycleState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.st
}

// Run polls until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) error {
	p.log.Info("poller started", "poll", p.cfg.PollDelay, "interval", p.cfg.MinInterval)
	if p.cfg.Rail != nil {
		p.cfg.Rail.Set(true)
		defer p.cfg.Rail.Set(false)
	}
	p.request()

	t := time.NewTicker(p.cfg.PollDelay)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			p.Step(time.Now())
		}
	}
}

// Step drains the mailbox and renders if due.
func (p *Poller) Step(now time.Time) {
	for {
		m, ok := p.box.TryReceive()
		if !ok {
			break
		}
		if m.Err != nil {
			p.obs.SensorFault(m.Source, m.Err)
			p.log.Warn("sensor fault", "source", m.Source, "err", m.Err)
			p.sig.of(m.Source).Signal(types.Order{Cmd: types.On, Epoch: p.State().Epoch})
			continue
		}
		p.mu.Lock()
		p.st.store(m)
		p.fresh = true
		p.mu.Unlock()
		p.sig.of(m.Source).Signal(types.Order{Cmd: types.Off, Epoch: m.Epoch})
		p.obs.ReadingStored(m.Source, m.Epoch)
	}

	p.mu.Lock()
	due := p.fresh && p.st.HasEnv && p.st.HasPM &&
		(!p.st.HasShown || now.Sub(p.st.LastRender) >= p.cfg.MinInterval) &&
		(p.failedAt.IsZero() || now.Sub(p.failedAt) >= p.cfg.MinInterval)
	env, pm, e := p.st.Env, p.st.PM, p.st.Epoch
	p.mu.Unlock()
	if !due {
		return
	}

	err := p.disp.PowerOn()
	if err == nil {
		err = p.disp.Render(env, pm)
		if perr := p.disp.PowerOff(); perr != nil {
			p.log.Warn("display power off failed", "err", perr)
		}
	}
	if err != nil {
		p.mu.Lock()
		p.failedAt = now
		p.mu.Unlock()
		p.obs.RenderFailed(e, err)
		p.log.Error("render failed", "err", err)
		return
	}
	p.mu.Lock()
	p.st.shown(env, pm, now)
	p.fresh = false
	p.failedAt = time.Time{}
	p.mu.Unlock()
	p.obs.Rendered(e, env, pm)
	p.log.Info("rendered", "pm2_5_atm", pm.PM2_5Atm)
	p.request()
}

// request starts a new round of acquisition on both sensors.
func (p *Poller) request() {
	p.mu.Lock()
	p.st.Epoch++
	e := p.st.Epoch
	p.mu.Unlock()
	p.obs.CycleStarted(e)
	p.sig.Env.Signal(types.Order{Cmd: types.On, Epoch: e})
	p.sig.PM.Signal(types.Order{Cmd: types.On, Epoch: e})
}
