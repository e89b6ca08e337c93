package heartbeat

import (
	"context"
	"time"

	"atmo-monitor-go/services/refresh"
	"atmo-monitor-go/x/logx"
)

// Snapshotter supplies the counters logged on every beat.
type Snapshotter interface {
	Snapshot() refresh.Stats
}

type Service struct {
	stats    Snapshotter
	interval time.Duration
	log      logx.Logger
	done     chan struct{}
}

// New returns a heartbeat that logs stats every interval (1 s if <= 0).
func New(stats Snapshotter, interval time.Duration, log logx.Logger) *Service {
	if interval <= 0 {
		interval = time.Second
	}
	if log == nil {
		log = logx.Nop()
	}
	return &Service{
		stats:    stats,
		interval: interval,
		log:      log,
		done:     make(chan struct{}),
	}
}

// Done is closed when the loop has exited.
func (s *Service) Done() <-chan struct{} { return s.done }

func (s *Service) serviceLoop(ctx context.Context) {
	defer close(s.done)
	tick := time.NewTicker(s.interval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("heartbeat stopping")
			return
		case <-tick.C:
			st := s.stats.Snapshot()
			s.log.Info("heartbeat",
				"cycles", st.Cycles,
				"renders", st.Renders,
				"timeouts", st.Timeouts,
				"faults", st.Faults,
				"stale", st.Stale,
				"render_failures", st.RenderFailures,
				"pm2_5_atm", st.LastPM2_5,
			)
		}
	}
}

// Start the heartbeat service.
func (s *Service) Start(ctx context.Context) error {
	go s.serviceLoop(ctx)
	return nil
}
