// Command atmo-sim runs the monitor against the simulated bench on a host.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"

	"atmo-monitor-go/internal/metrics"
	"atmo-monitor-go/platform"
	"atmo-monitor-go/platform/sim"
	"atmo-monitor-go/services/config"
	"atmo-monitor-go/services/monitor"
	"atmo-monitor-go/services/refresh"
	"atmo-monitor-go/x/logx"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	var (
		logLevel    = pflag.StringP("log-level", "l", "info", "debug, info, warn or error")
		console     = pflag.Bool("console", false, "human-readable log output on stderr")
		metricsAddr = pflag.String("metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9108)")
		runFor      = pflag.Duration("run-for", 0, "stop after this long (0 runs until interrupted)")

		mode       = pflag.String("mode", "", "coordinator: handshake or poll (board default when empty)")
		minRefresh = pflag.Duration("min-refresh", 0, "minimum interval between display refreshes")
		deadline   = pflag.Duration("deadline", 0, "collection deadline per cycle")
		dwell      = pflag.Duration("dwell", 0, "pause after a cycle before the cooldown")
		resetEach  = pflag.Bool("reset-every-cycle", false, "pulse the particulate reset line on every cycle")

		seed        = pflag.Int64("seed", time.Now().UnixNano(), "simulation seed")
		pmPeriod    = pflag.Duration("pm-period", 200*time.Millisecond, "simulated particulate frame period")
		failEnv     = pflag.Int("fail-env", 0, "fail the next N environmental bus transactions")
		corruptPM   = pflag.Int("corrupt-pm", 0, "corrupt the next N particulate frames")
		raceSleeps  = pflag.Int("race-sleeps", 0, "answer the next N sleep commands with a data frame")
		silentPM    = pflag.Bool("silent-pm", false, "particulate sensor never transmits")
		gasUnstable = pflag.Bool("gas-unstable", false, "report the gas heater as unstable")
	)
	pflag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	if *runFor > 0 {
		var stop context.CancelFunc
		ctx, stop = context.WithTimeout(ctx, *runFor)
		defer stop()
	}

	var log logx.Logger
	if *console {
		log = logx.NewConsole(logx.ParseLevel(*logLevel))
	} else {
		log = logx.New(logx.ParseLevel(*logLevel))
	}
	log.Info("starting up", "version", version, "commit", commit, "seed", *seed)

	p, err := config.Load(platform.BoardName)
	if err != nil {
		fail(log, "config", err)
	}
	set := pflag.CommandLine.Changed
	if set("mode") {
		p.Mode = config.Mode(*mode)
	}
	if set("min-refresh") {
		p.MinRefreshInterval = *minRefresh
	}
	if set("deadline") {
		p.CollectDeadline = *deadline
	}
	if set("dwell") {
		p.Dwell = *dwell
	}
	if set("reset-every-cycle") {
		p.ResetEveryCycle = *resetEach
	}

	board, bench := platform.OpenSim(p, log, sim.Options{Seed: *seed, PMPeriod: *pmPeriod})
	bench.BME.FailNext(*failEnv)
	bench.BME.SetGasUnstable(*gasUnstable)
	bench.PMS.CorruptNext(*corruptPM)
	bench.PMS.RaceSleeps(*raceSleeps)
	bench.PMS.SetSilent(*silentPM)

	opt := monitor.Options{Counters: &refresh.Counters{}}
	if *metricsAddr != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		opt.Observer = metrics.New(reg)
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true}))
		srv := &http.Server{
			Addr:              *metricsAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			log.Info("serving metrics", "addr", *metricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics server", "err", err)
			}
		}()
		defer func() {
			sctx, done := context.WithTimeout(context.Background(), 2*time.Second)
			defer done()
			_ = srv.Shutdown(sctx)
		}()
	}

	if err := monitor.Run(ctx, board, opt); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		fail(log, "monitor", err)
	}
	st := opt.Counters.Snapshot()
	log.Info("shutdown", "cycles", st.Cycles, "renders", st.Renders, "timeouts", st.Timeouts, "faults", st.Faults)
}

func fail(log logx.Logger, what string, err error) {
	log.Error(what+" failed", "err", err)
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
