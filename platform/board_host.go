//go:build !(rp2040 || rp2350)

package platform

import (
	"time"

	"atmo-monitor-go/display"
	"atmo-monitor-go/drivers/bme680"
	"atmo-monitor-go/drivers/pms7003"
	"atmo-monitor-go/platform/sim"
	"atmo-monitor-go/services/config"
	"atmo-monitor-go/services/envsensor"
	"atmo-monitor-go/services/monitor"
	"atmo-monitor-go/services/pmsensor"
	"atmo-monitor-go/x/i2cown"
	"atmo-monitor-go/x/logx"
)

const BoardName = "sim"

// BootDelay is how long main waits before the first log line.
const BootDelay = 0

// Open returns a board backed by a freshly seeded simulation.
func Open(p config.Parameters, log logx.Logger) (monitor.Board, error) {
	b, _ := OpenSim(p, log, sim.Options{Seed: time.Now().UnixNano()})
	return b, nil
}

// OpenSim returns a board on top of a simulated bench, together with the
// bench so callers can inject faults and inspect the canvas.
func OpenSim(p config.Parameters, log logx.Logger, o sim.Options) (monitor.Board, *sim.Bench) {
	if log == nil {
		log = logx.Nop()
	}
	bench := sim.NewBench(o)
	bench.Canvas.OnFlush = frameLogger(log.With("dev", "epd"))

	owner := i2cown.New(bench.BME)
	env := envsensor.NewBME680(owner.Port(I2CTimeout), bme680.DefaultConfig())
	pm := pmsensor.NewPMS7003(bench.PMS, pms7003.Config{})

	return monitor.Board{
		Name:    BoardName,
		Params:  p,
		Env:     env,
		PM:      pm,
		PMReset: bench.PMReset,
		Rail:    bench.Rail,
		Display: display.NewScreen(bench.Canvas, Geometry(p)),
		Log:     log,
	}, bench
}
