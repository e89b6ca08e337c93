// Package platform builds a monitor.Board for the current build target: the
// Pico wiring on RP2 and the simulated bench everywhere else.
package platform

import (
	"strings"
	"time"

	"atmo-monitor-go/display"
	"atmo-monitor-go/services/config"
	"atmo-monitor-go/x/logx"
)

// I2CTimeout bounds one queued transaction on the shared I²C bus.
const I2CTimeout = 250 * time.Millisecond

// Geometry converts the native portrait panel size into the landscape
// layout the screen draws in.
func Geometry(p config.Parameters) display.Geometry {
	return display.Geometry{
		Width:  int16(p.ScreenRows),
		Height: int16(p.ScreenColumns),
		Margin: int16(p.ScreenMargin),
	}
}

// frameLogger echoes each flushed frame as one log line.
func frameLogger(log logx.Logger) func([]display.Op) {
	return func(ops []display.Op) {
		lines := make([]string, 0, len(ops))
		for _, op := range ops {
			lines = append(lines, op.Text)
		}
		log.Info("frame", "lines", strings.Join(lines, " | "))
	}
}
