// Package sim provides host stand-ins for the monitor's hardware: a
// register-level BME680 on a fake I²C bus, a PMS7003 byte stream, GPIO lines
// and a recording e-paper canvas. The real drivers run on top of them.
package sim

import (
	"time"

	"atmo-monitor-go/display"
)

type Options struct {
	Seed     int64
	PMPeriod time.Duration // frame cadence; default 1 s
}

// Bench is one simulated board.
type Bench struct {
	BME     *BME680
	PMS     *PMS7003
	Rail    *Pin
	PMReset *Pin
	PMSet   *Pin
	Canvas  *display.Recorder
}

func NewBench(o Options) *Bench {
	rail := &Pin{}
	b := &Bench{
		BME:     NewBME680(o.Seed),
		Rail:    rail,
		PMReset: &Pin{},
		PMSet:   &Pin{},
		Canvas:  &display.Recorder{},
	}
	b.PMS = NewPMS7003(o.Seed+1, rail)
	if o.PMPeriod > 0 {
		b.PMS.Period = o.PMPeriod
	}
	b.PMSet.Set(true)
	return b
}
