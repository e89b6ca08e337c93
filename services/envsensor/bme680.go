package envsensor

import (
	"context"
	"time"

	"tinygo.org/x/drivers"

	"atmo-monitor-go/drivers/bme680"
	"atmo-monitor-go/errcode"
	"atmo-monitor-go/types"
	"atmo-monitor-go/x/timex"
)

const (
	collectPoll  = 10 * time.Millisecond
	collectTries = 20
)

// BME680 adapts the I²C driver to Sensor using its split-phase API so the
// conversion wait honours ctx.
type BME680 struct {
	dev *bme680.Device
}

func NewBME680(bus drivers.I2C, cfg bme680.Config) *BME680 {
	return &BME680{dev: bme680.New(bus, cfg)}
}

func (b *BME680) Init(ctx context.Context) error { return b.dev.Configure() }

func (b *BME680) Read(ctx context.Context) (types.EnvironmentalReading, error) {
	if err := b.dev.Trigger(); err != nil {
		return types.EnvironmentalReading{}, err
	}
	if err := timex.Sleep(ctx, b.dev.ProfileDuration()); err != nil {
		return types.EnvironmentalReading{}, err
	}
	var s bme680.Sample
	for i := 0; i < collectTries; i++ {
		err := b.dev.Collect(&s)
		if err == nil {
			return types.EnvironmentalReading{
				Temperature:   s.Temperature,
				Humidity:      s.Humidity,
				Pressure:      s.Pressure,
				GasResistance: s.GasResistance,
				GasValid:      s.GasValid,
				HeatStable:    s.HeatStable,
			}, nil
		}
		if err != bme680.ErrNotReady {
			return types.EnvironmentalReading{}, err
		}
		if err := timex.Sleep(ctx, collectPoll); err != nil {
			return types.EnvironmentalReading{}, err
		}
	}
	return types.EnvironmentalReading{}, &errcode.E{C: errcode.Timeout, Op: "bme680.collect"}
}
