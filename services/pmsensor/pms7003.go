package pmsensor

import (
	"context"

	"atmo-monitor-go/drivers/pms7003"
	"atmo-monitor-go/types"
)

// PMS7003 adapts the serial driver to Sensor.
type PMS7003 struct {
	dev *pms7003.Device
}

func NewPMS7003(port pms7003.Port, cfg pms7003.Config) *PMS7003 {
	return &PMS7003{dev: pms7003.New(port, cfg)}
}

func (p *PMS7003) Wake(ctx context.Context) error  { return p.dev.Wake(ctx) }
func (p *PMS7003) Sleep(ctx context.Context) error { return p.dev.Sleep(ctx) }

func (p *PMS7003) Read(ctx context.Context) (types.ParticulateSample, error) {
	f, err := p.dev.Read(ctx)
	if err != nil {
		return types.ParticulateSample{}, err
	}
	return types.ParticulateSample{
		PM1_0:    f.PM1_0,
		PM2_5:    f.PM2_5,
		PM10:     f.PM10,
		PM1_0Atm: f.PM1_0Atm,
		PM2_5Atm: f.PM2_5Atm,
		PM10Atm:  f.PM10Atm,
	}, nil
}
