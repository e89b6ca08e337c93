//go:build rp2040 || rp2350

package platform

import (
	"machine"
	"time"

	"github.com/jangala-dev/tinygo-uartx/uartx"
	"tinygo.org/x/drivers/waveshare-epd/epd2in13x"

	"atmo-monitor-go/display"
	"atmo-monitor-go/drivers/bme680"
	"atmo-monitor-go/drivers/pms7003"
	"atmo-monitor-go/errcode"
	"atmo-monitor-go/services/config"
	"atmo-monitor-go/services/envsensor"
	"atmo-monitor-go/services/monitor"
	"atmo-monitor-go/services/pmsensor"
	"atmo-monitor-go/x/i2cown"
	"atmo-monitor-go/x/logx"
)

// BootDelay lets USB CDC enumerate before the first log line.
const BootDelay = 2 * time.Second

// Pico wiring.
const (
	pinSDA = machine.GP4
	pinSCL = machine.GP5

	pinPMTX    = machine.GP8
	pinPMRX    = machine.GP9
	pinPMReset = machine.GP10
	pinPMSet   = machine.GP11
	pmBaud     = 9600

	pinEPDEnable = machine.GP14
	pinRail      = machine.GP15
	pinSDI       = machine.GP16
	pinCS        = machine.GP17
	pinSCK       = machine.GP18
	pinSDO       = machine.GP19
	pinDC        = machine.GP20
	pinRST       = machine.GP21
	pinBusy      = machine.GP22
)

type outPin struct{ p machine.Pin }

func newOutPin(p machine.Pin, initial bool) outPin {
	p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	p.Set(initial)
	return outPin{p: p}
}

func (o outPin) Set(high bool) { o.p.Set(high) }

// epdPower gates the panel supply and (re)initialises the controller on wake.
type epdPower struct {
	dev    *epd2in13x.Device
	enable outPin
	cfg    epd2in13x.Config
}

func (e *epdPower) Wake() error {
	e.enable.Set(true)
	e.dev.Configure(e.cfg)
	return nil
}

func (e *epdPower) Sleep() error {
	e.dev.DeepSleep()
	e.enable.Set(false)
	return nil
}

// Open configures the Pico peripherals and returns the board.
func Open(p config.Parameters, log logx.Logger) (monitor.Board, error) {
	if log == nil {
		log = logx.Nop()
	}

	// I²C0 for the BME680.
	pinSDA.Configure(machine.PinConfig{Mode: machine.PinI2C})
	pinSCL.Configure(machine.PinConfig{Mode: machine.PinI2C})
	if err := machine.I2C0.Configure(machine.I2CConfig{
		SCL:       pinSCL,
		SDA:       pinSDA,
		Frequency: 400 * machine.KHz,
	}); err != nil {
		return monitor.Board{}, errcode.Wrap(errcode.BusFault, "platform.i2c0", err)
	}
	owner := i2cown.New(machine.I2C0)

	// UART1 for the PMS7003.
	if err := uartx.UART1.Configure(uartx.UARTConfig{
		BaudRate: pmBaud,
		TX:       pinPMTX,
		RX:       pinPMRX,
	}); err != nil {
		return monitor.Board{}, errcode.Wrap(errcode.BusFault, "platform.uart1", err)
	}
	newOutPin(pinPMSet, true)

	// SPI0 for the e-paper panel.
	if err := machine.SPI0.Configure(machine.SPIConfig{
		Frequency: 8 * machine.MHz,
		SCK:       pinSCK,
		SDO:       pinSDO,
		SDI:       pinSDI,
	}); err != nil {
		return monitor.Board{}, errcode.Wrap(errcode.BusFault, "platform.spi0", err)
	}
	dev := epd2in13x.New(machine.SPI0, pinCS, pinDC, pinRST, pinBusy)
	power := &epdPower{
		dev:    &dev,
		enable: newOutPin(pinEPDEnable, false),
		cfg: epd2in13x.Config{
			Width:     int16(p.ScreenColumns),
			Height:    int16(p.ScreenRows),
			NumColors: 3,
		},
	}
	// Allocate the framebuffers once; Wake re-runs the init sequence.
	dev.Configure(power.cfg)
	dev.DeepSleep()

	return monitor.Board{
		Name:    BoardName,
		Params:  p,
		Env:     envsensor.NewBME680(owner.Port(I2CTimeout), bme680.DefaultConfig()),
		PM:      pmsensor.NewPMS7003(uartx.UART1, pms7003.Config{}),
		PMReset: newOutPin(pinPMReset, true),
		Rail:    newOutPin(pinRail, false),
		Display: display.NewScreen(display.NewPanelCanvas(&dev, power), Geometry(p)),
		Log:     log,
	}, nil
}
