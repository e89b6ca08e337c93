package sim

import (
	"errors"
	"math/rand"
	"sync"

	"tinygo.org/x/drivers"

	"atmo-monitor-go/x/mathx"
)

var _ drivers.I2C = (*BME680)(nil)

// ErrNack is returned for injected bus faults.
var ErrNack = errors.New("sim: i2c nack")

// Register addresses the simulation needs to know about.
const (
	bmeAddr      = 0x77
	bmeField0    = 0x1D
	bmeCtrlMeas  = 0x74
	bmeChipID    = 0xD0
	bmeCoeff1    = 0x89
	bmeCoeff2    = 0xE1
	bmeCoeff1Len = 25

	// Gas readings are encoded in range 6 where both correction terms are zero.
	gasRange = 6
	gasScale = 8e6 / (1 << gasRange)
)

// Env is the simulated environment.
type Env struct {
	Temperature float64 // °C
	Humidity    float64 // %RH
	Pressure    float64 // Pa
	Gas         float64 // ohms
}

// BME680 is a register-level simulation of the sensor on I²C. Calibration is
// chosen so the compensated output equals the simulated environment:
// T2 = 16384 (t_fine = adc), H2 = 2048 (hum = adc / 128), P1 = 6250
// (Pa = 2^20 - adc).
type BME680 struct {
	mu   sync.Mutex
	regs [256]byte
	rng  *rand.Rand
	env  Env

	failNext    int
	gasUnstable bool
	triggers    int
}

func NewBME680(seed int64) *BME680 {
	b := &BME680{
		rng: rand.New(rand.NewSource(seed)),
		env: Env{Temperature: 21, Humidity: 45, Pressure: 101325, Gas: 120000},
	}
	b.regs[bmeChipID] = 0x61
	b.setCal(2, 0x40)  // T2 msb
	b.setCal(25, 0x80) // H2 msb
	b.setCal(5, 0x6A)  // P1 lsb
	b.setCal(6, 0x18)  // P1 msb
	return b
}

func (b *BME680) setCal(idx int, v byte) {
	if idx < bmeCoeff1Len {
		b.regs[bmeCoeff1+idx] = v
		return
	}
	b.regs[bmeCoeff2+idx-bmeCoeff1Len] = v
}

// FailNext makes the next n transactions fail with ErrNack.
func (b *BME680) FailNext(n int) {
	b.mu.Lock()
	b.failNext = n
	b.mu.Unlock()
}

// SetGasUnstable clears the heater-stable flag on subsequent conversions.
func (b *BME680) SetGasUnstable(v bool) {
	b.mu.Lock()
	b.gasUnstable = v
	b.mu.Unlock()
}

// Env returns the environment the last conversion encoded.
func (b *BME680) Env() Env {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.env
}

// Triggers counts forced-mode conversions.
func (b *BME680) Triggers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.triggers
}

func (b *BME680) Tx(addr uint16, w, r []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if addr != bmeAddr {
		return ErrNack
	}
	if b.failNext > 0 {
		b.failNext--
		return ErrNack
	}
	if len(w) == 0 {
		return ErrNack
	}
	if len(w) >= 2 && len(r) == 0 {
		for i, v := range w[1:] {
			b.regs[int(w[0])+i] = v
		}
		if w[0] == bmeCtrlMeas && w[1]&0x03 == 0x01 {
			b.convert()
		}
		return nil
	}
	copy(r, b.regs[w[0]:])
	return nil
}

// convert advances the random walk and latches one conversion.
func (b *BME680) convert() {
	b.triggers++
	e := &b.env
	e.Temperature = mathx.Clamp(e.Temperature+b.rng.NormFloat64()*0.1, 10, 35)
	e.Humidity = mathx.Clamp(e.Humidity+b.rng.NormFloat64()*0.5, 15, 85)
	e.Pressure = mathx.Clamp(e.Pressure+b.rng.NormFloat64()*20, 98000, 104000)
	e.Gas = mathx.Clamp(e.Gas+b.rng.NormFloat64()*2000, 95000, 190000)

	temp := uint32(e.Temperature * 5120)
	press := uint32(1<<20 - e.Pressure)
	hum := uint32(e.Humidity * 128)
	gas := uint32(512 + (gasScale/e.Gas-1)*1340)

	f := b.regs[bmeField0 : bmeField0+15]
	for i := range f {
		f[i] = 0
	}
	f[0] = 0x80
	f[2], f[3], f[4] = byte(press>>12), byte(press>>4), byte(press<<4)
	f[5], f[6], f[7] = byte(temp>>12), byte(temp>>4), byte(temp<<4)
	f[8], f[9] = byte(hum>>8), byte(hum)
	f[13] = byte(gas >> 2)
	f[14] = byte(gas<<6) | 0x20 | gasRange
	if !b.gasUnstable {
		f[14] |= 0x10
	}
}
