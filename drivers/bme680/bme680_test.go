package bme680

import (
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"tinygo.org/x/drivers"

	"atmo-monitor-go/errcode"
)

var _ drivers.I2C = (*fakeBus)(nil)

// Register-file fake. A forced-mode write to ctrl_meas flags new data after
// `pending` further field reads.
type fakeBus struct {
	mu      sync.Mutex
	regs    [256]byte
	writes  map[byte]byte
	pending int
	delay   int
	fail    error
}

func newFakeBus() *fakeBus {
	f := &fakeBus{writes: map[byte]byte{}}
	f.regs[regChipID] = chipID

	// T1=0 T2=16384 T3=0 -> t_fine == adc
	f.setCal(calT2MSB, 0x40)
	// H2=2048, all other humidity terms zero -> hum == adc/128
	f.setCal(calH2MSB, 0x80)

	// field data: 25 °C, 50 %RH, gas adc 512 range 0, valid + stable
	f.regs[regField0+5] = 0x1F
	f.regs[regField0+6] = 0x40
	f.regs[regField0+8] = 0x19
	f.regs[regField0+13] = 0x80
	f.regs[regField0+14] = gasValid | heatStable
	return f
}

func (f *fakeBus) setCal(idx int, v byte) {
	if idx < coeff1Len {
		f.regs[regCoeff1+idx] = v
		return
	}
	f.regs[regCoeff2+idx-coeff1Len] = v
}

func (f *fakeBus) Tx(addr uint16, w, r []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	if len(w) == 2 && len(r) == 0 {
		f.writes[w[0]] = w[1]
		if w[0] == regCtrlMeas && w[1]&0x03 == modeForced {
			f.regs[regField0] &^= statusNew
			f.pending = f.delay
		}
		return nil
	}
	if len(w) == 1 {
		if w[0] == regField0 && f.regs[regField0]&statusNew == 0 {
			if f.pending == 0 {
				f.regs[regField0] |= statusNew
			} else {
				f.pending--
			}
		}
		copy(r, f.regs[w[0]:])
		return nil
	}
	return errors.New("unexpected transaction")
}

func configured(t *testing.T, f *fakeBus) *Device {
	t.Helper()
	d := New(f, DefaultConfig())
	if err := d.Configure(); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	return d
}

func TestConfigureWritesProfile(t *testing.T) {
	f := newFakeBus()
	configured(t, f)

	want := map[byte]byte{
		regSoftReset: softResetCmd,
		regCtrlHum:   0x02,      // OS2x
		regConfig:    0x02 << 2, // IIR 3
		regCtrlMeas:  0x8C,      // T 8x, P 4x, sleep
		regGasWait0:  0xD7,      // 1500 ms
		regResHeat0:  206,       // 320 °C at 25 °C with zero heater calibration
		regCtrlGas1:  runGas,
	}
	for reg, v := range want {
		if got := f.writes[reg]; got != v {
			t.Errorf("reg 0x%02X = 0x%02X, want 0x%02X", reg, got, v)
		}
	}
}

func TestConfigureRejectsWrongChip(t *testing.T) {
	f := newFakeBus()
	f.regs[regChipID] = 0x60
	err := New(f, DefaultConfig()).Configure()
	if !errors.Is(err, ErrBadChipID) || errcode.Of(err) != errcode.BadChipID {
		t.Fatalf("err = %v", err)
	}
}

func TestBusFaultCarriesCode(t *testing.T) {
	f := newFakeBus()
	f.fail = errors.New("nack")
	err := New(f, DefaultConfig()).Configure()
	if errcode.Of(err) != errcode.BusFault {
		t.Fatalf("code = %v, want bus_fault", errcode.Of(err))
	}
}

func TestTriggerBeforeConfigure(t *testing.T) {
	d := New(newFakeBus(), DefaultConfig())
	if err := d.Trigger(); err != ErrNotStarted {
		t.Fatalf("Trigger: %v", err)
	}
	var s Sample
	if err := d.Collect(&s); err != ErrNotStarted {
		t.Fatalf("Collect: %v", err)
	}
}

func TestTriggerCollectCompensates(t *testing.T) {
	f := newFakeBus()
	f.delay = 1
	d := configured(t, f)

	if err := d.Trigger(); err != nil {
		t.Fatal(err)
	}
	var s Sample
	if err := d.Collect(&s); err != ErrNotReady {
		t.Fatalf("first Collect: %v, want ErrNotReady", err)
	}
	if err := d.Collect(&s); err != nil {
		t.Fatalf("second Collect: %v", err)
	}

	if math.Abs(float64(s.Temperature)-25) > 0.01 {
		t.Errorf("temperature = %v", s.Temperature)
	}
	if math.Abs(float64(s.Humidity)-50) > 0.01 {
		t.Errorf("humidity = %v", s.Humidity)
	}
	if s.Pressure != 0 {
		t.Errorf("pressure = %v, want 0 with P1 = 0", s.Pressure)
	}
	if s.GasResistance < 7_999_000 || s.GasResistance > 8_001_000 {
		t.Errorf("gas = %d", s.GasResistance)
	}
	if !s.GasValid || !s.HeatStable {
		t.Errorf("flags = %v/%v", s.GasValid, s.HeatStable)
	}
}

func TestHumidityClamped(t *testing.T) {
	c := calibration{h2: 4095}
	if h := c.humidity(0xFFFF, 25*5120); h != 100 {
		t.Fatalf("high = %v", h)
	}
	c = calibration{h1: 4095, h2: 4095}
	if h := c.humidity(0, 25*5120); h != 0 {
		t.Fatalf("low = %v", h)
	}
}

func TestGasWaitCode(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want byte
	}{
		{0, 0},
		{63 * time.Millisecond, 63},
		{64 * time.Millisecond, 16 + 64},
		{1500 * time.Millisecond, 23 + 3*64},
		{5 * time.Second, 0xFF},
	}
	for _, c := range cases {
		if got := GasWaitCode(c.d); got != c.want {
			t.Errorf("GasWaitCode(%v) = %d, want %d", c.d, got, c.want)
		}
	}
}

func TestProfileDuration(t *testing.T) {
	if got := ProfileDuration(DefaultConfig()); got != 1533*time.Millisecond {
		t.Fatalf("default profile = %v", got)
	}
	cfg := DefaultConfig()
	cfg.HeaterDuration = 0
	cfg.Temperature, cfg.Pressure, cfg.Humidity = OS1x, OSNone, OSNone
	if got := ProfileDuration(cfg); got != 7*time.Millisecond {
		t.Fatalf("minimal profile = %v", got)
	}
}
