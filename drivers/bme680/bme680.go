// Package bme680 provides a driver for the Bosch BME680 gas, pressure,
// temperature and humidity sensor on I²C.
//
// Measurements run in forced mode with a split-phase API:
//
//	d.Trigger()             // start one TPHG conversion (fast)
//	time.Sleep(d.ProfileDuration())
//	err := d.Collect(&s)    // ErrNotReady while the conversion is running
//
// The profile duration depends only on the oversampling and heater settings,
// so it is computed once in Configure.
//
// Compensation follows the vendor's floating-point reference.
package bme680

import (
	"time"

	"tinygo.org/x/drivers"

	"atmo-monitor-go/errcode"
	"atmo-monitor-go/x/mathx"
)

// Errors returned by the driver.
var (
	ErrNotReady   = &errcode.E{C: errcode.NotReady, Op: "bme680"}
	ErrBadChipID  = &errcode.E{C: errcode.BadChipID, Op: "bme680"}
	ErrNotStarted = &errcode.E{C: errcode.NotInitialised, Op: "bme680"}
)

// Config selects the measurement profile. Zero values mean "off" except
// Address, which defaults to AddressPrimary.
type Config struct {
	Address uint16

	Temperature Oversampling
	Pressure    Oversampling
	Humidity    Oversampling
	Filter      Filter

	// Gas heater; HeaterDuration == 0 disables the gas measurement.
	HeaterTemp     uint16 // °C, capped at 400
	HeaterDuration time.Duration
	AmbientTemp    int8 // °C, used to compute the heater resistance
}

// DefaultConfig is the monitor's profile: T 8x, P 4x, H 2x, IIR 3,
// heater 320 °C for 1.5 s at 25 °C ambient.
func DefaultConfig() Config {
	return Config{
		Address:        AddressSecondary,
		Temperature:    OS8x,
		Pressure:       OS4x,
		Humidity:       OS2x,
		Filter:         FilterSize3,
		HeaterTemp:     320,
		HeaterDuration: 1500 * time.Millisecond,
		AmbientTemp:    25,
	}
}

type calibration struct {
	t1 uint16
	t2 int16
	t3 int8

	p1  uint16
	p2  int16
	p3  int8
	p4  int16
	p5  int16
	p6  int8
	p7  int8
	p8  int16
	p9  int16
	p10 uint8

	h1 uint16
	h2 uint16
	h3 int8
	h4 int8
	h5 int8
	h6 uint8
	h7 int8

	gh1 int8
	gh2 int16
	gh3 int8

	resHeatRange uint8
	resHeatVal   int8
	rangeSwErr   int8
}

// Sample is one compensated measurement.
type Sample struct {
	Temperature   float32 // °C
	Pressure      float32 // hPa
	Humidity      float32 // %RH
	GasResistance uint32  // ohms
	GasValid      bool
	HeatStable    bool
}

// Device wraps an I²C connection to a BME680.
type Device struct {
	bus  drivers.I2C
	addr uint16
	cfg  Config
	cal  calibration

	ctrlMeas   byte
	profile    time.Duration
	configured bool

	w [2]byte
	r [coeff1Len + coeff2Len]byte
}

// New creates a Device. It does not touch the bus.
func New(bus drivers.I2C, cfg Config) *Device {
	if cfg.Address == 0 {
		cfg.Address = AddressPrimary
	}
	return &Device{bus: bus, addr: cfg.Address, cfg: cfg}
}

// Configure resets the sensor, checks its identity, loads calibration and
// applies the measurement profile.
func (d *Device) Configure() error {
	d.configured = false
	if err := d.writeReg(regSoftReset, softResetCmd); err != nil {
		return err
	}
	time.Sleep(10 * time.Millisecond)

	id, err := d.readReg(regChipID)
	if err != nil {
		return err
	}
	if id != chipID {
		return ErrBadChipID
	}
	if err := d.readCalibration(); err != nil {
		return err
	}

	// ctrl_hum must be written before ctrl_meas for it to take effect.
	if err := d.writeReg(regCtrlHum, byte(d.cfg.Humidity)&0x07); err != nil {
		return err
	}
	if err := d.writeReg(regConfig, (byte(d.cfg.Filter)&0x07)<<2); err != nil {
		return err
	}
	d.ctrlMeas = (byte(d.cfg.Temperature)&0x07)<<5 | (byte(d.cfg.Pressure)&0x07)<<2
	if err := d.writeReg(regCtrlMeas, d.ctrlMeas|modeSleep); err != nil {
		return err
	}

	gas := byte(0)
	if d.cfg.HeaterDuration > 0 {
		if err := d.writeReg(regResHeat0, d.heaterResistance(d.cfg.HeaterTemp)); err != nil {
			return err
		}
		if err := d.writeReg(regGasWait0, GasWaitCode(d.cfg.HeaterDuration)); err != nil {
			return err
		}
		gas = runGas // heater profile 0
	}
	if err := d.writeReg(regCtrlGas0, 0); err != nil {
		return err
	}
	if err := d.writeReg(regCtrlGas1, gas); err != nil {
		return err
	}

	d.profile = ProfileDuration(d.cfg)
	d.configured = true
	return nil
}

// ProfileDuration is how long one forced conversion takes with the current settings.
func (d *Device) ProfileDuration() time.Duration { return d.profile }

// Trigger starts one forced-mode conversion.
func (d *Device) Trigger() error {
	if !d.configured {
		return ErrNotStarted
	}
	return d.writeReg(regCtrlMeas, d.ctrlMeas|modeForced)
}

// Collect reads the conversion started by Trigger. It returns ErrNotReady
// while the sensor has not flagged new data.
func (d *Device) Collect(out *Sample) error {
	if !d.configured {
		return ErrNotStarted
	}
	buf := d.r[:fieldLen]
	if err := d.read(regField0, buf); err != nil {
		return err
	}
	if buf[0]&statusNew == 0 {
		return ErrNotReady
	}

	presADC := uint32(buf[2])<<12 | uint32(buf[3])<<4 | uint32(buf[4])>>4
	tempADC := uint32(buf[5])<<12 | uint32(buf[6])<<4 | uint32(buf[7])>>4
	humADC := uint16(buf[8])<<8 | uint16(buf[9])
	gasADC := uint16(buf[13])<<2 | uint16(buf[14])>>6
	gasRange := buf[14] & 0x0F

	tFine := d.cal.tFine(tempADC)
	if out != nil {
		out.Temperature = tFine / 5120.0
		out.Pressure = d.cal.pressure(presADC, tFine) / 100.0
		out.Humidity = d.cal.humidity(humADC, tFine)
		out.GasResistance = d.cal.gasResistance(gasADC, gasRange)
		out.GasValid = buf[14]&gasValid != 0
		out.HeatStable = buf[14]&heatStable != 0
	}
	return nil
}

// Read performs Trigger, waits the profile duration, then polls Collect a few times.
func (d *Device) Read(out *Sample) error {
	if err := d.Trigger(); err != nil {
		return err
	}
	time.Sleep(d.profile)
	for i := 0; ; i++ {
		err := d.Collect(out)
		if err != ErrNotReady || i >= 10 {
			if err == ErrNotReady {
				return &errcode.E{C: errcode.Timeout, Op: "bme680.read"}
			}
			return err
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func (d *Device) readCalibration() error {
	if err := d.read(regCoeff1, d.r[:coeff1Len]); err != nil {
		return err
	}
	if err := d.read(regCoeff2, d.r[coeff1Len:]); err != nil {
		return err
	}
	d.cal = parseCalibration(d.r[:])

	var b [1]byte
	if err := d.read(regResHeatRange, b[:]); err != nil {
		return err
	}
	d.cal.resHeatRange = (b[0] & 0x30) >> 4
	if err := d.read(regResHeatVal, b[:]); err != nil {
		return err
	}
	d.cal.resHeatVal = int8(b[0])
	if err := d.read(regRangeSwErr, b[:]); err != nil {
		return err
	}
	d.cal.rangeSwErr = int8(b[0]&0xF0) >> 4
	return nil
}

func parseCalibration(c []byte) calibration {
	u16 := func(msb, lsb int) uint16 { return uint16(c[msb])<<8 | uint16(c[lsb]) }
	return calibration{
		t1: u16(calT1MSB, calT1LSB),
		t2: int16(u16(calT2MSB, calT2LSB)),
		t3: int8(c[calT3]),

		p1:  u16(calP1MSB, calP1LSB),
		p2:  int16(u16(calP2MSB, calP2LSB)),
		p3:  int8(c[calP3]),
		p4:  int16(u16(calP4MSB, calP4LSB)),
		p5:  int16(u16(calP5MSB, calP5LSB)),
		p6:  int8(c[calP6]),
		p7:  int8(c[calP7]),
		p8:  int16(u16(calP8MSB, calP8LSB)),
		p9:  int16(u16(calP9MSB, calP9LSB)),
		p10: c[calP10],

		h1: uint16(c[calH1MSB])<<4 | uint16(c[calH1LSB]&0x0F),
		h2: uint16(c[calH2MSB])<<4 | uint16(c[calH2LSB])>>4,
		h3: int8(c[calH3]),
		h4: int8(c[calH4]),
		h5: int8(c[calH5]),
		h6: c[calH6],
		h7: int8(c[calH7]),

		gh1: int8(c[calGH1]),
		gh2: int16(u16(calGH2MSB, calGH2LSB)),
		gh3: int8(c[calGH3]),
	}
}

// ---- compensation ----

func (c *calibration) tFine(adc uint32) float32 {
	a := float32(adc)
	v1 := (a/16384.0 - float32(c.t1)/1024.0) * float32(c.t2)
	x := a/131072.0 - float32(c.t1)/8192.0
	v2 := x * x * float32(c.t3) * 16.0
	return v1 + v2
}

// pressure returns Pa.
func (c *calibration) pressure(adc uint32, tFine float32) float32 {
	v1 := tFine/2.0 - 64000.0
	v2 := v1 * v1 * (float32(c.p6) / 131072.0)
	v2 += v1 * float32(c.p5) * 2.0
	v2 = v2/4.0 + float32(c.p4)*65536.0
	v1 = (float32(c.p3)*v1*v1/16384.0 + float32(c.p2)*v1) / 524288.0
	v1 = (1.0 + v1/32768.0) * float32(c.p1)
	if v1 == 0 {
		return 0
	}
	p := 1048576.0 - float32(adc)
	p = (p - v2/4096.0) * 6250.0 / v1
	v1 = float32(c.p9) * p * p / 2147483648.0
	v2 = p * (float32(c.p8) / 32768.0)
	q := p / 256.0
	v3 := q * q * q * (float32(c.p10) / 131072.0)
	return p + (v1+v2+v3+float32(c.p7)*128.0)/16.0
}

func (c *calibration) humidity(adc uint16, tFine float32) float32 {
	t := tFine / 5120.0
	v1 := float32(adc) - (float32(c.h1)*16.0 + float32(c.h3)/2.0*t)
	v2 := v1 * (float32(c.h2) / 262144.0 * (1.0 + float32(c.h4)/16384.0*t + float32(c.h5)/1048576.0*t*t))
	v3 := float32(c.h6) / 16384.0
	v4 := float32(c.h7) / 2097152.0
	return mathx.Clamp(v2+(v3+v4*t)*v2*v2, 0, 100)
}

func (c *calibration) gasResistance(adc uint16, gasRange uint8) uint32 {
	r := gasRange & 0x0F
	v1 := 1340.0 + 5.0*float32(c.rangeSwErr)
	v2 := v1 * (1.0 + lookupK1[r]/100.0)
	v3 := 1.0 + lookupK2[r]/100.0
	denom := v3 * 0.000000125 * float32(uint32(1)<<r) * ((float32(adc)-512.0)/v2 + 1.0)
	if denom <= 0 {
		return 0
	}
	return uint32(1.0 / denom)
}

func (d *Device) heaterResistance(target uint16) byte {
	if target > 400 {
		target = 400
	}
	c := &d.cal
	v1 := float32(c.gh1)/16.0 + 49.0
	v2 := float32(c.gh2)/32768.0*0.0005 + 0.00235
	v3 := float32(c.gh3) / 1024.0
	v4 := v1 * (1.0 + v2*float32(target))
	v5 := v4 + v3*float32(d.cfg.AmbientTemp)
	rh := 3.4 * (v5*(4.0/(4.0+float32(c.resHeatRange)))*(1.0/(1.0+float32(c.resHeatVal)*0.002)) - 25)
	if rh < 0 {
		return 0
	}
	if rh > 255 {
		return 255
	}
	return byte(rh)
}

// GasWaitCode encodes a heater duration into the gas_wait register format
// (6-bit mantissa, 2-bit ×4 multiplier). Durations of 4032 ms or more saturate.
func GasWaitCode(dur time.Duration) byte {
	ms := uint32(dur / time.Millisecond)
	if ms >= 0xFC0 {
		return 0xFF
	}
	var factor byte
	for ms > 0x3F {
		ms /= 4
		factor++
	}
	return byte(ms) + factor*64
}

// ProfileDuration computes the TPHG conversion time for cfg.
func ProfileDuration(cfg Config) time.Duration {
	cycles := osCycles[cfg.Temperature%6] + osCycles[cfg.Pressure%6] + osCycles[cfg.Humidity%6]
	us := cycles * 1963
	us += 477 * 4 // TPH switching
	us += 477 * 5 // gas measurement
	us += 500     // round up
	ms := us/1000 + 1
	return time.Duration(ms)*time.Millisecond + cfg.HeaterDuration
}

// ---- bus helpers ----

func (d *Device) read(reg byte, buf []byte) error {
	d.w[0] = reg
	if err := d.bus.Tx(d.addr, d.w[:1], buf); err != nil {
		return &errcode.E{C: errcode.BusFault, Op: "bme680.read", Err: err}
	}
	return nil
}

func (d *Device) readReg(reg byte) (byte, error) {
	var b [1]byte
	err := d.read(reg, b[:])
	return b[0], err
}

func (d *Device) writeReg(reg, val byte) error {
	d.w[0] = reg
	d.w[1] = val
	if err := d.bus.Tx(d.addr, d.w[:2], nil); err != nil {
		return &errcode.E{C: errcode.BusFault, Op: "bme680.write", Err: err}
	}
	return nil
}
