package bme680

// I2C addresses (SDO low / high).
const (
	AddressPrimary   = 0x76
	AddressSecondary = 0x77
)

const chipID = 0x61

// Register map (BME680, low-variant gas).
const (
	regResHeatVal   = 0x00
	regResHeatRange = 0x02
	regRangeSwErr   = 0x04
	regField0       = 0x1D
	regResHeat0     = 0x5A
	regGasWait0     = 0x64
	regCtrlGas0     = 0x70
	regCtrlGas1     = 0x71
	regCtrlHum      = 0x72
	regCtrlMeas     = 0x74
	regConfig       = 0x75
	regCoeff1       = 0x89
	regChipID       = 0xD0
	regCoeff2       = 0xE1
	regSoftReset    = 0xE0
)

const (
	softResetCmd = 0xB6

	coeff1Len = 25
	coeff2Len = 16
	fieldLen  = 15

	modeSleep  = 0x00
	modeForced = 0x01

	runGas     = 0x10
	statusNew  = 0x80
	gasValid   = 0x20
	heatStable = 0x10
)

// Offsets into the concatenated 41-byte calibration block.
const (
	calT2LSB  = 1
	calT2MSB  = 2
	calT3     = 3
	calP1LSB  = 5
	calP1MSB  = 6
	calP2LSB  = 7
	calP2MSB  = 8
	calP3     = 9
	calP4LSB  = 11
	calP4MSB  = 12
	calP5LSB  = 13
	calP5MSB  = 14
	calP7     = 15
	calP6     = 16
	calP8LSB  = 19
	calP8MSB  = 20
	calP9LSB  = 21
	calP9MSB  = 22
	calP10    = 23
	calH2MSB  = 25
	calH2LSB  = 26
	calH1LSB  = 26
	calH1MSB  = 27
	calH3     = 28
	calH4     = 29
	calH5     = 30
	calH6     = 31
	calH7     = 32
	calT1LSB  = 33
	calT1MSB  = 34
	calGH2LSB = 35
	calGH2MSB = 36
	calGH1    = 37
	calGH3    = 38
)

// Oversampling settings (ctrl_hum / ctrl_meas encodings).
type Oversampling uint8

const (
	OSNone Oversampling = iota
	OS1x
	OS2x
	OS4x
	OS8x
	OS16x
)

// measurement cycles per oversampling setting
var osCycles = [...]uint32{0, 1, 2, 4, 8, 16}

// IIR filter coefficient (config register encodings).
type Filter uint8

const (
	FilterOff Filter = iota
	FilterSize1
	FilterSize3
	FilterSize7
	FilterSize15
	FilterSize31
	FilterSize63
	FilterSize127
)

// Gas range correction tables (float variant of the vendor reference).
var (
	lookupK1 = [16]float32{0, 0, 0, 0, 0, -1.0, 0, -0.8, 0, 0, -0.2, -0.5, 0, -1.0, 0, 0}
	lookupK2 = [16]float32{0, 0, 0, 0, 0.1, 0.7, 0, -0.8, -0.1, 0, 0, 0, 0, 0, 0, 0}
)
