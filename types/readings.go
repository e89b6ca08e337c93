package types

// ------------------------
// Environmental (BME680)
// ------------------------

// EnvironmentalReading is one complete BME680 transaction.
type EnvironmentalReading struct {
	Temperature   float32 `json:"temperature"`    // °C
	Humidity      float32 `json:"humidity"`       // %RH
	Pressure      float32 `json:"pressure"`       // hPa
	GasResistance uint32  `json:"gas_resistance"` // ohms
	GasValid      bool    `json:"gas_valid"`
	HeatStable    bool    `json:"heat_stable"`
}

// GasUsable reports whether the gas resistance may be shown.
func (r EnvironmentalReading) GasUsable() bool { return r.GasValid && r.HeatStable }

// ------------------------
// Particulate (PMS7003)
// ------------------------

// ParticulateSample holds the six mass-concentration channels of one frame (µg/m³).
// The Atm channels are the sensor's atmospheric-environment values.
type ParticulateSample struct {
	PM1_0    uint16 `json:"pm1_0"`
	PM2_5    uint16 `json:"pm2_5"`
	PM10     uint16 `json:"pm10"`
	PM1_0Atm uint16 `json:"pm1_0_atm"`
	PM2_5Atm uint16 `json:"pm2_5_atm"`
	PM10Atm  uint16 `json:"pm10_atm"`
}

// ParticulateReading is the per-channel mean of one full sample window.
type ParticulateReading ParticulateSample

// AveragingWindow is the number of samples behind every ParticulateReading.
const AveragingWindow = 5
