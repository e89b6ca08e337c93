package pmsensor

import "atmo-monitor-go/types"

// Average returns the per-channel truncated mean of one full window.
// Sums are accumulated in 32 bits: 5 × 65535 cannot overflow.
func Average(w *[types.AveragingWindow]types.ParticulateSample) types.ParticulateReading {
	var s [6]uint32
	for i := range w {
		x := &w[i]
		s[0] += uint32(x.PM1_0)
		s[1] += uint32(x.PM2_5)
		s[2] += uint32(x.PM10)
		s[3] += uint32(x.PM1_0Atm)
		s[4] += uint32(x.PM2_5Atm)
		s[5] += uint32(x.PM10Atm)
	}
	const n = uint32(types.AveragingWindow)
	return types.ParticulateReading{
		PM1_0:    uint16(s[0] / n),
		PM2_5:    uint16(s[1] / n),
		PM10:     uint16(s[2] / n),
		PM1_0Atm: uint16(s[3] / n),
		PM2_5Atm: uint16(s[4] / n),
		PM10Atm:  uint16(s[5] / n),
	}
}
