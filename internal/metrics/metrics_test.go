package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atmo-monitor-go/errcode"
	"atmo-monitor-go/services/refresh"
	"atmo-monitor-go/types"
)

var _ refresh.Observer = (*Observer)(nil)

func TestCountersFollowEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	o := New(reg)

	o.CycleStarted(1)
	o.ReadingStored(types.SourceEnvironmental, 1)
	o.ReadingStored(types.SourceParticulate, 1)
	o.StaleDiscarded(types.SourceParticulate, 0)
	o.SensorFault(types.SourceEnvironmental, errcode.Wrap(errcode.BusFault, "bme680.read", assert.AnError))
	o.TimedOut(1, true, false)
	o.RenderFailed(1, errcode.Wrap(errcode.BusFault, "display.flush", assert.AnError))
	o.CycleStarted(2)

	assert.Equal(t, 2.0, testutil.ToFloat64(o.cycles))
	assert.Equal(t, 2.0, testutil.ToFloat64(o.epoch))
	assert.Equal(t, 1.0, testutil.ToFloat64(o.readings.WithLabelValues("environmental")))
	assert.Equal(t, 1.0, testutil.ToFloat64(o.readings.WithLabelValues("particulate")))
	assert.Equal(t, 1.0, testutil.ToFloat64(o.stale.WithLabelValues("particulate")))
	assert.Equal(t, 1.0, testutil.ToFloat64(o.faults.WithLabelValues("environmental", "bus_fault")))
	assert.Equal(t, 1.0, testutil.ToFloat64(o.timeouts.WithLabelValues("particulate")))
	assert.Equal(t, 1, testutil.CollectAndCount(o.timeouts), "environmental was present")
	assert.Equal(t, 1.0, testutil.ToFloat64(o.renderFailures.WithLabelValues("bus_fault")))
}

func TestRenderedSetsGauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	o := New(reg)

	env := types.EnvironmentalReading{Temperature: 21.5, Humidity: 40, Pressure: 1012, GasResistance: 90000, GasValid: true, HeatStable: true}
	o.Rendered(3, env, types.ParticulateReading{PM2_5Atm: 12, PM10: 20})

	assert.Equal(t, 1.0, testutil.ToFloat64(o.renders))
	assert.Equal(t, 21.5, testutil.ToFloat64(o.temperature))
	assert.Equal(t, 1.0, testutil.ToFloat64(o.gasValid))
	assert.Equal(t, 90000.0, testutil.ToFloat64(o.gasResistance))
	assert.Equal(t, 12.0, testutil.ToFloat64(o.pm.WithLabelValues("2.5", "atmospheric")))
	assert.Equal(t, 20.0, testutil.ToFloat64(o.pm.WithLabelValues("10", "standard")))

	env.HeatStable = false
	env.GasResistance = 1
	o.Rendered(4, env, types.ParticulateReading{})
	assert.Equal(t, 0.0, testutil.ToFloat64(o.gasValid))
	assert.Equal(t, 90000.0, testutil.ToFloat64(o.gasResistance), "invalid gas keeps the last valid value")
}

func TestRegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	require.Panics(t, func() { New(reg) })

	mfs, err := reg.Gather()
	require.NoError(t, err)
	// vectors without children are not gathered
	assert.NotEmpty(t, mfs)
}
