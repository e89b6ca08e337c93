// Package metrics exports refresh coordinator events as Prometheus series.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"atmo-monitor-go/errcode"
	"atmo-monitor-go/types"
)

const namespace = "atmo"

// Observer implements refresh.Observer on top of Prometheus collectors.
type Observer struct {
	cycles         prometheus.Counter
	readings       *prometheus.CounterVec
	stale          *prometheus.CounterVec
	faults         *prometheus.CounterVec
	timeouts       *prometheus.CounterVec
	renders        prometheus.Counter
	renderFailures *prometheus.CounterVec
	epoch          prometheus.Gauge

	temperature   prometheus.Gauge
	humidity      prometheus.Gauge
	pressure      prometheus.Gauge
	gasResistance prometheus.Gauge
	gasValid      prometheus.Gauge
	pm            *prometheus.GaugeVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Observer {
	o := &Observer{
		cycles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Collection cycles started",
		}),
		readings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "readings_total",
			Help:      "Readings accepted for the current cycle",
		}, []string{"source"}),
		stale: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_readings_total",
			Help:      "Readings discarded because they belong to an earlier cycle",
		}, []string{"source"}),
		faults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sensor_faults_total",
			Help:      "Acquisition failures reported by a sensor task",
		}, []string{"source", "code"}),
		timeouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collect_timeouts_total",
			Help:      "Cycles that hit the collection deadline, by missing sensor",
		}, []string{"missing"}),
		renders: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "renders_total",
			Help:      "Successful display refreshes",
		}),
		renderFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "render_failures_total",
			Help:      "Failed display refreshes",
		}, []string{"code"}),
		epoch: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cycle_epoch",
			Help:      "Epoch of the most recent collection cycle",
		}),
		temperature: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "temperature_celsius",
			Help:      "Last rendered temperature (°C)",
		}),
		humidity: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "humidity_percent",
			Help:      "Last rendered relative humidity (%)",
		}),
		pressure: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pressure_hpa",
			Help:      "Last rendered pressure (hPa)",
		}),
		gasResistance: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "gas_resistance_ohms",
			Help:      "Last rendered gas resistance (ohms); only updated when valid",
		}),
		gasValid: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "gas_valid",
			Help:      "1 if the last rendered gas reading was valid and heat-stable",
		}),
		pm: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pm_ugm3",
			Help:      "Last rendered particulate mass concentration (ug/m3)",
		}, []string{"size", "basis"}),
	}
	reg.MustRegister(
		o.cycles, o.readings, o.stale, o.faults, o.timeouts,
		o.renders, o.renderFailures, o.epoch,
		o.temperature, o.humidity, o.pressure, o.gasResistance, o.gasValid, o.pm,
	)
	return o
}

func (o *Observer) CycleStarted(epoch uint32) {
	o.cycles.Inc()
	o.epoch.Set(float64(epoch))
}

func (o *Observer) ReadingStored(src types.Source, _ uint32) {
	o.readings.WithLabelValues(src.String()).Inc()
}

func (o *Observer) StaleDiscarded(src types.Source, _ uint32) {
	o.stale.WithLabelValues(src.String()).Inc()
}

func (o *Observer) SensorFault(src types.Source, err error) {
	o.faults.WithLabelValues(src.String(), string(errcode.Of(err))).Inc()
}

func (o *Observer) TimedOut(_ uint32, haveEnv, havePM bool) {
	if !haveEnv {
		o.timeouts.WithLabelValues(types.SourceEnvironmental.String()).Inc()
	}
	if !havePM {
		o.timeouts.WithLabelValues(types.SourceParticulate.String()).Inc()
	}
}

func (o *Observer) Rendered(_ uint32, env types.EnvironmentalReading, pm types.ParticulateReading) {
	o.renders.Inc()
	o.temperature.Set(float64(env.Temperature))
	o.humidity.Set(float64(env.Humidity))
	o.pressure.Set(float64(env.Pressure))
	if env.GasUsable() {
		o.gasValid.Set(1)
		o.gasResistance.Set(float64(env.GasResistance))
	} else {
		o.gasValid.Set(0)
	}
	o.pm.WithLabelValues("1.0", "standard").Set(float64(pm.PM1_0))
	o.pm.WithLabelValues("2.5", "standard").Set(float64(pm.PM2_5))
	o.pm.WithLabelValues("10", "standard").Set(float64(pm.PM10))
	o.pm.WithLabelValues("1.0", "atmospheric").Set(float64(pm.PM1_0Atm))
	o.pm.WithLabelValues("2.5", "atmospheric").Set(float64(pm.PM2_5Atm))
	o.pm.WithLabelValues("10", "atmospheric").Set(float64(pm.PM10Atm))
}

func (o *Observer) RenderFailed(_ uint32, err error) {
	o.renderFailures.WithLabelValues(string(errcode.Of(err))).Inc()
}
