package refresh

import (
	"sync/atomic"

	"atmo-monitor-go/types"
)

// Observer receives coordinator events. Calls are made synchronously from the
// coordinator goroutine and must not block.
type Observer interface {
	CycleStarted(epoch uint32)
	ReadingStored(src types.Source, epoch uint32)
	StaleDiscarded(src types.Source, epoch uint32)
	SensorFault(src types.Source, err error)
	TimedOut(epoch uint32, haveEnv, havePM bool)
	Rendered(epoch uint32, env types.EnvironmentalReading, pm types.ParticulateReading)
	RenderFailed(epoch uint32, err error)
}

// NopObserver ignores everything. Embed it to implement part of Observer.
type NopObserver struct{}

func (NopObserver) CycleStarted(uint32)                                                   {}
func (NopObserver) ReadingStored(types.Source, uint32)                                    {}
func (NopObserver) StaleDiscarded(types.Source, uint32)                                   {}
func (NopObserver) SensorFault(types.Source, error)                                       {}
func (NopObserver) TimedOut(uint32, bool, bool)                                           {}
func (NopObserver) Rendered(uint32, types.EnvironmentalReading, types.ParticulateReading) {}
func (NopObserver) RenderFailed(uint32, error)                                            {}

type multi []Observer

// Observers fans events out to every non-nil o.
func Observers(os ...Observer) Observer {
	var m multi
	for _, o := range os {
		if o != nil {
			m = append(m, o)
		}
	}
	return m
}

func (m multi) CycleStarted(e uint32) {
	for _, o := range m {
		o.CycleStarted(e)
	}
}

func (m multi) ReadingStored(s types.Source, e uint32) {
	for _, o := range m {
		o.ReadingStored(s, e)
	}
}

func (m multi) StaleDiscarded(s types.Source, e uint32) {
	for _, o := range m {
		o.StaleDiscarded(s, e)
	}
}

func (m multi) SensorFault(s types.Source, err error) {
	for _, o := range m {
		o.SensorFault(s, err)
	}
}

func (m multi) TimedOut(e uint32, env, pm bool) {
	for _, o := range m {
		o.TimedOut(e, env, pm)
	}
}

func (m multi) Rendered(e uint32, env types.EnvironmentalReading, pm types.ParticulateReading) {
	for _, o := range m {
		o.Rendered(e, env, pm)
	}
}

func (m multi) RenderFailed(e uint32, err error) {
	for _, o := range m {
		o.RenderFailed(e, err)
	}
}

// Stats is a point-in-time copy of Counters.
type Stats struct {
	Cycles         uint32
	Readings       uint32
	Renders        uint32
	RenderFailures uint32
	Timeouts       uint32
	Stale          uint32
	Faults         uint32
	LastEpoch      uint32
	LastPM2_5      uint16
}

// Counters is an allocation-free Observer safe for concurrent Snapshot.
type Counters struct {
	cycles, readings, renders, renderFailures atomic.Uint32
	timeouts, stale, faults, lastEpoch        atomic.Uint32
	lastPM                                    atomic.Uint32
}

func (c *Counters) CycleStarted(e uint32) {
	c.cycles.Add(1)
	c.lastEpoch.Store(e)
}
func (c *Counters) ReadingStored(types.Source, uint32)  { c.readings.Add(1) }
func (c *Counters) StaleDiscarded(types.Source, uint32) { c.stale.Add(1) }
func (c *Counters) SensorFault(types.Source, error)     { c.faults.Add(1) }
func (c *Counters) TimedOut(uint32, bool, bool)         { c.timeouts.Add(1) }
func (c *Counters) RenderFailed(uint32, error)          { c.renderFailures.Add(1) }
func (c *Counters) Rendered(_ uint32, _ types.EnvironmentalReading, pm types.ParticulateReading) {
	c.renders.Add(1)
	c.lastPM.Store(uint32(pm.PM2_5Atm))
}

func (c *Counters) Snapshot() Stats {
	return Stats{
		Cycles:         c.cycles.Load(),
		Readings:       c.readings.Load(),
		Renders:        c.renders.Load(),
		RenderFailures: c.renderFailures.Load(),
		Timeouts:       c.timeouts.Load(),
		Stale:          c.stale.Load(),
		Faults:         c.faults.Load(),
		LastEpoch:      c.lastEpoch.Load(),
		LastPM2_5:      uint16(c.lastPM.Load()),
	}
}
