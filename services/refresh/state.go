package refresh

import (
	"time"

	"atmo-monitor-go/types"
)

// CycleState is owned by the coordinator; State returns copies.
type CycleState struct {
	Epoch uint32 // current (or last) collection cycle

	// Pending readings for the collection in progress. A timed-out cycle
	// leaves them in place; only readings stamped with the current epoch
	// count towards a render.
	Env      types.EnvironmentalReading
	EnvEpoch uint32
	HasEnv   bool
	PM       types.ParticulateReading
	PMEpoch  uint32
	HasPM    bool

	// What the panel currently shows.
	ShownEnv   types.EnvironmentalReading
	ShownPM    types.ParticulateReading
	HasShown   bool
	LastRender time.Time

	DisplayOn bool
}

func (s *CycleState) store(m types.DisplayMessage) {
	switch m.Source {
	case types.SourceEnvironmental:
		s.Env, s.EnvEpoch, s.HasEnv = m.Env, m.Epoch, true
	case types.SourceParticulate:
		s.PM, s.PMEpoch, s.HasPM = m.PM, m.Epoch, true
	}
}

func (s *CycleState) complete(epoch uint32) bool {
	return s.HasEnv && s.EnvEpoch == epoch && s.HasPM && s.PMEpoch == epoch
}

func (s *CycleState) has(src types.Source, epoch uint32) bool {
	switch src {
	case types.SourceEnvironmental:
		return s.HasEnv && s.EnvEpoch == epoch
	case types.SourceParticulate:
		return s.HasPM && s.PMEpoch == epoch
	}
	return false
}

func (s *CycleState) shown(env types.EnvironmentalReading, pm types.ParticulateReading, at time.Time) {
	s.ShownEnv, s.ShownPM, s.HasShown = env, pm, true
	s.LastRender = at
}

func (s *CycleState) clearPending() {
	s.Env, s.EnvEpoch, s.HasEnv = types.EnvironmentalReading{}, 0, false
	s.PM, s.PMEpoch, s.HasPM = types.ParticulateReading{}, 0, false
}
