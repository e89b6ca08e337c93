package types

// Source names the sensor a message came from.
type Source uint8

const (
	SourceEnvironmental Source = iota + 1
	SourceParticulate
)

func (s Source) String() string {
	switch s {
	case SourceEnvironmental:
		return "environmental"
	case SourceParticulate:
		return "particulate"
	default:
		return "unknown"
	}
}

// DisplayMessage is the tagged union delivered through the result mailbox.
// Exactly one of Env/PM is meaningful, selected by Source. A non-nil Err
// reports a failed acquisition for that source instead of a reading.
type DisplayMessage struct {
	Source Source
	Epoch  uint32
	Env    EnvironmentalReading
	PM     ParticulateReading
	Err    error
}

// EnvMessage builds an environmental result.
func EnvMessage(epoch uint32, r EnvironmentalReading) DisplayMessage {
	return DisplayMessage{Source: SourceEnvironmental, Epoch: epoch, Env: r}
}

// PMMessage builds a particulate result.
func PMMessage(epoch uint32, r ParticulateReading) DisplayMessage {
	return DisplayMessage{Source: SourceParticulate, Epoch: epoch, PM: r}
}

// FaultMessage reports a failed acquisition.
func FaultMessage(src Source, epoch uint32, err error) DisplayMessage {
	return DisplayMessage{Source: src, Epoch: epoch, Err: err}
}
