package types

// Command switches an acquisition task on or off.
type Command uint8

const (
	Off Command = iota
	On
)

func (c Command) String() string {
	switch c {
	case On:
		return "on"
	case Off:
		return "off"
	default:
		return "unknown"
	}
}

// Order is what travels through a sensor's command signal. Epoch identifies the
// collection cycle that issued it; results are stamped with the same value.
type Order struct {
	Cmd   Command
	Epoch uint32
}
