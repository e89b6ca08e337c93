package display

// Color is one of the panel's three inks.
type Color uint8

const (
	White Color = iota
	Black
	Red
)

func (c Color) String() string {
	switch c {
	case Black:
		return "black"
	case Red:
		return "red"
	default:
		return "white"
	}
}

// Font selects one of the fixed faces the layout uses.
type Font uint8

const (
	Small  Font = iota // labels
	Medium             // title
	Large              // PM2.5 numeral
)

// Canvas is the minimal drawing surface the screen needs. Implementations
// buffer drawing between Clear and Flush; Flush pushes the frame to the panel.
type Canvas interface {
	Wake() error
	Clear()
	Text(x, y int16, s string, f Font, c Color)
	Flush() error
	Sleep() error
}
