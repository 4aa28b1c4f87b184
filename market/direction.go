package market

// Direction is the side of a structure break, zone, or position.
type Direction int

const (
	Up   Direction = 1
	Down Direction = -1
)

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return "none"
	}
}

// Sign returns +1 for Up and -1 for Down, handy for symmetric price math.
func (d Direction) Sign() float64 {
	return float64(d)
}

// Opposite returns the other side.
func (d Direction) Opposite() Direction {
	return -d
}
