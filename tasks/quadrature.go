package tasks

// Direction is one detent of rotation.
type Direction int8

const (
	DirNone             Direction = 0
	DirClockwise        Direction = 1
	DirCounterClockwise Direction = -1
)

func (d Direction) String() string {
	switch d {
	case DirClockwise:
		return "cw"
	case DirCounterClockwise:
		return "ccw"
	}
	return "none"
}

// quadSteps maps old<<2|new, with state A<<1|B, to -1, 0 or +1. The zero
// entries off the diagonal are double transitions where both lines changed
// between samples.
var quadSteps = [16]int8{
	0, -1, 1, 0,
	1, 0, 0, -1,
	-1, 0, 0, 1,
	0, 1, -1, 0,
}

// stepsPerDetent is the number of valid transitions in one mechanical click.
const stepsPerDetent = 4

// Quadrature decodes a two-line Gray code into detents.
type Quadrature struct {
	state   uint8
	acc     int8
	invalid uint32
}

func quadState(a, b bool) uint8 {
	var s uint8
	if a {
		s |= 2
	}
	if b {
		s |= 1
	}
	return s
}

// NewQuadrature starts a decoder from the current line levels.
func NewQuadrature(a, b bool) Quadrature {
	return Quadrature{state: quadState(a, b)}
}

// Update feeds a new sample and returns a direction once four transitions in
// the same direction have accumulated. Invalid transitions leave the count
// alone and are only tallied.
func (q *Quadrature) Update(a, b bool) Direction {
	next := quadState(a, b)
	if next == q.state {
		return DirNone
	}
	step := quadSteps[q.state<<2|next]
	q.state = next
	if step == 0 {
		q.invalid++
		return DirNone
	}

	q.acc += step
	switch {
	case q.acc >= stepsPerDetent:
		q.acc = 0
		return DirClockwise
	case q.acc <= -stepsPerDetent:
		q.acc = 0
		return DirCounterClockwise
	}
	return DirNone
}

// Invalid returns how many skipped transitions were ignored.
func (q *Quadrature) Invalid() uint32 {
	return q.invalid
}
