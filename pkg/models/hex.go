package models

// HexCoord is an axial coordinate; S is implicit (S = -Q - R) but kept as a
// method rather than a field to avoid two sources of truth.
type HexCoord struct {
	Q, R int
}

// S returns the implicit cube-coordinate third axis.
func (h HexCoord) S() int {
	return -h.Q - h.R
}

// Equal reports coordinate equality.
func (h HexCoord) Equal(o HexCoord) bool {
	return h.Q == o.Q && h.R == o.R
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func maxInt(a, b, c int) int {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}

// Distance is the standard hex-grid Chebyshev distance in cube space
//.
func Distance(a, b HexCoord) int {
	dq := a.Q - b.Q
	dr := a.R - b.R
	return maxInt(absInt(dq), absInt(dr), absInt(dq+dr))
}

// Level is the ring index from centre, i.e. distance to (0,0).
func Level(h HexCoord) int {
	return Distance(h, HexCoord{0, 0})
}

// Directions are the six axial neighbor offsets.
var Directions = [6]HexCoord{
	{+1, 0}, {0, +1}, {-1, +1}, {-1, 0}, {0, -1}, {+1, -1},
}

// Neighbors returns the six adjacent coordinates of h (some may fall outside
// the arena radius; callers filter with InRadius).
func Neighbors(h HexCoord) [6]HexCoord {
	var out [6]HexCoord
	for i, d := range Directions {
		out[i] = HexCoord{h.Q + d.Q, h.R + d.R}
	}
	return out
}

// InRadius reports whether h lies within the given hex radius of the origin.
func InRadius(h HexCoord, radius int) bool {
	return Level(h) <= radius
}
