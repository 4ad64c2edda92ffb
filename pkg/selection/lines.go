package selection

import (
	"fmt"
	"github.com/mvollinga/cascade/pkg/geometry"
)

// LineBoundary is a strip of the ground plane bounded by two parallel lines.
// Points strictly between the lines satisfy Low < Eval(x, y) < High. When the
// lines are vertical the strip degenerates to plain bounds on x.
type LineBoundary struct {
	Vertical bool
	Slope    float64
	Low      float64
	High     float64
}

// LineBoundaryEqs derives the strip between the line through p0 and p1 and
// the parallel line through p2. Boundary values come out ordered, Low <=
// High, so the caller never has to care which side p2 was on.
func LineBoundaryEqs(p0, p1, p2 geometry.Point) LineBoundary {
	if p0.X == p1.X {
		low, high := p0.X, p2.X
		if low > high {
			low, high = high, low
		}
		return LineBoundary{Vertical: true, Low: low, High: high}
	}
	slope := (p1.Y - p0.Y) / (p1.X - p0.X)
	low := p0.Y - slope*p0.X
	high := p2.Y - slope*p2.X
	if low > high {
		low, high = high, low
	}
	return LineBoundary{Slope: slope, Low: low, High: high}
}

// Eval maps a point onto the boundary axis, x for vertical strips and
// y - slope * x otherwise.
func (b LineBoundary) Eval(x float64, y float64) float64 {
	if b.Vertical {
		return x
	}
	return y - b.Slope*x
}

// Contains reports whether the point lies strictly between the two lines.
func (b LineBoundary) Contains(x float64, y float64) bool {
	value := b.Eval(x, y)
	return b.Low < value && value < b.High
}

func (b LineBoundary) String() string {
	if b.Vertical {
		return "x"
	}
	return fmt.Sprintf("y - %f * x", b.Slope)
}
