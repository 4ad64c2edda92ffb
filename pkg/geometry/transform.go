package geometry

import "math"

// Transform is the per-trial placement of a cluster in ground coordinates:
// a rotation around the origin followed by a translation. Cluster, Station
// and Detector objects are never mutated between trials; every coordinate
// resolution takes the trial's Transform explicitly.
type Transform struct {
	DX     float64
	DY     float64
	DAlpha float64
}

// Point is a position on the ground plane in meters.
type Point struct {
	X float64
	Y float64
}

func rotate(x, y, angle float64) (float64, float64) {
	sin, cos := math.Sincos(angle)
	return x*cos - y*sin, x*sin + y*cos
}
