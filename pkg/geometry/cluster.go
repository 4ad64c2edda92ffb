package geometry

import (
	"fmt"
	"math"
)

// StationSpec describes one station's placement local to the cluster.
type StationSpec struct {
	Number    int
	X         float64
	Y         float64
	Z         float64
	Angle     float64
	Detectors []DetectorSpec
}

// Cluster is the set of all stations with their relative placement. It is
// immutable after construction; per-shower alignment happens through the
// trial Transform passed into every coordinate resolution.
type Cluster struct {
	stations []*Station
}

// NewCluster builds a cluster from explicit station specs. Station numbers
// must be unique; a spec without detectors gets the standard 4-detector
// layout.
func NewCluster(specs []StationSpec) (*Cluster, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("cluster needs at least one station")
	}
	c := &Cluster{}
	seen := make(map[int]bool)
	for _, spec := range specs {
		if seen[spec.Number] {
			return nil, fmt.Errorf("duplicate station number %d", spec.Number)
		}
		seen[spec.Number] = true
		detectors := spec.Detectors
		if detectors == nil {
			detectors = StandardDetectors()
		}
		station, err := newStation(spec.Number, spec.X, spec.Y, spec.Z, spec.Angle, detectors)
		if err != nil {
			return nil, err
		}
		c.stations = append(c.stations, station)
	}
	return c, nil
}

// NewSingleStation is a cluster of one standard 4-detector station at the
// origin.
func NewSingleStation() (*Cluster, error) {
	return NewCluster([]StationSpec{{Number: 1}})
}

// NewSingleTwoDetectorStation is a cluster of one 2-detector station at the
// origin.
func NewSingleTwoDetectorStation() (*Cluster, error) {
	return NewCluster([]StationSpec{{Number: 1, Detectors: TwoDetectors()}})
}

// NewSimpleCluster places four standard stations on an equilateral triangle
// with the given side length: one station at each vertex, rotated to face the
// center, and one at the triangle's center of mass.
func NewSimpleCluster(size float64) (*Cluster, error) {
	a := math.Sqrt(size*size - (size/2)*(size/2))
	return NewCluster([]StationSpec{
		{Number: 1, X: 0, Y: 2 * a / 3},
		{Number: 2, X: 0, Y: 0},
		{Number: 3, X: -size / 2, Y: -a / 3, Angle: 2 * math.Pi / 3},
		{Number: 4, X: size / 2, Y: -a / 3, Angle: -2 * math.Pi / 3},
	})
}

func (c *Cluster) Stations() []*Station {
	return c.stations
}

// Station returns the station with the given number.
func (c *Cluster) Station(number int) (*Station, error) {
	for _, s := range c.stations {
		if s.number == number {
			return s, nil
		}
	}
	return nil, fmt.Errorf("no station with number %d", number)
}

// CenterOfMassAt is the mean detector position under the trial transform.
func (c *Cluster) CenterOfMassAt(tr Transform) Point {
	var sumX, sumY float64
	var n int
	for _, station := range c.stations {
		for _, detector := range station.detectors {
			x, y, _ := detector.CoordinatesAt(tr)
			sumX += x
			sumY += y
			n++
		}
	}
	return Point{X: sumX / float64(n), Y: sumY / float64(n)}
}
