package source

import (
	"context"
	"errors"
	"github.com/mvollinga/cascade/pkg/particle/model"
	"math"
)

// Query selects particles of one shower inside an axis-aligned bounding box,
// restricted to a species range. The box is the coarse filter a source can
// evaluate against its storage; exact containment in a detector polygon is
// decided by the caller on the returned candidates.
type Query struct {
	ShowerID string
	XMin     float64
	XMax     float64
	YMin     float64
	YMax     float64
	Species  model.SpeciesRange
}

// Matches reports whether the particle falls inside the query box and
// species range. Box edges are inclusive, matching the stored-table
// comparisons the queries translate to.
func (q Query) Matches(p model.GroundParticle) bool {
	return q.Species.Contains(p.Species) &&
		p.X >= q.XMin && p.X <= q.XMax &&
		p.Y >= q.YMin && p.Y <= q.YMax
}

// FullShower is the query that selects every particle of a shower.
func FullShower(showerId string) Query {
	return Query{
		ShowerID: showerId,
		XMin:     math.Inf(-1),
		XMax:     math.Inf(1),
		YMin:     math.Inf(-1),
		YMax:     math.Inf(1),
		Species:  model.LeptonsAndGammas,
	}
}

// ParticleSource serves stored shower tables to the simulation. Sources are
// read-only and safe for concurrent use.
type ParticleSource interface {
	// Shower returns the descriptor of the given shower, or ErrNoSuchShower.
	Shower(ctx context.Context, showerId string) (model.ShowerDescriptor, error)
	// Showers lists the descriptors of every shower the source holds.
	Showers(ctx context.Context) ([]model.ShowerDescriptor, error)
	// Select returns the particles matching the query, in table-row order.
	Select(ctx context.Context, query Query) ([]model.GroundParticle, error)
}

var (
	ErrNoSuchShower = errors.New("no shower with the given id")
)
