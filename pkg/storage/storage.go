package storage

import (
	"context"
	"github.com/mvollinga/cascade/pkg/simulation/model"
)

// EventSink persists simulation output. AppendEvent assigns and returns the
// station's next row number; rows count appends per station from the start
// of the sink's run. Appends may be buffered until Flush.
type EventSink interface {
	AppendEvent(ctx context.Context, event model.StationEvent) (int64, error)
	AppendCoincidence(ctx context.Context, coincidence model.Coincidence) error
	EventCount(stationNumber int) int64
	Flush(ctx context.Context) error
}

// EventReader reads a run's output back, for the combiner and the query
// surface.
type EventReader interface {
	// Events returns every station event of the run, ordered by station
	// number then row.
	Events(ctx context.Context, runId string) ([]model.StationEvent, error)
	// Coincidences returns every coincidence of the run in timestamp order.
	Coincidences(ctx context.Context, runId string) ([]model.Coincidence, error)
}
