package service

import (
	"context"
	"errors"
	"github.com/mvollinga/cascade/pkg/simulation/model"
	"github.com/mvollinga/cascade/pkg/storage"
	"go.uber.org/zap"
	"sort"
	"time"
)

const timeout = 10 * time.Second
const defaultPageSize = 500

// EventSearchParams filters and pages the stored events of one run.
type EventSearchParams struct {
	RunID         string
	StationNumber *int
	Offset        int
	Limit         int
}

// CoincidenceSearchParams filters the stored coincidences of one run.
type CoincidenceSearchParams struct {
	RunID       string
	MinStations *int
}

// RunSummary aggregates what one run left in storage.
type RunSummary struct {
	RunID          string
	Events         int
	Coincidences   int
	StationNumbers []int
}

type RunQueryService interface {
	Events(ctx context.Context, params EventSearchParams) ([]model.StationEvent, error)
	Coincidences(ctx context.Context, params CoincidenceSearchParams) ([]model.Coincidence, error)
	RunSummary(ctx context.Context, runId string) (RunSummary, error)
}

type RunQueryServiceImpl struct {
	reader storage.EventReader
	logger *zap.Logger
}

func NewRunQueryService(reader storage.EventReader, logger *zap.Logger) *RunQueryServiceImpl {
	return &RunQueryServiceImpl{
		reader: reader,
		logger: logger,
	}
}

func (qs *RunQueryServiceImpl) Events(
	ctx context.Context,
	params EventSearchParams,
) ([]model.StationEvent, error) {
	queryCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	events, err := qs.reader.Events(queryCtx, params.RunID)
	if err != nil {
		qs.logger.Error("Error when reading events of run",
			zap.String("run_id", params.RunID),
			zap.Error(err),
		)
		return nil, err
	}
	if params.StationNumber != nil {
		filtered := make([]model.StationEvent, 0, len(events))
		for _, event := range events {
			if event.StationNumber == *params.StationNumber {
				filtered = append(filtered, event)
			}
		}
		events = filtered
	}
	return page(events, params.Offset, params.Limit), nil
}

func (qs *RunQueryServiceImpl) Coincidences(
	ctx context.Context,
	params CoincidenceSearchParams,
) ([]model.Coincidence, error) {
	queryCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	coincidences, err := qs.reader.Coincidences(queryCtx, params.RunID)
	if err != nil {
		qs.logger.Error("Error when reading coincidences of run",
			zap.String("run_id", params.RunID),
			zap.Error(err),
		)
		return nil, err
	}
	if params.MinStations != nil {
		filtered := make([]model.Coincidence, 0, len(coincidences))
		for _, coincidence := range coincidences {
			if coincidence.NumEvents >= *params.MinStations {
				filtered = append(filtered, coincidence)
			}
		}
		coincidences = filtered
	}
	return coincidences, nil
}

func (qs *RunQueryServiceImpl) RunSummary(ctx context.Context, runId string) (RunSummary, error) {
	queryCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	events, err := qs.reader.Events(queryCtx, runId)
	if err != nil {
		qs.logger.Error("Error when reading events of run",
			zap.String("run_id", runId),
			zap.Error(err),
		)
		return RunSummary{}, err
	}
	coincidences, err := qs.reader.Coincidences(queryCtx, runId)
	if err != nil {
		qs.logger.Error("Error when reading coincidences of run",
			zap.String("run_id", runId),
			zap.Error(err),
		)
		return RunSummary{}, err
	}
	if len(events) == 0 && len(coincidences) == 0 {
		return RunSummary{}, ErrRunNotFound
	}

	seen := make(map[int]bool)
	var stationNumbers []int
	for _, event := range events {
		if !seen[event.StationNumber] {
			seen[event.StationNumber] = true
			stationNumbers = append(stationNumbers, event.StationNumber)
		}
	}
	sort.Ints(stationNumbers)
	return RunSummary{
		RunID:          runId,
		Events:         len(events),
		Coincidences:   len(coincidences),
		StationNumbers: stationNumbers,
	}, nil
}

// page cuts one page out of the full result. A non-positive limit falls back
// to the default page size.
func page[T any](items []T, offset, limit int) []T {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

var (
	ErrRunNotFound = errors.New("run has no stored events or coincidences")
)
