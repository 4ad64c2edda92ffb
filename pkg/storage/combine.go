package storage

import (
	"context"
	"fmt"
	"github.com/mvollinga/cascade/pkg/simulation/model"
)

// CombineSummary reports what one CombineRuns call appended.
type CombineSummary struct {
	RunID        string
	Events       int
	Coincidences int
}

// CombineRuns appends the stored events and coincidences of the source runs
// onto sink under the combined run id. Event rows are re-keyed past the rows
// already in the sink, and every coincidence cross reference is remapped to
// the row its event received in the combined run.
func CombineRuns(
	ctx context.Context,
	reader EventReader,
	sink EventSink,
	runId string,
	sourceRunIds []string,
) (CombineSummary, error) {
	summary := CombineSummary{RunID: runId}
	for _, sourceRunId := range sourceRunIds {
		if err := combineRun(ctx, reader, sink, runId, sourceRunId, &summary); err != nil {
			return summary, err
		}
	}
	if err := sink.Flush(ctx); err != nil {
		return summary, fmt.Errorf("error flushing combined run %s: %w", runId, err)
	}
	return summary, nil
}

func combineRun(
	ctx context.Context,
	reader EventReader,
	sink EventSink,
	runId string,
	sourceRunId string,
	summary *CombineSummary,
) error {
	events, err := reader.Events(ctx, sourceRunId)
	if err != nil {
		return fmt.Errorf("error reading events of run %s: %w", sourceRunId, err)
	}
	rows := make(map[model.EventRef]int64, len(events))
	for _, event := range events {
		ref := model.EventRef{StationNumber: event.StationNumber, Row: event.Row}
		event.RunID = runId
		row, err := sink.AppendEvent(ctx, event)
		if err != nil {
			return fmt.Errorf("error appending event of run %s: %w", sourceRunId, err)
		}
		rows[ref] = row
	}
	summary.Events += len(events)

	coincidences, err := reader.Coincidences(ctx, sourceRunId)
	if err != nil {
		return fmt.Errorf("error reading coincidences of run %s: %w", sourceRunId, err)
	}
	for _, coincidence := range coincidences {
		coincidence.RunID = runId
		remapped := make([]model.EventRef, len(coincidence.EventRefs))
		for i, ref := range coincidence.EventRefs {
			row, ok := rows[ref]
			if !ok {
				return fmt.Errorf(
					"coincidence in run %s references station %d row %d, which has no stored event",
					sourceRunId, ref.StationNumber, ref.Row,
				)
			}
			remapped[i] = model.EventRef{StationNumber: ref.StationNumber, Row: row}
		}
		coincidence.EventRefs = remapped
		if err := sink.AppendCoincidence(ctx, coincidence); err != nil {
			return fmt.Errorf("error appending coincidence of run %s: %w", sourceRunId, err)
		}
	}
	summary.Coincidences += len(coincidences)
	return nil
}
