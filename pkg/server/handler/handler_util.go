package handler

import (
	"errors"
	"fmt"
	"github.com/mvollinga/cascade/pkg/server/service"
	"github.com/mvollinga/cascade/pkg/simulation/model"
	"net/http"
	"strconv"
)

func eventSearchParamsFromRequest(r *http.Request) (service.EventSearchParams, error) {
	query := r.URL.Query()
	runId := query.Get("run_id")
	if runId == "" {
		return service.EventSearchParams{}, ErrNoRunId
	}
	params := service.EventSearchParams{RunID: runId}
	if station := query.Get("station"); station != "" {
		number, err := strconv.Atoi(station)
		if err != nil {
			return service.EventSearchParams{}, fmt.Errorf("invalid station number %q", station)
		}
		params.StationNumber = &number
	}
	if offset := query.Get("offset"); offset != "" {
		value, err := strconv.Atoi(offset)
		if err != nil {
			return service.EventSearchParams{}, fmt.Errorf("invalid offset %q", offset)
		}
		params.Offset = value
	}
	if limit := query.Get("limit"); limit != "" {
		value, err := strconv.Atoi(limit)
		if err != nil {
			return service.EventSearchParams{}, fmt.Errorf("invalid limit %q", limit)
		}
		params.Limit = value
	}
	return params, nil
}

func coincidenceSearchParamsFromRequest(r *http.Request) (service.CoincidenceSearchParams, error) {
	query := r.URL.Query()
	runId := query.Get("run_id")
	if runId == "" {
		return service.CoincidenceSearchParams{}, ErrNoRunId
	}
	params := service.CoincidenceSearchParams{RunID: runId}
	if minStations := query.Get("min_stations"); minStations != "" {
		value, err := strconv.Atoi(minStations)
		if err != nil {
			return service.CoincidenceSearchParams{}, fmt.Errorf("invalid min_stations %q", minStations)
		}
		params.MinStations = &value
	}
	return params, nil
}

func convertEventsToResponse(events []model.StationEvent) EventsResponseDTO {
	eventDTOs := make([]StationEventDTO, len(events))
	for i, event := range events {
		eventDTOs[i] = mapEventToDTO(event)
	}
	return EventsResponseDTO{
		Events: eventDTOs,
	}
}

func mapEventToDTO(event model.StationEvent) StationEventDTO {
	return StationEventDTO{
		RunID:         event.RunID,
		ShowerID:      event.ShowerID,
		StationNumber: event.StationNumber,
		Row:           event.Row,
		Timestamp:     event.Timestamp,
		Nanoseconds:   event.Nanoseconds,
		ExtTimestamp:  event.ExtTimestamp,
		N1:            event.N1,
		N2:            event.N2,
		N3:            event.N3,
		N4:            event.N4,
		T1:            event.T1,
		T2:            event.T2,
		T3:            event.T3,
		T4:            event.T4,
		TTrigger:      event.TTrigger,
		PulseHeights:  event.PulseHeights,
		Integrals:     event.Integrals,
		Traces:        event.Traces,
		DetectorsHit:  event.DetectorsHit,
	}
}

func convertCoincidencesToResponse(coincidences []model.Coincidence) CoincidencesResponseDTO {
	coincidenceDTOs := make([]CoincidenceDTO, len(coincidences))
	for i, coincidence := range coincidences {
		coincidenceDTOs[i] = mapCoincidenceToDTO(coincidence)
	}
	return CoincidencesResponseDTO{
		Coincidences: coincidenceDTOs,
	}
}

func mapCoincidenceToDTO(coincidence model.Coincidence) CoincidenceDTO {
	eventRefs := make([]EventRefDTO, len(coincidence.EventRefs))
	for i, ref := range coincidence.EventRefs {
		eventRefs[i] = EventRefDTO{
			StationNumber: ref.StationNumber,
			Row:           ref.Row,
		}
	}
	return CoincidenceDTO{
		RunID:          coincidence.RunID,
		ShowerID:       coincidence.ShowerID,
		NumEvents:      coincidence.NumEvents,
		Timestamp:      coincidence.Timestamp,
		Nanoseconds:    coincidence.Nanoseconds,
		ExtTimestamp:   coincidence.ExtTimestamp,
		CoreX:          coincidence.CoreX,
		CoreY:          coincidence.CoreY,
		Zenith:         coincidence.Zenith,
		Azimuth:        coincidence.Azimuth,
		Size:           coincidence.Size,
		Energy:         coincidence.Energy,
		StationNumbers: coincidence.StationNumbers,
		EventRefs:      eventRefs,
	}
}

func mapRunSummaryToDTO(summary service.RunSummary) RunSummaryDTO {
	return RunSummaryDTO{
		RunID:          summary.RunID,
		Events:         summary.Events,
		Coincidences:   summary.Coincidences,
		StationNumbers: summary.StationNumbers,
	}
}

var (
	ErrNoRunId = errors.New("run_id is required")
)
