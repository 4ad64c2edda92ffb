package handler

import (
	"context"
	"encoding/json"
	"github.com/mvollinga/cascade/pkg/server/service"
	"go.uber.org/zap"
	"net/http"
)

// EventsHandler creates a handler for querying stored station events.
// @Summary Get the station events of a run.
// @Tags events
// @Produce json
// @Param run_id query string true "The run to read events from"
// @Param station query int false "Only events of this station number"
// @Param offset query int false "Page offset"
// @Param limit query int false "Page size"
// @Success 200 {object} EventsResponseDTO "Events ordered by station number and row"
// @Failure 400 {object} ErrorMessage "Invalid query parameters"
// @Failure 500 {object} ErrorMessage "Internal server error"
// @Router /events [get]
func EventsHandler(
	ctx context.Context,
	qs service.RunQueryService,
	logger *zap.Logger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := eventSearchParamsFromRequest(r)
		if err != nil {
			logger.Error("Error encountered when parsing event query parameters", zap.Error(err))
			HttpError(w, err.Error(), http.StatusBadRequest, logger)
			return
		}

		events, err := qs.Events(ctx, params)
		if err != nil {
			logger.Error("Error encountered when querying events", zap.Error(err))
			HttpError(w, "Internal server error", http.StatusInternalServerError, logger)
			return
		}

		response := convertEventsToResponse(events)
		err = json.NewEncoder(w).Encode(response)
		if err != nil {
			logger.Error("Error encountered when encoding response", zap.Error(err))
			HttpError(w, "Internal server error", http.StatusInternalServerError, logger)
			return
		}
	}
}
