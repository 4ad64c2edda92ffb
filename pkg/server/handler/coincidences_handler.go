package handler

import (
	"context"
	"encoding/json"
	"github.com/mvollinga/cascade/pkg/server/service"
	"go.uber.org/zap"
	"net/http"
)

// CoincidencesHandler creates a handler for querying stored coincidences.
// @Summary Get the coincidences of a run.
// @Tags coincidences
// @Produce json
// @Param run_id query string true "The run to read coincidences from"
// @Param min_stations query int false "Only coincidences with at least this many firing stations"
// @Success 200 {object} CoincidencesResponseDTO "Coincidences in trial order"
// @Failure 400 {object} ErrorMessage "Invalid query parameters"
// @Failure 500 {object} ErrorMessage "Internal server error"
// @Router /coincidences [get]
func CoincidencesHandler(
	ctx context.Context,
	qs service.RunQueryService,
	logger *zap.Logger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := coincidenceSearchParamsFromRequest(r)
		if err != nil {
			logger.Error("Error encountered when parsing coincidence query parameters", zap.Error(err))
			HttpError(w, err.Error(), http.StatusBadRequest, logger)
			return
		}

		coincidences, err := qs.Coincidences(ctx, params)
		if err != nil {
			logger.Error("Error encountered when querying coincidences", zap.Error(err))
			HttpError(w, "Internal server error", http.StatusInternalServerError, logger)
			return
		}

		response := convertCoincidencesToResponse(coincidences)
		err = json.NewEncoder(w).Encode(response)
		if err != nil {
			logger.Error("Error encountered when encoding response", zap.Error(err))
			HttpError(w, "Internal server error", http.StatusInternalServerError, logger)
			return
		}
	}
}
