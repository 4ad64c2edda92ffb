package handler

import (
	"context"
	"encoding/json"
	"errors"
	"github.com/gorilla/mux"
	"github.com/mvollinga/cascade/pkg/server/service"
	"go.uber.org/zap"
	"net/http"
)

// RunSummaryHandler creates a handler for summarizing one stored run.
// @Summary Get the summary of a run.
// @Tags runs
// @Produce json
// @Param id path string true "The run id"
// @Success 200 {object} RunSummaryDTO "Counts and firing stations of the run"
// @Failure 404 {object} ErrorMessage "Run not found"
// @Failure 500 {object} ErrorMessage "Internal server error"
// @Router /runs/{id} [get]
func RunSummaryHandler(
	ctx context.Context,
	qs service.RunQueryService,
	logger *zap.Logger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		runId := mux.Vars(r)["id"]

		summary, err := qs.RunSummary(ctx, runId)
		if errors.Is(err, service.ErrRunNotFound) {
			HttpError(w, "Run not found", http.StatusNotFound, logger)
			return
		}
		if err != nil {
			logger.Error("Error encountered when summarizing run", zap.Error(err))
			HttpError(w, "Internal server error", http.StatusInternalServerError, logger)
			return
		}

		err = json.NewEncoder(w).Encode(mapRunSummaryToDTO(summary))
		if err != nil {
			logger.Error("Error encountered when encoding response", zap.Error(err))
			HttpError(w, "Internal server error", http.StatusInternalServerError, logger)
			return
		}
	}
}
