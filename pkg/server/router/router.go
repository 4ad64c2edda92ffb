package router

import (
	"context"
	"github.com/mvollinga/cascade/pkg/server/handler"
	"github.com/mvollinga/cascade/pkg/server/service"
	"go.uber.org/zap"
	"net/http"
)
import "github.com/gorilla/mux"

func CreateRouter(
	ctx context.Context,
	runQueryService service.RunQueryService,
	logger *zap.Logger,
) http.Handler {
	r := mux.NewRouter()

	r.Handle(
		"/events", handler.EventsHandler(
			ctx,
			runQueryService,
			logger,
		),
	).Methods("GET")

	r.Handle(
		"/coincidences", handler.CoincidencesHandler(
			ctx,
			runQueryService,
			logger,
		),
	).Methods("GET")

	r.Handle(
		"/runs/{id}", handler.RunSummaryHandler(
			ctx,
			runQueryService,
			logger,
		),
	).Methods("GET")

	return r
}
