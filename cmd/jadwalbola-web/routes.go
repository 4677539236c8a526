package main

import (
	"net/http"

	"github.com/matthewjhunter/jadwalbola"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
)

// newRouter sets up all routes using Go 1.22+ enhanced routing.
func newRouter(engine *jadwalbola.Engine, logger *zap.Logger) http.Handler {
	mux := http.NewServeMux()

	h := &handlers{
		engine: engine,
		policy: bluemonday.StrictPolicy(),
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", h.handleHealth)

	// Favorite teams
	mux.HandleFunc("GET /favorites", h.handleFavoritesList)
	mux.HandleFunc("POST /favorites", h.handleFavoriteAdd)
	mux.HandleFunc("GET /favorites/{teamID}/status", h.handleFavoriteStatus)
	mux.HandleFunc("POST /favorites/{teamID}/toggle", h.handleFavoriteToggle)
	mux.HandleFunc("DELETE /favorites/team/{teamID}", h.handleFavoriteRemoveByTeam)
	mux.HandleFunc("DELETE /favorites/{id}", h.handleFavoriteRemove)

	// Predictions
	mux.HandleFunc("GET /predictions", h.handlePredictionsList)
	mux.HandleFunc("POST /predictions", h.handlePredictionAdd)
	mux.HandleFunc("GET /predictions/match/{matchID}", h.handlePredictionGet)
	mux.HandleFunc("PUT /predictions/match/{matchID}", h.handlePredictionSave)
	mux.HandleFunc("PUT /predictions/{id}", h.handlePredictionUpdate)
	mux.HandleFunc("DELETE /predictions/{id}", h.handlePredictionDelete)

	return mux
}
