package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/matthewjhunter/jadwalbola"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
)

const maxBodyBytes = 64 << 10

type handlers struct {
	engine *jadwalbola.Engine
	policy *bluemonday.Policy
	logger *zap.Logger
}

type errorBody struct {
	Error string `json:"error"`
}

type idBody struct {
	ID int64 `json:"id"`
}

type favoriteStatus struct {
	TeamID   string `json:"team_id"`
	Favorite bool   `json:"favorite"`
}

type favoriteRequest struct {
	TeamID   string `json:"team_id"`
	TeamName string `json:"team_name"`
	LogoURL  string `json:"logo_url"`
}

type predictionRequest struct {
	MatchID   string `json:"match_id"`
	HomeScore *int   `json:"home_score"`
	AwayScore *int   `json:"away_score"`
	Note      string `json:"note"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps engine errors onto HTTP statuses.
func (h *handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	msg := "internal server error"
	switch {
	case errors.Is(err, jadwalbola.ErrInvalidInput):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, jadwalbola.ErrStorageWrite):
		status, msg = http.StatusServiceUnavailable, "could not save, try again"
	case errors.Is(err, jadwalbola.ErrStorageRead), errors.Is(err, jadwalbola.ErrStorageInit):
		status, msg = http.StatusServiceUnavailable, "storage unavailable"
	}
	if status >= 500 {
		h.logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", requestIDFrom(r.Context())),
			zap.Error(err),
		)
	}
	writeJSON(w, status, errorBody{Error: msg})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: msg})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// plainText restores the characters bluemonday escapes that are safe in
// stored text. &lt; and &gt; stay escaped so encoded markup never becomes
// live markup.
var plainText = strings.NewReplacer("&amp;", "&", "&#39;", "'", "&#34;", `"`)

// clean strips markup from user-supplied text.
func (h *handlers) clean(s string) string {
	return strings.TrimSpace(plainText.Replace(h.policy.Sanitize(s)))
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", r.PathValue("id"))
	}
	return id, nil
}

func (h *handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- Favorite teams ---

func (h *handlers) handleFavoritesList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.ListFavorites(r.Context()))
}

func (h *handlers) handleFavoriteAdd(w http.ResponseWriter, r *http.Request) {
	var req favoriteRequest
	if err := decodeBody(w, r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	id, err := h.engine.AddFavorite(r.Context(),
		strings.TrimSpace(req.TeamID), h.clean(req.TeamName), strings.TrimSpace(req.LogoURL))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, idBody{ID: id})
}

func (h *handlers) handleFavoriteStatus(w http.ResponseWriter, r *http.Request) {
	teamID := r.PathValue("teamID")
	fav, err := h.engine.IsFavorite(r.Context(), teamID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, favoriteStatus{TeamID: teamID, Favorite: fav})
}

func (h *handlers) handleFavoriteToggle(w http.ResponseWriter, r *http.Request) {
	teamID := r.PathValue("teamID")
	var req favoriteRequest
	// An empty body is allowed: removing a favorite needs only the team ID.
	if err := decodeBody(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(w, err.Error())
		return
	}

	fav, err := h.engine.ToggleFavorite(r.Context(), teamID, h.clean(req.TeamName), strings.TrimSpace(req.LogoURL))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, favoriteStatus{TeamID: teamID, Favorite: fav})
}

func (h *handlers) handleFavoriteRemoveByTeam(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.RemoveFavoriteByTeamID(r.Context(), r.PathValue("teamID")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) handleFavoriteRemove(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := h.engine.RemoveFavoriteByID(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Predictions ---

// scores requires both scores to be present; negative values are left for
// the engine to reject.
func (req *predictionRequest) scores() (int, int, error) {
	if req.HomeScore == nil || req.AwayScore == nil {
		return 0, 0, errors.New("home_score and away_score are required")
	}
	return *req.HomeScore, *req.AwayScore, nil
}

func (h *handlers) handlePredictionsList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.ListPredictions(r.Context()))
}

func (h *handlers) handlePredictionAdd(w http.ResponseWriter, r *http.Request) {
	var req predictionRequest
	if err := decodeBody(w, r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	home, away, err := req.scores()
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	id, err := h.engine.AddPrediction(r.Context(), strings.TrimSpace(req.MatchID), home, away, h.clean(req.Note))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, idBody{ID: id})
}

func (h *handlers) handlePredictionGet(w http.ResponseWriter, r *http.Request) {
	matchID := r.PathValue("matchID")
	p, err := h.engine.GetPredictionByMatchID(r.Context(), matchID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if p == nil {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "no prediction for match " + matchID})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *handlers) handlePredictionSave(w http.ResponseWriter, r *http.Request) {
	var req predictionRequest
	if err := decodeBody(w, r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	home, away, err := req.scores()
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	id, err := h.engine.SavePrediction(r.Context(), r.PathValue("matchID"), home, away, h.clean(req.Note))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, idBody{ID: id})
}

func (h *handlers) handlePredictionUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	var req predictionRequest
	if err := decodeBody(w, r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	home, away, err := req.scores()
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	if err := h.engine.UpdatePrediction(r.Context(), id, home, away, h.clean(req.Note)); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) handlePredictionDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := h.engine.DeletePrediction(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
