package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/matthewjhunter/jadwalbola"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

// server is the JadwalBola MCP server.
type server struct {
	engine *jadwalbola.Engine
	logger *zap.Logger
}

func newServer(engine *jadwalbola.Engine, logger *zap.Logger) *server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &server{engine: engine, logger: logger.Named("mcp")}
}

// mcpServer registers every tool on a fresh SDK server.
func (s *server) mcpServer() *mcp.Server {
	srv := mcp.NewServer(&mcp.Implementation{Name: "jadwalbola", Version: "0.1.0"}, nil)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "favorites_list",
		Description: "List the user's favorite football teams, sorted by team name.",
	}, s.handleFavoritesList)
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "favorite_add",
		Description: "Mark a team as favorite. Does not check for an existing entry; use favorite_toggle to avoid duplicates.",
	}, s.handleFavoriteAdd)
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "favorite_check",
		Description: "Report whether a team is one of the user's favorites.",
	}, s.handleFavoriteCheck)
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "favorite_toggle",
		Description: "Add the team to favorites if absent, remove it otherwise. Returns the new state.",
	}, s.handleFavoriteToggle)
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "favorite_remove",
		Description: "Remove a favorite, either every row for a team_id or the single row with id.",
	}, s.handleFavoriteRemove)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "predictions_list",
		Description: "List the user's match predictions, newest first.",
	}, s.handlePredictionsList)
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "prediction_get",
		Description: "Get the user's prediction for a match.",
	}, s.handlePredictionGet)
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "prediction_add",
		Description: "Record a new prediction for a match. Prefer prediction_save, which updates an existing prediction instead of adding a second one.",
	}, s.handlePredictionAdd)
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "prediction_save",
		Description: "Save the user's prediction for a match: updates the existing one or adds a new one.",
	}, s.handlePredictionSave)
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "prediction_update",
		Description: "Change the scores and note of a prediction by ID. The match and creation time never change.",
	}, s.handlePredictionUpdate)
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "prediction_delete",
		Description: "Delete a prediction by ID.",
	}, s.handlePredictionDelete)

	return srv
}

// --- Favorite teams ---

func (s *server) handleFavoritesList(ctx context.Context, _ *mcp.CallToolRequest, _ emptyInput) (*mcp.CallToolResult, any, error) {
	teams := s.engine.ListFavorites(ctx)
	s.logger.Debug("favorites_list", zap.Int("count", len(teams)))
	return jsonResult(teams), nil, nil
}

func (s *server) handleFavoriteAdd(ctx context.Context, _ *mcp.CallToolRequest, in favoriteAddInput) (*mcp.CallToolResult, any, error) {
	id, err := s.engine.AddFavorite(ctx, in.TeamID, in.TeamName, deref(in.LogoURL))
	if err != nil {
		return s.errorResult("favorite_add", err), nil, nil
	}
	s.logger.Info("favorite_add", zap.String("team_id", in.TeamID), zap.Int64("id", id))
	return textResult("Added %s to favorites (id %d)", in.TeamName, id), nil, nil
}

func (s *server) handleFavoriteCheck(ctx context.Context, _ *mcp.CallToolRequest, in teamIDInput) (*mcp.CallToolResult, any, error) {
	fav, err := s.engine.IsFavorite(ctx, in.TeamID)
	if err != nil {
		return s.errorResult("favorite_check", err), nil, nil
	}
	return jsonResult(map[string]any{"team_id": in.TeamID, "favorite": fav}), nil, nil
}

func (s *server) handleFavoriteToggle(ctx context.Context, _ *mcp.CallToolRequest, in favoriteToggleInput) (*mcp.CallToolResult, any, error) {
	fav, err := s.engine.ToggleFavorite(ctx, in.TeamID, deref(in.TeamName), deref(in.LogoURL))
	if err != nil {
		return s.errorResult("favorite_toggle", err), nil, nil
	}
	s.logger.Info("favorite_toggle", zap.String("team_id", in.TeamID), zap.Bool("favorite", fav))
	name := deref(in.TeamName)
	if name == "" {
		name = "Team " + in.TeamID
	}
	if fav {
		return textResult("%s is now a favorite", name), nil, nil
	}
	return textResult("%s is no longer a favorite", name), nil, nil
}

func (s *server) handleFavoriteRemove(ctx context.Context, _ *mcp.CallToolRequest, in favoriteRemoveInput) (*mcp.CallToolResult, any, error) {
	switch {
	case in.ID != nil && in.TeamID != nil:
		return textError("pass either team_id or id, not both"), nil, nil
	case in.ID != nil:
		if err := s.engine.RemoveFavoriteByID(ctx, *in.ID); err != nil {
			return s.errorResult("favorite_remove", err), nil, nil
		}
		return textResult("Removed favorite %d", *in.ID), nil, nil
	case in.TeamID != nil:
		if err := s.engine.RemoveFavoriteByTeamID(ctx, *in.TeamID); err != nil {
			return s.errorResult("favorite_remove", err), nil, nil
		}
		return textResult("Removed team %s from favorites", *in.TeamID), nil, nil
	}
	return textError("team_id or id is required"), nil, nil
}

// --- Predictions ---

func (s *server) handlePredictionsList(ctx context.Context, _ *mcp.CallToolRequest, _ emptyInput) (*mcp.CallToolResult, any, error) {
	preds := s.engine.ListPredictions(ctx)
	s.logger.Debug("predictions_list", zap.Int("count", len(preds)))
	return jsonResult(preds), nil, nil
}

func (s *server) handlePredictionGet(ctx context.Context, _ *mcp.CallToolRequest, in matchIDInput) (*mcp.CallToolResult, any, error) {
	p, err := s.engine.GetPredictionByMatchID(ctx, in.MatchID)
	if err != nil {
		return s.errorResult("prediction_get", err), nil, nil
	}
	if p == nil {
		return textResult("No prediction for match %s", in.MatchID), nil, nil
	}
	return jsonResult(p), nil, nil
}

func (s *server) handlePredictionAdd(ctx context.Context, _ *mcp.CallToolRequest, in predictionInput) (*mcp.CallToolResult, any, error) {
	id, err := s.engine.AddPrediction(ctx, in.MatchID, in.HomeScore, in.AwayScore, deref(in.Note))
	if err != nil {
		return s.errorResult("prediction_add", err), nil, nil
	}
	s.logger.Info("prediction_add", zap.String("match_id", in.MatchID), zap.Int64("id", id))
	return textResult("Recorded %d-%d for match %s (id %d)", in.HomeScore, in.AwayScore, in.MatchID, id), nil, nil
}

func (s *server) handlePredictionSave(ctx context.Context, _ *mcp.CallToolRequest, in predictionInput) (*mcp.CallToolResult, any, error) {
	id, err := s.engine.SavePrediction(ctx, in.MatchID, in.HomeScore, in.AwayScore, deref(in.Note))
	if err != nil {
		return s.errorResult("prediction_save", err), nil, nil
	}
	s.logger.Info("prediction_save", zap.String("match_id", in.MatchID), zap.Int64("id", id))
	return textResult("Saved %d-%d for match %s (id %d)", in.HomeScore, in.AwayScore, in.MatchID, id), nil, nil
}

func (s *server) handlePredictionUpdate(ctx context.Context, _ *mcp.CallToolRequest, in predictionUpdateInput) (*mcp.CallToolResult, any, error) {
	if err := s.engine.UpdatePrediction(ctx, in.ID, in.HomeScore, in.AwayScore, deref(in.Note)); err != nil {
		return s.errorResult("prediction_update", err), nil, nil
	}
	return textResult("Updated prediction %d", in.ID), nil, nil
}

func (s *server) handlePredictionDelete(ctx context.Context, _ *mcp.CallToolRequest, in predictionIDInput) (*mcp.CallToolResult, any, error) {
	if err := s.engine.DeletePrediction(ctx, in.ID); err != nil {
		return s.errorResult("prediction_delete", err), nil, nil
	}
	return textResult("Deleted prediction %d", in.ID), nil, nil
}

// --- Results ---

func textResult(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf(format, args...)}},
	}
}

func jsonResult(data any) *mcp.CallToolResult {
	b, err := json.Marshal(data)
	if err != nil {
		return textError("marshal response: %v", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(b)}},
	}
}

func textError(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf("Error: "+format, args...)}},
		IsError: true,
	}
}

func (s *server) errorResult(tool string, err error) *mcp.CallToolResult {
	s.logger.Warn("tool failed", zap.String("tool", tool), zap.Error(err))
	return textError("%v", err)
}
