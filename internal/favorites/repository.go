// Package favorites is the CRUD facade over the favorite_teams table.
package favorites

import (
	"context"

	"github.com/matthewjhunter/jadwalbola/internal/storage"
	"go.uber.org/zap"
)

// Store is the subset of storage.Store the repository needs.
type Store interface {
	AddFavorite(ctx context.Context, teamID, teamName, logoURL string) (int64, error)
	ListFavorites(ctx context.Context) ([]storage.FavoriteTeam, error)
	HasFavorite(ctx context.Context, teamID string) (bool, error)
	DeleteFavoritesByTeamID(ctx context.Context, teamID string) (int64, error)
	DeleteFavorite(ctx context.Context, id int64) (int64, error)
}

type Repository struct {
	store  Store
	logger *zap.Logger
}

// NewRepository wraps store. A nil logger is replaced by a no-op logger.
func NewRepository(store Store, logger *zap.Logger) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{store: store, logger: logger.Named("favorites")}
}

// Add inserts a favorite without checking for an existing row.
func (r *Repository) Add(ctx context.Context, teamID, teamName, logoURL string) (int64, error) {
	id, err := r.store.AddFavorite(ctx, teamID, teamName, logoURL)
	if err != nil {
		r.logger.Error("add favorite failed", zap.String("team_id", teamID), zap.Error(err))
		return 0, err
	}
	r.logger.Debug("favorite added", zap.Int64("id", id), zap.String("team_id", teamID))
	return id, nil
}

// List returns favorites by team name. A failed read is logged and yields an
// empty list so the caller can keep rendering.
func (r *Repository) List(ctx context.Context) []storage.FavoriteTeam {
	favs, err := r.store.ListFavorites(ctx)
	if err != nil {
		r.logger.Warn("list favorites failed, returning empty list", zap.Error(err))
		return []storage.FavoriteTeam{}
	}
	return favs
}

// IsFavorite reports whether any row carries teamID.
func (r *Repository) IsFavorite(ctx context.Context, teamID string) (bool, error) {
	ok, err := r.store.HasFavorite(ctx, teamID)
	if err != nil {
		r.logger.Error("check favorite failed", zap.String("team_id", teamID), zap.Error(err))
		return false, err
	}
	return ok, nil
}

// RemoveByTeamID deletes every row for teamID.
func (r *Repository) RemoveByTeamID(ctx context.Context, teamID string) error {
	n, err := r.store.DeleteFavoritesByTeamID(ctx, teamID)
	if err != nil {
		r.logger.Error("remove favorite failed", zap.String("team_id", teamID), zap.Error(err))
		return err
	}
	r.logger.Debug("favorites removed", zap.String("team_id", teamID), zap.Int64("rows", n))
	return nil
}

// RemoveByID deletes one row; an unknown id is a no-op.
func (r *Repository) RemoveByID(ctx context.Context, id int64) error {
	if _, err := r.store.DeleteFavorite(ctx, id); err != nil {
		r.logger.Error("remove favorite failed", zap.Int64("id", id), zap.Error(err))
		return err
	}
	return nil
}

// Toggle flips the favorite state of a team and returns the new state.
// Removing clears duplicate rows too.
func (r *Repository) Toggle(ctx context.Context, teamID, teamName, logoURL string) (bool, error) {
	fav, err := r.IsFavorite(ctx, teamID)
	if err != nil {
		return false, err
	}
	if fav {
		return false, r.RemoveByTeamID(ctx, teamID)
	}
	if _, err := r.Add(ctx, teamID, teamName, logoURL); err != nil {
		return false, err
	}
	return true, nil
}
