package storage

import "context"

// Store defines the storage interface for the on-device data layer.
type Store interface {
	Close() error

	// Favorite teams
	AddFavorite(ctx context.Context, teamID, teamName, logoURL string) (int64, error)
	ListFavorites(ctx context.Context) ([]FavoriteTeam, error)
	HasFavorite(ctx context.Context, teamID string) (bool, error)
	DeleteFavoritesByTeamID(ctx context.Context, teamID string) (int64, error)
	DeleteFavorite(ctx context.Context, id int64) (int64, error)

	// Prediction notes
	AddPrediction(ctx context.Context, p *Prediction) (int64, error)
	ListPredictions(ctx context.Context) ([]Prediction, error)
	GetPredictionByMatchID(ctx context.Context, matchID string) (*Prediction, error)
	UpdatePrediction(ctx context.Context, id int64, homeScore, awayScore int, note string) (int64, error)
	DeletePrediction(ctx context.Context, id int64) (int64, error)
}

var _ Store = (*SQLiteStore)(nil)
