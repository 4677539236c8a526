// Package predictions is the CRUD facade over the prediction_notes table.
package predictions

import (
	"context"

	"github.com/jonboulle/clockwork"
	"github.com/matthewjhunter/jadwalbola/internal/storage"
	"go.uber.org/zap"
)

// Store is the subset of storage.Store the repository needs.
type Store interface {
	AddPrediction(ctx context.Context, p *storage.Prediction) (int64, error)
	ListPredictions(ctx context.Context) ([]storage.Prediction, error)
	GetPredictionByMatchID(ctx context.Context, matchID string) (*storage.Prediction, error)
	UpdatePrediction(ctx context.Context, id int64, homeScore, awayScore int, note string) (int64, error)
	DeletePrediction(ctx context.Context, id int64) (int64, error)
}

type Repository struct {
	store  Store
	clock  clockwork.Clock
	logger *zap.Logger
}

// NewRepository wraps store. clock stamps CreatedAt; nil means the real clock.
func NewRepository(store Store, clock clockwork.Clock, logger *zap.Logger) *Repository {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{store: store, clock: clock, logger: logger.Named("predictions")}
}

// Add stores a new prediction stamped with the current time. Scores are
// persisted as given; callers validate them.
func (r *Repository) Add(ctx context.Context, matchID string, homeScore, awayScore int, note string) (int64, error) {
	id, err := r.store.AddPrediction(ctx, &storage.Prediction{
		MatchID:   matchID,
		HomeScore: homeScore,
		AwayScore: awayScore,
		Note:      note,
		CreatedAt: r.clock.Now(),
	})
	if err != nil {
		r.logger.Error("add prediction failed", zap.String("match_id", matchID), zap.Error(err))
		return 0, err
	}
	r.logger.Debug("prediction added", zap.Int64("id", id), zap.String("match_id", matchID))
	return id, nil
}

// List returns predictions newest first. A failed read is logged and yields
// an empty list.
func (r *Repository) List(ctx context.Context) []storage.Prediction {
	preds, err := r.store.ListPredictions(ctx)
	if err != nil {
		r.logger.Warn("list predictions failed, returning empty list", zap.Error(err))
		return []storage.Prediction{}
	}
	return preds
}

// GetByMatchID returns the first prediction recorded for matchID, or nil.
func (r *Repository) GetByMatchID(ctx context.Context, matchID string) (*storage.Prediction, error) {
	p, err := r.store.GetPredictionByMatchID(ctx, matchID)
	if err != nil {
		r.logger.Error("get prediction failed", zap.String("match_id", matchID), zap.Error(err))
		return nil, err
	}
	return p, nil
}

// Update rewrites scores and note in place. An unknown id is silently ignored.
func (r *Repository) Update(ctx context.Context, id int64, homeScore, awayScore int, note string) error {
	n, err := r.store.UpdatePrediction(ctx, id, homeScore, awayScore, note)
	if err != nil {
		r.logger.Error("update prediction failed", zap.Int64("id", id), zap.Error(err))
		return err
	}
	r.logger.Debug("prediction updated", zap.Int64("id", id), zap.Int64("rows", n))
	return nil
}

// Delete removes one prediction; an unknown id is a no-op.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	if _, err := r.store.DeletePrediction(ctx, id); err != nil {
		r.logger.Error("delete prediction failed", zap.Int64("id", id), zap.Error(err))
		return err
	}
	return nil
}

// Save updates the prediction already recorded for matchID, or adds one.
// It returns the id of the row written.
func (r *Repository) Save(ctx context.Context, matchID string, homeScore, awayScore int, note string) (int64, error) {
	existing, err := r.GetByMatchID(ctx, matchID)
	if err != nil {
		return 0, err
	}
	if existing == nil {
		return r.Add(ctx, matchID, homeScore, awayScore, note)
	}
	if err := r.Update(ctx, existing.ID, homeScore, awayScore, note); err != nil {
		return 0, err
	}
	return existing.ID, nil
}
