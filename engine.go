package jadwalbola

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/matthewjhunter/jadwalbola/internal/favorites"
	"github.com/matthewjhunter/jadwalbola/internal/predictions"
	"github.com/matthewjhunter/jadwalbola/internal/storage"
	"go.uber.org/zap"
)

// Engine is the public API of the on-device core. It owns the database
// handle and the two repositories built on it.
type Engine struct {
	store       *storage.SQLiteStore
	favorites   *favorites.Repository
	predictions *predictions.Repository
	validate    *validator.Validate
	logger      *zap.Logger
}

// NewEngine opens and initializes the database at cfg.DBPath. An error
// matching ErrStorageInit means the app cannot run.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	if cfg.DBPath == "" {
		cfg.DBPath = "./jadwalbola.db"
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	store, err := storage.NewStore(cfg.DBPath,
		storage.WithLogger(logger),
		storage.WithBusyTimeout(cfg.BusyTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	return &Engine{
		store:       store,
		favorites:   favorites.NewRepository(store, logger),
		predictions: predictions.NewRepository(store, cfg.Clock, logger),
		validate:    validator.New(),
		logger:      logger,
	}, nil
}

type teamIDInput struct {
	TeamID string `validate:"required"`
}

type favoriteInput struct {
	TeamID   string `validate:"required"`
	TeamName string `validate:"required"`
}

type scoreInput struct {
	HomeScore int `validate:"gte=0"`
	AwayScore int `validate:"gte=0"`
}

type predictionInput struct {
	MatchID string `validate:"required"`
	scoreInput
}

func (e *Engine) check(v any) error {
	if err := e.validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return fmt.Errorf("%w: %s", ErrInvalidInput, describe(verrs))
		}
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

func describe(verrs validator.ValidationErrors) string {
	msg := ""
	for i, fe := range verrs {
		if i > 0 {
			msg += "; "
		}
		msg += fmt.Sprintf("%s failed on %q", fe.Field(), fe.Tag())
	}
	return msg
}

// Favorites

// AddFavorite marks a team as favorite and returns the new row id. It does
// not check for an existing row; use IsFavorite or ToggleFavorite for that.
func (e *Engine) AddFavorite(ctx context.Context, teamID, teamName, logoURL string) (int64, error) {
	if err := e.check(favoriteInput{TeamID: teamID, TeamName: teamName}); err != nil {
		return 0, err
	}
	return e.favorites.Add(ctx, teamID, teamName, logoURL)
}

// ListFavorites returns favorites sorted by team name. Read failures yield
// an empty list.
func (e *Engine) ListFavorites(ctx context.Context) []FavoriteTeam {
	return favoritesFromInternal(e.favorites.List(ctx))
}

// IsFavorite reports whether the team is a favorite.
func (e *Engine) IsFavorite(ctx context.Context, teamID string) (bool, error) {
	return e.favorites.IsFavorite(ctx, teamID)
}

// RemoveFavoriteByTeamID removes every favorite row for the team.
func (e *Engine) RemoveFavoriteByTeamID(ctx context.Context, teamID string) error {
	return e.favorites.RemoveByTeamID(ctx, teamID)
}

// RemoveFavoriteByID removes one favorite row; unknown ids are ignored.
func (e *Engine) RemoveFavoriteByID(ctx context.Context, id int64) error {
	return e.favorites.RemoveByID(ctx, id)
}

// ToggleFavorite flips the team's favorite state and returns the new state.
// teamName is only needed when the toggle adds the team.
func (e *Engine) ToggleFavorite(ctx context.Context, teamID, teamName, logoURL string) (bool, error) {
	if err := e.check(teamIDInput{TeamID: teamID}); err != nil {
		return false, err
	}
	if teamName == "" {
		fav, err := e.favorites.IsFavorite(ctx, teamID)
		if err != nil {
			return false, err
		}
		if !fav {
			return false, e.check(favoriteInput{TeamID: teamID, TeamName: teamName})
		}
	}
	return e.favorites.Toggle(ctx, teamID, teamName, logoURL)
}

// Predictions

// AddPrediction records a new prediction. Scores must be non-negative.
func (e *Engine) AddPrediction(ctx context.Context, matchID string, homeScore, awayScore int, note string) (int64, error) {
	if err := e.check(predictionInput{MatchID: matchID, scoreInput: scoreInput{homeScore, awayScore}}); err != nil {
		return 0, err
	}
	return e.predictions.Add(ctx, matchID, homeScore, awayScore, note)
}

// ListPredictions returns predictions newest first. Read failures yield an
// empty list.
func (e *Engine) ListPredictions(ctx context.Context) []Prediction {
	return predictionsFromInternal(e.predictions.List(ctx))
}

// GetPredictionByMatchID returns the first prediction for the match, or nil.
// Several rows may exist for one match; the earliest recorded wins.
func (e *Engine) GetPredictionByMatchID(ctx context.Context, matchID string) (*Prediction, error) {
	p, err := e.predictions.GetByMatchID(ctx, matchID)
	if err != nil || p == nil {
		return nil, err
	}
	result := predictionFromInternal(*p)
	return &result, nil
}

// UpdatePrediction changes the scores and note of a prediction. An unknown
// id is not an error.
func (e *Engine) UpdatePrediction(ctx context.Context, id int64, homeScore, awayScore int, note string) error {
	if err := e.check(scoreInput{homeScore, awayScore}); err != nil {
		return err
	}
	return e.predictions.Update(ctx, id, homeScore, awayScore, note)
}

// DeletePrediction removes a prediction; unknown ids are ignored.
func (e *Engine) DeletePrediction(ctx context.Context, id int64) error {
	return e.predictions.Delete(ctx, id)
}

// SavePrediction updates the match's existing prediction or adds one, and
// returns the row id.
func (e *Engine) SavePrediction(ctx context.Context, matchID string, homeScore, awayScore int, note string) (int64, error) {
	if err := e.check(predictionInput{MatchID: matchID, scoreInput: scoreInput{homeScore, awayScore}}); err != nil {
		return 0, err
	}
	return e.predictions.Save(ctx, matchID, homeScore, awayScore, note)
}

// Close closes the database.
func (e *Engine) Close() error {
	return e.store.Close()
}

// Conversion helpers

func favoriteFromInternal(f storage.FavoriteTeam) FavoriteTeam {
	return FavoriteTeam{
		ID:       f.ID,
		TeamID:   f.TeamID,
		TeamName: f.TeamName,
		LogoURL:  f.LogoURL,
	}
}

func favoritesFromInternal(ff []storage.FavoriteTeam) []FavoriteTeam {
	result := make([]FavoriteTeam, len(ff))
	for i, f := range ff {
		result[i] = favoriteFromInternal(f)
	}
	return result
}

func predictionFromInternal(p storage.Prediction) Prediction {
	return Prediction{
		ID:        p.ID,
		MatchID:   p.MatchID,
		HomeScore: p.HomeScore,
		AwayScore: p.AwayScore,
		Note:      p.Note,
		CreatedAt: p.CreatedAt,
	}
}

func predictionsFromInternal(pp []storage.Prediction) []Prediction {
	result := make([]Prediction, len(pp))
	for i, p := range pp {
		result[i] = predictionFromInternal(p)
	}
	return result
}
