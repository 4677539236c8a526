package jadwalbola

import (
	"errors"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/matthewjhunter/jadwalbola/internal/storage"
	"go.uber.org/zap"
)

// EngineConfig configures the on-device core.
type EngineConfig struct {
	DBPath      string
	BusyTimeout time.Duration   // SQLite busy timeout; 0 means 5s
	Logger      *zap.Logger     // nil means no logging
	Clock       clockwork.Clock // stamps prediction CreatedAt; nil means real time
}

// FavoriteTeam is a team the user follows.
type FavoriteTeam struct {
	ID       int64  `json:"id"`
	TeamID   string `json:"team_id"`
	TeamName string `json:"team_name"`
	LogoURL  string `json:"logo_url,omitempty"`
}

// Prediction is the user's guess at a match result.
type Prediction struct {
	ID        int64     `json:"id"`
	MatchID   string    `json:"match_id"`
	HomeScore int       `json:"home_score"`
	AwayScore int       `json:"away_score"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Error kinds. Use errors.Is to classify an error returned by the Engine.
var (
	// ErrStorageInit: the database could not be opened or initialized. Fatal.
	ErrStorageInit = storage.ErrInit
	// ErrStorageWrite: a write failed; the user may retry.
	ErrStorageWrite = storage.ErrWrite
	// ErrStorageRead: a lookup failed.
	ErrStorageRead = storage.ErrRead
	// ErrInvalidInput: arguments failed validation before reaching storage.
	ErrInvalidInput = errors.New("invalid input")
)
