package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// TimestampLayout is the ISO-8601 form used for prediction_notes.created_at.
// Values are always written in UTC so lexical order matches time order.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// SQLiteStore is the on-device relational store. A value is only handed out
// after Initialize succeeded, so every other method may assume the schema.
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
}

type FavoriteTeam struct {
	ID       int64
	TeamID   string
	TeamName string
	LogoURL  string
}

type Prediction struct {
	ID        int64
	MatchID   string
	HomeScore int
	AwayScore int
	Note      string
	CreatedAt time.Time
}

type options struct {
	logger      *zap.Logger
	busyTimeout time.Duration
}

// Option configures NewStore.
type Option func(*options)

// WithLogger sets the logger used for lifecycle messages.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithBusyTimeout sets how long SQLite waits on a locked database file.
func WithBusyTimeout(d time.Duration) Option {
	return func(o *options) { o.busyTimeout = d }
}

// NewStore opens the database at dbPath and initializes the schema. Any
// failure is a KindInit error.
func NewStore(dbPath string, opts ...Option) (*SQLiteStore, error) {
	o := options{logger: zap.NewNop(), busyTimeout: 5 * time.Second}
	for _, opt := range opts {
		opt(&o)
	}
	log := o.logger.Named("storage")
	log.Info("opening database", zap.String("path", dbPath))

	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(%d)", dbPath, o.busyTimeout.Milliseconds())
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, initErr("open database", err)
	}
	// One connection: statements are serialized by the handle, and an
	// in-memory database stays a single database.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, initErr("open database", err)
	}

	s := &SQLiteStore{db: db, logger: log}
	if err := s.Initialize(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	log.Info("database ready")
	return s, nil
}

// Initialize applies the schema. It is idempotent and safe on every start.
func (s *SQLiteStore) Initialize(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "PRAGMA journal_mode = WAL"); err != nil {
		return initErr("set journal mode", err)
	}
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return initErr("apply schema", err)
	}
	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Favorite teams

// AddFavorite inserts a favorite unconditionally and returns its new id.
func (s *SQLiteStore) AddFavorite(ctx context.Context, teamID, teamName, logoURL string) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		"INSERT INTO favorite_teams (team_id, team_name, logo_url) VALUES (?, ?, ?)",
		teamID, teamName, nullString(logoURL),
	)
	if err != nil {
		return 0, writeErr("add favorite", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, writeErr("add favorite", err)
	}
	return id, nil
}

// ListFavorites returns every favorite ordered by team name.
func (s *SQLiteStore) ListFavorites(ctx context.Context) ([]FavoriteTeam, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, team_id, team_name, logo_url FROM favorite_teams ORDER BY team_name ASC, id ASC",
	)
	if err != nil {
		return nil, readErr("list favorites", err)
	}
	defer rows.Close()

	favorites := []FavoriteTeam{}
	for rows.Next() {
		var f FavoriteTeam
		var logo sql.NullString
		if err := rows.Scan(&f.ID, &f.TeamID, &f.TeamName, &logo); err != nil {
			return nil, readErr("scan favorite", err)
		}
		f.LogoURL = logo.String
		favorites = append(favorites, f)
	}
	if err := rows.Err(); err != nil {
		return nil, readErr("list favorites", err)
	}
	return favorites, nil
}

// HasFavorite reports whether at least one favorite row carries teamID.
func (s *SQLiteStore) HasFavorite(ctx context.Context, teamID string) (bool, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		"SELECT id FROM favorite_teams WHERE team_id = ? LIMIT 1", teamID,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, readErr("check favorite", err)
	}
	return true, nil
}

// DeleteFavoritesByTeamID removes every row for teamID, duplicates included.
func (s *SQLiteStore) DeleteFavoritesByTeamID(ctx context.Context, teamID string) (int64, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM favorite_teams WHERE team_id = ?", teamID)
	if err != nil {
		return 0, writeErr("remove favorite by team", err)
	}
	return affected(result), nil
}

// DeleteFavorite removes the row with the given id, if any.
func (s *SQLiteStore) DeleteFavorite(ctx context.Context, id int64) (int64, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM favorite_teams WHERE id = ?", id)
	if err != nil {
		return 0, writeErr("remove favorite", err)
	}
	return affected(result), nil
}

// Prediction notes

// AddPrediction inserts p and returns its new id. p.CreatedAt is stored as
// given; a zero value is stored as NULL.
func (s *SQLiteStore) AddPrediction(ctx context.Context, p *Prediction) (int64, error) {
	var createdAt any
	if !p.CreatedAt.IsZero() {
		createdAt = p.CreatedAt.UTC().Format(TimestampLayout)
	}
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO prediction_notes (match_id, home_score, away_score, note, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		p.MatchID, p.HomeScore, p.AwayScore, nullString(p.Note), createdAt,
	)
	if err != nil {
		return 0, writeErr("add prediction", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, writeErr("add prediction", err)
	}
	return id, nil
}

const predictionColumns = "id, match_id, home_score, away_score, note, created_at"

// ListPredictions returns every prediction, most recent first.
func (s *SQLiteStore) ListPredictions(ctx context.Context) ([]Prediction, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+predictionColumns+" FROM prediction_notes ORDER BY created_at DESC, id DESC",
	)
	if err != nil {
		return nil, readErr("list predictions", err)
	}
	defer rows.Close()

	predictions := []Prediction{}
	for rows.Next() {
		p, err := scanPrediction(rows)
		if err != nil {
			return nil, readErr("scan prediction", err)
		}
		predictions = append(predictions, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, readErr("list predictions", err)
	}
	return predictions, nil
}

// GetPredictionByMatchID returns the lowest-id prediction for matchID, or
// nil if there is none.
func (s *SQLiteStore) GetPredictionByMatchID(ctx context.Context, matchID string) (*Prediction, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+predictionColumns+" FROM prediction_notes WHERE match_id = ? ORDER BY id ASC LIMIT 1",
		matchID,
	)
	p, err := scanPrediction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, readErr("get prediction", err)
	}
	return p, nil
}

// UpdatePrediction rewrites the scores and note of one row. match_id and
// created_at are never touched. An unknown id updates nothing.
func (s *SQLiteStore) UpdatePrediction(ctx context.Context, id int64, homeScore, awayScore int, note string) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		"UPDATE prediction_notes SET home_score = ?, away_score = ?, note = ? WHERE id = ?",
		homeScore, awayScore, nullString(note), id,
	)
	if err != nil {
		return 0, writeErr("update prediction", err)
	}
	return affected(result), nil
}

// DeletePrediction removes the row with the given id, if any.
func (s *SQLiteStore) DeletePrediction(ctx context.Context, id int64) (int64, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM prediction_notes WHERE id = ?", id)
	if err != nil {
		return 0, writeErr("delete prediction", err)
	}
	return affected(result), nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPrediction(sc scanner) (*Prediction, error) {
	var p Prediction
	var home, away sql.NullInt64
	var note, createdAt sql.NullString
	if err := sc.Scan(&p.ID, &p.MatchID, &home, &away, &note, &createdAt); err != nil {
		return nil, err
	}
	p.HomeScore = int(home.Int64)
	p.AwayScore = int(away.Int64)
	p.Note = note.String
	if createdAt.Valid && createdAt.String != "" {
		t, err := time.Parse(time.RFC3339Nano, createdAt.String)
		if err != nil {
			return nil, fmt.Errorf("parse created_at %q: %w", createdAt.String, err)
		}
		p.CreatedAt = t
	}
	return &p, nil
}

// nullString stores empty optional text as NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func affected(result sql.Result) int64 {
	n, err := result.RowsAffected()
	if err != nil {
		return 0
	}
	return n
}
