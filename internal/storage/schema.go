package storage

// Schema creates both record tables when absent. Favorites and predictions are
// independent: there is no foreign key between them.
const Schema = `
CREATE TABLE IF NOT EXISTS favorite_teams (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    team_id TEXT NOT NULL,
    team_name TEXT NOT NULL,
    logo_url TEXT
);

CREATE INDEX IF NOT EXISTS idx_favorite_teams_team_id ON favorite_teams(team_id);

CREATE TABLE IF NOT EXISTS prediction_notes (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    match_id TEXT NOT NULL,
    home_score INTEGER,
    away_score INTEGER,
    note TEXT,
    created_at TEXT
);

CREATE INDEX IF NOT EXISTS idx_prediction_notes_match_id ON prediction_notes(match_id);
CREATE INDEX IF NOT EXISTS idx_prediction_notes_created ON prediction_notes(created_at DESC);
`
