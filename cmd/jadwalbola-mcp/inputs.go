package main

// Input types for MCP tools. The SDK infers JSON Schema from these structs.
// Pointer types are optional; value types are required.

type emptyInput struct{}

type favoriteAddInput struct {
	TeamID   string  `json:"team_id"            jsonschema:"The football-data team ID"`
	TeamName string  `json:"team_name"          jsonschema:"Display name of the team"`
	LogoURL  *string `json:"logo_url,omitempty" jsonschema:"Optional team crest URL"`
}

type favoriteToggleInput struct {
	TeamID   string  `json:"team_id"             jsonschema:"The football-data team ID"`
	TeamName *string `json:"team_name,omitempty" jsonschema:"Display name of the team. Required only when the toggle adds the team."`
	LogoURL  *string `json:"logo_url,omitempty"  jsonschema:"Optional team crest URL"`
}

type teamIDInput struct {
	TeamID string `json:"team_id" jsonschema:"The football-data team ID"`
}

type favoriteRemoveInput struct {
	TeamID *string `json:"team_id,omitempty" jsonschema:"Remove every favorite row for this team ID"`
	ID     *int64  `json:"id,omitempty"      jsonschema:"Remove the single favorite row with this ID. Use favorites_list to find it."`
}

type matchIDInput struct {
	MatchID string `json:"match_id" jsonschema:"The match ID"`
}

type predictionInput struct {
	MatchID   string  `json:"match_id"       jsonschema:"The match ID"`
	HomeScore int     `json:"home_score"     jsonschema:"Predicted home team goals (0 or more)"`
	AwayScore int     `json:"away_score"     jsonschema:"Predicted away team goals (0 or more)"`
	Note      *string `json:"note,omitempty" jsonschema:"Optional free-text note"`
}

type predictionUpdateInput struct {
	ID        int64   `json:"id"             jsonschema:"The prediction ID. Use predictions_list to find it."`
	HomeScore int     `json:"home_score"     jsonschema:"Predicted home team goals (0 or more)"`
	AwayScore int     `json:"away_score"     jsonschema:"Predicted away team goals (0 or more)"`
	Note      *string `json:"note,omitempty" jsonschema:"Free-text note. Omitting it clears the existing note."`
}

type predictionIDInput struct {
	ID int64 `json:"id" jsonschema:"The prediction ID"`
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
