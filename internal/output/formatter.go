package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/matthewjhunter/jadwalbola"
)

type Format string

const (
	FormatJSON  Format = "json"
	FormatText  Format = "text"
	FormatHuman Format = "human"
)

// ParseFormat validates a --format flag value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatJSON, FormatText, FormatHuman:
		return f, nil
	}
	return "", fmt.Errorf("unknown format: %s (want json, text or human)", s)
}

type Formatter struct {
	format Format
	out    io.Writer
	err    io.Writer
}

// NewFormatter creates a new output formatter
func NewFormatter(format Format) *Formatter {
	return &Formatter{
		format: format,
		out:    os.Stdout,
		err:    os.Stderr,
	}
}

// NewFormatterWithWriters creates a formatter with custom output writers for testability
func NewFormatterWithWriters(format Format, out, errW io.Writer) *Formatter {
	return &Formatter{
		format: format,
		out:    out,
		err:    errW,
	}
}

// WriteResult reports the outcome of a mutating command.
type WriteResult struct {
	Action string `json:"action"`
	ID     int64  `json:"id,omitempty"`
	Target string `json:"target,omitempty"`
}

// OutputWriteResult outputs the result of an add, remove, update or delete
func (f *Formatter) OutputWriteResult(result *WriteResult) error {
	switch f.format {
	case FormatJSON:
		return json.NewEncoder(f.out).Encode(result)
	case FormatText:
		fmt.Fprintf(f.out, "action=%s", result.Action)
		if result.ID != 0 {
			fmt.Fprintf(f.out, "\tid=%d", result.ID)
		}
		if result.Target != "" {
			fmt.Fprintf(f.out, "\ttarget=%s", result.Target)
		}
		fmt.Fprintln(f.out)
		return nil
	case FormatHuman:
		var parts []string
		if result.Action != "" {
			parts = append(parts, strings.ToUpper(result.Action[:1])+result.Action[1:])
		}
		if result.Target != "" {
			parts = append(parts, result.Target)
		}
		if result.ID != 0 {
			parts = append(parts, fmt.Sprintf("(id %d)", result.ID))
		}
		fmt.Fprintln(f.out, strings.Join(parts, " "))
		return nil
	}
	return fmt.Errorf("unknown format: %s", f.format)
}

// OutputFavorites outputs the favorite teams list
func (f *Formatter) OutputFavorites(teams []jadwalbola.FavoriteTeam) error {
	switch f.format {
	case FormatJSON:
		return json.NewEncoder(f.out).Encode(teams)
	case FormatText:
		for _, t := range teams {
			fmt.Fprintf(f.out, "id=%d\tteam_id=%s\tteam_name=%s\tlogo_url=%s\n",
				t.ID, t.TeamID, t.TeamName, t.LogoURL)
		}
		return nil
	case FormatHuman:
		if len(teams) == 0 {
			fmt.Fprintln(f.out, "No favorite teams")
			return nil
		}
		fmt.Fprintf(f.out, "Favorite teams (%d):\n\n", len(teams))
		for _, t := range teams {
			fmt.Fprintf(f.out, "  ⭐ %s (team %s, id %d)\n", t.TeamName, t.TeamID, t.ID)
		}
		return nil
	}
	return fmt.Errorf("unknown format: %s", f.format)
}

// OutputFavoriteStatus outputs whether a team is a favorite
func (f *Formatter) OutputFavoriteStatus(teamID string, favorite bool) error {
	switch f.format {
	case FormatJSON:
		return json.NewEncoder(f.out).Encode(map[string]interface{}{
			"team_id":  teamID,
			"favorite": favorite,
		})
	case FormatText:
		fmt.Fprintf(f.out, "team_id=%s\tfavorite=%t\n", teamID, favorite)
		return nil
	case FormatHuman:
		if favorite {
			fmt.Fprintf(f.out, "Team %s is a favorite\n", teamID)
		} else {
			fmt.Fprintf(f.out, "Team %s is not a favorite\n", teamID)
		}
		return nil
	}
	return fmt.Errorf("unknown format: %s", f.format)
}

// OutputPredictions outputs predictions, newest first
func (f *Formatter) OutputPredictions(preds []jadwalbola.Prediction) error {
	switch f.format {
	case FormatJSON:
		return json.NewEncoder(f.out).Encode(preds)
	case FormatText:
		for _, p := range preds {
			fmt.Fprintf(f.out, "id=%d\tmatch_id=%s\tscore=%d-%d\tcreated=%s\tnote=%s\n",
				p.ID, p.MatchID, p.HomeScore, p.AwayScore, formatTime(p.CreatedAt), p.Note)
		}
		return nil
	case FormatHuman:
		if len(preds) == 0 {
			fmt.Fprintln(f.out, "No predictions yet")
			return nil
		}
		fmt.Fprintf(f.out, "Predictions (%d):\n\n", len(preds))
		for _, p := range preds {
			f.humanPrediction(p)
			fmt.Fprintln(f.out, "---")
		}
		return nil
	}
	return fmt.Errorf("unknown format: %s", f.format)
}

// OutputPrediction outputs a single prediction; nil means none was found.
func (f *Formatter) OutputPrediction(matchID string, p *jadwalbola.Prediction) error {
	switch f.format {
	case FormatJSON:
		if p == nil {
			_, err := fmt.Fprintln(f.out, "null")
			return err
		}
		return json.NewEncoder(f.out).Encode(p)
	case FormatText:
		if p == nil {
			fmt.Fprintf(f.out, "match_id=%s\tfound=false\n", matchID)
			return nil
		}
		fmt.Fprintf(f.out, "id=%d\tmatch_id=%s\tscore=%d-%d\tcreated=%s\tnote=%s\n",
			p.ID, p.MatchID, p.HomeScore, p.AwayScore, formatTime(p.CreatedAt), p.Note)
		return nil
	case FormatHuman:
		if p == nil {
			fmt.Fprintf(f.out, "No prediction for match %s\n", matchID)
			return nil
		}
		f.humanPrediction(*p)
		return nil
	}
	return fmt.Errorf("unknown format: %s", f.format)
}

func (f *Formatter) humanPrediction(p jadwalbola.Prediction) {
	fmt.Fprintf(f.out, "Match %s: %d - %d (id %d)\n", p.MatchID, p.HomeScore, p.AwayScore, p.ID)
	if !p.CreatedAt.IsZero() {
		fmt.Fprintf(f.out, "Saved: %s\n", p.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	if p.Note != "" {
		fmt.Fprintf(f.out, "Note: %s\n", truncate(p.Note, 200))
	}
}

// SessionCheck is the outcome of evaluating a token against a route.
type SessionCheck struct {
	Route    string           `json:"route"`
	State    string           `json:"state"`
	User     *jadwalbola.User `json:"user,omitempty"`
	Decision string           `json:"decision"`
	Target   string           `json:"target,omitempty"`
}

// OutputSessionCheck outputs the guard decision for a route
func (f *Formatter) OutputSessionCheck(c *SessionCheck) error {
	switch f.format {
	case FormatJSON:
		return json.NewEncoder(f.out).Encode(c)
	case FormatText:
		fmt.Fprintf(f.out, "route=%s\tstate=%s\tdecision=%s", c.Route, c.State, c.Decision)
		if c.Target != "" {
			fmt.Fprintf(f.out, "\ttarget=%s", c.Target)
		}
		fmt.Fprintln(f.out)
		return nil
	case FormatHuman:
		who := "nobody signed in"
		if c.User != nil {
			who = fmt.Sprintf("signed in as %s (%s)", c.User.DisplayName, c.User.UID)
		}
		fmt.Fprintf(f.out, "Route %s, %s\n", c.Route, who)
		if c.Target != "" {
			fmt.Fprintf(f.out, "→ redirect to %s\n", c.Target)
		} else {
			fmt.Fprintln(f.out, "→ stay")
		}
		return nil
	}
	return fmt.Errorf("unknown format: %s", f.format)
}

// Error outputs an error message to stderr
func (f *Formatter) Error(format string, args ...interface{}) {
	fmt.Fprintf(f.err, format+"\n", args...)
}

// Warning outputs a warning message to stderr
func (f *Formatter) Warning(format string, args ...interface{}) {
	fmt.Fprintf(f.err, "Warning: "+format+"\n", args...)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// truncate truncates a string to maxLen characters
func truncate(s string, maxLen int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}
