package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/matthewjhunter/jadwalbola"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type testFixtures struct {
	server http.Handler
	engine *jadwalbola.Engine
	logs   *observer.ObservedLogs
}

func newTestFixtures(t *testing.T) *testFixtures {
	t.Helper()
	engine, err := jadwalbola.NewEngine(jadwalbola.EngineConfig{
		DBPath: filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	t.Cleanup(func() { engine.Close() })

	core, logs := observer.New(zapcore.InfoLevel)
	return &testFixtures{
		server: newServer(engine, zap.New(core)),
		engine: engine,
		logs:   logs,
	}
}

// request is a convenience helper for making test HTTP requests.
func request(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return v
}

// --- Tests ---

func TestHealth(t *testing.T) {
	tf := newTestFixtures(t)

	rr := request(t, tf.server, "GET", "/healthz", "")
	if rr.Code != http.StatusOK {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content-type: got %q", ct)
	}
}

func TestFavoritesFlow(t *testing.T) {
	tf := newTestFixtures(t)

	rr := request(t, tf.server, "POST", "/favorites", `{"team_id":"57","team_name":"Chelsea"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("add status: got %d (%s)", rr.Code, rr.Body.String())
	}
	rr = request(t, tf.server, "POST", "/favorites", `{"team_id":"42","team_name":"Arsenal","logo_url":"url1"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("add status: got %d (%s)", rr.Code, rr.Body.String())
	}
	arsenalID := decode[idBody](t, rr).ID

	rr = request(t, tf.server, "GET", "/favorites", "")
	teams := decode[[]jadwalbola.FavoriteTeam](t, rr)
	if len(teams) != 2 || teams[0].TeamName != "Arsenal" || teams[1].TeamName != "Chelsea" {
		t.Fatalf("list: got %+v", teams)
	}

	rr = request(t, tf.server, "GET", "/favorites/42/status", "")
	if st := decode[favoriteStatus](t, rr); !st.Favorite {
		t.Errorf("status: got %+v, want favorite", st)
	}

	rr = request(t, tf.server, "DELETE", "/favorites/"+itoa(arsenalID), "")
	if rr.Code != http.StatusNoContent {
		t.Errorf("remove status: got %d", rr.Code)
	}
	rr = request(t, tf.server, "GET", "/favorites/42/status", "")
	if st := decode[favoriteStatus](t, rr); st.Favorite {
		t.Errorf("status after remove: got %+v", st)
	}

	rr = request(t, tf.server, "DELETE", "/favorites/team/57", "")
	if rr.Code != http.StatusNoContent {
		t.Errorf("remove by team status: got %d", rr.Code)
	}
	rr = request(t, tf.server, "GET", "/favorites", "")
	if strings.TrimSpace(rr.Body.String()) != "[]" {
		t.Errorf("list after removal: got %q, want []", rr.Body.String())
	}
}

func TestFavoriteToggle(t *testing.T) {
	tf := newTestFixtures(t)

	for _, want := range []bool{true, false, true} {
		rr := request(t, tf.server, "POST", "/favorites/42/toggle", `{"team_name":"Arsenal"}`)
		if rr.Code != http.StatusOK {
			t.Fatalf("toggle status: got %d (%s)", rr.Code, rr.Body.String())
		}
		if st := decode[favoriteStatus](t, rr); st.Favorite != want {
			t.Errorf("toggle: got %v, want %v", st.Favorite, want)
		}
	}
}

func TestFavoriteAddSanitizesName(t *testing.T) {
	tf := newTestFixtures(t)

	rr := request(t, tf.server, "POST", "/favorites", `{"team_id":"397","team_name":"<b>Brighton & Hove Albion</b>"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("add status: got %d (%s)", rr.Code, rr.Body.String())
	}
	teams := tf.engine.ListFavorites(t.Context())
	if len(teams) != 1 || teams[0].TeamName != "Brighton & Hove Albion" {
		t.Errorf("stored name: got %+v", teams)
	}
}

func TestFavoriteToggleOffWithoutName(t *testing.T) {
	tf := newTestFixtures(t)

	for _, body := range []string{`{}`, ""} {
		rr := request(t, tf.server, "POST", "/favorites/42/toggle", `{"team_name":"Arsenal"}`)
		if rr.Code != http.StatusOK {
			t.Fatalf("toggle on: got %d (%s)", rr.Code, rr.Body.String())
		}

		rr = request(t, tf.server, "POST", "/favorites/42/toggle", body)
		if rr.Code != http.StatusOK {
			t.Fatalf("toggle off with body %q: got %d (%s)", body, rr.Code, rr.Body.String())
		}
		if st := decode[favoriteStatus](t, rr); st.Favorite {
			t.Errorf("toggle off with body %q: still a favorite", body)
		}
	}

	// Adding still needs a name.
	rr := request(t, tf.server, "POST", "/favorites/42/toggle", `{}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("toggle on without name: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
	if n := len(tf.engine.ListFavorites(t.Context())); n != 0 {
		t.Errorf("favorites after rejected toggle: got %d", n)
	}
}

func TestFavoriteAddKeepsEncodedMarkupInert(t *testing.T) {
	tf := newTestFixtures(t)

	rr := request(t, tf.server, "POST", "/favorites", `{"team_id":"1","team_name":"&lt;script&gt;alert(1)&lt;/script&gt;"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("add status: got %d (%s)", rr.Code, rr.Body.String())
	}
	rr = request(t, tf.server, "POST", "/favorites", `{"team_id":"351","team_name":"Nott'm \"Forest\""}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("add status: got %d (%s)", rr.Code, rr.Body.String())
	}

	names := map[string]string{}
	for _, team := range tf.engine.ListFavorites(t.Context()) {
		names[team.TeamID] = team.TeamName
	}
	if strings.ContainsAny(names["1"], "<>") {
		t.Errorf("encoded markup decoded into %q", names["1"])
	}
	if want := `Nott'm "Forest"`; names["351"] != want {
		t.Errorf("stored name: got %q, want %q", names["351"], want)
	}
}

func TestFavoriteAddBadRequests(t *testing.T) {
	tf := newTestFixtures(t)

	tests := []struct {
		name string
		body string
	}{
		{"malformed", `{"team_id":`},
		{"unknown field", `{"team_id":"42","team_name":"Arsenal","crest":"x"}`},
		{"empty name", `{"team_id":"42","team_name":""}`},
		{"markup only", `{"team_id":"42","team_name":"<i></i>"}`},
		{"missing team id", `{"team_name":"Arsenal"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := request(t, tf.server, "POST", "/favorites", tt.body)
			if rr.Code != http.StatusBadRequest {
				t.Errorf("status: got %d, want %d (%s)", rr.Code, http.StatusBadRequest, rr.Body.String())
			}
			if decode[errorBody](t, rr).Error == "" {
				t.Error("expected error message")
			}
		})
	}
}

func TestInvalidPathID(t *testing.T) {
	tf := newTestFixtures(t)

	for _, path := range []string{"/favorites/abc", "/predictions/0"} {
		rr := request(t, tf.server, "DELETE", path, "")
		if rr.Code != http.StatusBadRequest {
			t.Errorf("DELETE %s: got %d, want %d", path, rr.Code, http.StatusBadRequest)
		}
	}
}

func TestPredictionsFlow(t *testing.T) {
	tf := newTestFixtures(t)

	rr := request(t, tf.server, "POST", "/predictions", `{"match_id":"m1","home_score":2,"away_score":1,"note":"derby"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("add status: got %d (%s)", rr.Code, rr.Body.String())
	}
	id := decode[idBody](t, rr).ID

	rr = request(t, tf.server, "GET", "/predictions/match/m1", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("get status: got %d", rr.Code)
	}
	p := decode[jadwalbola.Prediction](t, rr)
	if p.ID != id || p.HomeScore != 2 || p.AwayScore != 1 || p.Note != "derby" || p.CreatedAt.IsZero() {
		t.Errorf("get: got %+v", p)
	}

	rr = request(t, tf.server, "PUT", "/predictions/"+itoa(id), `{"home_score":0,"away_score":0}`)
	if rr.Code != http.StatusNoContent {
		t.Errorf("update status: got %d (%s)", rr.Code, rr.Body.String())
	}

	rr = request(t, tf.server, "GET", "/predictions", "")
	list := decode[[]jadwalbola.Prediction](t, rr)
	if len(list) != 1 || list[0].HomeScore != 0 || list[0].Note != "" || list[0].MatchID != "m1" {
		t.Errorf("list after update: got %+v", list)
	}

	rr = request(t, tf.server, "DELETE", "/predictions/"+itoa(id), "")
	if rr.Code != http.StatusNoContent {
		t.Errorf("delete status: got %d", rr.Code)
	}

	rr = request(t, tf.server, "GET", "/predictions/match/m1", "")
	if rr.Code != http.StatusNotFound {
		t.Errorf("get after delete: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestPredictionUpdateUnknownID(t *testing.T) {
	tf := newTestFixtures(t)

	rr := request(t, tf.server, "PUT", "/predictions/999", `{"home_score":1,"away_score":1}`)
	if rr.Code != http.StatusNoContent {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusNoContent)
	}
}

func TestPredictionSave(t *testing.T) {
	tf := newTestFixtures(t)

	rr := request(t, tf.server, "PUT", "/predictions/match/m1", `{"home_score":1,"away_score":0}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("save status: got %d (%s)", rr.Code, rr.Body.String())
	}
	first := decode[idBody](t, rr).ID

	rr = request(t, tf.server, "PUT", "/predictions/match/m1", `{"home_score":3,"away_score":2,"note":"<script>x</script>comeback"}`)
	if got := decode[idBody](t, rr).ID; got != first {
		t.Errorf("second save id: got %d, want %d", got, first)
	}

	list := tf.engine.ListPredictions(t.Context())
	if len(list) != 1 || list[0].HomeScore != 3 || list[0].Note != "comeback" {
		t.Errorf("after save: got %+v", list)
	}
}

func TestPredictionBadRequests(t *testing.T) {
	tf := newTestFixtures(t)

	tests := []struct {
		name string
		body string
	}{
		{"negative score", `{"match_id":"m1","home_score":-1,"away_score":0}`},
		{"missing score", `{"match_id":"m1","home_score":1}`},
		{"missing match", `{"home_score":1,"away_score":0}`},
		{"not a number", `{"match_id":"m1","home_score":"two","away_score":0}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := request(t, tf.server, "POST", "/predictions", tt.body)
			if rr.Code != http.StatusBadRequest {
				t.Errorf("status: got %d, want %d (%s)", rr.Code, http.StatusBadRequest, rr.Body.String())
			}
		})
	}
	if n := len(tf.engine.ListPredictions(t.Context())); n != 0 {
		t.Errorf("rejected requests stored %d predictions", n)
	}
}

func TestStorageErrorsAreUnavailable(t *testing.T) {
	tf := newTestFixtures(t)
	tf.engine.Close()

	rr := request(t, tf.server, "POST", "/favorites", `{"team_id":"42","team_name":"Arsenal"}`)
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("write: got %d, want %d", rr.Code, http.StatusServiceUnavailable)
	}
	rr = request(t, tf.server, "GET", "/predictions/match/m1", "")
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("read: got %d, want %d", rr.Code, http.StatusServiceUnavailable)
	}

	// list reads degrade to empty
	rr = request(t, tf.server, "GET", "/favorites", "")
	if rr.Code != http.StatusOK || strings.TrimSpace(rr.Body.String()) != "[]" {
		t.Errorf("list: got %d %q", rr.Code, rr.Body.String())
	}

	if tf.logs.FilterMessage("request failed").Len() != 2 {
		t.Errorf("expected 2 request failed log entries, got %d", tf.logs.FilterMessage("request failed").Len())
	}
}

func TestRequestID(t *testing.T) {
	tf := newTestFixtures(t)

	rr := request(t, tf.server, "GET", "/healthz", "")
	generated := rr.Header().Get(requestIDHeader)
	if len(generated) != 36 {
		t.Errorf("generated request id: got %q", generated)
	}

	req := httptest.NewRequest("GET", "/healthz", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rr = httptest.NewRecorder()
	tf.server.ServeHTTP(rr, req)
	if got := rr.Header().Get(requestIDHeader); got != "abc-123" {
		t.Errorf("propagated request id: got %q", got)
	}

	entries := tf.logs.FilterMessage("request").FilterField(zap.String("request_id", "abc-123"))
	if entries.Len() != 1 {
		t.Errorf("expected one request log with request_id, got %d", entries.Len())
	}
}

func TestLogRequests(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	h := logRequests(zap.New(core), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
		}
	}))

	request(t, h, "GET", "/found", "")
	request(t, h, "GET", "/missing", "")

	entries := logs.FilterMessage("request").All()
	if len(entries) != 2 {
		t.Fatalf("request logs: got %d, want 2", len(entries))
	}
	for i, want := range []int64{http.StatusOK, http.StatusNotFound} {
		if got := entries[i].ContextMap()["status"]; got != want {
			t.Errorf("entry %d status: got %v, want %d", i, got, want)
		}
	}
	if got := entries[1].ContextMap()["path"]; got != "/missing" {
		t.Errorf("path: got %v", got)
	}
}

func TestRecovery(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)
	h := recovery(logger, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rr := request(t, h, "GET", "/", "")
	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusInternalServerError)
	}
	if logs.FilterMessage("panic").Len() != 1 {
		t.Error("expected panic to be logged")
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
