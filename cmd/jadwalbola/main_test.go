package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/matthewjhunter/jadwalbola"
	"github.com/matthewjhunter/jadwalbola/internal/identity"
	"github.com/matthewjhunter/jadwalbola/internal/output"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "cli-test-secret"

// writeTestConfig writes a YAML config pointing at a temp database.
func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := "database:\n  path: " + filepath.Join(dir, "test.db") + "\n" +
		"auth:\n  token_secret: " + testSecret + "\n" +
		"log:\n  level: error\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0600))
	return path
}

func run(t *testing.T, configFile string, args ...string) (string, error) {
	t.Helper()
	var out, errBuf bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errBuf)
	root.SetArgs(append([]string{"--config", configFile}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func signedToken(t *testing.T, uid string) string {
	t.Helper()
	claims := identity.Claims{
		Name: "Rina",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uid,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return tok
}

func TestFavoritesCommands(t *testing.T) {
	conf := writeTestConfig(t)

	_, err := run(t, conf, "favorites", "add", "57", "Chelsea")
	require.NoError(t, err)
	_, err = run(t, conf, "favorites", "add", "42", "Arsenal", "--logo", "url1")
	require.NoError(t, err)

	out, err := run(t, conf, "favorites", "list")
	require.NoError(t, err)
	var teams []jadwalbola.FavoriteTeam
	require.NoError(t, json.Unmarshal([]byte(out), &teams))
	require.Len(t, teams, 2)
	assert.Equal(t, "Arsenal", teams[0].TeamName)
	assert.Equal(t, "url1", teams[0].LogoURL)

	out, err = run(t, conf, "--format", "text", "favorites", "check", "42")
	require.NoError(t, err)
	assert.Equal(t, "team_id=42\tfavorite=true\n", out)

	out, err = run(t, conf, "--format", "text", "favorites", "toggle", "42", "Arsenal")
	require.NoError(t, err)
	assert.Equal(t, "team_id=42\tfavorite=false\n", out)

	_, err = run(t, conf, "favorites", "remove", "--id", "1")
	require.NoError(t, err)

	out, err = run(t, conf, "favorites", "list")
	require.NoError(t, err)
	assert.Equal(t, "[]\n", out)
}

func TestFavoritesAddRejectsEmptyName(t *testing.T) {
	conf := writeTestConfig(t)

	_, err := run(t, conf, "favorites", "add", "42", "")
	assert.ErrorIs(t, err, jadwalbola.ErrInvalidInput)
}

func TestPredictionsCommands(t *testing.T) {
	conf := writeTestConfig(t)

	out, err := run(t, conf, "predictions", "add", "m1", "--home", "2", "--away", "1", "--note", "derby")
	require.NoError(t, err)
	var res output.WriteResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "added", res.Action)
	id := res.ID

	out, err = run(t, conf, "predictions", "get", "m1")
	require.NoError(t, err)
	var p jadwalbola.Prediction
	require.NoError(t, json.Unmarshal([]byte(out), &p))
	assert.Equal(t, 2, p.HomeScore)
	assert.Equal(t, "derby", p.Note)

	_, err = run(t, conf, "predictions", "update", "1", "--home", "0", "--away", "0")
	require.NoError(t, err)

	out, err = run(t, conf, "--format", "text", "predictions", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "match_id=m1\tscore=0-0")

	out, err = run(t, conf, "predictions", "save", "m1", "--home", "4", "--away", "4")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, id, res.ID)

	_, err = run(t, conf, "predictions", "delete", "1")
	require.NoError(t, err)

	out, err = run(t, conf, "predictions", "get", "m1")
	require.NoError(t, err)
	assert.Equal(t, "null\n", out)
}

func TestPredictionsRejectNegativeScore(t *testing.T) {
	conf := writeTestConfig(t)

	_, err := run(t, conf, "predictions", "add", "m1", "--home", "-1")
	assert.ErrorIs(t, err, jadwalbola.ErrInvalidInput)

	_, err = run(t, conf, "predictions", "delete", "abc")
	assert.Error(t, err)
}

func TestSessionCheckCommand(t *testing.T) {
	conf := writeTestConfig(t)

	out, err := run(t, conf, "--format", "text", "session", "check", "--route", "/(tabs)/home")
	require.NoError(t, err)
	assert.Equal(t, "route=/(tabs)/home\tstate=unauthenticated\tdecision=redirect-to-login\ttarget=/auth/login\n", out)

	out, err = run(t, conf, "--format", "text", "session", "check", "--route", "/auth/login", "--token", signedToken(t, "u1"))
	require.NoError(t, err)
	assert.Equal(t, "route=/auth/login\tstate=authenticated\tdecision=redirect-to-home\ttarget=/(tabs)/home\n", out)

	_, err = run(t, conf, "session", "check", "--token", "garbage")
	assert.ErrorIs(t, err, identity.ErrInvalidToken)
}

func TestWatch(t *testing.T) {
	conf := writeTestConfig(t)
	require.NoError(t, loadConfig(conf))

	var out, errBuf bytes.Buffer
	formatter := output.NewFormatterWithWriters(output.FormatText, &out, &errBuf)
	s := newWatchSession(formatter)

	input := strings.Join([]string{
		"# app start",
		"route /(tabs)/home",
		"signout",
		"route /auth/login",
		"signin " + signedToken(t, "u1"),
		"route /(tabs)/home",
		"bogus",
		"signout",
	}, "\n")

	require.NoError(t, watch(context.Background(), strings.NewReader(input), s, formatter))
	assert.Equal(t,
		"action=redirected\ttarget=/auth/login\n"+
			"action=redirected\ttarget=/(tabs)/home\n"+
			"action=redirected\ttarget=/auth/login\n",
		out.String())
	assert.Contains(t, errBuf.String(), `unknown command "bogus"`)
}

func TestWatchFollowsRedirects(t *testing.T) {
	conf := writeTestConfig(t)
	require.NoError(t, loadConfig(conf))

	var out, errBuf bytes.Buffer
	formatter := output.NewFormatterWithWriters(output.FormatText, &out, &errBuf)
	s := newWatchSession(formatter)

	// No route lines after the first: each redirect must be followed for the
	// next transition to see the right group.
	input := strings.Join([]string{
		"route /(tabs)/home",
		"signout",
		"signin " + signedToken(t, "u1"),
		"signout",
	}, "\n")

	require.NoError(t, watch(context.Background(), strings.NewReader(input), s, formatter))
	assert.Equal(t,
		"action=redirected\ttarget=/auth/login\n"+
			"action=redirected\ttarget=/(tabs)/home\n"+
			"action=redirected\ttarget=/auth/login\n",
		out.String())
	assert.Empty(t, errBuf.String())
	assert.Equal(t, "unauthenticated", s.State())
}

func TestApplyWatchLineErrors(t *testing.T) {
	conf := writeTestConfig(t)
	require.NoError(t, loadConfig(conf))
	s := newSession(nil)

	assert.NoError(t, applyWatchLine(s, "   "))
	assert.Error(t, applyWatchLine(s, "route"))
	assert.ErrorIs(t, applyWatchLine(s, "signin nope"), identity.ErrInvalidToken)
	assert.ErrorIs(t, applyWatchLine(s, "refresh nope"), identity.ErrInvalidToken)
	assert.Equal(t, "pending", s.State())
}

func TestInitConfig(t *testing.T) {
	for _, name := range []string{"config.yaml", "config.toml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)

			_, err := run(t, path, "init-config")
			require.NoError(t, err)

			require.NoError(t, loadConfig(path))
			assert.Equal(t, "./jadwalbola.db", cfg.Database.Path)
			assert.Equal(t, "/auth/login", cfg.Routes.Login)

			_, err = run(t, path, "init-config")
			assert.Error(t, err)
		})
	}
}
