package jadwalbola

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/matthewjhunter/jadwalbola/internal/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sessionSecret = []byte("session-secret")

func idToken(t *testing.T, uid string) string {
	t.Helper()
	claims := identity.Claims{
		Name: "Sari",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uid,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(sessionSecret)
	require.NoError(t, err)
	return tok
}

func TestSessionRedirects(t *testing.T) {
	var routes []string
	s := NewSession(SessionConfig{TokenSecret: sessionSecret}, func(r string) { routes = append(routes, r) })

	// pending: nothing happens
	assert.Equal(t, Stay, s.Navigate("/(tabs)/home"))
	assert.Equal(t, "pending", s.State())

	assert.Equal(t, RedirectToLogin, s.SignOut())
	assert.Equal(t, Stay, s.Navigate("/auth/login"))

	u, d, err := s.SignIn(idToken(t, "u1"))
	require.NoError(t, err)
	assert.Equal(t, "u1", u.UID)
	assert.Equal(t, RedirectToHome, d)
	assert.Equal(t, Stay, s.Navigate("/(tabs)/home"))
	assert.Equal(t, "authenticated", s.State())
	assert.Equal(t, u, s.User())

	assert.Equal(t, []string{"/auth/login", "/(tabs)/home"}, routes)
}

func TestSessionCustomRoutes(t *testing.T) {
	var routes []string
	s := NewSession(SessionConfig{
		TokenSecret: sessionSecret,
		LoginRoute:  "/auth/welcome",
		HomeRoute:   "/(tabs)/matches",
	}, func(r string) { routes = append(routes, r) })

	s.Navigate("/(tabs)/profile")
	s.SignOut()
	assert.Equal(t, []string{"/auth/welcome"}, routes)
}

func TestSessionInvalidTokenKeepsState(t *testing.T) {
	s := NewSession(SessionConfig{TokenSecret: sessionSecret}, nil)

	_, d, err := s.SignIn("garbage")
	assert.ErrorIs(t, err, identity.ErrInvalidToken)
	assert.Equal(t, Stay, d)
	assert.Equal(t, "pending", s.State())

	_, _, err = s.SignIn(idToken(t, "u1"))
	require.NoError(t, err)

	_, _, err = s.Refresh("garbage")
	assert.Error(t, err)
	assert.Equal(t, "authenticated", s.State())
}

func TestSessionRefreshDoesNotRedirectTwice(t *testing.T) {
	var routes []string
	s := NewSession(SessionConfig{TokenSecret: sessionSecret}, func(r string) { routes = append(routes, r) })

	s.Navigate("/auth/login")
	_, _, err := s.SignIn(idToken(t, "u1"))
	require.NoError(t, err)
	_, d, err := s.Refresh(idToken(t, "u1"))
	require.NoError(t, err)
	assert.Equal(t, Stay, d)
	assert.Equal(t, []string{"/(tabs)/home"}, routes)
}
