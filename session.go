package jadwalbola

import (
	"github.com/matthewjhunter/jadwalbola/internal/identity"
	"github.com/matthewjhunter/jadwalbola/internal/session"
	"go.uber.org/zap"
)

// User is the signed-in account.
type User = identity.User

// Decision is what the guard did after an auth or route change.
type Decision = session.Decision

const (
	Stay            = session.Stay
	RedirectToLogin = session.RedirectToLogin
	RedirectToHome  = session.RedirectToHome
)

// SessionConfig configures token verification and redirect targets.
type SessionConfig struct {
	TokenSecret []byte
	Issuer      string
	LoginRoute  string // default /auth/login
	HomeRoute   string // default /(tabs)/home
	Logger      *zap.Logger
}

// Session connects the identity adapter to the navigation guard. Until the
// first SignIn, Refresh or SignOut the auth state is pending and no
// redirect happens.
type Session struct {
	provider *identity.TokenProvider
	guard    *session.Guard
}

// NewSession returns a Session that calls navigate with the target route
// whenever the guard redirects.
func NewSession(cfg SessionConfig, navigate func(route string)) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	routes := session.DefaultRoutes()
	if cfg.LoginRoute != "" {
		routes.Login = cfg.LoginRoute
	}
	if cfg.HomeRoute != "" {
		routes.Home = cfg.HomeRoute
	}
	if navigate == nil {
		navigate = func(string) {}
	}
	return &Session{
		provider: identity.NewTokenProvider(cfg.TokenSecret, cfg.Issuer, logger),
		guard: session.NewGuard(session.NavigatorFunc(navigate),
			session.WithRoutes(routes),
			session.WithLogger(logger),
		),
	}
}

// SignIn verifies an ID token and makes its subject the current user. An
// invalid token leaves the session unchanged.
func (s *Session) SignIn(token string) (*User, Decision, error) {
	u, err := s.provider.SignIn(token)
	if err != nil {
		return nil, Stay, err
	}
	return u, s.guard.SetUser(u), nil
}

// Refresh replaces the current token.
func (s *Session) Refresh(token string) (*User, Decision, error) {
	u, err := s.provider.Refresh(token)
	if err != nil {
		return nil, Stay, err
	}
	return u, s.guard.SetUser(u), nil
}

// SignOut clears the current user. Calling it at startup when no stored
// token exists resolves the session as signed out.
func (s *Session) SignOut() Decision {
	s.provider.SignOut()
	return s.guard.SetUser(nil)
}

// Navigate reports that the app is now showing path.
func (s *Session) Navigate(path string) Decision {
	return s.guard.SetRoute(session.GroupForPath(path))
}

// State returns "pending", "unauthenticated" or "authenticated".
func (s *Session) State() string {
	return s.guard.State().String()
}

// User returns the signed-in user, or nil.
func (s *Session) User() *User {
	return s.guard.User()
}
