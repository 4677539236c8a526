// Package session turns authentication state and the current route group
// into navigation decisions.
package session

import (
	"context"
	"strings"
	"sync"

	"github.com/matthewjhunter/jadwalbola/internal/identity"
	"go.uber.org/zap"
)

// State is the authentication state seen by the guard.
type State int

const (
	// Pending: the identity provider has not reported yet. No decisions
	// are made in this state.
	Pending State = iota
	Unauthenticated
	Authenticated
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Unauthenticated:
		return "unauthenticated"
	case Authenticated:
		return "authenticated"
	}
	return "unknown"
}

// StateFor maps an identity callback value to a state.
func StateFor(u *identity.User) State {
	if u == nil {
		return Unauthenticated
	}
	return Authenticated
}

// RouteGroup says whether the current route needs a session.
type RouteGroup int

const (
	GroupProtected RouteGroup = iota
	// GroupAuth holds routes reachable without a session (login, register,
	// forgot-password).
	GroupAuth
)

func (g RouteGroup) String() string {
	if g == GroupAuth {
		return "auth"
	}
	return "protected"
}

// authSegment is the first router segment of every auth-group route.
const authSegment = "auth"

// GroupForSegments classifies router segments, e.g. ["auth", "login"].
func GroupForSegments(segments []string) RouteGroup {
	if len(segments) > 0 && segments[0] == authSegment {
		return GroupAuth
	}
	return GroupProtected
}

// GroupForPath classifies a route path such as "/auth/login".
func GroupForPath(path string) RouteGroup {
	return GroupForSegments(strings.FieldsFunc(path, func(r rune) bool { return r == '/' }))
}

// Decision is the navigation effect of one evaluation.
type Decision int

const (
	Stay Decision = iota
	RedirectToLogin
	RedirectToHome
)

func (d Decision) String() string {
	switch d {
	case RedirectToLogin:
		return "redirect-to-login"
	case RedirectToHome:
		return "redirect-to-home"
	}
	return "stay"
}

// Decide is the guard's pure decision table.
func Decide(state State, group RouteGroup) Decision {
	switch {
	case state == Unauthenticated && group != GroupAuth:
		return RedirectToLogin
	case state == Authenticated && group == GroupAuth:
		return RedirectToHome
	}
	return Stay
}

// Navigator replaces the current route. It is the only navigation primitive
// the guard uses.
type Navigator interface {
	Replace(route string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(route string)

func (f NavigatorFunc) Replace(route string) { f(route) }

// Routes are the redirect targets.
type Routes struct {
	Login string
	Home  string
}

func DefaultRoutes() Routes {
	return Routes{Login: "/auth/login", Home: "/(tabs)/home"}
}

type Option func(*Guard)

func WithRoutes(r Routes) Option { return func(g *Guard) { g.routes = r } }

func WithLogger(l *zap.Logger) Option { return func(g *Guard) { g.logger = l } }

// WithInitialRoute sets the route group in effect before the first SetRoute.
func WithInitialRoute(group RouteGroup) Option { return func(g *Guard) { g.group = group } }

type evaluation struct {
	state State
	group RouteGroup
}

// Guard holds the latest auth state and route group and calls the navigator
// at most once per distinct (state, group) pair.
type Guard struct {
	nav    Navigator
	routes Routes
	logger *zap.Logger

	mu        sync.Mutex
	state     State
	user      *identity.User
	group     RouteGroup
	evaluated bool
	last      evaluation
}

func NewGuard(nav Navigator, opts ...Option) *Guard {
	g := &Guard{
		nav:    nav,
		routes: DefaultRoutes(),
		logger: zap.NewNop(),
		state:  Pending,
		group:  GroupProtected,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = g.logger.Named("session")
	return g
}

// State returns the current authentication state.
func (g *Guard) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// User returns the signed-in user, or nil.
func (g *Guard) User() *identity.User {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.user
}

// SetUser records an identity callback and re-evaluates.
func (g *Guard) SetUser(u *identity.User) Decision {
	g.mu.Lock()
	prev := g.state
	g.user = u
	g.state = StateFor(u)
	if prev != g.state {
		g.logger.Info("auth state changed", zap.Stringer("from", prev), zap.Stringer("to", g.state))
	}
	return g.evaluateLocked()
}

// SetRoute records a route change and re-evaluates.
func (g *Guard) SetRoute(group RouteGroup) Decision {
	g.mu.Lock()
	g.group = group
	return g.evaluateLocked()
}

// evaluateLocked must be called with g.mu held; it releases it before
// calling the navigator, which may synchronously report a route change.
func (g *Guard) evaluateLocked() Decision {
	if g.state == Pending {
		g.mu.Unlock()
		return Stay
	}
	cur := evaluation{state: g.state, group: g.group}
	if g.evaluated && cur == g.last {
		g.mu.Unlock()
		return Stay
	}
	g.evaluated = true
	g.last = cur
	d := Decide(cur.state, cur.group)
	g.mu.Unlock()

	switch d {
	case RedirectToLogin:
		g.logger.Info("redirecting", zap.Stringer("decision", d), zap.String("route", g.routes.Login))
		g.nav.Replace(g.routes.Login)
	case RedirectToHome:
		g.logger.Info("redirecting", zap.Stringer("decision", d), zap.String("route", g.routes.Home))
		g.nav.Replace(g.routes.Home)
	}
	return d
}

// Run feeds the guard from the two input streams until ctx is done or both
// streams are closed.
func (g *Guard) Run(ctx context.Context, users <-chan *identity.User, routes <-chan RouteGroup) error {
	for users != nil || routes != nil {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case u, ok := <-users:
			if !ok {
				users = nil
				continue
			}
			g.SetUser(u)
		case r, ok := <-routes:
			if !ok {
				routes = nil
				continue
			}
			g.SetRoute(r)
		}
	}
	return nil
}
