// Package identity adapts ID tokens from the external identity provider into
// a stream of signed-in users. It verifies and decodes tokens only; sign-in
// itself happens at the provider.
package identity

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// User is the signed-in account as seen by the app.
type User struct {
	UID           string `json:"uid"`
	Email         string `json:"email,omitempty"`
	DisplayName   string `json:"display_name"`
	EmailVerified bool   `json:"email_verified"`
}

// Claims are the ID token claims the app reads.
type Claims struct {
	Email         string `json:"email,omitempty"`
	Name          string `json:"name,omitempty"`
	EmailVerified bool   `json:"email_verified,omitempty"`
	jwt.RegisteredClaims
}

var ErrInvalidToken = errors.New("invalid identity token")

// TokenProvider publishes the current user to subscribers on every sign-in,
// token refresh and sign-out. Until the first of those it is unresolved and
// subscribers receive nothing.
type TokenProvider struct {
	secret []byte
	parser *jwt.Parser
	logger *zap.Logger

	mu       sync.Mutex
	resolved bool
	current  *User
	subs     map[chan *User]struct{}
}

// NewTokenProvider verifies HMAC-signed tokens with secret. A non-empty
// issuer is required to match the token's iss claim.
func NewTokenProvider(secret []byte, issuer string, logger *zap.Logger) *TokenProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
		jwt.WithExpirationRequired(),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	return &TokenProvider{
		secret: secret,
		parser: jwt.NewParser(opts...),
		logger: logger.Named("identity"),
		subs:   make(map[chan *User]struct{}),
	}
}

// Decode verifies token and returns the user it describes.
func (p *TokenProvider) Decode(token string) (*User, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: empty token", ErrInvalidToken)
	}
	if len(p.secret) == 0 {
		return nil, fmt.Errorf("%w: no token secret configured", ErrInvalidToken)
	}

	claims := &Claims{}
	_, err := p.parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return p.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	name := claims.Name
	if name == "" {
		name = "User"
	}
	return &User{
		UID:           claims.Subject,
		Email:         claims.Email,
		DisplayName:   name,
		EmailVerified: claims.EmailVerified,
	}, nil
}

// SignIn publishes the user carried by token. An invalid token changes nothing.
func (p *TokenProvider) SignIn(token string) (*User, error) {
	u, err := p.Decode(token)
	if err != nil {
		p.logger.Warn("rejected identity token", zap.Error(err))
		return nil, err
	}
	p.publish(u)
	p.logger.Info("signed in", zap.String("uid", u.UID))
	return u, nil
}

// Refresh republishes the user for a renewed token.
func (p *TokenProvider) Refresh(token string) (*User, error) {
	return p.SignIn(token)
}

// SignOut publishes nil.
func (p *TokenProvider) SignOut() {
	p.publish(nil)
	p.logger.Info("signed out")
}

// Current returns the latest user and whether the provider has resolved.
func (p *TokenProvider) Current() (*User, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current, p.resolved
}

// Subscribe returns a channel carrying the latest user. A slow reader only
// ever sees the most recent value. The channel is closed when ctx is done.
func (p *TokenProvider) Subscribe(ctx context.Context) <-chan *User {
	ch := make(chan *User, 1)

	p.mu.Lock()
	p.subs[ch] = struct{}{}
	if p.resolved {
		ch <- p.current
	}
	p.mu.Unlock()

	go func() {
		<-ctx.Done()
		p.mu.Lock()
		delete(p.subs, ch)
		close(ch)
		p.mu.Unlock()
	}()
	return ch
}

func (p *TokenProvider) publish(u *User) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.resolved = true
	p.current = u
	for ch := range p.subs {
		select {
		case <-ch:
		default:
		}
		ch <- u
	}
}
