// ABOUTME: Session guard holding the Anonymous/Authenticated state machine
// ABOUTME: State is derived from token presence and changed only by login/logout

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/markalston/dragon-catalog/internal/models"
)

// State is the authentication state of the local user
type State int

const (
	Anonymous State = iota
	Authenticated
)

func (s State) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case Authenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

var (
	// ErrInvalidCredentials is returned by Login when the verifier rejects the pair
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNotAuthenticated is returned by Require while the guard is Anonymous
	ErrNotAuthenticated = errors.New("not logged in")
)

// Guard gates access to the record views. The token's presence, not its
// content, decides the state at construction time.
type Guard struct {
	mu       sync.RWMutex
	state    State
	store    TokenStore
	verifier CredentialVerifier
	issuer   TokenIssuer
}

// NewGuard derives the initial state from the store. A nil verifier accepts
// only the demo pair; a nil issuer signs with the default secret.
func NewGuard(store TokenStore, verifier CredentialVerifier, issuer TokenIssuer) (*Guard, error) {
	if store == nil {
		return nil, errors.New("session: token store is required")
	}
	if verifier == nil {
		verifier = DemoVerifier()
	}
	if issuer == nil {
		issuer = NewJWTIssuer(nil)
	}

	_, present, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load session token: %w", err)
	}

	g := &Guard{
		store:    store,
		verifier: verifier,
		issuer:   issuer,
	}
	if present {
		g.state = Authenticated
	}
	slog.Debug("Session restored", "state", g.state)
	return g, nil
}

// State returns the current state
func (g *Guard) State() State {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state
}

// IsAuthenticated reports whether the state is Authenticated
func (g *Guard) IsAuthenticated() bool {
	return g.State() == Authenticated
}

// Require returns ErrNotAuthenticated unless the state is Authenticated
func (g *Guard) Require() error {
	if !g.IsAuthenticated() {
		return ErrNotAuthenticated
	}
	return nil
}

// Login checks credentials, persists a new token, and moves to Authenticated.
// A rejected pair leaves the state unchanged.
func (g *Guard) Login(username, password string) error {
	if err := g.verifier.Verify(username, password); err != nil {
		slog.Warn("Login rejected", "username", models.SanitizeForLog(username))
		if errors.Is(err, ErrInvalidCredentials) {
			return err
		}
		return fmt.Errorf("verify credentials: %w", err)
	}

	token, err := g.issuer.Issue(username)
	if err != nil {
		return fmt.Errorf("issue session token: %w", err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.store.Save(token); err != nil {
		return fmt.Errorf("persist session token: %w", err)
	}
	g.state = Authenticated
	slog.Info("Logged in", "username", models.SanitizeForLog(username))
	return nil
}

// Logout removes the token and moves to Anonymous
func (g *Guard) Logout() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.store.Remove(); err != nil {
		return fmt.Errorf("remove session token: %w", err)
	}
	g.state = Anonymous
	slog.Info("Logged out")
	return nil
}

// Token returns the persisted token, if any
func (g *Guard) Token() (string, bool, error) {
	return g.store.Load()
}

type guardKey struct{}

// WithGuard returns a context carrying g
func WithGuard(ctx context.Context, g *Guard) context.Context {
	return context.WithValue(ctx, guardKey{}, g)
}

// FromContext returns the guard stored by WithGuard
func FromContext(ctx context.Context) (*Guard, bool) {
	g, ok := ctx.Value(guardKey{}).(*Guard)
	return g, ok && g != nil
}
