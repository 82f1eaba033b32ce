package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/wtx/internal/models"
	"github.com/desertthunder/wtx/internal/repositories"
	"github.com/desertthunder/wtx/internal/shared"
	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims are the claims the backend signs into a session token.
type TokenClaims struct {
	UserID   uint            `json:"userId"`
	Username string          `json:"username"`
	Type     models.UserType `json:"type"`
	jwt.RegisteredClaims
}

// Session owns the stored credential: it logs in against the unguarded
// /auth routes, stores the returned token, and clears it on logout.
type Session struct {
	api     *APIService
	storage repositories.Storage
	logger  *log.Logger

	mu       sync.Mutex
	onLogout []func()
}

// NewSession creates a session. api must not be guarded by an [AuthGuard].
func NewSession(api *APIService, storage repositories.Storage, logger *log.Logger) *Session {
	if logger == nil {
		logger = shared.DiscardLogger()
	}
	return &Session{api: api, storage: storage, logger: logger}
}

// OnLogout registers fn to run after the credential is cleared.
func (s *Session) OnLogout(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onLogout = append(s.onLogout, fn)
}

// Providers asks the backend which login methods it offers.
func (s *Session) Providers(ctx context.Context) (*models.AuthProviders, error) {
	var out models.AuthProviders
	if err := s.api.GetJSON(ctx, "/auth/available", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login authenticates with a username and password.
func (s *Session) Login(ctx context.Context, username, password string) error {
	return s.authenticate(ctx, "/auth/", models.LoginRequest{Username: username, Password: password})
}

// LoginJellyfin authenticates with Jellyfin credentials.
func (s *Session) LoginJellyfin(ctx context.Context, username, password string) error {
	return s.authenticate(ctx, "/auth/jellyfin", models.LoginRequest{Username: username, Password: password})
}

// Register creates an account and logs in with it.
func (s *Session) Register(ctx context.Context, username, password string) error {
	return s.authenticate(ctx, "/auth/register", models.LoginRequest{Username: username, Password: password})
}

// LoginPlex exchanges a plex.tv auth token for a session.
func (s *Session) LoginPlex(ctx context.Context, plexToken string) error {
	return s.authenticate(ctx, "/auth/plex", models.PlexLoginRequest{AuthToken: plexToken})
}

func (s *Session) authenticate(ctx context.Context, path string, body any) error {
	var resp models.AuthResponse
	if err := s.api.DoJSON(ctx, http.MethodPost, path, body, &resp); err != nil {
		s.logger.Error("login failed", "path", path, "error", err)
		if msg := ErrorMessage(err); msg != "" {
			return fmt.Errorf("%w: %s", shared.ErrAuthFailed, msg)
		}
		return fmt.Errorf("%w: %w", shared.ErrAuthFailed, err)
	}
	if resp.Token == "" {
		return fmt.Errorf("%w: server returned no token", shared.ErrAuthFailed)
	}
	return s.SetToken(resp.Token)
}

// SetToken stores token as the session credential.
func (s *Session) SetToken(token string) error {
	if token == "" {
		return shared.ErrNoCredential
	}
	if err := s.storage.Set(repositories.KeyToken, token); err != nil {
		return fmt.Errorf("failed to store credential: %w", err)
	}
	s.logger.Info("credential stored")
	return nil
}

// Token returns the stored credential.
func (s *Session) Token() (string, error) {
	v, ok, err := s.storage.Get(repositories.KeyToken)
	if err != nil {
		return "", err
	}
	if !ok || v == "" {
		return "", shared.ErrNoCredential
	}
	return v, nil
}

// LoggedIn reports whether a credential is stored.
func (s *Session) LoggedIn() bool {
	_, err := s.Token()
	return err == nil
}

// Claims decodes the stored token without verifying its signature; the
// backend remains the only judge of validity.
func (s *Session) Claims() (*TokenClaims, error) {
	token, err := s.Token()
	if err != nil {
		return nil, err
	}
	return ParseClaims(token)
}

// ParseClaims decodes token's claims without verifying its signature.
func ParseClaims(token string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}
	return claims, nil
}

// Logout clears the stored credential and runs the logout hooks, which reset
// client state. Hooks run even when clearing storage fails.
func (s *Session) Logout() error {
	err := s.storage.Delete(repositories.KeyToken)
	if err != nil {
		s.logger.Error("failed to clear credential", "error", err)
	}

	s.mu.Lock()
	hooks := append([]func(){}, s.onLogout...)
	s.mu.Unlock()
	for _, fn := range hooks {
		fn()
	}

	if err != nil {
		return errors.Join(shared.ErrNotAuthenticated, err)
	}
	return nil
}
