package services

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/wtx/internal/repositories"
	"github.com/desertthunder/wtx/internal/shared"
	"golang.org/x/oauth2"
)

// StorageTokenSource reads the session credential from durable storage on
// every call. It never caches, so a login or logout in another process is
// seen by the next request.
type StorageTokenSource struct {
	Storage repositories.Storage
}

// Token implements [oauth2.TokenSource].
func (s StorageTokenSource) Token() (*oauth2.Token, error) {
	v, ok, err := s.Storage.Get(repositories.KeyToken)
	if err != nil {
		return nil, fmt.Errorf("failed to read credential: %w", err)
	}
	if !ok || v == "" {
		return nil, shared.ErrNoCredential
	}
	return &oauth2.Token{AccessToken: v}, nil
}

var _ oauth2.TokenSource = StorageTokenSource{}

// AuthGuard is an [http.RoundTripper] that attaches the stored credential to
// every backend request.
//
// Without a credential, requests outside the /auth routes are aborted before
// any I/O and OnLoginRequired is called. A 401 response discards the stored
// credential and calls OnLoginRequired; the response is still returned.
type AuthGuard struct {
	Base            http.RoundTripper
	Source          oauth2.TokenSource
	Storage         repositories.Storage
	OnLoginRequired func()
	Logger          *log.Logger
}

// NewAuthGuard guards base with the credential held in storage.
func NewAuthGuard(base http.RoundTripper, storage repositories.Storage, onLoginRequired func(), logger *log.Logger) *AuthGuard {
	if logger == nil {
		logger = shared.DiscardLogger()
	}
	return &AuthGuard{
		Base:            base,
		Source:          StorageTokenSource{Storage: storage},
		Storage:         storage,
		OnLoginRequired: onLoginRequired,
		Logger:          logger,
	}
}

// Client returns an [http.Client] that uses the guard.
func (g *AuthGuard) Client() *http.Client {
	return &http.Client{Transport: g}
}

// RoundTrip implements [http.RoundTripper].
func (g *AuthGuard) RoundTrip(req *http.Request) (*http.Response, error) {
	tok, err := g.Source.Token()
	if err != nil && !isAuthRoute(req) {
		if req.Body != nil {
			req.Body.Close()
		}
		g.Logger.Warn("no credential, login required", "path", req.URL.Path, "error", err)
		g.loginRequired()
		return nil, err
	}

	out := req.Clone(req.Context())
	if tok != nil {
		// The backend expects the bare token, without a scheme.
		out.Header.Set("Authorization", tok.AccessToken)
	}

	resp, err := g.base().RoundTrip(out)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		g.Logger.Warn("credential rejected, discarding", "path", req.URL.Path)
		if g.Storage != nil {
			if err := g.Storage.Delete(repositories.KeyToken); err != nil {
				g.Logger.Error("failed to discard credential", "error", err)
			}
		}
		g.loginRequired()
	}
	return resp, nil
}

func (g *AuthGuard) base() http.RoundTripper {
	if g.Base == nil {
		return http.DefaultTransport
	}
	return g.Base
}

func (g *AuthGuard) loginRequired() {
	if g.OnLoginRequired != nil {
		g.OnLoginRequired()
	}
}

// isAuthRoute is a substring match: "/authors" counts as an auth route too.
func isAuthRoute(req *http.Request) bool {
	return strings.Contains(req.URL.Path, "/auth")
}
