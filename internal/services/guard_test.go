package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/desertthunder/wtx/internal/repositories"
	"github.com/desertthunder/wtx/internal/shared"
	tu "github.com/desertthunder/wtx/internal/testing"
	"github.com/spf13/afero"
)

func newStorage(t *testing.T) repositories.Storage {
	t.Helper()
	return repositories.NewFileStore(afero.NewMemMapFs(), "/state.json")
}

func TestStorageTokenSource(t *testing.T) {
	st := newStorage(t)
	src := StorageTokenSource{Storage: st}

	t.Run("Missing", func(t *testing.T) {
		if _, err := src.Token(); !errors.Is(err, shared.ErrNoCredential) {
			t.Errorf("expected ErrNoCredential, got %v", err)
		}
	})

	t.Run("Read At Call Time", func(t *testing.T) {
		st.Set(repositories.KeyToken, "one")
		tok, err := src.Token()
		if err != nil || tok.AccessToken != "one" {
			t.Fatalf("expected token 'one', got %v, %v", tok, err)
		}

		st.Set(repositories.KeyToken, "two")
		tok, _ = src.Token()
		if tok.AccessToken != "two" {
			t.Errorf("expected token 'two' after change, got %s", tok.AccessToken)
		}
	})
}

func TestAuthGuard(t *testing.T) {
	setup := func(t *testing.T) (*tu.FakeBackend, repositories.Storage, *APIService, *int) {
		t.Helper()
		backend := tu.NewFakeBackend(t)
		backend.RequireAuth = true
		st := newStorage(t)
		prompts := 0
		guard := NewAuthGuard(nil, st, func() { prompts++ }, nil)
		return backend, st, NewAPIService(backend.URL(), guard.Client()), &prompts
	}

	t.Run("Aborts Without Credential Before Any I/O", func(t *testing.T) {
		backend, _, api, prompts := setup(t)

		err := api.DoJSON(context.Background(), http.MethodGet, "/watched", nil, nil)

		if !errors.Is(err, shared.ErrNoCredential) {
			t.Errorf("expected ErrNoCredential, got %v", err)
		}
		if n := len(backend.Calls()); n != 0 {
			t.Errorf("expected no network calls, got %d", n)
		}
		if *prompts != 1 {
			t.Errorf("expected one login prompt, got %d", *prompts)
		}
	})

	t.Run("Auth Routes Pass Without Credential", func(t *testing.T) {
		backend, _, api, prompts := setup(t)

		if err := api.DoJSON(context.Background(), http.MethodGet, "/auth/available", nil, nil); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		calls := backend.Calls()
		if len(calls) != 1 {
			t.Fatalf("expected one call, got %d", len(calls))
		}
		if calls[0].Auth != "" {
			t.Errorf("expected no Authorization header, got %q", calls[0].Auth)
		}
		if *prompts != 0 {
			t.Errorf("expected no login prompt, got %d", *prompts)
		}
	})

	t.Run("Sends Raw Token", func(t *testing.T) {
		backend, st, api, _ := setup(t)
		st.Set(repositories.KeyToken, tu.FakeToken)

		if err := api.DoJSON(context.Background(), http.MethodGet, "/watched", nil, nil); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		got := backend.Calls()[0].Auth
		if got != tu.FakeToken {
			t.Errorf("expected raw token %q, got %q", tu.FakeToken, got)
		}
		if strings.HasPrefix(got, "Bearer") {
			t.Error("token must not carry a scheme")
		}
	})

	t.Run("401 Discards Credential", func(t *testing.T) {
		_, st, api, prompts := setup(t)
		st.Set(repositories.KeyToken, "stale")

		err := api.DoJSON(context.Background(), http.MethodGet, "/watched", nil, nil)

		if !errors.Is(err, shared.ErrUnauthorized) {
			t.Errorf("expected ErrUnauthorized, got %v", err)
		}
		if _, ok, _ := st.Get(repositories.KeyToken); ok {
			t.Error("expected credential to be discarded")
		}
		if *prompts != 1 {
			t.Errorf("expected one login prompt, got %d", *prompts)
		}
	})

	t.Run("Does Not Mutate Caller Request", func(t *testing.T) {
		st := newStorage(t)
		st.Set(repositories.KeyToken, "abc")
		var seen string
		guard := NewAuthGuard(roundTripFunc(func(r *http.Request) (*http.Response, error) {
			seen = r.Header.Get("Authorization")
			return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody, Header: http.Header{}}, nil
		}), st, nil, nil)

		req, _ := http.NewRequest(http.MethodGet, "http://example.com/watched", nil)
		resp, err := guard.RoundTrip(req)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		resp.Body.Close()

		if seen != "abc" {
			t.Errorf("expected token on outgoing request, got %q", seen)
		}
		if req.Header.Get("Authorization") != "" {
			t.Error("expected caller's request to be left untouched")
		}
	})
}
