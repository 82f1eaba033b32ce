package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/wtx/internal/shared"
)

var testDevice = PlexDevice{
	Product:         "Watcharr",
	Platform:        "wtx",
	PlatformVersion: "1.0",
	Device:          "Linux",
	DeviceName:      "My Laptop",
}

func TestPlexClient(t *testing.T) {
	t.Run("CreatePin", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || r.URL.Path != "/pins" || r.URL.Query().Get("strong") != "true" {
				t.Errorf("unexpected request %s %s", r.Method, r.URL)
			}
			if r.Header.Get("X-Plex-Client-Identifier") != "cid-1" {
				t.Errorf("expected client id header, got %q", r.Header.Get("X-Plex-Client-Identifier"))
			}
			if r.Header.Get("X-Plex-Product") != "Watcharr" || r.Header.Get("X-Plex-Version") != "Plex OAuth" {
				t.Errorf("missing plex headers: %v", r.Header)
			}
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(PlexPin{ID: 42, Code: "abcd"})
		}))
		defer server.Close()

		pin, err := NewPlexClient(server.URL, "cid-1", testDevice, nil).CreatePin(context.Background())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if pin.ID != 42 || pin.Code != "abcd" {
			t.Errorf("unexpected pin %+v", pin)
		}
	})

	t.Run("CheckPin Sends Code Header", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/pins/42" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			if r.Header.Get("code") != "abcd" {
				t.Errorf("expected code header, got %q", r.Header.Get("code"))
			}
			json.NewEncoder(w).Encode(PlexPin{ID: 42, Code: "abcd", AuthToken: "tok"})
		}))
		defer server.Close()

		pin, err := NewPlexClient(server.URL, "cid-1", testDevice, nil).CheckPin(context.Background(), &PlexPin{ID: 42, Code: "abcd"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if pin.AuthToken != "tok" {
			t.Errorf("expected token, got %+v", pin)
		}
	})

	t.Run("Error Status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer server.Close()

		_, err := NewPlexClient(server.URL, "cid-1", testDevice, nil).CheckPin(context.Background(), &PlexPin{ID: 1})
		if !errors.Is(err, shared.ErrHTTPStatus) {
			t.Errorf("expected ErrHTTPStatus, got %v", err)
		}
	})

	t.Run("AuthURL", func(t *testing.T) {
		got := NewPlexClient("", "cid-1", testDevice, nil).AuthURL("abcd")

		want := "https://app.plex.tv/auth/#!?clientID=cid-1&code=abcd&context=Watcharr" +
			"&context[device][device]=Linux&context[device][deviceName]=My+Laptop" +
			"&context[device][platform]=wtx&context[device][platformVersion]=1.0" +
			"&context[device][product]=Watcharr"
		if got != want {
			t.Errorf("unexpected auth url\n got: %s\nwant: %s", got, want)
		}
		if !strings.HasPrefix(got, plexAuthURL) {
			t.Error("expected app.plex.tv prefix")
		}
	})
}
