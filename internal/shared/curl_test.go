package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestParseCurlCommand(t *testing.T) {
	tt := []struct {
		name        string
		curlCmd     string
		wantURL     string
		wantHeaders map[string]string
		wantErr     bool
	}{
		{
			name:        "single header with single quotes",
			curlCmd:     `curl 'http://127.0.0.1:3080/api/watched' -H 'Authorization: eyJhbGc.token'`,
			wantURL:     "http://127.0.0.1:3080/api/watched",
			wantHeaders: map[string]string{"authorization": "eyJhbGc.token"},
		},
		{
			name:        "double quotes and long flag",
			curlCmd:     `curl "https://watch.example.com/api/features" --header "Accept: application/json"`,
			wantURL:     "https://watch.example.com/api/features",
			wantHeaders: map[string]string{"accept": "application/json"},
		},
		{
			name: "line continuations",
			curlCmd: "curl 'https://watch.example.com/api/watched' \\\n" +
				"  -H 'Accept: */*' \\\n" +
				"  -H 'Authorization: abc'",
			wantURL:     "https://watch.example.com/api/watched",
			wantHeaders: map[string]string{"accept": "*/*", "authorization": "abc"},
		},
		{
			name:    "nothing to parse",
			curlCmd: `echo hello`,
			wantErr: true,
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			req, err := ParseCurlCommand([]byte(tc.curlCmd))
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if req.URL != tc.wantURL {
				t.Errorf("expected url %q, got %q", tc.wantURL, req.URL)
			}
			for k, v := range tc.wantHeaders {
				if got := req.Headers[k]; got != v {
					t.Errorf("header %q: expected %q, got %q", k, v, got)
				}
			}
		})
	}
}

func TestParseCurlFile(t *testing.T) {
	t.Run("successful file parse", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "req.sh")
		content := `curl 'http://localhost:3080/api/watched' -H 'Authorization: tok'`
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}

		req, err := ParseCurlFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if req.Headers["authorization"] != "tok" {
			t.Errorf("expected authorization tok, got %q", req.Headers["authorization"])
		}
	})

	t.Run("file does not exist", func(t *testing.T) {
		if _, err := ParseCurlFile(filepath.Join(t.TempDir(), "missing.sh")); err == nil {
			t.Error("expected error for missing file")
		}
	})
}

func TestCurlRequest(t *testing.T) {
	t.Run("Token", func(t *testing.T) {
		req := &CurlRequest{Headers: map[string]string{"authorization": "Bearer raw-token"}}
		tok, err := req.Token()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if tok != "raw-token" {
			t.Errorf("expected raw-token, got %q", tok)
		}
	})

	t.Run("Token Missing", func(t *testing.T) {
		req := &CurlRequest{Headers: map[string]string{}}
		if _, err := req.Token(); !errors.Is(err, ErrNoCredential) {
			t.Errorf("expected ErrNoCredential, got %v", err)
		}
	})

	t.Run("BaseURL", func(t *testing.T) {
		tt := []struct{ in, want string }{
			{"http://127.0.0.1:3080/api/watched/5", "http://127.0.0.1:3080/api"},
			{"https://watch.example.com/sub/api/features", "https://watch.example.com/sub/api"},
			{"https://watch.example.com/watched", "https://watch.example.com"},
		}
		for _, tc := range tt {
			got, err := (&CurlRequest{URL: tc.in}).BaseURL()
			if err != nil {
				t.Fatalf("unexpected error for %s: %v", tc.in, err)
			}
			if got != tc.want {
				t.Errorf("expected %s, got %s", tc.want, got)
			}
		}
	})
}
