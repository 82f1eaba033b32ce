// package testing holds helpers shared by the package tests: writers and
// bodies that fail on demand, a canned [http.RoundTripper], afero file
// assertions and the [FakeBackend] watched-list server.
package testing

import (
	"errors"
	"io"
	"net/http"
	"sync"
	"testing"

	"github.com/spf13/afero"
)

// FWriter fails every write. Used to check that output errors surface from
// commands instead of being dropped.
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter passes through the first maxWrites writes and fails after.
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper answers every request with the same response or error
// and remembers the requests it saw.
type MockRoundTripper struct {
	mu       sync.Mutex
	response *http.Response
	err      error
	requests []*http.Request
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	return m.response, m.err
}

// Requests returns the requests seen so far.
func (m *MockRoundTripper) Requests() []*http.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*http.Request(nil), m.requests...)
}

// FCloser is a response body whose reads always fail.
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func AssertFileExists(t *testing.T, fsys afero.Fs, path string) {
	t.Helper()
	if ok, err := afero.Exists(fsys, path); err != nil || !ok {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, fsys afero.Fs, path string) string {
	t.Helper()
	content, err := afero.ReadFile(fsys, path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
