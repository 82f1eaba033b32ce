package shared

import (
	"os"
	"strings"
	"testing"
)

func AssertContains(t *testing.T, path, want string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	if !strings.Contains(string(data), want) {
		t.Errorf("expected %s to contain %q, got %q", path, want, string(data))
	}
}
