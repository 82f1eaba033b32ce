package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/desertthunder/wtx/internal/shared"
	"golang.org/x/term"
)

// readSecret prompts for a value without echo when stdin is a terminal and
// falls back to reading one line otherwise.
func (r *Runner) readSecret(label string) (string, error) {
	r.writePlain("%s: ", label)

	if f, ok := r.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		r.writePlain("\n")
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", strings.ToLower(label), err)
		}
		return string(b), nil
	}

	line, err := r.input.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("%w: %s", shared.ErrMissingArgument, strings.ToLower(label))
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// readLine prompts for a visible value.
func (r *Runner) readLine(label string) (string, error) {
	r.writePlain("%s: ", label)
	line, err := r.input.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("%w: %s", shared.ErrMissingArgument, strings.ToLower(label))
	}
	return strings.TrimSpace(line), nil
}
