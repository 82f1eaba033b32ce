package plex

import (
	"fmt"
	"io"
	"sync/atomic"

	"github.com/desertthunder/wtx/internal/shared"
)

// Window is the page the user approves the login in.
type Window interface {
	// Navigate points the window at url.
	Navigate(url string) error
	// Closed reports whether the user closed the window.
	Closed() bool
	Close() error
}

// WindowOpener obtains a [Window].
type WindowOpener interface {
	Open() (Window, error)
}

// OpenerFunc adapts a function to [WindowOpener].
type OpenerFunc func() (Window, error)

func (f OpenerFunc) Open() (Window, error) { return f() }

// BrowserOpener opens the approval page in the system browser. When the
// browser can't be started the URL is written to Fallback instead.
//
// Browser tabs can't be watched, so its windows only report closed after
// [Window.Close] has been called, e.g. when the user gives up at the prompt.
type BrowserOpener struct {
	Fallback io.Writer
	// open defaults to [shared.OpenBrowser].
	open func(string) error
}

func (o BrowserOpener) Open() (Window, error) {
	open := o.open
	if open == nil {
		open = shared.OpenBrowser
	}
	fallback := o.Fallback
	if fallback == nil {
		fallback = io.Discard
	}
	return &browserWindow{open: open, fallback: fallback}, nil
}

type browserWindow struct {
	open     func(string) error
	fallback io.Writer
	closed   atomic.Bool
}

func (w *browserWindow) Navigate(url string) error {
	if err := w.open(url); err != nil {
		fmt.Fprintf(w.fallback, "Open this URL to continue with Plex:\n  %s\n", url)
	}
	return nil
}

func (w *browserWindow) Closed() bool { return w.closed.Load() }

func (w *browserWindow) Close() error {
	w.closed.Store(true)
	return nil
}
