package main

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/wtx/internal/notify"
	"github.com/desertthunder/wtx/internal/preferences"
)

// palette maps each notification kind to a foreground colour per theme.
var palette = map[preferences.Theme]map[notify.Kind]lipgloss.Color{
	preferences.ThemeLight: {
		notify.KindLoading: lipgloss.Color("#5a5a5a"),
		notify.KindSuccess: lipgloss.Color("#1a7f37"),
		notify.KindError:   lipgloss.Color("#cf222e"),
	},
	preferences.ThemeDark: {
		notify.KindLoading: lipgloss.Color("#a0a0a0"),
		notify.KindSuccess: lipgloss.Color("#3fb950"),
		notify.KindError:   lipgloss.Color("#f85149"),
	},
}

var icons = map[notify.Kind]string{
	notify.KindLoading: "…",
	notify.KindSuccess: "✓",
	notify.KindError:   "✗",
}

// notePrinter writes a line for every notification that appears or changes.
type notePrinter struct {
	mu       sync.Mutex
	w        io.Writer
	renderer *lipgloss.Renderer
	styles   map[notify.Kind]lipgloss.Style
	seen     map[string]notify.Notification
}

func newNotePrinter(w io.Writer, theme preferences.Theme) *notePrinter {
	p := &notePrinter{
		w:        w,
		renderer: lipgloss.NewRenderer(w),
		seen:     make(map[string]notify.Notification),
	}
	p.setTheme(theme)
	return p
}

func (p *notePrinter) setTheme(theme preferences.Theme) {
	colors, ok := palette[theme]
	if !ok {
		colors = palette[preferences.ThemeLight]
	}

	styles := make(map[notify.Kind]lipgloss.Style, len(colors))
	for kind, c := range colors {
		s := p.renderer.NewStyle().Foreground(c)
		if kind == notify.KindError {
			s = s.Bold(true)
		}
		styles[kind] = s
	}

	p.mu.Lock()
	p.styles = styles
	p.mu.Unlock()
}

func (p *notePrinter) print(list []notify.Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, n := range list {
		if prev, ok := p.seen[n.ID]; ok && prev.Text == n.Text && prev.Kind == n.Kind {
			continue
		}
		p.seen[n.ID] = n
		fmt.Fprintln(p.w, p.render(n))
	}
}

func (p *notePrinter) render(n notify.Notification) string {
	line := icons[n.Kind] + " " + n.Text
	if s, ok := p.styles[n.Kind]; ok {
		return s.Render(line)
	}
	return line
}
