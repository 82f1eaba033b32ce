package formatter

import (
	"bytes"
	"fmt"
	"slices"

	"github.com/desertthunder/wtx/internal/models"
)

// StatsToText renders aggregate statistics for the terminal.
func StatsToText(s models.Stats, settings *models.UserSettings) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Entries: %d\n", s.Total))
	for _, status := range models.AllStatuses {
		if n := s.ByStatus[status]; n > 0 {
			buf.WriteString(fmt.Sprintf("  %-9s %d\n", status, n))
		}
	}

	kinds := make([]string, 0, len(s.ByKind))
	for k := range s.ByKind {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	for _, k := range kinds {
		buf.WriteString(fmt.Sprintf("  %-9s %d\n", k, s.ByKind[k]))
	}

	buf.WriteString(fmt.Sprintf("Rated: %d", s.Rated))
	if r := FormatRating(s.AverageRating, settings); r != "" {
		buf.WriteString(fmt.Sprintf(" (average %s)", r))
	}
	buf.WriteString("\n")
	buf.WriteString(fmt.Sprintf("Pinned: %d\n", s.Pinned))
	buf.WriteString(fmt.Sprintf("Activity: %d\n", s.Activities))

	return buf.Bytes()
}
