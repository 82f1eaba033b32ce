// package formatter exports watched entries to various formats (JSON, CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/wtx/internal/models"
	"github.com/desertthunder/wtx/internal/shared"
	"github.com/spf13/afero"
)

// Format is an export format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "md"
	FormatText     Format = "txt"
)

// ParseFormat accepts a format name or its common aliases.
func ParseFormat(v string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "txt", "text":
		return FormatText, nil
	}
	return "", fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidFlag, v)
}

// Export is a watched list as it is written out. Settings, when set, decide
// how ratings are displayed.
type Export struct {
	Entries    []models.Entry       `json:"entries"`
	Settings   *models.UserSettings `json:"-"`
	ExportedAt time.Time            `json:"exportedAt"`
}

// ExportToJSON converts an Export to indented JSON.
func ExportToJSON(export *Export) ([]byte, error) {
	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// ExportToCSV converts an Export to CSV format with columns: ID, Kind, Title, Status, Rating, Progress, Pinned, Tags, Thoughts, Updated
func ExportToCSV(export *Export) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Kind", "Title", "Status", "Rating", "Progress", "Pinned", "Tags", "Thoughts", "Updated"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i := range export.Entries {
		e := &export.Entries[i]
		record := []string{
			strconv.FormatUint(uint64(e.ID), 10),
			e.Kind(),
			e.Title(),
			string(e.Status),
			FormatRating(e.Rating, export.Settings),
			progress(e),
			strconv.FormatBool(e.Pinned),
			tagNames(e),
			e.Thoughts,
			formatTime(e.UpdatedAt),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts an Export to Markdown, one section per status
func ExportToMarkdown(export *Export) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Watched List\n\n")
	buf.WriteString(fmt.Sprintf("**Entries**: %d\n", len(export.Entries)))
	if !export.ExportedAt.IsZero() {
		buf.WriteString(fmt.Sprintf("**Exported**: %s\n", formatTime(export.ExportedAt)))
	}
	buf.WriteString("\n")

	for _, status := range append(slices.Clone(models.AllStatuses), "") {
		var section []*models.Entry
		for i := range export.Entries {
			if export.Entries[i].Status == status {
				section = append(section, &export.Entries[i])
			}
		}
		if len(section) == 0 {
			continue
		}

		title := string(status)
		if title == "" {
			title = "NO STATUS"
		}
		buf.WriteString(fmt.Sprintf("## %s (%d)\n\n", title, len(section)))
		for i, e := range section {
			buf.WriteString(fmt.Sprintf("%d. %s", i+1, e.Title()))
			if k := e.Kind(); k != "" {
				buf.WriteString(fmt.Sprintf(" _(%s)_", k))
			}
			if r := FormatRating(e.Rating, export.Settings); r != "" {
				buf.WriteString(fmt.Sprintf(" [%s]", r))
			}
			if p := progress(e); p != "" {
				buf.WriteString(fmt.Sprintf(" %s", p))
			}
			if e.Pinned {
				buf.WriteString(" 📌")
			}
			buf.WriteString("\n")
			if e.Thoughts != "" {
				buf.WriteString(fmt.Sprintf("   > %s\n", e.Thoughts))
			}
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// ExportToText converts an Export to plain text format
func ExportToText(export *Export) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Entries: %d\n\n", len(export.Entries)))
	for i := range export.Entries {
		e := &export.Entries[i]
		line := fmt.Sprintf("%d. %s", i+1, e.Title())
		if e.Status != "" {
			line += fmt.Sprintf(" - %s", e.Status)
		}
		if r := FormatRating(e.Rating, export.Settings); r != "" {
			line += fmt.Sprintf(" (%s)", r)
		}
		buf.WriteString(line + "\n")
	}

	return buf.Bytes(), nil
}

// Render converts an Export to format.
func Render(export *Export, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return ExportToJSON(export)
	case FormatCSV:
		return ExportToCSV(export)
	case FormatMarkdown:
		return ExportToMarkdown(export)
	case FormatText:
		return ExportToText(export)
	}
	return nil, fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidFlag, format)
}

// WriteExport renders export and writes it to path on fsys.
//
// Defaults to watched.{format} as the filename. Parent directories are created.
func WriteExport(fsys afero.Fs, export *Export, format Format, path string) (string, error) {
	if path == "" {
		path = "watched." + string(format)
	}

	data, err := Render(export, format)
	if err != nil {
		return "", fmt.Errorf("failed to generate %s: %w", format, err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := fsys.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := afero.WriteFile(fsys, path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}

	return path, nil
}

// FormatRating shows a stored rating the way settings ask for, or "" when
// the entry is unrated.
func FormatRating(r float64, settings *models.UserSettings) string {
	if r == 0 {
		return ""
	}
	if settings != nil && settings.RatingSystem != nil && *settings.RatingSystem == models.RatingThumbs {
		thumb, ok := models.ToWhichThumb(r)
		if !ok {
			return ""
		}
		switch thumb {
		case models.ThumbUp:
			return "👍"
		case models.ThumbDown:
			return "👎"
		default:
			return "👊"
		}
	}

	v := strconv.FormatFloat(models.ToShowableRating(r, settings), 'f', -1, 64)
	if settings == nil || settings.RatingSystem == nil {
		return v + "/10"
	}
	switch *settings.RatingSystem {
	case models.RatingOutOf5:
		return v + "/5"
	case models.RatingOutOf100:
		return v + "/100"
	default:
		return v + "/10"
	}
}

func progress(e *models.Entry) string {
	if p, ok := models.LatestWatched(e); ok {
		return p.String()
	}
	return ""
}

func tagNames(e *models.Entry) string {
	names := make([]string, 0, len(e.Tags))
	for _, t := range e.Tags {
		names = append(names, t.Name)
	}
	return strings.Join(names, ";")
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
