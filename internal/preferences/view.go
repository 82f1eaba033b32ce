package preferences

import (
	"cmp"
	"slices"
	"strings"

	"github.com/desertthunder/wtx/internal/models"
)

// Sort modes understood by [SortEntries]. The second element of a sort
// preference is the direction, "UP" or "DOWN".
const (
	SortDateAdded   = "DATEADDED"
	SortLastChanged = "LASTCHANGED"
	SortRating      = "RATING"
	SortAlpha       = "ALPHA"

	SortUp   = "UP"
	SortDown = "DOWN"
)

// Match reports whether e passes the filters. An empty dimension matches
// everything.
func (f Filters) Match(e models.Entry) bool {
	if len(f.Type) > 0 && !slices.Contains(f.Type, e.Kind()) {
		return false
	}
	if len(f.Status) > 0 && !slices.ContainsFunc(f.Status, func(s string) bool {
		return strings.EqualFold(s, string(e.Status))
	}) {
		return false
	}
	return true
}

// Apply filters list and returns the matching entries in a new slice.
func (f Filters) Apply(list []models.Entry) []models.Entry {
	out := make([]models.Entry, 0, len(list))
	for _, e := range list {
		if f.Match(e) {
			out = append(out, e)
		}
	}
	return out
}

// SortEntries orders list in place by a sort preference. Unknown modes fall
// back to date added.
func SortEntries(list []models.Entry, sort []string) {
	mode, dir := SortDateAdded, SortDown
	if len(sort) > 0 {
		mode = sort[0]
	}
	if len(sort) > 1 {
		dir = sort[1]
	}

	var by func(a, b models.Entry) int
	switch mode {
	case SortLastChanged:
		by = func(a, b models.Entry) int { return a.UpdatedAt.Compare(b.UpdatedAt) }
	case SortRating:
		by = func(a, b models.Entry) int { return cmp.Compare(a.Rating, b.Rating) }
	case SortAlpha:
		by = func(a, b models.Entry) int {
			return cmp.Compare(strings.ToLower(a.Title()), strings.ToLower(b.Title()))
		}
	default:
		by = func(a, b models.Entry) int { return a.CreatedAt.Compare(b.CreatedAt) }
	}

	slices.SortStableFunc(list, func(a, b models.Entry) int {
		if dir == SortDown {
			return by(b, a)
		}
		return by(a, b)
	})
}
