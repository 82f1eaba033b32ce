package tasks

import (
	"slices"

	"github.com/desertthunder/wtx/internal/models"
	"github.com/desertthunder/wtx/internal/state"
)

// Cache is the in-memory mirror of the user's entries.
type Cache struct {
	list *state.Store[[]models.Entry]
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{list: state.New[[]models.Entry](nil)}
}

// List returns a deep copy of the cached entries.
func (c *Cache) List() []models.Entry {
	return cloneList(c.list.Get())
}

// Len returns the number of cached entries.
func (c *Cache) Len() int { return len(c.list.Get()) }

// Replace swaps in list wholesale, as after a bulk load.
func (c *Cache) Replace(list []models.Entry) {
	c.list.Set(cloneList(list))
}

// Clear empties the cache.
func (c *Cache) Clear() { c.list.Set(nil) }

// Subscribe calls fn with a copy of the list now and after every change.
func (c *Cache) Subscribe(fn func([]models.Entry)) (unsubscribe func()) {
	return c.list.Subscribe(func(list []models.Entry) { fn(cloneList(list)) })
}

func (c *Cache) find(pred func(*models.Entry) bool) (models.Entry, bool) {
	list := c.list.Get()
	if i := models.FindEntry(list, pred); i >= 0 {
		return list[i].Clone(), true
	}
	return models.Entry{}, false
}

// FindByKey finds the entry for a natural key.
func (c *Cache) FindByKey(k models.NaturalKey) (models.Entry, bool) {
	return c.find(func(e *models.Entry) bool { return e.Matches(k) })
}

// FindByContent finds the entry for a movie or show.
func (c *Cache) FindByContent(tmdbID int, t models.MediaType) (models.Entry, bool) {
	return c.FindByKey(models.ContentKey(tmdbID, t))
}

// FindByGame finds the entry for a game.
func (c *Cache) FindByGame(igdbID int) (models.Entry, bool) {
	return c.FindByKey(models.GameKey(igdbID))
}

// FindByID finds the entry with a server id.
func (c *Cache) FindByID(id uint) (models.Entry, bool) {
	return c.find(func(e *models.Entry) bool { return e.ID == id })
}

// Append adds e to the end of the list.
func (c *Cache) Append(e models.Entry) {
	c.list.Update(func(list []models.Entry) []models.Entry {
		next := make([]models.Entry, len(list), len(list)+1)
		copy(next, list)
		return append(next, e.Clone())
	})
}

// UpdateByID applies fn to a copy of the entry with id and swaps it in.
// It reports false, leaving the list alone, when id is not cached.
func (c *Cache) UpdateByID(id uint, fn func(*models.Entry)) (models.Entry, bool) {
	var (
		updated models.Entry
		found   bool
	)
	c.list.Update(func(list []models.Entry) []models.Entry {
		i := slices.IndexFunc(list, func(e models.Entry) bool { return e.ID == id })
		if i < 0 {
			return list
		}
		found = true
		next := slices.Clone(list)
		e := next[i].Clone()
		fn(&e)
		next[i] = e
		updated = e.Clone()
		return next
	})
	return updated, found
}

// RemoveByID drops the entry with id. It reports whether one was removed.
func (c *Cache) RemoveByID(id uint) bool {
	removed := false
	c.list.Update(func(list []models.Entry) []models.Entry {
		if !slices.ContainsFunc(list, func(e models.Entry) bool { return e.ID == id }) {
			return list
		}
		removed = true
		return slices.DeleteFunc(slices.Clone(list), func(e models.Entry) bool { return e.ID == id })
	})
	return removed
}

func cloneList(list []models.Entry) []models.Entry {
	if list == nil {
		return nil
	}
	out := make([]models.Entry, len(list))
	for i := range list {
		out[i] = list[i].Clone()
	}
	return out
}
