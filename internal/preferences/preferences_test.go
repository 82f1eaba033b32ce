package preferences

import (
	"errors"
	"testing"

	"github.com/desertthunder/wtx/internal/repositories"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemStorage(t *testing.T) *repositories.FileStore {
	t.Helper()
	return repositories.NewFileStore(afero.NewMemMapFs(), "/wtx/state.json")
}

func light() bool { return false }
func dark() bool  { return true }

// failingStorage reads from an inner store and refuses every write.
type failingStorage struct {
	repositories.Storage
}

var errWrite = errors.New("disk full")

func (failingStorage) Set(string, string) error { return errWrite }
func (failingStorage) Delete(string) error      { return errWrite }

func TestLoad(t *testing.T) {
	t.Run("defaults when storage is empty", func(t *testing.T) {
		s := New(newMemStorage(t), WithDarkDetector(light))
		s.Load()

		assert.Equal(t, ThemeLight, s.Theme())
		assert.Equal(t, []string{"DATEADDED", "DOWN"}, s.Sort())
		assert.Equal(t, DefaultFilters(), s.Filters())
		assert.Empty(t, s.DetailedViews())
	})

	t.Run("theme falls back to environment signal", func(t *testing.T) {
		s := New(newMemStorage(t), WithDarkDetector(dark))
		s.Load()
		assert.Equal(t, ThemeDark, s.Theme())
	})

	t.Run("stored values win", func(t *testing.T) {
		st := newMemStorage(t)
		require.NoError(t, st.Set(repositories.KeyTheme, "dark"))
		require.NoError(t, st.Set(repositories.KeySort, `["RATING","UP"]`))
		require.NoError(t, st.Set(repositories.KeyFilters, `{"type":["movie"],"status":["FINISHED"]}`))
		require.NoError(t, st.Set(repositories.KeyDetailedView, `{"list":true}`))

		s := New(st, WithDarkDetector(light))
		s.Load()

		assert.Equal(t, ThemeDark, s.Theme())
		assert.Equal(t, []string{"RATING", "UP"}, s.Sort())
		assert.Equal(t, Filters{Type: []string{"movie"}, Status: []string{"FINISHED"}}, s.Filters())
		assert.True(t, s.Detailed("list"))
	})

	t.Run("malformed slot falls back alone", func(t *testing.T) {
		st := newMemStorage(t)
		require.NoError(t, st.Set(repositories.KeySort, `{not json`))
		require.NoError(t, st.Set(repositories.KeyFilters, `{"type":["tv"]}`))

		s := New(st, WithDarkDetector(light))
		s.Load()

		assert.Equal(t, DefaultSort(), s.Sort())
		assert.Equal(t, Filters{Type: []string{"tv"}, Status: []string{}}, s.Filters())
	})
}

func TestWriteThrough(t *testing.T) {
	t.Run("round trips through a fresh store", func(t *testing.T) {
		st := newMemStorage(t)
		s := New(st, WithDarkDetector(light))
		s.Load()

		require.NoError(t, s.SetTheme(ThemeDark))
		require.NoError(t, s.SetSort([]string{"ALPHA", "UP"}))
		require.NoError(t, s.SetFilters(Filters{Status: []string{"HOLD"}}))
		require.NoError(t, s.SetDetailed("grid", true))

		again := New(st, WithDarkDetector(light))
		again.Load()
		assert.Equal(t, ThemeDark, again.Theme())
		assert.Equal(t, []string{"ALPHA", "UP"}, again.Sort())
		assert.Equal(t, Filters{Type: []string{}, Status: []string{"HOLD"}}, again.Filters())
		assert.True(t, again.Detailed("grid"))
	})

	t.Run("empty values remove keys", func(t *testing.T) {
		st := newMemStorage(t)
		s := New(st, WithDarkDetector(dark))
		s.Load()

		require.NoError(t, s.SetTheme(ThemeLight))
		require.NoError(t, s.SetSort([]string{"RATING", "DOWN"}))
		require.NoError(t, s.SetDetailed("grid", true))

		require.NoError(t, s.SetTheme(""))
		require.NoError(t, s.SetSort(nil))
		require.NoError(t, s.SetDetailed("grid", false))

		dump, err := repositories.Dump(st)
		require.NoError(t, err)
		assert.Empty(t, dump)
		assert.Equal(t, ThemeDark, s.Theme())
		assert.Equal(t, DefaultSort(), s.Sort())
		assert.False(t, s.Detailed("grid"))
	})

	t.Run("failed write leaves memory unchanged", func(t *testing.T) {
		s := New(failingStorage{newMemStorage(t)}, WithDarkDetector(light))
		s.Load()

		assert.ErrorIs(t, s.SetTheme(ThemeDark), errWrite)
		assert.ErrorIs(t, s.SetSort([]string{"RATING", "UP"}), errWrite)
		assert.ErrorIs(t, s.SetFilters(Filters{Type: []string{"movie"}}), errWrite)
		assert.ErrorIs(t, s.SetDetailed("grid", true), errWrite)

		assert.Equal(t, ThemeLight, s.Theme())
		assert.Equal(t, DefaultSort(), s.Sort())
		assert.Equal(t, DefaultFilters(), s.Filters())
		assert.False(t, s.Detailed("grid"))
	})

	t.Run("read-only filesystem", func(t *testing.T) {
		base := afero.NewMemMapFs()
		s := New(repositories.NewFileStore(afero.NewReadOnlyFs(base), "/state.json"), WithDarkDetector(light))
		s.Load()

		assert.Error(t, s.SetTheme(ThemeDark))
		assert.Equal(t, ThemeLight, s.Theme())
	})
}

func TestReset(t *testing.T) {
	st := newMemStorage(t)
	s := New(st, WithDarkDetector(light))
	s.Load()

	require.NoError(t, s.SetTheme(ThemeDark))
	require.NoError(t, s.SetSort([]string{"RATING", "UP"}))
	require.NoError(t, s.SetFilters(Filters{Type: []string{"tv"}}))

	require.NoError(t, s.Reset())
	assert.Equal(t, DefaultSort(), s.Sort())
	assert.Equal(t, DefaultFilters(), s.Filters())
	assert.Equal(t, ThemeDark, s.Theme())

	_, ok, err := st.Get(repositories.KeySort)
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = st.Get(repositories.KeyFilters)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSubscribe(t *testing.T) {
	s := New(newMemStorage(t), WithDarkDetector(light))
	s.Load()

	var seen []Theme
	unsub := s.SubscribeTheme(func(th Theme) { seen = append(seen, th) })
	require.NoError(t, s.SetTheme(ThemeDark))
	unsub()
	require.NoError(t, s.SetTheme(ThemeLight))

	assert.Equal(t, []Theme{ThemeLight, ThemeDark}, seen)
}

func TestCopiesAreDetached(t *testing.T) {
	s := New(newMemStorage(t), WithDarkDetector(light))
	s.Load()

	sort := s.Sort()
	sort[0] = "MUTATED"
	assert.Equal(t, DefaultSort(), s.Sort())

	require.NoError(t, s.SetDetailed("a", true))
	views := s.DetailedViews()
	views["b"] = true
	assert.False(t, s.Detailed("b"))
}
