package notify

import (
	"bytes"
	"strconv"
	"testing"
	"time"

	"github.com/desertthunder/wtx/internal/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scheduled struct {
	delay time.Duration
	fn    func()
}

// fakeTimers records scheduled removals so tests can fire them by hand.
type fakeTimers struct{ pending []scheduled }

func (f *fakeTimers) after(d time.Duration, fn func()) {
	f.pending = append(f.pending, scheduled{d, fn})
}

func (f *fakeTimers) fireAll() {
	p := f.pending
	f.pending = nil
	for _, s := range p {
		s.fn()
	}
}

func newTestCenter(t *testing.T) (*Center, *fakeTimers, *bytes.Buffer) {
	t.Helper()
	timers := &fakeTimers{}
	logs := &bytes.Buffer{}
	n := 0
	c := NewCenter(
		WithAfterFunc(timers.after),
		WithLogger(shared.NewLogger(logs)),
		WithIDGenerator(func() string { n++; return "n" + strconv.Itoa(n) }),
	)
	return c, timers, logs
}

func TestCenter(t *testing.T) {
	t.Run("Notify creates with generated id", func(t *testing.T) {
		c, _, _ := newTestCenter(t)
		id := c.Notify(Notification{Text: "Added!", Kind: KindSuccess})

		assert.Equal(t, "n1", id)
		require.Len(t, c.List(), 1)
		assert.Equal(t, "Added!", c.List()[0].Text)
	})

	t.Run("non-loading notifications expire after the default delay", func(t *testing.T) {
		c, timers, _ := newTestCenter(t)
		c.Notify(Notification{Text: "Saved!", Kind: KindSuccess})

		require.Len(t, timers.pending, 1)
		assert.Equal(t, DefaultDelay, timers.pending[0].delay)

		timers.fireAll()
		assert.Empty(t, c.List())
	})

	t.Run("custom time overrides the delay", func(t *testing.T) {
		c, timers, _ := newTestCenter(t)
		c.Notify(Notification{Text: "x", Kind: KindError, Time: time.Second})
		require.Len(t, timers.pending, 1)
		assert.Equal(t, time.Second, timers.pending[0].delay)
	})

	t.Run("loading notifications do not expire", func(t *testing.T) {
		c, timers, _ := newTestCenter(t)
		c.Notify(Notification{Text: "Saving", Kind: KindLoading})
		assert.Empty(t, timers.pending)
		assert.Len(t, c.List(), 1)
	})

	t.Run("loading to success transitions a single notification", func(t *testing.T) {
		c, timers, _ := newTestCenter(t)
		id := c.Notify(Notification{Text: "Saving", Kind: KindLoading})
		got := c.Notify(Notification{ID: id, Text: "Saved", Kind: KindSuccess})

		assert.Equal(t, id, got)
		list := c.List()
		require.Len(t, list, 1)
		assert.Equal(t, Notification{ID: id, Text: "Saved", Kind: KindSuccess}, list[0])

		require.Len(t, timers.pending, 1)
		timers.fireAll()
		assert.Empty(t, c.List())
	})

	t.Run("updating an unknown id logs and creates nothing", func(t *testing.T) {
		c, _, logs := newTestCenter(t)
		c.Notify(Notification{Text: "other", Kind: KindLoading})
		c.Notify(Notification{ID: "ghost", Text: "Saved", Kind: KindSuccess})

		require.Len(t, c.List(), 1)
		assert.Equal(t, "other", c.List()[0].Text)
		assert.Contains(t, logs.String(), "doesn't exist")
	})

	t.Run("UnNotify on an unknown id is a no-op", func(t *testing.T) {
		c, _, _ := newTestCenter(t)
		c.Notify(Notification{Text: "keep", Kind: KindLoading})

		changes := 0
		unsub := c.Subscribe(func([]Notification) { changes++ })
		defer unsub()

		c.UnNotify("missing")
		assert.Equal(t, 1, changes, "only the initial subscribe call")
		assert.Len(t, c.List(), 1)
	})

	t.Run("UnNotify removes a loading notification", func(t *testing.T) {
		c, _, _ := newTestCenter(t)
		id := c.Notify(Notification{Text: "Changing Password", Kind: KindLoading})
		c.UnNotify(id)
		assert.Empty(t, c.List())
	})

	t.Run("ids are unique across live notifications", func(t *testing.T) {
		c := NewCenter(WithAfterFunc(func(time.Duration, func()) {}))
		seen := map[string]bool{}
		for range 50 {
			id := c.Notify(Notification{Text: "x", Kind: KindLoading})
			assert.False(t, seen[id])
			seen[id] = true
		}
		assert.Len(t, c.List(), 50)
	})

	t.Run("List returns a copy", func(t *testing.T) {
		c, _, _ := newTestCenter(t)
		c.Notify(Notification{Text: "a", Kind: KindLoading})
		l := c.List()
		l[0].Text = "mutated"
		assert.Equal(t, "a", c.List()[0].Text)
	})

	t.Run("Clear", func(t *testing.T) {
		c, _, _ := newTestCenter(t)
		c.Notify(Notification{Text: "a", Kind: KindLoading})
		c.Clear()
		assert.Empty(t, c.List())
	})

	t.Run("real timer removes after delay", func(t *testing.T) {
		c := NewCenter(WithDelay(10 * time.Millisecond))
		c.Notify(Notification{Text: "gone soon", Kind: KindSuccess})
		assert.Eventually(t, func() bool { return len(c.List()) == 0 }, time.Second, 5*time.Millisecond)
	})
}
