// Package notify implements the notification center: short-lived status
// messages keyed by id, updated in place and removed automatically unless
// they are still loading.
package notify

import (
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/wtx/internal/shared"
	"github.com/desertthunder/wtx/internal/state"
)

// DefaultDelay is how long a non-loading notification stays visible.
const DefaultDelay = 2500 * time.Millisecond

// Kind controls how a notification is presented and whether it expires.
type Kind string

const (
	KindError   Kind = "error"
	KindSuccess Kind = "success"
	KindLoading Kind = "loading"
)

// Notification is one visible status message.
type Notification struct {
	// ID references an existing notification to update it. Leave empty to create one.
	ID   string
	Text string
	Kind Kind
	// Time overrides the auto-removal delay.
	Time time.Duration
}

// Center owns the list of live notifications.
type Center struct {
	list      *state.Store[[]Notification]
	delay     time.Duration
	afterFunc func(time.Duration, func())
	newID     func() string
	logger    *log.Logger
}

// Option configures a [Center].
type Option func(*Center)

// WithDelay sets the default auto-removal delay.
func WithDelay(d time.Duration) Option {
	return func(c *Center) {
		if d > 0 {
			c.delay = d
		}
	}
}

// WithLogger sets the logger used to report caller errors.
func WithLogger(l *log.Logger) Option {
	return func(c *Center) { c.logger = l }
}

// WithAfterFunc replaces the timer used to schedule removals.
func WithAfterFunc(fn func(time.Duration, func())) Option {
	return func(c *Center) { c.afterFunc = fn }
}

// WithIDGenerator replaces the id source.
func WithIDGenerator(fn func() string) Option {
	return func(c *Center) { c.newID = fn }
}

// NewCenter returns an empty notification center.
func NewCenter(opts ...Option) *Center {
	c := &Center{
		list:   state.New[[]Notification](nil),
		delay:  DefaultDelay,
		newID:  shared.GenerateID,
		logger: shared.DiscardLogger(),
		afterFunc: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Notify creates a notification, or updates the text and kind of the one
// with n.ID. Updating an id that is not live is logged and ignored.
//
// Unless the kind is loading, removal is scheduled after n.Time (or the
// default delay). The notification's id is returned.
func (c *Center) Notify(n Notification) string {
	if n.ID == "" {
		n.ID = c.newID()
		c.list.Update(func(list []Notification) []Notification {
			next := slices.Clone(list)
			return append(next, n)
		})
	} else {
		found := false
		c.list.Update(func(list []Notification) []Notification {
			i := slices.IndexFunc(list, func(x Notification) bool { return x.ID == n.ID })
			if i < 0 {
				return list
			}
			found = true
			next := slices.Clone(list)
			next[i].Kind = n.Kind
			next[i].Text = n.Text
			return next
		})
		if !found {
			c.logger.Error("can't update notification that doesn't exist", "id", n.ID, "text", n.Text, "kind", n.Kind)
		}
	}

	if n.Kind != KindLoading {
		d := n.Time
		if d <= 0 {
			d = c.delay
		}
		id := n.ID
		c.afterFunc(d, func() { c.UnNotify(id) })
	}
	return n.ID
}

// UnNotify removes the notification with id. Unknown ids are a no-op.
func (c *Center) UnNotify(id string) {
	if !c.has(id) {
		return
	}
	c.list.Update(func(list []Notification) []Notification {
		return slices.DeleteFunc(slices.Clone(list), func(x Notification) bool { return x.ID == id })
	})
}

// List returns a copy of the live notifications in creation order.
func (c *Center) List() []Notification {
	return slices.Clone(c.list.Get())
}

// Get returns the live notification with id.
func (c *Center) Get(id string) (Notification, bool) {
	for _, n := range c.list.Get() {
		if n.ID == id {
			return n, true
		}
	}
	return Notification{}, false
}

// Subscribe calls fn with the current list and after every change.
func (c *Center) Subscribe(fn func([]Notification)) (unsubscribe func()) {
	return c.list.Subscribe(func(list []Notification) { fn(slices.Clone(list)) })
}

// Clear removes every notification.
func (c *Center) Clear() {
	c.list.Set(nil)
}

func (c *Center) has(id string) bool {
	_, ok := c.Get(id)
	return ok
}
