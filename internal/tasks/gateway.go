package tasks

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/wtx/internal/models"
	"github.com/desertthunder/wtx/internal/notify"
	"github.com/desertthunder/wtx/internal/shared"
	"github.com/desertthunder/wtx/internal/state"
	"github.com/sourcegraph/conc"
)

// Backend is the subset of [services.APIService] the gateway needs.
type Backend interface {
	DoJSON(ctx context.Context, method, path string, in, out any) error
	GetJSON(ctx context.Context, path string, out any) error
}

// Credentials exposes the stored session token.
type Credentials interface {
	Token() (string, error)
}

// Snapshotter persists the last bulk-loaded list for offline export.
type Snapshotter interface {
	Save(list []models.Entry) error
}

// Result is the outcome of one gateway operation.
type Result[T any] struct {
	Value T
	// Notification is the id of the notification that reported the outcome,
	// empty when the operation was silent.
	Notification string
	Err          error
}

// OK reports whether the operation succeeded.
func (r Result[T]) OK() bool { return r.Err == nil }

func succeeded[T any](v T, nid string) Result[T] { return Result[T]{Value: v, Notification: nid} }

func failed[T any](err error, nid string) Result[T] { return Result[T]{Err: err, Notification: nid} }

// Gateway performs remote mutations and reconciles client state with their
// results.
type Gateway struct {
	api       Backend
	cache     *Cache
	notes     *notify.Center
	creds     Credentials
	snapshots Snapshotter
	logger    *log.Logger

	settings *state.Store[*models.UserSettings]
	follows  *state.Store[[]models.Follow]
	features *state.Store[models.ServerFeatures]

	wg conc.WaitGroup
}

// Option configures a [Gateway].
type Option func(*Gateway)

// WithCredentials lets the gateway skip loads without a credential and read
// the account type from the token.
func WithCredentials(c Credentials) Option {
	return func(g *Gateway) { g.creds = c }
}

// WithSnapshots saves every successful bulk load.
func WithSnapshots(s Snapshotter) Option {
	return func(g *Gateway) { g.snapshots = s }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(g *Gateway) { g.logger = l }
}

// NewGateway wires a gateway to its backend, cache and notification center.
func NewGateway(api Backend, cache *Cache, notes *notify.Center, opts ...Option) *Gateway {
	g := &Gateway{
		api:      api,
		cache:    cache,
		notes:    notes,
		logger:   shared.DiscardLogger(),
		settings: state.New[*models.UserSettings](nil),
		follows:  state.New[[]models.Follow](nil),
		features: state.New[models.ServerFeatures](nil),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Cache returns the entry cache.
func (g *Gateway) Cache() *Cache { return g.cache }

// Settings returns a copy of the loaded user settings, or nil.
func (g *Gateway) Settings() *models.UserSettings {
	s := g.settings.Get()
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

// Follows returns the loaded follows.
func (g *Gateway) Follows() []models.Follow {
	return append([]models.Follow(nil), g.follows.Get()...)
}

// Features returns the last fetched server features.
func (g *Gateway) Features() models.ServerFeatures { return g.features.Get() }

// Async runs op in the background. Its result is delivered on the returned
// channel, which callers are free to ignore. Cancelling ctx does not cancel
// an operation that has started.
func Async[T any](g *Gateway, ctx context.Context, op func(context.Context) Result[T]) <-chan Result[T] {
	out := make(chan Result[T], 1)
	ctx = context.WithoutCancel(ctx)
	g.wg.Go(func() {
		defer close(out)
		out <- op(ctx)
	})
	return out
}

// Wait blocks until every operation started with [Async] has finished.
// A panicking operation is logged rather than propagated.
func (g *Gateway) Wait() {
	if r := g.wg.WaitAndRecover(); r != nil {
		g.logger.Error("background operation panicked", "panic", r.Value)
	}
}

// Load fetches the whole watched list and replaces the cache with it. It is
// skipped, without a request, when no credential is stored.
func (g *Gateway) Load(ctx context.Context) Result[[]models.Entry] {
	if g.creds != nil {
		if _, err := g.creds.Token(); err != nil {
			g.logger.Debug("skipping watched list load", "reason", err)
			return failed[[]models.Entry](shared.ErrNoCredential, "")
		}
	}

	var list []models.Entry
	if err := g.api.GetJSON(ctx, "/watched", &list); err != nil {
		g.logger.Error("failed to load watched list", "error", err)
		if authRejected(err) {
			return failed[[]models.Entry](err, "")
		}
		nid := g.notes.Notify(notify.Notification{Text: "Failed To Load Watched List!", Kind: notify.KindError})
		return failed[[]models.Entry](err, nid)
	}

	g.cache.Replace(list)
	g.logger.Info("watched list loaded", "entries", len(list))

	if g.snapshots != nil {
		if err := g.snapshots.Save(list); err != nil {
			g.logger.Warn("failed to save watched snapshot", "error", err)
		}
	}
	return succeeded(g.cache.List(), "")
}

// ClearAll resets every container the gateway owns along with the
// notification center. It is the logout path.
func (g *Gateway) ClearAll() {
	g.cache.Clear()
	g.notes.Clear()
	g.follows.Set(nil)
	g.settings.Set(nil)
}

// loading creates the loading notification for an operation.
func (g *Gateway) loading(text string) string {
	return g.notes.Notify(notify.Notification{Text: text, Kind: notify.KindLoading})
}

func (g *Gateway) resolve(nid, text string) {
	g.notes.Notify(notify.Notification{ID: nid, Text: text, Kind: notify.KindSuccess})
}

// reject turns the loading notification into an error. Missing or rejected
// credentials are reported once by the auth guard, so for those the loading
// notification is only dropped.
func (g *Gateway) reject(nid, text string, err error) {
	if authRejected(err) {
		g.notes.UnNotify(nid)
		return
	}
	g.notes.Notify(notify.Notification{ID: nid, Text: text, Kind: notify.KindError})
}

func authRejected(err error) bool {
	return errors.Is(err, shared.ErrNoCredential) || errors.Is(err, shared.ErrUnauthorized)
}

// preconditionFailed reports an operation that was aborted before any request.
func (g *Gateway) preconditionFailed(text string) string {
	return g.notes.Notify(notify.Notification{Text: text, Kind: notify.KindError})
}
