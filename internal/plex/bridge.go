package plex

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/wtx/internal/repositories"
	"github.com/desertthunder/wtx/internal/services"
	"github.com/desertthunder/wtx/internal/shared"
	"github.com/desertthunder/wtx/internal/state"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// DefaultPollInterval is how often the pin is checked.
const DefaultPollInterval = time.Second

// State is a step of the login flow.
type State int

const (
	Idle State = iota
	PopupOpened
	PinRequested
	Polling
	Completed
	Cancelled
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case PopupOpened:
		return "popup_opened"
	case PinRequested:
		return "pin_requested"
	case Polling:
		return "polling"
	case Completed:
		return "completed"
	case Cancelled:
		return "cancelled"
	case Failed:
		return "failed"
	default:
		return ""
	}
}

// Terminal reports whether the flow has ended.
func (s State) Terminal() bool { return s == Completed || s == Cancelled || s == Failed }

// Exchanger trades a plex.tv token for a backend session.
type Exchanger interface {
	LoginPlex(ctx context.Context, plexToken string) error
}

// Bridge runs the plex.tv PIN login: open a window, request a pin, point
// the window at the approval page and poll until the pin carries a token.
type Bridge struct {
	storage    repositories.Storage
	exchanger  Exchanger
	opener     WindowOpener
	httpClient *http.Client
	plexURL    string
	device     services.PlexDevice
	interval   time.Duration
	logger     *log.Logger

	state  *state.Store[State]
	client *services.PlexClient
	window Window
}

// Option configures a [Bridge].
type Option func(*Bridge)

// WithOpener sets how the approval window is obtained.
func WithOpener(o WindowOpener) Option { return func(b *Bridge) { b.opener = o } }

// WithPlexURL points the pin endpoints somewhere other than plex.tv.
func WithPlexURL(u string) Option { return func(b *Bridge) { b.plexURL = u } }

// WithHTTPClient sets the client used for plex.tv.
func WithHTTPClient(c *http.Client) Option { return func(b *Bridge) { b.httpClient = c } }

// WithDevice sets the device description sent to plex.tv.
func WithDevice(d services.PlexDevice) Option { return func(b *Bridge) { b.device = d } }

// WithPollInterval sets the pause between pin checks.
func WithPollInterval(d time.Duration) Option {
	return func(b *Bridge) {
		if d > 0 {
			b.interval = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option { return func(b *Bridge) { b.logger = l } }

// NewBridge returns an idle bridge. The device id is kept in storage.
func NewBridge(storage repositories.Storage, exchanger Exchanger, opts ...Option) *Bridge {
	b := &Bridge{
		storage:   storage,
		exchanger: exchanger,
		opener:    BrowserOpener{},
		device:    services.PlexDeviceFromConfig(shared.DefaultConfig().Plex),
		interval:  DefaultPollInterval,
		logger:    shared.DiscardLogger(),
		state:     state.New(Idle),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// State returns the current step.
func (b *Bridge) State() State { return b.state.Get() }

// Subscribe calls fn with the state now and after every transition.
func (b *Bridge) Subscribe(fn func(State)) (unsubscribe func()) { return b.state.Subscribe(fn) }

// ClientID returns the stored device id, creating and storing one if needed.
func (b *Bridge) ClientID() string {
	if id, ok, err := b.storage.Get(repositories.KeyPlexClientID); err == nil && ok && id != "" {
		return id
	} else if err != nil {
		b.logger.Warn("failed to read plex client id", "error", err)
	}

	id := uuid.NewString()
	if err := b.storage.Set(repositories.KeyPlexClientID, id); err != nil {
		b.logger.Warn("failed to store plex client id", "error", err)
	}
	return id
}

func (b *Bridge) transition(from []State, to State) error {
	var bad State
	ok := false
	b.state.Update(func(cur State) State {
		for _, f := range from {
			if cur == f {
				ok = true
				return to
			}
		}
		bad = cur
		return cur
	})
	if !ok {
		return fmt.Errorf("%w: %s -> %s", shared.ErrBridgeState, bad, to)
	}
	b.logger.Debug("plex login", "state", to)
	return nil
}

func (b *Bridge) fail(to State) {
	b.state.Set(to)
	b.logger.Debug("plex login", "state", to)
}

// Prepare opens the approval window. A failure to get one is reported
// straight away and leaves the bridge idle. A finished bridge can be
// prepared again.
func (b *Bridge) Prepare() error {
	if s := b.State(); s != Idle && !s.Terminal() {
		return fmt.Errorf("%w: prepare while %s", shared.ErrBridgeState, s)
	}

	cid := b.ClientID()
	win, err := b.opener.Open()
	if err == nil && win == nil {
		err = errors.New("no window")
	}
	if err != nil {
		b.state.Set(Idle)
		b.logger.Error("failed to prepare plex popup", "error", err)
		return fmt.Errorf("%w: %w", shared.ErrPopupFailed, err)
	}

	b.client = services.NewPlexClient(b.plexURL, cid, b.device, b.httpClient)
	b.window = win
	return b.transition([]State{Idle, Completed, Cancelled, Failed}, PopupOpened)
}

// RequestPin asks plex.tv for a pin and sends the window to its approval page.
func (b *Bridge) RequestPin(ctx context.Context) (*services.PlexPin, error) {
	if s := b.State(); s != PopupOpened {
		return nil, fmt.Errorf("%w: request pin while %s", shared.ErrBridgeState, s)
	}

	pin, err := b.client.CreatePin(ctx)
	if err != nil {
		b.logger.Error("failed to get plex pin", "error", err)
		b.closeWindow()
		b.fail(Failed)
		return nil, err
	}

	if err := b.window.Navigate(b.client.AuthURL(pin.Code)); err != nil {
		b.logger.Error("failed to open plex approval page", "error", err)
		b.closeWindow()
		b.fail(Failed)
		return nil, fmt.Errorf("%w: %w", shared.ErrPopupFailed, err)
	}

	if err := b.transition([]State{PopupOpened}, PinRequested); err != nil {
		return nil, err
	}
	return &services.PlexPin{ID: pin.ID, Code: pin.Code}, nil
}

// Poll checks the pin once per interval, the first check one interval after
// the call, until it carries a token, the window is closed, a check fails or
// ctx ends. There is no attempt limit.
func (b *Bridge) Poll(ctx context.Context, pin *services.PlexPin) (string, error) {
	if err := b.transition([]State{PinRequested}, Polling); err != nil {
		return "", err
	}

	limiter := rate.NewLimiter(rate.Every(b.interval), 1)
	limiter.Allow()

	for attempt := 1; ; attempt++ {
		if err := limiter.Wait(ctx); err != nil {
			// Wait gives up early when the deadline falls before the next
			// check; the flow still ends with the context.
			<-ctx.Done()
			b.closeWindow()
			b.fail(Cancelled)
			return "", ctx.Err()
		}

		b.logger.Debug("checking plex pin", "pin", pin.ID, "attempt", attempt)
		checked, err := b.client.CheckPin(ctx, pin)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				b.closeWindow()
				b.fail(Cancelled)
				return "", ctxErr
			}
			b.logger.Error("plex pin poll failed", "error", err)
			b.fail(Failed)
			return "", fmt.Errorf("%w: %w", shared.ErrPinPollFailed, err)
		}

		switch {
		case checked.AuthToken != "":
			b.closeWindow()
			b.fail(Completed)
			return checked.AuthToken, nil
		case b.window.Closed():
			b.fail(Cancelled)
			return "", shared.ErrPopupClosed
		}
	}
}

// Cancel closes the window, which ends a running poll at its next check.
func (b *Bridge) Cancel() {
	b.closeWindow()
}

func (b *Bridge) closeWindow() {
	if b.window == nil {
		return
	}
	if err := b.window.Close(); err != nil {
		b.logger.Warn("failed to close plex window", "error", err)
	}
}

// Login runs the whole flow and trades the plex.tv token for a backend
// session.
func (b *Bridge) Login(ctx context.Context) error {
	if err := b.Prepare(); err != nil {
		return err
	}
	pin, err := b.RequestPin(ctx)
	if err != nil {
		return err
	}
	token, err := b.Poll(ctx, pin)
	if err != nil {
		return err
	}
	if err := b.exchanger.LoginPlex(ctx, token); err != nil {
		b.logger.Error("backend rejected plex token", "error", err)
		return err
	}
	b.logger.Info("logged in with plex")
	return nil
}

// IsCancelled reports whether err ended the flow because the user gave up.
func IsCancelled(err error) bool {
	return errors.Is(err, shared.ErrPopupClosed) || errors.Is(err, context.Canceled)
}
