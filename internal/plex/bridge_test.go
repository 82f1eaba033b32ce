package plex

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/desertthunder/wtx/internal/repositories"
	"github.com/desertthunder/wtx/internal/shared"
	"github.com/gorilla/mux"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePlex serves the two pin endpoints. The pin gains a token once it has
// been checked approveAfter times; approveAfter < 0 never approves.
type fakePlex struct {
	*httptest.Server
	approveAfter int32
	failChecks   atomic.Bool
	checks       atomic.Int32
	clientIDs    sync.Map
}

func newFakePlex(t *testing.T, approveAfter int32) *fakePlex {
	t.Helper()
	p := &fakePlex{approveAfter: approveAfter}
	r := mux.NewRouter()
	r.HandleFunc("/pins", func(w http.ResponseWriter, req *http.Request) {
		p.clientIDs.Store(req.Header.Get("X-Plex-Client-Identifier"), true)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{"id": 7, "code": "abcd"})
	}).Methods(http.MethodPost).Queries("strong", "true")
	r.HandleFunc("/pins/{id}", func(w http.ResponseWriter, req *http.Request) {
		n := p.checks.Add(1)
		if p.failChecks.Load() || req.Header.Get("code") != "abcd" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		body := map[string]any{"id": 7, "code": "abcd"}
		if p.approveAfter >= 0 && n >= p.approveAfter {
			body["authToken"] = "plex-token"
		}
		json.NewEncoder(w).Encode(body)
	}).Methods(http.MethodGet)
	p.Server = httptest.NewServer(r)
	t.Cleanup(p.Close)
	return p
}

type fakeWindow struct {
	mu     sync.Mutex
	urls   []string
	closed atomic.Bool
}

func (w *fakeWindow) Navigate(u string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.urls = append(w.urls, u)
	return nil
}

func (w *fakeWindow) Closed() bool { return w.closed.Load() }

func (w *fakeWindow) Close() error {
	w.closed.Store(true)
	return nil
}

type fakeExchanger struct {
	tokens []string
	err    error
}

func (e *fakeExchanger) LoginPlex(_ context.Context, token string) error {
	e.tokens = append(e.tokens, token)
	return e.err
}

func newTestBridge(t *testing.T, p *fakePlex, win *fakeWindow, ex *fakeExchanger) (*Bridge, repositories.Storage) {
	t.Helper()
	st := repositories.NewFileStore(afero.NewMemMapFs(), "/state.json")
	b := NewBridge(st, ex,
		WithPlexURL(p.URL),
		WithHTTPClient(p.Client()),
		WithPollInterval(time.Millisecond),
		WithOpener(OpenerFunc(func() (Window, error) { return win, nil })),
	)
	return b, st
}

func TestBridge(t *testing.T) {
	ctx := context.Background()

	t.Run("Login completes", func(t *testing.T) {
		p := newFakePlex(t, 3)
		win := &fakeWindow{}
		ex := &fakeExchanger{}
		b, st := newTestBridge(t, p, win, ex)

		var states []State
		b.Subscribe(func(s State) { states = append(states, s) })

		require.NoError(t, b.Login(ctx))
		assert.Equal(t, []string{"plex-token"}, ex.tokens)
		assert.Equal(t, Completed, b.State())
		assert.Equal(t, []State{Idle, PopupOpened, PinRequested, Polling, Completed}, states)
		assert.True(t, win.Closed())
		assert.EqualValues(t, 3, p.checks.Load())

		require.Len(t, win.urls, 1)
		assert.True(t, strings.HasPrefix(win.urls[0], "https://app.plex.tv/auth/#!?clientID="))
		assert.Contains(t, win.urls[0], "&code=abcd&")

		cid, ok, err := st.Get(repositories.KeyPlexClientID)
		require.NoError(t, err)
		require.True(t, ok)
		_, sent := p.clientIDs.Load(cid)
		assert.True(t, sent)
	})

	t.Run("client id is reused", func(t *testing.T) {
		p := newFakePlex(t, 1)
		b, st := newTestBridge(t, p, &fakeWindow{}, &fakeExchanger{})
		require.NoError(t, st.Set(repositories.KeyPlexClientID, "known-cid"))
		assert.Equal(t, "known-cid", b.ClientID())
		assert.Equal(t, "known-cid", b.ClientID())
	})

	t.Run("popup failure leaves the bridge idle", func(t *testing.T) {
		p := newFakePlex(t, 1)
		b, _ := newTestBridge(t, p, &fakeWindow{}, &fakeExchanger{})
		b.opener = OpenerFunc(func() (Window, error) { return nil, errors.New("blocked") })

		err := b.Prepare()
		assert.ErrorIs(t, err, shared.ErrPopupFailed)
		assert.Equal(t, Idle, b.State())
		assert.Zero(t, p.checks.Load())
	})

	t.Run("closed window cancels", func(t *testing.T) {
		p := newFakePlex(t, -1)
		win := &fakeWindow{}
		b, _ := newTestBridge(t, p, win, &fakeExchanger{})

		require.NoError(t, b.Prepare())
		pin, err := b.RequestPin(ctx)
		require.NoError(t, err)

		go func() {
			for p.checks.Load() < 5 {
				time.Sleep(time.Millisecond)
			}
			win.Close()
		}()
		_, err = b.Poll(ctx, pin)
		assert.ErrorIs(t, err, shared.ErrPopupClosed)
		assert.True(t, IsCancelled(err))
		assert.Equal(t, Cancelled, b.State())
	})

	t.Run("check failure fails", func(t *testing.T) {
		p := newFakePlex(t, -1)
		p.failChecks.Store(true)
		ex := &fakeExchanger{}
		b, _ := newTestBridge(t, p, &fakeWindow{}, ex)

		err := b.Login(ctx)
		assert.ErrorIs(t, err, shared.ErrPinPollFailed)
		assert.Equal(t, Failed, b.State())
		assert.Empty(t, ex.tokens)
	})

	t.Run("context cancels", func(t *testing.T) {
		p := newFakePlex(t, -1)
		win := &fakeWindow{}
		b, _ := newTestBridge(t, p, win, &fakeExchanger{})

		cctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
		defer cancel()
		err := b.Login(cctx)
		assert.True(t, IsCancelled(err) || errors.Is(err, context.DeadlineExceeded))
		assert.Equal(t, Cancelled, b.State())
		assert.True(t, win.Closed())
	})

	t.Run("out of order calls", func(t *testing.T) {
		p := newFakePlex(t, 1)
		b, _ := newTestBridge(t, p, &fakeWindow{}, &fakeExchanger{})

		_, err := b.RequestPin(ctx)
		assert.ErrorIs(t, err, shared.ErrBridgeState)
		require.NoError(t, b.Prepare())
		assert.ErrorIs(t, b.Prepare(), shared.ErrBridgeState)
	})

	t.Run("restart after a finished flow", func(t *testing.T) {
		p := newFakePlex(t, 1)
		ex := &fakeExchanger{}
		b, _ := newTestBridge(t, p, &fakeWindow{}, ex)
		require.NoError(t, b.Login(ctx))
		b.opener = OpenerFunc(func() (Window, error) { return &fakeWindow{}, nil })
		require.NoError(t, b.Login(ctx))
		assert.Len(t, ex.tokens, 2)
	})
}

func TestBrowserOpener(t *testing.T) {
	var opened []string
	var out bytes.Buffer

	o := BrowserOpener{Fallback: &out, open: func(u string) error {
		opened = append(opened, u)
		return errors.New("no browser")
	}}
	win, err := o.Open()
	require.NoError(t, err)
	require.NoError(t, win.Navigate("https://app.plex.tv/auth"))
	assert.Equal(t, []string{"https://app.plex.tv/auth"}, opened)
	assert.Contains(t, out.String(), "https://app.plex.tv/auth")

	assert.False(t, win.Closed())
	require.NoError(t, win.Close())
	assert.True(t, win.Closed())
}

func TestStateString(t *testing.T) {
	for s, want := range map[State]string{Idle: "idle", Polling: "polling", Failed: "failed"} {
		assert.Equal(t, want, s.String())
	}
	assert.True(t, Cancelled.Terminal())
	assert.False(t, PinRequested.Terminal())
}
