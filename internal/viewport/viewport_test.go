package viewport

import (
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeElement struct {
	mu       sync.Mutex
	rect     Rect
	offset   float64
	text     string
	styles   map[string]string
	children map[string]*fakeElement
	// onLeft lets a test move the element when its left style changes.
	onLeft    func(e *fakeElement, left float64)
	listeners map[string][]*func()
}

func newElement(r Rect) *fakeElement {
	return &fakeElement{rect: r, styles: map[string]string{}, children: map[string]*fakeElement{}, listeners: map[string][]*func(){}}
}

func (e *fakeElement) Rect() Rect {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rect
}

func (e *fakeElement) SetStyle(prop, value string) {
	e.mu.Lock()
	e.styles[prop] = value
	hook := e.onLeft
	e.mu.Unlock()
	if prop == "left" && hook != nil {
		v, _ := strconv.ParseFloat(strings.TrimSuffix(value, "px"), 64)
		hook(e, v)
	}
}

func (e *fakeElement) Style(prop string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.styles[prop]
}

func (e *fakeElement) Query(sel string) (Element, bool) {
	c, ok := e.children[sel]
	if !ok {
		return nil, false
	}
	return c, true
}

func (e *fakeElement) OffsetLeft() float64 { return e.offset }

func (e *fakeElement) SetText(s string) { e.text = s }

func (e *fakeElement) On(event string, fn func()) func() {
	p := &fn
	e.listeners[event] = append(e.listeners[event], p)
	return func() {
		list := e.listeners[event]
		for i, q := range list {
			if q == p {
				e.listeners[event] = append(list[:i], list[i+1:]...)
				return
			}
		}
	}
}

func (e *fakeElement) fire(event string) {
	for _, fn := range e.listeners[event] {
		(*fn)()
	}
}

func (e *fakeElement) listenerCount() int {
	n := 0
	for _, l := range e.listeners {
		n += len(l)
	}
	return n
}

type fakeWindow struct {
	scrollY     float64
	innerHeight float64
	body        *fakeElement
	resize      []*func()
}

func (w *fakeWindow) ScrollY() float64     { return w.scrollY }
func (w *fakeWindow) InnerHeight() float64 { return w.innerHeight }
func (w *fakeWindow) Body() Element        { return w.body }

func (w *fakeWindow) OnResize(fn func()) func() {
	p := &fn
	w.resize = append(w.resize, p)
	return func() {
		for i, q := range w.resize {
			if q == p {
				w.resize = append(w.resize[:i], w.resize[i+1:]...)
				return
			}
		}
	}
}

func (w *fakeWindow) fireResize() {
	for _, fn := range w.resize {
		(*fn)()
	}
}

// fakeScheduler holds scheduled functions until run is called.
type fakeScheduler struct {
	pending []*func()
	delays  []time.Duration
}

func (s *fakeScheduler) schedule(d time.Duration, fn func()) func() {
	p := &fn
	s.pending = append(s.pending, p)
	s.delays = append(s.delays, d)
	return func() {
		for i, q := range s.pending {
			if q == p {
				s.pending = append(s.pending[:i], s.pending[i+1:]...)
				return
			}
		}
	}
}

func (s *fakeScheduler) run() {
	pending := s.pending
	s.pending = nil
	for _, fn := range pending {
		(*fn)()
	}
}

func TestPlaceTooltip(t *testing.T) {
	target := Rect{X: 100, Y: 200, Width: 40, Height: 20}
	tip := Rect{Width: 60, Height: 30}

	tt := []struct {
		pos  Position
		want Point
	}{
		{PosLeft, Point{Left: 30, Top: 295.5}},
		{PosTop, Point{Left: 90, Top: 265}},
		{PosBottom, Point{Left: 90, Top: 335}},
		{"", Point{Left: 30, Top: 295.5}},
	}

	for _, tc := range tt {
		t.Run(string(tc.pos), func(t *testing.T) {
			assert.Equal(t, tc.want, PlaceTooltip(tc.pos, target, tip, 100))
		})
	}
}

func TestTooltip(t *testing.T) {
	node := newElement(Rect{X: 100, Y: 200, Width: 40, Height: 20})
	tip := newElement(Rect{Width: 60, Height: 30})
	win := &fakeWindow{body: newElement(Rect{Width: 800})}

	tooltip := NewTooltip(node, tip, win, TooltipOptions{Text: "Pinned", Pos: PosTop})

	node.fire("mouseover")
	assert.Equal(t, "Pinned", tip.text)
	assert.Equal(t, "90px", tip.Style("left"))
	assert.Equal(t, "165px", tip.Style("top"))
	assert.Equal(t, "visible", tip.Style("visibility"))

	node.fire("click")
	assert.Equal(t, "hidden", tip.Style("visibility"))

	tooltip.Update(TooltipOptions{Hidden: true})
	node.fire("touchstart")
	assert.Equal(t, "hidden", tip.Style("visibility"))

	tooltip.Update(TooltipOptions{})
	node.fire("touchstart")
	assert.Equal(t, "visible", tip.Style("visibility"))

	assert.Equal(t, 5, node.listenerCount())
	tooltip.Destroy()
	assert.Zero(t, node.listenerCount())
}

func TestStayInView(t *testing.T) {
	body := newElement(Rect{X: 0, Width: 800})

	t.Run("in view is left alone", func(t *testing.T) {
		node := newElement(Rect{X: 20, Width: 100})
		s := NewStayInView(node, &fakeWindow{body: body}, StayInViewOptions{})
		defer s.Destroy()
		assert.Empty(t, node.Style("left"))
	})

	t.Run("shifts node and child", func(t *testing.T) {
		node := newElement(Rect{X: -30, Width: 100})
		node.onLeft = func(e *fakeElement, _ float64) { e.rect.X = 10 }
		arrow := newElement(Rect{})
		arrow.offset = 50
		node.children[".arrow"] = arrow

		s := NewStayInView(node, &fakeWindow{body: body}, StayInViewOptions{ShiftSelector: ".arrow"})
		defer s.Destroy()

		assert.Equal(t, "-20px", node.Style("left"))
		assert.Equal(t, "10px", arrow.Style("left"))
	})

	t.Run("left edge touching counts", func(t *testing.T) {
		node := newElement(Rect{X: 0, Width: 100})
		s := NewStayInView(node, &fakeWindow{body: body}, StayInViewOptions{ShiftSelector: ".missing"})
		defer s.Destroy()
		assert.Equal(t, "10px", node.Style("left"))
	})

	t.Run("resize is debounced", func(t *testing.T) {
		node := newElement(Rect{X: 20, Width: 100})
		win := &fakeWindow{body: body}
		sched := &fakeScheduler{}
		s := NewStayInView(node, win, StayInViewOptions{Schedule: sched.schedule})

		node.rect.X = -5
		win.fireResize()
		win.fireResize()
		win.fireResize()
		require.Len(t, sched.pending, 1)
		assert.Equal(t, ResizeDebounce, sched.delays[0])
		assert.Empty(t, node.Style("left"))

		sched.run()
		assert.Equal(t, "5px", node.Style("left"))

		s.Destroy()
		assert.Empty(t, win.resize)
		win.fireResize()
		assert.Empty(t, sched.pending)
	})

	t.Run("Destroy drops a pending check", func(t *testing.T) {
		node := newElement(Rect{X: 20})
		win := &fakeWindow{body: body}
		sched := &fakeScheduler{}
		s := NewStayInView(node, win, StayInViewOptions{Schedule: sched.schedule})
		win.fireResize()
		s.Destroy()
		assert.Empty(t, sched.pending)
	})

	t.Run("Update re-checks with the new selector", func(t *testing.T) {
		node := newElement(Rect{X: 20, Width: 100})
		arrow := newElement(Rect{})
		node.children[".arrow"] = arrow
		s := NewStayInView(node, &fakeWindow{body: body}, StayInViewOptions{})
		defer s.Destroy()

		node.rect.X = -10
		s.Update(StayInViewOptions{ShiftSelector: ".arrow"})
		assert.Equal(t, "0px", node.Style("left"))
		assert.Equal(t, "0px", arrow.Style("left"))
	})
}

func TestTransformOrigin(t *testing.T) {
	body := Rect{X: 0, Width: 1000}

	tt := []struct {
		name      string
		container Rect
		item      Rect
		want      string
	}{
		{"room everywhere", Rect{X: 100, Width: 200}, Rect{Y: 100, Height: 100}, ""},
		{"right edge", Rect{X: 780, Width: 200}, Rect{Y: 100, Height: 100}, "right"},
		{"left edge", Rect{X: 20, Width: 200}, Rect{Y: 100, Height: 100}, "left"},
		{"bottom", Rect{X: 100, Width: 200}, Rect{Y: 600, Height: 100}, "bottom"},
		{"corner", Rect{X: 10, Width: 980}, Rect{Y: 690, Height: 100}, "right left bottom"},
		{"exact margin fits", Rect{X: 26, Width: 948}, Rect{Y: 0, Height: 674}, ""},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, TransformOrigin(tc.container, body, tc.item, 700))
		})
	}

	t.Run("Apply", func(t *testing.T) {
		item := newElement(Rect{Y: 690, Height: 20})
		ctr := newElement(Rect{X: 100, Width: 200})
		item.children[".container"] = ctr
		win := &fakeWindow{innerHeight: 700, body: newElement(body)}

		require.True(t, ApplyTransformOrigin(item, win))
		assert.Equal(t, "bottom", ctr.Style("transform-origin"))
		assert.False(t, ApplyTransformOrigin(newElement(Rect{}), win))
	})
}
