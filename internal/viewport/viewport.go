package viewport

import (
	"strconv"
	"time"
)

// Rect is a bounding box in viewport coordinates.
type Rect struct {
	X, Y, Width, Height float64
}

func (r Rect) Left() float64   { return r.X }
func (r Rect) Top() float64    { return r.Y }
func (r Rect) Right() float64  { return r.X + r.Width }
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Element is a laid out node whose inline style can be changed.
type Element interface {
	Rect() Rect
	SetStyle(property, value string)
	// Query finds the first descendant matching selector.
	Query(selector string) (Element, bool)
	OffsetLeft() float64
}

// Node is an [Element] that emits input events.
type Node interface {
	Element
	// On registers fn for event and returns a function that removes it.
	On(event string, fn func()) (remove func())
}

// TextElement is an [Element] whose content can be replaced.
type TextElement interface {
	Element
	SetText(text string)
}

// Window is the page hosting the elements.
type Window interface {
	ScrollY() float64
	InnerHeight() float64
	Body() Element
	// OnResize registers fn for resize events and returns a function that
	// removes it.
	OnResize(fn func()) (remove func())
}

// Scheduler runs fn after d and returns a function that cancels it.
type Scheduler func(d time.Duration, fn func()) (cancel func())

func afterFunc(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

// px formats v as a CSS pixel length.
func px(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}
