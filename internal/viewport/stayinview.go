package viewport

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/wtx/internal/shared"
)

// ResizeDebounce is how long resizing must pause before an element is moved
// back into view.
const ResizeDebounce = 200 * time.Millisecond

// StayInViewOptions configures [NewStayInView].
type StayInViewOptions struct {
	// ShiftSelector names a child, such as a menu arrow, that is moved back
	// by the same amount the node moves so it keeps pointing at its anchor.
	ShiftSelector string
	Schedule      Scheduler
	Logger        *log.Logger
}

// StayInView keeps a node from spilling off the left edge of the page.
type StayInView struct {
	mu       sync.Mutex
	node     Element
	win      Window
	selector string
	schedule Scheduler
	logger   *log.Logger
	cancel   func()
	remove   func()
}

// NewStayInView moves node into view now and again after every burst of
// resize events.
func NewStayInView(node Element, win Window, opts StayInViewOptions) *StayInView {
	s := &StayInView{
		node:     node,
		win:      win,
		selector: opts.ShiftSelector,
		schedule: opts.Schedule,
		logger:   opts.Logger,
	}
	if s.schedule == nil {
		s.schedule = afterFunc
	}
	if s.logger == nil {
		s.logger = shared.DiscardLogger()
	}
	s.remove = win.OnResize(s.debounced)
	s.GetInView()
	return s
}

func (s *StayInView) debounced() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	s.cancel = s.schedule(ResizeDebounce, s.GetInView)
}

// GetInView shifts the node right when its left edge is at or past the
// page's left edge.
func (s *StayInView) GetInView() {
	s.mu.Lock()
	selector := s.selector
	s.mu.Unlock()

	before := s.node.Rect()
	body := s.win.Body().Rect()
	if before.X > body.X {
		return
	}

	left := before.X - body.X + 10
	s.logger.Debug("node out of bounds on the left", "left", left)
	s.node.SetStyle("left", px(left))

	if selector == "" {
		return
	}
	child, ok := s.node.Query(selector)
	if !ok {
		s.logger.Warn("element to shift not found", "selector", selector)
		return
	}
	delta := s.node.Rect().Left() - before.Left()
	child.SetStyle("left", px(child.OffsetLeft()-delta))
}

// Update replaces the options and re-checks the node.
func (s *StayInView) Update(opts StayInViewOptions) {
	s.mu.Lock()
	s.selector = opts.ShiftSelector
	s.mu.Unlock()
	s.GetInView()
}

// Destroy stops listening for resizes and drops a pending check.
func (s *StayInView) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.remove != nil {
		s.remove()
		s.remove = nil
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}
