package viewport

import "sync"

// Position is the side of the target a tooltip appears on.
type Position string

const (
	PosLeft   Position = "left"
	PosTop    Position = "top"
	PosBottom Position = "bot"
)

// Point is a style offset.
type Point struct {
	Left, Top float64
}

// PlaceTooltip computes the tooltip's left/top style offsets for a target.
// The target's y is shifted by scrollY so the tooltip follows a scrolled
// page. An unknown position is treated as [PosLeft].
func PlaceTooltip(pos Position, target, tip Rect, scrollY float64) Point {
	y := target.Y + scrollY
	switch pos {
	case PosTop:
		return Point{
			Left: target.X - tip.Width/2 + target.Width/2,
			Top:  y - tip.Height - 5,
		}
	case PosBottom:
		return Point{
			Left: target.X - tip.Width/2 + target.Width/2,
			Top:  y + tip.Height + 5,
		}
	default:
		return Point{
			Left: target.X - tip.Width - 10,
			Top:  y + tip.Height/2 - 19.5,
		}
	}
}

// TooltipOptions configures [NewTooltip].
type TooltipOptions struct {
	Text string
	Pos  Position
	// Hidden suppresses the tooltip; the zero value shows it.
	Hidden bool
}

// Tooltip shows a shared tooltip element next to a node while the pointer
// is over it.
type Tooltip struct {
	mu      sync.Mutex
	node    Node
	tip     TextElement
	win     Window
	text    string
	pos     Position
	hidden  bool
	removes []func()
}

var (
	showEvents = []string{"mouseover", "touchstart"}
	hideEvents = []string{"mouseout", "touchend", "click"}
)

// NewTooltip attaches a tooltip to node. A nil tip makes every show a no-op.
func NewTooltip(node Node, tip TextElement, win Window, opts TooltipOptions) *Tooltip {
	t := &Tooltip{node: node, tip: tip, win: win, text: opts.Text, pos: opts.Pos, hidden: opts.Hidden}
	if t.pos == "" {
		t.pos = PosLeft
	}
	for _, ev := range showEvents {
		t.removes = append(t.removes, node.On(ev, t.Show))
	}
	for _, ev := range hideEvents {
		t.removes = append(t.removes, node.On(ev, t.Hide))
	}
	return t
}

// Show positions and reveals the tooltip.
func (t *Tooltip) Show() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.hidden || t.tip == nil {
		return
	}

	t.tip.SetText(t.text)
	p := PlaceTooltip(t.pos, t.node.Rect(), t.tip.Rect(), t.win.ScrollY())
	t.tip.SetStyle("left", px(p.Left))
	t.tip.SetStyle("top", px(p.Top))
	t.tip.SetStyle("visibility", "visible")
}

// Hide conceals the tooltip.
func (t *Tooltip) Hide() {
	if t.tip != nil {
		t.tip.SetStyle("visibility", "hidden")
	}
}

// Update changes whether the tooltip may show. Text and position are fixed
// at creation.
func (t *Tooltip) Update(opts TooltipOptions) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.hidden = opts.Hidden
}

// Destroy removes the event listeners.
func (t *Tooltip) Destroy() {
	t.mu.Lock()
	removes := t.removes
	t.removes = nil
	t.mu.Unlock()
	for _, remove := range removes {
		remove()
	}
}
