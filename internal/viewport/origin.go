package viewport

import "strings"

// OriginMargin is the room an expanding item needs from the page edges.
const OriginMargin = 26

// TransformOrigin picks the transform origin for an item's container so
// that it grows away from whichever page edges it would overflow: "right",
// "left", "bottom", space separated, or "" when there is room on every side.
func TransformOrigin(container, body, item Rect, innerHeight float64) string {
	var origins []string
	if container.X+container.Width+OriginMargin > body.X+body.Width {
		origins = append(origins, "right")
	}
	if container.X-OriginMargin < body.X {
		origins = append(origins, "left")
	}
	if item.Bottom()+OriginMargin > innerHeight {
		origins = append(origins, "bottom")
	}
	return strings.Join(origins, " ")
}

// ApplyTransformOrigin sets the transform origin of item's ".container"
// child. It reports false when item has no container.
func ApplyTransformOrigin(item Element, win Window) bool {
	ctr, ok := item.Query(".container")
	if !ok {
		return false
	}
	ctr.SetStyle("transform-origin", "unset")
	ctr.SetStyle("transform-origin", TransformOrigin(ctr.Rect(), win.Body().Rect(), item.Rect(), win.InnerHeight()))
	return true
}
