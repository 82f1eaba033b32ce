// Package viewport positions floating elements: tooltips beside their
// targets, menus kept inside the page's left edge, and the transform origin
// of items that expand near the page edges.
//
// Elements and the window are interfaces so any layout that can report
// bounding boxes and take style changes can host them.
package viewport
