// Package capture turns pointer clicks and typed headings into the two poses of
// a path query.
package capture

import (
	"github.com/paulmach/orb"
)

// Role says which endpoint a captured position belongs to.
type Role int

const (
	// RoleStart is the first captured position.
	RoleStart Role = iota
	// RoleEnd is the second captured position.
	RoleEnd
)

func (r Role) String() string {
	if r == RoleStart {
		return "start"
	}
	return "end"
}

// PointerEvent is a click on the drawing surface. Clicks outside the drawable
// area have no scene coordinates and InBounds is false.
type PointerEvent struct {
	X, Y     float64
	InBounds bool
}

// Click returns an in-bounds event at (x, y).
func Click(x, y float64) PointerEvent {
	return PointerEvent{X: x, Y: y, InBounds: true}
}

// OutOfBounds returns an event with undefined coordinates.
func OutOfBounds() PointerEvent {
	return PointerEvent{}
}

// Point returns the event position.
func (ev PointerEvent) Point() orb.Point {
	return orb.Point{ev.X, ev.Y}
}

// Capture records the first two in-bounds clicks.
type Capture struct {
	positions []orb.Point
}

// Record stores ev as the next position. Out-of-bounds events, and any event
// after both positions exist, are ignored and reported as not accepted.
func (c *Capture) Record(ev PointerEvent) (orb.Point, Role, bool) {
	if !ev.InBounds || c.Complete() {
		return orb.Point{}, 0, false
	}
	c.positions = append(c.positions, ev.Point())
	return ev.Point(), Role(len(c.positions) - 1), true
}

// Positions returns a copy of the captured positions in click order.
func (c *Capture) Positions() []orb.Point {
	return append([]orb.Point(nil), c.positions...)
}

// Complete reports whether both positions have been captured.
func (c *Capture) Complete() bool {
	return len(c.positions) == 2
}

// Reset forgets every captured position.
func (c *Capture) Reset() {
	c.positions = nil
}
