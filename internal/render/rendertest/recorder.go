// Package rendertest provides a Surface that records drawing commands.
package rendertest

import (
	"github.com/paulmach/orb"

	"pose-planner/internal/render"
)

// Marker is a recorded Marker call.
type Marker struct {
	At    orb.Point
	Label string
}

// Arrow is a recorded Arrow call.
type Arrow struct {
	At    orb.Point
	Yaw   float64
	Style render.ArrowStyle
}

// Recorder is a render.Surface keeping the current drawing in memory.
type Recorder struct {
	View    orb.Bound
	Markers []Marker
	Arrows  []Arrow
	Paths   []orb.LineString
	Overlay orb.LineString
	Traces  int // number of Trace calls since the last Clear
	Clears  int
	Flushes int
	// FlushErr is returned from Flush when set.
	FlushErr error
}

var _ render.Surface = (*Recorder)(nil)

// Clear implements render.Surface.
func (r *Recorder) Clear() {
	r.Markers, r.Arrows, r.Paths, r.Overlay = nil, nil, nil, nil
	r.Traces = 0
	r.Clears++
}

// SetView implements render.Surface.
func (r *Recorder) SetView(view orb.Bound) { r.View = view }

// Marker implements render.Surface.
func (r *Recorder) Marker(p orb.Point, label string) {
	r.Markers = append(r.Markers, Marker{At: p, Label: label})
}

// Arrow implements render.Surface.
func (r *Recorder) Arrow(p orb.Point, yaw float64, style render.ArrowStyle) {
	r.Arrows = append(r.Arrows, Arrow{At: p, Yaw: yaw, Style: style})
}

// Path implements render.Surface.
func (r *Recorder) Path(ls orb.LineString) {
	r.Paths = append(r.Paths, append(orb.LineString(nil), ls...))
}

// Trace implements render.Surface.
func (r *Recorder) Trace(ls orb.LineString) {
	r.Overlay = append(orb.LineString(nil), ls...)
	r.Traces++
}

// Flush implements render.Surface.
func (r *Recorder) Flush() error {
	r.Flushes++
	return r.FlushErr
}
