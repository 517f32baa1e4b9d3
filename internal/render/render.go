// Package render draws a planned path onto a drawing surface: a view window
// fitted around the samples, heading arrows at both ends, and the path itself.
// Surfaces are implemented by the terminal, figure and animation packages.
package render

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"

	"pose-planner/internal/planner"
)

// DefaultMargin is the gap kept between the path and the edge of the view.
const DefaultMargin = 2.0

// ErrEmptyPath is returned when a path has no samples to draw.
var ErrEmptyPath = errors.New("path has no samples")

// ArrowStyle sizes a heading arrow.
type ArrowStyle struct {
	Length     float64 // shaft length
	HeadWidth  float64
	HeadLength float64
}

// DefaultArrow is a 0.5 unit shaft with a 1.0 x 1.0 head.
var DefaultArrow = ArrowStyle{Length: 0.5, HeadWidth: 1.0, HeadLength: 1.0}

// Surface receives drawing commands. Coordinates are world units.
type Surface interface {
	// Clear drops everything drawn so far.
	Clear()
	// SetView sets the visible world window.
	SetView(view orb.Bound)
	// Marker draws a square marker labeled label.
	Marker(p orb.Point, label string)
	// Arrow draws a heading arrow from p along yaw.
	Arrow(p orb.Point, yaw float64, style ArrowStyle)
	// Path draws the static reference line.
	Path(ls orb.LineString)
	// Trace replaces the animated overlay line.
	Trace(ls orb.LineString)
	// Flush makes the drawing visible.
	Flush() error
}

// Shape is the outline of a heading arrow.
type Shape struct {
	Shaft orb.LineString
	Head  orb.Ring // base left, tip, base right, closed
}

// ArrowShape computes the arrow for a pose. The shaft runs from p along the
// heading; the head sits on the shaft end with its tip HeadLength further on.
func ArrowShape(p orb.Point, yaw float64, style ArrowStyle) Shape {
	ux, uy := math.Cos(yaw), math.Sin(yaw)
	// left normal
	nx, ny := -uy, ux

	end := orb.Point{p.X() + style.Length*ux, p.Y() + style.Length*uy}
	tip := orb.Point{end.X() + style.HeadLength*ux, end.Y() + style.HeadLength*uy}
	half := style.HeadWidth / 2
	left := orb.Point{end.X() + half*nx, end.Y() + half*ny}
	right := orb.Point{end.X() - half*nx, end.Y() - half*ny}

	return Shape{
		Shaft: orb.LineString{p, end},
		Head:  orb.Ring{left, tip, right, left},
	}
}

// ViewWindow returns the bounds of the samples grown by margin on every side.
func ViewWindow(xs, ys []float64, margin float64) (orb.Bound, error) {
	if len(xs) == 0 || len(xs) != len(ys) {
		return orb.Bound{}, errors.Wrapf(ErrEmptyPath, "%d x values, %d y values", len(xs), len(ys))
	}
	mp := make(orb.MultiPoint, len(xs))
	for i := range xs {
		mp[i] = orb.Point{xs[i], ys[i]}
	}
	return mp.Bound().Pad(margin), nil
}

// Labels names the two arrow markers.
type Labels struct {
	Start string
	End   string
}

// Renderer draws the static overlay of a path.
type Renderer struct {
	Margin float64
	Arrow  ArrowStyle
	Labels Labels
}

// NewRenderer returns a renderer with the default margin and arrow.
func NewRenderer(labels Labels) *Renderer {
	return &Renderer{Margin: DefaultMargin, Arrow: DefaultArrow, Labels: labels}
}

// Draw clears s and draws the path, returning the view it chose. Drawing the
// same path again produces the same commands.
func (r *Renderer) Draw(s Surface, p *planner.Path) (orb.Bound, error) {
	if p == nil || p.Len() == 0 {
		return orb.Bound{}, ErrEmptyPath
	}
	xs, ys, yaws := p.Coordinates()
	view, err := ViewWindow(xs, ys, r.Margin)
	if err != nil {
		return orb.Bound{}, err
	}
	last := len(xs) - 1

	s.Clear()
	s.SetView(view)
	s.Arrow(orb.Point{xs[0], ys[0]}, yaws[0], r.Arrow)
	s.Marker(orb.Point{xs[0], ys[0]}, r.Labels.Start)
	s.Arrow(orb.Point{xs[last], ys[last]}, yaws[last], r.Arrow)
	s.Marker(orb.Point{xs[last], ys[last]}, r.Labels.End)
	s.Path(p.LineString())
	return view, s.Flush()
}

// InitialView is the square window shown before any path exists.
func InitialView(limit float64) orb.Bound {
	return orb.Bound{Min: orb.Point{-limit, -limit}, Max: orb.Point{limit, limit}}
}
