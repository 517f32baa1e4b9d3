// Package playback reveals a planned path one sample at a time.
//
// An Animation is the immutable list of frames; frame i shows the first i
// samples. A Driver walks an Animation on a clock ticker and hands every frame
// to the owner's event loop, so surfaces are only touched from that loop.
package playback

import (
	"github.com/paulmach/orb"
	"github.com/pkg/errors"

	"pose-planner/internal/planner"
)

// ErrLengthMismatch is returned when x and y sequences differ in length.
var ErrLengthMismatch = errors.New("coordinate sequences differ in length")

// Animation holds the coordinates of a path for prefix playback.
type Animation struct {
	xs, ys []float64
}

// NewAnimation copies xs and ys.
func NewAnimation(xs, ys []float64) (*Animation, error) {
	if len(xs) != len(ys) {
		return nil, errors.Wrapf(ErrLengthMismatch, "%d x values, %d y values", len(xs), len(ys))
	}
	return &Animation{
		xs: append([]float64(nil), xs...),
		ys: append([]float64(nil), ys...),
	}, nil
}

// FromPath builds the animation of a planned path.
func FromPath(p *planner.Path) *Animation {
	xs, ys, _ := p.Coordinates()
	return &Animation{xs: xs, ys: ys}
}

// Len returns the number of samples.
func (a *Animation) Len() int {
	return len(a.xs)
}

// Frames returns the frame count, one more than the sample count.
func (a *Animation) Frames() int {
	return len(a.xs) + 1
}

// Frame returns the first i samples as a line string. i is clamped to
// [0, Len()]; frame 0 is empty.
func (a *Animation) Frame(i int) orb.LineString {
	if i < 0 {
		i = 0
	}
	if i > len(a.xs) {
		i = len(a.xs)
	}
	ls := make(orb.LineString, i)
	for k := 0; k < i; k++ {
		ls[k] = orb.Point{a.xs[k], a.ys[k]}
	}
	return ls
}
