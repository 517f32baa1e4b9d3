package planner

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"pose-planner/internal/geometry"
)

// Sample is one pose along a planned path.
type Sample struct {
	X   float64 `json:"x"`
	Y   float64 `json:"y"`
	Yaw float64 `json:"yaw"`
}

// Point returns the sample position.
func (s Sample) Point() orb.Point {
	return orb.Point{s.X, s.Y}
}

// Pose returns the sample as a pose.
func (s Sample) Pose() geometry.Pose {
	return geometry.Pose{X: s.X, Y: s.Y, Yaw: s.Yaw}
}

// Path is an ordered run of samples from the start pose to the end pose.
type Path struct {
	Samples []Sample
	// Length is the arc length of the route, runway included.
	Length float64
	// Word names the curve family used, e.g. "LSR+S" when a runway was appended.
	Word string
}

// Len returns the number of samples.
func (p *Path) Len() int {
	return len(p.Samples)
}

// Coordinates splits the samples into x, y and yaw sequences of equal length.
func (p *Path) Coordinates() (xs, ys, yaws []float64) {
	xs = make([]float64, len(p.Samples))
	ys = make([]float64, len(p.Samples))
	yaws = make([]float64, len(p.Samples))
	for i, s := range p.Samples {
		xs[i], ys[i], yaws[i] = s.X, s.Y, s.Yaw
	}
	return xs, ys, yaws
}

// LineString returns the sample positions as a line string.
func (p *Path) LineString() orb.LineString {
	ls := make(orb.LineString, len(p.Samples))
	for i, s := range p.Samples {
		ls[i] = s.Point()
	}
	return ls
}

// Bound returns the axis-aligned bounds of all samples.
func (p *Path) Bound() orb.Bound {
	return p.LineString().Bound()
}

// PolylineLength returns the length of the sampled polyline, which is never
// longer than the arc length.
func (p *Path) PolylineLength() float64 {
	return planar.Length(p.LineString())
}

// First returns the first sample.
func (p *Path) First() Sample {
	return p.Samples[0]
}

// Last returns the last sample.
func (p *Path) Last() Sample {
	return p.Samples[len(p.Samples)-1]
}
