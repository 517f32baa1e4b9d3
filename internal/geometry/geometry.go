// Package geometry holds the planar types shared by capture, planning and rendering.
// Positions are orb points in world coordinates; headings are radians measured
// counter-clockwise from the +x axis.
package geometry

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/pkg/errors"
)

// ErrNonFinite is returned when a coordinate or heading is NaN or infinite.
var ErrNonFinite = errors.New("non-finite value")

// Pose is a position plus heading.
type Pose struct {
	X   float64 `json:"x"`
	Y   float64 `json:"y"`
	Yaw float64 `json:"yaw"`
}

// NewPose combines a captured position with a heading in radians.
func NewPose(p orb.Point, yaw float64) (Pose, error) {
	pose := Pose{X: p.X(), Y: p.Y(), Yaw: yaw}
	if !pose.Finite() {
		return Pose{}, errors.Wrapf(ErrNonFinite, "pose (%g, %g, %g)", pose.X, pose.Y, pose.Yaw)
	}
	return pose, nil
}

// Point returns the position part of the pose.
func (p Pose) Point() orb.Point {
	return orb.Point{p.X, p.Y}
}

// Finite reports whether every component is a finite real.
func (p Pose) Finite() bool {
	return IsFinite(p.X) && IsFinite(p.Y) && IsFinite(p.Yaw)
}

// Heading returns the unit vector the pose points along.
func (p Pose) Heading() orb.Point {
	return orb.Point{math.Cos(p.Yaw), math.Sin(p.Yaw)}
}

// Advance moves the pose dist units along its heading. Negative dist moves backwards.
func (p Pose) Advance(dist float64) Pose {
	h := p.Heading()
	return Pose{X: p.X + dist*h.X(), Y: p.Y + dist*h.Y(), Yaw: p.Yaw}
}

// Distance calculates Euclidean distance between two poses' positions
func (p Pose) Distance(other Pose) float64 {
	return planar.Distance(p.Point(), other.Point())
}

// DegToRad converts degrees to radians.
func DegToRad(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// RadToDeg converts radians to degrees.
func RadToDeg(rad float64) float64 {
	return rad * 180.0 / math.Pi
}

// Mod2Pi wraps an angle into [0, 2π).
func Mod2Pi(a float64) float64 {
	const twoPi = 2 * math.Pi
	v := a - twoPi*math.Floor(a/twoPi)
	// floor can leave v a rounding error below 2π
	if v >= twoPi-1e-12 {
		return 0
	}
	return v
}

// IsFinite reports whether v is neither NaN nor ±Inf.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
