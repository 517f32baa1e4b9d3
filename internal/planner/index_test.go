package planner

import (
	"context"
	"testing"

	"github.com/paulmach/orb"
	"go.viam.com/test"

	"pose-planner/internal/geometry"
)

func TestSampleIndexNearest(t *testing.T) {
	q := NewQuery(geometry.Pose{}, geometry.Pose{X: 10}, defaultParams)
	path, err := NewDubins(nil).Plan(context.Background(), q)
	test.That(t, err, test.ShouldBeNil)

	si := NewSampleIndex(path)
	test.That(t, si.Len(), test.ShouldEqual, path.Len())

	idx, s, ok := si.Nearest(orb.Point{2.51, 3})
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, idx, test.ShouldEqual, 50)
	test.That(t, s.X, test.ShouldAlmostEqual, 2.5)

	idx, s, ok = si.Nearest(orb.Point{50, -1})
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, idx, test.ShouldEqual, path.Len()-1)
	test.That(t, s, test.ShouldResemble, path.Last())

	_, _, ok = NewSampleIndex(&Path{}).Nearest(orb.Point{0, 0})
	test.That(t, ok, test.ShouldBeFalse)
}
