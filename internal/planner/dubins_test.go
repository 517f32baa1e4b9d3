package planner

import (
	"container/heap"
	"context"
	"math"
	"testing"

	"github.com/paulmach/orb/planar"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"pose-planner/internal/geometry"
)

var defaultParams = Params{TurnRadius: 4.5, RunwayLength: 5, StepSize: 0.05}

func TestDubinsStraightRunway(t *testing.T) {
	q := NewQuery(geometry.Pose{X: 0, Y: 0, Yaw: 0}, geometry.Pose{X: 10, Y: 0, Yaw: 0}, defaultParams)
	path, err := NewDubins(nil).Plan(context.Background(), q)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, path.Len(), test.ShouldEqual, 201)
	test.That(t, path.Length, test.ShouldAlmostEqual, 10)
	test.That(t, path.Word, test.ShouldEqual, "LSL+S")
	test.That(t, path.First(), test.ShouldResemble, Sample{X: 0, Y: 0, Yaw: 0})
	test.That(t, path.Last(), test.ShouldResemble, Sample{X: 10, Y: 0, Yaw: 0})
	for i, s := range path.Samples {
		test.That(t, s.Y, test.ShouldAlmostEqual, 0)
		test.That(t, s.Yaw, test.ShouldAlmostEqual, 0)
		test.That(t, s.X, test.ShouldAlmostEqual, float64(i)*0.05, 1e-9)
	}

	xs, ys, yaws := path.Coordinates()
	test.That(t, len(xs), test.ShouldEqual, path.Len())
	test.That(t, len(ys), test.ShouldEqual, path.Len())
	test.That(t, len(yaws), test.ShouldEqual, path.Len())
	test.That(t, path.PolylineLength(), test.ShouldAlmostEqual, 10, 1e-9)
}

func TestDubinsKnownLength(t *testing.T) {
	params := Params{TurnRadius: 1, RunwayLength: 0, StepSize: 0.1}
	q := NewQuery(geometry.Pose{}, geometry.Pose{X: 4, Y: 4, Yaw: math.Pi}, params)
	path, err := NewDubins(nil).Plan(context.Background(), q)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, path.Word, test.ShouldEqual, "LSL")
	test.That(t, math.Abs(path.Length-7.61372), test.ShouldBeLessThan, 0.00001)
}

func TestDubinsSampleInvariants(t *testing.T) {
	queries := []Query{
		NewQuery(geometry.Pose{X: -5, Y: 3, Yaw: geometry.DegToRad(90)}, geometry.Pose{X: 8, Y: -2, Yaw: geometry.DegToRad(-45)}, defaultParams),
		NewQuery(geometry.Pose{X: 0, Y: 0, Yaw: 0}, geometry.Pose{X: 0, Y: 0, Yaw: math.Pi}, defaultParams),
		NewQuery(geometry.Pose{X: 1, Y: 1, Yaw: geometry.DegToRad(720)}, geometry.Pose{X: 2, Y: 1, Yaw: geometry.DegToRad(180)},
			Params{TurnRadius: 2, RunwayLength: 1.5, StepSize: 0.2}),
		NewQuery(geometry.Pose{X: -12, Y: -7, Yaw: 1}, geometry.Pose{X: 15, Y: 9, Yaw: -2}, Params{TurnRadius: 3, RunwayLength: 0, StepSize: 0.25}),
	}
	for _, q := range queries {
		path, err := NewDubins(nil).Plan(context.Background(), q)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, path.Len(), test.ShouldBeGreaterThan, 1)

		step := q.Params.StepSize
		for i := 1; i < path.Len(); i++ {
			prev, cur := path.Samples[i-1], path.Samples[i]
			test.That(t, planar.Distance(prev.Point(), cur.Point()), test.ShouldBeLessThanOrEqualTo, step*(1+1e-6))
			// heading changes no faster than one radian per turn radius of travel
			test.That(t, angleGap(prev.Yaw, cur.Yaw), test.ShouldBeLessThanOrEqualTo, step/q.Params.TurnRadius+1e-6)
		}

		test.That(t, path.First().Pose(), test.ShouldResemble, q.Start)
		test.That(t, path.Last().Pose(), test.ShouldResemble, q.End)

		// samples on the runway lie on the end heading's line, pointing along it
		runwayFrom := int(math.Ceil((path.Length - q.Params.RunwayLength) / step))
		h := q.End.Heading()
		for i := runwayFrom; i < path.Len(); i++ {
			s := path.Samples[i]
			offX, offY := s.X-q.End.X, s.Y-q.End.Y
			test.That(t, math.Abs(offX*h.Y()-offY*h.X()), test.ShouldBeLessThan, 1e-6)
			test.That(t, offX*h.X()+offY*h.Y(), test.ShouldBeLessThanOrEqualTo, 1e-9)
			test.That(t, angleGap(s.Yaw, q.End.Yaw), test.ShouldBeLessThan, 1e-6)
		}
	}
}

func TestDubinsDegenerate(t *testing.T) {
	pose := geometry.Pose{X: 3, Y: 4, Yaw: 0.5}

	path, err := NewDubins(nil).Plan(context.Background(),
		NewQuery(pose, pose, Params{TurnRadius: 4.5, RunwayLength: 0, StepSize: 0.05}))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, path.Len(), test.ShouldEqual, 1)
	test.That(t, path.Length, test.ShouldEqual, 0.)
	test.That(t, path.First().Pose(), test.ShouldResemble, pose)

	// with a runway the vehicle has to loop back onto its own start
	path, err = NewDubins(nil).Plan(context.Background(), NewQuery(pose, pose, defaultParams))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, path.Length, test.ShouldBeGreaterThan, defaultParams.RunwayLength)
	test.That(t, path.Last().Pose(), test.ShouldResemble, pose)
}

func TestDubinsFailures(t *testing.T) {
	d := NewDubins(nil)
	start, end := geometry.Pose{}, geometry.Pose{X: 10}

	_, err := d.Plan(context.Background(), NewQuery(start, end, Params{TurnRadius: 0, StepSize: 0.05}))
	test.That(t, errors.Is(err, ErrInfeasible), test.ShouldBeTrue)
	test.That(t, errors.Is(err, ErrInvalidParams), test.ShouldBeTrue)

	_, err = d.Plan(context.Background(), NewQuery(start, end, Params{TurnRadius: 1, RunwayLength: -1, StepSize: 0.05}))
	test.That(t, errors.Is(err, ErrInvalidParams), test.ShouldBeTrue)

	_, err = d.Plan(context.Background(), NewQuery(geometry.Pose{X: math.NaN()}, end, defaultParams))
	test.That(t, errors.Is(err, ErrInfeasible), test.ShouldBeTrue)
	test.That(t, errors.Is(err, geometry.ErrNonFinite), test.ShouldBeTrue)

	small := &Dubins{MaxSamples: 10}
	_, err = small.Plan(context.Background(), NewQuery(start, end, defaultParams))
	test.That(t, errors.Is(err, ErrInfeasible), test.ShouldBeTrue)
	test.That(t, err.Error(), test.ShouldContainSubstring, "limit is 10")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = d.Plan(ctx, NewQuery(start, end, defaultParams))
	test.That(t, errors.Is(err, context.Canceled), test.ShouldBeTrue)
}

func TestParamsValidate(t *testing.T) {
	test.That(t, defaultParams.Validate(), test.ShouldBeNil)
	test.That(t, Params{TurnRadius: 1, StepSize: 1}.Validate(), test.ShouldBeNil)
	test.That(t, Params{TurnRadius: 1, StepSize: 0}.Validate(), test.ShouldNotBeNil)
	test.That(t, Params{TurnRadius: math.Inf(1), StepSize: 1}.Validate(), test.ShouldNotBeNil)
}

func TestCandidateQueueOrder(t *testing.T) {
	cq := newCandidateQueue([]*candidate{
		{Word: 3, Total: 2},
		{Word: 1, Total: 5},
		{Word: 2, Total: 2},
		{Word: 0, Total: 7},
	})
	var order []int
	for cq.Len() > 0 {
		order = append(order, heap.Pop(cq).(*candidate).Word)
	}
	test.That(t, order, test.ShouldResemble, []int{2, 3, 1, 0})
}
