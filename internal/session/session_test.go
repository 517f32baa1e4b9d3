package session

import (
	"context"
	"testing"

	"github.com/benbjohnson/clock"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"pose-planner/internal/capture"
	"pose-planner/internal/geometry"
	"pose-planner/internal/locale"
	"pose-planner/internal/logging"
	"pose-planner/internal/planner"
	"pose-planner/internal/render/rendertest"
)

var defaultParams = planner.Params{TurnRadius: 4.5, RunwayLength: 5, StepSize: 0.05}

// recordingPlanner remembers its queries and delegates to next, or fails with err.
type recordingPlanner struct {
	queries []planner.Query
	next    planner.Planner
	err     error
}

func (p *recordingPlanner) Plan(ctx context.Context, q planner.Query) (*planner.Path, error) {
	p.queries = append(p.queries, q)
	if p.err != nil {
		return nil, p.err
	}
	return p.next.Plan(ctx, q)
}

type fixture struct {
	session  *Session
	clicks   *capture.Dispatcher
	surface  *rendertest.Recorder
	planner  *recordingPlanner
	messages []string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger, _ := logging.NewTestLogger(t)
	f := &fixture{
		clicks:  &capture.Dispatcher{},
		surface: &rendertest.Recorder{},
		planner: &recordingPlanner{next: planner.NewDubins(logger)},
	}
	f.session = New(Options{
		Params:   defaultParams,
		Planner:  f.planner,
		Surface:  f.surface,
		Clicks:   f.clicks,
		Notifier: NotifierFunc(func(msg string) { f.messages = append(f.messages, msg) }),
		Messages: locale.Default(),
		// never advanced, so only frame 0 is drawn
		Clock:  clock.NewMock(),
		Logger: logger,
	})
	test.That(t, f.session.Start(), test.ShouldBeNil)
	t.Cleanup(func() {
		if d := f.session.Playback(); d != nil {
			d.Stop()
		}
	})
	return f
}

func (f *fixture) lastMessage() string {
	if len(f.messages) == 0 {
		return ""
	}
	return f.messages[len(f.messages)-1]
}

func TestStartDrawsInitialView(t *testing.T) {
	f := newFixture(t)
	test.That(t, f.session.State(), test.ShouldEqual, AwaitingStart)
	test.That(t, f.clicks.Connected(), test.ShouldEqual, 1)
	test.That(t, f.surface.View, test.ShouldResemble, orb.Bound{Min: orb.Point{-20, -20}, Max: orb.Point{20, 20}})
	test.That(t, f.lastMessage(), test.ShouldEqual, locale.Default().ClickStart)
}

func TestOutOfBoundsClicksAreIgnored(t *testing.T) {
	f := newFixture(t)
	f.clicks.Dispatch(capture.OutOfBounds())
	test.That(t, f.session.State(), test.ShouldEqual, AwaitingStart)
	test.That(t, f.session.Positions(), test.ShouldBeEmpty)

	f.clicks.Dispatch(capture.Click(1, 2))
	f.clicks.Dispatch(capture.OutOfBounds())
	test.That(t, f.session.State(), test.ShouldEqual, AwaitingEnd)
	test.That(t, f.session.Positions(), test.ShouldResemble, []orb.Point{{1, 2}})
	test.That(t, f.surface.Markers, test.ShouldResemble, []rendertest.Marker{{At: orb.Point{1, 2}, Label: "Start"}})
}

func TestOnlyFirstTwoClicksCount(t *testing.T) {
	f := newFixture(t)
	f.clicks.Dispatch(capture.Click(1, 2))
	f.clicks.Dispatch(capture.Click(3, 4))
	f.clicks.Dispatch(capture.Click(5, 6))

	test.That(t, f.session.State(), test.ShouldEqual, AwaitingStartYaw)
	test.That(t, f.session.Positions(), test.ShouldResemble, []orb.Point{{1, 2}, {3, 4}})
	test.That(t, f.clicks.Connected(), test.ShouldEqual, 0)
	test.That(t, f.lastMessage(), test.ShouldEqual, locale.Default().EnterYaw)
}

func TestEndToEndStraightPath(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.clicks.Dispatch(capture.Click(0, 0))
	f.clicks.Dispatch(capture.Click(10, 0))

	test.That(t, f.session.SubmitHeading(ctx, "0"), test.ShouldBeNil)
	test.That(t, f.session.State(), test.ShouldEqual, AwaitingEndYaw)
	test.That(t, f.session.SubmitHeading(ctx, "0"), test.ShouldBeNil)
	test.That(t, f.session.State(), test.ShouldEqual, Planned)

	want := planner.Query{
		Start:  geometry.Pose{X: 0, Y: 0, Yaw: 0},
		End:    geometry.Pose{X: 10, Y: 0, Yaw: 0},
		Params: defaultParams,
	}
	test.That(t, f.planner.queries, test.ShouldResemble, []planner.Query{want})
	test.That(t, *f.session.Query(), test.ShouldResemble, want)

	path := f.session.Path()
	test.That(t, path.Len(), test.ShouldEqual, 201)
	test.That(t, path.Word, test.ShouldEqual, "LSL+S")
	for _, s := range path.Samples {
		test.That(t, s.Y, test.ShouldAlmostEqual, 0)
	}

	test.That(t, f.surface.View, test.ShouldResemble, orb.Bound{Min: orb.Point{-2, -2}, Max: orb.Point{12, 2}})
	test.That(t, f.surface.Arrows, test.ShouldHaveLength, 2)
	test.That(t, f.surface.Paths, test.ShouldHaveLength, 1)
	test.That(t, f.session.Playback(), test.ShouldNotBeNil)
	test.That(t, f.session.Playback().Rendered(), test.ShouldEqual, 0)
	test.That(t, f.surface.Overlay, test.ShouldBeEmpty)

	idx, sample, ok := f.session.Nearest(orb.Point{5.01, 1})
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, idx, test.ShouldEqual, 100)
	test.That(t, sample.X, test.ShouldAlmostEqual, 5)

	// headings are done
	test.That(t, errors.Is(f.session.SetHeading(ctx, 0), ErrNotAwaitingHeading), test.ShouldBeTrue)
}

func TestInvalidHeadingReprompts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.clicks.Dispatch(capture.Click(0, 0))
	f.clicks.Dispatch(capture.Click(10, 0))

	err := f.session.SubmitHeading(ctx, "north")
	test.That(t, errors.Is(err, capture.ErrInvalidHeading), test.ShouldBeTrue)
	test.That(t, f.session.State(), test.ShouldEqual, AwaitingStartYaw)
	test.That(t, f.messages[len(f.messages)-2], test.ShouldEqual, locale.Default().InvalidNumber)
	test.That(t, f.lastMessage(), test.ShouldEqual, locale.Default().EnterYaw)

	test.That(t, f.session.SubmitHeading(ctx, "90"), test.ShouldBeNil)
	test.That(t, f.session.SubmitHeading(ctx, "nan"), test.ShouldNotBeNil)
	test.That(t, f.session.State(), test.ShouldEqual, AwaitingEndYaw)
	test.That(t, f.session.SubmitHeading(ctx, "-90"), test.ShouldBeNil)

	q := f.session.Query()
	test.That(t, q.Start.Yaw, test.ShouldAlmostEqual, geometry.DegToRad(90))
	test.That(t, q.End.Yaw, test.ShouldAlmostEqual, geometry.DegToRad(-90))
}

func TestHeadingBeforeClicks(t *testing.T) {
	f := newFixture(t)
	err := f.session.SubmitHeading(context.Background(), "0")
	test.That(t, errors.Is(err, ErrNotAwaitingHeading), test.ShouldBeTrue)
	test.That(t, f.session.State(), test.ShouldEqual, AwaitingStart)
}

func TestPlanningFailureReturnsToStart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.planner.err = errors.Wrap(planner.ErrInfeasible, "boxed in")

	f.clicks.Dispatch(capture.Click(0, 0))
	f.clicks.Dispatch(capture.Click(10, 0))
	test.That(t, f.session.SetHeading(ctx, 0), test.ShouldBeNil)
	err := f.session.SetHeading(ctx, 0)

	test.That(t, errors.Is(err, ErrPlanningFailed), test.ShouldBeTrue)
	test.That(t, errors.Is(err, planner.ErrInfeasible), test.ShouldBeTrue)
	test.That(t, f.session.State(), test.ShouldEqual, AwaitingStart)
	test.That(t, f.session.Positions(), test.ShouldBeEmpty)
	test.That(t, f.session.Path(), test.ShouldBeNil)
	test.That(t, f.clicks.Connected(), test.ShouldEqual, 1)
	test.That(t, f.lastMessage(), test.ShouldContainSubstring, "boxed in")

	// the flow works again after the failure
	f.planner.err = nil
	f.clicks.Dispatch(capture.Click(0, 0))
	f.clicks.Dispatch(capture.Click(10, 0))
	test.That(t, f.session.SetHeading(ctx, 0), test.ShouldBeNil)
	test.That(t, f.session.SetHeading(ctx, 0), test.ShouldBeNil)
	test.That(t, f.session.State(), test.ShouldEqual, Planned)
	test.That(t, f.planner.queries, test.ShouldHaveLength, 2)
}

func TestResetFromPlanned(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.clicks.Dispatch(capture.Click(0, 0))
	f.clicks.Dispatch(capture.Click(10, 0))
	test.That(t, f.session.SetHeading(ctx, 0), test.ShouldBeNil)
	test.That(t, f.session.SetHeading(ctx, 0), test.ShouldBeNil)
	driver := f.session.Playback()

	test.That(t, f.session.Reset(), test.ShouldBeNil)
	<-driver.Done()

	test.That(t, f.session.State(), test.ShouldEqual, AwaitingStart)
	test.That(t, f.session.Playback(), test.ShouldBeNil)
	test.That(t, f.session.Path(), test.ShouldBeNil)
	test.That(t, f.clicks.Connected(), test.ShouldEqual, 1)
	test.That(t, f.surface.Paths, test.ShouldBeEmpty)
	test.That(t, f.surface.View, test.ShouldResemble, orb.Bound{Min: orb.Point{-20, -20}, Max: orb.Point{20, 20}})
	_, _, ok := f.session.Nearest(orb.Point{})
	test.That(t, ok, test.ShouldBeFalse)

	f.clicks.Dispatch(capture.Click(3, 3))
	test.That(t, f.session.State(), test.ShouldEqual, AwaitingEnd)
}

func TestResetMidCapture(t *testing.T) {
	f := newFixture(t)
	f.clicks.Dispatch(capture.Click(1, 1))
	test.That(t, f.session.Reset(), test.ShouldBeNil)
	test.That(t, f.clicks.Connected(), test.ShouldEqual, 1)
	test.That(t, f.session.Positions(), test.ShouldBeEmpty)

	f.clicks.Dispatch(capture.Click(2, 2))
	test.That(t, f.session.Positions(), test.ShouldResemble, []orb.Point{{2, 2}})
}

func TestStateString(t *testing.T) {
	test.That(t, AwaitingStartYaw.String(), test.ShouldEqual, "awaiting_start_yaw")
	test.That(t, Planned.String(), test.ShouldEqual, "planned")
	test.That(t, State(42).String(), test.ShouldEqual, "state(42)")
}
