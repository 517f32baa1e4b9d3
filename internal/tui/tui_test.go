package tui

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gdamore/tcell/v2"
	"github.com/paulmach/orb"
	"go.viam.com/test"

	"pose-planner/internal/geometry"
	"pose-planner/internal/locale"
	"pose-planner/internal/logging"
	"pose-planner/internal/planner"
	"pose-planner/internal/session"
)

// 41x21 plot cells over the default ±20 view: one unit per column, two per row.
const (
	simWidth  = 41
	simHeight = 23
)

type harness struct {
	sim     tcell.SimulationScreen
	screen  *Screen
	session *session.Session
	errc    chan error
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger, _ := logging.NewTestLogger(t)
	sim := tcell.NewSimulationScreen("UTF-8")
	test.That(t, sim.Init(), test.ShouldBeNil)
	sim.SetSize(simWidth, simHeight)
	sim.EnableMouse()
	t.Cleanup(sim.Fini)

	scr := New(sim, locale.Default(), logger)
	sess := session.New(session.Options{
		Params:   planner.Params{TurnRadius: 4.5, RunwayLength: 5, StepSize: 0.05},
		Planner:  planner.NewDubins(logger),
		Surface:  scr,
		Clicks:   scr,
		Notifier: scr,
		Messages: locale.Default(),
		Clock:    clock.NewMock(),
		Post:     scr.Post,
		Logger:   logger,
	})
	test.That(t, sess.Start(), test.ShouldBeNil)
	t.Cleanup(func() {
		if d := sess.Playback(); d != nil {
			d.Stop()
		}
	})
	return &harness{sim: sim, screen: scr, session: sess, errc: make(chan error, 1)}
}

func (h *harness) run(ctx context.Context) {
	go func() { h.errc <- h.screen.Run(ctx, h.session) }()
}

func (h *harness) wait(t *testing.T) error {
	t.Helper()
	select {
	case err := <-h.errc:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("event loop did not exit")
		return nil
	}
}

func (h *harness) click(col, row int) {
	h.sim.InjectMouse(col, row, tcell.Button1, tcell.ModNone)
	h.sim.InjectMouse(col, row, tcell.ButtonNone, tcell.ModNone)
}

func (h *harness) typeLine(text string) {
	for _, r := range text {
		h.sim.InjectKey(tcell.KeyRune, r, tcell.ModNone)
	}
	h.sim.InjectKey(tcell.KeyEnter, 0, tcell.ModNone)
}

func (h *harness) quit() {
	h.sim.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)
}

func contains(sim tcell.SimulationScreen, r rune) bool {
	cells, _, _ := sim.GetContents()
	for _, c := range cells {
		if len(c.Runes) > 0 && c.Runes[0] == r {
			return true
		}
	}
	return false
}

func TestCellMapping(t *testing.T) {
	h := newHarness(t)
	p, ok := h.screen.toWorld(20, 10)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, p, test.ShouldResemble, orb.Point{0, 0})

	p, ok = h.screen.toWorld(0, 0)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, p, test.ShouldResemble, orb.Point{-20, 20})

	col, row, ok := h.screen.toCell(orb.Point{10, -4})
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, col, test.ShouldEqual, 30)
	test.That(t, row, test.ShouldEqual, 12)

	// footer rows are outside the plot
	_, ok = h.screen.toWorld(5, simHeight-1)
	test.That(t, ok, test.ShouldBeFalse)
	test.That(t, h.screen.pointerAt(5, simHeight-1).InBounds, test.ShouldBeFalse)
}

func TestBresenham(t *testing.T) {
	var cells [][2]int
	bresenham(0, 0, 3, 1, func(x, y int) { cells = append(cells, [2]int{x, y}) })
	test.That(t, cells[0], test.ShouldResemble, [2]int{0, 0})
	test.That(t, cells[len(cells)-1], test.ShouldResemble, [2]int{3, 1})
	test.That(t, cells, test.ShouldHaveLength, 4)
}

func TestRunPlansFromClicksAndTypedHeadings(t *testing.T) {
	h := newHarness(t)
	h.run(context.Background())

	h.click(20, simHeight-1) // footer, ignored
	h.click(20, 10)
	h.click(30, 10)
	h.typeLine("0")
	h.typeLine("0")
	h.sim.InjectMouse(25, 10, tcell.ButtonNone, tcell.ModNone)
	h.quit()
	test.That(t, h.wait(t), test.ShouldBeNil)

	test.That(t, h.session.State(), test.ShouldEqual, session.Planned)
	q := h.session.Query()
	test.That(t, q.Start, test.ShouldResemble, geometry.Pose{X: 0, Y: 0, Yaw: 0})
	test.That(t, q.End, test.ShouldResemble, geometry.Pose{X: 10, Y: 0, Yaw: 0})
	test.That(t, h.session.Path().Word, test.ShouldEqual, "LSL+S")
	test.That(t, h.screen.probe, test.ShouldContainSubstring, "sample 100")

	test.That(t, contains(h.sim, pathRune), test.ShouldBeTrue)
	test.That(t, contains(h.sim, markerRune), test.ShouldBeTrue)
	test.That(t, contains(h.sim, arrowRune), test.ShouldBeTrue)
}

func TestRunInvalidHeadingKeepsPrompting(t *testing.T) {
	h := newHarness(t)
	h.run(context.Background())

	h.click(20, 10)
	h.click(30, 10)
	h.typeLine("east")
	h.quit()
	test.That(t, h.wait(t), test.ShouldBeNil)
	test.That(t, h.session.State(), test.ShouldEqual, session.AwaitingStartYaw)
	test.That(t, h.screen.input, test.ShouldBeEmpty)
	test.That(t, h.session.Query(), test.ShouldBeNil)
}

func TestRunResetKey(t *testing.T) {
	h := newHarness(t)
	h.run(context.Background())

	h.click(20, 10)
	h.sim.InjectKey(tcell.KeyRune, 'r', tcell.ModNone)
	h.click(10, 5)
	h.quit()
	test.That(t, h.wait(t), test.ShouldBeNil)
	test.That(t, h.session.State(), test.ShouldEqual, session.AwaitingEnd)
	test.That(t, h.session.Positions(), test.ShouldResemble, []orb.Point{{-10, 10}})
}

func TestPostRunsOnLoop(t *testing.T) {
	h := newHarness(t)
	h.run(context.Background())

	ran := make(chan struct{})
	go h.screen.Post(func() { close(ran) })
	select {
	case <-ran:
	case <-time.After(5 * time.Second):
		t.Fatal("posted function never ran")
	}
	h.quit()
	test.That(t, h.wait(t), test.ShouldBeNil)
}

func TestRunStopsWithContext(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	h.run(ctx)
	cancel()
	test.That(t, h.wait(t), test.ShouldBeNil)
}
