// Package session runs the pose-picking flow: two clicks, two headings, one
// planned path, then playback. A Session is owned by a single event loop and
// is not safe for concurrent use.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"pose-planner/internal/capture"
	"pose-planner/internal/geometry"
	"pose-planner/internal/locale"
	"pose-planner/internal/planner"
	"pose-planner/internal/playback"
	"pose-planner/internal/render"
)

var (
	// ErrPlanningFailed wraps the planner error after a failed query.
	ErrPlanningFailed = errors.New("planning failed")
	// ErrNotAwaitingHeading is returned when a heading arrives outside the heading states.
	ErrNotAwaitingHeading = errors.New("session is not waiting for a heading")
)

// State is a step of the pose-picking flow.
type State int

const (
	// AwaitingStart waits for the start click.
	AwaitingStart State = iota
	// AwaitingEnd waits for the end click.
	AwaitingEnd
	// AwaitingStartYaw waits for the start heading.
	AwaitingStartYaw
	// AwaitingEndYaw waits for the end heading.
	AwaitingEndYaw
	// Planned has a path and is playing or has played it.
	Planned
)

func (s State) String() string {
	switch s {
	case AwaitingStart:
		return "awaiting_start"
	case AwaitingEnd:
		return "awaiting_end"
	case AwaitingStartYaw:
		return "awaiting_start_yaw"
	case AwaitingEndYaw:
		return "awaiting_end_yaw"
	case Planned:
		return "planned"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Notifier shows a message to the operator.
type Notifier interface {
	Notify(msg string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(msg string)

// Notify implements Notifier.
func (f NotifierFunc) Notify(msg string) { f(msg) }

// Options wires a Session to its collaborators.
type Options struct {
	Params   planner.Params
	Planner  planner.Planner
	Surface  render.Surface
	Clicks   capture.ClickSource
	Notifier Notifier
	Messages locale.Messages

	// Clock and FrameInterval drive playback; Post hands frames to the event loop.
	Clock         clock.Clock
	FrameInterval time.Duration
	Post          func(func())

	Logger *zap.SugaredLogger
	// ViewLimit is the half-size of the view shown before a path exists.
	ViewLimit float64
}

// Session is the state machine behind one interactive window.
type Session struct {
	opts     Options
	logger   *zap.SugaredLogger
	renderer *render.Renderer

	state     State
	capture   capture.Capture
	conn      capture.ConnectionID
	connected bool
	startYaw  float64

	query    *planner.Query
	path     *planner.Path
	index    *planner.SampleIndex
	playback *playback.Driver
}

// New returns a session in AwaitingStart. Call Start to begin listening for clicks.
func New(opts Options) *Session {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop().Sugar()
	}
	if opts.Notifier == nil {
		opts.Notifier = NotifierFunc(func(string) {})
	}
	if opts.Messages.ClickStart == "" {
		opts.Messages = locale.Default()
	}
	if opts.ViewLimit <= 0 {
		opts.ViewLimit = 20
	}
	return &Session{
		opts:     opts,
		logger:   opts.Logger,
		renderer: render.NewRenderer(render.Labels{Start: opts.Messages.StartLabel, End: opts.Messages.EndLabel}),
	}
}

// Start draws the empty view and connects the click handler.
func (s *Session) Start() error {
	s.connect()
	s.opts.Notifier.Notify(s.opts.Messages.ClickStart)
	return s.drawEmpty()
}

func (s *Session) connect() {
	if s.connected {
		return
	}
	s.conn = s.opts.Clicks.Connect(s.handleClick)
	s.connected = true
}

func (s *Session) disconnect() {
	if !s.connected {
		return
	}
	s.opts.Clicks.Disconnect(s.conn)
	s.connected = false
}

func (s *Session) drawEmpty() error {
	surface := s.opts.Surface
	surface.Clear()
	surface.SetView(render.InitialView(s.opts.ViewLimit))
	return surface.Flush()
}

func (s *Session) handleClick(ev capture.PointerEvent) {
	if s.state != AwaitingStart && s.state != AwaitingEnd {
		return
	}
	pt, role, ok := s.capture.Record(ev)
	if !ok {
		return
	}
	s.logger.Debugw("position captured", "role", role, "x", pt.X(), "y", pt.Y())

	label := s.opts.Messages.StartLabel
	if role == capture.RoleEnd {
		label = s.opts.Messages.EndLabel
	}
	s.opts.Surface.Marker(pt, label)
	if err := s.opts.Surface.Flush(); err != nil {
		s.logger.Warnw("drawing marker", "error", err)
	}

	if role == capture.RoleStart {
		s.state = AwaitingEnd
		s.opts.Notifier.Notify(s.opts.Messages.ClickEnd)
		return
	}
	// Both positions are in; later clicks must not reach the flow.
	s.disconnect()
	s.state = AwaitingStartYaw
	s.opts.Notifier.Notify(s.opts.Messages.EnterYaw)
}

// SubmitHeading parses text as degrees and applies it. Invalid text leaves the
// state unchanged and re-prompts.
func (s *Session) SubmitHeading(ctx context.Context, text string) error {
	if s.state != AwaitingStartYaw && s.state != AwaitingEndYaw {
		return ErrNotAwaitingHeading
	}
	yaw, err := capture.ParseHeading(text)
	if err != nil {
		s.opts.Notifier.Notify(s.opts.Messages.InvalidNumber)
		s.opts.Notifier.Notify(s.opts.Messages.EnterYaw)
		return err
	}
	return s.SetHeading(ctx, yaw)
}

// SetHeading applies a heading in radians to the start pose, then to the end
// pose. The second heading plans and draws the path and starts playback.
func (s *Session) SetHeading(ctx context.Context, yaw float64) error {
	if !geometry.IsFinite(yaw) {
		return errors.Wrapf(capture.ErrInvalidHeading, "%v is not finite", yaw)
	}
	switch s.state {
	case AwaitingStartYaw:
		s.startYaw = yaw
		s.state = AwaitingEndYaw
		s.opts.Notifier.Notify(s.opts.Messages.EnterYaw)
		return nil
	case AwaitingEndYaw:
		return s.plan(ctx, yaw)
	default:
		return ErrNotAwaitingHeading
	}
}

func (s *Session) plan(ctx context.Context, endYaw float64) error {
	positions := s.capture.Positions()
	start, err := geometry.NewPose(positions[0], s.startYaw)
	if err != nil {
		return err
	}
	end, err := geometry.NewPose(positions[1], endYaw)
	if err != nil {
		return err
	}
	q := planner.NewQuery(start, end, s.opts.Params)
	s.logger.Infow("planning", "start", q.Start, "end", q.End,
		"turn_radius", q.Params.TurnRadius, "runway", q.Params.RunwayLength, "step", q.Params.StepSize)

	path, err := s.opts.Planner.Plan(ctx, q)
	if err == nil && (path == nil || path.Len() == 0) {
		err = render.ErrEmptyPath
	}
	if err != nil {
		s.logger.Warnw("planning failed", "error", err)
		s.opts.Notifier.Notify(fmt.Sprintf(s.opts.Messages.PlanningFailed, err))
		s.rearm()
		if derr := s.drawEmpty(); derr != nil {
			s.logger.Warnw("clearing after failed plan", "error", derr)
		}
		return fmt.Errorf("%w: %w", ErrPlanningFailed, err)
	}

	s.query = &q
	s.path = path
	s.index = planner.NewSampleIndex(path)
	s.state = Planned
	s.logger.Infow("planned", "word", path.Word, "length", path.Length, "samples", path.Len())

	if _, err := s.renderer.Draw(s.opts.Surface, path); err != nil {
		return errors.Wrap(err, "drawing path")
	}
	s.playback = playback.NewDriver(playback.FromPath(path), s.opts.Surface, playback.Options{
		Clock:    s.opts.Clock,
		Interval: s.opts.FrameInterval,
		Post:     s.opts.Post,
		Logger:   s.logger,
	})
	s.playback.Start()
	s.opts.Notifier.Notify(fmt.Sprintf(s.opts.Messages.Planned, path.Word, path.Length, path.Len()))
	s.opts.Notifier.Notify(s.opts.Messages.ResetHint)
	return nil
}

// rearm forgets the captured poses and listens for a new start click.
func (s *Session) rearm() {
	if s.playback != nil {
		s.playback.Stop()
	}
	s.capture.Reset()
	s.startYaw = 0
	s.query, s.path, s.index, s.playback = nil, nil, nil, nil
	s.state = AwaitingStart
	s.disconnect()
	s.connect()
}

// Reset stops any playback, clears the drawing and waits for a new start click.
func (s *Session) Reset() error {
	s.rearm()
	s.opts.Notifier.Notify(s.opts.Messages.ClickStart)
	s.logger.Debug("session reset")
	return s.drawEmpty()
}

// State returns the current step.
func (s *Session) State() State {
	return s.state
}

// Positions returns the captured click positions in order.
func (s *Session) Positions() []orb.Point {
	return s.capture.Positions()
}

// Query returns the last planned query, or nil.
func (s *Session) Query() *planner.Query {
	return s.query
}

// Path returns the planned path, or nil.
func (s *Session) Path() *planner.Path {
	return s.path
}

// Playback returns the active playback driver, or nil.
func (s *Session) Playback() *playback.Driver {
	return s.playback
}

// Nearest returns the path sample closest to p.
func (s *Session) Nearest(p orb.Point) (int, planner.Sample, bool) {
	if s.index == nil {
		return -1, planner.Sample{}, false
	}
	return s.index.Nearest(p)
}
