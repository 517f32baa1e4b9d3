package tui

import (
	"context"
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"

	"pose-planner/internal/capture"
	"pose-planner/internal/geometry"
	"pose-planner/internal/planner"
	"pose-planner/internal/session"
)

// Controller is the part of a session the event loop drives.
type Controller interface {
	State() session.State
	SubmitHeading(ctx context.Context, text string) error
	Reset() error
	Nearest(p orb.Point) (int, planner.Sample, bool)
}

// quitEvent asks the loop to return.
type quitEvent struct{}

// Run polls the screen until the operator quits, ctx ends or the screen is
// finalized. Clicks go to the connected handlers, typed text to c. A Screen
// runs at most one loop.
func (s *Screen) Run(ctx context.Context, c Controller) error {
	defer s.doneOnce.Do(func() { close(s.done) })

	stop := context.AfterFunc(ctx, func() {
		s.screen.PostEvent(tcell.NewEventInterrupt(quitEvent{}))
	})
	defer stop()

	s.syncEditing(c)
	s.draw()
	s.screen.Show()
	for {
		ev := s.screen.PollEvent()
		if ev == nil {
			return nil
		}
		switch ev := ev.(type) {
		case *tcell.EventResize:
			s.screen.Sync()
		case *tcell.EventInterrupt:
			switch data := ev.Data().(type) {
			case quitEvent:
				return nil
			case func():
				data()
			}
		case *tcell.EventMouse:
			s.handleMouse(ev, c)
		case *tcell.EventKey:
			if quit := s.handleKey(ctx, ev, c); quit {
				return nil
			}
		}
		s.syncEditing(c)
		s.draw()
		s.screen.Show()
	}
}

func (s *Screen) syncEditing(c Controller) {
	st := c.State()
	editing := st == session.AwaitingStartYaw || st == session.AwaitingEndYaw
	if !editing {
		s.input = nil
	}
	s.editing = editing
}

func (s *Screen) handleMouse(ev *tcell.EventMouse, c Controller) {
	col, row := ev.Position()
	pressed := ev.Buttons()&tcell.Button1 != 0 && s.buttons&tcell.Button1 == 0
	s.buttons = ev.Buttons()
	if pressed {
		s.Dispatch(s.pointerAt(col, row))
		return
	}
	if c.State() != session.Planned {
		return
	}
	p, ok := s.toWorld(col, row)
	if !ok {
		return
	}
	if idx, sample, ok := c.Nearest(p); ok {
		s.probe = fmt.Sprintf(s.messages.Probe, idx, sample.X, sample.Y, geometry.RadToDeg(sample.Yaw))
	}
}

// handleKey reports whether the loop should exit.
func (s *Screen) handleKey(ctx context.Context, ev *tcell.EventKey, c Controller) bool {
	switch ev.Key() {
	case tcell.KeyCtrlC, tcell.KeyEscape:
		return true
	case tcell.KeyEnter:
		if !s.editing {
			return false
		}
		text := string(s.input)
		s.input = nil
		err := c.SubmitHeading(ctx, text)
		if err != nil && !errors.Is(err, capture.ErrInvalidHeading) {
			s.logger.Warnw("submitting heading", "error", err)
		}
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(s.input) > 0 {
			s.input = s.input[:len(s.input)-1]
		}
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return true
		case 'r':
			if err := c.Reset(); err != nil {
				s.logger.Warnw("reset", "error", err)
			}
		default:
			if s.editing {
				s.input = append(s.input, ev.Rune())
			}
		}
	}
	return false
}
