// Package tui is the interactive terminal front end. Screen is a render.Surface
// and a click source backed by a tcell screen; Run drives a session from the
// tcell event loop.
package tui

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/simplify"
	"go.uber.org/zap"

	"pose-planner/internal/capture"
	"pose-planner/internal/locale"
	"pose-planner/internal/render"
)

// footerRows are the status and input lines below the plot.
const footerRows = 2

const (
	pathRune   = '·'
	traceRune  = '•'
	arrowRune  = '+'
	markerRune = '■'
)

var (
	styleAxis   = tcell.StyleDefault.Foreground(tcell.ColorGray)
	stylePath   = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleTrace  = tcell.StyleDefault.Foreground(tcell.ColorLime).Bold(true)
	styleArrow  = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleMarker = tcell.StyleDefault.Foreground(tcell.ColorAqua).Bold(true)
	styleStatus = tcell.StyleDefault.Reverse(true)
)

type marker struct {
	at    orb.Point
	label string
}

// Screen keeps the current drawing and renders it to a tcell screen on Flush.
// All methods must run on the event loop goroutine except Post.
type Screen struct {
	capture.Dispatcher

	screen   tcell.Screen
	messages locale.Messages
	logger   *zap.SugaredLogger

	view    orb.Bound
	markers []marker
	arrows  []render.Shape
	path    orb.LineString
	trace   orb.LineString

	status  string
	probe   string
	input   []rune
	editing bool

	buttons  tcell.ButtonMask
	done     chan struct{}
	doneOnce sync.Once
}

var _ render.Surface = (*Screen)(nil)

// New wraps an initialized tcell screen.
func New(screen tcell.Screen, messages locale.Messages, logger *zap.SugaredLogger) *Screen {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Screen{
		screen:   screen,
		messages: messages,
		logger:   logger,
		view:     render.InitialView(20),
		done:     make(chan struct{}),
	}
}

// Clear implements render.Surface.
func (s *Screen) Clear() {
	s.markers, s.arrows, s.path, s.trace = nil, nil, nil, nil
	s.probe = ""
}

// SetView implements render.Surface.
func (s *Screen) SetView(view orb.Bound) {
	s.view = view
}

// Marker implements render.Surface.
func (s *Screen) Marker(p orb.Point, label string) {
	s.markers = append(s.markers, marker{at: p, label: label})
}

// Arrow implements render.Surface.
func (s *Screen) Arrow(p orb.Point, yaw float64, style render.ArrowStyle) {
	s.arrows = append(s.arrows, render.ArrowShape(p, yaw, style))
}

// Path implements render.Surface. The line is thinned to the cell resolution
// when it is drawn.
func (s *Screen) Path(ls orb.LineString) {
	s.path = ls.Clone()
}

// Trace implements render.Surface.
func (s *Screen) Trace(ls orb.LineString) {
	s.trace = ls
}

// Flush implements render.Surface.
func (s *Screen) Flush() error {
	s.draw()
	s.screen.Show()
	return nil
}

// Notify shows msg on the status line.
func (s *Screen) Notify(msg string) {
	s.status = msg
	s.draw()
	s.screen.Show()
}

// Post runs f on the event loop. It may be called from any goroutine and
// gives up once the loop has exited.
func (s *Screen) Post(f func()) {
	ev := tcell.NewEventInterrupt(f)
	for s.screen.PostEvent(ev) != nil {
		select {
		case <-s.done:
			return
		case <-time.After(time.Millisecond):
		}
	}
}

func (s *Screen) plotSize() (int, int) {
	w, h := s.screen.Size()
	return w, h - footerRows
}

// scale returns world units per cell along each axis.
func (s *Screen) scale() (float64, float64, bool) {
	w, h := s.plotSize()
	if w < 2 || h < 2 {
		return 0, 0, false
	}
	return (s.view.Max.X() - s.view.Min.X()) / float64(w-1),
		(s.view.Max.Y() - s.view.Min.Y()) / float64(h-1), true
}

// toCell maps a world point to a plot cell. Row 0 is the top of the view.
func (s *Screen) toCell(p orb.Point) (int, int, bool) {
	sx, sy, ok := s.scale()
	if !ok || sx <= 0 || sy <= 0 {
		return 0, 0, false
	}
	col := int(math.Round((p.X() - s.view.Min.X()) / sx))
	row := int(math.Round((s.view.Max.Y() - p.Y()) / sy))
	w, h := s.plotSize()
	return col, row, col >= 0 && col < w && row >= 0 && row < h
}

// toWorld maps a cell to the world point at its center. Cells outside the
// plot have no world position.
func (s *Screen) toWorld(col, row int) (orb.Point, bool) {
	w, h := s.plotSize()
	sx, sy, ok := s.scale()
	if !ok || col < 0 || col >= w || row < 0 || row >= h {
		return orb.Point{}, false
	}
	return orb.Point{s.view.Min.X() + float64(col)*sx, s.view.Max.Y() - float64(row)*sy}, true
}

func (s *Screen) pointerAt(col, row int) capture.PointerEvent {
	p, ok := s.toWorld(col, row)
	if !ok {
		return capture.OutOfBounds()
	}
	return capture.Click(p.X(), p.Y())
}

func (s *Screen) draw() {
	s.screen.Clear()
	w, h := s.plotSize()
	if w < 2 || h < 2 {
		return
	}

	s.text(0, 0, fmt.Sprintf("x [%.1f, %.1f]  y [%.1f, %.1f]",
		s.view.Min.X(), s.view.Max.X(), s.view.Min.Y(), s.view.Max.Y()), styleAxis)

	if len(s.path) > 0 {
		sx, sy, _ := s.scale()
		thin := simplify.DouglasPeucker(math.Min(sx, sy) / 2).Simplify(s.path.Clone()).(orb.LineString)
		s.line(thin, pathRune, stylePath)
	}
	s.line(s.trace, traceRune, styleTrace)
	for _, a := range s.arrows {
		s.line(a.Shaft, arrowRune, styleArrow)
		s.line(orb.LineString(a.Head), arrowRune, styleArrow)
	}
	for _, m := range s.markers {
		col, row, ok := s.toCell(m.at)
		if !ok {
			continue
		}
		s.screen.SetContent(col, row, markerRune, nil, styleMarker)
		s.text(col+2, row, m.label, styleMarker)
	}

	s.text(0, h, s.status, styleStatus)
	footer := s.probe
	if s.editing {
		footer = s.messages.EnterYaw + string(s.input)
	}
	s.text(0, h+1, footer, tcell.StyleDefault)
	if s.editing {
		s.screen.ShowCursor(len([]rune(footer)), h+1)
	} else {
		s.screen.HideCursor()
	}
}

func (s *Screen) text(col, row int, str string, style tcell.Style) {
	w, _ := s.screen.Size()
	for _, r := range str {
		if col >= w {
			return
		}
		s.screen.SetContent(col, row, r, nil, style)
		col++
	}
}

// line draws every cell crossed by ls.
func (s *Screen) line(ls orb.LineString, r rune, style tcell.Style) {
	if sx, sy, ok := s.scale(); !ok || sx <= 0 || sy <= 0 {
		return
	}
	for i := range ls {
		c1, r1, _ := s.toCell(ls[i])
		if i == 0 {
			s.plot(c1, r1, r, style)
			continue
		}
		c0, r0, _ := s.toCell(ls[i-1])
		bresenham(c0, r0, c1, r1, func(c, rr int) { s.plot(c, rr, r, style) })
	}
}

func (s *Screen) plot(col, row int, r rune, style tcell.Style) {
	w, h := s.plotSize()
	if col < 0 || col >= w || row < 0 || row >= h {
		return
	}
	s.screen.SetContent(col, row, r, nil, style)
}

// bresenham calls visit for every cell on the segment from (x0, y0) to (x1, y1).
func bresenham(x0, y0, x1, y1 int, visit func(x, y int)) {
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	errv := dx + dy
	for {
		visit(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * errv
		if e2 >= dy {
			errv += dy
			x0 += sx
		}
		if e2 <= dx {
			errv += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
