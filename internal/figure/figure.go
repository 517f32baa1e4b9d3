// Package figure renders a planned path as a static plot that can be saved
// as PNG, SVG or PDF.
package figure

import (
	"image/color"
	"io"
	"path/filepath"
	"strings"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"pose-planner/internal/render"
)

// DefaultSize is the edge length of a saved figure.
const DefaultSize = 6 * vg.Inch

var (
	pathColor   = color.RGBA{R: 220, A: 255}
	traceColor  = color.RGBA{G: 160, A: 255}
	arrowColor  = color.RGBA{R: 30, G: 90, B: 200, A: 255}
	markerColor = color.Black
)

// Figure collects drawing commands into gonum plotters.
type Figure struct {
	Title string

	view    orb.Bound
	items   []plot.Plotter
	overlay plot.Plotter
	err     error
}

var _ render.Surface = (*Figure)(nil)

// New returns an empty figure.
func New(title string) *Figure {
	return &Figure{Title: title, view: render.InitialView(20)}
}

func xys(ls orb.LineString) plotter.XYs {
	pts := make(plotter.XYs, len(ls))
	for i, p := range ls {
		pts[i].X, pts[i].Y = p.X(), p.Y()
	}
	return pts
}

// Clear implements render.Surface.
func (f *Figure) Clear() {
	f.items, f.overlay, f.err = nil, nil, nil
}

// SetView implements render.Surface.
func (f *Figure) SetView(view orb.Bound) {
	f.view = view
}

// Marker implements render.Surface.
func (f *Figure) Marker(p orb.Point, label string) {
	pts := plotter.XYs{{X: p.X(), Y: p.Y()}}
	sc, err := plotter.NewScatter(pts)
	if err != nil {
		f.err = multierr.Append(f.err, errors.Wrap(err, "marker"))
		return
	}
	sc.GlyphStyle.Shape = draw.SquareGlyph{}
	sc.GlyphStyle.Color = markerColor
	sc.GlyphStyle.Radius = vg.Points(3)
	f.items = append(f.items, sc)

	if label == "" {
		return
	}
	lb, err := plotter.NewLabels(plotter.XYLabels{XYs: pts, Labels: []string{label}})
	if err != nil {
		f.err = multierr.Append(f.err, errors.Wrap(err, "marker label"))
		return
	}
	lb.Offset = vg.Point{X: vg.Points(6), Y: vg.Points(4)}
	f.items = append(f.items, lb)
}

// Arrow implements render.Surface.
func (f *Figure) Arrow(p orb.Point, yaw float64, style render.ArrowStyle) {
	shape := render.ArrowShape(p, yaw, style)
	shaft, err := plotter.NewLine(xys(shape.Shaft))
	if err != nil {
		f.err = multierr.Append(f.err, errors.Wrap(err, "arrow shaft"))
		return
	}
	shaft.Color = arrowColor
	shaft.Width = vg.Points(2)

	head, err := plotter.NewPolygon(xys(orb.LineString(shape.Head)))
	if err != nil {
		f.err = multierr.Append(f.err, errors.Wrap(err, "arrow head"))
		return
	}
	head.Color = arrowColor
	head.LineStyle.Color = arrowColor
	f.items = append(f.items, shaft, head)
}

// Path implements render.Surface.
func (f *Figure) Path(ls orb.LineString) {
	if len(ls) == 0 {
		return
	}
	line, err := plotter.NewLine(xys(ls))
	if err != nil {
		f.err = multierr.Append(f.err, errors.Wrap(err, "path"))
		return
	}
	line.Color = pathColor
	line.Width = vg.Points(1)
	f.items = append(f.items, line)
}

// Trace implements render.Surface.
func (f *Figure) Trace(ls orb.LineString) {
	f.overlay = nil
	if len(ls) < 2 {
		return
	}
	line, err := plotter.NewLine(xys(ls))
	if err != nil {
		f.err = multierr.Append(f.err, errors.Wrap(err, "trace"))
		return
	}
	line.Color = traceColor
	line.Width = vg.Points(2)
	f.overlay = line
}

// Flush implements render.Surface. It reports any plotter that failed to build
// since the last Clear.
func (f *Figure) Flush() error {
	return f.err
}

// Items returns the number of plotters drawn, overlay included.
func (f *Figure) Items() int {
	if f.overlay != nil {
		return len(f.items) + 1
	}
	return len(f.items)
}

// Plot assembles the gonum plot with the current view as axis limits.
func (f *Figure) Plot() *plot.Plot {
	p := plot.New()
	p.Title.Text = f.Title
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"
	p.Add(plotter.NewGrid())
	p.Add(f.items...)
	if f.overlay != nil {
		p.Add(f.overlay)
	}
	// Add widens the axes to the data, so the view is applied last.
	p.X.Min, p.X.Max = f.view.Min.X(), f.view.Max.X()
	p.Y.Min, p.Y.Max = f.view.Min.Y(), f.view.Max.Y()
	return p
}

// Save writes the figure to path; the extension picks the format.
func (f *Figure) Save(path string) error {
	if f.err != nil {
		return f.err
	}
	return errors.Wrapf(f.Plot().Save(DefaultSize, DefaultSize, path), "saving figure %s", path)
}

// WriteTo writes the figure in format ("png", "svg", "pdf", ...).
func (f *Figure) WriteTo(w io.Writer, format string) error {
	if f.err != nil {
		return f.err
	}
	wt, err := f.Plot().WriterTo(DefaultSize, DefaultSize, strings.TrimPrefix(format, "."))
	if err != nil {
		return errors.Wrapf(err, "figure format %q", format)
	}
	_, err = wt.WriteTo(w)
	return err
}

// Format returns the format implied by a file name.
func Format(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}
