package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"pose-planner/internal/anim"
	"pose-planner/internal/figure"
	"pose-planner/internal/geometry"
	"pose-planner/internal/planner"
	"pose-planner/internal/playback"
	"pose-planner/internal/render"
)

var (
	headlineColor = color.New(color.FgGreen, color.Bold)
	failColor     = color.New(color.FgRed, color.Bold)
	statusColor   = color.New(color.FgCyan)
	ruleColor     = color.New(color.Faint)
)

const rule = "========================================"

// exportOptions are the output flags shared by the headless commands.
type exportOptions struct {
	png     string
	gif     string
	geojson string
	probes  []string
}

func (o *exportOptions) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&o.png, "png", "", "save the final figure; .svg and .pdf also work")
	flags.StringVar(&o.gif, "gif", "", "save the playback as an animated GIF")
	flags.StringVar(&o.geojson, "geojson", "", "save the path and both poses as GeoJSON")
	flags.StringArrayVar(&o.probes, "probe", nil, "report the sample nearest to x,y (repeatable)")
}

// probePoints parses every --probe value up front so bad input fails early.
func (o *exportOptions) probePoints() ([]orb.Point, error) {
	pts := make([]orb.Point, 0, len(o.probes))
	for _, s := range o.probes {
		vals, err := parseFloats(s, 2)
		if err != nil {
			return nil, errors.Wrapf(err, "--probe %q", s)
		}
		pts = append(pts, orb.Point{vals[0], vals[1]})
	}
	return pts, nil
}

// parseFloats parses exactly n comma separated numbers.
func parseFloats(s string, n int) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, errors.Errorf("want %d comma separated numbers, got %d", n, len(parts))
	}
	vals := make([]float64, n)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil || !geometry.IsFinite(v) {
			return nil, errors.Errorf("%q is not a finite number", p)
		}
		vals[i] = v
	}
	return vals, nil
}

// parsePose parses "x,y,degrees".
func parsePose(s string) (geometry.Pose, error) {
	vals, err := parseFloats(s, 3)
	if err != nil {
		return geometry.Pose{}, err
	}
	return geometry.NewPose(orb.Point{vals[0], vals[1]}, geometry.DegToRad(vals[2]))
}

// finalFigure draws path the way it looks once playback has finished.
func finalFigure(title string, labels render.Labels, path *planner.Path) (*figure.Figure, error) {
	fig := figure.New(title)
	if _, err := render.NewRenderer(labels).Draw(fig, path); err != nil {
		return nil, err
	}
	fig.Trace(path.LineString())
	return fig, fig.Flush()
}

// export writes every requested output for one planned path. fig is the
// drawing to save as the figure; nil draws a fresh one.
func (e *env) export(out io.Writer, opts *exportOptions, q planner.Query, path *planner.Path, fig *figure.Figure) error {
	labels := render.Labels{Start: e.messages.StartLabel, End: e.messages.EndLabel}
	var errs error

	if opts.png != "" {
		if fig == nil {
			var err error
			if fig, err = finalFigure(path.Word, labels, path); err != nil {
				return err
			}
		}
		if err := fig.Save(opts.png); err != nil {
			errs = multierr.Append(errs, err)
		} else {
			statusColor.Fprintf(out, "figure written to %s\n", opts.png)
		}
	}

	if opts.gif != "" {
		err := e.writeGIF(opts.gif, labels, path)
		errs = multierr.Append(errs, err)
		if err == nil {
			statusColor.Fprintf(out, "animation written to %s\n", opts.gif)
		}
	}

	if opts.geojson != "" {
		err := writeFile(opts.geojson, func(w io.Writer) error { return planner.WriteGeoJSON(w, q, path) })
		errs = multierr.Append(errs, err)
		if err == nil {
			statusColor.Fprintf(out, "path written to %s\n", opts.geojson)
		}
	}

	probes, err := opts.probePoints()
	if err != nil {
		return multierr.Append(errs, err)
	}
	if len(probes) > 0 {
		idx := planner.NewSampleIndex(path)
		for _, p := range probes {
			if i, s, ok := idx.Nearest(p); ok {
				fmt.Fprintf(out, e.messages.Probe+"\n", i, s.X, s.Y, geometry.RadToDeg(s.Yaw))
			}
		}
	}
	return errs
}

func (e *env) writeGIF(name string, labels render.Labels, path *planner.Path) error {
	canvas := anim.NewCanvas(anim.DefaultSize, anim.DefaultSize)
	if _, err := render.NewRenderer(labels).Draw(canvas, path); err != nil {
		return err
	}
	return writeFile(name, func(w io.Writer) error {
		return anim.EncodeGIF(w, canvas, playback.FromPath(path), anim.GIFOptions{
			MaxFrames: e.cfg.GIFMaxFrames,
			Interval:  e.cfg.FrameInterval,
		})
	})
}

// writeFile creates name and closes it, keeping the first error.
func writeFile(name string, write func(io.Writer) error) (err error) {
	f, err := os.Create(name)
	if err != nil {
		return errors.Wrap(err, "creating output")
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()
	return write(f)
}

// headline prints the localized one-line summary of a path.
func (e *env) headline(out io.Writer, path *planner.Path) {
	headlineColor.Fprintf(out, e.messages.Planned+"\n", path.Word, path.Length, path.Len())
}

// report prints both poses and a preview of the first and last samples.
func (e *env) report(out io.Writer, q planner.Query, path *planner.Path) {
	ruleColor.Fprintln(out, rule)
	fmt.Fprintf(out, "   %s: (%.3f, %.3f) %.1f°\n", e.messages.StartLabel, q.Start.X, q.Start.Y, geometry.RadToDeg(q.Start.Yaw))
	fmt.Fprintf(out, "   %s: (%.3f, %.3f) %.1f°\n", e.messages.EndLabel, q.End.X, q.End.Y, geometry.RadToDeg(q.End.Yaw))
	fmt.Fprintln(out, "   first/last 3 samples:")
	n := path.Len()
	for i := 0; i < n && i < 3; i++ {
		printSample(out, i, path.Samples[i])
	}
	if n > 6 {
		fmt.Fprintf(out, "      ... (%d intermediate samples)\n", n-6)
	}
	for i := max(3, n-3); i < n; i++ {
		printSample(out, i, path.Samples[i])
	}
	ruleColor.Fprintln(out, rule)
}

func printSample(out io.Writer, i int, s planner.Sample) {
	fmt.Fprintf(out, "      %d: (%.3f, %.3f) %.1f°\n", i, s.X, s.Y, geometry.RadToDeg(s.Yaw))
}
