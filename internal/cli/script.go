package cli

import (
	"context"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"pose-planner/internal/capture"
	"pose-planner/internal/figure"
	"pose-planner/internal/geometry"
	"pose-planner/internal/session"
)

// ErrScriptEnded is returned when the script stops while a heading is still expected.
var ErrScriptEnded = errors.New("script ended before both headings were given")

func newScriptCmd(opts *rootOptions) *cobra.Command {
	var exports exportOptions
	cmd := &cobra.Command{
		Use:   "script [file|-]",
		Short: "Replay clicks and headings from a script",
		Long: `Replays an interactive session without a terminal UI. Each line is one of:

  click X Y     a click at world position (X, Y)
  click -       a click outside the plot
  reset         start over
  # ...         a comment

Once both positions are clicked, the next lines are read as headings in degrees,
re-prompting on invalid input. Reads standard input when no file or "-" is given.`,
		Args:    cobra.MaximumNArgs(1),
		GroupID: groupHeadless,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			e, err := opts.setup(cmd, os.Stderr)
			if err != nil {
				return err
			}
			defer e.close(&err)

			in := cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return errors.Wrap(err, "opening script")
				}
				defer f.Close()
				in = f
			}
			return e.runScript(cmd.Context(), in, cmd.OutOrStdout(), &exports)
		},
	}
	exports.register(cmd)
	return cmd
}

// frameLoop runs posted playback frames on the goroutine that waits.
type frameLoop struct {
	posts chan func()
	quit  chan struct{}
}

func newFrameLoop() *frameLoop {
	return &frameLoop{posts: make(chan func()), quit: make(chan struct{})}
}

// Post hands f to the waiting goroutine. It returns without running f once
// the loop has been closed.
func (l *frameLoop) Post(f func()) {
	select {
	case l.posts <- f:
	case <-l.quit:
	}
}

// wait runs posted frames until done is closed.
func (l *frameLoop) wait(ctx context.Context, done <-chan struct{}) error {
	for {
		select {
		case f := <-l.posts:
			f()
		case <-done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (l *frameLoop) close() {
	close(l.quit)
}

// consoleNotifier prints session messages, leaving the heading prompt to the Prompter.
type consoleNotifier struct {
	out  io.Writer
	skip map[string]bool
}

func (n consoleNotifier) Notify(msg string) {
	if n.skip[msg] {
		return
	}
	statusColor.Fprintln(n.out, msg)
}

func (e *env) runScript(ctx context.Context, in io.Reader, out io.Writer, exports *exportOptions) error {
	if _, err := exports.probePoints(); err != nil {
		return err
	}

	clicks := &capture.Dispatcher{}
	fig := figure.New("")
	loop := newFrameLoop()
	defer loop.close()

	sess := session.New(session.Options{
		Params:  e.cfg.Params(),
		Planner: e.planner(),
		Surface: fig,
		Clicks:  clicks,
		Notifier: consoleNotifier{out: out, skip: map[string]bool{
			e.messages.EnterYaw:      true,
			e.messages.InvalidNumber: true,
			e.messages.ResetHint:     true,
		}},
		Messages:      e.messages,
		FrameInterval: e.cfg.FrameInterval,
		Post:          loop.Post,
		Logger:        e.logger,
		ViewLimit:     e.cfg.ViewLimit,
	})
	if err := sess.Start(); err != nil {
		return err
	}
	defer func() {
		if d := sess.Playback(); d != nil {
			d.Stop()
		}
	}()

	prompter := capture.NewPrompter(in, out, e.messages)
	var failure error
	for lineNo := 0; ; {
		if st := sess.State(); st == session.AwaitingStartYaw || st == session.AwaitingEndYaw {
			yaw, err := prompter.ReadHeading(ctx)
			if errors.Is(err, capture.ErrInputClosed) {
				return multierr.Append(failure, ErrScriptEnded)
			}
			if err != nil {
				return err
			}
			err = sess.SetHeading(ctx, yaw)
			switch {
			case errors.Is(err, session.ErrPlanningFailed):
				failColor.Fprintln(out, err)
				failure = err
				continue
			case err != nil:
				return err
			}
			if sess.State() == session.Planned {
				failure = nil
				if err := e.finishPlan(ctx, out, sess, fig, loop, exports); err != nil {
					return err
				}
			}
			continue
		}

		line, err := prompter.ReadLine()
		if err == io.EOF {
			return failure
		}
		if err != nil {
			return errors.Wrap(err, "reading script")
		}
		lineNo++
		if err := runScriptLine(sess, clicks, line); err != nil {
			return errors.Wrapf(err, "script line %d", lineNo)
		}
	}
}

// finishPlan waits for playback to reach the last frame, then reports and exports.
func (e *env) finishPlan(ctx context.Context, out io.Writer, sess *session.Session, fig *figure.Figure, loop *frameLoop, exports *exportOptions) error {
	if err := loop.wait(ctx, sess.Playback().Done()); err != nil {
		return err
	}
	e.logger.Debugw("playback complete", "frames", sess.Playback().Rendered()+1)
	fig.Title = sess.Path().Word
	e.report(out, *sess.Query(), sess.Path())
	return e.export(out, exports, *sess.Query(), sess.Path(), fig)
}

func runScriptLine(sess *session.Session, clicks *capture.Dispatcher, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return nil
	}
	switch fields[0] {
	case "reset":
		return sess.Reset()
	case "click":
		if len(fields) == 2 && fields[1] == "-" {
			clicks.Dispatch(capture.OutOfBounds())
			return nil
		}
		if len(fields) != 3 {
			return errors.Errorf("want \"click X Y\" or \"click -\", got %q", line)
		}
		x, errX := strconv.ParseFloat(fields[1], 64)
		y, errY := strconv.ParseFloat(fields[2], 64)
		if err := multierr.Combine(errX, errY); err != nil {
			return errors.Wrapf(err, "click %q", line)
		}
		if !geometry.IsFinite(x) || !geometry.IsFinite(y) {
			return errors.Errorf("click %q is not finite", line)
		}
		clicks.Dispatch(capture.Click(x, y))
		return nil
	}
	return errors.Errorf("unknown command %q", fields[0])
}
