package cli

import (
	"context"
	"os"
	"os/signal"

	"github.com/gdamore/tcell/v2"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"pose-planner/internal/session"
	"pose-planner/internal/tui"
)

func newRunCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "run",
		Short:   "Start the interactive terminal UI (default)",
		Long:    "Click the start and end positions, type both headings, then watch the path play. Press r to start over, q to quit.",
		Args:    cobra.NoArgs,
		GroupID: groupInteractive,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractive(cmd, opts)
		},
	}
}

func runInteractive(cmd *cobra.Command, opts *rootOptions) (err error) {
	// the terminal belongs to the UI, so logs only go to a file
	e, err := opts.setup(cmd, nil)
	if err != nil {
		return err
	}
	defer e.close(&err)

	ts, err := tcell.NewScreen()
	if err != nil {
		return errors.Wrap(err, "opening terminal")
	}
	if err := ts.Init(); err != nil {
		return errors.Wrap(err, "initializing terminal")
	}
	defer ts.Fini()
	ts.EnableMouse()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	return runScreen(ctx, e, ts)
}

// runScreen drives one session on an initialized screen until the operator quits.
func runScreen(ctx context.Context, e *env, ts tcell.Screen) error {
	scr := tui.New(ts, e.messages, e.logger)
	sess := session.New(session.Options{
		Params:        e.cfg.Params(),
		Planner:       e.planner(),
		Surface:       scr,
		Clicks:        scr,
		Notifier:      scr,
		Messages:      e.messages,
		FrameInterval: e.cfg.FrameInterval,
		Post:          scr.Post,
		Logger:        e.logger,
		ViewLimit:     e.cfg.ViewLimit,
	})
	if err := sess.Start(); err != nil {
		return err
	}
	e.logger.Infow("interactive session started", "language", e.messages.Tag.String())
	defer func() {
		if d := sess.Playback(); d != nil {
			d.Stop()
		}
	}()
	return scr.Run(ctx, sess)
}
