package cli

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"pose-planner/internal/planner"
)

func newPlanCmd(opts *rootOptions) *cobra.Command {
	var (
		start, end string
		exports    exportOptions
	)
	cmd := &cobra.Command{
		Use:     "plan --start x,y,deg --end x,y,deg",
		Short:   "Plan one path from poses given on the command line",
		Args:    cobra.NoArgs,
		GroupID: groupHeadless,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			e, err := opts.setup(cmd, os.Stderr)
			if err != nil {
				return err
			}
			defer e.close(&err)

			from, err := parsePose(start)
			if err != nil {
				return errors.Wrap(err, "--start")
			}
			to, err := parsePose(end)
			if err != nil {
				return errors.Wrap(err, "--end")
			}
			q := planner.NewQuery(from, to, e.cfg.Params())
			path, err := e.planner().Plan(cmd.Context(), q)
			if err != nil {
				failColor.Fprintf(cmd.ErrOrStderr(), e.messages.PlanningFailed+"\n", err)
				return err
			}
			e.headline(cmd.OutOrStdout(), path)
			e.report(cmd.OutOrStdout(), q, path)
			return e.export(cmd.OutOrStdout(), &exports, q, path, nil)
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "start pose as x,y,heading in degrees")
	cmd.Flags().StringVar(&end, "end", "", "end pose as x,y,heading in degrees")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	exports.register(cmd)
	return cmd
}

func newRenderCmd(opts *rootOptions) *cobra.Command {
	var exports exportOptions
	cmd := &cobra.Command{
		Use:     "render path.geojson",
		Short:   "Redraw a saved path into the same exports",
		Args:    cobra.ExactArgs(1),
		GroupID: groupHeadless,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			e, err := opts.setup(cmd, os.Stderr)
			if err != nil {
				return err
			}
			defer e.close(&err)

			f, err := os.Open(args[0])
			if err != nil {
				return errors.Wrap(err, "opening path")
			}
			q, path, err := planner.ReadGeoJSON(f)
			f.Close()
			if err != nil {
				return err
			}
			e.logger.Infow("loaded path", "file", args[0], "word", path.Word, "samples", path.Len())
			e.headline(cmd.OutOrStdout(), path)
			e.report(cmd.OutOrStdout(), q, path)
			return e.export(cmd.OutOrStdout(), &exports, q, path, nil)
		},
	}
	exports.register(cmd)
	return cmd
}
