// Package cli wires the planner, its front ends and exports into the
// pose-planner command.
package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	version = "dev"

	// Colors for help output sections
	groupTitleColor   = color.New(color.FgCyan, color.Bold)
	sectionTitleColor = color.New(color.FgBlue, color.Bold)
)

const (
	groupInteractive = "interactive"
	groupHeadless    = "headless"
	groupTooling     = "cli-tooling"
)

// SetVersion sets the version printed by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the command line.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:     "pose-planner",
		Version: version,
		Short:   "Pick two poses and watch a curvature-bounded path between them",
		Long: `pose-planner plans forward-only paths with a minimum turn radius between a start
and an end pose. Click both positions, type both headings, and the path is drawn
and revealed sample by sample. Without a subcommand the interactive terminal UI starts.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractive(cmd, opts)
		},
	}
	root.SetVersionTemplate("{{.Version}}\n")
	root.SetHelpFunc(customHelpFunc)
	opts.register(root)

	root.AddGroup(&cobra.Group{ID: groupInteractive, Title: "Interactive:"})
	root.AddGroup(&cobra.Group{ID: groupHeadless, Title: "Headless:"})
	root.AddGroup(&cobra.Group{ID: groupTooling, Title: "CLI & Tooling:"})

	root.AddCommand(newRunCmd(opts))
	root.AddCommand(newScriptCmd(opts))
	root.AddCommand(newPlanCmd(opts))
	root.AddCommand(newRenderCmd(opts))
	root.AddCommand(&cobra.Command{
		Use:     "version",
		Short:   "Print the pose-planner version",
		Args:    cobra.NoArgs,
		GroupID: groupTooling,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	})
	root.SetHelpCommand(&cobra.Command{
		Use:     "help [command]",
		Short:   "Help about any command",
		GroupID: groupTooling,
		Run: func(cmd *cobra.Command, args []string) {
			target, _, err := cmd.Root().Find(args)
			if err != nil || target == nil {
				target = cmd.Root()
			}
			_ = target.Help()
		},
	})
	return root
}

// customHelpFunc colors the section and group titles.
func customHelpFunc(cmd *cobra.Command, args []string) {
	var help strings.Builder

	if cmd.Long != "" {
		help.WriteString(cmd.Long)
		help.WriteString("\n\n")
	} else if cmd.Short != "" {
		help.WriteString(cmd.Short)
		help.WriteString("\n\n")
	}

	help.WriteString(sectionTitleColor.Sprint("Usage:"))
	help.WriteString("\n")
	fmt.Fprintf(&help, "  %s\n\n", cmd.UseLine())

	for _, group := range cmd.Groups() {
		help.WriteString(groupTitleColor.Sprint(group.Title))
		help.WriteString("\n")
		for _, c := range cmd.Commands() {
			if c.GroupID == group.ID && !c.Hidden {
				fmt.Fprintf(&help, "  %-9s %s\n", c.Name(), c.Short)
			}
		}
		help.WriteString("\n")
	}

	if cmd.HasAvailableLocalFlags() || cmd.HasAvailableInheritedFlags() {
		help.WriteString(sectionTitleColor.Sprint("Flags:"))
		help.WriteString("\n")
		help.WriteString(cmd.LocalFlags().FlagUsages())
		help.WriteString(cmd.InheritedFlags().FlagUsages())
		help.WriteString("\n")
	}

	if cmd.HasAvailableSubCommands() {
		fmt.Fprintf(&help, "Use \"%s [command] --help\" for more information about a command.\n", cmd.CommandPath())
	}
	fmt.Fprint(cmd.OutOrStdout(), help.String())
}
