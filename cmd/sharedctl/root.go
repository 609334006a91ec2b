package main

import (
	"fmt"
	"io"

	"github.com/baxromumarov/shared"
	"github.com/baxromumarov/shared/thread"
	"github.com/joeycumines/logiface"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Debug int
}

// NewRootCommand creates the root command for sharedctl.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "sharedctl",
		Short: "Drive shared cells and managed threads",
		Long:  "Run the built-in managed-thread scenarios, or start a set of threads declared in a YAML file.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.Debug < shared.DebugOff || opts.Debug > shared.DebugTrace {
				return fmt.Errorf("invalid debug level %d: must be between %d and %d", opts.Debug, shared.DebugOff, shared.DebugTrace)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().IntVar(&opts.Debug, "debug", shared.DebugOff, "diagnostic verbosity (0 off, 1 debug, 2 trace)")

	cmd.AddCommand(NewScenarioCommand(opts))
	cmd.AddCommand(NewRunCommand(opts))

	return cmd
}

// threadOptions returns the ambient thread options for a command writing
// diagnostics to w.
func (o *RootOptions) threadOptions(w io.Writer) []thread.Option {
	return []thread.Option{
		thread.WithLogger(shared.NewLogger(w, logiface.LevelTrace)),
		thread.WithDebug(o.Debug),
	}
}
