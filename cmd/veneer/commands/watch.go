package commands

import (
	"github.com/spf13/cobra"

	"github.com/syssam/veneer/compiler"
)

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [packages]",
		Short: "Regenerate whenever a source file changes",
		Long: `Watch generates the packages matching the patterns, then watches their
directories and regenerates after every change to a hand-written Go file.
Press Ctrl-C to stop.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := newDriver(cmd)
			if err != nil {
				return err
			}
			debounce, _ := cmd.Flags().GetDuration("debounce")
			return d.Watch(cmd.Context(), compiler.WatchOptions{
				Debounce: debounce,
				OnRun: func(res *compiler.Result, _ error) {
					if res != nil {
						summarize(cmd, d, res)
					}
				},
			}, args...)
		},
	}
	addGenerateFlags(cmd)
	cmd.Flags().Duration("debounce", compiler.DefaultDebounce, "Quiet period before regenerating")
	return cmd
}
