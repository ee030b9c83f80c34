package commands

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/syssam/veneer/compiler"
	"github.com/syssam/veneer/compiler/gen"
)

// errDiagnostics is returned when a run recorded error diagnostics.
var errDiagnostics = errors.New("veneer: declarations have errors")

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate [packages]",
		Short: "Generate the members of annotated types",
		Long: `Generate loads the packages matching the patterns (default ".") and
writes a <type>_veneer.go file for every type marked with //veneer:Generate.
Generated files that are no longer produced are removed. Packages whose
sources and configuration did not change since the last run are skipped.`,
		Aliases: []string{"gen"},
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := newDriver(cmd)
			if err != nil {
				return err
			}
			res, err := d.Generate(cmd.Context(), args...)
			if res != nil {
				summarize(cmd, d, res)
			}
			if err != nil {
				return err
			}
			if res.Report.HasErrors() {
				return errDiagnostics
			}
			return nil
		},
	}
	addGenerateFlags(cmd)
	return cmd
}

// summarize prints the diagnostics and file changes of a run.
func summarize(cmd *cobra.Command, d *compiler.Driver, res *compiler.Result) {
	out := cmd.OutOrStdout()
	for _, diag := range res.Report.Diagnostics() {
		fmt.Fprintln(cmd.ErrOrStderr(), diag.String())
	}
	verb := "wrote"
	if d.DryRun {
		verb = "would write"
	}
	for _, f := range res.Written {
		fmt.Fprintf(out, "%s %s\n", verb, rel(d.Dir, f))
	}
	for _, f := range res.Removed {
		fmt.Fprintf(out, "removed %s\n", rel(d.Dir, f))
	}
	fmt.Fprintf(out, "%d files, %d removed, %d packages unchanged, %d skipped members\n",
		len(res.Written), len(res.Removed), len(res.Unchanged), len(res.Report.Filter(gen.Skipped)))
}

func rel(dir, path string) string {
	if dir == "" {
		dir = "."
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return path
	}
	if r, err := filepath.Rel(abs, path); err == nil {
		return r
	}
	return path
}
