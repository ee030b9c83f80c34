// Package commands implements the veneer command line.
package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/syssam/veneer/compiler"
	"github.com/syssam/veneer/compiler/cache"
	"github.com/syssam/veneer/compiler/gen"
	"github.com/syssam/veneer/internal/logger"
)

// DefaultConfigFile is read from the working directory when --config is not
// given.
const DefaultConfigFile = "veneer.yaml"

// NewRootCmd returns the veneer command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "veneer",
		Short: "veneer - directive driven Go code generator",
		Long: `veneer writes the repetitive members of annotated Go types.

Mark a type with //veneer:Generate and its fields with directives such as
//veneer:Get, //veneer:Add(chain = true) or //veneer:Put. veneer writes the
members into <type>_veneer.go next to the declaration.

Examples:
  veneer generate ./...          # Generate every package of the module
  veneer generate --dry-run .    # Report what would be written
  veneer watch ./models          # Regenerate on every change
  veneer version                 # Show build information`,
		SilenceUsage: true,
	}
	flags := root.PersistentFlags()
	flags.StringP("config", "c", "", "Path to the configuration file (default ./"+DefaultConfigFile+" when present)")
	flags.StringP("dir", "C", "", "Directory to resolve package patterns in")
	flags.CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv)")
	flags.Bool("log-json", false, "Write logs as JSON")

	root.AddCommand(newGenerateCmd())
	root.AddCommand(newWatchCmd())
	root.AddCommand(newVersionCmd())
	return root
}

// addGenerateFlags registers the flags shared by generate and watch.
func addGenerateFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("dry-run", false, "Render without writing or removing files")
	cmd.Flags().IntP("workers", "w", 0, "Number of types generated concurrently (default GOMAXPROCS)")
	cmd.Flags().Bool("no-cache", false, "Regenerate every package, ignoring "+cache.DefaultFile)
}

// newDriver builds the driver described by the command flags.
func newDriver(cmd *cobra.Command) (*compiler.Driver, error) {
	flags := cmd.Flags()
	dir, _ := flags.GetString("dir")
	verbose, _ := flags.GetCount("verbose")
	jsonLogs, _ := flags.GetBool("log-json")

	cfg, err := loadConfig(cmd, dir)
	if err != nil {
		return nil, err
	}
	if workers, _ := flags.GetInt("workers"); workers != 0 {
		if err := cfg.Apply(gen.WithWorkers(workers)); err != nil {
			return nil, err
		}
	}
	log := logger.New(logger.VerbosityToLevel(verbose), jsonLogs)
	if err := cfg.Apply(gen.WithLogger(log)); err != nil {
		return nil, err
	}

	d := &compiler.Driver{Config: cfg, Dir: dir}
	d.DryRun, _ = flags.GetBool("dry-run")
	if noCache, _ := flags.GetBool("no-cache"); !noCache {
		root := dir
		if root == "" {
			root = "."
		}
		d.Cache = cache.NewFileCache(filepath.Join(root, cache.DefaultFile))
	}
	log.Debug("driver configured",
		zap.String("dir", dir),
		zap.Bool("dry_run", d.DryRun),
		zap.Int("workers", cfg.Concurrency()),
	)
	return d, nil
}

// loadConfig reads the file named by --config, or veneer.yaml in dir when it
// exists. Without either the defaults apply.
func loadConfig(cmd *cobra.Command, dir string) (*gen.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path != "" {
		return gen.LoadConfig(path)
	}
	path = filepath.Join(dir, DefaultConfigFile)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &gen.Config{}, nil
		}
		return nil, fmt.Errorf("veneer: %w", err)
	}
	return gen.LoadConfig(path)
}
