// Package cli implements the ensemblops command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/ensemblops/config"
)

// CLI holds state shared by all commands.
type CLI struct {
	out io.Writer
	err io.Writer

	configPath string
	verbose    bool

	// cfg is loaded by the root command before any subcommand runs.
	cfg config.Config

	// load replaces config.LoadAll in tests.
	load func(ctx context.Context, path string) (config.Config, error)
}

// New creates a CLI writing results to out and logs to errOut.
func New(out, errOut io.Writer) *CLI {
	return &CLI{out: out, err: errOut, load: config.LoadAll}
}

// RootCommand creates the root command with every subcommand registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "ensemblops",
		Short: "Resilient access to the Ensembl REST API",
		Long: `ensemblops sends requests to an Ensembl REST server through a release-scoped
cache, a shared rate limiter and a retry executor. Batch POSTs are chunked and
merged. Upstream failures are reported with a suggestion and an example.`,
		Version:       config.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := c.load(cmd.Context(), c.configPath)
			if err != nil {
				return err
			}
			if c.verbose {
				cfg.Observe.Logging.Level = "debug"
			}
			c.cfg = cfg
			return nil
		},
	}

	root.SetOut(c.out)
	root.SetErr(c.err)
	root.SetVersionTemplate(fmt.Sprintf("ensemblops %s\n", config.Version))
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (.yaml, .yml, .toml or .json)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(c.getCommand())
	root.AddCommand(c.postCommand())
	root.AddCommand(c.releaseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.versionCommand())

	return root
}

func (c *CLI) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		// Skip config loading.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(c.out, "ensemblops %s\n", config.Version)
			return err
		},
	}
}
