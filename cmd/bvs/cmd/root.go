// Package cmd provides the CLI commands for bvs.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mick2004/beyond-vector-search/internal/logging"
	"github.com/mick2004/beyond-vector-search/pkg/version"
)

var (
	flagConfig string
	flagDB     string
	flagDebug  bool
)

// NewRootCmd creates the root command for the bvs CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bvs",
		Short: "Adaptive retrieval router over a local document corpus",
		Long: `bvs routes queries to one of three retrieval strategies (keyword,
vector, hybrid), returns ranked documents, and learns better routing from an
offline evaluation loop that updates persisted strategy weights.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			level := "info"
			if flagDebug {
				level = "debug"
			}
			logging.SetupDefault(level)
		},
	}

	cmd.SetVersionTemplate("bvs version {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&flagConfig, "config", "bvs.yaml", "Path to YAML config file")
	cmd.PersistentFlags().StringVar(&flagDB, "db", "", "Override telemetry SQLite path")
	cmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")

	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newEvalCmd())
	cmd.AddCommand(newStateCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
