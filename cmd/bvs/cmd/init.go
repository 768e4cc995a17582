package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mick2004/beyond-vector-search/configs"
	"github.com/mick2004/beyond-vector-search/internal/ui"
)

func newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a commented starter config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")

	return cmd
}

func runInit(cmd *cobra.Command, force bool) error {
	path := flagConfig

	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}

	if err := os.WriteFile(path, []byte(configs.ConfigTemplate), 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	st := ui.AutoStyles(os.Stdout)
	fmt.Fprintln(cmd.OutOrStdout(), st.Success.Render("Created "+path))
	return nil
}
