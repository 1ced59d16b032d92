package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zjrosen/evencheck/internal/config"
)

const configInitName = "config:init"

func newConfigInitCmd(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   configInitName,
		Short: "Write the default config file",
		Long: `Write the default config file to the --config path, or to
.evencheck/config.yaml. An existing file is kept unless --force is given.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := a.configPath
			if _, err := os.Stat(path); err == nil && !force {
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "Config already exists at %s\n", path)
				return err
			}
			if err := config.WriteDefaultConfig(path); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return err
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func newConfigSetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config:set <key> <value>",
		Short: "Set a value in the config file",
		Long: `Set a value in the config file, keeping comments. Nested keys use dots.

Examples:
  evencheck config:set backend sqlite
  evencheck config:set watch.debounce 500ms
  evencheck config:set flags.auto-register false`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.SetValue(a.configPath, args[0], args[1]); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s in %s\n", args[0], args[1], a.configPath)
			return err
		},
	}
}
