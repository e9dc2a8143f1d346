package dashboard

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Lionkjgame1219/Chiv2AdminDashboard/internal/app"
	"github.com/Lionkjgame1219/Chiv2AdminDashboard/internal/config"
)

func newConfigCommand(e *env) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management commands",
	}

	var output string
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a commented default configuration file",
		Long: `Write a commented default configuration file.

An existing file is backed up next to it before being replaced.

Example:
  dashboard config init
  dashboard config init -o ./config.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := output
			if path == "" {
				path = e.configFile
			}
			if path == "" {
				path = config.DefaultPath()
			}

			backup, err := config.WriteTemplate(path)
			if err != nil {
				return fmt.Errorf("write config: %w", err)
			}

			out := cmd.OutOrStdout()
			if backup != "" {
				fmt.Fprintf(out, "Backed up existing configuration to %s\n", backup)
			}
			fmt.Fprintf(out, "Wrote configuration to %s\n", path)
			return nil
		},
	}
	initCmd.Flags().StringVarP(&output, "output", "o", "", "output file path (default: --config or <app data>/config.yaml)")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: e.run(func(cmd *cobra.Command, a *app.Context, args []string) error {
			data, err := yaml.Marshal(a.Config)
			if err != nil {
				return fmt.Errorf("marshal config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s", a.ConfigPath, data)
			return nil
		}),
	}

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		Run: func(cmd *cobra.Command, args []string) {
			path := e.configFile
			if path == "" {
				path = config.DefaultPath()
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
		},
	}

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := e.configFile
			if path == "" {
				path = config.DefaultPath()
			}
			cfg := config.Default()
			if err := config.LoadAndValidate(path, &cfg); err != nil {
				return fmt.Errorf("configuration invalid: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Configuration is valid")
			return nil
		},
	}

	configCmd.AddCommand(initCmd, showCmd, pathCmd, validateCmd)
	return configCmd
}
