// Package dashboard provides the CLI commands of the admin dashboard.
package dashboard

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Lionkjgame1219/Chiv2AdminDashboard/internal/app"
	"github.com/Lionkjgame1219/Chiv2AdminDashboard/internal/updater"
	"github.com/Lionkjgame1219/Chiv2AdminDashboard/internal/version"
)

// env loads an app.Context per command invocation.
type env struct {
	configFile string
	opts       []app.Option
}

// run adapts fn into a RunE that owns an app.Context for the duration of
// the command.
func (e *env) run(fn func(cmd *cobra.Command, a *app.Context, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := app.Load(e.configFile, e.opts...)
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(cmd, a, args)
	}
}

// NewRootCommand creates the dashboard command tree. opts are passed to
// every app.Context it builds.
func NewRootCommand(opts ...app.Option) *cobra.Command {
	e := &env{opts: opts}

	root := &cobra.Command{
		Use:           "dashboard",
		Short:         "Chivalry 2 Admin Dashboard",
		Long:          `Moderation toolkit for Chivalry 2 server admins: in-game console commands, a sanctions database and self-update.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&e.configFile, "config", "c", "", "config file path (default <app data>/config.yaml)")
	// Consumed before the command tree runs; declared so cobra accepts it.
	root.PersistentFlags().Bool(updater.FlagSkipUpdate, false, "skip the startup update check")

	var versionJSON bool
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !versionJSON {
				fmt.Fprintln(cmd.OutOrStdout(), version.Full())
				return nil
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(version.Get())
		},
	}
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "print as JSON")
	root.AddCommand(versionCmd)

	root.AddCommand(
		newConfigCommand(e),
		newUpdateCommand(e),
		newDBCommand(e),
		newGameCommand(e),
	)

	return root
}
