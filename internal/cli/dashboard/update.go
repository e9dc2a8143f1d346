package dashboard

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Lionkjgame1219/Chiv2AdminDashboard/internal/app"
	"github.com/Lionkjgame1219/Chiv2AdminDashboard/internal/updater"
)

func newUpdateCommand(e *env) *cobra.Command {
	updateCmd := &cobra.Command{
		Use:   "update",
		Short: "Inspect the self-update state",
	}

	var target string
	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Check if an update is available",
		Long: `Fetch the release feed and report which artifact would be installed.

Nothing is downloaded and no updater is started; updates are applied on
the next start of the dashboard.`,
		RunE: e.run(func(cmd *cobra.Command, a *app.Context, args []string) error {
			exe := target
			if exe == "" {
				var err error
				if exe, err = updater.CurrentExecutable(); err != nil {
					return err
				}
			}

			cfg := a.Config.Update
			o := updater.New(cfg, updater.WithMetrics(updater.NewMetrics(cfg.MetricsFile)))

			res, err := o.Check(context.Background(), exe)
			if err != nil {
				return fmt.Errorf("check for update: %w", err)
			}
			printCheck(cmd, res)
			return nil
		}),
	}
	checkCmd.Flags().StringVar(&target, "target", "", "executable to check (default: this binary)")

	updateCmd.AddCommand(checkCmd)
	return updateCmd
}

func printCheck(cmd *cobra.Command, res updater.CheckResult) {
	out := cmd.OutOrStdout()

	if !res.Found {
		fmt.Fprintln(out, "No installable release found.")
		return
	}

	current := "unknown"
	if res.CurrentVersion != nil {
		current = res.CurrentVersion.String()
	}
	installed := res.Installed.Identifier()
	if installed == "" {
		installed = "none recorded"
	}

	fmt.Fprintf(out, "Candidate:        %s (%s)\n", res.Artifact.Name, res.Artifact.ReleaseTag)
	fmt.Fprintf(out, "  Remote version: %s\n", res.Artifact.RemoteIdentifier())
	fmt.Fprintf(out, "  Running:        %s\n", current)
	fmt.Fprintf(out, "  Installed:      %s\n", installed)

	if res.NeedsUpdate {
		fmt.Fprintln(out, "\nUpdate available. It is installed on the next start.")
	} else {
		fmt.Fprintln(out, "\nUp to date.")
	}
}
