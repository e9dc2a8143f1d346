package dashboard

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Lionkjgame1219/Chiv2AdminDashboard/internal/app"
	"github.com/Lionkjgame1219/Chiv2AdminDashboard/internal/game"
	"github.com/Lionkjgame1219/Chiv2AdminDashboard/internal/sanctions"
)

// sanctionFlags are shared by the ban and kick commands.
type sanctionFlags struct {
	reason   string
	preset   int
	username string
	noRecord bool
}

func (f *sanctionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.reason, "reason", "r", "", "reason shown to the player")
	cmd.Flags().IntVarP(&f.preset, "preset", "p", -1, "use the reason saved in this preset slot (0-9)")
	cmd.Flags().StringVar(&f.username, "name", "", "player name, recorded with the sanction")
	cmd.Flags().BoolVar(&f.noRecord, "no-record", false, "do not record the sanction in the database")
}

// resolveReason returns the explicit reason, or the preset when one is chosen.
func (f *sanctionFlags) resolveReason(cfg game.Config) (string, error) {
	if f.preset >= 0 {
		if f.reason != "" {
			return "", fmt.Errorf("use either --reason or --preset, not both")
		}
		reason, ok := cfg.Preset(f.preset)
		if !ok {
			return "", fmt.Errorf("preset %d is empty", f.preset)
		}
		return reason, nil
	}
	if strings.TrimSpace(f.reason) == "" {
		return "", fmt.Errorf("a reason is required (use --reason or --preset)")
	}
	return f.reason, nil
}

func newGameCommand(e *env) *cobra.Command {
	var mod sanctions.Moderator

	gameCmd := &cobra.Command{
		Use:   "game",
		Short: "Send admin commands to the running game",
		Long: `Send admin commands to the running game by typing them into its console.

The game window must be open; it is brought to the foreground for every
command.`,
	}
	gameCmd.PersistentFlags().StringVar(&mod.ID, "moderator-id", "", "moderator ID recorded with sanctions")
	gameCmd.PersistentFlags().StringVar(&mod.Name, "moderator-name", "", "moderator name recorded with sanctions")

	// record stores a sanction once the game accepted the command.
	record := func(cmd *cobra.Command, a *app.Context, f *sanctionFlags, in sanctions.NewSanction) error {
		if f.noRecord {
			return nil
		}
		s, err := a.Store()
		if err != nil {
			return err
		}
		in.Username = f.username
		in.Moderator = mod
		sanction, err := s.CreateSanction(context.Background(), in)
		if err != nil {
			return fmt.Errorf("command sent but not recorded: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s %d\n", in.Type, sanction.ID)
		return nil
	}

	var ban sanctionFlags
	var banHours int
	banCmd := &cobra.Command{
		Use:   "ban [playfab-id]",
		Short: "Ban a player",
		Long: `Ban a player and record the ban.

Example:
  dashboard game ban 1A2B3C4D5E6F7A8B --hours 48 --reason "Teamkilling"
  dashboard game ban 1A2B3C4D5E6F7A8B --hours 24 --preset 1 --name "Sir Grief"`,
		Args: cobra.ExactArgs(1),
		RunE: e.console(func(cmd *cobra.Command, a *app.Context, c *game.Console, args []string) error {
			reason, err := ban.resolveReason(a.Config.Game)
			if err != nil {
				return err
			}
			if err := c.BanByID(args[0], banHours, reason); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Banned %s: %s\n", args[0], game.BanMessage(banHours, reason))

			hours := float64(banHours)
			return record(cmd, a, &ban, sanctions.NewSanction{
				Type:          sanctions.EntryBan,
				PlayFabID:     args[0],
				Reason:        reason,
				DurationHours: &hours,
			})
		}),
	}
	ban.register(banCmd)
	banCmd.Flags().IntVar(&banHours, "hours", 0, "ban duration in hours (required)")
	banCmd.MarkFlagRequired("hours")

	var kick sanctionFlags
	kickCmd := &cobra.Command{
		Use:   "kick [playfab-id]",
		Short: "Kick a player",
		Args:  cobra.ExactArgs(1),
		RunE: e.console(func(cmd *cobra.Command, a *app.Context, c *game.Console, args []string) error {
			reason, err := kick.resolveReason(a.Config.Game)
			if err != nil {
				return err
			}
			if err := c.KickByID(args[0], reason); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Kicked %s: %s\n", args[0], reason)

			return record(cmd, a, &kick, sanctions.NewSanction{
				Type:      sanctions.EntryKick,
				PlayFabID: args[0],
				Reason:    reason,
			})
		}),
	}
	kick.register(kickCmd)

	unbanCmd := &cobra.Command{
		Use:   "unban [playfab-id]",
		Short: "Lift a ban",
		Args:  cobra.ExactArgs(1),
		RunE: e.console(func(cmd *cobra.Command, a *app.Context, c *game.Console, args []string) error {
			if err := c.UnbanByID(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Unbanned %s\n", args[0])
			return nil
		}),
	}

	sayCmd := &cobra.Command{
		Use:   "say [message]",
		Short: "Broadcast an admin message",
		Args:  cobra.MinimumNArgs(1),
		RunE: e.console(func(cmd *cobra.Command, a *app.Context, c *game.Console, args []string) error {
			return c.AdminSay(strings.Join(args, " "))
		}),
	}

	serverSayCmd := &cobra.Command{
		Use:   "serversay [message]",
		Short: "Broadcast a server message",
		Args:  cobra.MinimumNArgs(1),
		RunE: e.console(func(cmd *cobra.Command, a *app.Context, c *game.Console, args []string) error {
			return c.ServerSay(strings.Join(args, " "))
		}),
	}

	addTimeCmd := &cobra.Command{
		Use:   "addtime [minutes]",
		Short: "Extend the current stage",
		Args:  cobra.ExactArgs(1),
		RunE: e.console(func(cmd *cobra.Command, a *app.Context, c *game.Console, args []string) error {
			minutes, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid minutes %q", args[0])
			}
			return c.AddStageTime(minutes)
		}),
	}

	listPlayersCmd := &cobra.Command{
		Use:   "listplayers",
		Short: "Print the player list in the game console",
		RunE: e.console(func(cmd *cobra.Command, a *app.Context, c *game.Console, args []string) error {
			return c.ListPlayers()
		}),
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "Show the saved reason presets",
		RunE: e.run(func(cmd *cobra.Command, a *app.Context, args []string) error {
			out := cmd.OutOrStdout()
			if len(a.Config.Game.Presets) == 0 {
				fmt.Fprintln(out, "No presets configured.")
				return nil
			}
			for i, p := range a.Config.Game.Presets {
				if p == "" {
					continue
				}
				fmt.Fprintf(out, "%d: %s\n", i, p)
			}
			return nil
		}),
	}

	presetSetCmd := &cobra.Command{
		Use:   "preset-set <slot> [reason]",
		Short: "Save a reason preset, or clear the slot when reason is omitted",
		Args:  cobra.RangeArgs(1, 2),
		RunE: e.run(func(cmd *cobra.Command, a *app.Context, args []string) error {
			slot, err := strconv.Atoi(args[0])
			if err != nil || slot < 0 || slot >= game.MaxPresets {
				return fmt.Errorf("preset slot must be 0-%d, got %q", game.MaxPresets-1, args[0])
			}
			reason := ""
			if len(args) == 2 {
				reason = strings.TrimSpace(args[1])
			}

			presets := a.Config.Game.Presets
			for len(presets) <= slot {
				presets = append(presets, "")
			}
			presets[slot] = reason
			for len(presets) > 0 && presets[len(presets)-1] == "" {
				presets = presets[:len(presets)-1]
			}
			a.Config.Game.Presets = presets

			if err := a.SaveConfig(); err != nil {
				return err
			}
			if reason == "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Preset %d cleared.\n", slot)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Preset %d: %s\n", slot, reason)
			}
			return nil
		}),
	}

	gameCmd.AddCommand(banCmd, kickCmd, unbanCmd, sayCmd, serverSayCmd, addTimeCmd, listPlayersCmd, presetsCmd, presetSetCmd)
	return gameCmd
}

// console adapts fn into a RunE that has the game console ready.
func (e *env) console(fn func(cmd *cobra.Command, a *app.Context, c *game.Console, args []string) error) func(*cobra.Command, []string) error {
	return e.run(func(cmd *cobra.Command, a *app.Context, args []string) error {
		c, err := a.Console()
		if err != nil {
			return err
		}
		return fn(cmd, a, c, args)
	})
}
