package dashboard

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Lionkjgame1219/Chiv2AdminDashboard/internal/app"
	"github.com/Lionkjgame1219/Chiv2AdminDashboard/internal/sanctions"
)

const listTimeFormat = "2006-01-02 15:04"

func newDBCommand(e *env) *cobra.Command {
	dbCmd := &cobra.Command{
		Use:   "db",
		Short: "Sanction and red flag database commands",
	}

	// Sanctions

	var listLimit, listOffset int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List sanctions, newest first",
		RunE: e.store(func(cmd *cobra.Command, s *sanctions.Store, args []string) error {
			entries, err := s.ListSanctions(context.Background(), listLimit, listOffset)
			if err != nil {
				return err
			}
			printSanctionTable(cmd.OutOrStdout(), entries, "No sanctions found.")
			return nil
		}),
	}
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 50, "maximum number of results")
	listCmd.Flags().IntVar(&listOffset, "offset", 0, "number of results to skip")

	var filter sanctions.SearchFilter
	var entryType string
	searchCmd := &cobra.Command{
		Use:   "search",
		Short: "Search sanctions",
		Long: `Search sanctions. Every given filter must match.

The username filter is a partial, case-insensitive match that also finds
players through names they used before.

Example:
  dashboard db search --username lancelot --type ban
  dashboard db search --moderator 123456789012345678`,
		RunE: e.store(func(cmd *cobra.Command, s *sanctions.Store, args []string) error {
			if entryType != "" {
				filter.Type = sanctions.EntryType(entryType)
				if !filter.Type.Valid() {
					return fmt.Errorf("unknown type %q", entryType)
				}
			}

			entries, err := s.SearchSanctions(context.Background(), filter)
			if err != nil {
				return err
			}
			printSanctionList(cmd.OutOrStdout(), entries)
			return nil
		}),
	}
	searchCmd.Flags().StringVar(&filter.Username, "username", "", "username (partial match)")
	searchCmd.Flags().StringVar(&filter.PlayFabID, "playfab-id", "", "PlayFab ID (exact match)")
	searchCmd.Flags().StringVar(&entryType, "type", "", "ban, kick, username_update or last_seen_update")
	searchCmd.Flags().StringVar(&filter.ModeratorID, "moderator", "", "moderator ID")
	searchCmd.Flags().IntVarP(&filter.Limit, "limit", "n", 50, "maximum number of results")

	viewCmd := &cobra.Command{
		Use:   "view [id]",
		Short: "Show one sanction",
		Args:  cobra.ExactArgs(1),
		RunE: e.store(func(cmd *cobra.Command, s *sanctions.Store, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			sanction, err := s.GetSanction(context.Background(), id)
			if err != nil {
				return err
			}
			printSanction(cmd.OutOrStdout(), sanction)
			return nil
		}),
	}

	var revokedBy string
	revokeCmd := &cobra.Command{
		Use:   "revoke [id]",
		Short: "Revoke a sanction",
		Args:  cobra.ExactArgs(1),
		RunE: e.store(func(cmd *cobra.Command, s *sanctions.Store, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := s.RevokeSanction(context.Background(), id, revokedBy); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Revoked sanction %d\n", id)
			return nil
		}),
	}
	revokeCmd.Flags().StringVar(&revokedBy, "by", "", "moderator ID revoking the sanction (required)")
	revokeCmd.MarkFlagRequired("by")

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show database statistics",
		RunE: e.store(func(cmd *cobra.Command, s *sanctions.Store, args []string) error {
			ctx := context.Background()
			st, err := s.SanctionStats(ctx)
			if err != nil {
				return err
			}
			rf, err := s.RedFlagStats(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Sanction Statistics:")
			fmt.Fprintf(out, "  Total entries:     %d\n", st.TotalEntries)
			fmt.Fprintf(out, "  Total sanctions:   %d\n", st.TotalSanctions)
			fmt.Fprintf(out, "  Total bans:        %d\n", st.TotalBans)
			fmt.Fprintf(out, "  Total kicks:       %d\n", st.TotalKicks)
			fmt.Fprintf(out, "  Username updates:  %d\n", st.TotalUsernameUpdates)
			fmt.Fprintf(out, "  Last seen updates: %d\n", st.TotalLastSeenUpdates)
			fmt.Fprintf(out, "  Revoked sanctions: %d\n", st.RevokedSanctions)
			fmt.Fprintln(out)
			fmt.Fprintln(out, "RedFlag Statistics:")
			fmt.Fprintf(out, "  Total redflags:    %d\n", rf.Total)
			fmt.Fprintf(out, "  Resolved redflags: %d\n", rf.Resolved)
			return nil
		}),
	}

	reportCmd := &cobra.Command{
		Use:   "player-report [playfab-id]",
		Short: "Summarize the sanctions of a player",
		Args:  cobra.ExactArgs(1),
		RunE: e.store(func(cmd *cobra.Command, s *sanctions.Store, args []string) error {
			report, err := s.PlayerReport(context.Background(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if report.TotalSanctions == 0 {
				fmt.Fprintf(out, "No sanctions found for PlayFab ID: %s\n", args[0])
				return nil
			}
			fmt.Fprintln(out, "Player Sanction Report:")
			fmt.Fprintf(out, "  PlayFab ID:        %s\n", report.PlayFabID)
			fmt.Fprintf(out, "  Username:          %s\n", orNA(report.MostRecentUsername))
			fmt.Fprintf(out, "  Total sanctions:   %d\n", report.TotalSanctions)
			fmt.Fprintf(out, "  Total bans:        %d\n", report.TotalBans)
			fmt.Fprintf(out, "  Total kicks:       %d\n", report.TotalKicks)
			fmt.Fprintf(out, "  Revoked sanctions: %d\n", report.RevokedSanctions)
			fmt.Fprintf(out, "  First sanction:    %s\n", formatTimePtr(report.FirstSanction))
			fmt.Fprintf(out, "  Last sanction:     %s\n", formatTimePtr(report.LastSanction))
			return nil
		}),
	}

	// Players

	var playersLimit int
	playersCmd := &cobra.Command{
		Use:   "players [query]",
		Short: "List players, or search by ID or any name they used",
		Args:  cobra.MaximumNArgs(1),
		RunE: e.store(func(cmd *cobra.Command, s *sanctions.Store, args []string) error {
			var (
				players []*sanctions.PlayerRecord
				err     error
			)
			if len(args) == 1 {
				players, err = s.SearchPlayers(context.Background(), args[0], playersLimit, 0)
			} else {
				players, err = s.ListPlayers(context.Background(), playersLimit, 0)
			}
			if err != nil {
				return err
			}
			printPlayerTable(cmd.OutOrStdout(), players)
			return nil
		}),
	}
	playersCmd.Flags().IntVarP(&playersLimit, "limit", "n", 50, "maximum number of results")

	playerCmd := &cobra.Command{
		Use:   "player [playfab-id]",
		Short: "Show a player's identity and note",
		Args:  cobra.ExactArgs(1),
		RunE: e.store(func(cmd *cobra.Command, s *sanctions.Store, args []string) error {
			p, err := s.GetPlayer(context.Background(), args[0])
			if err != nil {
				return err
			}
			printPlayer(cmd.OutOrStdout(), p)
			return nil
		}),
	}

	var clearNote bool
	noteCmd := &cobra.Command{
		Use:   "note [playfab-id] [text]",
		Short: "Set or clear the moderator note of a player",
		Args:  cobra.RangeArgs(1, 2),
		RunE: e.store(func(cmd *cobra.Command, s *sanctions.Store, args []string) error {
			ctx := context.Background()
			if clearNote {
				if err := s.ClearNote(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared note for %s\n", args[0])
				return nil
			}
			if len(args) != 2 {
				return fmt.Errorf("note text is required (or use --clear)")
			}
			if _, err := s.SetNote(ctx, args[0], &args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated note for %s\n", args[0])
			return nil
		}),
	}
	noteCmd.Flags().BoolVar(&clearNote, "clear", false, "remove the note")

	// Red flags

	var rfLimit int
	rfListCmd := &cobra.Command{
		Use:   "redflag-list",
		Short: "List red flags, newest first",
		RunE: e.store(func(cmd *cobra.Command, s *sanctions.Store, args []string) error {
			flags, err := s.ListRedFlags(context.Background(), rfLimit, 0)
			if err != nil {
				return err
			}
			printRedFlagTable(cmd.OutOrStdout(), flags)
			return nil
		}),
	}
	rfListCmd.Flags().IntVarP(&rfLimit, "limit", "n", 50, "maximum number of results")

	rfViewCmd := &cobra.Command{
		Use:   "redflag-view [id]",
		Short: "Show one red flag",
		Args:  cobra.ExactArgs(1),
		RunE: e.store(func(cmd *cobra.Command, s *sanctions.Store, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			flag, err := s.GetRedFlag(context.Background(), id)
			if err != nil {
				return err
			}
			printRedFlag(cmd.OutOrStdout(), flag)
			return nil
		}),
	}

	rfPlayerCmd := &cobra.Command{
		Use:   "redflag-player [playfab-id]",
		Short: "Show every red flag of a player",
		Args:  cobra.ExactArgs(1),
		RunE: e.store(func(cmd *cobra.Command, s *sanctions.Store, args []string) error {
			flags, err := s.RedFlagsByPlayer(context.Background(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(flags) == 0 {
				fmt.Fprintf(out, "No redflags found for PlayFab ID: %s\n", args[0])
				return nil
			}
			fmt.Fprintf(out, "Found %d redflags for %s:\n\n", len(flags), args[0])
			for _, f := range flags {
				fmt.Fprintf(out, "ID: %d | Resolved: %s\n", f.ID, yesNo(f.Resolved()))
				fmt.Fprintf(out, "  Reason: %s\n", f.Reason)
				fmt.Fprintf(out, "  Created: %s\n", f.CreatedAt.Local().Format(time.RFC1123))
				if f.Resolved() {
					fmt.Fprintf(out, "  Resolved: %s\n", formatTimePtr(f.ResolvedAt))
				}
				fmt.Fprintln(out)
			}
			return nil
		}),
	}

	var rfNew sanctions.NewRedFlag
	rfAddCmd := &cobra.Command{
		Use:   "redflag-add [playfab-id]",
		Short: "Raise a red flag on a player",
		Args:  cobra.ExactArgs(1),
		RunE: e.store(func(cmd *cobra.Command, s *sanctions.Store, args []string) error {
			rfNew.PlayFabID = args[0]
			flag, err := s.CreateRedFlag(context.Background(), rfNew)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created red flag %d\n", flag.ID)
			return nil
		}),
	}
	rfAddCmd.Flags().StringVar(&rfNew.Username, "name", "", "player name")
	rfAddCmd.Flags().StringVar(&rfNew.Reason, "reason", "", "why the player is flagged (required)")
	rfAddCmd.Flags().StringVar(&rfNew.Moderator.ID, "moderator-id", "", "moderator ID")
	rfAddCmd.Flags().StringVar(&rfNew.Moderator.Name, "moderator-name", "", "moderator name")
	rfAddCmd.MarkFlagRequired("reason")

	var resolvedBy, resolution string
	rfResolveCmd := &cobra.Command{
		Use:   "redflag-resolve [id]",
		Short: "Resolve a red flag",
		Args:  cobra.ExactArgs(1),
		RunE: e.store(func(cmd *cobra.Command, s *sanctions.Store, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := s.ResolveRedFlag(context.Background(), id, resolvedBy, resolution); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Resolved red flag %d\n", id)
			return nil
		}),
	}
	rfResolveCmd.Flags().StringVar(&resolvedBy, "by", "", "moderator ID resolving the flag (required)")
	rfResolveCmd.Flags().StringVar(&resolution, "note", "", "resolution note")
	rfResolveCmd.MarkFlagRequired("by")

	rfDeleteCmd := &cobra.Command{
		Use:   "redflag-delete [id]",
		Short: "Delete a red flag",
		Args:  cobra.ExactArgs(1),
		RunE: e.store(func(cmd *cobra.Command, s *sanctions.Store, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := s.DeleteRedFlag(context.Background(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted red flag %d\n", id)
			return nil
		}),
	}

	dbCmd.AddCommand(
		listCmd, searchCmd, viewCmd, revokeCmd, statsCmd, reportCmd,
		playersCmd, playerCmd, noteCmd,
		rfListCmd, rfViewCmd, rfPlayerCmd, rfAddCmd, rfResolveCmd, rfDeleteCmd,
	)
	return dbCmd
}

// store adapts fn into a RunE that has the sanctions store open.
func (e *env) store(fn func(cmd *cobra.Command, s *sanctions.Store, args []string) error) func(*cobra.Command, []string) error {
	return e.run(func(cmd *cobra.Command, a *app.Context, args []string) error {
		s, err := a.Store()
		if err != nil {
			return err
		}
		return fn(cmd, s, args)
	})
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return "N/A"
	}
	return t.Local().Format(time.RFC1123)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func printSanctionTable(out io.Writer, entries []*sanctions.Sanction, empty string) {
	if len(entries) == 0 {
		fmt.Fprintln(out, empty)
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTYPE\tUSERNAME\tPLAYFAB ID\tAPPLIED\tREVOKED")
	for _, s := range entries {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			s.ID,
			s.Type,
			truncate(orNA(s.Username), 20),
			truncate(orNA(s.PlayFabID), 20),
			s.AppliedAt.Local().Format(listTimeFormat),
			yesNo(s.Revoked()),
		)
	}
	w.Flush()
}

func printSanctionList(out io.Writer, entries []*sanctions.Sanction) {
	if len(entries) == 0 {
		fmt.Fprintln(out, "No sanctions found matching the criteria.")
		return
	}

	fmt.Fprintf(out, "Found %d matching sanctions:\n\n", len(entries))
	for _, s := range entries {
		fmt.Fprintf(out, "ID: %d | Type: %s\n", s.ID, s.Type)
		fmt.Fprintf(out, "  Player: %s (%s)\n", orNA(s.Username), s.PlayFabID)
		if s.PreviousUsername != "" {
			fmt.Fprintf(out, "  Previously: %s\n", s.PreviousUsername)
		}
		fmt.Fprintf(out, "  Reason: %s\n", orNA(s.Reason))
		fmt.Fprintf(out, "  Applied: %s\n", s.AppliedAt.Local().Format(time.RFC1123))
		fmt.Fprintf(out, "  Revoked: %s\n", yesNo(s.Revoked()))
		fmt.Fprintln(out)
	}
}

func printSanction(out io.Writer, s *sanctions.Sanction) {
	fmt.Fprintf(out, "Sanction Details (ID: %d):\n", s.ID)
	fmt.Fprintf(out, "  Type: %s\n", s.Type)
	fmt.Fprintf(out, "  Player: %s\n", orNA(s.Username))
	fmt.Fprintf(out, "  PlayFab ID: %s\n", s.PlayFabID)
	fmt.Fprintf(out, "  Reason: %s\n", orNA(s.Reason))

	if s.Type == sanctions.EntryBan {
		if s.DurationHours != nil {
			fmt.Fprintf(out, "  Duration: %g hours\n", *s.DurationHours)
		} else {
			fmt.Fprintln(out, "  Duration: N/A")
		}
		fmt.Fprintf(out, "  Expires: %s\n", formatTimePtr(s.ExpiresAt))
	}
	if s.Type == sanctions.EntryUsernameUpdate {
		fmt.Fprintf(out, "  Previous username: %s\n", orNA(s.PreviousUsername))
	}
	if s.LastSeen != nil {
		fmt.Fprintf(out, "  Last seen: %s\n", formatTimePtr(s.LastSeen))
	}

	fmt.Fprintf(out, "  Moderator: %s (%s)\n", orNA(s.ModeratorName), orNA(s.ModeratorID))
	fmt.Fprintf(out, "  Applied: %s\n", s.AppliedAt.Local().Format(time.RFC1123))

	if s.Revoked() {
		fmt.Fprintf(out, "  Revoked: %s\n", formatTimePtr(s.RevokedAt))
		fmt.Fprintf(out, "  Revoked by: %s\n", orNA(s.RevokedBy))
	}
}

func printPlayerTable(out io.Writer, players []*sanctions.PlayerRecord) {
	if len(players) == 0 {
		fmt.Fprintln(out, "No players found.")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PLAYFAB ID\tUSERNAME\tLAST SEEN\tKNOWN AS")
	for _, p := range players {
		lastSeen := "N/A"
		if p.LastSeen != nil {
			lastSeen = p.LastSeen.Local().Format(listTimeFormat)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			p.PlayFabID,
			truncate(orNA(p.Username), 20),
			lastSeen,
			strings.Join(p.NameHistory, ", "),
		)
	}
	w.Flush()
}

func printPlayer(out io.Writer, p *sanctions.PlayerRecord) {
	fmt.Fprintf(out, "Player %s:\n", p.PlayFabID)
	fmt.Fprintf(out, "  Username: %s\n", orNA(p.Username))
	fmt.Fprintf(out, "  Last seen: %s\n", formatTimePtr(p.LastSeen))
	if len(p.NameHistory) > 0 {
		fmt.Fprintf(out, "  Known as: %s\n", strings.Join(p.NameHistory, ", "))
	}
	if p.Note != nil {
		fmt.Fprintf(out, "  Note: %s\n", *p.Note)
	}
	fmt.Fprintf(out, "  First recorded: %s\n", p.CreatedAt.Local().Format(time.RFC1123))
}

func printRedFlagTable(out io.Writer, flags []*sanctions.RedFlag) {
	if len(flags) == 0 {
		fmt.Fprintln(out, "No redflags found.")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUSERNAME\tPLAYFAB ID\tCREATED\tRESOLVED")
	for _, r := range flags {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			r.ID,
			truncate(orNA(r.Username), 20),
			truncate(orNA(r.PlayFabID), 20),
			r.CreatedAt.Local().Format(listTimeFormat),
			yesNo(r.Resolved()),
		)
	}
	w.Flush()
}

func printRedFlag(out io.Writer, r *sanctions.RedFlag) {
	fmt.Fprintf(out, "RedFlag Details (ID: %d):\n", r.ID)
	fmt.Fprintf(out, "  Player: %s\n", orNA(r.Username))
	fmt.Fprintf(out, "  PlayFab ID: %s\n", r.PlayFabID)
	fmt.Fprintf(out, "  Reason: %s\n", r.Reason)
	fmt.Fprintf(out, "  Moderator: %s (%s)\n", orNA(r.ModeratorName), orNA(r.ModeratorID))
	fmt.Fprintf(out, "  Created: %s\n", r.CreatedAt.Local().Format(time.RFC1123))

	if r.Resolved() {
		fmt.Fprintf(out, "  Resolved: %s\n", formatTimePtr(r.ResolvedAt))
		fmt.Fprintf(out, "  Resolved by: %s\n", orNA(r.ResolvedBy))
		fmt.Fprintf(out, "  Resolution note: %s\n", orNA(r.ResolutionNote))
	}
}
