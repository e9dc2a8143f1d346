package sanctions

import (
	"context"
	"time"
)

// Reports

// PlayerReport summarizes the bans and kicks of playfabID. Identity history
// rows are not counted. A player without sanctions yields a zero report.
func (s *Store) PlayerReport(ctx context.Context, playfabID string) (*PlayerReport, error) {
	entries, err := s.SanctionsByPlayer(ctx, playfabID)
	if err != nil {
		return nil, err
	}

	report := &PlayerReport{PlayFabID: playfabID}
	for _, e := range entries {
		if !e.Type.IsSanction() {
			continue
		}
		report.Sanctions = append(report.Sanctions, e)
	}

	t := tally(report.Sanctions)
	report.TotalSanctions = t.total
	report.TotalBans = t.bans
	report.TotalKicks = t.kicks
	report.RevokedSanctions = t.revoked
	report.FirstSanction = t.first
	report.LastSanction = t.last
	if t.latest != nil {
		report.MostRecentUsername = t.latest.Username
	}
	return report, nil
}

// ModeratorReport summarizes the activity of one moderator.
type ModeratorReport struct {
	ModeratorID      string
	ModeratorName    string
	TotalSanctions   int
	TotalBans        int
	TotalKicks       int
	RevokedSanctions int
	FirstSanction    *time.Time
	LastSanction     *time.Time
	Sanctions        []*Sanction
}

// ModeratorReport summarizes up to limit recent bans and kicks applied by
// moderatorID.
func (s *Store) ModeratorReport(ctx context.Context, moderatorID string, limit int) (*ModeratorReport, error) {
	entries, err := s.SearchSanctions(ctx, SearchFilter{ModeratorID: moderatorID})
	if err != nil {
		return nil, err
	}

	report := &ModeratorReport{ModeratorID: moderatorID}
	for _, e := range entries {
		if !e.Type.IsSanction() {
			continue
		}
		if limit > 0 && len(report.Sanctions) == limit {
			break
		}
		report.Sanctions = append(report.Sanctions, e)
	}

	t := tally(report.Sanctions)
	report.TotalSanctions = t.total
	report.TotalBans = t.bans
	report.TotalKicks = t.kicks
	report.RevokedSanctions = t.revoked
	report.FirstSanction = t.first
	report.LastSanction = t.last
	if t.latest != nil {
		report.ModeratorName = t.latest.ModeratorName
	}
	return report, nil
}

type sanctionTally struct {
	total, bans, kicks, revoked int
	first, last                 *time.Time
	latest                      *Sanction
}

func tally(entries []*Sanction) sanctionTally {
	var t sanctionTally
	for _, e := range entries {
		t.total++
		switch e.Type {
		case EntryBan:
			t.bans++
		case EntryKick:
			t.kicks++
		}
		if e.Revoked() {
			t.revoked++
		}

		at := e.AppliedAt
		if t.first == nil || at.Before(*t.first) {
			t.first = &at
		}
		if t.last == nil || at.After(*t.last) {
			t.last = &at
			t.latest = e
		}
	}
	return t
}
