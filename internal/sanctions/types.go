package sanctions

import "time"

// EntryType is the kind of row in the sanctions table. Besides bans and
// kicks the table records identity history for a player.
type EntryType string

const (
	EntryBan            EntryType = "ban"
	EntryKick           EntryType = "kick"
	EntryUsernameUpdate EntryType = "username_update"
	EntryLastSeenUpdate EntryType = "last_seen_update"
)

// Valid reports whether t is a known entry type.
func (t EntryType) Valid() bool {
	switch t {
	case EntryBan, EntryKick, EntryUsernameUpdate, EntryLastSeenUpdate:
		return true
	}
	return false
}

// IsSanction reports whether t is a moderation action rather than history.
func (t EntryType) IsSanction() bool {
	return t == EntryBan || t == EntryKick
}

// Moderator identifies who performed an action.
type Moderator struct {
	ID   string
	Name string
}

// Sanction is one row of the sanctions table.
type Sanction struct {
	ID               int64
	Type             EntryType
	PlayFabID        string
	Username         string
	PreviousUsername string
	Reason           string
	DurationHours    *float64
	ModeratorID      string
	ModeratorName    string
	AppliedAt        time.Time
	ExpiresAt        *time.Time
	LastSeen         *time.Time
	RevokedAt        *time.Time
	RevokedBy        string
}

// Revoked reports whether the sanction has been lifted.
func (s *Sanction) Revoked() bool {
	return s.RevokedAt != nil
}

// Active reports whether a ban is still in force at now. Kicks and history
// rows are never active; a ban without expiry is active until revoked.
func (s *Sanction) Active(now time.Time) bool {
	if s.Type != EntryBan || s.Revoked() {
		return false
	}
	return s.ExpiresAt == nil || now.Before(*s.ExpiresAt)
}

// NewSanction describes a ban or kick to record.
type NewSanction struct {
	Type      EntryType
	PlayFabID string
	Username  string
	Reason    string
	// DurationHours is only meaningful for bans.
	DurationHours *float64
	Moderator     Moderator
}

// RedFlag marks a player for other moderators to watch.
type RedFlag struct {
	ID             int64
	PlayFabID      string
	Username       string
	Reason         string
	ModeratorID    string
	ModeratorName  string
	CreatedAt      time.Time
	ResolvedAt     *time.Time
	ResolvedBy     string
	ResolutionNote string
}

// Resolved reports whether the flag has been closed.
func (r *RedFlag) Resolved() bool {
	return r.ResolvedAt != nil
}

// NewRedFlag describes a red flag to record.
type NewRedFlag struct {
	PlayFabID string
	Username  string
	Reason    string
	Moderator Moderator
}

// PlayerRecord is the identity of one player as last seen by a moderator.
type PlayerRecord struct {
	PlayFabID   string
	Username    string
	LastSeen    *time.Time
	NameHistory []string
	Note        *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SearchFilter narrows SearchSanctions and SearchRedFlags. Empty fields
// match everything. Type is ignored for red flags.
type SearchFilter struct {
	// Username matches partially, case-insensitively, including names the
	// player used before.
	Username    string
	PlayFabID   string
	Type        EntryType
	ModeratorID string
	Limit       int
}

// SanctionStats summarizes the sanctions table.
type SanctionStats struct {
	TotalEntries         int
	TotalSanctions       int
	TotalBans            int
	TotalKicks           int
	TotalUsernameUpdates int
	TotalLastSeenUpdates int
	RevokedSanctions     int
}

// RedFlagStats summarizes the redflags table.
type RedFlagStats struct {
	Total    int
	Resolved int
}

// PlayerReport summarizes the bans and kicks of one player.
type PlayerReport struct {
	PlayFabID          string
	MostRecentUsername string
	TotalSanctions     int
	TotalBans          int
	TotalKicks         int
	RevokedSanctions   int
	FirstSanction      *time.Time
	LastSanction       *time.Time
	Sanctions          []*Sanction
}
