package sanctions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Sanction operations

const sanctionColumns = `id, sanction_type, playfab_id, username, previous_username, reason,
	duration_hours, moderator_id, moderator_name, applied_at, expires_at, last_seen,
	revoked_at, revoked_by`

func scanSanction(row rowScanner) (*Sanction, error) {
	var (
		s                              Sanction
		entryType, appliedAt           string
		duration                       sql.NullFloat64
		expiresAt, lastSeen, revokedAt sql.NullString
	)
	err := row.Scan(
		&s.ID,
		&entryType,
		&s.PlayFabID,
		&s.Username,
		&s.PreviousUsername,
		&s.Reason,
		&duration,
		&s.ModeratorID,
		&s.ModeratorName,
		&appliedAt,
		&expiresAt,
		&lastSeen,
		&revokedAt,
		&s.RevokedBy,
	)
	if err != nil {
		return nil, err
	}

	s.Type = EntryType(entryType)
	if duration.Valid {
		d := duration.Float64
		s.DurationHours = &d
	}
	if s.AppliedAt, err = parseTime(appliedAt); err != nil {
		return nil, err
	}
	if s.ExpiresAt, err = parseNullTime(expiresAt); err != nil {
		return nil, err
	}
	if s.LastSeen, err = parseNullTime(lastSeen); err != nil {
		return nil, err
	}
	if s.RevokedAt, err = parseNullTime(revokedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

// insertEntry writes s and sets its ID.
func insertEntry(ctx context.Context, tx *sql.Tx, s *Sanction) (int64, error) {
	var duration sql.NullFloat64
	if s.DurationHours != nil {
		duration = sql.NullFloat64{Float64: *s.DurationHours, Valid: true}
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO sanctions
		(sanction_type, playfab_id, username, previous_username, reason, duration_hours,
		 moderator_id, moderator_name, applied_at, expires_at, last_seen, revoked_at, revoked_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		string(s.Type),
		s.PlayFabID,
		s.Username,
		s.PreviousUsername,
		s.Reason,
		duration,
		s.ModeratorID,
		s.ModeratorName,
		formatTime(s.AppliedAt),
		nullTime(s.ExpiresAt),
		nullTime(s.LastSeen),
		nullTime(s.RevokedAt),
		s.RevokedBy,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert %s entry for %s: %w", s.Type, s.PlayFabID, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get entry id: %w", err)
	}
	s.ID = id
	return id, nil
}

// CreateSanction records a ban or kick and updates the player's identity.
// Bans with a duration expire that many hours after they are applied.
func (s *Store) CreateSanction(ctx context.Context, in NewSanction) (*Sanction, error) {
	if !in.Type.IsSanction() {
		return nil, fmt.Errorf("invalid sanction type %q", in.Type)
	}
	if in.PlayFabID == "" {
		return nil, fmt.Errorf("playfab id is required")
	}

	appliedAt := s.now()
	sanction := &Sanction{
		Type:          in.Type,
		PlayFabID:     in.PlayFabID,
		Username:      in.Username,
		Reason:        in.Reason,
		DurationHours: in.DurationHours,
		ModeratorID:   in.Moderator.ID,
		ModeratorName: in.Moderator.Name,
		AppliedAt:     appliedAt,
	}
	if in.Type == EntryBan && in.DurationHours != nil {
		expires := appliedAt.Add(time.Duration(*in.DurationHours * float64(time.Hour)))
		sanction.ExpiresAt = &expires
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := s.upsertIdentity(ctx, tx, identityUpdate{
			PlayFabID: in.PlayFabID,
			Username:  in.Username,
			LastSeen:  &appliedAt,
			Moderator: in.Moderator,
		}); err != nil {
			return err
		}
		_, err := insertEntry(ctx, tx, sanction)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Created sanction", "type", in.Type, "playfab_id", in.PlayFabID, "id", sanction.ID)
	return sanction, nil
}

// ListSanctions returns entries newest first. A limit <= 0 means no limit.
func (s *Store) ListSanctions(ctx context.Context, limit, offset int) ([]*Sanction, error) {
	return s.querySanctions(ctx, `SELECT `+sanctionColumns+` FROM sanctions
		ORDER BY applied_at DESC, id DESC`+limitClause(limit, offset))
}

// GetSanction returns the entry with the given id.
func (s *Store) GetSanction(ctx context.Context, id int64) (*Sanction, error) {
	sanction, err := scanSanction(s.db.QueryRowContext(ctx,
		`SELECT `+sanctionColumns+` FROM sanctions WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("sanction %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sanction %d: %w", id, err)
	}
	return sanction, nil
}

// SanctionsByPlayer returns every entry for playfabID, newest first.
func (s *Store) SanctionsByPlayer(ctx context.Context, playfabID string) ([]*Sanction, error) {
	return s.querySanctions(ctx, `SELECT `+sanctionColumns+` FROM sanctions
		WHERE playfab_id = ?
		ORDER BY applied_at DESC, id DESC`, playfabID)
}

// SanctionsByModerator returns entries made by moderatorID, newest first.
func (s *Store) SanctionsByModerator(ctx context.Context, moderatorID string, limit int) ([]*Sanction, error) {
	return s.querySanctions(ctx, `SELECT `+sanctionColumns+` FROM sanctions
		WHERE moderator_id = ?
		ORDER BY applied_at DESC, id DESC`+limitClause(limit, 0), moderatorID)
}

// SearchSanctions returns entries matching every non-empty field of f.
func (s *Store) SearchSanctions(ctx context.Context, f SearchFilter) ([]*Sanction, error) {
	var (
		where []string
		args  []any
	)

	if f.Username != "" {
		pattern := likePattern(f.Username)
		where = append(where, `(username LIKE ? ESCAPE '\'
			OR previous_username LIKE ? ESCAPE '\'
			OR playfab_id IN (
				SELECT playfab_id FROM player_records
				WHERE username LIKE ? ESCAPE '\' OR name_history LIKE ? ESCAPE '\'
			))`)
		args = append(args, pattern, pattern, pattern, pattern)
	}
	if f.PlayFabID != "" {
		where = append(where, "playfab_id = ?")
		args = append(args, f.PlayFabID)
	}
	if f.Type != "" {
		where = append(where, "sanction_type = ?")
		args = append(args, string(f.Type))
	}
	if f.ModeratorID != "" {
		where = append(where, "moderator_id = ?")
		args = append(args, f.ModeratorID)
	}

	query := `SELECT ` + sanctionColumns + ` FROM sanctions`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY applied_at DESC, id DESC" + limitClause(f.Limit, 0)

	return s.querySanctions(ctx, query, args...)
}

// RevokeSanction marks the entry as revoked by revokedBy.
func (s *Store) RevokeSanction(ctx context.Context, id int64, revokedBy string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE sanctions SET revoked_at = ?, revoked_by = ? WHERE id = ?`,
		formatTime(s.now()), revokedBy, id)
	if err != nil {
		return fmt.Errorf("failed to revoke sanction %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("sanction %d: %w", id, ErrNotFound)
	}

	s.log.Info("Revoked sanction", "id", id, "revoked_by", revokedBy)
	return nil
}

// SanctionStats counts entries by type. Revoked counts bans and kicks only.
func (s *Store) SanctionStats(ctx context.Context) (SanctionStats, error) {
	var st SanctionStats
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(sanction_type = 'ban'), 0),
			COALESCE(SUM(sanction_type = 'kick'), 0),
			COALESCE(SUM(sanction_type = 'username_update'), 0),
			COALESCE(SUM(sanction_type = 'last_seen_update'), 0),
			COALESCE(SUM(sanction_type IN ('ban', 'kick') AND revoked_at IS NOT NULL), 0)
		FROM sanctions
	`).Scan(
		&st.TotalEntries,
		&st.TotalBans,
		&st.TotalKicks,
		&st.TotalUsernameUpdates,
		&st.TotalLastSeenUpdates,
		&st.RevokedSanctions,
	)
	if err != nil {
		return SanctionStats{}, fmt.Errorf("failed to count sanctions: %w", err)
	}
	st.TotalSanctions = st.TotalBans + st.TotalKicks
	return st, nil
}

func (s *Store) querySanctions(ctx context.Context, query string, args ...any) ([]*Sanction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sanctions: %w", err)
	}
	defer rows.Close()

	var out []*Sanction
	for rows.Next() {
		sanction, err := scanSanction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sanction: %w", err)
		}
		out = append(out, sanction)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sanctions: %w", err)
	}
	return out, nil
}
