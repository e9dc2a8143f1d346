package sanctions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// Red flag operations

const redFlagColumns = `id, playfab_id, username, reason, moderator_id, moderator_name,
	created_at, resolved_at, resolved_by, resolution_note`

func scanRedFlag(row rowScanner) (*RedFlag, error) {
	var (
		r          RedFlag
		createdAt  string
		resolvedAt sql.NullString
	)
	err := row.Scan(
		&r.ID,
		&r.PlayFabID,
		&r.Username,
		&r.Reason,
		&r.ModeratorID,
		&r.ModeratorName,
		&createdAt,
		&resolvedAt,
		&r.ResolvedBy,
		&r.ResolutionNote,
	)
	if err != nil {
		return nil, err
	}

	if r.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if r.ResolvedAt, err = parseNullTime(resolvedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

// CreateRedFlag records a red flag and updates the player's identity.
func (s *Store) CreateRedFlag(ctx context.Context, in NewRedFlag) (*RedFlag, error) {
	if in.PlayFabID == "" {
		return nil, fmt.Errorf("playfab id is required")
	}
	if strings.TrimSpace(in.Reason) == "" {
		return nil, fmt.Errorf("reason is required")
	}

	createdAt := s.now()
	flag := &RedFlag{
		PlayFabID:     in.PlayFabID,
		Username:      in.Username,
		Reason:        in.Reason,
		ModeratorID:   in.Moderator.ID,
		ModeratorName: in.Moderator.Name,
		CreatedAt:     createdAt,
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := s.upsertIdentity(ctx, tx, identityUpdate{
			PlayFabID: in.PlayFabID,
			Username:  in.Username,
			LastSeen:  &createdAt,
			Moderator: in.Moderator,
		}); err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, `
			INSERT INTO redflags
			(playfab_id, username, reason, moderator_id, moderator_name, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`,
			flag.PlayFabID,
			flag.Username,
			flag.Reason,
			flag.ModeratorID,
			flag.ModeratorName,
			formatTime(flag.CreatedAt),
		)
		if err != nil {
			return fmt.Errorf("failed to insert red flag for %s: %w", in.PlayFabID, err)
		}
		flag.ID, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Created red flag", "playfab_id", in.PlayFabID, "id", flag.ID)
	return flag, nil
}

// ListRedFlags returns red flags newest first. A limit <= 0 means no limit.
func (s *Store) ListRedFlags(ctx context.Context, limit, offset int) ([]*RedFlag, error) {
	return s.queryRedFlags(ctx, `SELECT `+redFlagColumns+` FROM redflags
		ORDER BY created_at DESC, id DESC`+limitClause(limit, offset))
}

// GetRedFlag returns the red flag with the given id.
func (s *Store) GetRedFlag(ctx context.Context, id int64) (*RedFlag, error) {
	flag, err := scanRedFlag(s.db.QueryRowContext(ctx,
		`SELECT `+redFlagColumns+` FROM redflags WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("red flag %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get red flag %d: %w", id, err)
	}
	return flag, nil
}

// RedFlagsByPlayer returns every red flag for playfabID, newest first.
func (s *Store) RedFlagsByPlayer(ctx context.Context, playfabID string) ([]*RedFlag, error) {
	return s.queryRedFlags(ctx, `SELECT `+redFlagColumns+` FROM redflags
		WHERE playfab_id = ?
		ORDER BY created_at DESC, id DESC`, playfabID)
}

// RedFlagsByModerator returns red flags raised by moderatorID, newest first.
func (s *Store) RedFlagsByModerator(ctx context.Context, moderatorID string, limit int) ([]*RedFlag, error) {
	return s.queryRedFlags(ctx, `SELECT `+redFlagColumns+` FROM redflags
		WHERE moderator_id = ?
		ORDER BY created_at DESC, id DESC`+limitClause(limit, 0), moderatorID)
}

// SearchRedFlags returns red flags matching every non-empty field of f.
func (s *Store) SearchRedFlags(ctx context.Context, f SearchFilter) ([]*RedFlag, error) {
	var (
		where []string
		args  []any
	)

	if f.Username != "" {
		pattern := likePattern(f.Username)
		where = append(where, `(username LIKE ? ESCAPE '\'
			OR playfab_id IN (
				SELECT playfab_id FROM player_records
				WHERE username LIKE ? ESCAPE '\' OR name_history LIKE ? ESCAPE '\'
			))`)
		args = append(args, pattern, pattern, pattern)
	}
	if f.PlayFabID != "" {
		where = append(where, "playfab_id = ?")
		args = append(args, f.PlayFabID)
	}
	if f.ModeratorID != "" {
		where = append(where, "moderator_id = ?")
		args = append(args, f.ModeratorID)
	}

	query := `SELECT ` + redFlagColumns + ` FROM redflags`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC" + limitClause(f.Limit, 0)

	return s.queryRedFlags(ctx, query, args...)
}

// ResolveRedFlag closes a red flag with an optional note.
func (s *Store) ResolveRedFlag(ctx context.Context, id int64, resolvedBy, note string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE redflags SET resolved_at = ?, resolved_by = ?, resolution_note = ? WHERE id = ?`,
		formatTime(s.now()), resolvedBy, note, id)
	if err != nil {
		return fmt.Errorf("failed to resolve red flag %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("red flag %d: %w", id, ErrNotFound)
	}

	s.log.Info("Resolved red flag", "id", id, "resolved_by", resolvedBy)
	return nil
}

// DeleteRedFlag removes a red flag.
func (s *Store) DeleteRedFlag(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM redflags WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete red flag %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("red flag %d: %w", id, ErrNotFound)
	}

	s.log.Info("Deleted red flag", "id", id)
	return nil
}

// RedFlagStats counts red flags.
func (s *Store) RedFlagStats(ctx context.Context) (RedFlagStats, error) {
	var st RedFlagStats
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(resolved_at IS NOT NULL), 0) FROM redflags
	`).Scan(&st.Total, &st.Resolved)
	if err != nil {
		return RedFlagStats{}, fmt.Errorf("failed to count red flags: %w", err)
	}
	return st, nil
}

func (s *Store) queryRedFlags(ctx context.Context, query string, args ...any) ([]*RedFlag, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query red flags: %w", err)
	}
	defer rows.Close()

	var out []*RedFlag
	for rows.Next() {
		flag, err := scanRedFlag(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan red flag: %w", err)
		}
		out = append(out, flag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating red flags: %w", err)
	}
	return out, nil
}
