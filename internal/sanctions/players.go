package sanctions

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Player operations

const playerColumns = `playfab_id, username, last_seen, name_history, note, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlayer(row rowScanner) (*PlayerRecord, error) {
	var (
		p                    PlayerRecord
		lastSeen, note       sql.NullString
		history              string
		createdAt, updatedAt string
	)
	if err := row.Scan(&p.PlayFabID, &p.Username, &lastSeen, &history, &note, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if p.LastSeen, err = parseNullTime(lastSeen); err != nil {
		return nil, err
	}
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if note.Valid {
		p.Note = &note.String
	}
	if err := json.Unmarshal([]byte(history), &p.NameHistory); err != nil {
		return nil, fmt.Errorf("failed to unmarshal name history for %s: %w", p.PlayFabID, err)
	}
	if p.NameHistory == nil {
		p.NameHistory = []string{}
	}
	return &p, nil
}

// identityUpdate is one observation of a player, made while recording a
// sanction or a sighting.
type identityUpdate struct {
	PlayFabID string
	// Username is the name seen now. Empty leaves the stored name alone.
	Username  string
	LastSeen  *time.Time
	Moderator Moderator
	// LastSeenEntry also writes a last_seen_update row.
	LastSeenEntry bool
}

// upsertIdentity creates or updates the player record inside tx. A name
// change appends the previous name to the history and, for players already
// known, writes a username_update row.
func (s *Store) upsertIdentity(ctx context.Context, tx *sql.Tx, u identityUpdate) (*PlayerRecord, error) {
	now := s.now()

	rec, err := scanPlayer(tx.QueryRowContext(ctx,
		`SELECT `+playerColumns+` FROM player_records WHERE playfab_id = ?`, u.PlayFabID))
	created := false
	switch {
	case errors.Is(err, sql.ErrNoRows):
		created = true
		rec = &PlayerRecord{
			PlayFabID:   u.PlayFabID,
			NameHistory: []string{},
			CreatedAt:   now,
		}
	case err != nil:
		return nil, fmt.Errorf("failed to load player %s: %w", u.PlayFabID, err)
	}

	if u.Username != "" && u.Username != rec.Username {
		previous := rec.Username
		if previous != "" && !containsName(rec.NameHistory, previous) {
			rec.NameHistory = append(rec.NameHistory, previous)
		}
		rec.Username = u.Username

		// A brand-new record has no earlier name worth a history row.
		if !created {
			if _, err := insertEntry(ctx, tx, &Sanction{
				Type:             EntryUsernameUpdate,
				PlayFabID:        u.PlayFabID,
				Username:         u.Username,
				PreviousUsername: previous,
				ModeratorID:      u.Moderator.ID,
				ModeratorName:    u.Moderator.Name,
				AppliedAt:        now,
			}); err != nil {
				return nil, err
			}
		}
	}

	if u.LastSeen != nil {
		seen := *u.LastSeen
		rec.LastSeen = &seen

		if u.LastSeenEntry {
			if _, err := insertEntry(ctx, tx, &Sanction{
				Type:          EntryLastSeenUpdate,
				PlayFabID:     u.PlayFabID,
				Username:      rec.Username,
				ModeratorID:   u.Moderator.ID,
				ModeratorName: u.Moderator.Name,
				AppliedAt:     now,
				LastSeen:      &seen,
			}); err != nil {
				return nil, err
			}
		}
	}

	rec.UpdatedAt = now
	if err := savePlayer(ctx, tx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func savePlayer(ctx context.Context, tx *sql.Tx, rec *PlayerRecord) error {
	history, err := json.Marshal(rec.NameHistory)
	if err != nil {
		return fmt.Errorf("failed to marshal name history: %w", err)
	}

	var note sql.NullString
	if rec.Note != nil {
		note = sql.NullString{String: *rec.Note, Valid: true}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO player_records
		(playfab_id, username, last_seen, name_history, note, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(playfab_id) DO UPDATE SET
			username = excluded.username,
			last_seen = excluded.last_seen,
			name_history = excluded.name_history,
			note = excluded.note,
			updated_at = excluded.updated_at
	`,
		rec.PlayFabID,
		rec.Username,
		nullTime(rec.LastSeen),
		string(history),
		note,
		formatTime(rec.CreatedAt),
		formatTime(rec.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save player %s: %w", rec.PlayFabID, err)
	}
	return nil
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

// withTx runs fn in a transaction, committing when it returns nil.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// UpdateLastSeen records that a player was seen under username at seenAt
// (now when zero). It always writes a last_seen_update row.
func (s *Store) UpdateLastSeen(ctx context.Context, playfabID, username string, mod Moderator, seenAt time.Time) (*PlayerRecord, error) {
	if playfabID == "" {
		return nil, fmt.Errorf("playfab id is required")
	}
	if seenAt.IsZero() {
		seenAt = s.now()
	}

	var rec *PlayerRecord
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		rec, err = s.upsertIdentity(ctx, tx, identityUpdate{
			PlayFabID:     playfabID,
			Username:      username,
			LastSeen:      &seenAt,
			Moderator:     mod,
			LastSeenEntry: true,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug("Updated last seen", "playfab_id", playfabID, "username", username)
	return rec, nil
}

// SetNote sets or overwrites the moderator note of a player, creating the
// record if needed. A nil note clears it.
func (s *Store) SetNote(ctx context.Context, playfabID string, note *string) (*PlayerRecord, error) {
	if playfabID == "" {
		return nil, fmt.Errorf("playfab id is required")
	}

	var rec *PlayerRecord
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		rec, err = scanPlayer(tx.QueryRowContext(ctx,
			`SELECT `+playerColumns+` FROM player_records WHERE playfab_id = ?`, playfabID))
		if errors.Is(err, sql.ErrNoRows) {
			rec = &PlayerRecord{PlayFabID: playfabID, NameHistory: []string{}, CreatedAt: s.now()}
		} else if err != nil {
			return fmt.Errorf("failed to load player %s: %w", playfabID, err)
		}

		rec.Note = note
		rec.UpdatedAt = s.now()
		return savePlayer(ctx, tx, rec)
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// ClearNote removes the moderator note of a player.
func (s *Store) ClearNote(ctx context.Context, playfabID string) error {
	_, err := s.SetNote(ctx, playfabID, nil)
	return err
}

// GetPlayer returns the record for playfabID.
func (s *Store) GetPlayer(ctx context.Context, playfabID string) (*PlayerRecord, error) {
	rec, err := scanPlayer(s.db.QueryRowContext(ctx,
		`SELECT `+playerColumns+` FROM player_records WHERE playfab_id = ?`, playfabID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("player %s: %w", playfabID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player %s: %w", playfabID, err)
	}
	return rec, nil
}

// SearchPlayers matches query against the id, the current name and every
// earlier name, most recently seen first. A blank query matches nothing.
func (s *Store) SearchPlayers(ctx context.Context, query string, limit, offset int) ([]*PlayerRecord, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, nil
	}
	pattern := likePattern(q)

	return s.queryPlayers(ctx, `
		SELECT `+playerColumns+` FROM player_records
		WHERE playfab_id LIKE ? ESCAPE '\'
		   OR username LIKE ? ESCAPE '\'
		   OR name_history LIKE ? ESCAPE '\'
		ORDER BY last_seen DESC`+limitClause(limit, offset),
		pattern, pattern, pattern)
}

// ListPlayers returns all players, most recently seen first.
func (s *Store) ListPlayers(ctx context.Context, limit, offset int) ([]*PlayerRecord, error) {
	return s.queryPlayers(ctx, `
		SELECT `+playerColumns+` FROM player_records
		ORDER BY last_seen DESC`+limitClause(limit, offset))
}

func (s *Store) queryPlayers(ctx context.Context, query string, args ...any) ([]*PlayerRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query players: %w", err)
	}
	defer rows.Close()

	var players []*PlayerRecord
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating players: %w", err)
	}
	return players, nil
}
