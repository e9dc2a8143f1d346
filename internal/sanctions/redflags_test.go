package sanctions

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateRedFlag(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	flag, err := s.CreateRedFlag(ctx, NewRedFlag{
		PlayFabID: "PF1",
		Username:  "Alice",
		Reason:    "Suspected smurf",
		Moderator: mod,
	})
	require.NoError(t, err)
	assert.NotZero(t, flag.ID)
	assert.False(t, flag.Resolved())

	got, err := s.GetRedFlag(ctx, flag.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Username)
	assert.Equal(t, "Suspected smurf", got.Reason)
	assert.Equal(t, "Warden", got.ModeratorName)
	assert.True(t, got.CreatedAt.Equal(flag.CreatedAt))

	player, err := s.GetPlayer(ctx, "PF1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", player.Username)

	// A red flag is not a sanctions-table entry.
	entries, err := s.SanctionsByPlayer(ctx, "PF1")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCreateRedFlag_Invalid(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.CreateRedFlag(ctx, NewRedFlag{Reason: "x"})
	assert.Error(t, err)

	_, err = s.CreateRedFlag(ctx, NewRedFlag{PlayFabID: "PF1", Reason: "  "})
	assert.Error(t, err)
}

func TestRedFlagQueries(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	other := Moderator{ID: "2002", Name: "Keeper"}
	_, err := s.CreateRedFlag(ctx, NewRedFlag{PlayFabID: "PF1", Username: "Alice", Reason: "a", Moderator: mod})
	require.NoError(t, err)
	_, err = s.CreateRedFlag(ctx, NewRedFlag{PlayFabID: "PF2", Username: "Bob", Reason: "b", Moderator: other})
	require.NoError(t, err)
	_, err = s.CreateRedFlag(ctx, NewRedFlag{PlayFabID: "PF1", Username: "Alicia", Reason: "c", Moderator: mod})
	require.NoError(t, err)

	all, err := s.ListRedFlags(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c", all[0].Reason)

	page, err := s.ListRedFlags(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "b", page[0].Reason)

	byPlayer, err := s.RedFlagsByPlayer(ctx, "PF1")
	require.NoError(t, err)
	assert.Len(t, byPlayer, 2)

	byMod, err := s.RedFlagsByModerator(ctx, "2002", 0)
	require.NoError(t, err)
	require.Len(t, byMod, 1)
	assert.Equal(t, "PF2", byMod[0].PlayFabID)

	// The first flag was raised under a name the player no longer uses.
	found, err := s.SearchRedFlags(ctx, SearchFilter{Username: "alice"})
	require.NoError(t, err)
	assert.Len(t, found, 2)

	found, err = s.SearchRedFlags(ctx, SearchFilter{ModeratorID: "1001", Limit: 1})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "c", found[0].Reason)
}

func TestResolveRedFlag(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	flag, err := s.CreateRedFlag(ctx, NewRedFlag{PlayFabID: "PF1", Username: "Alice", Reason: "a", Moderator: mod})
	require.NoError(t, err)

	require.NoError(t, s.ResolveRedFlag(ctx, flag.ID, "1001", "Talked it out"))

	got, err := s.GetRedFlag(ctx, flag.ID)
	require.NoError(t, err)
	assert.True(t, got.Resolved())
	assert.Equal(t, "1001", got.ResolvedBy)
	assert.Equal(t, "Talked it out", got.ResolutionNote)

	assert.ErrorIs(t, s.ResolveRedFlag(ctx, 999, "1001", ""), ErrNotFound)
}

func TestDeleteRedFlag(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	flag, err := s.CreateRedFlag(ctx, NewRedFlag{PlayFabID: "PF1", Username: "Alice", Reason: "a", Moderator: mod})
	require.NoError(t, err)

	require.NoError(t, s.DeleteRedFlag(ctx, flag.ID))

	_, err = s.GetRedFlag(ctx, flag.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.DeleteRedFlag(ctx, flag.ID), ErrNotFound)
}

func TestRedFlagStats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	stats, err := s.RedFlagStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, RedFlagStats{}, stats)

	flag, err := s.CreateRedFlag(ctx, NewRedFlag{PlayFabID: "PF1", Reason: "a", Moderator: mod})
	require.NoError(t, err)
	_, err = s.CreateRedFlag(ctx, NewRedFlag{PlayFabID: "PF2", Reason: "b", Moderator: mod})
	require.NoError(t, err)
	require.NoError(t, s.ResolveRedFlag(ctx, flag.ID, "1001", ""))

	stats, err = s.RedFlagStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, RedFlagStats{Total: 2, Resolved: 1}, stats)
}
