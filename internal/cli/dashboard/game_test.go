package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lionkjgame1219/Chiv2AdminDashboard/internal/config"
	"github.com/Lionkjgame1219/Chiv2AdminDashboard/internal/game"
)

func TestGameBan(t *testing.T) {
	te := newTestEnv(t, "")

	out, err := te.exec("game", "ban", "PF1", "--hours", "50", "--reason", "Cheating")
	require.NoError(t, err)
	assert.Contains(t, out, "Banned PF1")
	assert.Contains(t, out, "Recorded ban 1")

	require.Len(t, te.driver.commands, 1)
	assert.Equal(t, `banbyid PF1 50 "Cheating. Ban duration: 50 hours (Nearly 2 days)."`, te.driver.commands[0])
}

func TestGameBan_Preset(t *testing.T) {
	te := newTestEnv(t, "")

	_, err := te.exec("game", "ban", "PF1", "--hours", "1", "--preset", "0", "--no-record")
	require.NoError(t, err)
	require.Len(t, te.driver.commands, 1)
	assert.Equal(t, `banbyid PF1 1 "Teamkilling. Ban duration: 1 hour."`, te.driver.commands[0])

	out, err := te.exec("db", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No sanctions found.")
}

func TestGameBan_InvalidReason(t *testing.T) {
	te := newTestEnv(t, "")

	tests := []struct {
		name string
		args []string
	}{
		{"no reason", []string{"game", "ban", "PF1", "--hours", "1"}},
		{"empty preset", []string{"game", "ban", "PF1", "--hours", "1", "--preset", "1"}},
		{"preset out of range", []string{"game", "ban", "PF1", "--hours", "1", "--preset", "9"}},
		{"both", []string{"game", "ban", "PF1", "--hours", "1", "--preset", "0", "--reason", "x"}},
		{"missing hours", []string{"game", "ban", "PF1", "--reason", "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := te.exec(tt.args...)
			assert.Error(t, err)
		})
	}
	assert.Empty(t, te.driver.commands)
}

func TestGameKick_CommandFailureIsNotRecorded(t *testing.T) {
	te := newTestEnv(t, "")
	te.driver.fail = true

	_, err := te.exec("game", "kick", "PF1", "--reason", "AFK")
	assert.ErrorIs(t, err, game.ErrCommandFailed)

	te.driver.fail = false
	out, err := te.exec("db", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No sanctions found.")
}

func TestGameCommands(t *testing.T) {
	te := newTestEnv(t, "")

	for _, args := range [][]string{
		{"game", "unban", "PF1"},
		{"game", "say", "Round", "starts", "soon"},
		{"game", "serversay", "Restart in 5"},
		{"game", "addtime", "10"},
		{"game", "listplayers"},
	} {
		_, err := te.exec(args...)
		require.NoError(t, err, "%v", args)
	}

	assert.Equal(t, []string{
		"unbanbyid PF1",
		"adminsay Round starts soon",
		"serversay Restart in 5",
		"tbsaddstagetime 10",
		"listplayers",
	}, te.driver.commands)

	_, err := te.exec("game", "addtime", "ten")
	assert.Error(t, err)
}

func TestGamePresets(t *testing.T) {
	te := newTestEnv(t, "")

	out, err := te.exec("game", "presets")
	require.NoError(t, err)
	assert.Contains(t, out, "0: Teamkilling")
	assert.Contains(t, out, "2: Cheating")
	assert.NotContains(t, out, "1:")
}

func TestGamePresetSet(t *testing.T) {
	te := newTestEnv(t, "")

	out, err := te.exec("game", "preset-set", "1", "Spawn camping")
	require.NoError(t, err)
	assert.Contains(t, out, "Preset 1: Spawn camping")

	out, err = te.exec("game", "presets")
	require.NoError(t, err)
	assert.Contains(t, out, "0: Teamkilling")
	assert.Contains(t, out, "1: Spawn camping")
	assert.Contains(t, out, "2: Cheating")

	out, err = te.exec("game", "preset-set", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Preset 2 cleared.")

	cfg, err := config.LoadApp(te.configPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"Teamkilling", "Spawn camping"}, cfg.Game.Presets)

	_, err = te.exec("game", "preset-set", "10", "x")
	assert.Error(t, err)
}
