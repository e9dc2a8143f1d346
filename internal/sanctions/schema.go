package sanctions

const schema = `
CREATE TABLE IF NOT EXISTS player_records (
    playfab_id TEXT PRIMARY KEY,
    username TEXT NOT NULL DEFAULT '',
    last_seen TEXT,
    name_history TEXT NOT NULL DEFAULT '[]',
    note TEXT,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS sanctions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    sanction_type TEXT NOT NULL,
    playfab_id TEXT NOT NULL,
    username TEXT NOT NULL DEFAULT '',
    previous_username TEXT NOT NULL DEFAULT '',
    reason TEXT NOT NULL DEFAULT '',
    duration_hours REAL,
    moderator_id TEXT NOT NULL DEFAULT '',
    moderator_name TEXT NOT NULL DEFAULT '',
    applied_at TEXT NOT NULL,
    expires_at TEXT,
    last_seen TEXT,
    revoked_at TEXT,
    revoked_by TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS redflags (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    playfab_id TEXT NOT NULL,
    username TEXT NOT NULL DEFAULT '',
    reason TEXT NOT NULL,
    moderator_id TEXT NOT NULL DEFAULT '',
    moderator_name TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL,
    resolved_at TEXT,
    resolved_by TEXT NOT NULL DEFAULT '',
    resolution_note TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_sanctions_playfab ON sanctions(playfab_id);
CREATE INDEX IF NOT EXISTS idx_sanctions_moderator ON sanctions(moderator_id);
CREATE INDEX IF NOT EXISTS idx_sanctions_applied ON sanctions(applied_at);
CREATE INDEX IF NOT EXISTS idx_redflags_playfab ON redflags(playfab_id);
CREATE INDEX IF NOT EXISTS idx_redflags_moderator ON redflags(moderator_id);
CREATE INDEX IF NOT EXISTS idx_players_last_seen ON player_records(last_seen);
`
