package config

// DefaultTemplate is the fully commented default configuration written by
// `dashboard config init`.
const DefaultTemplate = `# Chivalry 2 Admin Dashboard configuration
# ${VAR} references are expanded from the environment.

logging:
  level: info                # debug, info, warn, error
  format: text               # text or json
  output: stderr             # stdout, stderr or discard
  # file: "/path/to/dashboard.log"   # copy every record into a file

# Self-update from the release feed. Runs once at startup.
update:
  enabled: true
  feed_url: "https://api.github.com/repos/Lionkjgame1219/Chiv2AdminDashboard/releases?per_page=100"
  asset_suffix: ".exe"       # only artifacts ending with this are installable
  product_keywords:          # fallback match when the file was renamed
    - admindashboard
    - dashboard
  # state_file: ""           # defaults to <app data>/autoupdate_state.json
  catalog_timeout: 5s        # startup check, keep it short
  download_timeout: 300s
  rename_budget: 60s         # how long a locked executable is retried
  rename_interval: 500ms
  # metrics_file: "/path/to/updater.prom"   # Prometheus textfile snapshot

# Sanctions and red flags database.
database:
  path: "sanctions.db"       # relative paths resolve against the working directory

# In-game console driver (Windows only).
game:
  window_title: "Chivalry 2  "   # the two trailing spaces matter
  # console_key: "` + "`" + `"          # empty detects from the keyboard layout
  # console_vk: 0              # raw virtual-key code, overrides console_key
  key_press: 10ms
  key_delay: 10ms
  console_open_delay: 80ms
  list_players_delay: 500ms
  presets:                   # reason slots 0-9 for --preset
    - "Teamkilling"
    - "Cheating"
`
