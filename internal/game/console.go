package game

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Lionkjgame1219/Chiv2AdminDashboard/internal/logging"
)

// Console issues admin commands through a Driver. Every command opens the
// console first, since the game closes it after each submitted line.
type Console struct {
	driver    Driver
	listDelay time.Duration
	sleep     func(time.Duration)
	log       *slog.Logger
}

// NewConsole creates a Console over driver.
func NewConsole(driver Driver, cfg Config) *Console {
	return &Console{
		driver:    driver,
		listDelay: cfg.ListPlayersDelay,
		sleep:     time.Sleep,
		log:       logging.WithComponent("game"),
	}
}

func (c *Console) run(command string) error {
	if err := c.driver.OpenConsole(); err != nil {
		return fmt.Errorf("open console: %w", err)
	}
	c.log.Debug("Sending console command", "command", command)
	if !c.driver.SendCommand(command) {
		c.log.Warn("Console command failed", "command", command)
		return fmt.Errorf("%w: %s", ErrCommandFailed, command)
	}
	return nil
}

// ListPlayers prints the player list to the game console and waits for the
// game to render it.
func (c *Console) ListPlayers() error {
	if err := c.run("listplayers"); err != nil {
		return err
	}
	c.sleep(c.listDelay)
	return nil
}

// BanByID bans a player for hours with reason.
func (c *Console) BanByID(playerID string, hours int, reason string) error {
	if err := validateID(playerID); err != nil {
		return err
	}
	if hours <= 0 {
		return fmt.Errorf("ban duration must be positive, got %d", hours)
	}
	return c.run(fmt.Sprintf("banbyid %s %d %s", playerID, hours, quote(BanMessage(hours, reason))))
}

// UnbanByID lifts a ban.
func (c *Console) UnbanByID(playerID string) error {
	if err := validateID(playerID); err != nil {
		return err
	}
	return c.run("unbanbyid " + playerID)
}

// KickByID kicks a player with reason.
func (c *Console) KickByID(playerID, reason string) error {
	if err := validateID(playerID); err != nil {
		return err
	}
	return c.run(fmt.Sprintf("kickbyid %s %s", playerID, quote(reason)))
}

// AddStageTime extends the current stage by minutes.
func (c *Console) AddStageTime(minutes int) error {
	return c.run(fmt.Sprintf("tbsaddstagetime %d", minutes))
}

// AdminSay broadcasts text as an admin message.
func (c *Console) AdminSay(text string) error {
	return c.run("adminsay " + oneLine(text))
}

// ServerSay broadcasts text as a server message.
func (c *Console) ServerSay(text string) error {
	return c.run("serversay " + oneLine(text))
}

// BanMessage is the message shown to a banned player, e.g.
// "Cheating. Ban duration: 50 hours (Nearly 2 days)."
func BanMessage(hours int, reason string) string {
	var b strings.Builder
	b.WriteString(reason)
	b.WriteString(". Ban duration: ")
	b.WriteString(plural(hours, "hour"))

	if hours > 24 {
		b.WriteString(" (")
		if hours%24 != 0 {
			b.WriteString("Nearly ")
		}
		b.WriteString(plural(hours/24, "day"))
		b.WriteString(")")
	}
	b.WriteString(".")
	return b.String()
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// quote wraps s in double quotes for the console parser. Embedded quotes
// would end the argument early, so they become single quotes.
func quote(s string) string {
	return `"` + strings.ReplaceAll(oneLine(s), `"`, `'`) + `"`
}

// oneLine keeps a message on one console line; a newline would submit it.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func validateID(playerID string) error {
	if playerID == "" || strings.ContainsAny(playerID, " \t\r\n\"") {
		return fmt.Errorf("invalid player id %q", playerID)
	}
	return nil
}
