// Package config loads the bot configuration from the environment, an
// optional .env file and a JSON overrides file.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/keshon/musicbot/internal/command"
	"github.com/keshon/musicbot/internal/permissions"
)

// AdminGroup is the group every configured admin is assigned to.
const AdminGroup = "admin"

var (
	ErrMissing   = errors.New("missing required configuration")
	ErrInvalid   = errors.New("invalid configuration")
	ErrOverrides = errors.New("invalid overrides file")
)

type Config struct {
	DiscordToken string   `env:"DISCORD_TOKEN"`
	GuildID      string   `env:"DISCORD_SERVER_ID"`
	ChannelID    string   `env:"DISCORD_CHANNEL_ID"`
	Prefix       string   `env:"COMMAND_PREFIX" envDefault:"!"`
	AdminUserIDs []string `env:"ADMIN_USER_IDS" envSeparator:","`

	OverridesFile string `env:"OVERRIDES_FILE"`
	StoragePath   string `env:"STORAGE_PATH" envDefault:"datastore.json"`
	LogFile       string `env:"LOG_FILE"`
	Debug         bool   `env:"DEBUG"`

	SpotifyClientID     string `env:"SPOTIFY_CLIENT_ID"`
	SpotifyClientSecret string `env:"SPOTIFY_CLIENT_SECRET"`

	// CommandRate is commands per second per user; 0 disables the limit.
	CommandRate  float64 `env:"COMMAND_RATE" envDefault:"1"`
	CommandBurst int     `env:"COMMAND_BURST" envDefault:"3"`
}

// Load reads .env when present and parses the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("config: no .env file found, using system environment")
	}
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return &cfg, nil
}

// Validate reports the first setting the bot cannot start without.
func (c *Config) Validate() error {
	switch {
	case c.DiscordToken == "":
		return fmt.Errorf("%w: DISCORD_TOKEN", ErrMissing)
	case c.GuildID == "":
		return fmt.Errorf("%w: DISCORD_SERVER_ID", ErrMissing)
	case c.ChannelID == "":
		return fmt.Errorf("%w: DISCORD_CHANNEL_ID", ErrMissing)
	case strings.TrimSpace(c.Prefix) != c.Prefix || c.Prefix == "":
		return fmt.Errorf("%w: command prefix %q", ErrInvalid, c.Prefix)
	case c.CommandRate < 0 || c.CommandBurst < 0:
		return fmt.Errorf("%w: negative command rate limit", ErrInvalid)
	}
	return nil
}

func (c *Config) SpotifyEnabled() bool {
	return c.SpotifyClientID != "" && c.SpotifyClientSecret != ""
}

// Overrides is the user supplied layer over the built-in tables.
type Overrides struct {
	Permissions permissions.Table           `json:"permissions"`
	Messages    map[string]string           `json:"messages"`
	Commands    map[string]command.Override `json:"commands"`
}

// LoadOverrides reads the overrides file at path. An empty path yields no
// overrides. Unknown fields are rejected so typos fail at startup.
func LoadOverrides(path string) (Overrides, error) {
	var ov Overrides
	if path == "" {
		return ov, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ov, fmt.Errorf("%w: %w", ErrOverrides, err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&ov); err != nil {
		return ov, fmt.Errorf("%w: %s: %w", ErrOverrides, path, err)
	}
	return ov, nil
}

// PermissionTable layers the defaults, the overrides and the admin list, in
// that order.
func (c *Config) PermissionTable(ov Overrides) permissions.Table {
	admins := permissions.Table{Users: make(map[string]string, len(c.AdminUserIDs))}
	for _, id := range c.AdminUserIDs {
		if id = strings.TrimSpace(id); id != "" {
			admins.Users[id] = AdminGroup
		}
	}
	return permissions.Merge(permissions.Merge(permissions.Defaults(), ov.Permissions), admins)
}
