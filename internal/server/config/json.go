package config

import (
	"encoding/json"
	"os"

	"github.com/ddanshin/guildvault/internal/flagx"
	"github.com/ddanshin/guildvault/internal/timex"
)

// JsonConfig is an intermediate DTO for reading JSON configuration files.
// It uses timex.Duration so interval fields parse both string values such
// as "2h" and integer nanoseconds. After unmarshalling, set fields are
// copied into the runtime Config.
type JsonConfig struct {
	DatabaseDSN   string         `json:"database_dsn"`
	DiscordToken  string         `json:"discord_token"`
	CommandPrefix string         `json:"command_prefix"`
	SessionTTL    timex.Duration `json:"session_duration"`
}

// parseJson loads configuration values from the JSON file named by the
// -c/-config flags into the provided Config. When no file is named, it is
// a no-op.
func parseJson(config *Config) error {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return nil
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		return err
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return err
	}

	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.DiscordToken != "" {
		config.DiscordToken = c.DiscordToken
	}
	if c.CommandPrefix != "" {
		config.CommandPrefix = c.CommandPrefix
	}
	if c.SessionTTL.Duration != 0 {
		config.SessionTTL = c.SessionTTL.Duration
	}

	return nil
}
