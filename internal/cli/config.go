// Package cli holds the terminal client: its config file, the HTTP client
// for the budgetly API, and the rendering helpers the commands share.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the client-side configuration stored in config.toml.
type Config struct {
	Server ServerConfig `toml:"server"`
}

// ServerConfig holds connection settings for the budgetly server.
type ServerConfig struct {
	URL   string `toml:"url"`
	Token string `toml:"token,omitempty"`
}

// DefaultConfig returns the configuration used when no config file exists.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			URL: "http://localhost:8080",
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "budgetly")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "budgetly")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// LoadConfig reads the config file, returning defaults if it doesn't exist.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// SaveConfig writes the config to disk.
func SaveConfig(cfg Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(ConfigPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Token returns the API token from the environment or the config, in that
// order. The environment wins so one-shot invocations can override the file.
func Token(cfg Config) string {
	if tok := os.Getenv("BUDGETLY_TOKEN"); tok != "" {
		return tok
	}
	return cfg.Server.Token
}

// ServerURL returns the server base URL from the environment or the config.
func ServerURL(cfg Config) string {
	if url := os.Getenv("BUDGETLY_SERVER_URL"); url != "" {
		return url
	}
	return cfg.Server.URL
}
