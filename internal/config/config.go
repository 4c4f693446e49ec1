// Package config loads the tabview settings file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"
)

// FileName is the name of the settings file inside DefaultDir.
const FileName = "config.json"

// Config holds tabview settings. Command line flags override every field.
type Config struct {
	Delimiter       string `json:"delimiter"`  // single character, empty picks by file extension
	Quote           string `json:"quote"`      // single character, empty means "
	Encoding        string `json:"encoding"`   // utf8, cp437, latin1, windows1252
	OutputMode      string `json:"outputMode"` // auto, utf8, cp437
	LogFile         string `json:"logFile"`
	Debug           bool   `json:"debug"`
	Listen          string `json:"listen"` // SSH listen address, empty runs locally
	HostKeyPath     string `json:"hostKeyPath"`
	PasswordHash    string `json:"passwordHash"` // bcrypt, empty allows any password
	MaxFailedLogins int    `json:"maxFailedLogins"`
	LockoutMinutes  int    `json:"lockoutMinutes"`
	MaxSessions     int    `json:"maxSessions"`
	Watch           bool   `json:"watch"`
	LegacySSH       bool   `json:"legacySSH"` // older key exchanges and ciphers for retro clients
}

// Default returns the settings used when no file exists.
func Default() Config {
	return Config{
		Encoding:        "utf8",
		OutputMode:      "auto",
		HostKeyPath:     "tabview_host_key",
		MaxFailedLogins: 5,
		LockoutMinutes:  15,
		MaxSessions:     10,
	}
}

// DefaultPath returns the settings file under the user config directory.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "tabview", FileName)
}

// Load reads the settings file at path over the defaults. A missing file
// is not an error.
func Load(path string) (Config, error) {
	defaultConfig := Default()
	if path == "" {
		return defaultConfig, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultConfig, nil
		}
		return defaultConfig, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	config := defaultConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return defaultConfig, fmt.Errorf("failed to parse config JSON from %s: %w", path, err)
	}
	if err := config.Validate(); err != nil {
		return defaultConfig, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return config, nil
}

// Validate checks field values that JSON decoding cannot.
func (c Config) Validate() error {
	if _, err := singleRune("delimiter", c.Delimiter); err != nil {
		return err
	}
	if _, err := singleRune("quote", c.Quote); err != nil {
		return err
	}
	if c.MaxSessions < 0 {
		return fmt.Errorf("maxSessions must not be negative, got %d", c.MaxSessions)
	}
	if c.MaxFailedLogins < 0 {
		return fmt.Errorf("maxFailedLogins must not be negative, got %d", c.MaxFailedLogins)
	}
	if c.MaxFailedLogins > 0 && c.LockoutMinutes <= 0 {
		return fmt.Errorf("lockoutMinutes must be positive when maxFailedLogins is set, got %d", c.LockoutMinutes)
	}
	return nil
}

// DelimiterRune returns the configured delimiter, or 0 when it is left to
// the file extension.
func (c Config) DelimiterRune() rune {
	r, _ := singleRune("delimiter", c.Delimiter)
	return r
}

// QuoteRune returns the configured quote character, defaulting to ".
func (c Config) QuoteRune() rune {
	r, _ := singleRune("quote", c.Quote)
	if r == 0 {
		return '"'
	}
	return r
}

func singleRune(name, s string) (rune, error) {
	switch s {
	case "":
		return 0, nil
	case `\t`:
		return '\t', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("%s must be a single character, got %q", name, s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}
