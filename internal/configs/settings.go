package configs

import (
	"fmt"
	"os"
	"path/filepath"
)

// Settings holds the on-disk locations used by the CLI.
type Settings struct {
	KeysPath   string
	ConfigPath string
	AuditPath  string
}

// UserSettings is initialized at startup and may be overridden in tests.
var UserSettings *Settings

func init() {
	settings, err := DefaultSettings()
	if err != nil {
		// Fall back to the working directory; InitSettings reports the error.
		settings = &Settings{
			KeysPath:   filepath.Join(".envelope", "keys"),
			ConfigPath: filepath.Join(".envelope", "config.toml"),
			AuditPath:  filepath.Join(".envelope", "audit.jsonl"),
		}
	}
	UserSettings = settings
}

// DefaultSettings resolves paths from XDG_CONFIG_HOME and XDG_DATA_HOME,
// falling back to the platform defaults.
func DefaultSettings() (*Settings, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("error getting home directory: %w", err)
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("error getting config directory: %w", err)
	}

	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	return &Settings{
		KeysPath:   filepath.Join(dataDir, "envelope", "keys"),
		ConfigPath: filepath.Join(configDir, "envelope", "config.toml"),
		AuditPath:  filepath.Join(dataDir, "envelope", "audit.jsonl"),
	}, nil
}

// InitSettings recomputes UserSettings from the environment.
func InitSettings() error {
	settings, err := DefaultSettings()
	if err != nil {
		return err
	}
	UserSettings = settings
	return nil
}
