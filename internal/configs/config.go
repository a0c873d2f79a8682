package configs

import (
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/google/uuid"

	"github.com/xaam-platform/envelope/internal/envelope"
	apperrors "github.com/xaam-platform/envelope/internal/errors"
	"github.com/xaam-platform/envelope/internal/utils"
)

// Config is the user's config.toml.
type Config struct {
	Identity   Identity          `toml:"identity"`
	Engine     Engine            `toml:"engine"`
	Recipients map[string]string `toml:"recipients"`
}

// Identity names the key pair used by default for opening envelopes.
type Identity struct {
	ID   string `toml:"id"`
	UUID string `toml:"uuid"`
}

// Engine tunes the envelope engine.
type Engine struct {
	Workers int `toml:"workers,omitempty"`
}

// LoadConfig loads the user configuration. A missing file yields an empty config.
func LoadConfig() (*Config, error) {
	config := &Config{
		Recipients: make(map[string]string),
	}

	if _, err := os.Stat(UserSettings.ConfigPath); os.IsNotExist(err) {
		return config, nil
	}

	if err := LoadTOML(UserSettings.ConfigPath, config); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if config.Recipients == nil {
		config.Recipients = make(map[string]string)
	}

	return config, nil
}

// SaveConfig writes the user configuration.
func SaveConfig(config *Config) error {
	if err := SaveTOML(UserSettings.ConfigPath, config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// GenerateUUID generates a new identity UUID.
func GenerateUUID() string {
	return uuid.New().String()
}

// EnsureConfig loads the configuration and assigns a UUID on first use.
func EnsureConfig() (*Config, error) {
	config, err := LoadConfig()
	if err != nil {
		return nil, err
	}

	if config.Identity.UUID == "" {
		config.Identity.UUID = GenerateUUID()
		if err := SaveConfig(config); err != nil {
			return nil, err
		}
	}

	return config, nil
}

// EngineOptions translates the [engine] table into envelope options.
func (c *Config) EngineOptions() []envelope.Option {
	var opts []envelope.Option
	if c.Engine.Workers > 0 {
		opts = append(opts, envelope.WithWorkers(c.Engine.Workers))
	}
	return opts
}

// AddRecipient validates publicKey and stores it under id.
func (c *Config) AddRecipient(id, publicKey string) error {
	if !utils.IsValidIdentifier(id) {
		return fmt.Errorf("%w: %q", apperrors.ErrInvalidIdentifier, id)
	}
	pub, err := envelope.ParsePublicKey(publicKey)
	if err != nil {
		return fmt.Errorf("recipient %s: %w: %w", id, apperrors.ErrInvalidRecipientKey, err)
	}
	if err := envelope.ValidatePublicKey(pub[:]); err != nil {
		return fmt.Errorf("recipient %s: %w", id, err)
	}
	if c.Recipients == nil {
		c.Recipients = make(map[string]string)
	}
	c.Recipients[id] = pub.String()
	return nil
}

// RemoveRecipient deletes id from the recipient book.
func (c *Config) RemoveRecipient(id string) error {
	if _, ok := c.Recipients[id]; !ok {
		return fmt.Errorf("%w: %s", apperrors.ErrRecipientNotFound, id)
	}
	delete(c.Recipients, id)
	return nil
}

// RecipientIDs returns the recipient book's ids in sorted order.
func (c *Config) RecipientIDs() []string {
	return slices.Sorted(maps.Keys(c.Recipients))
}

// ResolveRecipients looks ids up in the recipient book.
func (c *Config) ResolveRecipients(ids []string) (map[string]string, error) {
	resolved := make(map[string]string, len(ids))
	for _, id := range ids {
		key, ok := c.Recipients[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrRecipientNotFound, id)
		}
		resolved[id] = key
	}
	return resolved, nil
}
