package workflows

import (
	"context"
	"fmt"

	"github.com/xaam-platform/envelope/internal/audit"
	"github.com/xaam-platform/envelope/internal/configs"
	apperrors "github.com/xaam-platform/envelope/internal/errors"
	"github.com/xaam-platform/envelope/internal/keystore"
	"github.com/xaam-platform/envelope/internal/utils"
)

// GenerateOptions configures the generate workflow.
type GenerateOptions struct {
	// ID names the new identity. If empty, one is derived from the username and hostname.
	ID string

	// Force replaces an existing key pair with the same id.
	Force bool

	// SetDefault makes the identity the default for opening. The first
	// identity ever generated always becomes the default.
	SetDefault bool
}

// GenerateResult contains the outcome of a generate operation.
type GenerateResult struct {
	ID             string
	PublicKey      string
	PrivateKeyPath string
	PublicKeyPath  string

	// IsDefault indicates the identity is now the configured default.
	IsDefault bool
}

// GenerateIdentity creates a new key pair and stores it in the keys directory.
//
// Returns ErrIdentityExists if the id is taken and Force is not set.
// Returns ErrInvalidIdentifier if the id contains invalid characters.
func GenerateIdentity(ctx context.Context, opts GenerateOptions) (*GenerateResult, error) {
	config, err := configs.EnsureConfig()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	keysDir := configs.UserSettings.KeysPath

	id := opts.ID
	if id == "" {
		existing, err := keystore.List(keysDir)
		if err != nil {
			return nil, err
		}
		ids := make([]string, len(existing))
		for i, identity := range existing {
			ids[i] = identity.ID
		}
		id = utils.GenerateIdentityID(ids)
	}
	if !utils.IsValidIdentifier(id) {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrInvalidIdentifier, id)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	kp, err := newEngine(config).GenerateKeyPair()
	if err != nil {
		return nil, err
	}
	defer kp.Wipe()

	privPath, pubPath, err := keystore.Save(keysDir, id, kp, opts.Force)
	if err != nil {
		return nil, err
	}

	result := &GenerateResult{
		ID:             id,
		PublicKey:      kp.PublicKey.String(),
		PrivateKeyPath: privPath,
		PublicKeyPath:  pubPath,
	}

	if opts.SetDefault || config.Identity.ID == "" {
		config.Identity.ID = id
		if err := configs.SaveConfig(config); err != nil {
			return nil, err
		}
		result.IsDefault = true
	}

	entry := audit.LogWithIdentity("keys.generate")
	entry.Identity = id
	audit.Log(entry)

	return result, nil
}

// IdentityInfo describes a stored identity.
type IdentityInfo struct {
	ID        string
	PublicKey string

	// PrivateKeyPath is empty when only the public half is stored.
	PrivateKeyPath string

	// Default indicates this is the configured default identity.
	Default bool

	// Secure is false when the private key is readable by group or others.
	Secure bool
}

// ListIdentities returns all identities in the keys directory.
func ListIdentities(ctx context.Context) ([]IdentityInfo, error) {
	config, err := configs.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	identities, err := keystore.List(configs.UserSettings.KeysPath)
	if err != nil {
		return nil, err
	}

	infos := make([]IdentityInfo, 0, len(identities))
	for _, identity := range identities {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		infos = append(infos, describeIdentity(identity, config.Identity.ID))
	}
	return infos, nil
}

// ShowIdentity returns the identity named id, or the default identity when id is empty.
//
// Returns ErrNoIdentityConfigured if id is empty and no default is set.
// Returns ErrIdentityNotFound if no key pair is stored for the id.
func ShowIdentity(ctx context.Context, id string) (*IdentityInfo, error) {
	config, err := configs.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if id == "" {
		id = config.Identity.ID
	}
	if id == "" {
		return nil, apperrors.ErrNoIdentityConfigured
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	identity, priv, err := keystore.Load(configs.UserSettings.KeysPath, id)
	if err != nil {
		return nil, err
	}
	clear(priv[:])

	info := describeIdentity(*identity, config.Identity.ID)
	return &info, nil
}

func describeIdentity(identity keystore.Identity, defaultID string) IdentityInfo {
	info := IdentityInfo{
		ID:        identity.ID,
		PublicKey: identity.PublicKey.String(),
		Default:   identity.ID == defaultID,
	}
	if secure, _, err := keystore.IsPrivateKeySecure(identity.PrivateKeyPath); err == nil {
		info.PrivateKeyPath = identity.PrivateKeyPath
		info.Secure = secure
	}
	return info
}
