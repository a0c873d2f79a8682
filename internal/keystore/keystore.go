package keystore

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/xaam-platform/envelope/internal/envelope"
	apperrors "github.com/xaam-platform/envelope/internal/errors"
	"github.com/xaam-platform/envelope/internal/utils"
)

const (
	privateKeyExt = ".key"
	publicKeyExt  = ".pub"
)

// Identity is a key pair stored on disk.
type Identity struct {
	ID             string
	PublicKey      *envelope.PublicKey
	PublicKeyPath  string
	PrivateKeyPath string
}

// PrivateKeyPath returns where the private key for id is stored.
func PrivateKeyPath(dir, id string) string {
	return filepath.Join(dir, id+privateKeyExt)
}

// PublicKeyPath returns where the public key for id is stored.
func PublicKeyPath(dir, id string) string {
	return filepath.Join(dir, id+publicKeyExt)
}

// Save writes kp to dir under id. Existing keys are only replaced when force is set.
func Save(dir, id string, kp *envelope.KeyPair, force bool) (privatePath string, publicPath string, err error) {
	if !utils.IsValidIdentifier(id) {
		return "", "", fmt.Errorf("%w: %q", apperrors.ErrInvalidIdentifier, id)
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", "", fmt.Errorf("failed to create keys directory at %s: %w", dir, err)
	}

	privatePath = PrivateKeyPath(dir, id)
	publicPath = PublicKeyPath(dir, id)

	if !force {
		if _, err := os.Stat(privatePath); err == nil {
			return "", "", fmt.Errorf("%w: %s", apperrors.ErrIdentityExists, id)
		}
	}

	privateData := []byte(kp.PrivateKey.Base64() + "\n")
	defer clear(privateData)
	if err := os.WriteFile(privatePath, privateData, 0600); err != nil {
		return "", "", fmt.Errorf("failed to write private key to %s: %w", privatePath, err)
	}
	// WriteFile keeps the mode of an existing file.
	if err := os.Chmod(privatePath, 0600); err != nil {
		return "", "", fmt.Errorf("failed to restrict private key permissions: %w", err)
	}

	// #nosec G306 -- public keys are meant to be shared.
	if err := os.WriteFile(publicPath, []byte(kp.PublicKey.String()+"\n"), 0644); err != nil {
		return "", "", fmt.Errorf("failed to write public key to %s: %w", publicPath, err)
	}

	return privatePath, publicPath, nil
}

// LoadPrivateKey loads a base64 private key from disk.
func LoadPrivateKey(path string) (*envelope.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrIdentityNotFound, path)
		}
		return nil, err
	}
	defer clear(data)
	return ParsePrivateKeyData(data)
}

// ParsePrivateKeyData parses private key bytes read from a file or stdin.
func ParsePrivateKeyData(data []byte) (*envelope.PrivateKey, error) {
	trimmed := bytes.TrimSpace(data)
	return envelope.ParsePrivateKey(string(trimmed))
}

// LoadPublicKey loads a base64 public key from disk.
func LoadPublicKey(path string) (*envelope.PublicKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrIdentityNotFound, path)
		}
		return nil, err
	}
	return envelope.ParsePublicKey(strings.TrimSpace(string(data)))
}

// Load returns the stored identity for id after checking that its private
// key matches its public key.
func Load(dir, id string) (*Identity, *envelope.PrivateKey, error) {
	priv, err := LoadPrivateKey(PrivateKeyPath(dir, id))
	if err != nil {
		return nil, nil, err
	}
	pub, err := LoadPublicKey(PublicKeyPath(dir, id))
	if err != nil {
		clear(priv[:])
		return nil, nil, err
	}
	derived, err := priv.PublicKey()
	if err != nil {
		clear(priv[:])
		return nil, nil, err
	}
	if *derived != *pub {
		clear(priv[:])
		return nil, nil, fmt.Errorf("%w: public key for %s does not match its private key", apperrors.ErrInvalidEncoding, id)
	}

	return &Identity{
		ID:             id,
		PublicKey:      pub,
		PublicKeyPath:  PublicKeyPath(dir, id),
		PrivateKeyPath: PrivateKeyPath(dir, id),
	}, priv, nil
}

// List returns every identity with a public key in dir, sorted by id.
func List(dir string) ([]Identity, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read keys directory: %w", err)
	}

	var identities []Identity
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, publicKeyExt) {
			continue
		}
		id := strings.TrimSuffix(name, publicKeyExt)
		pub, err := LoadPublicKey(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("identity %s: %w", id, err)
		}
		identities = append(identities, Identity{
			ID:             id,
			PublicKey:      pub,
			PublicKeyPath:  PublicKeyPath(dir, id),
			PrivateKeyPath: PrivateKeyPath(dir, id),
		})
	}

	slices.SortFunc(identities, func(a, b Identity) int {
		return strings.Compare(a.ID, b.ID)
	})
	return identities, nil
}

// IsPrivateKeySecure reports whether the key file is readable only by its owner.
func IsPrivateKeySecure(path string) (bool, os.FileMode, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, 0, err
	}
	perm := info.Mode().Perm()
	return perm&0077 == 0, perm, nil
}
