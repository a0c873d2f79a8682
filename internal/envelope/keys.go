package envelope

import (
	"crypto/subtle"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/nacl/box"

	apperrors "github.com/xaam-platform/envelope/internal/errors"
)

// PublicKey is a Curve25519 public key.
type PublicKey [KeySize]byte

// PrivateKey is a Curve25519 private key.
type PrivateKey [KeySize]byte

// KeyPair is an identity used to receive sealed messages.
type KeyPair struct {
	PublicKey  PublicKey
	PrivateKey PrivateKey
}

// GenerateKeyPair creates a new key pair from the engine's random source.
func (e *Engine) GenerateKeyPair() (*KeyPair, error) {
	pub, priv, err := box.GenerateKey(e.random)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrRandomSource, err)
	}
	kp := &KeyPair{PublicKey: *pub, PrivateKey: *priv}
	wipe(priv[:])
	return kp, nil
}

// Wipe zeroes the private half of the key pair.
func (kp *KeyPair) Wipe() {
	wipe(kp.PrivateKey[:])
}

// String returns the key as standard base64.
func (k *PublicKey) String() string {
	return base64.StdEncoding.EncodeToString(k[:])
}

// Base64 returns the key as standard base64. PrivateKey has no String method
// so it never prints through %s or %v.
func (k *PrivateKey) Base64() string {
	return base64.StdEncoding.EncodeToString(k[:])
}

// PublicKey derives the public key belonging to k.
func (k *PrivateKey) PublicKey() (*PublicKey, error) {
	out, err := curve25519.X25519(k[:], curve25519.Basepoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidEncoding, err)
	}
	pub := new(PublicKey)
	copy(pub[:], out)
	return pub, nil
}

// ParsePublicKey decodes a base64 public key.
func ParsePublicKey(s string) (*PublicKey, error) {
	b, err := decodeFixed("public key", s, KeySize)
	if err != nil {
		return nil, err
	}
	pub := new(PublicKey)
	copy(pub[:], b)
	return pub, nil
}

// ParsePrivateKey decodes a base64 private key.
func ParsePrivateKey(s string) (*PrivateKey, error) {
	b, err := decodeFixed("private key", s, KeySize)
	if err != nil {
		return nil, err
	}
	defer wipe(b)
	priv := new(PrivateKey)
	copy(priv[:], b)
	return priv, nil
}

// DecodeRecipientKeys decodes a map of base64 public keys for SealForRecipients.
// Lengths are checked by SealForRecipients.
func DecodeRecipientKeys(recipients map[string]string) (map[string][]byte, error) {
	keys := make(map[string][]byte, len(recipients))
	for id, s := range recipients {
		b, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("recipient %q: %w: %w", id, apperrors.ErrInvalidRecipientKey, apperrors.ErrInvalidEncoding)
		}
		keys[id] = b
	}
	return keys, nil
}

// ValidatePublicKey reports whether key can be sealed to. Wrong lengths and
// low-order points return ErrInvalidRecipientKey.
func ValidatePublicKey(key []byte) error {
	return validatePublicKey("", key)
}

func validatePublicKey(id string, key []byte) error {
	label := "public key"
	if id != "" {
		label = fmt.Sprintf("key for recipient %q", id)
	}
	if len(key) != KeySize {
		return fmt.Errorf("%w: %s is %d bytes, want %d", apperrors.ErrInvalidRecipientKey, label, len(key), KeySize)
	}
	var zero [KeySize]byte
	if subtle.ConstantTimeCompare(key, zero[:]) == 1 {
		return fmt.Errorf("%w: %s is all zeros", apperrors.ErrInvalidRecipientKey, label)
	}
	// X25519 fails when the shared secret is all zeros, which happens for every low-order point.
	if _, err := curve25519.X25519(curve25519.Basepoint, key); err != nil {
		return fmt.Errorf("%w: %s is a low-order point", apperrors.ErrInvalidRecipientKey, label)
	}
	return nil
}

func decodeFixed(field, s string, size int) ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not valid base64", apperrors.ErrInvalidEncoding, field)
	}
	if len(b) != size {
		return nil, fmt.Errorf("%w: %s is %d bytes, want %d", apperrors.ErrInvalidEncoding, field, len(b), size)
	}
	return b, nil
}
