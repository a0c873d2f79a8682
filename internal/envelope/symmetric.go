package envelope

import (
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/nacl/secretbox"

	apperrors "github.com/xaam-platform/envelope/internal/errors"
)

// SymmetricEnvelope is a payload encrypted once under a payload key.
type SymmetricEnvelope struct {
	Nonce      [NonceSize]byte
	Ciphertext []byte
}

func (e *Engine) sealSymmetric(plaintext []byte, key *[KeySize]byte) (*SymmetricEnvelope, error) {
	nonce, err := e.nonce()
	if err != nil {
		return nil, err
	}
	return &SymmetricEnvelope{
		Nonce:      *nonce,
		Ciphertext: secretbox.Seal(nil, plaintext, nonce, key),
	}, nil
}

func openSymmetric(env *SymmetricEnvelope, key *[KeySize]byte) ([]byte, error) {
	if env == nil || len(env.Ciphertext) < Overhead {
		return nil, apperrors.ErrAuthenticationFailure
	}
	plaintext, ok := secretbox.Open(nil, env.Ciphertext, &env.Nonce, key)
	if !ok {
		return nil, apperrors.ErrAuthenticationFailure
	}
	return plaintext, nil
}

// Bytes returns nonce || ciphertext.
func (s *SymmetricEnvelope) Bytes() []byte {
	out := make([]byte, 0, NonceSize+len(s.Ciphertext))
	out = append(out, s.Nonce[:]...)
	return append(out, s.Ciphertext...)
}

// String returns the wire bytes as standard base64.
func (s *SymmetricEnvelope) String() string {
	return base64.StdEncoding.EncodeToString(s.Bytes())
}

// ParseSymmetricEnvelope splits wire bytes into a SymmetricEnvelope. The ciphertext is copied.
func ParseSymmetricEnvelope(b []byte) (*SymmetricEnvelope, error) {
	if len(b) < NonceSize+Overhead {
		return nil, fmt.Errorf("%w: payload is %d bytes, want at least %d",
			apperrors.ErrInvalidEncoding, len(b), NonceSize+Overhead)
	}
	s := &SymmetricEnvelope{}
	copy(s.Nonce[:], b[:NonceSize])
	s.Ciphertext = append([]byte(nil), b[NonceSize:]...)
	return s, nil
}

// DecodeSymmetricEnvelope parses a base64 payload.
func DecodeSymmetricEnvelope(s string) (*SymmetricEnvelope, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: payload is not valid base64", apperrors.ErrInvalidEncoding)
	}
	return ParseSymmetricEnvelope(b)
}
