package envelope

import (
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/nacl/box"

	apperrors "github.com/xaam-platform/envelope/internal/errors"
)

// SealedMessage is a blob sealed to a single recipient's public key.
type SealedMessage struct {
	EphemeralPublicKey [KeySize]byte
	Nonce              [NonceSize]byte
	Ciphertext         []byte
}

// Seal encrypts plaintext to recipient using a fresh ephemeral key pair and nonce.
func (e *Engine) Seal(plaintext []byte, recipient *PublicKey) (*SealedMessage, error) {
	if recipient == nil {
		return nil, fmt.Errorf("%w: nil public key", apperrors.ErrInvalidRecipientKey)
	}
	if err := validatePublicKey("", recipient[:]); err != nil {
		return nil, err
	}

	ephemeralPublic, ephemeralPrivate, err := box.GenerateKey(e.random)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrRandomSource, err)
	}
	defer wipe(ephemeralPrivate[:])

	nonce, err := e.nonce()
	if err != nil {
		return nil, err
	}

	ciphertext := box.Seal(nil, plaintext, nonce, (*[KeySize]byte)(recipient), ephemeralPrivate)

	return &SealedMessage{
		EphemeralPublicKey: *ephemeralPublic,
		Nonce:              *nonce,
		Ciphertext:         ciphertext,
	}, nil
}

// Open decrypts a sealed message with the recipient's private key.
// It returns ErrAuthenticationFailure and no plaintext if the tag does not verify.
func Open(sealed *SealedMessage, privateKey *PrivateKey) ([]byte, error) {
	if sealed == nil || privateKey == nil || len(sealed.Ciphertext) < Overhead {
		return nil, apperrors.ErrAuthenticationFailure
	}
	// X25519 ignores bit 255 of the u-coordinate. Keys we generate never set
	// it, so a set bit means the ephemeral key was altered.
	if sealed.EphemeralPublicKey[KeySize-1]&0x80 != 0 {
		return nil, apperrors.ErrAuthenticationFailure
	}

	plaintext, ok := box.Open(nil, sealed.Ciphertext, &sealed.Nonce, &sealed.EphemeralPublicKey, (*[KeySize]byte)(privateKey))
	if !ok {
		return nil, apperrors.ErrAuthenticationFailure
	}
	return plaintext, nil
}

// Bytes returns ephemeralPublicKey || nonce || ciphertext.
func (m *SealedMessage) Bytes() []byte {
	out := make([]byte, 0, KeySize+NonceSize+len(m.Ciphertext))
	out = append(out, m.EphemeralPublicKey[:]...)
	out = append(out, m.Nonce[:]...)
	return append(out, m.Ciphertext...)
}

// String returns the wire bytes as standard base64.
func (m *SealedMessage) String() string {
	return base64.StdEncoding.EncodeToString(m.Bytes())
}

// ParseSealedMessage splits wire bytes into a SealedMessage. The ciphertext is copied.
func ParseSealedMessage(b []byte) (*SealedMessage, error) {
	if len(b) < KeySize+NonceSize+Overhead {
		return nil, fmt.Errorf("%w: sealed message is %d bytes, want at least %d",
			apperrors.ErrInvalidEncoding, len(b), KeySize+NonceSize+Overhead)
	}
	m := &SealedMessage{}
	copy(m.EphemeralPublicKey[:], b[:KeySize])
	copy(m.Nonce[:], b[KeySize:KeySize+NonceSize])
	m.Ciphertext = append([]byte(nil), b[KeySize+NonceSize:]...)
	return m, nil
}

// DecodeSealedMessage parses a base64 sealed message.
func DecodeSealedMessage(s string) (*SealedMessage, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: sealed message is not valid base64", apperrors.ErrInvalidEncoding)
	}
	return ParseSealedMessage(b)
}
