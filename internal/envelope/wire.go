package envelope

import (
	"encoding/json"
	"fmt"

	apperrors "github.com/xaam-platform/envelope/internal/errors"
)

// WireEnvelope is the form exchanged with storage and HTTP collaborators.
type WireEnvelope struct {
	EncryptedPayload string            `json:"encryptedPayload"`
	EncryptedKeys    map[string]string `json:"encryptedKeys"`
}

// Wire encodes the envelope for transport.
func (m *MultiRecipientEnvelope) Wire() WireEnvelope {
	w := WireEnvelope{
		EncryptedPayload: m.Payload.String(),
		EncryptedKeys:    make(map[string]string, len(m.WrappedKeys)),
	}
	for id, wrap := range m.WrappedKeys {
		w.EncryptedKeys[id] = wrap.String()
	}
	return w
}

// ParseWireEnvelope decodes every field of w. Any base64 or length problem
// returns ErrInvalidEncoding.
func ParseWireEnvelope(w *WireEnvelope) (*MultiRecipientEnvelope, error) {
	if w == nil {
		return nil, fmt.Errorf("%w: nil envelope", apperrors.ErrInvalidEncoding)
	}
	if len(w.EncryptedKeys) == 0 {
		return nil, fmt.Errorf("%w: envelope has no wrapped keys", apperrors.ErrInvalidEncoding)
	}

	payload, err := DecodeSymmetricEnvelope(w.EncryptedPayload)
	if err != nil {
		return nil, err
	}

	env := &MultiRecipientEnvelope{
		Payload:     payload,
		WrappedKeys: make(map[string]*SealedMessage, len(w.EncryptedKeys)),
	}
	for id, s := range w.EncryptedKeys {
		wrap, err := DecodeSealedMessage(s)
		if err != nil {
			return nil, fmt.Errorf("wrapped key for %s: %w", id, err)
		}
		env.WrappedKeys[id] = wrap
	}
	return env, nil
}

// MarshalJSON encodes the envelope in its wire form.
func (m MultiRecipientEnvelope) MarshalJSON() ([]byte, error) {
	if m.Payload == nil {
		return nil, fmt.Errorf("%w: envelope has no payload", apperrors.ErrInvalidEncoding)
	}
	return json.Marshal(m.Wire())
}

// UnmarshalJSON decodes an envelope from its wire form.
func (m *MultiRecipientEnvelope) UnmarshalJSON(data []byte) error {
	var w WireEnvelope
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidEncoding, err)
	}
	env, err := ParseWireEnvelope(&w)
	if err != nil {
		return err
	}
	*m = *env
	return nil
}
