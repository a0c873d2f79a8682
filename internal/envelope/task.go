package envelope

import (
	"encoding/json"
	"fmt"

	apperrors "github.com/xaam-platform/envelope/internal/errors"
)

// EncryptTaskPayload JSON-encodes v and seals it for every judge. Keys are
// base64 public keys indexed by judge id.
func (e *Engine) EncryptTaskPayload(v any, judges map[string]string) (*WireEnvelope, error) {
	keys, err := DecodeRecipientKeys(judges)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding payload: %w", err)
	}
	defer wipe(data)

	env, err := e.SealForRecipients(data, keys)
	if err != nil {
		return nil, err
	}
	w := env.Wire()
	return &w, nil
}

// EncryptDeliverable is EncryptTaskPayload for deliverables.
func (e *Engine) EncryptDeliverable(v any, judges map[string]string) (*WireEnvelope, error) {
	return e.EncryptTaskPayload(v, judges)
}

// DecryptTaskPayload opens w as recipientID and JSON-decodes the plaintext
// into v. Plaintext that authenticates but is not valid JSON for v returns
// ErrMalformedPlaintext.
func DecryptTaskPayload(w *WireEnvelope, recipientID, privateKey string, v any) error {
	env, err := ParseWireEnvelope(w)
	if err != nil {
		return err
	}
	priv, err := ParsePrivateKey(privateKey)
	if err != nil {
		return err
	}
	defer wipe(priv[:])

	plaintext, err := OpenForRecipient(env, recipientID, priv)
	if err != nil {
		return err
	}
	defer wipe(plaintext)

	return DecodeJSON(plaintext, v)
}

// DecryptDeliverable is DecryptTaskPayload for deliverables.
func DecryptDeliverable(w *WireEnvelope, recipientID, privateKey string, v any) error {
	return DecryptTaskPayload(w, recipientID, privateKey, v)
}

// DecodeJSON decodes authenticated plaintext into v.
func DecodeJSON(plaintext []byte, v any) error {
	if err := json.Unmarshal(plaintext, v); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrMalformedPlaintext, err)
	}
	return nil
}
