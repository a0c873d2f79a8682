package envelope

import (
	"encoding/base64"
	"fmt"
	"maps"
	"slices"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/xaam-platform/envelope/internal/errors"
)

// MultiRecipientEnvelope is one encrypted payload plus one wrapped payload
// key per recipient.
type MultiRecipientEnvelope struct {
	Payload     *SymmetricEnvelope
	WrappedKeys map[string]*SealedMessage
}

// Recipients returns the recipient ids in sorted order.
func (m *MultiRecipientEnvelope) Recipients() []string {
	return slices.Sorted(maps.Keys(m.WrappedKeys))
}

// SealForRecipients encrypts payload once and wraps the payload key for every
// recipient. Every key is validated before any encryption happens, so a bad
// key yields ErrInvalidRecipientKey and no envelope.
func (e *Engine) SealForRecipients(payload []byte, recipients map[string][]byte) (*MultiRecipientEnvelope, error) {
	ids, keys, err := validateRecipients(recipients)
	if err != nil {
		return nil, err
	}

	payloadKey := new([KeySize]byte)
	defer wipe(payloadKey[:])
	if err := e.read(payloadKey[:]); err != nil {
		return nil, err
	}

	sealedPayload, err := e.sealSymmetric(payload, payloadKey)
	if err != nil {
		return nil, err
	}

	wraps := make([]*SealedMessage, len(ids))
	var g errgroup.Group
	g.SetLimit(e.workers)
	for i := range ids {
		g.Go(func() error {
			sealed, err := e.Seal(payloadKey[:], &keys[i])
			if err != nil {
				return fmt.Errorf("wrapping payload key for %s: %w", ids[i], err)
			}
			wraps[i] = sealed
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	env := &MultiRecipientEnvelope{
		Payload:     sealedPayload,
		WrappedKeys: make(map[string]*SealedMessage, len(ids)),
	}
	for i, id := range ids {
		env.WrappedKeys[id] = wraps[i]
	}

	if err := checkFresh(env); err != nil {
		return nil, err
	}
	return env, nil
}

// OpenForRecipient unwraps the payload key for recipientID and decrypts the payload.
func OpenForRecipient(env *MultiRecipientEnvelope, recipientID string, privateKey *PrivateKey) ([]byte, error) {
	if env == nil {
		return nil, fmt.Errorf("%w: nil envelope", apperrors.ErrInvalidEncoding)
	}
	wrap, ok := env.WrappedKeys[recipientID]
	if !ok || wrap == nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrUnknownRecipient, recipientID)
	}
	return OpenWithWrappedKey(env.Payload, wrap, privateKey)
}

// OpenWithWrappedKey decrypts payload using a single wrapped payload key.
func OpenWithWrappedKey(payload *SymmetricEnvelope, wrap *SealedMessage, privateKey *PrivateKey) ([]byte, error) {
	unwrapped, err := Open(wrap, privateKey)
	if err != nil {
		return nil, err
	}
	defer wipe(unwrapped)

	payloadKey, err := payloadKeyFrom(unwrapped)
	if err != nil {
		return nil, err
	}
	defer wipe(payloadKey[:])

	return openSymmetric(payload, payloadKey)
}

// payloadKeyFrom accepts the raw 32-byte key or its 44-byte base64 text,
// which older clients wrapped instead.
func payloadKeyFrom(unwrapped []byte) (*[KeySize]byte, error) {
	key := new([KeySize]byte)
	switch len(unwrapped) {
	case KeySize:
		copy(key[:], unwrapped)
		return key, nil
	case base64.StdEncoding.EncodedLen(KeySize):
		decoded := make([]byte, base64.StdEncoding.DecodedLen(len(unwrapped)))
		defer wipe(decoded)
		n, err := base64.StdEncoding.Decode(decoded, unwrapped)
		if err != nil || n != KeySize {
			return nil, apperrors.ErrAuthenticationFailure
		}
		copy(key[:], decoded[:n])
		return key, nil
	default:
		return nil, apperrors.ErrAuthenticationFailure
	}
}

func validateRecipients(recipients map[string][]byte) ([]string, []PublicKey, error) {
	if len(recipients) == 0 {
		return nil, nil, apperrors.ErrNoRecipients
	}

	ids := slices.Sorted(maps.Keys(recipients))
	keys := make([]PublicKey, len(ids))
	for i, id := range ids {
		if id == "" {
			return nil, nil, fmt.Errorf("%w: empty recipient id", apperrors.ErrInvalidRecipientKey)
		}
		if err := validatePublicKey(id, recipients[id]); err != nil {
			return nil, nil, err
		}
		copy(keys[i][:], recipients[id])
	}
	return ids, keys, nil
}

// checkFresh fails if any nonce or ephemeral key repeats within the envelope,
// which only happens when the random source is broken.
func checkFresh(env *MultiRecipientEnvelope) error {
	nonces := map[[NonceSize]byte]struct{}{env.Payload.Nonce: {}}
	ephemeral := make(map[[KeySize]byte]struct{}, len(env.WrappedKeys))

	for id, wrap := range env.WrappedKeys {
		if _, dup := nonces[wrap.Nonce]; dup {
			return fmt.Errorf("%w: nonce for %s", apperrors.ErrNonceReuse, id)
		}
		nonces[wrap.Nonce] = struct{}{}

		if _, dup := ephemeral[wrap.EphemeralPublicKey]; dup {
			return fmt.Errorf("%w: ephemeral key for %s", apperrors.ErrNonceReuse, id)
		}
		ephemeral[wrap.EphemeralPublicKey] = struct{}{}
	}
	return nil
}
