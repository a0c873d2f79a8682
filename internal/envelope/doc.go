// Package envelope implements multi-recipient hybrid encryption.
//
// A payload is encrypted once under a random payload key, and that payload
// key is wrapped separately for every recipient's public key. Each recipient
// can open the envelope with only their own private key, and cannot unwrap
// another recipient's copy of the payload key.
//
// # Algorithm Suite
//
//   - Identity: Curve25519 key pairs (32-byte public and private keys).
//
//   - Point-to-point sealing: NaCl box (Curve25519-XSalsa20-Poly1305) with a
//     fresh ephemeral key pair and a fresh 24-byte nonce on every call. The
//     ephemeral private key is discarded once the message is sealed.
//
//   - Payload encryption: NaCl secretbox (XSalsa20-Poly1305) under a random
//     32-byte payload key and a random 24-byte nonce.
//
// # Wire Format
//
// All binary values cross the package boundary as standard base64 with
// padding, which matches tweetnacl-util:
//
//	SealedMessage      = ephemeralPublicKey(32) || nonce(24) || ciphertext(N)
//	SymmetricEnvelope  = nonce(24) || ciphertext(M)
//	WireEnvelope       = {"encryptedPayload": "...", "encryptedKeys": {"<id>": "..."}}
//
// Older clients wrapped the payload key as its base64 text instead of the raw
// 32 bytes. Opening accepts either form; sealing always writes raw bytes.
//
// # Errors
//
// Input that fails base64 or length decoding returns ErrInvalidEncoding before
// any cryptography runs. Any tag failure returns ErrAuthenticationFailure,
// whether the cause was a wrong key, a wrong nonce or a tampered ciphertext.
// Sealing for a recipient set that contains a malformed key returns
// ErrInvalidRecipientKey and no envelope.
//
// # Randomness
//
// The Engine owns its random source. Production code uses crypto/rand; tests
// may inject a deterministic reader with [WithRandom]. When the engine wraps
// with more than one worker the reader must be safe for concurrent use.
package envelope
