package envelope

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	apperrors "github.com/xaam-platform/envelope/internal/errors"
)

func TestGenerateKeyPair_Unique(t *testing.T) {
	e := New()
	seen := make(map[PublicKey]bool)

	for i := 0; i < 100; i++ {
		kp := mustKeyPair(t, e)
		if seen[kp.PublicKey] {
			t.Fatalf("Generated a duplicate public key on iteration %d", i)
		}
		seen[kp.PublicKey] = true
	}
}

func TestGenerateKeyPair_PublicKeyMatchesPrivate(t *testing.T) {
	kp := mustKeyPair(t, New())

	derived, err := kp.PrivateKey.PublicKey()
	if err != nil {
		t.Fatalf("Failed to derive public key: %v", err)
	}
	if *derived != kp.PublicKey {
		t.Errorf("Derived public key does not match generated public key")
	}
}

func TestGenerateKeyPair_RandomFailure(t *testing.T) {
	_, err := New(WithRandom(failingReader{})).GenerateKeyPair()
	if !errors.Is(err, apperrors.ErrRandomSource) {
		t.Fatalf("Expected ErrRandomSource, got: %v", err)
	}
}

func TestKeyPair_Wipe(t *testing.T) {
	kp := mustKeyPair(t, New())
	kp.Wipe()

	if kp.PrivateKey != (PrivateKey{}) {
		t.Errorf("Expected private key to be zeroed after Wipe")
	}
}

func TestParsePublicKey_RoundTrip(t *testing.T) {
	kp := mustKeyPair(t, New())

	parsed, err := ParsePublicKey(kp.PublicKey.String())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if *parsed != kp.PublicKey {
		t.Errorf("Parsed public key does not match")
	}
}

func TestParsePrivateKey_RoundTrip(t *testing.T) {
	kp := mustKeyPair(t, New())

	parsed, err := ParsePrivateKey(kp.PrivateKey.Base64())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if *parsed != kp.PrivateKey {
		t.Errorf("Parsed private key does not match")
	}
}

func TestParseKeys_InvalidEncoding(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not base64", "%%%not-base64%%%"},
		{"too short", base64.StdEncoding.EncodeToString(make([]byte, 31))},
		{"too long", base64.StdEncoding.EncodeToString(make([]byte, 33))},
		{"empty", ""},
		{"url alphabet", strings.Repeat("_", 43) + "="},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParsePublicKey(tt.input); !errors.Is(err, apperrors.ErrInvalidEncoding) {
				t.Errorf("ParsePublicKey: expected ErrInvalidEncoding, got: %v", err)
			}
			if _, err := ParsePrivateKey(tt.input); !errors.Is(err, apperrors.ErrInvalidEncoding) {
				t.Errorf("ParsePrivateKey: expected ErrInvalidEncoding, got: %v", err)
			}
		})
	}
}

func TestDecodeRecipientKeys_BadBase64(t *testing.T) {
	_, err := DecodeRecipientKeys(map[string]string{"judgeA": "***"})
	if !errors.Is(err, apperrors.ErrInvalidRecipientKey) {
		t.Errorf("Expected ErrInvalidRecipientKey, got: %v", err)
	}
	if !errors.Is(err, apperrors.ErrInvalidEncoding) {
		t.Errorf("Expected ErrInvalidEncoding, got: %v", err)
	}
}

func TestValidatePublicKey(t *testing.T) {
	kp := mustKeyPair(t, New())
	if err := ValidatePublicKey(kp.PublicKey[:]); err != nil {
		t.Errorf("Expected a generated key to be valid, got: %v", err)
	}

	for name, point := range lowOrderPoints {
		if err := ValidatePublicKey(mustHex(t, point)); !errors.Is(err, apperrors.ErrInvalidRecipientKey) {
			t.Errorf("Expected ErrInvalidRecipientKey for %s, got: %v", name, err)
		}
	}
	if err := ValidatePublicKey(make([]byte, KeySize-1)); !errors.Is(err, apperrors.ErrInvalidRecipientKey) {
		t.Errorf("Expected ErrInvalidRecipientKey for a short key, got: %v", err)
	}
}
