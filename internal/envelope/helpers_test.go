package envelope

import (
	"encoding/hex"
	"errors"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"testing"
)

// lockedReader makes a deterministic source safe for parallel wrapping.
type lockedReader struct {
	mu sync.Mutex
	r  *rand.ChaCha8
}

func (l *lockedReader) Read(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Read(p)
}

func seededReader(seed byte) *lockedReader {
	var s [32]byte
	for i := range s {
		s[i] = seed
	}
	return &lockedReader{r: rand.NewChaCha8(s)}
}

// countingReader records how many bytes were requested from the wrapped reader.
type countingReader struct {
	n atomic.Int64
	r *lockedReader
}

func (c *countingReader) Read(p []byte) (int, error) {
	c.n.Add(int64(len(p)))
	return c.r.Read(p)
}

type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	clear(p)
	return len(p), nil
}

type failingReader struct{}

func (failingReader) Read(p []byte) (int, error) {
	return 0, errors.New("entropy exhausted")
}

func mustKeyPair(t *testing.T, e *Engine) *KeyPair {
	t.Helper()
	kp, err := e.GenerateKeyPair()
	if err != nil {
		t.Fatalf("Failed to generate key pair: %v", err)
	}
	return kp
}

type judge struct {
	id string
	kp *KeyPair
}

func mustJudges(t *testing.T, e *Engine, ids ...string) ([]judge, map[string][]byte) {
	t.Helper()
	judges := make([]judge, 0, len(ids))
	keys := make(map[string][]byte, len(ids))
	for _, id := range ids {
		kp := mustKeyPair(t, e)
		judges = append(judges, judge{id: id, kp: kp})
		keys[id] = append([]byte(nil), kp.PublicKey[:]...)
	}
	return judges, keys
}

func flipBit(b []byte, bit int) []byte {
	out := append([]byte(nil), b...)
	out[bit/8] ^= 1 << (bit % 8)
	return out
}

// lowOrderPoints are Curve25519 public keys whose shared secret is all zeros.
var lowOrderPoints = map[string]string{
	"u=1":          "0100000000000000000000000000000000000000000000000000000000000000",
	"order 8":      "e0eb7a7c3b41b8ae1656e3faf19fc46ada098deb9c32b1fd866205165f49b800",
	"order 8 twin": "5f9c95bca3508c24b1d0b1559c83ef5b04445cc4581c8e86d8224eddd09f1157",
	"u=p":          "edffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff7f",
}

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("Bad hex %q: %v", s, err)
	}
	return b
}
