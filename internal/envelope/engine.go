package envelope

import (
	"crypto/rand"
	"fmt"
	"io"
	"runtime"

	apperrors "github.com/xaam-platform/envelope/internal/errors"
)

// Sizes of the NaCl primitives used by the engine.
const (
	KeySize   = 32
	NonceSize = 24
	Overhead  = 16
)

// Engine seals payloads. It holds no state beyond its random source and
// worker bound, both fixed at construction, so one Engine may be shared.
type Engine struct {
	random  io.Reader
	workers int
}

// Option configures an Engine.
type Option func(*Engine)

// WithRandom sets the random source used for keys and nonces.
func WithRandom(r io.Reader) Option {
	return func(e *Engine) {
		if r != nil {
			e.random = r
		}
	}
}

// WithWorkers bounds how many recipient keys are wrapped in parallel.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// New creates an Engine backed by crypto/rand unless overridden.
func New(opts ...Option) *Engine {
	e := &Engine{
		random:  rand.Reader,
		workers: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Workers returns the configured wrap parallelism.
func (e *Engine) Workers() int {
	return e.workers
}

func (e *Engine) read(b []byte) error {
	if _, err := io.ReadFull(e.random, b); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrRandomSource, err)
	}
	return nil
}

func (e *Engine) nonce() (*[NonceSize]byte, error) {
	n := new([NonceSize]byte)
	if err := e.read(n[:]); err != nil {
		return nil, err
	}
	return n, nil
}

func wipe(b []byte) {
	clear(b)
}
