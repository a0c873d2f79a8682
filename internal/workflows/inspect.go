package workflows

import (
	"context"
	"slices"

	"github.com/xaam-platform/envelope/internal/configs"
	"github.com/xaam-platform/envelope/internal/envelope"
)

// InspectResult describes a sealed file without decrypting it.
type InspectResult struct {
	Path       string
	Recipients []string

	// PayloadSize is the plaintext length in bytes.
	PayloadSize int

	// ForIdentity is true when the configured identity holds a wrapped key.
	ForIdentity bool
	IdentityID  string
}

// Inspect reads the recipient list and payload size of a sealed file.
//
// Returns ErrInvalidEncoding if the file is not a well-formed envelope.
func Inspect(ctx context.Context, path string) (*InspectResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	env, err := readEnvelopeFile(path)
	if err != nil {
		return nil, err
	}

	result := &InspectResult{
		Path:        path,
		Recipients:  env.Recipients(),
		PayloadSize: len(env.Payload.Ciphertext) - envelope.Overhead,
	}

	if config, err := configs.LoadConfig(); err == nil && config.Identity.ID != "" {
		result.IdentityID = config.Identity.ID
		result.ForIdentity = slices.Contains(result.Recipients, config.Identity.ID)
	}

	return result, nil
}
