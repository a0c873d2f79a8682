package workflows

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/xaam-platform/envelope/internal/configs"
	"github.com/xaam-platform/envelope/internal/envelope"
	apperrors "github.com/xaam-platform/envelope/internal/errors"
)

// newEngine builds an engine tuned by the [engine] table of config.toml.
func newEngine(config *configs.Config) *envelope.Engine {
	return envelope.New(config.EngineOptions()...)
}

// baseDir returns dir, or the working directory when dir is empty.
func baseDir(dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}
	return wd, nil
}

// readEnvelopeFile loads a sealed file written by Seal.
func readEnvelopeFile(path string) (*envelope.MultiRecipientEnvelope, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var env envelope.MultiRecipientEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		if errors.Is(err, apperrors.ErrInvalidEncoding) {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return nil, fmt.Errorf("%s: %w: %w", path, apperrors.ErrInvalidEncoding, err)
	}
	return &env, nil
}
