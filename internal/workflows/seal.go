package workflows

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/xaam-platform/envelope/internal/audit"
	"github.com/xaam-platform/envelope/internal/configs"
	"github.com/xaam-platform/envelope/internal/envelope"
	apperrors "github.com/xaam-platform/envelope/internal/errors"
	"github.com/xaam-platform/envelope/internal/files"
	"github.com/xaam-platform/envelope/internal/keystore"
	"github.com/xaam-platform/envelope/internal/utils"
)

// SealOptions configures the seal workflow.
type SealOptions struct {
	// FilePatterns specifies files to seal. Paths, directories and globs are accepted.
	FilePatterns []string

	// BaseDir resolves relative patterns. Defaults to the working directory.
	BaseDir string

	// Recipients names entries in the recipient book.
	Recipients []string

	// ExtraKeys maps recipient ids to base64 public keys given on the command line.
	ExtraKeys map[string]string

	// IncludeSelf adds the default identity as a recipient.
	IncludeSelf bool

	// DryRun previews which files would be sealed without making changes.
	DryRun bool
}

// SealResult contains the outcome of a seal operation.
type SealResult struct {
	// SealedFiles lists the .sealed files that were created.
	SealedFiles []string

	// SourceFiles lists the plaintext files that were sealed.
	SourceFiles []string

	// Recipients lists the recipient ids, sorted.
	Recipients []string

	// DryRun indicates whether this was a dry-run (no files modified).
	DryRun bool

	// Workers is the key wrapping concurrency the engine ran with.
	Workers int
}

// Seal encrypts each file once for the whole recipient set and writes the
// envelope JSON next to it with a .sealed extension.
//
// Every recipient key is validated before any file is read or written.
//
// Returns ErrNoRecipients if no recipient was named.
// Returns ErrRecipientNotFound if a name is not in the recipient book.
// Returns ErrInvalidRecipientKey if any key is malformed.
// Returns ErrNoFilesFound if no files match the specified patterns.
func Seal(ctx context.Context, opts SealOptions) (*SealResult, error) {
	config, err := configs.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	recipients, err := collectRecipients(config, opts)
	if err != nil {
		return nil, err
	}
	keys, err := envelope.DecodeRecipientKeys(recipients)
	if err != nil {
		return nil, err
	}

	dir, err := baseDir(opts.BaseDir)
	if err != nil {
		return nil, err
	}
	if len(opts.FilePatterns) == 0 {
		return nil, apperrors.ErrNoFilesFound
	}
	sources, err := files.ResolveFiles(opts.FilePatterns, dir, false)
	if err != nil {
		return nil, err
	}

	result := &SealResult{
		SourceFiles: sources,
		Recipients:  slices.Sorted(maps.Keys(recipients)),
		DryRun:      opts.DryRun,
	}
	for _, src := range sources {
		result.SealedFiles = append(result.SealedFiles, files.SealedPath(src))
	}

	if opts.DryRun {
		return result, nil
	}

	engine := newEngine(config)
	result.Workers = engine.Workers()
	for i, src := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := sealFile(engine, src, result.SealedFiles[i], keys); err != nil {
			return nil, err
		}
	}

	entry := audit.LogWithIdentity("seal")
	entry.Files = result.SealedFiles
	entry.Recipients = result.Recipients
	entry.RecipientsCount = len(result.Recipients)
	audit.Log(entry)

	return result, nil
}

// collectRecipients merges book entries, command-line keys and the default
// identity into one id to base64 key map.
func collectRecipients(config *configs.Config, opts SealOptions) (map[string]string, error) {
	recipients, err := config.ResolveRecipients(opts.Recipients)
	if err != nil {
		return nil, err
	}

	for id, key := range opts.ExtraKeys {
		if !utils.IsValidIdentifier(id) {
			return nil, fmt.Errorf("%w: %q", apperrors.ErrInvalidIdentifier, id)
		}
		recipients[id] = key
	}

	if opts.IncludeSelf {
		id := config.Identity.ID
		if id == "" {
			return nil, apperrors.ErrNoIdentityConfigured
		}
		pub, err := keystore.LoadPublicKey(keystore.PublicKeyPath(configs.UserSettings.KeysPath, id))
		if err != nil {
			return nil, err
		}
		recipients[id] = pub.String()
	}

	if len(recipients) == 0 {
		return nil, apperrors.ErrNoRecipients
	}
	return recipients, nil
}

func sealFile(engine *envelope.Engine, src, dst string, keys map[string][]byte) error {
	plaintext, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("reading %s: %w", src, err)
	}
	defer clear(plaintext)

	env, err := engine.SealForRecipients(plaintext, keys)
	if err != nil {
		return fmt.Errorf("sealing %s: %w", src, err)
	}

	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", dst, err)
	}

	if err := os.WriteFile(dst, append(data, '\n'), 0600); err != nil {
		return fmt.Errorf("writing %s: %w", dst, err)
	}
	return nil
}
