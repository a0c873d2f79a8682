package workflows

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/xaam-platform/envelope/internal/audit"
	"github.com/xaam-platform/envelope/internal/configs"
	"github.com/xaam-platform/envelope/internal/envelope"
	apperrors "github.com/xaam-platform/envelope/internal/errors"
	"github.com/xaam-platform/envelope/internal/files"
	"github.com/xaam-platform/envelope/internal/keystore"
)

// OpenOptions configures the open workflow.
type OpenOptions struct {
	// FilePatterns specifies .sealed files to open.
	FilePatterns []string

	// BaseDir resolves relative patterns. Defaults to the working directory.
	BaseDir string

	// RecipientID selects the wrapped key to unwrap. Defaults to the configured identity.
	RecipientID string

	// PrivateKeyData contains the private key bytes when reading from stdin.
	// If nil, the private key is loaded from the keys directory.
	PrivateKeyData []byte

	// ToStdout returns plaintexts in the result instead of writing files.
	ToStdout bool

	// RequireJSON rejects plaintexts that are not valid JSON documents.
	RequireJSON bool

	// DryRun previews which files would be opened without making changes.
	DryRun bool
}

// OpenedFile is one opened envelope.
type OpenedFile struct {
	// Source is the .sealed file.
	Source string

	// Path is where the plaintext was written. Empty when ToStdout is set.
	Path string

	// Plaintext is only populated when ToStdout is set.
	Plaintext []byte
}

// OpenResult contains the outcome of an open operation.
type OpenResult struct {
	RecipientID string
	Files       []OpenedFile

	// PrivateKeyPath is the key file used. Empty when the key came from PrivateKeyData.
	PrivateKeyPath string

	// ExistingFiles lists files that already exist and would be overwritten.
	ExistingFiles []string

	// DryRun indicates whether this was a dry-run (no files modified).
	DryRun bool
}

// Open decrypts .sealed files for one recipient.
//
// Every file is opened before any plaintext is written, so a failure leaves
// no partial output.
//
// Returns ErrNoIdentityConfigured if no recipient id is given or configured.
// Returns ErrUnknownRecipient if a file holds no wrapped key for the recipient.
// Returns ErrAuthenticationFailure if the key or ciphertext does not verify.
// Returns ErrMalformedPlaintext if RequireJSON is set and a plaintext is not JSON.
func Open(ctx context.Context, opts OpenOptions) (*OpenResult, error) {
	config, err := configs.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	recipientID := opts.RecipientID
	if recipientID == "" {
		recipientID = config.Identity.ID
	}
	if recipientID == "" {
		return nil, apperrors.ErrNoIdentityConfigured
	}

	dir, err := baseDir(opts.BaseDir)
	if err != nil {
		return nil, err
	}
	if len(opts.FilePatterns) == 0 {
		return nil, apperrors.ErrNoFilesFound
	}
	sources, err := files.ResolveFiles(opts.FilePatterns, dir, true)
	if err != nil {
		return nil, err
	}

	result := &OpenResult{
		RecipientID: recipientID,
		DryRun:      opts.DryRun,
	}
	for _, src := range sources {
		opened := OpenedFile{Source: src}
		if !opts.ToStdout {
			opened.Path = files.OpenedPath(src)
			if _, err := os.Stat(opened.Path); err == nil {
				result.ExistingFiles = append(result.ExistingFiles, opened.Path)
			}
		}
		result.Files = append(result.Files, opened)
	}

	if opts.DryRun {
		return result, nil
	}

	priv, keyPath, err := loadPrivateKey(opts.PrivateKeyData, recipientID)
	if err != nil {
		return nil, err
	}
	defer clear(priv[:])
	result.PrivateKeyPath = keyPath

	for i := range result.Files {
		if err := ctx.Err(); err != nil {
			wipePlaintexts(result.Files)
			return nil, err
		}
		plaintext, err := openFile(result.Files[i].Source, recipientID, priv, opts.RequireJSON)
		if err != nil {
			wipePlaintexts(result.Files)
			return nil, err
		}
		result.Files[i].Plaintext = plaintext
	}

	if !opts.ToStdout {
		for i := range result.Files {
			f := &result.Files[i]
			err := os.WriteFile(f.Path, f.Plaintext, 0600)
			clear(f.Plaintext)
			f.Plaintext = nil
			if err != nil {
				wipePlaintexts(result.Files)
				return nil, fmt.Errorf("writing %s: %w", f.Path, err)
			}
		}
	}

	entry := audit.LogWithIdentity("open")
	entry.Identity = recipientID
	for _, f := range result.Files {
		entry.Files = append(entry.Files, f.Source)
	}
	audit.Log(entry)

	return result, nil
}

// loadPrivateKey loads the private key from bytes or from the keys directory.
func loadPrivateKey(keyData []byte, recipientID string) (*envelope.PrivateKey, string, error) {
	if len(keyData) > 0 {
		priv, err := keystore.ParsePrivateKeyData(keyData)
		return priv, "", err
	}
	identity, priv, err := keystore.Load(configs.UserSettings.KeysPath, recipientID)
	if err != nil {
		return nil, "", err
	}
	return priv, identity.PrivateKeyPath, nil
}

func openFile(path, recipientID string, priv *envelope.PrivateKey, requireJSON bool) ([]byte, error) {
	env, err := readEnvelopeFile(path)
	if err != nil {
		return nil, err
	}

	plaintext, err := envelope.OpenForRecipient(env, recipientID, priv)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	if requireJSON && !json.Valid(plaintext) {
		clear(plaintext)
		return nil, fmt.Errorf("opening %s: %w", path, apperrors.ErrMalformedPlaintext)
	}
	return plaintext, nil
}

// wipePlaintexts zeroes and drops every decrypted buffer in files.
func wipePlaintexts(files []OpenedFile) {
	for i := range files {
		clear(files[i].Plaintext)
		files[i].Plaintext = nil
	}
}
