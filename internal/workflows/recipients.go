package workflows

import (
	"context"
	"fmt"

	"github.com/xaam-platform/envelope/internal/audit"
	"github.com/xaam-platform/envelope/internal/configs"
)

// Recipient is an entry in the recipient book.
type Recipient struct {
	ID        string
	PublicKey string
}

// AddRecipientResult contains the outcome of adding a recipient.
type AddRecipientResult struct {
	Recipient

	// Replaced indicates an existing entry with the same id was overwritten.
	Replaced bool
}

// AddRecipient stores a recipient's public key in the recipient book.
//
// Returns ErrInvalidIdentifier or ErrInvalidRecipientKey for bad input.
func AddRecipient(ctx context.Context, id, publicKey string) (*AddRecipientResult, error) {
	config, err := configs.EnsureConfig()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	_, replaced := config.Recipients[id]
	if err := config.AddRecipient(id, publicKey); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := configs.SaveConfig(config); err != nil {
		return nil, err
	}

	entry := audit.LogWithIdentity("recipients.add")
	entry.Recipients = []string{id}
	audit.Log(entry)

	return &AddRecipientResult{
		Recipient: Recipient{ID: id, PublicKey: config.Recipients[id]},
		Replaced:  replaced,
	}, nil
}

// RemoveRecipient deletes a recipient from the recipient book.
//
// Returns ErrRecipientNotFound if the id is not in the book.
func RemoveRecipient(ctx context.Context, id string) error {
	config, err := configs.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := config.RemoveRecipient(id); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := configs.SaveConfig(config); err != nil {
		return err
	}

	entry := audit.LogWithIdentity("recipients.remove")
	entry.Recipients = []string{id}
	audit.Log(entry)

	return nil
}

// ListRecipients returns the recipient book sorted by id.
func ListRecipients(ctx context.Context) ([]Recipient, error) {
	config, err := configs.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ids := config.RecipientIDs()
	recipients := make([]Recipient, len(ids))
	for i, id := range ids {
		recipients[i] = Recipient{ID: id, PublicKey: config.Recipients[id]}
	}
	return recipients, nil
}
