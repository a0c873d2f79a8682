// Package workflows provides high-level orchestration for envelope commands.
//
// Workflows coordinate the configs, keystore, files, envelope and audit
// packages to implement complete user-facing features. Each workflow handles
// a single command's business logic, independent of CLI concerns like flag
// parsing, spinners, and output formatting.
//
// # Available Workflows
//
//   - GenerateIdentity, ListIdentities, ShowIdentity: manage local key pairs
//   - AddRecipient, RemoveRecipient, ListRecipients: manage the recipient book
//   - Seal: encrypts files once for a set of recipients
//   - Open: decrypts sealed files for one recipient
//   - Inspect: lists the recipients of a sealed file
//
// # Error Handling
//
// Workflows return typed errors from the internal/errors package, allowing
// the CLI layer to provide appropriate user-facing messages without string
// matching:
//
//	result, err := workflows.Open(ctx, opts)
//	if errors.Is(err, apperrors.ErrUnknownRecipient) {
//	    // Tell the user the file was not sealed for them
//	}
//
// All workflow functions accept a context.Context as their first parameter
// and check it between files.
package workflows
