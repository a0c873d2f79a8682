// Package errors provides typed error values for the envelope application.
//
// Using sentinel errors allows callers to handle specific error conditions
// programmatically with errors.Is() rather than string matching.
//
// # Error Categories
//
//   - Encoding errors: base64 or length problems (ErrInvalidEncoding)
//   - Recipient errors: bad recipient sets (ErrInvalidRecipientKey, ErrUnknownRecipient)
//   - Crypto errors: tag failures and bad plaintext (ErrAuthenticationFailure, ErrMalformedPlaintext)
//   - Identity errors: local key pairs and the recipient book (ErrIdentityNotFound)
//   - File errors: file system issues (ErrNoFilesFound, ErrFileNotFound)
//
// ErrNoRecipients wraps ErrInvalidRecipientKey, so both match an empty
// recipient set.
//
// # Usage
//
// Wrap errors with additional context:
//
//	return fmt.Errorf("recipient %s: %w", id, errors.ErrInvalidRecipientKey)
//
// Handle errors in the CLI layer:
//
//	if errors.Is(err, apperrors.ErrAuthenticationFailure) {
//	    // Show user-friendly message
//	}
package errors
