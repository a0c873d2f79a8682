package errors

import (
	"errors"
	"fmt"
)

// Encoding errors indicate malformed input detected before any cryptography runs.
var (
	// ErrInvalidEncoding indicates a base64 or length decoding failure on an input field.
	ErrInvalidEncoding = errors.New("invalid encoding")
)

// Recipient errors indicate problems with the recipient set of an envelope.
var (
	// ErrInvalidRecipientKey indicates a malformed or wrong-length recipient public key.
	ErrInvalidRecipientKey = errors.New("invalid recipient public key")

	// ErrNoRecipients indicates an envelope was requested for an empty recipient set.
	ErrNoRecipients = fmt.Errorf("%w: no recipients given", ErrInvalidRecipientKey)

	// ErrUnknownRecipient indicates the envelope holds no wrapped key for the recipient.
	ErrUnknownRecipient = errors.New("recipient has no wrapped key in this envelope")
)

// Cryptographic errors indicate failures during sealing or opening.
var (
	// ErrAuthenticationFailure indicates a tag did not verify. Wrong key, wrong
	// nonce and tampered ciphertext all collapse into this one error.
	ErrAuthenticationFailure = errors.New("message authentication failed")

	// ErrMalformedPlaintext indicates authenticated plaintext did not parse as
	// the expected structured document.
	ErrMalformedPlaintext = errors.New("decrypted payload is malformed")

	// ErrRandomSource indicates the random source could not supply bytes.
	ErrRandomSource = errors.New("random source failure")

	// ErrNonceReuse indicates the random source repeated a nonce or ephemeral key.
	ErrNonceReuse = errors.New("nonce or ephemeral key reused")
)

// Identity errors indicate issues with locally stored key pairs and the recipient book.
var (
	// ErrIdentityNotFound indicates no key pair is stored for the identity.
	ErrIdentityNotFound = errors.New("identity not found")

	// ErrIdentityExists indicates a key pair is already stored for the identity.
	ErrIdentityExists = errors.New("identity already exists")

	// ErrNoIdentityConfigured indicates no default identity has been set up.
	ErrNoIdentityConfigured = errors.New("no identity configured")

	// ErrRecipientNotFound indicates the recipient is not in the recipient book.
	ErrRecipientNotFound = errors.New("recipient not found")

	// ErrInvalidIdentifier indicates an identity or recipient id has invalid characters.
	ErrInvalidIdentifier = errors.New("invalid identifier")
)

// File errors indicate issues with file discovery or access.
var (
	// ErrNoFilesFound indicates no files matched the provided patterns.
	ErrNoFilesFound = errors.New("no matching files found")

	// ErrFileNotFound indicates a specific file could not be located.
	ErrFileNotFound = errors.New("file not found")

	// ErrInvalidFileType indicates the file is not of the expected type.
	ErrInvalidFileType = errors.New("invalid file type")
)
