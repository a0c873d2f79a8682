// Package utils provides shared helpers for the envelope CLI.
//
// # System Utilities
//
//   - GetUsername, GetHostname: details of the local machine
//   - SanitizeIdentifier, GenerateIdentityID: default identity ids
//
// # String Utilities
//
//   - FormatPaths: formats file paths for human-readable output
//   - IsValidIdentifier: checks identity and recipient ids
//
// # I/O and Terminal Utilities
//
//   - ReadStdin: reads piped data such as a private key
//   - IsTerminal, IsStdoutTerminal: terminal detection via golang.org/x/term
package utils
