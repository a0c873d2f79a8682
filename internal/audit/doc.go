// Package audit records seal, open and recipient operations.
//
// # Log Format
//
// The audit log is stored as JSON Lines (one JSON object per line) at the
// AuditPath from configs.UserSettings, by default:
//
//	$XDG_DATA_HOME/envelope/audit.jsonl
//
// Each entry contains:
//   - Timestamp (RFC3339 with microseconds, UTC)
//   - Identity id and installation UUID
//   - Operation name
//   - Operation-specific details (files, recipient ids)
//
// Entries never contain key material or plaintext.
//
// # Usage
//
//	entry := audit.LogWithIdentity("seal")
//	entry.Files = sealedFiles
//	audit.Log(entry)
//
// Audit logging is best-effort. If logging fails the operation continues.
// Malformed entries are skipped when reading to handle partial writes.
package audit
