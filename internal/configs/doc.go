// Package configs manages the envelope CLI's configuration.
//
// # Settings
//
// UserSettings holds the on-disk locations, resolved from XDG_DATA_HOME and
// XDG_CONFIG_HOME at startup:
//
//   - KeysPath:   $XDG_DATA_HOME/envelope/keys
//   - ConfigPath: $XDG_CONFIG_HOME/envelope/config.toml
//   - AuditPath:  $XDG_DATA_HOME/envelope/audit.jsonl
//
// # config.toml
//
//	[identity]
//	id = "judge-a"
//	uuid = "9f1c2a7e-..."
//
//	[engine]
//	workers = 8
//
//	[recipients]
//	judge-a = "base64 public key"
//	judge-b = "base64 public key"
//
// The identity UUID is generated on first use and identifies the user in the
// audit log. The recipients table is a local address book of public keys; it
// does not prove that a key belongs to anyone.
package configs
