// Package keystore stores envelope identities on the local disk.
//
// Each identity is a pair of files in the keys directory:
//
//	<id>.key  base64 private key, mode 0600
//	<id>.pub  base64 public key, mode 0644
//
// The keystore only persists key pairs for the CLI. It does not distribute
// public keys or vouch for who owns them.
package keystore
