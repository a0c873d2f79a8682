// Package files resolves the file arguments given to seal and open.
//
// Arguments may be literal paths, directories or doublestar globs such as
// "reports/**/*.json". Sealed files carry the ".sealed" suffix; opening
// a sealed file writes the plaintext next to it with the suffix removed.
package files
