// Package ui provides semantic text formatting for CLI output.
//
// Formatters render with color when the terminal supports it. When NO_COLOR
// is set or the terminal has no color support, text decorations are used
// instead.
//
//	ui.Code.Sprint("envelope keys generate")   // Commands
//	ui.Path.Sprint("task.json.sealed")         // File paths
//	ui.Highlight.Sprint("judgeA")              // Identity and recipient ids
//	ui.Fingerprint(pub.String())               // Shortened public keys
//	ui.SuccessLine("Sealed 2 files")           // ✓ Sealed 2 files
//
// Without color:
//   - Code: `backticks`
//   - Highlight: 'single quotes'
//   - Muted: (parentheses)
//   - Others: no decoration
package ui
