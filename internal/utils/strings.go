package utils

import (
	"regexp"
	"strings"

	"github.com/xaam-platform/envelope/internal/ui"
)

// identifierRegex matches identity and recipient ids. Ids become file names
// in the key directory, so path separators are never allowed.
var identifierRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._@-]{0,127}$`)

// FormatPaths formats a slice of paths into a readable string.
func FormatPaths(paths []string) string {
	var b strings.Builder
	b.WriteString("\n")
	for _, path := range paths {
		b.WriteString("    - ")
		b.WriteString(ui.Path.Sprint(path))
		b.WriteString("\n")
	}
	return b.String()
}

// IsValidIdentifier reports whether id can name an identity or recipient.
func IsValidIdentifier(id string) bool {
	if strings.Contains(id, "..") {
		return false
	}
	return identifierRegex.MatchString(id)
}
