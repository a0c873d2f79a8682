package utils

import (
	"os"
	"os/user"
	"regexp"
	"strconv"
	"strings"
)

var (
	invalidIDChars  = regexp.MustCompile(`[^a-z0-9\-_]`)
	repeatedHyphens = regexp.MustCompile(`-+`)
)

// GetUsername returns the current username.
func GetUsername() (string, error) {
	user, err := user.Current()
	if err != nil {
		return "", err
	}
	return user.Username, nil
}

// GetHostname returns the system hostname.
func GetHostname() (string, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return "", err
	}
	return hostname, nil
}

// SanitizeIdentifier lowercases name and strips everything but letters,
// digits, hyphens and underscores.
func SanitizeIdentifier(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, " ", "-")
	name = invalidIDChars.ReplaceAllString(name, "")
	name = repeatedHyphens.ReplaceAllString(name, "-")
	name = strings.Trim(name, "-")

	if name == "" {
		name = "identity"
	}
	return name
}

// GenerateIdentityID derives an identity id from the username and hostname.
// On conflict with an existing id it appends a number suffix (-2, -3, etc.).
func GenerateIdentityID(existing []string) string {
	var parts []string
	if username, err := GetUsername(); err == nil {
		parts = append(parts, username)
	}
	if hostname, err := GetHostname(); err == nil {
		parts = append(parts, hostname)
	}

	baseID := SanitizeIdentifier(strings.Join(parts, "-"))
	id := baseID

	existingSet := make(map[string]bool, len(existing))
	for _, e := range existing {
		existingSet[strings.ToLower(e)] = true
	}

	suffix := 2
	for existingSet[id] {
		id = baseID + "-" + strconv.Itoa(suffix)
		suffix++
	}

	return id
}
