package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/xaam-platform/envelope/internal/configs"
)

// Entry represents a single audit log entry.
type Entry struct {
	Timestamp string `json:"ts"`       // RFC3339 with microseconds.
	Identity  string `json:"identity"` // Identity performing the action.
	UUID      string `json:"uuid"`     // Installation UUID from config.toml.
	Operation string `json:"op"`       // Operation name.

	// Optional fields depending on operation.
	Files           []string `json:"files,omitempty"`            // For seal/open.
	Recipients      []string `json:"recipients,omitempty"`       // For seal and recipient changes.
	RecipientsCount int      `json:"recipients_count,omitempty"` // For seal.
}

// Log appends an entry to the audit log.
// Failures are ignored; operations never fail because of audit logging.
func Log(entry Entry) {
	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().UTC().Format("2006-01-02T15:04:05.000000Z")
	}

	logPath := LogPath()
	if logPath == "" {
		return
	}

	if err := os.MkdirAll(filepath.Dir(logPath), 0700); err != nil {
		return
	}

	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return
	}
	defer f.Close()

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}

	_, _ = f.Write(append(data, '\n'))
}

// LogWithIdentity returns an entry with the identity fields populated from config.
func LogWithIdentity(op string) Entry {
	entry := Entry{Operation: op}

	config, err := configs.LoadConfig()
	if err != nil {
		return entry
	}

	entry.Identity = config.Identity.ID
	entry.UUID = config.Identity.UUID

	return entry
}

// LogPath returns the path to the audit log file, or "" when unset.
func LogPath() string {
	if configs.UserSettings == nil {
		return ""
	}
	return configs.UserSettings.AuditPath
}

// ReadEntries reads all entries from the audit log.
// Returns an empty slice if the log doesn't exist.
func ReadEntries() ([]Entry, error) {
	logPath := LogPath()
	if logPath == "" {
		return nil, nil
	}

	data, err := os.ReadFile(logPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return ParseEntries(data)
}

// ParseEntries parses JSON Lines data into audit entries.
// Malformed lines are silently skipped.
func ParseEntries(data []byte) ([]Entry, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var entries []Entry
	start := 0

	for i := 0; i <= len(data); i++ {
		if i == len(data) || data[i] == '\n' {
			line := data[start:i]
			start = i + 1

			if len(line) == 0 {
				continue
			}

			var entry Entry
			if err := json.Unmarshal(line, &entry); err != nil {
				continue
			}
			entries = append(entries, entry)
		}
	}

	return entries, nil
}
