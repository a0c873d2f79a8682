package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xaam-platform/envelope/internal/configs"
)

func withTempSettings(t *testing.T) string {
	t.Helper()
	tempDir := t.TempDir()
	original := configs.UserSettings
	configs.UserSettings = &configs.Settings{
		KeysPath:   filepath.Join(tempDir, "keys"),
		ConfigPath: filepath.Join(tempDir, "config.toml"),
		AuditPath:  filepath.Join(tempDir, "state", "audit.jsonl"),
	}
	t.Cleanup(func() {
		configs.UserSettings = original
	})
	return configs.UserSettings.AuditPath
}

func TestLog_CreatesFile(t *testing.T) {
	logPath := withTempSettings(t)

	Log(Entry{
		Identity:  "creator",
		UUID:      "test-uuid",
		Operation: "seal",
		Files:     []string{"report.json"},
	})

	info, err := os.Stat(logPath)
	if err != nil {
		t.Fatalf("Audit log file was not created: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("Expected audit log permissions 0600, got %o", info.Mode().Perm())
	}
}

func TestLog_AppendsEntries(t *testing.T) {
	logPath := withTempSettings(t)

	Log(Entry{Identity: "creator", Operation: "seal", RecipientsCount: 2})
	Log(Entry{Identity: "judge-a", Operation: "open"})

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("Failed to read audit log: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d", len(lines))
	}

	var first Entry
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("Failed to parse first entry: %v", err)
	}
	if first.Operation != "seal" || first.RecipientsCount != 2 {
		t.Errorf("Unexpected first entry: %+v", first)
	}
	if first.Timestamp == "" {
		t.Errorf("Expected timestamp to be set")
	}
}

func TestLog_OmitsEmptyFields(t *testing.T) {
	logPath := withTempSettings(t)

	Log(Entry{Identity: "creator", Operation: "keys.generate"})

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("Failed to read audit log: %v", err)
	}
	for _, field := range []string{"files", "recipients", "recipients_count"} {
		if strings.Contains(string(data), `"`+field+`"`) {
			t.Errorf("Expected %s to be omitted, got: %s", field, data)
		}
	}
}

func TestLogWithIdentity(t *testing.T) {
	withTempSettings(t)

	config := &configs.Config{Identity: configs.Identity{ID: "creator", UUID: "uuid-1"}}
	if err := configs.SaveConfig(config); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	entry := LogWithIdentity("open")
	if entry.Identity != "creator" || entry.UUID != "uuid-1" || entry.Operation != "open" {
		t.Errorf("Unexpected entry: %+v", entry)
	}
}

func TestReadEntries(t *testing.T) {
	withTempSettings(t)

	entries, err := ReadEntries()
	if err != nil {
		t.Fatalf("ReadEntries failed on a missing log: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected no entries, got %d", len(entries))
	}

	Log(Entry{Operation: "seal"})
	Log(Entry{Operation: "open"})

	entries, err = ReadEntries()
	if err != nil {
		t.Fatalf("ReadEntries failed: %v", err)
	}
	if len(entries) != 2 || entries[1].Operation != "open" {
		t.Errorf("Unexpected entries: %+v", entries)
	}
}

func TestParseEntries_SkipsMalformed(t *testing.T) {
	data := []byte(`{"ts":"2024-01-15T10:30:00.000000Z","op":"seal"}
not json
{"ts":"2024-01-15T10:31:00.000000Z","op":"open"`)

	entries, err := ParseEntries(data)
	if err != nil {
		t.Fatalf("ParseEntries failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}
	if entries[0].Operation != "seal" {
		t.Errorf("Expected op seal, got %s", entries[0].Operation)
	}
}

func TestParseEntries_Empty(t *testing.T) {
	entries, err := ParseEntries(nil)
	if err != nil || entries != nil {
		t.Errorf("Expected nil entries and no error, got %v, %v", entries, err)
	}
}
