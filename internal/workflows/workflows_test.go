package workflows

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/xaam-platform/envelope/internal/audit"
	"github.com/xaam-platform/envelope/internal/configs"
	"github.com/xaam-platform/envelope/internal/envelope"
	apperrors "github.com/xaam-platform/envelope/internal/errors"
)

// setupTest points UserSettings at a temp dir and returns a work dir for files.
func setupTest(t *testing.T) string {
	t.Helper()
	tempDir := t.TempDir()
	original := configs.UserSettings
	configs.UserSettings = &configs.Settings{
		KeysPath:   filepath.Join(tempDir, "keys"),
		ConfigPath: filepath.Join(tempDir, "config", "config.toml"),
		AuditPath:  filepath.Join(tempDir, "audit.jsonl"),
	}
	t.Cleanup(func() {
		configs.UserSettings = original
	})

	workDir := filepath.Join(tempDir, "work")
	if err := os.MkdirAll(workDir, 0755); err != nil {
		t.Fatalf("Failed to create work dir: %v", err)
	}
	return workDir
}

// #nosec G306 -- Test files are temporary and don't contain sensitive data.
func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil { // #nosec G306
		t.Fatalf("Failed to create test file: %v", err)
	}
}

func mustGenerate(t *testing.T, id string) *GenerateResult {
	t.Helper()
	result, err := GenerateIdentity(context.Background(), GenerateOptions{ID: id})
	if err != nil {
		t.Fatalf("GenerateIdentity(%s) failed: %v", id, err)
	}
	return result
}

func TestGenerateIdentity_FirstBecomesDefault(t *testing.T) {
	setupTest(t)
	ctx := context.Background()

	first := mustGenerate(t, "creator")
	if !first.IsDefault {
		t.Errorf("Expected first identity to become the default")
	}
	second := mustGenerate(t, "judge-a")
	if second.IsDefault {
		t.Errorf("Expected second identity not to replace the default")
	}

	config, err := configs.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if config.Identity.ID != "creator" {
		t.Errorf("Expected default identity creator, got %q", config.Identity.ID)
	}
	if config.Identity.UUID == "" {
		t.Errorf("Expected a UUID to be assigned")
	}

	_, err = GenerateIdentity(ctx, GenerateOptions{ID: "creator"})
	if !errors.Is(err, apperrors.ErrIdentityExists) {
		t.Errorf("Expected ErrIdentityExists, got: %v", err)
	}

	identities, err := ListIdentities(ctx)
	if err != nil {
		t.Fatalf("ListIdentities failed: %v", err)
	}
	if len(identities) != 2 || !identities[0].Default || !identities[0].Secure {
		t.Errorf("Unexpected identities: %+v", identities)
	}

	shown, err := ShowIdentity(ctx, "")
	if err != nil {
		t.Fatalf("ShowIdentity failed: %v", err)
	}
	if shown.ID != "creator" || shown.PublicKey != first.PublicKey {
		t.Errorf("Unexpected identity: %+v", shown)
	}
}

func TestGenerateIdentity_DerivedID(t *testing.T) {
	setupTest(t)

	result, err := GenerateIdentity(context.Background(), GenerateOptions{})
	if err != nil {
		t.Fatalf("GenerateIdentity failed: %v", err)
	}
	if result.ID == "" {
		t.Errorf("Expected a derived identity id")
	}
}

func TestShowIdentity_NoneConfigured(t *testing.T) {
	setupTest(t)

	_, err := ShowIdentity(context.Background(), "")
	if !errors.Is(err, apperrors.ErrNoIdentityConfigured) {
		t.Errorf("Expected ErrNoIdentityConfigured, got: %v", err)
	}
}

func TestRecipientBook(t *testing.T) {
	setupTest(t)
	ctx := context.Background()
	judge := mustGenerate(t, "judge-a")

	added, err := AddRecipient(ctx, "judge-a", judge.PublicKey)
	if err != nil {
		t.Fatalf("AddRecipient failed: %v", err)
	}
	if added.Replaced {
		t.Errorf("Expected a new entry")
	}

	added, err = AddRecipient(ctx, "judge-a", judge.PublicKey)
	if err != nil {
		t.Fatalf("AddRecipient failed: %v", err)
	}
	if !added.Replaced {
		t.Errorf("Expected the entry to be replaced")
	}

	if _, err := AddRecipient(ctx, "judge-b", "not-a-key"); !errors.Is(err, apperrors.ErrInvalidRecipientKey) {
		t.Errorf("Expected ErrInvalidRecipientKey, got: %v", err)
	}

	recipients, err := ListRecipients(ctx)
	if err != nil {
		t.Fatalf("ListRecipients failed: %v", err)
	}
	if len(recipients) != 1 || recipients[0].ID != "judge-a" {
		t.Errorf("Unexpected recipients: %+v", recipients)
	}

	if err := RemoveRecipient(ctx, "judge-a"); err != nil {
		t.Fatalf("RemoveRecipient failed: %v", err)
	}
	if err := RemoveRecipient(ctx, "judge-a"); !errors.Is(err, apperrors.ErrRecipientNotFound) {
		t.Errorf("Expected ErrRecipientNotFound, got: %v", err)
	}
}

func TestSealAndOpen_AuditReport(t *testing.T) {
	workDir := setupTest(t)
	ctx := context.Background()

	mustGenerate(t, "creator")
	judgeA := mustGenerate(t, "judge-a")
	judgeB := mustGenerate(t, "judge-b")
	if _, err := AddRecipient(ctx, "judge-a", judgeA.PublicKey); err != nil {
		t.Fatalf("AddRecipient failed: %v", err)
	}

	report := filepath.Join(workDir, "report.json")
	writeTestFile(t, report, `{"title":"Audit report"}`)

	sealed, err := Seal(ctx, SealOptions{
		FilePatterns: []string{"report.json"},
		BaseDir:      workDir,
		Recipients:   []string{"judge-a"},
		ExtraKeys:    map[string]string{"judge-b": judgeB.PublicKey},
		IncludeSelf:  true,
	})
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}
	want := []string{"creator", "judge-a", "judge-b"}
	if len(sealed.Recipients) != len(want) {
		t.Fatalf("Expected recipients %v, got %v", want, sealed.Recipients)
	}
	for i := range want {
		if sealed.Recipients[i] != want[i] {
			t.Errorf("Expected recipients %v, got %v", want, sealed.Recipients)
		}
	}

	data, err := os.ReadFile(report + ".sealed")
	if err != nil {
		t.Fatalf("Expected sealed file: %v", err)
	}
	var wire envelope.WireEnvelope
	if err := json.Unmarshal(data, &wire); err != nil {
		t.Fatalf("Sealed file is not an envelope: %v", err)
	}
	if len(wire.EncryptedKeys) != 3 {
		t.Errorf("Expected 3 wrapped keys, got %d", len(wire.EncryptedKeys))
	}

	if err := os.Remove(report); err != nil {
		t.Fatalf("Failed to remove plaintext: %v", err)
	}

	for _, id := range want {
		opened, err := Open(ctx, OpenOptions{
			FilePatterns: []string{"report.json.sealed"},
			BaseDir:      workDir,
			RecipientID:  id,
			ToStdout:     true,
			RequireJSON:  true,
		})
		if err != nil {
			t.Fatalf("Open as %s failed: %v", id, err)
		}
		if string(opened.Files[0].Plaintext) != `{"title":"Audit report"}` {
			t.Errorf("Unexpected plaintext for %s: %q", id, opened.Files[0].Plaintext)
		}
	}

	if _, err := Open(ctx, OpenOptions{FilePatterns: []string{"report.json.sealed"}, BaseDir: workDir}); err != nil {
		t.Fatalf("Open as default identity failed: %v", err)
	}
	restored, err := os.ReadFile(report)
	if err != nil {
		t.Fatalf("Expected opened file: %v", err)
	}
	if string(restored) != `{"title":"Audit report"}` {
		t.Errorf("Unexpected restored content: %q", restored)
	}

	entries, err := audit.ReadEntries()
	if err != nil {
		t.Fatalf("ReadEntries failed: %v", err)
	}
	var sawSeal bool
	for _, e := range entries {
		if e.Operation == "seal" && e.RecipientsCount == 3 {
			sawSeal = true
		}
	}
	if !sawSeal {
		t.Errorf("Expected a seal audit entry, got %+v", entries)
	}
}

func TestSeal_Validation(t *testing.T) {
	workDir := setupTest(t)
	ctx := context.Background()
	writeTestFile(t, filepath.Join(workDir, "a.txt"), "a")
	judge := mustGenerate(t, "judge-a")

	tests := []struct {
		name string
		opts SealOptions
		want error
	}{
		{"no recipients", SealOptions{FilePatterns: []string{"a.txt"}}, apperrors.ErrNoRecipients},
		{"unknown book entry", SealOptions{FilePatterns: []string{"a.txt"}, Recipients: []string{"nobody"}}, apperrors.ErrRecipientNotFound},
		{"bad extra key", SealOptions{
			FilePatterns: []string{"a.txt"},
			ExtraKeys:    map[string]string{"judge-a": judge.PublicKey, "judge-b": "AAAA"},
		}, apperrors.ErrInvalidRecipientKey},
		{"bad extra id", SealOptions{
			FilePatterns: []string{"a.txt"},
			ExtraKeys:    map[string]string{"../x": judge.PublicKey},
		}, apperrors.ErrInvalidIdentifier},
		{"no files", SealOptions{ExtraKeys: map[string]string{"judge-a": judge.PublicKey}}, apperrors.ErrNoFilesFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.BaseDir = workDir
			_, err := Seal(ctx, tt.opts)
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got: %v", tt.want, err)
			}
			if _, err := os.Stat(filepath.Join(workDir, "a.txt.sealed")); !os.IsNotExist(err) {
				t.Errorf("Expected no sealed output after a failed seal")
			}
		})
	}
}

func TestSeal_DryRun(t *testing.T) {
	workDir := setupTest(t)
	writeTestFile(t, filepath.Join(workDir, "a.txt"), "a")
	judge := mustGenerate(t, "judge-a")

	result, err := Seal(context.Background(), SealOptions{
		FilePatterns: []string{"*.txt"},
		BaseDir:      workDir,
		ExtraKeys:    map[string]string{"judge-a": judge.PublicKey},
		DryRun:       true,
	})
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}
	if len(result.SealedFiles) != 1 || !result.DryRun {
		t.Errorf("Unexpected result: %+v", result)
	}
	if _, err := os.Stat(result.SealedFiles[0]); !os.IsNotExist(err) {
		t.Errorf("Expected dry run not to write files")
	}
}

func TestSeal_UsesConfiguredWorkers(t *testing.T) {
	workDir := setupTest(t)
	writeTestFile(t, filepath.Join(workDir, "a.txt"), "a")
	judge := mustGenerate(t, "judge-a")

	config, err := configs.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	config.Engine.Workers = 2
	if err := configs.SaveConfig(config); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	result, err := Seal(context.Background(), SealOptions{
		FilePatterns: []string{"a.txt"},
		BaseDir:      workDir,
		ExtraKeys:    map[string]string{"judge-a": judge.PublicKey},
	})
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}
	if result.Workers != 2 {
		t.Errorf("Expected 2 workers, got %d", result.Workers)
	}
}

func TestOpen_Failures(t *testing.T) {
	workDir := setupTest(t)
	ctx := context.Background()

	mustGenerate(t, "creator")
	judge := mustGenerate(t, "judge-a")
	mustGenerate(t, "outsider")

	writeTestFile(t, filepath.Join(workDir, "notes.txt"), "plain text, not json")
	if _, err := Seal(ctx, SealOptions{
		FilePatterns: []string{"notes.txt"},
		BaseDir:      workDir,
		ExtraKeys:    map[string]string{"judge-a": judge.PublicKey},
	}); err != nil {
		t.Fatalf("Seal failed: %v", err)
	}

	otherKey, err := envelope.New().GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair failed: %v", err)
	}

	tests := []struct {
		name string
		opts OpenOptions
		want error
	}{
		{"not a recipient", OpenOptions{RecipientID: "outsider"}, apperrors.ErrUnknownRecipient},
		{"wrong private key", OpenOptions{
			RecipientID:    "judge-a",
			PrivateKeyData: []byte(otherKey.PrivateKey.Base64() + "\n"),
		}, apperrors.ErrAuthenticationFailure},
		{"not json", OpenOptions{RecipientID: "judge-a", RequireJSON: true}, apperrors.ErrMalformedPlaintext},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.FilePatterns = []string{"notes.txt.sealed"}
			tt.opts.BaseDir = workDir
			_, err := Open(ctx, tt.opts)
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got: %v", tt.want, err)
			}
		})
	}
}

func TestOpen_CorruptFile(t *testing.T) {
	workDir := setupTest(t)
	mustGenerate(t, "creator")
	writeTestFile(t, filepath.Join(workDir, "broken.sealed"), "{not json")

	_, err := Open(context.Background(), OpenOptions{
		FilePatterns: []string{"broken.sealed"},
		BaseDir:      workDir,
	})
	if !errors.Is(err, apperrors.ErrInvalidEncoding) {
		t.Errorf("Expected ErrInvalidEncoding, got: %v", err)
	}
}

func TestOpen_NoIdentity(t *testing.T) {
	workDir := setupTest(t)

	_, err := Open(context.Background(), OpenOptions{FilePatterns: []string{"x.sealed"}, BaseDir: workDir})
	if !errors.Is(err, apperrors.ErrNoIdentityConfigured) {
		t.Errorf("Expected ErrNoIdentityConfigured, got: %v", err)
	}
}

func TestOpen_CancelledContext(t *testing.T) {
	workDir := setupTest(t)
	creator := mustGenerate(t, "creator")
	writeTestFile(t, filepath.Join(workDir, "a.txt"), "a")
	if _, err := Seal(context.Background(), SealOptions{
		FilePatterns: []string{"a.txt"},
		BaseDir:      workDir,
		ExtraKeys:    map[string]string{"creator": creator.PublicKey},
	}); err != nil {
		t.Fatalf("Seal failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Open(ctx, OpenOptions{FilePatterns: []string{"a.txt.sealed"}, BaseDir: workDir})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got: %v", err)
	}
}

func TestInspect(t *testing.T) {
	workDir := setupTest(t)
	ctx := context.Background()
	creator := mustGenerate(t, "creator")
	judge := mustGenerate(t, "judge-a")

	writeTestFile(t, filepath.Join(workDir, "a.txt"), "twelve bytes")
	if _, err := Seal(ctx, SealOptions{
		FilePatterns: []string{"a.txt"},
		BaseDir:      workDir,
		ExtraKeys:    map[string]string{"judge-a": judge.PublicKey, "creator": creator.PublicKey},
	}); err != nil {
		t.Fatalf("Seal failed: %v", err)
	}

	result, err := Inspect(ctx, filepath.Join(workDir, "a.txt.sealed"))
	if err != nil {
		t.Fatalf("Inspect failed: %v", err)
	}
	if result.PayloadSize != len("twelve bytes") {
		t.Errorf("Expected payload size %d, got %d", len("twelve bytes"), result.PayloadSize)
	}
	if len(result.Recipients) != 2 || result.Recipients[0] != "creator" {
		t.Errorf("Unexpected recipients: %v", result.Recipients)
	}
	if !result.ForIdentity || result.IdentityID != "creator" {
		t.Errorf("Expected the default identity to be a recipient: %+v", result)
	}
}

func TestLog_Filters(t *testing.T) {
	setupTest(t)

	audit.Log(audit.Entry{Operation: "seal", Files: []string{"a.sealed"}})
	audit.Log(audit.Entry{Operation: "open", Files: []string{"a.sealed"}})
	audit.Log(audit.Entry{Operation: "seal", Files: []string{"b.sealed"}})

	result, err := Log(context.Background(), LogOptions{Operations: "seal"})
	if err != nil {
		t.Fatalf("Log failed: %v", err)
	}
	if result.TotalEntriesBeforeFilter != 3 || len(result.Entries) != 2 {
		t.Errorf("Unexpected result: %+v", result)
	}

	result, err = Log(context.Background(), LogOptions{Reverse: true, Limit: 1})
	if err != nil {
		t.Fatalf("Log failed: %v", err)
	}
	if len(result.Entries) != 1 || result.Entries[0].Files[0] != "b.sealed" {
		t.Errorf("Expected the most recent entry, got %+v", result.Entries)
	}

	if got := FormatDetails(audit.Entry{Files: []string{"a"}, Recipients: []string{"x", "y"}}); got != "a  recipients: x, y" {
		t.Errorf("Unexpected details: %q", got)
	}
}

func TestWipePlaintexts(t *testing.T) {
	first := []byte("secret one")
	second := []byte("secret two")
	opened := []OpenedFile{{Plaintext: first}, {Plaintext: second}, {}}

	wipePlaintexts(opened)

	for i, f := range opened {
		if f.Plaintext != nil {
			t.Errorf("Expected file %d plaintext to be dropped", i)
		}
	}
	for _, buf := range [][]byte{first, second} {
		for _, b := range buf {
			if b != 0 {
				t.Fatalf("Expected plaintext buffer to be zeroed, got %q", buf)
			}
		}
	}
}
