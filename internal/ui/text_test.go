package ui

import (
	"os"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestFormatterWithColor(t *testing.T) {
	os.Unsetenv("NO_COLOR")
	color.NoColor = false

	result := Code.Sprint("envelope seal")
	if strings.Contains(result, "`") {
		t.Errorf("Code.Sprint should not contain backticks when color is enabled, got: %s", result)
	}
	if !strings.Contains(result, "\x1b[") {
		t.Errorf("Code.Sprint should contain ANSI escape codes when color is enabled, got: %s", result)
	}
}

func TestFormatterWithNoColor(t *testing.T) {
	os.Setenv("NO_COLOR", "1")
	defer os.Unsetenv("NO_COLOR")

	tests := []struct {
		name      string
		formatter Formatter
		input     string
		want      string
	}{
		{"Code adds backticks", Code, "envelope open", "`envelope open`"},
		{"Path has no decoration", Path, "task.json.sealed", "task.json.sealed"},
		{"Flag has no decoration", Flag, "--to", "--to"},
		{"Success has no decoration", Success, "✓", "✓"},
		{"Error has no decoration", Error, "✗", "✗"},
		{"Highlight adds quotes", Highlight, "judgeA", "'judgeA'"},
		{"Muted adds parentheses", Muted, "3 recipients", "(3 recipients)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.formatter.Sprint(tt.input)
			if got != tt.want {
				t.Errorf("%s.Sprint(%q) = %q, want %q", tt.name, tt.input, got, tt.want)
			}
		})
	}
}

func TestSprintf(t *testing.T) {
	os.Setenv("NO_COLOR", "1")
	defer os.Unsetenv("NO_COLOR")

	if got := Highlight.Sprintf("judge-%d", 7); got != "'judge-7'" {
		t.Errorf("Highlight.Sprintf = %q, want %q", got, "'judge-7'")
	}
}

func TestLines(t *testing.T) {
	os.Setenv("NO_COLOR", "1")
	defer os.Unsetenv("NO_COLOR")

	if got := SuccessLine("done"); got != "✓ done" {
		t.Errorf("SuccessLine = %q", got)
	}
	if got := ErrorLine("failed"); got != "✗ failed" {
		t.Errorf("ErrorLine = %q", got)
	}
	if got := HintLine("try again"); got != "→ try again" {
		t.Errorf("HintLine = %q", got)
	}
}

func TestFingerprint(t *testing.T) {
	os.Setenv("NO_COLOR", "1")
	defer os.Unsetenv("NO_COLOR")

	tests := []struct {
		input string
		want  string
	}{
		{"q83vEjRWeJq83vEjRWeJq83vEjRWeJq83vEjRWeJq80=", "(q83vEjRWeJq8…)"},
		{"short=", "(short)"},
	}
	for _, tt := range tests {
		if got := Fingerprint(tt.input); got != tt.want {
			t.Errorf("Fingerprint(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestEnsureNewline(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", "\n"},
		{"sealed", "sealed\n"},
		{"sealed\n", "sealed\n"},
	}
	for _, tt := range tests {
		if got := EnsureNewline(tt.input); got != tt.want {
			t.Errorf("EnsureNewline(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
