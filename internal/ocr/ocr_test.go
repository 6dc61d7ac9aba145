package ocr

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go-transcript-gpa/pkg/models"
)

func TestSentinelClassification(t *testing.T) {
	tests := []struct {
		name           string
		text           string
		isError        bool
		isEngineError  bool
		isLanguagePack bool
	}{
		{
			name:    "plain text",
			text:    "高等数学 85 4学分",
			isError: false,
		},
		{
			name:          "engine not found",
			text:          SentinelEngineNotFound + " tesseract not found on PATH",
			isError:       true,
			isEngineError: true,
		},
		{
			name:           "language pack missing",
			text:           SentinelLanguagePackMissing + " failed loading language chi_sim",
			isError:        true,
			isEngineError:  true,
			isLanguagePack: true,
		},
		{
			name:    "recognition failed is not fatal",
			text:    SentinelRecognitionFailed + " boom",
			isError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsErrorText(tt.text); got != tt.isError {
				t.Errorf("IsErrorText = %v, want %v", got, tt.isError)
			}
			if got := IsEngineError(tt.text); got != tt.isEngineError {
				t.Errorf("IsEngineError = %v, want %v", got, tt.isEngineError)
			}
			if got := IsLanguagePackMissing(tt.text); got != tt.isLanguagePack {
				t.Errorf("IsLanguagePackMissing = %v, want %v", got, tt.isLanguagePack)
			}
		})
	}
}

func TestSentinels_DistinguishEngineFromLanguagePack(t *testing.T) {
	engineErr := errorRawText(SentinelEngineNotFound, "no engine")
	langErr := errorRawText(SentinelLanguagePackMissing, "no chi_sim")

	if IsLanguagePackMissing(engineErr.Combined()) {
		t.Error("engine-not-found text misclassified as language pack missing")
	}
	if IsEngineNotFound(langErr.Combined()) {
		t.Error("language-pack text misclassified as engine not found")
	}
}

func TestResolveEnginePath_Override(t *testing.T) {
	dir := t.TempDir()
	fake := filepath.Join(dir, "tesseract")
	if err := os.WriteFile(fake, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := ResolveEnginePath(fake)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != fake {
		t.Errorf("resolved %q, want override %q", got, fake)
	}
}

func TestResolveEnginePath_OverrideMissing(t *testing.T) {
	_, err := ResolveEnginePath(filepath.Join(t.TempDir(), "nope"))
	if err == nil {
		t.Fatal("expected error for missing override path")
	}
}

func TestResolveEnginePath_WhitespaceOverrideIgnored(t *testing.T) {
	// A blank override must fall through to auto-detection rather than being
	// treated as a path.
	_, errBlank := ResolveEnginePath("   ")
	_, errEmpty := ResolveEnginePath("")
	if (errBlank == nil) != (errEmpty == nil) {
		t.Error("blank and empty overrides resolved differently")
	}
}

func TestCombined_PassOrderAndLabels(t *testing.T) {
	raw := models.RawText{
		Segments: []models.PassText{
			{Source: models.PassOriginal, Body: "first pass text"},
			{Source: models.PassInverted, Body: "second pass text"},
		},
	}

	combined := raw.Combined()

	origIdx := strings.Index(combined, "original")
	invIdx := strings.Index(combined, "inverted")
	if origIdx == -1 || invIdx == -1 {
		t.Fatalf("combined text missing pass labels: %q", combined)
	}
	if origIdx > invIdx {
		t.Error("original pass must come before inverted pass")
	}
	if !strings.Contains(combined, "first pass text") || !strings.Contains(combined, "second pass text") {
		t.Error("combined text missing pass bodies")
	}
}

func TestPassAgreement(t *testing.T) {
	tests := []struct {
		name      string
		original  string
		inverted  string
		wantNil   bool
		wantExact bool
	}{
		{"identical passes", "线性代数 90", "线性代数 90", false, true},
		{"whitespace differences ignored", "线性代数  90", "线性代数 90", false, true},
		{"divergent passes", "线性代数 90", "乱码乱码乱码", false, false},
		{"empty inverted pass", "线性代数 90", "", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := models.RawText{Segments: []models.PassText{
				{Source: models.PassOriginal, Body: tt.original},
				{Source: models.PassInverted, Body: tt.inverted},
			}}
			agreement := passAgreement(raw)
			if (agreement == nil) != tt.wantNil {
				t.Fatalf("passAgreement nil=%v, want %v", agreement == nil, tt.wantNil)
			}
			if agreement == nil {
				return
			}
			if tt.wantExact && agreement.Similarity != 1.0 {
				t.Errorf("similarity = %v, want 1.0", agreement.Similarity)
			}
			if !tt.wantExact && agreement.Similarity >= 1.0 {
				t.Errorf("similarity = %v, want < 1.0", agreement.Similarity)
			}
			if agreement.Similarity < 0 || agreement.Similarity > 1 {
				t.Errorf("similarity %v outside [0,1]", agreement.Similarity)
			}
		})
	}
}

func TestIsLanguagePackError(t *testing.T) {
	tests := []struct {
		msg      string
		expected bool
	}{
		{"Failed loading language 'chi_sim'", true},
		{"could not open tessdata directory", true},
		{"image is empty", false},
	}

	for _, tt := range tests {
		if got := isLanguagePackError(errString(tt.msg)); got != tt.expected {
			t.Errorf("isLanguagePackError(%q) = %v, want %v", tt.msg, got, tt.expected)
		}
	}
}

type errString string

func (e errString) Error() string { return string(e) }
