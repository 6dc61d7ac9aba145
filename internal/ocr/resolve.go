package ocr

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// engineBinary is the name the engine is looked up under on PATH.
const engineBinary = "tesseract"

// ResolveEnginePath locates the Tesseract installation. Resolution order:
// explicit override path (if non-empty), then the binary on the search
// path, then the conventional install location for the platform.
func ResolveEnginePath(override string) (string, error) {
	if trimmed := strings.TrimSpace(override); trimmed != "" {
		if _, err := os.Stat(trimmed); err != nil {
			return "", fmt.Errorf("tesseract override path %q: %w", trimmed, err)
		}
		return trimmed, nil
	}

	if path, err := exec.LookPath(engineBinary); err == nil {
		return path, nil
	}

	fallback := fallbackEnginePath()
	if _, err := os.Stat(fallback); err == nil {
		return fallback, nil
	}

	return "", fmt.Errorf("tesseract not found on PATH or at %s", fallback)
}

func fallbackEnginePath() string {
	if runtime.GOOS == "windows" {
		return `C:\Program Files\Tesseract-OCR\tesseract.exe`
	}
	return "/usr/bin/tesseract"
}

// tessdataDirFor returns the tessdata directory that ships next to the
// engine binary, or empty when none exists there (the library default is
// used in that case).
func tessdataDirFor(enginePath string) string {
	dir := filepath.Join(filepath.Dir(enginePath), "tessdata")
	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		return dir
	}
	return ""
}
