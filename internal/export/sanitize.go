package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

var (
	ErrOutputDirRequired = errors.New("output directory is required")
	ErrPathTraversal     = errors.New("output directory cannot contain path traversal")
	ErrUncleanPath       = errors.New("output directory must be a clean path")
	ErrNotADirectory     = errors.New("output directory is not a directory")
)

// SanitizeName turns a project title into a file name stem. Letters, digits
// and a few safe marks are kept, every run of other characters becomes a
// single '_', control characters are dropped, and leading or trailing dots
// and spaces are trimmed. The result is cut to maxLen runes when maxLen > 0.
func SanitizeName(s string, maxLen int) string {
	var b strings.Builder
	replaced := false
	for _, r := range s {
		switch {
		case unicode.IsControl(r):
			continue
		case isAllowedNameRune(r):
			b.WriteRune(r)
			replaced = false
		case !replaced:
			b.WriteRune('_')
			replaced = true
		}
	}

	cleaned := trimName(b.String())
	if maxLen > 0 {
		if runes := []rune(cleaned); len(runes) > maxLen {
			cleaned = trimName(string(runes[:maxLen]))
		}
	}
	return cleaned
}

func trimName(s string) string {
	return strings.Trim(s, " .")
}

func isAllowedNameRune(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsDigit(r) {
		return true
	}
	switch r {
	case ' ', '-', '_', '.', ',', '(', ')':
		return true
	default:
		return false
	}
}

// ValidateOutputDir checks that dir is a clean path to an existing
// directory with no ".." element.
func ValidateOutputDir(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return ErrOutputDirRequired
	}

	for _, part := range strings.Split(filepath.ToSlash(dir), "/") {
		if part == ".." {
			return ErrPathTraversal
		}
	}

	if filepath.Clean(dir) != dir {
		return fmt.Errorf("%w: %s", ErrUncleanPath, dir)
	}

	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("output directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotADirectory, dir)
	}

	return nil
}
