package export

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	maxFileBaseLen  = 120
	defaultBaseName = "casadark_export"
)

// FileName builds "<sanitised base>.<ext>" for the format.
func FileName(base string, format Format) string {
	name := SanitizeName(base, maxFileBaseLen)
	if name == "" || name == "." || name == ".." {
		name = defaultBaseName
	}
	if format == FormatSRTSimple {
		name += ".simple"
	}
	return name + "." + format.Extension()
}

// WriteFile writes content into dir under FileName(base, format). The file is
// written to a temporary sibling first and renamed into place.
func WriteFile(dir, base string, format Format, content string) (string, error) {
	if err := ValidateOutputDir(dir); err != nil {
		return "", err
	}

	dest := filepath.Join(dir, FileName(base, format))
	if err := writeFileAtomic(dest, []byte(content), 0o644); err != nil {
		return "", err
	}
	return dest, nil
}

// WritePath writes content to an explicit destination path, replacing any
// existing file.
func WritePath(path, content string) error {
	return writeFileAtomic(path, []byte(content), 0o644)
}

func writeFileAtomic(dest string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	_ = os.Chmod(tmpName, perm)

	if err := os.Rename(tmpName, dest); err != nil {
		return fmt.Errorf("rename %s: %w", dest, err)
	}
	return nil
}
