// Package media stores subject photographs under a predictable
// per-subject filename.
package media

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// photoSubdir keeps photographs apart from other media under the root.
const photoSubdir = "teacher_photos"

// placeholderNames are name-column values that mean "no usable name".
var placeholderNames = map[string]bool{
	"未知":  true,
	"补充中": true,
	"nan": true,
}

// Dir is a media directory rooted at a fixed path.
type Dir struct {
	root string
}

// NewDir creates a media directory handle. The directory tree is created
// lazily on first save.
func NewDir(root string) *Dir {
	return &Dir{root: root}
}

// SavePhoto writes image data under a filename derived from the subject
// name, falling back to the spreadsheet row number when the name is
// unusable. Returns the path relative to the media root.
func (d *Dir) SavePhoto(name string, row int, data []byte) (string, error) {
	dir := filepath.Join(d.root, photoSubdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating photo dir: %w", err)
	}

	filename := fmt.Sprintf("teacher_row_%d.png", row)
	if safe := SafeName(name); safe != "" {
		filename = safe + ".png"
	}

	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing photo %s: %w", filename, err)
	}
	return filepath.Join(photoSubdir, filename), nil
}

// Remove deletes a photo by its media-relative path. Missing files are
// not an error; the mirror of a deleted entity may already be gone.
func (d *Dir) Remove(rel string) error {
	if rel == "" {
		return nil
	}
	err := os.Remove(filepath.Join(d.root, rel))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing photo %s: %w", rel, err)
	}
	return nil
}

// Path resolves a media-relative path under the root.
func (d *Dir) Path(rel string) string {
	return filepath.Join(d.root, rel)
}

// SafeName reduces a subject name to filename-safe characters:
// letters, digits, spaces, dashes and underscores. Placeholder names
// yield the empty string.
func SafeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" || placeholderNames[name] {
		return ""
	}
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	return strings.TrimRight(b.String(), " ")
}
