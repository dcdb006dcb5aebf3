// Package assets places uploaded files under per-project directories with
// collision-free storage names.
package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Resolver maps project identifiers to on-disk upload directories.
type Resolver struct {
	baseDir string
}

func NewResolver(baseDir string) *Resolver {
	return &Resolver{baseDir: baseDir}
}

// ProjectPath returns the project's upload directory, creating it on first
// use.
func (r *Resolver) ProjectPath(projectID string) (string, error) {
	dir := filepath.Join(r.baseDir, sanitize(projectID))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating project directory %q: %w", dir, err)
	}
	return dir, nil
}

// StorageName derives a unique on-disk name for an uploaded file, keeping a
// sanitized form of the original name for traceability.
func StorageName(original string) string {
	ext := filepath.Ext(original)
	stem := strings.TrimSuffix(filepath.Base(original), ext)
	return fmt.Sprintf("%s_%s%s", uuid.NewString(), sanitize(stem), strings.ToLower(ext))
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

func sanitize(s string) string {
	s = unsafeChars.ReplaceAllString(strings.TrimSpace(s), "_")
	s = strings.Trim(s, "_")
	if s == "" {
		return "unnamed"
	}
	return s
}
