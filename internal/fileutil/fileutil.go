package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// StagingName builds a collision-free staging filename by prefixing the
// sanitized base name with a short unique token.
func StagingName(filename string) string {
	token := uuid.NewString()[:8]
	base := SanitizeFilename(filepath.Base(filename))
	if base == "" {
		base = "upload"
	}
	return fmt.Sprintf("%s_%s", token, base)
}

// SanitizeFilename strips path separators and control characters from a
// user-supplied filename so it is safe to join into the staging directory.
func SanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	var builder strings.Builder
	builder.Grow(len(name))
	for _, r := range name {
		switch {
		case r == '/' || r == '\\' || r == ':':
			builder.WriteByte('-')
		case r < ' ':
			// drop control characters
		default:
			builder.WriteRune(r)
		}
	}
	return strings.Trim(builder.String(), ". ")
}

// RemoveIfExists deletes path, treating a missing file as success.
func RemoveIfExists(path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// RemoveAllQuiet removes every listed path on a best-effort basis. Used when
// tearing down a failed job, where cleanup must not mask the original error.
func RemoveAllQuiet(paths ...string) {
	for _, path := range paths {
		_ = RemoveIfExists(path)
	}
}
