package utils

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// SanitizeFileName reduces a client-supplied display name to a storage
// safe stem: characters outside [A-Za-z0-9._-] become underscores,
// runs of underscores collapse, and a name with nothing left falls
// back to "file". The extension is not included.
func SanitizeFileName(name string) string {
	stem := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))

	var b strings.Builder
	for _, r := range stem {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}

	s := b.String()
	for strings.Contains(s, "__") {
		s = strings.ReplaceAll(s, "__", "_")
	}
	s = strings.Trim(s, "._-")
	if s == "" {
		s = "file"
	}
	return s
}

// SafeExtension returns the lower-cased extension of name when it is
// plain ASCII alphanumeric (".mp3", ".m4a"), or ".mp3" otherwise.
func SafeExtension(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" || len(ext) > 8 {
		return ".mp3"
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ".mp3"
		}
	}
	return ext
}

// StorageKey derives the deterministic object-store path for a job's
// audio upload. The millisecond timestamp keeps repeated uploads of
// the same display name unique.
func StorageKey(jobID, fileName string, now time.Time) string {
	return fmt.Sprintf("%s/%s_%d%s",
		jobID, SanitizeFileName(fileName), now.UnixMilli(), SafeExtension(fileName))
}
