package utils

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateStorageKey builds a date-partitioned object key of the form
// 2025/08/31/{uuid}-{name}. The name part is reduced to its base name and
// sanitized so the key stays a clean URL path segment.
func GenerateStorageKey(fileName string, now time.Time) string {
	return fmt.Sprintf("%s/%s-%s",
		now.UTC().Format("2006/01/02"),
		uuid.NewString(),
		sanitizeFileName(fileName),
	)
}

func sanitizeFileName(name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	b.Grow(len(base))
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := b.String()
	if strings.Trim(out, "_") == "" {
		return "file"
	}
	return out
}
