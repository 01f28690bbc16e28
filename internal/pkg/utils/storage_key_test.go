package utils

import (
	"strings"
	"testing"
	"time"
)

func TestGenerateStorageKey_DatePartition(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	key := GenerateStorageKey("photo.jpg", now)

	if !strings.HasPrefix(key, "2026/08/31/") {
		t.Errorf("key = %q, want 2026/08/31/ prefix", key)
	}
	if !strings.HasSuffix(key, "-photo.jpg") {
		t.Errorf("key = %q, want -photo.jpg suffix", key)
	}

	// Two keys for the same name must not collide.
	if other := GenerateStorageKey("photo.jpg", now); other == key {
		t.Error("duplicate keys generated")
	}
}

func TestGenerateStorageKey_Sanitizes(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		suffix string
	}{
		{"../../etc/passwd", "-passwd"},
		{"my report (v2).pdf", "-my_report__v2_.pdf"},
		{"C:\\Users\\me\\file.txt", "-file.txt"},
		{"???", "-file"},
	}
	for _, tt := range tests {
		key := GenerateStorageKey(tt.name, now)
		if !strings.HasSuffix(key, tt.suffix) {
			t.Errorf("GenerateStorageKey(%q) = %q, want suffix %q", tt.name, key, tt.suffix)
		}
		if strings.Contains(strings.TrimPrefix(key, "2026/08/31/"), "/") {
			t.Errorf("key %q leaks path separators past the date prefix", key)
		}
	}
}
