package application

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NameStrategy derives the stored file name for an upload.
type NameStrategy interface {
	FileName(id int64, ext string, uploadedAt time.Time) string
}

// LegacyNaming produces {millis}{id}.{ext}. Two uploads for the same wizard
// within one millisecond collide.
type LegacyNaming struct{}

func (LegacyNaming) FileName(id int64, ext string, uploadedAt time.Time) string {
	return fmt.Sprintf("%d%d.%s", uploadedAt.UnixMilli(), id, ext)
}

// TokenNaming appends a UUIDv7 to the legacy prefix, so names never collide.
type TokenNaming struct{}

func (TokenNaming) FileName(id int64, ext string, uploadedAt time.Time) string {
	return fmt.Sprintf("%d%d-%s.%s", uploadedAt.UnixMilli(), id, newToken(), ext)
}

func newToken() string {
	token, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return token.String()
}

// NamingByName resolves a configured strategy name.
func NamingByName(name string) (NameStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "token":
		return TokenNaming{}, nil
	case "legacy":
		return LegacyNaming{}, nil
	default:
		return nil, fmt.Errorf("unknown naming strategy %q", name)
	}
}

// extensionOf returns the lowercased extension of filename without the dot,
// or fallback when there is none.
func extensionOf(filename, fallback string) string {
	ext := strings.TrimPrefix(filepath.Ext(filepath.Base(filename)), ".")
	if ext == "" || !isSafeExtension(ext) {
		return fallback
	}
	return strings.ToLower(ext)
}

func isSafeExtension(ext string) bool {
	for _, r := range ext {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}
