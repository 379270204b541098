package utils

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// JoinKey joins blob key parts with forward slashes regardless of host OS.
// It strips leading/trailing slashes from each component and drops empty
// ones. Unlike a filesystem path the result has no leading slash.
// Pattern:
//   - No parts = ""
//   - One part = "{part}"
//   - More parts = "{part}/{part}/..." etc.
func JoinKey(parts ...string) string {
	cleaned := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.Trim(part, "/")
		if part != "" {
			cleaned = append(cleaned, part)
		}
	}

	return strings.Join(cleaned, "/")
}

// SanitizeName makes a display name safe to embed in a blob key. Path
// separators and control characters become underscores.
func SanitizeName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\':
			return '_'
		case unicode.IsControl(r):
			return '_'
		default:
			return r
		}
	}, strings.TrimSpace(name))

	if name == "" || name == "." || name == ".." {
		return "_"
	}
	return name
}

// StoragePath builds the blob key for an upload:
// "{owner}/{unix millis}_{id}_{sanitized name}". The id keeps two uploads of
// the same name in the same millisecond apart.
func StoragePath(owner, name, id string, at time.Time) string {
	return JoinKey(owner, fmt.Sprintf("%d_%s_%s", at.UnixMilli(), id, SanitizeName(name)))
}
