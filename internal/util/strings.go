package util

import "strings"

// DefaultString returns the fallback value if v is empty or consists entirely
// of whitespace; otherwise it returns v unchanged.
//
// Examples:
//
//	DefaultString("deploy", "ubuntu") → "deploy"
//	DefaultString("",       "ubuntu") → "ubuntu"
//	DefaultString("  ",     "ubuntu") → "ubuntu"
func DefaultString(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

// EmptyDash returns "-" if s is blank; otherwise s unchanged. Used by the
// describe output so a missing user or key file is still visible.
func EmptyDash(s string) string {
	return DefaultString(s, "-")
}

// HasAnySuffix reports whether name ends in one of the given suffixes.
// Comparison is case-insensitive so "KEY.PEM" matches ".pem".
func HasAnySuffix(name string, suffixes []string) bool {
	lower := strings.ToLower(name)
	for _, s := range suffixes {
		if s == "" {
			continue
		}
		if strings.HasSuffix(lower, strings.ToLower(s)) {
			return true
		}
	}
	return false
}
