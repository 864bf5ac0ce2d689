// Package util provides small string helpers shared across the harness.
package util

import (
	"strings"
	"time"
)

// TimestampLayout is the layout used in generated file names.
const TimestampLayout = "20060102_150405"

// TrimQuotes removes leading and trailing double quotes from a string.
func TrimQuotes(s string) string {
	return strings.Trim(s, `"`)
}

// SanitizeFilename replaces every byte outside [A-Za-z0-9_.-] with '_'.
// Multi-byte runes become one '_' per byte.
func SanitizeFilename(s string) string {
	b := []byte(s)
	for i, c := range b {
		if !filenameSafe(c) {
			b[i] = '_'
		}
	}
	return string(b)
}

func filenameSafe(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '_', c == '.', c == '-':
		return true
	}
	return false
}

// FileTimestamp formats t in UTC for use in file names.
func FileTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
