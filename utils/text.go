package utils

import "unicode/utf8"

// TruncateText shortens s to at most limit bytes without splitting a rune,
// so truncated text stays valid UTF-8 for downstream services.
func TruncateText(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}
