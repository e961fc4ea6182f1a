package miscutils

import (
	"unicode/utf8"
)

// Truncate shortens the given string to at most limit characters.
// It reports whether the value was shortened.
func Truncate(value string, limit int) (string, bool) {
	if utf8.RuneCountInString(value) <= limit {
		return value, false
	}
	return string([]rune(value)[:limit]), true
}
