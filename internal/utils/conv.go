package utils

import (
	"strconv"
)

// StringToInt converts string to int, returns 0 if error
func StringToInt(s string) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return i
}

// PositiveInt parses s as a positive integer, falling back to def when s is
// empty. ok is false when s is present but not a positive integer.
func PositiveInt(s string, def int) (n int, ok bool) {
	if s == "" {
		return def, true
	}
	n = StringToInt(s)
	if n <= 0 {
		return 0, false
	}
	return n, true
}
