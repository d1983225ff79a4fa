// Package crs normalizes coordinate reference system codes and holds the
// bundled catalog of systems offered to project editors.
package crs

import (
	"math"
	"strconv"
	"strings"
)

// DefaultAuthority is assumed for bare numeric codes.
const DefaultAuthority = "EPSG"

// NormalizeCode extracts the numeric code from v. It accepts integers,
// integral floats, "EPSG:2229" (any authority, case-insensitive) and "2229".
func NormalizeCode(v any) (int, bool) {
	switch c := v.(type) {
	case int:
		return positive(int64(c))
	case int32:
		return positive(int64(c))
	case int64:
		return positive(c)
	case float64:
		if math.IsNaN(c) || math.IsInf(c, 0) || c != math.Trunc(c) || c > math.MaxInt32 {
			return 0, false
		}
		return positive(int64(c))
	case string:
		return parseCode(c)
	}
	return 0, false
}

// SplitCode separates "EPSG:2229" into its authority and number. Bare numbers
// get the default authority.
func SplitCode(s string) (string, int, bool) {
	s = strings.TrimSpace(s)
	authority := DefaultAuthority
	if i := strings.IndexByte(s, ':'); i >= 0 {
		authority = strings.ToUpper(strings.TrimSpace(s[:i]))
		s = strings.TrimSpace(s[i+1:])
		if authority == "" {
			return "", 0, false
		}
	}
	n, ok := parseDigits(s)
	if !ok {
		return "", 0, false
	}
	return authority, n, true
}

// FormatCode renders an authority-qualified code such as "EPSG:2229".
func FormatCode(authority string, code int) string {
	if authority == "" {
		authority = DefaultAuthority
	}
	return strings.ToUpper(authority) + ":" + strconv.Itoa(code)
}

// Canonical rewrites any accepted spelling of a code into FormatCode form.
func Canonical(s string) (string, bool) {
	authority, n, ok := SplitCode(s)
	if !ok {
		return "", false
	}
	return FormatCode(authority, n), true
}

func parseCode(s string) (int, bool) {
	_, n, ok := SplitCode(s)
	return n, ok
}

func parseDigits(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return positive(int64(n))
}

func positive(n int64) (int, bool) {
	if n <= 0 || n > math.MaxInt32 {
		return 0, false
	}
	return int(n), true
}
