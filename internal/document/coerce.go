package document

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	leadingInt   = regexp.MustCompile(`^[+-]?\d+`)
	leadingFloat = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)
)

// ParseLooseInt reads the longest integer prefix of s after leading
// whitespace, so "8080", " 42px" and "-3.9" give 8080, 42 and -3. ok is false
// when s has no numeric prefix or the prefix overflows an int; the returned
// value is then 0.
func ParseLooseInt(s string) (n int, ok bool) {
	m := leadingInt.FindString(strings.TrimLeft(s, " \t\r\n"))
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ParseLooseFloat reads the longest decimal prefix of s after leading
// whitespace ("1.5s" gives 1.5, ".5" gives 0.5, "2e3x" gives 2000). ok is
// false, and the value 0, when no number can be read.
func ParseLooseFloat(s string) (f float64, ok bool) {
	m := leadingFloat.FindString(strings.TrimLeft(s, " \t\r\n"))
	if m == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
