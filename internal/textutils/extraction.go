// Package textutils pulls structured fragments out of free-form model output.
package textutils

import (
	"regexp"
	"strings"
)

var (
	firstNumber   = regexp.MustCompile(`\d+(?:\.\d+)?`)
	leadingNumber = regexp.MustCompile(`^[+-]?(?:\d+(?:\.\d*)?|\.\d+)`)
)

// FirstJSONObject returns the span from the first '{' to the last '}' in s.
// Model replies often wrap the object in prose or code fences; everything
// outside the span is ignored. ok is false when no such span exists.
func FirstJSONObject(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return "", false
	}
	return s[start : end+1], true
}

// FirstNumber returns the first unsigned decimal number in s.
func FirstNumber(s string) (string, bool) {
	m := firstNumber.FindString(s)
	return m, m != ""
}

// LeadingNumber returns the numeric prefix of s after trimming spaces, the
// way a lenient float parser reads "12.50 USD" as 12.50.
func LeadingNumber(s string) (string, bool) {
	m := leadingNumber.FindString(strings.TrimSpace(s))
	if m == "" || m == "+" || m == "-" {
		return "", false
	}
	return m, true
}
