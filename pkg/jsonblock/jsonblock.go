// Package jsonblock rescues a JSON object out of text that surrounds it
// with prose, markdown fences or other noise, as language models tend to
// do even when told not to.
package jsonblock

import (
	"errors"
	"strings"
)

// ErrNoObject is returned when no balanced {...} block is present.
var ErrNoObject = errors.New("no JSON object found")

// Extract returns the first balanced {...} block in s. Braces inside
// string literals are ignored. The returned slice still needs to pass
// json.Unmarshal; Extract only locates the candidate block.
func Extract(s string) (string, error) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", ErrNoObject
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], nil
			}
		}
	}
	return "", ErrNoObject
}
