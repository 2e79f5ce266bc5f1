// Package normalize cleans raw biography text before extraction. All
// functions are total: any input, including the empty string, yields a
// usable string.
package normalize

import (
	"regexp"
	"strings"
)

// The source spreadsheets come out of a document conversion that swaps
// ASCII periods for full-width ones (。) inside emails and URLs. The
// patterns below undo that damage without touching prose punctuation.
var (
	emailPattern = regexp.MustCompile(`([a-zA-Z0-9_.+\-]+)@([a-zA-Z0-9\-]+)。([a-zA-Z0-9\-.。]+)`)
	urlPattern   = regexp.MustCompile(`(https?://[^\s。]+)。([^\s，。；]+)`)

	// Common TLD fragments that show up with a trailing full-width period.
	tldDomains = []string{"com", "cn", "org", "net", "edu", "gov", "io", "github"}

	// Birth year / gender / email boilerplate stripped from composite
	// row text before extraction.
	boilerplatePattern = regexp.MustCompile(`\d{4}年|\d月生|邮箱[：:].*?[，。]`)
	genderPattern      = regexp.MustCompile(`[，,]\s*(男|女)\s*[，,]`)
)

// FixPunctuation repairs full-width periods inside emails, URLs and
// common domain suffixes. Safe to call repeatedly.
func FixPunctuation(s string) string {
	if s == "" {
		return ""
	}
	for emailPattern.MatchString(s) {
		s = emailPattern.ReplaceAllString(s, "$1@$2.$3")
	}
	for urlPattern.MatchString(s) {
		s = urlPattern.ReplaceAllString(s, "$1.$2")
	}
	for _, d := range tldDomains {
		s = strings.ReplaceAll(s, d+"。", d+".")
	}
	return s
}

// StripBoilerplate removes birth-year, gender and email fragments that
// carry no extractable facts.
func StripBoilerplate(s string) string {
	s = boilerplatePattern.ReplaceAllString(s, "")
	s = genderPattern.ReplaceAllString(s, "，")
	return s
}

// CleanName trims a subject name and removes inner ASCII and full-width
// spaces.
func CleanName(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "　", "")
	return s
}

// Truncate caps s at max runes. A non-positive max leaves s uncapped.
func Truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// Clean applies the full normalization pass: punctuation repair,
// boilerplate stripping and a length cap.
func Clean(s string, maxLen int) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	s = FixPunctuation(s)
	s = StripBoilerplate(s)
	return Truncate(strings.TrimSpace(s), maxLen)
}
