// Package phonetics provides the coarse sound-alike pre-check that lets
// scoring skip expensive string comparison for names that cannot plausibly
// refer to the same party. It only ever rejects clearly incompatible starting
// sounds; anything ambiguous passes through to full scoring.
package phonetics

import (
	"strings"
	"unicode"

	"github.com/antzucaro/matchr"
)

// equivalents maps word-initial letters to the letters they are routinely
// transliterated as. Catherine/Katherine and Sean/Shawn style pairs must
// never be rejected here.
var equivalents = map[byte]string{
	'c': "ks",
	'k': "c",
	's': "cz",
	'z': "s",
	'f': "p",
	'p': "f",
	'j': "g",
	'g': "j",
}

// Filter performs phonetic compatibility checks. The zero value filters
// nothing; construct with NewFilter.
type Filter struct {
	enabled bool
}

// NewFilter creates a Filter. Disabled filters report every pair as
// compatible, which turns the pre-check off without touching callers.
func NewFilter(enabled bool) *Filter {
	return &Filter{enabled: enabled}
}

// Enabled reports whether the filter rejects anything
func (f *Filter) Enabled() bool {
	return f.enabled
}

// Compatible reports whether two names could plausibly sound alike, judged
// from the first character of each first word. Inputs are expected to be
// normalized text. Empty input is always compatible so missing data never
// blocks a comparison.
func (f *Filter) Compatible(s1, s2 string) bool {
	if s1 == "" || s2 == "" {
		return true
	}

	w1 := firstWord(strings.ToLower(s1))
	w2 := firstWord(strings.ToLower(s2))
	if w1 == "" || w2 == "" {
		return true
	}

	c1 := w1[0]
	c2 := w2[0]
	if c1 == c2 {
		return true
	}
	if strings.IndexByte(equivalents[c1], c2) >= 0 {
		return true
	}
	if strings.IndexByte(equivalents[c2], c1) >= 0 {
		return true
	}
	// Initial vowels swap freely under transliteration (Osama/Usama,
	// Omar/Umar), so two vowel-initial names are never clearly incompatible.
	if isVowel(c1) && isVowel(c2) {
		return true
	}
	// Numeric tokens (hull numbers, registry digits) never phonetically
	// exclude each other.
	if unicode.IsDigit(rune(c1)) && unicode.IsDigit(rune(c2)) {
		return true
	}
	return false
}

func isVowel(c byte) bool {
	return strings.IndexByte("aeiou", c) >= 0
}

// ShouldFilter reports whether scoring should skip this pair outright.
// Empty strings are never filtered; similarity scoring handles them.
func (f *Filter) ShouldFilter(query, candidate string) bool {
	if !f.enabled {
		return false
	}
	if query == "" || candidate == "" {
		return false
	}
	return !f.Compatible(query, candidate)
}

// MatchesPhonetically reports whether two words share a Soundex code
func (f *Filter) MatchesPhonetically(w1, w2 string) bool {
	if w1 == "" || w2 == "" {
		return false
	}
	c1 := matchr.Soundex(w1)
	c2 := matchr.Soundex(w2)
	return c1 != "" && c1 == c2
}

// AnyTokenMatches reports whether any query token sounds like any candidate
// token
func (f *Filter) AnyTokenMatches(queryTokens, candidateTokens []string) bool {
	for _, qt := range queryTokens {
		for _, ct := range candidateTokens {
			if f.MatchesPhonetically(qt, ct) {
				return true
			}
		}
	}
	return false
}

func firstWord(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexByte(s, ' '); idx > 0 {
		return s[:idx]
	}
	return s
}
