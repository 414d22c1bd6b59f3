// Package normalize folds entity text down to the canonical form every
// comparison runs against: lowercase, transliterated, accent-free, single
// spaced. List entries and queries must pass through the same pipeline or
// scores drift.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Config controls optional normalization behavior
type Config struct {
	// KeepStopwords skips language-aware stopword removal. Screening keeps
	// this off; list diagnostics turn it on to see the raw token stream.
	KeepStopwords bool
}

// DefaultConfig returns the normalization settings screening runs with
func DefaultConfig() Config {
	return Config{
		KeepStopwords: false,
	}
}

// TextNormalizer applies the canonical text pipeline. Construct once and
// share; it is stateless after construction.
type TextNormalizer struct {
	cfg Config
}

// NewTextNormalizer creates a TextNormalizer with the given config
func NewTextNormalizer(cfg Config) *TextNormalizer {
	return &TextNormalizer{cfg: cfg}
}

// wordBreakReplacer turns the separators that commonly glue name parts
// together into word boundaries before anything else runs, so "J.S.C." and
// "Al-Qaida" split the same way their spaced spellings do.
var wordBreakReplacer = strings.NewReplacer(".", " ", ",", " ", "-", " ")

// transliterations expands the Latin letters that survive accent stripping
// unchanged into the spellings sanctions lists romanize them to.
var transliterations = map[rune]string{
	'ð': "d",
	'þ': "th",
	'æ': "ae",
	'œ': "oe",
	'ø': "o",
	'ł': "l",
	'ß': "ss",
}

// Normalize runs the canonical text pipeline: break words, lowercase,
// transliterate, strip accents, collapse everything else to single spaces.
func (n *TextNormalizer) Normalize(input string) string {
	if input == "" {
		return ""
	}
	s := wordBreakReplacer.Replace(input)
	s = strings.ToLower(s)
	s = transliterate(s)
	s = stripDiacritics(s)
	return collapseSeparators(s)
}

// NormalizeName normalizes name text and removes stopwords for the given
// ISO 639-1 language, unless the normalizer is configured to keep them.
func (n *TextNormalizer) NormalizeName(input, language string) string {
	s := n.Normalize(input)
	if n.cfg.KeepStopwords {
		return s
	}
	return RemoveStopwords(s, language)
}

// NormalizeID strips everything but letters and digits and lowercases, so
// "J-123 456" and "j123456" compare equal.
func NormalizeID(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizePhone keeps only digits
func NormalizePhone(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeEmail lowercases and trims an email address
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeWebsite lowercases a website and drops the scheme and any
// trailing slash
func NormalizeWebsite(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	return strings.TrimSuffix(s, "/")
}

func transliterate(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if repl, ok := transliterations[r]; ok {
			b.WriteString(repl)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// stripDiacritics decomposes to NFD and drops combining marks, turning
// "Krëmlin" into "kremlin" without touching base letters.
func stripDiacritics(s string) string {
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// collapseSeparators replaces every run of non-alphanumeric runes with a
// single space and trims the ends.
func collapseSeparators(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pendingSpace := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSpace && b.Len() > 0 {
				b.WriteRune(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
		} else {
			pendingSpace = true
		}
	}
	return b.String()
}
