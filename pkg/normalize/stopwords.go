package normalize

import (
	"regexp"
	"strings"

	"github.com/bbalet/stopwords"
)

// numberPattern matches tokens that are numeric identifiers (registration
// numbers, IMO digits, dotted serials). Stopword lists are word lists, so
// these must bypass the filter untouched.
var numberPattern = regexp.MustCompile(`([\d\.\,\-]{1,}[\d]{1,})`)

// RemoveStopwords strips the stopwords of the given ISO 639-1 language from
// already-normalized text. It walks word by word instead of handing the whole
// string to the list filter so numeric tokens survive, and falls back to
// English for languages without a carried list.
func RemoveStopwords(input, language string) string {
	if input == "" {
		return ""
	}
	language = SupportedLanguage(language)

	fields := strings.Fields(strings.ToLower(input))
	kept := make([]string, 0, len(fields))
	for _, word := range fields {
		if numberPattern.MatchString(word) {
			kept = append(kept, word)
			continue
		}
		cleaned := strings.TrimSpace(stopwords.CleanString(word, language, false))
		if cleaned != "" {
			kept = append(kept, cleaned)
		}
	}

	// A name made entirely of stopwords still has to screen as itself.
	if len(kept) == 0 {
		return input
	}
	return strings.Join(kept, " ")
}
