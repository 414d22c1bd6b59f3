package normalize

import (
	"strings"

	"github.com/abadojack/whatlanggo"
)

// supportedLanguages are the ISO 639-1 codes we carry stopword lists for.
// Everything else screens as English.
var supportedLanguages = map[string]bool{
	"en": true,
	"es": true,
	"fr": true,
	"de": true,
	"ru": true,
	"ar": true,
	"zh": true,
}

// countryLanguages maps the countries that dominate sanctions lists to the
// language their entries are most often transliterated from. Used as a
// detection hint when an entity carries an address.
var countryLanguages = map[string]string{
	"russia":               "ru",
	"russian federation":   "ru",
	"belarus":              "ru",
	"france":               "fr",
	"germany":              "de",
	"austria":              "de",
	"switzerland":          "de",
	"spain":                "es",
	"mexico":               "es",
	"cuba":                 "es",
	"venezuela":            "es",
	"colombia":             "es",
	"nicaragua":            "es",
	"china":                "zh",
	"syria":                "ar",
	"iraq":                 "ar",
	"libya":                "ar",
	"yemen":                "ar",
	"lebanon":              "ar",
	"egypt":                "ar",
	"sudan":                "ar",
	"saudi arabia":         "ar",
	"united arab emirates": "ar",
}

// SupportedLanguage clamps a language code to the supported set, defaulting
// to English
func SupportedLanguage(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if supportedLanguages[code] {
		return code
	}
	return "en"
}

// LanguageHintForCountry returns the detection hint for an address country,
// or empty when the country implies nothing useful
func LanguageHintForCountry(country string) string {
	return countryLanguages[strings.ToLower(strings.TrimSpace(country))]
}

// DetectLanguage decides which stopword list a piece of text gets. An
// explicit hint wins outright. Otherwise statistical detection runs, gated on
// its own reliability signal, because short Latin-alphabet names routinely
// misdetect. Unreliable or unsupported results fall back to English.
func DetectLanguage(text, hint string) string {
	if hint != "" {
		return SupportedLanguage(hint)
	}
	if strings.TrimSpace(text) == "" {
		return "en"
	}

	info := whatlanggo.Detect(text)
	if !info.IsReliable() {
		return "en"
	}
	code := info.Lang.Iso6391()
	if !supportedLanguages[code] {
		return "en"
	}
	return code
}
