package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTextNormalizer_Normalize(t *testing.T) {
	n := NewTextNormalizer(DefaultConfig())

	t.Run("lowercases and collapses separators", func(t *testing.T) {
		assert.Equal(t, "acme corp", n.Normalize("  ACME    Corp  "))
		assert.Equal(t, "acme corp", n.Normalize("(ACME) Corp!"))
	})

	t.Run("dots commas and dashes become word breaks", func(t *testing.T) {
		assert.Equal(t, "j s c argument", n.Normalize("J.S.C. Argument"))
		assert.Equal(t, "al qaida", n.Normalize("Al-Qaida"))
		assert.Equal(t, "smith john", n.Normalize("Smith, John"))
	})

	t.Run("strips diacritics", func(t *testing.T) {
		assert.Equal(t, "muller", n.Normalize("Müller"))
		assert.Equal(t, "kremlin", n.Normalize("Krëmlín"))
		assert.Equal(t, "jose garcia", n.Normalize("José García"))
	})

	t.Run("transliterates special letters", func(t *testing.T) {
		assert.Equal(t, "moller", n.Normalize("Møller"))
		assert.Equal(t, "lukasz", n.Normalize("Łukasz"))
		assert.Equal(t, "strasse", n.Normalize("Straße"))
		assert.Equal(t, "aegis", n.Normalize("Ægis"))
		assert.Equal(t, "thor", n.Normalize("Þor"))
		assert.Equal(t, "gudmundur", n.Normalize("Guðmundur"))
	})

	t.Run("idempotent", func(t *testing.T) {
		inputs := []string{"José María Aznar-López", "J.S.C. ARGUMENT", "Müller & Söhne GmbH"}
		for _, input := range inputs {
			once := n.Normalize(input)
			assert.Equal(t, once, n.Normalize(once))
		}
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Equal(t, "", n.Normalize(""))
		assert.Equal(t, "", n.Normalize("  ...  "))
	})
}

func TestNormalizeID(t *testing.T) {
	t.Run("strips separators", func(t *testing.T) {
		assert.Equal(t, NormalizeID("522083095"), NormalizeID("52-2083095"))
		assert.Equal(t, "j123456", NormalizeID("J-123 456"))
	})

	t.Run("lowercases", func(t *testing.T) {
		assert.Equal(t, "ab12cd34", NormalizeID("AB12CD34"))
	})

	t.Run("empty and symbol only input", func(t *testing.T) {
		assert.Equal(t, "", NormalizeID(""))
		assert.Equal(t, "", NormalizeID("---"))
	})
}

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "15551234567", NormalizePhone("+1 (555) 123-4567"))
	assert.Equal(t, "", NormalizePhone("no digits here"))
	assert.Equal(t, "", NormalizePhone(""))
}

func TestNormalizeWebsite(t *testing.T) {
	assert.Equal(t, "example.com", NormalizeWebsite("https://Example.com/"))
	assert.Equal(t, "example.com/path", NormalizeWebsite("http://example.com/path"))
	assert.Equal(t, "example.com", NormalizeWebsite("example.com"))
}

func TestRemoveStopwords(t *testing.T) {
	t.Run("removes english stopwords", func(t *testing.T) {
		assert.Equal(t, "bank america", RemoveStopwords("the bank of america", "en"))
	})

	t.Run("numeric tokens survive verbatim", func(t *testing.T) {
		assert.Equal(t, "52-2083095 fund", RemoveStopwords("the 52-2083095 fund", "en"))
		assert.Equal(t, "11420 corporation", RemoveStopwords("the 11420 corporation", "en"))
	})

	t.Run("russian stopwords with russian list", func(t *testing.T) {
		assert.NotContains(t, RemoveStopwords("банк и траст", "ru"), " и ")
	})

	t.Run("unsupported language falls back to english", func(t *testing.T) {
		assert.Equal(t, "bank america", RemoveStopwords("the bank of america", "pt"))
	})

	t.Run("all stopword input returns input unchanged", func(t *testing.T) {
		assert.Equal(t, "the of", RemoveStopwords("the of", "en"))
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Equal(t, "", RemoveStopwords("", "en"))
	})
}

func TestNormalizeName_KeepStopwords(t *testing.T) {
	keep := NewTextNormalizer(Config{KeepStopwords: true})
	strip := NewTextNormalizer(DefaultConfig())

	assert.Equal(t, "the bank of america", keep.NormalizeName("The Bank of America", "en"))
	assert.Equal(t, "bank america", strip.NormalizeName("The Bank of America", "en"))
}

func TestDetectLanguage(t *testing.T) {
	t.Run("explicit hint wins", func(t *testing.T) {
		assert.Equal(t, "ru", DetectLanguage("any text at all", "ru"))
		assert.Equal(t, "ar", DetectLanguage("any text at all", "ar"))
	})

	t.Run("unsupported hint clamps to english", func(t *testing.T) {
		assert.Equal(t, "en", DetectLanguage("any text at all", "xx"))
	})

	t.Run("cyrillic text detects as russian", func(t *testing.T) {
		assert.Equal(t, "ru", DetectLanguage("Владимир Владимирович Путин президент Российской Федерации", ""))
	})

	t.Run("short latin names fall back to english", func(t *testing.T) {
		assert.Equal(t, "en", DetectLanguage("", ""))
	})
}

func TestSupportedLanguage(t *testing.T) {
	assert.Equal(t, "en", SupportedLanguage("EN"))
	assert.Equal(t, "ru", SupportedLanguage(" ru "))
	assert.Equal(t, "en", SupportedLanguage("pt"))
	assert.Equal(t, "en", SupportedLanguage(""))
}

func TestLanguageHintForCountry(t *testing.T) {
	assert.Equal(t, "ru", LanguageHintForCountry("Russia"))
	assert.Equal(t, "ru", LanguageHintForCountry("RUSSIAN FEDERATION"))
	assert.Equal(t, "ar", LanguageHintForCountry("Syria"))
	assert.Equal(t, "", LanguageHintForCountry("United States"))
	assert.Equal(t, "", LanguageHintForCountry(""))
}
