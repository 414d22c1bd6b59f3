package normalize

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	"github.com/Ramsey-B/briar/pkg/models"
	"github.com/Ramsey-B/briar/pkg/similarity"
)

// companySuffixes are the legal-form tokens trimmed from the end of business
// and organization names. Trailing only: a legal form embedded mid-name is
// part of the name.
var companySuffixes = map[string]bool{
	"incorporated": true,
	"corporation":  true,
	"limited":      true,
	"company":      true,
	"inc":          true,
	"corp":         true,
	"llc":          true,
	"llp":          true,
	"ltd":          true,
	"ltda":         true,
	"co":           true,
	"plc":          true,
	"pte":          true,
	"sa":           true,
	"srl":          true,
	"sarl":         true,
	"gmbh":         true,
	"ag":           true,
	"bv":           true,
	"nv":           true,
}

// PrepareEntity computes and caches every derived field scoring reads, so the
// work happens once per entity instead of once per comparison. Already
// prepared entities return untouched; replacing the cache means building a
// fresh Entity, never editing Prepared in place.
func (n *TextNormalizer) PrepareEntity(e *models.Entity) *models.Entity {
	if e == nil || e.IsPrepared() {
		return e
	}

	language := DetectLanguage(detectionText(e), languageHint(e))

	name := n.prepareName(e.Name, e.EntityType, language)
	tokens := strings.Fields(name)

	altNames := make([]string, 0, len(e.AltNames))
	altTokens := make([][]string, 0, len(e.AltNames))
	for _, alt := range e.AltNames {
		cleaned := n.prepareName(alt, e.EntityType, language)
		if cleaned == "" {
			continue
		}
		altNames = append(altNames, cleaned)
		altTokens = append(altTokens, strings.Fields(cleaned))
	}

	e.Contact = normalizeContact(e.Contact)

	e.Prepared = &models.PreparedFields{
		Name:             name,
		AltNames:         altNames,
		NameTokens:       tokens,
		AltNameTokens:    altTokens,
		NameCombinations: similarity.GenerateCombinations(tokens),
		Language:         language,
		Fingerprint:      Fingerprint(e),
	}
	return e
}

// prepareName runs the full name pipeline for one name string
func (n *TextNormalizer) prepareName(name string, entityType models.EntityType, language string) string {
	if entityType == models.EntityTypePerson {
		name = ReorderListedName(name)
	}
	// Apostrophes join name parts rather than separating words.
	name = strings.ReplaceAll(name, "'", "")
	name = n.NormalizeName(name, language)
	if entityType == models.EntityTypeBusiness || entityType == models.EntityTypeOrganization {
		name = TrimCompanySuffixes(name)
	}
	return name
}

// ReorderListedName rewrites the "LAST, FIRST MIDDLE" convention sanctions
// lists use for individuals into natural order. Names without a comma pass
// through unchanged.
func ReorderListedName(name string) string {
	idx := strings.Index(name, ",")
	if idx <= 0 {
		return name
	}
	last := strings.TrimSpace(name[:idx])
	rest := strings.TrimSpace(name[idx+1:])
	if rest == "" {
		return name
	}
	return rest + " " + last
}

// TrimCompanySuffixes drops trailing legal-form tokens from a normalized
// company name, repeating for stacked forms ("x holding co ltd"). At least
// one token always remains.
func TrimCompanySuffixes(name string) string {
	tokens := strings.Fields(name)
	for len(tokens) > 1 && companySuffixes[tokens[len(tokens)-1]] {
		tokens = tokens[:len(tokens)-1]
	}
	return strings.Join(tokens, " ")
}

// Fingerprint hashes the identity fields of an entity into a stable hex
// digest. Ingestion compares fingerprints to skip rewriting entries whose
// source data has not materially changed. List fields are sorted first so
// ordering noise in the feed does not churn the hash.
func Fingerprint(e *models.Entity) string {
	parts := []string{
		string(e.EntityType),
		string(e.Source),
		strings.ToLower(strings.TrimSpace(e.SourceID)),
		strings.ToLower(strings.TrimSpace(e.Name)),
	}

	parts = append(parts, sortedLower(e.AltNames)...)

	ids := make([]string, 0, len(e.GovernmentIDs))
	for _, id := range e.GovernmentIDs {
		ids = append(ids, string(id.Type)+":"+strings.ToLower(id.Country)+":"+NormalizeID(id.Identifier))
	}
	sort.Strings(ids)
	parts = append(parts, ids...)

	cryptos := make([]string, 0, len(e.CryptoAddresses))
	for _, c := range e.CryptoAddresses {
		cryptos = append(cryptos, strings.ToLower(c.Currency)+":"+strings.ToLower(c.Address))
	}
	sort.Strings(cryptos)
	parts = append(parts, cryptos...)

	addrs := make([]string, 0, len(e.Addresses))
	for _, a := range e.Addresses {
		addrs = append(addrs, strings.ToLower(strings.Join([]string{
			a.Line1, a.Line2, a.City, a.State, a.PostalCode, a.Country,
		}, ",")))
	}
	sort.Strings(addrs)
	parts = append(parts, addrs...)

	if e.SanctionsInfo != nil {
		parts = append(parts, sortedLower(e.SanctionsInfo.Programs)...)
	}

	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

// detectionText returns the longest text we hold for language detection.
// Bare names are usually too short to detect reliably; list remarks help.
func detectionText(e *models.Entity) string {
	if e.SanctionsInfo != nil && e.SanctionsInfo.Description != "" {
		return e.Name + " " + e.SanctionsInfo.Description
	}
	return e.Name
}

// languageHint derives a detection hint from the entity's first address
// country, when one is present
func languageHint(e *models.Entity) string {
	for _, addr := range e.Addresses {
		if hint := LanguageHintForCountry(addr.Country); hint != "" {
			return hint
		}
	}
	return ""
}

func normalizeContact(c models.ContactInfo) models.ContactInfo {
	return models.ContactInfo{
		EmailAddresses: applyNonEmpty(c.EmailAddresses, NormalizeEmail),
		PhoneNumbers:   applyNonEmpty(c.PhoneNumbers, NormalizePhone),
		FaxNumbers:     applyNonEmpty(c.FaxNumbers, NormalizePhone),
		Websites:       applyNonEmpty(c.Websites, NormalizeWebsite),
	}
}

func applyNonEmpty(values []string, fn func(string) string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if cleaned := fn(v); cleaned != "" {
			out = append(out, cleaned)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func sortedLower(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}
