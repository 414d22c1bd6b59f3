// Package merging folds duplicate list entries into single screenable records.
// The same real-world subject is frequently listed by several authorities at
// once (OFAC, EU, UK); screening one merged record instead of three near-copies
// keeps result lists clean and lets evidence from every list back a single
// score.
package merging

import (
	"sort"
	"strings"
	"time"

	"github.com/Ramsey-B/briar/pkg/models"
	"github.com/Ramsey-B/briar/pkg/normalize"
)

// Merger groups entities that describe the same subject and combines each
// group into one record
type Merger struct {
	normalizer *normalize.TextNormalizer
}

// NewMerger creates a merger. The normalizer derives the merge keys, so it
// must be configured the same way as the one used to prepare indexed entities.
func NewMerger(normalizer *normalize.TextNormalizer) *Merger {
	return &Merger{normalizer: normalizer}
}

// MergeKey identifies an entity for deduplication across source lists. Two
// entries belong to the same subject when their normalized primary names and
// entity types agree: "CRUZ, Juan" on OFAC and "Juan Cruz" on the EU list key
// identically because normalization reorders and folds both to "juan cruz".
// Type is part of the key; a person and a business sharing a name stay apart.
func (m *Merger) MergeKey(e *models.Entity) string {
	if !e.IsPrepared() {
		scratch := *e
		scratch.Prepared = nil
		e = m.normalizer.PrepareEntity(&scratch)
	}
	return e.Prepared.Name + "|" + string(e.EntityType)
}

// Merge deduplicates a list of entities, combining every group that shares a
// merge key into a single record. Input entities are never modified; merged
// groups produce fresh entities, singletons pass through as-is. Order follows
// first appearance of each key.
func (m *Merger) Merge(entities []*models.Entity) []*models.Entity {
	if len(entities) == 0 {
		return nil
	}

	keys := make([]string, 0, len(entities))
	groups := make(map[string][]*models.Entity, len(entities))
	for _, e := range entities {
		if e == nil {
			continue
		}
		key := m.MergeKey(e)
		if _, ok := groups[key]; !ok {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], e)
	}

	merged := make([]*models.Entity, 0, len(keys))
	for _, key := range keys {
		merged = append(merged, m.mergeGroup(groups[key]))
	}
	return merged
}

// sourceRank orders lists for scalar conflicts; the lowest rank in a group
// supplies the primary name, source and source id of the merged record.
func sourceRank(source models.SourceList) int {
	switch source {
	case models.SourceUSOFAC:
		return 0
	case models.SourceEUCSL:
		return 1
	case models.SourceUKCSL:
		return 2
	default:
		return 3
	}
}

func (m *Merger) mergeGroup(group []*models.Entity) *models.Entity {
	if len(group) == 1 {
		return group[0]
	}

	sort.SliceStable(group, func(i, j int) bool {
		return sourceRank(group[i].Source) < sourceRank(group[j].Source)
	})

	out := *group[0]
	for _, next := range group[1:] {
		mergeInto(&out, next)
	}

	// Derived fields describe the pre-merge record; recompute them.
	out.Prepared = nil
	return m.normalizer.PrepareEntity(&out)
}

// mergeInto folds src into dst. dst keeps its scalars; src fills gaps and
// contributes its collections. src's primary name becomes an alternate name
// of the merged record when it spells the subject differently.
func mergeInto(dst *models.Entity, src *models.Entity) {
	dst.SourceID = firstNonEmpty(dst.SourceID, src.SourceID)

	srcAlts := src.AltNames
	srcName := strings.TrimSpace(src.Name)
	if srcName != "" && !strings.EqualFold(srcName, strings.TrimSpace(dst.Name)) {
		srcAlts = append([]string{srcName}, src.AltNames...)
	}
	dst.AltNames = mergeStrings(dst.AltNames, srcAlts)

	dst.Addresses = mergeAddresses(dst.Addresses, src.Addresses)
	dst.GovernmentIDs = mergeGovernmentIDs(dst.GovernmentIDs, src.GovernmentIDs)
	dst.CryptoAddresses = mergeCryptoAddresses(dst.CryptoAddresses, src.CryptoAddresses)
	dst.Affiliations = mergeAffiliations(dst.Affiliations, src.Affiliations)
	dst.HistoricalInfo = mergeHistoricalInfo(dst.HistoricalInfo, src.HistoricalInfo)
	dst.Contact = mergeContact(dst.Contact, src.Contact)
	dst.SanctionsInfo = mergeSanctions(dst.SanctionsInfo, src.SanctionsInfo)
	mergeKind(dst, src)
}

func mergeKind(dst, src *models.Entity) {
	switch {
	case src.Person != nil:
		if dst.Person == nil {
			p := *src.Person
			dst.Person = &p
			return
		}
		p := *dst.Person
		p.Gender = firstNonEmpty(p.Gender, src.Person.Gender)
		p.Titles = mergeStrings(p.Titles, src.Person.Titles)
		p.BirthDate = firstDate(p.BirthDate, src.Person.BirthDate)
		p.DeathDate = firstDate(p.DeathDate, src.Person.DeathDate)
		dst.Person = &p
	case src.Business != nil:
		if dst.Business == nil {
			b := *src.Business
			dst.Business = &b
			return
		}
		b := *dst.Business
		b.Created = firstDate(b.Created, src.Business.Created)
		b.Dissolved = firstDate(b.Dissolved, src.Business.Dissolved)
		dst.Business = &b
	case src.Organization != nil:
		if dst.Organization == nil {
			o := *src.Organization
			dst.Organization = &o
			return
		}
		o := *dst.Organization
		o.Created = firstDate(o.Created, src.Organization.Created)
		o.Dissolved = firstDate(o.Dissolved, src.Organization.Dissolved)
		dst.Organization = &o
	case src.Vessel != nil:
		if dst.Vessel == nil {
			v := *src.Vessel
			dst.Vessel = &v
			return
		}
		v := *dst.Vessel
		v.IMONumber = firstNonEmpty(v.IMONumber, src.Vessel.IMONumber)
		v.Type = firstNonEmpty(v.Type, src.Vessel.Type)
		v.Flag = firstNonEmpty(v.Flag, src.Vessel.Flag)
		v.Built = firstDate(v.Built, src.Vessel.Built)
		v.Model = firstNonEmpty(v.Model, src.Vessel.Model)
		v.MMSI = firstNonEmpty(v.MMSI, src.Vessel.MMSI)
		v.CallSign = firstNonEmpty(v.CallSign, src.Vessel.CallSign)
		v.Owner = firstNonEmpty(v.Owner, src.Vessel.Owner)
		if v.Tonnage == 0 {
			v.Tonnage = src.Vessel.Tonnage
		}
		dst.Vessel = &v
	case src.Aircraft != nil:
		if dst.Aircraft == nil {
			a := *src.Aircraft
			dst.Aircraft = &a
			return
		}
		a := *dst.Aircraft
		a.Type = firstNonEmpty(a.Type, src.Aircraft.Type)
		a.Flag = firstNonEmpty(a.Flag, src.Aircraft.Flag)
		a.Built = firstDate(a.Built, src.Aircraft.Built)
		a.Model = firstNonEmpty(a.Model, src.Aircraft.Model)
		a.SerialNumber = firstNonEmpty(a.SerialNumber, src.Aircraft.SerialNumber)
		a.ICAOCode = firstNonEmpty(a.ICAOCode, src.Aircraft.ICAOCode)
		dst.Aircraft = &a
	}
}

// mergeStrings unions string lists, dropping blanks and case-insensitive
// duplicates. First spelling wins; order follows first appearance.
func mergeStrings(lists ...[]string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, list := range lists {
		for _, v := range list {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			key := strings.ToLower(v)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, v)
		}
	}
	return out
}

func mergeAddresses(lists ...[]models.Address) []models.Address {
	var out []models.Address
	seen := make(map[string]bool)
	for _, list := range lists {
		for _, a := range list {
			if a.IsEmpty() {
				continue
			}
			key := strings.ToLower(strings.Join([]string{
				strings.TrimSpace(a.Line1),
				strings.TrimSpace(a.Line2),
				strings.TrimSpace(a.City),
				strings.TrimSpace(a.State),
				strings.TrimSpace(a.PostalCode),
				strings.TrimSpace(a.Country),
			}, "|"))
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, a)
		}
	}
	return out
}

// mergeGovernmentIDs dedupes on type, country and the identifier with
// formatting stripped, so "J-123456" and "J123456" collapse to one entry.
func mergeGovernmentIDs(lists ...[]models.GovernmentID) []models.GovernmentID {
	var out []models.GovernmentID
	seen := make(map[string]bool)
	for _, list := range lists {
		for _, id := range list {
			normalized := normalize.NormalizeID(id.Identifier)
			if normalized == "" {
				continue
			}
			key := string(id.Type) + "|" + strings.ToLower(strings.TrimSpace(id.Country)) + "|" + normalized
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, id)
		}
	}
	return out
}

// mergeCryptoAddresses keys case-sensitively: checksummed wallet addresses
// legitimately differ by case alone.
func mergeCryptoAddresses(lists ...[]models.CryptoAddress) []models.CryptoAddress {
	var out []models.CryptoAddress
	seen := make(map[string]bool)
	for _, list := range lists {
		for _, c := range list {
			if strings.TrimSpace(c.Address) == "" {
				continue
			}
			key := c.Currency + "|" + c.Address
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, c)
		}
	}
	return out
}

func mergeAffiliations(lists ...[]models.Affiliation) []models.Affiliation {
	var out []models.Affiliation
	seen := make(map[string]bool)
	for _, list := range lists {
		for _, a := range list {
			name := strings.TrimSpace(a.EntityName)
			if name == "" {
				continue
			}
			key := strings.ToLower(name) + "|" + strings.ToLower(string(a.Type))
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, a)
		}
	}
	return out
}

func mergeHistoricalInfo(lists ...[]models.HistoricalInfo) []models.HistoricalInfo {
	var out []models.HistoricalInfo
	seen := make(map[string]bool)
	for _, list := range lists {
		for _, h := range list {
			value := strings.TrimSpace(h.Value)
			if value == "" {
				continue
			}
			key := strings.ToLower(string(h.Type)) + "|" + strings.ToLower(value)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, h)
		}
	}
	return out
}

func mergeContact(a, b models.ContactInfo) models.ContactInfo {
	return models.ContactInfo{
		EmailAddresses: mergeStrings(a.EmailAddresses, b.EmailAddresses),
		PhoneNumbers:   mergeStrings(a.PhoneNumbers, b.PhoneNumbers),
		FaxNumbers:     mergeStrings(a.FaxNumbers, b.FaxNumbers),
		Websites:       mergeStrings(a.Websites, b.Websites),
	}
}

func mergeSanctions(a, b *models.SanctionsInfo) *models.SanctionsInfo {
	if a == nil && b == nil {
		return nil
	}
	if a == nil {
		a = &models.SanctionsInfo{}
	}
	if b == nil {
		b = &models.SanctionsInfo{}
	}
	return &models.SanctionsInfo{
		Programs:    mergeStrings(a.Programs, b.Programs),
		Secondary:   a.Secondary || b.Secondary,
		Description: firstNonEmpty(a.Description, b.Description),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func firstDate(values ...*time.Time) *time.Time {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}
