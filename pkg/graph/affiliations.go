package graph

import (
	"strings"
	"unicode"

	"github.com/Ramsey-B/briar/pkg/models"
	"github.com/Ramsey-B/briar/pkg/similarity"
)

// Combined-score adjustments. The relationship label is corroborating
// evidence on top of the name: an exact label agreement earns more than a
// same-group one, and a label conflict ("owned by" vs "led by") costs as much
// as the exact bonus pays.
const (
	exactTypeBonus      = 0.15
	relatedTypeBonus    = 0.08
	typeMismatchPenalty = 0.15

	// exactNameThreshold marks a best match as exact when the label also agrees
	exactNameThreshold = 0.95
)

// Affiliation type groups. Labels inside one group describe the same kind of
// relationship from different lists ("owned by" on OFAC, "subsidiary of" on
// the EU list), so they corroborate each other at a discount. Labels across
// groups do not.
const (
	groupOwnership   = "ownership"
	groupControl     = "control"
	groupAssociation = "association"
	groupLeadership  = "leadership"
)

var typeGroups = map[string]string{
	"owned by":        groupOwnership,
	"owns":            groupOwnership,
	"subsidiary of":   groupOwnership,
	"parent of":       groupOwnership,
	"holding company": groupOwnership,

	"controlled by": groupControl,
	"controls":      groupControl,
	"managed by":    groupControl,
	"manages":       groupControl,
	"operated by":   groupControl,
	"operates":      groupControl,

	"linked to":        groupAssociation,
	"associate of":     groupAssociation,
	"associated with":  groupAssociation,
	"affiliated with":  groupAssociation,
	"family member of": groupAssociation,

	"led by":      groupLeadership,
	"leader of":   groupLeadership,
	"directed by": groupLeadership,
	"director of": groupLeadership,
	"headed by":   groupLeadership,
	"official of": groupLeadership,
	"officer of":  groupLeadership,
}

var affiliationSuffixes = []string{"inc", "ltd", "llc", "corp", "co", "company", "corporation"}

// NormalizeAffiliationName prepares an affiliate name for comparison:
// lowercase, punctuation stripped, whitespace collapsed, and one trailing
// business suffix removed. Only the rightmost suffix drops so "ACME Corp
// Company" keeps its distinguishing "corp". A name that is nothing but a
// suffix is left alone.
func NormalizeAffiliationName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}

	fields := strings.Fields(b.String())
	if len(fields) > 1 {
		last := fields[len(fields)-1]
		for _, suffix := range affiliationSuffixes {
			if last == suffix {
				fields = fields[:len(fields)-1]
				break
			}
		}
	}
	return strings.Join(fields, " ")
}

// TypeGroup classifies an affiliation label into its relationship group, or
// "" when the label is unrecognized. Unknown labels are tolerated, they just
// never corroborate anything.
func TypeGroup(t models.AffiliationType) string {
	return typeGroups[normalizeTypeLabel(t)]
}

// TypeScore rates how compatible two affiliation labels are: 1.0 for the
// same label (two blank labels included), 0.8 for labels in the same group,
// 0 otherwise.
func TypeScore(query, index models.AffiliationType) float64 {
	q := normalizeTypeLabel(query)
	i := normalizeTypeLabel(index)

	if q == i {
		return 1.0
	}

	qGroup, iGroup := typeGroups[q], typeGroups[i]
	if qGroup != "" && qGroup == iGroup {
		return 0.8
	}
	return 0
}

// CombinedScore folds the label compatibility into the name score as a bonus
// or penalty and clamps the result to [0,1]. The name remains the dominant
// signal; the label can only move it by 0.15 either way.
func CombinedScore(nameScore, typeScore float64) float64 {
	score := nameScore
	switch {
	case typeScore > 0.9:
		score += exactTypeBonus
	case typeScore >= 0.7:
		score += relatedTypeBonus
	default:
		score -= typeMismatchPenalty
	}

	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// normalizeTypeLabel folds label formatting so "owned-by", "owned_by" and
// "Owned By" all compare equal
func normalizeTypeLabel(t models.AffiliationType) string {
	label := strings.ToLower(string(t))
	label = strings.Map(func(r rune) rune {
		if r == '-' || r == '_' {
			return ' '
		}
		return r
	}, label)
	return strings.Join(strings.Fields(label), " ")
}

// Match is the outcome of matching one affiliation against a candidate set
type Match struct {
	NameScore float64
	TypeScore float64
	Score     float64
	Exact     bool
}

// Matcher scores affiliation lists against each other using the shared name
// similarity stack
type Matcher struct {
	sim *similarity.Scorer
}

// NewMatcher creates an affiliation matcher
func NewMatcher(sim *similarity.Scorer) *Matcher {
	return &Matcher{sim: sim}
}

// BestMatch finds the candidate affiliation that best matches the query one.
// Candidates are ranked by combined score; on a tie the better label
// agreement wins, so "owned by ACME" prefers the candidate that is also an
// ownership link.
func (m *Matcher) BestMatch(query models.Affiliation, candidates []models.Affiliation) Match {
	qName := NormalizeAffiliationName(query.EntityName)
	if qName == "" {
		return Match{}
	}
	qTokens := strings.Fields(qName)

	var best Match
	for _, cand := range candidates {
		iName := NormalizeAffiliationName(cand.EntityName)
		if iName == "" {
			continue
		}

		nameScore := m.sim.TokenizedSimilarity(qTokens, strings.Fields(iName))
		typeScore := TypeScore(query.Type, cand.Type)
		score := CombinedScore(nameScore, typeScore)

		if score > best.Score || (score == best.Score && typeScore > best.TypeScore) {
			best = Match{
				NameScore: nameScore,
				TypeScore: typeScore,
				Score:     score,
				Exact:     nameScore > exactNameThreshold && typeScore > 0.9,
			}
		}
	}
	return best
}

// Compare scores how closely two affiliation lists describe the same network.
// Each query affiliation takes its best match from the index list; the
// aggregate is a weighted average with each match weighted by the square of
// its own score, so one strong shared affiliate outweighs several vague
// ones. Query affiliations with no name resemblance at all contribute
// nothing rather than dragging the average down.
func (m *Matcher) Compare(query, index []models.Affiliation) float64 {
	if len(query) == 0 || len(index) == 0 {
		return 0
	}

	weightedSum, totalWeight := 0.0, 0.0
	for _, q := range query {
		match := m.BestMatch(q, index)
		if match.NameScore <= 0 {
			continue
		}
		weight := match.Score * match.Score
		weightedSum += match.Score * weight
		totalWeight += weight
	}

	if totalWeight == 0 {
		return 0
	}
	return weightedSum / totalWeight
}
