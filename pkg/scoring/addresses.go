package scoring

import (
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/mozillazg/go-unidecode"

	"github.com/Ramsey-B/briar/pkg/models"
)

// Address field weights. Street line and city identify a location; state,
// postal code and country confirm it. Only fields present on both sides are
// weighed, so a query with just a city is judged on the city.
const (
	addrLine1Weight   = 5.0
	addrLine2Weight   = 2.0
	addrCityWeight    = 4.0
	addrStateWeight   = 2.0
	addrPostalWeight  = 3.0
	addrCountryWeight = 4.0

	// highConfidenceAddress ends the best-pair search early; list entries
	// routinely carry a dozen addresses and one strong hit is enough.
	highConfidenceAddress = 0.92
)

// CompareAddress scores two postal addresses as a weighted average over the
// fields both supply. Street lines and city tolerate fuzz; state, postal code
// and country are exact after folding.
func (s *Scorer) CompareAddress(query, index models.Address) float64 {
	totalScore := 0.0
	totalWeight := 0.0

	addField := func(q, i string, weight float64, fuzzy bool) {
		q, i = foldAddressField(q), foldAddressField(i)
		if q == "" || i == "" {
			return
		}
		score := 0.0
		if fuzzy {
			score = s.lineSimilarity(q, i)
		} else if q == i {
			score = 1.0
		}
		totalScore += score * weight
		totalWeight += weight
	}

	addField(query.Line1, index.Line1, addrLine1Weight, true)
	addField(query.Line2, index.Line2, addrLine2Weight, true)
	addField(query.City, index.City, addrCityWeight, true)
	addField(query.State, index.State, addrStateWeight, false)
	addField(query.PostalCode, index.PostalCode, addrPostalWeight, false)
	addField(query.Country, index.Country, addrCountryWeight, false)

	if totalWeight == 0 {
		return 0
	}
	return totalScore / totalWeight
}

// BestAddressMatch scores every query address against every index address
// and keeps the best pairing, exiting early on a high-confidence hit.
func (s *Scorer) BestAddressMatch(query, index []models.Address, weight float64) models.ScorePiece {
	piece := models.ScorePiece{Weight: weight, PieceType: models.PieceAddress}
	if len(query) == 0 || len(index) == 0 {
		return piece
	}

	best := 0.0
	for _, qAddr := range query {
		if qAddr.IsEmpty() {
			continue
		}
		piece.FieldsCompared = 1
		for _, iAddr := range index {
			if score := s.CompareAddress(qAddr, iAddr); score > best {
				best = score
				if best > highConfidenceAddress {
					return addressPiece(piece, best)
				}
			}
		}
	}
	return addressPiece(piece, best)
}

func addressPiece(piece models.ScorePiece, score float64) models.ScorePiece {
	piece.Score = score
	piece.Matched = score > 0.7
	piece.Exact = score > 0.99
	return piece
}

// lineSimilarity blends Jaro-Winkler with an edit-distance ratio. The two
// disagree on exactly the inputs address lines produce: JW forgives prefix
// truncation ("123 MAIN STREET" vs "123 MAIN ST"), edit distance forgives a
// garbled middle. Averaging keeps either mistake survivable.
func (s *Scorer) lineSimilarity(a, b string) float64 {
	if a == b {
		return 1
	}
	jw := s.similarity.JaroWinkler(a, b)

	longer := len([]rune(a))
	if l := len([]rune(b)); l > longer {
		longer = l
	}
	if longer == 0 {
		return 0
	}
	lev := 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longer)
	if lev < 0 {
		lev = 0
	}

	return (jw + lev) / 2
}

// foldAddressField lowers, transliterates and collapses whitespace so
// accented and spacing variants of the same address compare equal
func foldAddressField(s string) string {
	folded := strings.ToLower(unidecode.Unidecode(strings.TrimSpace(s)))
	return strings.Join(strings.Fields(folded), " ")
}
