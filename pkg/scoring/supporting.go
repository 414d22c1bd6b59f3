package scoring

import (
	"strings"

	"github.com/Ramsey-B/briar/pkg/models"
)

// CompareSupportingInfo aggregates the circumstantial evidence: sanctions
// program overlap and historical values (former names, flags, addresses).
// Parts that produced no signal are dropped before averaging so one absent
// kind of evidence does not halve the other.
func (s *Scorer) CompareSupportingInfo(query, index *models.Entity, weight float64) models.ScorePiece {
	piece := models.ScorePiece{Weight: weight, PieceType: models.PieceSupportingInfo}

	var scores []float64

	if query.SanctionsInfo != nil && index.SanctionsInfo != nil {
		piece.FieldsCompared++
		if score := ComparePrograms(query.SanctionsInfo, index.SanctionsInfo); score > 0 {
			scores = append(scores, score)
		}
	}

	if len(query.HistoricalInfo) > 0 && len(index.HistoricalInfo) > 0 {
		piece.FieldsCompared++
		if score := s.compareHistoricalValues(query.HistoricalInfo, index.HistoricalInfo); score > 0 {
			scores = append(scores, score)
		}
	}

	if len(scores) == 0 {
		piece.FieldsCompared = 0
		return piece
	}

	total := 0.0
	for _, score := range scores {
		total += score
	}
	piece.Score = total / float64(len(scores))
	piece.Matched = piece.Score > 0.5
	piece.Exact = piece.Score > 0.99
	return piece
}

// ComparePrograms scores sanctions program overlap as the fraction of query
// programs the index entry also appears under. A secondary-sanctions flag
// disagreement discounts the overlap: same programs under different regimes
// is weaker corroboration.
func ComparePrograms(query, index *models.SanctionsInfo) float64 {
	if query == nil || index == nil || len(query.Programs) == 0 || len(index.Programs) == 0 {
		return 0
	}

	matches := 0
	for _, qp := range query.Programs {
		for _, ip := range index.Programs {
			if strings.EqualFold(qp, ip) {
				matches++
				break
			}
		}
	}

	score := float64(matches) / float64(len(query.Programs))
	if query.Secondary != index.Secondary {
		score *= 0.8
	}
	return score
}

// compareHistoricalValues finds the best similarity between historical
// entries of the same type. A query matching a candidate's former name is
// real evidence; a former name matching a former flag is coincidence, so
// cross-type pairs never compare.
func (s *Scorer) compareHistoricalValues(query, index []models.HistoricalInfo) float64 {
	best := 0.0
	for _, qh := range query {
		for _, ih := range index {
			if qh.Type != ih.Type || qh.Value == "" || ih.Value == "" {
				continue
			}
			if score := s.similarity.JaroWinkler(strings.ToLower(qh.Value), strings.ToLower(ih.Value)); score > best {
				best = score
			}
		}
	}
	return best
}
