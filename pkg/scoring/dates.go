package scoring

import (
	"math"
	"time"

	"github.com/Ramsey-B/briar/pkg/models"
)

// Date component weights. Year disagreement matters most because transposed
// days and off-by-one months are common transcription errors on list data
// while a wrong year usually means a different person.
const (
	yearWeight  = 0.4
	monthWeight = 0.3
	dayWeight   = 0.3

	dateMatchedThreshold = 0.7
)

// CompareDates scores two dates component-wise. Small differences in each
// component decay linearly; beyond tolerance the component drops to a floor
// instead of zero so a single garbled field cannot erase agreement in the
// other two. Known typo shapes (month 1 vs 10/11/12, transposed or doubled
// day digits) score 0.7 instead of the floor.
func CompareDates(a, b *time.Time) float64 {
	if a == nil || b == nil {
		return 0
	}

	yearScore := 0.2
	if diff := abs(a.Year() - b.Year()); diff <= 5 {
		yearScore = 1 - 0.1*float64(diff)
	}

	monthScore := 0.3
	qMonth, iMonth := int(a.Month()), int(b.Month())
	if diff := abs(qMonth - iMonth); diff <= 1 {
		monthScore = 1 - 0.1*float64(diff)
	} else if monthTypo(qMonth, iMonth) {
		monthScore = 0.7
	}

	dayScore := 0.3
	if diff := abs(a.Day() - b.Day()); diff <= 3 {
		dayScore = 1 - 0.1*float64(diff)
	} else if DaysSimilar(a.Day(), b.Day()) {
		dayScore = 0.7
	}

	return yearWeight*yearScore + monthWeight*monthScore + dayWeight*dayScore
}

// DaysSimilar reports whether two day-of-month values look like the same day
// mistyped: a doubled single digit (1 vs 11) or transposed digits (12 vs 21).
func DaysSimilar(a, b int) bool {
	if a == b {
		return true
	}
	if a > b {
		a, b = b, a
	}
	// Doubled single digit: 1 -> 11, 2 -> 22, 3 -> 33.
	if a < 10 && b == a*10+a {
		return true
	}
	// Transposed two-digit days: 12 <-> 21, 13 <-> 31.
	if a >= 10 && b == (a%10)*10+a/10 {
		return true
	}
	return false
}

// DatesLogical checks birth/death consistency across two records. Missing
// dates pass: absence of evidence is not contradiction. A death before birth
// or lifespans differing by more than 20% mean the records describe
// different people no matter how well the individual dates align.
func DatesLogical(birthA, deathA, birthB, deathB *time.Time) bool {
	if birthA == nil || deathA == nil || birthB == nil || deathB == nil {
		return true
	}
	if deathA.Before(*birthA) || deathB.Before(*birthB) {
		return false
	}

	lifespanA := deathA.Sub(*birthA)
	lifespanB := deathB.Sub(*birthB)
	longer, shorter := lifespanA, lifespanB
	if shorter > longer {
		longer, shorter = shorter, longer
	}
	if longer <= 0 {
		return true
	}
	return float64(longer-shorter)/float64(longer) <= 0.2
}

// ComparePersonDates scores birth and death dates, averaging over the pairs
// both records supply. Inconsistent birth/death chronology halves the score;
// dates that agree individually but imply different lifespans are how two
// distinct people end up looking alike.
func ComparePersonDates(birthQ, deathQ, birthI, deathI *time.Time, weight float64) models.ScorePiece {
	piece := models.ScorePiece{Weight: weight, PieceType: models.PieceDates}

	total := 0.0
	if birthQ != nil && birthI != nil {
		total += CompareDates(birthQ, birthI)
		piece.FieldsCompared++
	}
	if deathQ != nil && deathI != nil {
		total += CompareDates(deathQ, deathI)
		piece.FieldsCompared++
	}
	if piece.FieldsCompared == 0 {
		return piece
	}

	score := total / float64(piece.FieldsCompared)
	if !DatesLogical(birthQ, deathQ, birthI, deathI) {
		score *= 0.5
	}

	piece.Score = score
	piece.Matched = score > dateMatchedThreshold
	piece.Exact = score > 0.99
	return piece
}

// CompareRegistryDates scores formation and dissolution dates for businesses
// and organizations.
func CompareRegistryDates(createdQ, dissolvedQ, createdI, dissolvedI *time.Time, weight float64) models.ScorePiece {
	piece := models.ScorePiece{Weight: weight, PieceType: models.PieceDates}

	total := 0.0
	if createdQ != nil && createdI != nil {
		total += CompareDates(createdQ, createdI)
		piece.FieldsCompared++
	}
	if dissolvedQ != nil && dissolvedI != nil {
		total += CompareDates(dissolvedQ, dissolvedI)
		piece.FieldsCompared++
	}
	if piece.FieldsCompared == 0 {
		return piece
	}

	piece.Score = total / float64(piece.FieldsCompared)
	piece.Matched = piece.Score > dateMatchedThreshold
	piece.Exact = piece.Score > 0.99
	return piece
}

// CompareBuiltDates scores the build date of vessels and aircraft
func CompareBuiltDates(builtQ, builtI *time.Time, weight float64) models.ScorePiece {
	piece := models.ScorePiece{Weight: weight, PieceType: models.PieceDates}
	if builtQ == nil || builtI == nil {
		return piece
	}

	piece.FieldsCompared = 1
	piece.Score = CompareDates(builtQ, builtI)
	piece.Matched = piece.Score > dateMatchedThreshold
	piece.Exact = piece.Score > 0.99
	return piece
}

// CompareEntityDates dispatches to the date comparison for the entity kind.
// Mismatched kinds produce an empty piece; the aggregate score already
// reflects a type conflict elsewhere and guessing at cross-kind date
// semantics would only add noise.
func CompareEntityDates(query, index *models.Entity, weight float64) models.ScorePiece {
	if query.EntityType != index.EntityType {
		return models.ScorePiece{Weight: weight, PieceType: models.PieceDates}
	}

	switch query.EntityType {
	case models.EntityTypePerson:
		return ComparePersonDates(query.BirthDate(), query.DeathDate(), index.BirthDate(), index.DeathDate(), weight)
	case models.EntityTypeBusiness, models.EntityTypeOrganization:
		return CompareRegistryDates(query.CreatedDate(), query.DissolvedDate(), index.CreatedDate(), index.DissolvedDate(), weight)
	case models.EntityTypeVessel:
		if query.Vessel == nil || index.Vessel == nil {
			return models.ScorePiece{Weight: weight, PieceType: models.PieceDates}
		}
		return CompareBuiltDates(query.Vessel.Built, index.Vessel.Built, weight)
	case models.EntityTypeAircraft:
		if query.Aircraft == nil || index.Aircraft == nil {
			return models.ScorePiece{Weight: weight, PieceType: models.PieceDates}
		}
		return CompareBuiltDates(query.Aircraft.Built, index.Aircraft.Built, weight)
	default:
		return models.ScorePiece{Weight: weight, PieceType: models.PieceDates}
	}
}

func abs(v int) int {
	return int(math.Abs(float64(v)))
}

// monthTypo reports the month pair a handwritten or OCRed "1" commonly
// becomes: 10, 11 or 12.
func monthTypo(a, b int) bool {
	if a > b {
		a, b = b, a
	}
	return a == 1 && b >= 10 && b <= 12
}
