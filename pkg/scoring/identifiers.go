package scoring

import (
	"strings"

	"github.com/Ramsey-B/briar/pkg/models"
	"github.com/Ramsey-B/briar/pkg/normalize"
)

// Identifier field weights. A vessel or aircraft carries several registry
// identifiers of different reliability; the weighted average runs only over
// fields the query actually supplied.
const (
	imoWeight      = 15.0
	callSignWeight = 12.0
	mmsiWeight     = 12.0
	serialWeight   = 15.0
	icaoWeight     = 12.0
)

// CompareIdentifiers scores a single identifier pair with country validation.
// Identifiers are normalized before comparison so formatting differences
// ("52-2083095" vs "522083095") do not mask a match. Countries refine a
// matched identifier: both blank is still exact, a single blank costs a
// little, a conflict costs a lot but still counts as found.
func CompareIdentifiers(queryID, indexID, queryCountry, indexCountry string) models.IDMatchResult {
	if normalize.NormalizeID(queryID) == "" || normalize.NormalizeID(queryID) != normalize.NormalizeID(indexID) {
		return models.IDMatchResult{}
	}

	qCountry := strings.TrimSpace(queryCountry)
	iCountry := strings.TrimSpace(indexCountry)

	switch {
	case qCountry == "" && iCountry == "":
		return models.IDMatchResult{Score: 1.0, Found: true, Exact: true, HasCountry: false}
	case qCountry == "" || iCountry == "":
		return models.IDMatchResult{Score: 0.9, Found: true, Exact: false, HasCountry: true}
	case strings.EqualFold(qCountry, iCountry):
		return models.IDMatchResult{Score: 1.0, Found: true, Exact: true, HasCountry: true}
	default:
		return models.IDMatchResult{Score: 0.7, Found: true, Exact: false, HasCountry: true}
	}
}

// CompareGovernmentIDs finds the best identifier pairing between two ID
// lists. Every query ID is tried against every index ID; the search stops
// early once an exact pair is found since nothing can beat it.
func CompareGovernmentIDs(queryIDs, indexIDs []models.GovernmentID, weight float64) models.ScorePiece {
	piece := models.ScorePiece{Weight: weight, PieceType: models.PieceGovernmentID}
	if len(queryIDs) == 0 || len(indexIDs) == 0 {
		return piece
	}

	piece.FieldsCompared = 1
	best := models.IDMatchResult{}
	for _, qID := range queryIDs {
		for _, iID := range indexIDs {
			match := CompareIdentifiers(qID.Identifier, iID.Identifier, qID.Country, iID.Country)
			if match.Found && match.Score > best.Score {
				best = match
			}
			if best.Exact {
				break
			}
		}
		if best.Exact {
			break
		}
	}

	piece.Score = best.Score
	piece.Matched = best.Found
	piece.Exact = best.Exact
	return piece
}

// CompareVesselIDs scores the registry identifiers of two vessels. Fields the
// query left blank stay out of both the numerator and the denominator, so a
// query that only knows the IMO number is judged on the IMO number alone.
func CompareVesselIDs(query, index *models.Vessel, weight float64) models.ScorePiece {
	piece := models.ScorePiece{Weight: weight, PieceType: models.PieceGovernmentID}
	if query == nil || index == nil {
		return piece
	}

	score := 0.0
	totalWeight := 0.0

	if query.IMONumber != "" && index.IMONumber != "" {
		piece.FieldsCompared++
		totalWeight += imoWeight
		if idEqual(query.IMONumber, index.IMONumber) {
			score += imoWeight
			piece.Matched = true
		}
	}
	if query.CallSign != "" && index.CallSign != "" {
		piece.FieldsCompared++
		totalWeight += callSignWeight
		if idEqual(query.CallSign, index.CallSign) {
			score += callSignWeight
			piece.Matched = true
		}
	}
	if query.MMSI != "" && index.MMSI != "" {
		piece.FieldsCompared++
		totalWeight += mmsiWeight
		if idEqual(query.MMSI, index.MMSI) {
			score += mmsiWeight
			piece.Matched = true
		}
	}

	if totalWeight > 0 {
		piece.Score = score / totalWeight
	}
	piece.Exact = piece.Score > 0.99
	return piece
}

// CompareAircraftIDs scores the registry identifiers of two aircraft the same
// way CompareVesselIDs scores vessels.
func CompareAircraftIDs(query, index *models.Aircraft, weight float64) models.ScorePiece {
	piece := models.ScorePiece{Weight: weight, PieceType: models.PieceGovernmentID}
	if query == nil || index == nil {
		return piece
	}

	score := 0.0
	totalWeight := 0.0

	if query.SerialNumber != "" && index.SerialNumber != "" {
		piece.FieldsCompared++
		totalWeight += serialWeight
		if idEqual(query.SerialNumber, index.SerialNumber) {
			score += serialWeight
			piece.Matched = true
		}
	}
	if query.ICAOCode != "" && index.ICAOCode != "" {
		piece.FieldsCompared++
		totalWeight += icaoWeight
		if idEqual(query.ICAOCode, index.ICAOCode) {
			score += icaoWeight
			piece.Matched = true
		}
	}

	if totalWeight > 0 {
		piece.Score = score / totalWeight
	}
	piece.Exact = piece.Score > 0.99
	return piece
}

// CompareCryptoAddresses reports whether any wallet appears on both sides.
// When both records name a currency it must match; a blank currency on either
// side falls back to address-only comparison. Wallets are all-or-nothing, so
// the score is 1 or 0.
func CompareCryptoAddresses(query, index []models.CryptoAddress, weight float64) models.ScorePiece {
	piece := models.ScorePiece{Weight: weight, PieceType: models.PieceCryptoAddress}
	if len(query) == 0 || len(index) == 0 {
		return piece
	}

	piece.FieldsCompared = 1
	for _, qAddr := range query {
		if qAddr.Address == "" {
			continue
		}
		for _, iAddr := range index {
			if qAddr.Currency != "" && iAddr.Currency != "" && !strings.EqualFold(qAddr.Currency, iAddr.Currency) {
				continue
			}
			if strings.EqualFold(qAddr.Address, iAddr.Address) {
				piece.Score = 1.0
				piece.Matched = true
				piece.Exact = true
				return piece
			}
		}
	}
	return piece
}

// idEqual compares registry identifiers after normalization
func idEqual(a, b string) bool {
	return normalize.NormalizeID(a) != "" && normalize.NormalizeID(a) == normalize.NormalizeID(b)
}
