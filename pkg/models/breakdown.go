package models

// PieceType labels which comparison factor produced a ScorePiece
type PieceType string

const (
	// PieceName is the primary name comparison
	PieceName PieceType = "name"
	// PieceAltNames is the alternate-name comparison
	PieceAltNames PieceType = "alt_names"
	// PieceAddress is the postal address comparison
	PieceAddress PieceType = "address"
	// PieceGovernmentID is the government identifier comparison
	PieceGovernmentID PieceType = "government_id"
	// PieceCryptoAddress is the cryptocurrency wallet comparison
	PieceCryptoAddress PieceType = "crypto_address"
	// PieceContact is the contact channel comparison
	PieceContact PieceType = "contact"
	// PieceDates is the birth/death/registry date comparison
	PieceDates PieceType = "dates"
	// PieceSupportingInfo is the sanctions program and history comparison
	PieceSupportingInfo PieceType = "supporting_info"
)

// ScorePiece is one factor's contribution before aggregation. Pieces with a
// zero score and no compared fields are dropped from the weighted average so
// missing evidence does not dilute the total.
type ScorePiece struct {
	Score          float64   `json:"score"`
	Weight         float64   `json:"weight"`
	Matched        bool      `json:"matched"`
	Exact          bool      `json:"exact"`
	FieldsCompared int       `json:"fieldsCompared"`
	PieceType      PieceType `json:"pieceType"`
}

// IDMatchResult is the outcome of a single exact-identifier comparison
type IDMatchResult struct {
	Score      float64 `json:"score"`
	Found      bool    `json:"found"`
	Exact      bool    `json:"exact"`
	HasCountry bool    `json:"hasCountry"`
}

// ScoreBreakdown decomposes a final match score by factor. The JSON field
// names are consumed by downstream case-management systems and must not
// change. All fields are in [0,1].
type ScoreBreakdown struct {
	NameScore           float64 `json:"nameScore"`
	AltNamesScore       float64 `json:"altNamesScore"`
	AddressScore        float64 `json:"addressScore"`
	GovernmentIDScore   float64 `json:"governmentIdScore"`
	CryptoAddressScore  float64 `json:"cryptoAddressScore"`
	ContactScore        float64 `json:"contactScore"`
	DateScore           float64 `json:"dateScore"`
	SupportingInfoScore float64 `json:"supportingInfoScore"`
	TotalWeightedScore  float64 `json:"totalWeightedScore"`
}

// BestNameScore returns the stronger of the primary and alternate name scores
func (b ScoreBreakdown) BestNameScore() float64 {
	if b.AltNamesScore > b.NameScore {
		return b.AltNamesScore
	}
	return b.NameScore
}

// SearchResult pairs a candidate entity with its score against the query
type SearchResult struct {
	Entity    *Entity        `json:"entity"`
	Score     float64        `json:"score"`
	Breakdown ScoreBreakdown `json:"breakdown"`
}
