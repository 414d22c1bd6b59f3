package scoring

import (
	"github.com/Ramsey-B/briar/pkg/models"
	"github.com/Ramsey-B/briar/pkg/normalize"
)

// CompareContact scores shared contact channels. Each query value either
// appears in the index record or it does not; the score is the matched
// fraction of query values over the channels both records populate. Phones
// and faxes compare by digits only so formatting never hides a match.
func CompareContact(query, index models.ContactInfo, weight float64) models.ScorePiece {
	piece := models.ScorePiece{Weight: weight, PieceType: models.PieceContact}
	if query.IsEmpty() || index.IsEmpty() {
		return piece
	}

	queried := 0
	matched := 0

	channels := []struct {
		query     []string
		index     []string
		normalize func(string) string
	}{
		{query.EmailAddresses, index.EmailAddresses, normalize.NormalizeEmail},
		{query.PhoneNumbers, index.PhoneNumbers, normalize.NormalizePhone},
		{query.FaxNumbers, index.FaxNumbers, normalize.NormalizePhone},
		{query.Websites, index.Websites, normalize.NormalizeWebsite},
	}

	for _, ch := range channels {
		if len(ch.query) == 0 || len(ch.index) == 0 {
			continue
		}
		piece.FieldsCompared++

		indexValues := make(map[string]bool, len(ch.index))
		for _, v := range ch.index {
			if n := ch.normalize(v); n != "" {
				indexValues[n] = true
			}
		}
		for _, v := range ch.query {
			n := ch.normalize(v)
			if n == "" {
				continue
			}
			queried++
			if indexValues[n] {
				matched++
			}
		}
	}

	if queried == 0 {
		piece.FieldsCompared = 0
		return piece
	}

	piece.Score = float64(matched) / float64(queried)
	piece.Matched = matched > 0
	piece.Exact = piece.Score > 0.99
	return piece
}
