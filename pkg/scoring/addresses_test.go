package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/briar/pkg/models"
	"github.com/Ramsey-B/briar/pkg/similarity"
)

func newTestScorer(t *testing.T) *Scorer {
	t.Helper()
	sim, err := similarity.NewScorer(similarity.DefaultConfig())
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.MinMatch = 0
	scorer, err := NewScorer(cfg, sim)
	require.NoError(t, err)
	return scorer
}

func TestCompareAddress(t *testing.T) {
	scorer := newTestScorer(t)

	t.Run("identical addresses score 1", func(t *testing.T) {
		addr := models.Address{Line1: "123 Main St", City: "Springfield", State: "IL", PostalCode: "62704", Country: "US"}
		assert.InDelta(t, 1.0, scorer.CompareAddress(addr, addr), 0.001)
	})

	t.Run("accents and casing fold away", func(t *testing.T) {
		query := models.Address{City: "São Paulo", Country: "BR"}
		index := models.Address{City: "SAO PAULO", Country: "br"}
		assert.InDelta(t, 1.0, scorer.CompareAddress(query, index), 0.001)
	})

	t.Run("state mismatch costs its weight", func(t *testing.T) {
		query := models.Address{Line1: "123 Main St", City: "Springfield", State: "IL", Country: "US"}
		index := models.Address{Line1: "123 Main St", City: "Springfield", State: "OH", Country: "US"}
		// line1 5 + city 4 + country 4 match, state 2 does not: 13/15
		assert.InDelta(t, 13.0/15.0, scorer.CompareAddress(query, index), 0.01)
	})

	t.Run("fields absent on either side are excluded", func(t *testing.T) {
		query := models.Address{City: "Tehran", Country: "IR"}
		index := models.Address{Line1: "No 5 Valiasr Ave", City: "Tehran", State: "Tehran", Country: "IR"}
		assert.InDelta(t, 1.0, scorer.CompareAddress(query, index), 0.001)
	})

	t.Run("no comparable fields scores 0", func(t *testing.T) {
		query := models.Address{Line1: "123 Main St"}
		index := models.Address{City: "Springfield"}
		assert.Equal(t, 0.0, scorer.CompareAddress(query, index))
	})

	t.Run("street abbreviations stay close", func(t *testing.T) {
		query := models.Address{Line1: "123 Main Street", Country: "US"}
		index := models.Address{Line1: "123 Main St", Country: "US"}
		assert.Greater(t, scorer.CompareAddress(query, index), 0.85)
	})
}

func TestBestAddressMatch(t *testing.T) {
	scorer := newTestScorer(t)

	t.Run("empty lists produce an empty piece", func(t *testing.T) {
		piece := scorer.BestAddressMatch(nil, []models.Address{{City: "Moscow"}}, 25)
		assert.Equal(t, 0, piece.FieldsCompared)
		assert.Equal(t, 0.0, piece.Score)
	})

	t.Run("best pairing wins across both lists", func(t *testing.T) {
		query := []models.Address{
			{City: "London", Country: "GB"},
			{City: "Moscow", Country: "RU"},
		}
		index := []models.Address{
			{City: "Minsk", Country: "BY"},
			{City: "Moscow", Country: "RU"},
		}

		piece := scorer.BestAddressMatch(query, index, 25)
		assert.InDelta(t, 1.0, piece.Score, 0.001)
		assert.True(t, piece.Matched)
		assert.Equal(t, 25.0, piece.Weight)
	})

	t.Run("empty query addresses are skipped", func(t *testing.T) {
		query := []models.Address{{}, {City: "Moscow", Country: "RU"}}
		index := []models.Address{{City: "Moscow", Country: "RU"}}

		piece := scorer.BestAddressMatch(query, index, 25)
		assert.InDelta(t, 1.0, piece.Score, 0.001)
	})

	t.Run("weak pairings keep the best seen", func(t *testing.T) {
		query := []models.Address{{City: "Caracas", Country: "VE"}}
		index := []models.Address{{City: "Bogota", Country: "CO"}}

		piece := scorer.BestAddressMatch(query, index, 25)
		assert.Less(t, piece.Score, 0.7)
		assert.False(t, piece.Matched)
		assert.Equal(t, 1, piece.FieldsCompared)
	})
}
