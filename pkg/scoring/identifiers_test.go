package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Ramsey-B/briar/pkg/models"
)

func TestCompareIdentifiers(t *testing.T) {
	t.Run("different identifiers never match", func(t *testing.T) {
		result := CompareIdentifiers("A123456", "B999999", "US", "US")
		assert.Equal(t, 0.0, result.Score)
		assert.False(t, result.Found)
	})

	t.Run("formatting differences do not mask a match", func(t *testing.T) {
		result := CompareIdentifiers("52-2083095", "522083095", "", "")
		assert.True(t, result.Found)
		assert.Equal(t, 1.0, result.Score)
		assert.True(t, result.Exact)
		assert.False(t, result.HasCountry)
	})

	t.Run("case differences do not mask a match", func(t *testing.T) {
		result := CompareIdentifiers("ab123", "AB123", "us", "US")
		assert.True(t, result.Found)
		assert.Equal(t, 1.0, result.Score)
		assert.True(t, result.Exact)
		assert.True(t, result.HasCountry)
	})

	t.Run("matching countries are exact", func(t *testing.T) {
		result := CompareIdentifiers("X100", "X100", "IR", "IR")
		assert.Equal(t, 1.0, result.Score)
		assert.True(t, result.Exact)
		assert.True(t, result.HasCountry)
	})

	t.Run("one missing country costs a little", func(t *testing.T) {
		result := CompareIdentifiers("X100", "X100", "IR", "")
		assert.Equal(t, 0.9, result.Score)
		assert.True(t, result.Found)
		assert.False(t, result.Exact)
	})

	t.Run("conflicting countries cost a lot but still count", func(t *testing.T) {
		result := CompareIdentifiers("X100", "X100", "IR", "RU")
		assert.Equal(t, 0.7, result.Score)
		assert.True(t, result.Found)
		assert.False(t, result.Exact)
	})

	t.Run("blank identifiers never match", func(t *testing.T) {
		result := CompareIdentifiers("", "", "US", "US")
		assert.False(t, result.Found)
		assert.Equal(t, 0.0, result.Score)
	})
}

func TestCompareGovernmentIDs(t *testing.T) {
	t.Run("empty sides produce an empty piece", func(t *testing.T) {
		piece := CompareGovernmentIDs(nil, nil, 50)
		assert.Equal(t, 0, piece.FieldsCompared)
		assert.Equal(t, 0.0, piece.Score)

		piece = CompareGovernmentIDs([]models.GovernmentID{{Identifier: "123"}}, nil, 50)
		assert.Equal(t, 0, piece.FieldsCompared)
	})

	t.Run("best pairing wins", func(t *testing.T) {
		query := []models.GovernmentID{
			{Type: models.GovernmentIDPassport, Identifier: "P111", Country: "SY"},
			{Type: models.GovernmentIDTaxID, Identifier: "T222", Country: "SY"},
		}
		index := []models.GovernmentID{
			{Type: models.GovernmentIDPassport, Identifier: "P111", Country: "LB"}, // country conflict: 0.7
			{Type: models.GovernmentIDTaxID, Identifier: "T222", Country: "SY"},    // exact: 1.0
		}

		piece := CompareGovernmentIDs(query, index, 50)
		assert.Equal(t, 1.0, piece.Score)
		assert.True(t, piece.Exact)
		assert.True(t, piece.Matched)
		assert.Equal(t, 1, piece.FieldsCompared)
		assert.Equal(t, 50.0, piece.Weight)
	})

	t.Run("no shared identifier scores zero with fields compared", func(t *testing.T) {
		query := []models.GovernmentID{{Identifier: "AAA"}}
		index := []models.GovernmentID{{Identifier: "BBB"}}

		piece := CompareGovernmentIDs(query, index, 50)
		assert.Equal(t, 0.0, piece.Score)
		assert.False(t, piece.Matched)
		assert.Equal(t, 1, piece.FieldsCompared)
	})
}

func TestCompareVesselIDs(t *testing.T) {
	t.Run("nil vessels produce an empty piece", func(t *testing.T) {
		piece := CompareVesselIDs(nil, &models.Vessel{}, 50)
		assert.Equal(t, 0, piece.FieldsCompared)
	})

	t.Run("imo number alone decides when it is the only shared field", func(t *testing.T) {
		query := &models.Vessel{IMONumber: "IMO 9116462"}
		index := &models.Vessel{IMONumber: "IMO9116462", CallSign: "UBXN3"}

		piece := CompareVesselIDs(query, index, 50)
		assert.Equal(t, 1.0, piece.Score)
		assert.True(t, piece.Exact)
		assert.Equal(t, 1, piece.FieldsCompared)
	})

	t.Run("mismatched field drags the weighted average", func(t *testing.T) {
		query := &models.Vessel{IMONumber: "9116462", CallSign: "UBXN3"}
		index := &models.Vessel{IMONumber: "9116462", CallSign: "DIFFERENT"}

		piece := CompareVesselIDs(query, index, 50)
		// imo 15 of (15 + 12)
		assert.InDelta(t, 15.0/27.0, piece.Score, 0.001)
		assert.True(t, piece.Matched)
		assert.False(t, piece.Exact)
		assert.Equal(t, 2, piece.FieldsCompared)
	})

	t.Run("all three identifiers matching is exact", func(t *testing.T) {
		query := &models.Vessel{IMONumber: "9116462", CallSign: "UBXN3", MMSI: "273213000"}
		index := &models.Vessel{IMONumber: "9116462", CallSign: "UBXN3", MMSI: "273213000"}

		piece := CompareVesselIDs(query, index, 50)
		assert.Equal(t, 1.0, piece.Score)
		assert.True(t, piece.Exact)
		assert.Equal(t, 3, piece.FieldsCompared)
	})

	t.Run("fields the query left blank stay out of the average", func(t *testing.T) {
		query := &models.Vessel{MMSI: "273213000"}
		index := &models.Vessel{IMONumber: "9116462", MMSI: "273213000"}

		piece := CompareVesselIDs(query, index, 50)
		assert.Equal(t, 1.0, piece.Score)
		assert.Equal(t, 1, piece.FieldsCompared)
	})
}

func TestCompareAircraftIDs(t *testing.T) {
	t.Run("serial outweighs icao", func(t *testing.T) {
		query := &models.Aircraft{SerialNumber: "24769", ICAOCode: "EP-FQA"}
		index := &models.Aircraft{SerialNumber: "24769", ICAOCode: "EP-ZZZ"}

		piece := CompareAircraftIDs(query, index, 50)
		assert.InDelta(t, 15.0/27.0, piece.Score, 0.001)
		assert.True(t, piece.Matched)
		assert.Equal(t, 2, piece.FieldsCompared)
	})

	t.Run("both matching is exact", func(t *testing.T) {
		query := &models.Aircraft{SerialNumber: "24769", ICAOCode: "EP-FQA"}
		index := &models.Aircraft{SerialNumber: "24-769", ICAOCode: "ep-fqa"}

		piece := CompareAircraftIDs(query, index, 50)
		assert.Equal(t, 1.0, piece.Score)
		assert.True(t, piece.Exact)
	})
}

func TestCompareCryptoAddresses(t *testing.T) {
	btc := func(addr string) models.CryptoAddress {
		return models.CryptoAddress{Currency: "XBT", Address: addr}
	}

	t.Run("empty sides produce an empty piece", func(t *testing.T) {
		piece := CompareCryptoAddresses(nil, []models.CryptoAddress{btc("1ABC")}, 50)
		assert.Equal(t, 0, piece.FieldsCompared)
	})

	t.Run("same currency and address is exact", func(t *testing.T) {
		piece := CompareCryptoAddresses(
			[]models.CryptoAddress{btc("1EzFsGqehkjvCqAPF2cxgcWg6ewWsDCeF7")},
			[]models.CryptoAddress{btc("1ezfsgqehkjvcqapf2cxgcwg6ewwsdcef7")},
			50,
		)
		assert.Equal(t, 1.0, piece.Score)
		assert.True(t, piece.Exact)
		assert.True(t, piece.Matched)
	})

	t.Run("currency conflict blocks an address match", func(t *testing.T) {
		piece := CompareCryptoAddresses(
			[]models.CryptoAddress{{Currency: "ETH", Address: "1ABC"}},
			[]models.CryptoAddress{{Currency: "XBT", Address: "1ABC"}},
			50,
		)
		assert.Equal(t, 0.0, piece.Score)
		assert.False(t, piece.Matched)
		assert.Equal(t, 1, piece.FieldsCompared)
	})

	t.Run("blank currency falls back to address only", func(t *testing.T) {
		piece := CompareCryptoAddresses(
			[]models.CryptoAddress{{Address: "1ABC"}},
			[]models.CryptoAddress{btc("1ABC")},
			50,
		)
		assert.Equal(t, 1.0, piece.Score)
		assert.True(t, piece.Exact)
	})

	t.Run("no shared wallet scores zero", func(t *testing.T) {
		piece := CompareCryptoAddresses(
			[]models.CryptoAddress{btc("1AAA")},
			[]models.CryptoAddress{btc("1BBB")},
			50,
		)
		assert.Equal(t, 0.0, piece.Score)
		assert.Equal(t, 1, piece.FieldsCompared)
	})
}
