package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Ramsey-B/briar/pkg/models"
)

func date(year, month, day int) *time.Time {
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return &d
}

func TestCompareDates(t *testing.T) {
	t.Run("identical dates score 1", func(t *testing.T) {
		assert.InDelta(t, 1.0, CompareDates(date(1990, 5, 15), date(1990, 5, 15)), 0.001)
	})

	t.Run("nil dates score 0", func(t *testing.T) {
		assert.Equal(t, 0.0, CompareDates(nil, date(1990, 5, 15)))
		assert.Equal(t, 0.0, CompareDates(date(1990, 5, 15), nil))
		assert.Equal(t, 0.0, CompareDates(nil, nil))
	})

	t.Run("days within tolerance decay linearly", func(t *testing.T) {
		assert.InDelta(t, 0.97, CompareDates(date(1990, 5, 15), date(1990, 5, 16)), 0.001)
		assert.InDelta(t, 0.94, CompareDates(date(1990, 5, 15), date(1990, 5, 17)), 0.001)
		assert.InDelta(t, 0.91, CompareDates(date(1990, 5, 15), date(1990, 5, 18)), 0.001)
	})

	t.Run("years within five decay linearly", func(t *testing.T) {
		oneYear := CompareDates(date(1990, 5, 15), date(1991, 5, 15))
		fiveYears := CompareDates(date(1990, 5, 15), date(1995, 5, 15))
		assert.InDelta(t, 0.96, oneYear, 0.001)
		assert.InDelta(t, 0.80, fiveYears, 0.001)
		assert.Greater(t, oneYear, fiveYears)
	})

	t.Run("distant years hit the floor", func(t *testing.T) {
		score := CompareDates(date(1990, 5, 15), date(2000, 5, 15))
		assert.InDelta(t, 0.68, score, 0.001)
	})

	t.Run("adjacent months score high", func(t *testing.T) {
		assert.InDelta(t, 0.97, CompareDates(date(1990, 5, 15), date(1990, 6, 15)), 0.001)
	})

	t.Run("month one against ten eleven twelve is treated as a typo", func(t *testing.T) {
		for _, month := range []int{10, 11, 12} {
			score := CompareDates(date(1990, 1, 15), date(1990, month, 15))
			assert.InDelta(t, 0.91, score, 0.001, "month 1 vs %d", month)
		}
	})

	t.Run("distant months hit the floor", func(t *testing.T) {
		score := CompareDates(date(1990, 1, 15), date(1990, 6, 15))
		assert.InDelta(t, 0.79, score, 0.001)
	})

	t.Run("digit-similar days score above the floor", func(t *testing.T) {
		assert.InDelta(t, 0.91, CompareDates(date(1990, 5, 1), date(1990, 5, 11)), 0.001)
		assert.InDelta(t, 0.91, CompareDates(date(1990, 5, 12), date(1990, 5, 21)), 0.001)
	})

	t.Run("unrelated days hit the floor", func(t *testing.T) {
		score := CompareDates(date(1990, 5, 1), date(1990, 5, 20))
		assert.InDelta(t, 0.79, score, 0.001)
	})
}

func TestDaysSimilar(t *testing.T) {
	t.Run("doubled single digits", func(t *testing.T) {
		assert.True(t, DaysSimilar(1, 11))
		assert.True(t, DaysSimilar(11, 1))
		assert.True(t, DaysSimilar(2, 22))
		assert.True(t, DaysSimilar(22, 2))
	})

	t.Run("transposed digits", func(t *testing.T) {
		assert.True(t, DaysSimilar(12, 21))
		assert.True(t, DaysSimilar(21, 12))
		assert.True(t, DaysSimilar(13, 31))
		assert.True(t, DaysSimilar(24, 42))
	})

	t.Run("equal days", func(t *testing.T) {
		assert.True(t, DaysSimilar(3, 3))
		assert.True(t, DaysSimilar(31, 31))
	})

	t.Run("unrelated days", func(t *testing.T) {
		assert.False(t, DaysSimilar(1, 15))
		assert.False(t, DaysSimilar(5, 20))
		assert.False(t, DaysSimilar(10, 25))
		assert.False(t, DaysSimilar(1, 31))
	})
}

func TestDatesLogical(t *testing.T) {
	t.Run("consistent lifespans pass", func(t *testing.T) {
		assert.True(t, DatesLogical(date(1950, 1, 1), date(2020, 1, 1), date(1951, 1, 1), date(2019, 1, 1)))
	})

	t.Run("death before birth fails", func(t *testing.T) {
		assert.False(t, DatesLogical(date(1950, 1, 1), date(2020, 1, 1), date(2021, 1, 1), date(2019, 1, 1)))
	})

	t.Run("lifespans differing by more than a fifth fail", func(t *testing.T) {
		// 70 years vs 40 years
		assert.False(t, DatesLogical(date(1950, 1, 1), date(2020, 1, 1), date(1951, 1, 1), date(1991, 1, 1)))
	})

	t.Run("lifespans within a fifth pass", func(t *testing.T) {
		// 70 years vs 58 years
		assert.True(t, DatesLogical(date(1950, 1, 1), date(2020, 1, 1), date(1952, 1, 1), date(2010, 1, 1)))
	})

	t.Run("missing dates pass", func(t *testing.T) {
		birth, death := date(1950, 1, 1), date(2020, 1, 1)
		assert.True(t, DatesLogical(nil, death, birth, death))
		assert.True(t, DatesLogical(birth, nil, birth, death))
		assert.True(t, DatesLogical(birth, death, nil, death))
		assert.True(t, DatesLogical(birth, death, birth, nil))
	})
}

func TestComparePersonDates(t *testing.T) {
	t.Run("identical birth dates only", func(t *testing.T) {
		piece := ComparePersonDates(date(1950, 5, 15), nil, date(1950, 5, 15), nil, 15)
		assert.InDelta(t, 1.0, piece.Score, 0.001)
		assert.True(t, piece.Matched)
		assert.Equal(t, 1, piece.FieldsCompared)
	})

	t.Run("close death dates only", func(t *testing.T) {
		piece := ComparePersonDates(nil, date(2020, 8, 1), nil, date(2020, 8, 3), 15)
		assert.Greater(t, piece.Score, 0.90)
		assert.True(t, piece.Matched)
		assert.Equal(t, 1, piece.FieldsCompared)
	})

	t.Run("both pairs averaged", func(t *testing.T) {
		piece := ComparePersonDates(
			date(1950, 1, 1), date(2020, 1, 1),
			date(1951, 2, 1), date(2019, 2, 1),
			15,
		)
		assert.Greater(t, piece.Score, 0.70)
		assert.Equal(t, 2, piece.FieldsCompared)
	})

	t.Run("implausible lifespan mismatch halves the score", func(t *testing.T) {
		// 70-year vs 30-year lifespans: individually plausible dates,
		// jointly impossible for the same person.
		piece := ComparePersonDates(
			date(1950, 1, 1), date(2020, 1, 1),
			date(1951, 1, 1), date(1981, 1, 1),
			15,
		)
		assert.Less(t, piece.Score, 0.60)
		assert.Equal(t, 2, piece.FieldsCompared)
	})

	t.Run("no dates produce an empty piece", func(t *testing.T) {
		piece := ComparePersonDates(nil, nil, nil, nil, 15)
		assert.Equal(t, 0.0, piece.Score)
		assert.False(t, piece.Matched)
		assert.Equal(t, 0, piece.FieldsCompared)
	})
}

func TestCompareRegistryDates(t *testing.T) {
	t.Run("identical created dates", func(t *testing.T) {
		piece := CompareRegistryDates(date(2000, 1, 1), nil, date(2000, 1, 1), nil, 15)
		assert.InDelta(t, 1.0, piece.Score, 0.001)
		assert.True(t, piece.Matched)
		assert.Equal(t, 1, piece.FieldsCompared)
	})

	t.Run("close dissolved dates", func(t *testing.T) {
		piece := CompareRegistryDates(nil, date(2020, 6, 28), nil, date(2020, 6, 29), 15)
		assert.Greater(t, piece.Score, 0.95)
		assert.Equal(t, 1, piece.FieldsCompared)
	})

	t.Run("both pairs a month apart", func(t *testing.T) {
		piece := CompareRegistryDates(
			date(2000, 1, 1), date(2020, 1, 1),
			date(2000, 2, 1), date(2020, 2, 1),
			15,
		)
		assert.Greater(t, piece.Score, 0.90)
		assert.Equal(t, 2, piece.FieldsCompared)
	})
}

func TestCompareEntityDates(t *testing.T) {
	t.Run("kind mismatch produces an empty piece", func(t *testing.T) {
		query := &models.Entity{EntityType: models.EntityTypePerson, Person: &models.Person{BirthDate: date(1960, 1, 1)}}
		index := &models.Entity{EntityType: models.EntityTypeBusiness, Business: &models.Business{Created: date(1960, 1, 1)}}

		piece := CompareEntityDates(query, index, 15)
		assert.Equal(t, 0, piece.FieldsCompared)
		assert.Equal(t, 0.0, piece.Score)
	})

	t.Run("person dispatch", func(t *testing.T) {
		query := &models.Entity{EntityType: models.EntityTypePerson, Person: &models.Person{BirthDate: date(1960, 3, 9)}}
		index := &models.Entity{EntityType: models.EntityTypePerson, Person: &models.Person{BirthDate: date(1960, 3, 9)}}

		piece := CompareEntityDates(query, index, 15)
		assert.InDelta(t, 1.0, piece.Score, 0.001)
	})

	t.Run("vessel built dates", func(t *testing.T) {
		query := &models.Entity{EntityType: models.EntityTypeVessel, Vessel: &models.Vessel{Built: date(1999, 1, 1)}}
		index := &models.Entity{EntityType: models.EntityTypeVessel, Vessel: &models.Vessel{Built: date(1999, 1, 1)}}

		piece := CompareEntityDates(query, index, 15)
		assert.InDelta(t, 1.0, piece.Score, 0.001)
		assert.Equal(t, 1, piece.FieldsCompared)
	})

	t.Run("missing kind struct produces an empty piece", func(t *testing.T) {
		query := &models.Entity{EntityType: models.EntityTypeVessel}
		index := &models.Entity{EntityType: models.EntityTypeVessel, Vessel: &models.Vessel{Built: date(1999, 1, 1)}}

		piece := CompareEntityDates(query, index, 15)
		assert.Equal(t, 0, piece.FieldsCompared)
	})
}
