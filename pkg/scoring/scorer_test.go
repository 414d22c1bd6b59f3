package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/briar/pkg/models"
	"github.com/Ramsey-B/briar/pkg/normalize"
	"github.com/Ramsey-B/briar/pkg/trace"
)

func prepare(t *testing.T, e *models.Entity) *models.Entity {
	t.Helper()
	return normalize.NewTextNormalizer(normalize.DefaultConfig()).PrepareEntity(e)
}

func person(name string) *models.Entity {
	return &models.Entity{Name: name, EntityType: models.EntityTypePerson, Person: &models.Person{}}
}

func organization(name string) *models.Entity {
	return &models.Entity{Name: name, EntityType: models.EntityTypeOrganization, Organization: &models.Organization{}}
}

func TestNewScorer_ValidatesConfig(t *testing.T) {
	t.Run("default config is valid", func(t *testing.T) {
		assert.NoError(t, DefaultConfig().Validate())
	})

	t.Run("zero weight rejected", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.NameWeight = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("min match of one rejected", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.MinMatch = 1.0
		assert.Error(t, cfg.Validate())
	})

	t.Run("all factors disabled rejected", func(t *testing.T) {
		cfg := Config{
			NameWeight:           35,
			AddressWeight:        25,
			CriticalIDWeight:     50,
			SupportingInfoWeight: 15,
		}
		assert.Error(t, cfg.Validate())
	})
}

func TestScoreWithBreakdown_SourceIDShortCircuit(t *testing.T) {
	scorer := newTestScorer(t)

	t.Run("matching source ids bypass every comparison", func(t *testing.T) {
		query := person("Completely Different Name")
		query.SourceID = "12345"
		index := person("Another Name Entirely")
		index.SourceID = "12345"

		breakdown := scorer.ScoreWithBreakdown(prepare(t, query), prepare(t, index), 0, trace.Disabled)
		assert.Equal(t, 1.0, breakdown.TotalWeightedScore)
		assert.Equal(t, 1.0, breakdown.NameScore)
		assert.Equal(t, 1.0, breakdown.GovernmentIDScore)
	})

	t.Run("different source ids score normally", func(t *testing.T) {
		query := person("John Smith")
		query.SourceID = "111"
		index := person("Zebra Warehouse")
		index.SourceID = "222"

		breakdown := scorer.ScoreWithBreakdown(prepare(t, query), prepare(t, index), 0, trace.Disabled)
		assert.Less(t, breakdown.TotalWeightedScore, 0.5)
	})

	t.Run("blank query source id never short-circuits", func(t *testing.T) {
		query := person("John Smith")
		index := person("Zebra Warehouse")
		index.SourceID = ""

		breakdown := scorer.ScoreWithBreakdown(prepare(t, query), prepare(t, index), 0, trace.Disabled)
		assert.Less(t, breakdown.TotalWeightedScore, 1.0)
	})
}

func TestScoreWithBreakdown_NameOnly(t *testing.T) {
	scorer := newTestScorer(t)

	t.Run("identical names score 1", func(t *testing.T) {
		breakdown := scorer.ScoreWithBreakdown(
			prepare(t, person("Mohammad Reza Naqdi")),
			prepare(t, person("Mohammad Reza Naqdi")),
			0, trace.Disabled,
		)
		assert.InDelta(t, 1.0, breakdown.TotalWeightedScore, 0.001)
		assert.InDelta(t, 1.0, breakdown.NameScore, 0.001)
	})

	t.Run("single extra query token survives the containment blend", func(t *testing.T) {
		breakdown := scorer.ScoreWithBreakdown(
			prepare(t, organization("Taliban Organization")),
			prepare(t, organization("Taliban")),
			0, trace.Disabled,
		)
		assert.InDelta(t, 0.913, breakdown.NameScore, 0.015)
		assert.Greater(t, breakdown.TotalWeightedScore, 0.85)
	})

	t.Run("unrelated names stay low", func(t *testing.T) {
		breakdown := scorer.ScoreWithBreakdown(
			prepare(t, person("John Albert Smith")),
			prepare(t, person("Yevgeniy Prigozhin")),
			0, trace.Disabled,
		)
		assert.Less(t, breakdown.TotalWeightedScore, 0.5)
	})
}

func TestScoreWithBreakdown_AltNames(t *testing.T) {
	scorer := newTestScorer(t)

	t.Run("query name hitting an alias scores through the alt piece", func(t *testing.T) {
		query := person("Osama bin Laden")
		index := person("Usama bin Ladin")
		index.AltNames = []string{"Osama bin Laden", "Abu Abdallah"}

		breakdown := scorer.ScoreWithBreakdown(prepare(t, query), prepare(t, index), 0, trace.Disabled)
		assert.InDelta(t, 1.0, breakdown.AltNamesScore, 0.001)
		assert.InDelta(t, 1.0, breakdown.TotalWeightedScore, 0.001)
	})

	t.Run("weak alias never drags down a strong primary match", func(t *testing.T) {
		query := person("Mohammad Reza Naqdi")
		index := person("Mohammad Reza Naqdi")
		index.AltNames = []string{"Shams"}

		breakdown := scorer.ScoreWithBreakdown(prepare(t, query), prepare(t, index), 0, trace.Disabled)
		assert.InDelta(t, 1.0, breakdown.NameScore, 0.001)
		assert.InDelta(t, 1.0, breakdown.TotalWeightedScore, 0.001)
	})
}

func TestScoreWithBreakdown_IdentifierOverride(t *testing.T) {
	scorer := newTestScorer(t)

	t.Run("exact passport dominates a mediocre name", func(t *testing.T) {
		query := person("Jon Smith")
		query.GovernmentIDs = []models.GovernmentID{
			{Type: models.GovernmentIDPassport, Identifier: "A123456", Country: "SY"},
		}
		index := person("John Albert Smythe")
		index.GovernmentIDs = []models.GovernmentID{
			{Type: models.GovernmentIDPassport, Identifier: "A-123456", Country: "SY"},
		}

		breakdown := scorer.ScoreWithBreakdown(prepare(t, query), prepare(t, index), 0, trace.Disabled)
		assert.Equal(t, 1.0, breakdown.GovernmentIDScore)
		// Floor jumps to 0.9, the name arbitrates the rest.
		expected := 0.9 + breakdown.BestNameScore()*0.1
		assert.InDelta(t, expected, breakdown.TotalWeightedScore, 0.001)
		assert.GreaterOrEqual(t, breakdown.TotalWeightedScore, 0.9)
	})

	t.Run("exact crypto wallet triggers the same override", func(t *testing.T) {
		query := person("Some Body")
		query.CryptoAddresses = []models.CryptoAddress{{Currency: "XBT", Address: "1EzFsGqehkjvCqAPF2cxgcWg6ewWsDCeF7"}}
		index := person("Entirely Other Person")
		index.CryptoAddresses = []models.CryptoAddress{{Currency: "XBT", Address: "1EzFsGqehkjvCqAPF2cxgcWg6ewWsDCeF7"}}

		breakdown := scorer.ScoreWithBreakdown(prepare(t, query), prepare(t, index), 0, trace.Disabled)
		assert.Equal(t, 1.0, breakdown.CryptoAddressScore)
		assert.GreaterOrEqual(t, breakdown.TotalWeightedScore, 0.9)
	})

	t.Run("country conflict stays below the override threshold", func(t *testing.T) {
		query := person("Jon Smith")
		query.GovernmentIDs = []models.GovernmentID{
			{Type: models.GovernmentIDPassport, Identifier: "A123456", Country: "SY"},
		}
		index := person("Jon Smith")
		index.GovernmentIDs = []models.GovernmentID{
			{Type: models.GovernmentIDPassport, Identifier: "A123456", Country: "LB"},
		}

		breakdown := scorer.ScoreWithBreakdown(prepare(t, query), prepare(t, index), 0, trace.Disabled)
		assert.InDelta(t, 0.7, breakdown.GovernmentIDScore, 0.001)
		// Weighted average of name 1.0 (35) and id 0.7 (50), not an override.
		expected := (1.0*35 + 0.7*50) / 85
		assert.InDelta(t, expected, breakdown.TotalWeightedScore, 0.001)
	})
}

func TestScoreWithBreakdown_Renormalization(t *testing.T) {
	scorer := newTestScorer(t)

	t.Run("absent factors never dilute the score", func(t *testing.T) {
		// Name-only entities: every other factor is missing. The final
		// score must equal the name score, not name divided by the full
		// weight table.
		breakdown := scorer.ScoreWithBreakdown(
			prepare(t, person("Viktor Bout")),
			prepare(t, person("Viktor Bout")),
			0, trace.Disabled,
		)
		assert.InDelta(t, 1.0, breakdown.TotalWeightedScore, 0.001)
	})

	t.Run("zero-scoring factors stay out of the average", func(t *testing.T) {
		query := person("Viktor Bout")
		query.GovernmentIDs = []models.GovernmentID{{Identifier: "NO-MATCH-1"}}
		index := person("Viktor Bout")
		index.GovernmentIDs = []models.GovernmentID{{Identifier: "OTHER-9"}}

		breakdown := scorer.ScoreWithBreakdown(prepare(t, query), prepare(t, index), 0, trace.Disabled)
		assert.Equal(t, 0.0, breakdown.GovernmentIDScore)
		assert.InDelta(t, 1.0, breakdown.TotalWeightedScore, 0.001)
	})

	t.Run("supporting evidence shifts a strong name only slightly", func(t *testing.T) {
		query := person("Viktor Bout")
		query.SanctionsInfo = &models.SanctionsInfo{Programs: []string{"SDGT"}}
		index := person("Viktor Bout")
		index.SanctionsInfo = &models.SanctionsInfo{Programs: []string{"SDGT"}}

		breakdown := scorer.ScoreWithBreakdown(prepare(t, query), prepare(t, index), 0, trace.Disabled)
		// name 1.0 (35) + supporting 1.0 (15)
		assert.InDelta(t, 1.0, breakdown.TotalWeightedScore, 0.001)
		assert.InDelta(t, 1.0, breakdown.SupportingInfoScore, 0.001)
	})
}

func TestScoreWithBreakdown_MinMatchFloor(t *testing.T) {
	scorer := newTestScorer(t)

	t.Run("scores below the floor clamp to zero", func(t *testing.T) {
		breakdown := scorer.ScoreWithBreakdown(
			prepare(t, person("Jonathan Smithers")),
			prepare(t, person("John Smith")),
			0.85, trace.Disabled,
		)
		if breakdown.NameScore < 0.85 {
			assert.Equal(t, 0.0, breakdown.TotalWeightedScore)
			// The factor scores survive the clamp for the breakdown.
			assert.Greater(t, breakdown.NameScore, 0.0)
		}
	})

	t.Run("scores at or above the floor pass", func(t *testing.T) {
		breakdown := scorer.ScoreWithBreakdown(
			prepare(t, person("John Smith")),
			prepare(t, person("John Smith")),
			0.85, trace.Disabled,
		)
		assert.InDelta(t, 1.0, breakdown.TotalWeightedScore, 0.001)
	})
}

func TestScoreWithBreakdown_DisabledFactors(t *testing.T) {
	sim := newTestScorer(t).similarity
	cfg := DefaultConfig()
	cfg.MinMatch = 0
	cfg.CryptoEnabled = false
	scorer, err := NewScorer(cfg, sim)
	require.NoError(t, err)

	query := person("Anyone At All")
	query.CryptoAddresses = []models.CryptoAddress{{Address: "1SHARED"}}
	index := person("Nobody Special")
	index.CryptoAddresses = []models.CryptoAddress{{Address: "1SHARED"}}

	breakdown := scorer.ScoreWithBreakdown(prepare(t, query), prepare(t, index), 0, trace.Disabled)
	assert.Equal(t, 0.0, breakdown.CryptoAddressScore)
	assert.Less(t, breakdown.TotalWeightedScore, 0.9, "disabled factor must not trigger the override")
}

func TestScoreWithBreakdown_Tracing(t *testing.T) {
	scorer := newTestScorer(t)

	tc := trace.NewContext("test-session")
	breakdown := scorer.ScoreWithBreakdown(
		prepare(t, person("Mohammad Reza Naqdi")),
		prepare(t, person("Mohammad Reza Naqdi")),
		0, tc,
	)

	captured := tc.ToTrace()
	require.NotNil(t, captured)
	assert.NotEmpty(t, captured.Events)
	require.NotNil(t, captured.Breakdown)
	assert.Equal(t, breakdown.TotalWeightedScore, captured.Breakdown.TotalWeightedScore)
	assert.NotEmpty(t, captured.EventsForPhase(trace.PhaseNameComparison))
}

func TestScore_UsesConfiguredFloor(t *testing.T) {
	sim := newTestScorer(t).similarity
	cfg := DefaultConfig() // MinMatch 0.75
	scorer, err := NewScorer(cfg, sim)
	require.NoError(t, err)

	t.Run("weak match clamps", func(t *testing.T) {
		score := scorer.Score(prepare(t, person("Aaa Bbb")), prepare(t, person("Zzz Yyy")))
		assert.Equal(t, 0.0, score)
	})

	t.Run("strong match passes", func(t *testing.T) {
		score := scorer.Score(prepare(t, person("Viktor Bout")), prepare(t, person("Viktor Bout")))
		assert.InDelta(t, 1.0, score, 0.001)
	})
}

func TestIsNameCloseEnough(t *testing.T) {
	scorer := newTestScorer(t)

	t.Run("identical names pass", func(t *testing.T) {
		assert.True(t, scorer.IsNameCloseEnough(prepare(t, person("John Smith")), prepare(t, person("John Smith"))))
	})

	t.Run("near names pass", func(t *testing.T) {
		assert.True(t, scorer.IsNameCloseEnough(prepare(t, person("Jon Smith")), prepare(t, person("John Smith"))))
	})

	t.Run("unrelated names are gated", func(t *testing.T) {
		assert.False(t, scorer.IsNameCloseEnough(prepare(t, person("Xi Wang")), prepare(t, person("Roberto Gonzalez Fernandez"))))
	})

	t.Run("missing names pass through", func(t *testing.T) {
		assert.True(t, scorer.IsNameCloseEnough(prepare(t, person("")), prepare(t, person("John Smith"))))
	})
}

func TestCompareEntityTypes_MismatchIsVisible(t *testing.T) {
	scorer := newTestScorer(t)

	query := person("Taliban")
	index := organization("Taliban")

	// Same name under different kinds still scores on the name; dates and
	// kind-specific identifiers contribute nothing.
	breakdown := scorer.ScoreWithBreakdown(prepare(t, query), prepare(t, index), 0, trace.Disabled)
	assert.InDelta(t, 1.0, breakdown.NameScore, 0.001)
	assert.Equal(t, 0.0, breakdown.DateScore)
}
