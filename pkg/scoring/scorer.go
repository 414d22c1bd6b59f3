// Package scoring combines per-factor comparisons into one calibrated match
// confidence. Names are fuzzy, identifiers are exact, everything else sits in
// between; the aggregator weighs whatever evidence both records actually
// carry and renormalizes so missing fields never drag a score toward zero.
package scoring

import (
	"fmt"
	"strings"

	"github.com/Ramsey-B/briar/pkg/models"
	"github.com/Ramsey-B/briar/pkg/similarity"
	"github.com/Ramsey-B/briar/pkg/trace"
)

// Config controls factor weights, the per-factor kill switches and the
// false-positive floor. Weights are relative, not percentages; identifiers
// outweigh names because a shared passport number is harder to explain away
// than a similar name.
type Config struct {
	// NameWeight applies to the stronger of primary and alternate names.
	NameWeight float64
	// AddressWeight applies to the best postal address pairing.
	AddressWeight float64
	// CriticalIDWeight applies to each exact-identifier factor: government
	// IDs, crypto wallets and contact channels.
	CriticalIDWeight float64
	// SupportingInfoWeight applies to each circumstantial factor: dates,
	// sanctions programs and historical values.
	SupportingInfoWeight float64

	// MinMatch clamps final scores below it to 0. Call paths pick their own
	// floor; the default serves name-driven search.
	MinMatch float64
	// NameGate is the quick-similarity threshold under which candidates are
	// skipped before full scoring.
	NameGate float64

	NameEnabled           bool
	AltNamesEnabled       bool
	AddressEnabled        bool
	GovernmentIDEnabled   bool
	CryptoEnabled         bool
	ContactEnabled        bool
	DatesEnabled          bool
	SupportingInfoEnabled bool
}

// DefaultConfig returns the production weight table with every factor on
func DefaultConfig() Config {
	return Config{
		NameWeight:           35.0,
		AddressWeight:        25.0,
		CriticalIDWeight:     50.0,
		SupportingInfoWeight: 15.0,
		MinMatch:             0.75,
		NameGate:             0.4,

		NameEnabled:           true,
		AltNamesEnabled:       true,
		AddressEnabled:        true,
		GovernmentIDEnabled:   true,
		CryptoEnabled:         true,
		ContactEnabled:        true,
		DatesEnabled:          true,
		SupportingInfoEnabled: true,
	}
}

// Validate rejects configurations that cannot produce sane scores
func (c Config) Validate() error {
	if c.NameWeight <= 0 || c.AddressWeight <= 0 || c.CriticalIDWeight <= 0 || c.SupportingInfoWeight <= 0 {
		return fmt.Errorf("factor weights must be positive")
	}
	if c.MinMatch < 0 || c.MinMatch >= 1 {
		return fmt.Errorf("min match %v out of range [0,1)", c.MinMatch)
	}
	if c.NameGate < 0 || c.NameGate > 1 {
		return fmt.Errorf("name gate %v out of range [0,1]", c.NameGate)
	}
	if !c.NameEnabled && !c.AltNamesEnabled && !c.AddressEnabled && !c.GovernmentIDEnabled &&
		!c.CryptoEnabled && !c.ContactEnabled && !c.DatesEnabled && !c.SupportingInfoEnabled {
		return fmt.Errorf("at least one factor must be enabled")
	}
	return nil
}

// Scorer scores query entities against list entries. Stateless after
// construction and safe for concurrent use; entities should be prepared
// before scoring so normalization work is not repeated per candidate.
type Scorer struct {
	cfg        Config
	similarity *similarity.Scorer
}

// NewScorer creates a Scorer over the given similarity metric
func NewScorer(cfg Config, sim *similarity.Scorer) (*Scorer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scoring config: %w", err)
	}
	return &Scorer{
		cfg:        cfg,
		similarity: sim,
	}, nil
}

// Config returns the effective configuration
func (s *Scorer) Config() Config {
	return s.cfg
}

// Score runs the full comparison and returns only the final confidence,
// with the configured floor applied.
func (s *Scorer) Score(query, index *models.Entity) float64 {
	return s.ScoreWithBreakdown(query, index, s.cfg.MinMatch, trace.Disabled).TotalWeightedScore
}

// ScoreWithBreakdown compares two entities factor by factor and aggregates
// into a final confidence. minMatch overrides the configured floor for this
// call; pass 0 to disable clamping. The breakdown always reports every
// factor's raw score even when the total clamps to zero.
func (s *Scorer) ScoreWithBreakdown(query, index *models.Entity, minMatch float64, tc trace.ScoringContext) models.ScoreBreakdown {
	// A shared trusted identifier ends the debate. List entries carry
	// source ids; a query that supplies one is asserting provenance, not
	// guessing.
	if query.SourceID != "" && strings.EqualFold(query.SourceID, index.SourceID) {
		tc.Record(trace.PhaseAggregation, "source id match, bypassing field comparisons")
		breakdown := exactBreakdown()
		tc.SetBreakdown(breakdown)
		return breakdown
	}

	primary, alt := s.compareNames(query, index, tc)

	var address, govID, crypto, contact, dates, supporting models.ScorePiece
	if s.cfg.AddressEnabled {
		address = s.BestAddressMatch(query.Addresses, index.Addresses, s.cfg.AddressWeight)
		recordPiece(tc, trace.PhaseAddressComparison, "compared addresses", address)
	}
	if s.cfg.GovernmentIDEnabled {
		govID = s.compareGovernmentIDs(query, index)
		recordPiece(tc, trace.PhaseGovIDComparison, "compared government ids", govID)
	}
	if s.cfg.CryptoEnabled {
		crypto = CompareCryptoAddresses(query.CryptoAddresses, index.CryptoAddresses, s.cfg.CriticalIDWeight)
		recordPiece(tc, trace.PhaseCryptoComparison, "compared crypto addresses", crypto)
	}
	if s.cfg.ContactEnabled {
		contact = CompareContact(query.Contact, index.Contact, s.cfg.CriticalIDWeight)
		recordPiece(tc, trace.PhaseContactComparison, "compared contact channels", contact)
	}
	if s.cfg.DatesEnabled {
		dates = CompareEntityDates(query, index, s.cfg.SupportingInfoWeight)
		recordPiece(tc, trace.PhaseDateComparison, "compared dates", dates)
	}
	if s.cfg.SupportingInfoEnabled {
		supporting = s.CompareSupportingInfo(query, index, s.cfg.SupportingInfoWeight)
		recordPiece(tc, trace.PhaseAggregation, "compared supporting info", supporting)
	}

	breakdown := models.ScoreBreakdown{
		NameScore:           primary.Score,
		AltNamesScore:       alt.Score,
		AddressScore:        address.Score,
		GovernmentIDScore:   govID.Score,
		CryptoAddressScore:  crypto.Score,
		ContactScore:        contact.Score,
		DateScore:           dates.Score,
		SupportingInfoScore: supporting.Score,
	}

	// The name factor enters once, as the stronger of the two name pieces.
	// Averaging primary against alternates would let a weak alias drag down
	// a strong direct hit.
	name := primary
	if alt.Score > name.Score {
		name = alt
	}
	name.Weight = s.cfg.NameWeight

	pieces := []models.ScorePiece{name, address, govID, crypto, contact, dates, supporting}
	weightedSum := 0.0
	totalWeight := 0.0
	for _, piece := range pieces {
		if piece.Score <= 0 || piece.FieldsCompared == 0 {
			continue
		}
		weightedSum += piece.Score * piece.Weight
		totalWeight += piece.Weight
	}

	final := 0.0
	if totalWeight > 0 {
		final = weightedSum / totalWeight
	}

	// An exact identifier dominates: the score floor jumps to 0.9 and the
	// name similarity only arbitrates the last tenth.
	if exactIdentifier(govID, crypto, contact) {
		final = 0.9 + breakdown.BestNameScore()*0.1
		tc.RecordData(trace.PhaseAggregation, "exact identifier override", func() map[string]any {
			return map[string]any{"bestNameScore": breakdown.BestNameScore(), "finalScore": final}
		})
	}

	if final < minMatch {
		tc.RecordData(trace.PhaseFiltering, "score below minimum match floor", func() map[string]any {
			return map[string]any{"score": final, "minMatch": minMatch}
		})
		final = 0
	}

	breakdown.TotalWeightedScore = final
	tc.SetBreakdown(breakdown)
	return breakdown
}

// IsNameCloseEnough is the cheap pre-filter the search path runs before full
// scoring. Entities without name data pass so identifier-only records stay
// comparable.
func (s *Scorer) IsNameCloseEnough(query, index *models.Entity) bool {
	qTokens := nameTokens(query)
	iTokens := nameTokens(index)
	if len(qTokens) == 0 || len(iTokens) == 0 {
		return true
	}
	return s.similarity.TokenizedSimilarity(qTokens, iTokens) >= s.cfg.NameGate
}

// compareNames scores the primary pairing and the best alternate pairing.
// The alternate piece covers every pairing that involves an alias on either
// side: that is how a query for a birth name hits an entry listed under a
// nom de guerre.
func (s *Scorer) compareNames(query, index *models.Entity, tc trace.ScoringContext) (primary, alt models.ScorePiece) {
	primary = models.ScorePiece{Weight: s.cfg.NameWeight, PieceType: models.PieceName}
	alt = models.ScorePiece{Weight: s.cfg.NameWeight, PieceType: models.PieceAltNames}

	queryCombos := nameCombinations(query)
	indexCombos := nameCombinations(index)

	if s.cfg.NameEnabled && len(queryCombos) > 0 && len(indexCombos) > 0 {
		primary.FieldsCompared = 1
		primary.Score = s.similarity.CombinationSimilarity(queryCombos, indexCombos)
		primary.Matched = primary.Score > 0.7
		primary.Exact = primary.Score > 0.99
		recordPiece(tc, trace.PhaseNameComparison, "compared primary names", primary)
	}

	if !s.cfg.AltNamesEnabled {
		return primary, alt
	}

	queryAlts := altCombinations(query)
	indexAlts := altCombinations(index)

	best := 0.0
	compared := false
	score := func(q, i [][]string) {
		compared = true
		if v := s.similarity.CombinationSimilarity(q, i); v > best {
			best = v
		}
	}
	for _, ia := range indexAlts {
		if len(queryCombos) > 0 {
			score(queryCombos, ia)
		}
		for _, qa := range queryAlts {
			score(qa, ia)
		}
	}
	for _, qa := range queryAlts {
		if len(indexCombos) > 0 {
			score(qa, indexCombos)
		}
	}

	if compared {
		alt.FieldsCompared = 1
		alt.Score = best
		alt.Matched = best > 0.7
		alt.Exact = best > 0.99
		recordPiece(tc, trace.PhaseAltNameComparison, "compared alternate names", alt)
	}
	return primary, alt
}

// compareGovernmentIDs dispatches identifier comparison by entity kind.
// Vessels and aircraft match on registry identifiers; when a registry field
// is absent on either side the entity-level government ids still count.
func (s *Scorer) compareGovernmentIDs(query, index *models.Entity) models.ScorePiece {
	weight := s.cfg.CriticalIDWeight
	if query.EntityType == models.EntityTypeVessel && index.EntityType == models.EntityTypeVessel {
		if piece := CompareVesselIDs(query.Vessel, index.Vessel, weight); piece.FieldsCompared > 0 {
			return piece
		}
	}
	if query.EntityType == models.EntityTypeAircraft && index.EntityType == models.EntityTypeAircraft {
		if piece := CompareAircraftIDs(query.Aircraft, index.Aircraft, weight); piece.FieldsCompared > 0 {
			return piece
		}
	}
	return CompareGovernmentIDs(query.GovernmentIDs, index.GovernmentIDs, weight)
}

// exactIdentifier reports whether any critical factor matched outright
func exactIdentifier(pieces ...models.ScorePiece) bool {
	for _, piece := range pieces {
		if piece.FieldsCompared > 0 && piece.Score >= 0.99 {
			return true
		}
	}
	return false
}

func exactBreakdown() models.ScoreBreakdown {
	return models.ScoreBreakdown{
		NameScore:           1.0,
		AltNamesScore:       1.0,
		AddressScore:        1.0,
		GovernmentIDScore:   1.0,
		CryptoAddressScore:  1.0,
		ContactScore:        1.0,
		DateScore:           1.0,
		SupportingInfoScore: 1.0,
		TotalWeightedScore:  1.0,
	}
}

// nameTokens returns the token split of the primary name, preferring the
// prepared cache
func nameTokens(e *models.Entity) []string {
	if e.Prepared != nil {
		return e.Prepared.NameTokens
	}
	return strings.Fields(strings.ToLower(e.Name))
}

// nameCombinations returns the combination variants of the primary name,
// preferring the prepared cache
func nameCombinations(e *models.Entity) [][]string {
	if e.Prepared != nil {
		return e.Prepared.NameCombinations
	}
	tokens := strings.Fields(strings.ToLower(e.Name))
	if len(tokens) == 0 {
		return nil
	}
	return similarity.GenerateCombinations(tokens)
}

// altCombinations returns combination variants for each alternate name
func altCombinations(e *models.Entity) [][][]string {
	var tokenLists [][]string
	if e.Prepared != nil {
		tokenLists = e.Prepared.AltNameTokens
	} else {
		for _, alt := range e.AltNames {
			if tokens := strings.Fields(strings.ToLower(alt)); len(tokens) > 0 {
				tokenLists = append(tokenLists, tokens)
			}
		}
	}
	out := make([][][]string, 0, len(tokenLists))
	for _, tokens := range tokenLists {
		out = append(out, similarity.GenerateCombinations(tokens))
	}
	return out
}

// recordPiece emits one factor's outcome to the scoring trace
func recordPiece(tc trace.ScoringContext, phase trace.Phase, description string, piece models.ScorePiece) {
	if piece.FieldsCompared == 0 {
		return
	}
	tc.RecordData(phase, description, func() map[string]any {
		return map[string]any{
			"score":          piece.Score,
			"matched":        piece.Matched,
			"exact":          piece.Exact,
			"fieldsCompared": piece.FieldsCompared,
		}
	})
}
