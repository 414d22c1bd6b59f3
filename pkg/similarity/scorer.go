// Package similarity implements the tokenized name similarity metric
// screening runs on: a customized Jaro-Winkler with length and first-letter
// penalties, best-pair token matching with an asymmetric unmatched-token
// penalty, and token regrouping for names whose word boundaries drift between
// lists ("JSC ARGUMENT" vs "JSCARGUMENT").
package similarity

import (
	"fmt"
	"strings"

	"github.com/Ramsey-B/briar/pkg/phonetics"
)

// Config carries the tuned constants of the metric. The defaults are
// calibrated against known list pairs; changing any of them shifts every
// score in the system, so overrides belong in deliberate recalibration, not
// per-call tweaking.
type Config struct {
	// BoostThreshold is the minimum base Jaro score before the Winkler
	// prefix boost applies.
	BoostThreshold float64
	// PrefixSize caps how many leading characters the Winkler boost counts.
	PrefixSize int
	// LengthRatioCutoff is the min/max length ratio below which the length
	// difference penalty kicks in.
	LengthRatioCutoff float64
	// LengthPenaltyWeight scales the length difference penalty.
	LengthPenaltyWeight float64
	// FirstCharPenalty multiplies the score when first characters differ.
	FirstCharPenalty float64
	// UnmatchedPenaltyWeight scales the penalty for candidate tokens the
	// query never matched. Query-side extras are deliberately unpenalized.
	UnmatchedPenaltyWeight float64
	// TokenBlendWeight and FullStringBlendWeight mix the token average with
	// the whole-string Jaro score when a single token meets a multi-token
	// name. They must sum to 1.
	TokenBlendWeight      float64
	FullStringBlendWeight float64
	// EnablePhoneticFilter turns on the sound-class short circuit.
	EnablePhoneticFilter bool
}

// DefaultConfig returns the calibrated constants
func DefaultConfig() Config {
	return Config{
		BoostThreshold:         0.7,
		PrefixSize:             4,
		LengthRatioCutoff:      0.9,
		LengthPenaltyWeight:    0.3,
		FirstCharPenalty:       0.9,
		UnmatchedPenaltyWeight: 0.15,
		TokenBlendWeight:       0.6,
		FullStringBlendWeight:  0.4,
		EnablePhoneticFilter:   true,
	}
}

// Validate rejects constants that would push scores outside [0,1]
func (c Config) Validate() error {
	if c.BoostThreshold < 0 || c.BoostThreshold > 1 {
		return fmt.Errorf("boost threshold %v out of range [0,1]", c.BoostThreshold)
	}
	if c.PrefixSize < 0 {
		return fmt.Errorf("prefix size %d must not be negative", c.PrefixSize)
	}
	if c.LengthRatioCutoff <= 0 || c.LengthRatioCutoff > 1 {
		return fmt.Errorf("length ratio cutoff %v out of range (0,1]", c.LengthRatioCutoff)
	}
	if c.LengthPenaltyWeight < 0 || c.LengthPenaltyWeight > 1 {
		return fmt.Errorf("length penalty weight %v out of range [0,1]", c.LengthPenaltyWeight)
	}
	if c.FirstCharPenalty <= 0 || c.FirstCharPenalty > 1 {
		return fmt.Errorf("first char penalty %v out of range (0,1]", c.FirstCharPenalty)
	}
	if c.UnmatchedPenaltyWeight < 0 || c.UnmatchedPenaltyWeight > 1 {
		return fmt.Errorf("unmatched penalty weight %v out of range [0,1]", c.UnmatchedPenaltyWeight)
	}
	if c.TokenBlendWeight < 0 || c.FullStringBlendWeight < 0 {
		return fmt.Errorf("blend weights must not be negative")
	}
	if sum := c.TokenBlendWeight + c.FullStringBlendWeight; sum < 0.999 || sum > 1.001 {
		return fmt.Errorf("blend weights sum to %v, want 1", sum)
	}
	return nil
}

// Scorer computes name similarity. It is stateless after construction and
// safe for concurrent use.
type Scorer struct {
	cfg    Config
	filter *phonetics.Filter
}

// NewScorer creates a Scorer, validating the config eagerly so a bad weight
// table fails at startup instead of skewing production scores.
func NewScorer(cfg Config) (*Scorer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid similarity config: %w", err)
	}
	return &Scorer{
		cfg:    cfg,
		filter: phonetics.NewFilter(cfg.EnablePhoneticFilter),
	}, nil
}

// Similarity compares two raw name strings. Inputs are expected to already be
// normalized; this splits on whitespace and runs the tokenized metric.
func (s *Scorer) Similarity(query, index string) float64 {
	return s.TokenizedSimilarity(strings.Fields(query), strings.Fields(index))
}

// TokenizedSimilarity is the primary entry point. Equal token sets match
// outright regardless of word order. Phonetically impossible pairs score 0
// without further work. Everything else is scored as the best pairing over
// every combination variant of both sides, with a containment blend when a
// single token meets a multi-token name.
func (s *Scorer) TokenizedSimilarity(queryTokens, indexTokens []string) float64 {
	return s.CombinationSimilarity(GenerateCombinations(queryTokens), GenerateCombinations(indexTokens))
}

// CombinationSimilarity scores pre-generated combination variants, letting
// callers reuse variants cached on prepared entities. The first variant of
// each side must be the original tokenization.
func (s *Scorer) CombinationSimilarity(queryVariants, indexVariants [][]string) float64 {
	if len(queryVariants) == 0 || len(indexVariants) == 0 {
		return 0
	}
	queryTokens := queryVariants[0]
	indexTokens := indexVariants[0]
	if len(queryTokens) == 0 || len(indexTokens) == 0 {
		return 0
	}

	if tokenSetsEqual(queryTokens, indexTokens) {
		return 1
	}

	if s.filter.ShouldFilter(strings.Join(queryTokens, " "), strings.Join(indexTokens, " ")) {
		return 0
	}

	best := 0.0
	for _, qv := range queryVariants {
		for _, iv := range indexVariants {
			if score := s.variantScore(qv, iv); score > best {
				best = score
			}
		}
	}
	return clamp01(best)
}

// variantScore scores one pairing of token groupings
func (s *Scorer) variantScore(queryTokens, indexTokens []string) float64 {
	if len(queryTokens) == 0 || len(indexTokens) == 0 {
		return 0
	}
	if tokenSetsEqual(queryTokens, indexTokens) {
		return 1
	}
	if (len(queryTokens) == 1) != (len(indexTokens) == 1) {
		return s.singleTokenScore(queryTokens, indexTokens)
	}
	return s.BestPairsJaroWinkler(queryTokens, indexTokens)
}

// singleTokenScore handles the containment case where one side is a single
// token. The token average alone over-penalizes "TALIBAN" against "TALIBAN
// ORGANIZATION", so it is blended with a whole-string Jaro score that gives
// partial credit for the shared span.
func (s *Scorer) singleTokenScore(queryTokens, indexTokens []string) float64 {
	single := queryTokens
	multi := indexTokens
	if len(indexTokens) == 1 {
		single, multi = indexTokens, queryTokens
	}

	tokenAverage := 0.0
	for _, tok := range multi {
		if score := s.JaroWinkler(single[0], tok); score > tokenAverage {
			tokenAverage = score
		}
	}

	fullString := jaroScore(strings.Join(queryTokens, " "), strings.Join(indexTokens, " "))
	return s.cfg.TokenBlendWeight*tokenAverage + s.cfg.FullStringBlendWeight*fullString
}

// BestPairsJaroWinkler matches every query token to its best counterpart and
// averages the pair scores weighted by combined character length, so long
// tokens dominate the way they dominate reading a name. Candidate tokens the
// query never matched drag the score down; query tokens without a good
// counterpart do not, since verbose queries are common and harmless while an
// unexplained extra word on a list entry is not.
func (s *Scorer) BestPairsJaroWinkler(queryTokens, indexTokens []string) float64 {
	if len(queryTokens) == 0 || len(indexTokens) == 0 {
		return 0
	}

	matched := make(map[int]bool, len(indexTokens))
	weightedSum := 0.0
	totalWeight := 0.0
	for _, qt := range queryTokens {
		bestScore := 0.0
		bestIdx := -1
		for i, it := range indexTokens {
			if score := s.JaroWinkler(qt, it); score > bestScore {
				bestScore = score
				bestIdx = i
			}
		}
		if bestIdx < 0 {
			continue
		}
		matched[bestIdx] = true
		weight := float64(len(qt) + len(indexTokens[bestIdx]))
		weightedSum += bestScore * weight
		totalWeight += weight
	}
	if totalWeight == 0 {
		return 0
	}
	score := weightedSum / totalWeight

	matchedChars := 0
	totalChars := 0
	for i, it := range indexTokens {
		totalChars += len(it)
		if matched[i] {
			matchedChars += len(it)
		}
	}
	if totalChars > 0 && matchedChars < totalChars {
		fraction := float64(matchedChars) / float64(totalChars)
		score *= s.scalingFactor(fraction, s.cfg.UnmatchedPenaltyWeight)
	}
	return clamp01(score)
}

// scalingFactor converts a [0,1] metric into a multiplicative penalty whose
// bite is controlled by weight: 1 leaves a perfect metric untouched, weight=0
// disables the penalty entirely.
func (s *Scorer) scalingFactor(metric, weight float64) float64 {
	return 1 - (1-metric)*weight
}

func tokenSetsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	counts := make(map[string]int, len(a))
	for _, tok := range a {
		counts[tok]++
	}
	for _, tok := range b {
		counts[tok]--
		if counts[tok] < 0 {
			return false
		}
	}
	return true
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
