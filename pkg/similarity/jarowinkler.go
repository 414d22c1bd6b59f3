package similarity

import (
	"github.com/xrash/smetrics"
)

// JaroWinkler scores a single token pair. On top of the base metric two
// penalties stack multiplicatively, length ratio first, then first-character
// mismatch. Empty input scores 0; missing data never matches anything.
func (s *Scorer) JaroWinkler(s1, s2 string) float64 {
	if s1 == "" || s2 == "" {
		return 0
	}

	score := smetrics.JaroWinkler(s1, s2, s.cfg.BoostThreshold, s.cfg.PrefixSize)

	if ratio := lengthRatio(s1, s2); ratio < s.cfg.LengthRatioCutoff {
		score *= s.scalingFactor(ratio, s.cfg.LengthPenaltyWeight)
	}
	if s1[0] != s2[0] {
		score *= s.cfg.FirstCharPenalty
	}
	return clamp01(score)
}

// jaroScore is the plain transposition-aware Jaro metric, without the Winkler
// prefix boost or any custom penalty. The containment blend uses it; boosted
// scores there would double-count the shared prefix.
func jaroScore(s1, s2 string) float64 {
	if s1 == "" || s2 == "" {
		return 0
	}
	return smetrics.Jaro(s1, s2)
}

func lengthRatio(s1, s2 string) float64 {
	shorter, longer := len(s1), len(s2)
	if shorter > longer {
		shorter, longer = longer, shorter
	}
	if longer == 0 {
		return 1
	}
	return float64(shorter) / float64(longer)
}
