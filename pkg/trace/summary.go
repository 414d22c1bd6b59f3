package trace

import (
	"fmt"
	"sort"
	"strings"
)

// Summary condenses a scoring trace into a plain-language report for
// analysts reviewing a screening decision.
type Summary struct {
	SessionID           string              `json:"sessionId"`
	TotalEntitiesScored int                 `json:"totalEntitiesScored"`
	TotalDurationMs     int64               `json:"totalDurationMs"`
	TopPhases           []PhaseContribution `json:"topPhases"`
	ScoreExplanation    string              `json:"scoreExplanation"`
	PerformanceInsights string              `json:"performanceInsights"`
	KeyInsights         []string            `json:"keyInsights"`
}

// PhaseContribution counts how many events a phase contributed to a session.
type PhaseContribution struct {
	Phase Phase `json:"phase"`
	Count int   `json:"count"`
}

// Summarize builds a Summary from a recorded trace
func Summarize(t *ScoringTrace) Summary {
	if t == nil {
		return Summary{}
	}
	return Summary{
		SessionID:           t.SessionID,
		TotalEntitiesScored: entitiesScored(t.Events),
		TotalDurationMs:     t.DurationMs,
		TopPhases:           topPhases(t.Events),
		ScoreExplanation:    explainScore(t),
		PerformanceInsights: analyzePerformance(t.Events),
		KeyInsights:         keyInsights(t),
	}
}

// entitiesScored counts scored entities. Every entity finishes with an
// aggregation event, so the aggregation count is the entity count.
func entitiesScored(events []ScoringEvent) int {
	count := 0
	for _, event := range events {
		if event.Phase == PhaseAggregation {
			count++
		}
	}
	return count
}

func topPhases(events []ScoringEvent) []PhaseContribution {
	counts := make(map[Phase]int)
	for _, event := range events {
		counts[event.Phase]++
	}

	contributions := make([]PhaseContribution, 0, len(counts))
	for phase, count := range counts {
		contributions = append(contributions, PhaseContribution{Phase: phase, Count: count})
	}
	sort.Slice(contributions, func(i, j int) bool {
		if contributions[i].Count != contributions[j].Count {
			return contributions[i].Count > contributions[j].Count
		}
		return contributions[i].Phase < contributions[j].Phase
	})

	if len(contributions) > 3 {
		contributions = contributions[:3]
	}
	return contributions
}

func analyzePerformance(events []ScoringEvent) string {
	totals := make(map[Phase]float64)
	counts := make(map[Phase]int)
	for _, event := range events {
		ms, ok := durationMs(event.Data)
		if !ok {
			continue
		}
		totals[event.Phase] += ms
		counts[event.Phase]++
	}

	var slowest Phase
	slowestAvg := 0.0
	for phase, total := range totals {
		avg := total / float64(counts[phase])
		if avg > slowestAvg {
			slowest = phase
			slowestAvg = avg
		}
	}

	if slowestAvg > 10 {
		return fmt.Sprintf("%s is the slowest phase (avg %.1fms)", slowest, slowestAvg)
	}
	return "All phases performing within normal range"
}

func durationMs(data map[string]any) (float64, bool) {
	raw, ok := data["durationMs"]
	if !ok {
		return 0, false
	}
	switch v := raw.(type) {
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}

func explainScore(t *ScoringTrace) string {
	if t.Breakdown == nil {
		return "No score breakdown available"
	}
	b := t.Breakdown

	var factors []string
	addFactor := func(label string, score float64) {
		if score > 0 {
			factors = append(factors, fmt.Sprintf("%s: %d%%", label, int(score*100)))
		}
	}
	addFactor("Primary name match", b.NameScore)
	addFactor("Alternative names", b.AltNamesScore)
	addFactor("Address match", b.AddressScore)
	addFactor("Government ID", b.GovernmentIDScore)
	addFactor("Cryptocurrency", b.CryptoAddressScore)
	addFactor("Contact info", b.ContactScore)
	addFactor("Date of birth", b.DateScore)

	if len(factors) == 0 {
		return "No significant matches found"
	}
	return fmt.Sprintf("Score factors: %s. Final weighted score: %d%%",
		strings.Join(factors, ", "), int(b.TotalWeightedScore*100))
}

func keyInsights(t *ScoringTrace) []string {
	var insights []string

	if b := t.Breakdown; b != nil {
		if b.NameScore > 0.9 && b.TotalWeightedScore < 0.85 {
			insights = append(insights, "Strong name match, but limited supporting evidence from other fields")
		}

		strong := 0
		for _, score := range []float64{b.NameScore, b.AltNamesScore, b.AddressScore, b.GovernmentIDScore} {
			if score > 0.85 {
				strong++
			}
		}
		if strong >= 3 {
			insights = append(insights, "High confidence match with multiple strong indicators")
		}

		if b.NameScore > 0.8 && b.AltNamesScore == 0 && b.AddressScore == 0 && b.GovernmentIDScore == 0 {
			insights = append(insights, "Match based solely on name similarity - consider requesting additional identifying information")
		}
	}

	if t.DurationMs > 100 {
		insights = append(insights, fmt.Sprintf("Processing took longer than usual (%dms) - consider optimizing or reviewing data quality", t.DurationMs))
	}

	return insights
}
