// Package analytics derives progress metrics from an interaction ledger.
// Every function is a pure, deterministic function of the slice it is given:
// no repository access, no clock, recomputable at any time regardless of
// whether a checkpoint ever ran.
package analytics

import (
	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"amira/domain/therapy"
)

// intensitySlopeBand is the slope magnitude below which the intensity trend
// reads as stable.
const intensitySlopeBand = 0.1

// Engine computes session and report metrics from interaction ledgers.
type Engine struct {
	// engagementTolerance is the relative band within which the two
	// half-ledger message-length means count as stable.
	engagementTolerance float64
}

// NewEngine creates an analytics engine with the given engagement tolerance
// (e.g. 0.05 for 5%).
func NewEngine(engagementTolerance float64) *Engine {
	return &Engine{engagementTolerance: engagementTolerance}
}

// EmotionalTrend tallies emotion tags across the ledger in first-seen order.
// Percentages are relative to the interactions carrying a non-empty tag.
func (e *Engine) EmotionalTrend(interactions []therapy.Interaction) []therapy.EmotionCount {
	counts := make(map[therapy.Emotion]int)
	order := make([]therapy.Emotion, 0)
	tagged := 0
	for _, in := range interactions {
		tag := in.Emotion.Primary
		if tag == "" {
			continue
		}
		tagged++
		if _, seen := counts[tag]; !seen {
			order = append(order, tag)
		}
		counts[tag]++
	}
	if tagged == 0 {
		return nil
	}
	trend := make([]therapy.EmotionCount, 0, len(order))
	for _, tag := range order {
		trend = append(trend, therapy.EmotionCount{
			Emotion:    tag,
			Count:      counts[tag],
			Percentage: float64(counts[tag]) / float64(tagged) * 100,
		})
	}
	return trend
}

// TechniqueEffectiveness measures, per technique, the percentage of uses
// after which the emotion tag moved out of the negative set. A use at
// ledger position i forms a data point from the tag at i-1 and the tag at i.
// Returns nil when the ledger has fewer than 2 interactions; techniques with
// no data point are absent from the map.
func (e *Engine) TechniqueEffectiveness(interactions []therapy.Interaction) map[therapy.Technique]*float64 {
	if len(interactions) < 2 {
		return nil
	}
	improved := make(map[therapy.Technique]int)
	total := make(map[therapy.Technique]int)
	for i := 1; i < len(interactions); i++ {
		t := interactions[i].Technique
		if t == "" {
			continue
		}
		total[t]++
		prev := interactions[i-1].Emotion.Primary
		curr := interactions[i].Emotion.Primary
		if prev.IsNegative() && !curr.IsNegative() {
			improved[t]++
		}
	}
	if len(total) == 0 {
		return nil
	}
	result := make(map[therapy.Technique]*float64, len(total))
	for t, n := range total {
		pct := float64(improved[t]) / float64(n) * 100
		result[t] = &pct
	}
	return result
}

// ProgressPercentage is the bounded, monotonic proxy metric
// min(100, 10 x letting-go usages). Not a clinical score.
func (e *Engine) ProgressPercentage(interactions []therapy.Interaction) int {
	count := 0
	for _, in := range interactions {
		if in.Technique == therapy.TechniqueLettingGo {
			count++
		}
	}
	if count > 10 {
		return 100
	}
	return count * 10
}

// EngagementTrend compares mean user-message length across the two halves of
// the ledger. Means within the tolerance band are stable.
func (e *Engine) EngagementTrend(interactions []therapy.Interaction) therapy.TrendDirection {
	if len(interactions) < 2 {
		return therapy.TrendStable
	}
	lengths := make([]float64, len(interactions))
	for i, in := range interactions {
		lengths[i] = float64(len(in.UserMessage))
	}
	mid := len(lengths) / 2
	firstMean, err1 := stats.Mean(lengths[:mid])
	secondMean, err2 := stats.Mean(lengths[mid:])
	if err1 != nil || err2 != nil {
		return therapy.TrendStable
	}
	if firstMean == 0 {
		if secondMean > 0 {
			return therapy.TrendIncreasing
		}
		return therapy.TrendStable
	}
	diff := (secondMean - firstMean) / firstMean
	switch {
	case diff > e.engagementTolerance:
		return therapy.TrendIncreasing
	case diff < -e.engagementTolerance:
		return therapy.TrendDecreasing
	}
	return therapy.TrendStable
}

// IntensityTrend fits a line through the emotion intensities (low=1..high=3)
// over ledger position and interprets the slope. Nil when fewer than two
// interactions carry an intensity.
func (e *Engine) IntensityTrend(interactions []therapy.Interaction) *therapy.IntensityTrend {
	xs := make([]float64, 0, len(interactions))
	ys := make([]float64, 0, len(interactions))
	for i, in := range interactions {
		scale := in.Emotion.Intensity.Scale()
		if scale == 0 {
			continue
		}
		xs = append(xs, float64(i))
		ys = append(ys, scale)
	}
	if len(ys) < 2 {
		return nil
	}
	_, slope := stat.LinearRegression(xs, ys, nil, false)
	trend := &therapy.IntensityTrend{Slope: slope}
	switch {
	case slope > intensitySlopeBand:
		trend.Interpretation = therapy.TrendIncreasing
	case slope < -intensitySlopeBand:
		trend.Interpretation = therapy.TrendDecreasing
	default:
		trend.Interpretation = therapy.TrendStable
	}
	return trend
}

// SessionMetrics assembles the metrics frozen into a session at close.
func (e *Engine) SessionMetrics(interactions []therapy.Interaction, classifications []therapy.Classification, durationSeconds float64) *therapy.SessionMetrics {
	return &therapy.SessionMetrics{
		InteractionCount:       len(interactions),
		DurationSeconds:        durationSeconds,
		EmotionalTrend:         e.EmotionalTrend(interactions),
		TechniqueEffectiveness: e.TechniqueEffectiveness(interactions),
		ProgressPercentage:     e.ProgressPercentage(interactions),
		EngagementTrend:        e.EngagementTrend(interactions),
		Classifications:        classifications,
	}
}

// ReportMetrics assembles the metrics attached to a compiled report.
func (e *Engine) ReportMetrics(interactions []therapy.Interaction, sessionCount int) therapy.ReportMetrics {
	m := therapy.ReportMetrics{
		InteractionCount:       len(interactions),
		SessionCount:           sessionCount,
		EmotionDistribution:    e.EmotionalTrend(interactions),
		TechniqueEffectiveness: e.TechniqueEffectiveness(interactions),
		ProgressPercentage:     e.ProgressPercentage(interactions),
		EngagementTrend:        e.EngagementTrend(interactions),
		IntensityTrend:         e.IntensityTrend(interactions),
	}
	if len(interactions) > 0 {
		first := interactions[0].Timestamp
		last := interactions[len(interactions)-1].Timestamp
		m.FirstInteraction = &first
		m.LastInteraction = &last
	}
	return m
}
