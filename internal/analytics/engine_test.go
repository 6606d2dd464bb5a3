package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"amira/domain/therapy"
)

func tagged(emotion therapy.Emotion, technique therapy.Technique) therapy.Interaction {
	return therapy.Interaction{
		UserMessage: "message",
		Emotion:     therapy.EmotionAnalysis{Primary: emotion, Intensity: therapy.IntensityMedium},
		Technique:   technique,
	}
}

// Five interactions tagged [sad, sad, happy, sad, happy] with no letting-go
// use: progress 0, trend 60/40 in first-seen order.
func TestEmotionalTrend_TallyAndOrder(t *testing.T) {
	e := NewEngine(0.05)
	interactions := []therapy.Interaction{
		tagged("sad", therapy.TechniqueStandard),
		tagged("sad", therapy.TechniqueStandard),
		tagged("happy", therapy.TechniqueStandard),
		tagged("sad", therapy.TechniqueStandard),
		tagged("happy", therapy.TechniqueStandard),
	}

	assert.Equal(t, 0, e.ProgressPercentage(interactions))

	trend := e.EmotionalTrend(interactions)
	require.Len(t, trend, 2)
	assert.Equal(t, therapy.Emotion("sad"), trend[0].Emotion)
	assert.Equal(t, 3, trend[0].Count)
	assert.InDelta(t, 60.0, trend[0].Percentage, 0.001)
	assert.Equal(t, therapy.Emotion("happy"), trend[1].Emotion)
	assert.Equal(t, 2, trend[1].Count)
	assert.InDelta(t, 40.0, trend[1].Percentage, 0.001)
}

func TestEmotionalTrend_IgnoresUntagged(t *testing.T) {
	e := NewEngine(0.05)
	interactions := []therapy.Interaction{
		tagged("", therapy.TechniqueStandard),
		tagged("sad", therapy.TechniqueStandard),
	}
	trend := e.EmotionalTrend(interactions)
	require.Len(t, trend, 1)
	assert.InDelta(t, 100.0, trend[0].Percentage, 0.001)

	assert.Nil(t, e.EmotionalTrend([]therapy.Interaction{tagged("", "")}))
}

// Third interaction uses letting_go and the tag moves anxiety -> happy:
// effectiveness 100% on one data point.
func TestTechniqueEffectiveness_SingleImprovedPair(t *testing.T) {
	e := NewEngine(0.05)
	interactions := []therapy.Interaction{
		tagged("anxiety", therapy.TechniqueStandard),
		tagged("anxiety", therapy.TechniqueStandard),
		tagged("happy", therapy.TechniqueLettingGo),
	}

	result := e.TechniqueEffectiveness(interactions)
	require.NotNil(t, result)
	require.Contains(t, result, therapy.TechniqueLettingGo)
	assert.InDelta(t, 100.0, *result[therapy.TechniqueLettingGo], 0.001)
}

func TestTechniqueEffectiveness_UndefinedUnderTwoInteractions(t *testing.T) {
	e := NewEngine(0.05)
	assert.Nil(t, e.TechniqueEffectiveness(nil))
	assert.Nil(t, e.TechniqueEffectiveness([]therapy.Interaction{tagged("sad", therapy.TechniqueLettingGo)}))
}

func TestTechniqueEffectiveness_NotImproved(t *testing.T) {
	e := NewEngine(0.05)
	interactions := []therapy.Interaction{
		tagged("anxiety", therapy.TechniqueStandard),
		tagged("sadness", therapy.TechniqueLettingGo),
	}
	result := e.TechniqueEffectiveness(interactions)
	require.NotNil(t, result)
	assert.InDelta(t, 0.0, *result[therapy.TechniqueLettingGo], 0.001)
}

func TestProgressPercentage_Bounds(t *testing.T) {
	e := NewEngine(0.05)

	var interactions []therapy.Interaction
	for i := 0; i <= 15; i++ {
		got := e.ProgressPercentage(interactions)
		assert.GreaterOrEqual(t, got, 0)
		assert.LessOrEqual(t, got, 100)
		if i <= 10 {
			assert.Equal(t, i*10, got)
		} else {
			assert.Equal(t, 100, got)
		}
		interactions = append(interactions, tagged("sad", therapy.TechniqueLettingGo))
	}
}

func TestEngagementTrend(t *testing.T) {
	e := NewEngine(0.05)

	longer := func(n int) therapy.Interaction {
		msg := make([]byte, n)
		for i := range msg {
			msg[i] = 'a'
		}
		return therapy.Interaction{UserMessage: string(msg)}
	}

	assert.Equal(t, therapy.TrendStable, e.EngagementTrend(nil))
	assert.Equal(t, therapy.TrendStable, e.EngagementTrend([]therapy.Interaction{longer(10)}))

	increasing := []therapy.Interaction{longer(10), longer(10), longer(30), longer(30)}
	assert.Equal(t, therapy.TrendIncreasing, e.EngagementTrend(increasing))

	decreasing := []therapy.Interaction{longer(30), longer(30), longer(10), longer(10)}
	assert.Equal(t, therapy.TrendDecreasing, e.EngagementTrend(decreasing))

	stable := []therapy.Interaction{longer(100), longer(100), longer(102), longer(102)}
	assert.Equal(t, therapy.TrendStable, e.EngagementTrend(stable))
}

func TestIntensityTrend(t *testing.T) {
	e := NewEngine(0.05)

	assert.Nil(t, e.IntensityTrend(nil))

	at := func(i therapy.Intensity) therapy.Interaction {
		return therapy.Interaction{Emotion: therapy.EmotionAnalysis{Primary: "sad", Intensity: i}}
	}

	rising := []therapy.Interaction{at(therapy.IntensityLow), at(therapy.IntensityMedium), at(therapy.IntensityHigh)}
	trend := e.IntensityTrend(rising)
	require.NotNil(t, trend)
	assert.Equal(t, therapy.TrendIncreasing, trend.Interpretation)
	assert.Greater(t, trend.Slope, 0.0)

	falling := []therapy.Interaction{at(therapy.IntensityHigh), at(therapy.IntensityMedium), at(therapy.IntensityLow)}
	trend = e.IntensityTrend(falling)
	require.NotNil(t, trend)
	assert.Equal(t, therapy.TrendDecreasing, trend.Interpretation)

	flat := []therapy.Interaction{at(therapy.IntensityMedium), at(therapy.IntensityMedium), at(therapy.IntensityMedium)}
	trend = e.IntensityTrend(flat)
	require.NotNil(t, trend)
	assert.Equal(t, therapy.TrendStable, trend.Interpretation)
}

func TestReportMetrics_FirstAndLastInteraction(t *testing.T) {
	e := NewEngine(0.05)

	m := e.ReportMetrics(nil, 0)
	assert.Nil(t, m.FirstInteraction)
	assert.Nil(t, m.LastInteraction)
	assert.Equal(t, 0, m.InteractionCount)

	interactions := []therapy.Interaction{
		tagged("sad", therapy.TechniqueStandard),
		tagged("happy", therapy.TechniqueLettingGo),
	}
	m = e.ReportMetrics(interactions, 1)
	assert.Equal(t, 2, m.InteractionCount)
	assert.Equal(t, 1, m.SessionCount)
	require.NotNil(t, m.FirstInteraction)
	require.NotNil(t, m.LastInteraction)
	assert.Equal(t, 10, m.ProgressPercentage)
}
