package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"amira/domain/core"
	"amira/domain/therapy"
)

const emotionSystemPrompt = `You are an emotion analysis engine for a therapeutic conversation system.
Analyze the user's message and respond with a single JSON object, no prose, no markdown:
{
  "primary_emotion": one of "joy", "sadness", "anger", "fear", "disgust", "anxiety", "stress", "calm", "neutral", "unknown",
  "emotion_intensity": one of "low", "medium", "high",
  "mood_state": short free-text description of the overall mood,
  "detected_language": "en" or "ar",
  "cognitive_patterns": array of short strings naming distortions or thought patterns, may be empty,
  "risk_factors": array of short strings naming concerning signals, may be empty,
  "additional_observations": one short clinical observation
}`

// AnalyzeEmotion tags one user message. A malformed or failed response is an
// error; the caller substitutes the deterministic fallback analysis.
func (s *Service) AnalyzeEmotion(ctx context.Context, text string) (therapy.EmotionAnalysis, error) {
	out, err := s.gen.Generate(ctx, emotionSystemPrompt, text)
	if err != nil {
		return therapy.EmotionAnalysis{}, core.NewExternalServiceError("analyze emotion", err)
	}

	var analysis therapy.EmotionAnalysis
	if err := json.Unmarshal([]byte(stripCodeFences(out)), &analysis); err != nil {
		s.logger.Warn("emotion analysis returned unparsable JSON: %v", err)
		return therapy.EmotionAnalysis{}, core.NewExternalServiceError("parse emotion analysis", err)
	}
	if analysis.Primary == "" {
		analysis.Primary = therapy.EmotionUnknown
	}
	if analysis.Intensity == "" {
		analysis.Intensity = therapy.IntensityMedium
	}
	return analysis, nil
}

// formatRecentInteractions renders a ledger slice as prompt evidence.
func formatRecentInteractions(interactions []therapy.Interaction) string {
	var b strings.Builder
	for i, in := range interactions {
		fmt.Fprintf(&b, "%d. patient: %s\n   emotion: %s (%s)\n",
			i+1, in.UserMessage, in.Emotion.Primary, in.Emotion.Intensity)
	}
	return b.String()
}
