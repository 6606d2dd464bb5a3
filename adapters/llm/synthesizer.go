package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"amira/domain/core"
	"amira/domain/therapy"
	"amira/ports"
)

const progressSystemPrompt = `You are a clinical report writer for a therapeutic conversation system.
From the evidence below, write the narrative portion of a patient progress report.
Respond with a single JSON object, no prose, no markdown:
{
  "overall_assessment": 2-3 sentence summary of the patient's recent trajectory,
  "progress_indicators": array of short strings,
  "areas_of_concern": array of short strings,
  "emotional_patterns": array of short strings,
  "intervention_effectiveness": 1-2 sentences,
  "recommendations": array of short strings,
  "treatment_stage": one of "early_stage", "progressing", "stable", "improving", "worsening", "maintenance"
}`

const assessmentSystemPrompt = `You are a clinical report writer for a therapeutic conversation system.
From the full treatment history below, write a comprehensive psychological assessment.
Respond with a single JSON object, no prose, no markdown:
{
  "psychological_evaluation": 3-4 sentence clinical evaluation,
  "symptom_progression": 2-3 sentences on how symptoms evolved over treatment,
  "core_patterns": array of short strings,
  "risk_factors": array of short strings,
  "protective_factors": array of short strings,
  "treatment_response": 1-2 sentences,
  "prognosis": 1-2 sentences,
  "treatment_recommendations": array of short strings,
  "effective_interventions": array of short strings,
  "condition_severity": one of "mild", "moderate", "severe", "in_remission",
  "treatment_stage": one of "early_stage", "progressing", "stable", "improving", "worsening", "maintenance"
}`

// SynthesizeProgress produces the narrative fields of a progress report.
func (s *Service) SynthesizeProgress(ctx context.Context, req ports.SynthesisRequest) (*therapy.ProgressContent, error) {
	out, err := s.gen.Generate(ctx, progressSystemPrompt, formatSynthesisEvidence(req))
	if err != nil {
		return nil, core.NewExternalServiceError("synthesize progress", err)
	}

	var content therapy.ProgressContent
	if err := json.Unmarshal([]byte(stripCodeFences(out)), &content); err != nil {
		s.logger.Warn("progress synthesis returned unparsable JSON: %v", err)
		return nil, core.NewExternalServiceError("parse progress synthesis", err)
	}
	return &content, nil
}

// SynthesizeAssessment produces the narrative fields of an assessment report.
func (s *Service) SynthesizeAssessment(ctx context.Context, req ports.SynthesisRequest) (*therapy.AssessmentContent, error) {
	out, err := s.gen.Generate(ctx, assessmentSystemPrompt, formatSynthesisEvidence(req))
	if err != nil {
		return nil, core.NewExternalServiceError("synthesize assessment", err)
	}

	var content therapy.AssessmentContent
	if err := json.Unmarshal([]byte(stripCodeFences(out)), &content); err != nil {
		s.logger.Warn("assessment synthesis returned unparsable JSON: %v", err)
		return nil, core.NewExternalServiceError("parse assessment synthesis", err)
	}
	return &content, nil
}

func formatSynthesisEvidence(req ports.SynthesisRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Registered condition: %s\n", req.Condition)
	fmt.Fprintf(&b, "Sessions: %d, days in treatment: %d\n", req.SessionCount, req.TreatmentDays)
	fmt.Fprintf(&b, "Progress: %d%%, engagement trend: %s\n",
		req.Metrics.ProgressPercentage, req.Metrics.EngagementTrend)
	if len(req.Metrics.EmotionDistribution) > 0 {
		b.WriteString("Emotion distribution:\n")
		for _, ec := range req.Metrics.EmotionDistribution {
			fmt.Fprintf(&b, "  %s: %.1f%%\n", ec.Emotion, ec.Percentage)
		}
	}
	if len(req.Interactions) > 0 {
		b.WriteString("Interactions:\n")
		b.WriteString(formatRecentInteractions(req.Interactions))
	}
	return b.String()
}
