package ports

import (
	"context"

	"amira/domain/therapy"
)

// LanguageService is the opaque language-understanding collaborator. Every
// method may fail or time out; callers own a deterministic fallback for each.
type LanguageService interface {
	// AnalyzeEmotion tags one user message with a structured analysis.
	AnalyzeEmotion(ctx context.Context, text string) (therapy.EmotionAnalysis, error)

	// GenerateReply produces the therapeutic response for one user message.
	GenerateReply(ctx context.Context, req ReplyRequest) (string, error)

	// ClassifyCondition labels the patient's likely condition from recent
	// interactions.
	ClassifyCondition(ctx context.Context, recent []therapy.Interaction) (therapy.Classification, error)

	// SynthesizeProgress produces the narrative fields of a progress report.
	SynthesizeProgress(ctx context.Context, req SynthesisRequest) (*therapy.ProgressContent, error)

	// SynthesizeAssessment produces the narrative fields of an assessment
	// report.
	SynthesizeAssessment(ctx context.Context, req SynthesisRequest) (*therapy.AssessmentContent, error)
}

// ReplyRequest carries everything reply generation needs.
type ReplyRequest struct {
	Message   string
	Emotion   therapy.EmotionAnalysis
	Condition therapy.Condition
	Language  therapy.Language
	Technique therapy.Technique
}

// SynthesisRequest carries the evidence a report narrative is built from.
type SynthesisRequest struct {
	Condition     therapy.Condition
	SessionCount  int
	TreatmentDays int
	Interactions  []therapy.Interaction
	Metrics       therapy.ReportMetrics
}
