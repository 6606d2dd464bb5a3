package llm

import (
	"context"
	"encoding/json"

	"amira/domain/core"
	"amira/domain/therapy"
)

const classifySystemPrompt = `You are a clinical classification engine. Given recent therapeutic conversation interactions, classify the patient's most likely current condition.
Respond with a single JSON object, no prose, no markdown:
{"classification": one of "depression", "anxiety", "bipolar", "ocd", "adjustment_disorder", "ptsd", "general_stress", "unclear"}
Use "unclear" when the evidence does not support a specific label.`

// ClassifyCondition labels the patient's likely condition from recent
// interactions. Out-of-vocabulary labels collapse to unclear rather than
// entering the ledger raw.
func (s *Service) ClassifyCondition(ctx context.Context, recent []therapy.Interaction) (therapy.Classification, error) {
	out, err := s.gen.Generate(ctx, classifySystemPrompt, formatRecentInteractions(recent))
	if err != nil {
		return "", core.NewExternalServiceError("classify condition", err)
	}

	var decoded struct {
		Classification string `json:"classification"`
	}
	if err := json.Unmarshal([]byte(stripCodeFences(out)), &decoded); err != nil {
		s.logger.Warn("classification returned unparsable JSON: %v", err)
		return "", core.NewExternalServiceError("parse classification", err)
	}
	return therapy.ParseClassification(decoded.Classification), nil
}
