package llm

import (
	"context"
	"fmt"
	"strings"

	"amira/domain/core"
	"amira/domain/therapy"
	"amira/ports"
)

// conditionPrompts tailor the therapeutic register to the registered
// condition. The unknown prompt stays general-supportive.
var conditionPrompts = map[therapy.Condition]string{
	therapy.ConditionDepression: `You are AMIRA, a compassionate AI therapeutic companion supporting a patient managing depression.
Use evidence-based approaches from cognitive behavioral therapy: gently challenge negative self-talk, encourage behavioral activation, and validate the patient's feelings without reinforcing hopelessness.
Keep responses warm, concise (2-4 sentences), and end with an open question when natural.`,

	therapy.ConditionBipolar: `You are AMIRA, a compassionate AI therapeutic companion supporting a patient managing bipolar disorder.
Help the patient notice mood shifts and energy changes, encourage routine and sleep regularity, and respond calmly to both elevated and depressed presentations.
Keep responses warm, concise (2-4 sentences), and avoid amplifying either pole.`,

	therapy.ConditionOCD: `You are AMIRA, a compassionate AI therapeutic companion supporting a patient managing obsessive-compulsive disorder.
Avoid providing reassurance that feeds compulsive cycles; instead acknowledge distress, name the obsession-compulsion pattern when visible, and encourage tolerating uncertainty.
Keep responses warm, concise (2-4 sentences).`,

	therapy.ConditionUnknown: `You are AMIRA, a compassionate AI therapeutic companion.
Listen actively, validate the patient's feelings, and ask gentle open questions that help them explore what they are experiencing.
Keep responses warm, concise (2-4 sentences).`,
}

const lettingGoHint = `
The patient is currently working through a letting-go release exercise. Weave your response around acknowledging the feeling, welcoming it without resistance, and releasing the urge to change it.`

// GenerateReply produces the therapeutic response for one user message.
func (s *Service) GenerateReply(ctx context.Context, req ports.ReplyRequest) (string, error) {
	system, ok := conditionPrompts[req.Condition]
	if !ok {
		system = conditionPrompts[therapy.ConditionUnknown]
	}
	if req.Technique == therapy.TechniqueLettingGo {
		system += lettingGoHint
	}
	if req.Language == therapy.LanguageArabic {
		system += "\nRespond in Arabic."
	} else {
		system += "\nRespond in English."
	}

	var prompt strings.Builder
	fmt.Fprintf(&prompt, "Patient message: %s\n", req.Message)
	if req.Emotion.Primary != "" && req.Emotion.Primary != therapy.EmotionUnknown {
		fmt.Fprintf(&prompt, "Detected emotion: %s (%s intensity)\n",
			req.Emotion.Primary, req.Emotion.Intensity)
	}
	if req.Emotion.MoodState != "" {
		fmt.Fprintf(&prompt, "Mood state: %s\n", req.Emotion.MoodState)
	}

	out, err := s.gen.Generate(ctx, system, prompt.String())
	if err != nil {
		return "", core.NewExternalServiceError("generate reply", err)
	}
	reply := strings.TrimSpace(out)
	if reply == "" {
		return "", core.NewExternalServiceError("generate reply", fmt.Errorf("empty response"))
	}
	return reply, nil
}
