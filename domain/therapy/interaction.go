package therapy

import (
	"amira/domain/core"
)

// Technique is a named therapeutic intervention applied when generating a
// reply.
type Technique string

const (
	TechniqueStandard  Technique = "standard"
	TechniqueLettingGo Technique = "letting_go"
)

// Interaction is one user-message/bot-response exchange with its emotion
// tag: the atomic, immutable unit of the session ledger. Never mutated or
// removed after append.
type Interaction struct {
	Timestamp   core.Timestamp    `json:"timestamp"`
	UserMessage string            `json:"user_message"`
	BotResponse string            `json:"bot_response"`
	Emotion     EmotionAnalysis   `json:"emotion_analysis"`
	Technique   Technique         `json:"technique_used"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}
