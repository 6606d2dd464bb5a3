package therapy

// Emotion is a single emotion tag produced by the language service.
type Emotion string

const EmotionUnknown Emotion = "unknown"

// negativeEmotions is the set a therapeutic technique is expected to move
// the patient out of.
var negativeEmotions = map[Emotion]struct{}{
	"anger":   {},
	"fear":    {},
	"sadness": {},
	"disgust": {},
	"anxiety": {},
	"stress":  {},
}

// IsNegative reports whether the emotion belongs to the negative set.
func (e Emotion) IsNegative() bool {
	_, ok := negativeEmotions[e]
	return ok
}

// Intensity is the coarse strength of the detected emotion.
type Intensity string

const (
	IntensityLow    Intensity = "low"
	IntensityMedium Intensity = "medium"
	IntensityHigh   Intensity = "high"
)

// Scale maps intensity onto 1..3 for trend regression; 0 when unset.
func (i Intensity) Scale() float64 {
	switch i {
	case IntensityLow:
		return 1
	case IntensityMedium:
		return 2
	case IntensityHigh:
		return 3
	}
	return 0
}

// EmotionAnalysis is the structured result of analyzing one user message.
type EmotionAnalysis struct {
	Primary           Emotion   `json:"primary_emotion"`
	Intensity         Intensity `json:"emotion_intensity"`
	MoodState         string    `json:"mood_state,omitempty"`
	DetectedLanguage  Language  `json:"detected_language,omitempty"`
	CognitivePatterns []string  `json:"cognitive_patterns,omitempty"`
	RiskFactors       []string  `json:"risk_factors,omitempty"`
	Observations      string    `json:"additional_observations,omitempty"`
}

// FallbackEmotionAnalysis is the deterministic value used when the language
// service fails, times out, or returns something unparsable.
func FallbackEmotionAnalysis(note string) EmotionAnalysis {
	return EmotionAnalysis{
		Primary:      EmotionUnknown,
		Intensity:    IntensityMedium,
		MoodState:    "unclear",
		Observations: note,
	}
}

// Classification is a periodic categorical label derived from recent
// interactions. Distinct from Condition: a patient registers one condition,
// a session accumulates many classifications.
type Classification string

const (
	ClassificationDepression Classification = "depression"
	ClassificationAnxiety    Classification = "anxiety"
	ClassificationBipolar    Classification = "bipolar"
	ClassificationOCD        Classification = "ocd"
	ClassificationAdjustment Classification = "adjustment_disorder"
	ClassificationPTSD       Classification = "ptsd"
	ClassificationStress     Classification = "general_stress"
	ClassificationUnclear    Classification = "unclear"
)

// ParseClassification validates a raw label from the language service,
// returning ClassificationUnclear for anything outside the fixed set.
func ParseClassification(s string) Classification {
	switch Classification(s) {
	case ClassificationDepression, ClassificationAnxiety, ClassificationBipolar,
		ClassificationOCD, ClassificationAdjustment, ClassificationPTSD,
		ClassificationStress, ClassificationUnclear:
		return Classification(s)
	}
	return ClassificationUnclear
}
