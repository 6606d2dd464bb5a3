package therapy

import (
	"amira/domain/core"
)

// Condition is the mental health condition a patient registered with.
type Condition string

const (
	ConditionDepression Condition = "depression"
	ConditionBipolar    Condition = "bipolar"
	ConditionOCD        Condition = "ocd"
	ConditionUnknown    Condition = "unknown"
)

// ParseCondition maps free input onto the supported condition set.
// Anything unrecognized is rejected so choice-only states can re-prompt.
func ParseCondition(s string) (Condition, bool) {
	switch Condition(s) {
	case ConditionDepression, ConditionBipolar, ConditionOCD, ConditionUnknown:
		return Condition(s), true
	}
	return "", false
}

// Language is a supported interface language.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageArabic  Language = "ar"

	DefaultLanguage = LanguageEnglish
)

// ParseLanguage maps a language payload onto the supported set.
func ParseLanguage(s string) (Language, bool) {
	switch Language(s) {
	case LanguageEnglish, LanguageArabic:
		return Language(s), true
	}
	return "", false
}

// Patient is the registered user record. ExternalID is the opaque id the
// messaging gateway delivers (a Telegram user id in the shipped adapter).
// RegistrationDate is immutable once set; condition and language are mutable.
type Patient struct {
	ID               core.PatientID    `json:"id"`
	ExternalID       int64             `json:"external_id"`
	Name             string            `json:"name"`
	Nationality      string            `json:"nationality,omitempty"`
	Age              string            `json:"age,omitempty"`
	Education        string            `json:"education,omitempty"`
	Condition        Condition         `json:"condition"`
	Language         Language          `json:"language"`
	RegistrationDate core.Timestamp    `json:"registration_date"`
	Metadata         map[string]string `json:"metadata,omitempty"`
}

// NewPatient creates a patient record at registration time.
func NewPatient(externalID int64, name string, lang Language) *Patient {
	return &Patient{
		ID:               core.PatientID(core.NewID()),
		ExternalID:       externalID,
		Name:             name,
		Condition:        ConditionUnknown,
		Language:         lang,
		RegistrationDate: core.Now(),
		Metadata:         map[string]string{},
	}
}
