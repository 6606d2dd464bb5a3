package therapy

import (
	"amira/domain/core"
)

// ReportType distinguishes the two compiled report shapes.
type ReportType string

const (
	ReportProgress   ReportType = "progress"
	ReportAssessment ReportType = "assessment"
)

// TreatmentStage tags where the patient is in their treatment arc.
type TreatmentStage string

const (
	StageEarly       TreatmentStage = "early_stage"
	StageProgressing TreatmentStage = "progressing"
	StageStable      TreatmentStage = "stable"
	StageImproving   TreatmentStage = "improving"
	StageWorsening   TreatmentStage = "worsening"
	StageMaintenance TreatmentStage = "maintenance"
)

// Severity grades the assessed condition.
type Severity string

const (
	SeverityMild        Severity = "mild"
	SeverityModerate    Severity = "moderate"
	SeveritySevere      Severity = "severe"
	SeverityInRemission Severity = "in_remission"
)

// ProgressContent is the narrative portion of a progress report.
type ProgressContent struct {
	OverallAssessment         string         `json:"overall_assessment"`
	ProgressIndicators        []string       `json:"progress_indicators,omitempty"`
	AreasOfConcern            []string       `json:"areas_of_concern,omitempty"`
	EmotionalPatterns         []string       `json:"emotional_patterns,omitempty"`
	InterventionEffectiveness string         `json:"intervention_effectiveness,omitempty"`
	Recommendations           []string       `json:"recommendations,omitempty"`
	TreatmentStage            TreatmentStage `json:"treatment_stage,omitempty"`
}

// AssessmentContent is the narrative portion of a full assessment report.
type AssessmentContent struct {
	PsychologicalEvaluation  string         `json:"psychological_evaluation"`
	SymptomProgression       string         `json:"symptom_progression,omitempty"`
	CorePatterns             []string       `json:"core_patterns,omitempty"`
	RiskFactors              []string       `json:"risk_factors,omitempty"`
	ProtectiveFactors        []string       `json:"protective_factors,omitempty"`
	TreatmentResponse        string         `json:"treatment_response,omitempty"`
	Prognosis                string         `json:"prognosis,omitempty"`
	TreatmentRecommendations []string       `json:"treatment_recommendations,omitempty"`
	EffectiveInterventions   []string       `json:"effective_interventions,omitempty"`
	ConditionSeverity        Severity       `json:"condition_severity,omitempty"`
	TreatmentStage           TreatmentStage `json:"treatment_stage,omitempty"`
}

// IntensityTrend is the regression slope of emotion intensity over the
// ledger with its coarse interpretation.
type IntensityTrend struct {
	Slope          float64        `json:"slope"`
	Interpretation TrendDirection `json:"interpretation"`
}

// ReportMetrics are the deterministic metrics attached to a report,
// recomputable from the ledger alone.
type ReportMetrics struct {
	InteractionCount       int                    `json:"interaction_count"`
	SessionCount           int                    `json:"session_count"`
	FirstInteraction       *core.Timestamp        `json:"first_interaction,omitempty"`
	LastInteraction        *core.Timestamp        `json:"last_interaction,omitempty"`
	EmotionDistribution    []EmotionCount         `json:"emotion_distribution,omitempty"`
	TechniqueEffectiveness map[Technique]*float64 `json:"technique_effectiveness,omitempty"`
	ProgressPercentage     int                    `json:"progress_percentage"`
	EngagementTrend        TrendDirection         `json:"engagement_trend,omitempty"`
	IntensityTrend         *IntensityTrend        `json:"intensity_trend,omitempty"`
}

// Report is an immutable snapshot derived from one or more sessions. It
// references the patient but does not own the sessions it was compiled from.
type Report struct {
	ID           core.ReportID      `json:"report_id"`
	PatientID    core.PatientID     `json:"patient_id"`
	CreationDate core.Timestamp     `json:"creation_date"`
	Type         ReportType         `json:"report_type"`
	Progress     *ProgressContent   `json:"progress,omitempty"`
	Assessment   *AssessmentContent `json:"assessment,omitempty"`
	Metrics      ReportMetrics      `json:"metrics"`
}

// NewReport stamps a report with identity and creation time.
func NewReport(patientID core.PatientID, t ReportType) *Report {
	return &Report{
		ID:           core.ReportID(core.NewID()),
		PatientID:    patientID,
		CreationDate: core.Now(),
		Type:         t,
	}
}
