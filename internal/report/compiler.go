// Package report compiles progress and assessment reports from closed
// session history. Narrative synthesis is best-effort: a failed language
// service call downgrades to a stock narrative, never a withheld report.
package report

import (
	"context"

	"amira/domain/core"
	"amira/domain/therapy"
	"amira/internal"
	"amira/internal/analytics"
	"amira/internal/config"
	"amira/ports"
)

// sampleWindow bounds how many interactions from each of the three sample
// points feed assessment synthesis when the full ledger is large.
const sampleWindow = 10

// Compiler builds reports from a patient's session history.
type Compiler struct {
	patients ports.PatientRepository
	sessions ports.SessionRepository
	reports  ports.ReportRepository
	lang     ports.LanguageService
	engine   *analytics.Engine
	policy   *config.TherapyConfig
	clock    core.Clock
	logger   *internal.Logger
}

// NewCompiler wires the report compiler.
func NewCompiler(
	patients ports.PatientRepository,
	sessions ports.SessionRepository,
	reports ports.ReportRepository,
	lang ports.LanguageService,
	engine *analytics.Engine,
	policy *config.TherapyConfig,
	clock core.Clock,
	logger *internal.Logger,
) *Compiler {
	return &Compiler{
		patients: patients,
		sessions: sessions,
		reports:  reports,
		lang:     lang,
		engine:   engine,
		policy:   policy,
		clock:    clock,
		logger:   logger.With("[report]"),
	}
}

// GenerateProgressReport compiles the most recent closed sessions into a
// progress report with chronological interactions.
func (c *Compiler) GenerateProgressReport(ctx context.Context, patientID core.PatientID) (*therapy.Report, error) {
	patient, err := c.patients.FindByID(ctx, patientID)
	if err != nil {
		return nil, err
	}

	snaps, err := c.sessions.FindClosedByPatient(ctx, patientID, c.policy.ProgressReportSessions)
	if err != nil {
		return nil, err
	}
	// Repository order is newest-first; the report reads chronologically.
	reverse(snaps)
	interactions := flatten(snaps)

	metrics := c.engine.ReportMetrics(interactions, len(snaps))
	report := therapy.NewReport(patientID, therapy.ReportProgress)
	report.Metrics = metrics

	content, err := c.lang.SynthesizeProgress(ctx, ports.SynthesisRequest{
		Condition:     patient.Condition,
		SessionCount:  len(snaps),
		TreatmentDays: c.treatmentDays(patient),
		Interactions:  interactions,
		Metrics:       metrics,
	})
	if err != nil {
		c.logger.Warn("progress narrative for %s failed, using stock text: %v", patientID, err)
		content = stockProgressContent()
	}
	report.Progress = content

	c.persist(ctx, report)
	return report, nil
}

// GenerateAssessmentReport compiles the full session history into an
// assessment. Large ledgers are sampled at three points (earliest, middle,
// latest) to bound synthesis input without losing the longitudinal signal;
// metrics always cover the full ledger.
func (c *Compiler) GenerateAssessmentReport(ctx context.Context, patientID core.PatientID) (*therapy.Report, error) {
	patient, err := c.patients.FindByID(ctx, patientID)
	if err != nil {
		return nil, err
	}

	snaps, err := c.sessions.FindAllByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	interactions := flatten(snaps)

	metrics := c.engine.ReportMetrics(interactions, len(snaps))
	report := therapy.NewReport(patientID, therapy.ReportAssessment)
	report.Metrics = metrics

	content, err := c.lang.SynthesizeAssessment(ctx, ports.SynthesisRequest{
		Condition:     patient.Condition,
		SessionCount:  len(snaps),
		TreatmentDays: c.treatmentDays(patient),
		Interactions:  threePointSample(interactions),
		Metrics:       metrics,
	})
	if err != nil {
		c.logger.Warn("assessment narrative for %s failed, using stock text: %v", patientID, err)
		content = stockAssessmentContent()
	}
	report.Assessment = content

	c.persist(ctx, report)
	return report, nil
}

// persist saves the report; failures are logged, the compiled report is
// still handed to the caller.
func (c *Compiler) persist(ctx context.Context, report *therapy.Report) {
	if err := c.reports.Save(ctx, report); err != nil {
		c.logger.Error("saving report %s failed: %v", report.ID, err)
	}
}

func (c *Compiler) treatmentDays(patient *therapy.Patient) int {
	days := int(c.clock.Now().Sub(patient.RegistrationDate.Time()).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// threePointSample keeps the earliest, middle and latest stretches of a
// large ledger, in order. Small ledgers pass through unchanged.
func threePointSample(interactions []therapy.Interaction) []therapy.Interaction {
	if len(interactions) <= 3*sampleWindow {
		return interactions
	}
	mid := len(interactions) / 2
	sample := make([]therapy.Interaction, 0, 3*sampleWindow)
	sample = append(sample, interactions[:sampleWindow]...)
	sample = append(sample, interactions[mid-sampleWindow/2:mid+sampleWindow/2]...)
	sample = append(sample, interactions[len(interactions)-sampleWindow:]...)
	return sample
}

func flatten(snaps []therapy.SessionSnapshot) []therapy.Interaction {
	var out []therapy.Interaction
	for _, snap := range snaps {
		out = append(out, snap.Interactions...)
	}
	return out
}

func reverse(snaps []therapy.SessionSnapshot) {
	for i, j := 0, len(snaps)-1; i < j; i, j = i+1, j-1 {
		snaps[i], snaps[j] = snaps[j], snaps[i]
	}
}

func stockProgressContent() *therapy.ProgressContent {
	return &therapy.ProgressContent{
		OverallAssessment: "Narrative synthesis was unavailable. The structured metrics below were computed from the recorded sessions.",
		TreatmentStage:    therapy.StageEarly,
	}
}

func stockAssessmentContent() *therapy.AssessmentContent {
	return &therapy.AssessmentContent{
		PsychologicalEvaluation: "Narrative synthesis was unavailable. The structured metrics below were computed from the recorded sessions.",
		TreatmentStage:          therapy.StageEarly,
	}
}
