package report

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"amira/domain/core"
	"amira/domain/therapy"
	"amira/internal"
	"amira/internal/analytics"
	"amira/internal/config"
	"amira/ports"
)

type fakePatients struct {
	patient *therapy.Patient
}

func (f *fakePatients) FindByExternalID(ctx context.Context, externalID int64) (*therapy.Patient, error) {
	return f.patient, nil
}

func (f *fakePatients) FindByID(ctx context.Context, id core.PatientID) (*therapy.Patient, error) {
	if f.patient == nil || f.patient.ID != id {
		return nil, core.NewNotFoundError("patients", id.String())
	}
	return f.patient, nil
}

func (f *fakePatients) Save(ctx context.Context, patient *therapy.Patient) error { return nil }

type fakeSessions struct {
	closed []therapy.SessionSnapshot
	all    []therapy.SessionSnapshot
}

func (f *fakeSessions) Checkpoint(ctx context.Context, snap therapy.SessionSnapshot) error {
	return nil
}

func (f *fakeSessions) FindOpenByPatient(ctx context.Context, patientID core.PatientID) (*therapy.Session, error) {
	return nil, nil
}

func (f *fakeSessions) FindClosedByPatient(ctx context.Context, patientID core.PatientID, limit int) ([]therapy.SessionSnapshot, error) {
	out := f.closed
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeSessions) FindAllByPatient(ctx context.Context, patientID core.PatientID) ([]therapy.SessionSnapshot, error) {
	return f.all, nil
}

type fakeReports struct {
	saved []*therapy.Report
}

func (f *fakeReports) Save(ctx context.Context, report *therapy.Report) error {
	f.saved = append(f.saved, report)
	return nil
}

func (f *fakeReports) FindByID(ctx context.Context, id core.ReportID) (*therapy.Report, error) {
	return nil, core.ErrReportNotFound
}

func (f *fakeReports) FindByPatient(ctx context.Context, patientID core.PatientID, limit int) ([]*therapy.Report, error) {
	return f.saved, nil
}

type fakeSynthesizer struct {
	progressErr   error
	assessmentErr error
	lastRequest   ports.SynthesisRequest
}

func (f *fakeSynthesizer) AnalyzeEmotion(ctx context.Context, text string) (therapy.EmotionAnalysis, error) {
	return therapy.EmotionAnalysis{}, nil
}

func (f *fakeSynthesizer) GenerateReply(ctx context.Context, req ports.ReplyRequest) (string, error) {
	return "", nil
}

func (f *fakeSynthesizer) ClassifyCondition(ctx context.Context, recent []therapy.Interaction) (therapy.Classification, error) {
	return therapy.ClassificationUnclear, nil
}

func (f *fakeSynthesizer) SynthesizeProgress(ctx context.Context, req ports.SynthesisRequest) (*therapy.ProgressContent, error) {
	f.lastRequest = req
	if f.progressErr != nil {
		return nil, f.progressErr
	}
	return &therapy.ProgressContent{OverallAssessment: "improving steadily"}, nil
}

func (f *fakeSynthesizer) SynthesizeAssessment(ctx context.Context, req ports.SynthesisRequest) (*therapy.AssessmentContent, error) {
	f.lastRequest = req
	if f.assessmentErr != nil {
		return nil, f.assessmentErr
	}
	return &therapy.AssessmentContent{PsychologicalEvaluation: "stable presentation"}, nil
}

func closedSnapshot(patientID core.PatientID, start time.Time, messages ...string) therapy.SessionSnapshot {
	s := therapy.NewSession(patientID, start)
	for _, msg := range messages {
		_ = s.Append(therapy.Interaction{
			Timestamp:   core.NewTimestamp(start),
			UserMessage: msg,
			Emotion:     therapy.EmotionAnalysis{Primary: "sadness", Intensity: therapy.IntensityMedium},
			Technique:   therapy.TechniqueStandard,
		})
	}
	s.Close(start.Add(10*time.Minute), "done", &therapy.SessionMetrics{})
	return s.Snapshot()
}

func newTestCompiler(patients *fakePatients, sessions *fakeSessions, reports *fakeReports, lang *fakeSynthesizer) *Compiler {
	return NewCompiler(
		patients, sessions, reports, lang,
		analytics.NewEngine(0.05),
		&config.TherapyConfig{ProgressReportSessions: 10},
		core.FixedClock{T: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)},
		internal.NewLogger(internal.LogLevelError),
	)
}

func testPatient() *therapy.Patient {
	return &therapy.Patient{
		ID:               core.PatientID(core.NewID()),
		ExternalID:       42,
		Name:             "Alice",
		Condition:        therapy.ConditionDepression,
		Language:         therapy.LanguageEnglish,
		RegistrationDate: core.NewTimestamp(time.Date(2026, 3, 3, 12, 0, 0, 0, time.UTC)),
	}
}

func TestGenerateProgressReport_ChronologicalInteractions(t *testing.T) {
	patient := testPatient()
	base := time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC)
	sessions := &fakeSessions{
		// Repository order is newest-first.
		closed: []therapy.SessionSnapshot{
			closedSnapshot(patient.ID, base.Add(48*time.Hour), "third"),
			closedSnapshot(patient.ID, base.Add(24*time.Hour), "second"),
			closedSnapshot(patient.ID, base, "first"),
		},
	}
	lang := &fakeSynthesizer{}
	reports := &fakeReports{}
	c := newTestCompiler(&fakePatients{patient: patient}, sessions, reports, lang)

	report, err := c.GenerateProgressReport(context.Background(), patient.ID)
	require.NoError(t, err)

	require.Len(t, lang.lastRequest.Interactions, 3)
	assert.Equal(t, "first", lang.lastRequest.Interactions[0].UserMessage)
	assert.Equal(t, "third", lang.lastRequest.Interactions[2].UserMessage)

	assert.Equal(t, therapy.ReportProgress, report.Type)
	assert.Equal(t, 3, report.Metrics.SessionCount)
	assert.Equal(t, "improving steadily", report.Progress.OverallAssessment)
	require.Len(t, reports.saved, 1, "report is persisted")
}

func TestGenerateProgressReport_NarrativeSoftFail(t *testing.T) {
	patient := testPatient()
	sessions := &fakeSessions{closed: []therapy.SessionSnapshot{
		closedSnapshot(patient.ID, time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC), "only"),
	}}
	lang := &fakeSynthesizer{progressErr: core.NewExternalServiceError("synthesize progress", assert.AnError)}
	reports := &fakeReports{}
	c := newTestCompiler(&fakePatients{patient: patient}, sessions, reports, lang)

	report, err := c.GenerateProgressReport(context.Background(), patient.ID)
	require.NoError(t, err, "narrative failure never withholds the report")
	require.NotNil(t, report.Progress)
	assert.Contains(t, report.Progress.OverallAssessment, "unavailable")
	assert.Equal(t, 1, report.Metrics.InteractionCount, "metrics survive the soft fail")
}

func TestGenerateAssessmentReport_ThreePointSample(t *testing.T) {
	patient := testPatient()
	var messages []string
	for i := 0; i < 60; i++ {
		messages = append(messages, fmt.Sprintf("msg %02d", i))
	}
	sessions := &fakeSessions{all: []therapy.SessionSnapshot{
		closedSnapshot(patient.ID, time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC), messages...),
	}}
	lang := &fakeSynthesizer{}
	c := newTestCompiler(&fakePatients{patient: patient}, sessions, &fakeReports{}, lang)

	report, err := c.GenerateAssessmentReport(context.Background(), patient.ID)
	require.NoError(t, err)

	assert.Equal(t, 60, report.Metrics.InteractionCount, "metrics cover the full ledger")
	require.Len(t, lang.lastRequest.Interactions, 30, "synthesis input is sampled")
	assert.Equal(t, "msg 00", lang.lastRequest.Interactions[0].UserMessage)
	assert.Equal(t, "msg 59", lang.lastRequest.Interactions[29].UserMessage)
}

func TestGenerateAssessmentReport_SmallLedgerUnsampled(t *testing.T) {
	patient := testPatient()
	sessions := &fakeSessions{all: []therapy.SessionSnapshot{
		closedSnapshot(patient.ID, time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC), "a", "b", "c"),
	}}
	lang := &fakeSynthesizer{}
	c := newTestCompiler(&fakePatients{patient: patient}, sessions, &fakeReports{}, lang)

	_, err := c.GenerateAssessmentReport(context.Background(), patient.ID)
	require.NoError(t, err)
	assert.Len(t, lang.lastRequest.Interactions, 3)
}

func TestTreatmentDays(t *testing.T) {
	patient := testPatient()
	sessions := &fakeSessions{}
	lang := &fakeSynthesizer{}
	c := newTestCompiler(&fakePatients{patient: patient}, sessions, &fakeReports{}, lang)

	_, err := c.GenerateProgressReport(context.Background(), patient.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, lang.lastRequest.TreatmentDays)
}

func TestGenerateProgressReport_UnknownPatient(t *testing.T) {
	c := newTestCompiler(&fakePatients{}, &fakeSessions{}, &fakeReports{}, &fakeSynthesizer{})

	_, err := c.GenerateProgressReport(context.Background(), core.PatientID(core.NewID()))
	require.Error(t, err)
	assert.True(t, core.IsNotFoundError(err))
}
