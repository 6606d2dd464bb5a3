package therapy

import (
	"context"
	"fmt"
	"sync"

	"amira/domain/core"
	"amira/domain/therapy"
	"amira/internal"
	"amira/internal/config"
	"amira/ports"
)

func testLogger() *internal.Logger {
	return internal.NewLogger(internal.LogLevelError)
}

func testPolicy() *config.TherapyConfig {
	return &config.TherapyConfig{
		CheckpointEvery:         5,
		ClassifyEvery:           5,
		ClassifyMinInteractions: 3,
		ClassifyWindow:          5,
		LettingGoOfferEvery:     3,
		EngagementTolerance:     0.05,
		ProgressReportSessions:  10,
		WorkerQueueSize:         32,
		MaxConcurrentWorkers:    8,
	}
}

type fakeSessionRepo struct {
	mu          sync.Mutex
	snaps       map[core.SessionID]therapy.SessionSnapshot
	checkpoints int
	failAll     bool
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{snaps: make(map[core.SessionID]therapy.SessionSnapshot)}
}

func (r *fakeSessionRepo) Checkpoint(ctx context.Context, snap therapy.SessionSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkpoints++
	if r.failAll {
		return core.NewPersistenceError("checkpoint", fmt.Errorf("store down"))
	}
	r.snaps[snap.ID] = snap
	return nil
}

func (r *fakeSessionRepo) FindOpenByPatient(ctx context.Context, patientID core.PatientID) (*therapy.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, snap := range r.snaps {
		if snap.PatientID == patientID && snap.EndTime == nil {
			return therapy.SessionFromSnapshot(snap), nil
		}
	}
	return nil, nil
}

func (r *fakeSessionRepo) FindClosedByPatient(ctx context.Context, patientID core.PatientID, limit int) ([]therapy.SessionSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []therapy.SessionSnapshot
	for _, snap := range r.snaps {
		if snap.PatientID == patientID && snap.EndTime != nil {
			out = append(out, snap)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeSessionRepo) FindAllByPatient(ctx context.Context, patientID core.PatientID) ([]therapy.SessionSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []therapy.SessionSnapshot
	for _, snap := range r.snaps {
		if snap.PatientID == patientID {
			out = append(out, snap)
		}
	}
	return out, nil
}

func (r *fakeSessionRepo) checkpointCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.checkpoints
}

type fakePatientRepo struct {
	mu       sync.Mutex
	patients map[int64]*therapy.Patient
}

func newFakePatientRepo() *fakePatientRepo {
	return &fakePatientRepo{patients: make(map[int64]*therapy.Patient)}
}

func (r *fakePatientRepo) FindByExternalID(ctx context.Context, externalID int64) (*therapy.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.patients[externalID]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, nil
}

func (r *fakePatientRepo) FindByID(ctx context.Context, id core.PatientID) (*therapy.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.patients {
		if p.ID == id {
			copied := *p
			return &copied, nil
		}
	}
	return nil, core.NewNotFoundError("patients", id.String())
}

func (r *fakePatientRepo) Save(ctx context.Context, patient *therapy.Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *patient
	r.patients[patient.ExternalID] = &copied
	return nil
}

type sentMessage struct {
	externalID int64
	text       string
	choices    [][]ports.Choice
}

type fakeMessenger struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (m *fakeMessenger) Send(ctx context.Context, externalID int64, text string, choices [][]ports.Choice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMessage{externalID: externalID, text: text, choices: choices})
	return nil
}

func (m *fakeMessenger) last() sentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return sentMessage{}
	}
	return m.sent[len(m.sent)-1]
}

func (m *fakeMessenger) texts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.sent))
	for i, s := range m.sent {
		out[i] = s.text
	}
	return out
}

type fakeLanguageService struct {
	analysis       therapy.EmotionAnalysis
	analysisErr    error
	reply          string
	replyErr       error
	classification therapy.Classification
	classifyErr    error
	classifyCalls  int
}

func (f *fakeLanguageService) AnalyzeEmotion(ctx context.Context, text string) (therapy.EmotionAnalysis, error) {
	if f.analysisErr != nil {
		return therapy.EmotionAnalysis{}, f.analysisErr
	}
	return f.analysis, nil
}

func (f *fakeLanguageService) GenerateReply(ctx context.Context, req ports.ReplyRequest) (string, error) {
	if f.replyErr != nil {
		return "", f.replyErr
	}
	return f.reply, nil
}

func (f *fakeLanguageService) ClassifyCondition(ctx context.Context, recent []therapy.Interaction) (therapy.Classification, error) {
	f.classifyCalls++
	if f.classifyErr != nil {
		return "", f.classifyErr
	}
	return f.classification, nil
}

func (f *fakeLanguageService) SynthesizeProgress(ctx context.Context, req ports.SynthesisRequest) (*therapy.ProgressContent, error) {
	return &therapy.ProgressContent{OverallAssessment: "steady"}, nil
}

func (f *fakeLanguageService) SynthesizeAssessment(ctx context.Context, req ports.SynthesisRequest) (*therapy.AssessmentContent, error) {
	return &therapy.AssessmentContent{PsychologicalEvaluation: "stable"}, nil
}

type fakeReportGenerator struct {
	report *therapy.Report
	err    error
}

func (f *fakeReportGenerator) GenerateProgressReport(ctx context.Context, patientID core.PatientID) (*therapy.Report, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.report, nil
}
