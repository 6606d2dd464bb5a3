package ports

import (
	"context"

	"amira/domain/core"
	"amira/domain/therapy"
)

// PatientRepository persists patient records keyed by the gateway's external
// user id. Patients are never deleted by the core.
type PatientRepository interface {
	FindByExternalID(ctx context.Context, externalID int64) (*therapy.Patient, error)
	FindByID(ctx context.Context, id core.PatientID) (*therapy.Patient, error)
	Save(ctx context.Context, patient *therapy.Patient) error
}

// SessionRepository persists session snapshots. Checkpoint writes the full
// snapshot keyed by session id.
type SessionRepository interface {
	Checkpoint(ctx context.Context, snap therapy.SessionSnapshot) error
	FindOpenByPatient(ctx context.Context, patientID core.PatientID) (*therapy.Session, error)
	// FindClosedByPatient returns closed sessions newest-first, at most
	// limit when limit > 0.
	FindClosedByPatient(ctx context.Context, patientID core.PatientID, limit int) ([]therapy.SessionSnapshot, error)
	// FindAllByPatient returns every session oldest-first.
	FindAllByPatient(ctx context.Context, patientID core.PatientID) ([]therapy.SessionSnapshot, error)
}

// ReportRepository persists compiled reports.
type ReportRepository interface {
	Save(ctx context.Context, report *therapy.Report) error
	FindByID(ctx context.Context, id core.ReportID) (*therapy.Report, error)
	// FindByPatient returns reports newest-first, at most limit when
	// limit > 0.
	FindByPatient(ctx context.Context, patientID core.PatientID, limit int) ([]*therapy.Report, error)
}
