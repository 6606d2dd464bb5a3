package postgres

import (
	"context"
	"encoding/json"

	"amira/domain/core"
	"amira/domain/therapy"
	"amira/ports"
)

const reportCollection = "reports"

// ReportRepository persists compiled reports keyed by report id. Reports are
// immutable; Save is only ever called once per id.
type ReportRepository struct {
	store ports.DocumentStore
}

// NewReportRepository creates a report repository over the document store.
func NewReportRepository(store ports.DocumentStore) *ReportRepository {
	return &ReportRepository{store: store}
}

// Save writes the report document.
func (r *ReportRepository) Save(ctx context.Context, report *therapy.Report) error {
	return r.store.Upsert(ctx, reportCollection, report.ID.String(), report)
}

// FindByID fetches one report.
func (r *ReportRepository) FindByID(ctx context.Context, id core.ReportID) (*therapy.Report, error) {
	raw, err := r.store.FindOne(ctx, reportCollection, ports.Filter{"report_id": id.String()})
	if err != nil {
		return nil, err
	}
	return decodeReport(raw)
}

// FindByPatient returns a patient's reports newest-first.
func (r *ReportRepository) FindByPatient(ctx context.Context, patientID core.PatientID, limit int) ([]*therapy.Report, error) {
	docs, err := r.store.FindMany(ctx, reportCollection, ports.Filter{
		"patient_id": patientID.String(),
	}, ports.Sort{Field: "creation_date", Descending: true}, limit)
	if err != nil {
		return nil, err
	}
	reports := make([]*therapy.Report, 0, len(docs))
	for _, raw := range docs {
		report, err := decodeReport(raw)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, nil
}

func decodeReport(raw json.RawMessage) (*therapy.Report, error) {
	var rep therapy.Report
	if err := json.Unmarshal(raw, &rep); err != nil {
		return nil, core.NewPersistenceError("decode report", err)
	}
	return &rep, nil
}
