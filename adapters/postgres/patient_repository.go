package postgres

import (
	"context"
	"encoding/json"

	"amira/domain/core"
	"amira/domain/therapy"
	"amira/ports"
)

const patientCollection = "patients"

// PatientRepository persists patient records as documents keyed by patient id.
type PatientRepository struct {
	store ports.DocumentStore
}

// NewPatientRepository creates a patient repository over the document store.
func NewPatientRepository(store ports.DocumentStore) *PatientRepository {
	return &PatientRepository{store: store}
}

// FindByExternalID looks a patient up by the gateway's external user id.
// Returns (nil, nil) when the patient has never registered.
func (r *PatientRepository) FindByExternalID(ctx context.Context, externalID int64) (*therapy.Patient, error) {
	raw, err := r.store.FindOne(ctx, patientCollection, ports.Filter{"external_id": externalID})
	if core.IsNotFoundError(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decodePatient(raw)
}

// FindByID looks a patient up by internal id. Missing patients are an error
// here: callers hold a reference that should exist.
func (r *PatientRepository) FindByID(ctx context.Context, id core.PatientID) (*therapy.Patient, error) {
	raw, err := r.store.FindOne(ctx, patientCollection, ports.Filter{"id": id.String()})
	if err != nil {
		return nil, err
	}
	return decodePatient(raw)
}

// Save upserts the full patient record.
func (r *PatientRepository) Save(ctx context.Context, patient *therapy.Patient) error {
	return r.store.Upsert(ctx, patientCollection, patient.ID.String(), patient)
}

func decodePatient(raw json.RawMessage) (*therapy.Patient, error) {
	var p therapy.Patient
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, core.NewPersistenceError("decode patient", err)
	}
	return &p, nil
}
