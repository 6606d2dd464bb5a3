package postgres

import (
	"context"
	"encoding/json"

	"amira/domain/core"
	"amira/domain/therapy"
	"amira/ports"
)

const sessionCollection = "sessions"

// SessionRepository persists session snapshots keyed by session id. The same
// snapshot key is written at every checkpoint boundary, so retries after a
// failed flush converge on the latest state.
type SessionRepository struct {
	store ports.DocumentStore
}

// NewSessionRepository creates a session repository over the document store.
func NewSessionRepository(store ports.DocumentStore) *SessionRepository {
	return &SessionRepository{store: store}
}

// Checkpoint upserts the full session snapshot.
func (r *SessionRepository) Checkpoint(ctx context.Context, snap therapy.SessionSnapshot) error {
	return r.store.Upsert(ctx, sessionCollection, snap.ID.String(), snap)
}

// FindOpenByPatient returns the patient's open session, or (nil, nil) when
// every session is closed.
func (r *SessionRepository) FindOpenByPatient(ctx context.Context, patientID core.PatientID) (*therapy.Session, error) {
	raw, err := r.store.FindOne(ctx, sessionCollection, ports.Filter{
		"patient_id": patientID.String(),
		"end_time":   ports.Exists(false),
	})
	if core.IsNotFoundError(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	snap, err := decodeSnapshot(raw)
	if err != nil {
		return nil, err
	}
	return therapy.SessionFromSnapshot(*snap), nil
}

// FindClosedByPatient returns closed sessions newest-first.
func (r *SessionRepository) FindClosedByPatient(ctx context.Context, patientID core.PatientID, limit int) ([]therapy.SessionSnapshot, error) {
	docs, err := r.store.FindMany(ctx, sessionCollection, ports.Filter{
		"patient_id": patientID.String(),
		"end_time":   ports.Exists(true),
	}, ports.Sort{Field: "start_time", Descending: true}, limit)
	if err != nil {
		return nil, err
	}
	return decodeSnapshots(docs)
}

// FindAllByPatient returns every session oldest-first.
func (r *SessionRepository) FindAllByPatient(ctx context.Context, patientID core.PatientID) ([]therapy.SessionSnapshot, error) {
	docs, err := r.store.FindMany(ctx, sessionCollection, ports.Filter{
		"patient_id": patientID.String(),
	}, ports.Sort{Field: "start_time"}, 0)
	if err != nil {
		return nil, err
	}
	return decodeSnapshots(docs)
}

func decodeSnapshot(raw json.RawMessage) (*therapy.SessionSnapshot, error) {
	var snap therapy.SessionSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, core.NewPersistenceError("decode session", err)
	}
	return &snap, nil
}

func decodeSnapshots(docs []json.RawMessage) ([]therapy.SessionSnapshot, error) {
	snaps := make([]therapy.SessionSnapshot, 0, len(docs))
	for _, raw := range docs {
		snap, err := decodeSnapshot(raw)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, *snap)
	}
	return snaps, nil
}
