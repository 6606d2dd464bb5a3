package therapy

import (
	"sync"
	"time"

	"amira/domain/core"
)

// TrendDirection describes how a measured quantity moved across a session.
type TrendDirection string

const (
	TrendIncreasing TrendDirection = "increasing"
	TrendDecreasing TrendDirection = "decreasing"
	TrendStable     TrendDirection = "stable"
)

// EmotionCount is one entry of an emotional trend tally, ordered by first
// appearance in the ledger.
type EmotionCount struct {
	Emotion    Emotion `json:"emotion"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// SessionMetrics is computed once, at close, from the interaction ledger.
type SessionMetrics struct {
	InteractionCount       int                    `json:"interaction_count"`
	DurationSeconds        float64                `json:"duration_seconds"`
	EmotionalTrend         []EmotionCount         `json:"emotional_trend,omitempty"`
	TechniqueEffectiveness map[Technique]*float64 `json:"technique_effectiveness,omitempty"`
	ProgressPercentage     int                    `json:"progress_percentage"`
	EngagementTrend        TrendDirection         `json:"engagement_trend,omitempty"`
	Classifications        []Classification       `json:"condition_classifications,omitempty"`
}

// Session is one bounded therapeutic conversation. It is the sole source of
// truth for the interaction ledger: fields are unexported and mutation goes
// through Append/AddClassification/Close so the open/closed invariant holds
// at the type level.
type Session struct {
	mu              sync.RWMutex
	id              core.SessionID
	patientID       core.PatientID
	startTime       core.Timestamp
	endTime         *core.Timestamp
	interactions    []Interaction
	classifications []Classification
	summary         string
	metrics         *SessionMetrics
}

// NewSession opens a session with an empty ledger and empty classification
// list.
func NewSession(patientID core.PatientID, start time.Time) *Session {
	return &Session{
		id:              core.SessionID(core.NewID()),
		patientID:       patientID,
		startTime:       core.NewTimestamp(start),
		interactions:    make([]Interaction, 0),
		classifications: make([]Classification, 0),
	}
}

func (s *Session) ID() core.SessionID        { return s.id }
func (s *Session) PatientID() core.PatientID { return s.patientID }
func (s *Session) StartTime() core.Timestamp { return s.startTime }

// EndTime returns nil while the session is open.
func (s *Session) EndTime() *core.Timestamp {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.endTime == nil {
		return nil
	}
	t := *s.endTime
	return &t
}

// IsClosed reports whether the session has been closed.
func (s *Session) IsClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.endTime != nil
}

// Len returns the current ledger length.
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.interactions)
}

// Interactions returns a copy of the ledger in append order.
func (s *Session) Interactions() []Interaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Interaction, len(s.interactions))
	copy(out, s.interactions)
	return out
}

// Classifications returns a copy of the ordered classification list.
func (s *Session) Classifications() []Classification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Classification, len(s.classifications))
	copy(out, s.classifications)
	return out
}

// Summary is empty until the session closes.
func (s *Session) Summary() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.summary
}

// Metrics is nil until the session closes.
func (s *Session) Metrics() *SessionMetrics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.metrics
}

// Append adds an interaction to the ledger. Fails with ErrInvalidState once
// the session is closed; the ledger is never reordered or truncated.
func (s *Session) Append(i Interaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.endTime != nil {
		return core.NewInvalidStateError(s.id)
	}
	s.interactions = append(s.interactions, i)
	return nil
}

// AddClassification appends a condition classification. Fails with
// ErrInvalidState once the session is closed.
func (s *Session) AddClassification(c Classification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.endTime != nil {
		return core.NewInvalidStateError(s.id)
	}
	s.classifications = append(s.classifications, c)
	return nil
}

// Close sets the end time, summary and metrics. Returns false when the
// session was already closed; the first close wins and later calls change
// nothing.
func (s *Session) Close(end time.Time, summary string, metrics *SessionMetrics) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.endTime != nil {
		return false
	}
	ts := core.NewTimestamp(end)
	s.endTime = &ts
	s.summary = summary
	s.metrics = metrics
	return true
}

// SessionSnapshot is the serializable form of a session used for durable
// checkpoints and persistence.
type SessionSnapshot struct {
	ID              core.SessionID   `json:"session_id"`
	PatientID       core.PatientID   `json:"patient_id"`
	StartTime       core.Timestamp   `json:"start_time"`
	EndTime         *core.Timestamp  `json:"end_time,omitempty"`
	Interactions    []Interaction    `json:"interactions"`
	Classifications []Classification `json:"condition_classifications"`
	Summary         string           `json:"summary,omitempty"`
	Metrics         *SessionMetrics  `json:"metrics,omitempty"`
}

// Snapshot captures a consistent copy of the session for persistence.
func (s *Session) Snapshot() SessionSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := SessionSnapshot{
		ID:              s.id,
		PatientID:       s.patientID,
		StartTime:       s.startTime,
		Summary:         s.summary,
		Metrics:         s.metrics,
		Interactions:    make([]Interaction, len(s.interactions)),
		Classifications: make([]Classification, len(s.classifications)),
	}
	copy(snap.Interactions, s.interactions)
	copy(snap.Classifications, s.classifications)
	if s.endTime != nil {
		t := *s.endTime
		snap.EndTime = &t
	}
	return snap
}

// SessionFromSnapshot rebuilds the aggregate from a persisted snapshot.
func SessionFromSnapshot(snap SessionSnapshot) *Session {
	s := &Session{
		id:              snap.ID,
		patientID:       snap.PatientID,
		startTime:       snap.StartTime,
		summary:         snap.Summary,
		metrics:         snap.Metrics,
		interactions:    make([]Interaction, len(snap.Interactions)),
		classifications: make([]Classification, len(snap.Classifications)),
	}
	copy(s.interactions, snap.Interactions)
	copy(s.classifications, snap.Classifications)
	if snap.EndTime != nil {
		t := *snap.EndTime
		s.endTime = &t
	}
	return s
}
