// Package therapy drives the conversation core: the per-patient state
// machine, the session lifecycle with durable checkpoints, and the
// per-patient worker dispatch.
package therapy

import (
	"context"

	"amira/domain/core"
	"amira/domain/therapy"
	"amira/internal"
	"amira/internal/analytics"
	"amira/internal/config"
	"amira/ports"
)

// SessionController owns the session lifecycle: open, append with periodic
// checkpoints, classification cadence, and close. It holds no conversation
// state of its own; the session aggregate is the source of truth.
type SessionController struct {
	sessions ports.SessionRepository
	engine   *analytics.Engine
	policy   *config.TherapyConfig
	clock    core.Clock
	logger   *internal.Logger
}

// NewSessionController wires the controller.
func NewSessionController(sessions ports.SessionRepository, engine *analytics.Engine, policy *config.TherapyConfig, clock core.Clock, logger *internal.Logger) *SessionController {
	return &SessionController{
		sessions: sessions,
		engine:   engine,
		policy:   policy,
		clock:    clock,
		logger:   logger.With("[session]"),
	}
}

// Open starts a new session for the patient. When an open session already
// exists it is returned alongside ErrConflict so the caller can resume it
// instead of forking a second ledger.
func (c *SessionController) Open(ctx context.Context, patientID core.PatientID) (*therapy.Session, error) {
	existing, err := c.sessions.FindOpenByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, core.NewConflictError(patientID, existing.ID())
	}

	// The open session is persisted immediately so the one-open-session
	// invariant survives a process restart. Failure is absorbed: the first
	// cadence boundary writes the full snapshot anyway.
	session := therapy.NewSession(patientID, c.clock.Now())
	if err := c.sessions.Checkpoint(ctx, session.Snapshot()); err != nil {
		c.logger.Error("initial checkpoint failed for session %s: %v", session.ID(), err)
	}
	return session, nil
}

// Resume returns the patient's open session, opening a fresh one when none
// exists.
func (c *SessionController) Resume(ctx context.Context, patientID core.PatientID) (*therapy.Session, error) {
	session, err := c.Open(ctx, patientID)
	if core.IsConflictError(err) {
		return session, nil
	}
	return session, err
}

// Append stamps the interaction with the server clock, appends it to the
// ledger, and flushes a checkpoint at every cadence boundary. Checkpoint
// failures are absorbed: the interaction is already in memory and the next
// boundary or close writes the full snapshot again.
func (c *SessionController) Append(ctx context.Context, session *therapy.Session, interaction therapy.Interaction) error {
	interaction.Timestamp = core.NewTimestamp(c.clock.Now())
	if err := session.Append(interaction); err != nil {
		return err
	}

	if session.Len()%c.policy.CheckpointEvery == 0 {
		c.checkpoint(ctx, session)
	}
	return nil
}

// AddClassification records a classification on the open session.
func (c *SessionController) AddClassification(ctx context.Context, session *therapy.Session, classification therapy.Classification) error {
	return session.AddClassification(classification)
}

// ClassificationDue reports whether the ledger length has hit the
// classification cadence.
func (c *SessionController) ClassificationDue(session *therapy.Session) bool {
	n := session.Len()
	return n >= c.policy.ClassifyMinInteractions && n%c.policy.ClassifyEvery == 0
}

// ClassificationWindow returns the trailing interactions fed to the
// classifier.
func (c *SessionController) ClassificationWindow(session *therapy.Session) []therapy.Interaction {
	interactions := session.Interactions()
	if len(interactions) > c.policy.ClassifyWindow {
		interactions = interactions[len(interactions)-c.policy.ClassifyWindow:]
	}
	return interactions
}

// Close freezes the session: end time, summary, metrics computed from the
// ledger, and a final flush. Idempotent: closing an already-closed session
// skips the flush and returns the same reference, which callers use to fetch
// the post-session report.
func (c *SessionController) Close(ctx context.Context, session *therapy.Session, summary string) core.SessionID {
	end := c.clock.Now()
	duration := end.Sub(session.StartTime().Time()).Seconds()
	metrics := c.engine.SessionMetrics(session.Interactions(), session.Classifications(), duration)

	if session.Close(end, summary, metrics) {
		c.checkpoint(ctx, session)
	}
	return session.ID()
}

func (c *SessionController) checkpoint(ctx context.Context, session *therapy.Session) {
	if err := c.sessions.Checkpoint(ctx, session.Snapshot()); err != nil {
		c.logger.Error("checkpoint failed for session %s: %v", session.ID(), err)
	}
}
