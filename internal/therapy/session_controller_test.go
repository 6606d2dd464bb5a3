package therapy

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"amira/domain/core"
	"amira/domain/therapy"
	"amira/internal/analytics"
)

func newTestController(repo *fakeSessionRepo) *SessionController {
	return NewSessionController(
		repo,
		analytics.NewEngine(0.05),
		testPolicy(),
		core.FixedClock{T: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
		testLogger(),
	)
}

func TestOpen_SecondOpenConflicts(t *testing.T) {
	repo := newFakeSessionRepo()
	c := newTestController(repo)
	patientID := core.PatientID(core.NewID())

	first, err := c.Open(context.Background(), patientID)
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := c.Open(context.Background(), patientID)
	require.Error(t, err)
	assert.True(t, core.IsConflictError(err))
	require.NotNil(t, second, "the existing open session is returned for reuse")
	assert.Equal(t, first.ID(), second.ID())
}

func TestResume_ReusesOpenSession(t *testing.T) {
	repo := newFakeSessionRepo()
	c := newTestController(repo)
	patientID := core.PatientID(core.NewID())

	first, err := c.Resume(context.Background(), patientID)
	require.NoError(t, err)

	again, err := c.Resume(context.Background(), patientID)
	require.NoError(t, err)
	assert.Equal(t, first.ID(), again.ID())
}

func TestAppend_CheckpointCadence(t *testing.T) {
	repo := newFakeSessionRepo()
	c := newTestController(repo)

	session, err := c.Open(context.Background(), core.PatientID(core.NewID()))
	require.NoError(t, err)
	afterOpen := repo.checkpointCount()

	// Boundaries at appends 5 and 10, nowhere else.
	for i := 1; i <= 12; i++ {
		require.NoError(t, c.Append(context.Background(), session, therapy.Interaction{UserMessage: "m"}))
		want := afterOpen
		if i >= 10 {
			want += 2
		} else if i >= 5 {
			want++
		}
		assert.Equal(t, want, repo.checkpointCount(), "after append %d", i)
	}

	c.Close(context.Background(), session, "done")
	assert.Equal(t, afterOpen+3, repo.checkpointCount(), "close adds the final flush")
}

func TestAppend_CheckpointFailureDoesNotBlock(t *testing.T) {
	repo := newFakeSessionRepo()
	c := newTestController(repo)
	session, err := c.Open(context.Background(), core.PatientID(core.NewID()))
	require.NoError(t, err)

	repo.failAll = true
	for i := 0; i < 6; i++ {
		require.NoError(t, c.Append(context.Background(), session, therapy.Interaction{UserMessage: "m"}))
	}
	assert.Equal(t, 6, session.Len())
}

func TestAppend_AfterCloseFails(t *testing.T) {
	repo := newFakeSessionRepo()
	c := newTestController(repo)
	session, err := c.Open(context.Background(), core.PatientID(core.NewID()))
	require.NoError(t, err)
	require.NoError(t, c.Append(context.Background(), session, therapy.Interaction{UserMessage: "m"}))

	c.Close(context.Background(), session, "done")

	err = c.Append(context.Background(), session, therapy.Interaction{UserMessage: "late"})
	require.Error(t, err)
	assert.True(t, core.IsInvalidStateError(err))
	assert.Equal(t, 1, session.Len())
}

func TestClose_Idempotent(t *testing.T) {
	repo := newFakeSessionRepo()
	c := newTestController(repo)
	session, err := c.Open(context.Background(), core.PatientID(core.NewID()))
	require.NoError(t, err)

	ref := c.Close(context.Background(), session, "first")
	count := repo.checkpointCount()

	again := c.Close(context.Background(), session, "second")
	assert.Equal(t, ref, again)
	assert.Equal(t, count, repo.checkpointCount(), "no duplicate final flush")
	assert.Equal(t, "first", session.Summary())
}

func TestClose_FreezesMetrics(t *testing.T) {
	repo := newFakeSessionRepo()
	c := newTestController(repo)
	session, err := c.Open(context.Background(), core.PatientID(core.NewID()))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, c.Append(context.Background(), session, therapy.Interaction{
			UserMessage: "m",
			Emotion:     therapy.EmotionAnalysis{Primary: "sadness", Intensity: therapy.IntensityMedium},
			Technique:   therapy.TechniqueLettingGo,
		}))
	}
	c.Close(context.Background(), session, "done")

	metrics := session.Metrics()
	require.NotNil(t, metrics)
	assert.Equal(t, 3, metrics.InteractionCount)
	assert.Equal(t, 30, metrics.ProgressPercentage)
}

func TestClassificationDue_Cadence(t *testing.T) {
	repo := newFakeSessionRepo()
	c := newTestController(repo)
	session, err := c.Open(context.Background(), core.PatientID(core.NewID()))
	require.NoError(t, err)

	// Due iff len >= 3 and len % 5 == 0.
	for i := 1; i <= 12; i++ {
		require.NoError(t, c.Append(context.Background(), session, therapy.Interaction{UserMessage: "m"}))
		want := i >= 3 && i%5 == 0
		assert.Equal(t, want, c.ClassificationDue(session), "at len %d", i)
	}
}

func TestClassificationWindow_LastFive(t *testing.T) {
	repo := newFakeSessionRepo()
	c := newTestController(repo)
	session, err := c.Open(context.Background(), core.PatientID(core.NewID()))
	require.NoError(t, err)

	for i := 0; i < 8; i++ {
		require.NoError(t, c.Append(context.Background(), session, therapy.Interaction{
			UserMessage: string(rune('a' + i)),
		}))
	}

	window := c.ClassificationWindow(session)
	require.Len(t, window, 5)
	assert.Equal(t, "d", window[0].UserMessage)
	assert.Equal(t, "h", window[4].UserMessage)
}

func TestAppend_ServerAssignedTimestamps(t *testing.T) {
	repo := newFakeSessionRepo()
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewSessionController(repo, analytics.NewEngine(0.05), testPolicy(), core.FixedClock{T: fixed}, testLogger())

	session, err := c.Open(context.Background(), core.PatientID(core.NewID()))
	require.NoError(t, err)

	in := therapy.Interaction{UserMessage: "m", Timestamp: core.NewTimestamp(time.Unix(0, 0))}
	require.NoError(t, c.Append(context.Background(), session, in))
	assert.Equal(t, core.NewTimestamp(fixed), session.Interactions()[0].Timestamp)
}
