package therapy

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu     sync.Mutex
	byUser map[int64][]string
}

func newRecordingSink() *recordingSink {
	return &recordingSink{byUser: make(map[int64][]string)}
}

func (s *recordingSink) HandleEvent(ctx context.Context, externalID int64, ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byUser[externalID] = append(s.byUser[externalID], ev.Text+ev.Choice)
}

func (s *recordingSink) events(externalID int64) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.byUser[externalID]...)
}

func TestDispatcher_FIFOPerUser(t *testing.T) {
	sink := newRecordingSink()
	d := NewDispatcher(sink, testPolicy(), testLogger())

	const perUser = 20
	for i := 0; i < perUser; i++ {
		for user := int64(1); user <= 4; user++ {
			d.HandleText(context.Background(), user, fmt.Sprintf("event %d", i))
		}
	}
	d.Stop()

	for user := int64(1); user <= 4; user++ {
		got := sink.events(user)
		require.Len(t, got, perUser, "user %d", user)
		for i, text := range got {
			assert.Equal(t, fmt.Sprintf("event %d", i), text, "user %d position %d", user, i)
		}
	}
}

func TestDispatcher_MixedEventKinds(t *testing.T) {
	sink := newRecordingSink()
	d := NewDispatcher(sink, testPolicy(), testLogger())

	d.HandleText(context.Background(), 1, "hello")
	d.HandleChoice(context.Background(), 1, "depression")
	d.Stop()

	assert.Equal(t, []string{"hello", "depression"}, sink.events(1))
}

func TestDispatcher_DropsAfterStop(t *testing.T) {
	sink := newRecordingSink()
	d := NewDispatcher(sink, testPolicy(), testLogger())
	d.Stop()

	d.HandleText(context.Background(), 1, "too late")
	assert.Empty(t, sink.events(1))
}
