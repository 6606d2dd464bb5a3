package therapy

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"

	"amira/internal"
	"amira/internal/config"
)

type inbound struct {
	externalID int64
	event      Event
}

// EventSink consumes ordered per-user events; the Machine implements it.
type EventSink interface {
	HandleEvent(ctx context.Context, externalID int64, ev Event)
}

// Dispatcher serializes event handling per external user: one FIFO worker
// per user id, no ordering guarantees across users. A weighted semaphore
// bounds how many workers execute simultaneously so a burst of users cannot
// exhaust the process.
type Dispatcher struct {
	machine EventSink
	sem     *semaphore.Weighted
	policy  *config.TherapyConfig
	logger  *internal.Logger

	mu      sync.Mutex
	workers map[int64]chan inbound
	wg      sync.WaitGroup
	closed  bool
}

// NewDispatcher wires the dispatcher around the conversation machine.
func NewDispatcher(machine EventSink, policy *config.TherapyConfig, logger *internal.Logger) *Dispatcher {
	return &Dispatcher{
		machine: machine,
		sem:     semaphore.NewWeighted(policy.MaxConcurrentWorkers),
		policy:  policy,
		logger:  logger.With("[dispatch]"),
		workers: make(map[int64]chan inbound),
	}
}

// HandleText enqueues a free-text event for its user's worker.
func (d *Dispatcher) HandleText(ctx context.Context, externalID int64, text string) {
	d.enqueue(ctx, externalID, Event{Text: text})
}

// HandleChoice enqueues a choice event for its user's worker.
func (d *Dispatcher) HandleChoice(ctx context.Context, externalID int64, payload string) {
	d.enqueue(ctx, externalID, Event{Choice: payload})
}

func (d *Dispatcher) enqueue(ctx context.Context, externalID int64, ev Event) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		d.logger.Warn("dropping event for %d: dispatcher stopped", externalID)
		return
	}
	ch, ok := d.workers[externalID]
	if !ok {
		ch = make(chan inbound, d.policy.WorkerQueueSize)
		d.workers[externalID] = ch
		d.wg.Add(1)
		go d.worker(ch)
	}
	d.mu.Unlock()

	// A full queue sheds the event rather than stalling the ingress loop;
	// the user re-sends, order within the queue is preserved.
	select {
	case ch <- inbound{externalID: externalID, event: ev}:
	default:
		d.logger.Warn("queue full for %d, dropping event", externalID)
	}
}

func (d *Dispatcher) worker(ch chan inbound) {
	defer d.wg.Done()
	for in := range ch {
		ctx := context.Background()
		if err := d.sem.Acquire(ctx, 1); err != nil {
			return
		}
		d.machine.HandleEvent(ctx, in.externalID, in.event)
		d.sem.Release(1)
	}
}

// Stop closes all worker queues and waits for in-flight events to drain.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for _, ch := range d.workers {
		close(ch)
	}
	d.mu.Unlock()
	d.wg.Wait()
}
