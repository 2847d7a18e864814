package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/sirpyerre/task-manager/internal/core/domain"
)

type recordingRepo struct {
	mu     sync.Mutex
	events []domain.AuthEvent
	fail   bool
	done   chan struct{}
}

func (r *recordingRepo) InsertEvent(_ context.Context, e domain.AuthEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	defer func() {
		if r.done != nil {
			r.done <- struct{}{}
		}
	}()
	if r.fail {
		return errors.New("mongo down")
	}
	r.events = append(r.events, e)
	return nil
}

func (r *recordingRepo) snapshot() []domain.AuthEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.AuthEvent(nil), r.events...)
}

func waitFor(t *testing.T, done <-chan struct{}, n int) {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for i := 0; i < n; i++ {
		select {
		case <-done:
		case <-timeout:
			t.Fatalf("timed out after %d of %d deliveries", i, n)
		}
	}
}

func TestDispatcher_PreservesPerEmailOrder(t *testing.T) {
	const n = 50
	repo := &recordingRepo{done: make(chan struct{}, n*2)}
	d := NewDispatcher(4, repo, zerolog.Nop())

	d.Start(context.Background())

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		d.Record(domain.AuthEvent{Kind: domain.AuthEventLogin, Email: "a@x.com", OccurredAt: base.Add(time.Duration(i) * time.Second)})
		d.Record(domain.AuthEvent{Kind: domain.AuthEventLogin, Email: "b@x.com", OccurredAt: base.Add(time.Duration(i) * time.Second)})
	}
	waitFor(t, repo.done, n*2)
	d.Close()
	d.Wait()

	last := map[string]time.Time{}
	for _, e := range repo.snapshot() {
		if prev, ok := last[e.Email]; ok && e.OccurredAt.Before(prev) {
			t.Fatalf("events for %s delivered out of order", e.Email)
		}
		last[e.Email] = e.OccurredAt
	}
	if got := len(repo.snapshot()); got != n*2 {
		t.Fatalf("expected %d events, got %d", n*2, got)
	}
}

func TestDispatcher_FailuresDoNotStopWorkers(t *testing.T) {
	repo := &recordingRepo{fail: true, done: make(chan struct{}, 4)}
	d := NewDispatcher(1, repo, zerolog.Nop())

	d.Start(context.Background())
	defer func() {
		d.Close()
		d.Wait()
	}()

	d.Record(domain.AuthEvent{Email: "a@x.com"})
	waitFor(t, repo.done, 1)

	repo.mu.Lock()
	repo.fail = false
	repo.mu.Unlock()

	d.Record(domain.AuthEvent{Email: "a@x.com"})
	waitFor(t, repo.done, 1)

	if got := len(repo.snapshot()); got != 1 {
		t.Fatalf("expected the second event to be stored, got %d", got)
	}
}

type slowRepo struct {
	recordingRepo
	delay time.Duration
}

func (r *slowRepo) InsertEvent(ctx context.Context, e domain.AuthEvent) error {
	select {
	case <-time.After(r.delay):
	case <-ctx.Done():
		return ctx.Err()
	}
	return r.recordingRepo.InsertEvent(ctx, e)
}

func TestDispatcher_CloseDrainsQueuedEvents(t *testing.T) {
	const n = 20
	repo := &slowRepo{delay: 10 * time.Millisecond}
	d := NewDispatcher(1, repo, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)
	for i := 0; i < n; i++ {
		d.Record(domain.AuthEvent{Kind: domain.AuthEventLogin, Email: "a@x.com"})
	}

	// Cancelling the start context must not abort writes already queued.
	cancel()
	d.Close()
	d.Wait()

	if got := len(repo.snapshot()); got != n {
		t.Fatalf("expected all %d queued events persisted, got %d", n, got)
	}
}

func TestDispatcher_RecordAfterCloseIsDropped(t *testing.T) {
	repo := &recordingRepo{}
	d := NewDispatcher(2, repo, zerolog.Nop())
	d.Start(context.Background())
	d.Close()
	d.Close()
	d.Wait()

	d.Record(domain.AuthEvent{Email: "a@x.com"})

	if got := len(repo.snapshot()); got != 0 {
		t.Fatalf("expected no events after close, got %d", got)
	}
}

func TestDispatcher_RecordNeverBlocks(t *testing.T) {
	repo := &recordingRepo{}
	d := NewDispatcher(1, repo, zerolog.Nop())
	// Workers are not started, so the shard fills up.

	finished := make(chan struct{})
	go func() {
		for i := 0; i < channelBuffer+10; i++ {
			d.Record(domain.AuthEvent{Email: "a@x.com"})
		}
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatalf("Record blocked on a full queue")
	}
	if got := len(d.workers[0]); got != channelBuffer {
		t.Fatalf("expected a full shard of %d, got %d", channelBuffer, got)
	}
}

func TestDispatcher_ShardIndexIsStable(t *testing.T) {
	d := NewDispatcher(8, &recordingRepo{}, zerolog.Nop())
	for _, email := range []string{"a@x.com", "b@x.com", ""} {
		first := d.shardIndex(email)
		if first < 0 || first >= 8 {
			t.Fatalf("index %d out of range", first)
		}
		if again := d.shardIndex(email); again != first {
			t.Fatalf("shard index for %q changed: %d then %d", email, first, again)
		}
	}
}

func TestNewDispatcher_DefaultWorkers(t *testing.T) {
	d := NewDispatcher(0, &recordingRepo{}, zerolog.Nop())
	if len(d.workers) != defaultWorkers {
		t.Fatalf("expected %d workers, got %d", defaultWorkers, len(d.workers))
	}
}
