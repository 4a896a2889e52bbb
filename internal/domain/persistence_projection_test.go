package domain

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/kagahq/kaga/internal/bus"
)

type inlineQueue struct {
	mu    sync.Mutex
	names []string
}

func (q *inlineQueue) Enqueue(name string, fn func(context.Context) error) bool {
	q.mu.Lock()
	q.names = append(q.names, name)
	q.mu.Unlock()
	_ = fn(context.Background())

	return true
}

func (q *inlineQueue) Names() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]string(nil), q.names...)
}

type exporterFunc func(ProfileSnapshot) error

func (f exporterFunc) Export(p ProfileSnapshot) error { return f(p) }

func TestPersistenceProjectionStoresAndExports(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := bus.New(slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(b.Close)

	repo := newMemoryProfileRepo()
	queue := &inlineQueue{}
	exported := make(chan ProfileSnapshot, 1)
	stopProjection := StartPersistenceProjection(ctx, b, queue, repo, exporterFunc(func(p ProfileSnapshot) error {
		exported <- p
		return nil
	}))

	defer stopProjection()

	p := NewProfile("projected")
	stop := WatchProfile(p, b)
	defer stop()

	p.LBAS.Enabled.Set(true)

	select {
	case snap := <-exported:
		if !snap.LBAS.Enabled {
			t.Fatalf("expected exported snapshot to be enabled")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for export")
	}

	stored, err := repo.Get(context.Background(), "projected")
	if err != nil {
		t.Fatalf("expected profile to be stored: %v", err)
	}
	if !stored.LBAS.Enabled {
		t.Fatalf("expected stored snapshot to be enabled")
	}
	if names := queue.Names(); len(names) != 2 || names[0] != "upsert_profile" || names[1] != "export_profile" {
		t.Fatalf("unexpected queued writes: %v", names)
	}
}

func TestPersistenceProjectionStopDrainsPublished(t *testing.T) {
	b := bus.New(slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(b.Close)

	repo := newMemoryProfileRepo()
	queue := &inlineQueue{}
	stopProjection := StartPersistenceProjection(context.Background(), b, queue, repo, nil)

	p := NewProfile("drained")
	stopWatch := WatchProfile(p, b)
	p.LBAS.Enabled.Set(true)
	p.LBAS.SetGroupEnabled(2, true)
	stopWatch()
	stopProjection()

	stored, err := repo.Get(context.Background(), "drained")
	if err != nil {
		t.Fatalf("expected profile to be stored once stop returned: %v", err)
	}
	if !stored.LBAS.Enabled || len(stored.LBAS.Groups) != 1 || stored.LBAS.Groups[0] != 2 {
		t.Fatalf("unexpected stored snapshot: %+v", stored.LBAS)
	}
	if names := queue.Names(); len(names) != 2 {
		t.Fatalf("expected one upsert per change, got %v", names)
	}
}
