package domain

import (
	"context"
	"log/slog"

	"github.com/kagahq/kaga/internal/bus"
)

// WriteQueue serializes persistence writes from async domain events.
// Enqueue reports false when the write was refused.
type WriteQueue interface {
	Enqueue(name string, fn func(context.Context) error) bool
}

// StartPersistenceProjection stores every published profile snapshot and,
// when exporter is not nil, writes it out for the automation engine.
//
// The returned stop func blocks until every snapshot published before it
// was handed to queue.
func StartPersistenceProjection(ctx context.Context, b bus.MessageBus, queue WriteQueue, repo ProfileRepository, exporter ProfileExporter) (stop func()) {
	return bus.Listen(ctx, b, TopicProfileChanged, func(raw any) {
		update, ok := raw.(ProfileChanged)
		if !ok {
			slog.Debug("ignoring unexpected profile payload", "component", "domain.projection")
			return
		}
		snap := update.Snapshot
		queue.Enqueue("upsert_profile", func(writeCtx context.Context) error {
			return repo.Upsert(writeCtx, snap)
		})
		if exporter != nil {
			queue.Enqueue("export_profile", func(context.Context) error {
				return exporter.Export(snap)
			})
		}
	})
}
