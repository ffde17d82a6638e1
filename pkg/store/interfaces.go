package store

import (
	"context"

	"snapsort/pkg/model"
)

// RunStore handles organizing-run bookkeeping.
type RunStore interface {
	BeginRun(ctx context.Context, source, destination string) (*model.Run, error)
	FinishRun(ctx context.Context, runID string, fileCount, eventCount int) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
}

// EventStore handles event persistence. Event keys are stable across runs,
// so saving an existing key is a no-op.
type EventStore interface {
	SaveEvent(ctx context.Context, e *model.Event) error
	GetEvent(ctx context.Context, key string) (*model.Event, error)
	CountEvents(ctx context.Context) (int, error)
}

// MediaStore handles per-file catalog entries.
type MediaStore interface {
	SaveMedia(ctx context.Context, runID string, r *model.MediaRecord, destPath string) error
	CountMediaByEvent(ctx context.Context, eventKey string) (int, error)
}
