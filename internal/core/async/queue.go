package async

import (
	"context"
	"errors"
	"time"

	"github.com/joseph-ayodele/ensayos/internal/entity"
)

// ErrQueueClosed is returned by Enqueue once Shutdown has started.
var ErrQueueClosed = errors.New("queue closed")

// Job carries one extraction result to be persisted.
type Job struct {
	Result      entity.ExtractionResult
	SubmittedAt time.Time
	RequestID   string
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}

// Saver is the write side of the report store.
type Saver interface {
	Upsert(ctx context.Context, result entity.ExtractionResult) error
}
