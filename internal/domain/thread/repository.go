package thread

import (
	"context"
	"time"
)

// Repository persists threads and their derived metadata.
type Repository interface {
	// Upsert creates the thread or overwrites its state and metadata,
	// leaving CreatedAt untouched for existing rows.
	Upsert(ctx context.Context, t *Thread) error

	// FindByThreadID returns ErrNotFound when no row exists.
	FindByThreadID(ctx context.Context, threadID string) (*Thread, error)

	// SoftDelete marks the thread inactive. Missing ids are a no-op.
	SoftDelete(ctx context.Context, threadID string) error

	// Restore re-activates a soft-deleted thread. Missing ids are a no-op.
	Restore(ctx context.Context, threadID string) error

	// List returns one page of threads plus the unpaginated total.
	List(ctx context.Context, filter ListFilter, opts ListOptions) ([]*Thread, int64, error)

	// PurgeDeletedBefore hard-deletes threads soft-deleted before cutoff.
	PurgeDeletedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
