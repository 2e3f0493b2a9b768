package thread

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Store is the durable keyed storage for serialized thread state. Writes
// fail loud: a lost Save or Delete is data loss. Reads degrade: a transient
// load failure is logged and treated as "no prior state" so a conversation
// can always continue on a fresh thread.
type Store struct {
	repo Repository
	log  zerolog.Logger
}

// NewStore builds the thread store service.
func NewStore(repo Repository, log zerolog.Logger) *Store {
	return &Store{
		repo: repo,
		log:  log.With().Str("component", "thread-store").Logger(),
	}
}

// Save upserts the serialized state under threadID, recomputing title,
// preview and message count from the blob.
func (s *Store) Save(ctx context.Context, threadID string, state json.RawMessage) error {
	meta := ExtractMetadata(state)
	t := &Thread{
		ThreadID:     threadID,
		State:        state,
		Title:        meta.Title,
		Preview:      meta.Preview,
		MessageCount: meta.MessageCount,
		IsActive:     true,
	}
	if err := s.repo.Upsert(ctx, t); err != nil {
		return fmt.Errorf("save thread %s: %w", threadID, err)
	}
	return nil
}

// Load returns the serialized state for threadID, or nil when the thread is
// absent, soft-deleted, or the read failed. Callers treat nil as "start a
// fresh thread", never as an error.
func (s *Store) Load(ctx context.Context, threadID string) json.RawMessage {
	t, err := s.repo.FindByThreadID(ctx, threadID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.log.Warn().Err(err).Str("thread_id", threadID).Msg("thread load failed, starting fresh")
		}
		return nil
	}
	if !t.IsActive {
		return nil
	}
	return t.State
}

// Get returns the full thread record for management endpoints.
func (s *Store) Get(ctx context.Context, threadID string) (*Thread, error) {
	return s.repo.FindByThreadID(ctx, threadID)
}

// Delete soft-deletes the thread. Deleting twice, or a nonexistent id, is a
// no-op.
func (s *Store) Delete(ctx context.Context, threadID string) error {
	if err := s.repo.SoftDelete(ctx, threadID); err != nil {
		return fmt.Errorf("delete thread %s: %w", threadID, err)
	}
	return nil
}

// Restore re-activates a soft-deleted thread.
func (s *Store) Restore(ctx context.Context, threadID string) error {
	if err := s.repo.Restore(ctx, threadID); err != nil {
		return fmt.Errorf("restore thread %s: %w", threadID, err)
	}
	return nil
}

// PurgeDeletedBefore hard-deletes threads soft-deleted before cutoff and
// returns how many rows were removed.
func (s *Store) PurgeDeletedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	purged, err := s.repo.PurgeDeletedBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge deleted threads: %w", err)
	}
	return purged, nil
}

// List returns one page of threads. Defaults: updated_at desc, page 1,
// page size 20.
func (s *Store) List(ctx context.Context, filter ListFilter, opts ListOptions) (*Page, error) {
	if opts.Sort != SortByCreatedAt && opts.Sort != SortByUpdatedAt {
		opts.Sort = SortByUpdatedAt
	}
	if opts.Order != SortAsc && opts.Order != SortDesc {
		opts.Order = SortDesc
	}
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.PageSize < 1 {
		opts.PageSize = defaultPageSize
	}
	if opts.PageSize > maxPageSize {
		opts.PageSize = maxPageSize
	}

	items, total, err := s.repo.List(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list threads: %w", err)
	}

	return &Page{
		Items:      items,
		TotalCount: total,
		HasMore:    int64((opts.Page-1)*opts.PageSize+len(items)) < total,
	}, nil
}
