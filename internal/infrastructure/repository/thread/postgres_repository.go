package thread

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/cristofima/TaskAgent-AgenticAI-sub001/internal/domain/thread"
	"github.com/cristofima/TaskAgent-AgenticAI-sub001/internal/infrastructure/database/entities"
)

// PostgresRepository persists threads via GORM.
type PostgresRepository struct {
	db *gorm.DB
}

// NewPostgresRepository builds a thread repository.
func NewPostgresRepository(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Upsert inserts the thread or, on thread_id conflict, overwrites state and
// derived metadata while leaving created_at untouched.
func (r *PostgresRepository) Upsert(ctx context.Context, t *domain.Thread) error {
	entity := entities.NewSchemaThread(t)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "thread_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"state", "title", "preview", "message_count", "is_active", "updated_at",
			}),
		}).
		Create(entity).Error
	if err != nil {
		return fmt.Errorf("upsert thread: %w", err)
	}

	// On the conflict path the in-memory entity carries the insert-attempt
	// timestamps, not the row's. Reload so callers see the preserved
	// created_at.
	var persisted entities.ChatThread
	err = r.db.WithContext(ctx).
		Select("id", "created_at", "updated_at").
		Where("thread_id = ?", t.ThreadID).
		First(&persisted).Error
	if err != nil {
		return fmt.Errorf("reload thread timestamps: %w", err)
	}
	t.ID = persisted.ID
	t.CreatedAt = persisted.CreatedAt
	t.UpdatedAt = persisted.UpdatedAt
	return nil
}

// FindByThreadID fetches a thread by its public id.
func (r *PostgresRepository) FindByThreadID(ctx context.Context, threadID string) (*domain.Thread, error) {
	var entity entities.ChatThread
	if err := r.db.WithContext(ctx).
		Where("thread_id = ?", threadID).
		First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("fetch thread: %w", err)
	}
	return entity.EtoD(), nil
}

// SoftDelete marks the thread inactive. Rows already inactive, and missing
// ids, match nothing and the call is a no-op.
func (r *PostgresRepository) SoftDelete(ctx context.Context, threadID string) error {
	now := time.Now()
	err := r.db.WithContext(ctx).
		Model(&entities.ChatThread{}).
		Where("thread_id = ? AND is_active = ?", threadID, true).
		Updates(map[string]any{"is_active": false, "deleted_at": &now}).Error
	if err != nil {
		return fmt.Errorf("soft delete thread: %w", err)
	}
	return nil
}

// Restore re-activates a soft-deleted thread.
func (r *PostgresRepository) Restore(ctx context.Context, threadID string) error {
	err := r.db.WithContext(ctx).
		Model(&entities.ChatThread{}).
		Where("thread_id = ? AND is_active = ?", threadID, false).
		Updates(map[string]any{"is_active": true, "deleted_at": nil}).Error
	if err != nil {
		return fmt.Errorf("restore thread: %w", err)
	}
	return nil
}

// List returns one page of threads plus the total matching count.
func (r *PostgresRepository) List(ctx context.Context, filter domain.ListFilter, opts domain.ListOptions) ([]*domain.Thread, int64, error) {
	query := r.db.WithContext(ctx).Model(&entities.ChatThread{})
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count threads: %w", err)
	}

	var rows []entities.ChatThread
	err := query.
		Order(fmt.Sprintf("%s %s", opts.Sort, opts.Order)).
		Offset((opts.Page - 1) * opts.PageSize).
		Limit(opts.PageSize).
		Find(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list threads: %w", err)
	}

	items := make([]*domain.Thread, len(rows))
	for i := range rows {
		items[i] = rows[i].EtoD()
	}
	return items, total, nil
}

// PurgeDeletedBefore hard-deletes threads soft-deleted before cutoff.
func (r *PostgresRepository) PurgeDeletedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("is_active = ? AND deleted_at < ?", false, cutoff).
		Delete(&entities.ChatThread{})
	if result.Error != nil {
		return 0, fmt.Errorf("purge threads: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// Ensure interface compliance.
var _ domain.Repository = (*PostgresRepository)(nil)
