package outbox

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/idoblon/vendorrs-backend/pkg/db/models"
)

const maxErrorLen = 1024

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Insert(tx *gorm.DB, event models.OutboxEvent) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	return tx.Create(&event).Error
}

// FetchUnpublished returns the oldest rows that are neither published nor
// dead-lettered.
func (r *Repository) FetchUnpublished(ctx context.Context, limit int) ([]models.OutboxEvent, error) {
	var rows []models.OutboxEvent
	err := r.db.WithContext(ctx).
		Where("published_at IS NULL AND dead_lettered_at IS NULL").
		Order("created_at ASC").
		Order("id ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *Repository) MarkPublished(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&models.OutboxEvent{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"published_at": time.Now().UTC(),
		}).Error
}

// MarkFailed records the error and bumps the attempt counter. Once the counter
// reaches maxAttempts, or when terminal is set, the row is dead-lettered.
func (r *Repository) MarkFailed(ctx context.Context, id uuid.UUID, cause error, maxAttempts int, terminal bool) error {
	msg := truncateError(cause)
	updates := map[string]any{
		"last_error":    msg,
		"attempt_count": gorm.Expr("attempt_count + 1"),
	}
	if terminal {
		updates["dead_lettered_at"] = time.Now().UTC()
		return r.db.WithContext(ctx).Model(&models.OutboxEvent{}).Where("id = ?", id).Updates(updates).Error
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.OutboxEvent{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}
		if maxAttempts <= 0 {
			return nil
		}
		return tx.Model(&models.OutboxEvent{}).
			Where("id = ? AND attempt_count >= ? AND dead_lettered_at IS NULL", id, maxAttempts).
			Update("dead_lettered_at", time.Now().UTC()).Error
	})
}

func truncateError(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if len(msg) > maxErrorLen {
		return msg[:maxErrorLen]
	}
	return msg
}

// DeletePublishedBefore purges rows published before cutoff. Dead-lettered
// rows are never published and stay for inspection.
func (r *Repository) DeletePublishedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("published_at IS NOT NULL AND published_at < ?", cutoff).
		Delete(&models.OutboxEvent{})
	return res.RowsAffected, res.Error
}
