package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mpetrov/storefront/internal/models"
)

type OutboxRepo struct {
	DB *gorm.DB
}

// Due returns pending notifications whose next attempt time has passed,
// oldest first.
func (r *OutboxRepo) Due(ctx context.Context, now time.Time, limit int) ([]models.Notification, error) {
	var notes []models.Notification
	err := r.DB.WithContext(ctx).
		Where("status = ? AND next_attempt_at <= ?", models.NotificationPending, now).
		Order("next_attempt_at ASC").
		Limit(limit).
		Find(&notes).Error
	if err != nil {
		return nil, err
	}
	return notes, nil
}

func (r *OutboxRepo) MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":  models.NotificationSent,
			"sent_at": at,
		}).Error
}

// MarkRetry records a failed attempt; terminal marks the row failed instead
// of rescheduling.
func (r *OutboxRepo) MarkRetry(ctx context.Context, id uuid.UUID, attempts int, next time.Time, lastErr string, terminal bool) error {
	status := models.NotificationPending
	if terminal {
		status = models.NotificationFailed
	}
	return r.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":          status,
			"attempts":        attempts,
			"next_attempt_at": next,
			"last_error":      lastErr,
		}).Error
}
