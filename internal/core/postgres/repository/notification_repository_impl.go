package repository

import (
	"context"
	"fmt"

	"renotimeline/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new instance of NotificationStore
func NewNotificationRepository(db *gorm.DB) *notificationRepository {
	return &notificationRepository{db: db}
}

// Insert relies on the unique index on dedup_key: a conflicting insert is
// dropped by the database, which closes the check-then-insert race between
// overlapping scans.
func (r *notificationRepository) Insert(ctx context.Context, n *domain.Notification) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "dedup_key"}},
			DoNothing: true,
		}).
		Create(n)

	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

func (r *notificationRepository) ExistsForTaskOnDate(ctx context.Context, taskID uuid.UUID,
	typ domain.NotificationType, day string) (bool, error) {

	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("dedup_key = ?", domain.TaskDayDedupKey(taskID, typ, day)).
		Count(&count).Error

	if err != nil {
		return false, fmt.Errorf("query notifications for task %s: %w", taskID, err)
	}

	return count > 0, nil
}
