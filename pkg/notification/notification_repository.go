package notification

import (
	"SmartCanteen-Backend/entities"
	"context"

	"gorm.io/gorm"
)

type (
	NotificationRepository interface {
		CreateNotification(ctx context.Context, notification *entities.Notification) error
		GetLatest(ctx context.Context, limit int) ([]*entities.Notification, error)
		TrimTo(ctx context.Context, keep int) error
		MarkAllRead(ctx context.Context, role string) error
	}

	notificationRepository struct {
		db *gorm.DB
	}
)

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) CreateNotification(ctx context.Context, notification *entities.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *notificationRepository) GetLatest(ctx context.Context, limit int) ([]*entities.Notification, error) {
	var notifications []*entities.Notification
	if err := r.db.WithContext(ctx).
		Order("sent_at desc").
		Order("created_at desc").
		Limit(limit).
		Find(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}

// TrimTo deletes everything but the keep newest notifications.
func (r *notificationRepository) TrimTo(ctx context.Context, keep int) error {
	newest := r.db.Model(&entities.Notification{}).
		Select("id").
		Order("sent_at desc").
		Order("created_at desc").
		Limit(keep)

	return r.db.WithContext(ctx).
		Where("id NOT IN (?)", newest).
		Delete(&entities.Notification{}).Error
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, role string) error {
	return r.db.WithContext(ctx).
		Model(&entities.Notification{}).
		Where("is_read = ?", false).
		Where("role = ? OR role = ''", role).
		Update("is_read", true).Error
}
