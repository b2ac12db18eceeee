package repositories

import (
	"context"

	"github.com/anonto42/iblue/backend/internal/models"
	"gorm.io/gorm"
)

// NotificationLogRepository is the append-only email audit log.
type NotificationLogRepository interface {
	Insert(ctx context.Context, log *models.NotificationLog) error
	// SentRecipientsForPost returns the recipients with a "sent" row for postID.
	SentRecipientsForPost(ctx context.Context, postID string) (map[string]bool, error)
	HasSent(ctx context.Context, recipientID, postID string) (bool, error)
}

type PostgresNotificationLogRepository struct {
	db *gorm.DB
}

func NewPostgresNotificationLogRepository(db *gorm.DB) *PostgresNotificationLogRepository {
	return &PostgresNotificationLogRepository{db: db}
}

func (r *PostgresNotificationLogRepository) Insert(ctx context.Context, log *models.NotificationLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *PostgresNotificationLogRepository) SentRecipientsForPost(ctx context.Context, postID string) (map[string]bool, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&models.NotificationLog{}).
		Where("status = ? AND metadata->>'post_id' = ?", models.EmailSent, postID).
		Distinct().
		Pluck("recipient_id", &ids).Error
	if err != nil {
		return nil, err
	}
	sent := make(map[string]bool, len(ids))
	for _, id := range ids {
		sent[id] = true
	}
	return sent, nil
}

func (r *PostgresNotificationLogRepository) HasSent(ctx context.Context, recipientID, postID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.NotificationLog{}).
		Where("recipient_id = ? AND status = ? AND metadata->>'post_id' = ?", recipientID, models.EmailSent, postID).
		Count(&count).Error
	return count > 0, err
}
