package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/anonto42/iblue/backend/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// EmailJobRepository is the email outbox.
type EmailJobRepository interface {
	Enqueue(ctx context.Context, req models.EmailNotificationRequest) (*models.EmailJob, error)
	GetPending(ctx context.Context, now time.Time, limit int) ([]models.EmailJob, error)
	MarkSent(ctx context.Context, id uint) error
	MarkFailed(ctx context.Context, id uint, cause error, maxRetries int, now time.Time) error
}

type PostgresEmailJobRepository struct {
	db *gorm.DB
	// RetryStep is multiplied by the attempt number to get the next delay.
	RetryStep time.Duration
}

func NewPostgresEmailJobRepository(db *gorm.DB) *PostgresEmailJobRepository {
	return &PostgresEmailJobRepository{db: db, RetryStep: 30 * time.Second}
}

func (r *PostgresEmailJobRepository) Enqueue(ctx context.Context, req models.EmailNotificationRequest) (*models.EmailJob, error) {
	job := &models.EmailJob{
		Payload: datatypes.NewJSONType(req),
		Status:  models.EmailJobPending,
	}
	if err := r.db.WithContext(ctx).Create(job).Error; err != nil {
		return nil, fmt.Errorf("failed to enqueue email job: %w", err)
	}
	return job, nil
}

func (r *PostgresEmailJobRepository) GetPending(ctx context.Context, now time.Time, limit int) ([]models.EmailJob, error) {
	var jobs []models.EmailJob
	err := r.db.WithContext(ctx).
		Where("status = ? AND (next_retry_at IS NULL OR next_retry_at <= ?)", models.EmailJobPending, now).
		Order("created_at ASC").
		Limit(limit).
		Find(&jobs).Error
	return jobs, err
}

func (r *PostgresEmailJobRepository) MarkSent(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.EmailJob{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": models.EmailJobSent, "next_retry_at": nil}).Error
}

func (r *PostgresEmailJobRepository) MarkFailed(ctx context.Context, id uint, cause error, maxRetries int, now time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var job models.EmailJob
		if err := tx.Select("id", "retry_count").First(&job, id).Error; err != nil {
			return fmt.Errorf("failed to load email job %d: %w", id, err)
		}

		status, retryCount, nextRetryAt := NextRetry(job.RetryCount, maxRetries, r.RetryStep, now)
		msg := ""
		if cause != nil {
			msg = cause.Error()
		}
		return tx.Model(&models.EmailJob{}).Where("id = ?", id).Updates(map[string]interface{}{
			"status":        status,
			"retry_count":   retryCount,
			"next_retry_at": nextRetryAt,
			"last_error":    msg,
		}).Error
	})
}

// NextRetry computes the state after a failed attempt. Delays grow linearly
// with the attempt number; once maxRetries is reached the job stays failed.
func NextRetry(retryCount, maxRetries int, step time.Duration, now time.Time) (models.EmailJobStatus, int, *time.Time) {
	retryCount++
	if retryCount >= maxRetries {
		return models.EmailJobFailed, retryCount, nil
	}
	next := now.Add(time.Duration(retryCount) * step)
	return models.EmailJobPending, retryCount, &next
}
