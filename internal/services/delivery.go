package services

import (
	"context"
	"time"

	"github.com/anonto42/iblue/backend/internal/models"
	"github.com/anonto42/iblue/backend/pkg/metrics"
	"go.uber.org/zap"
)

// Deliverer hands an already-gated email to its transport.
type Deliverer interface {
	Deliver(ctx context.Context, req models.EmailNotificationRequest) (models.EmailStatus, error)
}

type emailSender interface {
	Send(ctx context.Context, req models.EmailNotificationRequest) (SendResult, error)
}

// DirectDeliverer sends inline through the email notifier.
type DirectDeliverer struct {
	sender emailSender
}

func NewDirectDeliverer(sender emailSender) *DirectDeliverer {
	return &DirectDeliverer{sender: sender}
}

func (d *DirectDeliverer) Deliver(ctx context.Context, req models.EmailNotificationRequest) (models.EmailStatus, error) {
	res, err := d.sender.Send(ctx, req)
	if err != nil && res.Status == "" {
		return models.EmailFailed, err
	}
	return res.Status, err
}

type emailJobEnqueuer interface {
	Enqueue(ctx context.Context, req models.EmailNotificationRequest) (*models.EmailJob, error)
}

// OutboxDeliverer writes an email_jobs row for the dispatcher to drain.
type OutboxDeliverer struct {
	jobs emailJobEnqueuer
}

func NewOutboxDeliverer(jobs emailJobEnqueuer) *OutboxDeliverer {
	return &OutboxDeliverer{jobs: jobs}
}

func (d *OutboxDeliverer) Deliver(ctx context.Context, req models.EmailNotificationRequest) (models.EmailStatus, error) {
	if _, err := d.jobs.Enqueue(ctx, req); err != nil {
		return models.EmailFailed, err
	}
	metrics.OutboxJobs.WithLabelValues("enqueued").Inc()
	return models.EmailQueued, nil
}

type emailJobStorage interface {
	GetPending(ctx context.Context, now time.Time, limit int) ([]models.EmailJob, error)
	MarkSent(ctx context.Context, id uint) error
	MarkFailed(ctx context.Context, id uint, cause error, maxRetries int, now time.Time) error
}

// EmailDispatcher drains the email outbox on a ticker.
type EmailDispatcher struct {
	jobs       emailJobStorage
	sender     emailSender
	logger     *zap.Logger
	maxRetries int
	interval   time.Duration
	batchSize  int
	now        func() time.Time
}

func NewEmailDispatcher(jobs emailJobStorage, sender emailSender, logger *zap.Logger) *EmailDispatcher {
	return &EmailDispatcher{
		jobs:       jobs,
		sender:     sender,
		logger:     logger,
		maxRetries: 5,
		interval:   5 * time.Second,
		batchSize:  50,
		now:        time.Now,
	}
}

func (d *EmailDispatcher) WithMaxRetries(maxRetries int) *EmailDispatcher {
	d.maxRetries = maxRetries
	return d
}

func (d *EmailDispatcher) WithInterval(interval time.Duration) *EmailDispatcher {
	d.interval = interval
	return d
}

func (d *EmailDispatcher) WithBatchSize(batchSize int) *EmailDispatcher {
	d.batchSize = batchSize
	return d
}

// Start blocks until ctx is cancelled.
func (d *EmailDispatcher) Start(ctx context.Context) {
	d.logger.Info("Starting email outbox dispatcher",
		zap.Int("max_retries", d.maxRetries),
		zap.Duration("interval", d.interval),
		zap.Int("batch_size", d.batchSize),
	)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("Email outbox dispatcher stopped")
			return
		case <-ticker.C:
			d.processPending(ctx)
		}
	}
}

func (d *EmailDispatcher) processPending(ctx context.Context) {
	jobs, err := d.jobs.GetPending(ctx, d.now(), d.batchSize)
	if err != nil {
		d.logger.Error("Failed to get pending email jobs", zap.Error(err))
		return
	}

	for _, job := range jobs {
		req := job.Payload.Data()
		res, err := d.sender.Send(ctx, req)
		if err != nil {
			d.logger.Warn("Email job failed",
				zap.Uint("job_id", job.ID),
				zap.String("recipient_id", req.RecipientID),
				zap.Int("retry_count", job.RetryCount),
				zap.Error(err),
			)
			if job.RetryCount+1 >= d.maxRetries {
				metrics.OutboxJobs.WithLabelValues("failed").Inc()
			} else {
				metrics.OutboxJobs.WithLabelValues("retry").Inc()
			}
			if err := d.jobs.MarkFailed(ctx, job.ID, err, d.maxRetries, d.now()); err != nil {
				d.logger.Error("Failed to mark email job as failed", zap.Uint("job_id", job.ID), zap.Error(err))
			}
			continue
		}

		// Skips are final too; the notifier already logged why.
		if err := d.jobs.MarkSent(ctx, job.ID); err != nil {
			d.logger.Error("Failed to mark email job as sent", zap.Uint("job_id", job.ID), zap.Error(err))
			continue
		}
		metrics.OutboxJobs.WithLabelValues("sent").Inc()
		d.logger.Debug("Email job processed",
			zap.Uint("job_id", job.ID),
			zap.String("status", string(res.Status)),
		)
	}
}
