package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/anonto42/iblue/backend/internal/models"
	"github.com/anonto42/iblue/backend/pkg/firebase"
	"github.com/anonto42/iblue/backend/pkg/mailer"
	"github.com/anonto42/iblue/backend/pkg/metrics"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type profileReader interface {
	GetProfileByID(ctx context.Context, id string) (*models.Profile, error)
}

type notificationLogStorage interface {
	Insert(ctx context.Context, log *models.NotificationLog) error
	SentRecipientsForPost(ctx context.Context, postID string) (map[string]bool, error)
	HasSent(ctx context.Context, recipientID, postID string) (bool, error)
}

type presenceChecker interface {
	IsActive(ctx context.Context, userID string) (bool, error)
	ActiveSet(ctx context.Context, userIDs []string) (map[string]bool, error)
}

type emailResolver interface {
	ResolveEmail(ctx context.Context, uid string) (string, error)
}

type mailSender interface {
	Send(ctx context.Context, msg mailer.Message) (string, error)
}

// dedupeLock is satisfied by *redis.Deduper, including a nil one.
type dedupeLock interface {
	AcquireOnce(ctx context.Context, scope, id string) bool
	Release(ctx context.Context, scope, id string)
}

const emailDedupeScope = "email"

type noLock struct{}

func (noLock) AcquireOnce(context.Context, string, string) bool { return true }
func (noLock) Release(context.Context, string, string) {}

// SendResult is the outcome of one email notification request.
type SendResult struct {
	Status    models.EmailStatus `json:"status"`
	Email     string             `json:"email,omitempty"`
	MessageID string             `json:"message_id,omitempty"`
}

// EmailNotifier sends one email to one user, gated by opt-in, presence and
// the sent-log.
type EmailNotifier struct {
	profiles profileReader
	logs     notificationLogStorage
	presence presenceChecker
	emails   emailResolver
	mailer   mailSender
	dedupe   dedupeLock
	logger   *zap.Logger
}

func NewEmailNotifier(
	profiles profileReader,
	logs notificationLogStorage,
	presence presenceChecker,
	emails emailResolver,
	mailer mailSender,
	dedupe dedupeLock,
	logger *zap.Logger,
) *EmailNotifier {
	if dedupe == nil {
		dedupe = noLock{}
	}
	return &EmailNotifier{
		profiles: profiles,
		logs:     logs,
		presence: presence,
		emails:   emails,
		mailer:   mailer,
		dedupe:   dedupe,
		logger:   logger,
	}
}

// Send runs the gates in order and delivers the email if all pass. Skips
// are reported through SendResult.Status with a nil error.
func (n *EmailNotifier) Send(ctx context.Context, req models.EmailNotificationRequest) (SendResult, error) {
	log := n.logger.With(
		zap.String("recipient_id", req.RecipientID),
		zap.String("post_id", req.PostID),
		zap.String("type", string(req.Type)),
	)

	profile, err := n.profiles.GetProfileByID(ctx, req.RecipientID)
	if err != nil {
		return SendResult{}, fmt.Errorf("load recipient profile: %w", err)
	}
	if !profile.EmailNotificationsEnabled {
		log.Debug("Recipient opted out of email")
		return n.skip(models.EmailSkippedOptOut), nil
	}

	if !req.SkipPresenceCheck {
		active, err := n.presence.IsActive(ctx, req.RecipientID)
		if err != nil {
			log.Warn("Presence check failed, treating recipient as inactive", zap.Error(err))
		}
		if active {
			n.record(ctx, req, "", models.EmailSkippedActiveUser, "")
			return n.skip(models.EmailSkippedActiveUser), nil
		}
	}

	if req.PostID != "" {
		sent, err := n.logs.HasSent(ctx, req.RecipientID, req.PostID)
		if err != nil {
			return SendResult{}, fmt.Errorf("check notification log: %w", err)
		}
		if sent {
			return n.skip(models.EmailSkippedDuplicate), nil
		}
		if !n.dedupe.AcquireOnce(ctx, emailDedupeScope, dedupeKey(req)) {
			return n.skip(models.EmailSkippedDuplicate), nil
		}
	}

	email, err := n.emails.ResolveEmail(ctx, req.RecipientID)
	if err != nil {
		n.release(ctx, req)
		if errors.Is(err, firebase.ErrNoEmail) {
			n.record(ctx, req, "", models.EmailSkippedNoEmail, err.Error())
			return n.skip(models.EmailSkippedNoEmail), nil
		}
		return SendResult{}, fmt.Errorf("resolve recipient email: %w", err)
	}

	messageID, err := n.mailer.Send(ctx, mailer.Message{
		To:       email,
		Subject:  req.Subject,
		HTMLBody: req.HTMLBody,
		TextBody: req.TextBody,
	})
	if err != nil {
		n.release(ctx, req)
		n.record(ctx, req, email, models.EmailFailed, err.Error())
		metrics.EmailsTotal.WithLabelValues(string(models.EmailFailed)).Inc()
		return SendResult{Status: models.EmailFailed, Email: email}, err
	}

	n.record(ctx, req, email, models.EmailSent, "")
	metrics.EmailsTotal.WithLabelValues(string(models.EmailSent)).Inc()
	log.Info("Email notification sent", zap.String("message_id", messageID))
	return SendResult{Status: models.EmailSent, Email: email, MessageID: messageID}, nil
}

func (n *EmailNotifier) skip(status models.EmailStatus) SendResult {
	metrics.EmailsTotal.WithLabelValues(string(status)).Inc()
	return SendResult{Status: status}
}

func (n *EmailNotifier) release(ctx context.Context, req models.EmailNotificationRequest) {
	if req.PostID != "" {
		n.dedupe.Release(ctx, emailDedupeScope, dedupeKey(req))
	}
}

// record appends an audit row. Failures are logged and swallowed.
func (n *EmailNotifier) record(ctx context.Context, req models.EmailNotificationRequest, email string, status models.EmailStatus, errMsg string) {
	row := &models.NotificationLog{
		RecipientID: req.RecipientID,
		Email:       email,
		Subject:     req.Subject,
		Status:      status,
		Metadata: datatypes.NewJSONType(models.NotificationLogMetadata{
			PostID: req.PostID,
			Type:   req.Type,
			Error:  errMsg,
		}),
	}
	if err := n.logs.Insert(ctx, row); err != nil {
		n.logger.Error("Failed to write notification log",
			zap.String("recipient_id", req.RecipientID),
			zap.String("status", string(status)),
			zap.Error(err),
		)
	}
}

func dedupeKey(req models.EmailNotificationRequest) string {
	return req.PostID + ":" + req.RecipientID
}
