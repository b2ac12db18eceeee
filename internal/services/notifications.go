package services

import (
	"context"
	"errors"
	"fmt"

	"firebase.google.com/go/v4/messaging"
	"github.com/anonto42/iblue/backend/internal/models"
	"github.com/anonto42/iblue/backend/pkg/metrics"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

var ErrInvalidNotificationType = errors.New("invalid notification type")

type notificationStorage interface {
	CreateNotification(ctx context.Context, notification *models.Notification) error
}

type pushTokenStorage interface {
	TokensForUser(ctx context.Context, userID string) ([]string, error)
	DeleteTokens(ctx context.Context, tokens []string) error
}

// PushSender is satisfied by *messaging.Client.
type PushSender interface {
	SendEachForMulticast(ctx context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error)
}

// NotifyInput describes one in-app notification. Detail feeds
// NotificationType.Render (emoji, matched languages).
type NotifyInput struct {
	RecipientID string
	SenderID    string
	ActorName   string
	Type        models.NotificationType
	Detail      string
	Metadata    models.NotificationMetadata
}

// NotificationService writes in-app notifications and mirrors them to web push.
type NotificationService struct {
	notifications notificationStorage
	tokens        pushTokenStorage
	push          PushSender
	baseURL       string
	logger        *zap.Logger
}

// NewNotificationService creates the service. push may be nil, which disables web push.
func NewNotificationService(notifications notificationStorage, tokens pushTokenStorage, push PushSender, baseURL string, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		tokens:        tokens,
		push:          push,
		baseURL:       baseURL,
		logger:        logger,
	}
}

// Notify stores the notification and pushes it to the recipient's devices.
// A user acting on their own content gets nothing; (nil, nil) is returned.
func (s *NotificationService) Notify(ctx context.Context, in NotifyInput) (*models.Notification, error) {
	if !in.Type.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidNotificationType, string(in.Type))
	}
	if in.RecipientID == "" || in.RecipientID == in.SenderID {
		return nil, nil
	}

	actor := in.ActorName
	if actor == "" {
		actor = models.DefaultDisplayName
	}
	n := &models.Notification{
		RecipientID: in.RecipientID,
		SenderID:    in.SenderID,
		Type:        in.Type,
		Content:     in.Type.Render(actor, in.Detail),
		Metadata:    datatypes.NewJSONType(in.Metadata),
	}
	if err := s.notifications.CreateNotification(ctx, n); err != nil {
		return nil, fmt.Errorf("create %s notification for %s: %w", in.Type, in.RecipientID, err)
	}
	metrics.NotificationsCreated.WithLabelValues(string(in.Type)).Inc()

	s.sendPush(ctx, n)
	return n, nil
}

func (s *NotificationService) sendPush(ctx context.Context, n *models.Notification) {
	if s.push == nil || s.tokens == nil {
		return
	}
	tokens, err := s.tokens.TokensForUser(ctx, n.RecipientID)
	if err != nil {
		s.logger.Warn("Failed to load push tokens", zap.String("user_id", n.RecipientID), zap.Error(err))
		return
	}
	if len(tokens) == 0 {
		return
	}

	meta := n.Metadata.Data()
	link := s.baseURL + "/notifications"
	if meta.PostID != "" {
		link = s.baseURL + "/post/" + meta.PostID
	}
	msg := &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: n.Type.Title(),
			Body:  n.Content,
		},
		Data: map[string]string{
			"type":            string(n.Type),
			"post_id":         meta.PostID,
			"notification_id": fmt.Sprint(n.ID),
		},
		Webpush: &messaging.WebpushConfig{
			FCMOptions: &messaging.WebpushFCMOptions{Link: link},
		},
	}

	resp, err := s.push.SendEachForMulticast(ctx, msg)
	if err != nil {
		metrics.PushTotal.WithLabelValues("error").Inc()
		s.logger.Warn("Web push failed", zap.String("user_id", n.RecipientID), zap.Error(err))
		return
	}
	metrics.PushTotal.WithLabelValues("ok").Add(float64(resp.SuccessCount))
	metrics.PushTotal.WithLabelValues("failed").Add(float64(resp.FailureCount))

	var stale []string
	for i, r := range resp.Responses {
		if r != nil && !r.Success && messaging.IsUnregistered(r.Error) && i < len(tokens) {
			stale = append(stale, tokens[i])
		}
	}
	if len(stale) > 0 {
		if err := s.tokens.DeleteTokens(ctx, stale); err != nil {
			s.logger.Warn("Failed to prune stale push tokens", zap.Error(err))
		}
	}
}
