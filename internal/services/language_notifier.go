package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/anonto42/iblue/backend/internal/langtag"
	"github.com/anonto42/iblue/backend/internal/models"
	"github.com/anonto42/iblue/backend/pkg/metrics"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type postReader interface {
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
}

type subscriberReader interface {
	GetProfileByID(ctx context.Context, id string) (*models.Profile, error)
	GetEmailOptedIn(ctx context.Context, excludeID string) ([]models.Profile, error)
}

type inAppNotifier interface {
	Notify(ctx context.Context, in NotifyInput) (*models.Notification, error)
}

// LanguageNotifyRequest asks for a fan-out of one post to the users who
// follow any of its languages. Languages defaults to the tags in the post.
type LanguageNotifyRequest struct {
	PostID    string   `json:"post_id" validate:"required"`
	Languages []string `json:"languages,omitempty"`
	Content   string   `json:"content,omitempty"`
	Immediate bool     `json:"immediate,omitempty"`
	Debug     bool     `json:"debug,omitempty"`
}

// RecipientDetail explains what happened to one candidate. Only returned in debug mode.
type RecipientDetail struct {
	RecipientID string   `json:"recipient_id"`
	Email       string   `json:"email,omitempty"`
	Matched     []string `json:"matched,omitempty"`
	InApp       bool     `json:"in_app"`
	Status      string   `json:"status"`
	Error       string   `json:"error,omitempty"`
}

type LanguageNotifySummary struct {
	Success        bool              `json:"success"`
	PostsProcessed int               `json:"posts_processed"`
	EmailsSent     int               `json:"emails_sent"`
	EmailsSkipped  int               `json:"emails_skipped"`
	InAppCreated   int               `json:"in_app_created"`
	Errors         []string          `json:"errors"`
	Details        []RecipientDetail `json:"details,omitempty"`
}

// LanguageNotifier matches a post's language tags against the preferences of
// email-enabled users. Recipients are processed one at a time and a failure
// for one never aborts the rest.
type LanguageNotifier struct {
	posts     postReader
	profiles  subscriberReader
	logs      notificationLogStorage
	presence  presenceChecker
	emails    emailResolver
	notifier  inAppNotifier
	deliverer Deliverer
	baseURL   string
	logger    *zap.Logger

	detached sync.WaitGroup
}

func NewLanguageNotifier(
	posts postReader,
	profiles subscriberReader,
	logs notificationLogStorage,
	presence presenceChecker,
	emails emailResolver,
	notifier inAppNotifier,
	deliverer Deliverer,
	baseURL string,
	logger *zap.Logger,
) *LanguageNotifier {
	return &LanguageNotifier{
		posts:     posts,
		profiles:  profiles,
		logs:      logs,
		presence:  presence,
		emails:    emails,
		notifier:  notifier,
		deliverer: deliverer,
		baseURL:   baseURL,
		logger:    logger,
	}
}

func (n *LanguageNotifier) Notify(ctx context.Context, req LanguageNotifyRequest) (*LanguageNotifySummary, error) {
	start := time.Now()
	defer func() { metrics.LanguageFanoutDuration.Observe(time.Since(start).Seconds()) }()

	summary := &LanguageNotifySummary{Errors: []string{}}
	log := n.logger.With(zap.String("post_id", req.PostID), zap.Bool("immediate", req.Immediate))

	post, err := n.posts.GetPostByID(ctx, req.PostID)
	if err != nil {
		return summary, fmt.Errorf("load post %s: %w", req.PostID, err)
	}
	summary.PostsProcessed = 1

	tags := langtag.Clean(req.Languages)
	if len(tags) == 0 {
		content := req.Content
		if content == "" {
			content = post.Content
		}
		tags = langtag.Merge(post.Metadata.Languages, langtag.Extract(content))
	}
	if len(tags) == 0 {
		log.Debug("Post has no language tags")
		summary.Success = true
		return summary, nil
	}

	actor := post.Metadata.DisplayName
	if author, err := n.profiles.GetProfileByID(ctx, post.UserID); err == nil {
		actor = author.Name()
	} else {
		log.Warn("Failed to load post author", zap.String("author_id", post.UserID), zap.Error(err))
	}
	if actor == "" {
		actor = models.DefaultDisplayName
	}

	candidates, err := n.profiles.GetEmailOptedIn(ctx, post.UserID)
	if err != nil {
		return summary, fmt.Errorf("load email subscribers: %w", err)
	}
	if len(candidates) == 0 {
		summary.Success = true
		return summary, nil
	}

	alreadySent, err := n.logs.SentRecipientsForPost(ctx, post.ID)
	if err != nil {
		return summary, fmt.Errorf("load sent log for post %s: %w", post.ID, err)
	}

	ids := make([]string, 0, len(candidates))
	for _, p := range candidates {
		ids = append(ids, p.ID)
	}
	active, err := n.presence.ActiveSet(ctx, ids)
	if err != nil {
		log.Warn("Presence lookup failed, treating everyone as inactive", zap.Error(err))
		summary.Errors = append(summary.Errors, fmt.Sprintf("presence lookup: %v", err))
		active = map[string]bool{}
	}

	for i := range candidates {
		d := n.notifyOne(ctx, post, tags, actor, &candidates[i], alreadySent, active, summary)
		if req.Debug {
			summary.Details = append(summary.Details, d)
		}
	}

	summary.Success = true
	log.Info("Language fan-out finished",
		zap.Strings("languages", tags),
		zap.Int("candidates", len(candidates)),
		zap.Int("emails_sent", summary.EmailsSent),
		zap.Int("emails_skipped", summary.EmailsSkipped),
		zap.Int("in_app_created", summary.InAppCreated),
		zap.Int("errors", len(summary.Errors)),
	)
	return summary, nil
}

func (n *LanguageNotifier) notifyOne(
	ctx context.Context,
	post *models.Post,
	tags []string,
	actor string,
	recipient *models.Profile,
	alreadySent, active map[string]bool,
	summary *LanguageNotifySummary,
) RecipientDetail {
	d := RecipientDetail{RecipientID: recipient.ID}
	fail := func(format string, args ...interface{}) RecipientDetail {
		msg := fmt.Sprintf("%s: %s", recipient.ID, fmt.Sprintf(format, args...))
		summary.Errors = append(summary.Errors, msg)
		d.Status, d.Error = "error", msg
		return d
	}

	if !recipient.EmailNotificationsEnabled {
		d.Status = string(models.EmailSkippedOptOut)
		return d
	}
	if alreadySent[recipient.ID] {
		summary.EmailsSkipped++
		d.Status = string(models.EmailSkippedDuplicate)
		return d
	}

	email, err := n.emails.ResolveEmail(ctx, recipient.ID)
	if err != nil {
		return fail("resolve email: %v", err)
	}
	if email == "" {
		return fail("no email address on auth record")
	}
	d.Email = email

	prefs, err := langtag.Normalize(recipient.ProgrammingLanguages)
	if err != nil {
		return fail("programming_languages: %v", err)
	}
	matched := langtag.Intersect(prefs, tags)
	if len(matched) == 0 {
		d.Status = "no_match"
		return d
	}
	d.Matched = matched
	joined := strings.Join(matched, ", ")

	_, err = n.notifier.Notify(ctx, NotifyInput{
		RecipientID: recipient.ID,
		SenderID:    post.UserID,
		ActorName:   actor,
		Type:        models.NotificationLanguageMention,
		Detail:      joined,
		Metadata: models.NotificationMetadata{
			PostID:    post.ID,
			Excerpt:   post.Excerpt(140),
			Languages: matched,
		},
	})
	if err != nil {
		summary.Errors = append(summary.Errors, fmt.Sprintf("%s: in-app notification: %v", recipient.ID, err))
		d.Error = err.Error()
	} else {
		summary.InAppCreated++
		d.InApp = true
	}

	rendered, err := renderLanguagePostEmail(n.baseURL, emailData{
		PostID:        post.ID,
		RecipientName: recipient.Name(),
		ActorName:     actor,
		Languages:     joined,
		Excerpt:       post.Excerpt(280),
	})
	if err != nil {
		return fail("%v", err)
	}

	if active[recipient.ID] {
		if err := n.logs.Insert(ctx, &models.NotificationLog{
			RecipientID: recipient.ID,
			Email:       email,
			Subject:     rendered.Subject,
			Status:      models.EmailSkippedActiveUser,
			Metadata: datatypes.NewJSONType(models.NotificationLogMetadata{
				PostID: post.ID,
				Type:   models.NotificationLanguageMention,
			}),
		}); err != nil {
			n.logger.Warn("Failed to log active-user skip", zap.String("recipient_id", recipient.ID), zap.Error(err))
		}
		metrics.EmailsTotal.WithLabelValues(string(models.EmailSkippedActiveUser)).Inc()
		summary.EmailsSkipped++
		d.Status = string(models.EmailSkippedActiveUser)
		return d
	}

	status, err := n.deliverer.Deliver(ctx, models.EmailNotificationRequest{
		RecipientID:       recipient.ID,
		SenderID:          post.UserID,
		Type:              models.NotificationLanguageMention,
		PostID:            post.ID,
		Subject:           rendered.Subject,
		HTMLBody:          rendered.HTML,
		TextBody:          rendered.Text,
		SkipPresenceCheck: true,
	})
	if err != nil {
		return fail("email: %v", err)
	}
	d.Status = string(status)
	switch status {
	case models.EmailSent, models.EmailQueued:
		summary.EmailsSent++
	default:
		summary.EmailsSkipped++
	}
	return d
}

// NotifyDetached runs Notify in the background, bounded by timeout. Used
// right after a post is created so the request does not wait on the fan-out.
// Wait blocks until every detached run has returned.
func (n *LanguageNotifier) NotifyDetached(req LanguageNotifyRequest, timeout time.Duration) {
	n.detached.Add(1)
	go func() {
		defer n.detached.Done()
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if _, err := n.Notify(ctx, req); err != nil {
			n.logger.Error("Language fan-out failed", zap.String("post_id", req.PostID), zap.Error(err))
		}
	}()
}

// Wait blocks until all runs started by NotifyDetached have finished.
func (n *LanguageNotifier) Wait() {
	n.detached.Wait()
}
