package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/anonto42/iblue/backend/internal/models"
	"go.uber.org/zap"
)

type commentReader interface {
	GetCommentByID(ctx context.Context, id uint) (*models.Comment, error)
}

type CommentNotifyRequest struct {
	PostID      string `json:"post_id" validate:"required"`
	CommentID   uint   `json:"comment_id"`
	CommenterID string `json:"commenter_id" validate:"required"`
	// Content is used when CommentID is zero.
	Content string `json:"content,omitempty"`
}

type CommentNotifyResult struct {
	InAppCreated bool       `json:"in_app_created"`
	Email        SendResult `json:"email"`
}

// CommentNotifier tells a post author about a reply, in-app and by email.
type CommentNotifier struct {
	posts    postReader
	comments commentReader
	profiles profileReader
	notifier inAppNotifier
	email    emailSender
	baseURL  string
	logger   *zap.Logger

	detached sync.WaitGroup
}

func NewCommentNotifier(
	posts postReader,
	comments commentReader,
	profiles profileReader,
	notifier inAppNotifier,
	email emailSender,
	baseURL string,
	logger *zap.Logger,
) *CommentNotifier {
	return &CommentNotifier{
		posts:    posts,
		comments: comments,
		profiles: profiles,
		notifier: notifier,
		email:    email,
		baseURL:  baseURL,
		logger:   logger,
	}
}

func (n *CommentNotifier) Notify(ctx context.Context, req CommentNotifyRequest) (*CommentNotifyResult, error) {
	result := &CommentNotifyResult{}

	post, err := n.posts.GetPostByID(ctx, req.PostID)
	if err != nil {
		return nil, fmt.Errorf("load post %s: %w", req.PostID, err)
	}
	if post.UserID == req.CommenterID {
		return result, nil
	}

	content := req.Content
	if req.CommentID != 0 {
		comment, err := n.comments.GetCommentByID(ctx, req.CommentID)
		if err != nil {
			return nil, fmt.Errorf("load comment %d: %w", req.CommentID, err)
		}
		content = comment.Content
	}
	excerpt := models.Excerpt(content, 140)

	commenter, err := n.profiles.GetProfileByID(ctx, req.CommenterID)
	if err != nil {
		n.logger.Warn("Failed to load commenter profile", zap.String("user_id", req.CommenterID), zap.Error(err))
		commenter = nil
	}
	actor := commenter.Name()

	_, err = n.notifier.Notify(ctx, NotifyInput{
		RecipientID: post.UserID,
		SenderID:    req.CommenterID,
		ActorName:   actor,
		Type:        models.NotificationReply,
		Metadata: models.NotificationMetadata{
			PostID:    post.ID,
			CommentID: req.CommentID,
			Excerpt:   excerpt,
		},
	})
	if err != nil {
		return nil, err
	}
	result.InAppCreated = true

	recipientName := models.DefaultDisplayName
	if author, err := n.profiles.GetProfileByID(ctx, post.UserID); err == nil {
		recipientName = author.Name()
	}
	rendered, err := renderCommentEmail(n.baseURL, emailData{
		PostID:        post.ID,
		RecipientName: recipientName,
		ActorName:     actor,
		Excerpt:       excerpt,
	})
	if err != nil {
		return result, err
	}

	result.Email, err = n.email.Send(ctx, models.EmailNotificationRequest{
		RecipientID: post.UserID,
		SenderID:    req.CommenterID,
		Type:        models.NotificationReply,
		PostID:      post.ID,
		Subject:     rendered.Subject,
		HTMLBody:    rendered.HTML,
		TextBody:    rendered.Text,
	})
	if err != nil {
		return result, fmt.Errorf("send comment email: %w", err)
	}
	return result, nil
}

func (n *CommentNotifier) NotifyDetached(req CommentNotifyRequest, timeout time.Duration) {
	n.detached.Add(1)
	go func() {
		defer n.detached.Done()
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if _, err := n.Notify(ctx, req); err != nil {
			n.logger.Error("Comment notification failed",
				zap.String("post_id", req.PostID),
				zap.Uint("comment_id", req.CommentID),
				zap.Error(err),
			)
		}
	}()
}

// Wait blocks until all runs started by NotifyDetached have finished.
func (n *CommentNotifier) Wait() {
	n.detached.Wait()
}
