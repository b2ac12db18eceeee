package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/anonto42/iblue/backend/internal/models"
	"github.com/anonto42/iblue/backend/internal/repositories"
	"github.com/anonto42/iblue/backend/internal/services"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// LikeHandler handles HTTP requests related to likes
type LikeHandler struct {
	likeRepository    repositories.LikeRepository
	postRepository    repositories.PostRepository
	profileRepository profileNamer
	notifier          notifier
	logger            *zap.Logger
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(
	likeRepo repositories.LikeRepository,
	postRepo repositories.PostRepository,
	profileRepo profileNamer,
	notifier notifier,
	logger *zap.Logger,
) *LikeHandler {
	return &LikeHandler{
		likeRepository:    likeRepo,
		postRepository:    postRepo,
		profileRepository: profileRepo,
		notifier:          notifier,
		logger:            logger,
	}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/posts/:post_id/likes", h.LikePost)
	g.DELETE("/posts/:post_id/likes", h.UnlikePost)
	g.GET("/posts/:post_id/likes/count", h.GetLikesCountForPost)
	g.GET("/posts/:post_id/likes/status", h.GetUserLikeStatusForPost)
}

// LikePost handles liking a post
func (h *LikeHandler) LikePost(c echo.Context) error {
	uid, err := requireUserID(c)
	if err != nil {
		return err
	}
	postID := c.Param("post_id")
	ctx := c.Request().Context()

	post, err := h.postRepository.GetPostByID(ctx, postID)
	if err != nil {
		return httpError(err)
	}

	like := &models.Like{PostID: postID, UserID: uid}
	if err := h.likeRepository.CreateLike(ctx, like); err != nil {
		if errors.Is(err, repositories.ErrAlreadyExists) {
			return echo.NewHTTPError(http.StatusConflict, "Post already liked by this user")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := h.postRepository.IncrementLikesCount(ctx, postID); err != nil {
		h.logger.Warn("Failed to increment likes count", zap.String("post_id", postID), zap.Error(err))
	}

	notifyPostAuthor(ctx, h.notifier, h.profileRepository, h.logger, post, uid, models.NotificationLike, "")

	return c.JSON(http.StatusCreated, like)
}

// UnlikePost handles unliking a post
func (h *LikeHandler) UnlikePost(c echo.Context) error {
	uid, err := requireUserID(c)
	if err != nil {
		return err
	}
	postID := c.Param("post_id")
	ctx := c.Request().Context()

	if err := h.likeRepository.DeleteLike(ctx, postID, uid); err != nil {
		return httpError(err)
	}

	if err := h.postRepository.DecrementLikesCount(ctx, postID); err != nil {
		h.logger.Warn("Failed to decrement likes count", zap.String("post_id", postID), zap.Error(err))
	}

	return c.NoContent(http.StatusNoContent)
}

// GetLikesCountForPost retrieves the total number of likes for a specific post
func (h *LikeHandler) GetLikesCountForPost(c echo.Context) error {
	postID := c.Param("post_id")
	ctx := c.Request().Context()

	if _, err := h.postRepository.GetPostByID(ctx, postID); err != nil {
		return httpError(err)
	}

	count, err := h.likeRepository.GetLikesCountByPostID(ctx, postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"post_id": postID, "likes_count": count})
}

// GetUserLikeStatusForPost checks if the authenticated user has liked a specific post
func (h *LikeHandler) GetUserLikeStatusForPost(c echo.Context) error {
	uid, err := requireUserID(c)
	if err != nil {
		return err
	}
	postID := c.Param("post_id")

	hasLiked, err := h.likeRepository.HasUserLikedPost(c.Request().Context(), postID, uid)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"post_id": postID, "user_id": uid, "has_liked": hasLiked})
}

// notifyPostAuthor records an in-app notification for the author of post.
// Failures are logged; the triggering action has already succeeded.
func notifyPostAuthor(
	ctx context.Context,
	n notifier,
	profiles profileNamer,
	logger *zap.Logger,
	post *models.Post,
	senderID string,
	typ models.NotificationType,
	detail string,
) {
	if n == nil || post.UserID == senderID {
		return
	}
	meta := models.NotificationMetadata{PostID: post.ID, Excerpt: post.Excerpt(140)}
	if typ == models.NotificationReaction {
		meta.Emoji = detail
	}
	_, err := n.Notify(ctx, services.NotifyInput{
		RecipientID: post.UserID,
		SenderID:    senderID,
		ActorName:   actorName(ctx, profiles, senderID),
		Type:        typ,
		Detail:      detail,
		Metadata:    meta,
	})
	if err != nil {
		logger.Warn("Failed to create notification",
			zap.String("type", string(typ)),
			zap.String("post_id", post.ID),
			zap.Error(err))
	}
}
