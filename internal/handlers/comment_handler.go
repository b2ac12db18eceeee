package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/anonto42/iblue/backend/internal/models"
	"github.com/anonto42/iblue/backend/internal/repositories"
	"github.com/anonto42/iblue/backend/internal/services"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type replyFanout interface {
	NotifyDetached(req services.CommentNotifyRequest, timeout time.Duration)
}

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	commentRepository repositories.CommentRepository
	postRepository    repositories.PostRepository
	replies           replyFanout
	logger            *zap.Logger
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(commentRepo repositories.CommentRepository, postRepo repositories.PostRepository, replies replyFanout, logger *zap.Logger) *CommentHandler {
	return &CommentHandler{
		commentRepository: commentRepo,
		postRepository:    postRepo,
		replies:           replies,
		logger:            logger,
	}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/posts/:post_id/comments", h.CreateComment)
	g.GET("/posts/:post_id/comments", h.GetCommentsByPostID)
	g.PUT("/comments/:id", h.UpdateComment)
	g.DELETE("/comments/:id", h.DeleteComment)
}

// CreateComment creates a new comment on a post and tells the author about it
func (h *CommentHandler) CreateComment(c echo.Context) error {
	uid, err := requireUserID(c)
	if err != nil {
		return err
	}
	postID := c.Param("post_id")

	var req models.CreateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	if _, err := h.postRepository.GetPostByID(ctx, postID); err != nil {
		return httpError(err)
	}

	comment := &models.Comment{
		PostID:  postID,
		UserID:  uid,
		Content: req.Content,
	}
	if err := h.commentRepository.CreateComment(ctx, comment); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := h.postRepository.IncrementCommentsCount(ctx, postID); err != nil {
		h.logger.Warn("Failed to increment comments count", zap.String("post_id", postID), zap.Error(err))
	}

	if h.replies != nil {
		h.replies.NotifyDetached(services.CommentNotifyRequest{
			PostID:      postID,
			CommentID:   comment.ID,
			CommenterID: uid,
			Content:     comment.Content,
		}, fanoutTimeout)
	}

	return c.JSON(http.StatusCreated, comment)
}

// GetCommentsByPostID retrieves all comments for a specific post
func (h *CommentHandler) GetCommentsByPostID(c echo.Context) error {
	postID := c.Param("post_id")
	ctx := c.Request().Context()

	if _, err := h.postRepository.GetPostByID(ctx, postID); err != nil {
		return httpError(err)
	}

	comments, err := h.commentRepository.GetCommentsByPostID(ctx, postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, comments)
}

// ownedComment parses :id and checks that uid wrote the comment.
func (h *CommentHandler) ownedComment(c echo.Context, uid string) (*models.Comment, error) {
	commentID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid comment ID")
	}

	comment, err := h.commentRepository.GetCommentByID(c.Request().Context(), uint(commentID))
	if err != nil {
		return nil, httpError(err)
	}
	if comment.UserID != uid {
		return nil, echo.NewHTTPError(http.StatusForbidden, "You are not authorized to modify this comment")
	}
	return comment, nil
}

// UpdateComment updates an existing comment
func (h *CommentHandler) UpdateComment(c echo.Context) error {
	uid, err := requireUserID(c)
	if err != nil {
		return err
	}

	var req models.UpdateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	comment, err := h.ownedComment(c, uid)
	if err != nil {
		return err
	}

	comment.Content = req.Content
	if err := h.commentRepository.UpdateComment(c.Request().Context(), comment); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, comment)
}

// DeleteComment deletes a comment
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	uid, err := requireUserID(c)
	if err != nil {
		return err
	}

	comment, err := h.ownedComment(c, uid)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	if err := h.commentRepository.DeleteComment(ctx, comment.ID); err != nil {
		return httpError(err)
	}

	if err := h.postRepository.DecrementCommentsCount(ctx, comment.PostID); err != nil {
		h.logger.Warn("Failed to decrement comments count", zap.String("post_id", comment.PostID), zap.Error(err))
	}

	return c.NoContent(http.StatusNoContent)
}
