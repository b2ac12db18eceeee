package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/iblue/backend/internal/models"
	"github.com/anonto42/iblue/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// SavedPostHandler handles saved post HTTP requests
type SavedPostHandler struct {
	savedPostRepository repositories.SavedPostRepository
	postRepository      repositories.PostRepository
	profileRepository   profileNamer
	notifier            notifier
	logger              *zap.Logger
}

// NewSavedPostHandler creates a new SavedPostHandler
func NewSavedPostHandler(
	savedPostRepo repositories.SavedPostRepository,
	postRepo repositories.PostRepository,
	profileRepo profileNamer,
	notifier notifier,
	logger *zap.Logger,
) *SavedPostHandler {
	return &SavedPostHandler{
		savedPostRepository: savedPostRepo,
		postRepository:      postRepo,
		profileRepository:   profileRepo,
		notifier:            notifier,
		logger:              logger,
	}
}

// RegisterSavedPostRoutes registers saved post routes
func (h *SavedPostHandler) RegisterSavedPostRoutes(g *echo.Group) {
	g.GET("/saved", h.GetSavedPosts)
	g.POST("/posts/:id/save", h.SavePost)
	g.DELETE("/posts/:id/save", h.UnsavePost)
}

// SavePost saves/bookmarks a post
func (h *SavedPostHandler) SavePost(c echo.Context) error {
	uid, err := requireUserID(c)
	if err != nil {
		return err
	}
	postID := c.Param("id")
	ctx := c.Request().Context()

	post, err := h.postRepository.GetPostByID(ctx, postID)
	if err != nil {
		return httpError(err)
	}

	savedPost := &models.SavedPost{UserID: uid, PostID: postID}
	if err := h.savedPostRepository.SavePost(ctx, savedPost); err != nil {
		if errors.Is(err, repositories.ErrAlreadyExists) {
			return echo.NewHTTPError(http.StatusConflict, "Post already saved")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	notifyPostAuthor(ctx, h.notifier, h.profileRepository, h.logger, post, uid, models.NotificationBookmark, "")

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"saved": true}})
}

// UnsavePost removes a post from saved
func (h *SavedPostHandler) UnsavePost(c echo.Context) error {
	uid, err := requireUserID(c)
	if err != nil {
		return err
	}

	if err := h.savedPostRepository.UnsavePost(c.Request().Context(), uid, c.Param("id")); err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"saved": false}})
}

// GetSavedPosts lists the caller's bookmarks, newest first, skipping posts
// that have since been deleted
func (h *SavedPostHandler) GetSavedPosts(c echo.Context) error {
	uid, err := requireUserID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	saved, err := h.savedPostRepository.GetSavedPostsByUser(ctx, uid)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	posts := make([]models.Post, 0, len(saved))
	for _, s := range saved {
		post, err := h.postRepository.GetPostByID(ctx, s.PostID)
		if err != nil {
			if !errors.Is(err, repositories.ErrPostNotFound) {
				h.logger.Warn("Failed to load saved post", zap.String("post_id", s.PostID), zap.Error(err))
			}
			continue
		}
		posts = append(posts, *post)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"posts": posts}})
}
