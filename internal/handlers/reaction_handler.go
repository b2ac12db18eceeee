package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/anonto42/iblue/backend/internal/models"
	"github.com/anonto42/iblue/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ReactionHandler handles emoji reactions on posts
type ReactionHandler struct {
	reactionRepository repositories.ReactionRepository
	postRepository     repositories.PostRepository
	profileRepository  profileNamer
	notifier           notifier
	logger             *zap.Logger
}

func NewReactionHandler(
	reactionRepo repositories.ReactionRepository,
	postRepo repositories.PostRepository,
	profileRepo profileNamer,
	notifier notifier,
	logger *zap.Logger,
) *ReactionHandler {
	return &ReactionHandler{
		reactionRepository: reactionRepo,
		postRepository:     postRepo,
		profileRepository:  profileRepo,
		notifier:           notifier,
		logger:             logger,
	}
}

// RegisterReactionRoutes registers reaction routes. DELETE takes the emoji
// as a query parameter.
func (h *ReactionHandler) RegisterReactionRoutes(g *echo.Group) {
	g.PUT("/posts/:post_id/reactions", h.AddReaction)
	g.DELETE("/posts/:post_id/reactions", h.RemoveReaction)
	g.GET("/posts/:post_id/reactions", h.GetReactionCounts)
}

func (h *ReactionHandler) AddReaction(c echo.Context) error {
	uid, err := requireUserID(c)
	if err != nil {
		return err
	}
	postID := c.Param("post_id")

	var req models.ReactionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	emoji := strings.TrimSpace(req.Emoji)
	if emoji == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "emoji is required")
	}

	ctx := c.Request().Context()
	post, err := h.postRepository.GetPostByID(ctx, postID)
	if err != nil {
		return httpError(err)
	}

	reaction := &models.PostReaction{PostID: postID, UserID: uid, Emoji: emoji}
	if err := h.reactionRepository.AddReaction(ctx, reaction); err != nil {
		if errors.Is(err, repositories.ErrAlreadyExists) {
			return echo.NewHTTPError(http.StatusConflict, "Reaction already added")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	notifyPostAuthor(ctx, h.notifier, h.profileRepository, h.logger, post, uid, models.NotificationReaction, emoji)

	return c.JSON(http.StatusCreated, reaction)
}

func (h *ReactionHandler) RemoveReaction(c echo.Context) error {
	uid, err := requireUserID(c)
	if err != nil {
		return err
	}
	emoji := strings.TrimSpace(c.QueryParam("emoji"))
	if emoji == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Query parameter 'emoji' is required")
	}

	if err := h.reactionRepository.RemoveReaction(c.Request().Context(), c.Param("post_id"), uid, emoji); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// GetReactionCounts returns how many times each emoji was used on a post
func (h *ReactionHandler) GetReactionCounts(c echo.Context) error {
	counts, err := h.reactionRepository.CountByEmoji(c.Request().Context(), c.Param("post_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if counts == nil {
		counts = []models.ReactionCount{}
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"reactions": counts}})
}
