package handlers

import (
	"net/http"

	"github.com/anonto42/iblue/backend/internal/models"
	"github.com/anonto42/iblue/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// FeedHandler handles feed-related HTTP requests
type FeedHandler struct {
	postRepository      repositories.PostRepository
	profileRepository   repositories.ProfileRepository
	likeRepository      repositories.LikeRepository
	savedPostRepository repositories.SavedPostRepository
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(
	postRepo repositories.PostRepository,
	profileRepo repositories.ProfileRepository,
	likeRepo repositories.LikeRepository,
	savedPostRepo repositories.SavedPostRepository,
) *FeedHandler {
	return &FeedHandler{
		postRepository:      postRepo,
		profileRepository:   profileRepo,
		likeRepository:      likeRepo,
		savedPostRepository: savedPostRepo,
	}
}

// RegisterFeedRoutes registers feed-related routes
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/feed", h.GetFeed)
}

// EnrichedPost is a post with author info and user-specific flags
type EnrichedPost struct {
	models.Post
	Author  models.ProfileCompact `json:"author"`
	IsLiked bool                  `json:"is_liked"`
	IsSaved bool                  `json:"is_saved"`
}

// GetFeed returns the newest posts, optionally narrowed to one language tag
func (h *FeedHandler) GetFeed(c echo.Context) error {
	ctx := c.Request().Context()
	currentUserID := getUserIDFromContext(c)
	page, limit := pagination(c, 10)
	filter := repositories.PostFilter{Language: c.QueryParam("language")}

	posts, err := h.postRepository.ListPosts(ctx, filter, int64((page-1)*limit), int64(limit))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	totalItems, err := h.postRepository.CountPosts(ctx, filter)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	authorIDs := make([]string, 0, len(posts))
	postIDs := make([]string, len(posts))
	seen := make(map[string]bool)
	for i, p := range posts {
		postIDs[i] = p.ID
		if !seen[p.UserID] {
			seen[p.UserID] = true
			authorIDs = append(authorIDs, p.UserID)
		}
	}

	authors, err := h.profileRepository.GetProfilesByIDs(ctx, authorIDs)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	likedMap := map[string]bool{}
	savedMap := map[string]bool{}
	if currentUserID != "" && len(postIDs) > 0 {
		if likedMap, err = h.likeRepository.LikedPostIDs(ctx, currentUserID, postIDs); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		if savedMap, err = h.savedPostRepository.GetSavedPostIDs(ctx, currentUserID, postIDs); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	enrichedPosts := make([]EnrichedPost, len(posts))
	for i, p := range posts {
		author := models.ProfileCompact{ID: p.UserID, DisplayName: p.Metadata.DisplayName}
		if prof, ok := authors[p.UserID]; ok {
			author = prof.ToCompact()
		} else if author.DisplayName == "" {
			author.DisplayName = models.DefaultDisplayName
		}
		enrichedPosts[i] = EnrichedPost{
			Post:    p,
			Author:  author,
			IsLiked: likedMap[p.ID],
			IsSaved: savedMap[p.ID],
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"posts": enrichedPosts,
		},
		"meta": pageMeta(page, limit, totalItems),
	})
}
