package handlers

import (
	"net/http"
	"time"

	"github.com/anonto42/iblue/backend/internal/langtag"
	"github.com/anonto42/iblue/backend/internal/models"
	"github.com/anonto42/iblue/backend/internal/repositories"
	"github.com/anonto42/iblue/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// fanoutTimeout bounds the background language fan-out started by a new post.
const fanoutTimeout = 2 * time.Minute

type languageFanout interface {
	NotifyDetached(req services.LanguageNotifyRequest, timeout time.Duration)
}

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	postRepository    repositories.PostRepository
	profileRepository repositories.ProfileRepository
	fanout            languageFanout
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(postRepo repositories.PostRepository, profileRepo repositories.ProfileRepository, fanout languageFanout) *PostHandler {
	return &PostHandler{
		postRepository:    postRepo,
		profileRepository: profileRepo,
		fanout:            fanout,
	}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/posts", h.CreatePost)
	g.GET("/posts", h.GetPosts)
	g.GET("/posts/:id", h.GetPost)
	g.PUT("/posts/:id", h.UpdatePost)
	g.PATCH("/posts/:id/metadata", h.PatchMetadata)
	g.DELETE("/posts/:id", h.DeletePost)
}

// CreatePost stores a shoutout and starts the language fan-out for its tags
func (h *PostHandler) CreatePost(c echo.Context) error {
	uid, err := requireUserID(c)
	if err != nil {
		return err
	}

	var req models.CreatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	tags := langtag.Merge(langtag.Clean(req.Languages), langtag.Extract(req.Content))
	post := &models.Post{
		UserID:    uid,
		Content:   req.Content,
		ImageURLs: req.ImageURLs,
		Metadata: models.PostMetadata{
			DisplayName: actorName(ctx, h.profileRepository, uid),
			Languages:   tags,
		},
	}

	if err := h.postRepository.CreatePost(ctx, post); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if len(tags) > 0 && h.fanout != nil {
		h.fanout.NotifyDetached(services.LanguageNotifyRequest{
			PostID:    post.ID,
			Languages: tags,
			Content:   post.Content,
		}, fanoutTimeout)
	}

	return c.JSON(http.StatusCreated, post)
}

// GetPost retrieves a post by ID
func (h *PostHandler) GetPost(c echo.Context) error {
	post, err := h.postRepository.GetPostByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, post)
}

// GetPosts lists posts, optionally filtered by user_id or language
func (h *PostHandler) GetPosts(c echo.Context) error {
	ctx := c.Request().Context()
	page, limit := pagination(c, 10)
	filter := repositories.PostFilter{
		UserID:   c.QueryParam("user_id"),
		Language: c.QueryParam("language"),
	}

	posts, err := h.postRepository.ListPosts(ctx, filter, int64((page-1)*limit), int64(limit))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	total, err := h.postRepository.CountPosts(ctx, filter)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"posts": posts},
		"meta":    pageMeta(page, limit, total),
	})
}

// ownedPost loads the post and checks that uid wrote it.
func (h *PostHandler) ownedPost(c echo.Context, uid string) (*models.Post, error) {
	post, err := h.postRepository.GetPostByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return nil, httpError(err)
	}
	if post.UserID != uid {
		return nil, echo.NewHTTPError(http.StatusForbidden, "You are not authorized to modify this post")
	}
	return post, nil
}

// UpdatePost edits the text of a post
func (h *PostHandler) UpdatePost(c echo.Context) error {
	uid, err := requireUserID(c)
	if err != nil {
		return err
	}

	var req models.UpdatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	post, err := h.ownedPost(c, uid)
	if err != nil {
		return err
	}

	if err := h.postRepository.UpdateContent(c.Request().Context(), post.ID, req.Content); err != nil {
		return httpError(err)
	}
	post.Content = req.Content
	post.UpdatedAt = time.Now().UTC()

	return c.JSON(http.StatusOK, post)
}

// PatchMetadata updates the display name or language tags of a post
func (h *PostHandler) PatchMetadata(c echo.Context) error {
	uid, err := requireUserID(c)
	if err != nil {
		return err
	}

	var req models.PatchPostMetadataRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	post, err := h.ownedPost(c, uid)
	if err != nil {
		return err
	}

	meta := post.Metadata
	if req.DisplayName != nil {
		meta.DisplayName = *req.DisplayName
	}
	if req.Languages != nil {
		meta.Languages = langtag.Clean(req.Languages)
	}

	if err := h.postRepository.UpdateMetadata(c.Request().Context(), post.ID, meta); err != nil {
		return httpError(err)
	}
	post.Metadata = meta

	return c.JSON(http.StatusOK, post)
}

// DeletePost deletes a post
func (h *PostHandler) DeletePost(c echo.Context) error {
	uid, err := requireUserID(c)
	if err != nil {
		return err
	}

	post, err := h.ownedPost(c, uid)
	if err != nil {
		return err
	}

	if err := h.postRepository.DeletePost(c.Request().Context(), post.ID); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
