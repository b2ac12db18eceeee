package handlers

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/anonto42/iblue/backend/internal/models"
	"github.com/anonto42/iblue/backend/internal/repositories"
	"github.com/anonto42/iblue/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// getUserIDFromContext returns the Firebase UID set by the auth middleware.
func getUserIDFromContext(c echo.Context) string {
	uid, _ := c.Get("firebaseUID").(string)
	return uid
}

func requireUserID(c echo.Context) (string, error) {
	uid := getUserIDFromContext(c)
	if uid == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	return uid, nil
}

func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// pagination reads page/limit query params with the given default limit.
func pagination(c echo.Context, defaultLimit int) (page, limit int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	limit, _ = strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = defaultLimit
	}
	return page, limit
}

func pageMeta(page, limit int, total int64) echo.Map {
	totalPages := int(math.Ceil(float64(total) / float64(limit)))
	return echo.Map{
		"currentPage":     page,
		"totalPages":      totalPages,
		"totalItems":      total,
		"itemsPerPage":    limit,
		"hasNextPage":     page < totalPages,
		"hasPreviousPage": page > 1,
	}
}

// httpError maps repository and service errors onto HTTP errors.
func httpError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrPostNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	case errors.Is(err, repositories.ErrProfileNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Profile not found")
	case errors.Is(err, repositories.ErrCommentNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
	case errors.Is(err, repositories.ErrLikeNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Like not found")
	case errors.Is(err, repositories.ErrReactionNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Reaction not found")
	case errors.Is(err, repositories.ErrSavedNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Saved post not found")
	case errors.Is(err, repositories.ErrNotificationNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Notification not found")
	case errors.Is(err, repositories.ErrAlreadyExists):
		return echo.NewHTTPError(http.StatusConflict, "Already exists")
	case errors.Is(err, services.ErrNoProfiles):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrInvalidNotificationType):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

type notifier interface {
	Notify(ctx context.Context, in services.NotifyInput) (*models.Notification, error)
}

type profileNamer interface {
	GetProfileByID(ctx context.Context, id string) (*models.Profile, error)
}

// actorName is the display name of uid, or the default when unknown.
func actorName(ctx context.Context, profiles profileNamer, uid string) string {
	p, err := profiles.GetProfileByID(ctx, uid)
	if err != nil {
		return models.DefaultDisplayName
	}
	return p.Name()
}
