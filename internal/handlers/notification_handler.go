package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/anonto42/iblue/backend/internal/models"
	"github.com/anonto42/iblue/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

type profileBatchReader interface {
	GetProfilesByIDs(ctx context.Context, ids []string) (map[string]*models.Profile, error)
}

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	notificationRepository repositories.NotificationRepository
	profileRepository      profileBatchReader
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifRepo repositories.NotificationRepository, profileRepo profileBatchReader) *NotificationHandler {
	return &NotificationHandler{
		notificationRepository: notifRepo,
		profileRepository:      profileRepo,
	}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications)
	g.GET("/notifications/grouped", h.GetGroupedNotifications)
	g.GET("/notifications/unread-count", h.GetUnreadCount)
	g.PUT("/notifications/read-all", h.MarkAllAsRead)
	g.PUT("/notifications/:id/read", h.MarkAsRead)
}

// EnrichedNotification includes actor info
type EnrichedNotification struct {
	models.Notification
	Actor models.ProfileCompact `json:"actor"`
}

func (h *NotificationHandler) enrichNotifications(ctx context.Context, groups ...[]models.Notification) [][]EnrichedNotification {
	seen := make(map[string]bool)
	var ids []string
	for _, group := range groups {
		for _, n := range group {
			if n.SenderID != "" && !seen[n.SenderID] {
				seen[n.SenderID] = true
				ids = append(ids, n.SenderID)
			}
		}
	}

	actors, err := h.profileRepository.GetProfilesByIDs(ctx, ids)
	if err != nil {
		actors = nil
	}

	out := make([][]EnrichedNotification, len(groups))
	for g, group := range groups {
		enriched := make([]EnrichedNotification, len(group))
		for i, n := range group {
			enriched[i] = EnrichedNotification{Notification: n}
			if actor, ok := actors[n.SenderID]; ok {
				enriched[i].Actor = actor.ToCompact()
			} else {
				enriched[i].Actor = models.ProfileCompact{ID: n.SenderID, DisplayName: models.DefaultDisplayName}
			}
		}
		out[g] = enriched
	}
	return out
}

// GetNotifications returns paginated notifications
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	uid, err := requireUserID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	page, limit := pagination(c, 20)

	notifications, total, err := h.notificationRepository.GetByRecipientID(ctx, uid, page, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"notifications": h.enrichNotifications(ctx, notifications)[0],
		},
		"meta": pageMeta(page, limit, total),
	})
}

// GetGroupedNotifications returns notifications grouped by time period
func (h *NotificationHandler) GetGroupedNotifications(c echo.Context) error {
	uid, err := requireUserID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	grouped, err := h.notificationRepository.GetGrouped(ctx, uid, time.Now())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	unreadCount, _ := h.notificationRepository.GetUnreadCount(ctx, uid)
	e := h.enrichNotifications(ctx, grouped.Today, grouped.Yesterday, grouped.ThisWeek, grouped.Older)

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"notifications": echo.Map{
				"today":     e[0],
				"yesterday": e[1],
				"thisWeek":  e[2],
				"older":     e[3],
			},
			"unreadCount": unreadCount,
		},
	})
}

// GetUnreadCount returns the unread notification count
func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	uid, err := requireUserID(c)
	if err != nil {
		return err
	}

	count, err := h.notificationRepository.GetUnreadCount(c.Request().Context(), uid)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"count": count}})
}

// MarkAsRead marks one of the caller's notifications as read
func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	uid, err := requireUserID(c)
	if err != nil {
		return err
	}

	notifID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid notification ID")
	}

	if err := h.notificationRepository.MarkAsRead(c.Request().Context(), uint(notifID), uid); err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"success": true}})
}

// MarkAllAsRead marks all notifications as read
func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	uid, err := requireUserID(c)
	if err != nil {
		return err
	}

	if err := h.notificationRepository.MarkAllAsRead(c.Request().Context(), uid); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"success": true}})
}
