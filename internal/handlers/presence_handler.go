package handlers

import (
	"context"
	"net/http"

	"github.com/anonto42/iblue/backend/internal/models"
	"github.com/labstack/echo/v4"
)

type presenceTracker interface {
	Heartbeat(ctx context.Context, userID string) error
	Offline(ctx context.Context, userID string) error
}

type pushTokenRegistry interface {
	Register(ctx context.Context, token *models.PushToken) error
	Unregister(ctx context.Context, userID, token string) error
}

// PresenceHandler takes the heartbeats clients send while a tab is open,
// plus push token registration for the same device.
type PresenceHandler struct {
	presence presenceTracker
	tokens   pushTokenRegistry
}

func NewPresenceHandler(presence presenceTracker, tokens pushTokenRegistry) *PresenceHandler {
	return &PresenceHandler{presence: presence, tokens: tokens}
}

func (h *PresenceHandler) RegisterPresenceRoutes(g *echo.Group) {
	g.POST("/presence/heartbeat", h.Heartbeat)
	g.POST("/presence/offline", h.Offline)
	g.POST("/push-tokens", h.RegisterPushToken)
	g.DELETE("/push-tokens", h.UnregisterPushToken)
}

func (h *PresenceHandler) Heartbeat(c echo.Context) error {
	uid, err := requireUserID(c)
	if err != nil {
		return err
	}
	if err := h.presence.Heartbeat(c.Request().Context(), uid); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *PresenceHandler) Offline(c echo.Context) error {
	uid, err := requireUserID(c)
	if err != nil {
		return err
	}
	if err := h.presence.Offline(c.Request().Context(), uid); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *PresenceHandler) RegisterPushToken(c echo.Context) error {
	uid, err := requireUserID(c)
	if err != nil {
		return err
	}

	var req models.RegisterPushTokenRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	token := &models.PushToken{UserID: uid, Token: req.Token, DeviceName: req.DeviceName}
	if err := h.tokens.Register(c.Request().Context(), token); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true})
}

func (h *PresenceHandler) UnregisterPushToken(c echo.Context) error {
	uid, err := requireUserID(c)
	if err != nil {
		return err
	}

	var req models.RegisterPushTokenRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.tokens.Unregister(c.Request().Context(), uid, req.Token); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
