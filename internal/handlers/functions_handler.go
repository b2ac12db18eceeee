package handlers

import (
	"context"
	"net/http"

	"github.com/anonto42/iblue/backend/internal/models"
	"github.com/anonto42/iblue/backend/internal/services"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type contentGenerator interface {
	GeneratePost(ctx context.Context, language string) (*services.GeneratedPost, error)
	GenerateComments(ctx context.Context, postID string, count int) (*services.GeneratedComments, error)
}

type singleEmailSender interface {
	Send(ctx context.Context, req models.EmailNotificationRequest) (services.SendResult, error)
}

type commentNotifier interface {
	Notify(ctx context.Context, req services.CommentNotifyRequest) (*services.CommentNotifyResult, error)
}

type languageNotifier interface {
	Notify(ctx context.Context, req services.LanguageNotifyRequest) (*services.LanguageNotifySummary, error)
}

// FunctionsHandler serves the service-role endpoints under /functions/v1.
type FunctionsHandler struct {
	generator contentGenerator
	email     singleEmailSender
	comments  commentNotifier
	languages languageNotifier
	logger    *zap.Logger
}

func NewFunctionsHandler(
	generator contentGenerator,
	email singleEmailSender,
	comments commentNotifier,
	languages languageNotifier,
	logger *zap.Logger,
) *FunctionsHandler {
	return &FunctionsHandler{
		generator: generator,
		email:     email,
		comments:  comments,
		languages: languages,
		logger:    logger,
	}
}

func (h *FunctionsHandler) RegisterFunctionRoutes(g *echo.Group) {
	g.POST("/generate-post", h.GeneratePost)
	g.POST("/generate-comments", h.GenerateComments)
	g.POST("/send-email-notification", h.SendEmailNotification)
	g.POST("/send-comment-notification", h.SendCommentNotification)
	g.POST("/notify-language-users", h.NotifyLanguageUsers)
}

type GeneratePostRequest struct {
	Language string `json:"language" validate:"omitempty,max=40"`
}

type GenerateCommentsRequest struct {
	PostID string `json:"post_id" validate:"required"`
	Count  int    `json:"count" validate:"omitempty,min=1,max=10"`
}

func (h *FunctionsHandler) GeneratePost(c echo.Context) error {
	var req GeneratePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	out, err := h.generator.GeneratePost(c.Request().Context(), req.Language)
	if err != nil {
		h.logger.Error("generate-post failed", zap.Error(err))
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": out})
}

func (h *FunctionsHandler) GenerateComments(c echo.Context) error {
	var req GenerateCommentsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if req.Count == 0 {
		req.Count = 1
	}

	out, err := h.generator.GenerateComments(c.Request().Context(), req.PostID, req.Count)
	if err != nil {
		h.logger.Error("generate-comments failed", zap.String("post_id", req.PostID), zap.Error(err))
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": out})
}

func (h *FunctionsHandler) SendEmailNotification(c echo.Context) error {
	var req models.EmailNotificationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if !req.Type.Valid() {
		return httpError(services.ErrInvalidNotificationType)
	}
	// Only in-process callers that already checked presence may skip it.
	req.SkipPresenceCheck = false

	res, err := h.email.Send(c.Request().Context(), req)
	if err != nil {
		h.logger.Warn("send-email-notification failed",
			zap.String("recipient_id", req.RecipientID),
			zap.String("status", string(res.Status)),
			zap.Error(err))
		return c.JSON(http.StatusBadGateway, echo.Map{"success": false, "data": res, "error": err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": res})
}

func (h *FunctionsHandler) SendCommentNotification(c echo.Context) error {
	var req services.CommentNotifyRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.comments.Notify(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": res})
}

// NotifyLanguageUsers runs the fan-out synchronously and returns its summary.
func (h *FunctionsHandler) NotifyLanguageUsers(c echo.Context) error {
	var req services.LanguageNotifyRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	summary, err := h.languages.Notify(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, summary)
}
