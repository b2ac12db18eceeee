package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/anonto42/iblue/backend/internal/models"
	"github.com/anonto42/iblue/backend/internal/repositories"
	"github.com/anonto42/iblue/backend/internal/services"
	"github.com/anonto42/iblue/backend/internal/validators"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubGenerator struct {
	lastLanguage string
	lastCount    int
	err          error
}

func (s *stubGenerator) GeneratePost(_ context.Context, language string) (*services.GeneratedPost, error) {
	s.lastLanguage = language
	if s.err != nil {
		return nil, s.err
	}
	return &services.GeneratedPost{Post: &models.Post{ID: "p1", Content: "How do channels close? @go"}}, nil
}

func (s *stubGenerator) GenerateComments(_ context.Context, postID string, count int) (*services.GeneratedComments, error) {
	s.lastCount = count
	if s.err != nil {
		return nil, s.err
	}
	return &services.GeneratedComments{Comments: make([]models.Comment, count)}, nil
}

type stubEmail struct {
	got []models.EmailNotificationRequest
	res services.SendResult
	err error
}

func (s *stubEmail) Send(_ context.Context, req models.EmailNotificationRequest) (services.SendResult, error) {
	s.got = append(s.got, req)
	return s.res, s.err
}

type stubComments struct{}

func (stubComments) Notify(context.Context, services.CommentNotifyRequest) (*services.CommentNotifyResult, error) {
	return &services.CommentNotifyResult{InAppCreated: true}, nil
}

type stubLanguages struct {
	got services.LanguageNotifyRequest
	err error
}

func (s *stubLanguages) Notify(_ context.Context, req services.LanguageNotifyRequest) (*services.LanguageNotifySummary, error) {
	s.got = req
	if s.err != nil {
		return nil, s.err
	}
	return &services.LanguageNotifySummary{Success: true, PostsProcessed: 1, EmailsSent: 2, Errors: []string{}}, nil
}

type functionsFixture struct {
	e         *echo.Echo
	gen       *stubGenerator
	email     *stubEmail
	languages *stubLanguages
}

func newFunctionsFixture() *functionsFixture {
	f := &functionsFixture{gen: &stubGenerator{}, email: &stubEmail{}, languages: &stubLanguages{}}
	f.e = echo.New()
	f.e.Validator = validators.NewValidator()
	h := NewFunctionsHandler(f.gen, f.email, stubComments{}, f.languages, zap.NewNop())
	h.RegisterFunctionRoutes(f.e.Group("/functions/v1"))
	return f
}

func (f *functionsFixture) post(path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/functions/v1"+path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

func TestGeneratePost(t *testing.T) {
	f := newFunctionsFixture()

	rec := f.post("/generate-post", `{"language":"go"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "go", f.gen.lastLanguage)
	assert.Contains(t, rec.Body.String(), `"id":"p1"`)
}

func TestGeneratePost_NoProfiles(t *testing.T) {
	f := newFunctionsFixture()
	f.gen.err = services.ErrNoProfiles

	rec := f.post("/generate-post", `{}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestGenerateComments_CountBounds(t *testing.T) {
	f := newFunctionsFixture()

	rec := f.post("/generate-comments", `{"post_id":"p1","count":11}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.post("/generate-comments", `{"count":3}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.post("/generate-comments", `{"post_id":"p1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, f.gen.lastCount)

	f.gen.err = repositories.ErrPostNotFound
	rec = f.post("/generate-comments", `{"post_id":"missing","count":2}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSendEmailNotification(t *testing.T) {
	body := `{"recipient_id":"u1","type":"like","subject":"hi","html_body":"<p>hi</p>"}`

	t.Run("skip is a success", func(t *testing.T) {
		f := newFunctionsFixture()
		f.email.res = services.SendResult{Status: models.EmailSkippedActiveUser}

		rec := f.post("/send-email-notification", body)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"skipped_active_user"`)
	})

	t.Run("mailer failure", func(t *testing.T) {
		f := newFunctionsFixture()
		f.email.res = services.SendResult{Status: models.EmailFailed, Email: "a@b.dev"}
		f.email.err = errors.New("smtp down")

		rec := f.post("/send-email-notification", body)
		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Contains(t, rec.Body.String(), "smtp down")
	})

	t.Run("presence gate cannot be skipped by the caller", func(t *testing.T) {
		f := newFunctionsFixture()
		f.email.res = services.SendResult{Status: models.EmailSent}

		rec := f.post("/send-email-notification", `{"recipient_id":"u1","type":"like","subject":"hi","html_body":"x","skip_presence_check":true}`)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, f.email.got, 1)
		assert.False(t, f.email.got[0].SkipPresenceCheck)
		assert.Equal(t, "u1", f.email.got[0].RecipientID)
	})

	t.Run("unknown type", func(t *testing.T) {
		f := newFunctionsFixture()
		rec := f.post("/send-email-notification", `{"recipient_id":"u1","type":"poke","subject":"hi","html_body":"x"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestNotifyLanguageUsers(t *testing.T) {
	f := newFunctionsFixture()

	rec := f.post("/notify-language-users", `{"post_id":"p1","languages":["Go"],"immediate":true,"debug":true}`)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "p1", f.languages.got.PostID)
	assert.Equal(t, []string{"Go"}, f.languages.got.Languages)
	assert.True(t, f.languages.got.Immediate)
	assert.True(t, f.languages.got.Debug)

	var summary services.LanguageNotifySummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.True(t, summary.Success)
	assert.Equal(t, 2, summary.EmailsSent)

	rec = f.post("/notify-language-users", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSendCommentNotification(t *testing.T) {
	f := newFunctionsFixture()

	rec := f.post("/send-comment-notification", `{"post_id":"p1","commenter_id":"u2","comment_id":4}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"in_app_created":true`)

	rec = f.post("/send-comment-notification", `{"post_id":"p1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
