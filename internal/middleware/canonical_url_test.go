package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

const postUUID = "3f2b8c1e-9a4d-4e6f-8b2a-1c3d5e7f9a0b"

func TestCanonicalPostPath(t *testing.T) {
	tests := []struct {
		path   string
		want   string
		wantOK bool
	}{
		{"/" + postUUID, "/post/" + postUUID, true},
		{"/shoutout/" + postUUID, "/post/" + postUUID, true},
		{"/" + postUUID + "/", "/post/" + postUUID, true},
		{"/post/" + postUUID, "", false},
		{"/api/" + postUUID, "", false},
		{"/functions/" + postUUID, "", false},
		{"/a/b/" + postUUID, "", false},
		{"/not-a-uuid", "", false},
		{"/{" + postUUID + "}", "", false},
		{"/", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := CanonicalPostPath(tt.path)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCanonicalURL(t *testing.T) {
	e := echo.New()
	e.Pre(CanonicalURL(16, time.Minute))
	e.Any("/*", func(c echo.Context) error { return c.String(http.StatusOK, "next") })

	t.Run("redirects uuid path", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/"+postUUID+"?ref=push", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusMovedPermanently, rec.Code)
		assert.Equal(t, "/post/"+postUUID+"?ref=push", rec.Header().Get(echo.HeaderLocation))
	})

	t.Run("ignores non-GET", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/"+postUUID, nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("passes through canonical path twice", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			req := httptest.NewRequest(http.MethodGet, "/post/"+postUUID, nil)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "next", rec.Body.String())
		}
	})
}
