package handlers

import (
	_ "embed"
	"net/http"

	"github.com/labstack/echo/v4"
)

//go:embed static/offline.html
var offlinePage []byte

// Offline serves the page the service worker falls back to without a network.
func Offline(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderCacheControl, "public, max-age=86400")
	return c.Blob(http.StatusOK, echo.MIMETextHTMLCharsetUTF8, offlinePage)
}
