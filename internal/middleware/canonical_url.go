package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/anonto42/iblue/backend/pkg/cache"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// prefixes that already own their UUID segment and must not be rewritten.
var canonicalExempt = map[string]bool{
	"post":      true,
	"api":       true,
	"functions": true,
}

// CanonicalPostPath returns the /post/<uuid> form of path and true when
// path is "/<uuid>" or "/<prefix>/<uuid>" with a non-exempt prefix.
func CanonicalPostPath(path string) (string, bool) {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	var id string
	switch len(segments) {
	case 1:
		id = segments[0]
	case 2:
		if canonicalExempt[strings.ToLower(segments[0])] {
			return "", false
		}
		id = segments[1]
	default:
		return "", false
	}

	// uuid.Parse also accepts braced and urn forms; only the plain one counts.
	if len(id) != 36 {
		return "", false
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", false
	}
	return "/post/" + parsed.String(), true
}

// CanonicalURL redirects UUID-shaped GET paths to /post/<uuid>. Lookups are
// memoized per path.
func CanonicalURL(cacheSize int, ttl time.Duration) echo.MiddlewareFunc {
	memo := cache.NewTTL[string, string](cacheSize, ttl)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if req.Method != http.MethodGet {
				return next(c)
			}

			path := req.URL.Path
			target, ok := memo.Get(path)
			if !ok {
				target, _ = CanonicalPostPath(path)
				memo.Set(path, target)
			}
			if target == "" {
				return next(c)
			}

			if q := req.URL.RawQuery; q != "" {
				target += "?" + q
			}
			return c.Redirect(http.StatusMovedPermanently, target)
		}
	}
}
