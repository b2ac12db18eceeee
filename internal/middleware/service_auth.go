package middleware

import (
	"net/http"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

// ServiceRole is the role claim that function endpoints require.
const ServiceRole = "service_role"

// ServiceClaims are the claims of the HS256 tokens held by trusted callers
// such as the scheduler and the web backend.
type ServiceClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// ServiceRoleMiddleware accepts only HS256 tokens signed with secret whose
// role claim is service_role.
func ServiceRoleMiddleware(secret string) echo.MiddlewareFunc {
	key := []byte(secret)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if len(key) == 0 {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "Service role secret is not configured")
			}

			tokenString, err := bearerToken(c)
			if err != nil {
				return err
			}

			claims := &ServiceClaims{}
			token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
				if token.Method != jwt.SigningMethodHS256 {
					return nil, echo.NewHTTPError(http.StatusUnauthorized, "Unexpected signing method")
				}
				return key, nil
			})
			if err != nil || !token.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}
			if claims.Role != ServiceRole {
				return echo.NewHTTPError(http.StatusForbidden, "Service role required")
			}

			c.Set("serviceClaims", claims)
			return next(c)
		}
	}
}
