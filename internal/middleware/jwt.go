package middleware // middleware provides reusable HTTP middleware functions

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token and
// injects the token's subject and role claims into the request context.
// Tokens are issued by the identity service; this API only verifies them.
// Handlers access the authenticated caller via c.Get("user_id") and
// c.Get("role").
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			// HS256 only; reject any other signing method.
			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
			}

			c.Set("user_id", claims["sub"])
			c.Set("role", claims["role"])
			return next(c)
		}
	}
}
