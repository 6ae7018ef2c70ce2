package middleware

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// UserIDHeader carries the caller's identity. Session management lives in an
// external layer; this header stands in for the session it would establish.
const UserIDHeader = "X-User-ID"

const userIDContextKey = "userID"

// Identity extracts the user ID header and stores it on the request context.
// Requests without a valid UUID are rejected before any handler runs.
func Identity() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := c.Request().Header.Get(UserIDHeader)
			if raw == "" {
				return c.JSON(http.StatusUnauthorized, map[string]any{
					"type":   "https://finwise.app/errors/unauthorized",
					"title":  "Unauthorized",
					"status": http.StatusUnauthorized,
					"detail": "Missing " + UserIDHeader + " header",
				})
			}
			userID, err := uuid.Parse(raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]any{
					"type":   "https://finwise.app/errors/unauthorized",
					"title":  "Unauthorized",
					"status": http.StatusUnauthorized,
					"detail": "Invalid " + UserIDHeader + " header",
				})
			}
			c.Set(userIDContextKey, userID)
			return next(c)
		}
	}
}

// GetUserID returns the authenticated user ID, or uuid.Nil when absent
func GetUserID(c echo.Context) uuid.UUID {
	if id, ok := c.Get(userIDContextKey).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}
