package rest

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rocketscienceinc/tictactoe-web/internal/pkg"
)

const sessionContextKey = "session_id"

// SessionMiddleware - makes sure every request carries a session cookie and exposes its id through SessionID.
func SessionMiddleware(cookieName string, ttl time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			sessionID := ""
			if cookie, err := ctx.Cookie(cookieName); err == nil && pkg.IsValidSessionID(cookie.Value) {
				sessionID = cookie.Value
			}

			if sessionID == "" {
				sessionID = pkg.GenerateNewSessionID()
			}

			// refresh on every request so the cookie outlives the stored game
			ctx.SetCookie(&http.Cookie{
				Name:     cookieName,
				Value:    sessionID,
				Path:     "/",
				MaxAge:   int(ttl.Seconds()),
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})

			ctx.Set(sessionContextKey, sessionID)

			return next(ctx)
		}
	}
}

// SessionID - the id set by SessionMiddleware, or "" outside of it.
func SessionID(ctx echo.Context) string {
	sessionID, _ := ctx.Get(sessionContextKey).(string)
	return sessionID
}
