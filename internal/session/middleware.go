package session

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mediahub/mediahub/internal/catalog"
)

const (
	// HeaderToken carries the session token for API clients.
	HeaderToken = "X-Session-Token"
	// ContextKey is the echo context key holding the *Session.
	ContextKey = "session"
)

// FromContext returns the session bound by Middleware.
func FromContext(c echo.Context) (*Session, bool) {
	sess, ok := c.Get(ContextKey).(*Session)
	return sess, ok && sess != nil
}

// Middleware binds a session, and its catalog store, to every request.
// A new token is returned in both the response header and the cookie.
func (m *Manager) Middleware(cookieName string, secureCookie bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess, token, err := m.Resolve(extractToken(c, cookieName), c.RealIP())
			if err != nil {
				if errors.Is(err, ErrRateLimited) {
					return echo.NewHTTPError(http.StatusTooManyRequests, err.Error())
				}
				return echo.NewHTTPError(http.StatusInternalServerError, "failed to start session").SetInternal(err)
			}

			if token != "" {
				c.Response().Header().Set(HeaderToken, token)
				c.SetCookie(&http.Cookie{
					Name:     cookieName,
					Value:    token,
					Path:     "/",
					HttpOnly: true,
					Secure:   secureCookie,
					SameSite: http.SameSiteLaxMode,
				})
			}

			c.Set(ContextKey, sess)
			c.Set(catalog.StoreKey, sess.Store)
			return next(c)
		}
	}
}

func extractToken(c echo.Context, cookieName string) string {
	if token := c.Request().Header.Get(HeaderToken); token != "" {
		return token
	}
	if cookie, err := c.Cookie(cookieName); err == nil {
		return cookie.Value
	}
	return ""
}
