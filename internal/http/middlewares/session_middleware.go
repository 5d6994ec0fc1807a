package middlewares

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/notehub/internal/auth"
	"github.com/geocoder89/notehub/internal/domain/user"
	authsvc "github.com/geocoder89/notehub/internal/service/auth"
	"github.com/geocoder89/notehub/internal/session"
	"github.com/gin-gonic/gin"
)

const SessionCookieName = "session"

// Keep these small so tests can fake them easily.
type TokenVerifier interface {
	VerifySessionToken(token string) (*auth.Claims, error)
}

type SessionResolver interface {
	Resolve(ctx context.Context, sessionID string, userID int64) (user.User, session.Session, error)
}

type SessionMiddleware struct {
	tokens   TokenVerifier
	resolver SessionResolver
	secure   bool
}

func NewSessionMiddleware(tokens TokenVerifier, resolver SessionResolver, secureCookies bool) *SessionMiddleware {
	return &SessionMiddleware{tokens: tokens, resolver: resolver, secure: secureCookies}
}

// LoadSession attaches the logged-in user when the request carries a valid
// session cookie. Requests without one continue anonymously.
func (m *SessionMiddleware) LoadSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie(SessionCookieName)
		if err != nil || raw == "" {
			c.Next()
			return
		}

		claims, err := m.tokens.VerifySessionToken(raw)
		if err != nil {
			ClearSessionCookie(c, m.secure)
			c.Next()
			return
		}

		// verified above, the subject is numeric
		userID, _ := claims.UserID()

		cctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		u, sess, err := m.resolver.Resolve(cctx, claims.SessionID(), userID)
		if err != nil {
			if errors.Is(err, authsvc.ErrInvalidSession) {
				ClearSessionCookie(c, m.secure)
			} else {
				// the store is unreachable; keep the cookie so the session
				// works again once it is back
				slog.Default().ErrorContext(c.Request.Context(), "session lookup failed", "err", err)
			}
			c.Next()
			return
		}

		c.Set(ctxUserKey, &u)
		c.Set(ctxSessionKey, sess)

		c.Next()
	}
}

// RequireSession redirects anonymous requests to loginPath.
func (m *SessionMiddleware) RequireSession(loginPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			c.Redirect(http.StatusFound, loginPath)
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser returns the logged-in user or nil.
func CurrentUser(c *gin.Context) *user.User {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return nil
	}
	u, _ := v.(*user.User)
	return u
}

func CurrentSession(c *gin.Context) (session.Session, bool) {
	v, ok := c.Get(ctxSessionKey)
	if !ok {
		return session.Session{}, false
	}
	s, ok := v.(session.Session)
	return s, ok
}

func SetSessionCookie(c *gin.Context, raw string, expiresAt time.Time, secure bool) {
	maxAge := int(time.Until(expiresAt).Seconds())

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, raw, maxAge, "/", "", secure, true)
}

func ClearSessionCookie(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, "", -1, "/", "", secure, true)
}
