package handlers_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/geocoder89/notehub/internal/auth"
	"github.com/geocoder89/notehub/internal/domain/user"
	"github.com/geocoder89/notehub/internal/flash"
	"github.com/geocoder89/notehub/internal/http/middlewares"
	"github.com/geocoder89/notehub/internal/http/web"
	authsvc "github.com/geocoder89/notehub/internal/service/auth"
	"github.com/geocoder89/notehub/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeTokens issues "tok-<session id>" instead of signed tokens.
type fakeTokens struct {
	err error
}

func (f fakeTokens) GenerateSessionToken(userID int64, sessionID string, issuedAt, expiresAt time.Time) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "tok-" + sessionID, nil
}

func (f fakeTokens) VerifySessionToken(token string) (*auth.Claims, error) {
	sid, ok := strings.CutPrefix(token, "tok-")
	if !ok {
		return nil, auth.ErrInvalidToken
	}
	return &auth.Claims{
		TokenType:        "session",
		RegisteredClaims: jwt.RegisteredClaims{ID: sid, Subject: "1"},
	}, nil
}

// fakeResolver logs every valid cookie in as u.
type fakeResolver struct {
	u *user.User
}

func (f fakeResolver) Resolve(ctx context.Context, sessionID string, userID int64) (user.User, session.Session, error) {
	if f.u == nil {
		return user.User{}, session.Session{}, authsvc.ErrInvalidSession
	}
	return *f.u, session.Session{ID: sessionID, UserID: f.u.ID}, nil
}

var sessionCookie = &http.Cookie{Name: middlewares.SessionCookieName, Value: "tok-s1"}

func newTestEngine(t *testing.T, loggedIn *user.User) *gin.Engine {
	t.Helper()

	r := gin.New()

	tmpl, err := web.Templates()
	if err != nil {
		t.Fatalf("templates: %v", err)
	}
	r.SetHTMLTemplate(tmpl)

	sm := middlewares.NewSessionMiddleware(fakeTokens{}, fakeResolver{u: loggedIn}, false)
	r.Use(middlewares.RequestID())
	r.Use(sm.LoadSession())

	return r
}

func postForm(r http.Handler, path, form string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return serve(r, req, cookies...)
}

func doRequest(r http.Handler, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	return serve(r, req, cookies...)
}

func serve(r http.Handler, req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func findCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// savedFlashes decodes the flash cookie written before a redirect.
func savedFlashes(t *testing.T, w *httptest.ResponseRecorder) []flash.Message {
	t.Helper()

	c := findCookie(w, "flash")
	if c == nil {
		t.Fatalf("expected a flash cookie, got headers %v", w.Header())
	}

	raw, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		t.Fatalf("decode flash cookie: %v", err)
	}

	var msgs []flash.Message
	if err := json.Unmarshal(raw, &msgs); err != nil {
		t.Fatalf("unmarshal flash cookie: %v", err)
	}

	return msgs
}
