package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/notehub/internal/apperr"
	"github.com/geocoder89/notehub/internal/domain/user"
	"github.com/geocoder89/notehub/internal/flash"
	"github.com/geocoder89/notehub/internal/http/middlewares"
	authsvc "github.com/geocoder89/notehub/internal/service/auth"
	"github.com/geocoder89/notehub/internal/session"
	"github.com/gin-gonic/gin"
)

const msgSomethingWentWrong = "Something went wrong, please try again."

type AuthService interface {
	SignUp(ctx context.Context, in authsvc.SignUpInput) (user.User, session.Session, error)
	LogIn(ctx context.Context, email, password string) (user.User, session.Session, error)
	LogOut(ctx context.Context, sess session.Session) error
}

type TokenIssuer interface {
	GenerateSessionToken(userID int64, sessionID string, issuedAt, expiresAt time.Time) (string, error)
}

type AuthHandler struct {
	auth          AuthService
	tokens        TokenIssuer
	secureCookies bool
}

func NewAuthHandler(auth AuthService, tokens TokenIssuer, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		auth:          auth,
		tokens:        tokens,
		secureCookies: secureCookies,
	}
}

func (h *AuthHandler) LoginPage(ctx *gin.Context) {
	render(ctx, http.StatusOK, "login.html", "Login", nil)
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	email := ctx.PostForm("email")
	password := ctx.PostForm("password")

	// bcrypt is slow on purpose, leave it room
	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	u, sess, err := h.auth.LogIn(cctx, email, password)
	if err != nil {
		h.renderFailure(ctx, "login.html", "Login", err)
		return
	}

	if !h.startSession(ctx, u, sess, "login.html", "Login") {
		return
	}

	flash.Add(ctx, flash.Success, authsvc.MsgLoggedIn)
	redirect(ctx, "/")
}

func (h *AuthHandler) SignUpPage(ctx *gin.Context) {
	render(ctx, http.StatusOK, "sign_up.html", "Sign Up", nil)
}

func (h *AuthHandler) SignUp(ctx *gin.Context) {
	in := authsvc.SignUpInput{
		Email:     ctx.PostForm("email"),
		FirstName: ctx.PostForm("firstName"),
		Password1: ctx.PostForm("password1"),
		Password2: ctx.PostForm("password2"),
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	u, sess, err := h.auth.SignUp(cctx, in)
	if err != nil {
		h.renderFailure(ctx, "sign_up.html", "Sign Up", err)
		return
	}

	if !h.startSession(ctx, u, sess, "sign_up.html", "Sign Up") {
		return
	}

	flash.Add(ctx, flash.Success, authsvc.MsgAccountCreated)
	redirect(ctx, "/")
}

// Logout sits behind RequireSession, so a session is always present.
func (h *AuthHandler) Logout(ctx *gin.Context) {
	sess, ok := middlewares.CurrentSession(ctx)
	if ok {
		cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
		defer cancel()

		if err := h.auth.LogOut(cctx, sess); err != nil {
			// the cookie goes away regardless; the record expires on its own
			slog.Default().ErrorContext(ctx.Request.Context(), "logout failed", "err", err, "user_id", sess.UserID)
		}
	}

	middlewares.ClearSessionCookie(ctx, h.secureCookies)
	redirect(ctx, "/login")
}

func (h *AuthHandler) startSession(ctx *gin.Context, u user.User, sess session.Session, page, title string) bool {
	raw, err := h.tokens.GenerateSessionToken(u.ID, sess.ID, sess.CreatedAt, sess.ExpiresAt)
	if err != nil {
		slog.Default().ErrorContext(ctx.Request.Context(), "sign session token", "err", err, "user_id", u.ID)
		flash.Add(ctx, flash.Error, msgSomethingWentWrong)
		render(ctx, http.StatusInternalServerError, page, title, nil)
		return false
	}

	middlewares.SetSessionCookie(ctx, raw, sess.ExpiresAt, h.secureCookies)
	return true
}

// renderFailure shows a rejected form again with the reason flashed.
func (h *AuthHandler) renderFailure(ctx *gin.Context, page, title string, err error) {
	if ve, ok := apperr.AsValidation(err); ok {
		flash.Add(ctx, flash.Error, ve.Message)
		render(ctx, http.StatusOK, page, title, nil)
		return
	}

	slog.Default().ErrorContext(ctx.Request.Context(), "auth request failed", "err", err, "page", page)
	flash.Add(ctx, flash.Error, msgSomethingWentWrong)
	render(ctx, http.StatusInternalServerError, page, title, nil)
}
