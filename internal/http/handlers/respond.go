package handlers

import (
	"errors"
	"net/http"

	"github.com/geocoder89/notehub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

// APIError is the JSON error envelope of the script-facing endpoints.
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"requestId,omitempty"`
	Details   any    `json:"details,omitempty"`
}

func requestIDFrom(ctx *gin.Context) string {
	if id := ctx.GetString(middlewares.CtxRequestID); id != "" {
		return id
	}

	// fallback header
	return ctx.GetHeader("X-Request-Id")
}

func RespondError(ctx *gin.Context, status int, code, message string, details any) {
	ctx.AbortWithStatusJSON(status, gin.H{
		"error": APIError{
			Code:      code,
			Message:   message,
			RequestID: requestIDFrom(ctx),
			Details:   details,
		},
	})
}

func RespondBadRequest(ctx *gin.Context, message string, details any) {
	RespondError(ctx, http.StatusBadRequest, "invalid_request", message, details)
}

func RespondUnauthorized(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusUnauthorized, "unauthorized", message, nil)
}

func RespondNotFound(ctx *gin.Context) {
	RespondError(ctx, http.StatusNotFound, "not_found", "Page not found", nil)
}

func RespondPayloadTooLarge(ctx *gin.Context, limit int64) {
	RespondError(ctx, http.StatusRequestEntityTooLarge, "payload_too_large", "Request body is too large", gin.H{"limitBytes": limit})
}

func RespondInternal(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusInternalServerError, "internal_error", message, nil)
}

// bodyTooLarge reports whether err came from the MaxBodyBytes cap.
func bodyTooLarge(err error) (*http.MaxBytesError, bool) {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return mbe, true
	}
	return nil, false
}
