package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/notehub/internal/apperr"
	"github.com/geocoder89/notehub/internal/domain/note"
	"github.com/geocoder89/notehub/internal/domain/user"
	"github.com/geocoder89/notehub/internal/flash"
	"github.com/geocoder89/notehub/internal/http/middlewares"
	notesvc "github.com/geocoder89/notehub/internal/service/notes"
	"github.com/gin-gonic/gin"
)

type NotesService interface {
	Create(ctx context.Context, author *user.User, content string) (note.Note, error)
	Delete(ctx context.Context, requester *user.User, noteID int64) error
	List(ctx context.Context, owner *user.User) ([]note.Note, error)
}

type NotesHandler struct {
	notes NotesService
}

func NewNotesHandler(notes NotesService) *NotesHandler {
	return &NotesHandler{notes: notes}
}

func (h *NotesHandler) Home(ctx *gin.Context) {
	render(ctx, http.StatusOK, "home.html", "Home", nil)
}

func (h *NotesHandler) NotesPage(ctx *gin.Context) {
	h.renderNotes(ctx, http.StatusOK)
}

func (h *NotesHandler) CreateNote(ctx *gin.Context) {
	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	// PostForm hides parse failures behind an empty value, which would read
	// as a too-short note
	if err := ctx.Request.ParseForm(); err != nil {
		if _, ok := bodyTooLarge(err); ok {
			flash.Add(ctx, flash.Error, notesvc.ErrNoteTooLong.Message)
			h.renderNotes(ctx, http.StatusRequestEntityTooLarge)
			return
		}

		flash.Add(ctx, flash.Error, msgSomethingWentWrong)
		h.renderNotes(ctx, http.StatusBadRequest)
		return
	}

	_, err := h.notes.Create(cctx, middlewares.CurrentUser(ctx), ctx.PostForm("note"))
	if err != nil {
		ve, ok := apperr.AsValidation(err)
		if !ok {
			slog.Default().ErrorContext(ctx.Request.Context(), "create note failed", "err", err)
			flash.Add(ctx, flash.Error, msgSomethingWentWrong)
			h.renderNotes(ctx, http.StatusInternalServerError)
			return
		}
		flash.Add(ctx, flash.Error, ve.Message)
	} else {
		flash.Add(ctx, flash.Success, notesvc.MsgNoteAdded)
	}

	h.renderNotes(ctx, http.StatusOK)
}

// DeleteNote answers {} whether or not anything was deleted, so callers
// cannot discover other users' note ids.
func (h *NotesHandler) DeleteNote(ctx *gin.Context) {
	u := middlewares.CurrentUser(ctx)
	if u == nil {
		RespondUnauthorized(ctx, "Login required")
		return
	}

	var req note.DeleteNoteRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	err := h.notes.Delete(cctx, u, int64(*req.NoteID))
	if err != nil && !errors.Is(err, note.ErrNotFound) && !errors.Is(err, note.ErrForbidden) {
		slog.Default().ErrorContext(ctx.Request.Context(), "delete note failed", "err", err, "note_id", int64(*req.NoteID))
		RespondInternal(ctx, "Could not delete note")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{})
}

func (h *NotesHandler) renderNotes(ctx *gin.Context, status int) {
	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	list, err := h.notes.List(cctx, middlewares.CurrentUser(ctx))
	if err != nil {
		slog.Default().ErrorContext(ctx.Request.Context(), "list notes failed", "err", err)
		flash.Add(ctx, flash.Error, msgSomethingWentWrong)
		status = http.StatusInternalServerError
	}

	render(ctx, status, "notes.html", "Notes", gin.H{"notes": list})
}
