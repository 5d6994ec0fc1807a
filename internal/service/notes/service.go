package notes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/geocoder89/notehub/internal/apperr"
	"github.com/geocoder89/notehub/internal/domain/note"
	"github.com/geocoder89/notehub/internal/domain/user"
	"github.com/geocoder89/notehub/internal/observability"
)

var (
	ErrNoteTooShort = apperr.Validation("note_too_short", "Note is too short!")
	ErrNoteTooLong  = apperr.Validation("note_too_long", "Note is too long!")

	ErrUnauthenticated = errors.New("no authenticated user")
)

const MsgNoteAdded = "Note added:"

type NoteStore interface {
	Create(ctx context.Context, req note.CreateNoteRequest) (note.Note, error)
	GetByID(ctx context.Context, id int64) (note.Note, error)
	ListByUser(ctx context.Context, userID int64) ([]note.Note, error)
	Delete(ctx context.Context, id, ownerID int64) error
}

type Service struct {
	notes NoteStore
	prom  *observability.Prom
	log   *slog.Logger
}

func NewService(notes NoteStore, prom *observability.Prom, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}

	return &Service{notes: notes, prom: prom, log: log}
}

// Create stores content for author. Only empty content is rejected as too
// short; whitespace counts as content.
func (s *Service) Create(ctx context.Context, author *user.User, content string) (note.Note, error) {
	if author == nil {
		return note.Note{}, ErrUnauthenticated
	}

	if content == "" {
		s.prom.ObserveNote("create", ErrNoteTooShort.Code)
		return note.Note{}, ErrNoteTooShort
	}

	if utf8.RuneCountInString(content) > note.MaxContentLength {
		s.prom.ObserveNote("create", ErrNoteTooLong.Code)
		return note.Note{}, ErrNoteTooLong
	}

	n, err := s.notes.Create(ctx, note.CreateNoteRequest{Data: content, UserID: author.ID})
	if err != nil {
		return note.Note{}, fmt.Errorf("create note: %w", err)
	}

	s.prom.ObserveNote("create", "ok")
	s.log.DebugContext(ctx, "note created", "note_id", n.ID, "user_id", author.ID)

	return n, nil
}

// Delete removes the note when requester owns it. It returns note.ErrNotFound
// or note.ErrForbidden otherwise; callers that must not reveal which one
// happened treat both the same.
func (s *Service) Delete(ctx context.Context, requester *user.User, noteID int64) error {
	if requester == nil {
		return ErrUnauthenticated
	}

	n, err := s.notes.GetByID(ctx, noteID)
	if err != nil {
		if errors.Is(err, note.ErrNotFound) {
			s.prom.ObserveNote("delete", "not_found")
			return note.ErrNotFound
		}
		return fmt.Errorf("load note: %w", err)
	}

	if n.UserID != requester.ID {
		s.prom.ObserveNote("delete", "forbidden")
		s.log.InfoContext(ctx, "delete of foreign note ignored", "note_id", noteID, "user_id", requester.ID, "owner_id", n.UserID)
		return note.ErrForbidden
	}

	if err := s.notes.Delete(ctx, noteID, requester.ID); err != nil {
		// deleted concurrently between the lookup and now
		if errors.Is(err, note.ErrNotFound) {
			s.prom.ObserveNote("delete", "not_found")
			return note.ErrNotFound
		}
		return fmt.Errorf("delete note: %w", err)
	}

	s.prom.ObserveNote("delete", "ok")
	s.log.DebugContext(ctx, "note deleted", "note_id", noteID, "user_id", requester.ID)

	return nil
}

// List returns owner's notes, oldest first.
func (s *Service) List(ctx context.Context, owner *user.User) ([]note.Note, error) {
	if owner == nil {
		return nil, ErrUnauthenticated
	}

	notes, err := s.notes.ListByUser(ctx, owner.ID)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}

	return notes, nil
}
