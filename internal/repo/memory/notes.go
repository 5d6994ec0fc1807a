package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/geocoder89/notehub/internal/domain/note"
)

type NotesRepo struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]note.Note
}

func NewNotesRepo() *NotesRepo {
	return &NotesRepo{
		items: make(map[int64]note.Note),
	}
}

func (r *NotesRepo) Create(ctx context.Context, req note.CreateNoteRequest) (note.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	n := note.Note{
		ID:     r.nextID,
		Data:   req.Data,
		Date:   time.Now().UTC(),
		UserID: req.UserID,
	}

	r.items[n.ID] = n

	return n, nil
}

func (r *NotesRepo) GetByID(ctx context.Context, id int64) (note.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n, ok := r.items[id]
	if !ok {
		return note.Note{}, note.ErrNotFound
	}

	return n, nil
}

func (r *NotesRepo) ListByUser(ctx context.Context, userID int64) ([]note.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]note.Note, 0)
	for _, n := range r.items {
		if n.UserID == userID {
			out = append(out, n)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].ID < out[j].ID
		}
		return out[i].Date.Before(out[j].Date)
	})

	return out, nil
}

func (r *NotesRepo) Delete(ctx context.Context, id, ownerID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.items[id]
	if !ok || n.UserID != ownerID {
		return note.ErrNotFound
	}

	delete(r.items, id)

	return nil
}

// Len reports how many notes are stored across all users.
func (r *NotesRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.items)
}
