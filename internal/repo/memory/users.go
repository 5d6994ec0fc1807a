package memory

import (
	"context"
	"sync"
	"time"

	"github.com/geocoder89/notehub/internal/domain/user"
)

type UsersRepo struct {
	mu      sync.RWMutex
	nextID  int64
	items   map[int64]user.User
	byEmail map[string]int64
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{
		items:   make(map[int64]user.User),
		byEmail: make(map[string]int64),
	}
}

func (r *UsersRepo) Create(ctx context.Context, req user.CreateUserRequest) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[req.Email]; ok {
		return user.User{}, user.ErrEmailTaken
	}

	r.nextID++
	u := user.User{
		ID:           r.nextID,
		Email:        req.Email,
		PasswordHash: req.PasswordHash,
		FirstName:    req.FirstName,
		CreatedAt:    time.Now().UTC(),
	}

	r.items[u.ID] = u
	r.byEmail[u.Email] = u.ID

	return u, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return user.User{}, user.ErrNotFound
	}

	return r.items[id], nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id int64) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.items[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}

	return u, nil
}

// Len reports how many users are stored.
func (r *UsersRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.items)
}
