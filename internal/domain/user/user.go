package user

import (
	"errors"
	"time"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already registered")
)

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	FirstName    string    `json:"firstName"`
	CreatedAt    time.Time `json:"createdAt"`
}

type CreateUserRequest struct {
	Email        string
	PasswordHash string
	FirstName    string
}
