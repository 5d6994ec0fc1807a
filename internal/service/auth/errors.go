package auth

import (
	"errors"

	"github.com/geocoder89/notehub/internal/apperr"
)

// Sign-up rules, checked in this order.
var (
	ErrEmailExists       = apperr.Validation("email_exists", "Email already exists.")
	ErrEmailTooShort     = apperr.Validation("email_too_short", "Email must be greater than 3 characters.")
	ErrFirstNameTooShort = apperr.Validation("first_name_too_short", "First name must be greater than 1 character.")
	ErrPasswordMismatch  = apperr.Validation("password_mismatch", "Passwords don't match.")
	ErrPasswordTooShort  = apperr.Validation("password_too_short", "Password must be at least 7 characters.")
)

// Login failures.
var (
	ErrEmailNotFound     = apperr.Validation("email_not_found", "Email does not exist.")
	ErrIncorrectPassword = apperr.Validation("incorrect_password", "Incorrect password, try again.")
)

var ErrInvalidSession = errors.New("invalid or expired session")

const (
	MsgLoggedIn       = "Logged in successfully!"
	MsgAccountCreated = "Account created!"
)

const (
	minEmailLength     = 4
	minFirstNameLength = 2
	minPasswordLength  = 7
)
