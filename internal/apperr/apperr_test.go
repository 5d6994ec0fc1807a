package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestAsValidation(t *testing.T) {
	errShort := Validation("too_short", "Note is too short!")
	wrapped := fmt.Errorf("create note: %w", errShort)

	ve, ok := AsValidation(wrapped)
	if !ok {
		t.Fatalf("expected wrapped validation error to be found")
	}
	if ve.Message != "Note is too short!" || ve.Code != "too_short" {
		t.Fatalf("unexpected validation error: %+v", ve)
	}
	if !errors.Is(wrapped, errShort) {
		t.Fatalf("errors.Is should match the sentinel pointer")
	}

	if _, ok := AsValidation(errors.New("db down")); ok {
		t.Fatalf("plain error must not be treated as validation")
	}
}
