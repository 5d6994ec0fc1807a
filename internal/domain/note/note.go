package note

import (
	"bytes"
	"encoding/json"
	"errors"
	"reflect"
	"strconv"
	"time"
)

// MaxContentLength is counted in characters, not bytes.
const MaxContentLength = 10000

var (
	ErrNotFound  = errors.New("note not found")
	ErrForbidden = errors.New("note belongs to another user")
)

type Note struct {
	ID     int64     `json:"id"`
	Data   string    `json:"data"`
	Date   time.Time `json:"date"`
	UserID int64     `json:"userId"`
}

type CreateNoteRequest struct {
	Data   string
	UserID int64
}

// DeleteNoteRequest mirrors the body sent by the delete button script.
type DeleteNoteRequest struct {
	NoteID *LooseID `json:"noteId" binding:"required"`
}

// LooseID is a note id sent either as a JSON number or as a string holding one.
type LooseID int64

func (id *LooseID) UnmarshalJSON(b []byte) error {
	raw := b
	if bytes.HasPrefix(b, []byte(`"`)) {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		raw = []byte(s)
	}

	n, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return &json.UnmarshalTypeError{Value: string(b), Type: reflect.TypeOf(int64(0))}
	}

	*id = LooseID(n)
	return nil
}
