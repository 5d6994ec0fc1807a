package note

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestDeleteNoteRequest_AcceptsNumberOrNumericString(t *testing.T) {
	tests := []struct {
		body    string
		want    int64
		wantNil bool
		wantErr bool
	}{
		{body: `{"noteId": 5}`, want: 5},
		{body: `{"noteId": "5"}`, want: 5},
		{body: `{"noteId": "-3"}`, want: -3},
		{body: `{"noteId": null}`, wantNil: true},
		{body: `{}`, wantNil: true},
		{body: `{"noteId": "five"}`, wantErr: true},
		{body: `{"noteId": 1.5}`, wantErr: true},
		{body: `{"noteId": true}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			var req DeleteNoteRequest
			err := json.Unmarshal([]byte(tt.body), &req)

			if tt.wantErr {
				var typeErr *json.UnmarshalTypeError
				if !errors.As(err, &typeErr) {
					t.Fatalf("got %v, want a type error", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unmarshal: %v", err)
			}

			if tt.wantNil {
				if req.NoteID != nil {
					t.Fatalf("expected no id, got %d", *req.NoteID)
				}
				return
			}
			if req.NoteID == nil || int64(*req.NoteID) != tt.want {
				t.Fatalf("got %v want %d", req.NoteID, tt.want)
			}
		})
	}
}
