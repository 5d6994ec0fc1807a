package db

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

type recordingExecer struct {
	stmts  []string
	failAt int
}

func (r *recordingExecer) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	r.stmts = append(r.stmts, sql)

	if r.failAt > 0 && len(r.stmts) == r.failAt {
		return pgconn.CommandTag{}, errors.New("permission denied")
	}

	return pgconn.NewCommandTag("CREATE TABLE"), nil
}

func TestEnsureSchema_IsCreateIfAbsent(t *testing.T) {
	ex := &recordingExecer{}

	if err := EnsureSchema(context.Background(), ex); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}

	if len(ex.stmts) != len(schema) {
		t.Fatalf("got %d statements, want %d", len(ex.stmts), len(schema))
	}

	for _, stmt := range ex.stmts {
		if !strings.Contains(stmt, "IF NOT EXISTS") {
			t.Fatalf("statement is not idempotent: %s", stmt)
		}
	}
}

func TestEnsureSchema_StopsOnError(t *testing.T) {
	ex := &recordingExecer{failAt: 1}

	err := EnsureSchema(context.Background(), ex)
	if err == nil {
		t.Fatalf("expected error")
	}

	if len(ex.stmts) != 1 {
		t.Fatalf("should stop after the failing statement, ran %d", len(ex.stmts))
	}
}
