package infra

import (
	"context"
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

type recordingExecer struct {
	statements []string
	failOn     string
}

func (r *recordingExecer) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	if r.failOn != "" && strings.Contains(sql, r.failOn) {
		return pgconn.CommandTag{}, errors.New("boom")
	}
	r.statements = append(r.statements, sql)
	return pgconn.CommandTag{}, nil
}

func TestApplySchemaOrdersFiles(t *testing.T) {
	fsys := fstest.MapFS{
		"002_more.sql": {Data: []byte("create table b();")},
		"001_init.sql": {Data: []byte("create table a();")},
		"README.md":    {Data: []byte("ignored")},
	}
	exec := &recordingExecer{}
	if err := ApplySchema(context.Background(), exec, fsys, zerolog.Nop()); err != nil {
		t.Fatalf("ApplySchema error: %v", err)
	}
	if len(exec.statements) != 2 || exec.statements[0] != "create table a();" {
		t.Fatalf("unexpected statements: %#v", exec.statements)
	}
}

func TestApplySchemaStopsOnError(t *testing.T) {
	fsys := fstest.MapFS{
		"001_init.sql": {Data: []byte("create table a();")},
		"002_bad.sql":  {Data: []byte("broken")},
		"003_late.sql": {Data: []byte("create table c();")},
	}
	exec := &recordingExecer{failOn: "broken"}
	err := ApplySchema(context.Background(), exec, fsys, zerolog.Nop())
	if err == nil || !strings.Contains(err.Error(), "002_bad.sql") {
		t.Fatalf("expected error naming 002_bad.sql, got %v", err)
	}
	if len(exec.statements) != 1 {
		t.Fatalf("later files should not run: %#v", exec.statements)
	}
}
