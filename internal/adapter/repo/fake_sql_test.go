package repo

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// stubExecutor answers queries with canned rows and records calls.
type stubExecutor struct {
	rows    map[string][][]any
	rowErr  map[string]error
	execTag pgconn.CommandTag
	execErr error
	calls   []stubCall
}

type stubCall struct {
	query string
	args  []any
}

func newStubExecutor() *stubExecutor {
	return &stubExecutor{rows: map[string][][]any{}, rowErr: map[string]error{}}
}

func (s *stubExecutor) Exec(_ context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	s.calls = append(s.calls, stubCall{query: query, args: args})
	return s.execTag, s.execErr
}

func (s *stubExecutor) QueryRow(_ context.Context, query string, args ...any) pgx.Row {
	s.calls = append(s.calls, stubCall{query: query, args: args})
	if err := s.rowErr[query]; err != nil {
		return stubRow{err: err}
	}
	rows := s.rows[query]
	if len(rows) == 0 {
		return stubRow{err: pgx.ErrNoRows}
	}
	return stubRow{values: rows[0]}
}

func (s *stubExecutor) Query(_ context.Context, query string, args ...any) (pgx.Rows, error) {
	s.calls = append(s.calls, stubCall{query: query, args: args})
	if err := s.rowErr[query]; err != nil {
		return nil, err
	}
	return &stubRows{rows: s.rows[query]}, nil
}

type stubRow struct {
	values []any
	err    error
}

func (r stubRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return assign(dest, r.values)
}

type stubRows struct {
	rows [][]any
	idx  int
}

func (r *stubRows) Close()                                       {}
func (r *stubRows) Err() error                                   { return nil }
func (r *stubRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *stubRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *stubRows) RawValues() [][]byte                          { return nil }
func (r *stubRows) Conn() *pgx.Conn                              { return nil }
func (r *stubRows) Values() ([]any, error)                       { return r.rows[r.idx-1], nil }

func (r *stubRows) Next() bool {
	if r.idx >= len(r.rows) {
		return false
	}
	r.idx++
	return true
}

func (r *stubRows) Scan(dest ...any) error {
	if r.idx == 0 || r.idx > len(r.rows) {
		return errors.New("scan called without row")
	}
	return assign(dest, r.rows[r.idx-1])
}

// assign copies values into scan destinations. A nil value zeroes the destination.
func assign(dest []any, values []any) error {
	if len(dest) != len(values) {
		return fmt.Errorf("scan: got %d destinations for %d values", len(dest), len(values))
	}
	for i, d := range dest {
		target := reflect.ValueOf(d).Elem()
		if values[i] == nil {
			target.Set(reflect.Zero(target.Type()))
			continue
		}
		v := reflect.ValueOf(values[i])
		if !v.Type().AssignableTo(target.Type()) {
			return fmt.Errorf("scan: column %d: cannot assign %s to %s", i, v.Type(), target.Type())
		}
		target.Set(v)
	}
	return nil
}
