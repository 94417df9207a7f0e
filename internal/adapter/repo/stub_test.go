package repo

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type execCall struct {
	query string
	args  []any
}

// stubSQL is a scripted infra.SQLExecutor. Each call pops the next row, rows
// set or command tag from its queue.
type stubSQL struct {
	t     *testing.T
	calls []execCall

	rows    []pgx.Row
	sets    [][][]any
	tags    []pgconn.CommandTag
	execErr error
}

func (s *stubSQL) record(query string, args []any) {
	if !strings.HasPrefix(query, "--sql ") {
		s.t.Fatalf("query without marker: %q", query)
	}
	s.calls = append(s.calls, execCall{query: query, args: args})
}

func (s *stubSQL) Exec(_ context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	s.record(query, args)
	if s.execErr != nil {
		return pgconn.CommandTag{}, s.execErr
	}
	if len(s.tags) == 0 {
		return pgconn.NewCommandTag("UPDATE 1"), nil
	}
	tag := s.tags[0]
	s.tags = s.tags[1:]
	return tag, nil
}

func (s *stubSQL) QueryRow(_ context.Context, query string, args ...any) pgx.Row {
	s.record(query, args)
	if len(s.rows) == 0 {
		return scriptedRow{err: pgx.ErrNoRows}
	}
	row := s.rows[0]
	s.rows = s.rows[1:]
	return row
}

func (s *stubSQL) Query(_ context.Context, query string, args ...any) (pgx.Rows, error) {
	s.record(query, args)
	if len(s.sets) == 0 {
		return &scriptedRows{}, nil
	}
	set := s.sets[0]
	s.sets = s.sets[1:]
	return &scriptedRows{data: set, pos: -1}, nil
}

// scriptedRow assigns vals to the scan destinations in order.
type scriptedRow struct {
	vals []any
	err  error
}

func rowOf(vals ...any) scriptedRow { return scriptedRow{vals: vals} }

func (r scriptedRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return assign(dest, r.vals)
}

func assign(dest, vals []any) error {
	if len(dest) != len(vals) {
		return fmt.Errorf("scan: %d destinations, %d values", len(dest), len(vals))
	}
	for i, d := range dest {
		target := reflect.ValueOf(d).Elem()
		if vals[i] == nil {
			target.Set(reflect.Zero(target.Type()))
			continue
		}
		v := reflect.ValueOf(vals[i])
		if target.Kind() == reflect.Pointer && v.Kind() != reflect.Pointer {
			p := reflect.New(target.Type().Elem())
			p.Elem().Set(v.Convert(target.Type().Elem()))
			target.Set(p)
			continue
		}
		target.Set(v.Convert(target.Type()))
	}
	return nil
}

type scriptedRows struct {
	data [][]any
	pos  int
}

func (r *scriptedRows) Close()                                       {}
func (r *scriptedRows) Err() error                                   { return nil }
func (r *scriptedRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *scriptedRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *scriptedRows) Values() ([]any, error)                       { return nil, fmt.Errorf("not supported") }
func (r *scriptedRows) RawValues() [][]byte                          { return nil }
func (r *scriptedRows) Conn() *pgx.Conn                              { return nil }

func (r *scriptedRows) Next() bool {
	if r.pos+1 >= len(r.data) {
		return false
	}
	r.pos++
	return true
}

func (r *scriptedRows) Scan(dest ...any) error {
	return assign(dest, r.data[r.pos])
}
