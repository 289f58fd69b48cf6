package store_test

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

type execCall struct {
	sql  string
	args []any
}

// fakeDB implements sqlc.DBTX. Each call pops the next queued result.
type fakeDB struct {
	execTags  []string
	execErr   error
	execCalls []execCall

	rows    [][]any
	rowErr  error
	rowArgs [][]any
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.execCalls = append(f.execCalls, execCall{sql: sql, args: args})
	if f.execErr != nil {
		return pgconn.CommandTag{}, f.execErr
	}
	if len(f.execTags) == 0 {
		return pgconn.CommandTag{}, fmt.Errorf("unexpected exec")
	}
	tag := f.execTags[0]
	f.execTags = f.execTags[1:]
	return pgconn.NewCommandTag(tag), nil
}

func (f *fakeDB) Query(_ context.Context, _ string, args ...any) (pgx.Rows, error) {
	f.rowArgs = append(f.rowArgs, args)
	if f.rowErr != nil {
		return nil, f.rowErr
	}
	rows := f.rows
	f.rows = nil
	return &fakeRows{rows: rows, pos: -1}, nil
}

func (f *fakeDB) QueryRow(_ context.Context, _ string, args ...any) pgx.Row {
	f.rowArgs = append(f.rowArgs, args)
	if f.rowErr != nil {
		return fakeRow{err: f.rowErr}
	}
	if len(f.rows) == 0 {
		return fakeRow{err: pgx.ErrNoRows}
	}
	row := f.rows[0]
	f.rows = f.rows[1:]
	return fakeRow{values: row}
}

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return scanInto(r.values, dest)
}

type fakeRows struct {
	rows [][]any
	pos  int
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.NewCommandTag("SELECT") }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) Values() ([]any, error)                       { return r.rows[r.pos], nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	r.pos++
	return r.pos < len(r.rows)
}

func (r *fakeRows) Scan(dest ...any) error {
	return scanInto(r.rows[r.pos], dest)
}

func scanInto(values []any, dest []any) error {
	if len(values) != len(dest) {
		return fmt.Errorf("scan: %d values into %d targets", len(values), len(dest))
	}
	for i, v := range values {
		switch d := dest[i].(type) {
		case *int64:
			*d = v.(int64)
		case *int32:
			*d = v.(int32)
		case *string:
			*d = v.(string)
		case *bool:
			*d = v.(bool)
		case *pgtype.Timestamptz:
			*d = v.(pgtype.Timestamptz)
		default:
			return fmt.Errorf("scan: unsupported target %T", dest[i])
		}
	}
	return nil
}

func ts(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}

// taskRow is a tasks row in column order.
func taskRow(id, workspaceID int64, title string, position int32, deadline pgtype.Timestamptz) []any {
	now := ts(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC))
	return []any{id, workspaceID, title, false, deadline, position, now, now}
}

func workspaceRow(id int64, name string) []any {
	now := ts(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC))
	return []any{id, name, now, now}
}
