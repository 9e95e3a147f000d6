package repo

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"storeuptime/internal/platform/store"
)

// fakeRows replays canned values through reflection
type fakeRows struct {
	data [][]any
	i    int
	err  error
}

func (r *fakeRows) Next() bool {
	if r.i >= len(r.data) {
		return false
	}
	r.i++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.data[r.i-1]
	if len(row) != len(dest) {
		return fmt.Errorf("scan: %d values into %d targets", len(row), len(dest))
	}
	for i, d := range dest {
		v := reflect.ValueOf(d).Elem()
		if row[i] == nil {
			v.Set(reflect.Zero(v.Type()))
			continue
		}
		v.Set(reflect.ValueOf(row[i]))
	}
	return nil
}

func (r *fakeRows) Err() error        { return r.err }
func (r *fakeRows) Close()            {}
func (r *fakeRows) Columns() []string { return nil }

type tag int64

func (t tag) String() string      { return fmt.Sprintf("INSERT 0 %d", int64(t)) }
func (t tag) RowsAffected() int64 { return int64(t) }

type call struct {
	sql  string
	args []any
}

// fakeQ answers queries by the first registered fragment the sql contains
type fakeQ struct {
	answers map[string][][]any
	fail    map[string]error
	calls   []call
	copies  map[string][][]any
}

func newFakeQ() *fakeQ {
	return &fakeQ{answers: map[string][][]any{}, fail: map[string]error{}, copies: map[string][][]any{}}
}

func (f *fakeQ) match(sql string) ([][]any, error) {
	for frag, err := range f.fail {
		if strings.Contains(sql, frag) {
			return nil, err
		}
	}
	for frag, rows := range f.answers {
		if strings.Contains(sql, frag) {
			return rows, nil
		}
	}
	return nil, nil
}

func (f *fakeQ) Exec(_ context.Context, sql string, args ...any) (store.CommandTag, error) {
	f.calls = append(f.calls, call{sql: sql, args: args})
	if _, err := f.match(sql); err != nil {
		return tag(0), err
	}
	return tag(1), nil
}

func (f *fakeQ) Query(_ context.Context, sql string, args ...any) (store.Rows, error) {
	f.calls = append(f.calls, call{sql: sql, args: args})
	rows, err := f.match(sql)
	if err != nil {
		return nil, err
	}
	return &fakeRows{data: rows}, nil
}

func (f *fakeQ) QueryRow(ctx context.Context, sql string, args ...any) store.Row {
	rs, err := f.Query(ctx, sql, args...)
	return rowFunc(func(dest ...any) error {
		if err != nil {
			return err
		}
		if !rs.Next() {
			return errors.New("no rows in result set")
		}
		return rs.Scan(dest...)
	})
}

func (f *fakeQ) CopyFrom(_ context.Context, table string, _ []string, rows [][]any) (int64, error) {
	f.copies[table] = append(f.copies[table], rows...)
	return int64(len(rows)), nil
}

type rowFunc func(dest ...any) error

func (fn rowFunc) Scan(dest ...any) error { return fn(dest...) }

// noCopy exposes only the query surface
type noCopy struct{ q *fakeQ }

func (n noCopy) Exec(ctx context.Context, sql string, args ...any) (store.CommandTag, error) {
	return n.q.Exec(ctx, sql, args...)
}

func (n noCopy) Query(ctx context.Context, sql string, args ...any) (store.Rows, error) {
	return n.q.Query(ctx, sql, args...)
}

func (n noCopy) QueryRow(ctx context.Context, sql string, args ...any) store.Row {
	return n.q.QueryRow(ctx, sql, args...)
}

func ptr(t time.Time) *time.Time { return &t }
