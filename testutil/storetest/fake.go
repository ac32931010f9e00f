// Package storetest provides an in-memory fake of the store interfaces
// so generator and simulator logic can be tested without a database.
package storetest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/iimin/restosim/store"
)

// Statement records one executed statement with its arguments.
type Statement struct {
	SQL  string
	Args []any
}

// FakeDB implements store.DB. Statements are recorded; behavior is
// steered through the optional hook funcs. The zero value is usable:
// selects return no rows, inserts return incrementing ids, every exec
// affects one row and nothing fails.
type FakeDB struct {
	mu sync.Mutex

	// RowsFunc supplies result rows for select queries. Nil means no rows.
	RowsFunc func(sql string, args []any) [][]any

	// AffectedFunc supplies the affected row count for exec statements.
	// Nil means every statement affects one row.
	AffectedFunc func(sql string, args []any) int64

	// FailFunc makes matching statements fail. Nil means nothing fails.
	FailFunc func(sql string, args []any) error

	// CommitErrs is consumed front to back by top level commits.
	CommitErrs []error

	nextInsertID int64

	Execs              []Statement
	Queries            []Statement
	Commits            int
	Rollbacks          int
	SavepointCommits   int
	SavepointRollbacks int
}

// ExecSQL returns the SQL text of every recorded exec statement.
func (f *FakeDB) ExecSQL() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]string, len(f.Execs))
	for i, s := range f.Execs {
		out[i] = s.SQL
	}

	return out
}

func (f *FakeDB) Query(_ context.Context, sql string, args ...any) (store.Rows, error) {
	return f.query(sql, args)
}

func (f *FakeDB) QueryRow(_ context.Context, sql string, args ...any) store.Row {
	return f.queryRow(sql, args)
}

func (f *FakeDB) Exec(_ context.Context, sql string, args ...any) (store.Result, error) {
	return f.exec(sql, args)
}

func (f *FakeDB) Begin(_ context.Context) (store.Tx, error) {
	return &fakeTx{db: f}, nil
}

func (f *FakeDB) Ping(_ context.Context) error { return nil }

func (f *FakeDB) Close() {}

func (f *FakeDB) query(sql string, args []any) (store.Rows, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Queries = append(f.Queries, Statement{SQL: sql, Args: args})

	if f.FailFunc != nil {
		if err := f.FailFunc(sql, args); err != nil {
			return nil, err
		}
	}

	var data [][]any
	if f.RowsFunc != nil {
		data = f.RowsFunc(sql, args)
	}

	return &fakeRows{rows: data, idx: -1}, nil
}

func (f *FakeDB) queryRow(sql string, args []any) store.Row {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Queries = append(f.Queries, Statement{SQL: sql, Args: args})

	if f.FailFunc != nil {
		if err := f.FailFunc(sql, args); err != nil {
			return fakeRow{err: err}
		}
	}

	if strings.HasPrefix(sql, "INSERT") {
		f.nextInsertID++
		return fakeRow{values: []any{f.nextInsertID}}
	}

	if f.RowsFunc != nil {
		if rows := f.RowsFunc(sql, args); len(rows) > 0 {
			return fakeRow{values: rows[0]}
		}
	}

	return fakeRow{err: store.ErrNoRows}
}

func (f *FakeDB) exec(sql string, args []any) (store.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Execs = append(f.Execs, Statement{SQL: sql, Args: args})

	if f.FailFunc != nil {
		if err := f.FailFunc(sql, args); err != nil {
			return nil, err
		}
	}

	affected := int64(1)
	if f.AffectedFunc != nil {
		affected = f.AffectedFunc(sql, args)
	}

	return fakeResult{affected: affected}, nil
}

func (f *FakeDB) commit(depth int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if depth > 0 {
		f.SavepointCommits++
		return nil
	}

	f.Commits++

	if len(f.CommitErrs) > 0 {
		err := f.CommitErrs[0]
		f.CommitErrs = f.CommitErrs[1:]

		return err
	}

	return nil
}

func (f *FakeDB) rollback(depth int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if depth > 0 {
		f.SavepointRollbacks++
		return
	}

	f.Rollbacks++
}

type fakeTx struct {
	db    *FakeDB
	depth int
}

func (t *fakeTx) Query(_ context.Context, sql string, args ...any) (store.Rows, error) {
	return t.db.query(sql, args)
}

func (t *fakeTx) QueryRow(_ context.Context, sql string, args ...any) store.Row {
	return t.db.queryRow(sql, args)
}

func (t *fakeTx) Exec(_ context.Context, sql string, args ...any) (store.Result, error) {
	return t.db.exec(sql, args)
}

func (t *fakeTx) Begin(_ context.Context) (store.Tx, error) {
	return &fakeTx{db: t.db, depth: t.depth + 1}, nil
}

func (t *fakeTx) Commit(_ context.Context) error {
	return t.db.commit(t.depth)
}

func (t *fakeTx) Rollback(_ context.Context) error {
	t.db.rollback(t.depth)
	return nil
}

type fakeRows struct {
	rows [][]any
	idx  int
}

func (r *fakeRows) Next() bool {
	r.idx++
	return r.idx < len(r.rows)
}

func (r *fakeRows) Scan(dest ...any) error {
	if r.idx < 0 || r.idx >= len(r.rows) {
		return fmt.Errorf("scan called without a current row")
	}

	return assignAll(dest, r.rows[r.idx])
}

func (r *fakeRows) Close() error { return nil }

func (r *fakeRows) Err() error { return nil }

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}

	return assignAll(dest, r.values)
}

type fakeResult struct {
	affected int64
}

func (r fakeResult) RowsAffected() (int64, error) {
	return r.affected, nil
}

func assignAll(dest, values []any) error {
	if len(dest) > len(values) {
		return fmt.Errorf("scan expects %d values, row has %d", len(dest), len(values))
	}

	for i, d := range dest {
		if err := assign(d, values[i]); err != nil {
			return fmt.Errorf("column %d: %w", i, err)
		}
	}

	return nil
}

func assign(dest, value any) error {
	switch d := dest.(type) {
	case *int64:
		switch v := value.(type) {
		case int64:
			*d = v
		case int:
			*d = int64(v)
		default:
			return fmt.Errorf("cannot scan %T into *int64", value)
		}
	case *int:
		switch v := value.(type) {
		case int:
			*d = v
		case int64:
			*d = int(v)
		default:
			return fmt.Errorf("cannot scan %T into *int", value)
		}
	case *float64:
		switch v := value.(type) {
		case float64:
			*d = v
		case int64:
			*d = float64(v)
		case int:
			*d = float64(v)
		default:
			return fmt.Errorf("cannot scan %T into *float64", value)
		}
	case *string:
		v, ok := value.(string)
		if !ok {
			return fmt.Errorf("cannot scan %T into *string", value)
		}
		*d = v
	case *time.Time:
		v, ok := value.(time.Time)
		if !ok {
			return fmt.Errorf("cannot scan %T into *time.Time", value)
		}
		*d = v
	case *any:
		*d = value
	default:
		return fmt.Errorf("unsupported scan destination %T", dest)
	}

	return nil
}
