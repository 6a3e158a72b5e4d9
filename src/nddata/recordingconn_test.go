package nddata

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

/*
recordingConn is a db.ConnOrTx that captures every statement instead of
talking to Postgres. Tests use it to check which SQL the data helpers run,
with which arguments, and in what order relative to BEGIN/COMMIT/ROLLBACK.
*/
type recordingConn struct {
	stmts []recordedStmt

	// rowsFor supplies the scalar result rows for a query. Nil, or a nil
	// return, means an empty result set.
	rowsFor func(sql string, args []any) [][]any
	// execErr, if set, can make Exec fail for matching statements.
	execErr func(sql string) error
	// execRows, if set, overrides the affected-row count (default 1).
	execRows func(sql string) int64
}

type recordedStmt struct {
	SQL  string
	Args []any
}

func (c *recordingConn) record(sql string, args []any) {
	c.stmts = append(c.stmts, recordedStmt{SQL: sql, Args: args})
}

// indexOf returns the position of the first recorded statement containing
// the fragment, or -1.
func (c *recordingConn) indexOf(fragment string) int {
	for i, s := range c.stmts {
		if strings.Contains(s.SQL, fragment) {
			return i
		}
	}
	return -1
}

func (c *recordingConn) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	c.record(sql, args)
	if c.execErr != nil {
		if err := c.execErr(sql); err != nil {
			return pgconn.CommandTag{}, err
		}
	}
	affected := int64(1)
	if c.execRows != nil {
		affected = c.execRows(sql)
	}
	return pgconn.NewCommandTag(fmt.Sprintf("EXEC %d", affected)), nil
}

func (c *recordingConn) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	c.record(sql, args)
	var data [][]any
	if c.rowsFor != nil {
		data = c.rowsFor(sql, args)
	}
	return &recordedRows{data: data}, nil
}

func (c *recordingConn) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	c.record(sql, args)
	return noRow{}
}

func (c *recordingConn) Begin(ctx context.Context) (pgx.Tx, error) {
	c.record("BEGIN", nil)
	return &recordingTx{conn: c}, nil
}

type noRow struct{}

func (noRow) Scan(dest ...any) error { return pgx.ErrNoRows }

/*
recordingTx pretends to be a pgx.Tx, forwarding statements to its
recordingConn. Commit and Rollback are recorded like statements so tests
can assert ordering against them.
*/
type recordingTx struct {
	conn   *recordingConn
	closed bool
}

func (t *recordingTx) Begin(ctx context.Context) (pgx.Tx, error) {
	return t, nil
}

func (t *recordingTx) Commit(ctx context.Context) error {
	if t.closed {
		return pgx.ErrTxClosed
	}
	t.closed = true
	t.conn.record("COMMIT", nil)
	return nil
}

func (t *recordingTx) Rollback(ctx context.Context) error {
	if t.closed {
		return pgx.ErrTxClosed
	}
	t.closed = true
	t.conn.record("ROLLBACK", nil)
	return nil
}

func (t *recordingTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return t.conn.Exec(ctx, sql, args...)
}

func (t *recordingTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return t.conn.Query(ctx, sql, args...)
}

func (t *recordingTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return t.conn.QueryRow(ctx, sql, args...)
}

func (t *recordingTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, errors.New("recordingTx does not support CopyFrom")
}

func (t *recordingTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	return nil
}

func (t *recordingTx) LargeObjects() pgx.LargeObjects {
	return pgx.LargeObjects{}
}

func (t *recordingTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, errors.New("recordingTx does not support Prepare")
}

func (t *recordingTx) Conn() *pgx.Conn {
	return nil
}

// recordedRows plays back canned scalar rows through the pgx.Rows interface.
type recordedRows struct {
	data [][]any
	idx  int
}

func (r *recordedRows) Next() bool {
	if r.idx >= len(r.data) {
		return false
	}
	r.idx++
	return true
}

func (r *recordedRows) Scan(dest ...any) error {
	row := r.data[r.idx-1]
	if len(dest) != len(row) {
		return fmt.Errorf("scan got %d destinations for %d values", len(dest), len(row))
	}
	for i, d := range dest {
		reflect.ValueOf(d).Elem().Set(reflect.ValueOf(row[i]))
	}
	return nil
}

func (r *recordedRows) Close()                                       {}
func (r *recordedRows) Err() error                                   { return nil }
func (r *recordedRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *recordedRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *recordedRows) Values() ([]any, error)                       { return nil, errors.New("not supported") }
func (r *recordedRows) RawValues() [][]byte                          { return nil }
func (r *recordedRows) Conn() *pgx.Conn                              { return nil }
