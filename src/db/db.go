package db

import (
	"context"
	"errors"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

/*
A general error to be used when no results are found. This is the error returned
by QueryOne, and can generally be used by other database helpers that fetch a single
result but find nothing.
*/
var NotFound = errors.New("not found")

/*
Performs a SQL query and returns a slice of all the result rows. The query is
just plain SQL, but make sure to read the package documentation for details.
You must explicitly provide the type argument - this is how it knows what Go
type to map the results to, and it cannot be inferred.

Any SQL query may be performed, including INSERT and UPDATE - as long as it
returns a result set, you can use this. If the query does not return a result
set, or you simply do not care about the result set, call Exec directly on
your pgx connection.

This function always returns pointers to the values. This is convenient for
structs, but for other types, you may wish to use QueryScalar.
*/
func Query[T any](
	ctx context.Context,
	conn ConnOrTx,
	query string,
	args ...any,
) ([]*T, error) {
	var destExample T
	destType := reflect.TypeOf(destExample)

	rows, err := conn.Query(ctx, compileQuery(query, destType), args...)
	if err != nil {
		return nil, err
	}

	if typeIsScalar(destType) {
		return pgx.CollectRows(rows, pgx.RowToAddrOf[T])
	}
	return pgx.CollectRows(rows, pgx.RowToAddrOfStructByNameLax[T])
}

/*
Identical to Query, but returns only the first result row. If there are no
rows in the result set, returns NotFound.
*/
func QueryOne[T any](
	ctx context.Context,
	conn ConnOrTx,
	query string,
	args ...any,
) (*T, error) {
	result, err := Query[T](ctx, conn, query, args...)
	if err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, NotFound
	}
	return result[0], nil
}

/*
Identical to Query, but returns concrete values instead of pointers. More
convenient for primitive types.
*/
func QueryScalar[T any](
	ctx context.Context,
	conn ConnOrTx,
	query string,
	args ...any,
) ([]T, error) {
	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[T])
}

/*
Identical to QueryScalar, but returns only the first result value. If there
are no rows in the result set, returns NotFound.
*/
func QueryOneScalar[T any](
	ctx context.Context,
	conn ConnOrTx,
	query string,
	args ...any,
) (T, error) {
	result, err := QueryScalar[T](ctx, conn, query, args...)
	if err != nil {
		var zero T
		return zero, err
	}
	if len(result) == 0 {
		var zero T
		return zero, NotFound
	}
	return result[0], nil
}

var reColumnsPlaceholder = regexp.MustCompile(`\$columns({(.*?)})?`)

/*
Replaces the special $columns placeholder with the column names from the
destination type's `db` struct tags, optionally qualified with a table name
via $columns{tablename}. See the package documentation for examples.
*/
func compileQuery(query string, destType reflect.Type) string {
	columnsMatch := reColumnsPlaceholder.FindStringSubmatch(query)
	if columnsMatch == nil {
		return query
	}

	if destType.Kind() != reflect.Struct || typeIsScalar(destType) {
		panic("$columns can only be used when querying into a struct")
	}

	prefix := columnsMatch[2]
	columns := columnNames(destType, prefix)
	return reColumnsPlaceholder.ReplaceAllString(query, strings.Join(columns, ", "))
}

func columnNames(destType reflect.Type, prefix string) []string {
	var columns []string
	for _, field := range reflect.VisibleFields(destType) {
		column := field.Tag.Get("db")
		if column == "" || column == "-" {
			continue
		}
		if prefix != "" {
			column = prefix + "." + column
		}
		columns = append(columns, column)
	}
	return columns
}

/*
Struct types are generally mapped column-by-column via their `db` tags, but a
few of them are actually single Postgres values and must not be broken apart.
*/
func typeIsScalar(t reflect.Type) bool {
	if t == nil {
		return false // interface types land here; pgx can sort those out itself
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return true
	}
	switch t {
	case reflect.TypeOf(time.Time{}), reflect.TypeOf(uuid.UUID{}):
		return true
	}
	return false
}
