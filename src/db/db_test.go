package db

import (
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type fakeUser struct {
	ID       int    `db:"id"`
	Username string `db:"username"`
	Ignored  string `db:"-"`
	NoTag    string
}

type fakeUserAndExtras struct {
	fakeUser
	PostCount int `db:"post_count"`
}

func TestCompileQuery(t *testing.T) {
	t.Run("no placeholder", func(t *testing.T) {
		q := compileQuery("SELECT id FROM foo", reflect.TypeOf(fakeUser{}))
		assert.Equal(t, "SELECT id FROM foo", q)
	})
	t.Run("plain columns", func(t *testing.T) {
		q := compileQuery("SELECT $columns FROM foo", reflect.TypeOf(fakeUser{}))
		assert.Equal(t, "SELECT id, username FROM foo", q)
	})
	t.Run("columns with table prefix", func(t *testing.T) {
		q := compileQuery("SELECT $columns{foo} FROM foo", reflect.TypeOf(fakeUser{}))
		assert.Equal(t, "SELECT foo.id, foo.username FROM foo", q)
	})
	t.Run("embedded structs contribute their columns", func(t *testing.T) {
		q := compileQuery("SELECT $columns FROM foo", reflect.TypeOf(fakeUserAndExtras{}))
		assert.Equal(t, "SELECT id, username, post_count FROM foo", q)
	})
	t.Run("scalar destinations do not allow $columns", func(t *testing.T) {
		assert.Panics(t, func() {
			compileQuery("SELECT $columns FROM foo", reflect.TypeOf(0))
		})
	})
}

func TestTypeIsScalar(t *testing.T) {
	assert.True(t, typeIsScalar(reflect.TypeOf(0)))
	assert.True(t, typeIsScalar(reflect.TypeOf("")))
	assert.True(t, typeIsScalar(reflect.TypeOf(time.Time{})))
	assert.True(t, typeIsScalar(reflect.TypeOf(uuid.UUID{})))
	assert.True(t, typeIsScalar(reflect.TypeOf(&time.Time{})))
	assert.False(t, typeIsScalar(reflect.TypeOf(fakeUser{})))
}

func TestQueryBuilder(t *testing.T) {
	t.Run("numbers placeholders in order", func(t *testing.T) {
		var qb QueryBuilder
		qb.Add("SELECT stuff FROM thing WHERE id = $? AND foo = $?", 13, "bar")
		qb.Add("AND baz = $?", true)

		assert.Equal(t, "SELECT stuff FROM thing WHERE id = $1 AND foo = $2\nAND baz = $3\n", qb.String())
		assert.Equal(t, []interface{}{13, "bar", true}, qb.Args())
	})
	t.Run("argument count must match", func(t *testing.T) {
		var qb QueryBuilder
		assert.Panics(t, func() {
			qb.Add("WHERE id = $?", 1, 2)
		})
		assert.Panics(t, func() {
			qb.Add("WHERE id = $? AND foo = $?", 1)
		})
	})
}
