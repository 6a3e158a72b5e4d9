/*
This package contains lowish-level APIs for making database queries to our
Postgres database. It streamlines the process of mapping query results to Go
types, while allowing you to write arbitrary SQL queries.

The primary functions are Query, QueryOne, and their scalar variants.

# Query syntax

Arguments can be provided using placeholders like $1, $2, etc. All arguments
will be safely escaped and mapped from their Go type to the correct Postgres
type. (This is a direct proxy to pgx.)

When querying individual fields, you can simply select the field like so:

	ids, err := db.QueryScalar[int](ctx, conn, `SELECT id FROM post`)

To query multiple columns at once, you may use a struct type with
`db:"column_name"` tags, and the special $columns placeholder:

	type Post struct {
		ID       int       `db:"id"`
		Title    string    `db:"title"`
		PostDate time.Time `db:"postdate"`
	}
	posts, err := db.Query[Post](ctx, conn, `SELECT $columns FROM post`)
	// Resulting query:
	// SELECT id, title, postdate FROM post

Sometimes a table name prefix is required on each column to disambiguate
between column names, especially when performing a JOIN. In those situations,
you can include the prefix in the $columns placeholder like $columns{prefix}:

	posts, err := db.Query[Post](ctx, conn, `
		SELECT $columns{post}
		FROM
			post
			JOIN nd_user ON nd_user.id = post.author_id
	`)
	// Resulting query:
	// SELECT post.id, post.title, post.postdate FROM ...
*/
package db
