package nddata

import (
	"context"
	"testing"

	"git.nextdev.network/nextdev/nextdev/src/db"
	"github.com/stretchr/testify/require"
)

func TestIncrementPostViews(t *testing.T) {
	ctx := context.Background()

	t.Run("increments in the database", func(t *testing.T) {
		conn := &recordingConn{
			rowsFor: func(sql string, args []any) [][]any {
				return [][]any{{6}}
			},
		}
		count, err := IncrementPostViews(ctx, conn, 3)
		require.NoError(t, err)
		require.Equal(t, 6, count)

		// The increment has to happen inside the UPDATE itself. Reading the
		// count and writing it back would drop concurrent views.
		sql := conn.stmts[0].SQL
		require.Contains(t, sql, "view_count = view_count + 1")
		require.Contains(t, sql, "RETURNING view_count")
	})

	t.Run("unknown post", func(t *testing.T) {
		conn := &recordingConn{}
		_, err := IncrementPostViews(ctx, conn, 999)
		require.ErrorIs(t, err, db.NotFound)
	})
}

func TestFetchTopPostsWindow(t *testing.T) {
	ctx := context.Background()
	conn := &recordingConn{}

	_, err := FetchTopPosts(ctx, conn, 1, 5)
	require.NoError(t, err)
	require.Len(t, conn.stmts, 1)

	sql := conn.stmts[0].SQL
	require.Contains(t, sql, "post.postdate >= NOW() - $1::interval")
	require.Contains(t, sql, "ORDER BY post.view_count DESC, post.id ASC")
	require.Equal(t, []any{"1 days", 5}, conn.stmts[0].Args)
}

func TestFetchTopPostersWindow(t *testing.T) {
	ctx := context.Background()
	conn := &recordingConn{}

	_, err := FetchTopPosters(ctx, conn, 7, 10)
	require.NoError(t, err)
	require.Len(t, conn.stmts, 1)

	sql := conn.stmts[0].SQL
	require.Contains(t, sql, "post.postdate >= NOW() - $1::interval")
	require.Contains(t, sql, "ORDER BY total_views DESC, post.author_id ASC")
	require.Equal(t, []any{"7 days", 10}, conn.stmts[0].Args)
}
