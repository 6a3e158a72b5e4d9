package nddata

import (
	"context"
	"strings"
	"testing"

	"git.nextdev.network/nextdev/nextdev/src/db"
	"github.com/stretchr/testify/require"
)

func TestSetRating(t *testing.T) {
	ctx := context.Background()
	conn := &recordingConn{}

	err := SetRating(ctx, conn, 1, 2, true)
	require.NoError(t, err)

	// A re-vote must land on the same row as the original vote, via a single
	// upsert. Two statements would leave a window for a duplicate row.
	require.Len(t, conn.stmts, 1)
	sql := conn.stmts[0].SQL
	require.Contains(t, sql, "INSERT INTO rating")
	require.Contains(t, sql, "ON CONFLICT (user_id, post_id) DO UPDATE")
	require.Equal(t, []any{1, 2, true}, conn.stmts[0].Args)
}

func TestDeleteRating(t *testing.T) {
	ctx := context.Background()

	t.Run("existing rating", func(t *testing.T) {
		conn := &recordingConn{}
		err := DeleteRating(ctx, conn, 1, 2)
		require.NoError(t, err)
		require.GreaterOrEqual(t, conn.indexOf("DELETE FROM rating"), 0)
	})

	t.Run("no rating to delete", func(t *testing.T) {
		conn := &recordingConn{
			execRows: func(sql string) int64 { return 0 },
		}
		err := DeleteRating(ctx, conn, 1, 2)
		require.ErrorIs(t, err, db.NotFound)
	})
}

func TestFetchUserTotalRating(t *testing.T) {
	ctx := context.Background()

	t.Run("sums ratings across the user's posts", func(t *testing.T) {
		conn := &recordingConn{
			rowsFor: func(sql string, args []any) [][]any {
				return [][]any{{2}}
			},
		}
		total, err := FetchUserTotalRating(ctx, conn, 7)
		require.NoError(t, err)
		require.Equal(t, 2, total)

		sql := conn.stmts[0].SQL
		require.Contains(t, sql, "JOIN post ON post.id = rating.post_id")
		require.Contains(t, sql, "post.author_id = $1")
		require.Equal(t, []any{7}, conn.stmts[0].Args)
	})

	t.Run("user with no rated posts", func(t *testing.T) {
		// COALESCE in the query turns SUM's NULL into a zero row, so the
		// helper must not report NotFound for a user nobody has rated.
		conn := &recordingConn{
			rowsFor: func(sql string, args []any) [][]any {
				require.True(t, strings.Contains(sql, "COALESCE(SUM"))
				return [][]any{{0}}
			},
		}
		total, err := FetchUserTotalRating(ctx, conn, 7)
		require.NoError(t, err)
		require.Equal(t, 0, total)
	})
}
