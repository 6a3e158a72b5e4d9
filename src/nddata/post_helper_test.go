package nddata

import (
	"context"
	"errors"
	"strings"
	"testing"

	"git.nextdev.network/nextdev/nextdev/src/db"
	"github.com/stretchr/testify/require"
)

func TestDeletePost(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes dependents before the post, then commits", func(t *testing.T) {
		conn := &recordingConn{}
		err := DeletePost(ctx, conn, 3)
		require.NoError(t, err)

		ratings := conn.indexOf("DELETE FROM rating")
		comments := conn.indexOf("DELETE FROM comment")
		tags := conn.indexOf("DELETE FROM post_tag")
		post := conn.indexOf("DELETE FROM post WHERE id = $1")
		commit := conn.indexOf("COMMIT")

		require.GreaterOrEqual(t, ratings, 0)
		require.Greater(t, comments, ratings)
		require.Greater(t, tags, comments)
		require.Greater(t, post, tags)
		require.Greater(t, commit, post)
	})

	t.Run("failure mid-cascade rolls everything back", func(t *testing.T) {
		boom := errors.New("connection reset")
		conn := &recordingConn{
			execErr: func(sql string) error {
				if strings.Contains(sql, "DELETE FROM comment") {
					return boom
				}
				return nil
			},
		}
		err := DeletePost(ctx, conn, 3)
		require.Error(t, err)

		// Nothing after the failing statement may run, and the transaction
		// must not commit, or the post would be left without its ratings.
		require.Equal(t, -1, conn.indexOf("DELETE FROM post WHERE id = $1"))
		require.Equal(t, -1, conn.indexOf("COMMIT"))
		require.GreaterOrEqual(t, conn.indexOf("ROLLBACK"), 0)
	})

	t.Run("unknown post", func(t *testing.T) {
		conn := &recordingConn{
			execRows: func(sql string) int64 {
				if strings.Contains(sql, "DELETE FROM post WHERE id = $1") {
					return 0
				}
				return 1
			},
		}
		err := DeletePost(ctx, conn, 999)
		require.ErrorIs(t, err, db.NotFound)
		require.Equal(t, -1, conn.indexOf("COMMIT"))
	})
}

func TestCreatePostUnknownTag(t *testing.T) {
	ctx := context.Background()
	conn := &recordingConn{
		rowsFor: func(sql string, args []any) [][]any {
			if strings.Contains(sql, "SELECT id FROM tag") {
				return [][]any{{3}}
			}
			return nil
		},
	}

	_, err := CreatePost(ctx, conn, "title", "body", 1, []int{3, 99})
	require.ErrorIs(t, err, ErrUnknownTag)

	// The post must not be created when any tag id is bogus.
	require.Equal(t, -1, conn.indexOf("INSERT INTO post"))
	require.GreaterOrEqual(t, conn.indexOf("ROLLBACK"), 0)
}
