package nddata

import (
	"context"
	"strings"
	"testing"

	"git.nextdev.network/nextdev/nextdev/src/db"
	"github.com/stretchr/testify/require"
)

func TestFetchUsersDoesNotMutateQuery(t *testing.T) {
	ctx := context.Background()
	conn := &recordingConn{}

	usernames := []string{"Alice", "BOB"}
	_, err := FetchUsers(ctx, conn, UsersQuery{Usernames: usernames})
	require.NoError(t, err)

	// The case-insensitive match must not write back into the caller's slice.
	require.Equal(t, []string{"Alice", "BOB"}, usernames)

	require.Len(t, conn.stmts, 1)
	require.Contains(t, conn.stmts[0].Args, []string{"alice", "bob"})
}

func TestDeleteUser(t *testing.T) {
	ctx := context.Background()

	t.Run("clears avatars before deleting assets", func(t *testing.T) {
		conn := &recordingConn{}
		err := DeleteUser(ctx, conn, 4)
		require.NoError(t, err)

		clearAvatars := conn.indexOf("SET avatar_asset_id = NULL")
		deleteAssets := conn.indexOf("DELETE FROM asset")
		deleteUser := conn.indexOf("DELETE FROM nd_user")
		commit := conn.indexOf("COMMIT")

		// nd_user.avatar_asset_id references asset with no ON DELETE action,
		// so the references must be gone before the asset rows are.
		require.GreaterOrEqual(t, clearAvatars, 0)
		require.Greater(t, deleteAssets, clearAvatars)
		require.Greater(t, deleteUser, deleteAssets)
		require.Greater(t, commit, deleteUser)
	})

	t.Run("cleans up dependents before the user row", func(t *testing.T) {
		conn := &recordingConn{
			rowsFor: func(sql string, args []any) [][]any {
				if strings.Contains(sql, "SELECT id FROM post") {
					return [][]any{{10}, {11}}
				}
				return nil
			},
		}
		err := DeleteUser(ctx, conn, 4)
		require.NoError(t, err)

		deleteUser := conn.indexOf("DELETE FROM nd_user")
		require.GreaterOrEqual(t, deleteUser, 0)
		for _, fragment := range []string{
			"DELETE FROM rating",
			"DELETE FROM comment",
			"DELETE FROM post_tag",
			"DELETE FROM post WHERE id = ANY",
			"DELETE FROM private_message",
			"DELETE FROM asset",
		} {
			idx := conn.indexOf(fragment)
			require.GreaterOrEqual(t, idx, 0, "missing statement: %s", fragment)
			require.Greater(t, deleteUser, idx, "user row deleted before: %s", fragment)
		}
	})

	t.Run("unknown user rolls back", func(t *testing.T) {
		conn := &recordingConn{
			execRows: func(sql string) int64 {
				if strings.Contains(sql, "DELETE FROM nd_user") {
					return 0
				}
				return 1
			},
		}
		err := DeleteUser(ctx, conn, 999)
		require.ErrorIs(t, err, db.NotFound)
		require.Equal(t, -1, conn.indexOf("COMMIT"))
		require.GreaterOrEqual(t, conn.indexOf("ROLLBACK"), 0)
	})
}
