package nddata

import (
	"context"
	"testing"

	"git.nextdev.network/nextdev/nextdev/src/db"
	"github.com/stretchr/testify/require"
)

// Listing posts by tag leans on this to turn an unknown tag id into a 404
// instead of an empty list.
func TestFetchTagUnknown(t *testing.T) {
	ctx := context.Background()
	conn := &recordingConn{}

	_, err := FetchTag(ctx, conn, 999)
	require.ErrorIs(t, err, db.NotFound)

	require.Len(t, conn.stmts, 1)
	require.Contains(t, conn.stmts[0].SQL, "FROM tag WHERE id = $1")
	require.Equal(t, []any{999}, conn.stmts[0].Args)
}
