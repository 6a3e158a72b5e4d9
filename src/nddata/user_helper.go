package nddata

import (
	"context"
	"strings"

	"git.nextdev.network/nextdev/nextdev/src/db"
	"git.nextdev.network/nextdev/nextdev/src/models"
	"git.nextdev.network/nextdev/nextdev/src/oops"
	"git.nextdev.network/nextdev/nextdev/src/perf"
	"github.com/google/uuid"
)

type UsersQuery struct {
	// Ignored when using FetchUser
	UserIDs   []int    // if empty, all users
	Usernames []string // if empty, all users; matched case-insensitively

	SearchQuery string // partial, case-insensitive username match
	Limit       int    // if zero, no limit
}

/*
Fetches users according to all the given query params. Results are ordered
by username.
*/
func FetchUsers(
	ctx context.Context,
	dbConn db.ConnOrTx,
	q UsersQuery,
) ([]*models.User, error) {
	b := perf.ExtractPerf(ctx).StartBlock("SQL", "Fetch users")
	defer b.End()

	usernames := make([]string, len(q.Usernames))
	for i, username := range q.Usernames {
		usernames[i] = strings.ToLower(username)
	}

	var qb db.QueryBuilder
	qb.Add(`
		SELECT $columns
		FROM nd_user
		WHERE TRUE
	`)
	if len(q.UserIDs) > 0 {
		qb.Add(`AND nd_user.id = ANY($?)`, q.UserIDs)
	}
	if len(usernames) > 0 {
		qb.Add(`AND LOWER(nd_user.username) = ANY($?)`, usernames)
	}
	if q.SearchQuery != "" {
		qb.Add(`AND nd_user.username ILIKE $?`, "%"+q.SearchQuery+"%")
	}
	qb.Add(`ORDER BY nd_user.username`)
	if q.Limit > 0 {
		qb.Add(`LIMIT $?`, q.Limit)
	}

	users, err := db.Query[models.User](ctx, dbConn, qb.String(), qb.Args()...)
	if err != nil {
		return nil, oops.New(err, "failed to fetch users")
	}

	return users, nil
}

/*
Fetches a single user by id. A wrapper around FetchUsers.

Returns db.NotFound if no result is found.
*/
func FetchUser(
	ctx context.Context,
	dbConn db.ConnOrTx,
	userID int,
) (*models.User, error) {
	res, err := FetchUsers(ctx, dbConn, UsersQuery{UserIDs: []int{userID}})
	if err != nil {
		return nil, oops.New(err, "failed to fetch user")
	}
	if len(res) == 0 {
		return nil, db.NotFound
	}
	return res[0], nil
}

/*
Fetches a single user by username, case-insensitively. Returns db.NotFound
if no result is found.
*/
func FetchUserByUsername(
	ctx context.Context,
	dbConn db.ConnOrTx,
	username string,
) (*models.User, error) {
	res, err := FetchUsers(ctx, dbConn, UsersQuery{Usernames: []string{username}})
	if err != nil {
		return nil, oops.New(err, "failed to fetch user by username")
	}
	if len(res) == 0 {
		return nil, db.NotFound
	}
	return res[0], nil
}

func UserExists(ctx context.Context, dbConn db.ConnOrTx, username string) (bool, error) {
	exists, err := db.QueryOneScalar[bool](ctx, dbConn,
		`SELECT COUNT(*) > 0 FROM nd_user WHERE LOWER(username) = LOWER($1)`,
		username,
	)
	if err != nil {
		return false, oops.New(err, "failed to check if user exists")
	}
	return exists, nil
}

func CreateUser(
	ctx context.Context,
	dbConn db.ConnOrTx,
	username string,
	hashedPassword string,
	role models.UserRole,
) (*models.User, error) {
	b := perf.ExtractPerf(ctx).StartBlock("SQL", "Create user")
	defer b.End()

	user, err := db.QueryOne[models.User](ctx, dbConn,
		`
		INSERT INTO nd_user (username, password, role)
		VALUES ($1, $2, $3)
		RETURNING $columns
		`,
		username, hashedPassword, role,
	)
	if err != nil {
		return nil, oops.New(err, "failed to create user")
	}
	return user, nil
}

func SetUserRole(ctx context.Context, dbConn db.ConnOrTx, userID int, role models.UserRole) error {
	tag, err := dbConn.Exec(ctx,
		`UPDATE nd_user SET role = $1 WHERE id = $2`,
		role, userID,
	)
	if err != nil {
		return oops.New(err, "failed to update user role")
	}
	if tag.RowsAffected() == 0 {
		return db.NotFound
	}
	return nil
}

func SetUserBanned(ctx context.Context, dbConn db.ConnOrTx, userID int, banned bool) error {
	tag, err := dbConn.Exec(ctx,
		`UPDATE nd_user SET is_banned = $1 WHERE id = $2`,
		banned, userID,
	)
	if err != nil {
		return oops.New(err, "failed to update user ban status")
	}
	if tag.RowsAffected() == 0 {
		return db.NotFound
	}
	return nil
}

func SetUserPassword(ctx context.Context, dbConn db.ConnOrTx, userID int, hashedPassword string) error {
	tag, err := dbConn.Exec(ctx,
		`UPDATE nd_user SET password = $1 WHERE id = $2`,
		hashedPassword, userID,
	)
	if err != nil {
		return oops.New(err, "failed to update user password")
	}
	if tag.RowsAffected() == 0 {
		return db.NotFound
	}
	return nil
}

// Points a user's avatar at the given asset; pass nil to clear it.
func SetUserAvatar(ctx context.Context, dbConn db.ConnOrTx, userID int, assetID *uuid.UUID) error {
	tag, err := dbConn.Exec(ctx,
		`UPDATE nd_user SET avatar_asset_id = $1 WHERE id = $2`,
		assetID, userID,
	)
	if err != nil {
		return oops.New(err, "failed to update user avatar")
	}
	if tag.RowsAffected() == 0 {
		return db.NotFound
	}
	return nil
}

/*
Deletes a user and everything hanging off of them: their ratings, their
messages, their comments (and replies to those comments), their posts (and
everything hanging off of those), and their avatar. The schema has no ON
DELETE CASCADE, so each table is cleaned up explicitly, in one transaction.
*/
func DeleteUser(ctx context.Context, dbConn db.ConnOrTx, userID int) error {
	tx, err := dbConn.Begin(ctx)
	if err != nil {
		return oops.New(err, "failed to start transaction")
	}
	defer tx.Rollback(ctx)

	postIDs, err := db.QueryScalar[int](ctx, tx,
		`SELECT id FROM post WHERE author_id = $1`,
		userID,
	)
	if err != nil {
		return oops.New(err, "failed to fetch user's posts")
	}

	// Ratings placed by the user, and ratings on the user's posts.
	_, err = tx.Exec(ctx,
		`DELETE FROM rating WHERE user_id = $1 OR post_id = ANY($2)`,
		userID, postIDs,
	)
	if err != nil {
		return oops.New(err, "failed to delete user's ratings")
	}

	// All comments on the user's posts, plus the user's own comment subtrees
	// elsewhere. Replies to deleted comments go too.
	_, err = tx.Exec(ctx,
		`
		WITH RECURSIVE doomed AS (
			SELECT id FROM comment WHERE author_id = $1 OR post_id = ANY($2)
			UNION
			SELECT c.id FROM comment c JOIN doomed d ON c.parent_id = d.id
		)
		DELETE FROM comment WHERE id IN (SELECT id FROM doomed)
		`,
		userID, postIDs,
	)
	if err != nil {
		return oops.New(err, "failed to delete user's comments")
	}

	_, err = tx.Exec(ctx, `DELETE FROM post_tag WHERE post_id = ANY($1)`, postIDs)
	if err != nil {
		return oops.New(err, "failed to delete user's post tags")
	}

	_, err = tx.Exec(ctx, `DELETE FROM post WHERE id = ANY($1)`, postIDs)
	if err != nil {
		return oops.New(err, "failed to delete user's posts")
	}

	_, err = tx.Exec(ctx,
		`DELETE FROM private_message WHERE sender_id = $1 OR recipient_id = $1`,
		userID,
	)
	if err != nil {
		return oops.New(err, "failed to delete user's messages")
	}

	// Avatars must stop referencing the assets before the asset rows can go.
	// The user may have uploaded other users' photos too (staff can), so this
	// clears every avatar that points at one of their assets, not just their
	// own.
	_, err = tx.Exec(ctx,
		`
		UPDATE nd_user
		SET avatar_asset_id = NULL
		WHERE avatar_asset_id IN (SELECT id FROM asset WHERE uploader_id = $1)
		`,
		userID,
	)
	if err != nil {
		return oops.New(err, "failed to clear avatars referencing user's assets")
	}

	_, err = tx.Exec(ctx, `DELETE FROM asset WHERE uploader_id = $1`, userID)
	if err != nil {
		return oops.New(err, "failed to delete user's assets")
	}

	tag, err := tx.Exec(ctx, `DELETE FROM nd_user WHERE id = $1`, userID)
	if err != nil {
		return oops.New(err, "failed to delete user")
	}
	if tag.RowsAffected() == 0 {
		return db.NotFound
	}

	err = tx.Commit(ctx)
	if err != nil {
		return oops.New(err, "failed to commit user deletion")
	}
	return nil
}
