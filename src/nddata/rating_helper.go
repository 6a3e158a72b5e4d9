package nddata

import (
	"context"
	"errors"

	"git.nextdev.network/nextdev/nextdev/src/db"
	"git.nextdev.network/nextdev/nextdev/src/models"
	"git.nextdev.network/nextdev/nextdev/src/oops"
)

type PostRating struct {
	PostID   int `db:"post_id"`
	Positive int `db:"positive"`
	Negative int `db:"negative"`
	Total    int `db:"total"`
}

/*
Records a user's rating of a post, flipping the existing row if they have
already rated it. The unique constraint on (user_id, post_id) makes the
upsert atomic; two concurrent ratings from the same user cannot produce two
rows.
*/
func SetRating(ctx context.Context, dbConn db.ConnOrTx, userID, postID int, isPositive bool) error {
	_, err := dbConn.Exec(ctx,
		`
		INSERT INTO rating (user_id, post_id, is_positive)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, post_id) DO UPDATE SET
			is_positive = EXCLUDED.is_positive,
			rated_at = NOW()
		`,
		userID, postID, isPositive,
	)
	if err != nil {
		return oops.New(err, "failed to set rating")
	}
	return nil
}

// Removes a user's rating of a post. Returns db.NotFound if they had none.
func DeleteRating(ctx context.Context, dbConn db.ConnOrTx, userID, postID int) error {
	tag, err := dbConn.Exec(ctx,
		`DELETE FROM rating WHERE user_id = $1 AND post_id = $2`,
		userID, postID,
	)
	if err != nil {
		return oops.New(err, "failed to delete rating")
	}
	if tag.RowsAffected() == 0 {
		return db.NotFound
	}
	return nil
}

// Aggregates a post's ratings from the individual rows. A post nobody has
// rated comes back as all zeroes, not NotFound.
func FetchPostRating(ctx context.Context, dbConn db.ConnOrTx, postID int) (*PostRating, error) {
	rating, err := db.QueryOne[PostRating](ctx, dbConn,
		`
		SELECT
			$1::int AS post_id,
			COUNT(*) FILTER (WHERE is_positive) AS positive,
			COUNT(*) FILTER (WHERE NOT is_positive) AS negative,
			COALESCE(SUM(CASE WHEN is_positive THEN 1 ELSE -1 END), 0) AS total
		FROM rating
		WHERE post_id = $1
		`,
		postID,
	)
	if err != nil {
		return nil, oops.New(err, "failed to fetch post rating")
	}
	return rating, nil
}

// Fetches the rating a user gave a post, or db.NotFound if they never rated
// it.
func FetchUserRating(ctx context.Context, dbConn db.ConnOrTx, userID, postID int) (*models.Rating, error) {
	rating, err := db.QueryOne[models.Rating](ctx, dbConn,
		`SELECT $columns FROM rating WHERE user_id = $1 AND post_id = $2`,
		userID, postID,
	)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return nil, err
		}
		return nil, oops.New(err, "failed to fetch user rating")
	}
	return rating, nil
}

// The sum of ratings across all of a user's posts.
func FetchUserTotalRating(ctx context.Context, dbConn db.ConnOrTx, userID int) (int, error) {
	total, err := db.QueryOneScalar[int](ctx, dbConn,
		`
		SELECT COALESCE(SUM(CASE WHEN rating.is_positive THEN 1 ELSE -1 END), 0)
		FROM rating
			JOIN post ON post.id = rating.post_id
		WHERE post.author_id = $1
		`,
		userID,
	)
	if err != nil {
		return 0, oops.New(err, "failed to fetch user total rating")
	}
	return total, nil
}
