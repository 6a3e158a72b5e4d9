package nddata

import (
	"context"
	"fmt"

	"git.nextdev.network/nextdev/nextdev/src/db"
	"git.nextdev.network/nextdev/nextdev/src/oops"
	"git.nextdev.network/nextdev/nextdev/src/perf"
)

type TopPoster struct {
	AuthorID   int    `db:"author_id"`
	Username   string `db:"username"`
	TotalViews int    `db:"total_views"`
}

type TopPost struct {
	PostID     int    `db:"post_id"`
	Title      string `db:"title"`
	ViewCount  int    `db:"view_count"`
	AuthorID   int    `db:"author_id"`
	AuthorName string `db:"author_name"`
}

/*
The authors whose posts from the last N days racked up the most views.
Ties break toward the lower author id so the leaderboard is stable across
refreshes.
*/
func FetchTopPosters(ctx context.Context, dbConn db.ConnOrTx, days int, limit int) ([]*TopPoster, error) {
	b := perf.ExtractPerf(ctx).StartBlock("SQL", "Fetch top posters")
	defer b.End()

	posters, err := db.Query[TopPoster](ctx, dbConn,
		`
		SELECT
			post.author_id,
			author.username,
			COALESCE(SUM(post.view_count), 0) AS total_views
		FROM
			post
			JOIN nd_user AS author ON author.id = post.author_id
		WHERE
			post.postdate >= NOW() - $1::interval
		GROUP BY post.author_id, author.username
		ORDER BY total_views DESC, post.author_id ASC
		LIMIT $2
		`,
		fmt.Sprintf("%d days", days), limit,
	)
	if err != nil {
		return nil, oops.New(err, "failed to fetch top posters")
	}
	return posters, nil
}

// The most-viewed posts from the last N days, with the same stable
// tie-break as FetchTopPosters.
func FetchTopPosts(ctx context.Context, dbConn db.ConnOrTx, days int, limit int) ([]*TopPost, error) {
	b := perf.ExtractPerf(ctx).StartBlock("SQL", "Fetch top posts")
	defer b.End()

	posts, err := db.Query[TopPost](ctx, dbConn,
		`
		SELECT
			post.id AS post_id,
			post.title,
			post.view_count,
			post.author_id,
			author.username AS author_name
		FROM
			post
			JOIN nd_user AS author ON author.id = post.author_id
		WHERE
			post.postdate >= NOW() - $1::interval
		ORDER BY post.view_count DESC, post.id ASC
		LIMIT $2
		`,
		fmt.Sprintf("%d days", days), limit,
	)
	if err != nil {
		return nil, oops.New(err, "failed to fetch top posts")
	}
	return posts, nil
}

/*
Bumps a post's view count by one, in the database, so concurrent views
cannot lose increments. Returns the new count, or db.NotFound if the post
does not exist.
*/
func IncrementPostViews(ctx context.Context, dbConn db.ConnOrTx, postID int) (int, error) {
	count, err := db.QueryOneScalar[int](ctx, dbConn,
		`
		UPDATE post
		SET view_count = view_count + 1
		WHERE id = $1
		RETURNING view_count
		`,
		postID,
	)
	if err != nil {
		if err == db.NotFound {
			return 0, db.NotFound
		}
		return 0, oops.New(err, "failed to increment view count")
	}
	return count, nil
}
