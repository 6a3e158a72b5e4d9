package nddata

import (
	"context"
	"errors"
	"fmt"

	"git.nextdev.network/nextdev/nextdev/src/db"
	"git.nextdev.network/nextdev/nextdev/src/models"
	"git.nextdev.network/nextdev/nextdev/src/oops"
	"git.nextdev.network/nextdev/nextdev/src/perf"
)

// Returned from CreatePost when one of the requested tags does not exist.
var ErrUnknownTag = errors.New("unknown tag id")

type PostsQuery struct {
	// Ignored when using FetchPost
	PostIDs   []int // if empty, all posts
	AuthorIDs []int // if empty, all authors
	TagID     int   // if zero, all tags

	SearchQuery string // partial, case-insensitive match on title or body
}

// A post plus the derived data everything in the UI wants alongside it.
type PostAndStuff struct {
	models.Post
	AuthorName   string `db:"author_name"`
	Rating       int    `db:"rating"`
	CommentCount int    `db:"comment_count"`
}

type CommentAndAuthor struct {
	models.Comment
	AuthorName string          `db:"author_name"`
	AuthorRole models.UserRole `db:"author_role"`
}

/*
Fetches posts with author names and rating / comment aggregates, newest
first. The aggregates come from correlated subqueries rather than joins so
that a post with no ratings or comments still yields a row.
*/
func FetchPosts(
	ctx context.Context,
	dbConn db.ConnOrTx,
	q PostsQuery,
) ([]*PostAndStuff, error) {
	b := perf.ExtractPerf(ctx).StartBlock("SQL", "Fetch posts")
	defer b.End()

	var qb db.QueryBuilder
	qb.Add(`
		SELECT
			post.id,
			post.title,
			post.body,
			post.author_id,
			post.postdate,
			post.view_count,
			author.username AS author_name,
			(
				SELECT COALESCE(SUM(CASE WHEN r.is_positive THEN 1 ELSE -1 END), 0)
				FROM rating r
				WHERE r.post_id = post.id
			) AS rating,
			(
				SELECT COUNT(*)
				FROM comment c
				WHERE c.post_id = post.id
			) AS comment_count
		FROM
			post
			JOIN nd_user AS author ON author.id = post.author_id
		WHERE
			TRUE
	`)
	if len(q.PostIDs) > 0 {
		qb.Add(`AND post.id = ANY($?)`, q.PostIDs)
	}
	if len(q.AuthorIDs) > 0 {
		qb.Add(`AND post.author_id = ANY($?)`, q.AuthorIDs)
	}
	if q.TagID != 0 {
		qb.Add(`AND post.id IN (SELECT post_id FROM post_tag WHERE tag_id = $?)`, q.TagID)
	}
	if q.SearchQuery != "" {
		pattern := "%" + q.SearchQuery + "%"
		qb.Add(`AND (post.title ILIKE $? OR post.body ILIKE $?)`, pattern, pattern)
	}
	qb.Add(`ORDER BY post.postdate DESC, post.id DESC`)

	posts, err := db.Query[PostAndStuff](ctx, dbConn, qb.String(), qb.Args()...)
	if err != nil {
		return nil, oops.New(err, "failed to fetch posts")
	}

	return posts, nil
}

/*
Fetches a single post with its aggregates. A wrapper around FetchPosts.
Returns db.NotFound if no result is found.
*/
func FetchPost(
	ctx context.Context,
	dbConn db.ConnOrTx,
	postID int,
) (*PostAndStuff, error) {
	res, err := FetchPosts(ctx, dbConn, PostsQuery{PostIDs: []int{postID}})
	if err != nil {
		return nil, oops.New(err, "failed to fetch post")
	}
	if len(res) == 0 {
		return nil, db.NotFound
	}
	return res[0], nil
}

// Fetches the tags attached to a post. Display caps this at a handful.
func FetchPostTags(
	ctx context.Context,
	dbConn db.ConnOrTx,
	postID int,
	limit int,
) ([]*models.Tag, error) {
	tags, err := db.Query[models.Tag](ctx, dbConn,
		`
		SELECT $columns{tag}
		FROM tag
			JOIN post_tag ON post_tag.tag_id = tag.id
		WHERE post_tag.post_id = $1
		ORDER BY tag.id
		LIMIT $2
		`,
		postID, limit,
	)
	if err != nil {
		return nil, oops.New(err, "failed to fetch post tags")
	}
	return tags, nil
}

/*
Creates a post and attaches the given tags, all in one transaction. Every
tag id must refer to an existing tag or the whole thing fails with
ErrUnknownTag.
*/
func CreatePost(
	ctx context.Context,
	dbConn db.ConnOrTx,
	title string,
	body string,
	authorID int,
	tagIDs []int,
) (*models.Post, error) {
	b := perf.ExtractPerf(ctx).StartBlock("SQL", "Create post")
	defer b.End()

	tx, err := dbConn.Begin(ctx)
	if err != nil {
		return nil, oops.New(err, "failed to start transaction")
	}
	defer tx.Rollback(ctx)

	if len(tagIDs) > 0 {
		known, err := db.QueryScalar[int](ctx, tx,
			`SELECT id FROM tag WHERE id = ANY($1)`,
			tagIDs,
		)
		if err != nil {
			return nil, oops.New(err, "failed to look up tags")
		}
		knownSet := make(map[int]bool, len(known))
		for _, id := range known {
			knownSet[id] = true
		}
		for _, id := range tagIDs {
			if !knownSet[id] {
				return nil, fmt.Errorf("tag %d: %w", id, ErrUnknownTag)
			}
		}
	}

	post, err := db.QueryOne[models.Post](ctx, tx,
		`
		INSERT INTO post (title, body, author_id)
		VALUES ($1, $2, $3)
		RETURNING $columns
		`,
		title, body, authorID,
	)
	if err != nil {
		return nil, oops.New(err, "failed to create post")
	}

	for _, tagID := range tagIDs {
		_, err := tx.Exec(ctx,
			`INSERT INTO post_tag (post_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			post.ID, tagID,
		)
		if err != nil {
			return nil, oops.New(err, "failed to attach tag to post")
		}
	}

	err = tx.Commit(ctx)
	if err != nil {
		return nil, oops.New(err, "failed to commit new post")
	}

	return post, nil
}

/*
Deletes a post and everything attached to it: ratings, tag links, and the
entire comment tree. All in one transaction; returns db.NotFound if the post
does not exist.
*/
func DeletePost(ctx context.Context, dbConn db.ConnOrTx, postID int) error {
	tx, err := dbConn.Begin(ctx)
	if err != nil {
		return oops.New(err, "failed to start transaction")
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `DELETE FROM rating WHERE post_id = $1`, postID)
	if err != nil {
		return oops.New(err, "failed to delete post ratings")
	}
	_, err = tx.Exec(ctx, `DELETE FROM comment WHERE post_id = $1`, postID)
	if err != nil {
		return oops.New(err, "failed to delete post comments")
	}
	_, err = tx.Exec(ctx, `DELETE FROM post_tag WHERE post_id = $1`, postID)
	if err != nil {
		return oops.New(err, "failed to delete post tags")
	}

	tag, err := tx.Exec(ctx, `DELETE FROM post WHERE id = $1`, postID)
	if err != nil {
		return oops.New(err, "failed to delete post")
	}
	if tag.RowsAffected() == 0 {
		return db.NotFound
	}

	err = tx.Commit(ctx)
	if err != nil {
		return oops.New(err, "failed to commit post deletion")
	}
	return nil
}

/*
Creates a comment on a post. Returns db.NotFound if the post does not exist.
No check is made that parentID belongs to the same post; the UI only ever
offers replies to comments it is already displaying.
*/
func CreateComment(
	ctx context.Context,
	dbConn db.ConnOrTx,
	postID int,
	authorID int,
	parentID *int,
	body string,
) (*models.Comment, error) {
	postExists, err := db.QueryOneScalar[bool](ctx, dbConn,
		`SELECT COUNT(*) > 0 FROM post WHERE id = $1`,
		postID,
	)
	if err != nil {
		return nil, oops.New(err, "failed to check post existence")
	}
	if !postExists {
		return nil, db.NotFound
	}

	comment, err := db.QueryOne[models.Comment](ctx, dbConn,
		`
		INSERT INTO comment (post_id, author_id, parent_id, body)
		VALUES ($1, $2, $3, $4)
		RETURNING $columns
		`,
		postID, authorID, parentID, body,
	)
	if err != nil {
		return nil, oops.New(err, "failed to create comment")
	}
	return comment, nil
}

// Fetches a post's comments with author info, oldest first, so threads read
// top to bottom.
func FetchComments(
	ctx context.Context,
	dbConn db.ConnOrTx,
	postID int,
) ([]*CommentAndAuthor, error) {
	b := perf.ExtractPerf(ctx).StartBlock("SQL", "Fetch comments")
	defer b.End()

	comments, err := db.Query[CommentAndAuthor](ctx, dbConn,
		`
		SELECT
			comment.id,
			comment.post_id,
			comment.author_id,
			comment.parent_id,
			comment.body,
			comment.postdate,
			author.username AS author_name,
			author.role AS author_role
		FROM
			comment
			JOIN nd_user AS author ON author.id = comment.author_id
		WHERE
			comment.post_id = $1
		ORDER BY comment.postdate ASC, comment.id ASC
		`,
		postID,
	)
	if err != nil {
		return nil, oops.New(err, "failed to fetch comments")
	}
	return comments, nil
}

// Returns db.NotFound if no result is found.
func FetchComment(ctx context.Context, dbConn db.ConnOrTx, commentID int) (*models.Comment, error) {
	comment, err := db.QueryOne[models.Comment](ctx, dbConn,
		`SELECT $columns FROM comment WHERE id = $1`,
		commentID,
	)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return nil, err
		}
		return nil, oops.New(err, "failed to fetch comment")
	}
	return comment, nil
}

/*
Deletes a comment and its whole reply subtree. Returns db.NotFound if the
comment does not exist.
*/
func DeleteComment(ctx context.Context, dbConn db.ConnOrTx, commentID int) error {
	tag, err := dbConn.Exec(ctx,
		`
		WITH RECURSIVE doomed AS (
			SELECT id FROM comment WHERE id = $1
			UNION
			SELECT c.id FROM comment c JOIN doomed d ON c.parent_id = d.id
		)
		DELETE FROM comment WHERE id IN (SELECT id FROM doomed)
		`,
		commentID,
	)
	if err != nil {
		return oops.New(err, "failed to delete comment")
	}
	if tag.RowsAffected() == 0 {
		return db.NotFound
	}
	return nil
}
