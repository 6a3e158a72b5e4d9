package nddata

import (
	"context"
	"errors"

	"git.nextdev.network/nextdev/nextdev/src/db"
	"git.nextdev.network/nextdev/nextdev/src/models"
	"git.nextdev.network/nextdev/nextdev/src/oops"
)

// Returned from CreateTag when a tag with that name already exists (names
// are compared case-insensitively).
var ErrTagExists = errors.New("tag already exists")

type TagWithPostCount struct {
	models.Tag
	PostCount int `db:"post_count"`
}

func FetchTags(ctx context.Context, dbConn db.ConnOrTx) ([]*TagWithPostCount, error) {
	tags, err := db.Query[TagWithPostCount](ctx, dbConn,
		`
		SELECT
			tag.id,
			tag.name,
			tag.description,
			COUNT(post_tag.post_id) AS post_count
		FROM
			tag
			LEFT JOIN post_tag ON post_tag.tag_id = tag.id
		GROUP BY tag.id
		ORDER BY tag.id
		`,
	)
	if err != nil {
		return nil, oops.New(err, "failed to fetch tags")
	}
	return tags, nil
}

// Returns db.NotFound if no result is found.
func FetchTag(ctx context.Context, dbConn db.ConnOrTx, tagID int) (*models.Tag, error) {
	tag, err := db.QueryOne[models.Tag](ctx, dbConn,
		`SELECT $columns FROM tag WHERE id = $1`,
		tagID,
	)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return nil, err
		}
		return nil, oops.New(err, "failed to fetch tag")
	}
	return tag, nil
}

func CreateTag(ctx context.Context, dbConn db.ConnOrTx, name string) (*models.Tag, error) {
	tx, err := dbConn.Begin(ctx)
	if err != nil {
		return nil, oops.New(err, "failed to start transaction")
	}
	defer tx.Rollback(ctx)

	exists, err := db.QueryOneScalar[bool](ctx, tx,
		`SELECT COUNT(*) > 0 FROM tag WHERE name ILIKE $1`,
		name,
	)
	if err != nil {
		return nil, oops.New(err, "failed to check for existing tag")
	}
	if exists {
		return nil, ErrTagExists
	}

	tag, err := db.QueryOne[models.Tag](ctx, tx,
		`INSERT INTO tag (name) VALUES ($1) RETURNING $columns`,
		name,
	)
	if err != nil {
		return nil, oops.New(err, "failed to create tag")
	}

	err = tx.Commit(ctx)
	if err != nil {
		return nil, oops.New(err, "failed to commit new tag")
	}
	return tag, nil
}
