package models

import "time"

type Post struct {
	ID int `db:"id"`

	Title    string `db:"title"`
	Body     string `db:"body"`
	AuthorID int    `db:"author_id"`

	PostDate  time.Time `db:"postdate"`
	ViewCount int       `db:"view_count"`
}

type Comment struct {
	ID int `db:"id"`

	PostID   int    `db:"post_id"`
	AuthorID int    `db:"author_id"`
	ParentID *int   `db:"parent_id"`
	Body     string `db:"body"`

	PostDate time.Time `db:"postdate"`
}

type Tag struct {
	ID          int     `db:"id"`
	Name        string  `db:"name"`
	Description *string `db:"description"`
}
