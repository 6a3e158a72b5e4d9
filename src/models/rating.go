package models

import "time"

// One row per (user, post) pair, enforced by a unique constraint. Rating a
// post again flips the existing row rather than adding a second one.
type Rating struct {
	UserID     int       `db:"user_id"`
	PostID     int       `db:"post_id"`
	IsPositive bool      `db:"is_positive"`
	RatedAt    time.Time `db:"rated_at"`
}
