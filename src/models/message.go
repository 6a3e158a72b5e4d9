package models

import "time"

// A directed private message. Immutable once created.
type PrivateMessage struct {
	ID int `db:"id"`

	SenderID    int    `db:"sender_id"`
	RecipientID int    `db:"recipient_id"`
	Body        string `db:"body"`

	SentAt time.Time `db:"sent_at"`
}
