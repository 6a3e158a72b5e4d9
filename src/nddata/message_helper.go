package nddata

import (
	"context"
	"time"

	"git.nextdev.network/nextdev/nextdev/src/db"
	"git.nextdev.network/nextdev/nextdev/src/models"
	"git.nextdev.network/nextdev/nextdev/src/oops"
	"git.nextdev.network/nextdev/nextdev/src/perf"
)

type MessageAndSender struct {
	models.PrivateMessage
	SenderName string `db:"sender_name"`
}

// One entry per person the user has messaged with, most recent conversation
// first.
type Conversation struct {
	UserID          int       `db:"user_id"`
	Username        string    `db:"username"`
	LastMessageDate time.Time `db:"last_message_date"`
}

func SendMessage(
	ctx context.Context,
	dbConn db.ConnOrTx,
	senderID int,
	recipientID int,
	body string,
) (*models.PrivateMessage, error) {
	message, err := db.QueryOne[models.PrivateMessage](ctx, dbConn,
		`
		INSERT INTO private_message (sender_id, recipient_id, body)
		VALUES ($1, $2, $3)
		RETURNING $columns
		`,
		senderID, recipientID, body,
	)
	if err != nil {
		return nil, oops.New(err, "failed to send message")
	}
	return message, nil
}

// Fetches both directions of the conversation between two users, oldest
// first.
func FetchConversation(
	ctx context.Context,
	dbConn db.ConnOrTx,
	userID int,
	otherUserID int,
) ([]*MessageAndSender, error) {
	b := perf.ExtractPerf(ctx).StartBlock("SQL", "Fetch conversation")
	defer b.End()

	messages, err := db.Query[MessageAndSender](ctx, dbConn,
		`
		SELECT
			m.id,
			m.sender_id,
			m.recipient_id,
			m.body,
			m.sent_at,
			sender.username AS sender_name
		FROM
			private_message m
			JOIN nd_user AS sender ON sender.id = m.sender_id
		WHERE
			(m.sender_id = $1 AND m.recipient_id = $2)
			OR (m.sender_id = $2 AND m.recipient_id = $1)
		ORDER BY m.sent_at ASC, m.id ASC
		`,
		userID, otherUserID,
	)
	if err != nil {
		return nil, oops.New(err, "failed to fetch conversation")
	}
	return messages, nil
}

// Everyone the user has exchanged messages with, ordered by the most recent
// message in each conversation.
func FetchConversations(
	ctx context.Context,
	dbConn db.ConnOrTx,
	userID int,
) ([]*Conversation, error) {
	b := perf.ExtractPerf(ctx).StartBlock("SQL", "Fetch conversations")
	defer b.End()

	conversations, err := db.Query[Conversation](ctx, dbConn,
		`
		SELECT user_id, username, last_message_date
		FROM (
			SELECT DISTINCT ON (partner.id)
				partner.id AS user_id,
				partner.username,
				m.sent_at AS last_message_date
			FROM
				private_message m
				JOIN nd_user AS partner ON partner.id = CASE
					WHEN m.sender_id = $1 THEN m.recipient_id
					ELSE m.sender_id
				END
			WHERE
				m.sender_id = $1 OR m.recipient_id = $1
			ORDER BY partner.id, m.sent_at DESC
		) conv
		ORDER BY last_message_date DESC
		`,
		userID,
	)
	if err != nil {
		return nil, oops.New(err, "failed to fetch conversations")
	}
	return conversations, nil
}
