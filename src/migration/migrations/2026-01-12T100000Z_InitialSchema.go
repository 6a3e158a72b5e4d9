package migrations

import (
	"context"
	"time"

	"git.nextdev.network/nextdev/nextdev/src/migration/types"
	"github.com/jackc/pgx/v5"
)

func init() {
	registerMigration(InitialSchema{})
}

type InitialSchema struct{}

func (m InitialSchema) Version() types.MigrationVersion {
	return types.MigrationVersion(time.Date(2026, 1, 12, 10, 0, 0, 0, time.UTC))
}

func (m InitialSchema) Name() string {
	return "InitialSchema"
}

func (m InitialSchema) Description() string {
	return "Creates the core forum tables"
}

func (m InitialSchema) Up(ctx context.Context, tx pgx.Tx) error {
	// Deletes cascade in application code so that every removal is explicit
	// and auditable. The foreign keys here only guard referential integrity.
	_, err := tx.Exec(ctx, `
		CREATE TABLE nd_user (
			id SERIAL PRIMARY KEY,
			username VARCHAR(150) NOT NULL,
			password VARCHAR(256) NOT NULL,
			role INT NOT NULL DEFAULT 1,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			is_banned BOOLEAN NOT NULL DEFAULT FALSE,
			date_joined TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			avatar_asset_id UUID
		);
		CREATE UNIQUE INDEX nd_user_username ON nd_user (LOWER(username));

		CREATE TABLE asset (
			id UUID PRIMARY KEY,
			s3_key VARCHAR(2000) NOT NULL,
			filename VARCHAR(2000) NOT NULL,
			size INT NOT NULL,
			mime_type VARCHAR(100) NOT NULL,
			sha1sum VARCHAR(40) NOT NULL,
			uploader_id INT REFERENCES nd_user (id)
		);

		ALTER TABLE nd_user
			ADD FOREIGN KEY (avatar_asset_id) REFERENCES asset (id);

		CREATE TABLE post (
			id SERIAL PRIMARY KEY,
			title VARCHAR(500) NOT NULL,
			body TEXT NOT NULL,
			author_id INT NOT NULL REFERENCES nd_user (id),
			postdate TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			view_count INT NOT NULL DEFAULT 0
		);
		CREATE INDEX post_author_id ON post (author_id);
		CREATE INDEX post_postdate ON post (postdate);

		CREATE TABLE comment (
			id SERIAL PRIMARY KEY,
			post_id INT NOT NULL REFERENCES post (id),
			author_id INT NOT NULL REFERENCES nd_user (id),
			parent_id INT REFERENCES comment (id),
			body TEXT NOT NULL,
			postdate TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		);
		CREATE INDEX comment_post_id ON comment (post_id);
		CREATE INDEX comment_author_id ON comment (author_id);
		CREATE INDEX comment_parent_id ON comment (parent_id);

		CREATE TABLE tag (
			id SERIAL PRIMARY KEY,
			name VARCHAR(20) NOT NULL,
			description TEXT
		);
		CREATE UNIQUE INDEX tag_name ON tag (LOWER(name));

		CREATE TABLE post_tag (
			post_id INT NOT NULL REFERENCES post (id),
			tag_id INT NOT NULL REFERENCES tag (id),
			PRIMARY KEY (post_id, tag_id)
		);
		CREATE INDEX post_tag_tag_id ON post_tag (tag_id);

		CREATE TABLE rating (
			user_id INT NOT NULL REFERENCES nd_user (id),
			post_id INT NOT NULL REFERENCES post (id),
			is_positive BOOLEAN NOT NULL,
			rated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			UNIQUE (user_id, post_id)
		);
		CREATE INDEX rating_post_id ON rating (post_id);

		CREATE TABLE private_message (
			id SERIAL PRIMARY KEY,
			sender_id INT NOT NULL REFERENCES nd_user (id),
			recipient_id INT NOT NULL REFERENCES nd_user (id),
			body TEXT NOT NULL,
			sent_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		);
		CREATE INDEX private_message_sender_id ON private_message (sender_id);
		CREATE INDEX private_message_recipient_id ON private_message (recipient_id);
	`)
	return err
}

func (m InitialSchema) Down(ctx context.Context, tx pgx.Tx) error {
	_, err := tx.Exec(ctx, `
		DROP TABLE private_message;
		DROP TABLE rating;
		DROP TABLE post_tag;
		DROP TABLE tag;
		DROP TABLE comment;
		DROP TABLE post;
		ALTER TABLE nd_user DROP COLUMN avatar_asset_id;
		DROP TABLE asset;
		DROP TABLE nd_user;
	`)
	return err
}
