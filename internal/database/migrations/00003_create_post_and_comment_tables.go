package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreatePostAndCommentTables, downCreatePostAndCommentTables)
}

func upCreatePostAndCommentTables(ctx context.Context, tx *sql.Tx) error {
	post := `
	CREATE TABLE post (
	  id CHAR(36) NOT NULL PRIMARY KEY,
	  title VARCHAR(255) NOT NULL,
	  content TEXT NOT NULL,
	  created_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
	  modified_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3) ON UPDATE CURRENT_TIMESTAMP(3),
	  app_user_id CHAR(36) NOT NULL,
	  KEY idx_post_app_user (app_user_id),
	  CONSTRAINT fk_post_app_user FOREIGN KEY (app_user_id) REFERENCES app_user (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;
	`
	if _, err := tx.ExecContext(ctx, post); err != nil {
		return err
	}

	// No ON DELETE CASCADE: removing a post deletes its comments explicitly
	// in the same transaction.
	comment := `
	CREATE TABLE comment (
	  id CHAR(36) NOT NULL PRIMARY KEY,
	  content TEXT NOT NULL,
	  created_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
	  modified_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3) ON UPDATE CURRENT_TIMESTAMP(3),
	  app_user_id CHAR(36) NOT NULL,
	  post_id CHAR(36) NOT NULL,
	  KEY idx_comment_post (post_id),
	  CONSTRAINT fk_comment_app_user FOREIGN KEY (app_user_id) REFERENCES app_user (id),
	  CONSTRAINT fk_comment_post FOREIGN KEY (post_id) REFERENCES post (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;
	`
	_, err := tx.ExecContext(ctx, comment)
	return err
}

func downCreatePostAndCommentTables(ctx context.Context, tx *sql.Tx) error {
	if _, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS comment;`); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS post;`)
	return err
}
