package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/postboard/internal/model"
)

// CommentRepo encapsulates the comment writes.  Reads of comments happen
// through PostRepo since they are always attached to posts.
type CommentRepo struct {
	db *sqlx.DB
}

// NewCommentRepo returns a new CommentRepo bound to the given database.
func NewCommentRepo(db *sqlx.DB) *CommentRepo { return &CommentRepo{db: db} }

// Create inserts a comment on a post and returns the stored row.
func (r *CommentRepo) Create(ctx context.Context, in model.NewComment) (*model.Comment, error) {
	id := uuid.NewString()
	const qInsert = `INSERT INTO comment (id, content, app_user_id, post_id) VALUES (?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, qInsert, id, in.Content, in.AppUserID, in.PostID); err != nil {
		return nil, fmt.Errorf("insert comment: %w", err)
	}
	var c model.Comment
	const qSelect = `SELECT id, content, created_at, modified_at, app_user_id, post_id FROM comment WHERE id = ?`
	if err := r.db.GetContext(ctx, &c, qSelect, id); err != nil {
		return nil, fmt.Errorf("reload comment %s: %w", id, err)
	}
	return &c, nil
}

// Delete removes a comment by id.  It returns ErrCommentNotFound when no row
// was affected.
func (r *CommentRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM comment WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete comment %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrCommentNotFound
	}
	return nil
}
