// Package repository contains data access logic separated from HTTP handlers.
// This file holds the post queries, including the bulk reads that attach
// comments to posts and the transactional delete of a post together with its
// comments.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/postboard/internal/model"
)

const (
	selectPostsWithAuthor = `SELECT p.id, p.title, p.content, p.created_at, p.modified_at, p.app_user_id,
	       au.id AS author_id, au.first_name, au.last_name
	FROM post p
	JOIN app_user au ON p.app_user_id = au.id`

	selectCommentsWithAuthor = `SELECT c.id, c.content, c.created_at, c.modified_at, c.app_user_id, c.post_id,
	       au.first_name, au.last_name
	FROM comment c
	JOIN app_user au ON c.app_user_id = au.id`
)

// PostRepo encapsulates all database queries related to posts.  It depends
// on an sqlx.DB pool which is opened in main and injected here.
type PostRepo struct {
	db *sqlx.DB
}

// NewPostRepo constructs a PostRepo with the provided DB handle.
func NewPostRepo(db *sqlx.DB) *PostRepo {
	return &PostRepo{db: db}
}

// ListAll returns every post row as stored, without author or comments.
func (r *PostRepo) ListAll(ctx context.Context) ([]model.Post, error) {
	const q = `SELECT id, title, content, created_at, modified_at, app_user_id FROM post`
	posts := []model.Post{}
	if err := r.db.SelectContext(ctx, &posts, q); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

// ListWithComments returns every post joined with its author and carrying its
// comments.  Two queries are issued: one for posts and one for all comments,
// which are then grouped in memory.  Post order is whatever the database
// returns.
func (r *PostRepo) ListWithComments(ctx context.Context) ([]model.PostWithComments, error) {
	posts := []model.PostWithComments{}
	if err := r.db.SelectContext(ctx, &posts, selectPostsWithAuthor); err != nil {
		return nil, fmt.Errorf("list posts with author: %w", err)
	}
	var comments []model.Comment
	if err := r.db.SelectContext(ctx, &comments, selectCommentsWithAuthor); err != nil {
		return nil, fmt.Errorf("list comments with author: %w", err)
	}
	AttachComments(posts, GroupCommentsByPost(comments))
	return posts, nil
}

// GetWithComments fetches a single post with its author and comments.  It
// returns ErrPostNotFound if no row is found.
func (r *PostRepo) GetWithComments(ctx context.Context, id string) (*model.PostWithComments, error) {
	var p model.PostWithComments
	if err := r.db.GetContext(ctx, &p, selectPostsWithAuthor+` WHERE p.id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("get post %s: %w", id, err)
	}
	p.Comments = []model.Comment{}
	if err := r.db.SelectContext(ctx, &p.Comments, selectCommentsWithAuthor+` WHERE c.post_id = ?`, id); err != nil {
		return nil, fmt.Errorf("list comments of post %s: %w", id, err)
	}
	return &p, nil
}

// ListByUser returns the posts authored by userID with their comments.  The
// comments of all those posts are loaded with a single IN query; when the
// user has no posts the second query is skipped.
func (r *PostRepo) ListByUser(ctx context.Context, userID string) ([]model.PostWithComments, error) {
	posts := []model.PostWithComments{}
	if err := r.db.SelectContext(ctx, &posts, selectPostsWithAuthor+` WHERE p.app_user_id = ?`, userID); err != nil {
		return nil, fmt.Errorf("list posts of user %s: %w", userID, err)
	}
	if len(posts) == 0 {
		return posts, nil
	}
	ids := make([]string, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	q, args, err := sqlx.In(selectCommentsWithAuthor+` WHERE c.post_id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("build comment query: %w", err)
	}
	var comments []model.Comment
	if err := r.db.SelectContext(ctx, &comments, r.db.Rebind(q), args...); err != nil {
		return nil, fmt.Errorf("list comments of user %s posts: %w", userID, err)
	}
	AttachComments(posts, GroupCommentsByPost(comments))
	return posts, nil
}

// Create inserts a new post and returns the stored row.  The id is generated
// here; created_at and modified_at come from column defaults, so a follow-up
// SELECT populates them.  Field contents are not validated: whatever the
// schema rejects surfaces as an error.
func (r *PostRepo) Create(ctx context.Context, in model.NewPost) (*model.Post, error) {
	id := uuid.NewString()
	const qInsert = `INSERT INTO post (id, title, content, app_user_id) VALUES (?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, qInsert, id, in.Title, in.Content, in.AppUserID); err != nil {
		return nil, fmt.Errorf("insert post: %w", err)
	}
	var p model.Post
	const qSelect = `SELECT id, title, content, created_at, modified_at, app_user_id FROM post WHERE id = ?`
	if err := r.db.GetContext(ctx, &p, qSelect, id); err != nil {
		return nil, fmt.Errorf("reload post %s: %w", id, err)
	}
	return &p, nil
}

// Delete removes a post and all of its comments in one transaction and
// reports how many comments went with it.  A post without comments is
// deleted like any other.  If the post row does not exist the transaction is
// rolled back and ErrPostNotFound is returned.
func (r *PostRepo) Delete(ctx context.Context, id string) (commentsDeleted int64, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin delete post %s: %w", id, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
			return
		}
		if cerr := tx.Commit(); cerr != nil {
			commentsDeleted, err = 0, fmt.Errorf("commit delete post %s: %w", id, cerr)
		}
	}()

	res, err := tx.ExecContext(ctx, `DELETE FROM comment WHERE post_id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("delete comments of post %s: %w", id, err)
	}
	commentsDeleted, _ = res.RowsAffected()

	res, err = tx.ExecContext(ctx, `DELETE FROM post WHERE id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("delete post %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return 0, ErrPostNotFound
	}
	return commentsDeleted, nil
}
