package model

import "time"

// Post represents a row of the `post` table exactly as stored.
//
// Fields:
//  ID         – post.id (UUID text).
//  Title      – post.title.
//  Content    – post.content.
//  CreatedAt  – post.created_at.
//  ModifiedAt – post.modified_at, bumped by the database on update.
//  AppUserID  – post.app_user_id, the author.
type Post struct {
    ID         string    `db:"id" json:"id"`
    Title      string    `db:"title" json:"title"`
    Content    string    `db:"content" json:"content"`
    CreatedAt  time.Time `db:"created_at" json:"created_at"`
    ModifiedAt time.Time `db:"modified_at" json:"modified_at"`
    AppUserID  string    `db:"app_user_id" json:"app_user_id"`
}

// PostWithComments is a post joined with its author's name and carrying the
// comments that reference it.  Comments is never nil once the repository has
// attached groups, so it always serializes as an array.
type PostWithComments struct {
    Post
    AuthorID  string    `db:"author_id" json:"author_id"`
    FirstName string    `db:"first_name" json:"first_name"`
    LastName  string    `db:"last_name" json:"last_name"`
    Comments  []Comment `db:"-" json:"comments"`
}

// NewPost is the payload accepted when creating a post.
type NewPost struct {
    Title     string `json:"title"`
    Content   string `json:"content"`
    AppUserID string `json:"app_user_id"`
}
