package model

import "time"

// Comment mirrors the `comment` table.  FirstName and LastName are filled
// only by reads that join the commenter; a freshly inserted comment leaves
// them empty.
type Comment struct {
    ID         string    `db:"id" json:"id"`
    Content    string    `db:"content" json:"content"`
    CreatedAt  time.Time `db:"created_at" json:"created_at"`
    ModifiedAt time.Time `db:"modified_at" json:"modified_at"`
    AppUserID  string    `db:"app_user_id" json:"app_user_id"`
    PostID     string    `db:"post_id" json:"post_id"`
    FirstName  string    `db:"first_name" json:"first_name,omitempty"`
    LastName   string    `db:"last_name" json:"last_name,omitempty"`
}

// NewComment is the payload accepted when creating a comment.
type NewComment struct {
    Content   string `json:"content"`
    AppUserID string `json:"app_user_id"`
    PostID    string `json:"post_id"`
}
