// Package queue defines message payloads exchanged over the message broker.
package queue

import "time"

// ActivityQueue is the durable queue carrying ActivityEvent messages.
const ActivityQueue = "blog.activity"

// Event types published after a successful write.
const (
    PostCreated    = "post.created"
    PostDeleted    = "post.deleted"
    CommentCreated = "comment.created"
    CommentDeleted = "comment.deleted"
    UserUpdated    = "user.updated"
    UserDeleted    = "user.deleted"
)

// ActivityEvent describes one write against the blog.  Only the ids relevant
// to Type are set.  It carries enough for the activity log without querying
// the primary database.
type ActivityEvent struct {
    Type            string `json:"type"`
    PostID          string `json:"post_id,omitempty"`
    CommentID       string `json:"comment_id,omitempty"`
    UserID          string `json:"user_id,omitempty"`
    Title           string `json:"title,omitempty"`
    CommentsDeleted int64  `json:"comments_deleted,omitempty"`
    OccurredAt      string `json:"occurred_at"`
}

// NewActivityEvent stamps an event of the given type with the current UTC time.
func NewActivityEvent(typ string) ActivityEvent {
    return ActivityEvent{Type: typ, OccurredAt: time.Now().UTC().Format(time.RFC3339)}
}
