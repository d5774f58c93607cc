package handler

import (
    "errors"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/postboard/internal/model"
    "github.com/iliyamo/postboard/internal/queue"
    "github.com/iliyamo/postboard/internal/repository"
)

// PostHandler serves the post and comment endpoints.
type PostHandler struct {
    Posts    *repository.PostRepo
    Comments *repository.CommentRepo
    Events   EventPublisher
    Timeout  time.Duration
}

// NewPostHandler constructs a PostHandler and panics if any repository is nil.
func NewPostHandler(posts *repository.PostRepo, comments *repository.CommentRepo, events EventPublisher, timeout time.Duration) *PostHandler {
    if posts == nil || comments == nil {
        panic("nil repository passed to NewPostHandler")
    }
    return &PostHandler{Posts: posts, Comments: comments, Events: events, Timeout: timeout}
}

// ListPosts handles GET /api/posts and returns raw post rows.
func (h *PostHandler) ListPosts(c echo.Context) error {
    ctx, cancel := requestContext(c, h.Timeout)
    defer cancel()
    posts, err := h.Posts.ListAll(ctx)
    if err != nil {
        return serverError(c, "failed to fetch posts", err)
    }
    return c.JSON(http.StatusOK, posts)
}

// ListPostsWithComments handles GET /api/posts/posts-w-comments.
func (h *PostHandler) ListPostsWithComments(c echo.Context) error {
    ctx, cancel := requestContext(c, h.Timeout)
    defer cancel()
    posts, err := h.Posts.ListWithComments(ctx)
    if err != nil {
        return serverError(c, "failed to fetch posts and comments", err)
    }
    return c.JSON(http.StatusOK, posts)
}

// GetPost handles GET /api/posts/:postId.
func (h *PostHandler) GetPost(c echo.Context) error {
    id := c.Param("postId")
    ctx, cancel := requestContext(c, h.Timeout)
    defer cancel()
    post, err := h.Posts.GetWithComments(ctx, id)
    if err != nil {
        if errors.Is(err, repository.ErrPostNotFound) {
            return notFound(c, "post not found")
        }
        return serverError(c, "failed to fetch post and comments", err, "post_id", id)
    }
    return c.JSON(http.StatusOK, post)
}

// ListPostsByUser handles GET /api/posts/user/:userId.  An unknown user
// simply has no posts.
func (h *PostHandler) ListPostsByUser(c echo.Context) error {
    userID := c.Param("userId")
    ctx, cancel := requestContext(c, h.Timeout)
    defer cancel()
    posts, err := h.Posts.ListByUser(ctx, userID)
    if err != nil {
        return serverError(c, "failed to fetch posts and comments", err, "user_id", userID)
    }
    return c.JSON(http.StatusOK, posts)
}

// CreatePost handles POST /api/posts.
func (h *PostHandler) CreatePost(c echo.Context) error {
    var body model.NewPost
    if err := c.Bind(&body); err != nil {
        return badRequest(c, "invalid request body")
    }
    ctx, cancel := requestContext(c, h.Timeout)
    defer cancel()
    post, err := h.Posts.Create(ctx, body)
    if err != nil {
        return serverError(c, "failed to create post", err, "user_id", body.AppUserID)
    }
    ev := queue.NewActivityEvent(queue.PostCreated)
    ev.PostID, ev.UserID, ev.Title = post.ID, post.AppUserID, post.Title
    emit(h.Events, ev)
    return c.JSON(http.StatusCreated, post)
}

// DeletePost handles DELETE /api/posts/:postId.  The post and its comments
// are removed in one transaction.
func (h *PostHandler) DeletePost(c echo.Context) error {
    id := c.Param("postId")
    ctx, cancel := requestContext(c, h.Timeout)
    defer cancel()
    n, err := h.Posts.Delete(ctx, id)
    if err != nil {
        if errors.Is(err, repository.ErrPostNotFound) {
            return notFound(c, "post not found")
        }
        return serverError(c, "failed to delete post", err, "post_id", id)
    }
    ev := queue.NewActivityEvent(queue.PostDeleted)
    ev.PostID, ev.CommentsDeleted = id, n
    emit(h.Events, ev)
    return c.NoContent(http.StatusNoContent)
}

// CreateComment handles POST /api/comments.
func (h *PostHandler) CreateComment(c echo.Context) error {
    var body model.NewComment
    if err := c.Bind(&body); err != nil {
        return badRequest(c, "invalid request body")
    }
    ctx, cancel := requestContext(c, h.Timeout)
    defer cancel()
    comment, err := h.Comments.Create(ctx, body)
    if err != nil {
        return serverError(c, "failed to create comment", err, "post_id", body.PostID)
    }
    ev := queue.NewActivityEvent(queue.CommentCreated)
    ev.CommentID, ev.PostID, ev.UserID = comment.ID, comment.PostID, comment.AppUserID
    emit(h.Events, ev)
    return c.JSON(http.StatusCreated, comment)
}

// DeleteComment handles DELETE /api/comments/:commentId.
func (h *PostHandler) DeleteComment(c echo.Context) error {
    id := c.Param("commentId")
    ctx, cancel := requestContext(c, h.Timeout)
    defer cancel()
    if err := h.Comments.Delete(ctx, id); err != nil {
        if errors.Is(err, repository.ErrCommentNotFound) {
            return notFound(c, "comment not found")
        }
        return serverError(c, "failed to delete comment", err, "comment_id", id)
    }
    ev := queue.NewActivityEvent(queue.CommentDeleted)
    ev.CommentID = id
    emit(h.Events, ev)
    return c.NoContent(http.StatusNoContent)
}
