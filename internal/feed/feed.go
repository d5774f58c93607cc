package feed

import (
    "context"
    "fmt"
    "io"
    "strings"
    "time"

    "github.com/iliyamo/postboard/internal/model"
    "github.com/iliyamo/postboard/internal/utils"
)

// Feed holds the posts currently shown, newest submission first.
type Feed struct {
    client *Client
    Posts  []model.PostWithComments
}

// New returns an empty feed backed by client.
func New(client *Client) *Feed {
    return &Feed{client: client}
}

// Load replaces the feed with the server's full post list.
func (f *Feed) Load(ctx context.Context) error {
    posts, err := f.client.FetchPosts(ctx)
    if err != nil {
        return err
    }
    f.Posts = posts
    return nil
}

// Submit creates a post, reads it back with its author and comments and
// puts it at the head of the feed without reloading the rest.
func (f *Feed) Submit(ctx context.Context, in model.NewPost) (*model.PostWithComments, error) {
    created, err := f.client.CreatePost(ctx, in)
    if err != nil {
        return nil, fmt.Errorf("create post: %w", err)
    }
    full, err := f.client.FetchPost(ctx, created.ID)
    if err != nil {
        return nil, fmt.Errorf("fetch post %s: %w", created.ID, err)
    }
    f.Posts = append([]model.PostWithComments{*full}, f.Posts...)
    return full, nil
}

// Render writes every post followed by its comments, each stamped with the
// time elapsed since creation relative to now.
func Render(w io.Writer, posts []model.PostWithComments, now time.Time) error {
    if len(posts) == 0 {
        _, err := fmt.Fprintln(w, "No posts yet.")
        return err
    }
    var b strings.Builder
    for i, p := range posts {
        if i > 0 {
            b.WriteString("\n")
        }
        fmt.Fprintf(&b, "%s %s · %s\n", p.FirstName, p.LastName, utils.TimeSince(p.CreatedAt, now))
        fmt.Fprintf(&b, "%s\n%s\n", p.Title, p.Content)
        for _, c := range p.Comments {
            fmt.Fprintf(&b, "    > %s %s (%s): %s\n", c.FirstName, c.LastName, utils.TimeSince(c.CreatedAt, now), c.Content)
        }
    }
    _, err := io.WriteString(w, b.String())
    return err
}
