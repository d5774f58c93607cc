// Package feed is a terminal rendition of the blog's post list: it fetches
// posts with their comments from the API, lets the caller submit a new post
// and renders the list with relative timestamps.
package feed

import (
    "bytes"
    "context"
    "encoding/json"
    "fmt"
    "io"
    "net/http"
    "net/url"
    "strings"
    "time"

    "github.com/iliyamo/postboard/internal/model"
)

// APIError is returned for any non-2xx answer from the API.
type APIError struct {
    Status  int
    Message string
}

func (e *APIError) Error() string {
    if e.Message == "" {
        return fmt.Sprintf("api: status %d", e.Status)
    }
    return fmt.Sprintf("api: status %d: %s", e.Status, e.Message)
}

// Client talks to the post endpoints of a running server.
type Client struct {
    BaseURL string
    HTTP    *http.Client
}

// NewClient returns a client for baseURL with a 10s request timeout.
func NewClient(baseURL string) *Client {
    return &Client{
        BaseURL: strings.TrimRight(baseURL, "/"),
        HTTP:    &http.Client{Timeout: 10 * time.Second},
    }
}

// FetchPosts returns every post with its author and comments.
func (c *Client) FetchPosts(ctx context.Context) ([]model.PostWithComments, error) {
    var out []model.PostWithComments
    if err := c.do(ctx, http.MethodGet, "/api/posts/posts-w-comments", nil, &out); err != nil {
        return nil, err
    }
    return out, nil
}

// FetchPost returns a single post with its comments.
func (c *Client) FetchPost(ctx context.Context, id string) (*model.PostWithComments, error) {
    var out model.PostWithComments
    if err := c.do(ctx, http.MethodGet, "/api/posts/"+url.PathEscape(id), nil, &out); err != nil {
        return nil, err
    }
    return &out, nil
}

// CreatePost submits a new post and returns the stored row.
func (c *Client) CreatePost(ctx context.Context, in model.NewPost) (*model.Post, error) {
    var out model.Post
    if err := c.do(ctx, http.MethodPost, "/api/posts", in, &out); err != nil {
        return nil, err
    }
    return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
    var rd io.Reader
    if body != nil {
        bs, err := json.Marshal(body)
        if err != nil {
            return err
        }
        rd = bytes.NewReader(bs)
    }
    req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rd)
    if err != nil {
        return err
    }
    req.Header.Set("Accept", "application/json")
    if body != nil {
        req.Header.Set("Content-Type", "application/json")
    }
    hc := c.HTTP
    if hc == nil {
        hc = http.DefaultClient
    }
    res, err := hc.Do(req)
    if err != nil {
        return err
    }
    defer res.Body.Close()

    if res.StatusCode < 200 || res.StatusCode > 299 {
        var e struct {
            Error string `json:"error"`
        }
        _ = json.NewDecoder(res.Body).Decode(&e)
        return &APIError{Status: res.StatusCode, Message: e.Error}
    }
    if out == nil {
        return nil
    }
    if err := json.NewDecoder(res.Body).Decode(out); err != nil {
        return fmt.Errorf("decode %s %s: %w", method, path, err)
    }
    return nil
}
