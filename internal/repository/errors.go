// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish a lookup that matched nothing from a failed
// query. Repositories wrap driver failures with %w so callers can still
// inspect the underlying error.
package repository

import "errors"

// ErrUserNotFound is returned when no app_user row matches the given id.
var ErrUserNotFound = errors.New("user not found")

// ErrPostNotFound is returned when no post row matches the given id.
// Handlers should translate it into an HTTP 404 response.
var ErrPostNotFound = errors.New("post not found")

// ErrCommentNotFound is returned when no comment row matches the given id.
var ErrCommentNotFound = errors.New("comment not found")
