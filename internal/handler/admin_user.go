// Package handler defines the HTTP handlers of the blog API.
// This file implements the admin user endpoints under /api/admin/users.
// Every identifier-scoped operation answers 404 when the id matches no user.
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

// AdminHandler bundles the dependencies of the admin user endpoints.
type AdminHandler struct {
    Users   *repository.UserRepo
    Events  EventPublisher
    Timeout time.Duration
}

// NewAdminHandler constructs an AdminHandler and panics if the repository is nil.
func NewAdminHandler(users *repository.UserRepo, events EventPublisher, timeout time.Duration) *AdminHandler {
    if users == nil {
        panic("nil repository passed to NewAdminHandler")
    }
    return &AdminHandler{Users: users, Events: events, Timeout: timeout}
}

// ListUsers handles GET /api/admin/users.
func (h *AdminHandler) ListUsers(c echo.Context) error {
    ctx, cancel := requestContext(c, h.Timeout)
    defer cancel()
    users, err := h.Users.List(ctx)
    if err != nil {
        return serverError(c, "failed to fetch users", err)
    }
    return c.JSON(http.StatusOK, users)
}

// GetUser handles GET /api/admin/users/:id.  The profile is wrapped in a
// one-element array, the shape admin clients already consume.
func (h *AdminHandler) GetUser(c echo.Context) error {
    id := c.Param("id")
    ctx, cancel := requestContext(c, h.Timeout)
    defer cancel()
    u, err := h.Users.GetByID(ctx, id)
    if err != nil {
        if errors.Is(err, repository.ErrUserNotFound) {
            return notFound(c, "user not found")
        }
        return serverError(c, "failed to fetch user", err, "user_id", id)
    }
    return c.JSON(http.StatusOK, []model.UserProfile{u})
}

// GetUserAddress handles GET /api/admin/users/:id/address.  An existing user
// without an address gets an empty array.
func (h *AdminHandler) GetUserAddress(c echo.Context) error {
    id := c.Param("id")
    ctx, cancel := requestContext(c, h.Timeout)
    defer cancel()
    addr, err := h.Users.GetAddress(ctx, id)
    if err != nil {
        if errors.Is(err, repository.ErrUserNotFound) {
            return notFound(c, "user not found")
        }
        return serverError(c, "failed to fetch address", err, "user_id", id)
    }
    return c.JSON(http.StatusOK, addr)
}

// ModifyUser handles PUT and PATCH /api/admin/users/:id.  Both methods
// overwrite all editable columns; fields missing from the body are written
// as empty values.
func (h *AdminHandler) ModifyUser(c echo.Context) error {
    id := c.Param("id")
    var body model.UserPatch
    if err := (&echo.DefaultBinder{}).BindBody(c, &body); err != nil {
        return badRequest(c, "invalid request body")
    }
    ctx, cancel := requestContext(c, h.Timeout)
    defer cancel()
    if err := h.Users.Modify(ctx, id, body); err != nil {
        if errors.Is(err, repository.ErrUserNotFound) {
            return notFound(c, "user not found")
        }
        return serverError(c, "failed to modify user", err, "user_id", id)
    }
    ev := queue.NewActivityEvent(queue.UserUpdated)
    ev.UserID = id
    emit(h.Events, ev)
    return c.JSON(http.StatusOK, []any{})
}

// DeleteUser handles DELETE /api/admin/users/:id.
func (h *AdminHandler) DeleteUser(c echo.Context) error {
    id := c.Param("id")
    ctx, cancel := requestContext(c, h.Timeout)
    defer cancel()
    if err := h.Users.Delete(ctx, id); err != nil {
        if errors.Is(err, repository.ErrUserNotFound) {
            return notFound(c, "user not found")
        }
        return serverError(c, "failed to delete user", err, "user_id", id)
    }
    ev := queue.NewActivityEvent(queue.UserDeleted)
    ev.UserID = id
    emit(h.Events, ev)
    return c.JSON(http.StatusOK, []any{})
}
