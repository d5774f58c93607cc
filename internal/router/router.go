package router // package router wires handlers and route-level middleware onto echo

import (
    "github.com/labstack/echo/v4"
    "github.com/prometheus/client_golang/prometheus/promhttp"

    "github.com/iliyamo/postboard/internal/handler"
    "github.com/iliyamo/postboard/internal/middleware"
)

// RegisterRoutes registers the operational endpoints.
func RegisterRoutes(e *echo.Echo) {
    e.GET("/healthz", handler.Health)
    e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// RegisterAdmin mounts the user administration endpoints under
// /api/admin/users.  When jwtSecret is non-empty the group requires a bearer
// token carrying the ADMIN role.  mw runs after the guard, so a rate limiter
// passed here sees the verified subject.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string, mw ...echo.MiddlewareFunc) {
    chain := []echo.MiddlewareFunc{
        middleware.OperatorAuth(jwtSecret),
        middleware.RequireRole(jwtSecret != "", "ADMIN"),
    }
    g := e.Group("/api/admin", append(chain, mw...)...)
    g.GET("/users", a.ListUsers)
    g.GET("/users/:id", a.GetUser)
    g.GET("/users/:id/address", a.GetUserAddress)
    // Both verbs rewrite the whole record.
    g.PUT("/users/:id", a.ModifyUser)
    g.PATCH("/users/:id", a.ModifyUser)
    g.DELETE("/users/:id", a.DeleteUser)
}

// RegisterPosts mounts the post and comment endpoints under /api.  The
// static /posts/posts-w-comments route takes priority over /posts/:postId in
// echo's router.  The response cache belongs in mw: every route here is
// public.
func RegisterPosts(e *echo.Echo, p *handler.PostHandler, mw ...echo.MiddlewareFunc) {
    api := e.Group("/api", mw...)
    api.GET("/posts", p.ListPosts)
    api.GET("/posts/posts-w-comments", p.ListPostsWithComments)
    api.GET("/posts/:postId", p.GetPost)
    api.GET("/posts/user/:userId", p.ListPostsByUser)
    api.POST("/posts", p.CreatePost)
    api.DELETE("/posts/:postId", p.DeletePost)

    api.POST("/comments", p.CreateComment)
    api.DELETE("/comments/:commentId", p.DeleteComment)
}
