package handler // handler defines http handlers

import (
    "context"
    "log/slog"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/postboard/internal/queue"
)

// defaultTimeout bounds the database work of a single request when the
// handler was built without an explicit timeout.
const defaultTimeout = 5 * time.Second

// EventPublisher is the sink for activity events.  service.QueuePublisher
// and service.NopPublisher satisfy it.
type EventPublisher interface {
    Publish(ctx context.Context, event queue.ActivityEvent) error
}

// requestContext derives the DB context of a request.
func requestContext(c echo.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
    if timeout <= 0 {
        timeout = defaultTimeout
    }
    return context.WithTimeout(c.Request().Context(), timeout)
}

// serverError logs err with the request id and answers 500 with msg.
func serverError(c echo.Context, msg string, err error, attrs ...any) error {
    attrs = append(attrs,
        "error", err,
        "request_id", c.Response().Header().Get(echo.HeaderXRequestID),
        "method", c.Request().Method,
        "path", c.Path(),
    )
    slog.ErrorContext(c.Request().Context(), msg, attrs...)
    return c.JSON(http.StatusInternalServerError, echo.Map{"error": msg})
}

// notFound answers 404 with msg.
func notFound(c echo.Context, msg string) error {
    return c.JSON(http.StatusNotFound, echo.Map{"error": msg})
}

// badRequest answers 400 with msg.
func badRequest(c echo.Context, msg string) error {
    return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}

// emit publishes ev in the background.  The request has already succeeded,
// so a broker failure is only logged.
func emit(p EventPublisher, ev queue.ActivityEvent) {
    if p == nil {
        return
    }
    go func() {
        ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
        defer cancel()
        if err := p.Publish(ctx, ev); err != nil {
            slog.Warn("activity event not published", "type", ev.Type, "error", err)
        }
    }()
}
