package middleware

import "github.com/labstack/echo/v4"

// Context keys set by OperatorAuth.
const (
    ctxSubject = "subject"
    ctxRole    = "role"
)

// principal returns the authenticated subject, or "anon" when the request
// carried no verified token.
func principal(c echo.Context) string {
    if s, ok := c.Get(ctxSubject).(string); ok && s != "" {
        return s
    }
    return "anon"
}
