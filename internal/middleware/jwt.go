package middleware

import (
    "net/http"
    "strings"

    "github.com/golang-jwt/jwt/v5"
    "github.com/labstack/echo/v4"
)

// OperatorAuth validates an HS256 bearer token and stores its sub and role
// claims in the context.  With an empty secret the guard is off and every
// request passes through unchanged.
func OperatorAuth(secret string) echo.MiddlewareFunc {
    if secret == "" {
        return passthrough
    }
    key := []byte(secret)
    parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            auth := c.Request().Header.Get(echo.HeaderAuthorization)
            raw, found := strings.CutPrefix(auth, "Bearer ")
            if !found || raw == "" {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
            }
            claims := jwt.MapClaims{}
            tok, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) { return key, nil })
            if err != nil || !tok.Valid {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
            }
            sub, _ := claims.GetSubject()
            role, _ := claims["role"].(string)
            c.Set(ctxSubject, sub)
            c.Set(ctxRole, role)
            return next(c)
        }
    }
}
