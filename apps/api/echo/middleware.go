package echoapi

import (
	"github.com/labstack/echo/v4"
)

// requireRole must run after the JWT middleware. Bearers without one of `roles` get a 403.
func requireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return err
			}
			if !claims.HasRole(roles...) {
				return errHttpForbidden
			}
			return next(ctx)
		}
	}
}
