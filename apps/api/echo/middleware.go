package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/oosplatform/oos/core/auth"
)

// badgeMiddleware rejects requests whose principal does not hold the admin
// badge. The badge is re-read on every request; revocation takes effect
// immediately.
func badgeMiddleware(svc *auth.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			principal, err := getContextPrincipal(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context principal")
			}
			if err := svc.RequireAdminBadge(ctx.Request().Context(), principal.ID); err != nil {
				return errHttpForbidden
			}
			return next(ctx)
		}
	}
}
