package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/oosplatform/oos/core/auth"
)

type adminApi struct {
	svc *auth.Service
}

func registerAdminAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := adminApi{svc: opts.AuthSvc}

	ag := g.Group("/admin", jwt)
	ag.GET("/badge", api.badge)
	ag.POST("/badge", api.grant)
	ag.DELETE("/badge/:userID", api.revoke)
	ag.GET("/badges", api.query, badgeMiddleware(opts.AuthSvc))
}

// badge reports whether the caller currently holds the admin badge.
func (api *adminApi) badge(ctx echo.Context) error {
	principal, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}
	hasBadge, err := api.svc.HasAdminBadge(ctx.Request().Context(), principal.ID)
	if err != nil {
		return errors.Wrap(err, "checking admin badge")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"is_admin": hasBadge})
}

// grant gives the caller the admin badge. Granting to someone else is
// decided by the configured policy.
func (api *adminApi) grant(ctx echo.Context) error {
	principal, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	var data GrantRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GrantRequest")
	}
	targetID := data.UserID
	if targetID == "" {
		targetID = principal.ID
	}

	grant, err := api.svc.GrantAdminBadge(ctx.Request().Context(), principal, targetID)
	if err != nil {
		return errors.Wrap(err, "granting admin badge")
	}
	return ctx.JSON(http.StatusCreated, grant)
}

func (api *adminApi) revoke(ctx echo.Context) error {
	principal, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.RevokeAdminBadge(ctx.Request().Context(), principal, ctx.Param("userID")); err != nil {
		return errors.Wrap(err, "revoking admin badge")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *adminApi) query(ctx echo.Context) error {
	grants, err := api.svc.ListGrants(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying admin grants")
	}
	if grants == nil {
		grants = []auth.AdminGrant{}
	}
	return ctx.JSON(http.StatusOK, grants)
}

type GrantRequest struct {
	UserID string `json:"user_id"`
}
