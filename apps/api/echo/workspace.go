package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/oosplatform/oos/core/workspace"
)

type workspaceApi struct {
	svc      *workspace.Service
	validate *validator.Validate
}

func registerWorkspaceAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := workspaceApi{svc: opts.WorkspaceSvc, validate: opts.Validate}

	wg := g.Group("/workspaces", jwt)
	wg.POST("", api.create)
	wg.GET("", api.query)
	wg.GET("/:id", api.retrieve)
	wg.PUT("/:id", api.update)
	wg.DELETE("/:id", api.destroy)
	wg.GET("/:id/members", api.members)
	wg.PUT("/:id/members/:memberID", api.setMemberRole)
	wg.DELETE("/:id/members/:memberID", api.removeMember)
	wg.POST("/:id/invites", api.invite)

	g.POST("/invites/accept", api.acceptInvite, jwt)
}

func (api *workspaceApi) create(ctx echo.Context) error {
	principal, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	var data workspace.NewWorkspace
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewWorkspace")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ws, err := api.svc.Create(ctx.Request().Context(), principal, data)
	if err != nil {
		return errors.Wrap(err, "creating workspace")
	}
	return ctx.JSON(http.StatusCreated, ws)
}

func (api *workspaceApi) query(ctx echo.Context) error {
	principal, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}
	workspaces, err := api.svc.QueryForUser(ctx.Request().Context(), principal.ID)
	if err != nil {
		return errors.Wrap(err, "querying workspaces")
	}
	if workspaces == nil {
		workspaces = []workspace.Workspace{}
	}
	return ctx.JSON(http.StatusOK, workspaces)
}

func (api *workspaceApi) retrieve(ctx echo.Context) error {
	principal, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}
	ws, err := api.svc.Get(ctx.Request().Context(), principal, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding workspace")
	}
	return ctx.JSON(http.StatusOK, ws)
}

func (api *workspaceApi) update(ctx echo.Context) error {
	principal, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	var data workspace.UpdateWorkspace
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateWorkspace")
	}

	ws, err := api.svc.Update(ctx.Request().Context(), principal, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating workspace")
	}
	return ctx.JSON(http.StatusOK, ws)
}

func (api *workspaceApi) destroy(ctx echo.Context) error {
	principal, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), principal, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting workspace")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *workspaceApi) members(ctx echo.Context) error {
	principal, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}
	members, err := api.svc.Members(ctx.Request().Context(), principal, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying members")
	}
	if members == nil {
		members = []workspace.Member{}
	}
	return ctx.JSON(http.StatusOK, members)
}

func (api *workspaceApi) setMemberRole(ctx echo.Context) error {
	principal, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	var data workspace.UpdateMemberRole
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateMemberRole")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	member, err := api.svc.SetMemberRole(ctx.Request().Context(), principal, ctx.Param("id"), ctx.Param("memberID"), data.Role)
	if err != nil {
		return errors.Wrap(err, "setting member role")
	}
	return ctx.JSON(http.StatusOK, member)
}

func (api *workspaceApi) removeMember(ctx echo.Context) error {
	principal, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.RemoveMember(ctx.Request().Context(), principal, ctx.Param("id"), ctx.Param("memberID")); err != nil {
		return errors.Wrap(err, "removing member")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *workspaceApi) invite(ctx echo.Context) error {
	principal, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	var data workspace.NewInvite
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewInvite")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	inv, err := api.svc.Invite(ctx.Request().Context(), principal, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "creating invite")
	}
	return ctx.JSON(http.StatusCreated, inv)
}

func (api *workspaceApi) acceptInvite(ctx echo.Context) error {
	principal, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	var data AcceptInviteRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AcceptInviteRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	member, err := api.svc.AcceptInvite(ctx.Request().Context(), principal, data.Token)
	if err != nil {
		return errors.Wrap(err, "accepting invite")
	}
	return ctx.JSON(http.StatusCreated, member)
}

type AcceptInviteRequest struct {
	Token string `json:"token" validate:"required"`
}

func (ar *AcceptInviteRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(ar)
}
