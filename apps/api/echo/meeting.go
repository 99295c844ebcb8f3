package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/oosplatform/oos/core/meeting"
)

type meetingApi struct {
	svc      *meeting.Service
	validate *validator.Validate
}

func registerMeetingAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := meetingApi{svc: opts.MeetingSvc, validate: opts.Validate}

	wg := g.Group("/workspaces/:id/meetings", jwt)
	wg.POST("", api.start)
	wg.GET("", api.query)

	mg := g.Group("/meetings/:id", jwt)
	mg.POST("/token", api.joinToken)
	mg.POST("/end", api.end)
}

func (api *meetingApi) start(ctx echo.Context) error {
	principal, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	var data meeting.NewMeeting
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMeeting")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	m, err := api.svc.Start(ctx.Request().Context(), principal, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "starting meeting")
	}
	return ctx.JSON(http.StatusCreated, m)
}

func (api *meetingApi) query(ctx echo.Context) error {
	principal, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}
	meetings, err := api.svc.Query(ctx.Request().Context(), principal, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying meetings")
	}
	if meetings == nil {
		meetings = []meeting.Meeting{}
	}
	return ctx.JSON(http.StatusOK, meetings)
}

func (api *meetingApi) joinToken(ctx echo.Context) error {
	principal, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}
	token, err := api.svc.JoinToken(ctx.Request().Context(), principal, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "issuing join token")
	}
	return ctx.JSON(http.StatusOK, TokenResponse{Token: token})
}

func (api *meetingApi) end(ctx echo.Context) error {
	principal, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}
	m, err := api.svc.End(ctx.Request().Context(), principal, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "ending meeting")
	}
	return ctx.JSON(http.StatusOK, m)
}
