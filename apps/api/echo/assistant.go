package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/oosplatform/oos/core/assistant"
)

type assistantApi struct {
	svc      *assistant.Service
	validate *validator.Validate
}

func registerAssistantAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := assistantApi{svc: opts.AssistantSvc, validate: opts.Validate}

	ag := g.Group("/assistant", jwt)
	ag.POST("/generate", api.generate)
	ag.GET("/content", api.query)
}

func (api *assistantApi) generate(ctx echo.Context) error {
	principal, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	var data assistant.GenerateRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GenerateRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	c, err := api.svc.Generate(ctx.Request().Context(), principal, data)
	if err != nil {
		return errors.Wrap(err, "generating content")
	}
	return ctx.JSON(http.StatusCreated, c)
}

func (api *assistantApi) query(ctx echo.Context) error {
	principal, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}
	contents, err := api.svc.Query(ctx.Request().Context(), principal,
		ctx.QueryParam("workspace_id"), ctx.QueryParam("startup_id"))
	if err != nil {
		return errors.Wrap(err, "querying generated content")
	}
	if contents == nil {
		contents = []assistant.Content{}
	}
	return ctx.JSON(http.StatusOK, contents)
}
