package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/oosplatform/oos/core/donation"
	"github.com/oosplatform/oos/core/startup"
)

type startupApi struct {
	svc         *startup.Service
	donationSvc *donation.Service
	validate    *validator.Validate
}

func registerStartupAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := startupApi{svc: opts.StartupSvc, donationSvc: opts.DonationSvc, validate: opts.Validate}

	// public endpoints
	g.GET("/startups", api.query)
	g.GET("/startups/:id", api.retrieve)
	g.GET("/startups/:id/stats", api.stats)

	// authed endpoints
	sg := g.Group("/startups", jwt)
	sg.POST("", api.create)
	sg.PUT("/:id", api.update)
	sg.DELETE("/:id", api.destroy)
	sg.GET("/:id/comments", api.comments)
	sg.POST("/:id/comments", api.comment)
	sg.POST("/:id/subscribe", api.subscribe)
	sg.DELETE("/:id/subscribe", api.unsubscribe)
}

func (api *startupApi) create(ctx echo.Context) error {
	principal, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	var data startup.NewStartup
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStartup")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	s, err := api.svc.Register(ctx.Request().Context(), principal, data)
	if err != nil {
		return errors.Wrap(err, "registering startup")
	}
	return ctx.JSON(http.StatusCreated, s)
}

func (api *startupApi) query(ctx echo.Context) error {
	filter := new(startup.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []startup.Startup{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	startups, err := api.svc.Filter(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying startups")
	}
	if startups == nil {
		startups = []startup.Startup{}
	}
	return ctx.JSON(http.StatusOK, startups)
}

func (api *startupApi) retrieve(ctx echo.Context) error {
	s, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding startup")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *startupApi) update(ctx echo.Context) error {
	principal, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	var data startup.UpdateStartup
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStartup")
	}

	s, err := api.svc.Update(ctx.Request().Context(), principal, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating startup")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *startupApi) destroy(ctx echo.Context) error {
	principal, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	var data DeactivateRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to DeactivateRequest")
	}

	if err := api.svc.Deactivate(ctx.Request().Context(), principal, ctx.Param("id"), data.Reason); err != nil {
		return errors.Wrap(err, "deactivating startup")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// stats aggregates the public dashboard numbers for a startup.
func (api *startupApi) stats(ctx echo.Context) error {
	rctx := ctx.Request().Context()

	s, err := api.svc.Get(rctx, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding startup")
	}
	total, err := api.donationSvc.TotalRaised(rctx, s.ID)
	if err != nil {
		return errors.Wrap(err, "summing donations")
	}
	count, err := api.donationSvc.Count(rctx, s.ID, donation.StatusCompleted)
	if err != nil {
		return errors.Wrap(err, "counting donations")
	}

	return ctx.JSON(http.StatusOK, startup.Stats{
		TotalRaised:     total,
		DonationCount:   count,
		SubscriberCount: s.SubscriberCount,
	})
}

func (api *startupApi) comment(ctx echo.Context) error {
	principal, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	var data startup.NewComment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewComment")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	c, err := api.svc.Comment(ctx.Request().Context(), principal, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "creating comment")
	}
	return ctx.JSON(http.StatusCreated, c)
}

func (api *startupApi) comments(ctx echo.Context) error {
	principal, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}
	comments, err := api.svc.Comments(ctx.Request().Context(), principal, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying comments")
	}
	if comments == nil {
		comments = []startup.Comment{}
	}
	return ctx.JSON(http.StatusOK, comments)
}

func (api *startupApi) subscribe(ctx echo.Context) error {
	principal, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}
	sub, err := api.svc.Subscribe(ctx.Request().Context(), principal, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "subscribing")
	}
	return ctx.JSON(http.StatusCreated, sub)
}

func (api *startupApi) unsubscribe(ctx echo.Context) error {
	principal, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.Unsubscribe(ctx.Request().Context(), principal, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "unsubscribing")
	}
	return ctx.NoContent(http.StatusNoContent)
}

type DeactivateRequest struct {
	Reason string `json:"reason"`
}
