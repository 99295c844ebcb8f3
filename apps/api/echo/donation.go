package echoapi

import (
	"io/ioutil"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/oosplatform/oos/core"
	"github.com/oosplatform/oos/core/donation"
	"github.com/oosplatform/oos/core/startup"
	paymentsvc "github.com/oosplatform/oos/services/payment"
)

type donationApi struct {
	svc        *donation.Service
	startupSvc *startup.Service
	payment    WebhookVerifier
	validate   *validator.Validate
}

func registerDonationAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := donationApi{
		svc:        opts.DonationSvc,
		startupSvc: opts.StartupSvc,
		payment:    opts.Payment,
		validate:   opts.Validate,
	}

	// gateway-facing endpoint, authenticated by signature instead of JWT
	g.POST("/donations/webhook", api.webhook)

	// client callback after checkout; advisory, still server-verified
	g.POST("/donations/verify", api.verify)

	dg := g.Group("/startups/:id/donations", jwt)
	dg.GET("", api.query)
}

// webhook records a completed donation once the gateway confirms it. This
// is the only path that writes the "completed" status from the outside.
func (api *donationApi) webhook(ctx echo.Context) error {
	body, err := ioutil.ReadAll(ctx.Request().Body)
	if err != nil {
		return errors.Wrap(err, "reading webhook body")
	}
	if !api.payment.VerifyWebhookSignature(body, ctx.Request().Header.Get(paymentsvc.SignatureHeader)) {
		return errInvalidSignature
	}

	event, err := paymentsvc.ParseWebhook(body)
	if err != nil {
		return err
	}
	if event.Event != "charge.success" {
		return ctx.NoContent(http.StatusOK) // nothing to record
	}

	d, err := api.svc.VerifyAndRecord(ctx.Request().Context(),
		event.Data.Metadata.StartupID, event.Data.Customer.Email, event.Data.Reference)
	if err != nil {
		// gateways retry any non-2xx delivery; a replayed event is already
		// on the ledger, so acknowledge it
		if cerr, ok := errors.Cause(err).(*core.ConflictError); ok && cerr.Err == donation.ErrDuplicateReference {
			return ctx.NoContent(http.StatusOK)
		}
		return errors.Wrap(err, "recording donation")
	}
	return ctx.JSON(http.StatusOK, d)
}

func (api *donationApi) verify(ctx echo.Context) error {
	var data VerifyDonationRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to VerifyDonationRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	d, err := api.svc.VerifyAndRecord(ctx.Request().Context(), data.StartupID, data.DonorEmail, data.Reference)
	if err != nil {
		return errors.Wrap(err, "verifying donation")
	}
	return ctx.JSON(http.StatusCreated, d)
}

// query lists a startup's donations; owners only.
func (api *donationApi) query(ctx echo.Context) error {
	principal, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}
	if _, err := api.startupSvc.RequireOwnership(ctx.Request().Context(), principal, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "checking ownership")
	}

	donations, err := api.svc.Query(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying donations")
	}
	if donations == nil {
		donations = []donation.Donation{}
	}
	return ctx.JSON(http.StatusOK, donations)
}

type VerifyDonationRequest struct {
	StartupID  string `json:"startup_id" validate:"required"`
	DonorEmail string `json:"donor_email" validate:"omitempty,email"`
	Reference  string `json:"payment_reference" validate:"required"`
}

func (vr *VerifyDonationRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(vr)
}
