package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/oosplatform/oos/core/verification"
)

type verificationApi struct {
	svc      *verification.Service
	validate *validator.Validate
}

func registerVerificationAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := verificationApi{svc: opts.VerificationSvc, validate: opts.Validate}
	badge := badgeMiddleware(opts.AuthSvc)

	sg := g.Group("/startups/:id", jwt)
	sg.POST("/documents", api.submitDocument)
	sg.GET("/documents", api.documents)
	sg.POST("/bank-verifications", api.submitBankVerification)
	sg.GET("/bank-verifications", api.bankVerifications)

	dg := g.Group("/documents/:id", jwt)
	dg.POST("/review", api.reviewDocument, badge)
	dg.POST("/resubmit", api.resubmitDocument)

	bg := g.Group("/bank-verifications/:id", jwt)
	bg.POST("/review", api.reviewBankVerification, badge)
	bg.POST("/resubmit", api.resubmitBankVerification)

	g.GET("/verification/pending", api.pendingDocuments, jwt, badge)
}

func (api *verificationApi) submitDocument(ctx echo.Context) error {
	principal, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	var data verification.NewDocument
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewDocument")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	doc, err := api.svc.SubmitDocument(ctx.Request().Context(), principal, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "submitting document")
	}
	return ctx.JSON(http.StatusCreated, doc)
}

func (api *verificationApi) documents(ctx echo.Context) error {
	principal, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}
	docs, err := api.svc.Documents(ctx.Request().Context(), principal, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying documents")
	}
	if docs == nil {
		docs = []verification.Document{}
	}
	return ctx.JSON(http.StatusOK, docs)
}

func (api *verificationApi) reviewDocument(ctx echo.Context) error {
	principal, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	var data ReviewDocumentRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ReviewDocumentRequest")
	}
	rd := verification.ReviewDocument{Decision: data.Decision}
	if err := rd.Validate(api.validate); err != nil {
		return err
	}

	doc, err := api.svc.ReviewDocument(ctx.Request().Context(), principal, ctx.Param("id"), data.StartupID, rd)
	if err != nil {
		return errors.Wrap(err, "reviewing document")
	}
	return ctx.JSON(http.StatusOK, doc)
}

func (api *verificationApi) resubmitDocument(ctx echo.Context) error {
	principal, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	var data verification.Resubmit
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Resubmit")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	doc, err := api.svc.ResubmitDocument(ctx.Request().Context(), principal, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "resubmitting document")
	}
	return ctx.JSON(http.StatusOK, doc)
}

func (api *verificationApi) pendingDocuments(ctx echo.Context) error {
	principal, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}
	docs, err := api.svc.PendingDocuments(ctx.Request().Context(), principal)
	if err != nil {
		return errors.Wrap(err, "querying pending documents")
	}
	if docs == nil {
		docs = []verification.Document{}
	}
	return ctx.JSON(http.StatusOK, docs)
}

func (api *verificationApi) submitBankVerification(ctx echo.Context) error {
	principal, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	var data verification.NewBankVerification
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewBankVerification")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	bv, err := api.svc.SubmitBankVerification(ctx.Request().Context(), principal, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "submitting bank verification")
	}
	return ctx.JSON(http.StatusCreated, bv)
}

func (api *verificationApi) bankVerifications(ctx echo.Context) error {
	principal, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}
	bvs, err := api.svc.BankVerifications(ctx.Request().Context(), principal, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying bank verifications")
	}
	if bvs == nil {
		bvs = []verification.BankVerification{}
	}
	return ctx.JSON(http.StatusOK, bvs)
}

func (api *verificationApi) reviewBankVerification(ctx echo.Context) error {
	principal, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	var data verification.ReviewBankVerification
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ReviewBankVerification")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	bv, err := api.svc.ReviewBankVerification(ctx.Request().Context(), principal, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "reviewing bank verification")
	}
	return ctx.JSON(http.StatusOK, bv)
}

func (api *verificationApi) resubmitBankVerification(ctx echo.Context) error {
	principal, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	var data verification.Resubmit
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Resubmit")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	bv, err := api.svc.ResubmitBankVerification(ctx.Request().Context(), principal, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "resubmitting bank verification")
	}
	return ctx.JSON(http.StatusOK, bv)
}

// ReviewDocumentRequest carries the reviewer's decision along with the
// startup the caller believes the document belongs to; the two are
// cross-checked server side.
type ReviewDocumentRequest struct {
	StartupID string `json:"startup_id"`
	Decision  string `json:"status"`
}
