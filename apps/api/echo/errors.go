package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/oosplatform/oos/core"
	"github.com/oosplatform/oos/core/assistant"
	"github.com/oosplatform/oos/core/auth"
	"github.com/oosplatform/oos/core/donation"
	"github.com/oosplatform/oos/core/meeting"
	"github.com/oosplatform/oos/core/startup"
	"github.com/oosplatform/oos/core/verification"
	"github.com/oosplatform/oos/core/workspace"
)

var (
	errUnauthorized     = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errRefreshExpired   = echo.NewHTTPError(http.StatusForbidden, "refresh has expired")
	errHttpForbidden    = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errHttpNotFound     = echo.NewHTTPError(http.StatusNotFound, "not found")
	errInvalidSignature = echo.NewHTTPError(http.StatusUnauthorized, "invalid webhook signature")
)

// notFoundErrs are domain sentinels that map to a 404.
var notFoundErrs = []error{
	auth.ErrNotFound,
	workspace.ErrNotFound,
	workspace.ErrMemberNotFound,
	workspace.ErrInviteNotFound,
	startup.ErrNotFound,
	startup.ErrCommentNotFound,
	verification.ErrDocumentNotFound,
	verification.ErrBankNotFound,
	donation.ErrNotFound,
	meeting.ErrNotFound,
	assistant.ErrNotFound,
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		cause := errors.Cause(err)
		switch origErr := cause.(type) {
		case *echo.HTTPError:
			if origErr == middleware.ErrJWTMissing {
				code = http.StatusUnauthorized
				message = origErr.Message
				break
			}
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(translator)
			}
			code = http.StatusBadRequest
			message = fldErrs
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		case *core.ConflictError:
			code = http.StatusConflict
			message = origErr.Error()
		case *core.UpstreamError:
			code = http.StatusBadGateway
			message = origErr.Error()
		default:
			if cause == auth.ErrForbidden {
				code = http.StatusForbidden
				message = errHttpForbidden.Message
				break
			}
			if isNotFound(cause) {
				code = http.StatusNotFound
				message = errHttpNotFound.Message
				break
			}

			// any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg

			var principal auth.Principal
			if claims, cErr := getContextClaims(ctx); cErr == nil {
				principal.ID = claims.Subject
				principal.Name = claims.Name
				principal.Email = claims.Email
			}
			logger.Error(msg, errors.Wrap(err, msg), principal)

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if ctx.Echo().Debug {
			message = err.Error()
		} else if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}

func isNotFound(cause error) bool {
	for _, sentinel := range notFoundErrs {
		if cause == sentinel {
			return true
		}
	}
	return false
}
