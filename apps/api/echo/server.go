package echoapi

import (
	"context"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/oosplatform/oos/core"
	"github.com/oosplatform/oos/core/assistant"
	"github.com/oosplatform/oos/core/auth"
	"github.com/oosplatform/oos/core/donation"
	"github.com/oosplatform/oos/core/meeting"
	"github.com/oosplatform/oos/core/startup"
	"github.com/oosplatform/oos/core/verification"
	"github.com/oosplatform/oos/core/workspace"
)

type (
	// WebhookVerifier authenticates raw gateway webhook bodies.
	WebhookVerifier interface {
		VerifyWebhookSignature(body []byte, signature string) bool
	}

	Options struct {
		Address        string
		DisableReqLogs bool

		Conf       *core.Config
		Logger     core.Logger
		Validate   *validator.Validate
		Translator ut.Translator

		AuthSvc         *auth.Service
		WorkspaceSvc    *workspace.Service
		StartupSvc      *startup.Service
		VerificationSvc *verification.Service
		DonationSvc     *donation.Service
		MeetingSvc      *meeting.Service
		AssistantSvc    *assistant.Service

		Payment   WebhookVerifier
		FileStore core.FileStore

		SignalShutdown func()
	}

	Server interface {
		http.Handler
		Start()
		Stop(context.Context) error
	}

	server struct {
		opts *Options
		app  *echo.Echo
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	initJWTConfig(opts.Conf)
	s := &server{
		opts: opts,
		app:  echo.New(),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.opts.Conf

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.opts.Translator, s.opts.SignalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(appJWTConfig)

	registerAuthAPI(v1, jwt, s.opts)
	registerAdminAPI(v1, jwt, s.opts)
	registerWorkspaceAPI(v1, jwt, s.opts)
	registerStartupAPI(v1, jwt, s.opts)
	registerVerificationAPI(v1, jwt, s.opts)
	registerDonationAPI(v1, jwt, s.opts)
	registerMeetingAPI(v1, jwt, s.opts)
	registerAssistantAPI(v1, jwt, s.opts)
	registerFileAPI(v1, jwt, s.opts)
}

func (s *server) Start() {
	s.app.Logger.Fatal(s.app.Start(s.opts.Address))
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to OOS API!")
}
