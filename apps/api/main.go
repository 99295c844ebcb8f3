package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	echoapi "github.com/oosplatform/oos/apps/api/echo"
	"github.com/oosplatform/oos/core"
	"github.com/oosplatform/oos/core/assistant"
	"github.com/oosplatform/oos/core/auth"
	"github.com/oosplatform/oos/core/donation"
	"github.com/oosplatform/oos/core/meeting"
	"github.com/oosplatform/oos/core/startup"
	"github.com/oosplatform/oos/core/verification"
	"github.com/oosplatform/oos/core/workspace"
	aisvc "github.com/oosplatform/oos/services/ai"
	emailsvc "github.com/oosplatform/oos/services/email"
	filestoresvc "github.com/oosplatform/oos/services/filestore"
	logsvc "github.com/oosplatform/oos/services/logger"
	paymentsvc "github.com/oosplatform/oos/services/payment"
	videosvc "github.com/oosplatform/oos/services/video"
	"github.com/oosplatform/oos/storage/database"
	sqlxrepos "github.com/oosplatform/oos/storage/database/sqlx"
)

func main() {
	std := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(std, conf)
	logger.Enable(!conf.Debug)

	if err := run(conf, logger); err != nil {
		logger.Fatal("starting api", err)
	}
}

func run(conf *core.Config, logger core.Logger) error {
	// validation & translation
	translator, _ := ut.New(en.New()).GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)

	// set up DB
	db, err := database.Open(conf)
	if err != nil {
		return err
	}
	defer db.Close()

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	var generator assistant.Generator
	if conf.Assistant.StubMode {
		generator = aisvc.NewStubService()
	} else {
		generator = aisvc.NewGeminiService(conf)
	}

	var fileStore core.FileStore
	if conf.Debug {
		fileStore = filestoresvc.NewLocalService(conf)
	} else {
		fileStore = filestoresvc.NewHTTPService(conf)
	}

	payment := paymentsvc.NewPaystackService(conf)
	videoTokens := videosvc.NewTokenService(conf)

	// repositories & domain services
	authSvc := auth.NewService(db, sqlxrepos.NewAdminGrantRepository(db), auth.OpenSelfService{})
	workspaceSvc := workspace.NewService(db, sqlxrepos.NewWorkspaceRepository(db), authSvc, mailSvc, conf)
	startupRepo := sqlxrepos.NewStartupRepository(db)
	startupSvc := startup.NewService(db, startupRepo)
	verificationSvc := verification.NewService(db, sqlxrepos.NewVerificationRepository(db), startupRepo, authSvc)
	donationSvc := donation.NewService(db, sqlxrepos.NewDonationRepository(db), startupRepo, payment)
	meetingSvc := meeting.NewService(sqlxrepos.NewMeetingRepository(db), workspaceSvc, videoTokens)
	assistantSvc := assistant.NewService(sqlxrepos.NewContentRepository(db), generator, workspaceSvc, startupSvc)

	// start API server
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	app := echoapi.NewServer(&echoapi.Options{
		Address:    fmt.Sprintf(":%d", conf.Server.Port),
		Conf:       conf,
		Logger:     logger,
		Validate:   validate,
		Translator: translator,

		AuthSvc:         authSvc,
		WorkspaceSvc:    workspaceSvc,
		StartupSvc:      startupSvc,
		VerificationSvc: verificationSvc,
		DonationSvc:     donationSvc,
		MeetingSvc:      meetingSvc,
		AssistantSvc:    assistantSvc,

		Payment:   payment,
		FileStore: fileStore,

		SignalShutdown: func() { shutdown <- syscall.SIGTERM },
	})
	go app.Start()

	<-shutdown
	logger.Info("shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
	defer cancel()
	return app.Stop(ctx)
}
