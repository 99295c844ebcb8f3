package echoapi

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"io/ioutil"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oosplatform/oos/core"
	"github.com/oosplatform/oos/core/assistant"
	"github.com/oosplatform/oos/core/auth"
	"github.com/oosplatform/oos/core/donation"
	"github.com/oosplatform/oos/core/meeting"
	"github.com/oosplatform/oos/core/startup"
	"github.com/oosplatform/oos/core/verification"
	"github.com/oosplatform/oos/core/workspace"
	aisvc "github.com/oosplatform/oos/services/ai"
	logsvc "github.com/oosplatform/oos/services/logger"
	dummydb "github.com/oosplatform/oos/storage/database/dummy"
)

const webhookSecret = "sk_test_webhook"

// fakeGateway doubles as donation.Gateway and WebhookVerifier for tests.
type fakeGateway struct {
	txns map[string]donation.GatewayTransaction
}

func (g *fakeGateway) Provider() string { return "paystack" }

func (g *fakeGateway) VerifyTransaction(_ context.Context, reference string) (donation.GatewayTransaction, error) {
	txn, ok := g.txns[reference]
	if !ok {
		return donation.GatewayTransaction{}, core.NewUpstreamError("paystack", "transaction_not_found", nil)
	}
	return txn, nil
}

func (g *fakeGateway) VerifyWebhookSignature(body []byte, signature string) bool {
	mac := hmac.New(sha512.New, []byte(webhookSecret))
	mac.Write(body)
	return hmac.Equal([]byte(hex.EncodeToString(mac.Sum(nil))), []byte(signature))
}

func signBody(body []byte) string {
	mac := hmac.New(sha512.New, []byte(webhookSecret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

type testApp struct {
	server       Server
	donationRepo donation.Repository
	startupSvc   *startup.Service
	gateway      *fakeGateway
}

func setupServer(t *testing.T) *testApp {
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("setupServer() failed: %v", err)
	}

	conf := &core.Config{
		AppName:   "OOS",
		TestMode:  true,
		SecretKey: "test-secret",
		Server: core.ServerConfig{
			JWTExpirationDelta:        time.Hour,
			JWTRefreshExpirationDelta: 24 * time.Hour,
		},
	}
	translator, _ := ut.New(en.New()).GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)

	gateway := &fakeGateway{txns: make(map[string]donation.GatewayTransaction)}

	authSvc := auth.NewService(nil, dummydb.NewAdminGrantRepository(db), nil)
	wsSvc := workspace.NewService(nil, dummydb.NewWorkspaceRepository(db), authSvc, nil, conf)
	startupRepo := dummydb.NewStartupRepository(db)
	startupSvc := startup.NewService(nil, startupRepo)
	verificationSvc := verification.NewService(nil, dummydb.NewVerificationRepository(db), startupRepo, authSvc)
	donationRepo := dummydb.NewDonationRepository(db)
	donationSvc := donation.NewService(nil, donationRepo, startupRepo, gateway)
	meetingSvc := meeting.NewService(dummydb.NewMeetingRepository(db), wsSvc, nil)
	assistantSvc := assistant.NewService(dummydb.NewContentRepository(db), aisvc.NewStubService(), wsSvc, startupSvc)

	logger := logsvc.NewRollbarLogger(log.New(ioutil.Discard, "", 0), conf)

	server := NewServer(&Options{
		DisableReqLogs:  true,
		Conf:            conf,
		Logger:          logger,
		Validate:        validate,
		Translator:      translator,
		AuthSvc:         authSvc,
		WorkspaceSvc:    wsSvc,
		StartupSvc:      startupSvc,
		VerificationSvc: verificationSvc,
		DonationSvc:     donationSvc,
		MeetingSvc:      meetingSvc,
		AssistantSvc:    assistantSvc,
		Payment:         gateway,
		SignalShutdown:  func() {},
	})
	return &testApp{server: server, donationRepo: donationRepo, startupSvc: startupSvc, gateway: gateway}
}

func getToken(t *testing.T, p auth.Principal) string {
	token, err := GenerateToken(GetPrincipalClaims(p))
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func (app *testApp) request(method, path, token string, body []byte, headers ...map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	for _, hdrs := range headers {
		for k, v := range hdrs {
			req.Header.Set(k, v)
		}
	}
	rec := httptest.NewRecorder()
	app.server.ServeHTTP(rec, req)
	return rec
}

func TestServer_home(t *testing.T) {
	app := setupServer(t)
	rec := app.request(http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Welcome to OOS API!", rec.Body.String())
}

func TestServer_authRequired(t *testing.T) {
	app := setupServer(t)

	rec := app.request(http.MethodGet, "/v1/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = app.request(http.MethodGet, "/v1/auth/me", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestServer_badgeAndWorkspaceFlow(t *testing.T) {
	app := setupServer(t)
	alice := auth.Principal{ID: "alice", Email: "alice@test.cd", Name: "Alice"}
	token := getToken(t, alice)

	// workspace creation is closed until the badge is granted
	rec := app.request(http.MethodPost, "/v1/workspaces", token, []byte(`{"name": "Acme"}`))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// no badge yet
	rec = app.request(http.MethodGet, "/v1/admin/badge", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var badge map[string]bool
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &badge))
	assert.False(t, badge["is_admin"])

	// self-grant
	rec = app.request(http.MethodPost, "/v1/admin/badge", token, []byte(`{}`))
	require.Equal(t, http.StatusCreated, rec.Code)

	// granting twice conflicts
	rec = app.request(http.MethodPost, "/v1/admin/badge", token, []byte(`{}`))
	assert.Equal(t, http.StatusConflict, rec.Code)

	// now the workspace can be created
	rec = app.request(http.MethodPost, "/v1/workspaces", token, []byte(`{"name": "Acme"}`))
	require.Equal(t, http.StatusCreated, rec.Code)
	var ws workspace.Workspace
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ws))
	assert.Equal(t, "Acme", ws.Name)
	assert.Equal(t, alice.ID, ws.AdminID)

	// and the badge listing is open to holders
	rec = app.request(http.MethodGet, "/v1/admin/badges", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var grants []auth.AdminGrant
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &grants))
	assert.Len(t, grants, 1)
}

func TestServer_donationWebhook(t *testing.T) {
	ctx := context.Background()
	app := setupServer(t)
	founder := auth.Principal{ID: "founder", Email: "founder@test.cd"}

	s, err := app.startupSvc.Register(ctx, founder, startup.NewStartup{Name: "RiverCargo", Pitch: "Cargo."})
	require.NoError(t, err)

	app.gateway.txns["ref-001"] = donation.GatewayTransaction{
		Reference:     "ref-001",
		Status:        "success",
		Amount:        decimal.NewFromInt(500),
		Currency:      "NGN",
		CustomerEmail: "donor@test.cd",
		StartupID:     s.ID,
	}

	body := []byte(`{
		"event": "charge.success",
		"data": {
			"reference": "ref-001",
			"amount": 50000,
			"customer": {"email": "donor@test.cd"},
			"metadata": {"startup_id": "` + s.ID + `"}
		}
	}`)

	// a bad signature never writes
	rec := app.request(http.MethodPost, "/v1/donations/webhook", "", body,
		map[string]string{"x-paystack-signature": "deadbeef"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	donations, err := app.donationRepo.QueryDonations(ctx, s.ID)
	require.NoError(t, err)
	assert.Empty(t, donations)

	// a signed charge.success is verified against the gateway and recorded
	rec = app.request(http.MethodPost, "/v1/donations/webhook", "", body,
		map[string]string{"x-paystack-signature": signBody(body)})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var d donation.Donation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))
	assert.Equal(t, donation.StatusCompleted, d.Status)
	assert.True(t, d.Amount.Equal(decimal.NewFromInt(500)))
	assert.True(t, d.NetAmount.Equal(decimal.NewFromInt(420)))

	// a replayed webhook is acknowledged so the gateway stops retrying, but
	// never double-records
	rec = app.request(http.MethodPost, "/v1/donations/webhook", "", body,
		map[string]string{"x-paystack-signature": signBody(body)})
	assert.Equal(t, http.StatusOK, rec.Code)
	donations, err = app.donationRepo.QueryDonations(ctx, s.ID)
	require.NoError(t, err)
	assert.Len(t, donations, 1)

	// other events are acknowledged without writing
	other := []byte(`{"event": "charge.dispute.create", "data": {"reference": "ref-002"}}`)
	rec = app.request(http.MethodPost, "/v1/donations/webhook", "", other,
		map[string]string{"x-paystack-signature": signBody(other)})
	assert.Equal(t, http.StatusOK, rec.Code)
	donations, err = app.donationRepo.QueryDonations(ctx, s.ID)
	require.NoError(t, err)
	assert.Len(t, donations, 1)
}

func TestServer_donationVerify_attribution(t *testing.T) {
	ctx := context.Background()
	app := setupServer(t)
	founder := auth.Principal{ID: "founder", Email: "founder@test.cd"}

	s, err := app.startupSvc.Register(ctx, founder, startup.NewStartup{Name: "RiverCargo", Pitch: "Cargo."})
	require.NoError(t, err)

	app.gateway.txns["ref-100"] = donation.GatewayTransaction{
		Reference:     "ref-100",
		Status:        "success",
		Amount:        decimal.NewFromInt(100),
		CustomerEmail: "donor@test.cd",
		StartupID:     s.ID,
	}

	// a valid reference cannot be attributed to a different startup
	rec := app.request(http.MethodPost, "/v1/donations/verify", "",
		[]byte(`{"startup_id": "someone-else", "payment_reference": "ref-100"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	donations, err := app.donationRepo.QueryDonations(ctx, s.ID)
	require.NoError(t, err)
	assert.Empty(t, donations)

	rec = app.request(http.MethodPost, "/v1/donations/verify", "",
		[]byte(`{"startup_id": "`+s.ID+`", "payment_reference": "ref-100"}`))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var d donation.Donation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))
	assert.Equal(t, s.ID, d.StartupID)
}

func TestServer_startupStats(t *testing.T) {
	ctx := context.Background()
	app := setupServer(t)
	founder := auth.Principal{ID: "founder", Email: "founder@test.cd"}
	token := getToken(t, founder)

	rec := app.request(http.MethodPost, "/v1/startups", token,
		[]byte(`{"name": "RiverCargo", "pitch": "Cargo across the river."}`))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var s startup.Startup
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &s))

	_, err := app.donationRepo.CreateDonation(ctx, donation.Donation{
		StartupID:     s.ID,
		DonorEmail:    "donor@test.cd",
		Amount:        decimal.NewFromInt(80),
		FeePercentage: donation.FeePercentage,
		NetAmount:     decimal.RequireFromString("67.2"),
		Status:        donation.StatusCompleted,
		Provider:      "paystack",
		Reference:     "ref-stats",
		CreatedAt:     time.Now().UTC(),
	})
	require.NoError(t, err)

	// stats are public
	rec = app.request(http.MethodGet, "/v1/startups/"+s.ID+"/stats", "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var stats startup.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.True(t, stats.TotalRaised.Equal(decimal.NewFromInt(80)))
	assert.Equal(t, 1, stats.DonationCount)
	assert.Zero(t, stats.SubscriberCount)
}
