package paymentsvc

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/oosplatform/oos/core"
	"github.com/oosplatform/oos/core/donation"
)

const serviceName = "paystack"

// SignatureHeader carries the HMAC-SHA512 hex digest of the raw webhook
// body, keyed with the account's secret key.
const SignatureHeader = "x-paystack-signature"

type (
	paystackService struct {
		baseURL   string
		secretKey string
		client    *http.Client
	}

	// verifyResponse mirrors the gateway's transaction verify payload.
	// Amounts are in the currency's minor unit.
	verifyResponse struct {
		Status  bool   `json:"status"`
		Message string `json:"message"`
		Data    struct {
			Reference string `json:"reference"`
			Amount    int64  `json:"amount"`
			Currency  string `json:"currency"`
			Status    string `json:"status"`
			Customer  struct {
				Email string `json:"email"`
			} `json:"customer"`
			Metadata struct {
				StartupID string `json:"startup_id"`
			} `json:"metadata"`
		} `json:"data"`
	}

	// WebhookEvent is the parsed body of a gateway webhook call.
	WebhookEvent struct {
		Event string `json:"event"`
		Data  struct {
			Reference string `json:"reference"`
			Amount    int64  `json:"amount"`
			Currency  string `json:"currency"`
			Status    string `json:"status"`
			Customer  struct {
				Email string `json:"email"`
			} `json:"customer"`
			Metadata struct {
				StartupID string `json:"startup_id"`
			} `json:"metadata"`
		} `json:"data"`
	}
)

var _ donation.Gateway = (*paystackService)(nil)

func NewPaystackService(conf *core.Config) *paystackService {
	return &paystackService{
		baseURL:   conf.Paystack.BaseURL,
		secretKey: conf.Paystack.SecretKey,
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (svc paystackService) Provider() string { return serviceName }

func (svc paystackService) VerifyTransaction(ctx context.Context, reference string) (donation.GatewayTransaction, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, svc.baseURL+"/transaction/verify/"+reference, nil)
	if err != nil {
		return donation.GatewayTransaction{}, errors.Wrap(err, "building verify request")
	}
	req.Header.Set("Authorization", "Bearer "+svc.secretKey)

	res, err := svc.client.Do(req)
	if err != nil {
		return donation.GatewayTransaction{}, core.NewUpstreamError(serviceName, "unreachable", err)
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusUnauthorized:
		return donation.GatewayTransaction{}, core.NewUpstreamError(serviceName, "invalid_credentials", errors.Errorf("status %d", res.StatusCode))
	case res.StatusCode == http.StatusTooManyRequests:
		return donation.GatewayTransaction{}, core.NewUpstreamError(serviceName, "rate_limited", errors.Errorf("status %d", res.StatusCode))
	case res.StatusCode >= http.StatusInternalServerError:
		return donation.GatewayTransaction{}, core.NewUpstreamError(serviceName, "unavailable", errors.Errorf("status %d", res.StatusCode))
	}

	var body verifyResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return donation.GatewayTransaction{}, core.NewUpstreamError(serviceName, "bad_response", err)
	}
	if !body.Status {
		return donation.GatewayTransaction{}, core.NewUpstreamError(serviceName, "verification_failed", errors.New(body.Message))
	}

	return donation.GatewayTransaction{
		Reference:     body.Data.Reference,
		Status:        body.Data.Status,
		Amount:        decimal.New(body.Data.Amount, -2), // minor units
		Currency:      body.Data.Currency,
		CustomerEmail: body.Data.Customer.Email,
		StartupID:     body.Data.Metadata.StartupID,
	}, nil
}

// VerifyWebhookSignature checks the digest sent with a webhook against the
// raw body. Callers must reject the event when this returns false.
func (svc paystackService) VerifyWebhookSignature(body []byte, signature string) bool {
	mac := hmac.New(sha512.New, []byte(svc.secretKey))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

func ParseWebhook(body []byte) (WebhookEvent, error) {
	var event WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return WebhookEvent{}, errors.Wrap(err, "parsing webhook body")
	}
	return event, nil
}
