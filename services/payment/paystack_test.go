package paymentsvc

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oosplatform/oos/core"
)

func newService(t *testing.T, handler http.HandlerFunc) *paystackService {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewPaystackService(&core.Config{
		Paystack: core.PaystackConfig{BaseURL: server.URL, SecretKey: "sk_test_xyz"},
	})
}

func TestPaystackService_VerifyTransaction(t *testing.T) {
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transaction/verify/ref-001", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_xyz", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{
			"status": true,
			"message": "Verification successful",
			"data": {
				"reference": "ref-001",
				"amount": 50000,
				"currency": "NGN",
				"status": "success",
				"customer": {"email": "donor@test.cd"},
				"metadata": {"startup_id": "startup-1"}
			}
		}`))
	})

	txn, err := svc.VerifyTransaction(context.Background(), "ref-001")
	require.NoError(t, err)
	assert.Equal(t, "ref-001", txn.Reference)
	assert.Equal(t, "success", txn.Status)
	assert.Equal(t, "NGN", txn.Currency)
	assert.Equal(t, "donor@test.cd", txn.CustomerEmail)
	assert.Equal(t, "startup-1", txn.StartupID)
	// 50000 kobo is 500 naira
	assert.True(t, txn.Amount.Equal(decimal.NewFromInt(500)), "amount = %s", txn.Amount)
}

func TestPaystackService_VerifyTransaction_upstreamErrors(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       string
		wantReason string
	}{
		{name: "bad key", statusCode: http.StatusUnauthorized, wantReason: "invalid_credentials"},
		{name: "throttled", statusCode: http.StatusTooManyRequests, wantReason: "rate_limited"},
		{name: "gateway down", statusCode: http.StatusBadGateway, wantReason: "unavailable"},
		{name: "unknown reference", statusCode: http.StatusOK, body: `{"status": false, "message": "Transaction reference not found"}`, wantReason: "verification_failed"},
		{name: "garbage body", statusCode: http.StatusOK, body: "<html>", wantReason: "bad_response"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := svc.VerifyTransaction(context.Background(), "ref-001")
			require.Error(t, err)
			upErr, ok := err.(*core.UpstreamError)
			require.True(t, ok, "err = %T", err)
			assert.Equal(t, serviceName, upErr.Service)
			assert.Equal(t, tt.wantReason, upErr.Reason)
		})
	}
}

func TestPaystackService_VerifyWebhookSignature(t *testing.T) {
	svc := NewPaystackService(&core.Config{
		Paystack: core.PaystackConfig{SecretKey: "sk_test_xyz"},
	})
	body := []byte(`{"event":"charge.success","data":{"reference":"ref-001"}}`)

	mac := hmac.New(sha512.New, []byte("sk_test_xyz"))
	mac.Write(body)
	signature := hex.EncodeToString(mac.Sum(nil))

	assert.True(t, svc.VerifyWebhookSignature(body, signature))
	assert.False(t, svc.VerifyWebhookSignature(body, "deadbeef"))
	assert.False(t, svc.VerifyWebhookSignature(body, ""))
	// a tampered body no longer matches the digest
	assert.False(t, svc.VerifyWebhookSignature(append(body, ' '), signature))
}

func TestParseWebhook(t *testing.T) {
	event, err := ParseWebhook([]byte(`{
		"event": "charge.success",
		"data": {
			"reference": "ref-001",
			"amount": 50000,
			"currency": "NGN",
			"status": "success",
			"customer": {"email": "donor@test.cd"},
			"metadata": {"startup_id": "startup-1"}
		}
	}`))
	require.NoError(t, err)
	assert.Equal(t, "charge.success", event.Event)
	assert.Equal(t, "ref-001", event.Data.Reference)
	assert.Equal(t, int64(50000), event.Data.Amount)
	assert.Equal(t, "donor@test.cd", event.Data.Customer.Email)
	assert.Equal(t, "startup-1", event.Data.Metadata.StartupID)

	_, err = ParseWebhook([]byte("not json"))
	assert.Error(t, err)
}
