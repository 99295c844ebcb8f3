package donation_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oosplatform/oos/core"
	"github.com/oosplatform/oos/core/auth"
	"github.com/oosplatform/oos/core/donation"
	"github.com/oosplatform/oos/core/startup"
	dummydb "github.com/oosplatform/oos/storage/database/dummy"
)

var founder = auth.Principal{ID: "founder", Email: "founder@test.cd"}

// fakeGateway serves canned transactions keyed by reference.
type fakeGateway struct {
	txns map[string]donation.GatewayTransaction
}

var _ donation.Gateway = (*fakeGateway)(nil)

func (g *fakeGateway) Provider() string { return "paystack" }

func (g *fakeGateway) VerifyTransaction(_ context.Context, reference string) (donation.GatewayTransaction, error) {
	txn, ok := g.txns[reference]
	if !ok {
		return donation.GatewayTransaction{}, core.NewUpstreamError("paystack", "transaction_not_found", nil)
	}
	return txn, nil
}

func setup(t *testing.T) (*donation.Service, donation.Repository, startup.Startup, *fakeGateway) {
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	repo := dummydb.NewDonationRepository(db)
	startupRepo := dummydb.NewStartupRepository(db)
	gateway := &fakeGateway{txns: make(map[string]donation.GatewayTransaction)}
	svc := donation.NewService(nil, repo, startupRepo, gateway)

	s, err := startup.NewService(nil, startupRepo).Register(context.Background(), founder, startup.NewStartup{
		Name:  "RiverCargo",
		Pitch: "Cargo across the river.",
	})
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	return svc, repo, s, gateway
}

func amt(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestSplitFee(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		wantFee string
		wantNet string
	}{
		{name: "round figure", amount: "100", wantFee: "16", wantNet: "84"},
		{name: "small amount", amount: "1", wantFee: "0.16", wantNet: "0.84"},
		{name: "two decimals", amount: "33.33", wantFee: "5.33", wantNet: "28"},
		{name: "rounds down", amount: "10.01", wantFee: "1.6", wantNet: "8.41"},
		{name: "half rounds to even (down)", amount: "6.28125", wantFee: "1", wantNet: "5.28125"},
		{name: "half rounds to even (up)", amount: "6.34375", wantFee: "1.02", wantNet: "5.32375"},
		{name: "zero", amount: "0", wantFee: "0", wantNet: "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fee, net := donation.SplitFee(amt(tt.amount))
			assert.True(t, fee.Equal(amt(tt.wantFee)), "fee = %s, want %s", fee, tt.wantFee)
			assert.True(t, net.Equal(amt(tt.wantNet)), "net = %s, want %s", net, tt.wantNet)
		})
	}
}

func TestService_Record(t *testing.T) {
	ctx := context.Background()
	svc, _, s, _ := setup(t)

	nd := donation.NewDonation{
		StartupID:  s.ID,
		DonorEmail: "donor@test.cd",
		Amount:     amt("250"),
		Provider:   "paystack",
		Reference:  "ref-001",
	}
	d, err := svc.Record(ctx, nd)
	require.NoError(t, err)
	assert.NotEmpty(t, d.ID)
	assert.Equal(t, donation.StatusCompleted, d.Status)
	assert.True(t, d.Amount.Equal(amt("250")))
	assert.True(t, d.FeePercentage.Equal(amt("16")))
	assert.True(t, d.NetAmount.Equal(amt("210")))

	// the (provider, reference) pair is unique; a retried webhook cannot
	// double-record
	_, err = svc.Record(ctx, nd)
	assert.IsType(t, &core.ConflictError{}, err)
	count, err := svc.Count(ctx, s.ID, donation.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// below the minimum
	nd.Reference = "ref-002"
	nd.Amount = amt("0.99")
	_, err = svc.Record(ctx, nd)
	assert.IsType(t, &core.ValidationError{}, err)

	// unknown startup
	nd.StartupID = "missing"
	nd.Amount = amt("10")
	_, err = svc.Record(ctx, nd)
	assert.Equal(t, startup.ErrNotFound, err)
}

func TestService_VerifyAndRecord(t *testing.T) {
	ctx := context.Background()
	svc, _, s, gateway := setup(t)

	gateway.txns["ok-ref"] = donation.GatewayTransaction{
		Reference:     "ok-ref",
		Status:        "success",
		Amount:        amt("500"),
		Currency:      "NGN",
		CustomerEmail: "donor@test.cd",
	}
	gateway.txns["abandoned-ref"] = donation.GatewayTransaction{
		Reference: "abandoned-ref",
		Status:    "abandoned",
		Amount:    amt("500"),
	}

	// the gateway's amount goes on the ledger, and the customer email fills
	// in when the caller gave none
	d, err := svc.VerifyAndRecord(ctx, s.ID, "", "ok-ref")
	require.NoError(t, err)
	assert.Equal(t, donation.StatusCompleted, d.Status)
	assert.Equal(t, "donor@test.cd", d.DonorEmail)
	assert.Equal(t, "paystack", d.Provider)
	assert.True(t, d.Amount.Equal(amt("500")))
	assert.True(t, d.NetAmount.Equal(amt("420")))

	// unsuccessful payments are never recorded
	_, err = svc.VerifyAndRecord(ctx, s.ID, "", "abandoned-ref")
	assert.IsType(t, &core.ValidationError{}, err)

	// gateway failures surface as upstream errors
	_, err = svc.VerifyAndRecord(ctx, s.ID, "", "missing-ref")
	assert.IsType(t, &core.UpstreamError{}, err)

	count, err := svc.Count(ctx, s.ID, "")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestService_VerifyAndRecord_startupMetadata(t *testing.T) {
	ctx := context.Background()
	svc, _, s, gateway := setup(t)

	gateway.txns["tagged-ref"] = donation.GatewayTransaction{
		Reference:     "tagged-ref",
		Status:        "success",
		Amount:        amt("200"),
		CustomerEmail: "donor@test.cd",
		StartupID:     s.ID,
	}

	// a reference checked out for one startup cannot be recorded against
	// another startup's ledger
	_, err := svc.VerifyAndRecord(ctx, "someone-else", "", "tagged-ref")
	require.IsType(t, &core.ValidationError{}, err)
	assert.Equal(t, donation.ErrStartupMismatch, err.(*core.ValidationError).Err)
	count, err := svc.Count(ctx, s.ID, "")
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	// the transaction's own metadata fills in a missing startup id
	d, err := svc.VerifyAndRecord(ctx, "", "", "tagged-ref")
	require.NoError(t, err)
	assert.Equal(t, s.ID, d.StartupID)

	count, err = svc.Count(ctx, s.ID, donation.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestService_totals(t *testing.T) {
	ctx := context.Background()
	svc, repo, s, _ := setup(t)

	_, err := svc.Record(ctx, donation.NewDonation{
		StartupID: s.ID, DonorEmail: "a@test.cd", Amount: amt("50"), Provider: "paystack", Reference: "ref-a",
	})
	require.NoError(t, err)
	_, err = svc.Record(ctx, donation.NewDonation{
		StartupID: s.ID, DonorEmail: "b@test.cd", Amount: amt("30"), Provider: "paystack", Reference: "ref-b",
	})
	require.NoError(t, err)

	// pending rows never count towards the totals
	_, err = repo.CreateDonation(ctx, donation.Donation{
		StartupID:     s.ID,
		DonorEmail:    "c@test.cd",
		Amount:        amt("1000"),
		FeePercentage: donation.FeePercentage,
		NetAmount:     amt("840"),
		Status:        donation.StatusPending,
		Provider:      "paystack",
		Reference:     "ref-c",
		CreatedAt:     time.Now().UTC(),
	})
	require.NoError(t, err)

	total, err := svc.TotalRaised(ctx, s.ID)
	require.NoError(t, err)
	assert.True(t, total.Equal(amt("80")), "total = %s", total)

	net, err := svc.NetTotal(ctx, s.ID)
	require.NoError(t, err)
	assert.True(t, net.Equal(amt("67.2")), "net = %s", net)

	count, err := svc.Count(ctx, s.ID, donation.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	count, err = svc.Count(ctx, s.ID, "")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestService_transitions(t *testing.T) {
	ctx := context.Background()
	svc, repo, s, _ := setup(t)

	pending, err := repo.CreateDonation(ctx, donation.Donation{
		StartupID:  s.ID,
		DonorEmail: "a@test.cd",
		Amount:     amt("10"),
		NetAmount:  amt("8.4"),
		Status:     donation.StatusPending,
		Provider:   "paystack",
		Reference:  "ref-t1",
		CreatedAt:  time.Now().UTC(),
	})
	require.NoError(t, err)

	// pending donations cannot be refunded
	_, err = svc.Refund(ctx, pending.ID)
	assert.IsType(t, &core.ConflictError{}, err)

	d, err := svc.MarkCompleted(ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, donation.StatusCompleted, d.Status)

	// completed donations cannot fail
	_, err = svc.MarkFailed(ctx, d.ID)
	assert.IsType(t, &core.ConflictError{}, err)

	d, err = svc.Refund(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, donation.StatusRefunded, d.Status)

	// refunded is terminal
	_, err = svc.MarkCompleted(ctx, d.ID)
	assert.IsType(t, &core.ConflictError{}, err)
}
