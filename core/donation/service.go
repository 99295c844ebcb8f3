package donation

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/oosplatform/oos/core"
	"github.com/oosplatform/oos/core/startup"
)

var (
	// errors
	ErrNotFound           = errors.New("donation not found")
	ErrDuplicateReference = errors.New("a donation with this payment reference already exists")
	ErrAmountTooSmall     = errors.New("minimum donation amount is 1")
	ErrPaymentNotSuccess  = errors.New("payment was not successful")
	ErrStartupMismatch    = errors.New("payment was made for a different startup")
	ErrBadTransition      = errors.New("invalid donation status transition")
)

type (
	// GatewayTransaction is the gateway's own record of a payment.
	// StartupID is the startup the checkout was initialized for, carried in
	// the transaction metadata.
	GatewayTransaction struct {
		Reference     string
		Status        string // "success", "failed", "abandoned"
		Amount        decimal.Decimal
		Currency      string
		CustomerEmail string
		StartupID     string
	}

	// Gateway verifies payment references against the provider's API.
	// Verification happens server-side; a client-asserted status is never
	// trusted on its own.
	Gateway interface {
		Provider() string
		VerifyTransaction(ctx context.Context, reference string) (GatewayTransaction, error)
	}

	Repository interface {
		// CreateDonation fails with ErrDuplicateReference when a row with
		// the same (provider, reference) pair already exists.
		CreateDonation(ctx context.Context, d Donation, exec ...core.DBExecutor) (Donation, error)
		GetDonation(ctx context.Context, id string, exec ...core.DBExecutor) (Donation, error)
		QueryDonations(ctx context.Context, startupID string, exec ...core.DBExecutor) ([]Donation, error)
		UpdateDonationStatus(ctx context.Context, id, status string, exec ...core.DBExecutor) (Donation, error)
		// SumCompletedAmounts recomputes the raised total from the ledger
		// at read time; nothing is cached.
		SumCompletedAmounts(ctx context.Context, startupID string, exec ...core.DBExecutor) (decimal.Decimal, error)
		SumCompletedNetAmounts(ctx context.Context, startupID string, exec ...core.DBExecutor) (decimal.Decimal, error)
		CountDonations(ctx context.Context, startupID, status string, exec ...core.DBExecutor) (int, error)
	}

	StartupStore interface {
		GetStartup(ctx context.Context, id string, exec ...core.DBExecutor) (startup.Startup, error)
	}

	Service struct {
		db       core.DB
		repo     Repository
		startups StartupStore
		gateway  Gateway
	}
)

func NewService(db core.DB, repo Repository, startups StartupStore, gateway Gateway) *Service {
	return &Service{db: db, repo: repo, startups: startups, gateway: gateway}
}

// Record writes a completed donation with the fixed commission split
// applied. The (provider, reference) pair is unique: a retried webhook
// cannot double-record.
func (svc *Service) Record(ctx context.Context, nd NewDonation) (Donation, error) {
	if nd.Amount.LessThan(MinAmount) {
		return Donation{}, core.NewValidationError(ErrAmountTooSmall,
			core.FieldError{Field: "amount", Error: ErrAmountTooSmall.Error()})
	}
	if _, err := svc.startups.GetStartup(ctx, nd.StartupID); err != nil {
		return Donation{}, err
	}

	_, net := SplitFee(nd.Amount)
	d := Donation{
		StartupID:     nd.StartupID,
		DonorEmail:    nd.DonorEmail,
		Amount:        nd.Amount,
		FeePercentage: FeePercentage,
		NetAmount:     net,
		Status:        StatusCompleted,
		Provider:      nd.Provider,
		Reference:     nd.Reference,
		CreatedAt:     time.Now().UTC(),
	}

	created, err := svc.repo.CreateDonation(ctx, d)
	if err != nil {
		if errors.Cause(err) == ErrDuplicateReference {
			return Donation{}, core.NewConflictError(ErrDuplicateReference)
		}
		return Donation{}, errors.Wrap(err, "creating donation")
	}
	return created, nil
}

// VerifyAndRecord confirms the reference against the gateway before
// recording; it is the sole path through which a donation becomes
// "completed". The gateway's amount, not the caller's, goes on the ledger,
// and the transaction's own startup metadata must agree with the caller:
// a valid reference cannot be attributed to someone else's ledger.
func (svc *Service) VerifyAndRecord(ctx context.Context, startupID, donorEmail, reference string) (Donation, error) {
	txn, err := svc.gateway.VerifyTransaction(ctx, reference)
	if err != nil {
		return Donation{}, err
	}
	if txn.Status != "success" {
		return Donation{}, core.NewValidationError(ErrPaymentNotSuccess)
	}
	if txn.StartupID != "" {
		if startupID != "" && startupID != txn.StartupID {
			return Donation{}, core.NewValidationError(ErrStartupMismatch,
				core.FieldError{Field: "startup_id", Error: ErrStartupMismatch.Error()})
		}
		startupID = txn.StartupID
	}
	if donorEmail == "" {
		donorEmail = txn.CustomerEmail
	}
	return svc.Record(ctx, NewDonation{
		StartupID:  startupID,
		DonorEmail: donorEmail,
		Amount:     txn.Amount,
		Provider:   svc.gateway.Provider(),
		Reference:  txn.Reference,
	})
}

func (svc *Service) Get(ctx context.Context, id string) (Donation, error) {
	return svc.repo.GetDonation(ctx, id)
}

func (svc *Service) Query(ctx context.Context, startupID string) ([]Donation, error) {
	return svc.repo.QueryDonations(ctx, startupID)
}

// TotalRaised sums completed donation amounts for the startup. Recomputed
// on demand, so always consistent with the ledger at read time.
func (svc *Service) TotalRaised(ctx context.Context, startupID string) (decimal.Decimal, error) {
	return svc.repo.SumCompletedAmounts(ctx, startupID)
}

// NetTotal sums the amounts credited to the startup after fees.
func (svc *Service) NetTotal(ctx context.Context, startupID string) (decimal.Decimal, error) {
	return svc.repo.SumCompletedNetAmounts(ctx, startupID)
}

func (svc *Service) Count(ctx context.Context, startupID, status string) (int, error) {
	return svc.repo.CountDonations(ctx, startupID, status)
}

// MarkCompleted transitions a pending donation to completed.
func (svc *Service) MarkCompleted(ctx context.Context, id string) (Donation, error) {
	return svc.transition(ctx, id, StatusCompleted)
}

// MarkFailed transitions a pending donation to failed.
func (svc *Service) MarkFailed(ctx context.Context, id string) (Donation, error) {
	return svc.transition(ctx, id, StatusFailed)
}

// Refund transitions a completed donation to refunded.
func (svc *Service) Refund(ctx context.Context, id string) (Donation, error) {
	return svc.transition(ctx, id, StatusRefunded)
}

func (svc *Service) transition(ctx context.Context, id, to string) (Donation, error) {
	d, err := svc.repo.GetDonation(ctx, id)
	if err != nil {
		return Donation{}, err
	}
	if !canTransition(d.Status, to) {
		return Donation{}, core.NewConflictError(
			errors.Wrapf(ErrBadTransition, "%s -> %s", d.Status, to))
	}
	return svc.repo.UpdateDonationStatus(ctx, id, to)
}
