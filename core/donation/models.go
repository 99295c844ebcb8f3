package donation

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/oosplatform/oos/core"
)

// Donation statuses: pending -> completed | failed; completed -> refunded.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusRefunded  = "refunded"
)

var (
	// FeePercentage is the platform's fixed commission on every donation.
	FeePercentage = decimal.RequireFromString("16.00")

	// MinAmount is the smallest accepted gross amount.
	MinAmount = decimal.NewFromInt(1)

	feeRate = FeePercentage.Div(decimal.NewFromInt(100))
)

// Donation is an immutable ledger entry. Monetary fields are decimals; the
// commission split is computed once at record time with banker's rounding
// to 2 places and never recomputed.
type Donation struct {
	ID            string          `json:"id"`
	StartupID     string          `json:"startup_id"`
	DonorEmail    string          `json:"donor_email"`
	Amount        decimal.Decimal `json:"amount"`
	FeePercentage decimal.Decimal `json:"fee_percentage"`
	NetAmount     decimal.Decimal `json:"net_amount"`
	Status        string          `json:"status"`
	Provider      string          `json:"payment_provider"`
	Reference     string          `json:"payment_reference"`
	CreatedAt     time.Time       `json:"created_at"` // UTC
}

// SplitFee computes the platform fee and the net amount credited to the
// startup, rounding half-even to 2 decimal places.
func SplitFee(amount decimal.Decimal) (fee, net decimal.Decimal) {
	fee = amount.Mul(feeRate).RoundBank(2)
	net = amount.Sub(fee)
	return fee, net
}

// validTransitions fixes the ledger state machine. Statuses other than
// pending -> completed are exercised through the explicit transition
// methods only.
var validTransitions = map[string][]string{
	StatusPending:   {StatusCompleted, StatusFailed},
	StatusCompleted: {StatusRefunded},
}

func canTransition(from, to string) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// NewDonation carries a gateway-verified payment to be recorded.
type NewDonation struct {
	StartupID  string          `json:"startup_id" validate:"required"`
	DonorEmail string          `json:"donor_email" validate:"required,email"`
	Amount     decimal.Decimal `json:"amount"`
	Provider   string          `json:"payment_provider" validate:"required"`
	Reference  string          `json:"payment_reference" validate:"required"`
}

func (nd *NewDonation) Validate(validate *validator.Validate) error {
	nd.DonorEmail = core.CleanString(nd.DonorEmail, true /* lower */)
	nd.Provider = core.CleanString(nd.Provider, true /* lower */)
	nd.Reference = core.CleanString(nd.Reference)
	if err := validate.Struct(nd); err != nil {
		return err
	}
	if nd.Amount.LessThan(MinAmount) {
		return core.NewValidationError(ErrAmountTooSmall,
			core.FieldError{Field: "amount", Error: ErrAmountTooSmall.Error()})
	}
	return nil
}
