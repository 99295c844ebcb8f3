package verification

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/oosplatform/oos/core"
)

// Document types. CAC certificates are the only type that drives the
// startup's verification tier; other proofs are stored for review only.
const (
	DocTypeCACCertificate = "cac_certificate"
	DocTypeUtilityBill    = "utility_bill"
	DocTypeIncorporation  = "certificate_of_incorporation"
)

// Document statuses: pending -> approved | rejected.
// A rejected document may be resubmitted, returning it to pending.
const (
	DocStatusPending  = "pending"
	DocStatusApproved = "approved"
	DocStatusRejected = "rejected"
)

// Bank verification statuses: pending -> verified | rejected.
const (
	BankStatusPending  = "pending"
	BankStatusVerified = "verified"
	BankStatusRejected = "rejected"
)

type Document struct {
	ID         string    `json:"id"`
	StartupID  string    `json:"startup_id"`
	Type       string    `json:"document_type"`
	URL        string    `json:"document_url"`
	Status     string    `json:"status"`
	VerifiedBy string    `json:"verified_by,omitempty"`
	VerifiedAt time.Time `json:"verified_at,omitempty"` // UTC
	CreatedAt  time.Time `json:"created_at"`            // UTC
}

// BankVerification snapshots the startup's bank fields at submission time
// so later edits to the startup do not retroactively alter the claim under
// review.
type BankVerification struct {
	ID            string    `json:"id"`
	StartupID     string    `json:"startup_id"`
	BankName      string    `json:"bank_name"`
	AccountNumber string    `json:"account_number"`
	AccountName   string    `json:"account_name"`
	DocumentURL   string    `json:"verification_document_url"`
	Status        string    `json:"status"`
	VerifiedBy    string    `json:"verified_by,omitempty"`
	VerifiedAt    time.Time `json:"verified_at,omitempty"` // UTC
	CreatedAt     time.Time `json:"created_at"`            // UTC
}

type NewDocument struct {
	DocumentType string `json:"document_type" validate:"required,oneof=cac_certificate utility_bill certificate_of_incorporation"`
	DocumentURL  string `json:"document_url" validate:"required,url"`
}

func (nd *NewDocument) Validate(validate *validator.Validate) error {
	nd.DocumentType = core.CleanString(nd.DocumentType, true /* lower */)
	nd.DocumentURL = core.CleanString(nd.DocumentURL)
	return validate.Struct(nd)
}

type ReviewDocument struct {
	Decision string `json:"status" validate:"required,oneof=approved rejected"`
}

func (rd *ReviewDocument) Validate(validate *validator.Validate) error {
	rd.Decision = core.CleanString(rd.Decision, true /* lower */)
	return validate.Struct(rd)
}

type NewBankVerification struct {
	DocumentURL string `json:"document_url" validate:"required,url"`
}

func (nb *NewBankVerification) Validate(validate *validator.Validate) error {
	nb.DocumentURL = core.CleanString(nb.DocumentURL)
	return validate.Struct(nb)
}

type ReviewBankVerification struct {
	Decision string `json:"status" validate:"required,oneof=verified rejected"`
}

func (rb *ReviewBankVerification) Validate(validate *validator.Validate) error {
	rb.Decision = core.CleanString(rb.Decision, true /* lower */)
	return validate.Struct(rb)
}

type Resubmit struct {
	DocumentURL string `json:"document_url" validate:"required,url"`
}

func (r *Resubmit) Validate(validate *validator.Validate) error {
	r.DocumentURL = core.CleanString(r.DocumentURL)
	return validate.Struct(r)
}
