package startup

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/oosplatform/oos/core"
)

// Verification tiers
const (
	TierRegistered          = "registered"
	TierPendingVerification = "pending_verification"
	TierVerified            = "verified"
)

// KYC statuses
const (
	KYCPending  = "pending"
	KYCVerified = "verified"
	KYCRejected = "rejected"
)

// Startups expire two years after registration.
const ExpirationDelta = 2 * 365 * 24 * time.Hour

type Startup struct {
	ID          string `json:"id"`
	OwnerID     string `json:"user_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Pitch       string `json:"pitch"`
	WebsiteURL  string `json:"website_url,omitempty"`

	VerificationTier string `json:"verification_tier"`
	KYCStatus        string `json:"kyc_status"`

	BankName            string `json:"bank_name,omitempty"`
	BankAccount         string `json:"bank_account,omitempty"`
	BankAccountName     string `json:"bank_account_name,omitempty"`
	BankAccountVerified bool   `json:"bank_account_verified"`

	IsActive        bool      `json:"is_active"`
	ExpiresAt       time.Time `json:"expires_at"` // UTC
	SubscriberCount int       `json:"subscriber_count"`
	CreatedAt       time.Time `json:"created_at"` // UTC
	UpdatedAt       time.Time `json:"updated_at"` // UTC
}

func (s Startup) Expired(now time.Time) bool { return now.After(s.ExpiresAt) }

// HasBankDetails reports whether all bank fields required before a bank
// verification submission are present.
func (s Startup) HasBankDetails() bool {
	return s.BankName != "" && s.BankAccount != "" && s.BankAccountName != ""
}

type Comment struct {
	ID        string    `json:"id"`
	StartupID string    `json:"startup_id"`
	UserID    string    `json:"user_id"`
	Content   string    `json:"content"`
	IsPublic  bool      `json:"is_public"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// Subscription links a principal to a startup's newsletter;
// at most one per (startup, user) pair.
type Subscription struct {
	ID           string    `json:"id"`
	StartupID    string    `json:"startup_id"`
	UserID       string    `json:"user_id"`
	SubscribedAt time.Time `json:"subscribed_at"` // UTC
}

// DeletionLog records an owner-triggered deactivation.
type DeletionLog struct {
	ID        string    `json:"id"`
	StartupID string    `json:"startup_id"`
	Reason    string    `json:"reason,omitempty"`
	DeletedAt time.Time `json:"deleted_at"` // UTC
}

// Stats are derived aggregates consumed by dashboards.
type Stats struct {
	TotalRaised     decimal.Decimal `json:"total_raised"`
	DonationCount   int             `json:"donation_count"`
	SubscriberCount int             `json:"subscriber_count"`
}

// NewStartup contains information needed to register a new Startup.
type NewStartup struct {
	Name            string `json:"name" validate:"required,max=120"`
	Description     string `json:"description" validate:"omitempty,max=2000"`
	Pitch           string `json:"pitch" validate:"required,max=5000"`
	WebsiteURL      string `json:"website_url" validate:"omitempty,url"`
	BankName        string `json:"bank_name" validate:"omitempty,max=120"`
	BankAccount     string `json:"bank_account" validate:"omitempty,bankaccount"`
	BankAccountName string `json:"bank_account_name" validate:"omitempty,max=120"`
}

func (ns *NewStartup) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Description = core.CleanString(ns.Description)
	ns.Pitch = core.CleanString(ns.Pitch)
	ns.WebsiteURL = core.CleanString(ns.WebsiteURL)
	ns.BankName = core.CleanString(ns.BankName)
	ns.BankAccount = core.CleanString(ns.BankAccount)
	ns.BankAccountName = core.CleanString(ns.BankAccountName)
	return validate.Struct(ns)
}

// UpdateStartup defines the profile fields an owner may modify.
// Tier and KYC fields are never settable through here.
type UpdateStartup struct {
	Name            string `json:"name" validate:"omitempty,max=120"`
	Description     string `json:"description" validate:"omitempty,max=2000"`
	Pitch           string `json:"pitch" validate:"omitempty,max=5000"`
	WebsiteURL      string `json:"website_url" validate:"omitempty,url"`
	BankName        string `json:"bank_name" validate:"omitempty,max=120"`
	BankAccount     string `json:"bank_account" validate:"omitempty,bankaccount"`
	BankAccountName string `json:"bank_account_name" validate:"omitempty,max=120"`
}

func (us *UpdateStartup) Validate(orig Startup, validate *validator.Validate) error {
	if name := core.CleanString(us.Name); name != "" {
		us.Name = name
	} else {
		us.Name = orig.Name
	}
	if desc := core.CleanString(us.Description); desc != "" {
		us.Description = desc
	} else {
		us.Description = orig.Description
	}
	if pitch := core.CleanString(us.Pitch); pitch != "" {
		us.Pitch = pitch
	} else {
		us.Pitch = orig.Pitch
	}
	if site := core.CleanString(us.WebsiteURL); site != "" {
		us.WebsiteURL = site
	} else {
		us.WebsiteURL = orig.WebsiteURL
	}
	if bn := core.CleanString(us.BankName); bn != "" {
		us.BankName = bn
	} else {
		us.BankName = orig.BankName
	}
	if ba := core.CleanString(us.BankAccount); ba != "" {
		us.BankAccount = ba
	} else {
		us.BankAccount = orig.BankAccount
	}
	if ban := core.CleanString(us.BankAccountName); ban != "" {
		us.BankAccountName = ban
	} else {
		us.BankAccountName = orig.BankAccountName
	}
	return validate.Struct(us)
}

type NewComment struct {
	Content  string `json:"content" validate:"required,max=2000"`
	IsPublic *bool  `json:"is_public"`
}

func (nc *NewComment) Validate(validate *validator.Validate) error {
	nc.Content = core.CleanString(nc.Content)
	return validate.Struct(nc)
}

type QueryFilter struct {
	Search   string `query:"search"`
	Tier     string `query:"tier"`
	OwnerID  string `query:"owner"`
	IsActive *bool  `query:"is_active"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Tier == "" && qf.OwnerID == "" && qf.IsActive == nil
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Tier = core.CleanString(qf.Tier, true /* lower */)
}
