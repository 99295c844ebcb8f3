package verification

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/oosplatform/oos/core"
	"github.com/oosplatform/oos/core/auth"
	"github.com/oosplatform/oos/core/startup"
)

var (
	// errors
	ErrDocumentNotFound   = errors.New("verification document not found")
	ErrBankNotFound       = errors.New("bank verification not found")
	ErrStartupMismatch    = errors.New("document does not belong to this startup")
	ErrMissingBankDetails = errors.New("bank name, account number and account name must be set first")
	ErrAlreadyReviewed    = errors.New("request has already been reviewed")
	ErrNotRejected        = errors.New("only rejected requests can be resubmitted")
)

type (
	Repository interface {
		CreateDocument(ctx context.Context, doc Document, exec ...core.DBExecutor) (Document, error)
		GetDocument(ctx context.Context, id string, exec ...core.DBExecutor) (Document, error)
		QueryDocuments(ctx context.Context, startupID string, exec ...core.DBExecutor) ([]Document, error)
		QueryPendingDocuments(ctx context.Context, exec ...core.DBExecutor) ([]Document, error)
		UpdateDocument(ctx context.Context, doc Document, exec ...core.DBExecutor) (Document, error)

		CreateBankVerification(ctx context.Context, bv BankVerification, exec ...core.DBExecutor) (BankVerification, error)
		GetBankVerification(ctx context.Context, id string, exec ...core.DBExecutor) (BankVerification, error)
		QueryBankVerifications(ctx context.Context, startupID string, exec ...core.DBExecutor) ([]BankVerification, error)
		UpdateBankVerification(ctx context.Context, bv BankVerification, exec ...core.DBExecutor) (BankVerification, error)
	}

	// StartupStore is the slice of the startup repository the state
	// machines need to apply derived tier/flag updates.
	StartupStore interface {
		GetStartup(ctx context.Context, id string, exec ...core.DBExecutor) (startup.Startup, error)
		UpdateStartup(ctx context.Context, s startup.Startup, exec ...core.DBExecutor) (startup.Startup, error)
	}

	Service struct {
		db       core.DB
		repo     Repository
		startups StartupStore
		authSvc  *auth.Service
	}
)

func NewService(db core.DB, repo Repository, startups StartupStore, authSvc *auth.Service) *Service {
	return &Service{db: db, repo: repo, startups: startups, authSvc: authSvc}
}

// SubmitDocument files a verification proof for the startup. Owner only.
// Submitting a CAC certificate moves the startup to pending_verification in
// the same transaction, whatever its current tier.
func (svc *Service) SubmitDocument(ctx context.Context, principal auth.Principal, startupID string, nd NewDocument) (Document, error) {
	s, err := svc.requireOwner(ctx, principal, startupID)
	if err != nil {
		return Document{}, err
	}

	doc := Document{
		StartupID: startupID,
		Type:      nd.DocumentType,
		URL:       nd.DocumentURL,
		Status:    DocStatusPending,
		CreatedAt: time.Now().UTC(),
	}

	err = core.Atomic(ctx, svc.db, func(tx core.DBExecutor) error {
		var err error
		if doc, err = svc.repo.CreateDocument(ctx, doc, tx); err != nil {
			return errors.Wrap(err, "creating document")
		}
		if doc.Type == DocTypeCACCertificate {
			s.VerificationTier = startup.TierPendingVerification
			s.UpdatedAt = time.Now().UTC()
			if _, err = svc.startups.UpdateStartup(ctx, s, tx); err != nil {
				return errors.Wrap(err, "marking startup pending verification")
			}
		}
		return nil
	})
	if err != nil {
		return Document{}, err
	}
	return doc, nil
}

// ReviewDocument records an admin decision. Approving a CAC certificate
// upgrades the startup to the verified tier and verified KYC status in the
// same transaction. Rejection updates only the document row; it does not
// revert the tier set at submission time.
func (svc *Service) ReviewDocument(ctx context.Context, principal auth.Principal, documentID, startupID string, rd ReviewDocument) (Document, error) {
	if err := svc.authSvc.RequireAdminBadge(ctx, principal.ID); err != nil {
		return Document{}, err
	}

	doc, err := svc.repo.GetDocument(ctx, documentID)
	if err != nil {
		return Document{}, err
	}
	// the startup id arrives separately from the caller; never trust the
	// linkage without checking it against the document row
	if doc.StartupID != startupID {
		return Document{}, core.NewValidationError(ErrStartupMismatch)
	}
	if doc.Status != DocStatusPending {
		return Document{}, core.NewConflictError(ErrAlreadyReviewed)
	}

	now := time.Now().UTC()
	doc.Status = rd.Decision
	doc.VerifiedBy = principal.ID
	doc.VerifiedAt = now

	err = core.Atomic(ctx, svc.db, func(tx core.DBExecutor) error {
		var err error
		if doc, err = svc.repo.UpdateDocument(ctx, doc, tx); err != nil {
			return errors.Wrap(err, "updating document")
		}
		if rd.Decision == DocStatusApproved && doc.Type == DocTypeCACCertificate {
			s, err := svc.startups.GetStartup(ctx, doc.StartupID, tx)
			if err != nil {
				return errors.Wrap(err, "loading startup")
			}
			s.VerificationTier = startup.TierVerified
			s.KYCStatus = startup.KYCVerified
			s.UpdatedAt = now
			if _, err = svc.startups.UpdateStartup(ctx, s, tx); err != nil {
				return errors.Wrap(err, "upgrading startup tier")
			}
		}
		return nil
	})
	if err != nil {
		return Document{}, err
	}
	return doc, nil
}

// ResubmitDocument returns a rejected document to pending with a fresh
// proof URL. Owner only.
func (svc *Service) ResubmitDocument(ctx context.Context, principal auth.Principal, documentID string, r Resubmit) (Document, error) {
	doc, err := svc.repo.GetDocument(ctx, documentID)
	if err != nil {
		return Document{}, err
	}
	if _, err = svc.requireOwner(ctx, principal, doc.StartupID); err != nil {
		return Document{}, err
	}
	if doc.Status != DocStatusRejected {
		return Document{}, core.NewConflictError(ErrNotRejected)
	}

	doc.URL = r.DocumentURL
	doc.Status = DocStatusPending
	doc.VerifiedBy = ""
	doc.VerifiedAt = time.Time{}
	return svc.repo.UpdateDocument(ctx, doc)
}

func (svc *Service) Documents(ctx context.Context, principal auth.Principal, startupID string) ([]Document, error) {
	if _, err := svc.requireOwner(ctx, principal, startupID); err != nil {
		return nil, err
	}
	return svc.repo.QueryDocuments(ctx, startupID)
}

// PendingDocuments lists all documents awaiting review. Badge holders only.
func (svc *Service) PendingDocuments(ctx context.Context, principal auth.Principal) ([]Document, error) {
	if err := svc.authSvc.RequireAdminBadge(ctx, principal.ID); err != nil {
		return nil, err
	}
	return svc.repo.QueryPendingDocuments(ctx)
}

// SubmitBankVerification files a payout attestation. Owner only; the
// startup's bank fields must all be present, and they are snapshotted into
// the request row.
func (svc *Service) SubmitBankVerification(ctx context.Context, principal auth.Principal, startupID string, nb NewBankVerification) (BankVerification, error) {
	s, err := svc.requireOwner(ctx, principal, startupID)
	if err != nil {
		return BankVerification{}, err
	}
	if !s.HasBankDetails() {
		return BankVerification{}, core.NewValidationError(ErrMissingBankDetails)
	}

	bv := BankVerification{
		StartupID:     startupID,
		BankName:      s.BankName,
		AccountNumber: s.BankAccount,
		AccountName:   s.BankAccountName,
		DocumentURL:   nb.DocumentURL,
		Status:        BankStatusPending,
		CreatedAt:     time.Now().UTC(),
	}
	return svc.repo.CreateBankVerification(ctx, bv)
}

// ReviewBankVerification records an admin decision. Verifying sets the
// startup's bank_account_verified flag in the same transaction; rejecting
// never resets it.
func (svc *Service) ReviewBankVerification(ctx context.Context, principal auth.Principal, verificationID string, rb ReviewBankVerification) (BankVerification, error) {
	if err := svc.authSvc.RequireAdminBadge(ctx, principal.ID); err != nil {
		return BankVerification{}, err
	}

	bv, err := svc.repo.GetBankVerification(ctx, verificationID)
	if err != nil {
		return BankVerification{}, err
	}
	if bv.Status != BankStatusPending {
		return BankVerification{}, core.NewConflictError(ErrAlreadyReviewed)
	}

	now := time.Now().UTC()
	bv.Status = rb.Decision
	bv.VerifiedBy = principal.ID
	bv.VerifiedAt = now

	err = core.Atomic(ctx, svc.db, func(tx core.DBExecutor) error {
		var err error
		if bv, err = svc.repo.UpdateBankVerification(ctx, bv, tx); err != nil {
			return errors.Wrap(err, "updating bank verification")
		}
		if rb.Decision == BankStatusVerified {
			s, err := svc.startups.GetStartup(ctx, bv.StartupID, tx)
			if err != nil {
				return errors.Wrap(err, "loading startup")
			}
			s.BankAccountVerified = true
			s.UpdatedAt = now
			if _, err = svc.startups.UpdateStartup(ctx, s, tx); err != nil {
				return errors.Wrap(err, "flagging bank account verified")
			}
		}
		return nil
	})
	if err != nil {
		return BankVerification{}, err
	}
	return bv, nil
}

// ResubmitBankVerification returns a rejected request to pending with a
// fresh proof URL and a fresh snapshot of the startup's bank fields.
func (svc *Service) ResubmitBankVerification(ctx context.Context, principal auth.Principal, verificationID string, r Resubmit) (BankVerification, error) {
	bv, err := svc.repo.GetBankVerification(ctx, verificationID)
	if err != nil {
		return BankVerification{}, err
	}
	s, err := svc.requireOwner(ctx, principal, bv.StartupID)
	if err != nil {
		return BankVerification{}, err
	}
	if bv.Status != BankStatusRejected {
		return BankVerification{}, core.NewConflictError(ErrNotRejected)
	}
	if !s.HasBankDetails() {
		return BankVerification{}, core.NewValidationError(ErrMissingBankDetails)
	}

	bv.BankName = s.BankName
	bv.AccountNumber = s.BankAccount
	bv.AccountName = s.BankAccountName
	bv.DocumentURL = r.DocumentURL
	bv.Status = BankStatusPending
	bv.VerifiedBy = ""
	bv.VerifiedAt = time.Time{}
	return svc.repo.UpdateBankVerification(ctx, bv)
}

func (svc *Service) BankVerifications(ctx context.Context, principal auth.Principal, startupID string) ([]BankVerification, error) {
	if _, err := svc.requireOwner(ctx, principal, startupID); err != nil {
		return nil, err
	}
	return svc.repo.QueryBankVerifications(ctx, startupID)
}

func (svc *Service) requireOwner(ctx context.Context, principal auth.Principal, startupID string) (startup.Startup, error) {
	s, err := svc.startups.GetStartup(ctx, startupID)
	if err != nil {
		return startup.Startup{}, err
	}
	if s.OwnerID != principal.ID {
		return startup.Startup{}, auth.ErrForbidden
	}
	return s, nil
}
