package startup

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/oosplatform/oos/core"
	"github.com/oosplatform/oos/core/auth"
)

var (
	// errors
	ErrNotFound           = errors.New("startup not found")
	ErrCommentNotFound    = errors.New("comment not found")
	ErrAlreadySubscribed  = errors.New("already subscribed to this startup")
	ErrNotSubscribed      = errors.New("not subscribed to this startup")
	ErrStartupDeactivated = errors.New("startup has been deactivated")
)

type (
	Repository interface {
		CreateStartup(ctx context.Context, s Startup, exec ...core.DBExecutor) (Startup, error)
		GetStartup(ctx context.Context, id string, exec ...core.DBExecutor) (Startup, error)
		FilterStartups(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Startup, error)
		UpdateStartup(ctx context.Context, s Startup, exec ...core.DBExecutor) (Startup, error)

		CreateComment(ctx context.Context, c Comment, exec ...core.DBExecutor) (Comment, error)
		QueryComments(ctx context.Context, startupID string, publicOnly bool, exec ...core.DBExecutor) ([]Comment, error)
		DeleteComment(ctx context.Context, id string, exec ...core.DBExecutor) error

		GetSubscription(ctx context.Context, startupID, userID string, exec ...core.DBExecutor) (Subscription, error)
		CreateSubscription(ctx context.Context, sub Subscription, exec ...core.DBExecutor) (Subscription, error)
		DeleteSubscription(ctx context.Context, id string, exec ...core.DBExecutor) error
		// AdjustSubscriberCount applies delta to the startup's derived count.
		AdjustSubscriberCount(ctx context.Context, startupID string, delta int, exec ...core.DBExecutor) error

		CreateDeletionLog(ctx context.Context, entry DeletionLog, exec ...core.DBExecutor) (DeletionLog, error)
	}

	Service struct {
		db   core.DB
		repo Repository
	}
)

func NewService(db core.DB, repo Repository) *Service {
	return &Service{db: db, repo: repo}
}

// Register creates a fundraising profile owned by principal. Any
// authenticated principal may register; no badge is required.
func (svc *Service) Register(ctx context.Context, principal auth.Principal, ns NewStartup) (Startup, error) {
	now := time.Now().UTC()
	s := Startup{
		OwnerID:          principal.ID,
		Name:             ns.Name,
		Description:      ns.Description,
		Pitch:            ns.Pitch,
		WebsiteURL:       ns.WebsiteURL,
		VerificationTier: TierRegistered,
		KYCStatus:        KYCPending,
		BankName:         ns.BankName,
		BankAccount:      ns.BankAccount,
		BankAccountName:  ns.BankAccountName,
		IsActive:         true,
		ExpiresAt:        now.Add(ExpirationDelta),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	return svc.repo.CreateStartup(ctx, s)
}

func (svc *Service) Get(ctx context.Context, id string) (Startup, error) {
	return svc.repo.GetStartup(ctx, id)
}

// RequireOwnership fails with auth.ErrForbidden when principal does not own
// the startup.
func (svc *Service) RequireOwnership(ctx context.Context, principal auth.Principal, id string) (Startup, error) {
	s, err := svc.repo.GetStartup(ctx, id)
	if err != nil {
		return Startup{}, err
	}
	if s.OwnerID != principal.ID {
		return Startup{}, auth.ErrForbidden
	}
	return s, nil
}

func (svc *Service) Filter(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Startup, error) {
	return svc.repo.FilterStartups(ctx, filter, ordering)
}

// Update mutates profile fields. Owner only; tier/kyc fields are reserved
// for the verification workflow.
func (svc *Service) Update(ctx context.Context, principal auth.Principal, id string, us UpdateStartup) (Startup, error) {
	s, err := svc.RequireOwnership(ctx, principal, id)
	if err != nil {
		return Startup{}, err
	}
	s.Name = us.Name
	s.Description = us.Description
	s.Pitch = us.Pitch
	s.WebsiteURL = us.WebsiteURL
	s.BankName = us.BankName
	s.BankAccount = us.BankAccount
	s.BankAccountName = us.BankAccountName
	s.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateStartup(ctx, s)
}

// Deactivate soft-deletes the startup (is_active=false) and writes a
// deletion log entry in the same transaction. Rows are never hard-deleted.
func (svc *Service) Deactivate(ctx context.Context, principal auth.Principal, id, reason string) error {
	s, err := svc.RequireOwnership(ctx, principal, id)
	if err != nil {
		return err
	}
	if !s.IsActive {
		return core.NewConflictError(ErrStartupDeactivated)
	}
	s.IsActive = false
	s.UpdatedAt = time.Now().UTC()

	return core.Atomic(ctx, svc.db, func(tx core.DBExecutor) error {
		if _, err := svc.repo.UpdateStartup(ctx, s, tx); err != nil {
			return errors.Wrap(err, "deactivating startup")
		}
		_, err := svc.repo.CreateDeletionLog(ctx, DeletionLog{
			StartupID: id,
			Reason:    reason,
			DeletedAt: time.Now().UTC(),
		}, tx)
		return errors.Wrap(err, "logging deletion")
	})
}

// Subscribe adds principal to the startup's newsletter. The subscription
// insert and the derived subscriber_count increment are one transaction.
func (svc *Service) Subscribe(ctx context.Context, principal auth.Principal, startupID string) (Subscription, error) {
	if _, err := svc.repo.GetStartup(ctx, startupID); err != nil {
		return Subscription{}, err
	}
	if _, err := svc.repo.GetSubscription(ctx, startupID, principal.ID); err == nil {
		return Subscription{}, core.NewConflictError(ErrAlreadySubscribed)
	} else if errors.Cause(err) != ErrNotSubscribed {
		return Subscription{}, err
	}

	var sub Subscription
	err := core.Atomic(ctx, svc.db, func(tx core.DBExecutor) error {
		var err error
		sub, err = svc.repo.CreateSubscription(ctx, Subscription{
			StartupID:    startupID,
			UserID:       principal.ID,
			SubscribedAt: time.Now().UTC(),
		}, tx)
		if err != nil {
			return errors.Wrap(err, "creating subscription")
		}
		return errors.Wrap(svc.repo.AdjustSubscriberCount(ctx, startupID, +1, tx), "incrementing subscriber count")
	})
	if err != nil {
		return Subscription{}, err
	}
	return sub, nil
}

// Unsubscribe removes the subscription and decrements the derived count in
// one transaction.
func (svc *Service) Unsubscribe(ctx context.Context, principal auth.Principal, startupID string) error {
	sub, err := svc.repo.GetSubscription(ctx, startupID, principal.ID)
	if err != nil {
		return err
	}
	return core.Atomic(ctx, svc.db, func(tx core.DBExecutor) error {
		if err := svc.repo.DeleteSubscription(ctx, sub.ID, tx); err != nil {
			return errors.Wrap(err, "deleting subscription")
		}
		return errors.Wrap(svc.repo.AdjustSubscriberCount(ctx, startupID, -1, tx), "decrementing subscriber count")
	})
}

func (svc *Service) IsSubscribed(ctx context.Context, userID, startupID string) (bool, error) {
	if _, err := svc.repo.GetSubscription(ctx, startupID, userID); err != nil {
		if errors.Cause(err) == ErrNotSubscribed {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Comment adds a comment to a startup's public board.
func (svc *Service) Comment(ctx context.Context, principal auth.Principal, startupID string, nc NewComment) (Comment, error) {
	if _, err := svc.repo.GetStartup(ctx, startupID); err != nil {
		return Comment{}, err
	}
	now := time.Now().UTC()
	isPublic := true
	if nc.IsPublic != nil {
		isPublic = *nc.IsPublic
	}
	return svc.repo.CreateComment(ctx, Comment{
		StartupID: startupID,
		UserID:    principal.ID,
		Content:   nc.Content,
		IsPublic:  isPublic,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

// Comments lists a startup's comments. Owners see private ones too.
func (svc *Service) Comments(ctx context.Context, principal auth.Principal, startupID string) ([]Comment, error) {
	s, err := svc.repo.GetStartup(ctx, startupID)
	if err != nil {
		return nil, err
	}
	publicOnly := s.OwnerID != principal.ID
	return svc.repo.QueryComments(ctx, startupID, publicOnly)
}
