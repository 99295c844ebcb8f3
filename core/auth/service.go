package auth

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/oosplatform/oos/core"
)

var (
	// errors
	ErrNotFound    = errors.New("admin badge not found")
	ErrGrantExists = errors.New("admin badge already granted")
	ErrForbidden   = errors.New("permission denied")
)

type (
	Repository interface {
		GetGrant(ctx context.Context, userID string, exec ...core.DBExecutor) (AdminGrant, error)
		CreateGrant(ctx context.Context, grant AdminGrant, exec ...core.DBExecutor) (AdminGrant, error)
		DeleteGrant(ctx context.Context, userID string, exec ...core.DBExecutor) error
		QueryGrants(ctx context.Context, exec ...core.DBExecutor) ([]AdminGrant, error)
	}

	// GrantPolicy decides whether requester may create an admin grant for
	// target. The reference behavior is open self-service; a stricter
	// countersign workflow can be substituted without touching the rest of
	// the gate.
	GrantPolicy interface {
		AuthorizeGrant(ctx context.Context, requester Principal, targetID string) error
	}

	Service struct {
		db     core.DB
		repo   Repository
		policy GrantPolicy
	}
)

func NewService(db core.DB, repo Repository, policy GrantPolicy) *Service {
	if policy == nil {
		policy = OpenSelfService{}
	}
	return &Service{db: db, repo: repo, policy: policy}
}

// HasAdminBadge reports whether userID holds the admin badge.
// Absence of a grant is not an error. No caching: every check re-reads
// persisted state.
func (svc *Service) HasAdminBadge(ctx context.Context, userID string) (bool, error) {
	if _, err := svc.repo.GetGrant(ctx, userID); err != nil {
		if errors.Cause(err) == ErrNotFound {
			return false, nil
		}
		return false, errors.Wrap(err, "checking admin badge")
	}
	return true, nil
}

// RequireAdminBadge fails with ErrForbidden when userID holds no badge.
func (svc *Service) RequireAdminBadge(ctx context.Context, userID string) error {
	ok, err := svc.HasAdminBadge(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}

// GrantAdminBadge creates a badge grant for targetID on behalf of requester.
// A second grant for the same principal fails with ErrGrantExists rather
// than duplicating.
func (svc *Service) GrantAdminBadge(ctx context.Context, requester Principal, targetID string) (AdminGrant, error) {
	if err := svc.policy.AuthorizeGrant(ctx, requester, targetID); err != nil {
		return AdminGrant{}, err
	}
	grant := AdminGrant{
		UserID:    targetID,
		GrantedBy: requester.ID,
		GrantedAt: time.Now().UTC(),
	}
	created, err := svc.repo.CreateGrant(ctx, grant)
	if err != nil {
		if errors.Cause(err) == ErrGrantExists {
			return AdminGrant{}, core.NewConflictError(ErrGrantExists)
		}
		return AdminGrant{}, errors.Wrap(err, "creating admin grant")
	}
	return created, nil
}

// RevokeAdminBadge removes targetID's badge. Only a badge holder may revoke.
func (svc *Service) RevokeAdminBadge(ctx context.Context, requester Principal, targetID string) error {
	if err := svc.RequireAdminBadge(ctx, requester.ID); err != nil {
		return err
	}
	if err := svc.repo.DeleteGrant(ctx, targetID); err != nil {
		if errors.Cause(err) == ErrNotFound {
			return ErrNotFound
		}
		return errors.Wrap(err, "deleting admin grant")
	}
	return nil
}

func (svc *Service) ListGrants(ctx context.Context) ([]AdminGrant, error) {
	return svc.repo.QueryGrants(ctx)
}

// OpenSelfService lets any authenticated principal grant themselves the
// badge. See Countersign for the closed alternative.
type OpenSelfService struct{}

func (OpenSelfService) AuthorizeGrant(_ context.Context, requester Principal, targetID string) error {
	if requester.IsZero() {
		return ErrForbidden
	}
	if requester.ID != targetID {
		// granting someone else still requires a badge of one's own
		return ErrForbidden
	}
	return nil
}

// Countersign requires the requester to already hold the badge before
// granting one to anybody, including themselves.
type Countersign struct {
	Svc *Service
}

func (p Countersign) AuthorizeGrant(ctx context.Context, requester Principal, _ string) error {
	if requester.IsZero() {
		return ErrForbidden
	}
	return p.Svc.RequireAdminBadge(ctx, requester.ID)
}
