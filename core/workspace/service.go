package workspace

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/oosplatform/oos/core"
	"github.com/oosplatform/oos/core/auth"
)

var (
	// errors
	ErrNotFound       = errors.New("workspace not found")
	ErrMemberNotFound = errors.New("member not found")
	ErrMemberExists   = errors.New("user is already a member of this workspace")
	ErrInviteNotFound      = errors.New("invite not found")
	ErrInviteUsed          = errors.New("invite has already been used")
	ErrInviteExpired       = errors.New("invite has expired")
	ErrInviteEmailMismatch = errors.New("invite was issued to a different email address")
)

const inviteExpirationDelta = 7 * 24 * time.Hour

type (
	Repository interface {
		CreateWorkspace(ctx context.Context, ws Workspace, exec ...core.DBExecutor) (Workspace, error)
		GetWorkspace(ctx context.Context, id string, exec ...core.DBExecutor) (Workspace, error)
		QueryWorkspacesByUser(ctx context.Context, userID string, exec ...core.DBExecutor) ([]Workspace, error)
		UpdateWorkspace(ctx context.Context, ws Workspace, exec ...core.DBExecutor) (Workspace, error)
		// DeleteWorkspace removes the workspace along with all of its
		// membership and invite rows.
		DeleteWorkspace(ctx context.Context, id string, exec ...core.DBExecutor) error

		CreateMember(ctx context.Context, m Member, exec ...core.DBExecutor) (Member, error)
		GetMember(ctx context.Context, workspaceID, userID string, exec ...core.DBExecutor) (Member, error)
		QueryMembers(ctx context.Context, workspaceID string, exec ...core.DBExecutor) ([]Member, error)
		UpdateMemberRole(ctx context.Context, memberID, role string, exec ...core.DBExecutor) (Member, error)
		DeleteMember(ctx context.Context, memberID string, exec ...core.DBExecutor) error

		CreateInvite(ctx context.Context, inv Invite, exec ...core.DBExecutor) (Invite, error)
		GetInviteByToken(ctx context.Context, token string, exec ...core.DBExecutor) (Invite, error)
		MarkInviteUsed(ctx context.Context, id string, exec ...core.DBExecutor) error
	}

	Service struct {
		db      core.DB
		repo    Repository
		authSvc *auth.Service
		mailSvc core.EmailService
		conf    *core.Config
	}
)

func NewService(db core.DB, repo Repository, authSvc *auth.Service, mailSvc core.EmailService, conf *core.Config) *Service {
	return &Service{db: db, repo: repo, authSvc: authSvc, mailSvc: mailSvc, conf: conf}
}

// Create makes a new workspace owned by principal. Only admin badge holders
// may create workspaces; the creator always receives an initial membership
// with the admin role, in the same transaction as the workspace insert.
func (svc *Service) Create(ctx context.Context, principal auth.Principal, nw NewWorkspace) (Workspace, error) {
	if err := svc.authSvc.RequireAdminBadge(ctx, principal.ID); err != nil {
		return Workspace{}, err
	}

	now := time.Now().UTC()
	ws := Workspace{
		Name:               nw.Name,
		Description:        nw.Description,
		AdminID:            principal.ID,
		VerificationStatus: StatusUnverified,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	err := core.Atomic(ctx, svc.db, func(tx core.DBExecutor) error {
		var err error
		if ws, err = svc.repo.CreateWorkspace(ctx, ws, tx); err != nil {
			return errors.Wrap(err, "creating workspace")
		}
		_, err = svc.repo.CreateMember(ctx, Member{
			WorkspaceID: ws.ID,
			UserID:      principal.ID,
			Role:        RoleAdmin,
			JoinedAt:    now,
		}, tx)
		return errors.Wrap(err, "creating initial membership")
	})
	if err != nil {
		return Workspace{}, err
	}
	return ws, nil
}

// Get returns the workspace when principal is a member of it; non-members
// get ErrNotFound rather than a permission hint.
func (svc *Service) Get(ctx context.Context, principal auth.Principal, id string) (Workspace, error) {
	ws, err := svc.repo.GetWorkspace(ctx, id)
	if err != nil {
		return Workspace{}, err
	}
	if _, err = svc.repo.GetMember(ctx, id, principal.ID); err != nil {
		if errors.Cause(err) == ErrMemberNotFound {
			return Workspace{}, ErrNotFound
		}
		return Workspace{}, err
	}
	return ws, nil
}

func (svc *Service) QueryForUser(ctx context.Context, userID string) ([]Workspace, error) {
	return svc.repo.QueryWorkspacesByUser(ctx, userID)
}

// RequireRole fails with auth.ErrForbidden when userID does not hold role
// in the workspace, and ErrMemberNotFound when they are no member at all.
func (svc *Service) RequireRole(ctx context.Context, userID, workspaceID, role string) (Member, error) {
	m, err := svc.repo.GetMember(ctx, workspaceID, userID)
	if err != nil {
		return Member{}, err
	}
	if m.Role != role {
		return Member{}, auth.ErrForbidden
	}
	return m, nil
}

// RequireMember fails when userID holds no membership in the workspace.
func (svc *Service) RequireMember(ctx context.Context, userID, workspaceID string) (Member, error) {
	return svc.repo.GetMember(ctx, workspaceID, userID)
}

func (svc *Service) Update(ctx context.Context, principal auth.Principal, id string, uw UpdateWorkspace) (Workspace, error) {
	ws, err := svc.Get(ctx, principal, id)
	if err != nil {
		return Workspace{}, err
	}
	if _, err = svc.RequireRole(ctx, principal.ID, id, RoleAdmin); err != nil {
		return Workspace{}, err
	}
	ws.Name = uw.Name
	ws.Description = uw.Description
	ws.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateWorkspace(ctx, ws)
}

// Delete hard-deletes the workspace and cascades its membership and invite
// rows in one transaction. Requires the admin role in the workspace.
func (svc *Service) Delete(ctx context.Context, principal auth.Principal, id string) error {
	if _, err := svc.repo.GetWorkspace(ctx, id); err != nil {
		return err
	}
	if _, err := svc.RequireRole(ctx, principal.ID, id, RoleAdmin); err != nil {
		return err
	}
	return core.Atomic(ctx, svc.db, func(tx core.DBExecutor) error {
		return errors.Wrap(svc.repo.DeleteWorkspace(ctx, id, tx), "deleting workspace")
	})
}

// Members lists the workspace membership. Visible to members only.
func (svc *Service) Members(ctx context.Context, principal auth.Principal, workspaceID string) ([]Member, error) {
	if _, err := svc.RequireMember(ctx, principal.ID, workspaceID); err != nil {
		return nil, err
	}
	return svc.repo.QueryMembers(ctx, workspaceID)
}

// SetMemberRole mutates an existing membership's role. Workspace admins only.
func (svc *Service) SetMemberRole(ctx context.Context, principal auth.Principal, workspaceID, memberID, role string) (Member, error) {
	if _, err := svc.RequireRole(ctx, principal.ID, workspaceID, RoleAdmin); err != nil {
		return Member{}, err
	}
	return svc.repo.UpdateMemberRole(ctx, memberID, role)
}

// RemoveMember deletes a single membership row. Workspace admins only.
func (svc *Service) RemoveMember(ctx context.Context, principal auth.Principal, workspaceID, memberID string) error {
	if _, err := svc.RequireRole(ctx, principal.ID, workspaceID, RoleAdmin); err != nil {
		return err
	}
	return svc.repo.DeleteMember(ctx, memberID)
}

// Invite creates a single-use invitation token for email. Workspace admins only.
func (svc *Service) Invite(ctx context.Context, principal auth.Principal, workspaceID string, ni NewInvite) (Invite, error) {
	if _, err := svc.RequireRole(ctx, principal.ID, workspaceID, RoleAdmin); err != nil {
		return Invite{}, err
	}
	now := time.Now().UTC()
	inv := Invite{
		WorkspaceID: workspaceID,
		Email:       ni.Email,
		Token:       uuid.New().String(),
		InvitedBy:   principal.ID,
		ExpiresAt:   now.Add(inviteExpirationDelta),
		CreatedAt:   now,
	}
	inv, err := svc.repo.CreateInvite(ctx, inv)
	if err != nil {
		return Invite{}, err
	}
	svc.sendInviteEmail(ctx, inv)
	return inv, nil
}

func (svc *Service) sendInviteEmail(ctx context.Context, inv Invite) {
	if svc.mailSvc == nil {
		return
	}
	ws, err := svc.repo.GetWorkspace(ctx, inv.WorkspaceID)
	if err != nil {
		ws.Name = svc.conf.AppName
	}
	link := fmt.Sprintf("%s/invites/accept?token=%s", svc.conf.FrontendBaseURL, inv.Token)
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Address: inv.Email}},
		Subject: fmt.Sprintf("You have been invited to join %s", ws.Name),
		TextContent: fmt.Sprintf(
			"You have been invited to join the %s workspace.\n\n"+
				"Follow the link below to accept the invitation. It expires on %s.\n\n%s\n",
			ws.Name, inv.ExpiresAt.Format(time.RFC1123), link,
		),
	})
}

// AcceptInvite redeems a token for principal, marking the invite used and
// creating a team membership in the same transaction. The token is bound to
// the invited email; another principal holding a leaked token cannot use it.
func (svc *Service) AcceptInvite(ctx context.Context, principal auth.Principal, token string) (Member, error) {
	inv, err := svc.repo.GetInviteByToken(ctx, token)
	if err != nil {
		return Member{}, err
	}
	if inv.Used {
		return Member{}, core.NewConflictError(ErrInviteUsed)
	}
	if inv.Expired(time.Now().UTC()) {
		return Member{}, core.NewValidationError(ErrInviteExpired)
	}
	if !strings.EqualFold(principal.Email, inv.Email) {
		return Member{}, core.NewValidationError(ErrInviteEmailMismatch)
	}

	var m Member
	err = core.Atomic(ctx, svc.db, func(tx core.DBExecutor) error {
		if err := svc.repo.MarkInviteUsed(ctx, inv.ID, tx); err != nil {
			return errors.Wrap(err, "marking invite used")
		}
		var err error
		m, err = svc.repo.CreateMember(ctx, Member{
			WorkspaceID: inv.WorkspaceID,
			UserID:      principal.ID,
			Role:        RoleTeam,
			JoinedAt:    time.Now().UTC(),
		}, tx)
		if errors.Cause(err) == ErrMemberExists {
			return core.NewConflictError(ErrMemberExists)
		}
		return errors.Wrap(err, "creating membership")
	})
	if err != nil {
		return Member{}, err
	}
	return m, nil
}
