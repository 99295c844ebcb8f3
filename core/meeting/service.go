package meeting

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/oosplatform/oos/core"
	"github.com/oosplatform/oos/core/auth"
	"github.com/oosplatform/oos/core/workspace"
)

var (
	// errors
	ErrNotFound = errors.New("meeting not found")
	ErrEnded    = errors.New("meeting has already ended")
)

type (
	// TokenIssuer signs room-join tokens scoped to a single named room.
	TokenIssuer interface {
		IssueToken(roomName, participantIdentity string) (string, error)
	}

	Repository interface {
		CreateMeeting(ctx context.Context, m Meeting, exec ...core.DBExecutor) (Meeting, error)
		GetMeeting(ctx context.Context, id string, exec ...core.DBExecutor) (Meeting, error)
		QueryMeetings(ctx context.Context, workspaceID string, exec ...core.DBExecutor) ([]Meeting, error)
		UpdateMeeting(ctx context.Context, m Meeting, exec ...core.DBExecutor) (Meeting, error)
		// IncrementParticipantCount bumps the count in place so concurrent
		// joins cannot lose increments.
		IncrementParticipantCount(ctx context.Context, id string, exec ...core.DBExecutor) (Meeting, error)
	}

	Service struct {
		repo   Repository
		wsSvc  *workspace.Service
		issuer TokenIssuer
	}
)

func NewService(repo Repository, wsSvc *workspace.Service, issuer TokenIssuer) *Service {
	return &Service{repo: repo, wsSvc: wsSvc, issuer: issuer}
}

// Start opens a meeting room in the workspace. Members only.
func (svc *Service) Start(ctx context.Context, principal auth.Principal, workspaceID string, nm NewMeeting) (Meeting, error) {
	if _, err := svc.wsSvc.RequireMember(ctx, principal.ID, workspaceID); err != nil {
		return Meeting{}, err
	}
	now := time.Now().UTC()
	return svc.repo.CreateMeeting(ctx, Meeting{
		WorkspaceID: workspaceID,
		AdminID:     principal.ID,
		RoomName:    nm.RoomName,
		StartedAt:   now,
		CreatedAt:   now,
	})
}

// JoinToken issues a signed token for the meeting's room, scoped to join,
// publish and subscribe on that room only. Members only.
func (svc *Service) JoinToken(ctx context.Context, principal auth.Principal, meetingID string) (string, error) {
	m, err := svc.repo.GetMeeting(ctx, meetingID)
	if err != nil {
		return "", err
	}
	if _, err = svc.wsSvc.RequireMember(ctx, principal.ID, m.WorkspaceID); err != nil {
		return "", err
	}
	if m.Ended() {
		return "", core.NewConflictError(ErrEnded)
	}

	identity := principal.Email
	if identity == "" {
		identity = principal.ID
	}
	token, err := svc.issuer.IssueToken(m.RoomName, identity)
	if err != nil {
		return "", errors.Wrap(err, "issuing room token")
	}

	if _, err = svc.repo.IncrementParticipantCount(ctx, m.ID); err != nil {
		return "", errors.Wrap(err, "counting participant")
	}
	return token, nil
}

// End closes the meeting. The member who started it or any workspace admin.
func (svc *Service) End(ctx context.Context, principal auth.Principal, meetingID string) (Meeting, error) {
	m, err := svc.repo.GetMeeting(ctx, meetingID)
	if err != nil {
		return Meeting{}, err
	}
	if m.Ended() {
		return Meeting{}, core.NewConflictError(ErrEnded)
	}
	if m.AdminID != principal.ID {
		if _, err = svc.wsSvc.RequireRole(ctx, principal.ID, m.WorkspaceID, workspace.RoleAdmin); err != nil {
			return Meeting{}, err
		}
	}
	m.EndedAt = time.Now().UTC()
	return svc.repo.UpdateMeeting(ctx, m)
}

// Query lists a workspace's meetings. Members only.
func (svc *Service) Query(ctx context.Context, principal auth.Principal, workspaceID string) ([]Meeting, error) {
	if _, err := svc.wsSvc.RequireMember(ctx, principal.ID, workspaceID); err != nil {
		return nil, err
	}
	return svc.repo.QueryMeetings(ctx, workspaceID)
}
