package meeting_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oosplatform/oos/core"
	"github.com/oosplatform/oos/core/auth"
	"github.com/oosplatform/oos/core/meeting"
	"github.com/oosplatform/oos/core/workspace"
	dummydb "github.com/oosplatform/oos/storage/database/dummy"
)

var (
	admin    = auth.Principal{ID: "admin", Email: "admin@test.cd"}
	teammate = auth.Principal{ID: "teammate", Email: "mate@test.cd"}
	stranger = auth.Principal{ID: "stranger", Email: "stranger@test.cd"}
)

// fakeIssuer emits predictable tokens and records the last room it signed
// for.
type fakeIssuer struct {
	lastRoom string
}

var _ meeting.TokenIssuer = (*fakeIssuer)(nil)

func (i *fakeIssuer) IssueToken(roomName, participantIdentity string) (string, error) {
	i.lastRoom = roomName
	return fmt.Sprintf("token:%s:%s", roomName, participantIdentity), nil
}

func setup(t *testing.T) (*meeting.Service, workspace.Workspace, *fakeIssuer) {
	ctx := context.Background()
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	authSvc := auth.NewService(nil, dummydb.NewAdminGrantRepository(db), nil)
	wsSvc := workspace.NewService(nil, dummydb.NewWorkspaceRepository(db), authSvc, nil, nil)
	issuer := &fakeIssuer{}
	svc := meeting.NewService(dummydb.NewMeetingRepository(db), wsSvc, issuer)

	if _, err := authSvc.GrantAdminBadge(ctx, admin, admin.ID); err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	ws, err := wsSvc.Create(ctx, admin, workspace.NewWorkspace{Name: "Acme"})
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	inv, err := wsSvc.Invite(ctx, admin, ws.ID, workspace.NewInvite{Email: teammate.Email})
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	if _, err := wsSvc.AcceptInvite(ctx, teammate, inv.Token); err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	return svc, ws, issuer
}

func TestService_Start(t *testing.T) {
	ctx := context.Background()
	svc, ws, _ := setup(t)

	// members only
	_, err := svc.Start(ctx, stranger, ws.ID, meeting.NewMeeting{RoomName: "standup"})
	assert.Equal(t, workspace.ErrMemberNotFound, err)

	m, err := svc.Start(ctx, teammate, ws.ID, meeting.NewMeeting{RoomName: "standup"})
	require.NoError(t, err)
	assert.NotEmpty(t, m.ID)
	assert.Equal(t, teammate.ID, m.AdminID)
	assert.Equal(t, "standup", m.RoomName)
	assert.False(t, m.StartedAt.IsZero())
	assert.False(t, m.Ended())
	assert.Zero(t, m.ParticipantCount)
}

func TestService_JoinToken(t *testing.T) {
	ctx := context.Background()
	svc, ws, issuer := setup(t)
	m, err := svc.Start(ctx, admin, ws.ID, meeting.NewMeeting{RoomName: "standup"})
	require.NoError(t, err)

	_, err = svc.JoinToken(ctx, stranger, m.ID)
	assert.Equal(t, workspace.ErrMemberNotFound, err)

	token, err := svc.JoinToken(ctx, teammate, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "token:standup:"+teammate.Email, token)
	assert.Equal(t, "standup", issuer.lastRoom)

	// each issued token counts a participant
	_, err = svc.JoinToken(ctx, admin, m.ID)
	require.NoError(t, err)
	got, err := svc.Query(ctx, admin, ws.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].ParticipantCount)

	// no tokens for ended meetings
	_, err = svc.End(ctx, admin, m.ID)
	require.NoError(t, err)
	_, err = svc.JoinToken(ctx, teammate, m.ID)
	assert.IsType(t, &core.ConflictError{}, err)
}

func TestService_End(t *testing.T) {
	ctx := context.Background()
	svc, ws, _ := setup(t)
	m, err := svc.Start(ctx, teammate, ws.ID, meeting.NewMeeting{RoomName: "standup"})
	require.NoError(t, err)

	// neither the starter nor a workspace admin
	_, err = svc.End(ctx, stranger, m.ID)
	assert.Equal(t, workspace.ErrMemberNotFound, err)

	// a workspace admin may end someone else's meeting
	ended, err := svc.End(ctx, admin, m.ID)
	require.NoError(t, err)
	assert.True(t, ended.Ended())

	_, err = svc.End(ctx, teammate, m.ID)
	assert.IsType(t, &core.ConflictError{}, err)
}
