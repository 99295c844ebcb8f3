package assistant_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oosplatform/oos/core/assistant"
	"github.com/oosplatform/oos/core/auth"
	"github.com/oosplatform/oos/core/startup"
	"github.com/oosplatform/oos/core/workspace"
	aisvc "github.com/oosplatform/oos/services/ai"
	dummydb "github.com/oosplatform/oos/storage/database/dummy"
)

var (
	admin    = auth.Principal{ID: "admin", Email: "admin@test.cd"}
	founder  = auth.Principal{ID: "founder", Email: "founder@test.cd"}
	stranger = auth.Principal{ID: "stranger", Email: "stranger@test.cd"}
)

type fixture struct {
	svc *assistant.Service
	ws  workspace.Workspace
	s   startup.Startup
}

func setup(t *testing.T) fixture {
	ctx := context.Background()
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	authSvc := auth.NewService(nil, dummydb.NewAdminGrantRepository(db), nil)
	wsSvc := workspace.NewService(nil, dummydb.NewWorkspaceRepository(db), authSvc, nil, nil)
	startupSvc := startup.NewService(nil, dummydb.NewStartupRepository(db))
	svc := assistant.NewService(dummydb.NewContentRepository(db), aisvc.NewStubService(), wsSvc, startupSvc)

	if _, err := authSvc.GrantAdminBadge(ctx, admin, admin.ID); err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	ws, err := wsSvc.Create(ctx, admin, workspace.NewWorkspace{Name: "Acme"})
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	s, err := startupSvc.Register(ctx, founder, startup.NewStartup{Name: "RiverCargo", Pitch: "Cargo."})
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	return fixture{svc: svc, ws: ws, s: s}
}

func TestService_Generate(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	// workspace scope requires membership
	_, err := f.svc.Generate(ctx, stranger, assistant.GenerateRequest{
		WorkspaceID: f.ws.ID,
		ContentType: assistant.TypeMeetingMinutes,
		Prompt:      "summarize the standup",
	})
	assert.Equal(t, workspace.ErrMemberNotFound, err)

	c, err := f.svc.Generate(ctx, admin, assistant.GenerateRequest{
		WorkspaceID: f.ws.ID,
		ContentType: assistant.TypeMeetingMinutes,
		Prompt:      "summarize the standup",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, f.ws.ID, c.WorkspaceID)
	assert.Equal(t, assistant.TypeMeetingMinutes, c.ContentType)
	assert.Contains(t, c.Content, "summarize the standup")

	// startup scope requires ownership
	_, err = f.svc.Generate(ctx, admin, assistant.GenerateRequest{
		StartupID:   f.s.ID,
		ContentType: assistant.TypeRiskAnalysis,
		Prompt:      "assess our runway",
	})
	assert.Equal(t, auth.ErrForbidden, err)

	c, err = f.svc.Generate(ctx, founder, assistant.GenerateRequest{
		StartupID:   f.s.ID,
		ContentType: assistant.TypeRiskAnalysis,
		Prompt:      "assess our runway",
	})
	require.NoError(t, err)
	assert.Equal(t, f.s.ID, c.StartupID)
}

func TestService_Query(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	_, err := f.svc.Generate(ctx, admin, assistant.GenerateRequest{
		WorkspaceID: f.ws.ID,
		ContentType: assistant.TypeBusinessInsights,
		Prompt:      "insights please",
	})
	require.NoError(t, err)
	_, err = f.svc.Generate(ctx, founder, assistant.GenerateRequest{
		StartupID:   f.s.ID,
		ContentType: assistant.TypeStartupRating,
		Prompt:      "rate us",
	})
	require.NoError(t, err)

	// the generate gates apply to reads too
	_, err = f.svc.Query(ctx, stranger, f.ws.ID, "")
	assert.Equal(t, workspace.ErrMemberNotFound, err)
	_, err = f.svc.Query(ctx, admin, "", f.s.ID)
	assert.Equal(t, auth.ErrForbidden, err)

	got, err := f.svc.Query(ctx, admin, f.ws.ID, "")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, assistant.TypeBusinessInsights, got[0].ContentType)

	got, err = f.svc.Query(ctx, founder, "", f.s.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, assistant.TypeStartupRating, got[0].ContentType)
}
