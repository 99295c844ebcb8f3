package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oosplatform/oos/core"
	"github.com/oosplatform/oos/core/auth"
	dummydb "github.com/oosplatform/oos/storage/database/dummy"
)

func setup(t *testing.T) (*auth.Service, auth.Repository) {
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	repo := dummydb.NewAdminGrantRepository(db)
	svc := auth.NewService(nil, repo, nil) // nil policy defaults to OpenSelfService
	return svc, repo
}

func TestService_GrantAdminBadge_selfService(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t)
	alice := auth.Principal{ID: "alice", Email: "alice@test.cd"}
	bob := auth.Principal{ID: "bob", Email: "bob@test.cd"}

	// no badge yet
	ok, err := svc.HasAdminBadge(ctx, alice.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, auth.ErrForbidden, svc.RequireAdminBadge(ctx, alice.ID))

	// self-grant succeeds
	grant, err := svc.GrantAdminBadge(ctx, alice, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, grant.UserID)
	assert.Equal(t, alice.ID, grant.GrantedBy)
	assert.NotEmpty(t, grant.ID)
	assert.False(t, grant.GrantedAt.IsZero())

	ok, err = svc.HasAdminBadge(ctx, alice.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, svc.RequireAdminBadge(ctx, alice.ID))

	// a second grant for the same principal is a conflict
	_, err = svc.GrantAdminBadge(ctx, alice, alice.ID)
	assert.IsType(t, &core.ConflictError{}, err)

	// granting someone else is not self-service
	_, err = svc.GrantAdminBadge(ctx, alice, bob.ID)
	assert.Equal(t, auth.ErrForbidden, err)

	// anonymous principals cannot grant
	_, err = svc.GrantAdminBadge(ctx, auth.Principal{}, "anyone")
	assert.Equal(t, auth.ErrForbidden, err)
}

func TestService_GrantAdminBadge_countersign(t *testing.T) {
	ctx := context.Background()
	svc, repo := setup(t)
	strict := auth.NewService(nil, repo, auth.Countersign{Svc: svc})

	alice := auth.Principal{ID: "alice"}
	bob := auth.Principal{ID: "bob"}

	// nobody holds a badge yet; even self-grant is refused
	_, err := strict.GrantAdminBadge(ctx, alice, alice.ID)
	assert.Equal(t, auth.ErrForbidden, err)

	// bootstrap alice through the open policy
	_, err = svc.GrantAdminBadge(ctx, alice, alice.ID)
	require.NoError(t, err)

	// a badge holder may countersign a grant for someone else
	grant, err := strict.GrantAdminBadge(ctx, alice, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, bob.ID, grant.UserID)
	assert.Equal(t, alice.ID, grant.GrantedBy)
}

func TestService_RevokeAdminBadge(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t)
	alice := auth.Principal{ID: "alice"}
	bob := auth.Principal{ID: "bob"}

	_, err := svc.GrantAdminBadge(ctx, alice, alice.ID)
	require.NoError(t, err)
	_, err = svc.GrantAdminBadge(ctx, bob, bob.ID)
	require.NoError(t, err)

	// revocation requires a badge of one's own
	assert.Equal(t, auth.ErrForbidden, svc.RevokeAdminBadge(ctx, auth.Principal{ID: "mallory"}, bob.ID))

	// effective immediately; every check re-reads persisted state
	require.NoError(t, svc.RevokeAdminBadge(ctx, alice, bob.ID))
	ok, err := svc.HasAdminBadge(ctx, bob.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	// revoking a missing grant
	assert.Equal(t, auth.ErrNotFound, svc.RevokeAdminBadge(ctx, alice, bob.ID))

	// a holder may drop their own badge
	require.NoError(t, svc.RevokeAdminBadge(ctx, alice, alice.ID))
	assert.Equal(t, auth.ErrForbidden, svc.RequireAdminBadge(ctx, alice.ID))
}

func TestService_ListGrants(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t)

	grants, err := svc.ListGrants(ctx)
	require.NoError(t, err)
	assert.Empty(t, grants)

	_, err = svc.GrantAdminBadge(ctx, auth.Principal{ID: "alice"}, "alice")
	require.NoError(t, err)
	time.Sleep(time.Millisecond)
	_, err = svc.GrantAdminBadge(ctx, auth.Principal{ID: "bob"}, "bob")
	require.NoError(t, err)

	grants, err = svc.ListGrants(ctx)
	require.NoError(t, err)
	require.Len(t, grants, 2)
	assert.Equal(t, "bob", grants[0].UserID) // most recent first
	assert.Equal(t, "alice", grants[1].UserID)
}
