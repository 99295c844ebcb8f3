package startup_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oosplatform/oos/core"
	"github.com/oosplatform/oos/core/auth"
	"github.com/oosplatform/oos/core/startup"
	dummydb "github.com/oosplatform/oos/storage/database/dummy"
)

var (
	founder    = auth.Principal{ID: "founder", Email: "founder@test.cd"}
	supporter  = auth.Principal{ID: "supporter", Email: "supporter@test.cd"}
	interloper = auth.Principal{ID: "interloper", Email: "interloper@test.cd"}
)

func setup(t *testing.T) (*startup.Service, startup.Repository) {
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	repo := dummydb.NewStartupRepository(db)
	return startup.NewService(nil, repo), repo
}

func registerStartup(t *testing.T, svc *startup.Service, name string) startup.Startup {
	s, err := svc.Register(context.Background(), founder, startup.NewStartup{
		Name:  name,
		Pitch: "We move cargo across the river faster than anyone.",
	})
	if err != nil {
		t.Fatalf("registerStartup() failed: %v", err)
	}
	return s
}

func TestService_Register(t *testing.T) {
	svc, _ := setup(t)
	s := registerStartup(t, svc, "RiverCargo")

	assert.NotEmpty(t, s.ID)
	assert.Equal(t, founder.ID, s.OwnerID)
	assert.Equal(t, startup.TierRegistered, s.VerificationTier)
	assert.Equal(t, startup.KYCPending, s.KYCStatus)
	assert.True(t, s.IsActive)
	assert.False(t, s.BankAccountVerified)
	assert.Zero(t, s.SubscriberCount)

	// registration sets the two year expiry
	wantExpiry := s.CreatedAt.Add(startup.ExpirationDelta)
	assert.Equal(t, wantExpiry, s.ExpiresAt)
	assert.False(t, s.Expired(time.Now().UTC()))
	assert.True(t, s.Expired(wantExpiry.Add(time.Second)))
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t)
	s := registerStartup(t, svc, "RiverCargo")

	_, err := svc.Update(ctx, interloper, s.ID, startup.UpdateStartup{Name: "Hijacked"})
	assert.Equal(t, auth.ErrForbidden, err)

	updated, err := svc.Update(ctx, founder, s.ID, startup.UpdateStartup{
		Name:  "RiverCargo Ltd",
		Pitch: s.Pitch,
	})
	require.NoError(t, err)
	assert.Equal(t, "RiverCargo Ltd", updated.Name)
	// tier and kyc are reserved for the verification workflow
	assert.Equal(t, startup.TierRegistered, updated.VerificationTier)
	assert.Equal(t, startup.KYCPending, updated.KYCStatus)
}

func TestService_Deactivate(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t)
	s := registerStartup(t, svc, "RiverCargo")

	err := svc.Deactivate(ctx, interloper, s.ID, "not mine")
	assert.Equal(t, auth.ErrForbidden, err)

	require.NoError(t, svc.Deactivate(ctx, founder, s.ID, "pivoting"))
	got, err := svc.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	// already deactivated
	err = svc.Deactivate(ctx, founder, s.ID, "again")
	assert.IsType(t, &core.ConflictError{}, err)
}

func TestService_Subscribe(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t)
	s := registerStartup(t, svc, "RiverCargo")

	_, err := svc.Subscribe(ctx, supporter, "missing")
	assert.Equal(t, startup.ErrNotFound, err)

	sub, err := svc.Subscribe(ctx, supporter, s.ID)
	require.NoError(t, err)
	assert.Equal(t, supporter.ID, sub.UserID)

	got, err := svc.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.SubscriberCount)

	ok, err := svc.IsSubscribed(ctx, supporter.ID, s.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	// at most one subscription per (startup, user) pair
	_, err = svc.Subscribe(ctx, supporter, s.ID)
	assert.IsType(t, &core.ConflictError{}, err)
	got, err = svc.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.SubscriberCount)

	require.NoError(t, svc.Unsubscribe(ctx, supporter, s.ID))
	got, err = svc.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Zero(t, got.SubscriberCount)

	ok, err = svc.IsSubscribed(ctx, supporter.ID, s.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	err = svc.Unsubscribe(ctx, supporter, s.ID)
	assert.Equal(t, startup.ErrNotSubscribed, err)
}

func TestService_Comments(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t)
	s := registerStartup(t, svc, "RiverCargo")
	private := false

	_, err := svc.Comment(ctx, supporter, s.ID, startup.NewComment{Content: "Great pitch!"})
	require.NoError(t, err)
	_, err = svc.Comment(ctx, supporter, s.ID, startup.NewComment{Content: "Between us", IsPublic: &private})
	require.NoError(t, err)

	// visitors only see public comments
	comments, err := svc.Comments(ctx, supporter, s.ID)
	require.NoError(t, err)
	assert.Len(t, comments, 1)

	// the owner sees private ones too
	comments, err = svc.Comments(ctx, founder, s.ID)
	require.NoError(t, err)
	assert.Len(t, comments, 2)
}

func TestService_Filter(t *testing.T) {
	ctx := context.Background()
	svc, repo := setup(t)
	a := registerStartup(t, svc, "RiverCargo")
	b := registerStartup(t, svc, "SolarGrid")
	require.NoError(t, svc.Deactivate(ctx, founder, b.ID, ""))

	// verified tier filter
	a.VerificationTier = startup.TierVerified
	_, err := repo.UpdateStartup(ctx, a)
	require.NoError(t, err)

	active := true
	got, err := svc.Filter(ctx, &startup.QueryFilter{IsActive: &active}, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, a.ID, got[0].ID)

	got, err = svc.Filter(ctx, &startup.QueryFilter{Search: "solar"}, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, b.ID, got[0].ID)

	got, err = svc.Filter(ctx, &startup.QueryFilter{Tier: startup.TierVerified}, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, a.ID, got[0].ID)

	got, err = svc.Filter(ctx, nil, nil)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
