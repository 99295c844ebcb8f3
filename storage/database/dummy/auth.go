package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/oosplatform/oos/core"
	"github.com/oosplatform/oos/core/auth"
)

type grantRepository struct {
	db *grantTable
}

var _ auth.Repository = (*grantRepository)(nil) // interface compliance check

func NewAdminGrantRepository(db *DB) auth.Repository {
	return &grantRepository{db: db.grants}
}

func (repo *grantRepository) GetGrant(ctx context.Context, userID string, exec ...core.DBExecutor) (auth.AdminGrant, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if grant, ok := repo.db.table[userID]; ok {
		return *grant, nil
	}
	return auth.AdminGrant{}, auth.ErrNotFound
}

func (repo *grantRepository) CreateGrant(ctx context.Context, grant auth.AdminGrant, exec ...core.DBExecutor) (auth.AdminGrant, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[grant.UserID]; ok {
		return auth.AdminGrant{}, auth.ErrGrantExists
	}
	grant.ID = uuid.New().String()
	repo.db.table[grant.UserID] = &grant
	return grant, nil
}

func (repo *grantRepository) DeleteGrant(ctx context.Context, userID string, exec ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[userID]; !ok {
		return auth.ErrNotFound
	}
	delete(repo.db.table, userID)
	return nil
}

func (repo *grantRepository) QueryGrants(ctx context.Context, exec ...core.DBExecutor) ([]auth.AdminGrant, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	grants := make([]auth.AdminGrant, 0, len(repo.db.table))
	for _, grant := range repo.db.table {
		grants = append(grants, *grant)
	}
	sort.Slice(grants, func(i, j int) bool { return grants[i].GrantedAt.After(grants[j].GrantedAt) })
	return grants, nil
}
