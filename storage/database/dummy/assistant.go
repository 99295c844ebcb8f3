package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/oosplatform/oos/core"
	"github.com/oosplatform/oos/core/assistant"
)

type contentRepository struct {
	db *contentTable
}

var _ assistant.Repository = (*contentRepository)(nil) // interface compliance check

func NewContentRepository(db *DB) assistant.Repository {
	return &contentRepository{db: db.contents}
}

func (repo *contentRepository) CreateContent(ctx context.Context, c assistant.Content, exec ...core.DBExecutor) (assistant.Content, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	c.ID = uuid.New().String()
	repo.db.table[c.ID] = &c
	return c, nil
}

func (repo *contentRepository) QueryContent(ctx context.Context, workspaceID, startupID string, exec ...core.DBExecutor) ([]assistant.Content, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var contents []assistant.Content
	for _, c := range repo.db.table {
		if workspaceID != "" && c.WorkspaceID != workspaceID {
			continue
		}
		if startupID != "" && c.StartupID != startupID {
			continue
		}
		contents = append(contents, *c)
	}
	sort.Slice(contents, func(i, j int) bool { return contents[i].CreatedAt.After(contents[j].CreatedAt) })
	return contents, nil
}
