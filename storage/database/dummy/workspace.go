package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/oosplatform/oos/core"
	"github.com/oosplatform/oos/core/workspace"
)

type workspaceRepository struct {
	db *workspaceTable
}

var _ workspace.Repository = (*workspaceRepository)(nil) // interface compliance check

func NewWorkspaceRepository(db *DB) workspace.Repository {
	return &workspaceRepository{db: db.workspaces}
}

func (repo *workspaceRepository) CreateWorkspace(ctx context.Context, ws workspace.Workspace, exec ...core.DBExecutor) (workspace.Workspace, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	ws.ID = uuid.New().String()
	repo.db.table[ws.ID] = &ws
	return ws, nil
}

func (repo *workspaceRepository) GetWorkspace(ctx context.Context, id string, exec ...core.DBExecutor) (workspace.Workspace, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if ws, ok := repo.db.table[id]; ok {
		return *ws, nil
	}
	return workspace.Workspace{}, workspace.ErrNotFound
}

func (repo *workspaceRepository) QueryWorkspacesByUser(ctx context.Context, userID string, exec ...core.DBExecutor) ([]workspace.Workspace, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var workspaces []workspace.Workspace
	for _, m := range repo.db.members {
		if m.UserID != userID {
			continue
		}
		if ws, ok := repo.db.table[m.WorkspaceID]; ok {
			workspaces = append(workspaces, *ws)
		}
	}
	sort.Slice(workspaces, func(i, j int) bool { return workspaces[i].CreatedAt.Before(workspaces[j].CreatedAt) })
	return workspaces, nil
}

func (repo *workspaceRepository) UpdateWorkspace(ctx context.Context, ws workspace.Workspace, exec ...core.DBExecutor) (workspace.Workspace, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[ws.ID]; !ok {
		return workspace.Workspace{}, workspace.ErrNotFound
	}
	repo.db.table[ws.ID] = &ws
	return ws, nil
}

func (repo *workspaceRepository) DeleteWorkspace(ctx context.Context, id string, exec ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return workspace.ErrNotFound
	}
	delete(repo.db.table, id)
	for mid, m := range repo.db.members {
		if m.WorkspaceID == id {
			delete(repo.db.members, mid)
		}
	}
	for iid, inv := range repo.db.invites {
		if inv.WorkspaceID == id {
			delete(repo.db.invites, iid)
		}
	}
	return nil
}

func (repo *workspaceRepository) CreateMember(ctx context.Context, m workspace.Member, exec ...core.DBExecutor) (workspace.Member, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, existing := range repo.db.members {
		if existing.WorkspaceID == m.WorkspaceID && existing.UserID == m.UserID {
			return workspace.Member{}, workspace.ErrMemberExists
		}
	}
	m.ID = uuid.New().String()
	repo.db.members[m.ID] = &m
	return m, nil
}

func (repo *workspaceRepository) GetMember(ctx context.Context, workspaceID, userID string, exec ...core.DBExecutor) (workspace.Member, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, m := range repo.db.members {
		if m.WorkspaceID == workspaceID && m.UserID == userID {
			return *m, nil
		}
	}
	return workspace.Member{}, workspace.ErrMemberNotFound
}

func (repo *workspaceRepository) QueryMembers(ctx context.Context, workspaceID string, exec ...core.DBExecutor) ([]workspace.Member, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var members []workspace.Member
	for _, m := range repo.db.members {
		if m.WorkspaceID == workspaceID {
			members = append(members, *m)
		}
	}
	sort.Slice(members, func(i, j int) bool { return members[i].JoinedAt.Before(members[j].JoinedAt) })
	return members, nil
}

func (repo *workspaceRepository) UpdateMemberRole(ctx context.Context, memberID, role string, exec ...core.DBExecutor) (workspace.Member, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	m, ok := repo.db.members[memberID]
	if !ok {
		return workspace.Member{}, workspace.ErrMemberNotFound
	}
	m.Role = role
	return *m, nil
}

func (repo *workspaceRepository) DeleteMember(ctx context.Context, memberID string, exec ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.members[memberID]; !ok {
		return workspace.ErrMemberNotFound
	}
	delete(repo.db.members, memberID)
	return nil
}

func (repo *workspaceRepository) CreateInvite(ctx context.Context, inv workspace.Invite, exec ...core.DBExecutor) (workspace.Invite, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	inv.ID = uuid.New().String()
	repo.db.invites[inv.ID] = &inv
	return inv, nil
}

func (repo *workspaceRepository) GetInviteByToken(ctx context.Context, token string, exec ...core.DBExecutor) (workspace.Invite, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, inv := range repo.db.invites {
		if inv.Token == token {
			return *inv, nil
		}
	}
	return workspace.Invite{}, workspace.ErrInviteNotFound
}

func (repo *workspaceRepository) MarkInviteUsed(ctx context.Context, id string, exec ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	inv, ok := repo.db.invites[id]
	if !ok {
		return workspace.ErrInviteNotFound
	}
	if inv.Used {
		return workspace.ErrInviteUsed
	}
	inv.Used = true
	return nil
}
