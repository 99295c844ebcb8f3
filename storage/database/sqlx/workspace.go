package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/oosplatform/oos/core"
	"github.com/oosplatform/oos/core/workspace"
)

type workspaceRow struct {
	ID                 string      `db:"id"`
	Name               string      `db:"name"`
	Description        null.String `db:"description"`
	AdminID            string      `db:"admin_id"`
	VerificationStatus string      `db:"verification_status"`
	CreatedAt          null.Time   `db:"created_at"`
	UpdatedAt          null.Time   `db:"updated_at"`
}

func (r workspaceRow) toWorkspace() workspace.Workspace {
	return workspace.Workspace{
		ID:                 r.ID,
		Name:               r.Name,
		Description:        r.Description.String,
		AdminID:            r.AdminID,
		VerificationStatus: r.VerificationStatus,
		CreatedAt:          r.CreatedAt.Time,
		UpdatedAt:          r.UpdatedAt.Time,
	}
}

type memberRow struct {
	ID          string    `db:"id"`
	WorkspaceID string    `db:"workspace_id"`
	UserID      string    `db:"user_id"`
	Role        string    `db:"role"`
	JoinedAt    null.Time `db:"joined_at"`
}

func (r memberRow) toMember() workspace.Member {
	return workspace.Member{
		ID:          r.ID,
		WorkspaceID: r.WorkspaceID,
		UserID:      r.UserID,
		Role:        r.Role,
		JoinedAt:    r.JoinedAt.Time,
	}
}

type inviteRow struct {
	ID          string      `db:"id"`
	WorkspaceID string      `db:"workspace_id"`
	Email       string      `db:"email"`
	Token       string      `db:"token"`
	InvitedBy   null.String `db:"invited_by"`
	ExpiresAt   null.Time   `db:"expires_at"`
	Used        bool        `db:"used"`
	CreatedAt   null.Time   `db:"created_at"`
}

func (r inviteRow) toInvite() workspace.Invite {
	return workspace.Invite{
		ID:          r.ID,
		WorkspaceID: r.WorkspaceID,
		Email:       r.Email,
		Token:       r.Token,
		InvitedBy:   r.InvitedBy.String,
		ExpiresAt:   r.ExpiresAt.Time,
		Used:        r.Used,
		CreatedAt:   r.CreatedAt.Time,
	}
}

type workspaceRepository struct {
	exec core.DBExecutor
}

var _ workspace.Repository = (*workspaceRepository)(nil) // interface compliance check

func NewWorkspaceRepository(exec core.DBExecutor) *workspaceRepository {
	return &workspaceRepository{exec: exec}
}

func (repo workspaceRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 && svcExec[0] != nil {
		return svcExec[0]
	}
	return repo.exec
}

func (repo workspaceRepository) CreateWorkspace(ctx context.Context, ws workspace.Workspace, exec ...core.DBExecutor) (workspace.Workspace, error) {
	ws.ID = uuid.New().String()
	_, err := repo.getExec(exec).ExecContext(ctx,
		`INSERT INTO workspace (id, name, description, admin_id, verification_status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		ws.ID, ws.Name, null.NewString(ws.Description, ws.Description != ""), ws.AdminID,
		ws.VerificationStatus, ws.CreatedAt, ws.UpdatedAt)
	if err != nil {
		return workspace.Workspace{}, errors.Wrap(err, "inserting workspace")
	}
	return ws, nil
}

func (repo workspaceRepository) GetWorkspace(ctx context.Context, id string, exec ...core.DBExecutor) (workspace.Workspace, error) {
	if _, err := uuid.Parse(id); err != nil {
		return workspace.Workspace{}, workspace.ErrNotFound
	}
	var row workspaceRow
	err := repo.getExec(exec).GetContext(ctx, &row, `SELECT * FROM workspace WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return workspace.Workspace{}, workspace.ErrNotFound
		}
		return workspace.Workspace{}, errors.Wrap(err, "finding workspace")
	}
	return row.toWorkspace(), nil
}

func (repo workspaceRepository) QueryWorkspacesByUser(ctx context.Context, userID string, exec ...core.DBExecutor) ([]workspace.Workspace, error) {
	var rows []workspaceRow
	err := repo.getExec(exec).SelectContext(ctx, &rows,
		`SELECT w.* FROM workspace w
		 JOIN workspace_member m ON m.workspace_id = w.id
		 WHERE m.user_id = $1
		 ORDER BY w.created_at DESC`, userID)
	if err != nil {
		return nil, errors.Wrap(err, "querying workspaces")
	}
	wss := make([]workspace.Workspace, 0, len(rows))
	for _, row := range rows {
		wss = append(wss, row.toWorkspace())
	}
	return wss, nil
}

func (repo workspaceRepository) UpdateWorkspace(ctx context.Context, ws workspace.Workspace, exec ...core.DBExecutor) (workspace.Workspace, error) {
	res, err := repo.getExec(exec).ExecContext(ctx,
		`UPDATE workspace SET name = $2, description = $3, verification_status = $4, updated_at = $5 WHERE id = $1`,
		ws.ID, ws.Name, null.NewString(ws.Description, ws.Description != ""), ws.VerificationStatus, ws.UpdatedAt)
	if err != nil {
		return workspace.Workspace{}, errors.Wrap(err, "updating workspace")
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return workspace.Workspace{}, workspace.ErrNotFound
	}
	return ws, nil
}

func (repo workspaceRepository) DeleteWorkspace(ctx context.Context, id string, exec ...core.DBExecutor) error {
	// memberships and invites cascade via FK
	res, err := repo.getExec(exec).ExecContext(ctx, `DELETE FROM workspace WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting workspace")
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return workspace.ErrNotFound
	}
	return nil
}

func (repo workspaceRepository) CreateMember(ctx context.Context, m workspace.Member, exec ...core.DBExecutor) (workspace.Member, error) {
	m.ID = uuid.New().String()
	_, err := repo.getExec(exec).ExecContext(ctx,
		`INSERT INTO workspace_member (id, workspace_id, user_id, role, joined_at) VALUES ($1, $2, $3, $4, $5)`,
		m.ID, m.WorkspaceID, m.UserID, m.Role, m.JoinedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return workspace.Member{}, workspace.ErrMemberExists
		}
		return workspace.Member{}, errors.Wrap(err, "inserting member")
	}
	return m, nil
}

func (repo workspaceRepository) GetMember(ctx context.Context, workspaceID, userID string, exec ...core.DBExecutor) (workspace.Member, error) {
	var row memberRow
	err := repo.getExec(exec).GetContext(ctx, &row,
		`SELECT * FROM workspace_member WHERE workspace_id = $1 AND user_id = $2`, workspaceID, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return workspace.Member{}, workspace.ErrMemberNotFound
		}
		return workspace.Member{}, errors.Wrap(err, "finding member")
	}
	return row.toMember(), nil
}

func (repo workspaceRepository) QueryMembers(ctx context.Context, workspaceID string, exec ...core.DBExecutor) ([]workspace.Member, error) {
	var rows []memberRow
	err := repo.getExec(exec).SelectContext(ctx, &rows,
		`SELECT * FROM workspace_member WHERE workspace_id = $1 ORDER BY joined_at`, workspaceID)
	if err != nil {
		return nil, errors.Wrap(err, "querying members")
	}
	members := make([]workspace.Member, 0, len(rows))
	for _, row := range rows {
		members = append(members, row.toMember())
	}
	return members, nil
}

func (repo workspaceRepository) UpdateMemberRole(ctx context.Context, memberID, role string, exec ...core.DBExecutor) (workspace.Member, error) {
	var row memberRow
	err := repo.getExec(exec).GetContext(ctx, &row,
		`UPDATE workspace_member SET role = $2 WHERE id = $1 RETURNING *`, memberID, role)
	if err != nil {
		if err == sql.ErrNoRows {
			return workspace.Member{}, workspace.ErrMemberNotFound
		}
		return workspace.Member{}, errors.Wrap(err, "updating member role")
	}
	return row.toMember(), nil
}

func (repo workspaceRepository) DeleteMember(ctx context.Context, memberID string, exec ...core.DBExecutor) error {
	res, err := repo.getExec(exec).ExecContext(ctx, `DELETE FROM workspace_member WHERE id = $1`, memberID)
	if err != nil {
		return errors.Wrap(err, "deleting member")
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return workspace.ErrMemberNotFound
	}
	return nil
}

func (repo workspaceRepository) CreateInvite(ctx context.Context, inv workspace.Invite, exec ...core.DBExecutor) (workspace.Invite, error) {
	inv.ID = uuid.New().String()
	_, err := repo.getExec(exec).ExecContext(ctx,
		`INSERT INTO workspace_invite (id, workspace_id, email, token, invited_by, expires_at, used, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		inv.ID, inv.WorkspaceID, inv.Email, inv.Token,
		null.NewString(inv.InvitedBy, inv.InvitedBy != ""), inv.ExpiresAt, inv.Used, inv.CreatedAt)
	if err != nil {
		return workspace.Invite{}, errors.Wrap(err, "inserting invite")
	}
	return inv, nil
}

func (repo workspaceRepository) GetInviteByToken(ctx context.Context, token string, exec ...core.DBExecutor) (workspace.Invite, error) {
	var row inviteRow
	err := repo.getExec(exec).GetContext(ctx, &row,
		`SELECT * FROM workspace_invite WHERE token = $1`, token)
	if err != nil {
		if err == sql.ErrNoRows {
			return workspace.Invite{}, workspace.ErrInviteNotFound
		}
		return workspace.Invite{}, errors.Wrap(err, "finding invite")
	}
	return row.toInvite(), nil
}

func (repo workspaceRepository) MarkInviteUsed(ctx context.Context, id string, exec ...core.DBExecutor) error {
	res, err := repo.getExec(exec).ExecContext(ctx,
		`UPDATE workspace_invite SET used = TRUE WHERE id = $1 AND NOT used`, id)
	if err != nil {
		return errors.Wrap(err, "marking invite used")
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return workspace.ErrInviteUsed
	}
	return nil
}
