package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/oosplatform/oos/core"
	"github.com/oosplatform/oos/core/auth"
)

const pqUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	if pqErr, ok := errors.Cause(err).(*pq.Error); ok {
		return pqErr.Code == pqUniqueViolation
	}
	return false
}

type adminGrantRow struct {
	ID        string      `db:"id"`
	UserID    string      `db:"user_id"`
	GrantedBy null.String `db:"granted_by"`
	GrantedAt null.Time   `db:"granted_at"`
}

func (r adminGrantRow) toGrant() auth.AdminGrant {
	return auth.AdminGrant{
		ID:        r.ID,
		UserID:    r.UserID,
		GrantedBy: r.GrantedBy.String,
		GrantedAt: r.GrantedAt.Time,
	}
}

type adminGrantRepository struct {
	exec core.DBExecutor
}

var _ auth.Repository = (*adminGrantRepository)(nil) // interface compliance check

func NewAdminGrantRepository(exec core.DBExecutor) *adminGrantRepository {
	return &adminGrantRepository{exec: exec}
}

func (repo adminGrantRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 && svcExec[0] != nil {
		return svcExec[0]
	}
	return repo.exec
}

func (repo adminGrantRepository) GetGrant(ctx context.Context, userID string, exec ...core.DBExecutor) (auth.AdminGrant, error) {
	var row adminGrantRow
	err := repo.getExec(exec).GetContext(ctx, &row,
		`SELECT * FROM admin_grant WHERE user_id = $1`, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return auth.AdminGrant{}, auth.ErrNotFound
		}
		return auth.AdminGrant{}, errors.Wrap(err, "finding admin grant")
	}
	return row.toGrant(), nil
}

func (repo adminGrantRepository) CreateGrant(ctx context.Context, grant auth.AdminGrant, exec ...core.DBExecutor) (auth.AdminGrant, error) {
	grant.ID = uuid.New().String()
	_, err := repo.getExec(exec).ExecContext(ctx,
		`INSERT INTO admin_grant (id, user_id, granted_by, granted_at) VALUES ($1, $2, $3, $4)`,
		grant.ID, grant.UserID, null.NewString(grant.GrantedBy, grant.GrantedBy != ""), grant.GrantedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return auth.AdminGrant{}, auth.ErrGrantExists
		}
		return auth.AdminGrant{}, errors.Wrap(err, "inserting admin grant")
	}
	return grant, nil
}

func (repo adminGrantRepository) DeleteGrant(ctx context.Context, userID string, exec ...core.DBExecutor) error {
	res, err := repo.getExec(exec).ExecContext(ctx,
		`DELETE FROM admin_grant WHERE user_id = $1`, userID)
	if err != nil {
		return errors.Wrap(err, "deleting admin grant")
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return auth.ErrNotFound
	}
	return nil
}

func (repo adminGrantRepository) QueryGrants(ctx context.Context, exec ...core.DBExecutor) ([]auth.AdminGrant, error) {
	var rows []adminGrantRow
	err := repo.getExec(exec).SelectContext(ctx, &rows,
		`SELECT * FROM admin_grant ORDER BY granted_at DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "querying admin grants")
	}
	grants := make([]auth.AdminGrant, 0, len(rows))
	for _, row := range rows {
		grants = append(grants, row.toGrant())
	}
	return grants, nil
}
