package sqlxrepos

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/oosplatform/oos/core"
	"github.com/oosplatform/oos/core/startup"
)

type startupRow struct {
	ID                  string      `db:"id"`
	UserID              string      `db:"user_id"`
	Name                string      `db:"name"`
	Description         null.String `db:"description"`
	Pitch               string      `db:"pitch"`
	WebsiteURL          null.String `db:"website_url"`
	VerificationTier    string      `db:"verification_tier"`
	KYCStatus           string      `db:"kyc_status"`
	BankName            null.String `db:"bank_name"`
	BankAccount         null.String `db:"bank_account"`
	BankAccountName     null.String `db:"bank_account_name"`
	BankAccountVerified bool        `db:"bank_account_verified"`
	IsActive            bool        `db:"is_active"`
	ExpiresAt           null.Time   `db:"expires_at"`
	SubscriberCount     int         `db:"subscriber_count"`
	CreatedAt           null.Time   `db:"created_at"`
	UpdatedAt           null.Time   `db:"updated_at"`
}

func (r startupRow) toStartup() startup.Startup {
	return startup.Startup{
		ID:                  r.ID,
		OwnerID:             r.UserID,
		Name:                r.Name,
		Description:         r.Description.String,
		Pitch:               r.Pitch,
		WebsiteURL:          r.WebsiteURL.String,
		VerificationTier:    r.VerificationTier,
		KYCStatus:           r.KYCStatus,
		BankName:            r.BankName.String,
		BankAccount:         r.BankAccount.String,
		BankAccountName:     r.BankAccountName.String,
		BankAccountVerified: r.BankAccountVerified,
		IsActive:            r.IsActive,
		ExpiresAt:           r.ExpiresAt.Time,
		SubscriberCount:     r.SubscriberCount,
		CreatedAt:           r.CreatedAt.Time,
		UpdatedAt:           r.UpdatedAt.Time,
	}
}

type commentRow struct {
	ID        string    `db:"id"`
	StartupID string    `db:"startup_id"`
	UserID    string    `db:"user_id"`
	Content   string    `db:"content"`
	IsPublic  bool      `db:"is_public"`
	CreatedAt null.Time `db:"created_at"`
	UpdatedAt null.Time `db:"updated_at"`
}

func (r commentRow) toComment() startup.Comment {
	return startup.Comment{
		ID:        r.ID,
		StartupID: r.StartupID,
		UserID:    r.UserID,
		Content:   r.Content,
		IsPublic:  r.IsPublic,
		CreatedAt: r.CreatedAt.Time,
		UpdatedAt: r.UpdatedAt.Time,
	}
}

type subscriptionRow struct {
	ID           string    `db:"id"`
	StartupID    string    `db:"startup_id"`
	UserID       string    `db:"user_id"`
	SubscribedAt null.Time `db:"subscribed_at"`
}

type startupRepository struct {
	exec core.DBExecutor
}

var _ startup.Repository = (*startupRepository)(nil) // interface compliance check

func NewStartupRepository(exec core.DBExecutor) *startupRepository {
	return &startupRepository{exec: exec}
}

func (repo startupRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 && svcExec[0] != nil {
		return svcExec[0]
	}
	return repo.exec
}

func (repo startupRepository) CreateStartup(ctx context.Context, s startup.Startup, exec ...core.DBExecutor) (startup.Startup, error) {
	s.ID = uuid.New().String()
	_, err := repo.getExec(exec).ExecContext(ctx,
		`INSERT INTO startup (id, user_id, name, description, pitch, website_url, verification_tier,
		                      kyc_status, bank_name, bank_account, bank_account_name,
		                      bank_account_verified, is_active, expires_at, subscriber_count,
		                      created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		s.ID, s.OwnerID, s.Name, null.NewString(s.Description, s.Description != ""), s.Pitch,
		null.NewString(s.WebsiteURL, s.WebsiteURL != ""), s.VerificationTier, s.KYCStatus,
		null.NewString(s.BankName, s.BankName != ""), null.NewString(s.BankAccount, s.BankAccount != ""),
		null.NewString(s.BankAccountName, s.BankAccountName != ""), s.BankAccountVerified,
		s.IsActive, s.ExpiresAt, s.SubscriberCount, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return startup.Startup{}, errors.Wrap(err, "inserting startup")
	}
	return s, nil
}

func (repo startupRepository) GetStartup(ctx context.Context, id string, exec ...core.DBExecutor) (startup.Startup, error) {
	if _, err := uuid.Parse(id); err != nil {
		return startup.Startup{}, startup.ErrNotFound
	}
	var row startupRow
	err := repo.getExec(exec).GetContext(ctx, &row, `SELECT * FROM startup WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return startup.Startup{}, startup.ErrNotFound
		}
		return startup.Startup{}, errors.Wrap(err, "finding startup")
	}
	return row.toStartup(), nil
}

func (repo startupRepository) FilterStartups(ctx context.Context, filter *startup.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]startup.Startup, error) {
	query := `SELECT * FROM startup WHERE TRUE`
	var args []interface{}

	if filter != nil {
		if filter.Search != "" {
			args = append(args, "%"+filter.Search+"%")
			p := "$" + strconv.Itoa(len(args))
			query += ` AND (name ILIKE ` + p + ` OR description ILIKE ` + p + ` OR pitch ILIKE ` + p + `)`
		}
		if filter.Tier != "" {
			args = append(args, filter.Tier)
			query += ` AND verification_tier = $` + strconv.Itoa(len(args))
		}
		if filter.OwnerID != "" {
			args = append(args, filter.OwnerID)
			query += ` AND user_id = $` + strconv.Itoa(len(args))
		}
		if filter.IsActive != nil {
			args = append(args, *filter.IsActive)
			query += ` AND is_active = $` + strconv.Itoa(len(args))
		}
	}

	if len(ordering) > 0 {
		orderList := make([]string, 0, len(ordering))
		for _, ord := range ordering {
			orderList = append(orderList, ord.String())
		}
		query += ` ORDER BY ` + strings.Join(orderList, ", ")
	} else {
		query += ` ORDER BY created_at DESC`
	}

	var rows []startupRow
	if err := repo.getExec(exec).SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying startups")
	}
	startups := make([]startup.Startup, 0, len(rows))
	for _, row := range rows {
		startups = append(startups, row.toStartup())
	}
	return startups, nil
}

func (repo startupRepository) UpdateStartup(ctx context.Context, s startup.Startup, exec ...core.DBExecutor) (startup.Startup, error) {
	res, err := repo.getExec(exec).ExecContext(ctx,
		`UPDATE startup SET name = $2, description = $3, pitch = $4, website_url = $5,
		        verification_tier = $6, kyc_status = $7, bank_name = $8, bank_account = $9,
		        bank_account_name = $10, bank_account_verified = $11, is_active = $12,
		        updated_at = $13
		 WHERE id = $1`,
		s.ID, s.Name, null.NewString(s.Description, s.Description != ""), s.Pitch,
		null.NewString(s.WebsiteURL, s.WebsiteURL != ""), s.VerificationTier, s.KYCStatus,
		null.NewString(s.BankName, s.BankName != ""), null.NewString(s.BankAccount, s.BankAccount != ""),
		null.NewString(s.BankAccountName, s.BankAccountName != ""), s.BankAccountVerified,
		s.IsActive, s.UpdatedAt)
	if err != nil {
		return startup.Startup{}, errors.Wrap(err, "updating startup")
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return startup.Startup{}, startup.ErrNotFound
	}
	return s, nil
}

func (repo startupRepository) CreateComment(ctx context.Context, c startup.Comment, exec ...core.DBExecutor) (startup.Comment, error) {
	c.ID = uuid.New().String()
	_, err := repo.getExec(exec).ExecContext(ctx,
		`INSERT INTO startup_comment (id, startup_id, user_id, content, is_public, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		c.ID, c.StartupID, c.UserID, c.Content, c.IsPublic, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return startup.Comment{}, errors.Wrap(err, "inserting comment")
	}
	return c, nil
}

func (repo startupRepository) QueryComments(ctx context.Context, startupID string, publicOnly bool, exec ...core.DBExecutor) ([]startup.Comment, error) {
	query := `SELECT * FROM startup_comment WHERE startup_id = $1`
	if publicOnly {
		query += ` AND is_public`
	}
	query += ` ORDER BY created_at DESC`

	var rows []commentRow
	if err := repo.getExec(exec).SelectContext(ctx, &rows, query, startupID); err != nil {
		return nil, errors.Wrap(err, "querying comments")
	}
	comments := make([]startup.Comment, 0, len(rows))
	for _, row := range rows {
		comments = append(comments, row.toComment())
	}
	return comments, nil
}

func (repo startupRepository) DeleteComment(ctx context.Context, id string, exec ...core.DBExecutor) error {
	res, err := repo.getExec(exec).ExecContext(ctx, `DELETE FROM startup_comment WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting comment")
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return startup.ErrCommentNotFound
	}
	return nil
}

func (repo startupRepository) GetSubscription(ctx context.Context, startupID, userID string, exec ...core.DBExecutor) (startup.Subscription, error) {
	var row subscriptionRow
	err := repo.getExec(exec).GetContext(ctx, &row,
		`SELECT * FROM newsletter_subscription WHERE startup_id = $1 AND user_id = $2`, startupID, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return startup.Subscription{}, startup.ErrNotSubscribed
		}
		return startup.Subscription{}, errors.Wrap(err, "finding subscription")
	}
	return startup.Subscription{
		ID:           row.ID,
		StartupID:    row.StartupID,
		UserID:       row.UserID,
		SubscribedAt: row.SubscribedAt.Time,
	}, nil
}

func (repo startupRepository) CreateSubscription(ctx context.Context, sub startup.Subscription, exec ...core.DBExecutor) (startup.Subscription, error) {
	sub.ID = uuid.New().String()
	_, err := repo.getExec(exec).ExecContext(ctx,
		`INSERT INTO newsletter_subscription (id, startup_id, user_id, subscribed_at) VALUES ($1, $2, $3, $4)`,
		sub.ID, sub.StartupID, sub.UserID, sub.SubscribedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return startup.Subscription{}, startup.ErrAlreadySubscribed
		}
		return startup.Subscription{}, errors.Wrap(err, "inserting subscription")
	}
	return sub, nil
}

func (repo startupRepository) DeleteSubscription(ctx context.Context, id string, exec ...core.DBExecutor) error {
	res, err := repo.getExec(exec).ExecContext(ctx, `DELETE FROM newsletter_subscription WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting subscription")
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return startup.ErrNotSubscribed
	}
	return nil
}

func (repo startupRepository) AdjustSubscriberCount(ctx context.Context, startupID string, delta int, exec ...core.DBExecutor) error {
	_, err := repo.getExec(exec).ExecContext(ctx,
		`UPDATE startup SET subscriber_count = GREATEST(subscriber_count + $2, 0) WHERE id = $1`,
		startupID, delta)
	return errors.Wrap(err, "adjusting subscriber count")
}

func (repo startupRepository) CreateDeletionLog(ctx context.Context, entry startup.DeletionLog, exec ...core.DBExecutor) (startup.DeletionLog, error) {
	entry.ID = uuid.New().String()
	_, err := repo.getExec(exec).ExecContext(ctx,
		`INSERT INTO startup_deletion_log (id, startup_id, reason, deleted_at) VALUES ($1, $2, $3, $4)`,
		entry.ID, entry.StartupID, null.NewString(entry.Reason, entry.Reason != ""), entry.DeletedAt)
	if err != nil {
		return startup.DeletionLog{}, errors.Wrap(err, "inserting deletion log")
	}
	return entry, nil
}
