package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"

	"github.com/oosplatform/oos/core"
	"github.com/oosplatform/oos/core/donation"
)

type donationRow struct {
	ID            string          `db:"id"`
	StartupID     string          `db:"startup_id"`
	DonorEmail    string          `db:"donor_email"`
	Amount        decimal.Decimal `db:"amount"`
	FeePercentage decimal.Decimal `db:"fee_percentage"`
	NetAmount     decimal.Decimal `db:"net_amount"`
	Status        string          `db:"status"`
	Provider      string          `db:"payment_provider"`
	Reference     string          `db:"payment_reference"`
	CreatedAt     null.Time       `db:"created_at"`
}

func (r donationRow) toDonation() donation.Donation {
	return donation.Donation{
		ID:            r.ID,
		StartupID:     r.StartupID,
		DonorEmail:    r.DonorEmail,
		Amount:        r.Amount,
		FeePercentage: r.FeePercentage,
		NetAmount:     r.NetAmount,
		Status:        r.Status,
		Provider:      r.Provider,
		Reference:     r.Reference,
		CreatedAt:     r.CreatedAt.Time,
	}
}

type donationRepository struct {
	exec core.DBExecutor
}

var _ donation.Repository = (*donationRepository)(nil) // interface compliance check

func NewDonationRepository(exec core.DBExecutor) *donationRepository {
	return &donationRepository{exec: exec}
}

func (repo donationRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 && svcExec[0] != nil {
		return svcExec[0]
	}
	return repo.exec
}

func (repo donationRepository) CreateDonation(ctx context.Context, d donation.Donation, exec ...core.DBExecutor) (donation.Donation, error) {
	d.ID = uuid.New().String()
	_, err := repo.getExec(exec).ExecContext(ctx,
		`INSERT INTO donation (id, startup_id, donor_email, amount, fee_percentage, net_amount, status, payment_provider, payment_reference, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		d.ID, d.StartupID, d.DonorEmail, d.Amount, d.FeePercentage, d.NetAmount,
		d.Status, d.Provider, d.Reference, d.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return donation.Donation{}, donation.ErrDuplicateReference
		}
		return donation.Donation{}, errors.Wrap(err, "inserting donation")
	}
	return d, nil
}

func (repo donationRepository) GetDonation(ctx context.Context, id string, exec ...core.DBExecutor) (donation.Donation, error) {
	var row donationRow
	err := repo.getExec(exec).GetContext(ctx, &row,
		`SELECT * FROM donation WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return donation.Donation{}, donation.ErrNotFound
		}
		return donation.Donation{}, errors.Wrap(err, "finding donation")
	}
	return row.toDonation(), nil
}

func (repo donationRepository) QueryDonations(ctx context.Context, startupID string, exec ...core.DBExecutor) ([]donation.Donation, error) {
	var rows []donationRow
	err := repo.getExec(exec).SelectContext(ctx, &rows,
		`SELECT * FROM donation WHERE startup_id = $1 ORDER BY created_at DESC`, startupID)
	if err != nil {
		return nil, errors.Wrap(err, "querying donations")
	}
	donations := make([]donation.Donation, 0, len(rows))
	for _, row := range rows {
		donations = append(donations, row.toDonation())
	}
	return donations, nil
}

func (repo donationRepository) UpdateDonationStatus(ctx context.Context, id, status string, exec ...core.DBExecutor) (donation.Donation, error) {
	var row donationRow
	err := repo.getExec(exec).GetContext(ctx, &row,
		`UPDATE donation SET status = $2 WHERE id = $1 RETURNING *`, id, status)
	if err != nil {
		if err == sql.ErrNoRows {
			return donation.Donation{}, donation.ErrNotFound
		}
		return donation.Donation{}, errors.Wrap(err, "updating donation status")
	}
	return row.toDonation(), nil
}

func (repo donationRepository) SumCompletedAmounts(ctx context.Context, startupID string, exec ...core.DBExecutor) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := repo.getExec(exec).GetContext(ctx, &total,
		`SELECT COALESCE(SUM(amount), 0) FROM donation WHERE startup_id = $1 AND status = $2`,
		startupID, donation.StatusCompleted)
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "summing completed donations")
	}
	return total, nil
}

func (repo donationRepository) SumCompletedNetAmounts(ctx context.Context, startupID string, exec ...core.DBExecutor) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := repo.getExec(exec).GetContext(ctx, &total,
		`SELECT COALESCE(SUM(net_amount), 0) FROM donation WHERE startup_id = $1 AND status = $2`,
		startupID, donation.StatusCompleted)
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "summing completed net amounts")
	}
	return total, nil
}

func (repo donationRepository) CountDonations(ctx context.Context, startupID, status string, exec ...core.DBExecutor) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM donation WHERE startup_id = $1`
	args := []interface{}{startupID}
	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}
	if err := repo.getExec(exec).GetContext(ctx, &count, query, args...); err != nil {
		return 0, errors.Wrap(err, "counting donations")
	}
	return count, nil
}
