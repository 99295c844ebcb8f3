package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/oosplatform/oos/core"
	"github.com/oosplatform/oos/core/donation"
)

type donationRepository struct {
	db *donationTable
}

var _ donation.Repository = (*donationRepository)(nil) // interface compliance check

func NewDonationRepository(db *DB) donation.Repository {
	return &donationRepository{db: db.donations}
}

func (repo *donationRepository) CreateDonation(ctx context.Context, d donation.Donation, exec ...core.DBExecutor) (donation.Donation, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, existing := range repo.db.table {
		if existing.Provider == d.Provider && existing.Reference == d.Reference {
			return donation.Donation{}, donation.ErrDuplicateReference
		}
	}
	d.ID = uuid.New().String()
	repo.db.table[d.ID] = &d
	return d, nil
}

func (repo *donationRepository) GetDonation(ctx context.Context, id string, exec ...core.DBExecutor) (donation.Donation, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if d, ok := repo.db.table[id]; ok {
		return *d, nil
	}
	return donation.Donation{}, donation.ErrNotFound
}

func (repo *donationRepository) QueryDonations(ctx context.Context, startupID string, exec ...core.DBExecutor) ([]donation.Donation, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var donations []donation.Donation
	for _, d := range repo.db.table {
		if d.StartupID == startupID {
			donations = append(donations, *d)
		}
	}
	sort.Slice(donations, func(i, j int) bool { return donations[i].CreatedAt.After(donations[j].CreatedAt) })
	return donations, nil
}

func (repo *donationRepository) UpdateDonationStatus(ctx context.Context, id, status string, exec ...core.DBExecutor) (donation.Donation, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	d, ok := repo.db.table[id]
	if !ok {
		return donation.Donation{}, donation.ErrNotFound
	}
	d.Status = status
	return *d, nil
}

func (repo *donationRepository) SumCompletedAmounts(ctx context.Context, startupID string, exec ...core.DBExecutor) (decimal.Decimal, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	total := decimal.Zero
	for _, d := range repo.db.table {
		if d.StartupID == startupID && d.Status == donation.StatusCompleted {
			total = total.Add(d.Amount)
		}
	}
	return total, nil
}

func (repo *donationRepository) SumCompletedNetAmounts(ctx context.Context, startupID string, exec ...core.DBExecutor) (decimal.Decimal, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	total := decimal.Zero
	for _, d := range repo.db.table {
		if d.StartupID == startupID && d.Status == donation.StatusCompleted {
			total = total.Add(d.NetAmount)
		}
	}
	return total, nil
}

func (repo *donationRepository) CountDonations(ctx context.Context, startupID, status string, exec ...core.DBExecutor) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var count int
	for _, d := range repo.db.table {
		if d.StartupID != startupID {
			continue
		}
		if status != "" && d.Status != status {
			continue
		}
		count++
	}
	return count, nil
}
