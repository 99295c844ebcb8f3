package dummydb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/oosplatform/oos/core"
	"github.com/oosplatform/oos/core/startup"
)

type startupRepository struct {
	db *startupTable
}

var _ startup.Repository = (*startupRepository)(nil) // interface compliance check

func NewStartupRepository(db *DB) startup.Repository {
	return &startupRepository{db: db.startups}
}

func (repo *startupRepository) CreateStartup(ctx context.Context, s startup.Startup, exec ...core.DBExecutor) (startup.Startup, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	s.ID = uuid.New().String()
	repo.db.table[s.ID] = &s
	return s, nil
}

func (repo *startupRepository) GetStartup(ctx context.Context, id string, exec ...core.DBExecutor) (startup.Startup, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if s, ok := repo.db.table[id]; ok {
		return *s, nil
	}
	return startup.Startup{}, startup.ErrNotFound
}

func (repo *startupRepository) FilterStartups(ctx context.Context, filter *startup.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]startup.Startup, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	startups := make([]startup.Startup, 0, len(repo.db.table))
	for _, s := range repo.db.table {
		startups = append(startups, *s)
	}

	if filter != nil && !filter.IsEmpty() {
		var filtered []startup.Startup
		search := strings.ToLower(filter.Search)
		for _, s := range startups {
			if search != "" &&
				!strings.Contains(strings.ToLower(s.Name), search) &&
				!strings.Contains(strings.ToLower(s.Description), search) &&
				!strings.Contains(strings.ToLower(s.Pitch), search) {
				continue
			}
			if filter.Tier != "" && s.VerificationTier != filter.Tier {
				continue
			}
			if filter.OwnerID != "" && s.OwnerID != filter.OwnerID {
				continue
			}
			if filter.IsActive != nil && s.IsActive != *filter.IsActive {
				continue
			}
			filtered = append(filtered, s)
		}
		startups = filtered
	}

	sort.Slice(startups, func(i, j int) bool { return startups[i].CreatedAt.After(startups[j].CreatedAt) })
	return startups, nil
}

func (repo *startupRepository) UpdateStartup(ctx context.Context, s startup.Startup, exec ...core.DBExecutor) (startup.Startup, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[s.ID]; !ok {
		return startup.Startup{}, startup.ErrNotFound
	}
	repo.db.table[s.ID] = &s
	return s, nil
}

func (repo *startupRepository) CreateComment(ctx context.Context, c startup.Comment, exec ...core.DBExecutor) (startup.Comment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	c.ID = uuid.New().String()
	repo.db.comments[c.ID] = &c
	return c, nil
}

func (repo *startupRepository) QueryComments(ctx context.Context, startupID string, publicOnly bool, exec ...core.DBExecutor) ([]startup.Comment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var comments []startup.Comment
	for _, c := range repo.db.comments {
		if c.StartupID != startupID {
			continue
		}
		if publicOnly && !c.IsPublic {
			continue
		}
		comments = append(comments, *c)
	}
	sort.Slice(comments, func(i, j int) bool { return comments[i].CreatedAt.Before(comments[j].CreatedAt) })
	return comments, nil
}

func (repo *startupRepository) DeleteComment(ctx context.Context, id string, exec ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.comments[id]; !ok {
		return startup.ErrCommentNotFound
	}
	delete(repo.db.comments, id)
	return nil
}

func (repo *startupRepository) GetSubscription(ctx context.Context, startupID, userID string, exec ...core.DBExecutor) (startup.Subscription, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, sub := range repo.db.subscriptions {
		if sub.StartupID == startupID && sub.UserID == userID {
			return *sub, nil
		}
	}
	return startup.Subscription{}, startup.ErrNotSubscribed
}

func (repo *startupRepository) CreateSubscription(ctx context.Context, sub startup.Subscription, exec ...core.DBExecutor) (startup.Subscription, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, existing := range repo.db.subscriptions {
		if existing.StartupID == sub.StartupID && existing.UserID == sub.UserID {
			return startup.Subscription{}, startup.ErrAlreadySubscribed
		}
	}
	sub.ID = uuid.New().String()
	repo.db.subscriptions[sub.ID] = &sub
	return sub, nil
}

func (repo *startupRepository) DeleteSubscription(ctx context.Context, id string, exec ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.subscriptions[id]; !ok {
		return startup.ErrNotSubscribed
	}
	delete(repo.db.subscriptions, id)
	return nil
}

func (repo *startupRepository) AdjustSubscriberCount(ctx context.Context, startupID string, delta int, exec ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	s, ok := repo.db.table[startupID]
	if !ok {
		return startup.ErrNotFound
	}
	s.SubscriberCount += delta
	if s.SubscriberCount < 0 {
		s.SubscriberCount = 0
	}
	return nil
}

func (repo *startupRepository) CreateDeletionLog(ctx context.Context, entry startup.DeletionLog, exec ...core.DBExecutor) (startup.DeletionLog, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	entry.ID = uuid.New().String()
	repo.db.deletions[entry.ID] = &entry
	return entry, nil
}
