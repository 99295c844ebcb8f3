package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/oosplatform/oos/core"
	"github.com/oosplatform/oos/core/meeting"
)

type meetingRepository struct {
	db *meetingTable
}

var _ meeting.Repository = (*meetingRepository)(nil) // interface compliance check

func NewMeetingRepository(db *DB) meeting.Repository {
	return &meetingRepository{db: db.meetings}
}

func (repo *meetingRepository) CreateMeeting(ctx context.Context, m meeting.Meeting, exec ...core.DBExecutor) (meeting.Meeting, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	m.ID = uuid.New().String()
	repo.db.table[m.ID] = &m
	return m, nil
}

func (repo *meetingRepository) GetMeeting(ctx context.Context, id string, exec ...core.DBExecutor) (meeting.Meeting, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if m, ok := repo.db.table[id]; ok {
		return *m, nil
	}
	return meeting.Meeting{}, meeting.ErrNotFound
}

func (repo *meetingRepository) QueryMeetings(ctx context.Context, workspaceID string, exec ...core.DBExecutor) ([]meeting.Meeting, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var meetings []meeting.Meeting
	for _, m := range repo.db.table {
		if m.WorkspaceID == workspaceID {
			meetings = append(meetings, *m)
		}
	}
	sort.Slice(meetings, func(i, j int) bool { return meetings[i].StartedAt.After(meetings[j].StartedAt) })
	return meetings, nil
}

func (repo *meetingRepository) IncrementParticipantCount(ctx context.Context, id string, exec ...core.DBExecutor) (meeting.Meeting, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	m, ok := repo.db.table[id]
	if !ok {
		return meeting.Meeting{}, meeting.ErrNotFound
	}
	m.ParticipantCount++
	return *m, nil
}

func (repo *meetingRepository) UpdateMeeting(ctx context.Context, m meeting.Meeting, exec ...core.DBExecutor) (meeting.Meeting, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[m.ID]; !ok {
		return meeting.Meeting{}, meeting.ErrNotFound
	}
	repo.db.table[m.ID] = &m
	return m, nil
}
