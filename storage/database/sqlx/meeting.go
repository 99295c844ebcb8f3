package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/oosplatform/oos/core"
	"github.com/oosplatform/oos/core/meeting"
)

type meetingRow struct {
	ID               string      `db:"id"`
	WorkspaceID      string      `db:"workspace_id"`
	AdminID          null.String `db:"admin_id"`
	RoomName         string      `db:"room_name"`
	ParticipantCount int         `db:"participant_count"`
	StartedAt        null.Time   `db:"started_at"`
	EndedAt          null.Time   `db:"ended_at"`
	CreatedAt        null.Time   `db:"created_at"`
}

func (r meetingRow) toMeeting() meeting.Meeting {
	return meeting.Meeting{
		ID:               r.ID,
		WorkspaceID:      r.WorkspaceID,
		AdminID:          r.AdminID.String,
		RoomName:         r.RoomName,
		ParticipantCount: r.ParticipantCount,
		StartedAt:        r.StartedAt.Time,
		EndedAt:          r.EndedAt.Time,
		CreatedAt:        r.CreatedAt.Time,
	}
}

type meetingRepository struct {
	exec core.DBExecutor
}

var _ meeting.Repository = (*meetingRepository)(nil) // interface compliance check

func NewMeetingRepository(exec core.DBExecutor) *meetingRepository {
	return &meetingRepository{exec: exec}
}

func (repo meetingRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 && svcExec[0] != nil {
		return svcExec[0]
	}
	return repo.exec
}

func (repo meetingRepository) CreateMeeting(ctx context.Context, m meeting.Meeting, exec ...core.DBExecutor) (meeting.Meeting, error) {
	m.ID = uuid.New().String()
	_, err := repo.getExec(exec).ExecContext(ctx,
		`INSERT INTO video_meeting (id, workspace_id, admin_id, room_name, participant_count, started_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		m.ID, m.WorkspaceID, null.NewString(m.AdminID, m.AdminID != ""),
		m.RoomName, m.ParticipantCount, m.StartedAt, m.CreatedAt)
	if err != nil {
		return meeting.Meeting{}, errors.Wrap(err, "inserting meeting")
	}
	return m, nil
}

func (repo meetingRepository) GetMeeting(ctx context.Context, id string, exec ...core.DBExecutor) (meeting.Meeting, error) {
	var row meetingRow
	err := repo.getExec(exec).GetContext(ctx, &row,
		`SELECT * FROM video_meeting WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return meeting.Meeting{}, meeting.ErrNotFound
		}
		return meeting.Meeting{}, errors.Wrap(err, "finding meeting")
	}
	return row.toMeeting(), nil
}

func (repo meetingRepository) QueryMeetings(ctx context.Context, workspaceID string, exec ...core.DBExecutor) ([]meeting.Meeting, error) {
	var rows []meetingRow
	err := repo.getExec(exec).SelectContext(ctx, &rows,
		`SELECT * FROM video_meeting WHERE workspace_id = $1 ORDER BY started_at DESC`, workspaceID)
	if err != nil {
		return nil, errors.Wrap(err, "querying meetings")
	}
	meetings := make([]meeting.Meeting, 0, len(rows))
	for _, row := range rows {
		meetings = append(meetings, row.toMeeting())
	}
	return meetings, nil
}

func (repo meetingRepository) IncrementParticipantCount(ctx context.Context, id string, exec ...core.DBExecutor) (meeting.Meeting, error) {
	var row meetingRow
	err := repo.getExec(exec).GetContext(ctx, &row,
		`UPDATE video_meeting
		 SET participant_count = participant_count + 1
		 WHERE id = $1
		 RETURNING *`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return meeting.Meeting{}, meeting.ErrNotFound
		}
		return meeting.Meeting{}, errors.Wrap(err, "incrementing participant count")
	}
	return row.toMeeting(), nil
}

func (repo meetingRepository) UpdateMeeting(ctx context.Context, m meeting.Meeting, exec ...core.DBExecutor) (meeting.Meeting, error) {
	var row meetingRow
	err := repo.getExec(exec).GetContext(ctx, &row,
		`UPDATE video_meeting
		 SET participant_count = $2, ended_at = $3
		 WHERE id = $1
		 RETURNING *`,
		m.ID, m.ParticipantCount, null.NewTime(m.EndedAt, !m.EndedAt.IsZero()))
	if err != nil {
		if err == sql.ErrNoRows {
			return meeting.Meeting{}, meeting.ErrNotFound
		}
		return meeting.Meeting{}, errors.Wrap(err, "updating meeting")
	}
	return row.toMeeting(), nil
}
