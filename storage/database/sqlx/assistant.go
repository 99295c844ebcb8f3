package sqlxrepos

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/oosplatform/oos/core"
	"github.com/oosplatform/oos/core/assistant"
)

type contentRow struct {
	ID          string      `db:"id"`
	WorkspaceID null.String `db:"workspace_id"`
	StartupID   null.String `db:"startup_id"`
	ContentType string      `db:"content_type"`
	Content     string      `db:"content"`
	CreatedAt   null.Time   `db:"created_at"`
}

func (r contentRow) toContent() assistant.Content {
	return assistant.Content{
		ID:          r.ID,
		WorkspaceID: r.WorkspaceID.String,
		StartupID:   r.StartupID.String,
		ContentType: r.ContentType,
		Content:     r.Content,
		CreatedAt:   r.CreatedAt.Time,
	}
}

type contentRepository struct {
	exec core.DBExecutor
}

var _ assistant.Repository = (*contentRepository)(nil) // interface compliance check

func NewContentRepository(exec core.DBExecutor) *contentRepository {
	return &contentRepository{exec: exec}
}

func (repo contentRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 && svcExec[0] != nil {
		return svcExec[0]
	}
	return repo.exec
}

func (repo contentRepository) CreateContent(ctx context.Context, c assistant.Content, exec ...core.DBExecutor) (assistant.Content, error) {
	c.ID = uuid.New().String()
	_, err := repo.getExec(exec).ExecContext(ctx,
		`INSERT INTO ai_generated_content (id, workspace_id, startup_id, content_type, content, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ID,
		null.NewString(c.WorkspaceID, c.WorkspaceID != ""),
		null.NewString(c.StartupID, c.StartupID != ""),
		c.ContentType, c.Content, c.CreatedAt)
	if err != nil {
		return assistant.Content{}, errors.Wrap(err, "inserting generated content")
	}
	return c, nil
}

func (repo contentRepository) QueryContent(ctx context.Context, workspaceID, startupID string, exec ...core.DBExecutor) ([]assistant.Content, error) {
	query := `SELECT * FROM ai_generated_content WHERE 1=1`
	args := make([]interface{}, 0, 2)
	if workspaceID != "" {
		args = append(args, workspaceID)
		query += ` AND workspace_id = $1`
	}
	if startupID != "" {
		args = append(args, startupID)
		if len(args) == 1 {
			query += ` AND startup_id = $1`
		} else {
			query += ` AND startup_id = $2`
		}
	}
	query += ` ORDER BY created_at DESC`

	var rows []contentRow
	if err := repo.getExec(exec).SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying generated content")
	}
	contents := make([]assistant.Content, 0, len(rows))
	for _, row := range rows {
		contents = append(contents, row.toContent())
	}
	return contents, nil
}
