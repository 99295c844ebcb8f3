package assistant

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/oosplatform/oos/core"
	"github.com/oosplatform/oos/core/auth"
	"github.com/oosplatform/oos/core/startup"
	"github.com/oosplatform/oos/core/workspace"
)

var ErrNotFound = errors.New("generated content not found")

type (
	// Generator produces text for a prompt. Implementations wrap a model
	// API or return canned output when no API is configured.
	Generator interface {
		Generate(ctx context.Context, prompt, contentType string) (string, error)
	}

	Repository interface {
		CreateContent(ctx context.Context, c Content, exec ...core.DBExecutor) (Content, error)
		QueryContent(ctx context.Context, workspaceID, startupID string, exec ...core.DBExecutor) ([]Content, error)
	}

	Service struct {
		repo       Repository
		generator  Generator
		wsSvc      *workspace.Service
		startupSvc *startup.Service
	}
)

func NewService(repo Repository, generator Generator, wsSvc *workspace.Service, startupSvc *startup.Service) *Service {
	return &Service{repo: repo, generator: generator, wsSvc: wsSvc, startupSvc: startupSvc}
}

// Generate produces content for the request and persists it. Requests
// scoped to a workspace require membership; requests scoped to a startup
// require ownership.
func (svc *Service) Generate(ctx context.Context, principal auth.Principal, gr GenerateRequest) (Content, error) {
	if gr.WorkspaceID != "" {
		if _, err := svc.wsSvc.RequireMember(ctx, principal.ID, gr.WorkspaceID); err != nil {
			return Content{}, err
		}
	}
	if gr.StartupID != "" {
		if _, err := svc.startupSvc.RequireOwnership(ctx, principal, gr.StartupID); err != nil {
			return Content{}, err
		}
	}
	text, err := svc.generator.Generate(ctx, gr.Prompt, gr.ContentType)
	if err != nil {
		return Content{}, err
	}
	return svc.repo.CreateContent(ctx, Content{
		WorkspaceID: gr.WorkspaceID,
		StartupID:   gr.StartupID,
		ContentType: gr.ContentType,
		Content:     text,
		CreatedAt:   time.Now().UTC(),
	})
}

// Query lists persisted content visible to the principal. The same gates
// as Generate apply to the scope being queried.
func (svc *Service) Query(ctx context.Context, principal auth.Principal, workspaceID, startupID string) ([]Content, error) {
	if workspaceID != "" {
		if _, err := svc.wsSvc.RequireMember(ctx, principal.ID, workspaceID); err != nil {
			return nil, err
		}
	}
	if startupID != "" {
		if _, err := svc.startupSvc.RequireOwnership(ctx, principal, startupID); err != nil {
			return nil, err
		}
	}
	return svc.repo.QueryContent(ctx, workspaceID, startupID)
}
