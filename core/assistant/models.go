package assistant

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/oosplatform/oos/core"
)

// Content types the generator knows how to produce.
const (
	TypeMeetingMinutes   = "meeting_minutes"
	TypeRiskAnalysis     = "risk_analysis"
	TypeStartupRating    = "startup_rating"
	TypeBusinessInsights = "business_insights"
)

type Content struct {
	ID          string    `json:"id"`
	WorkspaceID string    `json:"workspace_id,omitempty"`
	StartupID   string    `json:"startup_id,omitempty"`
	ContentType string    `json:"content_type"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"created_at"` // UTC
}

type GenerateRequest struct {
	WorkspaceID string `json:"workspace_id,omitempty" validate:"omitempty,uuid4"`
	StartupID   string `json:"startup_id,omitempty" validate:"omitempty,uuid4"`
	ContentType string `json:"content_type" validate:"required,oneof=meeting_minutes risk_analysis startup_rating business_insights"`
	Prompt      string `json:"prompt" validate:"required,max=20000"`
}

func (gr *GenerateRequest) Validate(validate *validator.Validate) error {
	gr.ContentType = core.CleanString(gr.ContentType, true /* lower */)
	gr.Prompt = core.CleanString(gr.Prompt)
	return validate.Struct(gr)
}
