package aisvc

import (
	"context"
	"fmt"

	"github.com/oosplatform/oos/core/assistant"
)

// Placeholder bodies keyed by content type.
var stubTemplates = map[string]string{
	assistant.TypeMeetingMinutes:   "Meeting Minutes (placeholder)\n\nKey decisions, action items and next steps could not be generated: no generation service is configured.\n\nInput: %s",
	assistant.TypeRiskAnalysis:     "Risk Assessment (placeholder)\n\nA structured risk analysis could not be generated: no generation service is configured.\n\nInput: %s",
	assistant.TypeStartupRating:    "Startup Rating (placeholder)\n\nA rating could not be generated: no generation service is configured.\n\nInput: %s",
	assistant.TypeBusinessInsights: "Business Insights (placeholder)\n\nInsights could not be generated: no generation service is configured.\n\nInput: %s",
}

// stubService returns deterministic templated output. It stands in for the
// real generator when no API key is configured so the rest of the flow
// stays exercisable in DEV/TEST.
type stubService struct{}

var _ assistant.Generator = (*stubService)(nil)

func NewStubService() *stubService { return &stubService{} }

func (svc stubService) Generate(ctx context.Context, prompt, contentType string) (string, error) {
	tmpl, ok := stubTemplates[contentType]
	if !ok {
		tmpl = "Generated Content (placeholder)\n\nInput: %s"
	}
	return fmt.Sprintf(tmpl, prompt), nil
}
