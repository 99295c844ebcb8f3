package aisvc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oosplatform/oos/core/assistant"
)

func TestStubService_Generate(t *testing.T) {
	ctx := context.Background()
	svc := NewStubService()

	tests := []struct {
		name        string
		contentType string
		wantHeading string
	}{
		{name: "meeting minutes", contentType: assistant.TypeMeetingMinutes, wantHeading: "Meeting Minutes"},
		{name: "risk analysis", contentType: assistant.TypeRiskAnalysis, wantHeading: "Risk Assessment"},
		{name: "startup rating", contentType: assistant.TypeStartupRating, wantHeading: "Startup Rating"},
		{name: "business insights", contentType: assistant.TypeBusinessInsights, wantHeading: "Business Insights"},
		{name: "unknown type", contentType: "poetry", wantHeading: "Generated Content"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Generate(ctx, "our Q3 numbers", tt.contentType)
			require.NoError(t, err)
			assert.Contains(t, got, tt.wantHeading)
			assert.Contains(t, got, "our Q3 numbers")

			// deterministic: the same input always yields the same output
			again, err := svc.Generate(ctx, "our Q3 numbers", tt.contentType)
			require.NoError(t, err)
			assert.Equal(t, got, again)
		})
	}
}
