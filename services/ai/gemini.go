package aisvc

import (
	"bytes"
	"context"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/oosplatform/oos/core"
	"github.com/oosplatform/oos/core/assistant"
)

const serviceName = "gemini"

// One system prompt per content type; the caller's text is appended.
var systemPrompts = map[string]string{
	assistant.TypeMeetingMinutes:   "You are an expert at summarizing meetings. Create concise meeting minutes with key decisions, action items, and next steps from the following transcript: ",
	assistant.TypeRiskAnalysis:     "Analyze business risks and provide a structured risk assessment with mitigation strategies for: ",
	assistant.TypeStartupRating:    "Evaluate this startup pitch and provide a comprehensive rating (1-10) with feedback on market potential, team, innovation, and scalability: ",
	assistant.TypeBusinessInsights: "Provide data-driven business insights and strategic recommendations for: ",
}

type (
	geminiService struct {
		baseURL string
		apiKey  string
		model   string
		client  *http.Client
	}

	generateRequest struct {
		Contents []content `json:"contents"`
	}

	content struct {
		Parts []part `json:"parts"`
	}

	part struct {
		Text string `json:"text"`
	}

	generateResponse struct {
		Candidates []struct {
			Content content `json:"content"`
		} `json:"candidates"`
	}
)

var _ assistant.Generator = (*geminiService)(nil)

func NewGeminiService(conf *core.Config) *geminiService {
	return &geminiService{
		baseURL: conf.Assistant.BaseURL,
		apiKey:  conf.Assistant.ApiKey,
		model:   conf.Assistant.Model,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

func (svc geminiService) Generate(ctx context.Context, prompt, contentType string) (string, error) {
	payload, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: systemPrompts[contentType] + prompt}}}},
	})
	if err != nil {
		return "", errors.Wrap(err, "encoding generation request")
	}

	url := svc.baseURL + "/v1beta/models/" + svc.model + ":generateContent?key=" + svc.apiKey
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", errors.Wrap(err, "building generation request")
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := svc.client.Do(req)
	if err != nil {
		return "", core.NewUpstreamError(serviceName, "unreachable", err)
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		body, _ := ioutil.ReadAll(res.Body)
		return "", core.NewUpstreamError(serviceName, classify(res.StatusCode, body), errors.Errorf("status %d: %s", res.StatusCode, body))
	}

	var body generateResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return "", core.NewUpstreamError(serviceName, "bad_response", err)
	}
	if len(body.Candidates) == 0 || len(body.Candidates[0].Content.Parts) == 0 {
		return "", core.NewUpstreamError(serviceName, "empty_response", errors.New("no candidates returned"))
	}
	return body.Candidates[0].Content.Parts[0].Text, nil
}

func classify(status int, body []byte) string {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return "invalid_credentials"
	case http.StatusTooManyRequests:
		if strings.Contains(strings.ToLower(string(body)), "quota") {
			return "quota_exceeded"
		}
		return "rate_limited"
	default:
		return "unavailable"
	}
}
