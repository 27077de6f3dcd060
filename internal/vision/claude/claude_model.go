// Package claude reads business-card images with the Anthropic Messages API.
package claude

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"cardenrich/internal/config"
	"cardenrich/internal/domain"
	"cardenrich/internal/port"
	"cardenrich/internal/vision"
)

const (
	apiURL       = "https://api.anthropic.com/v1/messages"
	apiVersion   = "2023-06-01"
	defaultModel = "claude-sonnet-4-20250514"
)

func init() {
	vision.RegisterProvider("claude", func(cfg *config.VisionProviderConfig) (port.VisionModel, error) {
		return New(cfg)
	})
}

// Model implements port.VisionModel using the Anthropic Messages API.
type Model struct {
	apiKey      string
	model       string
	maxTokens   int
	temperature float64
	endpoint    string
	client      *http.Client
}

// New creates a Claude-backed vision model from a provider config.
func New(cfg *config.VisionProviderConfig) (*Model, error) {
	endpoint := apiURL
	if cfg.BaseURL != "" {
		endpoint = strings.TrimRight(cfg.BaseURL, "/") + "/v1/messages"
	}
	return newModel(cfg, endpoint)
}

// NewWithEndpoint creates a model pointing at a custom API endpoint (for testing).
func NewWithEndpoint(cfg *config.VisionProviderConfig, endpoint string) (*Model, error) {
	return newModel(cfg, endpoint)
}

func newModel(cfg *config.VisionProviderConfig, endpoint string) (*Model, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.Wrap(domain.ErrMissingAPIKey, "claude")
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 400
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &Model{
		apiKey:      strings.TrimSpace(cfg.APIKey),
		model:       model,
		maxTokens:   maxTokens,
		temperature: cfg.Temperature,
		endpoint:    endpoint,
		client:      &http.Client{Timeout: timeout},
	}, nil
}

func (m *Model) Describe(ctx context.Context, in port.VisionRequest) (*port.VisionResponse, error) {
	reqBody := map[string]interface{}{
		"model":       m.model,
		"max_tokens":  m.maxTokens,
		"temperature": m.temperature,
		"messages": []map[string]interface{}{
			{
				"role":    "user",
				"content": buildContentBlocks(in),
			},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, errors.Wrap(err, "marshaling request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, errors.Wrap(err, "creating request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", m.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "calling anthropic API")
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "reading response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, vision.StatusError("claude", resp.StatusCode, respBody, resp.Header.Get("Retry-After"))
	}

	return parseResponse(respBody, m.model)
}

func buildContentBlocks(in port.VisionRequest) []map[string]interface{} {
	return []map[string]interface{}{
		{
			"type": "text",
			"text": in.Instruction,
		},
		{
			"type": "image",
			"source": map[string]interface{}{
				"type": "url",
				"url":  in.ImageURL,
			},
		},
	}
}

// apiResponse models the Anthropic Messages API response.
type apiResponse struct {
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

// parseResponse concatenates the text blocks of the reply.
func parseResponse(body []byte, model string) (*port.VisionResponse, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errors.Wrap(err, "unmarshaling response")
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	out := &port.VisionResponse{Text: sb.String(), ModelUsed: model}
	if resp.Model != "" {
		out.ModelUsed = resp.Model
	}
	return out, nil
}
