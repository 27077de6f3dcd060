// Package openai reads business-card images with the OpenAI Chat Completions API.
package openai

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
	apiURL       = "https://api.openai.com/v1/chat/completions"
	defaultModel = "gpt-4o"
)

func init() {
	vision.RegisterProvider("openai", func(cfg *config.VisionProviderConfig) (port.VisionModel, error) {
		return New(cfg)
	})
}

// Model implements port.VisionModel using the OpenAI Chat Completions API.
type Model struct {
	apiKey      string
	model       string
	maxTokens   int
	temperature float64
	endpoint    string
	client      *http.Client
}

// New creates an OpenAI-backed vision model from a provider config.
// BaseURL, when set, replaces the public API root (e.g. http://proxy/v1).
func New(cfg *config.VisionProviderConfig) (*Model, error) {
	endpoint := apiURL
	if cfg.BaseURL != "" {
		endpoint = strings.TrimRight(cfg.BaseURL, "/") + "/chat/completions"
	}
	return newModel(cfg, endpoint)
}

// NewWithEndpoint creates a model pointing at a custom API endpoint (for testing).
func NewWithEndpoint(cfg *config.VisionProviderConfig, endpoint string) (*Model, error) {
	return newModel(cfg, endpoint)
}

func newModel(cfg *config.VisionProviderConfig, endpoint string) (*Model, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.Wrap(domain.ErrMissingAPIKey, "openai")
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

// Name returns the model identifier sent with each request.
func (m *Model) Name() string {
	return m.model
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
	req.Header.Set("Authorization", "Bearer "+m.apiKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "calling openai API")
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "reading response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, vision.StatusError("openai", resp.StatusCode, respBody, resp.Header.Get("Retry-After"))
	}

	return parseResponse(respBody, m.model)
}

// buildContentBlocks sends the instruction first, then the image by reference.
func buildContentBlocks(in port.VisionRequest) []map[string]interface{} {
	return []map[string]interface{}{
		{
			"type": "text",
			"text": in.Instruction,
		},
		{
			"type": "image_url",
			"image_url": map[string]interface{}{
				"url": in.ImageURL,
			},
		},
	}
}

// apiResponse models the OpenAI Chat Completions API response.
type apiResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content *string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// parseResponse returns the first choice's text. A missing choice or null
// content yields an empty answer rather than an error.
func parseResponse(body []byte, model string) (*port.VisionResponse, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errors.Wrap(err, "unmarshaling response")
	}

	out := &port.VisionResponse{ModelUsed: model}
	if resp.Model != "" {
		out.ModelUsed = resp.Model
	}
	if len(resp.Choices) > 0 && resp.Choices[0].Message.Content != nil {
		out.Text = *resp.Choices[0].Message.Content
	}
	return out, nil
}
