// Package gemini reads business-card images with the Gemini API through the genai SDK.
package gemini

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"google.golang.org/genai"

	"cardenrich/internal/config"
	"cardenrich/internal/domain"
	"cardenrich/internal/port"
	"cardenrich/internal/vision"
)

const (
	defaultModel  = "gemini-2.0-flash"
	maxImageBytes = 20 << 20
)

func init() {
	vision.RegisterProvider("gemini", func(cfg *config.VisionProviderConfig) (port.VisionModel, error) {
		return New(context.Background(), cfg)
	})
}

// Model implements port.VisionModel using Google's Gemini API.
// Gemini cannot dereference arbitrary URLs, so the image is fetched and sent inline.
type Model struct {
	client      *genai.Client
	fetcher     *http.Client
	model       string
	maxTokens   int32
	temperature float32
}

// New creates a Gemini-backed vision model. BaseURL overrides the API root (proxies, tests).
func New(ctx context.Context, cfg *config.VisionProviderConfig) (*Model, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.Wrap(domain.ErrMissingAPIKey, "gemini")
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

	httpClient := &http.Client{Timeout: timeout}
	cc := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		cc.HTTPOptions.BaseURL = base
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, errors.Wrap(err, "creating genai client")
	}
	return &Model{
		client:      client,
		fetcher:     httpClient,
		model:       model,
		maxTokens:   int32(maxTokens),
		temperature: float32(cfg.Temperature),
	}, nil
}

func (m *Model) Describe(ctx context.Context, in port.VisionRequest) (*port.VisionResponse, error) {
	data, mimeType, err := m.fetchImage(ctx, in.ImageURL)
	if err != nil {
		return nil, err
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(in.Instruction),
			genai.NewPartFromBytes(data, mimeType),
		}, genai.RoleUser),
	}
	resp, err := m.client.Models.GenerateContent(ctx, m.model, contents, &genai.GenerateContentConfig{
		CandidateCount:  1,
		MaxOutputTokens: m.maxTokens,
		Temperature:     genai.Ptr(m.temperature),
	})
	if err != nil {
		return nil, classifyErr(err)
	}

	return &port.VisionResponse{Text: resp.Text(), ModelUsed: m.model}, nil
}

func (m *Model) fetchImage(ctx context.Context, imageURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, http.NoBody)
	if err != nil {
		return nil, "", errors.Wrap(err, "creating image request")
	}
	resp, err := m.fetcher.Do(req)
	if err != nil {
		return nil, "", errors.Wrap(err, "fetching image")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, "", errors.Newf("fetching image: status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, "", errors.Wrap(err, "reading image")
	}

	mimeType := resp.Header.Get("Content-Type")
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = mimeType[:i]
	}
	if !strings.HasPrefix(mimeType, "image/") {
		mimeType = http.DetectContentType(data)
	}
	return data, mimeType, nil
}

func classifyErr(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return vision.StatusError("gemini", apiErr.Code, []byte(apiErr.Message), "")
	}
	return errors.Wrap(err, "calling gemini API")
}
