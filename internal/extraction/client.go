// Package extraction turns one business-card image reference into ExtractedFields.
package extraction

import (
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"cardenrich/internal/domain"
	"cardenrich/internal/port"
)

// Outcome classifies how a record's fields were obtained.
type Outcome int

const (
	// OutcomeDecoded means the model answered with a well-formed JSON object.
	OutcomeDecoded Outcome = iota
	// OutcomeRecovered means the answer was malformed and fields were scraped from it.
	OutcomeRecovered
	// OutcomeDegraded means the call failed and every field is empty.
	OutcomeDegraded
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDecoded:
		return "decoded"
	case OutcomeRecovered:
		return "recovered"
	case OutcomeDegraded:
		return "degraded"
	default:
		return "unknown"
	}
}

const defaultPresignExpiry = 15 * 60

// Options configures a Client.
type Options struct {
	Fields domain.FieldSet

	// Signer resolves s3://bucket/key references. When nil they are sent unchanged.
	Signer        port.URLSigner
	PresignExpiry int64

	Logger *zap.Logger
}

// Client performs one vision call per image and resolves the answer into fields.
// Extract never fails; problems degrade the record to empty fields.
type Client struct {
	model         port.VisionModel
	fields        domain.FieldSet
	prompt        string
	signer        port.URLSigner
	presignExpiry int64
	log           *zap.Logger
}

// New creates a Client around an injected vision model.
func New(model port.VisionModel, opts Options) (*Client, error) {
	if model == nil {
		return nil, errors.New("extraction: vision model is required")
	}
	if opts.Fields == "" {
		opts.Fields = domain.FieldSetFull
	}
	if opts.PresignExpiry <= 0 {
		opts.PresignExpiry = defaultPresignExpiry
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Client{
		model:         model,
		fields:        opts.Fields,
		prompt:        BuildPrompt(opts.Fields),
		signer:        opts.Signer,
		presignExpiry: opts.PresignExpiry,
		log:           opts.Logger.Named("extraction"),
	}, nil
}

// Fields returns the field set this client requests.
func (c *Client) Fields() domain.FieldSet {
	return c.fields
}

// Prompt returns the instruction sent with every image.
func (c *Client) Prompt() string {
	return c.prompt
}

// Extract asks the model to read imageURL and returns the normalized fields.
func (c *Client) Extract(ctx context.Context, imageURL string) (domain.ExtractedFields, Outcome) {
	rid := uuid.New().String()
	start := time.Now()
	log := c.log.With(zap.String("req_id", rid), zap.String("image_url", imageURL))

	target, err := c.resolve(ctx, imageURL)
	if err != nil {
		log.Warn("extraction.resolve_failed", zap.Error(err))
		return domain.ExtractedFields{}, OutcomeDegraded
	}

	resp, err := c.model.Describe(ctx, port.VisionRequest{Instruction: c.prompt, ImageURL: target})
	if err != nil {
		log.Warn("extraction.call_failed",
			zap.Error(err),
			zap.Int64("elapsed_ms", time.Since(start).Milliseconds()),
		)
		return domain.ExtractedFields{}, OutcomeDegraded
	}

	raw := ""
	if resp != nil {
		raw = resp.Text
	}
	if strings.TrimSpace(raw) == "" {
		raw = "{}"
	}
	log.Debug("extraction.raw_response",
		zap.String("model", modelUsed(resp)),
		zap.String("raw", truncate(raw, 2000)),
	)

	fields, strategy := Normalize(raw, c.fields)
	if strategy == StrategyRegex {
		log.Warn("extraction.json_parse_failed", zap.String("fallback", strategy.String()))
		return fields, OutcomeRecovered
	}
	log.Debug("extraction.done", zap.Int64("elapsed_ms", time.Since(start).Milliseconds()))
	return fields, OutcomeDecoded
}

// resolve presigns s3:// references when a signer is configured.
func (c *Client) resolve(ctx context.Context, ref string) (string, error) {
	if c.signer == nil || !domain.IsObjectRef(ref) {
		return ref, nil
	}
	bucket, key, err := domain.ParseObjectRef(ref)
	if err != nil {
		return "", err
	}
	signed, err := c.signer.GetPresignedURL(ctx, bucket, key, c.presignExpiry)
	if err != nil {
		return "", errors.Wrapf(err, "presigning %s", ref)
	}
	return signed, nil
}

func modelUsed(resp *port.VisionResponse) string {
	if resp == nil {
		return ""
	}
	return resp.ModelUsed
}
