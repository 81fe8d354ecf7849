package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/nathfavour/plantainbanana/internal/config"
	"github.com/nathfavour/plantainbanana/internal/generation"
	"google.golang.org/genai"
)

// defaultMIMEType is sent when an upload did not declare its type.
const defaultMIMEType = "application/octet-stream"

// contentGenerator is the subset of *genai.Models used by the generator.
type contentGenerator interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// GeminiGenerator implements generation.Generator using the Gemini API.
type GeminiGenerator struct {
	logger    *slog.Logger
	config    config.LLMConfig
	models    contentGenerator
	model     string
	baseDelay time.Duration
}

// NewGeminiGenerator validates cfg and creates a generator backed by a
// genai client for the Gemini API backend.
func NewGeminiGenerator(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*GeminiGenerator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", generation.ErrInvalidConfig, err)
	}

	logger.InfoContext(ctx, "Gemini generator initialized", "model", cfg.ModelName)
	return newGenerator(logger, cfg, client.Models), nil
}

func newGenerator(logger *slog.Logger, cfg config.LLMConfig, models contentGenerator) *GeminiGenerator {
	return &GeminiGenerator{
		logger:    logger,
		config:    cfg,
		models:    models,
		model:     cfg.ModelName,
		baseDelay: time.Duration(cfg.RetryDelaySeconds) * time.Second,
	}
}

func validateConfig(cfg config.LLMConfig) error {
	if cfg.GeminiAPIKey == "" {
		return fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.MaxRetries < 0 {
		return fmt.Errorf("%w: max retries cannot be negative", generation.ErrInvalidConfig)
	}
	return nil
}

// EditImage implements generation.Generator.
func (g *GeminiGenerator) EditImage(ctx context.Context, req generation.EditRequest) (*generation.Image, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	mimeType := req.MIMEType
	if mimeType == "" {
		mimeType = defaultMIMEType
	}

	contents := []*genai.Content{{
		Role: "user",
		Parts: []*genai.Part{
			{InlineData: &genai.Blob{Data: req.Image, MIMEType: mimeType}},
			{Text: req.Prompt},
		},
	}}
	genConfig := &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE", "TEXT"},
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = g.baseDelay
	policy.MaxElapsedTime = 0

	var (
		image   *generation.Image
		attempt int
	)
	operation := func() error {
		attempt++
		g.logger.DebugContext(ctx, "Making Gemini API call",
			"attempt", attempt,
			"max_attempts", g.config.MaxRetries+1,
			"image_bytes", len(req.Image),
			"mime_type", mimeType)

		resp, err := g.models.GenerateContent(ctx, g.model, contents, genConfig)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(cancelledError(ctx))
			}
			if !isTransient(err) {
				return backoff.Permanent(fmt.Errorf("%w: %v", generation.ErrGenerationFailed, err))
			}
			return fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
		}

		image, err = extractImage(resp)
		if err != nil {
			return backoff.Permanent(err)
		}
		return nil
	}

	notify := func(err error, delay time.Duration) {
		g.logger.WarnContext(ctx, "Gemini API call failed, retrying",
			"attempt", attempt,
			"delay_ms", delay.Milliseconds(),
			"error", err)
	}

	err := backoff.RetryNotify(
		operation,
		backoff.WithContext(backoff.WithMaxRetries(policy, uint64(g.config.MaxRetries)), ctx),
		notify,
	)
	if err != nil {
		if ctx.Err() != nil {
			err = cancelledError(ctx)
		}
		g.logger.ErrorContext(ctx, "Gemini API call failed",
			"attempts", attempt,
			"error", err)
		return nil, err
	}

	g.logger.InfoContext(ctx, "Gemini API call successful",
		"attempts", attempt,
		"mime_type", image.MIMEType,
		"image_bytes", len(image.Data))
	return image, nil
}

// extractImage returns the first inline image of the response.
func extractImage(resp *genai.GenerateContentResponse) (*generation.Image, error) {
	if resp == nil {
		return nil, fmt.Errorf("%w: nil response", generation.ErrInvalidResponse)
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return nil, fmt.Errorf("%w: prompt blocked (%s)", generation.ErrContentBlocked, resp.PromptFeedback.BlockReason)
	}

	blocked := false
	for _, cand := range resp.Candidates {
		if cand == nil {
			continue
		}
		if cand.FinishReason == genai.FinishReasonSafety {
			blocked = true
		}
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part == nil || part.InlineData == nil {
				continue
			}
			if len(part.InlineData.Data) > 0 && part.InlineData.MIMEType != "" {
				return &generation.Image{
					Data:     part.InlineData.Data,
					MIMEType: part.InlineData.MIMEType,
				}, nil
			}
		}
	}

	if blocked {
		return nil, generation.ErrContentBlocked
	}
	return nil, generation.ErrNoImage
}

// isTransient reports whether an API failure is worth retrying. Errors
// that are not API errors (transport failures) are treated as transient.
func isTransient(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError
	}
	return true
}

// cancelledError wraps both ctx.Err() and its cause, so callers can match
// either context.Canceled or the reason the run was cancelled.
func cancelledError(ctx context.Context) error {
	cause := context.Cause(ctx)
	if cause == nil || errors.Is(cause, ctx.Err()) {
		return fmt.Errorf("image generation cancelled: %w", ctx.Err())
	}
	return fmt.Errorf("image generation cancelled: %w: %w", ctx.Err(), cause)
}
