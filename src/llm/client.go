// Package llm wraps the external narrative-generation service. The rest of
// the codebase only sees the NarrativeClient interface, so handlers and
// services can be tested against a fake instead of a network call.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"google.golang.org/genai"

	"github.com/raymond0208/CashCatalyst/src/logger"
)

// DefaultModelName is used when no model is configured.
const DefaultModelName = "gemini-2.0-flash"

var (
	// ErrMissingAPIKey is a configuration error: the narrative service
	// credential is absent or obviously invalid. Distinct from transient
	// failures so handlers can tell the operator from the network.
	ErrMissingAPIKey = errors.New("narrative service API key is not configured")

	// ErrNarrativeFailed covers transient or unknown failures of the
	// narrative service (network, rate limit, malformed response).
	ErrNarrativeFailed = errors.New("narrative generation failed")
)

// NarrativeClient is the external text-completion collaborator. The returned
// text is untrusted prose; callers needing structure must run it through the
// tolerant statement parser.
type NarrativeClient interface {
	GenerateNarrative(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// UnconfiguredClient stands in when no API key is set. Every call fails with
// ErrMissingAPIKey, so the process can still serve everything that does not
// need the narrative service.
type UnconfiguredClient struct{}

func (UnconfiguredClient) GenerateNarrative(ctx context.Context, prompt string, maxTokens int) (string, error) {
	return "", ErrMissingAPIKey
}

// GeminiClient calls the Gemini API. Construct with NewGeminiClient and pass
// it in explicitly; there is no package-level singleton.
type GeminiClient struct {
	client     *genai.Client
	model      string
	maxRetries uint64
}

// NewGeminiClient validates the credential and builds the underlying client.
// An empty API key returns ErrMissingAPIKey immediately rather than failing
// on the first request.
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if model == "" {
		model = DefaultModelName
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating narrative client: %w", err)
	}

	return &GeminiClient{
		client:     client,
		model:      model,
		maxRetries: 2,
	}, nil
}

// GenerateNarrative sends the prompt and returns the model's text. Transient
// failures are retried with exponential backoff within the caller's context
// deadline; whatever still fails is wrapped in ErrNarrativeFailed. An empty
// response body is a failure too: the caller must never receive a fabricated
// or blank narrative as success.
func (c *GeminiClient) GenerateNarrative(ctx context.Context, prompt string, maxTokens int) (string, error) {
	cfg := &genai.GenerateContentConfig{}
	if maxTokens > 0 {
		cfg.MaxOutputTokens = int32(maxTokens)
	}

	var text string
	operation := func() error {
		resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), cfg)
		if err != nil {
			logger.L.Warn("Narrative service call failed, may retry", "model", c.model, "error", err)
			return err
		}
		text = resp.Text()
		if text == "" {
			return errors.New("empty response from model")
		}
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(backoff.WithInitialInterval(500*time.Millisecond)), c.maxRetries),
		ctx,
	)
	if err := backoff.Retry(operation, policy); err != nil {
		return "", fmt.Errorf("%w: %v", ErrNarrativeFailed, err)
	}
	return text, nil
}
