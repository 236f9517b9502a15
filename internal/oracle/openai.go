// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package oracle

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"

	"github.com/pdiddy/paper-companion/pkg/types"
)

// backoffBase controls the base duration for exponential backoff. Tests
// override this to avoid real sleeps.
var backoffBase = time.Second

// OpenAIBackend implements Oracle against the OpenAI chat completions API.
type OpenAIBackend struct {
	// Model is the chat model identifier, from AIConfig.
	Model string

	// MaxRetries bounds retry attempts per call (default 3).
	MaxRetries int

	client openai.Client
}

// NewOpenAI builds a backend from stage configuration. Extra request
// options (e.g. option.WithBaseURL in tests) are appended after the API
// key option.
func NewOpenAI(cfg types.AIConfig, opts ...option.RequestOption) *OpenAIBackend {
	all := append([]option.RequestOption{option.WithAPIKey(cfg.APIKey)}, opts...)
	return &OpenAIBackend{
		Model:      cfg.Model,
		MaxRetries: cfg.MaxRetries,
		client:     openai.NewClient(all...),
	}
}

// Keywords derives keywords from one text source. The low temperature
// and token cap keep the completion to a terse semicolon-separated list.
func (b *OpenAIBackend) Keywords(ctx context.Context, title, text string, kind SourceKind) ([]string, error) {
	prompt, err := renderKeywordPrompt(title, text, kind)
	if err != nil {
		return nil, err
	}

	content, err := b.complete(ctx, keywordSystemPrompt, prompt, openai.ChatCompletionNewParams{
		Temperature: openai.Float(0.3),
		MaxTokens:   openai.Int(200),
	})
	if err != nil {
		return nil, fmt.Errorf("deriving %s keywords: %w", kind, err)
	}
	return parseKeywords(content), nil
}

// Summarize produces the structured note body.
func (b *OpenAIBackend) Summarize(ctx context.Context, title, text string, kind SourceKind, vocabulary []string) (string, error) {
	prompt, err := renderSummaryPrompt(title, text, kind, vocabulary)
	if err != nil {
		return "", err
	}

	content, err := b.complete(ctx, summarySystemPrompt, prompt, openai.ChatCompletionNewParams{})
	if err != nil {
		return "", fmt.Errorf("summarizing (%s): %w", kind, err)
	}
	return content, nil
}

// complete issues one chat completion with exponential-backoff retries.
func (b *OpenAIBackend) complete(ctx context.Context, system, prompt string, params openai.ChatCompletionNewParams) (string, error) {
	params.Model = shared.ChatModel(b.Model)
	params.Messages = []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(system),
		openai.UserMessage(prompt),
	}

	maxRetries := b.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * backoffBase
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		resp, err := b.client.Chat.Completions.New(ctx, params)
		if err != nil {
			lastErr = err
			continue
		}
		if len(resp.Choices) == 0 {
			lastErr = fmt.Errorf("empty completion response")
			continue
		}
		return resp.Choices[0].Message.Content, nil
	}
	return "", fmt.Errorf("after %d retries: %w", maxRetries, lastErr)
}
