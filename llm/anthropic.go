// Anthropic completion service using the official anthropic-sdk-go.
//
// Information Hiding:
// - API endpoint and authentication
// - Request/response format for the Anthropic Messages API
// - Retry and timeout policy via SDK request options
// - Streaming and extended thinking via the official SDK

package llm

import (
	"context"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/cleesmith/writers-toolkit-v2/config"
)

// AnthropicService implements CompletionService for Anthropic Claude.
type AnthropicService struct {
	client anthropic.Client
	model  string
}

// NewAnthropicService creates an Anthropic-backed completion service.
// The configured retry count and request timeout are applied to every
// initiating request by the SDK; a stream that has begun is never
// retried.
func NewAnthropicService(apiKey string, cfg config.Settings) *AnthropicService {
	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(cfg.MaxRetries),
		option.WithRequestTimeout(time.Duration(cfg.RequestTimeoutSeconds)*time.Second),
	)

	return &AnthropicService{
		client: client,
		model:  cfg.ModelID,
	}
}

// Name returns the provider name.
func (s *AnthropicService) Name() string {
	return "anthropic"
}

// Model returns the current model.
func (s *AnthropicService) Model() string {
	return s.model
}

// CountTokens round-trips text through the remote token counter.
func (s *AnthropicService) CountTokens(ctx context.Context, text string) (int, error) {
	count, err := s.client.Messages.CountTokens(ctx, anthropic.MessageCountTokensParams{
		Model: anthropic.Model(s.model),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(text)),
		},
	})
	if err != nil {
		return 0, &CountError{Err: err}
	}
	return int(count.InputTokens), nil
}

// CompleteOnce performs a single blocking exchange.
func (s *AnthropicService) CompleteOnce(ctx context.Context, prompt string, opts Options) (Completion, error) {
	message, err := s.client.Messages.New(ctx, s.buildParams(prompt, opts))
	if err != nil {
		return Completion{}, &StreamError{Err: err}
	}

	var out Completion
	for _, block := range message.Content {
		switch variant := block.AsAny().(type) {
		case anthropic.TextBlock:
			out.VisibleText += variant.Text
		case anthropic.ThinkingBlock:
			out.ThinkingText += variant.Thinking
		}
	}
	return out, nil
}

// StreamComplete opens a streaming exchange and forwards deltas in
// arrival order.
func (s *AnthropicService) StreamComplete(ctx context.Context, prompt string, opts Options, events chan<- StreamEvent) error {
	stream := s.client.Messages.NewStreaming(ctx, s.buildParams(prompt, opts))

	for stream.Next() {
		event := stream.Current()

		switch eventVariant := event.AsAny().(type) {
		case anthropic.ContentBlockDeltaEvent:
			switch deltaVariant := eventVariant.Delta.AsAny().(type) {
			case anthropic.TextDelta:
				if deltaVariant.Text != "" {
					select {
					case events <- StreamEvent{Kind: StreamEventVisible, Text: deltaVariant.Text}:
					case <-ctx.Done():
						return &StreamError{Err: ctx.Err()}
					}
				}
			case anthropic.ThinkingDelta:
				if deltaVariant.Thinking != "" {
					select {
					case events <- StreamEvent{Kind: StreamEventThinking, Text: deltaVariant.Thinking}:
					case <-ctx.Done():
						return &StreamError{Err: ctx.Err()}
					}
				}
			}
		}
	}

	if err := stream.Err(); err != nil {
		return &StreamError{Err: err}
	}
	return nil
}

func (s *AnthropicService) buildParams(prompt string, opts Options) anthropic.MessageNewParams {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(s.model),
		MaxTokens: int64(opts.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}

	if opts.System != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: opts.System},
		}
	}

	if opts.ThinkingBudget > 0 {
		params.Thinking = anthropic.ThinkingConfigParamOfEnabled(int64(opts.ThinkingBudget))
	}

	return params
}

// Verify AnthropicService implements CompletionService
var _ CompletionService = (*AnthropicService)(nil)
