// OpenAI-compatible completion service using go-openai.
//
// Information Hiding:
// - API endpoint and authentication (custom base URLs supported, so
//   any chat-completions-compatible host works)
// - Request/response format for the Chat Completions API
// - Streaming via go-openai

package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/cleesmith/writers-toolkit-v2/config"
)

// OpenAIService implements CompletionService for OpenAI and
// API-compatible providers.
type OpenAIService struct {
	client     *openai.Client
	model      string
	maxRetries int
}

// NewOpenAIService creates an OpenAI-backed completion service.
// baseURL overrides the API host when non-empty.
func NewOpenAIService(apiKey, baseURL string, cfg config.Settings) *OpenAIService {
	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientConfig.BaseURL = baseURL
	}
	clientConfig.HTTPClient = &http.Client{
		Timeout: time.Duration(cfg.RequestTimeoutSeconds) * time.Second,
	}

	return &OpenAIService{
		client:     openai.NewClientWithConfig(clientConfig),
		model:      cfg.ModelID,
		maxRetries: cfg.MaxRetries,
	}
}

// Name returns the provider name.
func (s *OpenAIService) Name() string {
	return "openai"
}

// Model returns the current model.
func (s *OpenAIService) Model() string {
	return s.model
}

// CountTokens estimates the token count locally. The Chat Completions
// API has no counting endpoint, so the estimate rounds up at roughly
// four characters per token; budget checks built on it are
// approximate for this provider.
func (s *OpenAIService) CountTokens(_ context.Context, text string) (int, error) {
	return (len(text) + 3) / 4, nil
}

// CompleteOnce performs a single blocking exchange.
func (s *OpenAIService) CompleteOnce(ctx context.Context, prompt string, opts Options) (Completion, error) {
	req := openai.ChatCompletionRequest{
		Model:     s.model,
		Messages:  s.buildMessages(prompt, opts),
		MaxTokens: opts.MaxTokens,
	}

	var resp openai.ChatCompletionResponse
	err := s.withRetry(ctx, func() error {
		var reqErr error
		resp, reqErr = s.client.CreateChatCompletion(ctx, req)
		return reqErr
	})
	if err != nil {
		return Completion{}, &StreamError{Err: err}
	}

	if len(resp.Choices) == 0 {
		return Completion{}, &StreamError{Err: fmt.Errorf("no choices in response")}
	}
	return Completion{VisibleText: resp.Choices[0].Message.Content}, nil
}

// StreamComplete opens a streaming exchange. The Chat Completions API
// exposes no reasoning trace, so only visible deltas are emitted.
func (s *OpenAIService) StreamComplete(ctx context.Context, prompt string, opts Options, events chan<- StreamEvent) error {
	req := openai.ChatCompletionRequest{
		Model:     s.model,
		Messages:  s.buildMessages(prompt, opts),
		MaxTokens: opts.MaxTokens,
		Stream:    true,
	}

	var stream *openai.ChatCompletionStream
	err := s.withRetry(ctx, func() error {
		var reqErr error
		stream, reqErr = s.client.CreateChatCompletionStream(ctx, req)
		return reqErr
	})
	if err != nil {
		return &StreamError{Err: err}
	}
	defer stream.Close()

	for {
		response, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return &StreamError{Err: err}
		}

		if len(response.Choices) > 0 {
			content := response.Choices[0].Delta.Content
			if content != "" {
				select {
				case events <- StreamEvent{Kind: StreamEventVisible, Text: content}:
				case <-ctx.Done():
					return &StreamError{Err: ctx.Err()}
				}
			}
		}
	}
}

func (s *OpenAIService) buildMessages(prompt string, opts Options) []openai.ChatCompletionMessage {
	var messages []openai.ChatCompletionMessage
	if opts.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: opts.System,
		})
	}
	return append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})
}

// withRetry retries the initiating request up to maxRetries times.
// Context cancellation stops the loop immediately.
func (s *OpenAIService) withRetry(ctx context.Context, call func() error) error {
	var err error
	for attempt := 0; ; attempt++ {
		if err = call(); err == nil {
			return nil
		}
		if attempt >= s.maxRetries {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt+1) * 500 * time.Millisecond):
		}
	}
}

// Verify OpenAIService implements CompletionService
var _ CompletionService = (*OpenAIService)(nil)
