// Google Gemini completion service using the official
// google.golang.org/genai SDK.
//
// Information Hiding:
// - API authentication and client creation
// - Request/response format for the Gemini API
// - Native token counting via Models.CountTokens
// - Streaming via the SDK iterator

package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/cleesmith/writers-toolkit-v2/config"
)

// GeminiService implements CompletionService for Google Gemini.
type GeminiService struct {
	client  *genai.Client
	model   string
	initErr error // Stores client initialization error for deferred reporting
}

// NewGeminiService creates a Gemini-backed completion service.
// If client initialization fails, the error is stored and returned on
// first use.
func NewGeminiService(apiKey string, cfg config.Settings) *GeminiService {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return &GeminiService{
			model:   cfg.ModelID,
			initErr: fmt.Errorf("failed to initialize Gemini client: %w", err),
		}
	}

	return &GeminiService{
		client: client,
		model:  cfg.ModelID,
	}
}

// Name returns the provider name.
func (s *GeminiService) Name() string {
	return "gemini"
}

// Model returns the current model.
func (s *GeminiService) Model() string {
	return s.model
}

// CountTokens round-trips text through the remote token counter.
func (s *GeminiService) CountTokens(ctx context.Context, text string) (int, error) {
	if s.initErr != nil {
		return 0, &CountError{Err: s.initErr}
	}

	resp, err := s.client.Models.CountTokens(ctx, s.model, genai.Text(text), nil)
	if err != nil {
		return 0, &CountError{Err: err}
	}
	return int(resp.TotalTokens), nil
}

// CompleteOnce performs a single blocking exchange.
func (s *GeminiService) CompleteOnce(ctx context.Context, prompt string, opts Options) (Completion, error) {
	if s.initErr != nil {
		return Completion{}, &StreamError{Err: s.initErr}
	}

	resp, err := s.client.Models.GenerateContent(ctx, s.model, genai.Text(prompt), s.buildConfig(opts))
	if err != nil {
		return Completion{}, &StreamError{Err: err}
	}

	var out Completion
	collectGeminiParts(resp, &out.ThinkingText, &out.VisibleText)
	return out, nil
}

// StreamComplete opens a streaming exchange and forwards deltas in
// arrival order. Thought parts map to thinking events.
func (s *GeminiService) StreamComplete(ctx context.Context, prompt string, opts Options, events chan<- StreamEvent) error {
	if s.initErr != nil {
		return &StreamError{Err: s.initErr}
	}

	// GenerateContentStream returns iter.Seq2[*GenerateContentResponse, error]
	for resp, err := range s.client.Models.GenerateContentStream(ctx, s.model, genai.Text(prompt), s.buildConfig(opts)) {
		if err != nil {
			return &StreamError{Err: err}
		}

		var thinking, visible string
		collectGeminiParts(resp, &thinking, &visible)

		if thinking != "" {
			select {
			case events <- StreamEvent{Kind: StreamEventThinking, Text: thinking}:
			case <-ctx.Done():
				return &StreamError{Err: ctx.Err()}
			}
		}
		if visible != "" {
			select {
			case events <- StreamEvent{Kind: StreamEventVisible, Text: visible}:
			case <-ctx.Done():
				return &StreamError{Err: ctx.Err()}
			}
		}
	}

	return nil
}

func (s *GeminiService) buildConfig(opts Options) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(opts.MaxTokens),
	}
	if opts.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(opts.System, genai.RoleUser)
	}
	if opts.ThinkingBudget > 0 {
		cfg.ThinkingConfig = &genai.ThinkingConfig{
			IncludeThoughts: true,
			ThinkingBudget:  genai.Ptr(int32(opts.ThinkingBudget)),
		}
	}
	return cfg
}

func collectGeminiParts(resp *genai.GenerateContentResponse, thinking, visible *string) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.Text == "" {
			continue
		}
		if part.Thought {
			*thinking += part.Text
		} else {
			*visible += part.Text
		}
	}
}

// Verify GeminiService implements CompletionService
var _ CompletionService = (*GeminiService)(nil)
