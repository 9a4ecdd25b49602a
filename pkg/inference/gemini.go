package inference

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"google.golang.org/genai"

	"github.com/teslashibe/go-nyaya/internal/httpc"
)

const providerGemini = "gemini"

// Gemini implements Provider on Google's Gemini API via the genai SDK.
type Gemini struct {
	client *genai.Client
	http   *http.Client
	config *Config
	logger *slog.Logger
}

// NewGemini creates a Gemini provider.
func NewGemini(opts ...Option) (*Gemini, error) {
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	if err := cfg.Validate(); err != nil {
		return nil, WrapError(providerGemini, err)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = httpc.NewClient(cfg.Timeout)
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(context.Background(), cc)
	if err != nil {
		return nil, WrapError(providerGemini, fmt.Errorf("create client: %w", err))
	}

	return &Gemini{
		client: client,
		http:   httpClient,
		config: cfg,
		logger: cfg.Logger.With("component", "inference.gemini"),
	}, nil
}

// Generate sends one prompt to Gemini and returns the text of the first
// candidate.
func (g *Gemini) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	if req == nil || req.Prompt == "" {
		return nil, WrapError(providerGemini, ErrEmptyPrompt)
	}
	start := time.Now()

	model := req.Model
	if model == "" {
		model = g.config.Model
	}

	gc := &genai.GenerateContentConfig{}
	temp := req.Temperature
	if temp == 0 {
		temp = g.config.Temperature
	}
	if temp > 0 {
		gc.Temperature = genai.Ptr(float32(temp))
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = g.config.MaxTokens
	}
	if maxTokens > 0 {
		gc.MaxOutputTokens = int32(maxTokens)
	}

	g.logger.Debug("generate", "model", model, "prompt_chars", len(req.Prompt))

	result, err := g.client.Models.GenerateContent(ctx, model, genai.Text(req.Prompt), gc)
	if err != nil {
		return nil, g.convertError(err)
	}

	text := result.Text()
	if text == "" {
		return nil, WrapError(providerGemini, ErrEmptyResponse)
	}

	resp := &GenerateResponse{
		Text:      text,
		Model:     model,
		LatencyMs: time.Since(start).Milliseconds(),
	}
	if len(result.Candidates) > 0 {
		resp.FinishReason = string(result.Candidates[0].FinishReason)
	}
	if u := result.UsageMetadata; u != nil {
		resp.Usage = Usage{
			PromptTokens:     int(u.PromptTokenCount),
			CompletionTokens: int(u.CandidatesTokenCount),
			TotalTokens:      int(u.TotalTokenCount),
		}
	}

	g.logger.Debug("generate complete",
		"model", model,
		"chars", len(text),
		"latency_ms", resp.LatencyMs,
	)
	return resp, nil
}

// Close releases resources.
func (g *Gemini) Close() error {
	g.http.CloseIdleConnections()
	return nil
}

// convertError maps SDK errors onto APIError so callers see one shape.
func (g *Gemini) convertError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &APIError{
			StatusCode: apiErr.Code,
			Message:    apiErr.Message,
			Status:     apiErr.Status,
			Provider:   providerGemini,
		}
	}
	return WrapError(providerGemini, err)
}

// Verify Gemini implements Provider at compile time.
var _ Provider = (*Gemini)(nil)
