// Package inference is the boundary to the generative-language API.
//
// A Provider takes one prompt and returns one block of text. The Gemini
// implementation talks to Google's Gemini API through the genai SDK; Mock
// stands in for it in tests; Chain falls back across providers.
//
// Example usage:
//
//	provider, _ := inference.NewGemini(
//	    inference.WithAPIKey(os.Getenv("GEMINI_API_KEY")),
//	    inference.WithModel("gemini-2.5-flash"),
//	)
//	defer provider.Close()
//
//	resp, _ := provider.Generate(ctx, &inference.GenerateRequest{
//	    Prompt: prompt,
//	})
//	fmt.Println(resp.Text)
package inference

import "context"

// Provider is the generative API interface.
type Provider interface {
	// Generate produces a response for a single prompt.
	Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error)

	// Close releases any resources held by the provider.
	Close() error
}

// GenerateRequest is one prompt submission.
type GenerateRequest struct {
	// Prompt is the full composed prompt.
	Prompt string

	// Model overrides the provider's default model.
	Model string

	// Temperature overrides the default sampling temperature when > 0.
	Temperature float64

	// MaxTokens limits the response length when > 0.
	MaxTokens int
}

// GenerateResponse is the provider's answer.
type GenerateResponse struct {
	// Text is the generated text, possibly markdown-flavoured.
	Text string

	// FinishReason indicates why generation stopped.
	FinishReason string

	// Model used for generation.
	Model string

	// Usage tracks token consumption.
	Usage Usage

	// LatencyMs is the response time in milliseconds.
	LatencyMs int64
}

// Usage tracks token consumption.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}
