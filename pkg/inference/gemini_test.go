package inference

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newGeminiServer(t *testing.T, handler func(w http.ResponseWriter, prompt string)) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/models/gemini-2.5-flash:generateContent") {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("x-goog-api-key") != "test-key" {
			t.Errorf("Expected API key header, got %q", r.Header.Get("x-goog-api-key"))
		}

		var body struct {
			Contents []struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"contents"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		prompt := ""
		if len(body.Contents) > 0 && len(body.Contents[0].Parts) > 0 {
			prompt = body.Contents[0].Parts[0].Text
		}

		w.Header().Set("Content-Type", "application/json")
		handler(w, prompt)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestGeminiGenerate(t *testing.T) {
	server := newGeminiServer(t, func(w http.ResponseWriter, prompt string) {
		if prompt != "What is Section 154?" {
			t.Errorf("Unexpected prompt %q", prompt)
		}
		w.Write([]byte(`{
			"candidates": [{
				"content": {"role": "model", "parts": [{"text": "## FIR\n- **Section 173** of BNSS"}]},
				"finishReason": "STOP"
			}],
			"usageMetadata": {"promptTokenCount": 7, "candidatesTokenCount": 9, "totalTokenCount": 16}
		}`))
	})

	g, err := NewGemini(WithAPIKey("test-key"), WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("NewGemini: %v", err)
	}
	defer g.Close()

	resp, err := g.Generate(context.Background(), &GenerateRequest{Prompt: "What is Section 154?"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if resp.Text != "## FIR\n- **Section 173** of BNSS" {
		t.Errorf("Unexpected text %q", resp.Text)
	}
	if resp.Model != DefaultModel {
		t.Errorf("Expected model %s, got %s", DefaultModel, resp.Model)
	}
	if resp.FinishReason != "STOP" {
		t.Errorf("Expected STOP, got %s", resp.FinishReason)
	}
	if resp.Usage.TotalTokens != 16 {
		t.Errorf("Expected 16 tokens, got %d", resp.Usage.TotalTokens)
	}
}

func TestGeminiAPIError(t *testing.T) {
	server := newGeminiServer(t, func(w http.ResponseWriter, prompt string) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"code": 400, "message": "API key not valid. Please pass a valid API key.", "status": "INVALID_ARGUMENT"}}`))
	})

	g, err := NewGemini(WithAPIKey("test-key"), WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("NewGemini: %v", err)
	}

	_, err = g.Generate(context.Background(), &GenerateRequest{Prompt: "hi"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != 400 {
		t.Errorf("Expected 400, got %d", apiErr.StatusCode)
	}
	if Message(err) != "API key not valid. Please pass a valid API key." {
		t.Errorf("Unexpected message %q", Message(err))
	}
}

func TestGeminiEmptyCandidates(t *testing.T) {
	server := newGeminiServer(t, func(w http.ResponseWriter, prompt string) {
		w.Write([]byte(`{"candidates": []}`))
	})

	g, _ := NewGemini(WithAPIKey("test-key"), WithBaseURL(server.URL))
	_, err := g.Generate(context.Background(), &GenerateRequest{Prompt: "hi"})
	if !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("Expected ErrEmptyResponse, got %v", err)
	}
}

func TestGeminiRequiresAPIKey(t *testing.T) {
	_, err := NewGemini()
	if !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("Expected ErrNoAPIKey, got %v", err)
	}
}

func TestGeminiRejectsEmptyPrompt(t *testing.T) {
	g, err := NewGemini(WithAPIKey("test-key"), WithBaseURL("http://127.0.0.1:1"))
	if err != nil {
		t.Fatalf("NewGemini: %v", err)
	}
	if _, err := g.Generate(context.Background(), &GenerateRequest{}); !errors.Is(err, ErrEmptyPrompt) {
		t.Errorf("Expected ErrEmptyPrompt, got %v", err)
	}
}
