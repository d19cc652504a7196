package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

func openaiAgainst(t *testing.T, handler http.HandlerFunc) *OpenAIProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return &OpenAIProvider{
		client: newOpenAIClient("test-key", server.URL+"/v1", time.Second),
		model:  "gpt-5-mini",
	}
}

func TestOpenAIGenerate(t *testing.T) {
	reply := `{"questions":[{"id":"q1","prompt":"State the chain rule.","bloom":1}]}`

	p := openaiAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"created": 1234567890,
			"model":   "gpt-5-mini",
			"choices": []map[string]any{
				{
					"index": 0,
					"message": map[string]any{
						"role":    "assistant",
						"content": reply,
					},
					"finish_reason": "stop",
				},
			},
			"usage": map[string]any{
				"prompt_tokens":     40,
				"completion_tokens": 25,
				"total_tokens":      65,
			},
		})
	})

	resp, err := p.Generate(context.Background(), Request{
		System:    "You write mastery tests.",
		Messages:  []Message{{Role: RoleUser, Content: "Write one question on the chain rule."}},
		MaxTokens: 256,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != reply {
		t.Fatalf("wrong content: %s", resp.Content)
	}
	if resp.Usage.InputTokens != 40 || resp.Usage.OutputTokens != 25 {
		t.Fatalf("wrong usage: %+v", resp.Usage)
	}
	if resp.StopReason != "end" {
		t.Fatalf("expected stop reason 'end', got %q", resp.StopReason)
	}
}

func TestOpenAIRateLimitMapped(t *testing.T) {
	p := openaiAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"type":    "tokens",
				"message": "Rate limit exceeded",
				"code":    "rate_limit_exceeded",
			},
		})
	})

	_, err := p.Generate(context.Background(), Request{
		Messages:  []Message{{Role: RoleUser, Content: "hi"}},
		MaxTokens: 100,
	})
	if err == nil {
		t.Fatal("expected error")
	}
	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("expected ErrRateLimit, got %T (%v)", err, err)
	}
}

func TestOpenAIServerErrorMapped(t *testing.T) {
	p := openaiAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"type":    "server_error",
				"message": "Internal server error",
			},
		})
	})

	_, err := p.Generate(context.Background(), Request{
		Messages:  []Message{{Role: RoleUser, Content: "hi"}},
		MaxTokens: 100,
	})
	if err == nil {
		t.Fatal("expected error")
	}
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got %T (%v)", err, err)
	}
}

func TestOpenAIStopReasonLength(t *testing.T) {
	if got := openaiStopReason(openai.FinishReasonLength); got != "max_tokens" {
		t.Fatalf("length should map to max_tokens, got %q", got)
	}
	if got := openaiStopReason(openai.FinishReasonStop); got != "end" {
		t.Fatalf("stop should map to end, got %q", got)
	}
}

func TestOpenAIAliases(t *testing.T) {
	p, err := NewOpenAIProvider(OpenAIConfig{APIKey: "test-key", Model: "gpt"}, time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ModelID() != "gpt-5.1" {
		t.Fatalf("alias 'gpt' should resolve to gpt-5.1, got %q", p.ModelID())
	}

	p, err = NewOpenAIProvider(OpenAIConfig{APIKey: "test-key", Model: "o4-mini"}, time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ModelID() != "o4-mini" {
		t.Fatalf("exact IDs should pass through, got %q", p.ModelID())
	}
}
