package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNewProviderUnsupported(t *testing.T) {
	if _, err := NewProvider("watson", "any"); err == nil {
		t.Error("expected error for unsupported provider type")
	}
}

func TestNewOpenAIProviderRequiresKey(t *testing.T) {
	if _, err := NewOpenAIProvider("", "gpt-4o-mini"); err == nil {
		t.Error("expected error for empty API key")
	}
}

// ollamaTestServer serves canned /api/chat responses.
func ollamaTestServer(t *testing.T, handler http.HandlerFunc) *OllamaProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewOllamaProvider(server.URL, "test-model")
}

func TestOllamaComplete(t *testing.T) {
	provider := ollamaTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("path = %q", r.URL.Path)
		}
		var req ollamaChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if req.Stream {
			t.Error("Complete should not request streaming")
		}
		if req.Model != "test-model" {
			t.Errorf("model = %q", req.Model)
		}

		json.NewEncoder(w).Encode(ollamaChatResponse{
			Message:         ollamaMessage{Role: "assistant", Content: "hello back"},
			Model:           "test-model",
			Done:            true,
			DoneReason:      "stop",
			PromptEvalCount: 5,
			EvalCount:       3,
		})
	})

	resp, err := provider.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: RoleUser, Content: "hello"}},
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.Content != "hello back" {
		t.Errorf("Content = %q", resp.Content)
	}
	if resp.InputTokens != 5 || resp.OutputTokens != 3 {
		t.Errorf("tokens = %d/%d, want 5/3", resp.InputTokens, resp.OutputTokens)
	}
}

func TestOllamaStream(t *testing.T) {
	provider := ollamaTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req ollamaChatRequest
		json.NewDecoder(r.Body).Decode(&req)
		if !req.Stream {
			t.Error("Stream should request streaming")
		}

		enc := json.NewEncoder(w)
		enc.Encode(ollamaChatResponse{Message: ollamaMessage{Content: "one "}})
		enc.Encode(ollamaChatResponse{Message: ollamaMessage{Content: "two"}})
		enc.Encode(ollamaChatResponse{Done: true, DoneReason: "stop"})
	})

	deltas, err := provider.Stream(context.Background(), CompletionRequest{
		Messages: []Message{{Role: RoleUser, Content: "count"}},
	})
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}

	var text strings.Builder
	for d := range deltas {
		if d.Err != nil {
			t.Fatalf("unexpected stream error: %v", d.Err)
		}
		text.WriteString(d.Content)
	}
	if text.String() != "one two" {
		t.Errorf("streamed text = %q", text.String())
	}
}

func TestOllamaStreamDecodeError(t *testing.T) {
	provider := ollamaTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "not json")
	})

	deltas, err := provider.Stream(context.Background(), CompletionRequest{
		Messages: []Message{{Role: RoleUser, Content: "q"}},
	})
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}

	var terminal StreamDelta
	for d := range deltas {
		terminal = d
	}
	if terminal.Err == nil {
		t.Error("expected terminal error delta")
	}
}

func TestOllamaStreamHonorsCancel(t *testing.T) {
	blocked := make(chan struct{})
	provider := ollamaTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		enc := json.NewEncoder(w)
		// Keep emitting until the client goes away.
		for i := 0; i < 10000; i++ {
			if err := enc.Encode(ollamaChatResponse{Message: ollamaMessage{Content: "x"}}); err != nil {
				close(blocked)
				return
			}
			flusher.Flush()
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	deltas, err := provider.Stream(ctx, CompletionRequest{
		Messages: []Message{{Role: RoleUser, Content: "q"}},
	})
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}

	// Take one delta, then walk away.
	<-deltas
	cancel()

	select {
	case <-blocked:
	case <-time.After(5 * time.Second):
		t.Error("server handler still running after cancel")
	}
}

func TestOllamaErrorStatus(t *testing.T) {
	provider := ollamaTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	})

	if _, err := provider.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: RoleUser, Content: "q"}},
	}); err == nil {
		t.Error("expected error for non-200 status")
	}
}
