package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/docchat/docchat/internal/llm"
	"github.com/docchat/docchat/internal/vectordb"
)

// stubEmbedder returns a fixed vector, or fails when err is set.
type stubEmbedder struct {
	err error
}

func (e *stubEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = []float32{1, 0, 0}
	}
	return vectors, nil
}

func (e *stubEmbedder) Dimensions() int { return 3 }
func (e *stubEmbedder) Name() string    { return "stub" }

// stubStore returns canned search results and records the query parameters.
type stubStore struct {
	results   []vectordb.SearchResult
	threshold float32
	limit     int
}

func (s *stubStore) AddChunks(context.Context, []vectordb.Chunk) error { return nil }
func (s *stubStore) DeleteByHash(context.Context, string) error        { return nil }
func (s *stubStore) Count() int                                        { return len(s.results) }

func (s *stubStore) Search(_ context.Context, _ []float32, threshold float32, limit int) ([]vectordb.SearchResult, error) {
	s.threshold = threshold
	s.limit = limit
	return s.results, nil
}

// stubProvider records the request and replays canned deltas.
type stubProvider struct {
	lastRequest llm.CompletionRequest
	deltas      []llm.StreamDelta
	answer      string
}

func (p *stubProvider) Complete(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	p.lastRequest = req
	return &llm.CompletionResponse{Content: p.answer}, nil
}

func (p *stubProvider) Stream(_ context.Context, req llm.CompletionRequest) (<-chan llm.StreamDelta, error) {
	p.lastRequest = req
	ch := make(chan llm.StreamDelta, len(p.deltas))
	for _, d := range p.deltas {
		ch <- d
	}
	close(ch)
	return ch, nil
}

func (p *stubProvider) Name() string { return "stub" }

func searchResults(contents ...string) []vectordb.SearchResult {
	results := make([]vectordb.SearchResult, len(contents))
	for i, c := range contents {
		results[i] = vectordb.SearchResult{
			Chunk:      vectordb.Chunk{ID: "doc:0", Content: c},
			Similarity: 0.9,
		}
	}
	return results
}

func setupEngine(store *stubStore, provider *stubProvider) *Engine {
	return NewEngine(&stubEmbedder{}, store, provider, "test-model", 0.7, 5)
}

func drain(t *testing.T, deltas <-chan llm.StreamDelta) string {
	t.Helper()
	var sb strings.Builder
	for d := range deltas {
		if d.Err != nil {
			t.Fatalf("unexpected stream error: %v", d.Err)
		}
		sb.WriteString(d.Content)
	}
	return sb.String()
}

func TestAnswerValidation(t *testing.T) {
	engine := setupEngine(&stubStore{}, &stubProvider{})

	tests := []struct {
		name     string
		messages []Message
	}{
		{"no messages", nil},
		{"last message from model", []Message{
			{Role: RoleUser, Content: "hi"},
			{Role: RoleModel, Content: "hello"},
		}},
		{"blank question", []Message{{Role: RoleUser, Content: "   "}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := engine.Answer(context.Background(), tt.messages); !errors.Is(err, ErrInvalidConversation) {
				t.Errorf("error = %v, want ErrInvalidConversation", err)
			}
		})
	}
}

func TestAnswerGroundsPromptInContext(t *testing.T) {
	store := &stubStore{results: searchResults("alpha facts", "beta facts")}
	provider := &stubProvider{deltas: []llm.StreamDelta{{Content: "answer"}}}
	engine := setupEngine(store, provider)

	deltas, err := engine.Answer(context.Background(), []Message{
		{Role: RoleUser, Content: "first question"},
		{Role: RoleModel, Content: "first answer"},
		{Role: RoleUser, Content: "what about beta?"},
	})
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	drain(t, deltas)

	if store.threshold != 0.7 || store.limit != 5 {
		t.Errorf("search params = %v/%d, want 0.7/5", store.threshold, store.limit)
	}

	req := provider.lastRequest
	if req.Model != "test-model" {
		t.Errorf("model = %q", req.Model)
	}
	if len(req.Messages) != 3 {
		t.Fatalf("len(messages) = %d, want 3", len(req.Messages))
	}
	if req.Messages[0].Role != llm.RoleUser || req.Messages[0].Content != "first question" {
		t.Errorf("history[0] = %+v", req.Messages[0])
	}
	if req.Messages[1].Role != llm.RoleAssistant || req.Messages[1].Content != "first answer" {
		t.Errorf("history[1] = %+v", req.Messages[1])
	}

	final := req.Messages[2]
	if final.Role != llm.RoleUser {
		t.Errorf("final role = %q", final.Role)
	}
	if !strings.HasPrefix(final.Content, "System Instruction: ") {
		t.Errorf("final turn missing instruction prefix: %q", final.Content)
	}
	if !strings.Contains(final.Content, "alpha facts\n---\nbeta facts") {
		t.Errorf("context not joined into prompt: %q", final.Content)
	}
	if !strings.Contains(final.Content, "User Question: what about beta?") {
		t.Errorf("question missing from final turn: %q", final.Content)
	}
}

func TestAnswerWithoutMatches(t *testing.T) {
	provider := &stubProvider{deltas: []llm.StreamDelta{{Content: "I don't know"}}}
	engine := setupEngine(&stubStore{}, provider)

	deltas, err := engine.Answer(context.Background(), []Message{{Role: RoleUser, Content: "anything?"}})
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	drain(t, deltas)

	final := provider.lastRequest.Messages[len(provider.lastRequest.Messages)-1]
	if !strings.Contains(final.Content, noMatchMarker) {
		t.Errorf("prompt missing no-match marker: %q", final.Content)
	}
}

func TestAnswerStreamsInOrder(t *testing.T) {
	provider := &stubProvider{deltas: []llm.StreamDelta{
		{Content: "The "}, {Content: "answer "}, {Content: "is 42."},
	}}
	engine := setupEngine(&stubStore{results: searchResults("chunk")}, provider)

	deltas, err := engine.Answer(context.Background(), []Message{{Role: RoleUser, Content: "q"}})
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if got := drain(t, deltas); got != "The answer is 42." {
		t.Errorf("streamed text = %q", got)
	}
}

func TestAnswerOnce(t *testing.T) {
	provider := &stubProvider{answer: "complete answer"}
	engine := setupEngine(&stubStore{results: searchResults("chunk")}, provider)

	answer, err := engine.AnswerOnce(context.Background(), []Message{{Role: RoleUser, Content: "q"}})
	if err != nil {
		t.Fatalf("AnswerOnce: %v", err)
	}
	if answer != "complete answer" {
		t.Errorf("answer = %q", answer)
	}
}

func TestAnswerEmbeddingFailure(t *testing.T) {
	engine := NewEngine(&stubEmbedder{err: errors.New("backend down")}, &stubStore{}, &stubProvider{}, "m", 0.7, 5)

	if _, err := engine.Answer(context.Background(), []Message{{Role: RoleUser, Content: "q"}}); err == nil {
		t.Fatal("expected embedding error")
	}
}
