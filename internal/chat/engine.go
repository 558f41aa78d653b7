// Package chat answers questions about ingested documents by retrieving
// similar chunks and streaming a grounded completion.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/docchat/docchat/internal/embeddings"
	"github.com/docchat/docchat/internal/llm"
	"github.com/docchat/docchat/internal/vectordb"
)

// Conversation roles accepted on the wire. The client sends "model" for
// assistant turns.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// ErrInvalidConversation is returned when the message list is empty, the
// last message is not from the user, or the question is blank.
var ErrInvalidConversation = errors.New("conversation must end with a non-empty user message")

// Message is one turn of the client-side conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Engine retrieves relevant chunks for a question and generates a grounded
// answer.
type Engine struct {
	embedder  embeddings.Embedder
	store     vectordb.Store
	provider  llm.Provider
	model     string
	threshold float32
	limit     int
}

// NewEngine creates an Engine. threshold and limit bound the retrieval
// stage.
func NewEngine(embedder embeddings.Embedder, store vectordb.Store, provider llm.Provider, model string, threshold float32, limit int) *Engine {
	return &Engine{
		embedder:  embedder,
		store:     store,
		provider:  provider,
		model:     model,
		threshold: threshold,
		limit:     limit,
	}
}

// Answer validates the conversation, retrieves context for its final user
// message, and streams the grounded completion. Errors before generation
// starts are returned directly; generation errors arrive as a terminal
// delta on the channel.
func (e *Engine) Answer(ctx context.Context, messages []Message) (<-chan llm.StreamDelta, error) {
	prompt, err := e.buildRequest(ctx, messages)
	if err != nil {
		return nil, err
	}
	return e.provider.Stream(ctx, *prompt)
}

// AnswerOnce is the non-streaming variant of Answer. It blocks until the
// full answer is available.
func (e *Engine) AnswerOnce(ctx context.Context, messages []Message) (string, error) {
	prompt, err := e.buildRequest(ctx, messages)
	if err != nil {
		return "", err
	}
	resp, err := e.provider.Complete(ctx, *prompt)
	if err != nil {
		return "", fmt.Errorf("generating answer: %w", err)
	}
	return resp.Content, nil
}

// Retrieve runs only the retrieval stage for the given query text.
func (e *Engine) Retrieve(ctx context.Context, query string) ([]vectordb.SearchResult, error) {
	vector, err := embeddings.EmbedOne(ctx, e.embedder, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	results, err := e.store.Search(ctx, vector, e.threshold, e.limit)
	if err != nil {
		return nil, fmt.Errorf("searching chunks: %w", err)
	}
	return results, nil
}

func (e *Engine) buildRequest(ctx context.Context, messages []Message) (*llm.CompletionRequest, error) {
	if len(messages) == 0 {
		return nil, ErrInvalidConversation
	}
	last := messages[len(messages)-1]
	question := strings.TrimSpace(last.Content)
	if last.Role != RoleUser || question == "" {
		return nil, ErrInvalidConversation
	}

	results, err := e.Retrieve(ctx, question)
	if err != nil {
		return nil, err
	}

	return &llm.CompletionRequest{
		Model:    e.model,
		Messages: buildMessages(messages[:len(messages)-1], buildContext(results), question),
	}, nil
}
