package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/docchat/docchat/internal/chat"
	"github.com/docchat/docchat/internal/vectordb"
)

// handleSearchDocuments performs semantic search over the stored chunks.
func (s *Server) handleSearchDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}

	results, err := s.engine.Retrieve(ctx, query)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	if len(results) == 0 {
		return mcp.NewToolResultText("No matching content found. Upload documents first via the server or `docchat ingest`."), nil
	}

	return mcp.NewToolResultText(formatSearchResults(results)), nil
}

// handleAskDocuments generates a grounded answer to a single question.
func (s *Server) handleAskDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, err := request.RequireString("question")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: question"), nil
	}

	answer, err := s.engine.AnswerOnce(ctx, []chat.Message{{Role: chat.RoleUser, Content: question}})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("answering failed: %v", err)), nil
	}

	return mcp.NewToolResultText(answer), nil
}

// handleListDocuments returns the document registry contents.
func (s *Server) handleListDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	docs, err := s.registry.List(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing failed: %v", err)), nil
	}

	if len(docs) == 0 {
		return mcp.NewToolResultText("No documents uploaded yet."), nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d document(s):\n", len(docs)))
	for _, d := range docs {
		sb.WriteString(fmt.Sprintf("\n- %s\n  hash: %s\n  chunks: %d, size: %d bytes, uploaded: %s\n",
			d.Filename, d.Hash, d.ChunkCount, d.SizeBytes, d.CreatedAt.Format("2006-01-02 15:04")))
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// formatSearchResults converts search results into a rich text format
// optimized for AI agent consumption.
func formatSearchResults(results []vectordb.SearchResult) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d result(s):\n", len(results)))

	for i, r := range results {
		sb.WriteString(fmt.Sprintf("\n--- Result %d ---\n", i+1))
		if r.Chunk.Metadata.Filename != "" {
			sb.WriteString(fmt.Sprintf("File: %s\n", r.Chunk.Metadata.Filename))
		}
		sb.WriteString(fmt.Sprintf("Similarity: %.1f%%\n", r.Similarity*100))
		sb.WriteString("\n")
		sb.WriteString(r.Chunk.Content)
		sb.WriteString("\n")
	}

	return sb.String()
}
