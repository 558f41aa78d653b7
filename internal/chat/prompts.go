package chat

import (
	"fmt"
	"strings"

	"github.com/docchat/docchat/internal/llm"
	"github.com/docchat/docchat/internal/vectordb"
)

// contextSeparator joins retrieved chunk contents in the prompt.
const contextSeparator = "\n---\n"

// noMatchMarker is substituted for the context when retrieval returns
// nothing above the similarity threshold. The grounding instruction makes
// the model say so instead of answering from its own knowledge.
const noMatchMarker = "No relevant content was found in the uploaded documents."

const groundingInstruction = `You are a helpful assistant that answers questions about uploaded documents.
Answer the user's question based only on the following context from the documents.
If the context does not contain the information needed to answer, say so explicitly.

Context:
%s`

// buildContext joins search results into the prompt context block.
func buildContext(results []vectordb.SearchResult) string {
	if len(results) == 0 {
		return noMatchMarker
	}
	parts := make([]string, len(results))
	for i, r := range results {
		parts[i] = r.Chunk.Content
	}
	return strings.Join(parts, contextSeparator)
}

// buildMessages converts the conversation history plus the grounded final
// turn into provider messages. The history excludes the last message; the
// question is re-stated in the final turn together with the instruction so
// providers without a native system-instruction slot still see it last.
func buildMessages(history []Message, contextText, question string) []llm.Message {
	instruction := fmt.Sprintf(groundingInstruction, contextText)

	messages := make([]llm.Message, 0, len(history)+1)
	for _, m := range history {
		role := llm.RoleUser
		if m.Role == RoleModel {
			role = llm.RoleAssistant
		}
		messages = append(messages, llm.Message{Role: role, Content: m.Content})
	}
	messages = append(messages, llm.Message{
		Role:    llm.RoleUser,
		Content: fmt.Sprintf("System Instruction: %s\n\nUser Question: %s", instruction, question),
	})
	return messages
}
