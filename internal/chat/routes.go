package chat

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts the chat API routes.
func RegisterRoutes(r chi.Router, engine *Engine) {
	r.Post("/api/chat", handleChat(engine))
	r.Get("/api/chat/ws", handleChatWS(engine))
}

type chatRequest struct {
	Messages []Message `json:"messages"`
}

// handleChat streams the answer as raw incremental text. The response is
// not SSE-framed; the event-stream content type just keeps proxies from
// buffering it.
func handleChat(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}

		deltas, err := engine.Answer(r.Context(), req.Messages)
		if err != nil {
			if errors.Is(err, ErrInvalidConversation) {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
				return
			}
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}

		w.Header().Set("Content-Type", "text/event-stream; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		w.WriteHeader(http.StatusOK)

		flusher, _ := w.(http.Flusher)
		for delta := range deltas {
			if delta.Err != nil {
				// Headers are gone; abort the connection so the client
				// sees a broken stream instead of a truncated answer.
				log.Printf("chat: stream failed: %v", delta.Err)
				panic(http.ErrAbortHandler)
			}
			if _, err := w.Write([]byte(delta.Content)); err != nil {
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
