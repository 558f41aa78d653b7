package chat

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsRequest is the incoming WebSocket message format.
type wsRequest struct {
	Messages []Message `json:"messages"`
}

// wsFrame is the outgoing WebSocket message format.
type wsFrame struct {
	Type    string `json:"type"` // "delta", "done" or "error"
	Content string `json:"content,omitempty"`
}

// handleChatWS streams answers over a WebSocket. Each incoming message is
// one full conversation; the answer comes back as a sequence of delta
// frames closed by a done frame.
func handleChatWS(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("chat: websocket upgrade: %v", err)
			return
		}
		defer conn.Close()

		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Printf("chat: websocket read: %v", err)
				}
				return
			}

			var req wsRequest
			if err := json.Unmarshal(msg, &req); err != nil {
				sendFrame(conn, wsFrame{Type: "error", Content: "invalid message format"})
				continue
			}

			deltas, err := engine.Answer(r.Context(), req.Messages)
			if err != nil {
				sendFrame(conn, wsFrame{Type: "error", Content: err.Error()})
				continue
			}

			failed := false
			for delta := range deltas {
				if delta.Err != nil {
					sendFrame(conn, wsFrame{Type: "error", Content: delta.Err.Error()})
					failed = true
					break
				}
				sendFrame(conn, wsFrame{Type: "delta", Content: delta.Content})
			}
			if !failed {
				sendFrame(conn, wsFrame{Type: "done"})
			}
		}
	}
}

func sendFrame(conn *websocket.Conn, frame wsFrame) {
	if err := conn.WriteJSON(frame); err != nil {
		log.Printf("chat: websocket write: %v", err)
	}
}
