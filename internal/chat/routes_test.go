package chat

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/docchat/docchat/internal/llm"
)

func setupChatRouter(provider *stubProvider) *chi.Mux {
	engine := setupEngine(&stubStore{results: searchResults("context chunk")}, provider)
	r := chi.NewRouter()
	RegisterRoutes(r, engine)
	return r
}

func TestChatEndpointStreams(t *testing.T) {
	provider := &stubProvider{deltas: []llm.StreamDelta{
		{Content: "Hello "}, {Content: "world."},
	}}
	r := setupChatRouter(provider)

	body := `{"messages":[{"role":"user","content":"say hello"}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Errorf("Content-Type = %q", ct)
	}
	if rec.Body.String() != "Hello world." {
		t.Errorf("body = %q, want concatenated deltas", rec.Body.String())
	}
}

func TestChatEndpointBadRequests(t *testing.T) {
	r := setupChatRouter(&stubProvider{})

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", "{"},
		{"no messages", `{"messages":[]}`},
		{"last from model", `{"messages":[{"role":"model","content":"hi"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q, want application/json", ct)
			}
		})
	}
}

func TestChatWebSocket(t *testing.T) {
	provider := &stubProvider{deltas: []llm.StreamDelta{
		{Content: "part one "}, {Content: "part two"},
	}}
	r := setupChatRouter(provider)

	server := httptest.NewServer(r)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/chat/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial: %v", err)
	}
	defer conn.Close()

	if resp.StatusCode != http.StatusSwitchingProtocols {
		t.Fatalf("expected 101, got %d", resp.StatusCode)
	}

	req := wsRequest{Messages: []Message{{Role: RoleUser, Content: "stream it"}}}
	if err := conn.WriteJSON(req); err != nil {
		t.Fatalf("write: %v", err)
	}

	var text strings.Builder
	for {
		var frame wsFrame
		if err := conn.ReadJSON(&frame); err != nil {
			t.Fatalf("read: %v", err)
		}
		if frame.Type == "done" {
			break
		}
		if frame.Type != "delta" {
			t.Fatalf("frame = %+v, want delta", frame)
		}
		text.WriteString(frame.Content)
	}
	if text.String() != "part one part two" {
		t.Errorf("streamed text = %q", text.String())
	}
}

func TestChatWebSocketInvalidConversation(t *testing.T) {
	r := setupChatRouter(&stubProvider{})

	server := httptest.NewServer(r)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/chat/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(wsRequest{}); err != nil {
		t.Fatalf("write: %v", err)
	}

	var frame wsFrame
	if err := conn.ReadJSON(&frame); err != nil {
		t.Fatalf("read: %v", err)
	}
	if frame.Type != "error" {
		t.Errorf("frame type = %q, want error", frame.Type)
	}
}
