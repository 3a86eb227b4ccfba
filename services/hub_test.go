package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestHubBroadcastsResultsToPollSubscribers(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	testUpgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("Upgrade failed: %v", err)
			return
		}
		hub.RegisterClient(conn, 42, map[string]interface{}{"total_votes": 0})
	}))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()

	readMessage := func() Message {
		t.Helper()
		conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("ReadMessage failed: %v", err)
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("Failed to decode message: %v", err)
		}
		return msg
	}

	// The initial snapshot arrives on connect
	initial := readMessage()
	if initial.Type != "results" {
		t.Errorf("Expected results message, got %q", initial.Type)
	}

	// A broadcast for another poll must not reach this subscriber; the
	// poll-42 broadcast right after it must.
	hub.BroadcastResults(7, map[string]interface{}{"total_votes": 99})
	hub.BroadcastResults(42, map[string]interface{}{"total_votes": 1})

	update := readMessage()
	if update.Type != "results" {
		t.Errorf("Expected results message, got %q", update.Type)
	}
	payload, ok := update.Payload.(map[string]interface{})
	if !ok {
		t.Fatalf("Unexpected payload type %T", update.Payload)
	}
	if payload["total_votes"] != float64(1) {
		t.Errorf("Expected the poll-42 payload, got %v", payload)
	}
}
