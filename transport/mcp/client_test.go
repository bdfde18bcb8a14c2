package mcp

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/duelboard/gomoku/game/board"
	"github.com/duelboard/gomoku/game/room"
)

func TestNewClient(t *testing.T) {
	baseURL := "http://localhost:8080"
	client := NewClient(baseURL)

	if client == nil {
		t.Fatal("Expected client to be created")
	}

	if client.baseURL != baseURL {
		t.Errorf("Expected baseURL %s, got %s", baseURL, client.baseURL)
	}

	if client.httpClient == nil {
		t.Error("Expected HTTP client to be initialized")
	}

	if client.mcpServer == nil {
		t.Error("Expected MCP server to be initialized")
	}
}

func TestClient_apiCall(t *testing.T) {
	expectedResponse := map[string]interface{}{
		"rooms":       float64(2),
		"connections": float64(3),
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(expectedResponse)
	}))
	defer server.Close()

	client := NewClient(server.URL)

	var response map[string]interface{}
	err := client.apiCall("GET", "/api/stats", nil, &response)
	if err != nil {
		t.Fatalf("apiCall failed: %v", err)
	}

	if response["rooms"] != expectedResponse["rooms"] {
		t.Errorf("Expected rooms %v, got %v", expectedResponse["rooms"], response["rooms"])
	}
}

func TestClient_apiCall_ErrorResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "room not found"})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	err := client.apiCall("GET", "/api/rooms/NOPE", nil, nil)
	if err == nil {
		t.Fatal("Expected error for 404 response")
	}
	if err.Error() != "room not found" {
		t.Errorf("Expected API error message to surface, got %q", err.Error())
	}
}

func TestClient_apiCall_Unreachable(t *testing.T) {
	client := NewClient("http://127.0.0.1:1")
	client.httpClient.Timeout = 100 * time.Millisecond

	if err := client.apiCall("GET", "/api/stats", nil, nil); err == nil {
		t.Error("Expected error for unreachable server")
	}
}

func TestFormatSnapshot(t *testing.T) {
	var b board.Board
	b[7][7] = board.Black
	b[7][8] = board.White

	snap := &room.Snapshot{
		RoomID:      "AB12CD",
		Board:       b,
		Turn:        board.Black,
		MoveCount:   2,
		BlackPlayer: "alice",
		LastMove:    &board.Position{X: 8, Y: 7},
	}

	text := formatSnapshot(snap)

	if !strings.Contains(text, "Room AB12CD") {
		t.Error("Expected room ID in output")
	}
	if !strings.Contains(text, "Black: alice") {
		t.Error("Expected black player name in output")
	}
	if !strings.Contains(text, "White: (vacant)") {
		t.Error("Expected vacant white seat in output")
	}
	if !strings.Contains(text, "Turn: black") {
		t.Error("Expected turn line for a running game")
	}
	if !strings.Contains(text, "X[O]") {
		t.Errorf("Expected stones with bracketed last move, got:\n%s", text)
	}
}

func TestFormatSnapshotWin(t *testing.T) {
	snap := &room.Snapshot{
		RoomID:  "AB12CD",
		Outcome: room.OutcomeWin,
		Winner:  board.White,
	}

	text := formatSnapshot(snap)

	if !strings.Contains(text, "Outcome: white wins") {
		t.Errorf("Expected win line, got:\n%s", text)
	}
	if strings.Contains(text, "Turn:") {
		t.Error("Finished game should not report a turn")
	}
}
