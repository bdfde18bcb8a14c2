package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/duelboard/gomoku/game/board"
	"github.com/duelboard/gomoku/game/room"
	"github.com/duelboard/gomoku/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Gomoku Session Server",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Gomoku Session Server - MCP Interface

This is a thin client that proxies all requests to the REST API server.

Rooms host two-seat gomoku games on a 15x15 board. Black moves first;
the first unbroken line of five stones wins. Gameplay itself happens
over the websocket endpoint; these tools observe the server.

AVAILABLE TOOLS:
- list_rooms: List active rooms with their activity timestamps
- room_state: Render the board and status of one room
- server_stats: Room and connection counters`),
	)

	// Register all tools
	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_rooms",
		Description: "List all active game rooms",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of rooms to return (optional)",
				},
			},
		},
	}, c.handleListRooms)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "room_state",
		Description: "Get the board and status of a specific room",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"room_id": map[string]interface{}{
					"type":        "string",
					"description": "Room ID to inspect",
				},
			},
			Required: []string{"room_id"},
		},
	}, c.handleRoomState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "server_stats",
		Description: "Get room and connection counters for the server",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleServerStats)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// Tool handlers

func (c *Client) handleListRooms(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})

	path := "/api/rooms"
	if limit, ok := args["limit"].(float64); ok && limit > 0 {
		path = fmt.Sprintf("%s?limit=%d", path, int(limit))
	}

	var response struct {
		Count int             `json:"count"`
		Rooms []room.Snapshot `json:"rooms"`
	}

	err := c.apiCall("GET", path, nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Active Rooms (%d):\n\n", response.Count)
	for _, snap := range response.Rooms {
		result += fmt.Sprintf("- %s (moves: %d, turn: %s, outcome: %s, updated: %s)\n",
			snap.RoomID, snap.MoveCount, snap.Turn, snap.Outcome,
			snap.UpdatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleRoomState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	roomID, _ := args["room_id"].(string)

	var snapshot room.Snapshot
	err := c.apiCall("GET", fmt.Sprintf("/api/rooms/%s", roomID), nil, &snapshot)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSnapshot(&snapshot)), nil
}

func (c *Client) handleServerStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var stats service.Stats
	err := c.apiCall("GET", "/api/stats", nil, &stats)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf(`Server Stats:
Rooms: %d
Active games: %d
Connections: %d
Started: %s`,
		stats.Rooms, stats.ActiveRooms, stats.Connections,
		stats.StartedAt.Format(time.RFC3339))

	return mcp.NewToolResultText(result), nil
}

// formatSnapshot renders a room snapshot as text, board included.
func formatSnapshot(snap *room.Snapshot) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Room %s\n", snap.RoomID)
	fmt.Fprintf(&sb, "Black: %s\n", orVacant(snap.BlackPlayer))
	fmt.Fprintf(&sb, "White: %s\n", orVacant(snap.WhitePlayer))
	fmt.Fprintf(&sb, "Moves: %d\n", snap.MoveCount)

	switch snap.Outcome {
	case room.OutcomeWin:
		fmt.Fprintf(&sb, "Outcome: %s wins\n", snap.Winner)
	case room.OutcomeDraw:
		sb.WriteString("Outcome: draw\n")
	default:
		fmt.Fprintf(&sb, "Turn: %s\n", snap.Turn)
	}

	if snap.Pending != nil {
		fmt.Fprintf(&sb, "Pending proposal: %s by %s\n", snap.Pending.Kind, snap.Pending.Proposer)
	}

	sb.WriteString("\n")
	sb.WriteString(renderBoard(snap.Board, snap.LastMove))

	return sb.String()
}

func orVacant(name string) string {
	if name == "" {
		return "(vacant)"
	}
	return name
}

// renderBoard draws the grid with X for black, O for white, and the
// last move wrapped in brackets.
func renderBoard(b board.Board, lastMove *board.Position) string {
	var sb strings.Builder

	sb.WriteString("    ")
	for x := 0; x < board.Size; x++ {
		fmt.Fprintf(&sb, "%2d", x)
	}
	sb.WriteString("\n")

	for y := 0; y < board.Size; y++ {
		fmt.Fprintf(&sb, "%3d ", y)
		for x := 0; x < board.Size; x++ {
			var cell string
			switch b[y][x] {
			case board.Black:
				cell = "X"
			case board.White:
				cell = "O"
			default:
				cell = "."
			}

			prefix := " "
			if lastMove != nil && lastMove.Y == y {
				if lastMove.X == x {
					prefix = "["
				} else if lastMove.X == x-1 {
					prefix = "]"
				}
			}
			sb.WriteString(prefix + cell)
		}
		if lastMove != nil && lastMove.Y == y && lastMove.X == board.Size-1 {
			sb.WriteString("]")
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
