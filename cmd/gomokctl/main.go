// Command gomokctl is an operator CLI for the gomoku session server.
// It talks to the read-only REST API and prints human-readable views
// of rooms and server health.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/duelboard/gomoku/game/board"
	"github.com/duelboard/gomoku/game/room"
	"github.com/duelboard/gomoku/game/service"
)

func main() {
	cmd := &cli.Command{
		Name:  "gomokctl",
		Usage: "inspect a running gomoku session server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server",
				Value:   "http://localhost:8080",
				Usage:   "base URL of the session server",
				Sources: cli.EnvVars("GOMOKU_SERVER"),
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Value: 10 * time.Second,
				Usage: "HTTP request timeout",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "rooms",
				Usage: "list active rooms",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "maximum number of rooms to list",
					},
				},
				Action: runRooms,
			},
			{
				Name:      "room",
				Usage:     "show one room's board and status",
				ArgsUsage: "<room-id>",
				Action:    runRoom,
			},
			{
				Name:   "stats",
				Usage:  "show room and connection counters",
				Action: runStats,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "gomokctl: %v\n", err)
		os.Exit(1)
	}
}

func apiGet(ctx context.Context, cmd *cli.Command, path string, result interface{}) error {
	client := &http.Client{Timeout: cmd.Duration("timeout")}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cmd.String("server")+path, nil)
	if err != nil {
		return err
	}

	resp, err := client.Do(req)
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
		return fmt.Errorf("server returned %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(result)
}

func runRooms(ctx context.Context, cmd *cli.Command) error {
	path := "/api/rooms"
	if limit := cmd.Int("limit"); limit > 0 {
		path = fmt.Sprintf("%s?limit=%d", path, limit)
	}

	var response struct {
		Count int             `json:"count"`
		Rooms []room.Snapshot `json:"rooms"`
	}
	if err := apiGet(ctx, cmd, path, &response); err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ROOM\tMOVES\tTURN\tOUTCOME\tBLACK\tWHITE\tUPDATED")
	for _, snap := range response.Rooms {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t%s\t%s\n",
			snap.RoomID, snap.MoveCount, snap.Turn, outcomeLabel(&snap),
			orDash(snap.BlackPlayer), orDash(snap.WhitePlayer),
			snap.UpdatedAt.Format("15:04:05"))
	}
	return w.Flush()
}

func runRoom(ctx context.Context, cmd *cli.Command) error {
	roomID := cmd.Args().First()
	if roomID == "" {
		return fmt.Errorf("room ID required")
	}

	var snap room.Snapshot
	if err := apiGet(ctx, cmd, "/api/rooms/"+roomID, &snap); err != nil {
		return err
	}

	fmt.Printf("Room %s\n", snap.RoomID)
	fmt.Printf("Black: %s\n", orDash(snap.BlackPlayer))
	fmt.Printf("White: %s\n", orDash(snap.WhitePlayer))
	fmt.Printf("Moves: %d\n", snap.MoveCount)
	switch snap.Outcome {
	case room.OutcomeWin:
		fmt.Printf("Outcome: %s wins\n", snap.Winner)
	case room.OutcomeDraw:
		fmt.Println("Outcome: draw")
	default:
		fmt.Printf("Turn: %s\n", snap.Turn)
	}
	if snap.Pending != nil {
		fmt.Printf("Pending proposal: %s by %s\n", snap.Pending.Kind, snap.Pending.Proposer)
	}
	fmt.Println()
	fmt.Print(renderBoard(snap.Board, snap.LastMove))
	return nil
}

func runStats(ctx context.Context, cmd *cli.Command) error {
	var stats service.Stats
	if err := apiGet(ctx, cmd, "/api/stats", &stats); err != nil {
		return err
	}

	fmt.Printf("Rooms:        %d\n", stats.Rooms)
	fmt.Printf("Active games: %d\n", stats.ActiveRooms)
	fmt.Printf("Connections:  %d\n", stats.Connections)
	fmt.Printf("Started:      %s\n", stats.StartedAt.Format(time.RFC3339))
	fmt.Printf("Uptime:       %s\n", time.Since(stats.StartedAt).Round(time.Second))
	return nil
}

func outcomeLabel(snap *room.Snapshot) string {
	switch snap.Outcome {
	case room.OutcomeWin:
		return string(snap.Winner) + " wins"
	case room.OutcomeDraw:
		return "draw"
	default:
		return "-"
	}
}

func orDash(name string) string {
	if name == "" {
		return "-"
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
