package room

import (
	"time"

	"github.com/duelboard/gomoku/game/board"
)

// Snapshot is a per-recipient projection of the canonical room state.
// Both seats receive projections of the same internal state; the only
// per-recipient field is YourColor, so the two copies cannot diverge.
type Snapshot struct {
	RoomID      string           `json:"room_id"`
	Board       board.Board      `json:"board"`
	Turn        board.Color      `json:"turn"`
	Outcome     OutcomeKind      `json:"outcome"`
	Winner      board.Color      `json:"winner,omitempty"`
	WinningLine []board.Position `json:"winning_line,omitempty"`
	LastMove    *board.Position  `json:"last_move,omitempty"`
	MoveCount   int              `json:"move_count"`
	YourColor   board.Color      `json:"your_color,omitempty"`
	BlackPlayer string           `json:"black_player,omitempty"`
	WhitePlayer string           `json:"white_player,omitempty"`
	UndoUsed    map[string]int   `json:"undo_used"`
	UndoLimit   *int             `json:"undo_limit"`
	Pending     *Proposal        `json:"pending_proposal,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// Snapshot builds the projection addressed to the given seat. Pass
// board.Empty for an unaddressed (admin/monitoring) view.
func (r *Room) Snapshot(forSeat board.Color) Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snap := Snapshot{
		RoomID:      r.ID,
		Board:       r.board,
		Turn:        r.turn,
		Outcome:     r.outcome.Kind,
		Winner:      r.outcome.Winner,
		MoveCount:   len(r.history),
		YourColor:   forSeat,
		BlackPlayer: r.seats[board.Black].Identity,
		WhitePlayer: r.seats[board.White].Identity,
		UndoUsed: map[string]int{
			string(board.Black): r.undoUsed[board.Black],
			string(board.White): r.undoUsed[board.White],
		},
		UndoLimit: r.settings.UndoLimit,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.updatedAt,
	}
	if len(r.outcome.Line) > 0 {
		snap.WinningLine = append([]board.Position(nil), r.outcome.Line...)
	}
	if r.lastMove != nil {
		p := *r.lastMove
		snap.LastMove = &p
	}
	if r.pending != nil {
		p := *r.pending
		snap.Pending = &p
	}
	return snap
}
