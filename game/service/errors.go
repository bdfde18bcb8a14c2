package service

import (
	"errors"

	"github.com/duelboard/gomoku/game/board"
	"github.com/duelboard/gomoku/game/room"
)

var (
	ErrNotInRoom      = errors.New("connection is not in a room")
	ErrAlreadyInRoom  = errors.New("connection is already in a room")
	ErrInvalidCommand = errors.New("invalid command")
)

// Reason maps a rejection to the stable reason code surfaced in error
// events. Stale reconnects deliberately collapse into room_not_found:
// past the grace deadline the room may legitimately be gone.
func Reason(err error) string {
	switch {
	case errors.Is(err, room.ErrRoomNotFound):
		return "room_not_found"
	case errors.Is(err, room.ErrRoomFull):
		return "room_full"
	case errors.Is(err, room.ErrNotYourTurn):
		return "not_your_turn"
	case errors.Is(err, room.ErrGameOver):
		return "game_over"
	case errors.Is(err, board.ErrCellOccupied):
		return "cell_occupied"
	case errors.Is(err, board.ErrOutOfBounds):
		return "out_of_bounds"
	case errors.Is(err, room.ErrProposalPending):
		return "proposal_pending"
	case errors.Is(err, room.ErrNoProposal):
		return "no_proposal"
	case errors.Is(err, room.ErrNotYourProposal):
		return "not_your_proposal"
	case errors.Is(err, room.ErrUndoLimitReached):
		return "undo_limit_reached"
	case errors.Is(err, room.ErrUndoNotYourMove):
		return "undo_not_your_move"
	case errors.Is(err, room.ErrHistoryEmpty):
		return "history_empty"
	case errors.Is(err, room.ErrRoomNotActive):
		return "room_not_active"
	case errors.Is(err, room.ErrSeatTaken):
		return "seat_taken"
	case errors.Is(err, room.ErrSeatVacant):
		return "seat_vacant"
	case errors.Is(err, ErrNotInRoom):
		return "not_in_room"
	case errors.Is(err, ErrAlreadyInRoom):
		return "already_in_room"
	case errors.Is(err, ErrInvalidCommand):
		return "invalid_command"
	default:
		return "internal_error"
	}
}
