package websocket

import (
	"context"
	"encoding/json"

	"github.com/sirupsen/logrus"

	"github.com/duelboard/gomoku/game/board"
	"github.com/duelboard/gomoku/game/room"
	"github.com/duelboard/gomoku/game/service"
)

// Command is the inbound JSON envelope. Type selects the operation;
// the remaining fields are operation-specific and optional.
type Command struct {
	Type     string          `json:"type"`
	RoomID   string          `json:"room_id,omitempty"`
	Seat     board.Color     `json:"seat,omitempty"`
	Position *board.Position `json:"position,omitempty"`
	Accept   *bool           `json:"accept,omitempty"`
	Settings *room.Settings  `json:"settings,omitempty"`
}

// Command types accepted from clients.
const (
	CmdCreateRoom    = "create_room"
	CmdJoinRoom      = "join_room"
	CmdReconnectRoom = "reconnect_room"
	CmdMakeMove      = "make_move"
	CmdProposeUndo   = "propose_undo"
	CmdRespondUndo   = "respond_undo"
	CmdProposeReset  = "propose_reset"
	CmdRespondReset  = "respond_reset"
	CmdLeaveRoom     = "leave_room"
)

// dispatch decodes and executes one command for a client. Rejections
// are answered with an error event to this connection only; no state
// changes on a rejected command.
func (h *Hub) dispatch(c *Client, raw []byte) {
	var cmd Command
	if err := json.Unmarshal(raw, &cmd); err != nil {
		h.sendError(c.id, service.ErrInvalidCommand)
		return
	}

	ctx := context.Background()
	var err error

	switch cmd.Type {
	case CmdCreateRoom:
		err = h.service.CreateRoom(ctx, c.id, c.identity, cmd.Seat, cmd.Settings)
	case CmdJoinRoom:
		err = h.service.JoinRoom(ctx, c.id, c.identity, cmd.RoomID)
	case CmdReconnectRoom:
		err = h.service.Reconnect(ctx, c.id, c.identity, cmd.RoomID)
	case CmdMakeMove:
		if cmd.Position == nil {
			err = service.ErrInvalidCommand
			break
		}
		err = h.service.MakeMove(ctx, c.id, *cmd.Position)
	case CmdProposeUndo:
		err = h.service.ProposeUndo(ctx, c.id)
	case CmdRespondUndo:
		if cmd.Accept == nil {
			err = service.ErrInvalidCommand
			break
		}
		err = h.service.RespondUndo(ctx, c.id, *cmd.Accept)
	case CmdProposeReset:
		err = h.service.ProposeReset(ctx, c.id)
	case CmdRespondReset:
		if cmd.Accept == nil {
			err = service.ErrInvalidCommand
			break
		}
		err = h.service.RespondReset(ctx, c.id, *cmd.Accept)
	case CmdLeaveRoom:
		err = h.service.LeaveRoom(ctx, c.id)
	default:
		err = service.ErrInvalidCommand
	}

	if err != nil {
		h.log.WithFields(logrus.Fields{
			"conn":   c.id,
			"type":   cmd.Type,
			"reason": service.Reason(err),
		}).Debug("command rejected")
		h.sendError(c.id, err)
	}
}

// sendError reports a rejected command to the offending connection.
func (h *Hub) sendError(connID string, err error) {
	h.Send(connID, service.Event{
		Type: service.EventError,
		Data: service.ErrorData{Reason: service.Reason(err)},
	})
}
