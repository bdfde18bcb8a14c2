package service

import (
	"github.com/duelboard/gomoku/game/board"
	"github.com/duelboard/gomoku/game/room"
)

// Event is the outbound envelope handed to the transport layer.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// Event types produced by the service. State-changing successes go to
// both seats (with possibly asymmetric payloads); rejections go to the
// offending connection only.
const (
	EventRoomCreated     = "room_created"
	EventRoomJoined      = "room_joined"
	EventRoomReconnected = "room_reconnected"
	EventGameUpdate      = "game_update"
	EventUndoRequested   = "undo_requested"
	EventUndoAccepted    = "undo_accepted"
	EventUndoRejected    = "undo_rejected"
	EventResetRequested  = "reset_requested"
	EventResetAccepted   = "reset_accepted"
	EventResetRejected   = "reset_rejected"
	EventOpponentLeft    = "opponent_left"
	EventError           = "error"
)

// EventSink delivers an event to a specific connection. The transport
// layer implements it; delivery to a gone connection is a silent no-op.
type EventSink interface {
	Send(connID string, ev Event)
}

// RoomCreatedData answers a successful create_room.
type RoomCreatedData struct {
	RoomID    string        `json:"room_id"`
	YourColor board.Color   `json:"your_color"`
	Settings  room.Settings `json:"settings"`
}

// RoomJoinedData is sent to both seats once the second seat binds.
type RoomJoinedData struct {
	Snapshot room.Snapshot `json:"snapshot"`
}

// RoomReconnectedData answers a reconnect inside the grace period.
type RoomReconnectedData struct {
	Snapshot room.Snapshot `json:"snapshot"`
}

// GameUpdateData broadcasts a committed move. Threats is populated only
// in the copy addressed to the mover's opponent; the mover never sees
// hints about their own position.
type GameUpdateData struct {
	Snapshot room.Snapshot    `json:"snapshot"`
	Threats  []board.Position `json:"threats,omitempty"`
}

// ProposalData announces a pending undo or reset proposal to the seat
// that must answer it.
type ProposalData struct {
	Proposer board.Color `json:"proposer"`
}

// UndoAcceptedData broadcasts a committed undo.
type UndoAcceptedData struct {
	Snapshot room.Snapshot `json:"snapshot"`
	UndoUsed int           `json:"undo_used"`
}

// ResetAcceptedData broadcasts a committed reset.
type ResetAcceptedData struct {
	Snapshot room.Snapshot `json:"snapshot"`
}

// ErrorData reports a rejected command to the offending connection.
type ErrorData struct {
	Reason string `json:"reason"`
}
