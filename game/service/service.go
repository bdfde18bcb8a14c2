package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/duelboard/gomoku/game/board"
	"github.com/duelboard/gomoku/game/room"
)

// SessionService is the command surface consumed by the transport layer.
// Methods return an error only for rejected commands; the caller maps it
// to an error event for the offending connection. Successful commands
// emit their events through the sink before returning.
type SessionService interface {
	CreateRoom(ctx context.Context, connID, identity string, seat board.Color, settings *room.Settings) error
	JoinRoom(ctx context.Context, connID, identity, roomID string) error
	Reconnect(ctx context.Context, connID, identity, roomID string) error
	MakeMove(ctx context.Context, connID string, pos board.Position) error
	ProposeUndo(ctx context.Context, connID string) error
	RespondUndo(ctx context.Context, connID string, accept bool) error
	ProposeReset(ctx context.Context, connID string) error
	RespondReset(ctx context.Context, connID string, accept bool) error
	LeaveRoom(ctx context.Context, connID string) error
	ConnectionLost(connID string)

	RoomSnapshots() []room.Snapshot
	RoomSnapshot(roomID string) (room.Snapshot, error)
	Stats() Stats
}

// Stats is the monitoring view exposed over the admin API.
type Stats struct {
	Rooms       int       `json:"rooms"`
	ActiveRooms int       `json:"active_rooms"`
	Connections int       `json:"connections"`
	StartedAt   time.Time `json:"started_at"`
}

// Options carries the timing knobs the service needs.
type Options struct {
	GracePeriod time.Duration
	ProposalTTL time.Duration
}

// Service wires the registry, supervisor, and negotiator into the
// SessionService command surface.
type Service struct {
	registry   *room.Registry
	supervisor *Supervisor
	negotiator *Negotiator
	sink       EventSink
	startedAt  time.Time
	log        *logrus.Entry
}

// New builds the service. The sink must outlive it.
func New(registry *room.Registry, sink EventSink, opts Options, log *logrus.Logger) *Service {
	return &Service{
		registry:   registry,
		supervisor: NewSupervisor(registry, sink, opts.GracePeriod, log),
		negotiator: NewNegotiator(sink, opts.ProposalTTL, log),
		sink:       sink,
		startedAt:  time.Now(),
		log:        log.WithField("component", "service"),
	}
}

// Supervisor exposes the connection supervisor to the transport layer,
// which forwards socket-close signals to it.
func (s *Service) Supervisor() *Supervisor {
	return s.supervisor
}

// CreateRoom allocates a room with the caller in the chosen seat. The
// other seat stays vacant until someone joins.
func (s *Service) CreateRoom(ctx context.Context, connID, identity string, seat board.Color, settings *room.Settings) error {
	if _, bound := s.supervisor.Lookup(connID); bound {
		return ErrAlreadyInRoom
	}
	if !seat.Valid() {
		return ErrInvalidCommand
	}

	rm, err := s.registry.Create(connID, identity, seat, settings)
	if err != nil {
		return err
	}
	s.supervisor.Bind(connID, rm.ID, seat, identity)

	s.sink.Send(connID, Event{
		Type: EventRoomCreated,
		Data: RoomCreatedData{RoomID: rm.ID, YourColor: seat, Settings: rm.Settings()},
	})
	return nil
}

// JoinRoom binds the caller to the vacant seat of an existing room and
// announces the pairing to both seats. A join that targets a seat held
// for a disconnected participant inside their grace period is routed
// through the supervisor's rebind path instead of allocating anew.
func (s *Service) JoinRoom(ctx context.Context, connID, identity, roomID string) error {
	if _, bound := s.supervisor.Lookup(connID); bound {
		return ErrAlreadyInRoom
	}

	rm, seat, err := s.registry.Join(roomID, connID, identity)
	if err == room.ErrSeatInGrace {
		return s.Reconnect(ctx, connID, identity, roomID)
	}
	if err != nil {
		return err
	}
	s.supervisor.Bind(connID, rm.ID, seat, identity)

	for _, c := range []board.Color{board.Black, board.White} {
		s.notifySeat(rm, c, Event{
			Type: EventRoomJoined,
			Data: RoomJoinedData{Snapshot: rm.Snapshot(c)},
		})
	}
	return nil
}

// Reconnect rebinds the caller to a seat inside its grace period. Past
// the deadline, or for an unknown room, the answer is room_not_found.
func (s *Service) Reconnect(ctx context.Context, connID, identity, roomID string) error {
	if _, bound := s.supervisor.Lookup(connID); bound {
		return ErrAlreadyInRoom
	}

	rm, seat, err := s.supervisor.OnReconnectAttempt(roomID, connID, identity)
	if err != nil {
		return err
	}

	s.sink.Send(connID, Event{
		Type: EventRoomReconnected,
		Data: RoomReconnectedData{Snapshot: rm.Snapshot(seat)},
	})
	return nil
}

// MakeMove validates and commits a move for the caller's seat, then
// broadcasts the update: the mover's copy never carries threat hints,
// the opponent's copy does.
func (s *Service) MakeMove(ctx context.Context, connID string, pos board.Position) error {
	b, ok := s.supervisor.Lookup(connID)
	if !ok {
		return ErrNotInRoom
	}
	rm, err := s.registry.Get(b.roomID)
	if err != nil {
		return err
	}

	result, err := rm.PlayMove(b.seat, pos)
	if err != nil {
		return err
	}

	s.notifySeat(rm, b.seat, Event{
		Type: EventGameUpdate,
		Data: GameUpdateData{Snapshot: rm.Snapshot(b.seat)},
	})
	opp := b.seat.Opponent()
	s.notifySeat(rm, opp, Event{
		Type: EventGameUpdate,
		Data: GameUpdateData{Snapshot: rm.Snapshot(opp), Threats: result.Threats},
	})
	return nil
}

// ProposeUndo opens an undo proposal for the caller's seat.
func (s *Service) ProposeUndo(ctx context.Context, connID string) error {
	rm, seat, err := s.resolve(connID)
	if err != nil {
		return err
	}
	return s.negotiator.Propose(rm, room.ProposalUndo, seat)
}

// RespondUndo answers the pending undo proposal.
func (s *Service) RespondUndo(ctx context.Context, connID string, accept bool) error {
	rm, seat, err := s.resolve(connID)
	if err != nil {
		return err
	}
	return s.negotiator.Respond(rm, room.ProposalUndo, seat, accept)
}

// ProposeReset opens a reset proposal for the caller's seat.
func (s *Service) ProposeReset(ctx context.Context, connID string) error {
	rm, seat, err := s.resolve(connID)
	if err != nil {
		return err
	}
	return s.negotiator.Propose(rm, room.ProposalReset, seat)
}

// RespondReset answers the pending reset proposal.
func (s *Service) RespondReset(ctx context.Context, connID string, accept bool) error {
	rm, seat, err := s.resolve(connID)
	if err != nil {
		return err
	}
	return s.negotiator.Respond(rm, room.ProposalReset, seat, accept)
}

// LeaveRoom is the manual leave path: no grace period, immediate seat
// vacancy, immediate opponent notification, room deletion when the
// caller was alone.
func (s *Service) LeaveRoom(ctx context.Context, connID string) error {
	return s.supervisor.OnExplicitLeave(connID)
}

// ConnectionLost is the implicit signal for a dropped socket.
func (s *Service) ConnectionLost(connID string) {
	s.supervisor.OnConnectionLost(connID)
}

// RoomSnapshots returns unaddressed projections of every live room.
func (s *Service) RoomSnapshots() []room.Snapshot {
	rooms := s.registry.List()
	out := make([]room.Snapshot, 0, len(rooms))
	for _, rm := range rooms {
		out = append(out, rm.Snapshot(board.Empty))
	}
	return out
}

// RoomSnapshot returns the unaddressed projection of one room.
func (s *Service) RoomSnapshot(roomID string) (room.Snapshot, error) {
	rm, err := s.registry.Get(roomID)
	if err != nil {
		return room.Snapshot{}, err
	}
	return rm.Snapshot(board.Empty), nil
}

// Stats returns the monitoring counters.
func (s *Service) Stats() Stats {
	active := 0
	for _, rm := range s.registry.List() {
		if rm.BothSeatsOccupied() {
			active++
		}
	}
	return Stats{
		Rooms:       s.registry.Count(),
		ActiveRooms: active,
		Connections: s.supervisor.Connections(),
		StartedAt:   s.startedAt,
	}
}

// resolve maps a connection to its room and seat.
func (s *Service) resolve(connID string) (*room.Room, board.Color, error) {
	b, ok := s.supervisor.Lookup(connID)
	if !ok {
		return nil, board.Empty, ErrNotInRoom
	}
	rm, err := s.registry.Get(b.roomID)
	if err != nil {
		return nil, board.Empty, err
	}
	return rm, b.seat, nil
}

// notifySeat delivers an event to a seat's live connection.
func (s *Service) notifySeat(rm *room.Room, c board.Color, ev Event) {
	seat := rm.Seat(c)
	if seat.Occupied() && seat.Connected && seat.ConnID != "" {
		s.sink.Send(seat.ConnID, ev)
	}
}
