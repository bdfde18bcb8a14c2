package service

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/duelboard/gomoku/game/board"
	"github.com/duelboard/gomoku/game/room"
)

// binding maps a live connection to its room, seat, and identity. The
// transport object itself never carries game state; everything is looked
// up through this index.
type binding struct {
	roomID   string
	seat     board.Color
	identity string
}

// Supervisor tracks connection liveness per seat. Seat state machine:
// unbound -> bound-live -> bound-disconnected(deadline) -> unbound when
// the deadline elapses, or back to bound-live when the same participant
// reconnects in time. The grace timer is armed only for a lone unpaired
// creator; an active two-player match has no silent-disconnect grace.
type Supervisor struct {
	mu       sync.RWMutex
	conns    map[string]binding
	registry *room.Registry
	sink     EventSink
	grace    time.Duration
	log      *logrus.Entry
}

// NewSupervisor creates a supervisor with the given grace period.
func NewSupervisor(registry *room.Registry, sink EventSink, grace time.Duration, log *logrus.Logger) *Supervisor {
	return &Supervisor{
		conns:    make(map[string]binding),
		registry: registry,
		sink:     sink,
		grace:    grace,
		log:      log.WithField("component", "supervisor"),
	}
}

// Bind records a connection as occupying a seat.
func (s *Supervisor) Bind(connID, roomID string, seat board.Color, identity string) {
	s.mu.Lock()
	s.conns[connID] = binding{roomID: roomID, seat: seat, identity: identity}
	s.mu.Unlock()
}

// Unbind drops a connection from the index.
func (s *Supervisor) Unbind(connID string) {
	s.mu.Lock()
	delete(s.conns, connID)
	s.mu.Unlock()
}

// Lookup resolves a connection to its binding.
func (s *Supervisor) Lookup(connID string) (binding, bool) {
	s.mu.RLock()
	b, ok := s.conns[connID]
	s.mu.RUnlock()
	return b, ok
}

// Connections returns the number of seat-bound connections.
func (s *Supervisor) Connections() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conns)
}

// OnConnectionLost handles an abrupt disconnect without an explicit
// leave. A lone creator gets a grace period to come back; once an
// opponent seat is occupied the leaving seat is vacated immediately and
// the opponent notified.
func (s *Supervisor) OnConnectionLost(connID string) {
	b, ok := s.Lookup(connID)
	if !ok {
		return
	}
	s.Unbind(connID)

	rm, err := s.registry.Get(b.roomID)
	if err != nil {
		return
	}

	if rm.OccupiedSeats() == 1 {
		deadline := time.Now().Add(s.grace)
		rm.MarkDisconnected(b.seat, deadline)
		roomID, seat := b.roomID, b.seat
		rm.SetGraceTimer(time.AfterFunc(s.grace, func() {
			s.onGraceExpired(roomID, seat)
		}))
		s.log.WithFields(logrus.Fields{
			"room":  b.roomID,
			"seat":  b.seat,
			"grace": s.grace,
		}).Info("lone creator disconnected, grace timer armed")
		return
	}

	rm.VacateSeat(b.seat)
	s.notifySeat(rm, b.seat.Opponent(), Event{Type: EventOpponentLeft})
	s.log.WithFields(logrus.Fields{
		"room": b.roomID,
		"seat": b.seat,
	}).Info("seat vacated on mid-game disconnect")
}

// OnReconnectAttempt rebinds a fresh connection to a seat that is
// bound-disconnected with an unexpired deadline and a matching identity.
// Anything else (unknown room, elapsed grace, identity mismatch) is
// room-not-found, since by then the room may legitimately be gone.
func (s *Supervisor) OnReconnectAttempt(roomID, connID, identity string) (*room.Room, board.Color, error) {
	rm, err := s.registry.Get(roomID)
	if err != nil {
		return nil, board.Empty, room.ErrRoomNotFound
	}

	for _, c := range []board.Color{board.Black, board.White} {
		seat := rm.Seat(c)
		if !seat.Occupied() || seat.Connected {
			continue
		}
		if seat.Identity != identity || !time.Now().Before(seat.GraceDeadline) {
			continue
		}
		if err := rm.Rebind(c, connID); err != nil {
			continue
		}
		rm.StopGraceTimer()
		s.Bind(connID, roomID, c, identity)
		s.log.WithFields(logrus.Fields{
			"room": roomID,
			"seat": c,
			"conn": connID,
		}).Info("seat rebound within grace period")
		return rm, c, nil
	}

	return nil, board.Empty, room.ErrRoomNotFound
}

// OnExplicitLeave bypasses the grace period entirely: immediate vacancy,
// immediate opponent notification, and room deletion when the leaver was
// the only occupant.
func (s *Supervisor) OnExplicitLeave(connID string) error {
	b, ok := s.Lookup(connID)
	if !ok {
		return ErrNotInRoom
	}
	s.Unbind(connID)

	rm, err := s.registry.Get(b.roomID)
	if err != nil {
		return nil
	}

	if rm.OccupiedSeats() <= 1 {
		s.registry.Delete(b.roomID)
		s.log.WithFields(logrus.Fields{
			"room": b.roomID,
			"seat": b.seat,
		}).Info("unpaired room deleted on explicit leave")
		return nil
	}

	rm.VacateSeat(b.seat)
	s.notifySeat(rm, b.seat.Opponent(), Event{Type: EventOpponentLeft})
	s.log.WithFields(logrus.Fields{
		"room": b.roomID,
		"seat": b.seat,
	}).Info("seat vacated on explicit leave")
	return nil
}

// onGraceExpired fires when a disconnected seat's deadline elapses. The
// timer is only ever armed for a lone creator, so expiry normally
// deletes the room; if an opponent appeared meanwhile and the seat is
// still disconnected, the seat is vacated and the opponent notified.
func (s *Supervisor) onGraceExpired(roomID string, seat board.Color) {
	rm, err := s.registry.Get(roomID)
	if err != nil {
		return
	}

	st := rm.Seat(seat)
	if !st.Occupied() || st.Connected {
		// Reconnected or vacated before the callback ran.
		return
	}

	if rm.OccupiedSeats() == 1 {
		s.registry.Delete(roomID)
		s.log.WithFields(logrus.Fields{
			"room": roomID,
			"seat": seat,
		}).Info("grace period expired, room deleted")
		return
	}

	rm.VacateSeat(seat)
	s.notifySeat(rm, seat.Opponent(), Event{Type: EventOpponentLeft})
	s.log.WithFields(logrus.Fields{
		"room": roomID,
		"seat": seat,
	}).Info("grace period expired, seat vacated")
}

// notifySeat delivers an event to the connection bound to a seat, if it
// is live.
func (s *Supervisor) notifySeat(rm *room.Room, c board.Color, ev Event) {
	seat := rm.Seat(c)
	if seat.Occupied() && seat.Connected && seat.ConnID != "" {
		s.sink.Send(seat.ConnID, ev)
	}
}
