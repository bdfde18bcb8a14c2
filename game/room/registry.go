package room

import (
	"crypto/rand"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/duelboard/gomoku/game/board"
)

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomFull     = errors.New("room is full")
	// ErrSeatInGrace signals that the only rejoinable seat belongs to a
	// disconnected participant inside their grace period; the join must
	// be routed to the supervisor's rebind path instead.
	ErrSeatInGrace = errors.New("seat reserved for reconnection")
)

// IDLength is the length of generated room identifiers.
const IDLength = 6

const idCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Registry is the in-memory store of rooms. It owns creation and
// deletion; no other component may delete a room. The map tolerates
// concurrent access from command paths, the idle reaper, and grace
// timers, each of which runs on its own schedule.
type Registry struct {
	mu               sync.RWMutex
	rooms            map[string]*Room
	defaultUndoLimit int
	log              *logrus.Entry
}

// NewRegistry creates an empty registry. Rooms created without explicit
// settings get defaultUndoLimit as their undo budget.
func NewRegistry(defaultUndoLimit int, log *logrus.Logger) *Registry {
	return &Registry{
		rooms:            make(map[string]*Room),
		defaultUndoLimit: defaultUndoLimit,
		log:              log.WithField("component", "registry"),
	}
}

// Create allocates a room, binds the creator to the chosen seat, and
// leaves the other seat vacant. A nil settings pointer applies the
// default undo limit; an explicit nil UndoLimit inside settings means
// unlimited undos.
func (g *Registry) Create(connID, identity string, seat board.Color, settings *Settings) (*Room, error) {
	if !seat.Valid() {
		return nil, errors.New("invalid seat color")
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	id := g.generateIDLocked()
	effective := Settings{}
	if settings == nil {
		limit := g.defaultUndoLimit
		effective.UndoLimit = &limit
	} else {
		effective = *settings
	}

	rm := newRoom(id, effective)
	if err := rm.BindSeat(seat, connID, identity); err != nil {
		return nil, err
	}
	g.rooms[id] = rm

	g.log.WithFields(logrus.Fields{
		"room": id,
		"seat": seat,
		"conn": connID,
	}).Info("room created")
	return rm, nil
}

// Get looks a room up by ID.
func (g *Registry) Get(id string) (*Room, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	rm, ok := g.rooms[id]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return rm, nil
}

// Join binds the joiner to the first vacant seat. When no seat is vacant
// but one is held by a disconnected participant inside their grace
// period, ErrSeatInGrace is returned so the caller can route through the
// supervisor's rebind path. Both seats live means the room is full.
func (g *Registry) Join(id, connID, identity string) (*Room, board.Color, error) {
	rm, err := g.Get(id)
	if err != nil {
		return nil, board.Empty, err
	}

	for _, c := range []board.Color{board.Black, board.White} {
		if !rm.Seat(c).Occupied() {
			if err := rm.BindSeat(c, connID, identity); err != nil {
				continue
			}
			g.log.WithFields(logrus.Fields{
				"room": id,
				"seat": c,
				"conn": connID,
			}).Info("seat joined")
			return rm, c, nil
		}
	}

	for _, c := range []board.Color{board.Black, board.White} {
		seat := rm.Seat(c)
		if seat.Occupied() && !seat.Connected && time.Now().Before(seat.GraceDeadline) {
			return rm, c, ErrSeatInGrace
		}
	}

	return nil, board.Empty, ErrRoomFull
}

// Delete removes a room, cancelling any timers it owns first. Deleting
// an unknown ID is a no-op so deletion paths may race freely.
func (g *Registry) Delete(id string) {
	g.mu.Lock()
	rm, ok := g.rooms[id]
	if ok {
		delete(g.rooms, id)
	}
	g.mu.Unlock()

	if !ok {
		return
	}
	rm.CancelTimers()
	g.log.WithField("room", id).Info("room deleted")
}

// List returns all live rooms.
func (g *Registry) List() []*Room {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]*Room, 0, len(g.rooms))
	for _, rm := range g.rooms {
		out = append(out, rm)
	}
	return out
}

// Count returns the number of live rooms.
func (g *Registry) Count() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.rooms)
}

// SweepIdle deletes every room whose last activity is older than idleFor
// and returns the deleted IDs.
func (g *Registry) SweepIdle(idleFor time.Duration) []string {
	cutoff := time.Now().Add(-idleFor)

	var stale []string
	g.mu.RLock()
	for id, rm := range g.rooms {
		if rm.UpdatedAt().Before(cutoff) {
			stale = append(stale, id)
		}
	}
	g.mu.RUnlock()

	for _, id := range stale {
		g.Delete(id)
		g.log.WithField("room", id).Info("idle room evicted")
	}
	return stale
}

// generateIDLocked produces a fresh uppercase alphanumeric ID,
// regenerating on the rare collision with a live room.
func (g *Registry) generateIDLocked() string {
	for {
		buf := make([]byte, IDLength)
		rand.Read(buf)
		for i := range buf {
			buf[i] = idCharset[int(buf[i])%len(idCharset)]
		}
		id := string(buf)
		if _, exists := g.rooms[id]; !exists {
			return id
		}
	}
}
