package service

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duelboard/gomoku/game/board"
	"github.com/duelboard/gomoku/game/room"
)

// fakeSink records delivered events per connection. Timers deliver from
// their own goroutines, so access is locked.
type fakeSink struct {
	mu     sync.Mutex
	events map[string][]Event
}

func newFakeSink() *fakeSink {
	return &fakeSink{events: make(map[string][]Event)}
}

func (f *fakeSink) Send(connID string, ev Event) {
	f.mu.Lock()
	f.events[connID] = append(f.events[connID], ev)
	f.mu.Unlock()
}

func (f *fakeSink) eventsFor(connID string) []Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Event, len(f.events[connID]))
	copy(out, f.events[connID])
	return out
}

func (f *fakeSink) last(connID string) (Event, bool) {
	evs := f.eventsFor(connID)
	if len(evs) == 0 {
		return Event{}, false
	}
	return evs[len(evs)-1], true
}

func (f *fakeSink) countType(connID, evType string) int {
	n := 0
	for _, ev := range f.eventsFor(connID) {
		if ev.Type == evType {
			n++
		}
	}
	return n
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestService(opts Options) (*Service, *fakeSink, *room.Registry) {
	log := testLogger()
	sink := newFakeSink()
	registry := room.NewRegistry(3, log)
	svc := New(registry, sink, opts, log)
	return svc, sink, registry
}

func defaultOptions() Options {
	return Options{GracePeriod: time.Minute, ProposalTTL: time.Minute}
}

// pairUp creates a room with alice as black and joins bob as white.
func pairUp(t *testing.T, svc *Service, sink *fakeSink) string {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, svc.CreateRoom(ctx, "conn-b", "alice", board.Black, nil))

	ev, ok := sink.last("conn-b")
	require.True(t, ok)
	require.Equal(t, EventRoomCreated, ev.Type)
	roomID := ev.Data.(RoomCreatedData).RoomID

	require.NoError(t, svc.JoinRoom(ctx, "conn-w", "bob", roomID))
	return roomID
}

func TestCreateRoom(t *testing.T) {
	svc, sink, registry := newTestService(defaultOptions())
	ctx := context.Background()

	require.NoError(t, svc.CreateRoom(ctx, "conn-1", "alice", board.White, nil))

	ev, ok := sink.last("conn-1")
	require.True(t, ok)
	require.Equal(t, EventRoomCreated, ev.Type)

	data := ev.Data.(RoomCreatedData)
	assert.Equal(t, board.White, data.YourColor)
	assert.NotEmpty(t, data.RoomID)
	require.NotNil(t, data.Settings.UndoLimit)
	assert.Equal(t, 3, *data.Settings.UndoLimit)

	assert.Equal(t, 1, registry.Count())
}

func TestCreateRoomWhileBound(t *testing.T) {
	svc, _, _ := newTestService(defaultOptions())
	ctx := context.Background()

	require.NoError(t, svc.CreateRoom(ctx, "conn-1", "alice", board.Black, nil))
	err := svc.CreateRoom(ctx, "conn-1", "alice", board.Black, nil)
	assert.ErrorIs(t, err, ErrAlreadyInRoom)
}

func TestJoinRoomNotifiesBothSeats(t *testing.T) {
	svc, sink, _ := newTestService(defaultOptions())

	pairUp(t, svc, sink)

	for _, conn := range []string{"conn-b", "conn-w"} {
		ev, ok := sink.last(conn)
		require.True(t, ok, "no event for %s", conn)
		require.Equal(t, EventRoomJoined, ev.Type)
	}

	// Projections are per seat
	black := sink.eventsFor("conn-b")
	joined := black[len(black)-1].Data.(RoomJoinedData)
	assert.Equal(t, board.Black, joined.Snapshot.YourColor)
	assert.Equal(t, "alice", joined.Snapshot.BlackPlayer)
	assert.Equal(t, "bob", joined.Snapshot.WhitePlayer)

	white := sink.eventsFor("conn-w")
	joinedW := white[len(white)-1].Data.(RoomJoinedData)
	assert.Equal(t, board.White, joinedW.Snapshot.YourColor)
}

func TestJoinUnknownRoom(t *testing.T) {
	svc, _, _ := newTestService(defaultOptions())

	err := svc.JoinRoom(context.Background(), "conn-1", "alice", "NOPE42")
	assert.ErrorIs(t, err, room.ErrRoomNotFound)
}

func TestMakeMoveBroadcast(t *testing.T) {
	svc, sink, _ := newTestService(defaultOptions())
	ctx := context.Background()

	pairUp(t, svc, sink)

	require.NoError(t, svc.MakeMove(ctx, "conn-b", board.Position{X: 7, Y: 7}))

	for _, conn := range []string{"conn-b", "conn-w"} {
		ev, ok := sink.last(conn)
		require.True(t, ok)
		require.Equal(t, EventGameUpdate, ev.Type)

		update := ev.Data.(GameUpdateData)
		assert.Equal(t, 1, update.Snapshot.MoveCount)
		assert.Equal(t, board.White, update.Snapshot.Turn)
		require.NotNil(t, update.Snapshot.LastMove)
		assert.Equal(t, 7, update.Snapshot.LastMove.X)
	}
}

func TestThreatHintsOnlyForOpponent(t *testing.T) {
	svc, sink, _ := newTestService(defaultOptions())
	ctx := context.Background()

	pairUp(t, svc, sink)

	// Black builds an open three
	require.NoError(t, svc.MakeMove(ctx, "conn-b", board.Position{X: 5, Y: 5}))
	require.NoError(t, svc.MakeMove(ctx, "conn-w", board.Position{X: 0, Y: 14}))
	require.NoError(t, svc.MakeMove(ctx, "conn-b", board.Position{X: 6, Y: 5}))
	require.NoError(t, svc.MakeMove(ctx, "conn-w", board.Position{X: 1, Y: 14}))
	require.NoError(t, svc.MakeMove(ctx, "conn-b", board.Position{X: 7, Y: 5}))

	evB, _ := sink.last("conn-b")
	assert.Empty(t, evB.Data.(GameUpdateData).Threats, "mover must not receive hints")

	evW, _ := sink.last("conn-w")
	assert.Len(t, evW.Data.(GameUpdateData).Threats, 3)
}

func TestMakeMoveRejections(t *testing.T) {
	svc, sink, _ := newTestService(defaultOptions())
	ctx := context.Background()

	err := svc.MakeMove(ctx, "conn-x", board.Position{X: 7, Y: 7})
	assert.ErrorIs(t, err, ErrNotInRoom)

	pairUp(t, svc, sink)

	err = svc.MakeMove(ctx, "conn-w", board.Position{X: 7, Y: 7})
	assert.ErrorIs(t, err, room.ErrNotYourTurn)

	// Rejections never emit game updates
	assert.Equal(t, 0, sink.countType("conn-b", EventGameUpdate))
	assert.Equal(t, 0, sink.countType("conn-w", EventGameUpdate))
}

func TestWinBroadcast(t *testing.T) {
	svc, sink, _ := newTestService(defaultOptions())
	ctx := context.Background()

	pairUp(t, svc, sink)

	for i := 0; i < 4; i++ {
		require.NoError(t, svc.MakeMove(ctx, "conn-b", board.Position{X: i, Y: 0}))
		require.NoError(t, svc.MakeMove(ctx, "conn-w", board.Position{X: i, Y: 10}))
	}
	require.NoError(t, svc.MakeMove(ctx, "conn-b", board.Position{X: 4, Y: 0}))

	ev, _ := sink.last("conn-w")
	update := ev.Data.(GameUpdateData)
	assert.Equal(t, room.OutcomeWin, update.Snapshot.Outcome)
	assert.Equal(t, board.Black, update.Snapshot.Winner)
	assert.Len(t, update.Snapshot.WinningLine, 5)
	assert.Empty(t, update.Threats)

	err := svc.MakeMove(ctx, "conn-w", board.Position{X: 9, Y: 9})
	assert.ErrorIs(t, err, room.ErrGameOver)
}

func TestLeaveRoomNotifiesOpponent(t *testing.T) {
	svc, sink, registry := newTestService(defaultOptions())
	ctx := context.Background()

	roomID := pairUp(t, svc, sink)

	require.NoError(t, svc.LeaveRoom(ctx, "conn-b"))

	ev, ok := sink.last("conn-w")
	require.True(t, ok)
	assert.Equal(t, EventOpponentLeft, ev.Type)

	// Room persists with the remaining player
	rm, err := registry.Get(roomID)
	require.NoError(t, err)
	assert.False(t, rm.Seat(board.Black).Occupied())

	// The leaver is unbound and may start fresh
	require.NoError(t, svc.CreateRoom(ctx, "conn-b", "alice", board.Black, nil))
}

func TestLeaveRoomAloneDeletesRoom(t *testing.T) {
	svc, sink, registry := newTestService(defaultOptions())
	ctx := context.Background()

	require.NoError(t, svc.CreateRoom(ctx, "conn-1", "alice", board.Black, nil))
	ev, _ := sink.last("conn-1")
	roomID := ev.Data.(RoomCreatedData).RoomID

	require.NoError(t, svc.LeaveRoom(ctx, "conn-1"))

	_, err := registry.Get(roomID)
	assert.ErrorIs(t, err, room.ErrRoomNotFound)
}

func TestLeaveRoomNotBound(t *testing.T) {
	svc, _, _ := newTestService(defaultOptions())

	err := svc.LeaveRoom(context.Background(), "conn-x")
	assert.ErrorIs(t, err, ErrNotInRoom)
}

func TestStats(t *testing.T) {
	svc, sink, _ := newTestService(defaultOptions())
	ctx := context.Background()

	stats := svc.Stats()
	assert.Equal(t, 0, stats.Rooms)
	assert.False(t, stats.StartedAt.IsZero())

	pairUp(t, svc, sink)
	require.NoError(t, svc.CreateRoom(ctx, "conn-2", "carol", board.Black, nil))

	stats = svc.Stats()
	assert.Equal(t, 2, stats.Rooms)
	assert.Equal(t, 1, stats.ActiveRooms)
	assert.Equal(t, 3, stats.Connections)
}

func TestRoomSnapshots(t *testing.T) {
	svc, sink, _ := newTestService(defaultOptions())

	roomID := pairUp(t, svc, sink)

	snaps := svc.RoomSnapshots()
	require.Len(t, snaps, 1)
	assert.Equal(t, roomID, snaps[0].RoomID)
	assert.Equal(t, board.Empty, snaps[0].YourColor)

	snap, err := svc.RoomSnapshot(roomID)
	require.NoError(t, err)
	assert.Equal(t, roomID, snap.RoomID)

	_, err = svc.RoomSnapshot("NOPE42")
	assert.ErrorIs(t, err, room.ErrRoomNotFound)
}

func TestReasonMapping(t *testing.T) {
	cases := map[error]string{
		room.ErrRoomNotFound:      "room_not_found",
		room.ErrRoomFull:          "room_full",
		room.ErrNotYourTurn:       "not_your_turn",
		room.ErrGameOver:          "game_over",
		board.ErrCellOccupied:     "cell_occupied",
		board.ErrOutOfBounds:      "out_of_bounds",
		room.ErrProposalPending:   "proposal_pending",
		room.ErrNoProposal:        "no_proposal",
		room.ErrUndoLimitReached:  "undo_limit_reached",
		ErrNotInRoom:              "not_in_room",
		ErrAlreadyInRoom:          "already_in_room",
		ErrInvalidCommand:         "invalid_command",
		context.DeadlineExceeded:  "internal_error",
	}
	for err, want := range cases {
		assert.Equal(t, want, Reason(err), "for %v", err)
	}
}
