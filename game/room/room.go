package room

import (
	"errors"
	"sync"
	"time"

	"github.com/duelboard/gomoku/game/board"
)

var (
	ErrNotYourTurn      = errors.New("not your turn")
	ErrGameOver         = errors.New("game already decided")
	ErrSeatVacant       = errors.New("seat is vacant")
	ErrSeatTaken        = errors.New("seat already taken")
	ErrRoomNotActive    = errors.New("room is not active")
	ErrProposalPending  = errors.New("proposal already pending")
	ErrNoProposal       = errors.New("no proposal pending")
	ErrNotYourProposal  = errors.New("cannot respond to your own proposal")
	ErrUndoLimitReached = errors.New("undo limit reached")
	ErrUndoNotYourMove  = errors.New("last move is not yours")
	ErrHistoryEmpty     = errors.New("move history is empty")
)

// OutcomeKind classifies how a game stands.
type OutcomeKind string

const (
	OutcomeNone OutcomeKind = "none"
	OutcomeWin  OutcomeKind = "win"
	OutcomeDraw OutcomeKind = "draw"
)

// Outcome is the game result. Kind is OutcomeNone while play continues;
// a non-none outcome rejects further moves until reset or undo clears it.
type Outcome struct {
	Kind   OutcomeKind      `json:"kind"`
	Winner board.Color      `json:"winner,omitempty"`
	Line   []board.Position `json:"line,omitempty"`
}

// MoveRecord is one entry of the append-only-until-undo move history.
type MoveRecord struct {
	Seat     board.Color    `json:"seat"`
	Pos      board.Position `json:"position"`
	Seq      int            `json:"seq"`
	PlayedAt time.Time      `json:"played_at"`
}

// Settings are the per-room options chosen at creation. A nil UndoLimit
// means unlimited undos; zero disables undo entirely.
type Settings struct {
	UndoLimit *int `json:"undo_limit"`
}

// ProposalKind is the negotiation protocol a proposal belongs to.
type ProposalKind string

const (
	ProposalUndo  ProposalKind = "undo"
	ProposalReset ProposalKind = "reset"
)

// Proposal is the single-flight pending negotiation of a room.
type Proposal struct {
	Kind     ProposalKind `json:"kind"`
	Proposer board.Color  `json:"proposer"`
	Deadline time.Time    `json:"deadline"`
}

// Seat is one of the two slots of a room. An occupied seat may be
// temporarily disconnected while its grace deadline has not elapsed.
type Seat struct {
	ConnID        string
	Identity      string
	Connected     bool
	GraceDeadline time.Time
}

// Occupied reports whether an identity is bound to the seat.
func (s Seat) Occupied() bool {
	return s.Identity != ""
}

// MoveResult is the committed effect of one accepted move.
type MoveResult struct {
	Record  MoveRecord
	Win     *board.Win
	Draw    bool
	Threats []board.Position
}

// UndoResult is the committed effect of one accepted undo.
type UndoResult struct {
	Undone   MoveRecord
	UndoUsed int
}

// Room is the aggregate root: the authoritative copy of one game. All
// mutation methods lock the room for their whole validate-then-commit
// span; nothing is committed when validation fails.
type Room struct {
	ID        string
	CreatedAt time.Time

	mu        sync.RWMutex
	board     board.Board
	turn      board.Color
	outcome   Outcome
	lastMove  *board.Position
	seats     map[board.Color]*Seat
	history   []MoveRecord
	undoUsed  map[board.Color]int
	settings  Settings
	updatedAt time.Time
	pending   *Proposal

	graceTimer    *time.Timer
	proposalTimer *time.Timer
}

func newRoom(id string, settings Settings) *Room {
	now := time.Now()
	return &Room{
		ID:        id,
		CreatedAt: now,
		turn:      board.Black,
		outcome:   Outcome{Kind: OutcomeNone},
		seats: map[board.Color]*Seat{
			board.Black: {},
			board.White: {},
		},
		undoUsed:  map[board.Color]int{board.Black: 0, board.White: 0},
		settings:  settings,
		updatedAt: now,
	}
}

// Touch bumps the activity timestamp that drives idle eviction.
func (r *Room) Touch() {
	r.mu.Lock()
	r.updatedAt = time.Now()
	r.mu.Unlock()
}

// UpdatedAt returns the last-activity timestamp.
func (r *Room) UpdatedAt() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.updatedAt
}

// Settings returns the room's settings.
func (r *Room) Settings() Settings {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.settings
}

// Seat returns a copy of the slot for the given color.
func (r *Room) Seat(c board.Color) Seat {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.seats[c]; ok {
		return *s
	}
	return Seat{}
}

// BindSeat binds an identity and live connection to a vacant seat.
func (r *Room) BindSeat(c board.Color, connID, identity string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	seat := r.seats[c]
	if seat.Occupied() {
		return ErrSeatTaken
	}
	seat.ConnID = connID
	seat.Identity = identity
	seat.Connected = true
	seat.GraceDeadline = time.Time{}
	r.updatedAt = time.Now()
	return nil
}

// MarkDisconnected flips an occupied seat to bound-disconnected with the
// given grace deadline.
func (r *Room) MarkDisconnected(c board.Color, deadline time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	seat := r.seats[c]
	if !seat.Occupied() {
		return
	}
	seat.Connected = false
	seat.ConnID = ""
	seat.GraceDeadline = deadline
	r.updatedAt = time.Now()
}

// Rebind reattaches a fresh connection to a bound-disconnected seat.
// The deadline check belongs to the caller; a seat that is vacant or
// already live is rejected here.
func (r *Room) Rebind(c board.Color, connID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	seat := r.seats[c]
	if !seat.Occupied() || seat.Connected {
		return ErrSeatVacant
	}
	seat.ConnID = connID
	seat.Connected = true
	seat.GraceDeadline = time.Time{}
	r.updatedAt = time.Now()
	return nil
}

// VacateSeat unbinds a seat entirely.
func (r *Room) VacateSeat(c board.Color) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seats[c] = &Seat{}
	r.updatedAt = time.Now()
}

// OccupiedSeats returns how many seats have a bound identity.
func (r *Room) OccupiedSeats() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, s := range r.seats {
		if s.Occupied() {
			n++
		}
	}
	return n
}

// BothSeatsOccupied reports whether the room is active (both seats bound,
// connected or not).
func (r *Room) BothSeatsOccupied() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.seats[board.Black].Occupied() && r.seats[board.White].Occupied()
}

// PlayMove validates and commits one move for the given seat: the seat
// must be occupied, it must be that seat's turn, the game must be
// undecided, and the target cell must be empty. On success the board,
// history, last move, and outcome are updated atomically and the
// opponent's threat hints are computed.
func (r *Room) PlayMove(c board.Color, pos board.Position) (*MoveResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.seats[c].Occupied() {
		return nil, ErrSeatVacant
	}
	if r.outcome.Kind != OutcomeNone {
		return nil, ErrGameOver
	}
	if r.turn != c {
		return nil, ErrNotYourTurn
	}

	next, err := board.ApplyMove(r.board, pos, c)
	if err != nil {
		return nil, err
	}

	record := MoveRecord{
		Seat:     c,
		Pos:      pos,
		Seq:      len(r.history) + 1,
		PlayedAt: time.Now(),
	}

	r.board = next
	r.history = append(r.history, record)
	r.lastMove = &board.Position{X: pos.X, Y: pos.Y}
	r.turn = c.Opponent()
	r.updatedAt = time.Now()

	result := &MoveResult{Record: record}
	if win := board.DetectWin(r.board, pos); win != nil {
		r.outcome = Outcome{Kind: OutcomeWin, Winner: win.Winner, Line: win.Line}
		result.Win = win
	} else if board.IsFull(r.board) {
		r.outcome = Outcome{Kind: OutcomeDraw}
		result.Draw = true
	} else {
		result.Threats = board.DetectThreats(r.board, pos)
	}

	return result, nil
}

// StartProposal opens a single-flight negotiation. Undo proposals are
// validated here in full: non-empty history, the proposer owns the last
// move, and the proposer's undo budget is not exhausted. Reset proposals
// require an active room. A second proposal while one is pending is
// rejected, never queued or overwritten.
func (r *Room) StartProposal(kind ProposalKind, proposer board.Color, deadline time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.seats[proposer].Occupied() {
		return ErrSeatVacant
	}
	if r.pending != nil {
		return ErrProposalPending
	}
	if !r.seats[board.Black].Occupied() || !r.seats[board.White].Occupied() {
		return ErrRoomNotActive
	}

	if kind == ProposalUndo {
		if err := r.validateUndoLocked(proposer); err != nil {
			return err
		}
	}

	r.pending = &Proposal{Kind: kind, Proposer: proposer, Deadline: deadline}
	r.updatedAt = time.Now()
	return nil
}

// validateUndoLocked checks undo legality for the proposer. Undo is
// allowed after a win or draw, since accepting it clears the outcome.
func (r *Room) validateUndoLocked(proposer board.Color) error {
	if limit := r.settings.UndoLimit; limit != nil && r.undoUsed[proposer] >= *limit {
		return ErrUndoLimitReached
	}
	if len(r.history) == 0 {
		return ErrHistoryEmpty
	}
	if r.history[len(r.history)-1].Seat != proposer {
		return ErrUndoNotYourMove
	}
	return nil
}

// Pending returns a copy of the outstanding proposal, if any.
func (r *Room) Pending() *Proposal {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.pending == nil {
		return nil
	}
	p := *r.pending
	return &p
}

// ClearProposal validates that the responder may answer the pending
// proposal of the given kind and clears it. The cleared proposal is
// returned so the caller can notify the proposer.
func (r *Room) ClearProposal(kind ProposalKind, responder board.Color) (*Proposal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.pending == nil || r.pending.Kind != kind {
		return nil, ErrNoProposal
	}
	if responder == r.pending.Proposer {
		return nil, ErrNotYourProposal
	}

	p := *r.pending
	r.pending = nil
	r.updatedAt = time.Now()
	return &p, nil
}

// ExpireProposal clears the pending proposal only if its deadline has
// passed; used by the auto-reject timer. Returns the cleared proposal or
// nil when nothing expired.
func (r *Room) ExpireProposal(now time.Time) *Proposal {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.pending == nil || now.Before(r.pending.Deadline) {
		return nil
	}
	p := *r.pending
	r.pending = nil
	r.updatedAt = time.Now()
	return &p
}

// ApplyUndo commits an accepted undo for the proposer: the last history
// entry is popped, its cell cleared, the turn restored to the undone
// mover, and any outcome cleared. An empty history here is an internal
// invariant violation; nothing is committed and the error surfaces.
func (r *Room) ApplyUndo(proposer board.Color) (*UndoResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.history) == 0 {
		return nil, ErrHistoryEmpty
	}
	last := r.history[len(r.history)-1]
	if last.Seat != proposer {
		return nil, ErrUndoNotYourMove
	}

	r.history = r.history[:len(r.history)-1]
	r.board[last.Pos.Y][last.Pos.X] = board.Empty
	r.turn = proposer
	r.outcome = Outcome{Kind: OutcomeNone}
	r.undoUsed[proposer]++
	if len(r.history) > 0 {
		prev := r.history[len(r.history)-1].Pos
		r.lastMove = &board.Position{X: prev.X, Y: prev.Y}
	} else {
		r.lastMove = nil
	}
	r.updatedAt = time.Now()

	return &UndoResult{Undone: last, UndoUsed: r.undoUsed[proposer]}, nil
}

// ApplyReset commits an accepted reset: empty board, black to move, and
// history, outcome, last move, and both undo counters cleared.
func (r *Room) ApplyReset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.board = board.Board{}
	r.turn = board.Black
	r.outcome = Outcome{Kind: OutcomeNone}
	r.lastMove = nil
	r.history = nil
	r.undoUsed = map[board.Color]int{board.Black: 0, board.White: 0}
	r.updatedAt = time.Now()
}

// History returns a copy of the move history.
func (r *Room) History() []MoveRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]MoveRecord, len(r.history))
	copy(out, r.history)
	return out
}

// UndoUsed returns the undo counter for a seat.
func (r *Room) UndoUsed(c board.Color) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.undoUsed[c]
}

// SetGraceTimer registers the grace-period timer owned by this room,
// stopping any previous one.
func (r *Room) SetGraceTimer(t *time.Timer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.graceTimer != nil {
		r.graceTimer.Stop()
	}
	r.graceTimer = t
}

// StopGraceTimer cancels the grace timer. Safe to call at any time.
func (r *Room) StopGraceTimer() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.graceTimer != nil {
		r.graceTimer.Stop()
		r.graceTimer = nil
	}
}

// SetProposalTimer registers the proposal auto-reject timer, stopping any
// previous one.
func (r *Room) SetProposalTimer(t *time.Timer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.proposalTimer != nil {
		r.proposalTimer.Stop()
	}
	r.proposalTimer = t
}

// StopProposalTimer cancels the proposal timer. Safe to call at any time.
func (r *Room) StopProposalTimer() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.proposalTimer != nil {
		r.proposalTimer.Stop()
		r.proposalTimer = nil
	}
}

// CancelTimers stops every timer the room owns. Deletion calls this
// first so no callback fires against a removed room.
func (r *Room) CancelTimers() {
	r.StopGraceTimer()
	r.StopProposalTimer()
}
