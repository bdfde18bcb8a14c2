package service

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/duelboard/gomoku/game/board"
	"github.com/duelboard/gomoku/game/room"
)

// Negotiator runs the undo and reset handshakes: propose, respond,
// apply-or-reject. Proposals are single-flight per room and carry a
// deadline; a room-owned timer auto-rejects a proposal nobody answered
// so the slot cannot stay wedged.
type Negotiator struct {
	sink EventSink
	ttl  time.Duration
	log  *logrus.Entry
}

// NewNegotiator creates a negotiator whose proposals expire after ttl.
func NewNegotiator(sink EventSink, ttl time.Duration, log *logrus.Logger) *Negotiator {
	return &Negotiator{
		sink: sink,
		ttl:  ttl,
		log:  log.WithField("component", "negotiator"),
	}
}

// Propose opens a proposal of the given kind for the proposer seat and
// signals the opponent. Validation (single-flight, undo legality, room
// active) happens inside the room before anything is committed.
func (n *Negotiator) Propose(rm *room.Room, kind room.ProposalKind, proposer board.Color) error {
	deadline := time.Now().Add(n.ttl)
	if err := rm.StartProposal(kind, proposer, deadline); err != nil {
		return err
	}

	rm.SetProposalTimer(time.AfterFunc(n.ttl, func() {
		n.expire(rm, kind)
	}))

	requested := EventUndoRequested
	if kind == room.ProposalReset {
		requested = EventResetRequested
	}
	n.notifySeat(rm, proposer.Opponent(), Event{
		Type: requested,
		Data: ProposalData{Proposer: proposer},
	})

	n.log.WithFields(logrus.Fields{
		"room":     rm.ID,
		"kind":     kind,
		"proposer": proposer,
	}).Info("proposal opened")
	return nil
}

// Respond answers the pending proposal. On accept the mutation is
// committed and the result broadcast to both seats; on reject nothing
// changes and only the proposer is informed.
func (n *Negotiator) Respond(rm *room.Room, kind room.ProposalKind, responder board.Color, accept bool) error {
	p, err := rm.ClearProposal(kind, responder)
	if err != nil {
		return err
	}
	rm.StopProposalTimer()

	if !accept {
		rejected := EventUndoRejected
		if kind == room.ProposalReset {
			rejected = EventResetRejected
		}
		n.notifySeat(rm, p.Proposer, Event{Type: rejected})
		n.log.WithFields(logrus.Fields{
			"room": rm.ID,
			"kind": kind,
		}).Info("proposal rejected")
		return nil
	}

	switch kind {
	case room.ProposalUndo:
		result, err := rm.ApplyUndo(p.Proposer)
		if err != nil {
			// Invariant violation: the proposal validated against a
			// history that no longer matches. Nothing was committed.
			n.log.WithFields(logrus.Fields{
				"room":  rm.ID,
				"error": err,
			}).Error("undo apply failed after accepted proposal")
			return err
		}
		for _, c := range []board.Color{board.Black, board.White} {
			n.notifySeat(rm, c, Event{
				Type: EventUndoAccepted,
				Data: UndoAcceptedData{Snapshot: rm.Snapshot(c), UndoUsed: result.UndoUsed},
			})
		}
	case room.ProposalReset:
		rm.ApplyReset()
		for _, c := range []board.Color{board.Black, board.White} {
			n.notifySeat(rm, c, Event{
				Type: EventResetAccepted,
				Data: ResetAcceptedData{Snapshot: rm.Snapshot(c)},
			})
		}
	}

	n.log.WithFields(logrus.Fields{
		"room": rm.ID,
		"kind": kind,
	}).Info("proposal accepted")
	return nil
}

// expire auto-rejects a proposal whose deadline passed unanswered.
func (n *Negotiator) expire(rm *room.Room, kind room.ProposalKind) {
	p := rm.ExpireProposal(time.Now())
	if p == nil || p.Kind != kind {
		return
	}

	rejected := EventUndoRejected
	if p.Kind == room.ProposalReset {
		rejected = EventResetRejected
	}
	n.notifySeat(rm, p.Proposer, Event{Type: rejected})
	n.log.WithFields(logrus.Fields{
		"room": rm.ID,
		"kind": p.Kind,
	}).Info("proposal expired unanswered")
}

func (n *Negotiator) notifySeat(rm *room.Room, c board.Color, ev Event) {
	seat := rm.Seat(c)
	if seat.Occupied() && seat.Connected && seat.ConnID != "" {
		n.sink.Send(seat.ConnID, ev)
	}
}
