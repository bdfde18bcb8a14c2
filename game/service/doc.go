// Package service is the authoritative command layer of the gomoku
// server. Every inbound command (create, join, reconnect, move, the
// undo/reset negotiations, leave, and the implicit connection-lost
// signal) is validated against the room state and committed atomically,
// then answered with per-seat events pushed through an EventSink.
//
// The package hosts three collaborators around the room registry:
//
// Supervisor tracks which connection occupies which seat and runs the
// disconnect grace period: a lone creator who drops gets a window to
// reconnect before the room is deleted, while a mid-game disconnect
// vacates the seat immediately and notifies the opponent.
//
// Negotiator runs the two request/approve protocols (undo, reset) as
// single-flight proposals: at most one outstanding proposal per room,
// auto-rejected when its deadline passes.
//
// Reaper periodically deletes rooms whose last activity exceeds the idle
// threshold, cancelling room-owned timers before removal.
//
// Nothing here performs I/O; the transport layer serializes commands per
// connection and delivers the emitted events.
package service
