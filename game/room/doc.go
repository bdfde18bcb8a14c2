// Package room holds the Room aggregate and its in-memory registry.
//
// A Room is the unit of isolation: two seats (black and white), the
// authoritative board, the move history, per-seat undo counters, and at
// most one pending undo/reset proposal. Every mutation method takes the
// room's lock for its whole validate-then-commit span, so no partial
// state is ever observable and callers never roll back.
//
// The Registry owns creation and deletion. Room IDs are short uppercase
// alphanumeric strings generated from cryptographic randomness and
// collision-checked against live rooms. Deletion cancels any timers the
// room owns and is idempotent: deleting an unknown ID is a no-op, which
// lets the idle reaper race safely against grace-expiry deletes.
package room
