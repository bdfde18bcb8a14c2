// Package board implements the gomoku board rules as pure functions.
//
// The package has no state and no I/O: every function takes a Board value
// and returns results without side effects. Callers (the room layer) are
// responsible for turn order, outcome checks, and history bookkeeping.
//
// Core Operations:
//
// ApplyMove places a stone on an empty cell and returns the new board.
// DetectWin scans the four axis directions through a position for a
// contiguous run of five or more same-color stones and returns the full
// run. DetectThreats finds patterns one move away from a win (open four,
// simple four, open three, and the two broken-three shapes) for the color
// that just moved; hints are advisory and never gate move legality.
// IsFull reports whether any empty cell remains, driving draw detection.
//
// Coordinates:
//
// Positions are 0-indexed with X as column and Y as row on a 15x15 grid.
// Every scan step is bounds-checked.
package board
