package board

import "testing"

func placeRow(b Board, y int, xs []int, c Color) Board {
	for _, x := range xs {
		b[y][x] = c
	}
	return b
}

func containsPosition(ps []Position, p Position) bool {
	for _, q := range ps {
		if q == p {
			return true
		}
	}
	return false
}

func TestDetectThreatsOpenFour(t *testing.T) {
	var b Board
	b = placeRow(b, 7, []int{4, 5, 6, 7}, Black)

	threats := DetectThreats(b, Position{X: 7, Y: 7})
	if len(threats) != 4 {
		t.Fatalf("Expected 4 threat stones for open four, got %d: %v", len(threats), threats)
	}
	for _, x := range []int{4, 5, 6, 7} {
		if !containsPosition(threats, Position{X: x, Y: 7}) {
			t.Errorf("Expected (%d,7) in threat set", x)
		}
	}
}

func TestDetectThreatsSimpleFour(t *testing.T) {
	// Four blocked on the left by white, open on the right.
	var b Board
	b = placeRow(b, 7, []int{4, 5, 6, 7}, Black)
	b[7][3] = White

	threats := DetectThreats(b, Position{X: 7, Y: 7})
	if len(threats) != 4 {
		t.Fatalf("Expected 4 threat stones for simple four, got %d: %v", len(threats), threats)
	}
}

func TestDetectThreatsFourAtEdge(t *testing.T) {
	// The board edge blocks one end like an opponent stone does.
	var b Board
	b = placeRow(b, 0, []int{0, 1, 2, 3}, White)

	threats := DetectThreats(b, Position{X: 3, Y: 0})
	if len(threats) != 4 {
		t.Fatalf("Expected edge-blocked four to threaten, got %d: %v", len(threats), threats)
	}
}

func TestDetectThreatsBlockedBothEnds(t *testing.T) {
	var b Board
	b = placeRow(b, 7, []int{4, 5, 6, 7}, Black)
	b[7][3] = White
	b[7][8] = White

	if threats := DetectThreats(b, Position{X: 7, Y: 7}); len(threats) != 0 {
		t.Errorf("Dead four should not threaten, got %v", threats)
	}
}

func TestDetectThreatsOpenThree(t *testing.T) {
	var b Board
	b = placeRow(b, 7, []int{5, 6, 7}, Black)

	threats := DetectThreats(b, Position{X: 6, Y: 7})
	if len(threats) != 3 {
		t.Fatalf("Expected 3 threat stones for open three, got %d: %v", len(threats), threats)
	}
}

func TestDetectThreatsBrokenThree(t *testing.T) {
	// _XX_X_ at y=7: stones at x=5,6 and x=8.
	var b Board
	b = placeRow(b, 7, []int{5, 6, 8}, Black)

	threats := DetectThreats(b, Position{X: 8, Y: 7})
	if len(threats) != 3 {
		t.Fatalf("Expected 3 threat stones for broken three, got %d: %v", len(threats), threats)
	}
	for _, x := range []int{5, 6, 8} {
		if !containsPosition(threats, Position{X: x, Y: 7}) {
			t.Errorf("Expected (%d,7) in threat set", x)
		}
	}
}

func TestDetectThreatsBrokenThreeMirror(t *testing.T) {
	// _X_XX_ at y=7: stones at x=5 and x=7,8.
	var b Board
	b = placeRow(b, 7, []int{5, 7, 8}, Black)

	threats := DetectThreats(b, Position{X: 5, Y: 7})
	if len(threats) != 3 {
		t.Fatalf("Expected 3 threat stones for mirrored broken three, got %d: %v", len(threats), threats)
	}
}

func TestDetectThreatsVertical(t *testing.T) {
	var b Board
	for y := 4; y <= 6; y++ {
		b[y][9] = White
	}

	threats := DetectThreats(b, Position{X: 9, Y: 5})
	if len(threats) != 3 {
		t.Fatalf("Expected vertical open three, got %d: %v", len(threats), threats)
	}
}

func TestDetectThreatsNoFalsePositives(t *testing.T) {
	var b Board
	b[7][7] = Black
	b[7][8] = Black

	if threats := DetectThreats(b, Position{X: 8, Y: 7}); len(threats) != 0 {
		t.Errorf("Pair should not threaten, got %v", threats)
	}
}

func TestDetectThreatsDeduplicated(t *testing.T) {
	// A cross of two open threes sharing the center stone: the shared
	// stone must appear exactly once.
	var b Board
	b = placeRow(b, 7, []int{6, 7, 8}, Black)
	b[6][7] = Black
	b[8][7] = Black

	threats := DetectThreats(b, Position{X: 7, Y: 7})
	seen := make(map[Position]int)
	for _, p := range threats {
		seen[p]++
		if seen[p] > 1 {
			t.Errorf("Position %+v reported twice", p)
		}
	}
	if len(threats) != 5 {
		t.Errorf("Expected 5 distinct stones across both threes, got %d: %v", len(threats), threats)
	}
}

func TestDetectThreatsIgnoresStaleLines(t *testing.T) {
	// An open three elsewhere on the board is not reported for a move
	// that does not touch its lines.
	var b Board
	b = placeRow(b, 2, []int{2, 3, 4}, Black)
	b[14][14] = Black

	if threats := DetectThreats(b, Position{X: 14, Y: 14}); len(threats) != 0 {
		t.Errorf("Expected no threats through (14,14), got %v", threats)
	}
}

func TestDetectThreatsEmptyCell(t *testing.T) {
	var b Board
	if threats := DetectThreats(b, Position{X: 7, Y: 7}); threats != nil {
		t.Errorf("Expected nil for empty cell, got %v", threats)
	}
}
