package board

// threatPatterns are one-move-from-win shapes for the color that just
// moved, encoded over a line where 'x' is a mover stone, '.' an empty
// cell, and 'o' an opponent stone or the board edge (lines are padded
// with a blocking sentinel so edges block like opponent stones).
var threatPatterns = []string{
	".xxxx.", // open four
	"oxxxx.", // simple four, blocked on the left
	".xxxxo", // simple four, blocked on the right
	".xxx.",  // open three
	".xx.x.", // broken three
	".x.xx.", // broken three
}

// DetectThreats identifies patterns one move away from a win for the
// color of the stone at p, scanning only the four lines through p and
// only pattern windows that include the placed stone. It returns the
// deduplicated stone positions participating in any matched pattern.
// The result is advisory: it never gates move legality.
func DetectThreats(b Board, p Position) []Position {
	color := b.At(p)
	if !color.Valid() {
		return nil
	}

	var threats []Position
	seen := make(map[Position]bool)

	for _, axis := range axes {
		dx, dy := axis[0], axis[1]

		// Collect the full board line through p along this axis.
		start := p
		for {
			prev := Position{X: start.X - dx, Y: start.Y - dy}
			if !prev.InBounds() {
				break
			}
			start = prev
		}
		var cells []Position
		pIdx := -1
		for cur := start; cur.InBounds(); cur = (Position{X: cur.X + dx, Y: cur.Y + dy}) {
			if cur == p {
				pIdx = len(cells)
			}
			cells = append(cells, cur)
		}

		// Encode the line with blocking sentinels at both ends so the
		// board edge behaves like an opponent stone.
		line := make([]byte, 0, len(cells)+2)
		line = append(line, 'o')
		for _, cell := range cells {
			switch b.At(cell) {
			case color:
				line = append(line, 'x')
			case Empty:
				line = append(line, '.')
			default:
				line = append(line, 'o')
			}
		}
		line = append(line, 'o')
		pPadded := pIdx + 1

		for _, pattern := range threatPatterns {
			for i := 0; i+len(pattern) <= len(line); i++ {
				if pPadded < i || pPadded >= i+len(pattern) {
					continue
				}
				if !matchesAt(line, pattern, i) {
					continue
				}
				for j := 0; j < len(pattern); j++ {
					if pattern[j] != 'x' {
						continue
					}
					cell := cells[i+j-1]
					if !seen[cell] {
						seen[cell] = true
						threats = append(threats, cell)
					}
				}
			}
		}
	}

	return threats
}

func matchesAt(line []byte, pattern string, offset int) bool {
	for j := 0; j < len(pattern); j++ {
		if line[offset+j] != pattern[j] {
			return false
		}
	}
	return true
}
