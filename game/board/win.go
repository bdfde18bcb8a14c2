package board

// Win describes a detected winning line.
type Win struct {
	Winner Color      `json:"winner"`
	Line   []Position `json:"line"`
}

// DetectWin checks whether the stone at p completes a run of five or more
// same-color stones on any of the four axes. The returned line is the full
// contiguous run through p, which may be longer than five; it is never
// truncated. Returns nil when p is empty or no run reaches five.
func DetectWin(b Board, p Position) *Win {
	color := b.At(p)
	if color == Empty {
		return nil
	}

	for _, axis := range axes {
		dx, dy := axis[0], axis[1]

		// Walk backwards to the start of the run, then collect forward.
		start := p
		for {
			prev := Position{X: start.X - dx, Y: start.Y - dy}
			if !prev.InBounds() || b.At(prev) != color {
				break
			}
			start = prev
		}

		var line []Position
		for cur := start; cur.InBounds() && b.At(cur) == color; cur = (Position{X: cur.X + dx, Y: cur.Y + dy}) {
			line = append(line, cur)
		}

		if len(line) >= WinLength {
			return &Win{Winner: color, Line: line}
		}
	}

	return nil
}
