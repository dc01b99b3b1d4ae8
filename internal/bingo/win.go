package bingo

// LineKind classifies a completed winning line.
type LineKind string

const (
	LineRow          LineKind = "row"
	LineColumn       LineKind = "column"
	LineDiagonalMain LineKind = "diagonal_main"
	LineDiagonalAnti LineKind = "diagonal_anti"
	LineFullCard     LineKind = "full_card"
)

// Line identifies a winning line on the card. Index is the row or column
// number for LineRow/LineColumn and zero otherwise.
type Line struct {
	Kind  LineKind `json:"kind"`
	Index int      `json:"index"`
}

// DetectWin scans the marks in a fixed priority order: rows top to bottom,
// then columns left to right, then the main diagonal, the anti-diagonal,
// and finally the full card. It returns the first completed line, so the
// win classification for a given mark state is always the same regardless
// of which cell was marked last.
func DetectWin(marked [CellCount]bool) (Line, bool) {
	for row := 0; row < GridSize; row++ {
		complete := true
		for col := 0; col < GridSize; col++ {
			if !marked[row*GridSize+col] {
				complete = false
				break
			}
		}
		if complete {
			return Line{Kind: LineRow, Index: row}, true
		}
	}

	for col := 0; col < GridSize; col++ {
		complete := true
		for row := 0; row < GridSize; row++ {
			if !marked[row*GridSize+col] {
				complete = false
				break
			}
		}
		if complete {
			return Line{Kind: LineColumn, Index: col}, true
		}
	}

	mainComplete := true
	for i := 0; i < GridSize; i++ {
		if !marked[i*GridSize+i] {
			mainComplete = false
			break
		}
	}
	if mainComplete {
		return Line{Kind: LineDiagonalMain}, true
	}

	antiComplete := true
	for i := 0; i < GridSize; i++ {
		if !marked[i*GridSize+(GridSize-1-i)] {
			antiComplete = false
			break
		}
	}
	if antiComplete {
		return Line{Kind: LineDiagonalAnti}, true
	}

	// Unreachable in practice: any full card already completed row 0.
	// Kept for the fixed-order contract.
	full := true
	for i := 0; i < CellCount; i++ {
		if !marked[i] {
			full = false
			break
		}
	}
	if full {
		return Line{Kind: LineFullCard}, true
	}

	return Line{}, false
}
