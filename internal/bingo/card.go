package bingo

import (
	"math"

	"github.com/PhanTom497/Flashport/internal/engine"
)

// Board geometry and number domain. Cell numbers span exactly the possible
// sums of four six-sided dice, so every roll sum can appear on a card.
const (
	GridSize      = 5
	CellCount     = GridSize * GridSize
	FreeCellIndex = 12 // center cell, row 2 col 2

	MinCellNumber = 4
	MaxCellNumber = 24

	DiceCount = 4
	DieFaces  = 6
)

// FreeCellNumber is the sentinel stored in the free center cell. It is not a
// playable number: no dice sum can equal it.
const FreeCellNumber = 0

// Wager bounds and the fixed per-roll fee, in micro-units
// (1 token = 1_000_000 micros). This table is the single authoritative
// definition; display layers must treat any copy as a hint only.
const (
	MinBet   int64 = 1_000_000
	MaxBet   int64 = 100_000_000
	RollCost int64 = 50_000
)

// Card is a 5x5 bingo card. Numbers are drawn with replacement, so a value
// may occupy several cells; a roll whose sum equals such a value marks all
// of them at once ("lucky" cells).
type Card struct {
	ID            string          `json:"id"`
	Numbers       [CellCount]int  `json:"numbers"`
	Marked        [CellCount]bool `json:"marked"`
	RollsCount    int             `json:"rolls_count"`
	Wager         int64           `json:"wager"`
	TotalRollFees int64           `json:"total_roll_fees"`
	PrizeClaimed  bool            `json:"prize_claimed"`
}

// GenerateCard draws a fresh card from the given randomness source: 24
// independent uniform draws over [MinCellNumber, MaxCellNumber], with the
// center cell forced free and pre-marked. Deterministic for a fixed source.
func GenerateCard(id string, src engine.Source) *Card {
	card := &Card{ID: id}

	for i := 0; i < CellCount; i++ {
		if i == FreeCellIndex {
			card.Numbers[i] = FreeCellNumber
			card.Marked[i] = true
			continue
		}
		card.Numbers[i] = drawCellNumber(src)
	}

	return card
}

func drawCellNumber(src engine.Source) int {
	span := MaxCellNumber - MinCellNumber + 1
	n := int(math.Floor(src.NextFloat() * float64(span)))
	if n >= span {
		n = span - 1
	}
	return MinCellNumber + n
}

// MarkSum marks every currently-unmarked cell whose number equals sum and
// returns the marked indices in row-major order. The free cell never
// participates: its sentinel is outside the sum range.
func (c *Card) MarkSum(sum int) []int {
	var indices []int
	for i := 0; i < CellCount; i++ {
		if c.Numbers[i] == sum && !c.Marked[i] {
			c.Marked[i] = true
			indices = append(indices, i)
		}
	}
	return indices
}

// Clone returns an independent copy of the card.
func (c *Card) Clone() *Card {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}
