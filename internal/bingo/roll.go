package bingo

import (
	"math"

	"github.com/PhanTom497/Flashport/internal/engine"
)

// RollResult describes a single resolved roll against the active card.
// It is ephemeral: derived fresh on every roll, never stored redundantly.
type RollResult struct {
	Dice           [DiceCount]int `json:"dice"`
	Sum            int            `json:"sum"`
	MatchedIndices []int          `json:"matched_indices"`
	Matched        bool           `json:"matched"`
	IsLucky        bool           `json:"is_lucky"`
	GameOver       bool           `json:"game_over"`
	Line           *Line          `json:"line,omitempty"`
}

// RollDice draws DiceCount independent die faces in [1, DieFaces] from the
// source and returns them with their sum. The sum range [4, 24] matches the
// card's number domain by construction.
func RollDice(src engine.Source) ([DiceCount]int, int) {
	var dice [DiceCount]int
	sum := 0
	for i := range dice {
		face := int(math.Floor(src.NextFloat() * DieFaces))
		if face >= DieFaces {
			face = DieFaces - 1
		}
		dice[i] = face + 1
		sum += dice[i]
	}
	return dice, sum
}

// Roll resolves one roll against the card: draws dice, marks every matching
// unmarked cell, increments the roll count, and runs win detection. The
// caller is responsible for fee accounting and for rejecting rolls on
// finished cards.
func (c *Card) Roll(src engine.Source) RollResult {
	dice, sum := RollDice(src)

	indices := c.MarkSum(sum)
	c.RollsCount++

	result := RollResult{
		Dice:           dice,
		Sum:            sum,
		MatchedIndices: indices,
		Matched:        len(indices) > 0,
		IsLucky:        len(indices) > 1,
	}

	if line, won := DetectWin(c.Marked); won {
		result.GameOver = true
		result.Line = &line
	}

	return result
}
