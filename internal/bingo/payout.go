package bingo

import (
	"github.com/shopspring/decimal"
)

// Tier is one payout band: the first band whose MaxRolls covers the win's
// roll count applies. Fewer rolls to win always pays at least as much as
// more rolls — the table must stay monotonically non-increasing.
type Tier struct {
	MaxRolls   int
	Multiplier decimal.Decimal
	Name       string
}

// payoutTiers is the single authoritative multiplier table, evaluated in
// ascending MaxRolls order. The final band is unbounded.
var payoutTiers = []Tier{
	{MaxRolls: 9, Multiplier: decimal.NewFromInt(10), Name: "LEGENDARY"},
	{MaxRolls: 14, Multiplier: decimal.NewFromInt(5), Name: "EPIC"},
	{MaxRolls: 19, Multiplier: decimal.NewFromInt(3), Name: "RARE"},
	{MaxRolls: 24, Multiplier: decimal.NewFromInt(2), Name: "GOOD"},
	{MaxRolls: 34, Multiplier: decimal.RequireFromString("1.2"), Name: "NORMAL"},
	{MaxRolls: 44, Multiplier: decimal.RequireFromString("0.8"), Name: "REDUCED"},
	{MaxRolls: -1, Multiplier: decimal.RequireFromString("0.2"), Name: "MINIMAL"},
}

// Payout is a computed prize for a won card.
type Payout struct {
	Wager      int64           `json:"wager"`
	RollsCount int             `json:"rolls_count"`
	Multiplier decimal.Decimal `json:"multiplier"`
	Amount     int64           `json:"amount"`
	Tier       string          `json:"tier"`
}

// TierFor returns the payout band for the given roll count.
func TierFor(rollsCount int) Tier {
	for _, t := range payoutTiers {
		if t.MaxRolls >= 0 && rollsCount <= t.MaxRolls {
			return t
		}
	}
	return payoutTiers[len(payoutTiers)-1]
}

// ComputePayout computes wager x multiplier, rounded half-to-even to the
// ledger's micro-unit precision.
func ComputePayout(wager int64, rollsCount int) Payout {
	tier := TierFor(rollsCount)

	amount := decimal.NewFromInt(wager).
		Mul(tier.Multiplier).
		RoundBank(0).
		IntPart()

	return Payout{
		Wager:      wager,
		RollsCount: rollsCount,
		Multiplier: tier.Multiplier,
		Amount:     amount,
		Tier:       tier.Name,
	}
}
