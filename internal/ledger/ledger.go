// Package ledger holds a player's escrowed funds and their derived lifetime
// totals. It is the only writer to balance state; every other component
// reads balances but never mutates them.
package ledger

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Amounts are int64 micro-units: 1 token = 1_000_000 micros. Display-unit
// conversion happens at the read-model boundary, never inside the engine.
const MicrosPerToken = 1_000_000

var (
	// ErrInvalidAmount rejects zero or negative amounts.
	ErrInvalidAmount = errors.New("amount must be greater than zero")
	// ErrInsufficientFunds rejects debits exceeding the available balance.
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// Balance is a player's fund state. The invariant
// Available = TotalDeposited + TotalWon - TotalSpent - TotalPaidOut >= 0
// holds after every mutation; balances are never deleted, so the totals
// form a monotonic audit trail.
type Balance struct {
	Available      int64 `json:"available"`
	TotalDeposited int64 `json:"total_deposited"`
	TotalWon       int64 `json:"total_won"`
	TotalSpent     int64 `json:"total_spent"`
	TotalPaidOut   int64 `json:"total_paid_out"`
}

// Deposit adds external funds. Always succeeds for a positive amount.
func (b *Balance) Deposit(amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	b.Available += amount
	b.TotalDeposited += amount
	return nil
}

// Debit removes funds for a wager or fee.
func (b *Balance) Debit(amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if b.Available < amount {
		return ErrInsufficientFunds
	}
	b.Available -= amount
	b.TotalSpent += amount
	return nil
}

// Credit adds won funds.
func (b *Balance) Credit(amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	b.Available += amount
	b.TotalWon += amount
	return nil
}

// Withdraw pays funds out of the engine entirely.
func (b *Balance) Withdraw(amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if b.Available < amount {
		return ErrInsufficientFunds
	}
	b.Available -= amount
	b.TotalPaidOut += amount
	return nil
}

// Display converts a micro-unit amount to its decimal token representation.
func Display(amount int64) string {
	return decimal.New(amount, -6).String()
}
