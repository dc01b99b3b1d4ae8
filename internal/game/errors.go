package game

import (
	"errors"

	"github.com/PhanTom497/Flashport/internal/ledger"
	"github.com/PhanTom497/Flashport/internal/session"
)

// Every failure is a rejection of one specific call given current state;
// nothing here is retryable or fatal to the process. Callers must re-query
// the read model before retrying.
var (
	ErrInsufficientFunds    = ledger.ErrInsufficientFunds
	ErrSessionExpired       = session.ErrExpired
	ErrSessionAlreadyActive = session.ErrAlreadyActive

	ErrNoSession       = errors.New("no active session")
	ErrNoActiveCard    = errors.New("no active card")
	ErrGameAlreadyOver = errors.New("game already over")
	ErrInvalidWager    = errors.New("invalid wager amount")
	ErrNoPendingPrize  = errors.New("no pending prize")
	ErrAlreadyClaimed  = errors.New("prize already claimed")
)
