package api

import (
	"errors"
	"net/http"

	"github.com/PhanTom497/Flashport/internal/bingo"
	"github.com/PhanTom497/Flashport/internal/game"
	"github.com/PhanTom497/Flashport/internal/ledger"
	"github.com/PhanTom497/Flashport/internal/session"
)

// EngineError represents a structured error response with context
type EngineError struct {
	Type      string                 `json:"type"`
	Message   string                 `json:"message"`
	Context   map[string]interface{} `json:"context,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
	Timestamp string                 `json:"timestamp,omitempty"`
}

// Error implements the error interface
func (e EngineError) Error() string {
	return e.Message
}

// Error types with proper categorization
const (
	// Input validation errors
	ErrTypeInvalidAmount = "invalid_amount"
	ErrTypeInvalidWager  = "invalid_wager"
	ErrTypeInvalidTTL    = "invalid_ttl"
	ErrTypeValidation    = "validation_error"

	// Funds errors
	ErrTypeInsufficientFunds = "insufficient_funds"

	// State conflicts
	ErrTypeNoSession            = "no_session"
	ErrTypeSessionExpired       = "session_expired"
	ErrTypeSessionAlreadyActive = "session_already_active"
	ErrTypeNoActiveCard         = "no_active_card"
	ErrTypeGameAlreadyOver      = "game_already_over"
	ErrTypeNoPendingPrize       = "no_pending_prize"
	ErrTypeAlreadyClaimed       = "already_claimed"

	// System errors
	ErrTypeInternal = "internal_error"
)

// statusForError maps a domain error to its HTTP status and wire type.
// Every engine rejection is a client-side 4xx; only unknown failures
// surface as 500.
func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, ledger.ErrInvalidAmount):
		return http.StatusBadRequest, ErrTypeInvalidAmount
	case errors.Is(err, game.ErrInvalidWager):
		return http.StatusBadRequest, ErrTypeInvalidWager
	case errors.Is(err, session.ErrInvalidTTL):
		return http.StatusBadRequest, ErrTypeInvalidTTL
	case errors.Is(err, game.ErrInsufficientFunds):
		return http.StatusPaymentRequired, ErrTypeInsufficientFunds
	case errors.Is(err, game.ErrSessionExpired):
		return http.StatusConflict, ErrTypeSessionExpired
	case errors.Is(err, game.ErrNoSession):
		return http.StatusConflict, ErrTypeNoSession
	case errors.Is(err, game.ErrSessionAlreadyActive):
		return http.StatusConflict, ErrTypeSessionAlreadyActive
	case errors.Is(err, game.ErrNoActiveCard):
		return http.StatusConflict, ErrTypeNoActiveCard
	case errors.Is(err, game.ErrGameAlreadyOver):
		return http.StatusConflict, ErrTypeGameAlreadyOver
	case errors.Is(err, game.ErrAlreadyClaimed):
		return http.StatusConflict, ErrTypeAlreadyClaimed
	case errors.Is(err, game.ErrNoPendingPrize):
		return http.StatusConflict, ErrTypeNoPendingPrize
	default:
		return http.StatusInternalServerError, ErrTypeInternal
	}
}

// AmountRequest carries a micro-unit amount for deposit and withdraw.
type AmountRequest struct {
	Amount int64 `json:"amount"`
}

// SessionStartRequest opens a play window lasting TTLSeconds.
type SessionStartRequest struct {
	TTLSeconds int64 `json:"ttl_seconds"`
}

// NewGameRequest deals a fresh card for a micro-unit wager.
type NewGameRequest struct {
	Wager int64 `json:"wager"`
}

// BalanceResponse carries the fund state plus a decimal display string
// for the available amount.
type BalanceResponse struct {
	Balance          ledger.Balance `json:"balance"`
	AvailableDisplay string         `json:"available_display"`
}

// SessionResponse wraps the current session; nil when none is active.
type SessionResponse struct {
	Session *session.Session `json:"session"`
}

// StatusResponse acknowledges an operation with no other payload.
type StatusResponse struct {
	Status string `json:"status"`
}

// CardResponse wraps the in-play card; nil when none exists.
type CardResponse struct {
	Card *bingo.Card `json:"card"`
}

// RollResponse is the outcome of one paid roll together with the card
// and balance it produced.
type RollResponse struct {
	Roll    bingo.RollResult `json:"roll"`
	Card    *bingo.Card      `json:"card"`
	Balance BalanceResponse  `json:"balance"`
}

// ClaimResponse is the settled payout and the credited balance.
type ClaimResponse struct {
	Payout        bingo.Payout    `json:"payout"`
	AmountDisplay string          `json:"amount_display"`
	Balance       BalanceResponse `json:"balance"`
}

// DrawnNumbersResponse lists distinct drawn sums in ascending order.
type DrawnNumbersResponse struct {
	DrawnNumbers []int `json:"drawn_numbers"`
}

// LastRollResponse wraps the most recent roll; nil when none happened.
type LastRollResponse struct {
	Roll *game.LastRoll `json:"roll"`
}

// PotentialPayoutResponse is the payout the current card would settle
// for if claimed now; nil when no card is in play.
type PotentialPayoutResponse struct {
	Payout        *bingo.Payout `json:"payout"`
	AmountDisplay string        `json:"amount_display,omitempty"`
}

// HealthResponse reports liveness.
type HealthResponse struct {
	Status string `json:"status"`
}
