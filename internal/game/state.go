package game

import (
	"fmt"
	"time"

	"github.com/PhanTom497/Flashport/internal/bingo"
	"github.com/PhanTom497/Flashport/internal/engine"
	"github.com/PhanTom497/Flashport/internal/ledger"
	"github.com/PhanTom497/Flashport/internal/session"
)

// RollHistoryLimit caps the retained per-player roll history.
const RollHistoryLimit = 50

// RollRecord is one stored roll in the player's history.
type RollRecord struct {
	Dice     [bingo.DiceCount]int `json:"dice"`
	Sum      int                  `json:"sum"`
	Matched  bool                 `json:"matched"`
	IsLucky  bool                 `json:"is_lucky"`
	Fee      int64                `json:"fee"`
	RolledAt time.Time            `json:"rolled_at"`
}

// PlayerState is the persisted aggregate for one player: balance, optional
// session, optional card, roll history, lifetime counters, and the fairness
// seeds. The Controller is its only writer. Drawn numbers, potential
// payout, and win detection are always derived from it, never stored.
type PlayerState struct {
	PlayerID string

	Balance ledger.Balance
	Session *session.Session
	Card    *bingo.Card

	Rolls             []RollRecord
	HasUnclaimedPrize bool

	TotalGames uint64
	TotalWins  uint64

	// ServerSeed is fixed at player creation and never exposed; only its
	// hash is. Together with ClientSeed and the monotonic Nonce it makes
	// every card and roll replayable.
	ServerSeed string
	ClientSeed string
	Nonce      uint64
}

// NewPlayerState creates a fresh aggregate with a unique server seed.
func NewPlayerState(playerID string) (*PlayerState, error) {
	serverSeed, err := engine.NewServerSeed()
	if err != nil {
		return nil, fmt.Errorf("create player %s: %w", playerID, err)
	}
	return &PlayerState{
		PlayerID:   playerID,
		ServerSeed: serverSeed,
		ClientSeed: playerID,
	}, nil
}

// Clone returns a deep copy. Operations mutate a clone and commit it only
// after persistence succeeds, so a mid-sequence failure leaves no partial
// state behind.
func (st *PlayerState) Clone() *PlayerState {
	cp := *st
	cp.Session = st.Session.Clone()
	cp.Card = st.Card.Clone()
	cp.Rolls = make([]RollRecord, len(st.Rolls))
	copy(cp.Rolls, st.Rolls)
	return &cp
}

func (st *PlayerState) seeds() engine.Seeds {
	return engine.Seeds{Server: st.ServerSeed, Client: st.ClientSeed}
}

// nextSource advances the nonce and returns the randomness stream for the
// next draw. The nonce is bumped before the draw, so a caller can never
// condition submission on an outcome it has already seen.
func (st *PlayerState) nextSource() engine.Source {
	st.Nonce++
	return engine.NewByteGenerator(st.seeds(), st.Nonce)
}

// gateSession validates the active session for a gated operation. An
// expired session is cleared together with any in-progress card, exactly
// as if EndSession had been called; the forfeited wager is not refunded.
func (st *PlayerState) gateSession(now time.Time) error {
	if st.Session == nil {
		return ErrNoSession
	}
	if st.Session.Expired(now) {
		st.clearSession()
		return ErrSessionExpired
	}
	return nil
}

func (st *PlayerState) clearSession() {
	st.Session = nil
	st.Card = nil
	st.Rolls = nil
	st.HasUnclaimedPrize = false
}

func (st *PlayerState) appendRoll(rec RollRecord) {
	st.Rolls = append(st.Rolls, rec)
	if len(st.Rolls) > RollHistoryLimit {
		st.Rolls = st.Rolls[len(st.Rolls)-RollHistoryLimit:]
	}
}
