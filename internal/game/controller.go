// Package game implements the authoritative per-player state machine: it
// owns funds escrow, card lifecycle, roll resolution, win detection, and
// payouts, and exposes the operation and read-model surfaces.
package game

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/PhanTom497/Flashport/internal/bingo"
	"github.com/PhanTom497/Flashport/internal/ledger"
	"github.com/PhanTom497/Flashport/internal/session"
)

// Store persists player aggregates. LoadPlayer returns (nil, nil) for an
// unknown player; SavePlayer writes the whole aggregate atomically.
type Store interface {
	LoadPlayer(ctx context.Context, playerID string) (*PlayerState, error)
	SavePlayer(ctx context.Context, state *PlayerState) error
}

// Config tunes the controller.
type Config struct {
	// MaxSessionTTL bounds StartSession lifetimes. Zero means no bound.
	MaxSessionTTL time.Duration
	// Now overrides the clock, for tests. Defaults to time.Now.
	Now func() time.Time
}

// Controller linearizes all operations for a given player behind an
// exclusive per-player lock: no two operations against the same player's
// state ever execute concurrently.
type Controller struct {
	store  Store
	logger *log.Logger
	now    func() time.Time
	maxTTL time.Duration

	mu      sync.Mutex
	players map[string]*playerSlot
}

type playerSlot struct {
	mu     sync.Mutex
	state  *PlayerState
	loaded bool
}

// NewController creates a controller over the given store.
func NewController(store Store, logger *log.Logger, cfg Config) *Controller {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Controller{
		store:   store,
		logger:  logger,
		now:     now,
		maxTTL:  cfg.MaxSessionTTL,
		players: make(map[string]*playerSlot),
	}
}

func (c *Controller) slot(playerID string) *playerSlot {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.players[playerID]
	if !ok {
		s = &playerSlot{}
		c.players[playerID] = s
	}
	return s
}

// loadLocked returns the cached aggregate, reading through to the store on
// first access. The slot lock must be held.
func (c *Controller) loadLocked(ctx context.Context, slot *playerSlot, playerID string) (*PlayerState, error) {
	if slot.loaded {
		return slot.state, nil
	}
	st, err := c.store.LoadPlayer(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("load player %s: %w", playerID, err)
	}
	if st == nil {
		st, err = NewPlayerState(playerID)
		if err != nil {
			return nil, err
		}
	}
	slot.state = st
	slot.loaded = true
	return st, nil
}

// update runs fn against a clone of the player's aggregate. When fn asks to
// commit, the clone is persisted first and swapped in only on success, so
// every operation either fully applies or leaves no trace. fn may commit
// and still return an operation error (session expiry cleanup does).
func (c *Controller) update(ctx context.Context, playerID string, fn func(st *PlayerState) (commit bool, err error)) error {
	slot := c.slot(playerID)
	slot.mu.Lock()
	defer slot.mu.Unlock()

	st, err := c.loadLocked(ctx, slot, playerID)
	if err != nil {
		return err
	}

	next := st.Clone()
	commit, opErr := fn(next)
	if commit {
		if err := c.store.SavePlayer(ctx, next); err != nil {
			return fmt.Errorf("persist player %s: %w", playerID, err)
		}
		slot.state = next
	}
	return opErr
}

// view runs fn against the player's aggregate read-only. Queries never
// mutate: an expired session is filtered per read, not cleared.
func (c *Controller) view(ctx context.Context, playerID string, fn func(st *PlayerState)) error {
	slot := c.slot(playerID)
	slot.mu.Lock()
	defer slot.mu.Unlock()

	st, err := c.loadLocked(ctx, slot, playerID)
	if err != nil {
		return err
	}
	fn(st)
	return nil
}

// Deposit adds external funds to the player's balance.
func (c *Controller) Deposit(ctx context.Context, playerID string, amount int64) (ledger.Balance, error) {
	var out ledger.Balance
	err := c.update(ctx, playerID, func(st *PlayerState) (bool, error) {
		if err := st.Balance.Deposit(amount); err != nil {
			return false, err
		}
		out = st.Balance
		return true, nil
	})
	if err == nil {
		c.logf("deposit player=%s amount=%d available=%d", playerID, amount, out.Available)
	}
	return out, err
}

// Withdraw pays out available funds.
func (c *Controller) Withdraw(ctx context.Context, playerID string, amount int64) (ledger.Balance, error) {
	var out ledger.Balance
	err := c.update(ctx, playerID, func(st *PlayerState) (bool, error) {
		if err := st.Balance.Withdraw(amount); err != nil {
			return false, err
		}
		out = st.Balance
		return true, nil
	})
	if err == nil {
		c.logf("withdraw player=%s amount=%d available=%d", playerID, amount, out.Available)
	}
	return out, err
}

// StartSession opens a new play window. Starting while a session is active
// is rejected, not replaced; an already-expired session is swept first.
func (c *Controller) StartSession(ctx context.Context, playerID string, ttl time.Duration) (*session.Session, error) {
	if ttl <= 0 || (c.maxTTL > 0 && ttl > c.maxTTL) {
		return nil, session.ErrInvalidTTL
	}

	var out *session.Session
	err := c.update(ctx, playerID, func(st *PlayerState) (bool, error) {
		now := c.now()
		if st.Session != nil {
			if !st.Session.Expired(now) {
				return false, ErrSessionAlreadyActive
			}
			st.clearSession()
		}

		s, err := session.New(uuid.NewString(), now, ttl)
		if err != nil {
			return false, err
		}
		st.Session = s
		out = s.Clone()
		return true, nil
	})
	if err == nil {
		c.logf("session_started player=%s session=%s expires_at=%s", playerID, out.ID, out.ExpiresAt.UTC().Format(time.RFC3339))
	}
	return out, err
}

// EndSession closes the active session and forfeits any in-progress
// unclaimed card; the wager was already debited and is not refunded.
func (c *Controller) EndSession(ctx context.Context, playerID string) error {
	err := c.update(ctx, playerID, func(st *PlayerState) (bool, error) {
		if st.Session == nil {
			return false, ErrNoSession
		}
		if st.Session.Expired(c.now()) {
			st.clearSession()
			return true, ErrNoSession
		}
		st.clearSession()
		return true, nil
	})
	if err == nil {
		c.logf("session_ended player=%s", playerID)
	}
	return err
}

// NewGame debits the wager and deals a fresh card, replacing any current
// card. A replaced card's wager and any unclaimed prize are forfeited.
func (c *Controller) NewGame(ctx context.Context, playerID string, wager int64) (*bingo.Card, error) {
	var out *bingo.Card
	err := c.update(ctx, playerID, func(st *PlayerState) (bool, error) {
		if err := st.gateSession(c.now()); err != nil {
			// Expiry cleanup commits even though the call fails.
			return errors.Is(err, ErrSessionExpired), err
		}

		if wager < bingo.MinBet || wager > bingo.MaxBet || wager > st.Balance.Available {
			return false, ErrInvalidWager
		}
		if err := st.Balance.Debit(wager); err != nil {
			return false, err
		}

		card := bingo.GenerateCard(uuid.NewString(), st.nextSource())
		card.Wager = wager

		st.Card = card
		st.Rolls = nil
		st.HasUnclaimedPrize = false
		st.TotalGames++
		st.Session.Touch()

		out = card.Clone()
		return true, nil
	})
	if err == nil {
		c.logf("game_started player=%s card=%s wager=%d", playerID, out.ID, wager)
	}
	return out, err
}

// RollAndMatch is the core atomic step: debit the roll fee, roll four dice,
// mark every matching cell, and check for a completed line. The fee is
// charged unconditionally once the roll is accepted, even when the sum
// cannot mark any cell.
func (c *Controller) RollAndMatch(ctx context.Context, playerID string) (bingo.RollResult, error) {
	var out bingo.RollResult
	err := c.update(ctx, playerID, func(st *PlayerState) (bool, error) {
		now := c.now()
		if err := st.gateSession(now); err != nil {
			// Expiry cleanup commits even though the call fails.
			return errors.Is(err, ErrSessionExpired), err
		}

		if st.Card == nil {
			return false, ErrNoActiveCard
		}
		if st.Card.PrizeClaimed || st.HasUnclaimedPrize {
			return false, ErrGameAlreadyOver
		}
		if err := st.Balance.Debit(bingo.RollCost); err != nil {
			return false, err
		}

		result := st.Card.Roll(st.nextSource())
		st.Card.TotalRollFees += bingo.RollCost

		if result.GameOver {
			st.TotalWins++
			st.HasUnclaimedPrize = true
		}

		st.appendRoll(RollRecord{
			Dice:     result.Dice,
			Sum:      result.Sum,
			Matched:  result.Matched,
			IsLucky:  result.IsLucky,
			Fee:      bingo.RollCost,
			RolledAt: now,
		})
		st.Session.Touch()

		out = result
		return true, nil
	})
	if err == nil {
		c.logf("roll player=%s sum=%d matched=%v lucky=%v game_over=%v", playerID, out.Sum, out.Matched, out.IsLucky, out.GameOver)
	}
	return out, err
}

// ClaimPrize credits the payout for a won card exactly once. The card stays
// in place marked claimed until the next game replaces it.
func (c *Controller) ClaimPrize(ctx context.Context, playerID string) (bingo.Payout, error) {
	var out bingo.Payout
	err := c.update(ctx, playerID, func(st *PlayerState) (bool, error) {
		if err := st.gateSession(c.now()); err != nil {
			// Expiry cleanup commits even though the call fails.
			return errors.Is(err, ErrSessionExpired), err
		}

		if st.Card == nil {
			return false, ErrNoPendingPrize
		}
		if st.Card.PrizeClaimed {
			return false, ErrAlreadyClaimed
		}
		if !st.HasUnclaimedPrize {
			return false, ErrNoPendingPrize
		}

		payout := bingo.ComputePayout(st.Card.Wager, st.Card.RollsCount)
		if err := st.Balance.Credit(payout.Amount); err != nil {
			return false, err
		}

		st.Card.PrizeClaimed = true
		st.HasUnclaimedPrize = false
		st.Session.Touch()

		out = payout
		return true, nil
	})
	if err == nil {
		c.logf("prize_claimed player=%s amount=%d tier=%s rolls=%d", playerID, out.Amount, out.Tier, out.RollsCount)
	}
	return out, err
}

func (c *Controller) logf(format string, args ...any) {
	if c.logger != nil {
		c.logger.Printf(format, args...)
	}
}
