package game

import (
	"context"
	"sort"
	"time"

	"github.com/PhanTom497/Flashport/internal/bingo"
	"github.com/PhanTom497/Flashport/internal/engine"
	"github.com/PhanTom497/Flashport/internal/ledger"
	"github.com/PhanTom497/Flashport/internal/session"
)

// All queries are side-effect free and idempotent: calling any of them
// twice with no intervening mutation returns identical results. An expired
// session is reported as absent without being cleared.

// LastRoll is the most recent roll in the player's history.
type LastRoll struct {
	Dice     [bingo.DiceCount]int `json:"dice"`
	Sum      int                  `json:"sum"`
	Matched  bool                 `json:"matched"`
	IsLucky  bool                 `json:"is_lucky"`
	GameOver bool                 `json:"game_over"`
	RolledAt time.Time            `json:"rolled_at"`
}

// Stats is a lifetime counters snapshot.
type Stats struct {
	TotalGames     uint64  `json:"total_games"`
	TotalWins      uint64  `json:"total_wins"`
	WinRate        float64 `json:"win_rate"`
	RollHistoryLen int     `json:"roll_history_len"`
}

// Fairness exposes what a player needs to audit the randomness stream:
// the server seed hash, their client seed, and the current nonce. The raw
// server seed never leaves the engine.
type Fairness struct {
	ServerSeedHash string `json:"server_seed_hash"`
	ClientSeed     string `json:"client_seed"`
	Nonce          uint64 `json:"nonce"`
}

// Session returns the active session, or nil when absent or expired.
func (c *Controller) Session(ctx context.Context, playerID string) (*session.Session, error) {
	var out *session.Session
	err := c.view(ctx, playerID, func(st *PlayerState) {
		if st.Session != nil && !st.Session.Expired(c.now()) {
			out = st.Session.Clone()
		}
	})
	return out, err
}

// CurrentCard returns the current card, or nil when none exists.
func (c *Controller) CurrentCard(ctx context.Context, playerID string) (*bingo.Card, error) {
	var out *bingo.Card
	err := c.view(ctx, playerID, func(st *PlayerState) {
		out = st.Card.Clone()
	})
	return out, err
}

// DrawnNumbers returns the sorted distinct dice sums rolled in the current
// card's lifetime.
func (c *Controller) DrawnNumbers(ctx context.Context, playerID string) ([]int, error) {
	var out []int
	err := c.view(ctx, playerID, func(st *PlayerState) {
		seen := make(map[int]bool, len(st.Rolls))
		for _, r := range st.Rolls {
			if !seen[r.Sum] {
				seen[r.Sum] = true
				out = append(out, r.Sum)
			}
		}
		sort.Ints(out)
	})
	return out, err
}

// LastRoll returns the most recent roll, or nil when none has been made.
func (c *Controller) LastRoll(ctx context.Context, playerID string) (*LastRoll, error) {
	var out *LastRoll
	err := c.view(ctx, playerID, func(st *PlayerState) {
		if len(st.Rolls) == 0 {
			return
		}
		rec := st.Rolls[len(st.Rolls)-1]
		out = &LastRoll{
			Dice:     rec.Dice,
			Sum:      rec.Sum,
			Matched:  rec.Matched,
			IsLucky:  rec.IsLucky,
			GameOver: st.HasUnclaimedPrize,
			RolledAt: rec.RolledAt,
		}
	})
	return out, err
}

// PotentialPayout returns the payout the current card would earn if claimed
// now (or at its win), or nil when no card exists.
func (c *Controller) PotentialPayout(ctx context.Context, playerID string) (*bingo.Payout, error) {
	var out *bingo.Payout
	err := c.view(ctx, playerID, func(st *PlayerState) {
		if st.Card == nil {
			return
		}
		p := bingo.ComputePayout(st.Card.Wager, st.Card.RollsCount)
		out = &p
	})
	return out, err
}

// Balance returns the player's fund state.
func (c *Controller) Balance(ctx context.Context, playerID string) (ledger.Balance, error) {
	var out ledger.Balance
	err := c.view(ctx, playerID, func(st *PlayerState) {
		out = st.Balance
	})
	return out, err
}

// HasUnclaimedPrize reports whether a won card awaits its claim.
func (c *Controller) HasUnclaimedPrize(ctx context.Context, playerID string) (bool, error) {
	var out bool
	err := c.view(ctx, playerID, func(st *PlayerState) {
		out = st.HasUnclaimedPrize
	})
	return out, err
}

// Stats returns lifetime counters.
func (c *Controller) Stats(ctx context.Context, playerID string) (Stats, error) {
	var out Stats
	err := c.view(ctx, playerID, func(st *PlayerState) {
		out = Stats{
			TotalGames:     st.TotalGames,
			TotalWins:      st.TotalWins,
			RollHistoryLen: len(st.Rolls),
		}
		if st.TotalGames > 0 {
			out.WinRate = float64(st.TotalWins) / float64(st.TotalGames) * 100
		}
	})
	return out, err
}

// Fairness returns the provably-fair audit data for the player.
func (c *Controller) Fairness(ctx context.Context, playerID string) (Fairness, error) {
	var out Fairness
	err := c.view(ctx, playerID, func(st *PlayerState) {
		out = Fairness{
			ServerSeedHash: engine.SeedHash(st.ServerSeed),
			ClientSeed:     st.ClientSeed,
			Nonce:          st.Nonce,
		}
	})
	return out, err
}
