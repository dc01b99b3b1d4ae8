package game

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/PhanTom497/Flashport/internal/bingo"
	"github.com/PhanTom497/Flashport/internal/engine"
	"github.com/PhanTom497/Flashport/internal/session"
)

type memStore struct {
	saved    map[string]*PlayerState
	failSave bool
	saves    int
}

func newMemStore() *memStore {
	return &memStore{saved: make(map[string]*PlayerState)}
}

func (m *memStore) LoadPlayer(_ context.Context, playerID string) (*PlayerState, error) {
	st, ok := m.saved[playerID]
	if !ok {
		return nil, nil
	}
	return st.Clone(), nil
}

func (m *memStore) SavePlayer(_ context.Context, st *PlayerState) error {
	if m.failSave {
		return errors.New("save failed")
	}
	m.saves++
	m.saved[st.PlayerID] = st.Clone()
	return nil
}

type testEnv struct {
	store *memStore
	now   time.Time
	ctrl  *Controller
}

func newEnv() *testEnv {
	env := &testEnv{
		store: newMemStore(),
		now:   time.Unix(1_700_000_000, 0),
	}
	env.ctrl = NewController(env.store, nil, Config{
		Now: func() time.Time { return env.now },
	})
	return env
}

func (env *testEnv) advance(d time.Duration) {
	env.now = env.now.Add(d)
}

// preload installs a crafted aggregate for a player.
func (env *testEnv) preload(st *PlayerState) {
	env.store.saved[st.PlayerID] = st
}

// craftedState builds an aggregate with fixed seeds, an open session, and
// the given balance, so tests can predict every draw.
func craftedState(playerID string, available int64, now time.Time) *PlayerState {
	s, _ := session.New("sess-crafted", now, time.Hour)
	st := &PlayerState{
		PlayerID:   playerID,
		Session:    s,
		ServerSeed: "test_server_seed",
		ClientSeed: playerID,
	}
	st.Balance.Deposit(available)
	return st
}

// findNonceWithSum scans the player's randomness stream for a nonce whose
// roll produces the wanted sum, mirroring how an auditor would replay it.
func findNonceWithSum(t *testing.T, seeds engine.Seeds, want int) uint64 {
	t.Helper()
	for nonce := uint64(1); nonce < 5000; nonce++ {
		if _, sum := bingo.RollDice(engine.NewByteGenerator(seeds, nonce)); sum == want {
			return nonce
		}
	}
	t.Fatalf("no nonce below 5000 produces sum %d", want)
	return 0
}

const tokens = 1_000_000 // micros per token

func TestScenarioDepositSessionNewGame(t *testing.T) {
	env := newEnv()
	ctx := context.Background()

	if _, err := env.ctrl.Deposit(ctx, "alice", 100*tokens); err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}
	if _, err := env.ctrl.StartSession(ctx, "alice", 3600*time.Second); err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}

	card, err := env.ctrl.NewGame(ctx, "alice", 5*tokens)
	if err != nil {
		t.Fatalf("NewGame failed: %v", err)
	}

	bal, _ := env.ctrl.Balance(ctx, "alice")
	if bal.Available != 95*tokens {
		t.Errorf("expected balance 95 tokens, got %d micros", bal.Available)
	}
	if len(card.Numbers) != bingo.CellCount {
		t.Errorf("expected 25 cells, got %d", len(card.Numbers))
	}
	if !card.Marked[bingo.FreeCellIndex] {
		t.Error("center cell must be pre-marked")
	}
	if card.RollsCount != 0 {
		t.Errorf("fresh card should have 0 rolls, got %d", card.RollsCount)
	}

	stats, _ := env.ctrl.Stats(ctx, "alice")
	if stats.TotalGames != 1 {
		t.Errorf("expected 1 game, got %d", stats.TotalGames)
	}
}

func TestScenarioLuckyRoll(t *testing.T) {
	env := newEnv()
	ctx := context.Background()

	st := craftedState("bob", 10*tokens, env.now)
	nonce := findNonceWithSum(t, st.seeds(), 17)
	st.Nonce = nonce - 1

	card := &bingo.Card{ID: "card-lucky", Wager: 5 * tokens}
	card.Numbers[bingo.FreeCellIndex] = bingo.FreeCellNumber
	card.Marked[bingo.FreeCellIndex] = true
	for i := range card.Numbers {
		if i != bingo.FreeCellIndex {
			card.Numbers[i] = 4
		}
	}
	// 17 at (1,3) and (4,0)
	card.Numbers[1*bingo.GridSize+3] = 17
	card.Numbers[4*bingo.GridSize+0] = 17
	st.Card = card
	env.preload(st)

	result, err := env.ctrl.RollAndMatch(ctx, "bob")
	if err != nil {
		t.Fatalf("RollAndMatch failed: %v", err)
	}
	if result.Sum != 17 {
		t.Fatalf("expected sum 17, got %d", result.Sum)
	}
	if !result.IsLucky || len(result.MatchedIndices) != 2 {
		t.Errorf("expected a lucky double match, got %+v", result)
	}

	last, _ := env.ctrl.LastRoll(ctx, "bob")
	if last == nil || !last.IsLucky {
		t.Errorf("last roll should report lucky, got %+v", last)
	}
}

func TestScenarioWinAndClaim(t *testing.T) {
	env := newEnv()
	ctx := context.Background()

	st := craftedState("carol", 10*tokens, env.now)
	winSum := 20
	nonce := findNonceWithSum(t, st.seeds(), winSum)
	st.Nonce = nonce - 1

	// Row 0 needs one more cell; six rolls already happened.
	card := &bingo.Card{ID: "card-win", Wager: 5 * tokens, RollsCount: 6}
	card.Numbers[bingo.FreeCellIndex] = bingo.FreeCellNumber
	card.Marked[bingo.FreeCellIndex] = true
	for i := range card.Numbers {
		if i != bingo.FreeCellIndex {
			card.Numbers[i] = 23
		}
	}
	for col := 0; col < bingo.GridSize-1; col++ {
		card.Numbers[col] = 4 + col
		card.Marked[col] = true
	}
	card.Numbers[bingo.GridSize-1] = winSum
	st.Card = card
	env.preload(st)

	result, err := env.ctrl.RollAndMatch(ctx, "carol")
	if err != nil {
		t.Fatalf("RollAndMatch failed: %v", err)
	}
	if !result.GameOver {
		t.Fatal("expected the roll to complete row 0")
	}
	if result.Line == nil || result.Line.Kind != bingo.LineRow || result.Line.Index != 0 {
		t.Errorf("expected row 0 win, got %+v", result.Line)
	}

	// Won after 7 total rolls with wager 5: LEGENDARY, 5 x 10 = 50.
	potential, _ := env.ctrl.PotentialPayout(ctx, "carol")
	if potential == nil || potential.Tier != "LEGENDARY" || potential.Amount != 50*tokens {
		t.Errorf("expected LEGENDARY 50 tokens, got %+v", potential)
	}

	before, _ := env.ctrl.Balance(ctx, "carol")
	payout, err := env.ctrl.ClaimPrize(ctx, "carol")
	if err != nil {
		t.Fatalf("ClaimPrize failed: %v", err)
	}
	if payout.Amount != 50*tokens {
		t.Errorf("expected payout 50 tokens, got %d micros", payout.Amount)
	}

	after, _ := env.ctrl.Balance(ctx, "carol")
	if after.Available != before.Available+50*tokens {
		t.Errorf("balance not credited: before %d, after %d", before.Available, after.Available)
	}
	if after.TotalWon != 50*tokens {
		t.Errorf("expected TotalWon 50 tokens, got %d", after.TotalWon)
	}

	// Exactly once.
	if _, err := env.ctrl.ClaimPrize(ctx, "carol"); !errors.Is(err, ErrAlreadyClaimed) {
		t.Errorf("expected ErrAlreadyClaimed, got %v", err)
	}
	if _, err := env.ctrl.RollAndMatch(ctx, "carol"); !errors.Is(err, ErrGameAlreadyOver) {
		t.Errorf("expected ErrGameAlreadyOver after claim, got %v", err)
	}

	stats, _ := env.ctrl.Stats(ctx, "carol")
	if stats.TotalWins != 1 {
		t.Errorf("expected 1 win, got %d", stats.TotalWins)
	}
}

func TestScenarioClaimWithoutWin(t *testing.T) {
	env := newEnv()
	ctx := context.Background()

	env.ctrl.Deposit(ctx, "dave", 100*tokens)
	env.ctrl.StartSession(ctx, "dave", time.Hour)
	env.ctrl.NewGame(ctx, "dave", 5*tokens)

	before, _ := env.ctrl.Balance(ctx, "dave")
	if _, err := env.ctrl.ClaimPrize(ctx, "dave"); !errors.Is(err, ErrNoPendingPrize) {
		t.Errorf("expected ErrNoPendingPrize, got %v", err)
	}
	after, _ := env.ctrl.Balance(ctx, "dave")
	if before != after {
		t.Errorf("failed claim must not change balance: %+v vs %+v", before, after)
	}
}

func TestScenarioSessionExpiry(t *testing.T) {
	env := newEnv()
	ctx := context.Background()

	env.ctrl.Deposit(ctx, "erin", 100*tokens)
	env.ctrl.StartSession(ctx, "erin", 10*time.Second)
	env.ctrl.NewGame(ctx, "erin", 5*tokens)

	before, _ := env.ctrl.Balance(ctx, "erin")
	env.advance(11 * time.Second)

	if _, err := env.ctrl.RollAndMatch(ctx, "erin"); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}

	// Session and card are gone, no fee was charged.
	if s, _ := env.ctrl.Session(ctx, "erin"); s != nil {
		t.Error("session should be absent after expiry")
	}
	if card, _ := env.ctrl.CurrentCard(ctx, "erin"); card != nil {
		t.Error("card should be forfeited after expiry")
	}
	after, _ := env.ctrl.Balance(ctx, "erin")
	if before != after {
		t.Errorf("expired roll must not charge a fee: %+v vs %+v", before, after)
	}
}

func TestScenarioWagerBelowMinimum(t *testing.T) {
	env := newEnv()
	ctx := context.Background()

	env.ctrl.Deposit(ctx, "frank", 100*tokens)
	env.ctrl.StartSession(ctx, "frank", time.Hour)

	before, _ := env.ctrl.Balance(ctx, "frank")
	if _, err := env.ctrl.NewGame(ctx, "frank", tokens/2); !errors.Is(err, ErrInvalidWager) {
		t.Errorf("expected ErrInvalidWager for 0.5 tokens, got %v", err)
	}
	after, _ := env.ctrl.Balance(ctx, "frank")
	if before != after {
		t.Errorf("failed wager must not change balance")
	}
	if card, _ := env.ctrl.CurrentCard(ctx, "frank"); card != nil {
		t.Error("no card should exist after a rejected wager")
	}
}

func TestNewGameWagerValidation(t *testing.T) {
	env := newEnv()
	ctx := context.Background()

	env.ctrl.Deposit(ctx, "gina", 10*tokens)
	env.ctrl.StartSession(ctx, "gina", time.Hour)

	tests := []struct {
		name  string
		wager int64
	}{
		{"below minimum", bingo.MinBet - 1},
		{"above maximum", bingo.MaxBet + 1},
		{"exceeds balance", 50 * tokens},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := env.ctrl.NewGame(ctx, "gina", tt.wager); !errors.Is(err, ErrInvalidWager) {
				t.Errorf("expected ErrInvalidWager, got %v", err)
			}
		})
	}
}

func TestNewGameRequiresSession(t *testing.T) {
	env := newEnv()
	ctx := context.Background()

	env.ctrl.Deposit(ctx, "henry", 100*tokens)
	if _, err := env.ctrl.NewGame(ctx, "henry", 5*tokens); !errors.Is(err, ErrNoSession) {
		t.Errorf("expected ErrNoSession, got %v", err)
	}
}

func TestStartSessionWhileActive(t *testing.T) {
	env := newEnv()
	ctx := context.Background()

	if _, err := env.ctrl.StartSession(ctx, "iris", time.Hour); err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	if _, err := env.ctrl.StartSession(ctx, "iris", time.Hour); !errors.Is(err, ErrSessionAlreadyActive) {
		t.Errorf("expected ErrSessionAlreadyActive, got %v", err)
	}

	// After expiry the stale session is swept and a new one opens.
	env.advance(2 * time.Hour)
	if _, err := env.ctrl.StartSession(ctx, "iris", time.Hour); err != nil {
		t.Errorf("StartSession after expiry failed: %v", err)
	}
}

func TestStartSessionInvalidTTL(t *testing.T) {
	env := newEnv()
	ctx := context.Background()

	if _, err := env.ctrl.StartSession(ctx, "judy", 0); !errors.Is(err, session.ErrInvalidTTL) {
		t.Errorf("expected ErrInvalidTTL, got %v", err)
	}

	capped := NewController(env.store, nil, Config{
		MaxSessionTTL: time.Hour,
		Now:           func() time.Time { return env.now },
	})
	if _, err := capped.StartSession(ctx, "judy", 2*time.Hour); !errors.Is(err, session.ErrInvalidTTL) {
		t.Errorf("expected ErrInvalidTTL above the cap, got %v", err)
	}
}

func TestEndSessionForfeitsCard(t *testing.T) {
	env := newEnv()
	ctx := context.Background()

	env.ctrl.Deposit(ctx, "kate", 100*tokens)
	env.ctrl.StartSession(ctx, "kate", time.Hour)
	env.ctrl.NewGame(ctx, "kate", 5*tokens)

	if err := env.ctrl.EndSession(ctx, "kate"); err != nil {
		t.Fatalf("EndSession failed: %v", err)
	}

	if s, _ := env.ctrl.Session(ctx, "kate"); s != nil {
		t.Error("session should be gone")
	}
	if card, _ := env.ctrl.CurrentCard(ctx, "kate"); card != nil {
		t.Error("card should be forfeited")
	}

	// The wager stays spent: no refund.
	bal, _ := env.ctrl.Balance(ctx, "kate")
	if bal.Available != 95*tokens {
		t.Errorf("expected 95 tokens after forfeit, got %d micros", bal.Available)
	}

	if err := env.ctrl.EndSession(ctx, "kate"); !errors.Is(err, ErrNoSession) {
		t.Errorf("expected ErrNoSession, got %v", err)
	}
}

func TestRollFeeChargedOnMiss(t *testing.T) {
	env := newEnv()
	ctx := context.Background()

	st := craftedState("liam", 10*tokens, env.now)

	// Whatever sum nonce 1 produces, fill the card with a different value
	// so the roll cannot match.
	_, sum := bingo.RollDice(engine.NewByteGenerator(st.seeds(), 1))
	miss := bingo.MinCellNumber
	if miss == sum {
		miss++
	}
	card := &bingo.Card{ID: "card-miss", Wager: 5 * tokens}
	card.Numbers[bingo.FreeCellIndex] = bingo.FreeCellNumber
	card.Marked[bingo.FreeCellIndex] = true
	for i := range card.Numbers {
		if i != bingo.FreeCellIndex {
			card.Numbers[i] = miss
		}
	}
	st.Card = card
	env.preload(st)

	before, _ := env.ctrl.Balance(ctx, "liam")
	result, err := env.ctrl.RollAndMatch(ctx, "liam")
	if err != nil {
		t.Fatalf("RollAndMatch failed: %v", err)
	}
	if result.Matched {
		t.Fatalf("expected a miss for sum %d", result.Sum)
	}

	after, _ := env.ctrl.Balance(ctx, "liam")
	if after.Available != before.Available-bingo.RollCost {
		t.Errorf("a miss must still cost the roll fee")
	}

	crd, _ := env.ctrl.CurrentCard(ctx, "liam")
	if crd.RollsCount != 1 {
		t.Errorf("a miss must still count as a roll, got %d", crd.RollsCount)
	}
	if crd.TotalRollFees != bingo.RollCost {
		t.Errorf("expected accumulated fees %d, got %d", bingo.RollCost, crd.TotalRollFees)
	}
}

func TestRollWithoutCard(t *testing.T) {
	env := newEnv()
	ctx := context.Background()

	env.ctrl.StartSession(ctx, "mara", time.Hour)
	if _, err := env.ctrl.RollAndMatch(ctx, "mara"); !errors.Is(err, ErrNoActiveCard) {
		t.Errorf("expected ErrNoActiveCard, got %v", err)
	}
}

func TestRollInsufficientFunds(t *testing.T) {
	env := newEnv()
	ctx := context.Background()

	st := craftedState("nina", bingo.RollCost-1, env.now)
	card := &bingo.Card{ID: "card-poor", Wager: 5 * tokens}
	card.Numbers[bingo.FreeCellIndex] = bingo.FreeCellNumber
	card.Marked[bingo.FreeCellIndex] = true
	st.Card = card
	env.preload(st)

	if _, err := env.ctrl.RollAndMatch(ctx, "nina"); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	crd, _ := env.ctrl.CurrentCard(ctx, "nina")
	if crd.RollsCount != 0 {
		t.Errorf("failed roll must not count, got %d", crd.RollsCount)
	}
}

func TestPersistFailureLeavesStateUntouched(t *testing.T) {
	env := newEnv()
	ctx := context.Background()

	env.ctrl.Deposit(ctx, "olaf", 100*tokens)
	env.store.failSave = true

	if _, err := env.ctrl.Deposit(ctx, "olaf", 50*tokens); err == nil {
		t.Fatal("expected persistence failure to surface")
	}

	env.store.failSave = false
	bal, _ := env.ctrl.Balance(ctx, "olaf")
	if bal.Available != 100*tokens {
		t.Errorf("failed operation must not change state, got %d micros", bal.Available)
	}
}

func TestDrawnNumbersSortedDistinct(t *testing.T) {
	env := newEnv()
	ctx := context.Background()

	env.ctrl.Deposit(ctx, "pia", 100*tokens)
	env.ctrl.StartSession(ctx, "pia", time.Hour)
	env.ctrl.NewGame(ctx, "pia", 5*tokens)

	for i := 0; i < 15; i++ {
		if _, err := env.ctrl.RollAndMatch(ctx, "pia"); err != nil {
			// A random card may finish early; that still leaves history.
			break
		}
	}

	drawn, _ := env.ctrl.DrawnNumbers(ctx, "pia")
	seen := make(map[int]bool)
	for i, sum := range drawn {
		if sum < bingo.DiceCount || sum > bingo.DiceCount*bingo.DieFaces {
			t.Errorf("drawn sum %d out of range", sum)
		}
		if seen[sum] {
			t.Errorf("duplicate drawn sum %d", sum)
		}
		seen[sum] = true
		if i > 0 && drawn[i-1] >= sum {
			t.Errorf("drawn numbers not strictly ascending: %v", drawn)
		}
	}
}

func TestRollHistoryCap(t *testing.T) {
	env := newEnv()
	ctx := context.Background()

	st := craftedState("quin", 100*tokens, env.now)
	st.Nonce = 100

	// Pick a fill value whose sum never occurs in the next 60 rolls so the
	// card cannot finish mid-test.
	upcoming := make(map[int]bool)
	for n := uint64(101); n <= 160; n++ {
		_, sum := bingo.RollDice(engine.NewByteGenerator(st.seeds(), n))
		upcoming[sum] = true
	}
	fill := -1
	for v := bingo.MinCellNumber; v <= bingo.MaxCellNumber; v++ {
		if !upcoming[v] {
			fill = v
			break
		}
	}
	if fill < 0 {
		t.Fatal("every possible sum occurs in the window; pick different seeds")
	}

	card := &bingo.Card{ID: "card-cap", Wager: 5 * tokens}
	card.Numbers[bingo.FreeCellIndex] = bingo.FreeCellNumber
	card.Marked[bingo.FreeCellIndex] = true
	for i := range card.Numbers {
		if i != bingo.FreeCellIndex {
			card.Numbers[i] = fill
		}
	}
	st.Card = card
	env.preload(st)

	for i := 0; i < 60; i++ {
		if _, err := env.ctrl.RollAndMatch(ctx, "quin"); err != nil {
			t.Fatalf("roll %d failed: %v", i, err)
		}
	}

	stats, _ := env.ctrl.Stats(ctx, "quin")
	if stats.RollHistoryLen != RollHistoryLimit {
		t.Errorf("expected history capped at %d, got %d", RollHistoryLimit, stats.RollHistoryLen)
	}
}

func TestQueriesIdempotent(t *testing.T) {
	env := newEnv()
	ctx := context.Background()

	env.ctrl.Deposit(ctx, "rosa", 100*tokens)
	env.ctrl.StartSession(ctx, "rosa", time.Hour)
	env.ctrl.NewGame(ctx, "rosa", 5*tokens)
	env.ctrl.RollAndMatch(ctx, "rosa")

	b1, _ := env.ctrl.Balance(ctx, "rosa")
	b2, _ := env.ctrl.Balance(ctx, "rosa")
	if b1 != b2 {
		t.Error("Balance query is not idempotent")
	}

	c1, _ := env.ctrl.CurrentCard(ctx, "rosa")
	c2, _ := env.ctrl.CurrentCard(ctx, "rosa")
	if *c1 != *c2 {
		t.Error("CurrentCard query is not idempotent")
	}

	s1, _ := env.ctrl.Stats(ctx, "rosa")
	s2, _ := env.ctrl.Stats(ctx, "rosa")
	if s1 != s2 {
		t.Error("Stats query is not idempotent")
	}
}

func TestFairness(t *testing.T) {
	env := newEnv()
	ctx := context.Background()

	f1, err := env.ctrl.Fairness(ctx, "sven")
	if err != nil {
		t.Fatalf("Fairness failed: %v", err)
	}
	if len(f1.ServerSeedHash) != 64 {
		t.Errorf("expected 64-char seed hash, got %q", f1.ServerSeedHash)
	}
	if f1.ClientSeed != "sven" {
		t.Errorf("expected client seed 'sven', got %q", f1.ClientSeed)
	}

	env.ctrl.Deposit(ctx, "sven", 100*tokens)
	env.ctrl.StartSession(ctx, "sven", time.Hour)
	env.ctrl.NewGame(ctx, "sven", 5*tokens)

	f2, _ := env.ctrl.Fairness(ctx, "sven")
	if f2.ServerSeedHash != f1.ServerSeedHash {
		t.Error("seed hash must be stable across operations")
	}
	if f2.Nonce != f1.Nonce+1 {
		t.Errorf("dealing a card must advance the nonce once: %d -> %d", f1.Nonce, f2.Nonce)
	}
}

func TestDeterministicReplay(t *testing.T) {
	run := func() ([bingo.CellCount]int, []int) {
		env := newEnv()
		ctx := context.Background()

		st := craftedState("tess", 100*tokens, env.now)
		env.preload(st)

		card, err := env.ctrl.NewGame(ctx, "tess", 5*tokens)
		if err != nil {
			t.Fatalf("NewGame failed: %v", err)
		}

		var sums []int
		for i := 0; i < 10; i++ {
			result, err := env.ctrl.RollAndMatch(ctx, "tess")
			if err != nil {
				break
			}
			sums = append(sums, result.Sum)
		}
		return card.Numbers, sums
	}

	numbersA, sumsA := run()
	numbersB, sumsB := run()

	if numbersA != numbersB {
		t.Error("identical seeds must deal identical cards")
	}
	if len(sumsA) != len(sumsB) {
		t.Fatalf("replay produced different roll counts: %d vs %d", len(sumsA), len(sumsB))
	}
	for i := range sumsA {
		if sumsA[i] != sumsB[i] {
			t.Errorf("roll %d diverged: %d vs %d", i, sumsA[i], sumsB[i])
		}
	}
}

func TestWithdraw(t *testing.T) {
	env := newEnv()
	ctx := context.Background()

	env.ctrl.Deposit(ctx, "uma", 100*tokens)

	bal, err := env.ctrl.Withdraw(ctx, "uma", 30*tokens)
	if err != nil {
		t.Fatalf("Withdraw failed: %v", err)
	}
	if bal.Available != 70*tokens || bal.TotalPaidOut != 30*tokens {
		t.Errorf("unexpected balance after withdraw: %+v", bal)
	}

	if _, err := env.ctrl.Withdraw(ctx, "uma", 200*tokens); !errors.Is(err, ErrInsufficientFunds) {
		t.Errorf("expected ErrInsufficientFunds, got %v", err)
	}
}

func TestNewGameReplacesCard(t *testing.T) {
	env := newEnv()
	ctx := context.Background()

	env.ctrl.Deposit(ctx, "vera", 100*tokens)
	env.ctrl.StartSession(ctx, "vera", time.Hour)

	first, _ := env.ctrl.NewGame(ctx, "vera", 5*tokens)
	second, err := env.ctrl.NewGame(ctx, "vera", 10*tokens)
	if err != nil {
		t.Fatalf("replacing NewGame failed: %v", err)
	}
	if first.ID == second.ID {
		t.Error("replacement card must have a new identity")
	}

	// Both wagers are spent; the first is forfeited.
	bal, _ := env.ctrl.Balance(ctx, "vera")
	if bal.Available != 85*tokens {
		t.Errorf("expected 85 tokens, got %d micros", bal.Available)
	}

	card, _ := env.ctrl.CurrentCard(ctx, "vera")
	if card.ID != second.ID || card.Wager != 10*tokens {
		t.Errorf("current card should be the replacement: %+v", card)
	}
}
