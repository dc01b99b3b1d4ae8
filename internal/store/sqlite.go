// Package store persists player aggregates in SQLite. Each save writes the
// whole aggregate in one transaction, so readers never observe a balance
// without the card and roll history that produced it.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/PhanTom497/Flashport/internal/bingo"
	"github.com/PhanTom497/Flashport/internal/game"
	"github.com/PhanTom497/Flashport/internal/ledger"
	"github.com/PhanTom497/Flashport/internal/session"
)

// SQLiteStore implements game.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// Open creates a new SQLite database connection.
func Open(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Migrate runs database migrations.
func (s *SQLiteStore) Migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS players (
			player_id TEXT PRIMARY KEY,
			available INTEGER NOT NULL DEFAULT 0,
			total_deposited INTEGER NOT NULL DEFAULT 0,
			total_won INTEGER NOT NULL DEFAULT 0,
			total_spent INTEGER NOT NULL DEFAULT 0,
			total_paid_out INTEGER NOT NULL DEFAULT 0,
			session_id TEXT,
			session_created_at INTEGER,
			session_expires_at INTEGER,
			session_ops INTEGER NOT NULL DEFAULT 0,
			card_json TEXT,
			has_unclaimed_prize INTEGER NOT NULL DEFAULT 0,
			total_games INTEGER NOT NULL DEFAULT 0,
			total_wins INTEGER NOT NULL DEFAULT 0,
			server_seed TEXT NOT NULL,
			client_seed TEXT NOT NULL,
			nonce INTEGER NOT NULL DEFAULT 0,
			updated_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS rolls (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			player_id TEXT NOT NULL,
			dice_json TEXT NOT NULL,
			sum INTEGER NOT NULL,
			matched INTEGER NOT NULL DEFAULT 0,
			is_lucky INTEGER NOT NULL DEFAULT 0,
			fee INTEGER NOT NULL,
			rolled_at INTEGER NOT NULL,
			FOREIGN KEY (player_id) REFERENCES players(player_id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_rolls_player_id ON rolls(player_id)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}

// SavePlayer writes the full aggregate in one transaction, replacing the
// previous row and the player's roll history.
func (s *SQLiteStore) SavePlayer(ctx context.Context, st *game.PlayerState) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var sessionID sql.NullString
	var sessionCreated, sessionExpires sql.NullInt64
	var sessionOps uint64
	if st.Session != nil {
		sessionID = sql.NullString{String: st.Session.ID, Valid: true}
		sessionCreated = sql.NullInt64{Int64: st.Session.CreatedAt.UnixNano(), Valid: true}
		sessionExpires = sql.NullInt64{Int64: st.Session.ExpiresAt.UnixNano(), Valid: true}
		sessionOps = st.Session.OperationsCount
	}

	var cardJSON sql.NullString
	if st.Card != nil {
		raw, err := json.Marshal(st.Card)
		if err != nil {
			return fmt.Errorf("failed to encode card: %w", err)
		}
		cardJSON = sql.NullString{String: string(raw), Valid: true}
	}

	query := `INSERT INTO players (
		player_id, available, total_deposited, total_won, total_spent, total_paid_out,
		session_id, session_created_at, session_expires_at, session_ops,
		card_json, has_unclaimed_prize, total_games, total_wins,
		server_seed, client_seed, nonce, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(player_id) DO UPDATE SET
		available = excluded.available,
		total_deposited = excluded.total_deposited,
		total_won = excluded.total_won,
		total_spent = excluded.total_spent,
		total_paid_out = excluded.total_paid_out,
		session_id = excluded.session_id,
		session_created_at = excluded.session_created_at,
		session_expires_at = excluded.session_expires_at,
		session_ops = excluded.session_ops,
		card_json = excluded.card_json,
		has_unclaimed_prize = excluded.has_unclaimed_prize,
		total_games = excluded.total_games,
		total_wins = excluded.total_wins,
		server_seed = excluded.server_seed,
		client_seed = excluded.client_seed,
		nonce = excluded.nonce,
		updated_at = excluded.updated_at`

	_, err = tx.ExecContext(ctx, query,
		st.PlayerID, st.Balance.Available, st.Balance.TotalDeposited,
		st.Balance.TotalWon, st.Balance.TotalSpent, st.Balance.TotalPaidOut,
		sessionID, sessionCreated, sessionExpires, sessionOps,
		cardJSON, boolToInt(st.HasUnclaimedPrize), st.TotalGames, st.TotalWins,
		st.ServerSeed, st.ClientSeed, st.Nonce, time.Now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to save player: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM rolls WHERE player_id = ?", st.PlayerID); err != nil {
		return fmt.Errorf("failed to clear rolls: %w", err)
	}

	if len(st.Rolls) > 0 {
		stmt, err := tx.PrepareContext(ctx,
			"INSERT INTO rolls (player_id, dice_json, sum, matched, is_lucky, fee, rolled_at) VALUES (?, ?, ?, ?, ?, ?, ?)")
		if err != nil {
			return fmt.Errorf("failed to prepare roll insert: %w", err)
		}
		defer stmt.Close()

		for _, rec := range st.Rolls {
			diceJSON, err := json.Marshal(rec.Dice)
			if err != nil {
				return fmt.Errorf("failed to encode dice: %w", err)
			}
			_, err = stmt.ExecContext(ctx,
				st.PlayerID, string(diceJSON), rec.Sum,
				boolToInt(rec.Matched), boolToInt(rec.IsLucky),
				rec.Fee, rec.RolledAt.UnixNano(),
			)
			if err != nil {
				return fmt.Errorf("failed to save roll: %w", err)
			}
		}
	}

	return tx.Commit()
}

// LoadPlayer retrieves a player aggregate. Returns (nil, nil) for an
// unknown player.
func (s *SQLiteStore) LoadPlayer(ctx context.Context, playerID string) (*game.PlayerState, error) {
	query := `SELECT
		available, total_deposited, total_won, total_spent, total_paid_out,
		session_id, session_created_at, session_expires_at, session_ops,
		card_json, has_unclaimed_prize, total_games, total_wins,
		server_seed, client_seed, nonce
		FROM players WHERE player_id = ?`

	st := &game.PlayerState{PlayerID: playerID}
	var bal ledger.Balance
	var sessionID, cardJSON sql.NullString
	var sessionCreated, sessionExpires sql.NullInt64
	var sessionOps uint64
	var unclaimedInt int

	err := s.db.QueryRowContext(ctx, query, playerID).Scan(
		&bal.Available, &bal.TotalDeposited, &bal.TotalWon,
		&bal.TotalSpent, &bal.TotalPaidOut,
		&sessionID, &sessionCreated, &sessionExpires, &sessionOps,
		&cardJSON, &unclaimedInt, &st.TotalGames, &st.TotalWins,
		&st.ServerSeed, &st.ClientSeed, &st.Nonce,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load player: %w", err)
	}

	st.Balance = bal
	st.HasUnclaimedPrize = unclaimedInt == 1

	if sessionID.Valid {
		st.Session = &session.Session{
			ID:              sessionID.String,
			CreatedAt:       time.Unix(0, sessionCreated.Int64),
			ExpiresAt:       time.Unix(0, sessionExpires.Int64),
			OperationsCount: sessionOps,
		}
	}

	if cardJSON.Valid {
		var card bingo.Card
		if err := json.Unmarshal([]byte(cardJSON.String), &card); err != nil {
			return nil, fmt.Errorf("failed to decode card: %w", err)
		}
		st.Card = &card
	}

	rolls, err := s.loadRolls(ctx, playerID)
	if err != nil {
		return nil, err
	}
	st.Rolls = rolls

	return st, nil
}

func (s *SQLiteStore) loadRolls(ctx context.Context, playerID string) ([]game.RollRecord, error) {
	query := `SELECT dice_json, sum, matched, is_lucky, fee, rolled_at
		FROM rolls WHERE player_id = ? ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query rolls: %w", err)
	}
	defer rows.Close()

	var rolls []game.RollRecord
	for rows.Next() {
		var rec game.RollRecord
		var diceJSON string
		var matchedInt, luckyInt int
		var rolledAt int64

		err := rows.Scan(&diceJSON, &rec.Sum, &matchedInt, &luckyInt, &rec.Fee, &rolledAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan roll: %w", err)
		}

		if err := json.Unmarshal([]byte(diceJSON), &rec.Dice); err != nil {
			return nil, fmt.Errorf("failed to decode dice: %w", err)
		}
		rec.Matched = matchedInt == 1
		rec.IsLucky = luckyInt == 1
		rec.RolledAt = time.Unix(0, rolledAt)

		rolls = append(rolls, rec)
	}

	return rolls, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
