package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// PGLog mirrors settled rounds into a Postgres table when DATABASE_URL is
// configured. It is an audit sink only: settlement never depends on it.
type PGLog struct {
	db *sql.DB
}

func NewPGLog(db *sql.DB) *PGLog {
	return &PGLog{db: db}
}

// EnsureSchema creates the audit table if it does not exist.
func (p *PGLog) EnsureSchema(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS round_results (
			session_id    TEXT        NOT NULL,
			nonce         BIGINT      NOT NULL,
			game_type     TEXT        NOT NULL,
			combined_hash TEXT        NOT NULL,
			raw_value     DOUBLE PRECISION NOT NULL,
			multiplier    DOUBLE PRECISION NOT NULL,
			bet_amount    NUMERIC     NOT NULL,
			payout        NUMERIC     NOT NULL,
			balance_after NUMERIC     NOT NULL,
			outcome       JSONB       NOT NULL,
			played_at     TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (session_id, nonce)
		)`)
	if err != nil {
		return fmt.Errorf("session: creating round_results table: %w", err)
	}
	return nil
}

// LogRound inserts one settled round. The (session_id, nonce) key makes
// replays of the same round idempotent.
func (p *PGLog) LogRound(r *RoundResult) error {
	outcome, err := json.Marshal(r.Outcome)
	if err != nil {
		return fmt.Errorf("session: encoding outcome: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err = p.db.ExecContext(ctx, `
		INSERT INTO round_results
			(session_id, nonce, game_type, combined_hash, raw_value,
			 multiplier, bet_amount, payout, balance_after, outcome, played_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (session_id, nonce) DO NOTHING`,
		r.SessionID, r.Nonce, string(r.GameType), r.CombinedHash, r.RawValue,
		r.Multiplier, r.BetAmount.String(), r.Payout.String(), r.BalanceAfter.String(),
		outcome, r.PlayedAt)
	if err != nil {
		return fmt.Errorf("session: inserting round result: %w", err)
	}
	return nil
}
