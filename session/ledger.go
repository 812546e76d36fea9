// Package session is the session and round ledger. It owns every open
// session, serializes round play per session, and keeps balances exact with
// decimal arithmetic.
package session

import (
	"errors"
	"fmt"
	"log"
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/playfair-labs/rmg-engine/fairness"
	"github.com/playfair-labs/rmg-engine/games"
)

type Status string

const (
	StatusActive Status = "active"
	StatusClosed Status = "closed"
)

var (
	ErrInvalidBet          = errors.New("session: bet must be positive")
	ErrInsufficientBalance = errors.New("session: insufficient balance")
	ErrSessionClosed       = errors.New("session: session is closed")
	ErrAlreadyClosed       = errors.New("session: session already closed")
	ErrWrongGameType       = errors.New("session: config game type does not match session")
	ErrUnknownSession      = errors.New("session: unknown session")
	ErrNotClosed           = errors.New("session: verification requires a closed session")
	ErrUnknownRound        = errors.New("session: no round at that nonce")
)

// RoundResult is one settled round. Append-only: once written it is never
// mutated, and it carries the config and action needed to replay the
// resolution during verification.
type RoundResult struct {
	SessionID    string          `json:"session_id"`
	Nonce        uint64          `json:"nonce"`
	GameType     games.Type      `json:"game_type"`
	CombinedHash string          `json:"combined_hash"`
	RawValue     float64         `json:"raw_value"`
	Outcome      games.Outcome   `json:"outcome"`
	Multiplier   float64         `json:"multiplier"`
	BetAmount    decimal.Decimal `json:"bet_amount"`
	Payout       decimal.Decimal `json:"payout"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
	Config       games.Config    `json:"config"`
	Action       games.Action    `json:"action"`
	PlayedAt     time.Time       `json:"played_at"`
}

// GameSession is one player session. The embedded mutex serializes
// PlayRound, Close and Verify for the session; nothing is shared across
// sessions.
type GameSession struct {
	mu sync.Mutex

	ID           string
	GameType     games.Type
	Status       Status
	Commitment   *fairness.Commitment
	Config       games.Config
	Balance      decimal.Decimal
	Nonce        uint64
	Rounds       []*RoundResult
	TotalWagered decimal.Decimal
	TotalWon     decimal.Decimal
	OpenedAt     time.Time
	ClosedAt     time.Time
}

// Snapshot is the externally visible view of a session. The server seed is
// included only after close.
type Snapshot struct {
	SessionID      string          `json:"session_id"`
	GameType       games.Type      `json:"game_type"`
	Status         Status          `json:"status"`
	ServerSeedHash string          `json:"server_seed_hash"`
	ServerSeed     string          `json:"server_seed,omitempty"`
	ClientSeed     string          `json:"client_seed"`
	Balance        decimal.Decimal `json:"balance"`
	Nonce          uint64          `json:"nonce"`
	Config         games.Config    `json:"config"`
}

// Reveal is returned by Close: the secret seed plus session totals, the
// package an external party needs to audit the whole session.
type Reveal struct {
	SessionID      string          `json:"session_id"`
	ServerSeed     string          `json:"server_seed"`
	ServerSeedHash string          `json:"server_seed_hash"`
	ClientSeed     string          `json:"client_seed"`
	TotalRounds    int             `json:"total_rounds"`
	TotalWagered   decimal.Decimal `json:"total_wagered"`
	TotalWon       decimal.Decimal `json:"total_won"`
}

// VerificationResult is the proof payload for one round of a closed session.
// A hash or outcome mismatch is definitive: it means the stored round does
// not follow from the committed seeds.
type VerificationResult struct {
	SessionID      string        `json:"session_id"`
	Nonce          uint64        `json:"nonce"`
	ServerSeed     string        `json:"server_seed"`
	ServerSeedHash string        `json:"server_seed_hash"`
	ClientSeed     string        `json:"client_seed"`
	CombinedHash   string        `json:"combined_hash"`
	Outcome        games.Outcome `json:"outcome"`
	CommitmentOK   bool          `json:"commitment_ok"`
	HashMatch      bool          `json:"hash_match"`
	OutcomeMatch   bool          `json:"outcome_match"`
	Valid          bool          `json:"valid"`
}

// RoundSink receives settled rounds for audit persistence. Sink failures
// are logged and never block settlement.
type RoundSink interface {
	LogRound(r *RoundResult) error
}

// Ledger owns all sessions and is their only writer.
type Ledger struct {
	mu       sync.RWMutex
	sessions map[string]*GameSession
	table    *games.Table
	sinks    []RoundSink
}

func NewLedger(table *games.Table) *Ledger {
	return &Ledger{
		sessions: make(map[string]*GameSession),
		table:    table,
	}
}

// AddSink attaches an audit sink for settled rounds.
func (l *Ledger) AddSink(s RoundSink) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sinks = append(l.sinks, s)
}

// Open creates a session: a fresh commitment, the game config built from
// params, nonce 0, status Active.
func (l *Ledger) Open(gameType games.Type, balance decimal.Decimal, clientSeed string, params games.Params) (*GameSession, error) {
	model, err := l.table.Get(gameType)
	if err != nil {
		return nil, err
	}
	cfg, err := model.BuildConfig(params)
	if err != nil {
		return nil, err
	}
	if balance.IsNegative() {
		return nil, fmt.Errorf("session: opening balance %s is negative", balance)
	}
	commitment, err := fairness.NewCommitment(clientSeed)
	if err != nil {
		return nil, err
	}
	s := &GameSession{
		ID:         uuid.NewString(),
		GameType:   gameType,
		Status:     StatusActive,
		Commitment: commitment,
		Config:     cfg,
		Balance:    balance,
		OpenedAt:   time.Now(),
	}
	l.mu.Lock()
	l.sessions[s.ID] = s
	l.mu.Unlock()
	return s, nil
}

func (l *Ledger) get(sessionID string) (*GameSession, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	s, ok := l.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSession, sessionID)
	}
	return s, nil
}

// Snapshot returns the public view of a session.
func (l *Ledger) Snapshot(sessionID string) (*Snapshot, error) {
	s, err := l.get(sessionID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := &Snapshot{
		SessionID:      s.ID,
		GameType:       s.GameType,
		Status:         s.Status,
		ServerSeedHash: s.Commitment.ServerSeedHash,
		ClientSeed:     s.Commitment.ClientSeed,
		Balance:        s.Balance,
		Nonce:          s.Nonce,
		Config:         s.Config,
	}
	if s.Status == StatusClosed {
		snap.ServerSeed = s.Commitment.ServerSeed
	}
	return snap, nil
}

// PlayRound settles one round: derive the round hash at the current nonce,
// resolve the outcome, apply the balance delta, append the result and bump
// the nonce. The append and the balance mutation happen under one lock, so
// no round is ever recorded without its balance effect.
func (l *Ledger) PlayRound(sessionID string, bet decimal.Decimal, cfg games.Config, action games.Action) (*RoundResult, error) {
	s, err := l.get(sessionID)
	if err != nil {
		return nil, err
	}
	l.mu.RLock()
	sinks := l.sinks
	l.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Status != StatusActive {
		return nil, ErrSessionClosed
	}
	if bet.Sign() <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidBet, bet)
	}
	if bet.GreaterThan(s.Balance) {
		return nil, fmt.Errorf("%w: bet %s, balance %s", ErrInsufficientBalance, bet, s.Balance)
	}
	if cfg.GameType != s.GameType {
		return nil, fmt.Errorf("%w: %s vs %s", ErrWrongGameType, cfg.GameType, s.GameType)
	}
	model, err := l.table.Get(cfg.GameType)
	if err != nil {
		return nil, err
	}

	nonce := s.Nonce
	floats := fairness.Floats(s.Commitment.ServerSeed, s.Commitment.ClientSeed, nonce, model.FloatCount(cfg))
	out, err := model.Resolve(cfg, action, floats)
	if err != nil {
		return nil, err
	}

	payout := bet.Mul(decimal.NewFromFloat(out.Multiplier))
	s.Balance = s.Balance.Sub(bet).Add(payout)
	s.TotalWagered = s.TotalWagered.Add(bet)
	s.TotalWon = s.TotalWon.Add(payout)

	rr := &RoundResult{
		SessionID:    s.ID,
		Nonce:        nonce,
		GameType:     cfg.GameType,
		CombinedHash: fairness.HashHex(fairness.Derive(s.Commitment.ServerSeed, s.Commitment.ClientSeed, nonce)),
		RawValue:     floats[0],
		Outcome:      out,
		Multiplier:   out.Multiplier,
		BetAmount:    bet,
		Payout:       payout,
		BalanceAfter: s.Balance,
		Config:       cfg,
		Action:       action,
		PlayedAt:     time.Now(),
	}
	s.Rounds = append(s.Rounds, rr)
	s.Nonce++

	for _, sink := range sinks {
		if err := sink.LogRound(rr); err != nil {
			log.Printf("[session] audit sink: %v", err)
		}
	}
	return rr, nil
}

// Close reveals the server seed and freezes the session. A second call
// fails with ErrAlreadyClosed.
func (l *Ledger) Close(sessionID string) (*Reveal, error) {
	s, err := l.get(sessionID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Status == StatusClosed {
		return nil, ErrAlreadyClosed
	}
	s.Status = StatusClosed
	s.ClosedAt = time.Now()
	return &Reveal{
		SessionID:      s.ID,
		ServerSeed:     s.Commitment.ServerSeed,
		ServerSeedHash: s.Commitment.ServerSeedHash,
		ClientSeed:     s.Commitment.ClientSeed,
		TotalRounds:    len(s.Rounds),
		TotalWagered:   s.TotalWagered,
		TotalWon:       s.TotalWon,
	}, nil
}

// Verify recomputes a stored round from the revealed seed: the commitment,
// the round hash, and a full replay of the resolution against the stored
// config and action. Only closed sessions can be verified.
func (l *Ledger) Verify(sessionID string, nonce uint64) (*VerificationResult, error) {
	s, err := l.get(sessionID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Status != StatusClosed {
		return nil, ErrNotClosed
	}
	var rr *RoundResult
	for _, r := range s.Rounds {
		if r.Nonce == nonce {
			rr = r
			break
		}
	}
	if rr == nil {
		return nil, fmt.Errorf("%w: %d", ErrUnknownRound, nonce)
	}

	res := &VerificationResult{
		SessionID:      s.ID,
		Nonce:          nonce,
		ServerSeed:     s.Commitment.ServerSeed,
		ServerSeedHash: s.Commitment.ServerSeedHash,
		ClientSeed:     s.Commitment.ClientSeed,
		CombinedHash:   rr.CombinedHash,
		Outcome:        rr.Outcome,
	}
	res.CommitmentOK = fairness.VerifyCommitment(s.Commitment.ServerSeed, s.Commitment.ServerSeedHash)
	res.HashMatch = fairness.VerifyRound(s.Commitment.ServerSeed, s.Commitment.ClientSeed, nonce, rr.CombinedHash)

	model, err := l.table.Get(rr.GameType)
	if err != nil {
		return nil, err
	}
	floats := fairness.Floats(s.Commitment.ServerSeed, s.Commitment.ClientSeed, nonce, model.FloatCount(rr.Config))
	replayed, err := model.Resolve(rr.Config, rr.Action, floats)
	if err == nil && reflect.DeepEqual(replayed, rr.Outcome) {
		res.OutcomeMatch = true
	}
	res.Valid = res.CommitmentOK && res.HashMatch && res.OutcomeMatch
	return res, nil
}

// Purge drops closed sessions that closed before cutoff and returns how
// many were removed. Retention policy lives with the caller; the ledger
// never auto-closes.
func (l *Ledger) Purge(cutoff time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	removed := 0
	for id, s := range l.sessions {
		s.mu.Lock()
		stale := s.Status == StatusClosed && s.ClosedAt.Before(cutoff)
		s.mu.Unlock()
		if stale {
			delete(l.sessions, id)
			removed++
		}
	}
	return removed
}

// Rounds returns the stored results of a session in play order.
func (l *Ledger) Rounds(sessionID string) ([]*RoundResult, error) {
	s, err := l.get(sessionID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*RoundResult, len(s.Rounds))
	copy(out, s.Rounds)
	return out, nil
}
