package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/playfair-labs/rmg-engine/cert"
	"github.com/playfair-labs/rmg-engine/games"
	"github.com/playfair-labs/rmg-engine/session"
	"github.com/playfair-labs/rmg-engine/sim"
)

// writeLedgerError maps the ledger's typed failures onto HTTP statuses.
func writeLedgerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrUnknownSession), errors.Is(err, session.ErrUnknownRound):
		writeError(w, http.StatusNotFound, err.Error(), "NOT_FOUND")
	case errors.Is(err, session.ErrInvalidBet):
		writeError(w, http.StatusBadRequest, err.Error(), "INVALID_BET")
	case errors.Is(err, session.ErrInsufficientBalance):
		writeError(w, http.StatusBadRequest, err.Error(), "INSUFFICIENT_BALANCE")
	case errors.Is(err, session.ErrSessionClosed), errors.Is(err, session.ErrAlreadyClosed),
		errors.Is(err, session.ErrNotClosed):
		writeError(w, http.StatusConflict, err.Error(), "SESSION_STATE")
	case errors.Is(err, session.ErrWrongGameType), errors.Is(err, games.ErrBadAction):
		writeError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
	case errors.Is(err, games.ErrUnknownGameType):
		writeError(w, http.StatusNotFound, err.Error(), "UNKNOWN_GAME")
	default:
		writeError(w, http.StatusInternalServerError, err.Error(), "INTERNAL")
	}
}

type gameInfo struct {
	GameType             games.Type `json:"game_type"`
	TheoreticalHouseEdge float64    `json:"theoretical_house_edge"`
	MaxMultiplier        float64    `json:"max_multiplier"`
	FloatCount           int        `json:"float_count"`
}

func (s *Server) handleGamesList(w http.ResponseWriter, r *http.Request) {
	list := make([]gameInfo, 0, len(s.table.Types()))
	for _, gt := range s.table.Types() {
		m, err := s.table.Get(gt)
		if err != nil {
			continue
		}
		cfg, err := m.BuildConfig(games.Params{})
		if err != nil {
			continue
		}
		list = append(list, gameInfo{
			GameType:             gt,
			TheoreticalHouseEdge: m.TheoreticalHouseEdge(cfg),
			MaxMultiplier:        cfg.MaxMultiplier,
			FloatCount:           m.FloatCount(cfg),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"games": list})
}

type openRequest struct {
	GameType   games.Type      `json:"game_type"`
	Balance    decimal.Decimal `json:"balance"`
	ClientSeed string          `json:"client_seed"`

	HouseEdge     float64 `json:"house_edge"`
	TargetRTP     float64 `json:"target_rtp"`
	MaxMultiplier float64 `json:"max_multiplier"`
	Volatility    string  `json:"volatility"`

	GridSize       int `json:"grid_size"`
	MineCount      int `json:"mine_count"`
	Rows           int `json:"rows"`
	CardValues     int `json:"card_values"`
	Lanes          int `json:"lanes"`
	SpotsPerLane   int `json:"spots_per_lane"`
	HazardsPerLane int `json:"hazards_per_lane"`

	Segments []games.Segment `json:"segments"`
	Prizes   []games.Prize   `json:"prizes"`
}

func (r openRequest) params() games.Params {
	return games.Params{
		HouseEdge:      r.HouseEdge,
		TargetRTP:      r.TargetRTP,
		MaxMultiplier:  r.MaxMultiplier,
		Volatility:     r.Volatility,
		GridSize:       r.GridSize,
		MineCount:      r.MineCount,
		Rows:           r.Rows,
		CardValues:     r.CardValues,
		Lanes:          r.Lanes,
		SpotsPerLane:   r.SpotsPerLane,
		HazardsPerLane: r.HazardsPerLane,
		Segments:       r.Segments,
		Prizes:         r.Prizes,
	}
}

func (s *Server) handleSessionOpen(w http.ResponseWriter, r *http.Request) {
	var req openRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", "BAD_JSON")
		return
	}
	if req.GameType == "" {
		writeError(w, http.StatusBadRequest, "game_type is required", "BAD_REQUEST")
		return
	}
	sess, err := s.ledger.Open(req.GameType, req.Balance, req.ClientSeed, req.params())
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	snap, err := s.ledger.Snapshot(sess.ID)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

type roundRequest struct {
	SessionID string          `json:"session_id"`
	Bet       decimal.Decimal `json:"bet"`
	games.Action
}

func (s *Server) handleSessionRound(w http.ResponseWriter, r *http.Request) {
	var req roundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", "BAD_JSON")
		return
	}
	snap, err := s.ledger.Snapshot(req.SessionID)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	rr, err := s.ledger.PlayRound(req.SessionID, req.Bet, snap.Config, req.Action)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rr)
}

func (s *Server) handleSessionClose(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"session_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", "BAD_JSON")
		return
	}
	reveal, err := s.ledger.Close(req.SessionID)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reveal)
}

func (s *Server) handleSessionVerify(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "session_id is required", "BAD_REQUEST")
		return
	}
	nonce, err := strconv.ParseUint(r.URL.Query().Get("nonce"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "nonce must be a non-negative integer", "BAD_REQUEST")
		return
	}
	vr, err := s.ledger.Verify(sessionID, nonce)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, vr)
}

// configFromQuery builds a game config from the math/validate query params.
func (s *Server) configFromQuery(r *http.Request) (games.Model, games.Config, error) {
	gt := games.Type(r.PathValue("game"))
	m, err := s.table.Get(gt)
	if err != nil {
		return nil, games.Config{}, err
	}
	params := games.Params{Volatility: r.URL.Query().Get("vol")}
	if rtp := r.URL.Query().Get("rtp"); rtp != "" {
		if v, err := strconv.ParseFloat(rtp, 64); err == nil {
			params.TargetRTP = v
		}
	}
	cfg, err := m.BuildConfig(params)
	if err != nil {
		return nil, games.Config{}, err
	}
	return m, cfg, nil
}

func (s *Server) handleMathReport(w http.ResponseWriter, r *http.Request) {
	m, cfg, err := s.configFromQuery(r)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	report, err := cert.BuildReport(m, cfg)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error(), "REPORT")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// validateRounds resolves and caps the requested round count.
func (s *Server) validateRounds(r *http.Request) int {
	rounds := s.cfg.DefaultValidateRounds
	if q := r.URL.Query().Get("rounds"); q != "" {
		if v, err := strconv.Atoi(q); err == nil && v > 0 {
			rounds = v
		}
	}
	if rounds > s.cfg.MaxValidateRounds {
		rounds = s.cfg.MaxValidateRounds
	}
	return rounds
}

func (s *Server) validateSeed(r *http.Request) (uint64, error) {
	if q := r.URL.Query().Get("seed"); q != "" {
		if v, err := strconv.ParseUint(q, 10, 64); err == nil {
			return v, nil
		}
	}
	return sim.RandomSeed()
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	m, cfg, err := s.configFromQuery(r)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	seed, err := s.validateSeed(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error(), "SEED")
		return
	}
	res, err := sim.SimulateParallel(m, cfg, s.validateRounds(r), seed, 4)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error(), "SIM")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleValidateAll(w http.ResponseWriter, r *http.Request) {
	seed, err := s.validateSeed(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error(), "SEED")
		return
	}
	results, err := sim.ValidateAll(s.table, s.validateRounds(r), seed)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error(), "SIM")
		return
	}
	allPassed := true
	for _, res := range results {
		if !res.Passed {
			allPassed = false
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"results":    results,
		"all_passed": allPassed,
	})
}
