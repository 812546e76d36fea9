// Package cert builds the certification report for a game configuration:
// the closed-form RTP proof from the model's paytable, a volatility profile,
// and the compliance gates a config must clear before going live. An
// optional Monte Carlo result backs the proof with measurement.
package cert

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/playfair-labs/rmg-engine/games"
	"github.com/playfair-labs/rmg-engine/sim"
)

const (
	// probTolerance bounds the paytable's probability mass error.
	probTolerance = 1e-9
	// rtpTolerance bounds the gap between the paytable RTP and the
	// model's closed-form edge.
	rtpTolerance = 1e-9
)

// RTPProof is the closed-form part of the report: the full paytable with
// its conservation and RTP checks.
type RTPProof struct {
	Entries             []games.PaytableEntry `json:"entries"`
	ProbabilitySum      float64               `json:"probability_sum"`
	ProbabilitySumCheck bool                  `json:"probability_sum_check"`
	PaytableRTP         float64               `json:"paytable_rtp"`
	TheoreticalRTP      float64               `json:"theoretical_rtp"`
	RTPCheck            bool                  `json:"rtp_check"`
}

// Volatility profiles the payout distribution implied by the paytable.
type Volatility struct {
	StdDev            float64 `json:"std_dev"`
	HitFrequency      float64 `json:"hit_frequency"`
	MaxWinMultiplier  float64 `json:"max_win_multiplier"`
	MaxWinProbability float64 `json:"max_win_probability"`
	MedianMultiplier  float64 `json:"median_multiplier"`
	Skewness          float64 `json:"skewness"`
	ProbAbove10x      float64 `json:"prob_above_10x"`
	ProbAbove100x     float64 `json:"prob_above_100x"`
}

// Gates are the binary compliance checks. All must hold for a config to be
// certifiable.
type Gates struct {
	ProbabilitySumValid bool `json:"probability_sum_valid"`
	RTPMatchesTheory    bool `json:"rtp_matches_theory"`
	HouseEdgePositive   bool `json:"house_edge_positive"`
	MonteCarloRTPPass   bool `json:"monte_carlo_rtp_pass,omitempty"`
}

// Report is the certification artifact consumed as a pass/fail gate by
// compliance tooling.
type Report struct {
	GameType             games.Type   `json:"game_type"`
	ModelHash            string       `json:"model_hash"`
	GeneratedAt          time.Time    `json:"generated_at"`
	Config               games.Config `json:"config"`
	TheoreticalHouseEdge float64      `json:"theoretical_house_edge"`
	RTPProof             RTPProof     `json:"rtp_proof"`
	Volatility           Volatility   `json:"volatility"`
	Gates                Gates        `json:"gates"`
	MonteCarlo           *sim.Result  `json:"monte_carlo,omitempty"`
	Certified            bool         `json:"certified"`
}

// modelHash fingerprints a config's paytable: SHA-256 over the canonical
// JSON encoding, first 16 hex chars. Two configs with the same hash pay
// identically.
func modelHash(gt games.Type, entries []games.PaytableEntry) (string, error) {
	canonical := struct {
		GameType games.Type            `json:"game_type"`
		Entries  []games.PaytableEntry `json:"entries"`
	}{gt, entries}
	data, err := json.Marshal(canonical)
	if err != nil {
		return "", fmt.Errorf("cert: encoding paytable: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:16], nil
}

func volatilityProfile(entries []games.PaytableEntry) Volatility {
	var v Volatility
	var mean float64
	for _, e := range entries {
		mean += e.Probability * e.Multiplier
		if e.Multiplier > 0 {
			v.HitFrequency += e.Probability
		}
		if e.Multiplier > v.MaxWinMultiplier {
			v.MaxWinMultiplier = e.Multiplier
			v.MaxWinProbability = e.Probability
		}
		if e.Multiplier > 10 {
			v.ProbAbove10x += e.Probability
		}
		if e.Multiplier > 100 {
			v.ProbAbove100x += e.Probability
		}
	}
	var m2, m3 float64
	for _, e := range entries {
		d := e.Multiplier - mean
		m2 += e.Probability * d * d
		m3 += e.Probability * d * d * d
	}
	v.StdDev = math.Sqrt(m2)
	if v.StdDev > 0 {
		v.Skewness = m3 / (v.StdDev * v.StdDev * v.StdDev)
	}

	sorted := append([]games.PaytableEntry(nil), entries...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Multiplier < sorted[j].Multiplier })
	var cum float64
	for _, e := range sorted {
		cum += e.Probability
		if cum >= 0.5 {
			v.MedianMultiplier = e.Multiplier
			break
		}
	}
	return v
}

// BuildReport produces the closed-form certification for a config.
func BuildReport(m games.Model, cfg games.Config) (*Report, error) {
	entries := m.Paytable(cfg)
	if len(entries) == 0 {
		return nil, fmt.Errorf("cert: %s paytable is empty", cfg.GameType)
	}
	hash, err := modelHash(m.Type(), entries)
	if err != nil {
		return nil, err
	}

	var probSum, rtp float64
	for _, e := range entries {
		probSum += e.Probability
		rtp += e.Contribution
	}
	he := m.TheoreticalHouseEdge(cfg)
	proof := RTPProof{
		Entries:             entries,
		ProbabilitySum:      probSum,
		ProbabilitySumCheck: math.Abs(probSum-1) < probTolerance,
		PaytableRTP:         rtp,
		TheoreticalRTP:      1 - he,
		RTPCheck:            math.Abs(rtp-(1-he)) < rtpTolerance,
	}
	gates := Gates{
		ProbabilitySumValid: proof.ProbabilitySumCheck,
		RTPMatchesTheory:    proof.RTPCheck,
		HouseEdgePositive:   he > 0,
	}

	return &Report{
		GameType:             m.Type(),
		ModelHash:            hash,
		GeneratedAt:          time.Now().UTC(),
		Config:               cfg,
		TheoreticalHouseEdge: he,
		RTPProof:             proof,
		Volatility:           volatilityProfile(entries),
		Gates:                gates,
		Certified:            gates.ProbabilitySumValid && gates.RTPMatchesTheory && gates.HouseEdgePositive,
	}, nil
}

// BuildReportWithSim embeds a Monte Carlo run and adds its pass gate. A
// low-confidence run never certifies.
func BuildReportWithSim(m games.Model, cfg games.Config, rounds int, seed uint64) (*Report, error) {
	report, err := BuildReport(m, cfg)
	if err != nil {
		return nil, err
	}
	res, err := sim.SimulateParallel(m, cfg, rounds, seed, 4)
	if err != nil {
		return nil, err
	}
	report.MonteCarlo = &res
	report.Gates.MonteCarloRTPPass = res.Passed
	report.Certified = report.Certified && res.Passed
	return report, nil
}
