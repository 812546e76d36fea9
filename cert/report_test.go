package cert

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/playfair-labs/rmg-engine/games"
)

func TestBuildReportCertifiesAllDefaults(t *testing.T) {
	table := games.NewTable()
	for _, gt := range games.AllTypes {
		m, _ := table.Get(gt)
		cfg, err := m.BuildConfig(games.Params{})
		if err != nil {
			t.Fatalf("%s: %v", gt, err)
		}
		report, err := BuildReport(m, cfg)
		if err != nil {
			t.Fatalf("%s: %v", gt, err)
		}
		if !report.Certified {
			t.Errorf("%s: default config failed certification: %+v", gt, report.Gates)
		}
		if !report.RTPProof.ProbabilitySumCheck {
			t.Errorf("%s: probability sum %.12f", gt, report.RTPProof.ProbabilitySum)
		}
		if !report.RTPProof.RTPCheck {
			t.Errorf("%s: paytable RTP %.9f vs theoretical %.9f", gt,
				report.RTPProof.PaytableRTP, report.RTPProof.TheoreticalRTP)
		}
		if len(report.ModelHash) != 16 {
			t.Errorf("%s: model hash %q", gt, report.ModelHash)
		}
	}
}

func TestModelHashTracksPaytable(t *testing.T) {
	table := games.NewTable()
	m, _ := table.Get(games.Dice)
	a, _ := m.BuildConfig(games.Params{HouseEdge: 0.01})
	b, _ := m.BuildConfig(games.Params{HouseEdge: 0.02})

	ra, err := BuildReport(m, a)
	if err != nil {
		t.Fatal(err)
	}
	rb, _ := BuildReport(m, b)
	if ra.ModelHash == rb.ModelHash {
		t.Error("different edges produced the same model hash")
	}
	ra2, _ := BuildReport(m, a)
	if ra.ModelHash != ra2.ModelHash {
		t.Error("same config produced different model hashes")
	}
}

func TestVolatilityProfile(t *testing.T) {
	// A hand-built 2-row table: lose 0.5 at 0x, win 0.5 at 2x.
	entries := []games.PaytableEntry{
		{OutcomeID: "lose", Multiplier: 0, Probability: 0.5},
		{OutcomeID: "win", Multiplier: 2, Probability: 0.5, Contribution: 1},
	}
	v := volatilityProfile(entries)
	if v.HitFrequency != 0.5 {
		t.Errorf("hit frequency %v", v.HitFrequency)
	}
	if v.MaxWinMultiplier != 2 || v.MaxWinProbability != 0.5 {
		t.Errorf("max win %vx at %v", v.MaxWinMultiplier, v.MaxWinProbability)
	}
	// mean 1, variance 0.5*(1+1) = 1, std dev 1, symmetric so skew 0.
	if math.Abs(v.StdDev-1) > 1e-12 {
		t.Errorf("std dev %v, want 1", v.StdDev)
	}
	if math.Abs(v.Skewness) > 1e-12 {
		t.Errorf("skewness %v, want 0", v.Skewness)
	}
	if v.MedianMultiplier != 0 {
		t.Errorf("median %v, want 0 (cumulative 0.5 lands on the losing row)", v.MedianMultiplier)
	}
	if v.ProbAbove10x != 0 || v.ProbAbove100x != 0 {
		t.Errorf("tail probabilities %v / %v", v.ProbAbove10x, v.ProbAbove100x)
	}
}

func TestScratchTailShowsInVolatility(t *testing.T) {
	table := games.NewTable()
	m, _ := table.Get(games.Scratch)
	cfg, _ := m.BuildConfig(games.Params{})
	report, err := BuildReport(m, cfg)
	if err != nil {
		t.Fatal(err)
	}
	v := report.Volatility
	if v.ProbAbove10x <= 0 {
		t.Error("scratch table has 25x+ prizes but P(>10x) is zero")
	}
	if v.ProbAbove100x <= 0 {
		t.Error("scratch table has a 500x prize but P(>100x) is zero")
	}
	if v.Skewness <= 0 {
		t.Errorf("long-tailed prize table has skewness %v", v.Skewness)
	}
	if math.Abs(v.HitFrequency-0.45) > 1e-9 {
		t.Errorf("hit frequency %v, want 0.45", v.HitFrequency)
	}
}

func TestBuildReportWithSimGatesOnMeasurement(t *testing.T) {
	table := games.NewTable()
	m, _ := table.Get(games.Dice)
	cfg, _ := m.BuildConfig(games.Params{})

	report, err := BuildReportWithSim(m, cfg, 1_000_000, 7)
	if err != nil {
		t.Fatal(err)
	}
	if report.MonteCarlo == nil {
		t.Fatal("report carries no Monte Carlo result")
	}
	if !report.Gates.MonteCarloRTPPass || !report.Certified {
		t.Errorf("dice at 1M rounds failed: %s", report.MonteCarlo.Detail)
	}

	// Below the minimum sample the run is low confidence and must block
	// certification.
	report, err = BuildReportWithSim(m, cfg, 10_000, 7)
	if err != nil {
		t.Fatal(err)
	}
	if report.Gates.MonteCarloRTPPass || report.Certified {
		t.Error("low-confidence run certified")
	}
}

func TestReportSerializesToJSON(t *testing.T) {
	table := games.NewTable()
	m, _ := table.Get(games.Wheel)
	cfg, _ := m.BuildConfig(games.Params{})
	report, err := BuildReport(m, cfg)
	if err != nil {
		t.Fatal(err)
	}
	data, err := json.Marshal(report)
	if err != nil {
		t.Fatal(err)
	}
	var decoded Report
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.ModelHash != report.ModelHash || decoded.GameType != games.Wheel {
		t.Error("report did not survive a JSON round trip")
	}
}
