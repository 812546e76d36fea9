package games

import (
	"math"
	"testing"
)

func TestScratchTableNormalizesAndScales(t *testing.T) {
	m := scratchModel{}
	cfg, err := m.BuildConfig(Params{HouseEdge: 0.15})
	if err != nil {
		t.Fatal(err)
	}
	var probSum float64
	for _, p := range cfg.Prizes {
		probSum += p.Probability
	}
	if probSum != 1 {
		t.Errorf("prize probabilities sum to %v, want exactly 1", probSum)
	}
	// Display rounding moves the exact RTP slightly off target.
	if rtp := prizeRTP(cfg.Prizes); math.Abs(rtp-0.85) > 0.005 {
		t.Errorf("table RTP %.5f, want ~0.85", rtp)
	}
	if got := 1 - m.TheoreticalHouseEdge(cfg); math.Abs(got-prizeRTP(cfg.Prizes)) > 1e-9 {
		t.Error("TheoreticalHouseEdge disagrees with the prize table")
	}
}

func TestScratchDrawFollowsCumulativeTable(t *testing.T) {
	m := scratchModel{}
	cfg, _ := m.BuildConfig(Params{})

	out, err := m.Resolve(cfg, Action{}, []float64{0.0})
	if err != nil {
		t.Fatal(err)
	}
	if out.Prize != "Nothing" || out.IsWin || out.Multiplier != 0 {
		t.Errorf("draw 0: prize %q win=%v mult=%v, want Nothing", out.Prize, out.IsWin, out.Multiplier)
	}

	out, _ = m.Resolve(cfg, Action{}, []float64{0.9999})
	if out.Prize != "500x" || !out.IsWin {
		t.Errorf("draw 0.9999: prize %q, want the top tier", out.Prize)
	}

	// Just past the losing mass lands on the first paying tier.
	out, _ = m.Resolve(cfg, Action{}, []float64{0.56})
	if out.Prize != "Free Card" || !out.IsWin {
		t.Errorf("draw 0.56: prize %q, want Free Card", out.Prize)
	}
}

func TestScratchCustomTable(t *testing.T) {
	m := scratchModel{}
	cfg, err := m.BuildConfig(Params{
		HouseEdge: 0.10,
		Prizes: []Prize{
			{Label: "miss", Multiplier: 0, Probability: 3},
			{Label: "hit", Multiplier: 2, Probability: 1},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	// Weights 3:1 normalize to 0.75/0.25; the winning multiplier scales to
	// 0.90/0.25 = 3.6.
	if p := cfg.Prizes[0].Probability; math.Abs(p-0.75) > 1e-12 {
		t.Errorf("miss probability %v, want 0.75", p)
	}
	if mult := cfg.Prizes[1].Multiplier; math.Abs(mult-3.6) > 1e-9 {
		t.Errorf("hit multiplier %v, want 3.6", mult)
	}
}

func TestScratchRejectsEmptyMass(t *testing.T) {
	m := scratchModel{}
	if _, err := m.BuildConfig(Params{Prizes: []Prize{{Label: "x", Multiplier: 1, Probability: 0}}}); err == nil {
		t.Error("zero-mass prize table accepted")
	}
	if _, err := m.BuildConfig(Params{Prizes: []Prize{{Label: "x", Multiplier: 1, Probability: -1}}}); err == nil {
		t.Error("negative probability accepted")
	}
}

func TestScratchHitRateConverges(t *testing.T) {
	m := scratchModel{}
	cfg, _ := m.BuildConfig(Params{})
	const rounds = 100_000
	wins := 0
	for seed := uint64(0); seed < rounds; seed++ {
		out, err := m.Resolve(cfg, Action{}, testFloats(seed, 1))
		if err != nil {
			t.Fatal(err)
		}
		if out.IsWin {
			wins++
		}
	}
	got := float64(wins) / rounds
	if math.Abs(got-0.45) > 0.01 {
		t.Errorf("hit rate %.4f, want ~0.45", got)
	}
}
