package games

import (
	"math"
	"testing"
)

func TestChickenLaneMultiplierLadder(t *testing.T) {
	m := chickenModel{}
	cfg, _ := m.BuildConfig(Params{HouseEdge: 0.03})
	if cfg.Lanes != 5 || cfg.SpotsPerLane != 4 || cfg.HazardsPerLane != 1 {
		t.Fatalf("default board %d/%d/%d, want 5/4/1", cfg.Lanes, cfg.SpotsPerLane, cfg.HazardsPerLane)
	}
	// p = 3/4 per lane, so mult_n = 0.97 / 0.75^n.
	p := 1.0
	for n := 1; n <= cfg.Lanes; n++ {
		p *= 0.75
		want := 0.97 / p
		if got := cfg.Multipliers[n-1]; math.Abs(got-want) > 1e-9 {
			t.Errorf("lane %d multiplier %v, want %v", n, got, want)
		}
	}
}

func TestChickenSurvivesWhenPickMissesHazard(t *testing.T) {
	m := chickenModel{}
	cfg, _ := m.BuildConfig(Params{HouseEdge: 0.03})
	// Draw 0.99 puts the hazard in the last column; the default pick is
	// column 0, so the crossing always survives.
	floats := make([]float64, m.FloatCount(cfg))
	for i := range floats {
		floats[i] = 0.99
	}
	out, err := m.Resolve(cfg, Action{TargetLanes: 3}, floats)
	if err != nil {
		t.Fatal(err)
	}
	if !out.IsWin || out.LanesCrossed != 3 {
		t.Fatalf("win=%v lanes=%d, want win after 3 lanes", out.IsWin, out.LanesCrossed)
	}
	want := 0.97 / (0.75 * 0.75 * 0.75)
	if math.Abs(out.Multiplier-want) > 1e-9 {
		t.Errorf("3-lane multiplier %v, want %v", out.Multiplier, want)
	}
	if len(out.HazardColumns) != 3 {
		t.Errorf("%d hazard rows recorded, want 3", len(out.HazardColumns))
	}
	for lane, cols := range out.HazardColumns {
		if len(cols) != 1 || cols[0] != 3 {
			t.Errorf("lane %d hazards %v, want [3]", lane, cols)
		}
	}
}

func TestChickenBustsOnFirstHazard(t *testing.T) {
	m := chickenModel{}
	cfg, _ := m.BuildConfig(Params{})
	// Draw 0 puts the hazard in column 0, right on the default pick.
	floats := make([]float64, m.FloatCount(cfg))
	out, err := m.Resolve(cfg, Action{TargetLanes: 5}, floats)
	if err != nil {
		t.Fatal(err)
	}
	if out.IsWin || out.LanesCrossed != 0 || out.Multiplier != 0 {
		t.Errorf("hazard on pick: win=%v lanes=%d mult=%v", out.IsWin, out.LanesCrossed, out.Multiplier)
	}
	// Only the fatal lane is recorded.
	if len(out.HazardColumns) != 1 {
		t.Errorf("%d hazard rows recorded after lane-0 bust, want 1", len(out.HazardColumns))
	}
}

func TestChickenLanePicksDodgeHazards(t *testing.T) {
	m := chickenModel{}
	cfg, _ := m.BuildConfig(Params{})
	// Hazards land in column 0 every lane; explicit picks in column 1
	// cross safely.
	floats := make([]float64, m.FloatCount(cfg))
	picks := []int{1, 1, 1, 1, 1}
	out, err := m.Resolve(cfg, Action{TargetLanes: 5, LanePicks: picks}, floats)
	if err != nil {
		t.Fatal(err)
	}
	if !out.IsWin || out.LanesCrossed != 5 {
		t.Errorf("dodging picks: win=%v lanes=%d", out.IsWin, out.LanesCrossed)
	}
}

func TestChickenHazardsAreDistinct(t *testing.T) {
	m := chickenModel{}
	cfg, _ := m.BuildConfig(Params{SpotsPerLane: 5, HazardsPerLane: 3})
	for seed := uint64(0); seed < 200; seed++ {
		out, err := m.Resolve(cfg, Action{TargetLanes: cfg.Lanes, LanePicks: nil}, testFloats(seed, m.FloatCount(cfg)))
		if err != nil {
			t.Fatal(err)
		}
		for lane, cols := range out.HazardColumns {
			if len(cols) != cfg.HazardsPerLane {
				t.Fatalf("seed %d lane %d: %d hazards, want %d", seed, lane, len(cols), cfg.HazardsPerLane)
			}
			for i := 1; i < len(cols); i++ {
				if cols[i] <= cols[i-1] {
					t.Fatalf("seed %d lane %d: hazards not sorted-distinct: %v", seed, lane, cols)
				}
			}
		}
	}
}

func TestChickenRejectsBadActions(t *testing.T) {
	m := chickenModel{}
	cfg, _ := m.BuildConfig(Params{})
	floats := testFloats(1, m.FloatCount(cfg))
	if _, err := m.Resolve(cfg, Action{TargetLanes: cfg.Lanes + 1}, floats); err == nil {
		t.Error("target beyond the last lane accepted")
	}
	if _, err := m.Resolve(cfg, Action{TargetLanes: 1, LanePicks: []int{cfg.SpotsPerLane}}, floats); err == nil {
		t.Error("pick outside the lane accepted")
	}
}

// Survival across n lanes must converge to ((spots-hazards)/spots)^n.
func TestChickenSurvivalRateConverges(t *testing.T) {
	m := chickenModel{}
	cfg, _ := m.BuildConfig(Params{})
	const rounds = 100_000
	wins := 0
	for seed := uint64(0); seed < rounds; seed++ {
		out, err := m.Resolve(cfg, Action{TargetLanes: 2}, testFloats(seed, m.FloatCount(cfg)))
		if err != nil {
			t.Fatal(err)
		}
		if out.IsWin {
			wins++
		}
	}
	got := float64(wins) / rounds
	want := 0.75 * 0.75
	if math.Abs(got-want) > 0.01 {
		t.Errorf("2-lane survival %.4f, want ~%.4f", got, want)
	}
}
