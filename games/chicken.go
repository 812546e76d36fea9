package games

import "fmt"

// chickenModel: the player crosses lanes one at a time; each lane hides
// hazard columns among a fixed number of spots. Surviving lane n pays
// (1-he)/p^n with p = (spots-hazards)/spots, so the RTP is 1-he for any
// target depth.
type chickenModel struct{}

func (chickenModel) Type() Type { return Chicken }

func (chickenModel) BuildConfig(p Params) (Config, error) {
	lanes := p.Lanes
	if lanes == 0 {
		lanes = 5
	}
	lanes = clampInt(lanes, 3, 10)
	spots := p.SpotsPerLane
	if spots == 0 {
		spots = 4
	}
	spots = clampInt(spots, 2, 5)
	hazards := p.HazardsPerLane
	if hazards == 0 {
		hazards = 1
	}
	hazards = clampInt(hazards, 1, spots-1)
	he := clampFloat(p.houseEdge(0.03), 0.01, 0.08)
	max := p.MaxMultiplier
	if max <= 1 {
		max = 10000
	}

	// Exact lane multipliers; capping happens at resolve time.
	survive := float64(spots-hazards) / float64(spots)
	mults := make([]float64, lanes)
	cum := 1.0
	for i := 0; i < lanes; i++ {
		cum *= survive
		mults[i] = (1 - he) / cum
	}

	return Config{
		GameType:       Chicken,
		HouseEdge:      he,
		MaxMultiplier:  max,
		Lanes:          lanes,
		SpotsPerLane:   spots,
		HazardsPerLane: hazards,
		Multipliers:    mults,
	}, nil
}

func (chickenModel) TheoreticalHouseEdge(cfg Config) float64 {
	return cfg.HouseEdge
}

func (chickenModel) FloatCount(cfg Config) int {
	return cfg.Lanes * cfg.HazardsPerLane
}

func (chickenModel) Resolve(cfg Config, action Action, floats []float64) (Outcome, error) {
	lanes, spots, hazards := cfg.Lanes, cfg.SpotsPerLane, cfg.HazardsPerLane
	if len(floats) < lanes*hazards {
		return Outcome{}, ErrShortFloats
	}
	target := action.TargetLanes
	if target == 0 {
		target = 1
	}
	if target < 1 || target > lanes {
		return Outcome{}, fmt.Errorf("%w: target %d of %d lanes", ErrBadAction, target, lanes)
	}
	for _, pick := range action.LanePicks {
		if pick < 0 || pick >= spots {
			return Outcome{}, fmt.Errorf("%w: lane pick %d of %d spots", ErrBadAction, pick, spots)
		}
	}

	pickFor := func(lane int) int {
		if lane < len(action.LanePicks) {
			return action.LanePicks[lane]
		}
		return 0
	}

	out := Outcome{}
	draw := 0
	for lane := 0; lane < target; lane++ {
		// Hazard columns drawn without replacement; each column is
		// equally likely to be a hazard, so any fixed pick survives
		// with probability (spots-hazards)/spots.
		available := make([]int, spots)
		for i := range available {
			available[i] = i
		}
		hazardCols := make([]int, 0, hazards)
		for h := 0; h < hazards; h++ {
			idx := drawIndex(floats[draw], len(available))
			draw++
			hazardCols = append(hazardCols, available[idx])
			available = append(available[:idx], available[idx+1:]...)
		}
		out.HazardColumns = append(out.HazardColumns, sortedInts(hazardCols))

		pick := pickFor(lane)
		for _, hc := range hazardCols {
			if pick == hc {
				out.LanesCrossed = lane
				return out, nil
			}
		}
		out.LanesCrossed = lane + 1
	}

	out.IsWin = true
	out.Multiplier = capMult(cfg.Multipliers[target-1], cfg.MaxMultiplier)
	return out, nil
}

func sortedInts(in []int) []int {
	out := append([]int(nil), in...)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j] < out[j-1]; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// Paytable uses a 3-lane reference crossing (or the full depth on shorter
// boards).
func (chickenModel) Paytable(cfg Config) []PaytableEntry {
	n := 3
	if n > cfg.Lanes {
		n = cfg.Lanes
	}
	survive := float64(cfg.SpotsPerLane-cfg.HazardsPerLane) / float64(cfg.SpotsPerLane)
	p := 1.0
	for i := 0; i < n; i++ {
		p *= survive
	}
	mult := cfg.Multipliers[n-1]
	return []PaytableEntry{
		entry(fmt.Sprintf("cross_%d", n), fmt.Sprintf("Cross %d lanes", n), mult, p),
		entry(fmt.Sprintf("bust_%d", n), fmt.Sprintf("Hit hazard within %d lanes", n), 0, 1-p),
	}
}
