package games

import "fmt"

// scratchModel: one draw against a fixed probability-weighted prize table.
// Winning multipliers are scaled once at config build so the weighted sum
// hits the target RTP.
type scratchModel struct{}

func (scratchModel) Type() Type { return Scratch }

func defaultPrizes() []Prize {
	return []Prize{
		{Label: "Nothing", Multiplier: 0, Probability: 0.55},
		{Label: "Free Card", Multiplier: 1, Probability: 0.20},
		{Label: "2x", Multiplier: 2, Probability: 0.12},
		{Label: "5x", Multiplier: 5, Probability: 0.06},
		{Label: "10x", Multiplier: 10, Probability: 0.04},
		{Label: "25x", Multiplier: 25, Probability: 0.02},
		{Label: "100x", Multiplier: 100, Probability: 0.008},
		{Label: "500x", Multiplier: 500, Probability: 0.002},
	}
}

func prizeRTP(prizes []Prize) float64 {
	var rtp float64
	for _, p := range prizes {
		rtp += p.Multiplier * p.Probability
	}
	return rtp
}

func (scratchModel) BuildConfig(p Params) (Config, error) {
	prizes := p.Prizes
	if len(prizes) == 0 {
		prizes = defaultPrizes()
	} else {
		prizes = append([]Prize(nil), prizes...)
	}
	he := clampFloat(p.houseEdge(0.15), 0.05, 0.40)
	max := p.MaxMultiplier
	if max <= 1 {
		max = 10000
	}

	probs := make([]float64, len(prizes))
	for i := range prizes {
		probs[i] = prizes[i].Probability
	}
	if err := normalizeProbs(probs); err != nil {
		return Config{}, fmt.Errorf("scratch prize table: %w", err)
	}
	for i := range prizes {
		prizes[i].Probability = probs[i]
	}

	cur := prizeRTP(prizes)
	if cur > 0 {
		scale := (1 - he) / cur
		for i := range prizes {
			if prizes[i].Multiplier > 0 {
				prizes[i].Multiplier = round2(prizes[i].Multiplier * scale)
			}
		}
	}
	return Config{
		GameType:      Scratch,
		HouseEdge:     he,
		MaxMultiplier: max,
		Prizes:        prizes,
	}, nil
}

// TheoreticalHouseEdge reads the exact edge off the scaled prize table.
func (scratchModel) TheoreticalHouseEdge(cfg Config) float64 {
	he := 1 - prizeRTP(cfg.Prizes)
	if he < 0 {
		he = 0
	}
	return he
}

func (scratchModel) FloatCount(cfg Config) int { return 1 }

func (scratchModel) Resolve(cfg Config, action Action, floats []float64) (Outcome, error) {
	if len(floats) < 1 {
		return Outcome{}, ErrShortFloats
	}
	if len(cfg.Prizes) == 0 {
		return Outcome{}, fmt.Errorf("games: scratch config has no prizes")
	}
	r := floats[0]
	var cum float64
	idx := len(cfg.Prizes) - 1
	for i, p := range cfg.Prizes {
		cum += p.Probability
		if r < cum {
			idx = i
			break
		}
	}
	prize := cfg.Prizes[idx]
	mult := capMult(prize.Multiplier, cfg.MaxMultiplier)
	return Outcome{
		Multiplier: mult,
		IsWin:      mult > 0,
		Prize:      prize.Label,
	}, nil
}

func (scratchModel) Paytable(cfg Config) []PaytableEntry {
	out := make([]PaytableEntry, 0, len(cfg.Prizes))
	for i, p := range cfg.Prizes {
		out = append(out, entry(
			fmt.Sprintf("prize_%d", i),
			p.Label,
			p.Multiplier, p.Probability))
	}
	return out
}
