package games

import "fmt"

// diceModel: a uniform roll in [0, 100) against a player-chosen threshold
// and direction. The multiplier (1-he)/P(win) is recomputed per threshold,
// so the RTP is 1-he for every choice.
type diceModel struct{}

func (diceModel) Type() Type { return Dice }

func (diceModel) BuildConfig(p Params) (Config, error) {
	he := clampFloat(p.houseEdge(0.01), 0.005, 0.05)
	max := p.MaxMultiplier
	if max <= 1 {
		max = 10000
	}
	return Config{
		GameType:      Dice,
		HouseEdge:     he,
		MaxMultiplier: max,
	}, nil
}

func (diceModel) TheoreticalHouseEdge(cfg Config) float64 {
	return cfg.HouseEdge
}

func (diceModel) FloatCount(cfg Config) int { return 1 }

func (diceModel) Resolve(cfg Config, action Action, floats []float64) (Outcome, error) {
	if len(floats) < 1 {
		return Outcome{}, ErrShortFloats
	}
	threshold := action.Threshold
	if threshold == 0 {
		threshold = 50
	}
	if threshold <= 0 || threshold >= 100 {
		return Outcome{}, fmt.Errorf("%w: dice threshold %v", ErrBadAction, threshold)
	}

	roll := floats[0] * 100
	var winProb float64
	var won bool
	if action.Over {
		winProb = (100 - threshold) / 100
		won = roll > threshold
	} else {
		winProb = threshold / 100
		won = roll < threshold
	}

	out := Outcome{Roll: roll}
	if won && winProb > 0 {
		out.IsWin = true
		out.Multiplier = capMult((1-cfg.HouseEdge)/winProb, cfg.MaxMultiplier)
	}
	return out, nil
}

// Paytable uses the 50/50 reference bet.
func (diceModel) Paytable(cfg Config) []PaytableEntry {
	mult := (1 - cfg.HouseEdge) / 0.5
	return []PaytableEntry{
		entry("win_50", "Correct prediction (50%)", mult, 0.5),
		entry("lose_50", "Wrong prediction (50%)", 0, 0.5),
	}
}
