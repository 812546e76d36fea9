package games

import (
	"fmt"
	"math"
)

// crashModel: the multiplier climbs until a hidden crash point. The crash
// point follows P(crash < x) = 1 - (1-he)/x for x >= 1, so any fixed
// cashout target M wins with probability (1-he)/M and the RTP is 1-he
// regardless of strategy.
type crashModel struct{}

func (crashModel) Type() Type { return Crash }

func (crashModel) BuildConfig(p Params) (Config, error) {
	he := clampFloat(p.houseEdge(0.03), 0.005, 0.10)
	max := p.MaxMultiplier
	if max <= 1 {
		max = 1000
	}
	return Config{
		GameType:      Crash,
		HouseEdge:     he,
		MaxMultiplier: max,
	}, nil
}

func (crashModel) TheoreticalHouseEdge(cfg Config) float64 {
	return cfg.HouseEdge
}

func (crashModel) FloatCount(cfg Config) int { return 1 }

func (crashModel) Resolve(cfg Config, action Action, floats []float64) (Outcome, error) {
	if len(floats) < 1 {
		return Outcome{}, ErrShortFloats
	}
	target := action.CashoutAt
	if target == 0 {
		target = 2.0
	}
	if target <= 1 || target > cfg.MaxMultiplier {
		return Outcome{}, fmt.Errorf("%w: cashout target %v", ErrBadAction, target)
	}

	r := floats[0]
	he := cfg.HouseEdge
	var crash float64
	bust := r < he
	if bust {
		crash = 1.0
	} else {
		crash = (1 - he) / (1 - r)
		crash = math.Floor(crash*100) / 100
		if crash > cfg.MaxMultiplier {
			crash = cfg.MaxMultiplier
		}
	}

	out := Outcome{
		CrashPoint:  crash,
		InstantBust: bust,
		CashedOutAt: target,
	}
	if !bust && crash >= target {
		out.IsWin = true
		out.Multiplier = capMult(target, cfg.MaxMultiplier)
	}
	return out, nil
}

// Paytable uses the 2x auto-cashout reference bet, the most common play.
// Any other target has the same RTP by construction.
func (crashModel) Paytable(cfg Config) []PaytableEntry {
	rtp := 1 - cfg.HouseEdge
	pWin := rtp / 2
	return []PaytableEntry{
		entry("bust", "Crash before 2x cashout", 0, 1-pWin),
		entry("win_2x", "Cash out at 2x", 2.0, pWin),
	}
}
