package sim

import "github.com/playfair-labs/rmg-engine/games"

// sampleAction draws a representative player action for one simulated round.
// Every model prices its multiplier so the RTP is invariant under the
// player's choice, so the policy only needs to cover the action space, not
// optimize it.
func sampleAction(gt games.Type, cfg games.Config, rng *RNG) games.Action {
	switch gt {
	case games.Crash:
		// The common auto-cashout play.
		return games.Action{CashoutAt: 2.0}
	case games.Mines:
		max := cfg.GridSize - cfg.MineCount
		if max > 5 {
			max = 5
		}
		return games.Action{Reveals: 1 + rng.Intn(max)}
	case games.Dice:
		return games.Action{
			Threshold: 10 + rng.Float64()*80,
			Over:      rng.Float64() < 0.5,
		}
	case games.HiLo:
		// Empty guess resolves to the optimal direction.
		return games.Action{}
	case games.Chicken:
		return games.Action{TargetLanes: 1 + rng.Intn(cfg.Lanes)}
	default:
		// plinko, wheel, scratch take no player choices.
		return games.Action{}
	}
}
