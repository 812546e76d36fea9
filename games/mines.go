package games

import "fmt"

// minesModel: mine positions are a uniform random subset of the grid,
// placed by a draw-seeded Fisher-Yates shuffle. Revealing n tiles survives
// with the hypergeometric probability prod (safe-i)/(grid-i), and the
// multiplier (1-he)/P(survive) makes the RTP 1-he for any reveal count.
type minesModel struct{}

func (minesModel) Type() Type { return Mines }

func (minesModel) BuildConfig(p Params) (Config, error) {
	grid := p.GridSize
	if grid == 0 {
		grid = 25
	}
	grid = clampInt(grid, 9, 36)
	mines := p.MineCount
	if mines == 0 {
		mines = 5
	}
	mines = clampInt(mines, 1, grid-1)
	he := clampFloat(p.houseEdge(0.03), 0.005, 0.10)
	max := p.MaxMultiplier
	if max <= 1 {
		max = 10000
	}
	return Config{
		GameType:      Mines,
		HouseEdge:     he,
		MaxMultiplier: max,
		GridSize:      grid,
		MineCount:     mines,
	}, nil
}

func (minesModel) TheoreticalHouseEdge(cfg Config) float64 {
	return cfg.HouseEdge
}

// FloatCount covers the full board shuffle: grid-1 swaps.
func (minesModel) FloatCount(cfg Config) int { return cfg.GridSize - 1 }

// surviveProb is the chance that n fixed tiles are all safe.
func surviveProb(grid, mines, n int) float64 {
	safe := grid - mines
	if n < 1 || n > safe {
		return 0
	}
	p := 1.0
	for i := 0; i < n; i++ {
		p *= float64(safe-i) / float64(grid-i)
	}
	return p
}

func (minesModel) Resolve(cfg Config, action Action, floats []float64) (Outcome, error) {
	grid, mines := cfg.GridSize, cfg.MineCount
	safe := grid - mines
	if len(floats) < grid-1 {
		return Outcome{}, ErrShortFloats
	}
	reveals := action.Reveals
	if reveals == 0 {
		reveals = 1
	}
	if reveals < 1 || reveals > safe {
		return Outcome{}, fmt.Errorf("%w: %d reveals on a board with %d safe tiles", ErrBadAction, reveals, safe)
	}

	// Fisher-Yates over all cells; the first mines entries become mines.
	positions := make([]int, grid)
	for i := range positions {
		positions[i] = i
	}
	for i := grid - 1; i >= 1; i-- {
		j := drawIndex(floats[grid-1-i], i+1)
		positions[i], positions[j] = positions[j], positions[i]
	}
	mineSet := make(map[int]bool, mines)
	minePositions := make([]int, 0, mines)
	for _, pos := range positions[:mines] {
		mineSet[pos] = true
	}
	for c := 0; c < grid; c++ {
		if mineSet[c] {
			minePositions = append(minePositions, c)
		}
	}

	// Tiles are revealed in cell order 0..n-1; the mine subset is uniform,
	// so the survival law is the same for any fixed tile choice.
	out := Outcome{MinePositions: minePositions}
	for step := 0; step < reveals; step++ {
		if mineSet[step] {
			out.SafeReveals = step
			return out, nil
		}
	}
	out.SafeReveals = reveals
	out.IsWin = true
	out.Multiplier = capMult((1-cfg.HouseEdge)/surviveProb(grid, mines, reveals), cfg.MaxMultiplier)
	return out, nil
}

// Paytable uses the 3-reveal reference bet (or fewer on tiny boards),
// keeping the survival probability exact for the RTP proof.
func (minesModel) Paytable(cfg Config) []PaytableEntry {
	n := 3
	if safe := cfg.GridSize - cfg.MineCount; n > safe {
		n = safe
	}
	p := surviveProb(cfg.GridSize, cfg.MineCount, n)
	mult := (1 - cfg.HouseEdge) / p
	return []PaytableEntry{
		entry(fmt.Sprintf("win_%drev", n), fmt.Sprintf("%d safe reveals", n), mult, p),
		entry(fmt.Sprintf("bust_%drev", n), fmt.Sprintf("Hit mine within %d reveals", n), 0, 1-p),
	}
}
