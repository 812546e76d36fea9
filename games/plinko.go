package games

import "fmt"

// plinkoModel: the ball takes one left/right step per row, so the landing
// bucket is binomial. Bucket multipliers are shaped by risk tier and scaled
// once at config build so sum C(n,k)/2^n * mult_k equals the target RTP.
type plinkoModel struct{}

func (plinkoModel) Type() Type { return Plinko }

// risk tier shapes: edge multiplier and center multiplier before scaling.
var plinkoShapes = map[string][2]float64{
	"low":    {5, 0.3},
	"medium": {20, 0.1},
	"high":   {100, 0},
}

// binomialProbs returns C(rows, k) / 2^rows for k = 0..rows.
func binomialProbs(rows int) []float64 {
	probs := make([]float64, rows+1)
	c := 1.0
	for k := 0; k <= rows; k++ {
		if k > 0 {
			c = c * float64(rows-k+1) / float64(k)
		}
		probs[k] = c
	}
	total := float64(uint64(1) << uint(rows))
	for k := range probs {
		probs[k] /= total
	}
	return probs
}

func (plinkoModel) BuildConfig(p Params) (Config, error) {
	rows := p.Rows
	if rows == 0 {
		rows = 12
	}
	rows = clampInt(rows, 8, 16)
	risk := p.Volatility
	if _, ok := plinkoShapes[risk]; !ok {
		risk = "medium"
	}
	he := clampFloat(p.houseEdge(0.02), 0.005, 0.10)
	max := p.MaxMultiplier
	if max <= 1 {
		max = 10000
	}

	probs := binomialProbs(rows)
	shape := plinkoShapes[risk]
	edge, center := shape[0], shape[1]
	n := rows + 1
	half := float64(n / 2)
	mults := make([]float64, n)
	var cur float64
	for i := range mults {
		d := float64(i) - half
		if d < 0 {
			d = -d
		}
		mults[i] = center + (edge-center)*(d/half)*(d/half)
		cur += probs[i] * mults[i]
	}
	scale := (1 - he) / cur
	for i := range mults {
		mults[i] = round2(mults[i] * scale)
	}

	return Config{
		GameType:      Plinko,
		HouseEdge:     he,
		MaxMultiplier: max,
		Rows:          rows,
		Risk:          risk,
		Multipliers:   mults,
	}, nil
}

// TheoreticalHouseEdge reads the exact binomial RTP off the built table, so
// the rounding applied to the display multipliers is accounted for.
func (plinkoModel) TheoreticalHouseEdge(cfg Config) float64 {
	probs := binomialProbs(cfg.Rows)
	var rtp float64
	for k, p := range probs {
		if k < len(cfg.Multipliers) {
			rtp += p * cfg.Multipliers[k]
		}
	}
	he := 1 - rtp
	if he < 0 {
		he = 0
	}
	return he
}

func (plinkoModel) FloatCount(cfg Config) int { return cfg.Rows }

func (plinkoModel) Resolve(cfg Config, action Action, floats []float64) (Outcome, error) {
	if len(floats) < cfg.Rows {
		return Outcome{}, ErrShortFloats
	}
	if len(cfg.Multipliers) != cfg.Rows+1 {
		return Outcome{}, fmt.Errorf("games: plinko config has %d multipliers for %d rows", len(cfg.Multipliers), cfg.Rows)
	}
	bucket := 0
	path := make([]byte, cfg.Rows)
	for i := 0; i < cfg.Rows; i++ {
		if floats[i] < 0.5 {
			path[i] = 'L'
		} else {
			path[i] = 'R'
			bucket++
		}
	}
	mult := capMult(cfg.Multipliers[bucket], cfg.MaxMultiplier)
	return Outcome{
		Multiplier: mult,
		IsWin:      mult > 0,
		Bucket:     bucket,
		Path:       string(path),
	}, nil
}

func (plinkoModel) Paytable(cfg Config) []PaytableEntry {
	probs := binomialProbs(cfg.Rows)
	out := make([]PaytableEntry, 0, len(probs))
	for k, p := range probs {
		var mult float64
		if k < len(cfg.Multipliers) {
			mult = cfg.Multipliers[k]
		}
		out = append(out, entry(
			fmt.Sprintf("bucket_%d", k),
			fmt.Sprintf("Bucket %d (%.2f%%)", k, p*100),
			mult, p))
	}
	return out
}
