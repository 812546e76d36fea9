package sim

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/playfair-labs/rmg-engine/games"
)

const (
	// DefaultTolerance is the accepted gap between measured and
	// theoretical house edge.
	DefaultTolerance = 0.005
	// MinSampleSize is the round count below which a run is reported as
	// low confidence instead of pass/fail.
	MinSampleSize = 100_000

	// varianceSample caps the secondary sample used for the confidence
	// interval estimate.
	varianceSample = 1000
)

// bucketLabels in ascending multiplier order, for stable report output.
var bucketLabels = []string{"0x", "1-2x", "2-5x", "5-10x", "10-50x", "50-100x", "100x+"}

func bucketFor(mult float64) string {
	switch {
	case mult == 0:
		return "0x"
	case mult < 2:
		return "1-2x"
	case mult < 5:
		return "2-5x"
	case mult < 10:
		return "5-10x"
	case mult < 50:
		return "10-50x"
	case mult < 100:
		return "50-100x"
	default:
		return "100x+"
	}
}

// Result is one Monte Carlo run over a fixed game config.
type Result struct {
	GameType             games.Type         `json:"game_type"`
	Rounds               int                `json:"rounds"`
	HouseEdgeTheoretical float64            `json:"house_edge_theoretical"`
	HouseEdgeMeasured    float64            `json:"house_edge_measured"`
	RTP                  float64            `json:"rtp"`
	AvgMultiplier        float64            `json:"avg_multiplier"`
	MaxMultiplierHit     float64            `json:"max_multiplier_hit"`
	HitRate              float64            `json:"hit_rate"`
	TotalWagered         float64            `json:"total_wagered"`
	TotalReturned        float64            `json:"total_returned"`
	Confidence95         [2]float64         `json:"confidence_95"`
	Distribution         map[string]float64 `json:"distribution"`
	MaxWinStreak         int                `json:"max_win_streak"`
	MaxLossStreak        int                `json:"max_loss_streak"`
	Tolerance            float64            `json:"tolerance"`
	Passed               bool               `json:"passed"`
	LowConfidence        bool               `json:"low_confidence"`
	Detail               string             `json:"detail"`
}

// Options tune a run. Zero values mean defaults: DefaultTolerance and a
// single shard.
type Options struct {
	Rounds    int
	Seed      uint64
	Tolerance float64
	Shards    int
}

// accumulator collects per-shard tallies that merge associatively.
type accumulator struct {
	rounds        int
	returned      float64
	wins          int
	maxMult       float64
	buckets       map[string]int
	maxWinStreak  int
	maxLossStreak int
	sample        []float64
	err           error
}

func runShard(m games.Model, cfg games.Config, rounds int, seed uint64, sampleCap int) accumulator {
	acc := accumulator{buckets: make(map[string]int)}
	rng := NewRNG(seed)
	floats := make([]float64, m.FloatCount(cfg))
	winStreak, lossStreak := 0, 0
	for i := 0; i < rounds; i++ {
		action := sampleAction(m.Type(), cfg, rng)
		for j := range floats {
			floats[j] = rng.Float64()
		}
		out, err := m.Resolve(cfg, action, floats)
		if err != nil {
			acc.err = fmt.Errorf("sim: round %d: %w", i, err)
			return acc
		}
		acc.rounds++
		acc.returned += out.Multiplier
		if out.Multiplier > 0 {
			acc.wins++
			winStreak++
			lossStreak = 0
		} else {
			lossStreak++
			winStreak = 0
		}
		if winStreak > acc.maxWinStreak {
			acc.maxWinStreak = winStreak
		}
		if lossStreak > acc.maxLossStreak {
			acc.maxLossStreak = lossStreak
		}
		if out.Multiplier > acc.maxMult {
			acc.maxMult = out.Multiplier
		}
		acc.buckets[bucketFor(out.Multiplier)]++
		if len(acc.sample) < sampleCap {
			acc.sample = append(acc.sample, out.Multiplier)
		}
	}
	return acc
}

// Simulate runs rounds independent resolutions on a single goroutine.
func Simulate(m games.Model, cfg games.Config, rounds int, seed uint64) (Result, error) {
	return Run(m, cfg, Options{Rounds: rounds, Seed: seed})
}

// SimulateParallel shards the run across goroutines. Each simulated round is
// stateless, so shard tallies sum exactly; streak maxima are taken per shard.
func SimulateParallel(m games.Model, cfg games.Config, rounds int, seed uint64, shards int) (Result, error) {
	return Run(m, cfg, Options{Rounds: rounds, Seed: seed, Shards: shards})
}

// Run executes a Monte Carlo validation with explicit options.
func Run(m games.Model, cfg games.Config, opts Options) (Result, error) {
	if opts.Rounds <= 0 {
		return Result{}, fmt.Errorf("sim: round count %d", opts.Rounds)
	}
	tol := opts.Tolerance
	if tol <= 0 {
		tol = DefaultTolerance
	}
	shards := opts.Shards
	if shards <= 0 {
		shards = 1
	}
	if shards > opts.Rounds {
		shards = opts.Rounds
	}

	accs := make([]accumulator, shards)
	per := opts.Rounds / shards
	sampleCap := (varianceSample + shards - 1) / shards
	var wg sync.WaitGroup
	for s := 0; s < shards; s++ {
		n := per
		if s == shards-1 {
			n = opts.Rounds - per*(shards-1)
		}
		wg.Add(1)
		go func(s, n int) {
			defer wg.Done()
			// Shard seeds are spaced so their splitmix counters
			// never overlap.
			accs[s] = runShard(m, cfg, n, opts.Seed+uint64(s)*0x5DEECE66D, sampleCap)
		}(s, n)
	}
	wg.Wait()

	merged := accumulator{buckets: make(map[string]int)}
	for _, a := range accs {
		if a.err != nil {
			return Result{}, a.err
		}
		merged.rounds += a.rounds
		merged.returned += a.returned
		merged.wins += a.wins
		if a.maxMult > merged.maxMult {
			merged.maxMult = a.maxMult
		}
		if a.maxWinStreak > merged.maxWinStreak {
			merged.maxWinStreak = a.maxWinStreak
		}
		if a.maxLossStreak > merged.maxLossStreak {
			merged.maxLossStreak = a.maxLossStreak
		}
		for k, v := range a.buckets {
			merged.buckets[k] += v
		}
		merged.sample = append(merged.sample, a.sample...)
	}

	rounds := merged.rounds
	rtp := merged.returned / float64(rounds)
	heMeasured := 1 - rtp
	heTheory := m.TheoreticalHouseEdge(cfg)

	// 95% CI for the measured edge from the secondary sample variance.
	var variance float64
	if len(merged.sample) > 0 {
		for _, mult := range merged.sample {
			d := mult - rtp
			variance += d * d
		}
		variance /= float64(len(merged.sample))
	}
	stdErr := math.Sqrt(variance / float64(rounds))
	ci := [2]float64{heMeasured - 1.96*stdErr, heMeasured + 1.96*stdErr}

	dist := make(map[string]float64, len(merged.buckets))
	for k, v := range merged.buckets {
		dist[k] = float64(v) / float64(rounds)
	}

	res := Result{
		GameType:             m.Type(),
		Rounds:               rounds,
		HouseEdgeTheoretical: heTheory,
		HouseEdgeMeasured:    heMeasured,
		RTP:                  rtp,
		AvgMultiplier:        rtp,
		MaxMultiplierHit:     merged.maxMult,
		HitRate:              float64(merged.wins) / float64(rounds),
		TotalWagered:         float64(rounds),
		TotalReturned:        merged.returned,
		Confidence95:         ci,
		Distribution:         dist,
		MaxWinStreak:         merged.maxWinStreak,
		MaxLossStreak:        merged.maxLossStreak,
		Tolerance:            tol,
	}

	gap := math.Abs(heMeasured - heTheory)
	switch {
	case rounds < MinSampleSize:
		res.LowConfidence = true
		res.Detail = fmt.Sprintf("sample of %d rounds is below the %d minimum; not asserting pass/fail", rounds, MinSampleSize)
	case gap < tol:
		res.Passed = true
		res.Detail = fmt.Sprintf("measured edge %.5f within %.3f of theoretical %.5f", heMeasured, tol, heTheory)
	default:
		res.Detail = fmt.Sprintf("measured edge %.5f deviates %.5f from theoretical %.5f (tolerance %.3f)", heMeasured, gap, heTheory, tol)
	}
	return res, nil
}

// ValidateAll runs every model in the table against its default config and
// reports per-game results in canonical order.
func ValidateAll(table *games.Table, rounds int, seed uint64) ([]Result, error) {
	types := table.Types()
	out := make([]Result, 0, len(types))
	for i, gt := range types {
		m, err := table.Get(gt)
		if err != nil {
			return nil, err
		}
		cfg, err := m.BuildConfig(games.Params{})
		if err != nil {
			return nil, fmt.Errorf("sim: %s config: %w", gt, err)
		}
		res, err := SimulateParallel(m, cfg, rounds, seed+uint64(i), 4)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, nil
}

// Summary renders a one-line-per-game digest of a validation batch.
func Summary(results []Result) string {
	var b strings.Builder
	sorted := append([]Result(nil), results...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].GameType < sorted[j].GameType })
	for _, r := range sorted {
		status := "PASS"
		if r.LowConfidence {
			status = "LOW-CONFIDENCE"
		} else if !r.Passed {
			status = "FAIL"
		}
		fmt.Fprintf(&b, "%-8s rounds=%-9d rtp=%.4f edge=%.5f/%.5f %s\n",
			r.GameType, r.Rounds, r.RTP, r.HouseEdgeMeasured, r.HouseEdgeTheoretical, status)
	}
	return b.String()
}
