// Package games holds the math models for the eight mini-game variants.
//
// Every model is a pure mapping from externally supplied uniform draws to an
// outcome and multiplier. Models never call a randomness source themselves:
// the ledger feeds them hash-derived floats for real rounds and the Monte
// Carlo validator feeds them statistical ones, so any stored round can be
// replayed bit-for-bit during verification.
package games

import (
	"errors"
	"fmt"
	"math"
	"sync"
)

// Type tags a game variant. The set is closed: every Type registered in
// NewTable implements the full Model contract.
type Type string

const (
	Crash   Type = "crash"
	Mines   Type = "mines"
	Plinko  Type = "plinko"
	Dice    Type = "dice"
	Wheel   Type = "wheel"
	HiLo    Type = "hilo"
	Chicken Type = "chicken"
	Scratch Type = "scratch"
)

// AllTypes is the canonical ordering used by listings and reports.
var AllTypes = []Type{Crash, Mines, Plinko, Dice, Wheel, HiLo, Chicken, Scratch}

var (
	ErrUnknownGameType = errors.New("games: unknown game type")
	ErrBadAction       = errors.New("games: invalid player action")
	ErrShortFloats     = errors.New("games: not enough random draws supplied")
)

// Segment is one weighted wheel slice.
type Segment struct {
	Label      string  `json:"label"`
	Multiplier float64 `json:"multiplier"`
	Weight     int64   `json:"weight"`
}

// Prize is one row of a scratch prize table.
type Prize struct {
	Label       string  `json:"label"`
	Multiplier  float64 `json:"multiplier"`
	Probability float64 `json:"probability"`
}

// Config is the per-round game configuration. Built once by a model's
// BuildConfig, immutable afterwards, and stored with every round so audits
// can replay it.
type Config struct {
	GameType      Type    `json:"game_type"`
	HouseEdge     float64 `json:"house_edge"`
	MaxMultiplier float64 `json:"max_multiplier"`

	// mines
	GridSize  int `json:"grid_size,omitempty"`
	MineCount int `json:"mine_count,omitempty"`

	// plinko (Multipliers by bucket) and chicken (Multipliers by lane)
	Rows        int       `json:"rows,omitempty"`
	Risk        string    `json:"risk,omitempty"`
	Multipliers []float64 `json:"multipliers,omitempty"`

	// wheel
	Segments []Segment `json:"segments,omitempty"`

	// hilo
	CardValues int `json:"card_values,omitempty"`

	// chicken
	Lanes          int `json:"lanes,omitempty"`
	SpotsPerLane   int `json:"spots_per_lane,omitempty"`
	HazardsPerLane int `json:"hazards_per_lane,omitempty"`

	// scratch
	Prizes []Prize `json:"prizes,omitempty"`
}

// Params are the high-level inputs a config is built from. Zero values mean
// "model default". TargetRTP is an alternative to HouseEdge; HouseEdge wins
// when both are set.
type Params struct {
	HouseEdge     float64
	TargetRTP     float64
	MaxMultiplier float64
	Volatility    string

	GridSize       int
	MineCount      int
	Rows           int
	CardValues     int
	Lanes          int
	SpotsPerLane   int
	HazardsPerLane int
	Segments       []Segment
	Prizes         []Prize
}

// houseEdge resolves the edge input, falling back to def.
func (p Params) houseEdge(def float64) float64 {
	if p.HouseEdge > 0 {
		return p.HouseEdge
	}
	if p.TargetRTP > 0 && p.TargetRTP < 1 {
		return 1 - p.TargetRTP
	}
	return def
}

// Action carries the player's choices for one round. Fields are
// per-variant; models validate the ones they read and ignore the rest.
type Action struct {
	CashoutAt   float64 `json:"cashout_at,omitempty"`   // crash: target multiplier, > 1
	Reveals     int     `json:"reveals,omitempty"`      // mines: tiles to reveal
	Threshold   float64 `json:"threshold,omitempty"`    // dice: 0 < t < 100
	Over        bool    `json:"over,omitempty"`         // dice: roll over vs under
	Guess       string  `json:"guess,omitempty"`        // hilo: "hi", "lo", "" = optimal
	TargetLanes int     `json:"target_lanes,omitempty"` // chicken: lanes to cross
	LanePicks   []int   `json:"lane_picks,omitempty"`   // chicken: chosen column per lane
}

// Outcome is the resolved result of one round. Multiplier is always exact
// zero on a loss, never negative or NaN, and capped at the config maximum.
type Outcome struct {
	Multiplier float64 `json:"multiplier"`
	IsWin      bool    `json:"is_win"`

	CrashPoint  float64 `json:"crash_point,omitempty"`
	InstantBust bool    `json:"is_instant_bust,omitempty"`
	CashedOutAt float64 `json:"cashed_out_at,omitempty"`

	MinePositions []int `json:"mine_positions,omitempty"`
	SafeReveals   int   `json:"safe_reveals,omitempty"`

	Bucket int    `json:"bucket,omitempty"`
	Path   string `json:"path,omitempty"`

	Roll float64 `json:"roll,omitempty"`

	Segment      int    `json:"segment,omitempty"`
	SegmentLabel string `json:"segment_label,omitempty"`

	FirstCard  int  `json:"first_card,omitempty"`
	FirstSuit  int  `json:"first_suit,omitempty"`
	SecondCard int  `json:"second_card,omitempty"`
	SecondSuit int  `json:"second_suit,omitempty"`
	IsTie      bool `json:"is_tie,omitempty"`

	HazardColumns [][]int `json:"hazard_columns,omitempty"`
	LanesCrossed  int     `json:"lanes_crossed,omitempty"`

	Prize string `json:"prize,omitempty"`
}

// PaytableEntry is one row of a model's complete outcome/probability table,
// the unit of the certification RTP proof.
type PaytableEntry struct {
	OutcomeID    string  `json:"outcome_id"`
	Description  string  `json:"description"`
	Multiplier   float64 `json:"multiplier"`
	Probability  float64 `json:"probability"`
	Contribution float64 `json:"contribution"`
}

func entry(id, desc string, mult, prob float64) PaytableEntry {
	return PaytableEntry{
		OutcomeID:    id,
		Description:  desc,
		Multiplier:   mult,
		Probability:  prob,
		Contribution: mult * prob,
	}
}

// Model is the contract every variant implements.
type Model interface {
	Type() Type
	// BuildConfig clamps inputs to safe ranges and solves any derived
	// tables so the config hits its target RTP.
	BuildConfig(p Params) (Config, error)
	// TheoreticalHouseEdge computes the closed-form edge for a config,
	// without simulation.
	TheoreticalHouseEdge(cfg Config) float64
	// FloatCount reports how many uniform draws one round consumes.
	FloatCount(cfg Config) int
	// Resolve maps draws to an outcome. floats[0] is the round's primary
	// raw value; the rest are auxiliary draws.
	Resolve(cfg Config, action Action, floats []float64) (Outcome, error)
	// Paytable returns the complete outcome table for certification.
	Paytable(cfg Config) []PaytableEntry
}

// Table maps game types to models. It is built explicitly at startup and
// injected wherever dispatch is needed, so tests can substitute models
// without process-wide state.
type Table struct {
	mu     sync.RWMutex
	models map[Type]Model
}

// NewTable returns a table with all eight production models registered.
func NewTable() *Table {
	t := &Table{models: make(map[Type]Model)}
	t.Register(crashModel{})
	t.Register(minesModel{})
	t.Register(plinkoModel{})
	t.Register(diceModel{})
	t.Register(wheelModel{})
	t.Register(hiloModel{})
	t.Register(chickenModel{})
	t.Register(scratchModel{})
	return t
}

// NewEmptyTable returns a table with nothing registered, for tests.
func NewEmptyTable() *Table {
	return &Table{models: make(map[Type]Model)}
}

func (t *Table) Register(m Model) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.models[m.Type()] = m
}

func (t *Table) Get(gt Type) (Model, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	m, ok := t.models[gt]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownGameType, gt)
	}
	return m, nil
}

// Types lists registered game types in canonical order.
func (t *Table) Types() []Type {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Type, 0, len(t.models))
	for _, gt := range AllTypes {
		if _, ok := t.models[gt]; ok {
			out = append(out, gt)
		}
	}
	return out
}

// clampFloat bounds v to [lo, hi].
func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// round2 rounds to two decimals, the display precision for multipliers.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// capMult enforces the configured multiplier ceiling. Zero or negative
// inputs collapse to exact zero.
func capMult(mult, max float64) float64 {
	if mult <= 0 || math.IsNaN(mult) {
		return 0
	}
	if max > 0 && mult > max {
		return max
	}
	return mult
}

// normalizeProbs scales probabilities to sum to exactly 1.0, absorbing the
// float rounding residue into the last entry.
func normalizeProbs(ps []float64) error {
	var sum float64
	for _, p := range ps {
		if p < 0 {
			return errors.New("games: negative probability")
		}
		sum += p
	}
	if sum <= 0 {
		return errors.New("games: probabilities sum to zero")
	}
	for i := range ps {
		ps[i] /= sum
	}
	var head float64
	for _, p := range ps[:len(ps)-1] {
		head += p
	}
	ps[len(ps)-1] = 1 - head
	return nil
}

// drawIndex maps a unit float to an index in [0, n).
func drawIndex(f float64, n int) int {
	idx := int(f * float64(n))
	if idx >= n {
		idx = n - 1
	}
	if idx < 0 {
		idx = 0
	}
	return idx
}
