package games

import "fmt"

// wheelModel: a spin lands on one of a set of weighted segments. Segment
// multipliers are scaled once at config build so the weighted sum hits the
// target RTP.
type wheelModel struct{}

func (wheelModel) Type() Type { return Wheel }

func defaultSegments() []Segment {
	return []Segment{
		{Label: "0x", Multiplier: 0, Weight: 10},
		{Label: "1x", Multiplier: 1, Weight: 25},
		{Label: "1.5x", Multiplier: 1.5, Weight: 20},
		{Label: "2x", Multiplier: 2, Weight: 15},
		{Label: "3x", Multiplier: 3, Weight: 10},
		{Label: "5x", Multiplier: 5, Weight: 8},
		{Label: "10x", Multiplier: 10, Weight: 5},
		{Label: "25x", Multiplier: 25, Weight: 4},
		{Label: "50x", Multiplier: 50, Weight: 2},
		{Label: "100x", Multiplier: 100, Weight: 1},
	}
}

func segmentWeight(segs []Segment) int64 {
	var total int64
	for _, s := range segs {
		if s.Weight > 0 {
			total += s.Weight
		}
	}
	return total
}

func segmentRTP(segs []Segment) float64 {
	total := segmentWeight(segs)
	if total == 0 {
		return 0
	}
	var rtp float64
	for _, s := range segs {
		if s.Weight > 0 {
			rtp += s.Multiplier * float64(s.Weight) / float64(total)
		}
	}
	return rtp
}

func (wheelModel) BuildConfig(p Params) (Config, error) {
	segs := p.Segments
	if len(segs) == 0 {
		segs = defaultSegments()
	} else {
		segs = append([]Segment(nil), segs...)
	}
	if segmentWeight(segs) <= 0 {
		return Config{}, fmt.Errorf("games: wheel segments carry no weight")
	}
	he := clampFloat(p.houseEdge(0.05), 0.01, 0.10)
	max := p.MaxMultiplier
	if max <= 1 {
		max = 10000
	}

	cur := segmentRTP(segs)
	if cur > 0 {
		scale := (1 - he) / cur
		for i := range segs {
			segs[i].Multiplier = round2(segs[i].Multiplier * scale)
		}
	}
	return Config{
		GameType:      Wheel,
		HouseEdge:     he,
		MaxMultiplier: max,
		Segments:      segs,
	}, nil
}

// TheoreticalHouseEdge reads the exact edge off the scaled segment table.
func (wheelModel) TheoreticalHouseEdge(cfg Config) float64 {
	he := 1 - segmentRTP(cfg.Segments)
	if he < 0 {
		he = 0
	}
	return he
}

func (wheelModel) FloatCount(cfg Config) int { return 1 }

func (wheelModel) Resolve(cfg Config, action Action, floats []float64) (Outcome, error) {
	if len(floats) < 1 {
		return Outcome{}, ErrShortFloats
	}
	total := segmentWeight(cfg.Segments)
	if total <= 0 {
		return Outcome{}, fmt.Errorf("games: wheel config carries no weight")
	}
	x := floats[0] * float64(total)
	var cum float64
	idx := len(cfg.Segments) - 1
	for i, s := range cfg.Segments {
		if s.Weight <= 0 {
			continue
		}
		cum += float64(s.Weight)
		if x < cum {
			idx = i
			break
		}
	}
	seg := cfg.Segments[idx]
	mult := capMult(seg.Multiplier, cfg.MaxMultiplier)
	return Outcome{
		Multiplier:   mult,
		IsWin:        mult > 0,
		Segment:      idx,
		SegmentLabel: seg.Label,
	}, nil
}

func (wheelModel) Paytable(cfg Config) []PaytableEntry {
	total := segmentWeight(cfg.Segments)
	out := make([]PaytableEntry, 0, len(cfg.Segments))
	probs := make([]float64, 0, len(cfg.Segments))
	for _, s := range cfg.Segments {
		if s.Weight <= 0 {
			continue
		}
		probs = append(probs, float64(s.Weight)/float64(total))
	}
	_ = normalizeProbs(probs)
	i := 0
	for segIdx, s := range cfg.Segments {
		if s.Weight <= 0 {
			continue
		}
		out = append(out, entry(
			fmt.Sprintf("seg_%d", segIdx),
			fmt.Sprintf("Segment %d: %s", segIdx, s.Label),
			s.Multiplier, probs[i]))
		i++
	}
	return out
}
