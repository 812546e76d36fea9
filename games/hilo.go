package games

import "fmt"

// hiloModel: two card draws from a fixed value range; the player guesses
// whether the second is higher or lower. An exact tie always loses - that
// is the house's structural edge on top of the priced edge. The multiplier
// denominator excludes ties (favorable/(values-1)) while ties still count
// as losses, so the effective edge is larger than the priced house_edge;
// TheoreticalHouseEdge computes it with the same convention Resolve uses.
type hiloModel struct{}

func (hiloModel) Type() Type { return HiLo }

func (hiloModel) BuildConfig(p Params) (Config, error) {
	values := p.CardValues
	if values == 0 {
		values = 13
	}
	values = clampInt(values, 4, 52)
	he := clampFloat(p.houseEdge(0.03), 0.01, 0.08)
	max := p.MaxMultiplier
	if max <= 1 {
		max = 1000
	}
	return Config{
		GameType:      HiLo,
		HouseEdge:     he,
		MaxMultiplier: max,
		CardValues:    values,
	}, nil
}

// favorable counts the cards that win a guess from the given first card.
func favorable(values, first int, guessHi bool) int {
	if guessHi {
		return values - first
	}
	return first - 1
}

// optimalGuessHi is the direction with the larger favorable count.
func optimalGuessHi(values, first int) bool {
	return first <= values/2
}

// TheoreticalHouseEdge sums the exact EV over all first cards under the
// optimal guess: P(win) = favorable/values (tie is a loss) against the
// multiplier (1-he)*(values-1)/favorable. The sum telescopes to
// (1-he)*(values-1)/values, but it is computed term by term so the proof
// and the resolver can never drift apart.
func (hiloModel) TheoreticalHouseEdge(cfg Config) float64 {
	v := cfg.CardValues
	he := cfg.HouseEdge
	var ev float64
	for first := 1; first <= v; first++ {
		fav := favorable(v, first, optimalGuessHi(v, first))
		if fav <= 0 {
			continue
		}
		winProb := float64(fav) / float64(v)
		mult := (1 - he) * float64(v-1) / float64(fav)
		ev += (1.0 / float64(v)) * winProb * mult
	}
	out := 1 - ev
	if out < 0 {
		out = 0
	}
	return out
}

// FloatCount: first card value+suit, second card value+suit.
func (hiloModel) FloatCount(cfg Config) int { return 4 }

func (hiloModel) Resolve(cfg Config, action Action, floats []float64) (Outcome, error) {
	if len(floats) < 4 {
		return Outcome{}, ErrShortFloats
	}
	v := cfg.CardValues
	first := drawIndex(floats[0], v) + 1
	firstSuit := drawIndex(floats[1], 4)
	second := drawIndex(floats[2], v) + 1
	secondSuit := drawIndex(floats[3], 4)

	var guessHi bool
	switch action.Guess {
	case "hi":
		guessHi = true
	case "lo":
		guessHi = false
	case "":
		guessHi = optimalGuessHi(v, first)
	default:
		return Outcome{}, fmt.Errorf("%w: hilo guess %q", ErrBadAction, action.Guess)
	}

	out := Outcome{
		FirstCard:  first,
		FirstSuit:  firstSuit,
		SecondCard: second,
		SecondSuit: secondSuit,
	}
	if second == first {
		out.IsTie = true
		return out, nil
	}
	correct := (guessHi && second > first) || (!guessHi && second < first)
	if !correct {
		return out, nil
	}
	fav := favorable(v, first, guessHi)
	if fav <= 0 {
		// Probability-zero branch: pays exactly 0.
		return out, nil
	}
	out.IsWin = true
	out.Multiplier = capMult((1-cfg.HouseEdge)*float64(v-1)/float64(fav), cfg.MaxMultiplier)
	return out, nil
}

// Paytable enumerates every first card under the optimal guess, with ties
// folded into the losing row.
func (hiloModel) Paytable(cfg Config) []PaytableEntry {
	v := cfg.CardValues
	he := cfg.HouseEdge
	out := make([]PaytableEntry, 0, 2*v)
	for first := 1; first <= v; first++ {
		guessHi := optimalGuessHi(v, first)
		fav := favorable(v, first, guessHi)
		dir := "lower"
		if guessHi {
			dir = "higher"
		}
		pFirst := 1.0 / float64(v)
		winProb := float64(fav) / float64(v)
		var mult float64
		if fav > 0 {
			mult = (1 - he) * float64(v-1) / float64(fav)
		}
		out = append(out,
			entry(fmt.Sprintf("win_from_%d", first),
				fmt.Sprintf("Card %d, guess %s, win", first, dir),
				mult, pFirst*winProb),
			entry(fmt.Sprintf("lose_from_%d", first),
				fmt.Sprintf("Card %d, guess %s, lose or tie", first, dir),
				0, pFirst*(1-winProb)))
	}
	return out
}
