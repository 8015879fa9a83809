package room

import (
	"slices"

	"github.com/lox/pokerrooms/internal/evaluator"
)

// pot is one layer of the chips committed this hand. Players who went all in
// for less than others can only win the layers they contributed to.
type pot struct {
	Amount   int
	Eligible []int // seats still in the hand that can win this layer
}

// buildPots splits the hand's contributions into a main pot and side pots.
// Layers are cut at each distinct total bet of a player still in the hand;
// chips above the highest such level, left by players who folded, join the
// last layer.
func buildPots(players []*Player) []pot {
	var levels []int
	for _, p := range players {
		if p.InHand() && p.TotalBet > 0 {
			levels = append(levels, p.TotalBet)
		}
	}
	slices.Sort(levels)
	levels = slices.Compact(levels)

	var pots []pot
	prev := 0
	for _, level := range levels {
		layer := pot{}
		for seat, p := range players {
			layer.Amount += min(p.TotalBet, level) - min(p.TotalBet, prev)
			if p.InHand() && p.TotalBet >= level {
				layer.Eligible = append(layer.Eligible, seat)
			}
		}
		if layer.Amount > 0 {
			pots = append(pots, layer)
		}
		prev = level
	}

	leftover := 0
	for _, p := range players {
		leftover += p.TotalBet - min(p.TotalBet, prev)
	}
	if leftover > 0 && len(pots) > 0 {
		pots[len(pots)-1].Amount += leftover
	}
	return pots
}

// splitPot divides amount between winners. Odd chips go to the winners
// closest to the left of the dealer.
func splitPot(amount int, winners []int, dealer, seats int) map[int]int {
	out := make(map[int]int, len(winners))
	if len(winners) == 0 || amount <= 0 {
		return out
	}
	ordered := slices.Clone(winners)
	slices.SortFunc(ordered, func(a, b int) int {
		return distanceFromDealer(a, dealer, seats) - distanceFromDealer(b, dealer, seats)
	})

	share, remainder := amount/len(ordered), amount%len(ordered)
	for i, seat := range ordered {
		out[seat] += share
		if i < remainder {
			out[seat]++
		}
	}
	return out
}

func distanceFromDealer(seat, dealer, seats int) int {
	return ((seat-dealer-1)%seats + seats) % seats
}

// bestSeats returns the seats holding the strongest hand among eligible.
func bestSeats(eligible []int, ranks map[int]evaluator.Result) []int {
	var best []int
	var top evaluator.Result
	for _, seat := range eligible {
		r, ok := ranks[seat]
		if !ok {
			continue
		}
		switch {
		case len(best) == 0 || r.Beats(top):
			top = r
			best = []int{seat}
		case r.Compare(top) == 0:
			best = append(best, seat)
		}
	}
	return best
}
