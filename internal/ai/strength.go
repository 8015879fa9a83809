package ai

import (
	"slices"

	"github.com/lox/pokerrooms/internal/cards"
	"github.com/lox/pokerrooms/internal/evaluator"
)

// categoryStrength maps a made hand onto [0,1].
var categoryStrength = [...]float64{
	evaluator.HighCard:      0.10,
	evaluator.OnePair:       0.38,
	evaluator.TwoPair:       0.58,
	evaluator.ThreeOfAKind:  0.68,
	evaluator.Straight:      0.76,
	evaluator.Flush:         0.82,
	evaluator.FullHouse:     0.90,
	evaluator.FourOfAKind:   0.96,
	evaluator.StraightFlush: 0.99,
	evaluator.RoyalFlush:    1.00,
}

// Strength estimates how good a hand is on a 0 to 1 scale. Before the flop it
// scores the hole cards alone; afterwards it uses the best made hand.
func Strength(hole, community []cards.Card) float64 {
	if len(hole) != 2 {
		return 0
	}
	if len(community) < 3 {
		return PreflopStrength(hole)
	}
	return postflopStrength(hole, community)
}

// PreflopStrength scores two hole cards on pairs, suitedness, connectedness
// and high cards.
func PreflopStrength(hole []cards.Card) float64 {
	if len(hole) != 2 {
		return 0
	}
	hi, lo := hole[0].Rank, hole[1].Rank
	if lo > hi {
		hi, lo = lo, hi
	}

	if hi == lo {
		return 0.5 + float64(hi-cards.Two)/12*0.5
	}

	score := float64(hi-cards.Two)/12*0.35 + float64(lo-cards.Two)/12*0.25
	if hole[0].Suit == hole[1].Suit {
		score += 0.10
	}
	switch gap := hi - lo; {
	case gap == 1:
		score += 0.08
	case gap == 2:
		score += 0.05
	case gap == 3:
		score += 0.02
	case hi == cards.Ace && lo <= cards.Five:
		// wheel draws
		score += 0.03
	}
	if lo >= cards.Ten {
		score += 0.07
	}
	return clamp(score)
}

func postflopStrength(hole, community []cards.Card) float64 {
	hand := append(slices.Clone(hole), community...)
	res, err := evaluator.EvaluateBestHand(hand)
	if err != nil {
		return 0
	}
	score := categoryStrength[res.Category]

	// kicker: a small bump for high hole cards
	top := max(hole[0].Rank, hole[1].Rank)
	score += float64(top-cards.Two) / 12 * 0.05

	// playing the board is worth much less than the category suggests
	if len(community) >= 5 {
		if board, err := evaluator.EvaluateBestHand(community); err == nil && !res.Beats(board) {
			score *= 0.6
		}
	}
	return clamp(score)
}

func clamp(f float64) float64 {
	return min(1, max(0, f))
}
