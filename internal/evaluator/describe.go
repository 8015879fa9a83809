package evaluator

import (
	ph "github.com/paulhankin/poker"

	"github.com/lox/pokerrooms/internal/cards"
)

// Describe returns a readable label for the best hand, such as
// "full house, kings over twos". It falls back to the category name when
// the description library cannot handle the card count.
func Describe(hand []cards.Card) string {
	r, err := EvaluateBestHand(hand)
	if err != nil {
		return ""
	}

	converted := make([]ph.Card, 0, len(hand))
	for _, c := range hand {
		pc, err := toPaulhankin(c)
		if err != nil {
			return r.Category.String()
		}
		converted = append(converted, pc)
	}

	desc, err := ph.Describe(converted)
	if err != nil || desc == "" {
		return r.Category.String()
	}
	return desc
}

func toPaulhankin(c cards.Card) (ph.Card, error) {
	var s ph.Suit
	switch c.Suit {
	case cards.Clubs:
		s = ph.Club
	case cards.Diamonds:
		s = ph.Diamond
	case cards.Hearts:
		s = ph.Heart
	default:
		s = ph.Spade
	}
	// the library counts the ace as rank 1
	r := ph.Rank(c.Rank)
	if c.Rank == cards.Ace {
		r = ph.Rank(1)
	}
	return ph.MakeCard(s, r)
}
