// Package evaluator ranks poker hands of five to seven cards.
//
// Ranking is delegated to github.com/chehsunliu/poker, whose ranks run from
// 1 (royal flush) to 7462 (seven high) across every category. Results invert
// that scale so a higher Tiebreak is a stronger hand.
package evaluator

import (
	"errors"
	"fmt"

	"github.com/chehsunliu/poker"

	"github.com/lox/pokerrooms/internal/cards"
)

const worstRank = 7462

var (
	// ErrCardCount is returned when a hand has fewer than 5 or more than 7 cards.
	ErrCardCount = errors.New("hand must contain between 5 and 7 cards")
	// ErrDuplicateCard is returned when the same card appears twice.
	ErrDuplicateCard = errors.New("duplicate card in hand")
	// ErrInvalidCard is returned for cards with an unknown rank or suit.
	ErrInvalidCard = errors.New("invalid card")
)

// EvaluateBestHand ranks the best five card hand that can be made from hand.
func EvaluateBestHand(hand []cards.Card) (Result, error) {
	if err := validate(hand); err != nil {
		return Result{}, err
	}

	converted := make([]poker.Card, len(hand))
	for i, c := range hand {
		converted[i] = toChehsunliu(c)
	}

	rank := poker.Evaluate(converted)
	return Result{
		Category: categoryFor(rank),
		Tiebreak: worstRank + 1 - int(rank),
	}, nil
}

// Compare ranks two hands, returning -1, 0 or 1 as a is weaker, equal or stronger.
func Compare(a, b []cards.Card) (int, error) {
	ra, err := EvaluateBestHand(a)
	if err != nil {
		return 0, err
	}
	rb, err := EvaluateBestHand(b)
	if err != nil {
		return 0, err
	}
	return ra.Compare(rb), nil
}

func validate(hand []cards.Card) error {
	if len(hand) < 5 || len(hand) > 7 {
		return fmt.Errorf("%w: got %d", ErrCardCount, len(hand))
	}
	seen := make(map[cards.Card]struct{}, len(hand))
	for _, c := range hand {
		if !c.Valid() {
			return fmt.Errorf("%w: %+v", ErrInvalidCard, c)
		}
		if _, dup := seen[c]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateCard, c)
		}
		seen[c] = struct{}{}
	}
	return nil
}

func toChehsunliu(c cards.Card) poker.Card {
	return poker.NewCard(c.String())
}

func categoryFor(rank int32) Category {
	if rank == 1 {
		return RoyalFlush
	}
	switch poker.RankClass(rank) {
	case 1:
		return StraightFlush
	case 2:
		return FourOfAKind
	case 3:
		return FullHouse
	case 4:
		return Flush
	case 5:
		return Straight
	case 6:
		return ThreeOfAKind
	case 7:
		return TwoPair
	case 8:
		return OnePair
	default:
		return HighCard
	}
}
