package evaluator

import (
	"testing"

	ph "github.com/paulhankin/poker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/pokerrooms/internal/cards"
	"github.com/lox/pokerrooms/internal/randutil"
)

func TestEvaluateBestHandCategories(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		cards    string
		expected Category
	}{
		{"royal flush", "AsKsQsJsTs", RoyalFlush},
		{"royal flush from seven", "AsKsQsJsTs9h8h", RoyalFlush},
		{"straight flush", "9s8s7s6s5s4h3h", StraightFlush},
		{"steel wheel", "As2s3s4s5s", StraightFlush},
		{"four of a kind", "AsAhAdAcKs2h3h", FourOfAKind},
		{"full house", "AsAhAdKsKh2h3h", FullHouse},
		{"flush", "AsKsQs8s6s4h3h", Flush},
		{"straight", "AsKhQdJcTs9h8h", Straight},
		{"wheel", "Ah2s3d4c5h", Straight},
		{"three of a kind", "2c2d2h5s9d", ThreeOfAKind},
		{"two pair", "AsAhKdKs9c7h5h", TwoPair},
		{"one pair", "AsAhKdQs9c7h5h", OnePair},
		{"high card", "AsJh9c7d5s3h2c", HighCard},
		{"six cards best five", "KsKhKd2c2d7h", FullHouse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r, err := EvaluateBestHand(cards.MustParseCards(tt.cards))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, r.Category, "got %s", r.Category)
		})
	}
}

func TestEvaluateBestHandRejectsBadInput(t *testing.T) {
	t.Parallel()

	_, err := EvaluateBestHand(cards.MustParseCards("AsKs"))
	assert.ErrorIs(t, err, ErrCardCount)

	_, err = EvaluateBestHand(cards.MustParseCards("AsKsQsJsTs9s8s7s"))
	assert.ErrorIs(t, err, ErrCardCount)

	_, err = EvaluateBestHand(cards.MustParseCards("AsAsQsJsTs"))
	assert.ErrorIs(t, err, ErrDuplicateCard)

	_, err = EvaluateBestHand([]cards.Card{{Rank: 1, Suit: cards.Spades}, {}, {}, {}, {}})
	assert.ErrorIs(t, err, ErrInvalidCard)
}

func TestCompareOrdering(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		a, b   string
		expect int
	}{
		{"flush beats straight", "AsKsQs8s6s", "9h8d7c6s5h", 1},
		{"wheel loses to six high straight", "Ah2s3d4c5h", "2h3s4d5c6h", -1},
		{"kicker decides", "AsAhKd9c7h", "AdAcQd9s7c", 1},
		{"suits do not matter", "AsKsQdJcTh", "AhKhQcJdTs", 0},
		{"best five of seven ties on board", "2c3dAsKsQsJsTs", "4h5hAsKsQsJsTs", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Compare(cards.MustParseCards(tt.a), cards.MustParseCards(tt.b))
			require.NoError(t, err)
			assert.Equal(t, tt.expect, got)
		})
	}
}

// Random seven card hands are ranked against a second, independent evaluator.
func TestCompareAgreesWithReferenceEvaluator(t *testing.T) {
	t.Parallel()

	rng := randutil.New(99)
	for i := range 500 {
		deck := cards.NewShuffledDeck(rng)
		a := deck.DealN(7)
		b := deck.DealN(7)

		got, err := Compare(a, b)
		require.NoError(t, err)

		sa, sb := reference7(t, a), reference7(t, b)
		want := 0
		if sa > sb {
			want = 1
		} else if sa < sb {
			want = -1
		}
		require.Equal(t, want, got, "hand %d: %v vs %v", i, a, b)
	}
}

func TestDescribe(t *testing.T) {
	t.Parallel()

	desc := Describe(cards.MustParseCards("KsKhKd2c2d7h9s"))
	assert.NotEmpty(t, desc)
	assert.Empty(t, Describe(cards.MustParseCards("KsKh")))
}

func reference7(t *testing.T, hand []cards.Card) int16 {
	t.Helper()
	var arr [7]ph.Card
	for i, c := range hand {
		pc, err := toPaulhankin(c)
		require.NoError(t, err)
		arr[i] = pc
	}
	return ph.Eval7(&arr)
}
