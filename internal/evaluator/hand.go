package evaluator

// Category is the class of a five card poker hand, weakest first.
type Category int

const (
	HighCard Category = iota
	OnePair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
	RoyalFlush
)

var categoryNames = [...]string{
	"High Card",
	"One Pair",
	"Two Pair",
	"Three of a Kind",
	"Straight",
	"Flush",
	"Full House",
	"Four of a Kind",
	"Straight Flush",
	"Royal Flush",
}

// String returns the string representation of a category
func (c Category) String() string {
	if c < HighCard || c > RoyalFlush {
		return "Unknown"
	}
	return categoryNames[c]
}

// Result is the ranking of the best five cards out of a hand.
// Tiebreak is totally ordered across categories: a higher Tiebreak always
// beats a lower one, and equal values split.
type Result struct {
	Category Category `json:"category"`
	Tiebreak int      `json:"tiebreak"`
}

// Compare returns -1 if r is weaker than other, 0 if equal, 1 if stronger
func (r Result) Compare(other Result) int {
	switch {
	case r.Tiebreak > other.Tiebreak:
		return 1
	case r.Tiebreak < other.Tiebreak:
		return -1
	default:
		return 0
	}
}

// Beats reports whether r is strictly stronger than other.
func (r Result) Beats(other Result) bool {
	return r.Compare(other) > 0
}

// String returns the category name
func (r Result) String() string {
	return r.Category.String()
}
