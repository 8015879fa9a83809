package cards

import rand "math/rand/v2"

// DeckSize is the number of cards in a standard deck.
const DeckSize = 52

// Deck is an ordered stack of undealt cards. The zero value is an empty deck.
type Deck struct {
	Cards []Card `json:"cards"`
}

// NewDeck creates a new, unshuffled 52-card deck
func NewDeck() *Deck {
	d := &Deck{Cards: make([]Card, 0, DeckSize)}
	for suit := Spades; suit <= Clubs; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			d.Cards = append(d.Cards, NewCard(suit, rank))
		}
	}
	return d
}

// NewShuffledDeck returns a full deck shuffled with rng.
func NewShuffledDeck(rng *rand.Rand) *Deck {
	d := NewDeck()
	d.Shuffle(rng)
	return d
}

// Shuffle randomizes the order of cards in the deck (Fisher-Yates)
func (d *Deck) Shuffle(rng *rand.Rand) {
	if rng == nil {
		panic("cards: nil rng")
	}
	for i := len(d.Cards) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		d.Cards[i], d.Cards[j] = d.Cards[j], d.Cards[i]
	}
}

// Deal removes and returns the top card from the deck
func (d *Deck) Deal() (Card, bool) {
	if len(d.Cards) == 0 {
		return Card{}, false
	}
	card := d.Cards[0]
	d.Cards = d.Cards[1:]
	return card, true
}

// DealN deals n cards from the deck, or fewer if the deck runs out.
func (d *Deck) DealN(n int) []Card {
	n = min(n, len(d.Cards))
	out := make([]Card, n)
	copy(out, d.Cards[:n])
	d.Cards = d.Cards[n:]
	return out
}

// Burn discards the top card.
func (d *Deck) Burn() {
	d.Deal()
}

// Remaining returns the number of cards left in the deck
func (d *Deck) Remaining() int {
	return len(d.Cards)
}
