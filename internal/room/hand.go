package room

import (
	"fmt"
	rand "math/rand/v2"
	"time"

	"github.com/lox/pokerrooms/internal/cards"
)

// StartGame deals the first hand. Only the host may start the game.
func (r *Room) StartGame(playerID string, rng *rand.Rand, now time.Time) error {
	p := r.player(playerID)
	if p == nil {
		return ErrPlayerNotFound
	}
	if !p.IsHost {
		return ErrNotHost
	}
	if r.Phase != PhaseWaiting {
		return ErrGameInProgress
	}
	return r.startHand(rng, now)
}

// NextRound rotates the dealer and deals a new hand after a showdown.
// AI players without chips are bought back automatically while the room
// allows it.
func (r *Room) NextRound(playerID string, rng *rand.Rand, now time.Time) error {
	p := r.player(playerID)
	if p == nil || p.IsAI {
		return ErrPlayerNotFound
	}
	if r.Phase != PhaseShowdown {
		if r.Phase.IsBetting() {
			return ErrGameInProgress
		}
		return ErrHandNotFinished
	}
	if r.fundedAfterAIBuyBacks() < 2 {
		return ErrNotEnoughPlayers
	}

	for _, ai := range r.Players {
		if ai.IsAI && ai.Chips == 0 && r.Settings.AllowBuyBack && ai.BuyBacksUsed < r.Settings.MaxBuyBacks {
			ai.Chips += r.Settings.BuyBackAmount
			ai.BuyBacksUsed++
		}
	}
	r.DealerIndex = r.nextFunded(r.DealerIndex + 1)
	return r.startHand(rng, now)
}

// Apply validates and applies one action from the player whose turn it is,
// then advances the hand as far as it can go without further input.
func (r *Room) Apply(playerID string, a Action, now time.Time) error {
	if !r.Phase.IsBetting() {
		return ErrHandNotInProgress
	}
	idx := r.indexOf(playerID)
	if idx < 0 {
		return ErrPlayerNotFound
	}
	p := r.Players[idx]
	if !p.InHand() {
		return ErrPlayerFolded
	}
	if idx != r.ActingIndex {
		return ErrNotYourTurn
	}

	switch a.Kind {
	case ActionFold:
		p.Folded = true

	case ActionCheck:
		if p.CurrentBet != r.CurrentBet {
			return fmt.Errorf("%w: must call %d", ErrCannotCheck, r.CurrentBet-p.CurrentBet)
		}

	case ActionCall:
		toCall := r.CurrentBet - p.CurrentBet
		if toCall <= 0 {
			return ErrNothingToCall
		}
		r.pay(p, min(toCall, p.Chips))

	case ActionRaise:
		if a.Amount <= r.CurrentBet {
			return fmt.Errorf("%w: must exceed %d", ErrRaiseTooSmall, r.CurrentBet)
		}
		if a.Amount-p.CurrentBet > p.Chips {
			return fmt.Errorf("%w: can raise to at most %d", ErrInsufficientChips, p.Chips+p.CurrentBet)
		}
		r.pay(p, a.Amount-p.CurrentBet)
		r.CurrentBet = a.Amount
		// everyone else has to respond to the new bet
		clear(r.Acted)

	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, a.Kind)
	}

	if r.Acted == nil {
		r.Acted = make(map[string]bool)
	}
	r.Acted[p.ID] = true
	r.StreetActions++
	r.advance(idx)
	r.Touch(now)
	return nil
}

// DefaultAction is what a player does when their turn clock expires: check
// when free, fold otherwise.
func (r *Room) DefaultAction(playerID string) Action {
	if p := r.player(playerID); p != nil && p.CurrentBet == r.CurrentBet {
		return Action{Kind: ActionCheck}
	}
	return Action{Kind: ActionFold}
}

// ToCall returns how much the player must add to stay in the hand.
func (r *Room) ToCall(playerID string) int {
	p := r.player(playerID)
	if p == nil {
		return 0
	}
	return max(0, min(r.CurrentBet-p.CurrentBet, p.Chips))
}

func (r *Room) startHand(rng *rand.Rand, now time.Time) error {
	if r.funded() < 2 {
		return ErrNotEnoughPlayers
	}

	r.HandNumber++
	r.Deck = *cards.NewShuffledDeck(rng)
	r.Burned = nil
	r.Community = nil
	r.Pot = 0
	r.CurrentBet = 0
	r.LastResult = nil
	r.Acted = make(map[string]bool)
	r.StreetActions = 0
	r.Phase = PhasePreflop

	for _, p := range r.Players {
		p.CurrentBet, p.TotalBet = 0, 0
		p.HoleCards = nil
		p.IsTurn = false
		p.Folded = false
		p.SittingOut = p.Chips == 0
	}
	r.DealerIndex = r.nextFunded(r.DealerIndex)

	// two passes round the table starting left of the dealer
	for range 2 {
		for i := range r.Players {
			p := r.Players[(r.DealerIndex+1+i)%len(r.Players)]
			if p.InHand() {
				c, _ := r.Deck.Deal()
				p.HoleCards = append(p.HoleCards, c)
			}
		}
	}

	headsUp := r.inHand() == 2
	sb, bb := r.blindSeats(headsUp)
	r.pay(r.Players[sb], min(r.Settings.SmallBlind, r.Players[sb].Chips))
	r.pay(r.Players[bb], min(r.Settings.BigBlind, r.Players[bb].Chips))
	r.CurrentBet = max(r.Players[sb].CurrentBet, r.Players[bb].CurrentBet)

	first := r.nextToAct(bb + 1)
	if headsUp {
		first = r.nextToAct(r.DealerIndex)
	}
	r.Touch(now)

	if first < 0 || r.roundComplete() {
		r.nextStreet()
		return nil
	}
	r.setActor(first)
	return nil
}

// blindSeats returns the small and big blind seats. Heads up the dealer
// posts the small blind.
func (r *Room) blindSeats(headsUp bool) (int, int) {
	if headsUp {
		return r.DealerIndex, r.nextInHand(r.DealerIndex + 1)
	}
	sb := r.nextInHand(r.DealerIndex + 1)
	return sb, r.nextInHand(sb + 1)
}

func (r *Room) pay(p *Player, amount int) {
	p.Chips -= amount
	p.CurrentBet += amount
	p.TotalBet += amount
	r.Pot += amount
}

// advance moves the hand on after the player at from has acted.
func (r *Room) advance(from int) {
	r.clearTurn()

	if r.inHand() == 1 {
		r.awardUncontested()
		return
	}
	if r.roundComplete() {
		r.nextStreet()
		return
	}
	next := r.nextToAct(from + 1)
	if next < 0 {
		r.nextStreet()
		return
	}
	r.setActor(next)
}

// roundComplete reports whether every player still in the hand has matched
// the bet or is all in, and every player who can still act has acted since
// the last raise.
func (r *Room) roundComplete() bool {
	for _, p := range r.Players {
		if !p.canAct() {
			continue
		}
		if p.CurrentBet != r.CurrentBet || !r.Acted[p.ID] {
			return false
		}
	}
	return true
}

// nextStreet deals the next street, skipping betting while fewer than two
// players can act, and settles the hand after the river.
func (r *Room) nextStreet() {
	for {
		for _, p := range r.Players {
			p.CurrentBet = 0
		}
		r.CurrentBet = 0
		clear(r.Acted)
		r.StreetActions = 0
		r.clearTurn()

		switch r.Phase {
		case PhasePreflop:
			r.deal(3)
			r.Phase = PhaseFlop
		case PhaseFlop:
			r.deal(1)
			r.Phase = PhaseTurn
		case PhaseTurn:
			r.deal(1)
			r.Phase = PhaseRiver
		default:
			r.showdown()
			return
		}

		if r.actors() >= 2 {
			r.setActor(r.nextToAct(r.DealerIndex + 1))
			return
		}
	}
}

func (r *Room) deal(n int) {
	if burn, ok := r.Deck.Deal(); ok {
		r.Burned = append(r.Burned, burn)
	}
	r.Community = append(r.Community, r.Deck.DealN(n)...)
}

func (r *Room) setActor(idx int) {
	r.ActingIndex = idx
	r.Players[idx].IsTurn = true
}

func (r *Room) clearTurn() {
	r.ActingIndex = -1
	for _, p := range r.Players {
		p.IsTurn = false
	}
}

func (r *Room) nextToAct(from int) int {
	return r.scan(from, (*Player).canAct)
}

func (r *Room) nextInHand(from int) int {
	return r.scan(from, (*Player).InHand)
}

func (r *Room) nextFunded(from int) int {
	return r.scan(from, func(p *Player) bool { return p.Chips > 0 })
}

func (r *Room) scan(from int, ok func(*Player) bool) int {
	n := len(r.Players)
	for i := range n {
		idx := ((from+i)%n + n) % n
		if ok(r.Players[idx]) {
			return idx
		}
	}
	return -1
}

func (r *Room) inHand() int {
	n := 0
	for _, p := range r.Players {
		if p.InHand() {
			n++
		}
	}
	return n
}

func (r *Room) actors() int {
	n := 0
	for _, p := range r.Players {
		if p.canAct() {
			n++
		}
	}
	return n
}

func (r *Room) funded() int {
	n := 0
	for _, p := range r.Players {
		if p.Chips > 0 {
			n++
		}
	}
	return n
}

func (r *Room) fundedAfterAIBuyBacks() int {
	n := r.funded()
	for _, p := range r.Players {
		if p.IsAI && p.Chips == 0 && r.Settings.AllowBuyBack && p.BuyBacksUsed < r.Settings.MaxBuyBacks {
			n++
		}
	}
	return n
}
