// Package ai decides actions for computer controlled players.
//
// Decisions only use what a seated player could see: their own hole cards,
// the board, the pot and the bets on the table.
package ai

import (
	"github.com/lox/pokerrooms/internal/cards"
	"github.com/lox/pokerrooms/internal/room"
)

// Strength tiers.
const (
	StrongThreshold = 0.7
	MediumThreshold = 0.4

	// MaxBluffChance bounds how often a weak hand bets or raises.
	MaxBluffChance = 0.15
	// TauntChance is how often a decision comes with table talk.
	TauntChance = 0.3
)

// Rand is the randomness a decision draws on. *rand.Rand satisfies it.
type Rand interface {
	Float64() float64
	IntN(n int) int
}

// Taunt is a category of flavour text that accompanies a decision.
type Taunt string

const (
	TauntNone      Taunt = ""
	TauntConfident Taunt = "confident"
	TauntBluff     Taunt = "bluff"
	TauntFold      Taunt = "fold"
	TauntCall      Taunt = "call"
)

// Observation is the public state of the table from one seat.
type Observation struct {
	Phase      room.Phase
	HoleCards  []cards.Card
	Community  []cards.Card
	Pot        int
	CurrentBet int
	MyBet      int
	MyChips    int
	BigBlind   int
	Opponents  int
}

// ToCall returns the chips needed to continue, capped at the stack.
func (o Observation) ToCall() int {
	return max(0, min(o.CurrentBet-o.MyBet, o.MyChips))
}

// PotOdds returns the share of the final pot the call represents.
func (o Observation) PotOdds() float64 {
	toCall := o.ToCall()
	if toCall == 0 {
		return 0
	}
	return float64(toCall) / float64(o.Pot+toCall)
}

// ObservationFromView builds an observation from a sanitized room view. It
// returns false when the viewer is not seated in the hand.
func ObservationFromView(v room.View) (Observation, bool) {
	self, ok := v.Self()
	if !ok || self.Folded || self.SittingOut {
		return Observation{}, false
	}
	return Observation{
		Phase:      v.Phase,
		HoleCards:  self.HoleCards,
		Community:  v.CommunityCards,
		Pot:        v.Pot,
		CurrentBet: v.CurrentBet,
		MyBet:      self.CurrentBet,
		MyChips:    self.Chips,
		BigBlind:   v.BigBlind,
		Opponents:  v.Opponents(),
	}, true
}

// Decision is what the AI wants to do.
type Decision struct {
	Action room.Action
	Taunt  Taunt
}

// Decide picks an action for obs. Every random draw comes from rng so tests
// can script the outcome.
func Decide(obs Observation, rng Rand) Decision {
	strength := Strength(obs.HoleCards, obs.Community)
	toCall := obs.ToCall()
	aggression := rng.Float64()
	roll := rng.Float64()

	var d Decision
	switch {
	case strength >= StrongThreshold:
		if roll < 0.55+0.3*aggression && canRaise(obs) {
			d = raise(obs, strength, rng, TauntConfident)
		} else {
			d = checkOrCall(toCall)
		}

	case strength >= MediumThreshold:
		switch {
		case toCall == 0 && roll < 0.15*aggression && canRaise(obs):
			d = raise(obs, strength, rng, TauntNone)
		case toCall == 0:
			d = Decision{Action: room.Action{Kind: room.ActionCheck}}
		case strength*(0.8+0.4*aggression) >= obs.PotOdds()+0.15:
			d = Decision{Action: room.Action{Kind: room.ActionCall}, Taunt: TauntCall}
		default:
			d = Decision{Action: room.Action{Kind: room.ActionFold}, Taunt: TauntFold}
		}

	default:
		bluff := min(MaxBluffChance, 0.05+0.1*aggression)
		switch {
		case roll < bluff && canRaise(obs):
			d = raise(obs, strength, rng, TauntBluff)
		case toCall == 0:
			d = Decision{Action: room.Action{Kind: room.ActionCheck}}
		default:
			d = Decision{Action: room.Action{Kind: room.ActionFold}, Taunt: TauntFold}
		}
	}

	if d.Taunt != TauntNone && rng.Float64() >= TauntChance {
		d.Taunt = TauntNone
	}
	return d
}

func checkOrCall(toCall int) Decision {
	if toCall == 0 {
		return Decision{Action: room.Action{Kind: room.ActionCheck}}
	}
	return Decision{Action: room.Action{Kind: room.ActionCall}, Taunt: TauntCall}
}

// canRaise reports whether the stack can go above the current bet.
func canRaise(obs Observation) bool {
	return obs.MyChips+obs.MyBet > obs.CurrentBet && obs.MyChips > obs.ToCall()
}

// raise sizes a raise as a fraction of the pot that grows with strength.
// The result is always above the current bet and never beyond the stack.
func raise(obs Observation, strength float64, rng Rand, taunt Taunt) Decision {
	fraction := 0.5 + strength*0.75 + rng.Float64()*0.25
	bb := max(obs.BigBlind, 1)
	amount := obs.CurrentBet + max(bb, int(float64(obs.Pot)*fraction))
	amount = min(amount, obs.MyChips+obs.MyBet)
	return Decision{Action: room.Action{Kind: room.ActionRaise, Amount: amount}, Taunt: taunt}
}
