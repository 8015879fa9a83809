package room

import (
	"slices"

	"github.com/lox/pokerrooms/internal/evaluator"
)

// awardUncontested gives the whole pot to the last player in the hand
// without revealing any cards.
func (r *Room) awardUncontested() {
	winner := r.nextInHand(0)
	p := r.Players[winner]
	total := r.Pot
	p.Chips += total

	r.LastResult = &HandResult{
		HandNumber: r.HandNumber,
		Reason:     EndFold,
		Pot:        total,
		Payouts:    []Payout{{PlayerID: p.ID, Name: p.Name, Amount: total}},
	}
	r.finishHand()
}

// showdown compares every hand still in play and pays each pot layer to its
// best hands, splitting ties evenly.
func (r *Room) showdown() {
	ranks := make(map[int]evaluator.Result)
	var reveals []Reveal
	for seat, p := range r.Players {
		if !p.InHand() {
			continue
		}
		hand := append(slices.Clone(p.HoleCards), r.Community...)
		rank, err := evaluator.EvaluateBestHand(hand)
		if err != nil {
			// a seat without a full hand cannot win
			continue
		}
		ranks[seat] = rank
		reveals = append(reveals, Reveal{
			PlayerID:    p.ID,
			Name:        p.Name,
			HoleCards:   slices.Clone(p.HoleCards),
			Rank:        rank,
			Description: evaluator.Describe(hand),
		})
	}

	won := make(map[int]int)
	for _, layer := range buildPots(r.Players) {
		winners := bestSeats(layer.Eligible, ranks)
		if len(winners) == 0 {
			// nobody eligible can be ranked, return the layer to its contributors
			winners = layer.Eligible
		}
		for seat, amount := range splitPot(layer.Amount, winners, r.DealerIndex, len(r.Players)) {
			won[seat] += amount
		}
	}

	result := &HandResult{
		HandNumber: r.HandNumber,
		Reason:     EndShowdown,
		Pot:        r.Pot,
		Reveals:    reveals,
		Community:  slices.Clone(r.Community),
	}
	for seat, p := range r.Players {
		if amount := won[seat]; amount > 0 {
			p.Chips += amount
			result.Payouts = append(result.Payouts, Payout{PlayerID: p.ID, Name: p.Name, Amount: amount})
		}
	}
	r.LastResult = result
	r.finishHand()
}

func (r *Room) finishHand() {
	r.Pot = 0
	r.CurrentBet = 0
	for _, p := range r.Players {
		p.CurrentBet = 0
	}
	clear(r.Acted)
	r.clearTurn()
	r.Phase = PhaseShowdown
}

// Winners returns the ids of players paid from the last hand.
func (r *Room) Winners() []string {
	if r.LastResult == nil {
		return nil
	}
	ids := make([]string, 0, len(r.LastResult.Payouts))
	for _, p := range r.LastResult.Payouts {
		ids = append(ids, p.PlayerID)
	}
	return ids
}
