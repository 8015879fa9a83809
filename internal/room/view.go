package room

import (
	"slices"
	"time"

	"github.com/lox/pokerrooms/internal/cards"
)

// PlayerView is a seat as one particular viewer is allowed to see it.
type PlayerView struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Chips        int          `json:"chips"`
	CurrentBet   int          `json:"currentBet"`
	TotalBet     int          `json:"totalBet"`
	HoleCards    []cards.Card `json:"holeCards,omitempty"`
	CardCount    int          `json:"cardCount"`
	Folded       bool         `json:"folded"`
	SittingOut   bool         `json:"sittingOut"`
	AllIn        bool         `json:"allIn"`
	IsTurn       bool         `json:"isTurn"`
	IsAI         bool         `json:"isAI"`
	IsHost       bool         `json:"isHost"`
	IsDealer     bool         `json:"isDealer"`
	BuyBacksUsed int          `json:"buyBacksUsed"`
	Connected    bool         `json:"connected"`
}

// View is the sanitized state sent to one client. It never contains the deck,
// burned cards, or another player's hole cards unless they were shown down.
type View struct {
	Code           string       `json:"code"`
	YourID         string       `json:"yourId,omitempty"`
	Phase          Phase        `json:"phase"`
	HandNumber     int          `json:"handNumber"`
	Players        []PlayerView `json:"players"`
	CommunityCards []cards.Card `json:"communityCards"`
	Pot            int          `json:"pot"`
	CurrentBet     int          `json:"currentBet"`
	ActingPlayerID string       `json:"actingPlayerId,omitempty"`
	DealerIndex    int          `json:"dealerIndex"`
	ToCall         int          `json:"toCall"`
	MinRaise       int          `json:"minRaise"`
	BigBlind       int          `json:"bigBlind"`
	Settings       Settings     `json:"settings"`
	ChatLog        []ChatEntry  `json:"chatLog"`
	LastResult     *HandResult  `json:"lastResult,omitempty"`
	LastActivityAt time.Time    `json:"lastActivityAt"`
}

// ViewFor builds the state viewerID may see. An empty or unknown viewer gets
// the spectator view with no hole cards except those revealed at showdown.
func (r *Room) ViewFor(viewerID string) View {
	v := View{
		Code:           r.Code,
		Phase:          r.Phase,
		HandNumber:     r.HandNumber,
		CommunityCards: slices.Clone(r.Community),
		Pot:            r.Pot,
		CurrentBet:     r.CurrentBet,
		DealerIndex:    r.DealerIndex,
		BigBlind:       r.Settings.BigBlind,
		Settings:       r.Settings,
		ChatLog:        slices.Clone(r.ChatLog),
		LastResult:     r.LastResult,
		LastActivityAt: r.LastActivityAt,
	}
	if v.CommunityCards == nil {
		v.CommunityCards = []cards.Card{}
	}
	if a := r.Actor(); a != nil {
		v.ActingPlayerID = a.ID
	}

	revealed := make(map[string]bool)
	if r.Phase == PhaseShowdown && r.LastResult != nil {
		for _, rv := range r.LastResult.Reveals {
			revealed[rv.PlayerID] = true
		}
	}

	for i, p := range r.Players {
		pv := PlayerView{
			ID:           p.ID,
			Name:         p.Name,
			Chips:        p.Chips,
			CurrentBet:   p.CurrentBet,
			TotalBet:     p.TotalBet,
			CardCount:    len(p.HoleCards),
			Folded:       p.Folded,
			SittingOut:   p.SittingOut,
			AllIn:        p.AllIn(),
			IsTurn:       p.IsTurn,
			IsAI:         p.IsAI,
			IsHost:       p.IsHost,
			IsDealer:     r.HandNumber > 0 && i == r.DealerIndex,
			BuyBacksUsed: p.BuyBacksUsed,
			Connected:    p.Connected,
		}
		if p.ID == viewerID {
			v.YourID = p.ID
			pv.HoleCards = slices.Clone(p.HoleCards)
			if r.Phase.IsBetting() && p.InHand() {
				v.ToCall = r.ToCall(p.ID)
			}
		} else if revealed[p.ID] {
			pv.HoleCards = slices.Clone(p.HoleCards)
		}
		v.Players = append(v.Players, pv)
	}
	if r.Phase.IsBetting() {
		v.MinRaise = r.CurrentBet + 1
	}
	return v
}

// Self returns the viewer's own seat, if seated.
func (v View) Self() (PlayerView, bool) {
	for _, p := range v.Players {
		if p.ID == v.YourID && v.YourID != "" {
			return p, true
		}
	}
	return PlayerView{}, false
}

// Opponents returns the number of other players still contesting the hand.
func (v View) Opponents() int {
	n := 0
	for _, p := range v.Players {
		if p.ID != v.YourID && !p.Folded && !p.SittingOut {
			n++
		}
	}
	return n
}
