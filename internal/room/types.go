package room

import (
	"fmt"
	"strings"
	"time"

	"github.com/lox/pokerrooms/internal/cards"
	"github.com/lox/pokerrooms/internal/evaluator"
)

const (
	// MaxPlayers is the seat capacity of a room.
	MaxPlayers = 8
	// MaxChatLog is the number of chat entries a room keeps.
	MaxChatLog = 50
	// MaxChatLength is the longest chat message accepted, in runes.
	MaxChatLength = 200
	// MaxNameLength is the longest player name accepted, in runes.
	MaxNameLength = 20
)

// Phase is the stage of the current hand.
type Phase string

const (
	PhaseWaiting  Phase = "waiting"
	PhasePreflop  Phase = "preflop"
	PhaseFlop     Phase = "flop"
	PhaseTurn     Phase = "turn"
	PhaseRiver    Phase = "river"
	PhaseShowdown Phase = "showdown"
)

// IsBetting reports whether players act during this phase.
func (p Phase) IsBetting() bool {
	switch p {
	case PhasePreflop, PhaseFlop, PhaseTurn, PhaseRiver:
		return true
	}
	return false
}

// ActionKind is what a player does on their turn.
type ActionKind string

const (
	ActionFold  ActionKind = "fold"
	ActionCheck ActionKind = "check"
	ActionCall  ActionKind = "call"
	ActionRaise ActionKind = "raise"
)

// ParseActionKind accepts the wire names of actions, case insensitively.
func ParseActionKind(s string) (ActionKind, error) {
	switch k := ActionKind(strings.ToLower(strings.TrimSpace(s))); k {
	case ActionFold, ActionCheck, ActionCall, ActionRaise:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
}

// Action is a player decision. Amount is the new total bet for a raise and
// ignored otherwise.
type Action struct {
	Kind   ActionKind `json:"action"`
	Amount int        `json:"amount,omitempty"`
}

func (a Action) String() string {
	if a.Kind == ActionRaise {
		return fmt.Sprintf("raise %d", a.Amount)
	}
	return string(a.Kind)
}

// Player is a seat at the table.
type Player struct {
	ID           string `json:"id"`
	ConnectionID string `json:"connectionId,omitempty"`
	// Token is the secret a human presents to reclaim this seat. It is
	// persisted but never part of a View.
	Token        string       `json:"token,omitempty"`
	Name         string       `json:"name"`
	Chips        int          `json:"chips"`
	CurrentBet   int          `json:"currentBet"`
	TotalBet     int          `json:"totalBet"`
	HoleCards    []cards.Card `json:"holeCards,omitempty"`
	Folded       bool         `json:"folded"`
	SittingOut   bool         `json:"sittingOut"`
	IsTurn       bool         `json:"isTurn"`
	IsAI         bool         `json:"isAI"`
	IsHost       bool         `json:"isHost"`
	BuyBacksUsed int          `json:"buyBacksUsed"`
	Connected    bool         `json:"connected"`
}

// InHand reports whether the player still contests the pot.
func (p *Player) InHand() bool {
	return !p.Folded && !p.SittingOut
}

// AllIn reports whether the player has committed every chip to the current hand.
func (p *Player) AllIn() bool {
	return p.InHand() && p.Chips == 0 && p.TotalBet > 0
}

func (p *Player) canAct() bool {
	return p.InHand() && p.Chips > 0
}

// ChatEntry is one line of room chat.
type ChatEntry struct {
	PlayerID string    `json:"playerId"`
	Name     string    `json:"name"`
	Message  string    `json:"message"`
	IsAI     bool      `json:"isAI,omitempty"`
	At       time.Time `json:"at"`
}

// EndReason records how the last hand finished.
type EndReason string

const (
	// EndFold means every other player folded and no cards were compared.
	EndFold EndReason = "fold"
	// EndShowdown means hands were compared after the river.
	EndShowdown EndReason = "showdown"
)

// Payout is the amount one player collected from a finished hand.
type Payout struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Amount   int    `json:"amount"`
}

// Reveal is a hand shown at showdown.
type Reveal struct {
	PlayerID    string           `json:"playerId"`
	Name        string           `json:"name"`
	HoleCards   []cards.Card     `json:"holeCards"`
	Rank        evaluator.Result `json:"rank"`
	Description string           `json:"description"`
}

// HandResult summarises the last finished hand.
type HandResult struct {
	HandNumber int          `json:"handNumber"`
	Reason     EndReason    `json:"reason"`
	Pot        int          `json:"pot"`
	Payouts    []Payout     `json:"payouts"`
	Reveals    []Reveal     `json:"reveals,omitempty"`
	Community  []cards.Card `json:"community,omitempty"`
}

// Ticket identifies the exact decision point a scheduled task was created for.
// It changes only when the turn moves, never on chat, joins or reconnects.
type Ticket struct {
	HandNumber int
	Phase      Phase
	ActorID    string
	Actions    int
}

// Room is the authoritative state of one table. It is persisted as a whole
// and mutated only through its methods.
type Room struct {
	Code        string          `json:"code"`
	Players     []*Player       `json:"players"`
	Deck        cards.Deck      `json:"deck"`
	Burned      []cards.Card    `json:"burned,omitempty"`
	Community   []cards.Card    `json:"communityCards"`
	Pot         int             `json:"pot"`
	CurrentBet  int             `json:"currentBet"`
	ActingIndex int             `json:"actingPlayerIndex"`
	Phase       Phase           `json:"phase"`
	DealerIndex int             `json:"dealerIndex"`
	Acted       map[string]bool `json:"playersActedSinceLastRaise"`
	ChatLog     []ChatEntry     `json:"chatLog"`
	Settings    Settings        `json:"settings"`
	HandNumber  int             `json:"handNumber"`
	LastResult  *HandResult     `json:"lastResult,omitempty"`
	Version     int64           `json:"version"`

	// StreetActions counts the actions taken on the current street.
	StreetActions int `json:"streetActions"`

	CreatedAt      time.Time `json:"createdAt"`
	LastActivityAt time.Time `json:"lastActivityAt"`
}
