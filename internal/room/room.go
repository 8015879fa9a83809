// Package room holds the authoritative state of a poker room and the turn
// engine that mutates it.
//
// Every method either validates and applies a change or returns an error
// without touching the room. Callers load a room, call exactly one mutating
// method, persist the result and only then broadcast it.
package room

import (
	"crypto/subtle"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// New creates a room in the waiting phase with the host seated.
func New(code string, host *Player, settings Settings, now time.Time) (*Room, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	r := &Room{
		Code:           code,
		Phase:          PhaseWaiting,
		ActingIndex:    -1,
		Acted:          make(map[string]bool),
		Settings:       settings,
		CreatedAt:      now,
		LastActivityAt: now,
	}
	host.IsHost = true
	if _, err := r.AddPlayer(host, now); err != nil {
		return nil, err
	}
	return r, nil
}

// AddPlayer seats p with the room's starting stack. Joining is only possible
// between hands.
func (r *Room) AddPlayer(p *Player, now time.Time) (*Player, error) {
	if r.Phase.IsBetting() {
		return nil, ErrGameInProgress
	}
	if len(r.Players) >= MaxPlayers {
		return nil, ErrRoomFull
	}
	name, err := cleanName(p.Name)
	if err != nil {
		return nil, err
	}
	if r.player(p.ID) != nil {
		return nil, fmt.Errorf("%w: duplicate id %s", ErrInvalidName, p.ID)
	}

	p.Name = name
	p.Chips = r.Settings.StartingChips
	p.CurrentBet, p.TotalBet = 0, 0
	p.HoleCards = nil
	p.Folded, p.IsTurn = false, false
	// a player joining after a hand finished waits for the next deal
	p.SittingOut = r.Phase == PhaseShowdown
	p.Connected = !p.IsAI

	r.Players = append(r.Players, p)
	r.Touch(now)
	return p, nil
}

// Reconnect binds a returning player to a new connection. The token must
// match the one issued when the seat was taken; a wrong token is reported
// exactly like an unknown player.
func (r *Room) Reconnect(playerID, token, connectionID string, now time.Time) (*Player, error) {
	p := r.player(playerID)
	if p == nil || p.IsAI || p.Token == "" {
		return nil, ErrPlayerNotFound
	}
	if subtle.ConstantTimeCompare([]byte(p.Token), []byte(token)) != 1 {
		return nil, ErrPlayerNotFound
	}
	p.ConnectionID = connectionID
	p.Connected = true
	r.Touch(now)
	return p, nil
}

// Disconnect marks a player as gone. Their seat, chips and turn are kept.
func (r *Room) Disconnect(playerID string, now time.Time) error {
	p := r.player(playerID)
	if p == nil {
		return ErrPlayerNotFound
	}
	p.Connected = false
	p.ConnectionID = ""
	r.Touch(now)
	return nil
}

// AddChat appends a message to the chat log, evicting the oldest entries
// beyond MaxChatLog.
func (r *Room) AddChat(playerID, message string, now time.Time) (ChatEntry, error) {
	p := r.player(playerID)
	if p == nil {
		return ChatEntry{}, ErrPlayerNotFound
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return ChatEntry{}, ErrEmptyMessage
	}
	message = truncate(message, MaxChatLength)

	entry := ChatEntry{PlayerID: p.ID, Name: p.Name, Message: message, IsAI: p.IsAI, At: now}
	r.ChatLog = append(r.ChatLog, entry)
	if over := len(r.ChatLog) - MaxChatLog; over > 0 {
		r.ChatLog = append(r.ChatLog[:0:0], r.ChatLog[over:]...)
	}
	r.Touch(now)
	return entry, nil
}

// BuyBack refills a busted player's stack between hands.
func (r *Room) BuyBack(playerID string, now time.Time) error {
	p := r.player(playerID)
	if p == nil {
		return ErrPlayerNotFound
	}
	if r.Phase.IsBetting() {
		return ErrGameInProgress
	}
	if !r.Settings.AllowBuyBack {
		return ErrBuyBackDisabled
	}
	if p.Chips > 0 {
		return ErrHasChips
	}
	if p.BuyBacksUsed >= r.Settings.MaxBuyBacks {
		return fmt.Errorf("%w: %d of %d used", ErrBuyBackLimit, p.BuyBacksUsed, r.Settings.MaxBuyBacks)
	}
	p.Chips += r.Settings.BuyBackAmount
	p.BuyBacksUsed++
	r.Touch(now)
	return nil
}

// Touch records activity, which pushes back the room's expiry.
func (r *Room) Touch(now time.Time) {
	r.LastActivityAt = now
}

// Player returns the seated player with id, if any.
func (r *Room) Player(id string) (*Player, bool) {
	p := r.player(id)
	return p, p != nil
}

// Host returns the host player.
func (r *Room) Host() *Player {
	for _, p := range r.Players {
		if p.IsHost {
			return p
		}
	}
	return nil
}

// Actor returns the player whose turn it is, or nil.
func (r *Room) Actor() *Player {
	if !r.Phase.IsBetting() || r.ActingIndex < 0 || r.ActingIndex >= len(r.Players) {
		return nil
	}
	return r.Players[r.ActingIndex]
}

// Ticket snapshots the current decision point.
func (r *Room) Ticket() Ticket {
	t := Ticket{HandNumber: r.HandNumber, Phase: r.Phase, Actions: r.StreetActions}
	if a := r.Actor(); a != nil {
		t.ActorID = a.ID
	}
	return t
}

// ConnectedHumans returns the number of human players with a live connection.
func (r *Room) ConnectedHumans() int {
	n := 0
	for _, p := range r.Players {
		if !p.IsAI && p.Connected {
			n++
		}
	}
	return n
}

func (r *Room) player(id string) *Player {
	if i := r.indexOf(id); i >= 0 {
		return r.Players[i]
	}
	return nil
}

func (r *Room) indexOf(id string) int {
	for i, p := range r.Players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func cleanName(name string) (string, error) {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return "", ErrInvalidName
	}
	return truncate(name, MaxNameLength), nil
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
