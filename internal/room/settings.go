package room

import (
	"fmt"
	"time"
)

// Settings are chosen by the host when the room is created.
type Settings struct {
	StartingChips int  `json:"startingChips"`
	SmallBlind    int  `json:"smallBlind"`
	BigBlind      int  `json:"bigBlind"`
	TurnTimeLimit int  `json:"turnTimeLimit"` // seconds, 0 disables the turn clock
	AllowBuyBack  bool `json:"allowBuyBack"`
	MaxBuyBacks   int  `json:"maxBuyBacks"`
	BuyBackAmount int  `json:"buyBackAmount"`
}

// DefaultSettings returns the settings used when a room is created without any.
func DefaultSettings() Settings {
	return Settings{
		StartingChips: 1000,
		SmallBlind:    10,
		BigBlind:      20,
		TurnTimeLimit: 0,
		AllowBuyBack:  true,
		MaxBuyBacks:   3,
		BuyBackAmount: 1000,
	}
}

// Validate checks that the settings describe a playable game.
func (s Settings) Validate() error {
	switch {
	case s.SmallBlind <= 0:
		return fmt.Errorf("%w: small blind must be positive", ErrInvalidSettings)
	case s.BigBlind < s.SmallBlind:
		return fmt.Errorf("%w: big blind must be at least the small blind", ErrInvalidSettings)
	case s.StartingChips < s.BigBlind:
		return fmt.Errorf("%w: starting chips must cover the big blind", ErrInvalidSettings)
	case s.TurnTimeLimit < 0:
		return fmt.Errorf("%w: turn time limit cannot be negative", ErrInvalidSettings)
	case s.MaxBuyBacks < 0:
		return fmt.Errorf("%w: max buy-backs cannot be negative", ErrInvalidSettings)
	case s.AllowBuyBack && s.BuyBackAmount <= 0:
		return fmt.Errorf("%w: buy-back amount must be positive", ErrInvalidSettings)
	}
	return nil
}

// TurnTimeout returns the turn clock as a duration, or zero when disabled.
func (s Settings) TurnTimeout() time.Duration {
	return time.Duration(s.TurnTimeLimit) * time.Second
}
