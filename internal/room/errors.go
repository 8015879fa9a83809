package room

import "errors"

// Validation errors. None of them mutate the room.
var (
	ErrRoomFull          = errors.New("room is full")
	ErrGameInProgress    = errors.New("hand already in progress")
	ErrHandNotInProgress = errors.New("no hand in progress")
	ErrHandNotFinished   = errors.New("hand has not finished")
	ErrNotEnoughPlayers  = errors.New("need at least two players with chips")
	ErrNotHost           = errors.New("only the host can do that")
	ErrNotYourTurn       = errors.New("not your turn")
	ErrPlayerFolded      = errors.New("player has folded")
	ErrCannotCheck       = errors.New("cannot check")
	ErrNothingToCall     = errors.New("nothing to call")
	ErrRaiseTooSmall     = errors.New("raise too small")
	ErrInsufficientChips = errors.New("insufficient chips")
	ErrUnknownAction     = errors.New("unknown action")
	ErrBuyBackDisabled   = errors.New("buy-back is disabled")
	ErrBuyBackLimit      = errors.New("buy-back limit reached")
	ErrHasChips          = errors.New("player still has chips")
	ErrInvalidName       = errors.New("invalid player name")
	ErrEmptyMessage      = errors.New("empty chat message")
	ErrInvalidSettings   = errors.New("invalid settings")
)

// ErrPlayerNotFound is returned when a player id is not seated in the room.
var ErrPlayerNotFound = errors.New("player not found")
