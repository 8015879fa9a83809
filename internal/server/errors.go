package server

import (
	"errors"

	"github.com/lox/pokerrooms/internal/room"
	"github.com/lox/pokerrooms/internal/store"
)

var (
	ErrNotInRoom     = errors.New("join or create a room first")
	ErrAlreadyInRoom = errors.New("connection is already seated in a room")
	ErrInvalidData   = errors.New("malformed message data")
	ErrCodeExhausted = errors.New("could not allocate a room code")
)

// errorCodes maps sentinel errors onto the codes clients switch on.
var errorCodes = []struct {
	err  error
	code string
}{
	{room.ErrNotYourTurn, "not_your_turn"},
	{room.ErrPlayerFolded, "not_your_turn"},
	{room.ErrCannotCheck, "cannot_check"},
	{room.ErrNothingToCall, "nothing_to_call"},
	{room.ErrRaiseTooSmall, "raise_too_small"},
	{room.ErrInsufficientChips, "insufficient_chips"},
	{room.ErrUnknownAction, "unknown_action"},
	{room.ErrRoomFull, "room_full"},
	{room.ErrGameInProgress, "game_in_progress"},
	{room.ErrHandNotInProgress, "hand_not_in_progress"},
	{room.ErrHandNotFinished, "hand_not_finished"},
	{room.ErrNotEnoughPlayers, "not_enough_players"},
	{room.ErrNotHost, "not_host"},
	{room.ErrBuyBackDisabled, "buy_back_disabled"},
	{room.ErrBuyBackLimit, "buy_back_limit"},
	{room.ErrHasChips, "has_chips"},
	{room.ErrInvalidName, "invalid_name"},
	{room.ErrEmptyMessage, "empty_message"},
	{room.ErrInvalidSettings, "invalid_settings"},
	{room.ErrPlayerNotFound, "player_not_found"},
	{store.ErrNotFound, "room_not_found"},
	{store.ErrConflict, "conflict"},
	{ErrNotInRoom, "not_in_room"},
	{ErrAlreadyInRoom, "already_in_room"},
	{ErrInvalidData, "invalid_message"},
}

// ErrorCode returns the wire code for err. Anything unrecognised is treated
// as a storage failure, the only errors that do not come from validation.
func ErrorCode(err error) string {
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	return "storage_error"
}

// errorData builds the payload sent to the client that caused err. Storage
// failures are not described in detail.
func errorData(err error) ErrorData {
	code := ErrorCode(err)
	msg := err.Error()
	if code == "storage_error" {
		msg = "the room could not be saved, please try again"
	}
	return ErrorData{Code: code, Message: msg}
}
