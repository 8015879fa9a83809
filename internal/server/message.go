package server

import (
	"encoding/json"
	"time"

	"github.com/lox/pokerrooms/internal/room"
)

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"requestId,omitempty"`
}

// NewMessage creates a new message stamped with now.
func NewMessage(messageType MessageType, data any, now time.Time) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: now,
	}, nil
}

// Client → Server Messages

type CreateRoomData struct {
	PlayerName string `json:"playerName"`
	// Settings overlays the server defaults; omitted fields keep the default.
	Settings json.RawMessage `json:"settings,omitempty"`
	WithAI   bool            `json:"withAI"`
	AICount  int             `json:"aiCount,omitempty"`
}

type JoinRoomData struct {
	RoomCode   string `json:"roomCode"`
	PlayerName string `json:"playerName"`
	// PlayerID and SessionToken together reclaim an existing seat after a
	// reconnect.
	PlayerID     string `json:"playerId,omitempty"`
	SessionToken string `json:"sessionToken,omitempty"`
}

type PlayerActionData struct {
	Action string `json:"action"`
	Amount int    `json:"amount,omitempty"`
}

type ChatMessageData struct {
	Message string `json:"message"`
}

// Server → Client Messages

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RoomJoinedData answers createRoom and joinRoom. The client keeps PlayerID
// and SessionToken to reconnect; the token is sent to nobody else.
type RoomJoinedData struct {
	RoomCode     string    `json:"roomCode"`
	PlayerID     string    `json:"playerId"`
	SessionToken string    `json:"sessionToken"`
	State        room.View `json:"state"`
}

type PlayerEventData struct {
	PlayerID string    `json:"playerId"`
	Name     string    `json:"name"`
	State    room.View `json:"state"`
}

type GameStateData struct {
	State room.View `json:"state"`
}

type ChatData struct {
	Entry room.ChatEntry `json:"entry"`
}

// HandEndData is sent as showdown or roundEnd depending on how the hand
// finished.
type HandEndData struct {
	Result  *room.HandResult `json:"result"`
	Winners []string         `json:"winners"`
	State   room.View        `json:"state"`
}
