package server

// MessageType represents a WebSocket message type with type safety
type MessageType string

// WebSocket message type constants
const (
	// Client to server messages
	MessageTypeCreateRoom   MessageType = "createRoom"
	MessageTypeJoinRoom     MessageType = "joinRoom"
	MessageTypeStartGame    MessageType = "startGame"
	MessageTypePlayerAction MessageType = "playerAction"
	MessageTypeChatMessage  MessageType = "chatMessage"
	MessageTypeNextRound    MessageType = "nextRound"
	MessageTypeBuyBack      MessageType = "buyBack"

	// Server to client messages
	MessageTypeRoomCreated        MessageType = "roomCreated"
	MessageTypeRoomJoined         MessageType = "roomJoined"
	MessageTypePlayerJoined       MessageType = "playerJoined"
	MessageTypePlayerReconnected  MessageType = "playerReconnected"
	MessageTypeGameStarted        MessageType = "gameStarted"
	MessageTypeGameUpdate         MessageType = "gameUpdate"
	MessageTypePlayerDisconnected MessageType = "playerDisconnected"
	MessageTypeNewChatMessage     MessageType = "newChatMessage"
	MessageTypeShowdown           MessageType = "showdown"
	MessageTypeRoundEnd           MessageType = "roundEnd"
	MessageTypeError              MessageType = "error"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}
