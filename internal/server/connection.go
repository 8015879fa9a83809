package server

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Connection represents a WebSocket connection to a client
type Connection struct {
	id          string
	conn        *websocket.Conn
	send        chan *Message
	playerID    string
	roomCode    string
	logger      *log.Logger
	ctx         context.Context
	cancel      context.CancelFunc
	mu          sync.RWMutex
	closeOnce   sync.Once
	gameService *GameService
}

var _ Client = (*Connection)(nil)

// NewConnection creates a new connection wrapper
func NewConnection(conn *websocket.Conn, logger *log.Logger, gameService *GameService) *Connection {
	ctx, cancel := context.WithCancel(context.Background())
	id := uuid.NewString()

	return &Connection{
		id:          id,
		conn:        conn,
		send:        make(chan *Message, 256),
		logger:      logger.WithPrefix("conn").With("conn", id[:8]),
		ctx:         ctx,
		cancel:      cancel,
		gameService: gameService,
	}
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.send)
		err = c.conn.Close()
	})
	return err
}

// Done is closed once the connection has shut down.
func (c *Connection) Done() <-chan struct{} {
	return c.ctx.Done()
}

func (c *Connection) ID() string {
	return c.id
}

// Send queues a message for the client
func (c *Connection) Send(msg *Message) error {
	defer func() {
		if r := recover(); r != nil {
			// Channel was closed, this is expected during shutdown
			c.logger.Debug("Attempted to send message on closed connection", "error", r)
		}
	}()

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		c.logger.Warn("Connection send buffer full, closing connection")
		_ = c.Close() // Ignore close errors
		return ErrConnectionClosed
	}
}

// Bind associates this connection with a seat in a room
func (c *Connection) Bind(roomCode, playerID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roomCode = roomCode
	c.playerID = playerID
}

// Seat returns the room code and player id this connection is bound to
func (c *Connection) Seat() (roomCode, playerID string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.roomCode, c.playerID
}

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192

	// Time allowed for one request to load, mutate and save its room
	requestTimeout = 10 * time.Second
)

var (
	ErrConnectionClosed = websocket.ErrCloseSent
)

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }() // Ignore close errors during cleanup

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg Message
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			return
		}

		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close() // Ignore close errors during cleanup
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// handleMessage routes one client message to the game service. Failures are
// reported to this connection only.
func (c *Connection) handleMessage(msg *Message) {
	roomCode, playerID := c.Seat()
	c.logger.Debug("Received message", "type", msg.Type, "room", roomCode, "player", playerID)

	if c.gameService == nil {
		c.sendError(msg.RequestID, "service_unavailable", "Game service not available")
		return
	}

	ctx, cancel := context.WithTimeout(c.ctx, requestTimeout)
	defer cancel()

	var err error
	switch msg.Type {
	case MessageTypeCreateRoom:
		var data CreateRoomData
		if err = decodeData(msg, &data); err == nil {
			err = c.requireNoSeat()
		}
		if err == nil {
			err = c.gameService.CreateRoom(ctx, c, data)
		}

	case MessageTypeJoinRoom:
		var data JoinRoomData
		if err = decodeData(msg, &data); err == nil {
			err = c.requireNoSeat()
		}
		if err == nil {
			err = c.gameService.JoinRoom(ctx, c, data)
		}

	case MessageTypeStartGame:
		if err = c.requireSeat(); err == nil {
			err = c.gameService.StartGame(ctx, roomCode, playerID)
		}

	case MessageTypePlayerAction:
		var data PlayerActionData
		if err = decodeData(msg, &data); err == nil {
			err = c.requireSeat()
		}
		if err == nil {
			err = c.gameService.PlayerAction(ctx, roomCode, playerID, data)
		}

	case MessageTypeChatMessage:
		var data ChatMessageData
		if err = decodeData(msg, &data); err == nil {
			err = c.requireSeat()
		}
		if err == nil {
			err = c.gameService.Chat(ctx, roomCode, playerID, data)
		}

	case MessageTypeNextRound:
		if err = c.requireSeat(); err == nil {
			err = c.gameService.NextRound(ctx, roomCode, playerID)
		}

	case MessageTypeBuyBack:
		if err = c.requireSeat(); err == nil {
			err = c.gameService.BuyBack(ctx, roomCode, playerID)
		}

	default:
		c.sendError(msg.RequestID, "unknown_message_type", "Unknown message type: "+msg.Type.String())
		return
	}

	if err != nil {
		c.logger.Debug("Request failed", "type", msg.Type, "error", err)
		data := errorData(err)
		c.sendError(msg.RequestID, data.Code, data.Message)
	}
}

func decodeData(msg *Message, v any) error {
	if len(msg.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(msg.Data, v); err != nil {
		return errors.Join(ErrInvalidData, err)
	}
	return nil
}

func (c *Connection) requireSeat() error {
	if code, player := c.Seat(); code == "" || player == "" {
		return ErrNotInRoom
	}
	return nil
}

func (c *Connection) requireNoSeat() error {
	if code, _ := c.Seat(); code != "" {
		return ErrAlreadyInRoom
	}
	return nil
}

// sendError sends an error message to the client
func (c *Connection) sendError(requestID, code, message string) {
	errorMsg, err := NewMessage(MessageTypeError, ErrorData{
		Code:    code,
		Message: message,
	}, time.Now())
	if err != nil {
		c.logger.Error("Failed to create error message", "error", err)
		return
	}
	errorMsg.RequestID = requestID

	_ = c.Send(errorMsg) // Ignore send errors during error handling
}
